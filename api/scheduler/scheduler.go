package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/odontoforense/odonto-legal-api/databases"
	"github.com/odontoforense/odonto-legal-api/models"
)

// tokenTTL is how long a login token stays valid before the purge job
// removes it.
const tokenTTL = 24 * time.Hour

// Scheduler runs the periodic background jobs: expired token cleanup and the
// nightly dashboard snapshot.
type Scheduler struct {
	cron   *cron.Cron
	TDB    databases.TokenDatabase
	CDB    databases.CasoDatabase
	PDB    databases.PericiadoDatabase
	EDB    databases.EvidenciaDatabase
	SnapDB databases.SnapshotDatabase
}

// NewScheduler creates a new scheduler instance
func NewScheduler(
	tDB databases.TokenDatabase,
	cDB databases.CasoDatabase,
	pDB databases.PericiadoDatabase,
	eDB databases.EvidenciaDatabase,
	snapDB databases.SnapshotDatabase,
) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		TDB:    tDB,
		CDB:    cDB,
		PDB:    pDB,
		EDB:    eDB,
		SnapDB: snapDB,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Purge expired login tokens hourly
	_, err := s.cron.AddFunc("0 * * * *", s.purgeExpiredTokens)
	if err != nil {
		zap.S().Errorw("failed to register token purge job", "error", err)
	}

	// Snapshot the dashboard summary nightly at 3 AM UTC
	_, err = s.cron.AddFunc("0 3 * * *", s.snapshotDashboard)
	if err != nil {
		zap.S().Errorw("failed to register dashboard snapshot job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("scheduler stopped")
}

// purgeExpiredTokens deletes login tokens older than the TTL
func (s *Scheduler) purgeExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-tokenTTL)
	deleted, err := s.TDB.DeleteExpired(ctx, cutoff)
	if err != nil {
		zap.S().Errorw("failed to purge expired tokens", "error", err)
		return
	}
	if deleted > 0 {
		zap.S().Infow("purged expired tokens", "count", deleted)
	}
}

// snapshotDashboard aggregates the unfiltered dashboard summary and persists
// it so the dashboard can fall back to the latest snapshot.
func (s *Scheduler) snapshotDashboard() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	total, err := s.CDB.CountDocuments(ctx, bson.M{})
	if err != nil {
		zap.S().Errorw("failed to count casos for snapshot", "error", err)
		return
	}
	porStatus, err := s.CDB.GroupCount(ctx, bson.M{}, "status")
	if err != nil {
		zap.S().Errorw("failed to aggregate caso status for snapshot", "error", err)
		return
	}
	porTipo, err := s.EDB.GroupCount(ctx, bson.M{}, "tipo")
	if err != nil {
		zap.S().Errorw("failed to aggregate evidencia tipo for snapshot", "error", err)
		return
	}
	porSexo, err := s.PDB.GroupCount(ctx, bson.M{}, "sexo")
	if err != nil {
		zap.S().Errorw("failed to aggregate periciado sexo for snapshot", "error", err)
		return
	}
	porEtnia, err := s.PDB.GroupCount(ctx, bson.M{}, "etnia")
	if err != nil {
		zap.S().Errorw("failed to aggregate periciado etnia for snapshot", "error", err)
		return
	}

	snap := models.DashboardSnapshot{
		Summary: models.DashboardSummary{
			TotalCasos: total,
			PorStatus:  countsByKey(porStatus),
			PorTipo:    countsByKey(porTipo),
			PorSexo:    countsByKey(porSexo),
			PorEtnia:   countsByKey(porEtnia),
		},
		CreatedAt: primitive.NewDateTimeFromTime(time.Now()),
	}
	if _, err := s.SnapDB.InsertOne(ctx, snap); err != nil {
		zap.S().Errorw("failed to persist dashboard snapshot", "error", err)
		return
	}
	zap.S().Infow("dashboard snapshot persisted", "totalCasos", total)
}

func countsByKey(buckets []models.GroupCount) map[string]int64 {
	m := make(map[string]int64, len(buckets))
	for _, b := range buckets {
		key := b.ID
		if key == "" {
			key = "nao_informado"
		}
		m[key] = b.Count
	}
	return m
}
