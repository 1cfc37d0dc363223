package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/odontoforense/odonto-legal-api/config"
	"github.com/odontoforense/odonto-legal-api/databases"
	"github.com/odontoforense/odonto-legal-api/models"
)

// Dashboard serves aggregate statistics over casos, periciados and evidencias
type Dashboard struct {
	CDB  databases.CasoDatabase
	PDB  databases.PericiadoDatabase
	EDB  databases.EvidenciaDatabase
	Snap databases.SnapshotDatabase
}

// SummaryHandler computes the dashboard breakdowns. Optional query params
// start/end (RFC3339) bound casos by dataAbertura; sexo and etnia filter the
// periciado buckets.
func (d Dashboard) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	casoMatch := bson.M{}
	dateRange := bson.M{}
	if start := q.Get("start"); start != "" {
		t, err := time.Parse(time.RFC3339, start)
		if err != nil {
			config.ErrorStatus("invalid start date", http.StatusBadRequest, w, err)
			return
		}
		dateRange["$gte"] = t.Format(time.RFC3339)
	}
	if end := q.Get("end"); end != "" {
		t, err := time.Parse(time.RFC3339, end)
		if err != nil {
			config.ErrorStatus("invalid end date", http.StatusBadRequest, w, err)
			return
		}
		dateRange["$lte"] = t.Format(time.RFC3339)
	}
	if len(dateRange) > 0 {
		casoMatch["dataAbertura"] = dateRange
	}

	periciadoMatch := bson.M{}
	if sexo := q.Get("sexo"); sexo != "" {
		periciadoMatch["sexo"] = sexo
	}
	if etnia := q.Get("etnia"); etnia != "" {
		periciadoMatch["etnia"] = etnia
	}

	summary, err := buildSummary(r.Context(), d.CDB, d.PDB, d.EDB, casoMatch, periciadoMatch)
	if err != nil {
		// an unfiltered request can still be answered from the nightly
		// snapshot; a filtered one cannot, the snapshot is unfiltered
		if len(casoMatch) == 0 && len(periciadoMatch) == 0 {
			snap, snapErr := d.Snap.FindLatest(r.Context())
			if snapErr == nil {
				zap.S().Warnw("serving dashboard summary from latest snapshot", "error", err, "snapshotAt", snap.CreatedAt)
				b, mErr := json.Marshal(snap.Summary)
				if mErr != nil {
					config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, mErr)
					return
				}
				w.WriteHeader(http.StatusOK)
				w.Write(b)
				return
			}
			zap.S().Errorw("failed to read latest dashboard snapshot", "error", snapErr)
		}
		config.ErrorStatus("failed to build dashboard summary", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(summary)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

func buildSummary(ctx context.Context, cdb databases.CasoDatabase, pdb databases.PericiadoDatabase, edb databases.EvidenciaDatabase, casoMatch, periciadoMatch bson.M) (*models.DashboardSummary, error) {
	total, err := cdb.CountDocuments(ctx, casoMatch)
	if err != nil {
		return nil, err
	}
	porStatus, err := cdb.GroupCount(ctx, casoMatch, "status")
	if err != nil {
		return nil, err
	}
	porTipo, err := edb.GroupCount(ctx, bson.M{}, "tipo")
	if err != nil {
		return nil, err
	}
	porSexo, err := pdb.GroupCount(ctx, periciadoMatch, "sexo")
	if err != nil {
		return nil, err
	}
	porEtnia, err := pdb.GroupCount(ctx, periciadoMatch, "etnia")
	if err != nil {
		return nil, err
	}

	return &models.DashboardSummary{
		TotalCasos: total,
		PorStatus:  bucketMap(porStatus),
		PorTipo:    bucketMap(porTipo),
		PorSexo:    bucketMap(porSexo),
		PorEtnia:   bucketMap(porEtnia),
	}, nil
}

func bucketMap(buckets []models.GroupCount) map[string]int64 {
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
