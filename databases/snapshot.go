package databases

// go generate: mockery --name SnapshotDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/odontoforense/odonto-legal-api/models"
)

const snapshotName = "dashboard_snapshots"

// SnapshotDatabase persists nightly dashboard summaries
type SnapshotDatabase interface {
	InsertOne(context.Context, models.DashboardSnapshot) (InsertOneResultHelper, error)
	FindLatest(ctx context.Context) (*models.DashboardSnapshot, error)
}

type snapshotDatabase struct {
	db DatabaseHelper
}

// NewSnapshotDatabase initializes a new instance of snapshot database with the provided db connection
func NewSnapshotDatabase(db DatabaseHelper) SnapshotDatabase {
	return &snapshotDatabase{
		db: db,
	}
}

func (s *snapshotDatabase) InsertOne(ctx context.Context, snap models.DashboardSnapshot) (InsertOneResultHelper, error) {
	return s.db.Collection(snapshotName).InsertOne(ctx, snap)
}

func (s *snapshotDatabase) FindLatest(ctx context.Context) (*models.DashboardSnapshot, error) {
	snap := &models.DashboardSnapshot{}
	opts := options.FindOne().SetSort(bson.M{"createdAt": -1})
	err := s.db.Collection(snapshotName).FindOne(ctx, bson.M{}, opts).Decode(&snap)
	if err != nil {
		return nil, err
	}
	return snap, nil
}
