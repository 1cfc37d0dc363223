package databases

// go generate: mockery --name EvidenciaDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/odontoforense/odonto-legal-api/models"
)

const evidenciaName = "evidencias"

// EvidenciaDatabase contains the methods to use with the evidencia database
type EvidenciaDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Evidencia, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Evidencia, error)
	InsertOne(context.Context, models.Evidencia) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) error
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) error
	GroupCount(ctx context.Context, match bson.M, field string) ([]models.GroupCount, error)
}

type evidenciaDatabase struct {
	db DatabaseHelper
}

// NewEvidenciaDatabase initializes a new instance of evidencia database with the provided db connection
func NewEvidenciaDatabase(db DatabaseHelper) EvidenciaDatabase {
	return &evidenciaDatabase{
		db: db,
	}
}

func (e *evidenciaDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Evidencia, error) {
	evidencia := &models.Evidencia{}
	err := e.db.Collection(evidenciaName).FindOne(ctx, filter, opts...).Decode(&evidencia)
	if err != nil {
		return nil, err
	}
	return evidencia, nil
}

func (e *evidenciaDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Evidencia, error) {
	var evidencias []models.Evidencia
	cur, err := e.db.Collection(evidenciaName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&evidencias)
	if err != nil {
		return nil, err
	}
	return evidencias, nil
}

func (e *evidenciaDatabase) InsertOne(ctx context.Context, evidencia models.Evidencia) (InsertOneResultHelper, error) {
	return e.db.Collection(evidenciaName).InsertOne(ctx, evidencia)
}

func (e *evidenciaDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error {
	_, err := e.db.Collection(evidenciaName).UpdateOne(ctx, filter, update, opts...)
	return err
}

func (e *evidenciaDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return e.db.Collection(evidenciaName).DeleteOne(ctx, filter, opts...)
}

// GroupCount buckets evidencias matching match by the given field.
func (e *evidenciaDatabase) GroupCount(ctx context.Context, match bson.M, field string) ([]models.GroupCount, error) {
	return groupCount(ctx, e.db.Collection(evidenciaName), match, field)
}
