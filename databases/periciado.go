package databases

// go generate: mockery --name PericiadoDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/odontoforense/odonto-legal-api/models"
)

const periciadoName = "periciados"

// PericiadoDatabase contains the methods to use with the periciado database
type PericiadoDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Periciado, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Periciado, error)
	InsertOne(context.Context, models.Periciado) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) error
	ReplaceOdontograma(ctx context.Context, id string, items []models.OdontogramaItem) (bool, error)
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) error
	GroupCount(ctx context.Context, match bson.M, field string) ([]models.GroupCount, error)
}

type periciadoDatabase struct {
	db DatabaseHelper
}

// NewPericiadoDatabase initializes a new instance of periciado database with the provided db connection
func NewPericiadoDatabase(db DatabaseHelper) PericiadoDatabase {
	return &periciadoDatabase{
		db: db,
	}
}

func (p *periciadoDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Periciado, error) {
	periciado := &models.Periciado{}
	err := p.db.Collection(periciadoName).FindOne(ctx, filter, opts...).Decode(&periciado)
	if err != nil {
		return nil, err
	}
	if periciado.Odontograma == nil {
		periciado.Odontograma = []models.OdontogramaItem{}
	}
	return periciado, nil
}

func (p *periciadoDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Periciado, error) {
	var periciados []models.Periciado
	cur, err := p.db.Collection(periciadoName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&periciados)
	if err != nil {
		return nil, err
	}
	return periciados, nil
}

func (p *periciadoDatabase) InsertOne(ctx context.Context, periciado models.Periciado) (InsertOneResultHelper, error) {
	return p.db.Collection(periciadoName).InsertOne(ctx, periciado)
}

func (p *periciadoDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error {
	_, err := p.db.Collection(periciadoName).UpdateOne(ctx, filter, update, opts...)
	return err
}

// ReplaceOdontograma swaps the whole chart of the periciado identified by id.
// The chart is never patched incrementally.
func (p *periciadoDatabase) ReplaceOdontograma(ctx context.Context, id string, items []models.OdontogramaItem) (bool, error) {
	res, err := p.db.Collection(periciadoName).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"odontograma": items}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount() > 0, nil
}

func (p *periciadoDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return p.db.Collection(periciadoName).DeleteOne(ctx, filter, opts...)
}

// GroupCount buckets periciados matching match by the given field.
func (p *periciadoDatabase) GroupCount(ctx context.Context, match bson.M, field string) ([]models.GroupCount, error) {
	return groupCount(ctx, p.db.Collection(periciadoName), match, field)
}
