package databases

// go generate: mockery --name PeritoDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/odontoforense/odonto-legal-api/models"
)

const peritoName = "peritos"

// PeritoDatabase contains the methods to use with the perito database
type PeritoDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Perito, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Perito, error)
	InsertOne(context.Context, models.Perito) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) error
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) error
}

type peritoDatabase struct {
	db DatabaseHelper
}

// NewPeritoDatabase initializes a new instance of perito database with the provided db connection
func NewPeritoDatabase(db DatabaseHelper) PeritoDatabase {
	return &peritoDatabase{
		db: db,
	}
}

func (p *peritoDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Perito, error) {
	perito := &models.Perito{}
	err := p.db.Collection(peritoName).FindOne(ctx, filter, opts...).Decode(&perito)
	if err != nil {
		return nil, err
	}
	return perito, nil
}

func (p *peritoDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Perito, error) {
	var peritos []models.Perito
	cur, err := p.db.Collection(peritoName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&peritos)
	if err != nil {
		return nil, err
	}
	return peritos, nil
}

func (p *peritoDatabase) InsertOne(ctx context.Context, perito models.Perito) (InsertOneResultHelper, error) {
	return p.db.Collection(peritoName).InsertOne(ctx, perito)
}

func (p *peritoDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error {
	_, err := p.db.Collection(peritoName).UpdateOne(ctx, filter, update, opts...)
	return err
}

func (p *peritoDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return p.db.Collection(peritoName).DeleteOne(ctx, filter, opts...)
}
