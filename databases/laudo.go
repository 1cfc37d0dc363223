package databases

// go generate: mockery --name LaudoDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/odontoforense/odonto-legal-api/models"
)

const laudoName = "laudos"

// LaudoDatabase contains the methods to use with the laudo database
type LaudoDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Laudo, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Laudo, error)
	InsertOne(context.Context, models.Laudo) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) error
	MarkSigned(ctx context.Context, id string, set bson.M) (bool, error)
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) error
}

type laudoDatabase struct {
	db DatabaseHelper
}

// NewLaudoDatabase initializes a new instance of laudo database with the provided db connection
func NewLaudoDatabase(db DatabaseHelper) LaudoDatabase {
	return &laudoDatabase{
		db: db,
	}
}

func (l *laudoDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Laudo, error) {
	laudo := &models.Laudo{}
	err := l.db.Collection(laudoName).FindOne(ctx, filter, opts...).Decode(&laudo)
	if err != nil {
		return nil, err
	}
	return laudo, nil
}

func (l *laudoDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Laudo, error) {
	var laudos []models.Laudo
	cur, err := l.db.Collection(laudoName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&laudos)
	if err != nil {
		return nil, err
	}
	return laudos, nil
}

func (l *laudoDatabase) InsertOne(ctx context.Context, laudo models.Laudo) (InsertOneResultHelper, error) {
	return l.db.Collection(laudoName).InsertOne(ctx, laudo)
}

func (l *laudoDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error {
	_, err := l.db.Collection(laudoName).UpdateOne(ctx, filter, update, opts...)
	return err
}

// MarkSigned sets the signature fields on an unsigned laudo. The filter pins
// assinado=false so a signed laudo can never be re-signed: a second attempt
// matches nothing and returns false.
func (l *laudoDatabase) MarkSigned(ctx context.Context, id string, set bson.M) (bool, error) {
	set["assinado"] = true
	res, err := l.db.Collection(laudoName).UpdateOne(ctx,
		bson.M{"_id": id, "assinado": false},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount() > 0, nil
}

func (l *laudoDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return l.db.Collection(laudoName).DeleteOne(ctx, filter, opts...)
}
