package databases

// go generate: mockery --name TokenDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/odontoforense/odonto-legal-api/models"
)

const tokenName = "tokens"

// TokenDatabase contains the methods to use with the token database
type TokenDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Token, error)
	InsertOne(context.Context, models.Token) (InsertOneResultHelper, error)
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type tokenDatabase struct {
	db DatabaseHelper
}

// NewTokenDatabase initializes a new instance of token database with the provided db connection
func NewTokenDatabase(db DatabaseHelper) TokenDatabase {
	return &tokenDatabase{
		db: db,
	}
}

func (t *tokenDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Token, error) {
	token := &models.Token{}
	err := t.db.Collection(tokenName).FindOne(ctx, filter, opts...).Decode(&token)
	if err != nil {
		return nil, err
	}
	return token, nil
}

func (t *tokenDatabase) InsertOne(ctx context.Context, token models.Token) (InsertOneResultHelper, error) {
	return t.db.Collection(tokenName).InsertOne(ctx, token)
}

func (t *tokenDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return t.db.Collection(tokenName).DeleteOne(ctx, filter, opts...)
}

// DeleteExpired removes tokens created before the cutoff. Run by the
// scheduler's purge job.
func (t *tokenDatabase) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	return t.db.Collection(tokenName).DeleteMany(ctx, bson.M{"createdAt": bson.M{"$lt": before}})
}
