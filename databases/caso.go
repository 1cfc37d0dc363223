package databases

// go generate: mockery --name CasoDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/odontoforense/odonto-legal-api/models"
)

const casoName = "casos"

// CasoDatabase contains the methods to use with the caso database
type CasoDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Caso, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Caso, error)
	InsertOne(context.Context, models.Caso) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) error
	UpdateVersioned(ctx context.Context, id string, version int64, set bson.M) (bool, error)
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) error
	CountDocuments(context.Context, interface{}) (int64, error)
	GroupCount(ctx context.Context, match bson.M, field string) ([]models.GroupCount, error)
}

type casoDatabase struct {
	db DatabaseHelper
}

// NewCasoDatabase initializes a new instance of caso database with the provided db connection
func NewCasoDatabase(db DatabaseHelper) CasoDatabase {
	return &casoDatabase{
		db: db,
	}
}

func (c *casoDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Caso, error) {
	caso := &models.Caso{}
	err := c.db.Collection(casoName).FindOne(ctx, filter, opts...).Decode(&caso)
	if err != nil {
		return nil, err
	}
	caso.Normalize()
	return caso, nil
}

func (c *casoDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Caso, error) {
	var casos []models.Caso
	cur, err := c.db.Collection(casoName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&casos)
	if err != nil {
		return nil, err
	}
	for i := range casos {
		casos[i].Normalize()
	}
	return casos, nil
}

func (c *casoDatabase) InsertOne(ctx context.Context, caso models.Caso) (InsertOneResultHelper, error) {
	return c.db.Collection(casoName).InsertOne(ctx, caso)
}

func (c *casoDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error {
	_, err := c.db.Collection(casoName).UpdateOne(ctx, filter, update, opts...)
	return err
}

// UpdateVersioned applies set to the caso identified by id only when the
// stored version counter still matches. Returns false when no document
// matched, which callers surface as a version conflict.
func (c *casoDatabase) UpdateVersioned(ctx context.Context, id string, version int64, set bson.M) (bool, error) {
	set["version"] = version + 1
	res, err := c.db.Collection(casoName).UpdateOne(ctx,
		bson.M{"_id": id, "version": version},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount() > 0, nil
}

func (c *casoDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return c.db.Collection(casoName).DeleteOne(ctx, filter, opts...)
}

func (c *casoDatabase) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	return c.db.Collection(casoName).CountDocuments(ctx, filter)
}

// GroupCount buckets casos matching match by the given field.
func (c *casoDatabase) GroupCount(ctx context.Context, match bson.M, field string) ([]models.GroupCount, error) {
	return groupCount(ctx, c.db.Collection(casoName), match, field)
}

// groupCount runs a $match + $group count pipeline against a collection.
func groupCount(ctx context.Context, coll CollectionHelper, match bson.M, field string) ([]models.GroupCount, error) {
	pipeline := []bson.M{
		{"$match": match},
		{"$group": bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}},
	}
	cur, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var out []models.GroupCount
	if err := cur.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
