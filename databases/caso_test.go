package databases_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/odontoforense/odonto-legal-api/databases"
	mocksdb "github.com/odontoforense/odonto-legal-api/databases/mocks"
)

func TestCasoDatabase_UpdateVersionedMatch(t *testing.T) {
	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	updateResult := &mocksdb.UpdateResultHelper{}

	updateResult.On("MatchedCount").Return(int64(1))
	conn.On("UpdateOne", mock.Anything,
		mock.MatchedBy(func(filter interface{}) bool {
			f, ok := filter.(bson.M)
			return ok && f["_id"] == "caso-1" && f["version"] == int64(3)
		}),
		mock.MatchedBy(func(update interface{}) bool {
			u, ok := update.(bson.M)
			if !ok {
				return false
			}
			set, ok := u["$set"].(bson.M)
			return ok && set["version"] == int64(4) && set["titulo"] == "Caso Teste"
		}),
	).Return(updateResult, nil)
	db.On("Collection", "casos").Return(conn)

	casoDB := databases.NewCasoDatabase(db)

	matched, err := casoDB.UpdateVersioned(context.Background(), "caso-1", 3, bson.M{"titulo": "Caso Teste"})
	assert.NoError(t, err)
	assert.True(t, matched)
	conn.AssertExpectations(t)
}

func TestCasoDatabase_UpdateVersionedStaleVersion(t *testing.T) {
	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	updateResult := &mocksdb.UpdateResultHelper{}

	updateResult.On("MatchedCount").Return(int64(0))
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(updateResult, nil)
	db.On("Collection", "casos").Return(conn)

	casoDB := databases.NewCasoDatabase(db)

	matched, err := casoDB.UpdateVersioned(context.Background(), "caso-1", 2, bson.M{"titulo": "stale"})
	assert.NoError(t, err)
	assert.False(t, matched)
}
