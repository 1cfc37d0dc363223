package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/odontoforense/odonto-legal-api/api/handlers"
	"github.com/odontoforense/odonto-legal-api/databases"
	mocksdb "github.com/odontoforense/odonto-legal-api/databases/mocks"
	"github.com/odontoforense/odonto-legal-api/models"
)

func TestCaso_CasoByIDHandlerNotFound(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/case/caso-404", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"case_id": "caso-404"})
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	singleResultHelper := &mocksdb.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(errors.New("mongo: no documents in result"))
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "casos").Return(conn)

	c := handlers.Caso{DB: databases.NewCasoDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CasoByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "failed to get caso by ID")
}

func TestCaso_CasoByIDHandlerNormalizesCollections(t *testing.T) {
	req, _ := http.NewRequest("GET", "/api/v1/case/caso-1", nil)
	req = mux.SetURLVars(req, map[string]string{"case_id": "caso-1"})
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	singleResultHelper := &mocksdb.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Caso)
		(*arg).ID = "caso-1"
		(*arg).Titulo = "Caso Teste"
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "casos").Return(conn)

	c := handlers.Caso{DB: databases.NewCasoDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CasoByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"vitimas":[]`)
	assert.Contains(t, rr.Body.String(), `"evidencias":[]`)
	assert.Contains(t, rr.Body.String(), `"peritos":[]`)
}

func TestCaso_CreateCasoHandlerMissingTitulo(t *testing.T) {
	body, _ := json.Marshal(models.Caso{Descricao: "sem titulo"})
	req, _ := http.NewRequest("POST", "/api/v1/case", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer abc123")

	c := handlers.Caso{}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CreateCasoHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "titulo is required")
}

func TestCaso_CreateCasoHandlerSuccess(t *testing.T) {
	body, _ := json.Marshal(models.Caso{
		Titulo:      "Caso Teste",
		Descricao:   "desc",
		Responsavel: "Perito A",
		Local:       "Local X",
	})
	req, _ := http.NewRequest("POST", "/api/v1/case", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}

	conn.On("InsertOne", mock.Anything, mock.Anything).Return(&mocksdb.InsertOneResultHelper{}, nil)
	db.On("Collection", "casos").Return(conn)

	c := handlers.Caso{DB: databases.NewCasoDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CreateCasoHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var created models.Caso
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, "Caso Teste", created.Titulo)
	assert.Equal(t, models.CaseStatusInProgress, created.Status)
	assert.Equal(t, int64(1), created.Version)
	assert.NotEmpty(t, created.ID)
	assert.NotNil(t, created.Vitimas)
}

func TestCaso_CreateCasoHandlerKeepsLocalID(t *testing.T) {
	body, _ := json.Marshal(models.Caso{ID: "local-1748000000-ab12cd34", Titulo: "Caso Offline"})
	req, _ := http.NewRequest("POST", "/api/v1/case", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}

	conn.On("InsertOne", mock.Anything, mock.Anything).Return(&mocksdb.InsertOneResultHelper{}, nil)
	db.On("Collection", "casos").Return(conn)

	c := handlers.Caso{DB: databases.NewCasoDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CreateCasoHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), "local-1748000000-ab12cd34")
}

func TestCaso_CasoHandlerPaginationIsRequestLocal(t *testing.T) {
	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	cursor := &mocksdb.CursorHelper{}

	cursor.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Caso)
		*arg = []models.Caso{}
	})
	conn.On("Find", mock.Anything, mock.Anything,
		mock.MatchedBy(func(o *options.FindOptions) bool {
			return o.Skip != nil && *o.Skip == 6
		}),
	).Return(cursor, nil).Once()
	conn.On("Find", mock.Anything, mock.Anything,
		mock.MatchedBy(func(o *options.FindOptions) bool {
			return o.Skip != nil && *o.Skip == 0
		}),
	).Return(cursor, nil).Once()
	db.On("Collection", "casos").Return(conn)

	c := handlers.Caso{DB: databases.NewCasoDatabase(db)}

	req, _ := http.NewRequest("GET", "/api/v1/cases?page=3&limit=2", nil)
	req.Header.Set("Authorization", "Bearer abc123")
	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CasoHandler).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	// a second request without a page param must start at skip 0, not at the
	// previous request's page
	req, _ = http.NewRequest("GET", "/api/v1/cases?limit=2", nil)
	req.Header.Set("Authorization", "Bearer abc123")
	rr = httptest.NewRecorder()
	http.HandlerFunc(c.CasoHandler).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	conn.AssertExpectations(t)
}

func TestCaso_UpdateCasoHandlerVersionConflict(t *testing.T) {
	body, _ := json.Marshal(models.Caso{Titulo: "Caso Teste", Status: models.CaseStatusConcluded, Version: 3})
	req, _ := http.NewRequest("PUT", "/api/v1/case/caso-1", bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"case_id": "caso-1"})
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	updateResult := &mocksdb.UpdateResultHelper{}

	updateResult.On("MatchedCount").Return(int64(0))
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(updateResult, nil)
	db.On("Collection", "casos").Return(conn)

	c := handlers.Caso{DB: databases.NewCasoDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.UpdateCasoHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "caso version conflict")
}

func TestCaso_UpdateCasoHandlerSuccess(t *testing.T) {
	body, _ := json.Marshal(models.Caso{Titulo: "Caso Teste", Version: 3})
	req, _ := http.NewRequest("PUT", "/api/v1/case/caso-1", bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"case_id": "caso-1"})
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	updateResult := &mocksdb.UpdateResultHelper{}

	updateResult.On("MatchedCount").Return(int64(1))
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(updateResult, nil)
	db.On("Collection", "casos").Return(conn)

	c := handlers.Caso{DB: databases.NewCasoDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.UpdateCasoHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `{"updated": "caso-1"}`)
}

func TestCaso_UpdateCasoHandlerOmittedStatusKeepsStored(t *testing.T) {
	body, _ := json.Marshal(models.Caso{Titulo: "Caso Teste", Version: 1})
	req, _ := http.NewRequest("PUT", "/api/v1/case/caso-1", bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"case_id": "caso-1"})
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	updateResult := &mocksdb.UpdateResultHelper{}

	updateResult.On("MatchedCount").Return(int64(1))
	conn.On("UpdateOne", mock.Anything, mock.Anything,
		mock.MatchedBy(func(update interface{}) bool {
			u, ok := update.(bson.M)
			if !ok {
				return false
			}
			set, ok := u["$set"].(bson.M)
			if !ok {
				return false
			}
			// a body without status must not touch the stored status
			_, hasStatus := set["status"]
			return !hasStatus && set["titulo"] == "Caso Teste"
		}),
	).Return(updateResult, nil)
	db.On("Collection", "casos").Return(conn)

	c := handlers.Caso{DB: databases.NewCasoDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.UpdateCasoHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	conn.AssertExpectations(t)
}

func TestCaso_UpdateCasoHandlerWritesProvidedStatus(t *testing.T) {
	body, _ := json.Marshal(models.Caso{Titulo: "Caso Teste", Status: models.CaseStatusConcluded, Version: 1})
	req, _ := http.NewRequest("PUT", "/api/v1/case/caso-1", bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"case_id": "caso-1"})
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	updateResult := &mocksdb.UpdateResultHelper{}

	updateResult.On("MatchedCount").Return(int64(1))
	conn.On("UpdateOne", mock.Anything, mock.Anything,
		mock.MatchedBy(func(update interface{}) bool {
			u, ok := update.(bson.M)
			if !ok {
				return false
			}
			set, ok := u["$set"].(bson.M)
			return ok && set["status"] == models.CaseStatusConcluded
		}),
	).Return(updateResult, nil)
	db.On("Collection", "casos").Return(conn)

	c := handlers.Caso{DB: databases.NewCasoDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.UpdateCasoHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	conn.AssertExpectations(t)
}

func TestCaso_PatchCasoStatusHandlerInvalidStatus(t *testing.T) {
	req, _ := http.NewRequest("PATCH", "/api/v1/case/caso-1", bytes.NewReader([]byte(`{"status":"fechado"}`)))
	req = mux.SetURLVars(req, map[string]string{"case_id": "caso-1"})
	req.Header.Set("Authorization", "Bearer abc123")

	c := handlers.Caso{}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.PatchCasoStatusHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid status")
}
