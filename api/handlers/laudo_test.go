package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odontoforense/odonto-legal-api/api/handlers"
	"github.com/odontoforense/odonto-legal-api/databases"
	mocksdb "github.com/odontoforense/odonto-legal-api/databases/mocks"
	"github.com/odontoforense/odonto-legal-api/models"
)

func TestLaudo_CreateLaudoHandlerForcesUnsigned(t *testing.T) {
	body, _ := json.Marshal(models.Laudo{
		CaseID:      "caso-1",
		Titulo:      "Laudo pericial",
		Texto:       "Conclusão da perícia.",
		Assinado:    true,
		AssinadoPor: "Intruso",
	})
	req, _ := http.NewRequest("POST", "/api/v1/laudo", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}

	conn.On("InsertOne", mock.Anything, mock.Anything).Return(&mocksdb.InsertOneResultHelper{}, nil)
	db.On("Collection", "laudos").Return(conn)

	l := handlers.Laudo{DB: databases.NewLaudoDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(l.CreateLaudoHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var created models.Laudo
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.False(t, created.Assinado)
	assert.Empty(t, created.SignatureToken)
}

func TestLaudo_SignLaudoHandlerAlreadySigned(t *testing.T) {
	userID := primitive.NewObjectID()
	body, _ := json.Marshal(map[string]string{"userID": userID.Hex()})
	req, _ := http.NewRequest("POST", "/api/v1/laudo/laudo-1/sign", bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"laudo_id": "laudo-1"})
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}
	userConn := &mocksdb.CollectionHelper{}
	laudoConn := &mocksdb.CollectionHelper{}
	userResult := &mocksdb.SingleResultHelper{}
	laudoResult := &mocksdb.SingleResultHelper{}

	userResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.User)
		(*arg).ID = userID
		(*arg).Nome = "Perito A"
	})
	laudoResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Laudo)
		(*arg).ID = "laudo-1"
		(*arg).Assinado = true
	})
	userConn.On("FindOne", mock.Anything, mock.Anything).Return(userResult)
	laudoConn.On("FindOne", mock.Anything, mock.Anything).Return(laudoResult)
	db.On("Collection", "users").Return(userConn)
	db.On("Collection", "laudos").Return(laudoConn)

	l := handlers.Laudo{
		DB:  databases.NewLaudoDatabase(db),
		UDB: databases.NewUserDatabase(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(l.SignLaudoHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "already signed")
}

func TestLaudo_SignLaudoHandlerSuccess(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")
	os.Unsetenv("SENDGRID_API_KEY")

	userID := primitive.NewObjectID()
	body, _ := json.Marshal(map[string]string{"userID": userID.Hex()})
	req, _ := http.NewRequest("POST", "/api/v1/laudo/laudo-1/sign", bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"laudo_id": "laudo-1"})
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}
	userConn := &mocksdb.CollectionHelper{}
	laudoConn := &mocksdb.CollectionHelper{}
	userResult := &mocksdb.SingleResultHelper{}
	laudoResult := &mocksdb.SingleResultHelper{}
	updateResult := &mocksdb.UpdateResultHelper{}

	userResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.User)
		(*arg).ID = userID
		(*arg).Nome = "Perito A"
	})
	laudoResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Laudo)
		(*arg).ID = "laudo-1"
		(*arg).Texto = "Conclusão da perícia."
	})
	updateResult.On("MatchedCount").Return(int64(1))
	userConn.On("FindOne", mock.Anything, mock.Anything).Return(userResult)
	laudoConn.On("FindOne", mock.Anything, mock.Anything).Return(laudoResult)
	laudoConn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(updateResult, nil)
	db.On("Collection", "users").Return(userConn)
	db.On("Collection", "laudos").Return(laudoConn)

	l := handlers.Laudo{
		DB:  databases.NewLaudoDatabase(db),
		UDB: databases.NewUserDatabase(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(l.SignLaudoHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"assinado":true`)
	assert.Contains(t, rr.Body.String(), "Perito A")
}

func TestLaudo_SignLaudoHandlerLostRace(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")

	userID := primitive.NewObjectID()
	body, _ := json.Marshal(map[string]string{"userID": userID.Hex()})
	req, _ := http.NewRequest("POST", "/api/v1/laudo/laudo-1/sign", bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"laudo_id": "laudo-1"})
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}
	userConn := &mocksdb.CollectionHelper{}
	laudoConn := &mocksdb.CollectionHelper{}
	userResult := &mocksdb.SingleResultHelper{}
	laudoResult := &mocksdb.SingleResultHelper{}
	updateResult := &mocksdb.UpdateResultHelper{}

	userResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.User)
		(*arg).ID = userID
	})
	laudoResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Laudo)
		(*arg).ID = "laudo-1"
	})
	// another signer got in between the read and the update
	updateResult.On("MatchedCount").Return(int64(0))
	userConn.On("FindOne", mock.Anything, mock.Anything).Return(userResult)
	laudoConn.On("FindOne", mock.Anything, mock.Anything).Return(laudoResult)
	laudoConn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(updateResult, nil)
	db.On("Collection", "users").Return(userConn)
	db.On("Collection", "laudos").Return(laudoConn)

	l := handlers.Laudo{
		DB:  databases.NewLaudoDatabase(db),
		UDB: databases.NewUserDatabase(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(l.SignLaudoHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestLaudo_GenerateLaudoPDFHandlerUnsigned(t *testing.T) {
	req, _ := http.NewRequest("POST", "/api/v1/laudo/laudo-1/pdf", nil)
	req = mux.SetURLVars(req, map[string]string{"laudo_id": "laudo-1"})
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}
	laudoConn := &mocksdb.CollectionHelper{}
	casoConn := &mocksdb.CollectionHelper{}
	laudoResult := &mocksdb.SingleResultHelper{}
	casoResult := &mocksdb.SingleResultHelper{}

	laudoResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Laudo)
		(*arg).ID = "laudo-1"
		(*arg).CaseID = "caso-1"
		(*arg).Titulo = "Laudo pericial"
		(*arg).Texto = "Conclusão da perícia."
	})
	casoResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Caso)
		(*arg).ID = "caso-1"
		(*arg).Titulo = "Caso Teste"
	})
	laudoConn.On("FindOne", mock.Anything, mock.Anything).Return(laudoResult)
	laudoConn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mocksdb.UpdateResultHelper{}, nil)
	casoConn.On("FindOne", mock.Anything, mock.Anything).Return(casoResult)
	db.On("Collection", "laudos").Return(laudoConn)
	db.On("Collection", "casos").Return(casoConn)

	l := handlers.Laudo{
		DB:  databases.NewLaudoDatabase(db),
		CDB: databases.NewCasoDatabase(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(l.GenerateLaudoPDFHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")), fmt.Sprintf("expected pdf bytes, got %q", rr.Body.String()[:16]))
}
