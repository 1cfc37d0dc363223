package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/odontoforense/odonto-legal-api/api/handlers"
	"github.com/odontoforense/odonto-legal-api/databases"
	mocksdb "github.com/odontoforense/odonto-legal-api/databases/mocks"
	"github.com/odontoforense/odonto-legal-api/models"
)

func TestEvidencia_CreateEvidenciaHandlerMissingTitulo(t *testing.T) {
	body, _ := json.Marshal(models.Evidencia{
		CaseID:      "caso-1",
		Descricao:   "Radiografia da arcada superior",
		Tipo:        models.EvidenceTypeImage,
		ColetadoPor: "Perito A",
		DataColeta:  "2025-03-10",
		Local:       "IML Central",
	})
	req, _ := http.NewRequest("POST", "/api/v1/evidence", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer abc123")

	// no mocks wired: validation must reject before any database access
	e := handlers.Evidencia{}

	rr := httptest.NewRecorder()
	http.HandlerFunc(e.CreateEvidenciaHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "titulo is required")
}

func TestEvidencia_CreateEvidenciaHandlerSuccess(t *testing.T) {
	body, _ := json.Marshal(models.Evidencia{
		CaseID:      "caso-1",
		Titulo:      "Radiografia panorâmica",
		Descricao:   "Radiografia da arcada superior",
		Tipo:        models.EvidenceTypeImage,
		ColetadoPor: "Perito A",
		DataColeta:  "2025-03-10",
		Local:       "IML Central",
	})
	req, _ := http.NewRequest("POST", "/api/v1/evidence", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}
	casoConn := &mocksdb.CollectionHelper{}
	evidenciaConn := &mocksdb.CollectionHelper{}
	singleResultHelper := &mocksdb.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil)
	casoConn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	evidenciaConn.On("InsertOne", mock.Anything, mock.Anything).Return(&mocksdb.InsertOneResultHelper{}, nil)
	db.On("Collection", "casos").Return(casoConn)
	db.On("Collection", "evidencias").Return(evidenciaConn)

	e := handlers.Evidencia{
		DB:  databases.NewEvidenciaDatabase(db),
		CDB: databases.NewCasoDatabase(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(e.CreateEvidenciaHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var created models.Evidencia
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.EvidenceTypeImage, created.Tipo)
}

func TestEvidencia_CreateEvidenciaHandlerUnknownTipo(t *testing.T) {
	body, _ := json.Marshal(models.Evidencia{
		CaseID:      "caso-1",
		Titulo:      "Filmagem",
		Descricao:   "desc",
		Tipo:        "video",
		ColetadoPor: "Perito A",
		DataColeta:  "2025-03-10",
		Local:       "IML Central",
	})
	req, _ := http.NewRequest("POST", "/api/v1/evidence", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer abc123")

	e := handlers.Evidencia{}

	rr := httptest.NewRecorder()
	http.HandlerFunc(e.CreateEvidenciaHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid evidencia")
}
