package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odontoforense/odonto-legal-api/config"
	"github.com/odontoforense/odonto-legal-api/databases"
	"github.com/odontoforense/odonto-legal-api/models"
)

// Perito exported for testing purposes
type Perito struct {
	DB  databases.PeritoDatabase
	CDB databases.CasoDatabase
}

// PeritoByIDHandler returns a perito by ID
func (p Perito) PeritoByIDHandler(w http.ResponseWriter, r *http.Request) {
	peritoID := mux.Vars(r)["perito_id"]

	dbResp, err := p.DB.FindOne(context.Background(), bson.M{"_id": peritoID})
	if err != nil {
		config.ErrorStatus("failed to get perito by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// PeritosByCaseIDHandler returns all peritos assigned to the given caso
func (p Perito) PeritosByCaseIDHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	dbResp, err := p.DB.Find(context.TODO(), bson.M{"casoID": caseID})
	if err != nil {
		config.ErrorStatus("failed to get peritos by caso ID", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Perito{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CreatePeritoHandler assigns a perito to a caso
func (p Perito) CreatePeritoHandler(w http.ResponseWriter, r *http.Request) {
	var perito models.Perito
	if err := json.NewDecoder(r.Body).Decode(&perito); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if perito.Nome == "" {
		config.ErrorStatus("nome is required", http.StatusBadRequest, w, fmt.Errorf("missing nome"))
		return
	}
	if perito.CaseID == "" {
		config.ErrorStatus("casoID is required", http.StatusBadRequest, w, fmt.Errorf("missing casoID"))
		return
	}
	if _, err := p.CDB.FindOne(r.Context(), bson.M{"_id": perito.CaseID}); err != nil {
		config.ErrorStatus("caso not found", http.StatusNotFound, w, err)
		return
	}

	if perito.ID == "" {
		perito.ID = uuid.New().String()
	}
	perito.CreatedAt = primitive.NewDateTimeFromTime(time.Now())

	if _, err := p.DB.InsertOne(context.Background(), perito); err != nil {
		config.ErrorStatus("failed to insert perito", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(perito)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// UpdatePeritoHandler replaces the perito fields by full object replace
func (p Perito) UpdatePeritoHandler(w http.ResponseWriter, r *http.Request) {
	peritoID := mux.Vars(r)["perito_id"]

	var perito models.Perito
	if err := json.NewDecoder(r.Body).Decode(&perito); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	err := p.DB.UpdateOne(context.Background(),
		bson.M{"_id": peritoID},
		bson.M{"$set": bson.M{
			"nome":          perito.Nome,
			"especialidade": perito.Especialidade,
			"registro":      perito.Registro,
			"dataInicio":    perito.DataInicio,
			"dataFim":       perito.DataFim,
		}},
	)
	if err != nil {
		config.ErrorStatus("failed to update perito", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(fmt.Sprintf(`{"updated": "%s"}`, peritoID)))
}

// DeletePeritoHandler removes a perito from a caso
func (p Perito) DeletePeritoHandler(w http.ResponseWriter, r *http.Request) {
	peritoID := mux.Vars(r)["perito_id"]

	err := p.DB.DeleteOne(context.Background(), bson.M{"_id": peritoID})
	if err != nil {
		config.ErrorStatus("failed to delete perito", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(fmt.Sprintf(`{"deleted": "%s"}`, peritoID)))
}
