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
	"go.uber.org/zap"

	"github.com/odontoforense/odonto-legal-api/config"
	"github.com/odontoforense/odonto-legal-api/databases"
	"github.com/odontoforense/odonto-legal-api/models"
)

// Periciado exported for testing purposes
type Periciado struct {
	DB  databases.PericiadoDatabase
	CDB databases.CasoDatabase
}

// PericiadoByIDHandler returns a periciado by ID
func (p Periciado) PericiadoByIDHandler(w http.ResponseWriter, r *http.Request) {
	periciadoID := mux.Vars(r)["periciado_id"]

	zap.S().Debugf("periciado_id: %v", periciadoID)

	dbResp, err := p.DB.FindOne(context.Background(), bson.M{"_id": periciadoID})
	if err != nil {
		config.ErrorStatus("failed to get periciado by ID", http.StatusNotFound, w, err)
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

// PericiadosByCaseIDHandler returns all periciados owned by the given caso
func (p Periciado) PericiadosByCaseIDHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	dbResp, err := p.DB.Find(context.TODO(), bson.M{"casoID": caseID})
	if err != nil {
		config.ErrorStatus("failed to get periciados by caso ID", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Periciado{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CreatePericiadoHandler creates a periciado. The CPF must normalize to
// exactly 11 digits or the request is rejected before any persistence.
func (p Periciado) CreatePericiadoHandler(w http.ResponseWriter, r *http.Request) {
	var periciado models.Periciado
	if err := json.NewDecoder(r.Body).Decode(&periciado); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if err := periciado.Validate(); err != nil {
		config.ErrorStatus("invalid periciado", http.StatusBadRequest, w, err)
		return
	}
	if periciado.CaseID == "" {
		config.ErrorStatus("casoID is required", http.StatusBadRequest, w, fmt.Errorf("missing casoID"))
		return
	}
	if _, err := p.CDB.FindOne(r.Context(), bson.M{"_id": periciado.CaseID}); err != nil {
		config.ErrorStatus("caso not found", http.StatusNotFound, w, err)
		return
	}

	if periciado.ID == "" {
		periciado.ID = uuid.New().String()
	}
	if periciado.Odontograma == nil {
		periciado.Odontograma = []models.OdontogramaItem{}
	}
	now := primitive.NewDateTimeFromTime(time.Now())
	periciado.CreatedAt = now
	periciado.UpdatedAt = now

	if _, err := p.DB.InsertOne(context.Background(), periciado); err != nil {
		config.ErrorStatus("failed to insert periciado", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(periciado)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// UpdatePericiadoHandler replaces the periciado fields by full object replace.
// The odontograma is not touched here; it has its own sub-resource.
func (p Periciado) UpdatePericiadoHandler(w http.ResponseWriter, r *http.Request) {
	periciadoID := mux.Vars(r)["periciado_id"]

	var periciado models.Periciado
	if err := json.NewDecoder(r.Body).Decode(&periciado); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := periciado.Validate(); err != nil {
		config.ErrorStatus("invalid periciado", http.StatusBadRequest, w, err)
		return
	}

	err := p.DB.UpdateOne(context.Background(),
		bson.M{"_id": periciadoID},
		bson.M{"$set": bson.M{
			"nome":           periciado.Nome,
			"dataNascimento": periciado.DataNascimento,
			"sexo":           periciado.Sexo,
			"etnia":          periciado.Etnia,
			"endereco":       periciado.Endereco,
			"cpf":            periciado.CPF,
			"updatedAt":      primitive.NewDateTimeFromTime(time.Now()),
		}},
	)
	if err != nil {
		config.ErrorStatus("failed to update periciado", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(fmt.Sprintf(`{"updated": "%s"}`, periciadoID)))
}

// DeletePericiadoHandler deletes a periciado by ID
func (p Periciado) DeletePericiadoHandler(w http.ResponseWriter, r *http.Request) {
	periciadoID := mux.Vars(r)["periciado_id"]

	err := p.DB.DeleteOne(context.Background(), bson.M{"_id": periciadoID})
	if err != nil {
		config.ErrorStatus("failed to delete periciado", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(fmt.Sprintf(`{"deleted": "%s"}`, periciadoID)))
}

// OdontogramaHandler returns the dental chart of a periciado as a list of
// {numero, descricao} pairs
func (p Periciado) OdontogramaHandler(w http.ResponseWriter, r *http.Request) {
	periciadoID := mux.Vars(r)["periciado_id"]

	dbResp, err := p.DB.FindOne(context.Background(), bson.M{"_id": periciadoID})
	if err != nil {
		config.ErrorStatus("failed to get periciado by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp.Odontograma)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ReplaceOdontogramaHandler replaces the whole dental chart of a periciado.
// There is no incremental patch: the client always sends the full pair list.
func (p Periciado) ReplaceOdontogramaHandler(w http.ResponseWriter, r *http.Request) {
	periciadoID := mux.Vars(r)["periciado_id"]

	var items []models.OdontogramaItem
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if items == nil {
		items = []models.OdontogramaItem{}
	}
	if err := models.ValidateOdontograma(items); err != nil {
		config.ErrorStatus("invalid odontograma", http.StatusBadRequest, w, err)
		return
	}

	matched, err := p.DB.ReplaceOdontograma(context.Background(), periciadoID, items)
	if err != nil {
		config.ErrorStatus("failed to replace odontograma", http.StatusInternalServerError, w, err)
		return
	}
	if !matched {
		config.ErrorStatus("periciado not found", http.StatusNotFound, w, fmt.Errorf("no periciado with id %s", periciadoID))
		return
	}

	b, err := json.Marshal(items)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
