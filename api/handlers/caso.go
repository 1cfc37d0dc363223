package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/odontoforense/odonto-legal-api/config"
	"github.com/odontoforense/odonto-legal-api/databases"
	"github.com/odontoforense/odonto-legal-api/models"
)

// Caso exported for testing purposes
type Caso struct {
	DB databases.CasoDatabase
}

// CasoHandler returns all casos, newest first
func (c Caso) CasoHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		zap.S().Warnf(fmt.Sprintf("limit not set, using default of %v, err: %v", limit|10, err))
	}
	limit64 := int64(limit)
	page := getPage(r)
	skip64 := int64(page * limit)
	sort := bson.M{"createdAt": -1}
	dbResp, err := c.DB.Find(context.TODO(), bson.D{}, &options.FindOptions{Limit: &limit64, Skip: &skip64, Sort: sort})
	if err != nil {
		config.ErrorStatus("failed to get casos", http.StatusNotFound, w, err)
		return
	}
	// Because the frontend requires that the data elements inside models.Caso exist, if
	// len == 0 then we will just return an empty data object
	if len(dbResp) == 0 {
		dbResp = []models.Caso{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CasoByIDHandler returns a caso by ID
func (c Caso) CasoByIDHandler(w http.ResponseWriter, r *http.Request) {
	casoID := mux.Vars(r)["case_id"]

	zap.S().Debugf("case_id: %v", casoID)

	dbResp, err := c.DB.FindOne(context.Background(), bson.M{"_id": casoID})
	if err != nil {
		config.ErrorStatus("failed to get caso by ID", http.StatusNotFound, w, err)
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

// CreateCasoHandler creates a caso. Identifiers created offline by the client
// (local- prefix) are kept so the client can reconcile them later; otherwise a
// server identifier is issued.
func (c Caso) CreateCasoHandler(w http.ResponseWriter, r *http.Request) {
	var caso models.Caso
	if err := json.NewDecoder(r.Body).Decode(&caso); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if caso.Titulo == "" {
		config.ErrorStatus("titulo is required", http.StatusBadRequest, w, fmt.Errorf("missing titulo"))
		return
	}
	if caso.Status == "" {
		caso.Status = models.CaseStatusInProgress
	}
	if !models.ValidCaseStatus(caso.Status) {
		config.ErrorStatus("invalid status", http.StatusBadRequest, w, fmt.Errorf("unknown status %q", caso.Status))
		return
	}

	if caso.ID == "" {
		caso.ID = uuid.New().String()
	}
	caso.Version = 1
	caso.Normalize()
	now := primitive.NewDateTimeFromTime(time.Now())
	caso.CreatedAt = now
	caso.UpdatedAt = now

	if _, err := c.DB.InsertOne(context.Background(), caso); err != nil {
		config.ErrorStatus("failed to insert caso", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(caso)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// UpdateCasoHandler replaces the caso header fields. The request carries the
// version counter the client last saw; a mismatch means another writer got
// there first and is answered with 409 instead of silently dropping edits.
func (c Caso) UpdateCasoHandler(w http.ResponseWriter, r *http.Request) {
	casoID := mux.Vars(r)["case_id"]

	var caso models.Caso
	if err := json.NewDecoder(r.Body).Decode(&caso); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if caso.Status != "" && !models.ValidCaseStatus(caso.Status) {
		config.ErrorStatus("invalid status", http.StatusBadRequest, w, fmt.Errorf("unknown status %q", caso.Status))
		return
	}

	set := bson.M{
		"titulo":       caso.Titulo,
		"descricao":    caso.Descricao,
		"responsavel":  caso.Responsavel,
		"dataAbertura": caso.DataAbertura,
		"local":        caso.Local,
		"sexo":         caso.Sexo,
		"updatedAt":    primitive.NewDateTimeFromTime(time.Now()),
	}
	// an omitted status keeps the stored one; "" is not a legal status value
	if caso.Status != "" {
		set["status"] = caso.Status
	}

	matched, err := c.DB.UpdateVersioned(context.Background(), casoID, caso.Version, set)
	if err != nil {
		config.ErrorStatus("failed to update caso", http.StatusInternalServerError, w, err)
		return
	}
	if !matched {
		config.ErrorStatus("caso version conflict", http.StatusConflict, w, fmt.Errorf("version %d is stale", caso.Version))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(fmt.Sprintf(`{"updated": "%s"}`, casoID)))
}

// PatchCasoStatusHandler updates only the status of a caso
func (c Caso) PatchCasoStatusHandler(w http.ResponseWriter, r *http.Request) {
	casoID := mux.Vars(r)["case_id"]

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if !models.ValidCaseStatus(body.Status) {
		config.ErrorStatus("invalid status", http.StatusBadRequest, w, fmt.Errorf("unknown status %q", body.Status))
		return
	}

	err := c.DB.UpdateOne(context.Background(),
		bson.M{"_id": casoID},
		bson.M{
			"$set": bson.M{"status": body.Status, "updatedAt": primitive.NewDateTimeFromTime(time.Now())},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		config.ErrorStatus("failed to update caso status", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(fmt.Sprintf(`{"updated": "%s"}`, casoID)))
}

// DeleteCasoHandler deletes a caso by ID
func (c Caso) DeleteCasoHandler(w http.ResponseWriter, r *http.Request) {
	casoID := mux.Vars(r)["case_id"]

	err := c.DB.DeleteOne(context.Background(), bson.M{"_id": casoID})
	if err != nil {
		config.ErrorStatus("failed to delete caso", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(fmt.Sprintf(`{"deleted": "%s"}`, casoID)))
}

func getPage(r *http.Request) int {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		zap.S().Warnf("page not set, using default of 0")
		return 0
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		zap.S().Errorf(fmt.Sprintf("error parsing page number: %v", err))
		return 0
	}
	if page < 0 {
		zap.S().Warnf(fmt.Sprintf("cannot process page number less than 1. Got: %v", page))
		return 0
	}
	return page
}
