package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odontoforense/odonto-legal-api/config"
	"github.com/odontoforense/odonto-legal-api/databases"
	"github.com/odontoforense/odonto-legal-api/models"
)

// Evidencia exported for testing purposes
type Evidencia struct {
	DB  databases.EvidenciaDatabase
	CDB databases.CasoDatabase
}

// EvidenciaByIDHandler returns an evidencia by ID
func (e Evidencia) EvidenciaByIDHandler(w http.ResponseWriter, r *http.Request) {
	evidenciaID := mux.Vars(r)["evidence_id"]

	dbResp, err := e.DB.FindOne(context.Background(), bson.M{"_id": evidenciaID})
	if err != nil {
		config.ErrorStatus("failed to get evidencia by ID", http.StatusNotFound, w, err)
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

// EvidenciasByCaseIDHandler returns all evidencias owned by the given caso
func (e Evidencia) EvidenciasByCaseIDHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	dbResp, err := e.DB.Find(context.TODO(), bson.M{"casoID": caseID})
	if err != nil {
		config.ErrorStatus("failed to get evidencias by caso ID", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Evidencia{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CreateEvidenciaHandler creates an evidencia. All required fields are checked
// before any persistence happens.
func (e Evidencia) CreateEvidenciaHandler(w http.ResponseWriter, r *http.Request) {
	var evidencia models.Evidencia
	if err := json.NewDecoder(r.Body).Decode(&evidencia); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if err := evidencia.Validate(); err != nil {
		config.ErrorStatus("invalid evidencia", http.StatusBadRequest, w, err)
		return
	}
	if evidencia.CaseID == "" {
		config.ErrorStatus("casoID is required", http.StatusBadRequest, w, fmt.Errorf("missing casoID"))
		return
	}
	if _, err := e.CDB.FindOne(r.Context(), bson.M{"_id": evidencia.CaseID}); err != nil {
		config.ErrorStatus("caso not found", http.StatusNotFound, w, err)
		return
	}

	if evidencia.ID == "" {
		evidencia.ID = uuid.New().String()
	}
	evidencia.CriadoEm = primitive.NewDateTimeFromTime(time.Now())

	if _, err := e.DB.InsertOne(context.Background(), evidencia); err != nil {
		config.ErrorStatus("failed to insert evidencia", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(evidencia)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// UpdateEvidenciaHandler replaces the evidencia fields by full object replace
func (e Evidencia) UpdateEvidenciaHandler(w http.ResponseWriter, r *http.Request) {
	evidenciaID := mux.Vars(r)["evidence_id"]

	var evidencia models.Evidencia
	if err := json.NewDecoder(r.Body).Decode(&evidencia); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := evidencia.Validate(); err != nil {
		config.ErrorStatus("invalid evidencia", http.StatusBadRequest, w, err)
		return
	}

	err := e.DB.UpdateOne(context.Background(),
		bson.M{"_id": evidenciaID},
		bson.M{"$set": bson.M{
			"titulo":      evidencia.Titulo,
			"descricao":   evidencia.Descricao,
			"tipo":        evidencia.Tipo,
			"coletadoPor": evidencia.ColetadoPor,
			"dataColeta":  evidencia.DataColeta,
			"local":       evidencia.Local,
			"imagemURL":   evidencia.ImagemURL,
		}},
	)
	if err != nil {
		config.ErrorStatus("failed to update evidencia", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(fmt.Sprintf(`{"updated": "%s"}`, evidenciaID)))
}

// DeleteEvidenciaHandler deletes an evidencia by ID
func (e Evidencia) DeleteEvidenciaHandler(w http.ResponseWriter, r *http.Request) {
	evidenciaID := mux.Vars(r)["evidence_id"]

	err := e.DB.DeleteOne(context.Background(), bson.M{"_id": evidenciaID})
	if err != nil {
		config.ErrorStatus("failed to delete evidencia", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(fmt.Sprintf(`{"deleted": "%s"}`, evidenciaID)))
}

// UploadEvidenciaImageHandler accepts a multipart image, pushes it to
// Cloudinary and stores the returned secure URL on the evidencia
func (e Evidencia) UploadEvidenciaImageHandler(w http.ResponseWriter, r *http.Request) {
	// 10 MB limit for evidence images
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		config.ErrorStatus("failed to parse multipart form", http.StatusBadRequest, w, err)
		return
	}

	evidenciaID := r.FormValue("evidenciaID")
	if evidenciaID == "" {
		config.ErrorStatus("evidenciaID is required", http.StatusBadRequest, w, fmt.Errorf("missing evidenciaID"))
		return
	}

	file, _, err := r.FormFile("imagem")
	if err != nil {
		config.ErrorStatus("failed to read imagem from form", http.StatusBadRequest, w, err)
		return
	}
	defer file.Close()

	cld, err := cloudinary.NewFromParams(
		os.Getenv("CLOUDINARY_CLOUD_NAME"),
		os.Getenv("CLOUDINARY_API_KEY"),
		os.Getenv("CLOUDINARY_API_SECRET"),
	)
	if err != nil {
		config.ErrorStatus("failed to initialize cloudinary", http.StatusInternalServerError, w, err)
		return
	}

	uploadResp, err := cld.Upload.Upload(r.Context(), file, uploader.UploadParams{
		Folder:   "evidencias",
		PublicID: evidenciaID,
	})
	if err != nil {
		config.ErrorStatus("failed to upload imagem", http.StatusBadGateway, w, err)
		return
	}

	err = e.DB.UpdateOne(r.Context(),
		bson.M{"_id": evidenciaID},
		bson.M{"$set": bson.M{"imagemURL": uploadResp.SecureURL, "tipo": models.EvidenceTypeImage}},
	)
	if err != nil {
		config.ErrorStatus("failed to store imagem URL", http.StatusInternalServerError, w, err)
		return
	}

	b, _ := json.Marshal(map[string]string{"imagemURL": uploadResp.SecureURL})
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
