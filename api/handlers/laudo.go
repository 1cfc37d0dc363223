package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/odontoforense/odonto-legal-api/config"
	"github.com/odontoforense/odonto-legal-api/databases"
	"github.com/odontoforense/odonto-legal-api/models"
	"github.com/odontoforense/odonto-legal-api/pdf"
)

// Laudo handles laudo-related requests
type Laudo struct {
	DB  databases.LaudoDatabase
	UDB databases.UserDatabase
	CDB databases.CasoDatabase
}

// CreateLaudoHandler creates a new laudo
func (l Laudo) CreateLaudoHandler(w http.ResponseWriter, r *http.Request) {
	var laudo models.Laudo

	if err := json.NewDecoder(r.Body).Decode(&laudo); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if laudo.Titulo == "" {
		config.ErrorStatus("titulo is required", http.StatusBadRequest, w, fmt.Errorf("missing titulo"))
		return
	}
	if laudo.CaseID == "" {
		config.ErrorStatus("casoID is required", http.StatusBadRequest, w, fmt.Errorf("missing casoID"))
		return
	}

	laudo.ID = uuid.New().String()
	laudo.CriadoEm = primitive.NewDateTimeFromTime(time.Now())
	// a laudo is always born unsigned, whatever the request says
	laudo.Assinado = false
	laudo.SignatureToken = ""
	laudo.PDFDisponivel = false

	if _, err := l.DB.InsertOne(context.Background(), laudo); err != nil {
		config.ErrorStatus("failed to insert laudo", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(laudo)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// LaudoByIDHandler returns a laudo by ID
func (l Laudo) LaudoByIDHandler(w http.ResponseWriter, r *http.Request) {
	laudoID := mux.Vars(r)["laudo_id"]

	dbResp, err := l.DB.FindOne(context.Background(), bson.M{"_id": laudoID})
	if err != nil {
		config.ErrorStatus("failed to get laudo by ID", http.StatusNotFound, w, err)
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

// LaudosByCaseIDHandler returns all laudos of the given caso
func (l Laudo) LaudosByCaseIDHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	dbResp, err := l.DB.Find(context.TODO(), bson.M{"casoID": caseID})
	if err != nil {
		config.ErrorStatus("failed to get laudos by caso ID", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Laudo{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type signRequest struct {
	UserID string `json:"userID"`
}

// SignLaudoHandler signs a laudo. Signing is one-way: the update only matches
// an unsigned laudo, so a second sign attempt returns 409. The signature is an
// HS256 token binding the signer to a digest of the body text at signing time.
func (l Laudo) SignLaudoHandler(w http.ResponseWriter, r *http.Request) {
	laudoID := mux.Vars(r)["laudo_id"]

	var req signRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.UserID == "" {
		config.ErrorStatus("userID is required", http.StatusBadRequest, w, fmt.Errorf("missing userID"))
		return
	}

	uID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}
	user, err := l.UDB.FindOne(r.Context(), bson.M{"_id": uID})
	if err != nil {
		config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, err)
		return
	}

	laudo, err := l.DB.FindOne(r.Context(), bson.M{"_id": laudoID})
	if err != nil {
		config.ErrorStatus("failed to get laudo by ID", http.StatusNotFound, w, err)
		return
	}
	if laudo.Assinado {
		config.ErrorStatus("laudo is already signed", http.StatusConflict, w, fmt.Errorf("laudo %s is signed", laudoID))
		return
	}

	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		config.ErrorStatus("server misconfigured", http.StatusInternalServerError, w, fmt.Errorf("JWT_SECRET is not set"))
		return
	}

	digest := sha256.Sum256([]byte(laudo.Texto))
	claims := jwt.MapClaims{
		"sub":    laudoID,
		"signer": user.ID.Hex(),
		"digest": hex.EncodeToString(digest[:]),
		"typ":    "laudo-signature",
		"iat":    time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret)
	if err != nil {
		config.ErrorStatus("failed to generate signature token", http.StatusInternalServerError, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	matched, err := l.DB.MarkSigned(r.Context(), laudoID, bson.M{
		"assinadoPor":    user.Nome,
		"signatureToken": signed,
		"assinadoEm":     now,
	})
	if err != nil {
		config.ErrorStatus("failed to sign laudo", http.StatusInternalServerError, w, err)
		return
	}
	if !matched {
		// someone signed between our read and the update
		config.ErrorStatus("laudo is already signed", http.StatusConflict, w, fmt.Errorf("laudo %s is signed", laudoID))
		return
	}

	go l.sendSignatureReceipt(user, laudo)

	b, _ := json.Marshal(map[string]interface{}{
		"assinado":       true,
		"assinadoPor":    user.Nome,
		"signatureToken": signed,
	})
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// sendSignatureReceipt emails the signer a receipt. Best effort: failures are
// logged, never surfaced to the signing request.
func (l Laudo) sendSignatureReceipt(user *models.User, laudo *models.Laudo) {
	if user.Email == "" || os.Getenv("SENDGRID_API_KEY") == "" {
		return
	}
	from := mail.NewEmail("Odonto Legal", os.Getenv("SENDGRID_FROM_EMAIL"))
	to := mail.NewEmail(user.Nome, user.Email)
	subject := fmt.Sprintf("Laudo assinado: %s", laudo.Titulo)
	plain := fmt.Sprintf("O laudo %q do caso %s foi assinado por %s.", laudo.Titulo, laudo.CaseID, user.Nome)
	message := mail.NewSingleEmail(from, subject, to, plain, plain)

	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	response, err := client.Send(message)
	if err != nil {
		zap.S().Errorw("failed to send signature receipt", "error", err, "to", user.Email)
		return
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body, "to", user.Email)
	}
}

// GenerateLaudoPDFHandler renders the laudo to PDF and marks it available.
// An unsigned laudo can be rendered; the PDF carries an explicit unsigned
// marker in that case.
func (l Laudo) GenerateLaudoPDFHandler(w http.ResponseWriter, r *http.Request) {
	laudoID := mux.Vars(r)["laudo_id"]

	laudo, err := l.DB.FindOne(r.Context(), bson.M{"_id": laudoID})
	if err != nil {
		config.ErrorStatus("failed to get laudo by ID", http.StatusNotFound, w, err)
		return
	}
	caso, err := l.CDB.FindOne(r.Context(), bson.M{"_id": laudo.CaseID})
	if err != nil {
		config.ErrorStatus("failed to get caso by ID", http.StatusNotFound, w, err)
		return
	}

	doc, err := pdf.RenderLaudo(laudo, caso)
	if err != nil {
		config.ErrorStatus("failed to render laudo pdf", http.StatusInternalServerError, w, err)
		return
	}

	err = l.DB.UpdateOne(r.Context(), bson.M{"_id": laudoID}, bson.M{"$set": bson.M{"pdfDisponivel": true}})
	if err != nil {
		config.ErrorStatus("failed to mark pdf available", http.StatusInternalServerError, w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

// DownloadLaudoPDFHandler streams a fresh render of the laudo PDF
func (l Laudo) DownloadLaudoPDFHandler(w http.ResponseWriter, r *http.Request) {
	laudoID := mux.Vars(r)["laudo_id"]

	laudo, err := l.DB.FindOne(r.Context(), bson.M{"_id": laudoID})
	if err != nil {
		config.ErrorStatus("failed to get laudo by ID", http.StatusNotFound, w, err)
		return
	}
	if !laudo.PDFDisponivel {
		config.ErrorStatus("pdf not generated for laudo", http.StatusNotFound, w, fmt.Errorf("laudo %s has no pdf", laudoID))
		return
	}
	caso, err := l.CDB.FindOne(r.Context(), bson.M{"_id": laudo.CaseID})
	if err != nil {
		config.ErrorStatus("failed to get caso by ID", http.StatusNotFound, w, err)
		return
	}

	doc, err := pdf.RenderLaudo(laudo, caso)
	if err != nil {
		config.ErrorStatus("failed to render laudo pdf", http.StatusInternalServerError, w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="laudo-%s.pdf"`, laudoID))
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}
