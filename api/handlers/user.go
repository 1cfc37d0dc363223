package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/odontoforense/odonto-legal-api/config"
	"github.com/odontoforense/odonto-legal-api/databases"
	"github.com/odontoforense/odonto-legal-api/models"
)

// User exposes user management endpoints
type User struct {
	DB databases.UserDatabase
}

type createUserRequest struct {
	Nome  string `json:"nome"`
	CPF   string `json:"cpf"`
	Email string `json:"email"`
	Senha string `json:"senha"`
	Role  string `json:"role"`
}

// UserCreateHandler creates a new user with a bcrypt-hashed password
func (u User) UserCreateHandler(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if req.Nome == "" {
		config.ErrorStatus("nome is required", http.StatusBadRequest, w, fmt.Errorf("missing nome"))
		return
	}
	if req.Senha == "" {
		config.ErrorStatus("senha is required", http.StatusBadRequest, w, fmt.Errorf("missing senha"))
		return
	}
	cpf, err := models.ValidateCPF(req.CPF)
	if err != nil {
		config.ErrorStatus("invalid cpf", http.StatusBadRequest, w, err)
		return
	}
	role := req.Role
	if role == "" {
		role = models.RoleAssistente
	}
	if !models.ValidRole(role) {
		config.ErrorStatus("invalid role", http.StatusBadRequest, w, fmt.Errorf("unknown role: %s", role))
		return
	}

	if existing, err := u.DB.FindOne(r.Context(), bson.M{"cpf": cpf}); err == nil && existing != nil {
		config.ErrorStatus("cpf already registered", http.StatusConflict, w, fmt.Errorf("cpf in use"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Senha), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	user := models.User{
		ID:        primitive.NewObjectID(),
		Nome:      req.Nome,
		CPF:       cpf,
		Email:     req.Email,
		Senha:     string(hash),
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := u.DB.InsertOne(r.Context(), user); err != nil {
		config.ErrorStatus("failed to insert user", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(user)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// UserHandler returns a user by ID
func (u User) UserHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}
	dbResp, err := u.DB.FindOne(r.Context(), bson.M{"_id": uID})
	if err != nil {
		config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, err)
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
