package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/basic"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/odontoforense/odonto-legal-api/databases"
	"github.com/odontoforense/odonto-legal-api/models"
)

// MiddlewareDB is a struct that holds the databases used by the auth layer
type MiddlewareDB struct {
	DB  databases.UserDatabase
	TDB databases.TokenDatabase
}

var authenticator auth.Authenticator
var cache store.Cache

// Middleware adds bearer token authentication around accessing the routes
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		user, err := authenticator.Authenticate(r)
		if err != nil {
			zap.S().Errorw("unauthorized",
				"url", r.URL)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}
		zap.S().Debugf("User %s Authenticated\n", user.UserName())
		next.ServeHTTP(w, r)
	})
}

type loginRequest struct {
	CPF   string `json:"cpf"`
	Senha string `json:"senha"`
}

type loginResponse struct {
	Token string                `json:"token"`
	User  models.UserProjection `json:"user"`
}

// Login authenticates a user by CPF and password and issues a bearer token.
// The CPF is normalized before any lookup; a malformed CPF is rejected with
// no database access. The returned user object is the denormalized display
// projection the client caches locally.
func (m MiddlewareDB) Login(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid request body"}`, http.StatusBadRequest)
		return
	}

	cpf, err := models.ValidateCPF(req.CPF)
	if err != nil {
		http.Error(w, `{"error": "cpf must contain exactly 11 digits"}`, http.StatusBadRequest)
		return
	}

	user, err := m.DB.FindOne(r.Context(), bson.M{"cpf": cpf})
	if err != nil {
		http.Error(w, `{"error": "invalid credentials"}`, http.StatusUnauthorized)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Senha), []byte(req.Senha)); err != nil {
		http.Error(w, `{"error": "invalid credentials"}`, http.StatusUnauthorized)
		return
	}

	token := uuid.New().String()
	authUser := auth.NewDefaultUser(cpf, user.ID.Hex(), nil, nil)
	tokenStrategy := authenticator.Strategy(bearer.CachedStrategyKey)
	auth.Append(tokenStrategy, token, authUser, r)

	_, err = m.TDB.InsertOne(r.Context(), models.Token{
		Token:     token,
		CPF:       cpf,
		UserID:    user.ID.Hex(),
		CreatedAt: time.Now(),
	})
	if err != nil {
		zap.S().Errorw("failed to persist token", "error", err)
	}

	b, err := json.Marshal(loginResponse{Token: token, User: user.Projection()})
	if err != nil {
		http.Error(w, `{"error": "failed to marshal response"}`, http.StatusInternalServerError)
		return
	}
	w.Write(b)
}

// SetupGoGuardian sets up the go-guardian middleware
func (m MiddlewareDB) SetupGoGuardian() {
	authenticator = auth.New()
	cache = store.NewFIFO(context.Background(), time.Hour*24)
	basicStrategy := basic.New(m.ValidateUser, cache)
	tokenStrategy := bearer.New(bearer.NoOpAuthenticate, cache)

	authenticator.EnableStrategy(basic.StrategyKey, basicStrategy)
	authenticator.EnableStrategy(bearer.CachedStrategyKey, tokenStrategy)
}

// ValidateUser validates a user by CPF and password for the basic strategy
func (m MiddlewareDB) ValidateUser(ctx context.Context, r *http.Request, cpf, password string) (auth.Info, error) {
	normalized, err := models.ValidateCPF(cpf)
	if err != nil {
		return nil, err
	}

	user, err := m.DB.FindOne(ctx, bson.M{"cpf": normalized})
	if err != nil {
		return nil, fmt.Errorf("no matching cpf found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Senha), []byte(password)); err != nil {
		return nil, fmt.Errorf("failed to compare password")
	}

	return auth.NewDefaultUser(normalized, user.ID.Hex(), nil, nil), nil
}

// RevokeToken revokes a token
func (m MiddlewareDB) RevokeToken(w http.ResponseWriter, r *http.Request) {
	reqToken := r.Header.Get("Authorization")
	splitToken := strings.Split(reqToken, "Bearer ")
	if len(splitToken) < 2 {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "missing bearer token"}`))
		return
	}
	reqToken = splitToken[1]

	tokenStrategy := authenticator.Strategy(bearer.CachedStrategyKey)
	auth.Revoke(tokenStrategy, reqToken, r)
	if err := m.TDB.DeleteOne(r.Context(), bson.M{"token": reqToken}); err != nil {
		zap.S().Warnw("failed to delete persisted token", "error", err)
	}
	body := fmt.Sprintf(`{"revoked token": "%s"}`, reqToken)
	w.Write([]byte(body))
}
