package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/odontoforense/odonto-legal-api/models"
)

// DefaultTimeout bounds every remote call. One policy for all endpoints, not
// a per-screen special case.
const DefaultTimeout = 5 * time.Second

// ErrUnauthorized is returned when the backend rejects the bearer token. The
// token has already been evicted from the store; the caller redirects to login.
var ErrUnauthorized = errors.New("client: unauthorized")

// ErrVersionConflict is returned when a caso update carries a stale version.
var ErrVersionConflict = errors.New("client: version conflict")

// APIError is a non-2xx response surfaced to the caller.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("client: api status %d: %s", e.Status, e.Message)
}

// Remote issues authenticated calls against the backend. The bearer token is
// read from the store on every request; there is no in-memory token cache.
type Remote struct {
	BaseURL string
	Store   Store
	HTTP    *http.Client
	Timeout time.Duration
}

// NewRemote creates a remote client over the given store.
func NewRemote(baseURL string, store Store) *Remote {
	return &Remote{
		BaseURL: baseURL,
		Store:   store,
		HTTP:    &http.Client{},
		Timeout: DefaultTimeout,
	}
}

func (r *Remote) timeout() time.Duration {
	if r.Timeout > 0 {
		return r.Timeout
	}
	return DefaultTimeout
}

// do runs one request with the uniform timeout, attaching the stored bearer
// token and decoding the JSON response into out (when out is non-nil).
func (r *Remote) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	token, ok, err := r.Store.Get(ctx, KeyToken)
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	if ok && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := r.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		r.evictToken(ctx)
		return ErrUnauthorized
	}
	if resp.StatusCode == http.StatusConflict {
		return ErrVersionConflict
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// evictToken removes both the namespaced token key and the legacy key. Best
// effort: a failed eviction is logged, the 401 still propagates.
func (r *Remote) evictToken(ctx context.Context) {
	if err := r.Store.Remove(ctx, KeyToken, legacyTokenKey); err != nil {
		zap.S().Errorw("failed to evict token", "error", err)
	}
}

func readErrorMessage(body io.Reader) string {
	var e models.ErrorMessageResponse
	if err := json.NewDecoder(body).Decode(&e); err != nil {
		return "unexpected response"
	}
	if e.Response.Message != "" {
		return e.Response.Message
	}
	return "unexpected response"
}

// LoginResult is the backend's login payload: the bearer token plus the
// denormalized user display projection.
type LoginResult struct {
	Token string                `json:"token"`
	User  models.UserProjection `json:"user"`
}

// Login authenticates with CPF and password. It does not persist anything;
// the session manager owns the store writes.
func (r *Remote) Login(ctx context.Context, cpf, senha string) (*LoginResult, error) {
	cpf, err := models.ValidateCPF(cpf)
	if err != nil {
		return nil, err
	}
	var res LoginResult
	if err := r.do(ctx, http.MethodPost, "/api/v1/auth/login", map[string]string{"cpf": cpf, "senha": senha}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Logout revokes the current token server-side.
func (r *Remote) Logout(ctx context.Context) error {
	return r.do(ctx, http.MethodDelete, "/api/v1/auth/logout", nil, nil)
}

// ListCasos fetches the case list.
func (r *Remote) ListCasos(ctx context.Context) ([]models.Caso, error) {
	var casos []models.Caso
	if err := r.do(ctx, http.MethodGet, "/api/v1/cases", nil, &casos); err != nil {
		return nil, err
	}
	for i := range casos {
		casos[i].Normalize()
	}
	return casos, nil
}

// GetCaso fetches one caso by ID.
func (r *Remote) GetCaso(ctx context.Context, id string) (*models.Caso, error) {
	var caso models.Caso
	if err := r.do(ctx, http.MethodGet, "/api/v1/case/"+url.PathEscape(id), nil, &caso); err != nil {
		return nil, err
	}
	caso.Normalize()
	return &caso, nil
}

// CreateCaso pushes a new caso and returns the server's record, which carries
// the server-issued identifier when the local one was offline-generated.
func (r *Remote) CreateCaso(ctx context.Context, caso models.Caso) (*models.Caso, error) {
	var created models.Caso
	if err := r.do(ctx, http.MethodPost, "/api/v1/case", caso, &created); err != nil {
		return nil, err
	}
	created.Normalize()
	return &created, nil
}

// UpdateCaso pushes a full caso replace. The caso's Version must match the
// server's or ErrVersionConflict is returned.
func (r *Remote) UpdateCaso(ctx context.Context, caso models.Caso) error {
	return r.do(ctx, http.MethodPut, "/api/v1/case/"+url.PathEscape(caso.ID), caso, nil)
}

// DeleteCaso removes a caso.
func (r *Remote) DeleteCaso(ctx context.Context, id string) error {
	return r.do(ctx, http.MethodDelete, "/api/v1/case/"+url.PathEscape(id), nil, nil)
}

// CreatePericiado pushes a new periciado.
func (r *Remote) CreatePericiado(ctx context.Context, p models.Periciado) (*models.Periciado, error) {
	var created models.Periciado
	if err := r.do(ctx, http.MethodPost, "/api/v1/periciado", p, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdatePericiado pushes a full periciado replace.
func (r *Remote) UpdatePericiado(ctx context.Context, p models.Periciado) error {
	return r.do(ctx, http.MethodPut, "/api/v1/periciado/"+url.PathEscape(p.ID), p, nil)
}

// DeletePericiado removes a periciado.
func (r *Remote) DeletePericiado(ctx context.Context, id string) error {
	return r.do(ctx, http.MethodDelete, "/api/v1/periciado/"+url.PathEscape(id), nil, nil)
}

// GetOdontograma fetches a periciado's dental chart.
func (r *Remote) GetOdontograma(ctx context.Context, periciadoID string) ([]models.OdontogramaItem, error) {
	var items []models.OdontogramaItem
	if err := r.do(ctx, http.MethodGet, "/api/v1/periciado/"+url.PathEscape(periciadoID)+"/odontograma", nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.OdontogramaItem{}
	}
	return items, nil
}

// ReplaceOdontograma replaces a periciado's dental chart wholesale.
func (r *Remote) ReplaceOdontograma(ctx context.Context, periciadoID string, items []models.OdontogramaItem) error {
	if items == nil {
		items = []models.OdontogramaItem{}
	}
	return r.do(ctx, http.MethodPatch, "/api/v1/periciado/"+url.PathEscape(periciadoID)+"/odontograma", items, nil)
}

// CreateEvidencia pushes a new evidencia.
func (r *Remote) CreateEvidencia(ctx context.Context, e models.Evidencia) (*models.Evidencia, error) {
	var created models.Evidencia
	if err := r.do(ctx, http.MethodPost, "/api/v1/evidence", e, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateEvidencia pushes a full evidencia replace.
func (r *Remote) UpdateEvidencia(ctx context.Context, e models.Evidencia) error {
	return r.do(ctx, http.MethodPut, "/api/v1/evidence/"+url.PathEscape(e.ID), e, nil)
}

// DeleteEvidencia removes an evidencia.
func (r *Remote) DeleteEvidencia(ctx context.Context, id string) error {
	return r.do(ctx, http.MethodDelete, "/api/v1/evidence/"+url.PathEscape(id), nil, nil)
}

// CreatePerito pushes a new perito assignment.
func (r *Remote) CreatePerito(ctx context.Context, p models.Perito) (*models.Perito, error) {
	var created models.Perito
	if err := r.do(ctx, http.MethodPost, "/api/v1/perito", p, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeletePerito removes a perito assignment.
func (r *Remote) DeletePerito(ctx context.Context, id string) error {
	return r.do(ctx, http.MethodDelete, "/api/v1/perito/"+url.PathEscape(id), nil, nil)
}

// CreateLaudo pushes a new laudo.
func (r *Remote) CreateLaudo(ctx context.Context, l models.Laudo) (*models.Laudo, error) {
	var created models.Laudo
	if err := r.do(ctx, http.MethodPost, "/api/v1/laudo", l, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// SignLaudo signs a laudo as the given user. A laudo already signed surfaces
// as an APIError with status 409.
func (r *Remote) SignLaudo(ctx context.Context, laudoID, userID string) error {
	err := r.do(ctx, http.MethodPost, "/api/v1/laudo/"+url.PathEscape(laudoID)+"/sign", map[string]string{"userID": userID}, nil)
	if errors.Is(err, ErrVersionConflict) {
		// the sign endpoint reuses 409 for "already signed"
		return &APIError{Status: http.StatusConflict, Message: "laudo is already signed"}
	}
	return err
}

// DashboardSummary fetches the dashboard breakdowns with optional filters.
func (r *Remote) DashboardSummary(ctx context.Context, start, end, sexo, etnia string) (*models.DashboardSummary, error) {
	q := url.Values{}
	if start != "" {
		q.Set("start", start)
	}
	if end != "" {
		q.Set("end", end)
	}
	if sexo != "" {
		q.Set("sexo", sexo)
	}
	if etnia != "" {
		q.Set("etnia", etnia)
	}
	path := "/api/v1/dashboard/summary"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var summary models.DashboardSummary
	if err := r.do(ctx, http.MethodGet, path, nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
