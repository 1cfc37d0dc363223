package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/odontoforense/odonto-legal-api/models"
)

// ErrCaseNotFound is returned when a mutation targets a caso absent from the
// stored list.
var ErrCaseNotFound = errors.New("client: caso not found")

// localIDPrefix marks identifiers generated on the device while offline. A
// server-issued identifier replaces the local one on push.
const localIDPrefix = "local-"

// Reconciler owns the stored case list and its nested collections. All
// mutations follow read list, locate caso, rewrite list, serialized by a
// mutex per caso identifier plus a list-level mutex around the storage
// read-modify-write, so two concurrent mutations can never lose each other's
// writes. Every committed mutation increments the caso's version counter;
// the remote push checks it and surfaces ErrVersionConflict on mismatch.
type Reconciler struct {
	store Store

	listMu sync.Mutex

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewReconciler creates a reconciler over the given store.
func NewReconciler(store Store) *Reconciler {
	return &Reconciler{
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

func (r *Reconciler) caseLock(caseID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[caseID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[caseID] = l
	}
	return l
}

// loadList reads the stored case list. An absent key means zero cases, not an
// error. Every caso is normalized so nested collections are never nil.
func (r *Reconciler) loadList(ctx context.Context) ([]models.Caso, error) {
	raw, ok, err := r.store.Get(ctx, KeyCasos)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.Caso{}, nil
	}
	var casos []models.Caso
	if err := json.Unmarshal([]byte(raw), &casos); err != nil {
		return nil, fmt.Errorf("decode case list: %w", err)
	}
	if casos == nil {
		casos = []models.Caso{}
	}
	for i := range casos {
		casos[i].Normalize()
	}
	return casos, nil
}

func (r *Reconciler) writeList(ctx context.Context, casos []models.Caso) error {
	b, err := json.Marshal(casos)
	if err != nil {
		return fmt.Errorf("encode case list: %w", err)
	}
	return r.store.Set(ctx, KeyCasos, string(b))
}

// rebuildDerivedCaches rewrites the per-case victim and evidence caches from
// the authoritative list entry. The caches are display accelerators only;
// a failed rebuild is logged and the mutation still counts as committed.
func (r *Reconciler) rebuildDerivedCaches(ctx context.Context, caso *models.Caso) {
	if b, err := json.Marshal(caso.Vitimas); err == nil {
		if err := r.store.Set(ctx, CaseVitimasKey(caso.ID), string(b)); err != nil {
			zap.S().Errorw("failed to rebuild victim cache", "casoID", caso.ID, "error", err)
		}
	}
	if b, err := json.Marshal(caso.Evidencias); err == nil {
		if err := r.store.Set(ctx, CaseEvidenciasKey(caso.ID), string(b)); err != nil {
			zap.S().Errorw("failed to rebuild evidence cache", "casoID", caso.ID, "error", err)
		}
	}
}

// LoadCasos returns the stored case list, newest first.
func (r *Reconciler) LoadCasos(ctx context.Context) ([]models.Caso, error) {
	r.listMu.Lock()
	defer r.listMu.Unlock()
	return r.loadList(ctx)
}

// LoadCaso returns one caso by identifier.
func (r *Reconciler) LoadCaso(ctx context.Context, caseID string) (*models.Caso, error) {
	casos, err := r.LoadCasos(ctx)
	if err != nil {
		return nil, err
	}
	for i := range casos {
		if casos[i].ID == caseID {
			return &casos[i], nil
		}
	}
	return nil, ErrCaseNotFound
}

// CreateCaso validates and stores a new caso at the head of the list. A caso
// created offline gets a local- prefixed identifier until the next push.
func (r *Reconciler) CreateCaso(ctx context.Context, caso models.Caso) (*models.Caso, error) {
	if strings.TrimSpace(caso.Titulo) == "" {
		return nil, errors.New("client: titulo is required")
	}
	if caso.Status == "" {
		caso.Status = models.CaseStatusInProgress
	}
	if !models.ValidCaseStatus(caso.Status) {
		return nil, fmt.Errorf("client: invalid status: %s", caso.Status)
	}
	if caso.ID == "" {
		caso.ID = fmt.Sprintf("%s%d-%s", localIDPrefix, time.Now().UnixMilli(), uuid.New().String()[:8])
	}
	if caso.DataAbertura == "" {
		caso.DataAbertura = time.Now().Format(time.RFC3339)
	}
	caso.Version = 1
	caso.Normalize()

	r.listMu.Lock()
	defer r.listMu.Unlock()

	casos, err := r.loadList(ctx)
	if err != nil {
		return nil, err
	}
	for i := range casos {
		if casos[i].ID == caso.ID {
			return nil, fmt.Errorf("client: duplicate caso id: %s", caso.ID)
		}
	}
	casos = append([]models.Caso{caso}, casos...)
	if err := r.writeList(ctx, casos); err != nil {
		return nil, err
	}
	r.rebuildDerivedCaches(ctx, &caso)
	return &caso, nil
}

// DeleteCaso removes a caso and its derived caches.
func (r *Reconciler) DeleteCaso(ctx context.Context, caseID string) error {
	l := r.caseLock(caseID)
	l.Lock()
	defer l.Unlock()
	r.listMu.Lock()
	defer r.listMu.Unlock()

	casos, err := r.loadList(ctx)
	if err != nil {
		return err
	}
	kept := casos[:0]
	found := false
	for _, c := range casos {
		if c.ID == caseID {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return ErrCaseNotFound
	}
	if err := r.writeList(ctx, kept); err != nil {
		return err
	}
	if err := r.store.Remove(ctx, CaseVitimasKey(caseID), CaseEvidenciasKey(caseID)); err != nil {
		zap.S().Errorw("failed to drop derived caches", "casoID", caseID, "error", err)
	}
	return nil
}

// mutateCaso runs fn against the caso with the given identifier under the
// case and list locks, bumps the version and commits the rewritten list.
// Storage failures leave the stored state untouched; there is no partial
// commit.
func (r *Reconciler) mutateCaso(ctx context.Context, caseID string, fn func(*models.Caso) error) (*models.Caso, error) {
	l := r.caseLock(caseID)
	l.Lock()
	defer l.Unlock()
	r.listMu.Lock()
	defer r.listMu.Unlock()

	casos, err := r.loadList(ctx)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i := range casos {
		if casos[i].ID == caseID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrCaseNotFound
	}
	caso := &casos[idx]
	if err := fn(caso); err != nil {
		return nil, err
	}
	caso.Version++
	if err := r.writeList(ctx, casos); err != nil {
		return nil, err
	}
	r.rebuildDerivedCaches(ctx, caso)
	return caso, nil
}

// UpdateCasoHeader replaces the caso's own fields, leaving the nested
// collections and version bookkeeping to the reconciler.
func (r *Reconciler) UpdateCasoHeader(ctx context.Context, caseID string, header models.Caso) (*models.Caso, error) {
	if strings.TrimSpace(header.Titulo) == "" {
		return nil, errors.New("client: titulo is required")
	}
	if header.Status != "" && !models.ValidCaseStatus(header.Status) {
		return nil, fmt.Errorf("client: invalid status: %s", header.Status)
	}
	return r.mutateCaso(ctx, caseID, func(c *models.Caso) error {
		c.Titulo = header.Titulo
		c.Descricao = header.Descricao
		c.Responsavel = header.Responsavel
		c.Local = header.Local
		c.Sexo = header.Sexo
		c.DataAbertura = header.DataAbertura
		if header.Status != "" {
			c.Status = header.Status
		}
		return nil
	})
}

// AddVitima validates and appends a periciado to the caso. CPF must normalize
// to 11 digits before any storage I/O happens.
func (r *Reconciler) AddVitima(ctx context.Context, caseID string, v models.Periciado) (*models.Caso, error) {
	v.CaseID = caseID
	v.CPF = models.NormalizeCPF(v.CPF)
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if v.ID == "" {
		v.ID = fmt.Sprintf("%s%d-%s", localIDPrefix, time.Now().UnixMilli(), uuid.New().String()[:8])
	}
	if v.Odontograma == nil {
		v.Odontograma = []models.OdontogramaItem{}
	}
	return r.mutateCaso(ctx, caseID, func(c *models.Caso) error {
		c.Vitimas = append(c.Vitimas, v)
		return nil
	})
}

// ReplaceVitima replaces the periciado with the same identifier.
func (r *Reconciler) ReplaceVitima(ctx context.Context, caseID string, v models.Periciado) (*models.Caso, error) {
	v.CaseID = caseID
	v.CPF = models.NormalizeCPF(v.CPF)
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return r.mutateCaso(ctx, caseID, func(c *models.Caso) error {
		for i := range c.Vitimas {
			if c.Vitimas[i].ID == v.ID {
				if v.Odontograma == nil {
					v.Odontograma = c.Vitimas[i].Odontograma
				}
				c.Vitimas[i] = v
				return nil
			}
		}
		return fmt.Errorf("client: periciado not found: %s", v.ID)
	})
}

// RemoveVitima removes the periciado with the given identifier.
func (r *Reconciler) RemoveVitima(ctx context.Context, caseID, vitimaID string) (*models.Caso, error) {
	return r.mutateCaso(ctx, caseID, func(c *models.Caso) error {
		kept := c.Vitimas[:0]
		found := false
		for _, v := range c.Vitimas {
			if v.ID == vitimaID {
				found = true
				continue
			}
			kept = append(kept, v)
		}
		if !found {
			return fmt.Errorf("client: periciado not found: %s", vitimaID)
		}
		c.Vitimas = kept
		return nil
	})
}

// AddEvidencia validates and appends an evidencia to the caso. Required-field
// validation runs before any storage I/O.
func (r *Reconciler) AddEvidencia(ctx context.Context, caseID string, e models.Evidencia) (*models.Caso, error) {
	e.CaseID = caseID
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if e.ID == "" {
		e.ID = fmt.Sprintf("%s%d-%s", localIDPrefix, time.Now().UnixMilli(), uuid.New().String()[:8])
	}
	return r.mutateCaso(ctx, caseID, func(c *models.Caso) error {
		c.Evidencias = append(c.Evidencias, e)
		return nil
	})
}

// ReplaceEvidencia replaces the evidencia with the same identifier.
func (r *Reconciler) ReplaceEvidencia(ctx context.Context, caseID string, e models.Evidencia) (*models.Caso, error) {
	e.CaseID = caseID
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return r.mutateCaso(ctx, caseID, func(c *models.Caso) error {
		for i := range c.Evidencias {
			if c.Evidencias[i].ID == e.ID {
				c.Evidencias[i] = e
				return nil
			}
		}
		return fmt.Errorf("client: evidencia not found: %s", e.ID)
	})
}

// RemoveEvidencia removes the evidencia with the given identifier.
func (r *Reconciler) RemoveEvidencia(ctx context.Context, caseID, evidenciaID string) (*models.Caso, error) {
	return r.mutateCaso(ctx, caseID, func(c *models.Caso) error {
		kept := c.Evidencias[:0]
		found := false
		for _, e := range c.Evidencias {
			if e.ID == evidenciaID {
				found = true
				continue
			}
			kept = append(kept, e)
		}
		if !found {
			return fmt.Errorf("client: evidencia not found: %s", evidenciaID)
		}
		c.Evidencias = kept
		return nil
	})
}

// AddPerito appends an expert assignment to the caso.
func (r *Reconciler) AddPerito(ctx context.Context, caseID string, p models.Perito) (*models.Caso, error) {
	if strings.TrimSpace(p.Nome) == "" {
		return nil, errors.New("client: nome is required")
	}
	p.CaseID = caseID
	if p.ID == "" {
		p.ID = fmt.Sprintf("%s%d-%s", localIDPrefix, time.Now().UnixMilli(), uuid.New().String()[:8])
	}
	return r.mutateCaso(ctx, caseID, func(c *models.Caso) error {
		c.Peritos = append(c.Peritos, p)
		return nil
	})
}

// RemovePerito removes the expert assignment with the given identifier.
func (r *Reconciler) RemovePerito(ctx context.Context, caseID, peritoID string) (*models.Caso, error) {
	return r.mutateCaso(ctx, caseID, func(c *models.Caso) error {
		kept := c.Peritos[:0]
		found := false
		for _, p := range c.Peritos {
			if p.ID == peritoID {
				found = true
				continue
			}
			kept = append(kept, p)
		}
		if !found {
			return fmt.Errorf("client: perito not found: %s", peritoID)
		}
		c.Peritos = kept
		return nil
	})
}

// ReplaceOdontogramaLocal replaces a periciado's chart in the stored caso.
// The chart's authoritative copy lives behind the remote PATCH; this keeps
// the local aggregate in step after a successful save.
func (r *Reconciler) ReplaceOdontogramaLocal(ctx context.Context, caseID, vitimaID string, items []models.OdontogramaItem) (*models.Caso, error) {
	if items == nil {
		items = []models.OdontogramaItem{}
	}
	if err := models.ValidateOdontograma(items); err != nil {
		return nil, err
	}
	return r.mutateCaso(ctx, caseID, func(c *models.Caso) error {
		for i := range c.Vitimas {
			if c.Vitimas[i].ID == vitimaID {
				c.Vitimas[i].Odontograma = items
				return nil
			}
		}
		return fmt.Errorf("client: periciado not found: %s", vitimaID)
	})
}

// SyncCaso pushes the stored caso to the backend. A caso with an offline
// identifier is created remotely and re-keyed to the server identifier; an
// existing caso is replaced, and a stale version surfaces as
// ErrVersionConflict without touching local state.
func (r *Reconciler) SyncCaso(ctx context.Context, remote *Remote, caseID string) (*models.Caso, error) {
	l := r.caseLock(caseID)
	l.Lock()
	defer l.Unlock()

	caso, err := r.LoadCaso(ctx, caseID)
	if err != nil {
		return nil, err
	}

	if !strings.HasPrefix(caso.ID, localIDPrefix) {
		if err := remote.UpdateCaso(ctx, *caso); err != nil {
			return nil, err
		}
		return caso, nil
	}

	created, err := remote.CreateCaso(ctx, *caso)
	if err != nil {
		return nil, err
	}

	r.listMu.Lock()
	defer r.listMu.Unlock()
	casos, err := r.loadList(ctx)
	if err != nil {
		return nil, err
	}
	for i := range casos {
		if casos[i].ID == caseID {
			casos[i].ID = created.ID
			casos[i].Version = created.Version
			if err := r.writeList(ctx, casos); err != nil {
				return nil, err
			}
			if err := r.store.Remove(ctx, CaseVitimasKey(caseID), CaseEvidenciasKey(caseID)); err != nil {
				zap.S().Errorw("failed to drop derived caches", "casoID", caseID, "error", err)
			}
			r.rebuildDerivedCaches(ctx, &casos[i])
			return &casos[i], nil
		}
	}
	return created, nil
}
