package client

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/odontoforense/odonto-legal-api/models"
)

// EditorState is the chart editor lifecycle state.
type EditorState string

const (
	StateIdle    EditorState = "idle"
	StateEditing EditorState = "editing"
	StateSaving  EditorState = "saving"
	StateSaved   EditorState = "saved"
	StateError   EditorState = "error"
)

var (
	// ErrEditorReadOnly is returned by mutations after a successful save.
	ErrEditorReadOnly = errors.New("client: editor is read-only after save")
	// ErrNoPendingRemove is returned by ConfirmRemove without a prior RequestRemove.
	ErrNoPendingRemove = errors.New("client: no pending removal")
)

// ChartEditor drives the dental chart editing flow for one periciado:
// Idle, then Editing while pairs are committed into the working map, Saving
// during the remote replace, then Saved (read-only) or Error. A tooth and a
// damage tag are picked independently; nothing lands in the map until an
// explicit Commit. Removal of a committed entry takes a RequestRemove then a
// ConfirmRemove, mirroring the confirmation step in the UI.
//
// The editor is not safe for concurrent use; one editor serves one screen.
type ChartEditor struct {
	periciadoID string
	state       EditorState
	chart       map[string]string

	pendingTooth  string
	pendingDamage string
	removeTarget  string

	lastErr error
}

// NewChartEditor starts an editor over an already-loaded chart.
func NewChartEditor(periciadoID string, items []models.OdontogramaItem) *ChartEditor {
	chart := make(map[string]string, len(items))
	for _, it := range items {
		// last write wins on duplicates
		chart[it.Dente] = it.Descricao
	}
	return &ChartEditor{
		periciadoID: periciadoID,
		state:       StateIdle,
		chart:       chart,
	}
}

// LoadChartEditor fetches the periciado's chart and opens an editor over it.
func LoadChartEditor(ctx context.Context, remote *Remote, periciadoID string) (*ChartEditor, error) {
	items, err := remote.GetOdontograma(ctx, periciadoID)
	if err != nil {
		return nil, err
	}
	return NewChartEditor(periciadoID, items), nil
}

// State returns the current lifecycle state.
func (e *ChartEditor) State() EditorState { return e.state }

// Err returns the error that moved the editor into StateError, if any.
func (e *ChartEditor) Err() error { return e.lastErr }

// Chart returns a copy of the committed tooth to damage map.
func (e *ChartEditor) Chart() map[string]string {
	out := make(map[string]string, len(e.chart))
	for k, v := range e.chart {
		out[k] = v
	}
	return out
}

func (e *ChartEditor) editable() error {
	if e.state == StateSaved {
		return ErrEditorReadOnly
	}
	if e.state == StateSaving {
		return errors.New("client: save in progress")
	}
	return nil
}

// SelectTooth picks a tooth. Picking a new tooth discards only the
// in-progress pair; the committed map is untouched.
func (e *ChartEditor) SelectTooth(code string) error {
	if err := e.editable(); err != nil {
		return err
	}
	if !models.ValidToothCode(code) {
		return fmt.Errorf("client: unknown tooth code %q", code)
	}
	if code != e.pendingTooth {
		e.pendingDamage = ""
	}
	e.pendingTooth = code
	e.state = StateEditing
	return nil
}

// SelectDamage picks a damage tag for the pending pair.
func (e *ChartEditor) SelectDamage(tag string) error {
	if err := e.editable(); err != nil {
		return err
	}
	if !models.ValidDamageType(tag) {
		return fmt.Errorf("client: unknown damage type %q", tag)
	}
	e.pendingDamage = tag
	e.state = StateEditing
	return nil
}

// Commit moves the pending pair into the working map. Without both a tooth
// and a damage tag selected there is nothing to commit.
func (e *ChartEditor) Commit() error {
	if err := e.editable(); err != nil {
		return err
	}
	if e.pendingTooth == "" || e.pendingDamage == "" {
		return errors.New("client: select a tooth and a damage type first")
	}
	e.chart[e.pendingTooth] = e.pendingDamage
	e.pendingTooth = ""
	e.pendingDamage = ""
	e.state = StateEditing
	return nil
}

// RequestRemove stages the removal of a committed entry, pending confirmation.
func (e *ChartEditor) RequestRemove(code string) error {
	if err := e.editable(); err != nil {
		return err
	}
	if _, ok := e.chart[code]; !ok {
		return fmt.Errorf("client: no entry for tooth %q", code)
	}
	e.removeTarget = code
	return nil
}

// ConfirmRemove applies the staged removal.
func (e *ChartEditor) ConfirmRemove() error {
	if err := e.editable(); err != nil {
		return err
	}
	if e.removeTarget == "" {
		return ErrNoPendingRemove
	}
	delete(e.chart, e.removeTarget)
	e.removeTarget = ""
	e.state = StateEditing
	return nil
}

// CancelRemove drops the staged removal without touching the map.
func (e *ChartEditor) CancelRemove() {
	e.removeTarget = ""
}

// Items returns the working map as a pair list sorted by tooth code, so the
// same map always serializes to the same list.
func (e *ChartEditor) Items() []models.OdontogramaItem {
	codes := make([]string, 0, len(e.chart))
	for code := range e.chart {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	items := make([]models.OdontogramaItem, 0, len(codes))
	for _, code := range codes {
		items = append(items, models.OdontogramaItem{Dente: code, Descricao: e.chart[code]})
	}
	return items
}

// Save replaces the persisted chart with the working map in one remote call.
// On success the editor becomes read-only over its own map; there is no
// re-fetch. On failure the map is untouched and the editor can retry.
func (e *ChartEditor) Save(ctx context.Context, remote *Remote) error {
	if e.state == StateSaved {
		return ErrEditorReadOnly
	}
	items := e.Items()
	if err := models.ValidateOdontograma(items); err != nil {
		return err
	}
	e.state = StateSaving
	if err := remote.ReplaceOdontograma(ctx, e.periciadoID, items); err != nil {
		e.state = StateError
		e.lastErr = err
		return err
	}
	e.state = StateSaved
	e.lastErr = nil
	return nil
}

// ToothPosition maps a tooth code and viewport dimensions to the overlay
// position of its icon. Pure function over the fixed quadrant table; the
// result is never persisted.
func ToothPosition(code string, width, height float64) (x, y float64, err error) {
	idx := -1
	for i, c := range models.ToothCodes {
		if c == code {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, 0, fmt.Errorf("client: unknown tooth code %q", code)
	}
	row := idx / 16   // 0 upper arch, 1 lower arch
	col := idx % 16   // position across the arch
	cellW := width / 16
	x = cellW*float64(col) + cellW/2
	if row == 0 {
		y = height * 0.25
	} else {
		y = height * 0.75
	}
	return x, y, nil
}
