// Package tracker is the top-level state container for the equipment client.
// It owns the record store handle, the view state and the open form, and is
// passed explicitly to whatever presents them.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tphummel/equipment_tracker/internal/form"
	"github.com/tphummel/equipment_tracker/internal/inventory"
	"github.com/tphummel/equipment_tracker/internal/models"
	"github.com/tphummel/equipment_tracker/internal/view"
)

var (
	// ErrNoForm is returned when submitting with no form open.
	ErrNoForm = errors.New("no form open")
	// ErrNotFound is returned when editing an id the store does not hold.
	ErrNotFound = errors.New("equipment not found")
)

// Tracker holds the record store, the view state and the open form.
type Tracker struct {
	store *inventory.Store

	mu    sync.Mutex
	state view.State
	form  *form.Controller
}

// New returns a tracker over store starting from state.
func New(store *inventory.Store, state view.State) *Tracker {
	return &Tracker{store: store, state: state}
}

// Store returns the record store.
func (t *Tracker) Store() *inventory.Store {
	return t.store
}

// Load refreshes the collection from the service.
func (t *Tracker) Load(ctx context.Context) *inventory.Pending {
	return t.store.Load(ctx)
}

// Delete removes the record with id once the service confirms.
func (t *Tracker) Delete(ctx context.Context, id string) *inventory.Pending {
	return t.store.Delete(ctx, id)
}

// View returns the current view state.
func (t *Tracker) View() view.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// SetSearch sets the case-insensitive name search.
func (t *Tracker) SetSearch(s string) {
	t.mu.Lock()
	t.state.Search = s
	t.mu.Unlock()
}

// SetTypeFilter restricts rows to typ. The empty type shows every type.
func (t *Tracker) SetTypeFilter(typ models.Type) {
	t.mu.Lock()
	t.state.TypeFilter = typ
	t.mu.Unlock()
}

// ToggleSort selects key, flipping the direction if key is already active.
func (t *Tracker) ToggleSort(key view.SortKey) {
	t.mu.Lock()
	t.state = t.state.ToggleSort(key)
	t.mu.Unlock()
}

// SetSort selects key and direction outright.
func (t *Tracker) SetSort(key view.SortKey, dir view.Direction) {
	t.mu.Lock()
	t.state.SortKey = key
	t.state.Direction = dir
	t.mu.Unlock()
}

// Rows returns the display list for the current collection and view state.
func (t *Tracker) Rows() []models.Equipment {
	return view.Project(t.store.Records(), t.View())
}

// Form returns the open form, or nil.
func (t *Tracker) Form() *form.Controller {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.form
}

// OpenCreate opens an empty form, replacing any open one.
func (t *Tracker) OpenCreate() *form.Controller {
	c := form.New()
	t.mu.Lock()
	t.form = c
	t.mu.Unlock()
	return c
}

// OpenEdit opens a form pre-populated from the record with id.
func (t *Tracker) OpenEdit(id string) (*form.Controller, error) {
	rec, ok := t.store.Find(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	c := form.Edit(rec)
	t.mu.Lock()
	t.form = c
	t.mu.Unlock()
	return c, nil
}

// SubmitForm submits the open form. A validation failure returns
// form.FieldErrors and leaves the form open. Otherwise the form closes when
// the store applies a successful result, provided it is still the open
// form; a failed mutation leaves it open.
func (t *Tracker) SubmitForm(ctx context.Context) (*inventory.Pending, error) {
	c := t.Form()
	if c == nil {
		return nil, ErrNoForm
	}
	p, err := c.Submit(ctx, t.store)
	if err != nil {
		return nil, err
	}
	p.Then(func(r inventory.Result) {
		if !r.OK() {
			return
		}
		t.mu.Lock()
		if t.form == c {
			t.form = nil
		}
		t.mu.Unlock()
	})
	return p, nil
}

// CancelForm discards and closes the open form.
func (t *Tracker) CancelForm() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.form != nil {
		t.form.Cancel()
		t.form = nil
	}
}
