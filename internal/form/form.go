// Package form manages a single create or edit draft and checks that every
// field is filled in before the draft reaches the record store.
package form

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/tphummel/equipment_tracker/internal/inventory"
	"github.com/tphummel/equipment_tracker/internal/models"
)

// Mode is whether the draft creates a new record or replaces an existing one.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Submitter receives validated drafts. *inventory.Store satisfies it.
type Submitter interface {
	Create(ctx context.Context, p models.Payload) *inventory.Pending
	Update(ctx context.Context, id string, p models.Payload) *inventory.Pending
}

// messages are the field-level validation messages.
var messages = map[models.Field]string{
	models.FieldName:        "Name required",
	models.FieldType:        "Type required",
	models.FieldStatus:      "Status required",
	models.FieldLastCleaned: "Date required",
}

// FieldErrors maps each failing field to its message.
type FieldErrors map[models.Field]string

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, f := range fe.Fields() {
		parts = append(parts, fe[f])
	}
	return "invalid equipment: " + strings.Join(parts, ", ")
}

// Fields returns the failing fields in form order.
func (fe FieldErrors) Fields() []models.Field {
	return slices.DeleteFunc(slices.Clone(models.Fields), func(f models.Field) bool {
		_, ok := fe[f]
		return !ok
	})
}

// Controller owns one draft. The draft is a copy: editing it never touches
// the record it was opened from.
type Controller struct {
	mode   Mode
	id     string
	draft  models.Payload
	errors FieldErrors
}

// New returns an empty create-mode controller.
func New() *Controller {
	return &Controller{mode: ModeCreate}
}

// Edit returns an edit-mode controller pre-populated from rec.
func Edit(rec models.Equipment) *Controller {
	return &Controller{mode: ModeEdit, id: rec.ID, draft: rec.Payload()}
}

// Mode reports whether the controller creates or edits.
func (c *Controller) Mode() Mode { return c.mode }

// ID is the id of the record being edited, empty in create mode.
func (c *Controller) ID() string { return c.id }

// Draft returns a copy of the draft.
func (c *Controller) Draft() models.Payload { return c.draft }

// SetField sets one field on the draft. Unknown fields are ignored.
func (c *Controller) SetField(f models.Field, value string) {
	c.draft.Set(f, value)
}

// Validate returns the fields that are empty. A nil result means every
// field is set. Values are accepted as entered: a whitespace-only name or an
// unparseable date passes.
func (c *Controller) Validate() FieldErrors {
	var fe FieldErrors
	for _, f := range models.Fields {
		if c.draft.Get(f) != "" {
			continue
		}
		if fe == nil {
			fe = make(FieldErrors)
		}
		fe[f] = messages[f]
	}
	return fe
}

// Errors returns the field errors from the last Submit.
func (c *Controller) Errors() FieldErrors {
	return maps.Clone(c.errors)
}

// Submit validates the draft and, if every field is set, hands it to s as a
// create or an update. On validation failure nothing is sent and the error
// is a FieldErrors. The caller closes the form once the returned Pending
// resolves successfully; a failed mutation leaves it open for a retry.
func (c *Controller) Submit(ctx context.Context, s Submitter) (*inventory.Pending, error) {
	if fe := c.Validate(); fe != nil {
		c.errors = fe
		return nil, fe
	}
	c.errors = nil

	switch c.mode {
	case ModeCreate:
		return s.Create(ctx, c.draft), nil
	case ModeEdit:
		return s.Update(ctx, c.id, c.draft), nil
	}
	return nil, fmt.Errorf("unknown form mode %d", c.mode)
}

// Cancel discards the draft.
func (c *Controller) Cancel() {
	c.draft = models.Payload{}
	c.errors = nil
}
