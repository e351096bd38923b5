package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Type is the kind of a piece of equipment.
type Type string

const (
	TypeMachine Type = "Machine"
	TypeVessel  Type = "Vessel"
	TypeTank    Type = "Tank"
	TypeMixer   Type = "Mixer"
)

// Status is the operational state of a piece of equipment.
type Status string

const (
	StatusActive           Status = "Active"
	StatusInactive         Status = "Inactive"
	StatusUnderMaintenance Status = "Under Maintenance"
)

// Types lists the equipment types in display order.
var Types = []Type{TypeMachine, TypeVessel, TypeTank, TypeMixer}

// Statuses lists the equipment statuses in display order.
var Statuses = []Status{StatusActive, StatusInactive, StatusUnderMaintenance}

// ValidTypes is the set of allowed equipment type values.
var ValidTypes = map[Type]bool{
	TypeMachine: true,
	TypeVessel:  true,
	TypeTank:    true,
	TypeMixer:   true,
}

// ValidStatuses is the set of allowed equipment status values.
var ValidStatuses = map[Status]bool{
	StatusActive:           true,
	StatusInactive:         true,
	StatusUnderMaintenance: true,
}

// DateLayout is the wire format of LastCleaned.
const DateLayout = "2006-01-02"

// Field names a user-editable field of an equipment record. The values are
// the JSON field names.
type Field string

const (
	FieldName        Field = "name"
	FieldType        Field = "type"
	FieldStatus      Field = "status"
	FieldLastCleaned Field = "lastCleaned"
)

// Fields lists the editable fields in form order.
var Fields = []Field{FieldName, FieldType, FieldStatus, FieldLastCleaned}

// Payload is the body of a create or update request: an equipment record
// without its id.
type Payload struct {
	Name        string `json:"name"`
	Type        Type   `json:"type"`
	Status      Status `json:"status"`
	LastCleaned string `json:"lastCleaned"`
}

// Get returns the value of f, or "" for an unknown field.
func (p Payload) Get(f Field) string {
	switch f {
	case FieldName:
		return p.Name
	case FieldType:
		return string(p.Type)
	case FieldStatus:
		return string(p.Status)
	case FieldLastCleaned:
		return p.LastCleaned
	}
	return ""
}

// Set assigns value to f. Unknown fields are ignored.
func (p *Payload) Set(f Field, value string) {
	switch f {
	case FieldName:
		p.Name = value
	case FieldType:
		p.Type = Type(value)
	case FieldStatus:
		p.Status = Status(value)
	case FieldLastCleaned:
		p.LastCleaned = value
	}
}

// Equipment is a record held by the equipment collection service.
type Equipment struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        Type   `json:"type"`
	Status      Status `json:"status"`
	LastCleaned string `json:"lastCleaned"`
}

// Payload returns the editable fields of e.
func (e Equipment) Payload() Payload {
	return Payload{Name: e.Name, Type: e.Type, Status: e.Status, LastCleaned: e.LastCleaned}
}

// Get returns the value of f on e.
func (e Equipment) Get(f Field) string {
	return e.Payload().Get(f)
}

// WithPayload returns a record with id and the fields of p.
func WithPayload(id string, p Payload) Equipment {
	return Equipment{ID: id, Name: p.Name, Type: p.Type, Status: p.Status, LastCleaned: p.LastCleaned}
}

// UnmarshalJSON accepts the id under either "id" or "_id", encoded as a JSON
// string or number. Document-store backends key records by "_id".
func (e *Equipment) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID        json.RawMessage `json:"id"`
		DocID     json.RawMessage `json:"_id"`
		Payload
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	raw := wire.ID
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = wire.DocID
	}
	id, err := decodeID(raw)
	if err != nil {
		return err
	}
	*e = WithPayload(id, wire.Payload)
	return nil
}

func decodeID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if _, err := strconv.ParseFloat(n.String(), 64); err == nil {
			return n.String(), nil
		}
	}
	return "", fmt.Errorf("decode id %s: must be a string or number", raw)
}
