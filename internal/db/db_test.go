package db_test

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/tphummel/equipment_tracker/internal/db"
	"github.com/tphummel/equipment_tracker/internal/models"
)

// newTestDB opens a fresh in-memory SQLite database for each test.
func newTestDB(t *testing.T) *db.DB {
	t.Helper()
	d, err := db.New(":memory:")
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

// sampleEquipment returns a fully-populated record for use in tests.
func sampleEquipment(id string) *models.Equipment {
	return &models.Equipment{
		ID:          id,
		Name:        "Mixer A",
		Type:        models.TypeMixer,
		Status:      models.StatusActive,
		LastCleaned: "2024-01-01",
	}
}

func TestNew(t *testing.T) {
	// Verifies schema is created and the DB is usable.
	d := newTestDB(t)
	if err := d.Ping(); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestCreate_GetByID(t *testing.T) {
	d := newTestDB(t)
	e := sampleEquipment("abc-123")

	if err := d.Create(e); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := d.GetByID("abc-123")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if *got != *e {
		t.Errorf("record: got %+v, want %+v", *got, *e)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	d := newTestDB(t)
	_, err := d.GetByID("does-not-exist")
	if err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestList_Empty(t *testing.T) {
	d := newTestDB(t)
	items, err := d.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty list, got %d items", len(items))
	}
}

func TestList_InsertionOrder(t *testing.T) {
	d := newTestDB(t)

	names := []string{"Tank B", "Mixer A", "Vessel C"}
	for i, name := range names {
		e := sampleEquipment(fmt.Sprintf("id-%d", i))
		e.Name = name
		if err := d.Create(e); err != nil {
			t.Fatalf("Create %q: %v", e.ID, err)
		}
	}

	items, err := d.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != len(names) {
		t.Fatalf("expected %d records, got %d", len(names), len(items))
	}
	for i, name := range names {
		if items[i].Name != name {
			t.Errorf("items[%d]: got %q, want %q", i, items[i].Name, name)
		}
	}
}

func TestList_TypeFilter(t *testing.T) {
	d := newTestDB(t)

	types := []struct {
		id  string
		typ models.Type
	}{
		{"id-1", models.TypeTank},
		{"id-2", models.TypeTank},
		{"id-3", models.TypeMixer},
		{"id-4", models.TypeVessel},
	}
	for _, k := range types {
		e := sampleEquipment(k.id)
		e.Type = k.typ
		if err := d.Create(e); err != nil {
			t.Fatalf("Create %q: %v", k.id, err)
		}
	}

	tests := []struct {
		typ  models.Type
		want int
	}{
		{models.TypeTank, 2},
		{models.TypeMixer, 1},
		{models.TypeVessel, 1},
		{models.TypeMachine, 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			got, err := d.List(tt.typ)
			if err != nil {
				t.Fatalf("List(%q): %v", tt.typ, err)
			}
			if len(got) != tt.want {
				t.Errorf("List(%q): got %d, want %d", tt.typ, len(got), tt.want)
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	d := newTestDB(t)
	e := sampleEquipment("upd-1")
	if err := d.Create(e); err != nil {
		t.Fatalf("Create: %v", err)
	}

	e.Name = "Mixer A2"
	e.Status = models.StatusUnderMaintenance
	e.LastCleaned = "2024-05-05"

	if err := d.Update(e); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := d.GetByID("upd-1")
	if err != nil {
		t.Fatalf("GetByID after update: %v", err)
	}
	if *got != *e {
		t.Errorf("record: got %+v, want %+v", *got, *e)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	d := newTestDB(t)
	err := d.Update(sampleEquipment("ghost"))
	if err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	d := newTestDB(t)
	if err := d.Create(sampleEquipment("del-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := d.Delete("del-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	_, err := d.GetByID("del-1")
	if err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows after delete, got %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	d := newTestDB(t)
	err := d.Delete("nonexistent")
	if err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestCreate_DuplicateID(t *testing.T) {
	d := newTestDB(t)
	e := sampleEquipment("dup-1")
	if err := d.Create(e); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if err := d.Create(e); err == nil {
		t.Error("expected error on duplicate ID, got nil")
	}
}

func TestCountByType(t *testing.T) {
	d := newTestDB(t)
	for i, typ := range []models.Type{models.TypeTank, models.TypeTank, models.TypeMixer} {
		e := sampleEquipment(fmt.Sprintf("c-%d", i))
		e.Type = typ
		if err := d.Create(e); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	counts, err := d.CountByType()
	if err != nil {
		t.Fatalf("CountByType: %v", err)
	}
	if counts["Tank"] != 2 || counts["Mixer"] != 1 || len(counts) != 2 {
		t.Errorf("counts: got %v", counts)
	}
}
