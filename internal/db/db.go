package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tphummel/equipment_tracker/internal/models"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite connection.
type DB struct {
	conn *sql.DB
}

// New opens the SQLite database at path, enables WAL mode, and runs migrations.
func New(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Each :memory: connection is its own database.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if err := migrate(conn); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &DB{conn: conn}, nil
}

func migrate(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS equipment (
			seq          INTEGER PRIMARY KEY AUTOINCREMENT,
			id           TEXT NOT NULL UNIQUE,
			name         TEXT NOT NULL,
			type         TEXT NOT NULL,
			status       TEXT NOT NULL,
			last_cleaned TEXT NOT NULL,
			created_at   DATETIME NOT NULL,
			updated_at   DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_equipment_type ON equipment(type);
	`)
	return err
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.conn.Close()
}

// Ping verifies the database connection is alive.
func (d *DB) Ping() error {
	return d.conn.Ping()
}

// Create inserts a new equipment record.
func (d *DB) Create(e *models.Equipment) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := d.conn.Exec(`
		INSERT INTO equipment (id, name, type, status, last_cleaned, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, string(e.Type), string(e.Status), e.LastCleaned, now, now,
	)
	return err
}

// GetByID returns the record with the given ID, or sql.ErrNoRows if not found.
func (d *DB) GetByID(id string) (*models.Equipment, error) {
	row := d.conn.QueryRow(`
		SELECT id, name, type, status, last_cleaned
		FROM equipment WHERE id = ?`, id)
	return scan(row)
}

// List returns all records in insertion order, optionally filtered by type.
func (d *DB) List(typ models.Type) ([]*models.Equipment, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if typ != "" {
		rows, err = d.conn.Query(`
			SELECT id, name, type, status, last_cleaned
			FROM equipment WHERE type = ? ORDER BY seq`, string(typ))
	} else {
		rows, err = d.conn.Query(`
			SELECT id, name, type, status, last_cleaned
			FROM equipment ORDER BY seq`)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Equipment
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Update replaces all mutable fields for the record with e.ID.
// Returns sql.ErrNoRows if no such record exists.
func (d *DB) Update(e *models.Equipment) error {
	res, err := d.conn.Exec(`
		UPDATE equipment
		SET name=?, type=?, status=?, last_cleaned=?, updated_at=?
		WHERE id=?`,
		e.Name, string(e.Type), string(e.Status), e.LastCleaned,
		time.Now().UTC().Format(time.RFC3339),
		e.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes the record with the given ID.
// Returns sql.ErrNoRows if no such record exists.
func (d *DB) Delete(id string) error {
	res, err := d.conn.Exec(`DELETE FROM equipment WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountByType returns the number of records per equipment type.
func (d *DB) CountByType() (map[string]int, error) {
	rows, err := d.conn.Query(`SELECT type, COUNT(*) FROM equipment GROUP BY type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			typ string
			n   int
		)
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, err
		}
		counts[typ] = n
	}
	return counts, rows.Err()
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*models.Equipment, error) {
	var (
		e           models.Equipment
		typ, status string
	)
	if err := s.Scan(&e.ID, &e.Name, &typ, &status, &e.LastCleaned); err != nil {
		return nil, err
	}
	e.Type = models.Type(typ)
	e.Status = models.Status(status)
	return &e, nil
}
