package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tphummel/equipment_tracker/internal/db"
	"github.com/tphummel/equipment_tracker/internal/models"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	DB      *db.DB
	Version string
	Commit  string
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Health handles GET /healthz. No auth required.
// Returns 503 if the database is unreachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.DB.Ping(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": h.Version,
		"commit":  h.Commit,
	})
}

// decodePayload reads and validates a create/update body. It writes the error
// response itself and reports false when the request should stop.
func decodePayload(w http.ResponseWriter, r *http.Request) (models.Payload, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024)
	var req models.Payload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return req, false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return req, false
	}

	if req.Name == "" || req.Type == "" || req.Status == "" || req.LastCleaned == "" {
		writeError(w, http.StatusBadRequest, "name, type, status, and lastCleaned are required")
		return req, false
	}
	if !models.ValidTypes[req.Type] {
		writeError(w, http.StatusBadRequest, "invalid type")
		return req, false
	}
	if !models.ValidStatuses[req.Status] {
		writeError(w, http.StatusBadRequest, "invalid status")
		return req, false
	}
	if _, err := time.Parse(models.DateLayout, req.LastCleaned); err != nil {
		writeError(w, http.StatusBadRequest, "lastCleaned must be YYYY-MM-DD")
		return req, false
	}
	return req, true
}

// CreateEquipment handles POST /api/equipment.
func (h *Handler) CreateEquipment(w http.ResponseWriter, r *http.Request) {
	req, ok := decodePayload(w, r)
	if !ok {
		return
	}

	e := models.WithPayload(uuid.New().String(), req)
	if err := h.DB.Create(&e); err != nil {
		slog.Error("create equipment", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create equipment")
		return
	}

	writeJSON(w, http.StatusCreated, e)
}

// ListEquipment handles GET /api/equipment with an optional ?type= filter.
func (h *Handler) ListEquipment(w http.ResponseWriter, r *http.Request) {
	typ := models.Type(r.URL.Query().Get("type"))
	if typ != "" && !models.ValidTypes[typ] {
		writeError(w, http.StatusBadRequest, "invalid type")
		return
	}

	items, err := h.DB.List(typ)
	if err != nil {
		slog.Error("list equipment", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list equipment")
		return
	}

	if items == nil {
		items = []*models.Equipment{}
	}
	writeJSON(w, http.StatusOK, items)
}

// GetEquipment handles GET /api/equipment/{id}.
func (h *Handler) GetEquipment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	e, err := h.DB.GetByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "equipment not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get equipment")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// UpdateEquipment handles PUT /api/equipment/{id}. The body replaces every
// field; there is no partial update.
func (h *Handler) UpdateEquipment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	req, ok := decodePayload(w, r)
	if !ok {
		return
	}

	e := models.WithPayload(id, req)
	err := h.DB.Update(&e)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "equipment not found")
		return
	}
	if err != nil {
		slog.Error("update equipment", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update equipment")
		return
	}

	writeJSON(w, http.StatusOK, e)
}

// DeleteEquipment handles DELETE /api/equipment/{id}.
func (h *Handler) DeleteEquipment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := h.DB.Delete(id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "equipment not found")
		return
	}
	if err != nil {
		slog.Error("delete equipment", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete equipment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
