package handlers

import (
	"net/http"

	"github.com/tphummel/equipment_tracker/internal/metrics"
	"github.com/tphummel/equipment_tracker/internal/middleware"
)

// Register mounts the health, docs and equipment CRUD routes on mux. The
// CRUD routes require token as a Bearer credential unless token is empty.
func (h *Handler) Register(mux *http.ServeMux, token string) {
	// Health check, no auth
	mux.HandleFunc("GET /healthz", h.Health)

	// API docs, no auth
	mux.HandleFunc("GET /openapi.yaml", OpenAPISpec)
	mux.HandleFunc("GET /docs", h.Docs)

	routes := []struct {
		pattern string
		handler http.HandlerFunc
	}{
		{"POST /api/equipment", h.CreateEquipment},
		{"GET /api/equipment", h.ListEquipment},
		{"GET /api/equipment/{id}", h.GetEquipment},
		{"PUT /api/equipment/{id}", h.UpdateEquipment},
		{"DELETE /api/equipment/{id}", h.DeleteEquipment},
	}
	for _, rt := range routes {
		mux.Handle(rt.pattern, metrics.Middleware(rt.pattern, middleware.Auth(token, rt.handler)))
	}
}
