// Package api exposes the template library and transformation engine
// over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ignite/cad-normalizer/internal/template"
	"github.com/ignite/cad-normalizer/internal/transform"
)

// Handlers contains all HTTP handlers and their collaborators.
type Handlers struct {
	store    template.Store
	matcher  *template.Matcher
	applier  *template.Applier
	detector *template.VendorDetector
	engine   *transform.Engine
	started  time.Time
}

// NewHandlers creates a Handlers instance over the given store and
// vendor detector.
func NewHandlers(store template.Store, detector *template.VendorDetector) *Handlers {
	return &Handlers{
		store:    store,
		matcher:  template.NewMatcher(store),
		applier:  template.NewApplier(store),
		detector: detector,
		engine:   transform.NewEngine(),
		started:  time.Now(),
	}
}

// HealthCheck reports liveness and uptime.
// GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
