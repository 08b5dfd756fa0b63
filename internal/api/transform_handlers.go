package api

import (
	"encoding/json"
	"net/http"

	"github.com/ignite/cad-normalizer/internal/transform"
)

// mappingPayload mirrors transform.FieldMapping for request bodies.
type mappingPayload struct {
	SourceField     string                          `json:"sourceField"`
	TargetField     string                          `json:"targetField"`
	DefaultValue    interface{}                     `json:"defaultValue,omitempty"`
	Transformations []transform.FieldTransformation `json:"transformations,omitempty"`
}

func toMappings(payloads []mappingPayload) []transform.FieldMapping {
	out := make([]transform.FieldMapping, len(payloads))
	for i, p := range payloads {
		out[i] = transform.FieldMapping{
			SourceField:     p.SourceField,
			TargetField:     p.TargetField,
			DefaultValue:    p.DefaultValue,
			Transformations: p.Transformations,
		}
	}
	return out
}

// transformRequest is the POST /api/transform body.
type transformRequest struct {
	Rows     []transform.Row  `json:"rows"`
	Mappings []mappingPayload `json:"mappings"`
}

// HandleTransform runs rows through the transformation engine with the
// given mappings and returns the canonical rows.
// POST /api/transform
func (h *Handlers) HandleTransform(w http.ResponseWriter, r *http.Request) {
	var req transformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Mappings) == 0 {
		writeJSONError(w, "mappings is required", http.StatusBadRequest)
		return
	}

	rows := h.engine.Transform(req.Rows, toMappings(req.Mappings), nil)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rows":  rows,
		"total": len(rows),
	})
}
