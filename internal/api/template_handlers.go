package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ignite/cad-normalizer/internal/template"
)

// HandleListTemplates returns every stored template.
// GET /api/templates
func (h *Handlers) HandleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.store.List(r.Context())
	if err != nil {
		writeJSONError(w, "failed to list templates", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"templates": templates,
		"total":     len(templates),
	})
}

// HandleGetTemplate returns one template by ID.
// GET /api/templates/{templateId}
func (h *Handlers) HandleGetTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "templateId")
	t, err := h.store.Get(r.Context(), id)
	if errors.Is(err, template.ErrNotFound) {
		writeJSONError(w, "template not found", http.StatusNotFound)
		return
	}
	if err != nil {
		writeJSONError(w, "failed to read template", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// createTemplateRequest is the POST /api/templates body. The source
// field pattern is captured server-side from sourceFields.
type createTemplateRequest struct {
	Name          string                   `json:"name"`
	Description   string                   `json:"description"`
	TargetTool    string                   `json:"targetTool"`
	SourceFields  []string                 `json:"sourceFields"`
	FieldMappings []mappingPayload         `json:"fieldMappings"`
	Metadata      template.Metadata        `json:"metadata"`
	IsPublic      bool                     `json:"isPublic"`
}

// HandleCreateTemplate saves a new template learned from a mapping
// session.
// POST /api/templates
func (h *Handlers) HandleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req createTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		writeJSONError(w, "name is required", http.StatusBadRequest)
		return
	}
	if req.TargetTool == "" {
		writeJSONError(w, "targetTool is required", http.StatusBadRequest)
		return
	}
	if len(req.FieldMappings) == 0 {
		writeJSONError(w, "at least one field mapping is required", http.StatusBadRequest)
		return
	}

	pattern := h.detector.CapturePattern(req.SourceFields)
	t := template.Template{
		Name:          req.Name,
		Description:   req.Description,
		CADVendor:     pattern.CADVendorSignature,
		TargetTool:    req.TargetTool,
		FieldMappings: toMappings(req.FieldMappings),
		SourcePattern: pattern,
		Metadata:      req.Metadata,
		IsPublic:      req.IsPublic,
	}
	if err := h.store.Save(r.Context(), &t); err != nil {
		writeJSONError(w, "failed to save template", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// HandleDeleteTemplate removes a template. Deletion is always an
// explicit user action, never automatic.
// DELETE /api/templates/{templateId}
func (h *Handlers) HandleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "templateId")
	err := h.store.Delete(r.Context(), id)
	if errors.Is(err, template.ErrNotFound) {
		writeJSONError(w, "template not found", http.StatusNotFound)
		return
	}
	if err != nil {
		writeJSONError(w, "failed to delete template", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// suggestRequest is the POST /api/templates/suggest body.
type suggestRequest struct {
	SourceFields []string `json:"sourceFields"`
	TargetTool   string   `json:"targetTool"`
}

// HandleSuggestTemplates ranks stored templates against a new source
// field list.
// POST /api/templates/suggest
func (h *Handlers) HandleSuggestTemplates(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.SourceFields) == 0 {
		writeJSONError(w, "sourceFields is required", http.StatusBadRequest)
		return
	}

	suggestions, err := h.matcher.Suggest(r.Context(), req.SourceFields, req.TargetTool)
	if err != nil {
		writeJSONError(w, "failed to rank templates", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
		"total":       len(suggestions),
	})
}

// applyRequest is the POST /api/templates/{templateId}/apply body.
type applyRequest struct {
	SourceFields []string `json:"sourceFields"`
}

// HandleApplyTemplate resolves a template's mappings against actual
// source fields. Unresolvable mappings are dropped; the response carries
// how many so the UI can warn.
// POST /api/templates/{templateId}/apply
func (h *Handlers) HandleApplyTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "templateId")

	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.SourceFields) == 0 {
		writeJSONError(w, "sourceFields is required", http.StatusBadRequest)
		return
	}

	t, err := h.store.Get(r.Context(), id)
	if errors.Is(err, template.ErrNotFound) {
		writeJSONError(w, "template not found", http.StatusNotFound)
		return
	}
	if err != nil {
		writeJSONError(w, "failed to read template", http.StatusInternalServerError)
		return
	}

	mappings := h.applier.Resolve(r.Context(), t, req.SourceFields)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"mappings":  mappings,
		"resolved":  len(mappings),
		"requested": len(t.FieldMappings),
	})
}

// detectVendorRequest is the POST /api/detect-vendor body.
type detectVendorRequest struct {
	SourceFields []string `json:"sourceFields"`
}

// HandleDetectVendor guesses which CAD vendor produced a field list.
// POST /api/detect-vendor
func (h *Handlers) HandleDetectVendor(w http.ResponseWriter, r *http.Request) {
	var req detectVendorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.SourceFields) == 0 {
		writeJSONError(w, "sourceFields is required", http.StatusBadRequest)
		return
	}

	vendor, confidence := h.detector.Detect(req.SourceFields)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"vendor":     vendor,
		"confidence": confidence,
	})
}
