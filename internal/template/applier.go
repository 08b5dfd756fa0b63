package template

import (
	"context"
	"strings"

	"github.com/ignite/cad-normalizer/internal/pkg/logger"
	"github.com/ignite/cad-normalizer/internal/transform"
)

// A fuzzy candidate below this similarity is more likely a different
// column than a renamed one; such mappings are dropped rather than
// guessed.
const fuzzyMatchThreshold = 0.7

// Applier resolves a template's recorded field mappings against the
// actual column names of a new export.
type Applier struct {
	store Store
}

// NewApplier creates an applier over the given store.
func NewApplier(store Store) *Applier {
	return &Applier{store: store}
}

// Resolve rewrites each mapping's source field to the matching actual
// column, trying exact, then case-insensitive, then fuzzy matching.
// Mappings with no acceptable match are dropped silently. Each call
// counts as one use of the template.
func (a *Applier) Resolve(ctx context.Context, tmpl Template, actualFields []string) []transform.FieldMapping {
	resolved := make([]transform.FieldMapping, 0, len(tmpl.FieldMappings))
	dropped := 0

	for _, m := range tmpl.FieldMappings {
		// Sentinel mappings carry no source column to resolve.
		if m.SourceField == transform.SourceFieldDefault {
			resolved = append(resolved, m)
			continue
		}
		actual, ok := resolveField(m.SourceField, actualFields)
		if !ok {
			dropped++
			continue
		}
		m.SourceField = actual
		resolved = append(resolved, m)
	}

	if dropped > 0 {
		logger.Info("template mappings dropped during resolution",
			"template_id", tmpl.ID, "dropped", dropped, "resolved", len(resolved))
	}

	if a.store != nil {
		if err := a.store.TouchUsage(ctx, tmpl.ID); err != nil {
			logger.Warn("failed to record template usage", "template_id", tmpl.ID, "error", err.Error())
		}
	}
	return resolved
}

// resolveField finds the actual column for a template source field:
// exact match, then case-insensitive, then the fuzziest candidate at or
// above the acceptance threshold.
func resolveField(sourceField string, actualFields []string) (string, bool) {
	for _, f := range actualFields {
		if f == sourceField {
			return f, true
		}
	}

	lower := strings.ToLower(sourceField)
	for _, f := range actualFields {
		if strings.ToLower(f) == lower {
			return f, true
		}
	}

	best := ""
	bestSim := 0.0
	for _, f := range actualFields {
		if sim := StringSimilarity(sourceField, f); sim > bestSim {
			bestSim = sim
			best = f
		}
	}
	if bestSim >= fuzzyMatchThreshold {
		return best, true
	}
	return "", false
}
