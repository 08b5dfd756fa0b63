package template

import (
	"context"
	"fmt"
	"sort"

	"github.com/ignite/cad-normalizer/internal/pkg/logger"
)

const (
	// Templates scoring below this are not worth surfacing.
	minSuggestionScore = 30
	// Flat boost for certified public templates.
	certifiedBoost = 10
	// At most this many suggestions are returned.
	maxSuggestions = 8
)

// Suggestion is one ranked template match for a new source field list.
type Suggestion struct {
	Template       Template `json:"template"`
	Score          int      `json:"score"`
	MatchingFields []string `json:"matchingFields"`
	MissingFields  []string `json:"missingFields"`
	Certified      bool     `json:"certified"`
}

// Matcher ranks stored templates against incoming source field lists.
type Matcher struct {
	store Store
}

// NewMatcher creates a matcher over the given store.
func NewMatcher(store Store) *Matcher {
	return &Matcher{store: store}
}

// Suggest scores every stored template for targetTool against
// sourceFields and returns the top matches. Certified public templates
// get a +10 boost and always sort ahead of non-certified ones; within
// each tier ordering is by descending adjusted score. An empty store
// yields an empty list, not an error.
func (m *Matcher) Suggest(ctx context.Context, sourceFields []string, targetTool string) ([]Suggestion, error) {
	templates, err := m.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	suggestions := []Suggestion{}
	for _, t := range templates {
		if t.TargetTool != targetTool {
			continue
		}
		sim := FieldSetSimilarity(sourceFields, t.SourcePattern.FieldNames)
		if sim.Score < minSuggestionScore {
			continue
		}

		s := Suggestion{
			Template:       t,
			Score:          sim.Score,
			MatchingFields: sim.MatchingFields,
			MissingFields:  sim.MissingFields,
		}
		if t.IsPublic && t.HasTag(TagCertified) {
			s.Certified = true
			s.Score += certifiedBoost
		}
		suggestions = append(suggestions, s)
	}

	// Certified templates are pre-validated vendor mappings and outrank
	// ad hoc templates regardless of raw score.
	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Certified != suggestions[j].Certified {
			return suggestions[i].Certified
		}
		return suggestions[i].Score > suggestions[j].Score
	})

	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}

	logger.Debug("template suggestions ranked",
		"candidates", len(templates), "returned", len(suggestions), "target_tool", targetTool)
	return suggestions, nil
}
