package template

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStore is a minimal in-memory Store for matcher/applier tests.
type stubStore struct {
	templates []Template
	touched   []string
	listErr   error
}

func (s *stubStore) List(ctx context.Context) ([]Template, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]Template, 0, len(s.templates))
	for _, t := range s.templates {
		out = append(out, t.Clone())
	}
	return out, nil
}

func (s *stubStore) Get(ctx context.Context, id string) (Template, error) {
	for _, t := range s.templates {
		if t.ID == id {
			return t.Clone(), nil
		}
	}
	return Template{}, ErrNotFound
}

func (s *stubStore) Save(ctx context.Context, t *Template) error {
	s.templates = append(s.templates, t.Clone())
	return nil
}

func (s *stubStore) Delete(ctx context.Context, id string) error { return nil }

func (s *stubStore) TouchUsage(ctx context.Context, id string) error {
	s.touched = append(s.touched, id)
	return nil
}

func makeTemplate(id string, fields []string, certified bool) Template {
	t := Template{
		ID:         id,
		Name:       id,
		TargetTool: "response-times",
		SourcePattern: SourceFieldPattern{
			FieldNames: fields,
			FieldCount: len(fields),
		},
		CreatedAt: time.Now(),
	}
	if certified {
		t.IsPublic = true
		t.Metadata.Tags = []string{TagCertified}
	}
	return t
}

func TestSuggestEmptyStore(t *testing.T) {
	m := NewMatcher(&stubStore{})
	got, err := m.Suggest(context.Background(), []string{"a", "b"}, "response-times")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSuggestFiltersByToolAndScore(t *testing.T) {
	store := &stubStore{templates: []Template{
		makeTemplate("good", []string{"INC_NUM", "UNIT_ID"}, false),
		makeTemplate("weak", []string{"w1", "w2", "w3", "w4", "w5"}, false),
	}}
	other := makeTemplate("other-tool", []string{"INC_NUM", "UNIT_ID"}, false)
	other.TargetTool = "mapping"
	store.templates = append(store.templates, other)

	m := NewMatcher(store)
	got, err := m.Suggest(context.Background(), []string{"inc_num", "unit_id"}, "response-times")
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "good", got[0].Template.ID)
	assert.Equal(t, 100, got[0].Score)
}

func TestSuggestCertifiedRanksFirst(t *testing.T) {
	store := &stubStore{templates: []Template{
		// Ad hoc template scores 100 raw
		makeTemplate("adhoc", []string{"INC_NUM", "UNIT_ID"}, false),
		// Certified template scores 50 raw, +10 boost
		makeTemplate("vendor", []string{"INC_NUM", "UNIT_ID", "EXTRA_1", "EXTRA_2"}, true),
	}}

	m := NewMatcher(store)
	got, err := m.Suggest(context.Background(), []string{"inc_num", "unit_id"}, "response-times")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Certified sorts first despite the lower adjusted score
	assert.Equal(t, "vendor", got[0].Template.ID)
	assert.True(t, got[0].Certified)
	assert.Equal(t, 60, got[0].Score)
	assert.Equal(t, "adhoc", got[1].Template.ID)
	assert.Equal(t, 100, got[1].Score)
}

func TestSuggestCapsAtEight(t *testing.T) {
	store := &stubStore{}
	for i := 0; i < 12; i++ {
		store.templates = append(store.templates,
			makeTemplate(fmt.Sprintf("t%d", i), []string{"INC_NUM", "UNIT_ID"}, false))
	}

	m := NewMatcher(store)
	got, err := m.Suggest(context.Background(), []string{"inc_num", "unit_id"}, "response-times")
	require.NoError(t, err)
	assert.Len(t, got, 8)
}
