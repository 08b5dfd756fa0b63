package template

import (
	"context"
	"testing"

	"github.com/ignite/cad-normalizer/internal/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveExactAndCaseInsensitive(t *testing.T) {
	store := &stubStore{}
	a := NewApplier(store)
	tmpl := Template{
		ID: "tpl-1",
		FieldMappings: []transform.FieldMapping{
			{SourceField: "INC_NUM", TargetField: transform.FieldIncidentID},
			{SourceField: "UNIT_ID", TargetField: transform.FieldRespondingUnit},
		},
	}

	got := a.Resolve(context.Background(), tmpl, []string{"INC_NUM", "unit_id"})

	require.Len(t, got, 2)
	assert.Equal(t, "INC_NUM", got[0].SourceField)
	// Case-insensitive resolution rewrites to the actual casing
	assert.Equal(t, "unit_id", got[1].SourceField)
	assert.Equal(t, []string{"tpl-1"}, store.touched)
}

func TestResolveFuzzyThreshold(t *testing.T) {
	a := NewApplier(&stubStore{})
	tmpl := Template{
		ID: "tpl-2",
		FieldMappings: []transform.FieldMapping{
			{SourceField: "INC_DATE_TIME", TargetField: transform.FieldIncidentTime},
			{SourceField: "PROBLEM_TYPE", TargetField: transform.FieldIncidentType},
		},
	}

	// INC_DATE_TM is a renamed column (similarity ≥ 0.7); ADDRESS is not a
	// plausible stand-in for PROBLEM_TYPE and that mapping is dropped.
	got := a.Resolve(context.Background(), tmpl, []string{"INC_DATE_TM", "ADDRESS"})

	require.Len(t, got, 1)
	assert.Equal(t, "INC_DATE_TM", got[0].SourceField)
	assert.Equal(t, transform.FieldIncidentTime, got[0].TargetField)
}

func TestResolveKeepsDefaultSentinel(t *testing.T) {
	a := NewApplier(&stubStore{})
	tmpl := Template{
		ID: "tpl-3",
		FieldMappings: []transform.FieldMapping{
			{SourceField: transform.SourceFieldDefault, TargetField: transform.FieldState, DefaultValue: "OH"},
		},
	}

	got := a.Resolve(context.Background(), tmpl, []string{"whatever"})
	require.Len(t, got, 1)
	assert.Equal(t, transform.SourceFieldDefault, got[0].SourceField)
}

func TestResolveDoesNotMutateTemplate(t *testing.T) {
	a := NewApplier(&stubStore{})
	tmpl := Template{
		ID: "tpl-4",
		FieldMappings: []transform.FieldMapping{
			{SourceField: "UNIT_ID", TargetField: transform.FieldRespondingUnit},
		},
	}

	_ = a.Resolve(context.Background(), tmpl, []string{"unit_id"})
	assert.Equal(t, "UNIT_ID", tmpl.FieldMappings[0].SourceField)
}
