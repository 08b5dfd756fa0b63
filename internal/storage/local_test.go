package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ignite/cad-normalizer/internal/template"
	"github.com/ignite/cad-normalizer/internal/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocalStore(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func sampleTemplate(name string) *template.Template {
	return &template.Template{
		Name:       name,
		TargetTool: "response-times",
		CADVendor:  "Console One",
		FieldMappings: []transform.FieldMapping{
			{SourceField: "INC_DATE_TIME", TargetField: transform.FieldIncidentTime},
			{SourceField: "UNIT_ID", TargetField: transform.FieldRespondingUnit},
		},
		SourcePattern: template.SourceFieldPattern{
			FieldNames: []string{"INC_DATE_TIME", "UNIT_ID"},
			FieldCount: 2,
		},
	}
}

func TestLocalStoreSaveAssignsIDAndTimestamps(t *testing.T) {
	s := newLocalStore(t)
	ctx := context.Background()

	tmpl := sampleTemplate("console-one")
	require.NoError(t, s.Save(ctx, tmpl))

	assert.NotEmpty(t, tmpl.ID)
	assert.False(t, tmpl.CreatedAt.IsZero())
	assert.Equal(t, 1, tmpl.Metadata.Version)
}

func TestLocalStoreRoundTrip(t *testing.T) {
	s := newLocalStore(t)
	ctx := context.Background()

	tmpl := sampleTemplate("console-one")
	require.NoError(t, s.Save(ctx, tmpl))

	got, err := s.Get(ctx, tmpl.ID)
	require.NoError(t, err)
	assert.Equal(t, "console-one", got.Name)
	assert.Len(t, got.FieldMappings, 2)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestLocalStoreGetMissing(t *testing.T) {
	s := newLocalStore(t)
	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, template.ErrNotFound)
}

func TestLocalStoreDelete(t *testing.T) {
	s := newLocalStore(t)
	ctx := context.Background()

	tmpl := sampleTemplate("doomed")
	require.NoError(t, s.Save(ctx, tmpl))
	require.NoError(t, s.Delete(ctx, tmpl.ID))

	_, err := s.Get(ctx, tmpl.ID)
	assert.ErrorIs(t, err, template.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, tmpl.ID), template.ErrNotFound)
}

func TestLocalStoreTouchUsage(t *testing.T) {
	s := newLocalStore(t)
	ctx := context.Background()

	tmpl := sampleTemplate("used")
	require.NoError(t, s.Save(ctx, tmpl))

	require.NoError(t, s.TouchUsage(ctx, tmpl.ID))
	require.NoError(t, s.TouchUsage(ctx, tmpl.ID))

	got, err := s.Get(ctx, tmpl.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.UseCount)
	require.NotNil(t, got.LastUsed)
}

func TestLocalStoreSkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleTemplate("ok")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644))

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, "ok", all[0].Name)
}
