package template

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a template ID has no stored record.
var ErrNotFound = errors.New("template not found")

// Store is the persistence boundary for templates. Implementations must
// serialize concurrent mutation and must skip, not fail on, unreadable
// persisted records. Returned templates are copies the caller may freely
// mutate.
type Store interface {
	// List returns every stored template.
	List(ctx context.Context) ([]Template, error)
	// Get returns one template by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (Template, error)
	// Save persists a template, assigning an ID and creation time when
	// absent.
	Save(ctx context.Context, t *Template) error
	// Delete removes a template by ID, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
	// TouchUsage increments the template's use count and stamps its
	// last-used time.
	TouchUsage(ctx context.Context, id string) error
}
