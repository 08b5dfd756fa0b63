package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/cad-normalizer/internal/pkg/logger"
	"github.com/ignite/cad-normalizer/internal/template"
)

// LocalStore persists templates as one JSON file per template under a
// directory. Suited to single-node installs and tests; a mutex
// serializes all mutation.
type LocalStore struct {
	dir string
	mu  sync.Mutex
}

// NewLocalStore creates a file-backed store rooted at dir, creating the
// directory if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating template dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// List reads every template file in the directory. Unreadable or corrupt
// files are skipped with a warning, not fatal: one bad record must not
// take down the whole template library.
func (s *LocalStore) List(ctx context.Context) ([]template.Template, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading template dir: %w", err)
	}

	templates := make([]template.Template, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			logger.Warn("skipping unreadable template file", "file", e.Name(), "error", err.Error())
			continue
		}
		var t template.Template
		if err := json.Unmarshal(data, &t); err != nil {
			logger.Warn("skipping corrupt template file", "file", e.Name(), "error", err.Error())
			continue
		}
		templates = append(templates, t)
	}

	sort.Slice(templates, func(i, j int) bool {
		return templates[i].CreatedAt.Before(templates[j].CreatedAt)
	})
	return templates, nil
}

func (s *LocalStore) Get(ctx context.Context, id string) (template.Template, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return template.Template{}, template.ErrNotFound
		}
		return template.Template{}, fmt.Errorf("reading template %s: %w", id, err)
	}
	var t template.Template
	if err := json.Unmarshal(data, &t); err != nil {
		return template.Template{}, fmt.Errorf("parsing template %s: %w", id, err)
	}
	return t, nil
}

func (s *LocalStore) Save(ctx context.Context, t *template.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepare(t, func() string { return uuid.New().String() })

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling template: %w", err)
	}
	if err := os.WriteFile(s.path(t.ID), data, 0o644); err != nil {
		return fmt.Errorf("writing template %s: %w", t.ID, err)
	}
	return nil
}

func (s *LocalStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return template.ErrNotFound
	}
	return err
}

func (s *LocalStore) TouchUsage(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	t.UseCount++
	t.LastUsed = &now

	data, err := json.MarshalIndent(&t, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling template: %w", err)
	}
	return os.WriteFile(s.path(id), data, 0o644)
}
