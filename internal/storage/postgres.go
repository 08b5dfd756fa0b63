package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/ignite/cad-normalizer/internal/pkg/logger"
	"github.com/ignite/cad-normalizer/internal/template"
)

// PostgresStore persists templates in a single table with the template
// body as JSONB. Usage counters live in dedicated columns so TouchUsage
// is one atomic UPDATE instead of a read-modify-write.
type PostgresStore struct{ db *sql.DB }

// NewPostgresStore creates a Postgres-backed template store.
func NewPostgresStore(db *sql.DB) *PostgresStore { return &PostgresStore{db: db} }

// EnsureSchema creates the templates table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS cad_templates (
			id         TEXT PRIMARY KEY,
			body       JSONB NOT NULL,
			use_count  INTEGER NOT NULL DEFAULT 0,
			last_used  TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure templates schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]template.Template, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, body, use_count, last_used
		FROM cad_templates
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []template.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			// Data corruption: skip the unreadable record, keep the rest
			logger.Warn("skipping corrupt template record", "error", err.Error())
			continue
		}
		templates = append(templates, t)
	}
	if templates == nil {
		templates = []template.Template{}
	}
	return templates, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTemplate(r rowScanner) (template.Template, error) {
	var (
		id       string
		body     []byte
		useCount int
		lastUsed sql.NullTime
	)
	if err := r.Scan(&id, &body, &useCount, &lastUsed); err != nil {
		return template.Template{}, err
	}
	var t template.Template
	if err := json.Unmarshal(body, &t); err != nil {
		return template.Template{}, fmt.Errorf("parse template %s: %w", id, err)
	}
	t.ID = id
	t.UseCount = useCount
	if lastUsed.Valid {
		lu := lastUsed.Time
		t.LastUsed = &lu
	}
	return t, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (template.Template, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, body, use_count, last_used
		FROM cad_templates
		WHERE id = $1
	`, id)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return template.Template{}, template.ErrNotFound
	}
	if err != nil {
		return template.Template{}, fmt.Errorf("get template %s: %w", id, err)
	}
	return t, nil
}

func (s *PostgresStore) Save(ctx context.Context, t *template.Template) error {
	prepare(t, func() string { return uuid.New().String() })

	body, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal template: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cad_templates (id, body, use_count, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET body = $2
	`, t.ID, body, t.UseCount, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("save template %s: %w", t.ID, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cad_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete template %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return template.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) TouchUsage(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE cad_templates
		SET use_count = use_count + 1, last_used = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("touch template %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return template.ErrNotFound
	}
	return nil
}
