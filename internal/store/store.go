// Package store persists catalog versions and saved projects in SQLite.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Simplici0/sumrai/internal/catalog"
	"github.com/Simplici0/sumrai/internal/project"
)

const (
	timeLayout       = "2006-01-02T15:04:05.000Z"
	defaultListLimit = 50
	maxListLimit     = 500
)

var ErrNotFound = errors.New("not found")

// Store wraps a migrated database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New returns a Store over db. The schema must already be migrated.
func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// SaveCatalog stores c under version. Versions are immutable; saving an
// existing version fails.
func (s *Store) SaveCatalog(ctx context.Context, version int64, c *catalog.Catalog, createdBy string) error {
	body, err := catalog.MarshalJSONBytes(c)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO catalog_versions (version, body, created_by, created_at)
		VALUES (?, ?, ?, ?)
	`, version, string(body), createdBy, s.now().UTC().Format(timeLayout)); err != nil {
		return fmt.Errorf("insert catalog version %d: %w", version, err)
	}
	return nil
}

// LatestCatalog returns the highest stored catalog version.
func (s *Store) LatestCatalog(ctx context.Context) (*catalog.Catalog, int64, error) {
	var (
		version int64
		body    string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT version, body
		FROM catalog_versions
		ORDER BY version DESC
		LIMIT 1
	`).Scan(&version, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("query latest catalog: %w", err)
	}

	c, err := catalog.DecodeJSON(bytes.NewReader([]byte(body)))
	if err != nil {
		return nil, 0, fmt.Errorf("load catalog version %d: %w", version, err)
	}
	return c, version, nil
}

// Project is a saved session plus the totals of its last estimate.
type Project struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	State          *project.State `json:"state,omitempty"`
	CatalogVersion int64          `json:"catalog_version"`
	TotalCost      float64        `json:"total_cost"`
	TotalPrice     float64        `json:"total_price"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// SaveProject inserts p when it has no id and updates it otherwise. Updating
// an unknown id returns ErrNotFound. p is filled with the stored id and
// timestamps.
func (s *Store) SaveProject(ctx context.Context, p *Project) error {
	if p.State == nil {
		return fmt.Errorf("save project: state is required")
	}

	var buf bytes.Buffer
	if err := project.Encode(&buf, p.State); err != nil {
		return err
	}
	now := s.now().UTC().Truncate(time.Millisecond)
	if p.Name == "" {
		p.Name = p.State.Name()
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
		p.CreatedAt = now
		p.UpdatedAt = now
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO projects (id, name, state, catalog_version, total_cost, total_price, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, p.ID, p.Name, buf.String(), p.CatalogVersion, p.TotalCost, p.TotalPrice,
			now.Format(timeLayout), now.Format(timeLayout)); err != nil {
			return fmt.Errorf("insert project: %w", err)
		}
		return nil
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE projects
		SET name = ?, state = ?, catalog_version = ?, total_cost = ?, total_price = ?, updated_at = ?
		WHERE id = ?
	`, p.Name, buf.String(), p.CatalogVersion, p.TotalCost, p.TotalPrice, now.Format(timeLayout), p.ID)
	if err != nil {
		return fmt.Errorf("update project %s: %w", p.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update project %s: %w", p.ID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	p.UpdatedAt = now

	var created string
	if err := s.db.QueryRowContext(ctx, `SELECT created_at FROM projects WHERE id = ?`, p.ID).Scan(&created); err != nil {
		return fmt.Errorf("read project %s: %w", p.ID, err)
	}
	p.CreatedAt, err = time.Parse(timeLayout, created)
	if err != nil {
		return fmt.Errorf("parse created_at: %w", err)
	}
	return nil
}

// GetProject returns the project with id including its state.
func (s *Store) GetProject(ctx context.Context, id string) (*Project, error) {
	var (
		p       Project
		state   string
		version sql.NullInt64
		created string
		updated string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, state, catalog_version, total_cost, total_price, created_at, updated_at
		FROM projects
		WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &state, &version, &p.TotalCost, &p.TotalPrice, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query project %s: %w", id, err)
	}

	p.State, err = project.Decode(bytes.NewReader([]byte(state)))
	if err != nil {
		return nil, fmt.Errorf("decode project %s: %w", id, err)
	}
	p.CatalogVersion = version.Int64
	if err := parseTimes(&p, created, updated); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProjects returns project summaries, most recently updated first. State
// is not loaded. limit <= 0 selects the default page size.
func (s *Store) ListProjects(ctx context.Context, limit int) ([]Project, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, catalog_version, total_cost, total_price, created_at, updated_at
		FROM projects
		ORDER BY updated_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]Project, 0)
	for rows.Next() {
		var (
			p       Project
			version sql.NullInt64
			created string
			updated string
		)
		if err := rows.Scan(&p.ID, &p.Name, &version, &p.TotalCost, &p.TotalPrice, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		p.CatalogVersion = version.Int64
		if err := parseTimes(&p, created, updated); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

// DeleteProject removes the project with id.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func parseTimes(p *Project, created, updated string) error {
	var err error
	if p.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return fmt.Errorf("parse created_at: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(timeLayout, updated); err != nil {
		return fmt.Errorf("parse updated_at: %w", err)
	}
	return nil
}
