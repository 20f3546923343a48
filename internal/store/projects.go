package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/construction-forecast/pkg/params"
	"github.com/iwvelando/construction-forecast/pkg/project"
	"go.uber.org/zap"
)

// SavedProject is a named set of inputs and overrides.
type SavedProject struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Inputs    project.Inputs   `json:"inputs"`
	Overrides params.Overrides `json:"overrides,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

const projectColumns = `id, name, inputs, overrides, created_at, updated_at`

// Save stores a new project and returns it with its generated id.
func (s *Store) Save(ctx context.Context, name string, in project.Inputs, overrides params.Overrides) (*SavedProject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = in.Location
	}
	now := s.now().UTC().Truncate(time.Second)
	p := &SavedProject{
		ID:        uuid.New().String(),
		Name:      name,
		Inputs:    in,
		Overrides: overrides,
		CreatedAt: now,
		UpdatedAt: now,
	}

	inputsJSON, overridesJSON, err := encode(p)
	if err != nil {
		return nil, err
	}
	query := `INSERT INTO projects (` + projectColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		p.ID,
		p.Name,
		inputsJSON,
		overridesJSON,
		p.CreatedAt.Format(time.RFC3339),
		p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting project: %w", err)
	}

	s.logger.Info("saved project",
		zap.String("op", "store.Save"),
		zap.String("id", p.ID),
		zap.String("name", p.Name),
	)
	return p, nil
}

// Update replaces the name, inputs and overrides of an existing project.
func (s *Store) Update(ctx context.Context, p *SavedProject) error {
	inputsJSON, overridesJSON, err := encode(p)
	if err != nil {
		return err
	}
	p.UpdatedAt = s.now().UTC().Truncate(time.Second)

	query := `UPDATE projects SET name = ?, inputs = ?, overrides = ?, updated_at = ? WHERE id = ?`
	res, err := s.db.ExecContext(ctx, query, p.Name, inputsJSON, overridesJSON, p.UpdatedAt.Format(time.RFC3339), p.ID)
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	return expectRow(res, p.ID)
}

// Get returns the project with the given id.
func (s *Store) Get(ctx context.Context, id string) (*SavedProject, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`
	p, err := scanProject(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return p, err
}

// List returns every saved project, most recently updated first.
func (s *Store) List(ctx context.Context) ([]*SavedProject, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY updated_at DESC, name`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*SavedProject
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}

// Delete removes the project with the given id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	if err := expectRow(res, id); err != nil {
		return err
	}
	s.logger.Info("deleted project",
		zap.String("op", "store.Delete"),
		zap.String("id", id),
	)
	return nil
}

func expectRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return nil
}

func encode(p *SavedProject) (string, string, error) {
	inputsJSON, err := json.Marshal(p.Inputs)
	if err != nil {
		return "", "", fmt.Errorf("encoding project inputs: %w", err)
	}
	overrides := p.Overrides
	if overrides == nil {
		overrides = params.Overrides{}
	}
	overridesJSON, err := json.Marshal(overrides)
	if err != nil {
		return "", "", fmt.Errorf("encoding project overrides: %w", err)
	}
	return string(inputsJSON), string(overridesJSON), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (*SavedProject, error) {
	var p SavedProject
	var inputsJSON, overridesJSON, createdAt, updatedAt string
	if err := row.Scan(&p.ID, &p.Name, &inputsJSON, &overridesJSON, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}

	if err := json.Unmarshal([]byte(inputsJSON), &p.Inputs); err != nil {
		return nil, fmt.Errorf("decoding inputs of project %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(overridesJSON), &p.Overrides); err != nil {
		return nil, fmt.Errorf("decoding overrides of project %s: %w", p.ID, err)
	}
	if len(p.Overrides) == 0 {
		p.Overrides = nil
	}

	var err error
	if p.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &p, nil
}
