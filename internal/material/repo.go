package material

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"slidehub/internal/filestore"
	"slidehub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// ListQuery selects one of three scopes: a single project, the global pool
// (ProjectID empty, All false), or every material (All true).
type ListQuery struct {
	ProjectID string
	All       bool
}

const materialColumns = `
	id, project_id, file_path, filename, display_name, name,
	original_filename, source_filename, prompt, note, created_at
`

func (r *Repo) List(ctx context.Context, q ListQuery) ([]models.Material, error) {
	sqlStr := `SELECT ` + materialColumns + ` FROM materials`
	var args []any

	switch {
	case q.All:
		// no filter
	case q.ProjectID == "":
		sqlStr += ` WHERE project_id IS NULL`
	default:
		sqlStr += ` WHERE project_id = ?`
		args = append(args, q.ProjectID)
	}
	sqlStr += ` ORDER BY created_at DESC, id`

	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()

	out := make([]models.Material, 0, 16)
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*models.Material, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+materialColumns+` FROM materials WHERE id = ?`, id)
	m, err := scanMaterial(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *Repo) Create(ctx context.Context, m *models.Material) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO materials (
			id, project_id, file_path, filename, display_name, name,
			original_filename, source_filename, prompt, note, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`,
		m.ID, nullable(m.ProjectID), m.FilePath, nullable(m.Filename),
		nullable(m.DisplayName), nullable(m.Name), nullable(m.OriginalFilename),
		nullable(m.SourceFilename), nullable(m.Prompt), nullable(m.Note),
	)
	if err != nil {
		return fmt.Errorf("insert material: %w", err)
	}
	saved, err := r.Get(ctx, m.ID)
	if err != nil {
		return err
	}
	if saved != nil {
		*m = *saved
	}
	return nil
}

// UpdateMeta sets display_name and note. Values are trimmed; an empty
// string clears the column.
func (r *Repo) UpdateMeta(ctx context.Context, id, displayName, note string) (*models.Material, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE materials SET display_name = ?, note = ? WHERE id = ?
	`, nullable(strings.TrimSpace(displayName)), nullable(strings.TrimSpace(note)), id)
	if err != nil {
		return nil, fmt.Errorf("update material meta: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return r.Get(ctx, id)
}

// Reassign points a material at a new owner (empty projectID = global pool)
// and records the relocated file path and name.
func (r *Repo) Reassign(ctx context.Context, id, projectID, filePath, filename string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE materials SET project_id = ?, file_path = ?, filename = ? WHERE id = ?
	`, nullable(projectID), filePath, nullable(filename), id)
	if err != nil {
		return fmt.Errorf("reassign material: %w", err)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM materials WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete material: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMaterial(row rowScanner) (models.Material, error) {
	var (
		m         models.Material
		projectID sql.NullString
		filename  sql.NullString
		display   sql.NullString
		name      sql.NullString
		origName  sql.NullString
		srcName   sql.NullString
		prompt    sql.NullString
		note      sql.NullString
		created   time.Time
	)
	if err := row.Scan(
		&m.ID, &projectID, &m.FilePath, &filename, &display, &name,
		&origName, &srcName, &prompt, &note, &created,
	); err != nil {
		if err == sql.ErrNoRows {
			return m, err
		}
		return m, fmt.Errorf("scan material: %w", err)
	}
	m.ProjectID = projectID.String
	m.Filename = filename.String
	m.DisplayName = display.String
	m.Name = name.String
	m.OriginalFilename = origName.String
	m.SourceFilename = srcName.String
	m.Prompt = prompt.String
	m.Note = note.String
	m.CreatedAt = created.UTC().Format(time.RFC3339)
	m.URL = filestore.FileURL(m.FilePath)
	return m, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
