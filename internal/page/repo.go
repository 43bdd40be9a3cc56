package page

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"slidehub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// UpdateFields carries a partial page update. Nil fields are left alone.
type UpdateFields struct {
	Outline     *models.OutlineContent
	Description *models.DescriptionContent
	PageType    *string
	Part        *string
	Status      *string
	ImagePath   *string
}

const pageColumns = `
	id, project_id, order_index, outline_content, description_content,
	image_path, status, page_type, part, updated_at
`

func (r *Repo) Create(ctx context.Context, p *models.Page) error {
	var outline, description any
	if p.OutlineContent != nil {
		b, err := marshalContent(p.OutlineContent)
		if err != nil {
			return err
		}
		outline = b
	}
	if p.DescriptionContent != nil {
		b, err := marshalContent(p.DescriptionContent)
		if err != nil {
			return err
		}
		description = b
	}
	if p.Status == "" {
		p.Status = models.PageStatusPending
	}
	if p.PageType == "" {
		p.PageType = models.PageTypeAuto
	}
	now := time.Now().UTC()
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO pages (
			id, project_id, order_index, outline_content, description_content,
			image_path, status, page_type, part, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID, p.ProjectID, p.OrderIndex, outline, description,
		nullIfEmpty(p.ImagePath), p.Status, p.PageType, nullIfEmpty(p.Part), now,
	)
	if err != nil {
		return fmt.Errorf("insert page: %w", err)
	}
	p.UpdatedAt = now
	return nil
}

func (r *Repo) Get(ctx context.Context, id string) (*models.Page, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE id = ?`, id)
	p, err := scanPage(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repo) ListByProject(ctx context.Context, projectID string) ([]models.Page, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+pageColumns+` FROM pages
		WHERE project_id = ?
		ORDER BY order_index ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	out := make([]models.Page, 0, 8)
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) CountByProject(ctx context.Context, projectID string) (int, error) {
	var total int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM pages WHERE project_id = ?
	`, projectID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count pages: %w", err)
	}
	return total, nil
}

// Update applies the non-nil fields and bumps updated_at. Returns the
// canonical stored row, or nil when the page does not exist.
func (r *Repo) Update(ctx context.Context, id string, upd UpdateFields) (*models.Page, error) {
	var sets []string
	var args []any

	if upd.Outline != nil {
		b, err := marshalContent(upd.Outline)
		if err != nil {
			return nil, err
		}
		sets = append(sets, "outline_content = ?")
		args = append(args, b)
	}
	if upd.Description != nil {
		b, err := marshalContent(upd.Description)
		if err != nil {
			return nil, err
		}
		sets = append(sets, "description_content = ?")
		args = append(args, b)
	}
	if upd.PageType != nil {
		sets = append(sets, "page_type = ?")
		args = append(args, *upd.PageType)
	}
	if upd.Part != nil {
		sets = append(sets, "part = ?")
		args = append(args, nullIfEmpty(*upd.Part))
	}
	if upd.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *upd.Status)
	}
	if upd.ImagePath != nil {
		sets = append(sets, "image_path = ?")
		args = append(args, nullIfEmpty(*upd.ImagePath))
	}

	if len(sets) == 0 {
		return r.Get(ctx, id)
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	res, err := r.DB.ExecContext(ctx,
		`UPDATE pages SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("update page: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return r.Get(ctx, id)
}

func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM pages WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete page: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Resequence rewrites order_index to a dense 0..n-1 run after a delete.
func (r *Repo) Resequence(ctx context.Context, projectID string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin resequence: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT id FROM pages WHERE project_id = ? ORDER BY order_index ASC
	`, projectID)
	if err != nil {
		return fmt.Errorf("resequence query: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("resequence scan: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("resequence rows: %w", err)
	}

	for i, id := range ids {
		if _, err := tx.ExecContext(ctx, `
			UPDATE pages SET order_index = ? WHERE id = ?
		`, i, id); err != nil {
			return fmt.Errorf("resequence update: %w", err)
		}
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPage(row rowScanner) (models.Page, error) {
	var (
		p           models.Page
		outline     sql.NullString
		description sql.NullString
		imagePath   sql.NullString
		part        sql.NullString
	)
	if err := row.Scan(
		&p.ID, &p.ProjectID, &p.OrderIndex, &outline, &description,
		&imagePath, &p.Status, &p.PageType, &part, &p.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return p, err
		}
		return p, fmt.Errorf("scan page: %w", err)
	}
	p.ImagePath = imagePath.String
	p.Part = part.String
	if outline.Valid && outline.String != "" {
		var oc models.OutlineContent
		if err := json.Unmarshal([]byte(outline.String), &oc); err == nil {
			p.OutlineContent = &oc
		}
	}
	if description.Valid && description.String != "" {
		var dc models.DescriptionContent
		if err := json.Unmarshal([]byte(description.String), &dc); err == nil {
			p.DescriptionContent = &dc
		}
	}
	return p, nil
}

func marshalContent(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal page content: %w", err)
	}
	return string(b), nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
