package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"slidehub/pkg/database"
)

func main() {
	var (
		materialsOut = flag.String("materials", "data/materials.csv", "output CSV path for materials")
		pagesOut     = flag.String("pages", "data/pages.csv", "output CSV path for pages")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := exportMaterials(ctx, db, *materialsOut); err != nil {
		log.Fatalf("export materials failed: %v", err)
	}
	if err := exportPages(ctx, db, *pagesOut); err != nil {
		log.Fatalf("export pages failed: %v", err)
	}

	log.Printf("✅ exported materials to %s and pages to %s", *materialsOut, *pagesOut)
}

func exportMaterials(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "project_id", "file_path", "filename", "display_name", "name", "original_filename", "source_filename", "note", "created_at"}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
        SELECT id, project_id, file_path, filename, display_name, name, original_filename, source_filename, note, created_at
        FROM materials
        ORDER BY created_at DESC
    `)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id        string
			projectID sql.NullString
			filePath  sql.NullString
			filename  sql.NullString
			display   sql.NullString
			name      sql.NullString
			original  sql.NullString
			source    sql.NullString
			note      sql.NullString
			createdAt sql.NullTime
		)

		if err := rows.Scan(&id, &projectID, &filePath, &filename, &display, &name, &original, &source, &note, &createdAt); err != nil {
			return err
		}

		created := ""
		if createdAt.Valid {
			created = createdAt.Time.UTC().Format(time.RFC3339)
		}

		if err := w.Write([]string{
			id,
			projectID.String,
			filePath.String,
			filename.String,
			display.String,
			name.String,
			original.String,
			source.String,
			note.String,
			created,
		}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

func exportPages(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "project_id", "order_index", "status", "page_type", "part", "outline_content", "description_content", "image_path", "updated_at"}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
        SELECT id, project_id, order_index, status, page_type, part, outline_content, description_content, image_path, updated_at
        FROM pages
        ORDER BY project_id, order_index
    `)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id          string
			projectID   string
			orderIndex  int64
			status      sql.NullString
			pageType    sql.NullString
			part        sql.NullString
			outline     sql.NullString
			description sql.NullString
			imagePath   sql.NullString
			updatedAt   sql.NullTime
		)

		if err := rows.Scan(&id, &projectID, &orderIndex, &status, &pageType, &part, &outline, &description, &imagePath, &updatedAt); err != nil {
			return err
		}

		updated := ""
		if updatedAt.Valid {
			updated = updatedAt.Time.UTC().Format(time.RFC3339)
		}

		if err := w.Write([]string{
			id,
			projectID,
			strconv.FormatInt(orderIndex, 10),
			status.String,
			pageType.String,
			part.String,
			outline.String,
			description.String,
			imagePath.String,
			updated,
		}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}
