package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"slidehub/internal/filestore"
	"slidehub/internal/material"
	"slidehub/pkg/database"
	"slidehub/pkg/models"
)

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".svg":  true,
}

// Registers every image file in a directory as a material: copies it
// into the upload store and inserts a record. Used to seed a project
// (or the global pool) from an existing folder of assets.
func main() {
	var (
		dir       = flag.String("dir", "", "directory to scan for images")
		projectID = flag.String("project", "", "target project id (empty = global pool)")
		uploadDir = flag.String("uploads", "uploads", "upload store root")
	)
	flag.Parse()

	if *dir == "" {
		log.Fatal("--dir is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	files, err := filestore.New(*uploadDir)
	if err != nil {
		log.Fatalf("init upload dir failed: %v", err)
	}
	repo := material.NewRepo(db)

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("read dir failed: %v", err)
	}

	imported := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !imageExts[strings.ToLower(filepath.Ext(name))] {
			continue
		}

		if err := importOne(ctx, repo, files, *projectID, filepath.Join(*dir, name), name); err != nil {
			log.Fatalf("import %s failed: %v", name, err)
		}
		imported++
	}

	log.Printf("✅ imported %d material(s) from %s", imported, *dir)
}

func importOne(ctx context.Context, repo *material.Repo, files *filestore.Store, projectID, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	relPath, storedName, err := files.SaveMaterial(f, projectID, name)
	if err != nil {
		return err
	}

	m := &models.Material{
		ID:               uuid.NewString(),
		ProjectID:        projectID,
		FilePath:         relPath,
		Filename:         storedName,
		OriginalFilename: name,
	}
	if err := repo.Create(ctx, m); err != nil {
		// keep the store consistent with the table
		_ = files.DeleteFile(relPath)
		return err
	}
	return nil
}
