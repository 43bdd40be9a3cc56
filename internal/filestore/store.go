package filestore

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Store manages the upload directory layout:
//
//	<root>/materials/...                 global material pool
//	<root>/<projectID>/materials/...     project-scoped materials
//	<root>/<projectID>/pages/...         generated page images
//
// All returned paths are slash-separated and relative to the root, suitable
// for storing in the database and for building /files/ URLs.
type Store struct {
	Root string
}

func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("ensure upload dir: %w", err)
	}
	return &Store{Root: root}, nil
}

var (
	whitespaceRuns = regexp.MustCompile(`\s+`)
	unsafeChars    = regexp.MustCompile(`[^A-Za-z0-9._\x{4e00}-\x{9fff}-]+`)
)

// SanitizeFilename strips directory components, turns whitespace runs into
// a single underscore and drops any other unsafe characters. An empty
// result falls back to "material".
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	name = whitespaceRuns.ReplaceAllString(name, "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "._")
	if name == "" {
		return "material"
	}
	return name
}

// materialFilename builds a unique stored name from an uploaded filename,
// keeping the base and extension and appending a millisecond timestamp.
func materialFilename(original string) string {
	safe := SanitizeFilename(original)
	ext := strings.ToLower(filepath.Ext(safe))
	if ext == "" {
		ext = ".png"
	}
	base := strings.TrimSuffix(safe, filepath.Ext(safe))
	if base == "" {
		base = "material"
	}
	return fmt.Sprintf("%s_%d%s", base, time.Now().UnixMilli(), ext)
}

func (s *Store) materialsDir(projectID string) (string, error) {
	dir := filepath.Join(s.Root, "materials")
	if projectID != "" {
		dir = filepath.Join(s.Root, projectID, "materials")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure materials dir: %w", err)
	}
	return dir, nil
}

func (s *Store) pagesDir(projectID string) (string, error) {
	dir := filepath.Join(s.Root, projectID, "pages")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure pages dir: %w", err)
	}
	return dir, nil
}

func (s *Store) rel(abs string) string {
	r, err := filepath.Rel(s.Root, abs)
	if err != nil {
		return abs
	}
	return filepath.ToSlash(r)
}

// Abs resolves a stored relative path to an absolute one.
func (s *Store) Abs(relPath string) string {
	return filepath.Join(s.Root, filepath.FromSlash(strings.ReplaceAll(relPath, `\`, "/")))
}

// FileURL maps a stored relative path to its public /files/ URL.
func FileURL(relPath string) string {
	return "/files/" + strings.TrimPrefix(filepath.ToSlash(relPath), "/")
}

// SaveMaterial writes an uploaded material into the project's materials dir
// (or the global pool for an empty projectID) and returns the stored
// relative path and filename.
func (s *Store) SaveMaterial(r io.Reader, projectID, originalFilename string) (string, string, error) {
	dir, err := s.materialsDir(projectID)
	if err != nil {
		return "", "", err
	}
	name := materialFilename(originalFilename)
	target := filepath.Join(dir, name)

	f, err := os.Create(target)
	if err != nil {
		return "", "", fmt.Errorf("create material file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(target)
		return "", "", fmt.Errorf("write material file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", "", fmt.Errorf("close material file: %w", err)
	}
	return s.rel(target), name, nil
}

// SavePageImage encodes a rendered page as PNG under the project's pages
// dir with a timestamped version filename.
func (s *Store) SavePageImage(img image.Image, projectID, pageID string) (string, error) {
	dir, err := s.pagesDir(projectID)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s_%d.png", pageID, time.Now().UnixMilli())
	target := filepath.Join(dir, name)

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create page image: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(target)
		return "", fmt.Errorf("encode page image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close page image: %w", err)
	}
	return s.rel(target), nil
}

// CopyMaterial duplicates a stored material into the target project (empty
// target = global pool) and returns the new relative path and filename.
func (s *Store) CopyMaterial(relPath, targetProjectID string) (string, string, error) {
	src := s.Abs(relPath)
	in, err := os.Open(src)
	if err != nil {
		return "", "", fmt.Errorf("material file not found: %s: %w", relPath, err)
	}
	defer in.Close()

	dir, err := s.materialsDir(targetProjectID)
	if err != nil {
		return "", "", err
	}
	name := materialFilename(filepath.Base(src))
	target := filepath.Join(dir, name)

	out, err := os.Create(target)
	if err != nil {
		return "", "", fmt.Errorf("create copy target: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(target)
		return "", "", fmt.Errorf("copy material: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", "", fmt.Errorf("close copy target: %w", err)
	}
	return s.rel(target), name, nil
}

// MoveMaterial relocates a stored material into the target project's
// materials dir. Moving into the directory the file already lives in is an
// identity operation.
func (s *Store) MoveMaterial(relPath, targetProjectID string) (string, string, error) {
	src := s.Abs(relPath)
	if _, err := os.Stat(src); err != nil {
		return "", "", fmt.Errorf("material file not found: %s: %w", relPath, err)
	}

	dir, err := s.materialsDir(targetProjectID)
	if err != nil {
		return "", "", err
	}
	if filepath.Dir(src) == dir {
		return filepath.ToSlash(relPath), filepath.Base(src), nil
	}

	name := materialFilename(filepath.Base(src))
	target := filepath.Join(dir, name)
	if err := os.Rename(src, target); err != nil {
		return "", "", fmt.Errorf("move material: %w", err)
	}
	return s.rel(target), name, nil
}

// DeleteFile removes a stored file. A missing file is not an error.
func (s *Store) DeleteFile(relPath string) error {
	if relPath == "" {
		return nil
	}
	err := os.Remove(s.Abs(relPath))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// DeletePageImages removes every generated version for a page.
func (s *Store) DeletePageImages(projectID, pageID string) error {
	dir := filepath.Join(s.Root, projectID, "pages")
	matches, err := filepath.Glob(filepath.Join(dir, pageID+"_*"))
	if err != nil {
		return fmt.Errorf("glob page images: %w", err)
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("delete page image: %w", err)
		}
	}
	return nil
}

// DeleteProjectFiles removes the whole per-project directory tree.
func (s *Store) DeleteProjectFiles(projectID string) error {
	if projectID == "" {
		return nil
	}
	if err := os.RemoveAll(filepath.Join(s.Root, projectID)); err != nil {
		return fmt.Errorf("delete project files: %w", err)
	}
	return nil
}
