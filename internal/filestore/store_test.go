package filestore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "cat.png", SanitizeFilename("cat.png"))
	assert.Equal(t, "cat.png", SanitizeFilename("../../etc/cat.png"))
	assert.Equal(t, "my_chart.png", SanitizeFilename("my chart!.png"))
	assert.Equal(t, "a_b.png", SanitizeFilename("a \t b.png"))
	assert.Equal(t, "季度图表.png", SanitizeFilename("季度图表.png"))
	assert.Equal(t, "material", SanitizeFilename("###"))
}

func TestSaveMaterialScopes(t *testing.T) {
	s := newTestStore(t)

	rel, name, err := s.SaveMaterial(strings.NewReader("img"), "", "cat.png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, "materials/"), "global rel path %q", rel)
	assert.True(t, strings.HasPrefix(name, "cat_"))
	assert.True(t, strings.HasSuffix(name, ".png"))

	rel, _, err = s.SaveMaterial(strings.NewReader("img"), "proj1", "dog.jpg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, "proj1/materials/"), "project rel path %q", rel)

	b, err := os.ReadFile(s.Abs(rel))
	require.NoError(t, err)
	assert.Equal(t, "img", string(b))
}

func TestCopyMaterial(t *testing.T) {
	s := newTestStore(t)
	rel, _, err := s.SaveMaterial(strings.NewReader("img"), "proj1", "cat.png")
	require.NoError(t, err)

	copied, name, err := s.CopyMaterial(rel, "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(copied, "materials/"))
	assert.NotEmpty(t, name)

	// source still in place
	_, err = os.Stat(s.Abs(rel))
	assert.NoError(t, err)
	_, err = os.Stat(s.Abs(copied))
	assert.NoError(t, err)
}

func TestMoveMaterial(t *testing.T) {
	s := newTestStore(t)
	rel, _, err := s.SaveMaterial(strings.NewReader("img"), "", "cat.png")
	require.NoError(t, err)

	moved, _, err := s.MoveMaterial(rel, "proj2")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(moved, "proj2/materials/"))

	_, err = os.Stat(s.Abs(rel))
	assert.True(t, os.IsNotExist(err), "source should be gone")

	// moving into the directory it already lives in is an identity op
	same, name, err := s.MoveMaterial(moved, "proj2")
	require.NoError(t, err)
	assert.Equal(t, moved, same)
	assert.Equal(t, filepath.Base(s.Abs(moved)), name)
}

func TestMoveMaterialMissingSource(t *testing.T) {
	s := newTestStore(t)
	_, _, err := s.MoveMaterial("materials/nope.png", "proj1")
	assert.Error(t, err)
}

func TestDeletePageImages(t *testing.T) {
	s := newTestStore(t)
	dir := filepath.Join(s.Root, "proj1", "pages")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, f := range []string{"page1_100.png", "page1_200.png", "page2_100.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("x"), 0o644))
	}

	require.NoError(t, s.DeletePageImages("proj1", "page1"))

	left, err := filepath.Glob(filepath.Join(dir, "*"))
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "page2_100.png", filepath.Base(left[0]))
}

func TestFileURL(t *testing.T) {
	assert.Equal(t, "/files/materials/a.png", FileURL("materials/a.png"))
	assert.Equal(t, "/files/p1/pages/x.png", FileURL("p1/pages/x.png"))
}
