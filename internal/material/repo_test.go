package material

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slidehub/pkg/database"
	"slidehub/pkg/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`PRAGMA foreign_keys = ON;`)
	require.NoError(t, err)
	require.NoError(t, database.MigrateFrom(db, "../../docs/schema.sql"))
	return db
}

func seedProject(t *testing.T, db *sql.DB, id string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO projects (id, title) VALUES (?, ?)`, id, "p-"+id)
	require.NoError(t, err)
}

func TestListScopes(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()
	seedProject(t, db, "proj1")

	require.NoError(t, repo.Create(ctx, &models.Material{
		ID: "m1", ProjectID: "proj1", FilePath: "proj1/materials/a.png", Filename: "a.png",
	}))
	require.NoError(t, repo.Create(ctx, &models.Material{
		ID: "m2", FilePath: "materials/b.png", Filename: "b.png",
	}))

	got, err := repo.List(ctx, ListQuery{ProjectID: "proj1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "m1", got[0].ID)
	assert.Equal(t, "/files/proj1/materials/a.png", got[0].URL)
	assert.NotEmpty(t, got[0].CreatedAt)

	got, err = repo.List(ctx, ListQuery{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "m2", got[0].ID)
	assert.Empty(t, got[0].ProjectID)

	got, err = repo.List(ctx, ListQuery{All: true})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestUpdateMetaUnsetsEmptyValues(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Material{
		ID: "m1", FilePath: "materials/a.png",
	}))

	m, err := repo.UpdateMeta(ctx, "m1", "  Chart  ", "quarterly numbers")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "Chart", m.DisplayName)
	assert.Equal(t, "quarterly numbers", m.Note)

	m, err = repo.UpdateMeta(ctx, "m1", "", "   ")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Empty(t, m.DisplayName)
	assert.Empty(t, m.Note)
}

func TestUpdateMetaMissingRecord(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepo(db)

	m, err := repo.UpdateMeta(context.Background(), "nope", "x", "y")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestReassignAndDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()
	seedProject(t, db, "proj1")

	require.NoError(t, repo.Create(ctx, &models.Material{
		ID: "m1", FilePath: "materials/a.png", Filename: "a.png",
	}))

	require.NoError(t, repo.Reassign(ctx, "m1", "proj1", "proj1/materials/a_1.png", "a_1.png"))
	m, err := repo.Get(ctx, "m1")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "proj1", m.ProjectID)
	assert.Equal(t, "proj1/materials/a_1.png", m.FilePath)

	ok, err := repo.Delete(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Delete(ctx, "m1")
	require.NoError(t, err)
	assert.False(t, ok)

	m, err = repo.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Nil(t, m)
}
