package page

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

	_, err = db.Exec(`INSERT INTO projects (id, title) VALUES ('proj1', 'Demo')`)
	require.NoError(t, err)
	return db
}

func TestCreateAppliesDefaults(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	p := &models.Page{
		ID:        "p1",
		ProjectID: "proj1",
		OutlineContent: &models.OutlineContent{
			Title:  "介绍",
			Points: []string{"one", "two"},
		},
	}
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.PageStatusPending, got.Status)
	assert.Equal(t, models.PageTypeAuto, got.PageType)
	require.NotNil(t, got.OutlineContent)
	assert.Equal(t, "介绍", got.OutlineContent.Title)
	assert.Equal(t, []string{"one", "two"}, got.OutlineContent.Points)
}

func TestUpdatePartialFields(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Page{
		ID: "p1", ProjectID: "proj1",
		OutlineContent: &models.OutlineContent{Title: "原标题"},
	}))

	pageType := models.PageTypeTransition
	got, err := repo.Update(ctx, "p1", UpdateFields{PageType: &pageType})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.PageTypeTransition, got.PageType)
	// untouched fields survive
	require.NotNil(t, got.OutlineContent)
	assert.Equal(t, "原标题", got.OutlineContent.Title)

	desc := &models.DescriptionContent{Text: "正文"}
	got, err = repo.Update(ctx, "p1", UpdateFields{Description: desc})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.DescriptionContent)
	assert.Equal(t, "正文", got.DescriptionContent.Text)
	assert.Equal(t, models.PageTypeTransition, got.PageType)
}

func TestUpdateMissingPage(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepo(db)

	status := models.PageStatusCompleted
	got, err := repo.Update(context.Background(), "nope", UpdateFields{Status: &status})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResequenceAfterDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	for i, id := range []string{"p1", "p2", "p3"} {
		require.NoError(t, repo.Create(ctx, &models.Page{
			ID: id, ProjectID: "proj1", OrderIndex: i,
		}))
	}

	ok, err := repo.Delete(ctx, "p2")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, repo.Resequence(ctx, "proj1"))

	pages, err := repo.ListByProject(ctx, "proj1")
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "p1", pages[0].ID)
	assert.Equal(t, 0, pages[0].OrderIndex)
	assert.Equal(t, "p3", pages[1].ID)
	assert.Equal(t, 1, pages[1].OrderIndex)
}

func TestListTextContentShapeReadable(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	// legacy rows store the description as a fragment list
	_, err := db.Exec(`
		INSERT INTO pages (id, project_id, order_index, description_content)
		VALUES ('p1', 'proj1', 0, '{"text_content":["第一段","第二段"]}')
	`)
	require.NoError(t, err)

	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.DescriptionContent)
	assert.Equal(t, []string{"第一段", "第二段"}, got.DescriptionContent.TextContent)
}
