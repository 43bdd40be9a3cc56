package slides

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slidehub/pkg/models"
)

func TestMaterialDisplayNamePrecedence(t *testing.T) {
	m := models.Material{
		URL:              "/files/materials/a.png",
		Filename:         "a.png",
		SourceFilename:   "src.png",
		OriginalFilename: "orig.png",
		Name:             "name",
		DisplayName:      "display",
	}
	assert.Equal(t, "display", MaterialDisplayName(m))

	m.DisplayName = ""
	assert.Equal(t, "name", MaterialDisplayName(m))

	m.Name = ""
	assert.Equal(t, "orig.png", MaterialDisplayName(m))

	m.OriginalFilename = ""
	assert.Equal(t, "src.png", MaterialDisplayName(m))

	m.SourceFilename = ""
	assert.Equal(t, "a.png", MaterialDisplayName(m))

	m.Filename = ""
	assert.Equal(t, "/files/materials/a.png", MaterialDisplayName(m))
}

func TestMaterialDisplayNameNeverEmpty(t *testing.T) {
	m := models.Material{URL: "/files/materials/raw.png", DisplayName: "   "}
	assert.Equal(t, "/files/materials/raw.png", MaterialDisplayName(m))
}

func TestSortByCreatedAtDescendingMissingLast(t *testing.T) {
	ms := []models.Material{
		{ID: "a", CreatedAt: "2024-01-01"},
		{ID: "b", CreatedAt: "2024-03-01"},
		{ID: "c", CreatedAt: ""},
	}
	SortByCreatedAt(ms)
	require.Len(t, ms, 3)
	assert.Equal(t, "b", ms[0].ID)
	assert.Equal(t, "a", ms[1].ID)
	assert.Equal(t, "c", ms[2].ID)
}

func TestFilterMaterialsCaseInsensitiveAcrossFields(t *testing.T) {
	ms := []models.Material{
		{ID: "a", DisplayName: "Chart"},
		{ID: "b", Name: "diagram", Note: "Quarterly REVENUE chart"},
		{ID: "c", Filename: "photo.png"},
	}

	got := FilterMaterials(ms, "revenue")
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)

	got = FilterMaterials(ms, "CHART")
	require.Len(t, got, 2)

	assert.Len(t, FilterMaterials(ms, ""), 3)
	assert.Empty(t, FilterMaterials(ms, "missing"))
}

func TestMergeMaterialsEmptyDescription(t *testing.T) {
	out := MergeMaterials("", []models.Material{{URL: "/a.png", Name: "Cat"}})
	assert.Equal(t, "其他页面素材：\n![Cat](/a.png)", out)
}

func TestMergeMaterialsAppendsAfterBlankLine(t *testing.T) {
	out := MergeMaterials("Some intro text.", []models.Material{{URL: "/a.png", Name: "Cat"}})
	assert.Equal(t, "Some intro text.\n\n其他页面素材：\n![Cat](/a.png)", out)
}

func TestMergeMaterialsIdempotent(t *testing.T) {
	ms := []models.Material{
		{URL: "/a.png", DisplayName: "Cat"},
		{URL: "/b.png", DisplayName: "Dog"},
	}
	once := MergeMaterials("Body text.", ms)
	twice := MergeMaterials(once, ms)
	assert.Equal(t, once, twice)
	assert.Equal(t, 2, CountMaterialRefs(twice))
}

func TestMergeMaterialsReplacesExistingSection(t *testing.T) {
	desc := "Body.\n\n其他页面素材：\n![Old](/old.png)"
	out := MergeMaterials(desc, []models.Material{{URL: "/new.png", Name: "New"}})
	assert.Equal(t, "Body.\n\n其他页面素材：\n![New](/new.png)", out)
	assert.Equal(t, 1, CountMaterialRefs(out))
}

func TestMergeMaterialsStripsBracketsFromAlt(t *testing.T) {
	out := MergeMaterials("", []models.Material{{URL: "/a.png", DisplayName: " [Fig 1] "}})
	assert.Equal(t, "其他页面素材：\n![Fig 1](/a.png)", out)

	out = MergeMaterials("", []models.Material{{URL: "/a.png", DisplayName: "[]"}})
	assert.Equal(t, "其他页面素材：\n![素材](/a.png)", out)
}

func TestCountMaterialRefsIgnoresBodyImages(t *testing.T) {
	desc := "Intro ![inline](/x.png) more text."
	assert.Equal(t, 0, CountMaterialRefs(desc))

	desc += "\n\n其他页面素材：\n![A](/a.png)\n![B](/b.png)"
	assert.Equal(t, 2, CountMaterialRefs(desc))
}

func TestRebuiltDescriptionKeepsMaterialsSection(t *testing.T) {
	ms := []models.Material{
		{URL: "/a.png", DisplayName: "Cat"},
		{URL: "/b.png", DisplayName: "Dog"},
	}
	p := models.Page{
		OrderIndex: 2,
		PageType:   models.PageTypeAuto,
		OutlineContent: &models.OutlineContent{
			Title:  "实现细节",
			Points: []string{"要点一", "要点二"},
		},
	}

	withMaterials := MergeMaterials(BuildDescription(p, 5), ms)
	section, ok := ExtractMaterialsSection(withMaterials)
	require.True(t, ok)
	assert.Equal(t, 2, CountMaterialRefs(section))

	// rebuilding from the outline drops the section; re-appending the
	// extracted section restores it without losing any image refs
	rebuilt := BuildDescription(p, 5)
	assert.Equal(t, 0, CountMaterialRefs(rebuilt))
	restored := strings.TrimRight(rebuilt, "\n") + "\n\n" + section
	assert.Equal(t, 2, CountMaterialRefs(restored))
	assert.Contains(t, restored, "![Cat](/a.png)")
	assert.Contains(t, restored, "![Dog](/b.png)")

	// a later merge of the same set replaces the section in place
	assert.Equal(t, restored, MergeMaterials(restored, ms))
}

func TestExtractMaterialsSectionAbsent(t *testing.T) {
	section, ok := ExtractMaterialsSection("plain body text")
	assert.False(t, ok)
	assert.Empty(t, section)
}

func TestDescriptionText(t *testing.T) {
	assert.Equal(t, "", DescriptionText(nil))
	assert.Equal(t, "hello", DescriptionText(&models.DescriptionContent{Text: "hello"}))
	assert.Equal(t, "a\nb", DescriptionText(&models.DescriptionContent{TextContent: []string{"a", "b"}}))
	assert.Equal(t, "", DescriptionText(&models.DescriptionContent{}))
}

func TestInferPageType(t *testing.T) {
	for _, tc := range []struct {
		index, total int
		title        string
		want         string
	}{
		{0, 5, "Whatever title", models.PageTypeCover},
		{4, 5, "Whatever title", models.PageTypeEnding},
		{2, 5, "Agenda", models.PageTypeTransition},
		{2, 5, "第二部分：方法", models.PageTypeTransition},
		{2, 5, "总结与展望", models.PageTypeEnding},
		{2, 5, "Q&A", models.PageTypeEnding},
		{2, 5, "Implementation details", models.PageTypeContent},
	} {
		got, reason := InferPageType(tc.index, tc.total, tc.title)
		assert.Equalf(t, tc.want, got, "index=%d title=%q reason=%q", tc.index, tc.title, reason)
	}
}

func TestEffectivePageTypeOverrideBypassesInference(t *testing.T) {
	p := models.Page{
		OrderIndex:     2,
		PageType:       models.PageTypeContent,
		OutlineContent: &models.OutlineContent{Title: "Agenda"},
	}
	// Explicit type wins even though the title would infer transition.
	assert.Equal(t, models.PageTypeContent, EffectivePageType(p, 5))

	p.PageType = models.PageTypeAuto
	assert.Equal(t, models.PageTypeTransition, EffectivePageType(p, 5))
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "00:45", FormatElapsed(45))
	assert.Equal(t, "02:05", FormatElapsed(125))
	assert.Equal(t, "01:01:01", FormatElapsed(3661))
	assert.Equal(t, "00:00", FormatElapsed(-3))
}

func TestCleanPoints(t *testing.T) {
	got := CleanPoints([]string{" first ", "", "  ", "second"})
	assert.Equal(t, []string{"first", "second"}, got)
}
