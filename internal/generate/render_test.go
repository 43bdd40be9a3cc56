package generate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slidehub/pkg/models"
)

func TestRenderSlideDimensions(t *testing.T) {
	p := models.Page{
		ID:         "p1",
		OrderIndex: 1,
		PageType:   models.PageTypeAuto,
		OutlineContent: &models.OutlineContent{
			Title:  "Implementation",
			Points: []string{"first point", "second point"},
		},
	}
	img := RenderSlide(p, 5)
	require.NotNil(t, img)
	b := img.Bounds()
	assert.Equal(t, slideWidth, b.Dx())
	assert.Equal(t, slideHeight, b.Dy())
}

func TestRenderSlideHandlesEmptyOutline(t *testing.T) {
	img := RenderSlide(models.Page{ID: "p1"}, 1)
	require.NotNil(t, img)
}
