package generate

import (
	"image"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"slidehub/pkg/models"
	"slidehub/pkg/slides"
)

const (
	slideWidth  = 1280
	slideHeight = 720
)

// Per-type background colors, dark-on-light so the placeholder renders are
// easy to tell apart in a thumbnail strip.
var typeColors = map[string][3]float64{
	models.PageTypeCover:      {0.13, 0.22, 0.42},
	models.PageTypeTransition: {0.16, 0.35, 0.30},
	models.PageTypeEnding:     {0.30, 0.18, 0.33},
	models.PageTypeContent:    {0.96, 0.96, 0.94},
}

// RenderSlide draws a placeholder render of the page: typed background, a
// title band and one line per outline point. It stands in for the external
// image generation backend.
func RenderSlide(p models.Page, total int) image.Image {
	dc := gg.NewContext(slideWidth, slideHeight)

	pageType := slides.EffectivePageType(p, total)
	bg, ok := typeColors[pageType]
	if !ok {
		bg = typeColors[models.PageTypeContent]
	}
	dc.SetRGB(bg[0], bg[1], bg[2])
	dc.Clear()

	light := pageType == models.PageTypeContent
	if light {
		dc.SetRGB(0.15, 0.15, 0.15)
	} else {
		dc.SetRGB(1, 1, 1)
	}

	title := ""
	var points []string
	if p.OutlineContent != nil {
		title = p.OutlineContent.Title
		points = slides.CleanPoints(p.OutlineContent.Points)
	}

	dc.SetFontFace(basicfont.Face7x13)
	dc.DrawString(title, 80, 110)

	// title underline
	dc.DrawRectangle(80, 130, slideWidth-160, 4)
	dc.Fill()

	y := 200.0
	for _, pt := range points {
		dc.DrawCircle(90, y-4, 4)
		dc.Fill()
		dc.DrawString(pt, 110, y)
		y += 44
		if y > slideHeight-80 {
			break
		}
	}

	if p.Part != "" {
		dc.DrawString(p.Part, 80, slideHeight-40)
	}

	return dc.Image()
}
