package slides

import (
	"fmt"
	"regexp"
	"strings"

	"slidehub/pkg/models"
)

// MaterialsHeading introduces the trailing section of a description that
// lists materials pulled in from other pages. The merge logic keys off this
// exact line.
const MaterialsHeading = "其他页面素材："

// altFallback is used when a material's display name reduces to nothing
// after bracket stripping.
const altFallback = "素材"

// materialsSectionRe matches the heading and everything after it, anchored
// to the end of the text, so a merge replaces the whole trailing body.
var materialsSectionRe = regexp.MustCompile(`(?s)其他页面素材：\s*(.*)$`)

var imageRefRe = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)

// DescriptionText extracts the plain text from either description shape.
// A nil or unrecognized content yields the empty string.
func DescriptionText(c *models.DescriptionContent) string {
	if c == nil {
		return ""
	}
	if c.Text != "" {
		return c.Text
	}
	if len(c.TextContent) > 0 {
		return strings.Join(c.TextContent, "\n")
	}
	return ""
}

func renderMaterialRefs(ms []models.Material) string {
	lines := make([]string, 0, len(ms))
	for _, m := range ms {
		alt := strings.NewReplacer("[", "", "]", "").Replace(MaterialDisplayName(m))
		alt = strings.TrimSpace(alt)
		if alt == "" {
			alt = altFallback
		}
		lines = append(lines, fmt.Sprintf("![%s](%s)", alt, m.URL))
	}
	return strings.Join(lines, "\n")
}

// MergeMaterials rewrites description so its trailing materials section
// lists exactly ms, one Markdown image reference per material. An existing
// section is replaced wholesale; otherwise the section is appended after a
// blank line, or stands alone when the description is empty. Merging the
// same set twice yields the same text.
func MergeMaterials(description string, ms []models.Material) string {
	section := MaterialsHeading + "\n" + renderMaterialRefs(ms)
	if loc := materialsSectionRe.FindStringIndex(description); loc != nil {
		return description[:loc[0]] + section
	}
	if strings.TrimSpace(description) == "" {
		return section
	}
	return strings.TrimRight(description, "\n") + "\n\n" + section
}

// ExtractMaterialsSection returns the trailing materials section (heading
// included) and whether one was present.
func ExtractMaterialsSection(description string) (string, bool) {
	loc := materialsSectionRe.FindStringIndex(description)
	if loc == nil {
		return "", false
	}
	return description[loc[0]:], true
}

// CountMaterialRefs counts Markdown image references inside the trailing
// materials section only. Image references in the free-text body do not
// count.
func CountMaterialRefs(description string) int {
	m := materialsSectionRe.FindStringSubmatch(description)
	if m == nil {
		return 0
	}
	return len(imageRefRe.FindAllString(m[1], -1))
}

// CleanPoints trims outline points and drops blank lines, preserving order.
func CleanPoints(points []string) []string {
	out := make([]string, 0, len(points))
	for _, p := range points {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
