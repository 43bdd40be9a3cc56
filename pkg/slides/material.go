package slides

import (
	"sort"
	"strings"

	"slidehub/pkg/models"
)

// MaterialDisplayName resolves the name shown for a material. Precedence:
// display_name, name, original_filename, source_filename, filename, then the
// raw URL, first non-blank wins. The result is never empty for a material
// with a URL.
func MaterialDisplayName(m models.Material) string {
	for _, s := range []string{
		m.DisplayName,
		m.Name,
		m.OriginalFilename,
		m.SourceFilename,
		m.Filename,
	} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return m.URL
}

// MatchesQuery reports whether a material matches a free-text search. The
// match is a case-insensitive substring test across display name, note,
// filename, name, original filename and source filename. An empty query
// matches everything.
func MatchesQuery(m models.Material, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	haystack := strings.ToLower(strings.Join([]string{
		m.DisplayName,
		m.Note,
		m.Filename,
		m.Name,
		m.OriginalFilename,
		m.SourceFilename,
	}, "\n"))
	return strings.Contains(haystack, q)
}

// FilterMaterials returns the materials matching query, preserving order.
func FilterMaterials(ms []models.Material, query string) []models.Material {
	out := make([]models.Material, 0, len(ms))
	for _, m := range ms {
		if MatchesQuery(m, query) {
			out = append(out, m)
		}
	}
	return out
}

// SortByCreatedAt orders materials newest first. Timestamps are compared as
// strings (RFC 3339 sorts lexicographically); materials without a timestamp
// sort last.
func SortByCreatedAt(ms []models.Material) {
	sort.SliceStable(ms, func(i, j int) bool {
		return ms[i].CreatedAt > ms[j].CreatedAt
	})
}
