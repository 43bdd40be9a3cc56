package slides

import (
	"fmt"
	"strings"

	"slidehub/pkg/models"
)

// BuildDescription drafts a description for a slide from its outline. The
// template varies by effective page type; outline points are carried over as
// a bullet list. Output is deterministic for a given page, so regenerating
// without changing the outline is a no-op apart from timestamps.
func BuildDescription(p models.Page, total int) string {
	title := ""
	var points []string
	if p.OutlineContent != nil {
		title = strings.TrimSpace(p.OutlineContent.Title)
		points = CleanPoints(p.OutlineContent.Points)
	}
	if title == "" {
		title = "未命名页面"
	}

	var lines []string
	switch EffectivePageType(p, total) {
	case models.PageTypeCover:
		lines = append(lines, fmt.Sprintf("封面页，主标题“%s”，整体风格简洁，突出主题。", title))
	case models.PageTypeTransition:
		lines = append(lines, fmt.Sprintf("过渡页“%s”，承上启下，引出下一部分内容。", title))
	case models.PageTypeEnding:
		lines = append(lines, fmt.Sprintf("结尾页“%s”，总结核心要点并致谢。", title))
	default:
		lines = append(lines, fmt.Sprintf("内容页“%s”，逐条展开以下要点：", title))
	}
	for _, pt := range points {
		lines = append(lines, "- "+pt)
	}
	return strings.Join(lines, "\n")
}
