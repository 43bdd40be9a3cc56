package slides

import (
	"fmt"
	"strings"

	"slidehub/pkg/models"
)

var transitionKeywords = []string{
	"过渡", "章节", "部分", "目录", "篇章",
	"section", "part", "agenda", "outline", "overview",
}

var endingKeywords = []string{
	"结尾", "总结", "致谢", "谢谢",
	"ending", "summary", "thanks", "q&a", "qa", "结论", "回顾",
}

// InferPageType classifies a slide by its position and outline title. The
// first page is always a cover and the last always an ending, regardless of
// title; in between the lower-cased title is scanned for transition keywords,
// then ending keywords, defaulting to content. The returned reason is a short
// human-readable justification for display next to an "auto" page.
func InferPageType(index, total int, title string) (pageType, reason string) {
	if index == 0 {
		return models.PageTypeCover, "first page"
	}
	if total > 0 && index == total-1 {
		return models.PageTypeEnding, "last page"
	}
	t := strings.ToLower(title)
	for _, kw := range transitionKeywords {
		if strings.Contains(t, kw) {
			return models.PageTypeTransition, fmt.Sprintf("title contains %q", kw)
		}
	}
	for _, kw := range endingKeywords {
		if strings.Contains(t, kw) {
			return models.PageTypeEnding, fmt.Sprintf("title contains %q", kw)
		}
	}
	return models.PageTypeContent, "default"
}

// EffectivePageType resolves the type used for rendering and display. An
// explicit page_type bypasses inference entirely; only "auto" (or unset)
// pages are classified by InferPageType.
func EffectivePageType(p models.Page, total int) string {
	if p.PageType != "" && p.PageType != models.PageTypeAuto {
		return p.PageType
	}
	title := ""
	if p.OutlineContent != nil {
		title = p.OutlineContent.Title
	}
	t, _ := InferPageType(p.OrderIndex, total, title)
	return t
}
