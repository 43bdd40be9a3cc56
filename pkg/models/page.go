package models

import "time"

// Page statuses. A page sits in "pending" until its first render is queued.
const (
	PageStatusPending    = "pending"
	PageStatusGenerating = "generating"
	PageStatusCompleted  = "completed"
	PageStatusFailed     = "failed"
)

// Page types. "auto" means the effective type is inferred from the page's
// position and outline title; any other value is an explicit human override
// and is never re-inferred.
const (
	PageTypeAuto       = "auto"
	PageTypeCover      = "cover"
	PageTypeContent    = "content"
	PageTypeTransition = "transition"
	PageTypeEnding     = "ending"
)

// OutlineContent is the editable outline of one slide: a title plus an
// ordered list of bullet points.
type OutlineContent struct {
	Title  string   `json:"title"`
	Points []string `json:"points"`
}

// DescriptionContent carries the slide description in one of two shapes:
// a single text blob, or an ordered list of fragments joined by newlines.
// Editors always write back the single-text shape.
type DescriptionContent struct {
	Text        string   `json:"text,omitempty"`
	TextContent []string `json:"text_content,omitempty"`
}

type Page struct {
	ID                 string              `json:"id"`
	ProjectID          string              `json:"project_id"`
	OrderIndex         int                 `json:"order_index"`
	OutlineContent     *OutlineContent     `json:"outline_content,omitempty"`
	DescriptionContent *DescriptionContent `json:"description_content,omitempty"`
	ImagePath          string              `json:"image_path,omitempty"`
	Status             string              `json:"status"`
	PageType           string              `json:"page_type"`
	Part               string              `json:"part,omitempty"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

func ValidPageType(t string) bool {
	switch t {
	case PageTypeAuto, PageTypeCover, PageTypeContent, PageTypeTransition, PageTypeEnding:
		return true
	}
	return false
}
