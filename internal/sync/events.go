package sync

import "time"

// Event types broadcast to sync clients.
const (
	EventMaterialUpdate     = "material.update"
	EventMaterialDelete     = "material.delete"
	EventPageUpdate         = "page.update"
	EventPageDelete         = "page.delete"
	EventGenerationStarted  = "generation.started"
	EventGenerationFinished = "generation.finished"
)

type SlideEvent struct {
	Type       string    `json:"type"`
	ProjectID  string    `json:"project_id,omitempty"`
	PageID     string    `json:"page_id,omitempty"`
	MaterialID string    `json:"material_id,omitempty"`
	Status     string    `json:"status,omitempty"`
	At         time.Time `json:"at"`
}

func NewEvent(eventType string) SlideEvent {
	return SlideEvent{Type: eventType, At: time.Now().UTC()}
}
