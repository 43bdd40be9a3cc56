package models

// Material is an image asset that can be attached to a project or live in
// the global pool (empty ProjectID). CreatedAt is kept as an RFC 3339 string
// so clients can order materials with a plain string compare; records without
// a timestamp sort last.
type Material struct {
	ID               string `json:"id"`
	ProjectID        string `json:"project_id,omitempty"`
	FilePath         string `json:"file_path,omitempty"`
	URL              string `json:"url"`
	Filename         string `json:"filename,omitempty"`
	DisplayName      string `json:"display_name,omitempty"`
	Name             string `json:"name,omitempty"`
	OriginalFilename string `json:"original_filename,omitempty"`
	SourceFilename   string `json:"source_filename,omitempty"`
	Prompt           string `json:"prompt,omitempty"`
	Note             string `json:"note,omitempty"`
	CreatedAt        string `json:"created_at,omitempty"`
}
