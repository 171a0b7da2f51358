// internal/models/export.go
package models

import "time"

// ExportFormat enumerates the supported export renderings
type ExportFormat string

const (
	ExportPDF      ExportFormat = "pdf"
	ExportMarkdown ExportFormat = "markdown"
	ExportText     ExportFormat = "txt"
	ExportJSON     ExportFormat = "json"
)

// Valid reports whether f is a supported export format
func (f ExportFormat) Valid() bool {
	switch f {
	case ExportPDF, ExportMarkdown, ExportText, ExportJSON:
		return true
	}
	return false
}

// ExportResult describes one rendered campaign artifact on disk
type ExportResult struct {
	ID       string       `json:"id"`
	UserID   string       `json:"user_id"`
	Format   ExportFormat `json:"format"`
	FileName string       `json:"file_name"`
	FilePath string       `json:"file_path"`
	Size     int64        `json:"size"`

	// FellBack is set when PDF rendering failed and the artifact is the
	// plain-text rendering of the same content
	FellBack bool `json:"fell_back,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
