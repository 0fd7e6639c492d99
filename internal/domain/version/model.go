package version

import (
	"time"

	"github.com/propside/syncd/internal/domain/diff"
	"github.com/propside/syncd/internal/snapshot"
)

// Source identifies which editing surface produced a version.
type Source string

const (
	SourceEditor       Source = "editor"
	SourceWordOnline   Source = "word_online"
	SourceExcelOnline  Source = "excel_online"
	SourcePptxOnline   Source = "pptx_online"
	SourceGoogleDocs   Source = "google_docs"
	SourceGoogleSheets Source = "google_sheets"
)

// External reports whether the source is an external cloud editing tool
// rather than the native editor.
func (s Source) External() bool { return s != SourceEditor }

// Valid reports whether the source is one of the known editing surfaces.
func (s Source) Valid() bool {
	switch s {
	case SourceEditor, SourceWordOnline, SourceExcelOnline, SourcePptxOnline,
		SourceGoogleDocs, SourceGoogleSheets:
		return true
	}
	return false
}

// Document is a logical collaboratively-edited artifact. Documents are
// created by the authoring layer and never deleted by this subsystem.
type Document struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	DocType   string    `json:"doc_type"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Version is an immutable snapshot of one document. Numbers start at 1 and
// are strictly increasing per document; the maximum number is the current
// version. Nothing mutates a version after creation.
type Version struct {
	ID         string         `json:"id"`
	DocumentID string         `json:"document_id"`
	CompanyID  string         `json:"company_id"`
	Number     int            `json:"version_number"`
	Source     Source         `json:"source"`
	Snapshot   snapshot.Value `json:"snapshot"`
	Diff       *diff.Summary  `json:"diff_summary,omitempty"`
	CreatedBy  *string        `json:"created_by,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// DocTypeField is the snapshot field coordination rules match targets on.
const DocTypeField = "doc_type"
