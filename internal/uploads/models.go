package uploads

// Kind tells which inspection an uploaded file went through.
type Kind string

const (
	KindPDF Kind = "pdf"
	KindXML Kind = "xml"
)

// FileMetadata describes a stored file.
type FileMetadata struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	Size      int64  `json:"size"`
	MimeType  string `json:"mime_type"`
	Kind      Kind   `json:"kind"`
	PageCount int    `json:"page_count,omitempty"`
}
