package domain

// DocumentStatus represents the processing lifecycle of a document.
type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "UPLOADED"
	StatusProcessing DocumentStatus = "PROCESSING"
	StatusCompleted  DocumentStatus = "COMPLETED"
	StatusFailed     DocumentStatus = "FAILED"
)

// Terminal reports whether the status permits no further transitions.
func (s DocumentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Content types the pipeline knows how to dispatch.
const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypePDF  = "application/pdf"
	ContentTypeText = "text/plain"
	ContentTypeDoc  = "application/msword"
	ContentTypeDocX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// SupportedContentTypes maps every dispatchable content type to the
// temp-file suffix used while staging it for processing.
var SupportedContentTypes = map[string]string{
	ContentTypeJPEG: ".jpg",
	ContentTypePNG:  ".png",
	ContentTypePDF:  ".pdf",
	ContentTypeText: ".txt",
	ContentTypeDoc:  ".doc",
	ContentTypeDocX: ".docx",
}

// AllowedExtensions maps upload file extensions (without dot) to the
// content type recorded for them.
var AllowedExtensions = map[string]string{
	"jpg":  ContentTypeJPEG,
	"jpeg": ContentTypeJPEG,
	"png":  ContentTypePNG,
	"pdf":  ContentTypePDF,
	"txt":  ContentTypeText,
	"doc":  ContentTypeDoc,
	"docx": ContentTypeDocX,
}
