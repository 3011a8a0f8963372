package classify

import (
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"papyr/internal/domain"
)

// Metadata is the result of classifying one upload. It lives only for
// the duration of the classify call; downstream stages use it to pick
// a branch but never persist it.
type Metadata struct {
	MIMEType    string `json:"type"`
	Size        int    `json:"size"`
	FileName    string `json:"filename"`
	IsText      bool   `json:"is_text"`
	IsImage     bool   `json:"is_image"`
	IsPDF       bool   `json:"is_pdf"`
	IsOfficeDoc bool   `json:"is_office_doc"`
	// Optional filename-derived hints.
	FileNameDate string `json:"filename_date,omitempty"`
	FileNameID   string `json:"filename_id,omitempty"`
}

// Filename date patterns, tried in order; the first match wins.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}`), // YYYY-MM-DD
	regexp.MustCompile(`\d{2}-\d{2}-\d{4}`), // DD-MM-YYYY
	regexp.MustCompile(`\d{8}`),             // YYYYMMDD
}

// Invoice numbers, order references and similar codes: an uppercase
// 2-3 letter prefix, a hyphen, 4-6 digits.
var idPattern = regexp.MustCompile(`[A-Z]{2,3}-\d{4,6}`)

// Classify sniffs the content type from the raw bytes and extracts
// metadata hints from the filename. The declared content type and the
// filename extension are never trusted; uploads lie.
func Classify(data []byte, fileName string) (*Metadata, error) {
	if len(data) == 0 {
		return nil, domain.ErrEmptyFile
	}

	mime := mimetype.Detect(data).String()
	// Drop parameters such as "; charset=utf-8" before prefix checks.
	if base, _, found := strings.Cut(mime, ";"); found {
		mime = strings.TrimSpace(base)
	}

	meta := &Metadata{
		MIMEType: mime,
		Size:     len(data),
		FileName: fileName,
	}

	switch {
	case strings.HasPrefix(mime, "text/"):
		meta.IsText = true
	case strings.HasPrefix(mime, "image/"):
		meta.IsImage = true
	case mime == "application/pdf":
		meta.IsPDF = true
	case strings.Contains(mime, "word") || strings.Contains(mime, "excel") || strings.Contains(mime, "powerpoint"):
		// Best-effort: office formats with non-standard MIME strings
		// slip through as unclassified rather than false-positive.
		meta.IsOfficeDoc = true
	}

	meta.FileNameDate, meta.FileNameID = fileNameMetadata(fileName)

	return meta, nil
}

func fileNameMetadata(fileName string) (date, id string) {
	for _, p := range datePatterns {
		if m := p.FindString(fileName); m != "" {
			date = m
			break
		}
	}
	id = idPattern.FindString(fileName)
	return date, id
}
