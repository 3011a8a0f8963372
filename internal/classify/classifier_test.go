package classify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"papyr/internal/classify"
	"papyr/internal/domain"
)

var jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01}

func TestClassify_EmptyBuffer(t *testing.T) {
	meta, err := classify.Classify(nil, "empty.pdf")

	assert.Nil(t, meta)
	assert.ErrorIs(t, err, domain.ErrEmptyFile)
}

func TestClassify_JPEG(t *testing.T) {
	meta, err := classify.Classify(jpegHeader, "scan.jpg")

	assert.NoError(t, err)
	assert.Equal(t, "image/jpeg", meta.MIMEType)
	assert.True(t, meta.IsImage)
	assert.False(t, meta.IsPDF)
	assert.Equal(t, len(jpegHeader), meta.Size)
}

func TestClassify_PDF(t *testing.T) {
	meta, err := classify.Classify([]byte("%PDF-1.4\n1 0 obj\n<< >>\nendobj\n"), "invoice.pdf")

	assert.NoError(t, err)
	assert.Equal(t, "application/pdf", meta.MIMEType)
	assert.True(t, meta.IsPDF)
}

func TestClassify_PlainTextStripsCharset(t *testing.T) {
	meta, err := classify.Classify([]byte("Invoice Number: INV-12345\n"), "note.txt")

	assert.NoError(t, err)
	assert.Equal(t, "text/plain", meta.MIMEType)
	assert.True(t, meta.IsText)
}

func TestClassify_SniffsContentNotExtension(t *testing.T) {
	// JPEG bytes behind a .pdf name classify as an image.
	meta, err := classify.Classify(jpegHeader, "actually-an-image.pdf")

	assert.NoError(t, err)
	assert.True(t, meta.IsImage)
	assert.False(t, meta.IsPDF)
}

func TestClassify_FileNameDate(t *testing.T) {
	cases := []struct {
		name     string
		fileName string
		want     string
	}{
		{"iso date", "invoice-2024-03-15.pdf", "2024-03-15"},
		{"day first", "scan-15-03-2024.jpg", "15-03-2024"},
		{"compact", "report_20240315.txt", "20240315"},
		{"no date", "receipt.pdf", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			meta, err := classify.Classify([]byte("some content"), tc.fileName)
			assert.NoError(t, err)
			assert.Equal(t, tc.want, meta.FileNameDate)
		})
	}
}

func TestClassify_FileNameID(t *testing.T) {
	meta, err := classify.Classify([]byte("some content"), "INV-12345_copy.pdf")

	assert.NoError(t, err)
	assert.Equal(t, "INV-12345", meta.FileNameID)

	meta, err = classify.Classify([]byte("some content"), "plain.pdf")
	assert.NoError(t, err)
	assert.Empty(t, meta.FileNameID)
}
