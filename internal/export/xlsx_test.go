package export_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"

	"papyr/internal/domain"
	"papyr/internal/export"
)

func completedDoc(t *testing.T) *domain.Document {
	t.Helper()
	result := domain.ExtractionResult{
		FullText: "Invoice Number: INV-12345\nTotal: $45.00",
		KeyValues: domain.FieldMap{
			"Invoice Number":    domain.TextValue("INV-12345"),
			"Total":             domain.TextValue("$45.00"),
			"extracted_amounts": domain.ListValue([]string{"$45.00", "$5.00"}),
		},
		Metadata: domain.ExtractionMetadata{ProcessedAt: time.Now().UTC(), PagesProcessed: 2},
	}
	payload, err := json.Marshal(result)
	assert.NoError(t, err)

	return &domain.Document{
		Status:        domain.StatusCompleted,
		ExtractedData: payload,
	}
}

func TestDocumentXLSX(t *testing.T) {
	data, err := export.DocumentXLSX(completedDoc(t))
	assert.NoError(t, err)
	assert.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	assert.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Extracted Fields")
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, len(rows), 4)
	assert.Equal(t, []string{"Field", "Value"}, rows[0][:2])

	// Rows are sorted by field name; list values are joined.
	assert.Equal(t, "Invoice Number", rows[1][0])
	assert.Equal(t, "INV-12345", rows[1][1])
	assert.Equal(t, "Total", rows[2][0])
	assert.Equal(t, "extracted_amounts", rows[3][0])
	assert.Equal(t, "$45.00; $5.00", rows[3][1])
}

func TestDocumentXLSX_NotProcessed(t *testing.T) {
	doc := &domain.Document{Status: domain.StatusProcessing}

	data, err := export.DocumentXLSX(doc)

	assert.Nil(t, data)
	assert.ErrorIs(t, err, domain.ErrDocumentNotProcessed)
}

func TestDocumentXLSX_CorruptPayload(t *testing.T) {
	doc := &domain.Document{
		Status:        domain.StatusCompleted,
		ExtractedData: json.RawMessage("{not json"),
	}

	data, err := export.DocumentXLSX(doc)

	assert.Nil(t, data)
	assert.Error(t, err)
}
