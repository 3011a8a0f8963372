package export

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"papyr/internal/domain"
)

const fieldsSheet = "Extracted Fields"

// DocumentXLSX renders a completed document's extraction result as an
// XLSX workbook. The sheet holds one row per extracted field, list
// values joined with "; ", plus a page count footer row.
func DocumentXLSX(doc *domain.Document) ([]byte, error) {
	if doc.Status != domain.StatusCompleted || len(doc.ExtractedData) == 0 {
		return nil, domain.ErrDocumentNotProcessed
	}

	var result domain.ExtractionResult
	if err := json.Unmarshal(doc.ExtractedData, &result); err != nil {
		return nil, fmt.Errorf("decoding extraction result: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(fieldsSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	_ = f.SetCellValue(fieldsSheet, "A1", "Field")
	_ = f.SetCellValue(fieldsSheet, "B1", "Value")

	keys := make([]string, 0, len(result.KeyValues))
	for k := range result.KeyValues {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	row := 2
	for _, k := range keys {
		v := result.KeyValues[k]
		cellA, _ := excelize.CoordinatesToCellName(1, row)
		cellB, _ := excelize.CoordinatesToCellName(2, row)
		_ = f.SetCellValue(fieldsSheet, cellA, k)
		if v.IsList() {
			_ = f.SetCellValue(fieldsSheet, cellB, strings.Join(v.List(), "; "))
		} else {
			_ = f.SetCellValue(fieldsSheet, cellB, v.Text())
		}
		row++
	}

	row++ // blank separator row
	cellA, _ := excelize.CoordinatesToCellName(1, row)
	cellB, _ := excelize.CoordinatesToCellName(2, row)
	_ = f.SetCellValue(fieldsSheet, cellA, "Pages Processed")
	_ = f.SetCellValue(fieldsSheet, cellB, result.Metadata.PagesProcessed)

	_ = f.SetColWidth(fieldsSheet, "A", "A", 28)
	_ = f.SetColWidth(fieldsSheet, "B", "B", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}
