package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Export"

// XLSXExporter renders datasets into a single-sheet Excel workbook.
type XLSXExporter struct{}

// NewXLSXExporter constructs an Excel exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// ContentType implements Renderer.
func (e *XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Extension implements Renderer.
func (e *XLSXExporter) Extension() string { return "xlsx" }

// Render writes the title in row 1, headers in row 2 and data from row 3.
func (e *XLSXExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate("xlsx"); err != nil {
		return nil, err
	}
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(xlsxSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DCE6F1"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	lastCol, _ := excelize.ColumnNumberToName(len(data.Headers))
	_ = f.SetCellValue(xlsxSheet, "A1", data.Title)
	if len(data.Headers) > 1 {
		_ = f.MergeCell(xlsxSheet, "A1", lastCol+"1")
	}
	_ = f.SetColWidth(xlsxSheet, "A", lastCol, 20)

	for i, header := range data.Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(xlsxSheet, cell, header)
	}
	_ = f.SetCellStyle(xlsxSheet, "A2", lastCol+"2", headerStyle)

	for r, row := range data.Rows {
		for i, value := range data.record(row) {
			cell, _ := excelize.CoordinatesToCellName(i+1, r+3)
			if err := f.SetCellValue(xlsxSheet, cell, value); err != nil {
				return nil, fmt.Errorf("write cell %s: %w", cell, err)
			}
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
