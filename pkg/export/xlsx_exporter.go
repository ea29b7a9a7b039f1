package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// XLSXExporter renders datasets into a single-sheet workbook.
type XLSXExporter struct{}

// NewXLSXExporter constructs an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Render writes the title on the first row, notes beneath it and the table after a blank row.
func (e *XLSXExporter) Render(data Dataset, sheet, title string, notes ...string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("xlsx requires at least one header")
	}
	if sheet == "" {
		sheet = "Report"
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if sheet != defaultSheet {
		_ = f.DeleteSheet(defaultSheet)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	row := 1
	if title != "" {
		if err := f.SetCellValue(sheet, cellName(1, row), title); err != nil {
			return nil, fmt.Errorf("write title: %w", err)
		}
		lastCol := cellName(len(data.Headers), row)
		if len(data.Headers) > 1 {
			_ = f.MergeCell(sheet, cellName(1, row), lastCol)
		}
		_ = f.SetCellStyle(sheet, cellName(1, row), lastCol, headerStyle)
		row++
	}
	for _, note := range notes {
		if err := f.SetCellValue(sheet, cellName(1, row), note); err != nil {
			return nil, fmt.Errorf("write note: %w", err)
		}
		row++
	}
	if row > 1 {
		row++
	}

	for i, header := range data.Headers {
		if err := f.SetCellValue(sheet, cellName(i+1, row), header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheet, col, col, 24)
	}
	_ = f.SetCellStyle(sheet, cellName(1, row), cellName(len(data.Headers), row), headerStyle)
	row++

	for _, values := range data.Rows {
		for i, value := range data.record(values) {
			if err := f.SetCellValue(sheet, cellName(i+1, row), value); err != nil {
				return nil, fmt.Errorf("write cell: %w", err)
			}
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
