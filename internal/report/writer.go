package report

import (
	"encoding/csv"
	"io"

	"github.com/xuri/excelize/v2"
)

func WriteCSV(w io.Writer, table *Table) error {
	// BOM 让 Excel 以 UTF-8 打开中文内容
	if _, err := w.Write([]byte("\xEF\xBB\xBF")); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(table.Headers); err != nil {
		return err
	}
	if err := cw.WriteAll(table.Rows); err != nil {
		return err
	}

	return cw.Error()
}

func WriteXLSX(w io.Writer, table *Table) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	sheetName := table.Title
	if sheetName == "" {
		sheetName = "Sheet1"
	}
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	headers := make([]any, 0, len(table.Headers))
	for _, h := range table.Headers {
		headers = append(headers, h)
	}
	if err := f.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(sheetName, 1, 1, headerStyle); err != nil {
		return err
	}

	for i, row := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		values := make([]any, 0, len(row))
		for _, v := range row {
			values = append(values, v)
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return err
		}
	}

	if len(table.Headers) > 0 {
		lastCol, err := excelize.ColumnNumberToName(len(table.Headers))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheetName, "A", lastCol, 16); err != nil {
			return err
		}
	}

	_, err = f.WriteTo(w)
	return err
}
