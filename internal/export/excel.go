package export

import (
	"exam-allocator/internal/models"
	"io"

	"github.com/xuri/excelize/v2"
)

// WriteExcel writes one row per assignment under a header row.
func WriteExcel(w io.Writer, rows []models.Assignment, sheetName string) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	// Rows are written in order, so the stream writer is enough.
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return err
	}

	headers := make([]interface{}, len(Columns))
	for i, c := range Columns {
		headers[i] = c
	}
	if err := sw.SetRow("A1", headers); err != nil {
		return err
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			r.Student.Name, r.Student.PostalCode,
			r.Center.Name, r.Center.PostalCode,
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}

	f.SetActiveSheet(index)
	if sheetName != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}

	return f.Write(w)
}
