package roster

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// readXLSX reads the first sheet of the workbook.
func readXLSX(r io.Reader) ([]row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileFormat, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrFileFormat)
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}

	var rows []row
	for i, c := range cells {
		if isBlank(c) {
			continue
		}
		rows = append(rows, row{line: i + 1, cells: c})
	}
	return rows, nil
}
