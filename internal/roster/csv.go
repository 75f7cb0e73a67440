package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

func readCSV(r io.Reader) ([]row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows []row
	for {
		cells, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFileFormat, err)
		}
		if isBlank(cells) {
			continue
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, row{line: line, cells: cells})
	}
	return rows, nil
}
