// Package roster reads student and exam center lists from CSV or XLSX files.
//
// Both lists go through the same two steps: the header row is checked for
// the required columns, then each data row is turned into a typed record.
// A bad pincode rejects only its own row; a missing column rejects the file.
package roster

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"exam-allocator/internal/models"
)

var (
	ErrFileFormat = errors.New("invalid file format")
	ErrFormat     = errors.New("pincode is not a number")
)

type Kind string

const (
	KindStudents Kind = "students"
	KindCenters  Kind = "centers"
)

// Schema names the columns a roster file must carry.
type Schema struct {
	Kind       Kind
	NameColumn string
	CodeColumn string
}

var (
	StudentSchema = Schema{Kind: KindStudents, NameColumn: "Student Name", CodeColumn: "Pincode"}
	CenterSchema  = Schema{Kind: KindCenters, NameColumn: "Exam Center Name", CodeColumn: "Pincode"}
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFromPath picks the reader from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: unsupported file type %q", ErrFileFormat, filepath.Ext(path))
	}
}

// RecordError reports a single row that could not be turned into a record.
type RecordError struct {
	Kind   Kind
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s row %d: %s %q: %v", e.Kind, e.Row, e.Column, e.Value, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

type StudentRoster struct {
	Students []models.Student
	Rejected []*RecordError
}

type CenterRoster struct {
	Centers  []models.Center
	Rejected []*RecordError
}

type record struct {
	name string
	code int
}

func ReadStudents(r io.Reader, format Format) (*StudentRoster, error) {
	records, rejected, err := read(r, format, StudentSchema)
	if err != nil {
		return nil, err
	}

	students := make([]models.Student, len(records))
	for i, rec := range records {
		students[i] = models.Student{Name: rec.name, PostalCode: rec.code}
	}
	return &StudentRoster{Students: students, Rejected: rejected}, nil
}

func ReadCenters(r io.Reader, format Format) (*CenterRoster, error) {
	records, rejected, err := read(r, format, CenterSchema)
	if err != nil {
		return nil, err
	}

	centers := make([]models.Center, len(records))
	for i, rec := range records {
		centers[i] = models.Center{Name: rec.name, PostalCode: rec.code}
	}
	return &CenterRoster{Centers: centers, Rejected: rejected}, nil
}

func LoadStudents(path string) (*StudentRoster, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadStudents(f, format)
}

func LoadCenters(path string) (*CenterRoster, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadCenters(f, format)
}

// row is one line of the source table with its 1-based position in the file.
type row struct {
	line  int
	cells []string
}

func read(r io.Reader, format Format, schema Schema) ([]record, []*RecordError, error) {
	var (
		rows []row
		err  error
	)
	switch format {
	case FormatCSV:
		rows, err = readCSV(r)
	case FormatXLSX:
		rows, err = readXLSX(r)
	default:
		return nil, nil, fmt.Errorf("%w: unsupported file type %q", ErrFileFormat, format)
	}
	if err != nil {
		return nil, nil, err
	}

	return parse(rows, schema)
}

func parse(rows []row, schema Schema) ([]record, []*RecordError, error) {
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%w: %s file is empty", ErrFileFormat, schema.Kind)
	}

	nameIdx, codeIdx, err := locateColumns(rows[0].cells, schema)
	if err != nil {
		return nil, nil, err
	}

	records := []record{}
	var rejected []*RecordError
	for _, rw := range rows[1:] {
		name := cell(rw.cells, nameIdx)
		raw := cell(rw.cells, codeIdx)

		code, err := parsePincode(raw)
		if err != nil {
			rejected = append(rejected, &RecordError{
				Kind:   schema.Kind,
				Row:    rw.line,
				Column: schema.CodeColumn,
				Value:  raw,
				Err:    ErrFormat,
			})
			continue
		}
		records = append(records, record{name: name, code: code})
	}
	return records, rejected, nil
}

func locateColumns(header []string, schema Schema) (int, int, error) {
	nameIdx, codeIdx := -1, -1
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		switch {
		case h == schema.NameColumn && nameIdx < 0:
			nameIdx = i
		case h == schema.CodeColumn && codeIdx < 0:
			codeIdx = i
		}
	}

	var missing []string
	if nameIdx < 0 {
		missing = append(missing, strconv.Quote(schema.NameColumn))
	}
	if codeIdx < 0 {
		missing = append(missing, strconv.Quote(schema.CodeColumn))
	}
	if len(missing) > 0 {
		return 0, 0, fmt.Errorf(
			"%w: %s file must contain %q and %q columns (missing %s)",
			ErrFileFormat, schema.Kind, schema.NameColumn, schema.CodeColumn, strings.Join(missing, ", "),
		)
	}
	return nameIdx, codeIdx, nil
}

func cell(cells []string, idx int) string {
	if idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}

// MaxPincode bounds accepted pincodes so distances cannot overflow.
const MaxPincode = 999_999_999

// parsePincode accepts whole numbers in [0, MaxPincode], written either as
// integers or as floats with no fractional part (spreadsheets often store
// pincodes as 560001.0).
func parsePincode(val string) (int, error) {
	if val == "" {
		return 0, fmt.Errorf("empty")
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		f, ferr := strconv.ParseFloat(val, 64)
		if ferr != nil {
			return 0, ferr
		}
		if math.IsNaN(f) || f != math.Trunc(f) || f < 0 || f > MaxPincode {
			return 0, fmt.Errorf("not a pincode")
		}
		n = int(f)
	}
	if n < 0 || n > MaxPincode {
		return 0, fmt.Errorf("out of range")
	}
	return n, nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
