package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"exam-allocator/internal/models"
)

var ErrUnknownFormat = errors.New("unknown export format")

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// Columns is the header shared by the table view and every export.
var Columns = []string{"Student Name", "Pincode", "Nearest Exam Center", "Exam Center Pincode"}

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

func (f Format) FileName(base string) string {
	return base + "." + string(f)
}

// Options carries the labels written into exported files.
type Options struct {
	Sheet    string
	Title    string
	FontPath string // TTF used for the pdf; empty means core fonts only.
}

func DefaultOptions() Options {
	return Options{Sheet: "Allocation", Title: "Exam Center Allocation"}
}

func Write(format Format, w io.Writer, rows []models.Assignment, opts Options) error {
	switch format {
	case FormatXLSX:
		return WriteExcel(w, rows, opts.Sheet)
	case FormatPDF:
		return WritePDF(w, rows, opts.Title, opts.FontPath)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
