package export

import (
	"errors"
	"exam-allocator/internal/models"
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"
)

// ErrUnsupportedText is returned when a name cannot be drawn with the core
// PDF fonts and no UTF-8 font file was configured.
var ErrUnsupportedText = errors.New("text needs a UTF-8 font")

// Column widths in millimetres, matching Columns.
var pdfWidths = []float64{50, 30, 70, 30}

const (
	pdfRowHeight = 10
	pdfMargin    = 15
	utf8Family   = "body"
)

// WritePDF renders the assignments as a bordered table on A4 pages.
// The header row is repeated at the top of every page. With an empty
// fontPath the core Arial font is used, which only covers cp1252.
func WritePDF(w io.Writer, rows []models.Assignment, title, fontPath string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(false)
	pdf.SetAutoPageBreak(true, pdfMargin)

	family := "Arial"
	tr := func(s string) string { return s }
	if fontPath != "" {
		family = utf8Family
		pdf.AddUTF8Font(family, "", fontPath)
		pdf.AddUTF8Font(family, "B", fontPath)
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("load pdf font %q: %w", fontPath, err)
		}
	} else {
		if err := checkCoreText(title, rows); err != nil {
			return err
		}
		tr = pdf.UnicodeTranslatorFromDescriptor("")
	}

	header := func() {
		pdf.SetFont(family, "B", 12)
		for i, c := range Columns {
			pdf.CellFormat(pdfWidths[i], pdfRowHeight, tr(c), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(family, "", 12)
	}

	pdf.AddPage()
	pdf.SetFont(family, "", 12)
	pdf.CellFormat(0, pdfRowHeight, tr(title), "", 1, "C", false, 0, "")
	pdf.Ln(pdfRowHeight)
	header()

	_, pageHeight := pdf.GetPageSize()
	for _, r := range rows {
		if pdf.GetY()+pdfRowHeight > pageHeight-pdfMargin {
			pdf.AddPage()
			header()
		}
		cells := []string{
			r.Student.Name,
			strconv.Itoa(r.Student.PostalCode),
			r.Center.Name,
			strconv.Itoa(r.Center.PostalCode),
		}
		for i, c := range cells {
			pdf.CellFormat(pdfWidths[i], pdfRowHeight, tr(c), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}

func checkCoreText(title string, rows []models.Assignment) error {
	if r, ok := firstUnencodable(title); ok {
		return fmt.Errorf("%w: title contains %q", ErrUnsupportedText, r)
	}
	for _, a := range rows {
		for _, s := range []string{a.Student.Name, a.Center.Name} {
			if r, ok := firstUnencodable(s); ok {
				return fmt.Errorf("%w: %q contains %q", ErrUnsupportedText, s, r)
			}
		}
	}
	return nil
}

// cp1252 characters in 0x80-0x9F that sit outside Latin-1.
var cp1252Extra = map[rune]bool{
	'€': true, '‚': true, 'ƒ': true, '„': true, '…': true, '†': true, '‡': true,
	'ˆ': true, '‰': true, 'Š': true, '‹': true, 'Œ': true, 'Ž': true, '‘': true,
	'’': true, '“': true, '”': true, '•': true, '–': true, '—': true, '˜': true,
	'™': true, 'š': true, '›': true, 'œ': true, 'ž': true, 'Ÿ': true,
}

func firstUnencodable(s string) (rune, bool) {
	for _, r := range s {
		switch {
		case r < 0x80, r >= 0xA0 && r <= 0xFF, cp1252Extra[r]:
			continue
		default:
			return r, true
		}
	}
	return 0, false
}
