package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

const (
	pageMargin  = 10.0
	lineHeight  = 6.0
	cellPadding = 1.0
	fontFamily  = "Helvetica"
)

// FPDFGenerator produces A4 landscape documents with go-pdf/fpdf.
type FPDFGenerator struct{}

func NewFPDFGenerator() *FPDFGenerator {
	return &FPDFGenerator{}
}

func (g *FPDFGenerator) NewDocument() (Document, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.AddPage()
	pdf.SetFont(fontFamily, "", 12)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to create pdf document: %w", err)
	}
	return &fpdfDocument{
		pdf: pdf,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
	}, nil
}

type fpdfDocument struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (d *fpdfDocument) SetFontSize(size float64) {
	d.pdf.SetFontSize(size)
}

func (d *fpdfDocument) Text(x, y float64, text string) {
	d.pdf.Text(x, y, d.tr(text))
}

func (d *fpdfDocument) Output(w io.Writer) error {
	if err := d.pdf.Error(); err != nil {
		return err
	}
	return d.pdf.Output(w)
}

// Table draws a bordered grid starting at startY, wrapping long cells and breaking pages.
func (d *fpdfDocument) Table(head []string, body [][]string, startY float64) {
	if len(head) == 0 {
		return
	}
	widths := columnWidths(d.usableWidth(), len(head))

	d.pdf.SetFont(fontFamily, "B", 10)
	d.pdf.SetFillColor(41, 128, 185)
	d.pdf.SetTextColor(255, 255, 255)
	d.pdf.SetY(startY)
	d.row(head, widths, true)

	d.pdf.SetFont(fontFamily, "", 9)
	d.pdf.SetTextColor(0, 0, 0)
	for _, cells := range body {
		d.row(cells, widths, false)
	}
}

func (d *fpdfDocument) usableWidth() float64 {
	pageW, _ := d.pdf.GetPageSize()
	left, _, right, _ := d.pdf.GetMargins()
	return pageW - left - right
}

// columnWidths gives the description column (index 1) the space the other columns leave.
func columnWidths(total float64, n int) []float64 {
	widths := make([]float64, n)
	if n == 1 {
		widths[0] = total
		return widths
	}
	const narrow = 28.0
	const choice = 40.0
	rest := total
	for i := range widths {
		switch {
		case i == 1:
			continue
		case i == 3:
			widths[i] = choice
		default:
			widths[i] = narrow
		}
		rest -= widths[i]
	}
	widths[1] = rest
	return widths
}

func (d *fpdfDocument) row(cells []string, widths []float64, header bool) {
	lines := 1
	for i, cell := range cells {
		if i >= len(widths) {
			break
		}
		if n := len(d.pdf.SplitText(d.tr(cell), widths[i]-2*cellPadding)); n > lines {
			lines = n
		}
	}
	height := float64(lines) * lineHeight

	_, pageH := d.pdf.GetPageSize()
	left, top, _, bottom := d.pdf.GetMargins()
	if d.pdf.GetY()+height > pageH-bottom {
		d.pdf.AddPage()
		d.pdf.SetY(top)
	}

	style := "D"
	if header {
		style = "FD"
	}
	x, y := left, d.pdf.GetY()
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		d.pdf.Rect(x, y, w, height, style)
		d.pdf.SetXY(x+cellPadding, y)
		d.pdf.MultiCell(w-2*cellPadding, lineHeight, d.tr(cell), "", "L", false)
		x += w
	}
	d.pdf.SetXY(left, y+height)
}
