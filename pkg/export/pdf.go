package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/felixgeelhaar/chamai/pkg/domain/report"
)

// ErrPDFUnavailable is returned when no PDF generator is configured.
var ErrPDFUnavailable = errors.New("PDF generator unavailable")

// Document is the minimal drawing surface a PDF generator provides.
type Document interface {
	SetFontSize(size float64)
	Text(x, y float64, text string)
	Output(w io.Writer) error
}

// TableDocument is a Document that can also lay out tables.
// Generators without table support still produce the title and score text.
type TableDocument interface {
	Document
	Table(head []string, body [][]string, startY float64)
}

// Generator creates a new landscape document.
type Generator interface {
	NewDocument() (Document, error)
}

// Page positions, in millimetres.
const (
	titleX            = 20
	titleY            = 20
	scoreY            = 40
	authorTableY      = 40
	reviewerTableY    = 60
	titleFontSize     = 16
	scoreLineFontSize = 11
)

// WritePDF renders rep with gen and writes the finished document to w.
// Nothing is written to w unless rendering succeeds.
func WritePDF(w io.Writer, rep *report.Report, gen Generator) error {
	if gen == nil {
		return ErrPDFUnavailable
	}
	doc, err := gen.NewDocument()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPDFUnavailable, err)
	}

	doc.SetFontSize(titleFontSize)
	doc.Text(titleX, titleY, rep.Title)

	tableY := float64(authorTableY)
	if rep.Reviewer() {
		doc.SetFontSize(scoreLineFontSize)
		doc.Text(titleX, scoreY, rep.ScoreLine())
		tableY = reviewerTableY
	}

	if td, ok := doc.(TableDocument); ok {
		td.Table(rep.Headers, rep.Body(), tableY)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}
