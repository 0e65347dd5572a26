// Package export renders reports as CSV and PDF files.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/chamai/pkg/domain/report"
)

const CSVFileName = "ChAMAI-results.csv"
const PDFFileName = "ChAMAI-results.pdf"

// WriteCSV writes rep as CSV. Every field is quoted and embedded quotes are doubled.
// Reviewer reports carry a "Total Score" line before the table; author reports do not.
func WriteCSV(w io.Writer, rep *report.Report) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%s\n", rep.Summary)
	if rep.Reviewer() {
		fmt.Fprintf(bw, "Total Score,%s,/ %s\n", report.FormatNumber(rep.Score), report.FormatNumber(rep.Max))
	}
	fmt.Fprint(bw, "\n")

	writeCSVRow(bw, rep.Headers)
	for _, cells := range rep.Body() {
		writeCSVRow(bw, cells)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func writeCSVRow(w *bufio.Writer, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			_ = w.WriteByte(',')
		}
		_, _ = w.WriteString(quoteCSV(cell))
	}
	_ = w.WriteByte('\n')
}

func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
