package application

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/felixgeelhaar/chamai/pkg/domain/response"
	"github.com/felixgeelhaar/chamai/pkg/export"
)

// Format is an export file format.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ParseFormat accepts "csv" or "pdf", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (use csv or pdf)", s)
	}
}

// FileName returns the conventional download name for the format.
func (f Format) FileName() string {
	if f == FormatPDF {
		return export.PDFFileName
	}
	return export.CSVFileName
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

// ExportService renders the current responses as CSV or PDF.
type ExportService struct {
	checklist *ChecklistService
	pdf       export.Generator
	logger    *zap.Logger
}

// NewExportService creates an export service. A nil generator disables PDF output.
func NewExportService(checklist *ChecklistService, pdf export.Generator, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{checklist: checklist, pdf: pdf, logger: logger}
}

// Write renders format for the active role.
func (s *ExportService) Write(w io.Writer, format Format) error {
	return s.WriteAs(w, format, s.checklist.Store().Role())
}

// WriteAs renders format for role regardless of the active role.
func (s *ExportService) WriteAs(w io.Writer, format Format, role response.Role) error {
	rep, err := s.checklist.Report(role)
	if err != nil {
		return err
	}
	switch format {
	case FormatCSV:
		return export.WriteCSV(w, rep)
	case FormatPDF:
		if err := export.WritePDF(w, rep, s.pdf); err != nil {
			s.logger.Warn("PDF export failed", zap.Error(err))
			return err
		}
		return nil
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteFile renders format into path. When path is a directory, or ends in a separator,
// the conventional file name is used.
// The file is only created once rendering has succeeded.
func (s *ExportService) WriteFile(path string, format Format, role response.Role) (string, error) {
	if path == "" {
		path = "."
	}
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		path = filepath.Join(path, format.FileName())
	} else if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, format.FileName())
	}

	var buf bytes.Buffer
	if err := s.WriteAs(&buf, format, role); err != nil {
		return "", err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return "", fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	// G306: Use 0600 for files
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	s.logger.Info("Exported results",
		zap.String("format", string(format)),
		zap.String("role", string(response.NormalizeRole(string(role)))),
		zap.String("path", path))
	return path, nil
}
