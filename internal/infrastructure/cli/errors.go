package cli

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/chamai/pkg/domain"
	"github.com/felixgeelhaar/chamai/pkg/export"
)

// ExitGateFailed is returned when a --gate expression evaluates to false.
const ExitGateFailed = 2

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// CLIErrors and unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	var defErr *domain.DefinitionError
	if errors.As(err, &defErr) {
		return NewCLIError(
			"Failed to load checklist JSON.",
			fmt.Sprintf("Check %s, or run 'chamai init' to write the sample checklist", defErr.Location),
			err,
		)
	}

	switch {
	case errors.Is(err, domain.ErrNoDefinition):
		return NewCLIError("Failed to load checklist JSON.", "Run 'chamai init' to write the sample checklist", err)
	case errors.Is(err, domain.ErrUnknownItem):
		return NewCLIError("unknown item", "Run 'chamai status --items' to list item codes", err)
	case errors.Is(err, domain.ErrUnknownSection):
		return NewCLIError("unknown section", "Run 'chamai status --items' to list section ids", err)
	case errors.Is(err, domain.ErrInvalidChoice):
		return NewCLIError("invalid choice", "Authors answer NA, No or Yes; reviewers answer OK, mR or MR. Switch with 'chamai role'", err)
	case errors.Is(err, export.ErrPDFUnavailable):
		return NewCLIError("PDF generator not available.", "Export CSV instead with 'chamai export csv'", err)
	}

	return err
}
