package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/chamai/pkg/domain"
	"github.com/felixgeelhaar/chamai/pkg/export"
)

func TestCLIError(t *testing.T) {
	t.Run("Error with cause", func(t *testing.T) {
		cause := errors.New("root cause")
		e := NewCLIError("something failed", "try this", cause)
		assert.Equal(t, "something failed: root cause", e.Error())
		assert.Equal(t, 1, e.ExitCode)
	})

	t.Run("Error without cause", func(t *testing.T) {
		e := NewCLIError("something failed", "try this", nil)
		assert.Equal(t, "something failed", e.Error())
	})

	t.Run("Unwrap returns cause", func(t *testing.T) {
		cause := errors.New("root")
		e := NewCLIError("msg", "", cause)
		assert.ErrorIs(t, e, cause)
	})
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantMsg  string
		wantHint string
		wantCLI  bool
	}{
		{
			name: "nil returns nil",
			err:  nil,
		},
		{
			name:     "definition error names the location",
			err:      &domain.DefinitionError{Location: "/tmp/x.json", Err: errors.New("no such file")},
			wantMsg:  "Failed to load checklist JSON.",
			wantHint: "Check /tmp/x.json",
			wantCLI:  true,
		},
		{
			name:     "wrapped ErrNoDefinition",
			err:      fmt.Errorf("failed: %w", domain.ErrNoDefinition),
			wantMsg:  "Failed to load checklist JSON.",
			wantHint: "chamai init",
			wantCLI:  true,
		},
		{
			name:     "unknown item",
			err:      fmt.Errorf("%w: ZZ99", domain.ErrUnknownItem),
			wantMsg:  "unknown item",
			wantHint: "--items",
			wantCLI:  true,
		},
		{
			name:     "unknown section",
			err:      domain.ErrUnknownSection,
			wantMsg:  "unknown section",
			wantHint: "--items",
			wantCLI:  true,
		},
		{
			name:     "invalid choice",
			err:      fmt.Errorf("%w: Yes", domain.ErrInvalidChoice),
			wantMsg:  "invalid choice",
			wantHint: "chamai role",
			wantCLI:  true,
		},
		{
			name:     "pdf unavailable",
			err:      export.ErrPDFUnavailable,
			wantMsg:  "PDF generator not available.",
			wantHint: "export csv",
			wantCLI:  true,
		},
		{
			name:    "existing CLIError passes through",
			err:     &CLIError{Message: "gate failed", ExitCode: ExitGateFailed},
			wantMsg: "gate failed",
			wantCLI: true,
		},
		{
			name: "unmapped error passes through",
			err:  errors.New("something else"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MapError(tt.err)
			if tt.err == nil {
				require.NoError(t, result)
				return
			}

			var cliErr *CLIError
			require.Equal(t, tt.wantCLI, errors.As(result, &cliErr), "mapped: %v", result)
			if !tt.wantCLI {
				require.Same(t, tt.err, result)
				return
			}
			assert.Equal(t, tt.wantMsg, cliErr.Message)
			assert.Contains(t, cliErr.Hint, tt.wantHint)
			assert.ErrorIs(t, result, tt.err)
		})
	}
}
