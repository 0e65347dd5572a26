package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/chamai/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/chamai/pkg/application"
	"github.com/felixgeelhaar/chamai/pkg/domain/report"
	"github.com/felixgeelhaar/chamai/pkg/domain/response"
	"github.com/felixgeelhaar/chamai/pkg/domain/scoring"
)

// Flag variables for status command
var (
	statusJSON  bool
	statusItems bool
	statusGate  string
)

var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"score"},
	Short:   "Show the score, quality label and progress of the checklist",
	Long: `Show the reviewer score, the quality label and how many items each role answered.

Use --gate to fail the command when the summary does not satisfy an expression.
The expression sees score, max, pct, label, items, answered and authored.

Examples:
  chamai status
  chamai status --items
  chamai score --json
  chamai score --gate 'pct >= 70 && answered == items'`,
	RunE: runStatusCmd,
}

// statusJSONOutput represents the JSON output format for status
type statusJSONOutput struct {
	Title      string                    `json:"title"`
	Definition string                    `json:"definition"`
	Role       response.Role             `json:"role"`
	Summary    scoring.Summary           `json:"summary"`
	Committed  []string                  `json:"committed"`
	Gate       *gateJSONOutput           `json:"gate,omitempty"`
	Sections   []application.SectionView `json:"sections,omitempty"`
}

type gateJSONOutput struct {
	Expression string `json:"expression"`
	Passed     bool   `json:"passed"`
}

func runStatusCmd(cmd *cobra.Command, args []string) error {
	var gate *scoring.Gate
	if statusGate != "" {
		g, err := scoring.CompileGate(statusGate)
		if err != nil {
			return NewCLIError("invalid gate expression", "Example: --gate 'pct >= 70'", err)
		}
		gate = g
	}

	services, err := loadChecklist(cmd.Context())
	if err != nil {
		return err
	}

	summary, err := services.Checklist.Summary()
	if err != nil {
		return err
	}
	sections, err := services.Checklist.Sections()
	if err != nil {
		return err
	}

	var passed bool
	if gate != nil {
		if passed, err = gate.Check(summary); err != nil {
			return err
		}
	}

	if statusJSON {
		if err := outputStatusJSON(services, summary, sections, gate, passed); err != nil {
			return err
		}
	} else {
		outputStatusText(services, summary, sections, gate, passed)
	}

	if gate != nil && !passed {
		return &CLIError{
			Message:  fmt.Sprintf("gate %q failed", gate.String()),
			Hint:     fmt.Sprintf("Score is %s / %s (%s)", report.FormatNumber(summary.Score), report.FormatNumber(summary.Max), summary.Quality.Label),
			ExitCode: ExitGateFailed,
		}
	}
	return nil
}

func committedIDs(sections []application.SectionView) []string {
	ids := []string{}
	for _, s := range sections {
		if s.Committed {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

func outputStatusJSON(services *wiring.AppServices, summary scoring.Summary, sections []application.SectionView, gate *scoring.Gate, passed bool) error {
	output := statusJSONOutput{
		Title:      services.Checklist.Brand() + " Checklist",
		Definition: services.Workspace.Definition.Location(),
		Role:       services.Store.Role(),
		Summary:    summary,
		Committed:  committedIDs(sections),
	}
	if gate != nil {
		output.Gate = &gateJSONOutput{Expression: gate.String(), Passed: passed}
	}
	if statusItems {
		output.Sections = sections
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func outputStatusText(services *wiring.AppServices, summary scoring.Summary, sections []application.SectionView, gate *scoring.Gate, passed bool) {
	role := services.Store.Role()
	fmt.Printf("%s Checklist (%s mode)\n", services.Checklist.Brand(), role.DisplayName())
	fmt.Printf("Definition: %s\n", services.Workspace.Definition.Location())
	fmt.Printf("Score: %s / %s (%.1f%%)\n", report.FormatNumber(summary.Score), report.FormatNumber(summary.Max), summary.Percent)
	fmt.Printf("Quality: %s\n", summary.Quality.Label)
	fmt.Printf("Answered: reviewer %d/%d, author %d/%d\n",
		summary.Answered.Reviewer, summary.Items, summary.Answered.Author, summary.Items)

	if committed := committedIDs(sections); len(committed) > 0 {
		fmt.Printf("Committed sections: %s\n", strings.Join(committed, ", "))
	}

	if statusItems {
		for _, s := range sections {
			marker := ""
			if s.Committed {
				marker = " [committed]"
			}
			fmt.Printf("\n%s%s\n", s.Title, marker)
			fmt.Println(strings.Repeat("-", len([]rune(s.Title))))
			for _, item := range s.Items {
				fmt.Printf("  %-6s [%-4s] reviewer: %-2s author: %-3s %s\n",
					item.Code, item.Priority, choiceText(item.Reviewer), choiceText(item.Author), item.Description)
			}
		}
	}

	if gate != nil {
		verdict := "passed"
		if !passed {
			verdict = "FAILED"
		}
		fmt.Printf("\nGate %q %s\n", gate.String(), verdict)
	}
}

func choiceText(c response.Choice) string {
	if !c.IsSet() {
		return "-"
	}
	return c.String()
}
