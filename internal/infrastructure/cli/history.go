package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/chamai/pkg/domain"
	"github.com/felixgeelhaar/chamai/pkg/domain/response"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the recorded answer history, newest first",
	Long: `Every answer, role switch, commit and reset is appended to .chamai/history.jsonl.
Entries are hash-chained; run 'chamai history verify' to detect edits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		events, err := services.Audit.Timeline()
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}

		// newest first
		recent := make([]*domain.Event, 0, len(events))
		for i := len(events) - 1; i >= 0; i-- {
			recent = append(recent, events[i])
			if historyLimit > 0 && len(recent) == historyLimit {
				break
			}
		}

		if historyJSON {
			data, err := json.MarshalIndent(recent, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode history: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		if len(recent) == 0 {
			fmt.Println("No history recorded yet.")
			return nil
		}
		for _, e := range recent {
			fmt.Printf("[%s] %-8s %-16s %s\n",
				e.Timestamp.Local().Format(time.RFC822), shortSession(e.Actor), e.Action, describeEvent(e))
		}
		return nil
	},
}

var historyVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the integrity of the answer history",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		fmt.Println("Verifying history integrity...")
		violations, err := services.Audit.VerifyIntegrity()
		if err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
		if len(violations) == 0 {
			fmt.Println("History is intact and verified.")
			return nil
		}

		fmt.Printf("Found %d integrity violations:\n", len(violations))
		for _, v := range violations {
			fmt.Printf("  - %s\n", v)
		}
		return NewCLIError("history integrity check failed", "Restore .chamai/history.jsonl from version control", nil)
	},
}

func shortSession(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func describeEvent(e *domain.Event) string {
	switch e.Action {
	case domain.ActionResponseSet:
		return fmt.Sprintf("%s %s = %s", e.MetaString("role"), e.MetaString("item"), choiceText(response.Choice(e.MetaString("choice"))))
	case domain.ActionRoleSet:
		return e.MetaString("role")
	case domain.ActionSectionsCommit:
		return strings.Join(metaStrings(e.Metadata["sections"]), ", ")
	}
	return ""
}

// metaStrings reads a string list back from decoded JSON metadata.
func metaStrings(v any) []string {
	var out []string
	switch list := v.(type) {
	case []string:
		out = append(out, list...)
	case []any:
		for _, s := range list {
			if str, ok := s.(string); ok {
				out = append(out, str)
			}
		}
	}
	return out
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "Show at most n entries (0 for all)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output as JSON")
	historyCmd.AddCommand(historyVerifyCmd)
	RootCmd.AddCommand(historyCmd)
}
