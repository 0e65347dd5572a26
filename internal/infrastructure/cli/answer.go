package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/chamai/pkg/domain/report"
	"github.com/felixgeelhaar/chamai/pkg/domain/response"
)

var answerRole string

var answerCmd = &cobra.Command{
	Use:   "answer <code> <choice>",
	Short: "Record an answer for a checklist item",
	Long: `Record an answer for one item. Reviewers answer OK, mR or MR; authors answer NA, No or Yes.
The other role's answer for the item is kept.

Examples:
  chamai answer PU01 OK
  chamai answer PU01 Yes --role author`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadChecklist(cmd.Context())
		if err != nil {
			return err
		}

		role := services.Store.Role()
		if answerRole != "" {
			role = response.NormalizeRole(answerRole)
		}
		if err := services.Checklist.AnswerAs(args[0], role, args[1]); err != nil {
			return err
		}

		summary, err := services.Checklist.Summary()
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s = %s\n", role.DisplayName(), args[0], args[1])
		fmt.Printf("Score: %s / %s (%s)\n", report.FormatNumber(summary.Score), report.FormatNumber(summary.Max), summary.Quality.Label)
		return nil
	},
}

func init() {
	answerCmd.Flags().StringVar(&answerRole, "role", "", "Answer as author or reviewer (default: active role)")
	RootCmd.AddCommand(answerCmd)
}
