package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var commitAll bool

var commitCmd = &cobra.Command{
	Use:   "commit [section...]",
	Short: "Mark sections as committed",
	Long: `Mark sections as finalized. Commit flags are informational and never change the score.

Examples:
  chamai commit PU DU
  chamai commit --all`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && !commitAll {
			return NewCLIError("no sections given", "Pass section ids or use --all", nil)
		}

		services, err := loadChecklist(cmd.Context())
		if err != nil {
			return err
		}

		if commitAll {
			if _, err := services.Checklist.CommitAll(); err != nil {
				return err
			}
			fmt.Println("All sections marked as committed.")
			return nil
		}

		if err := services.Checklist.Commit(args...); err != nil {
			return err
		}
		fmt.Printf("Committed: %s\n", strings.Join(args, ", "))
		return nil
	},
}

func init() {
	commitCmd.Flags().BoolVar(&commitAll, "all", false, "Commit every section")
	RootCmd.AddCommand(commitCmd)
}
