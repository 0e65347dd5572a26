package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resetYes bool

// confirmInput is read for the reset prompt; tests replace it.
var confirmInput io.Reader = os.Stdin

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear every answer and commit flag",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetYes {
			ok, err := promptBool(bufio.NewReader(confirmInput), "Reset all responses?", false)
			if err != nil && err != io.EOF {
				return err
			}
			if !ok {
				fmt.Println("Reset cancelled.")
				return nil
			}
		}

		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		services.Checklist.Reset()
		fmt.Println("All responses cleared.")
		return nil
	},
}

func promptBool(reader *bufio.Reader, label string, def bool) (bool, error) {
	defLabel := "n"
	if def {
		defLabel = "y"
	}
	for {
		fmt.Printf("%s [y/n] (%s): ", label, defLabel)
		line, err := reader.ReadString('\n')
		value := strings.ToLower(strings.TrimSpace(line))
		if err != nil && value == "" {
			return def, err
		}
		if value == "" {
			return def, nil
		}
		if value == "y" || value == "yes" {
			return true, nil
		}
		if value == "n" || value == "no" {
			return false, nil
		}
		if err != nil {
			return def, err
		}
		fmt.Println("Please enter 'y' or 'n'.")
	}
}

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Skip the confirmation prompt")
	RootCmd.AddCommand(resetCmd)
}
