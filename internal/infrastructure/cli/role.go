package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/chamai/pkg/domain/response"
)

var roleCmd = &cobra.Command{
	Use:   "role [author|reviewer|toggle]",
	Short: "Show or switch the active role",
	Long: `Show or switch the active role. Switching never changes stored answers.

The role is saved with the responses and a running 'chamai watch' follows it.
A 'chamai serve' dashboard keeps its own role; switch it on the page.
Every new session starts as reviewer.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"author", "reviewer", "toggle"},
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		store := services.Store
		if len(args) == 0 {
			role := store.Role()
			fmt.Printf("Active role: %s (choices: %v)\n", role.DisplayName(), response.ChoicesFor(role))
			return nil
		}

		var role response.Role
		if args[0] == "toggle" {
			role = store.ToggleRole()
		} else {
			role = store.SetRole(args[0])
		}
		fmt.Printf("Switched to %s (choices: %v)\n", role.DisplayName(), response.ChoicesFor(role))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(roleCmd)
}
