package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/chamai/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/chamai/pkg/application"
	"github.com/felixgeelhaar/chamai/pkg/domain/response"
)

var (
	exportOutput string
	exportRole   string
)

var exportCmd = &cobra.Command{
	Use:   "export <csv|pdf>",
	Short: "Export the checklist results as CSV or PDF",
	Long: `Export the results for one role. Reviewer exports include the score; author exports do not.

Without --output the file is written to the configured export_dir as
ChAMAI-results.csv or ChAMAI-results.pdf.

Examples:
  chamai export csv
  chamai export pdf --role author -o reports/`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"csv", "pdf"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := application.ParseFormat(args[0])
		if err != nil {
			return NewCLIError("unsupported export format", "Use 'csv' or 'pdf'", err)
		}

		services, err := loadChecklist(cmd.Context())
		if err != nil {
			return err
		}

		role := services.Store.Role()
		if exportRole != "" {
			role = response.NormalizeRole(exportRole)
		}

		path, err := services.Export.WriteFile(exportTarget(services.Workspace, exportOutput), format, role)
		if err != nil {
			return err
		}
		fmt.Printf("Exported %s results to %s\n", role.DisplayName(), path)
		return nil
	},
}

// exportTarget returns output as given, or the configured export directory
// resolved against the project root.
func exportTarget(ws *wiring.Workspace, output string) string {
	if output != "" {
		return output
	}
	dir := ws.Config.ExportDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(ws.Root, dir)
	}
	return dir + string(filepath.Separator)
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file or directory (default: export_dir from config)")
	exportCmd.Flags().StringVar(&exportRole, "role", "", "Export as author or reviewer (default: active role)")
	RootCmd.AddCommand(exportCmd)
}
