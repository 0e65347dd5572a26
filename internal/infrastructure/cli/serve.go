package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/chamai/pkg/infrastructure/dashboard"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the checklist as a local web dashboard",
	Long: `Serve the checklist in the browser with live score updates.

Endpoints:
  GET  /              checklist page
  GET  /api/summary   score, label and progress
  POST /api/responses record an answer
  GET  /export.csv    CSV export (?role=author|reviewer)
  GET  /export.pdf    PDF export
  GET  /ws            live updates
  GET  /metrics       Prometheus metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadChecklist(cmd.Context())
		if err != nil {
			return err
		}

		addr := serveAddr
		if addr == "" {
			addr = services.Workspace.Config.Server.Addr
		}

		server, err := dashboard.NewServer(addr, services.Checklist, services.Export, services.Logger.Named("dashboard"))
		if err != nil {
			return err
		}
		if os.Getenv("CHAMAI_SKIP_SERVE_START") == "true" {
			return server.Shutdown(context.Background())
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start()
		}()

		fmt.Printf("Serving %s checklist on http://%s\n", services.Checklist.Brand(), addr)
		fmt.Println("Press Ctrl+C to stop")

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		fmt.Println("\nShutting down dashboard...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr from config)")
	RootCmd.AddCommand(serveCmd)
}
