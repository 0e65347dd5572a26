package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/chamai/internal/infrastructure/watch"
	"github.com/felixgeelhaar/chamai/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/chamai/pkg/application"
	"github.com/felixgeelhaar/chamai/pkg/domain/report"
	"github.com/felixgeelhaar/chamai/pkg/storage"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the score whenever the responses or the checklist change",
	Long: `Watch .chamai/ and the checklist definition and print a fresh summary on every change,
for example while the dashboard, the TUI or an MCP client is being used in another process.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runWatch(ctx, services, watchDebounce)
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 300*time.Millisecond, "Quiet period before a burst of changes is reported")
	RootCmd.AddCommand(watchCmd)
}

// sessionWatcher follows changes made outside this process.
type sessionWatcher struct {
	mu        sync.Mutex
	services  *wiring.AppServices
	checklist *application.ChecklistService
}

// reload re-reads the responses and the definition, then prints the summary.
func (w *sessionWatcher) reload(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ws := w.services.Workspace
	w.services.Store.Refresh()
	// A definition load is final for a ChecklistService, so a changed file needs a new one.
	w.checklist = application.NewChecklistService(ws.Definition, w.services.Store, ws.Config.Title, w.services.Logger.Named("checklist"))
	if _, err := w.checklist.LoadDefinition(ctx); err != nil {
		fmt.Printf("[%s] Failed to load checklist JSON: %v\n", time.Now().Format("15:04:05"), err)
		return
	}
	w.print()
}

func (w *sessionWatcher) print() {
	summary, err := w.checklist.Summary()
	if err != nil {
		return
	}
	fmt.Printf("[%s] %s mode  Score: %s / %s (%s)  reviewer %d/%d  author %d/%d\n",
		time.Now().Format("15:04:05"),
		w.services.Store.Role().DisplayName(),
		report.FormatNumber(summary.Score), report.FormatNumber(summary.Max), summary.Quality.Label,
		summary.Answered.Reviewer, summary.Items, summary.Answered.Author, summary.Items)
}

func runWatch(ctx context.Context, services *wiring.AppServices, debounce time.Duration) error {
	ws := services.Workspace
	if err := ws.Repo.Initialize(); err != nil {
		return err
	}

	filter := watch.NameFilter{ws.Config.StateKey + ".json"}
	dirs := []string{ws.Repo.Dir()}
	if src, ok := ws.Definition.(*storage.FileDefinitionSource); ok {
		dirs = append(dirs, filepath.Dir(src.Path()))
		filter = append(filter, filepath.Base(src.Path()))
	}

	sw := &sessionWatcher{services: services, checklist: services.Checklist}
	if _, err := sw.checklist.LoadDefinition(ctx); err != nil {
		return err
	}

	fsw, err := watch.NewFSWatcher(debounce, filter, func(ev watch.ChangeEvent) {
		logger.Debug("Change detected", zap.String("path", ev.Path), zap.String("type", string(ev.ChangeType)))
		sw.reload(ctx)
	})
	if err != nil {
		return err
	}
	if err := fsw.Add(dirs...); err != nil {
		_ = fsw.Close()
		return err
	}

	fmt.Printf("Watching %v for changes... (Ctrl+C to stop)\n", dirs)
	sw.print()

	if err := fsw.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
