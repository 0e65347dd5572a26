package wiring

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/chamai/pkg/application"
	"github.com/felixgeelhaar/chamai/pkg/export"
	"github.com/felixgeelhaar/chamai/pkg/storage"
)

// AppServices exposes the application layer wired together with a workspace.
type AppServices struct {
	Workspace *Workspace
	SessionID string
	Logger    *zap.Logger
	Store     *application.ResponseStore
	Checklist *application.ChecklistService
	Export    *application.ExportService
	Audit     *application.AuditService
}

// BuildAppServices wires the services for a project root and loads the persisted responses.
// The checklist definition is not loaded here; callers decide when to pay for it.
// A config error is returned next to services built from defaults.
func BuildAppServices(root string, logger *zap.Logger) (*AppServices, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	workspace, loadErr := NewWorkspace(root)
	if loadErr != nil {
		loadErr = fmt.Errorf("config fallback: %w", loadErr)
	}

	sessionID := uuid.NewString()
	logger = logger.With(zap.String("session", sessionID))

	store, err := application.NewResponseStore(workspace.Repo, workspace.Config.StateKey, logger.Named("store"))
	if err != nil {
		return nil, fmt.Errorf("failed to create response store: %w", err)
	}
	store.Load()

	audit := application.NewAuditService(storage.NewFileAuditLog(workspace.Repo.Dir()), store, sessionID, logger.Named("audit"))
	audit.Attach()

	checklist := application.NewChecklistService(workspace.Definition, store, workspace.Config.Title, logger.Named("checklist"))

	services := &AppServices{
		Workspace: workspace,
		SessionID: sessionID,
		Logger:    logger,
		Store:     store,
		Checklist: checklist,
		Export:    application.NewExportService(checklist, export.NewFPDFGenerator(), logger.Named("export")),
		Audit:     audit,
	}

	logger.Debug("Services ready",
		zap.String("root", root),
		zap.String("definition", workspace.Definition.Location()),
		zap.String("state_key", workspace.Config.StateKey))

	return services, loadErr
}
