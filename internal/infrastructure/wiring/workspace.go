package wiring

import (
	"github.com/felixgeelhaar/chamai/internal/infrastructure/config"
	"github.com/felixgeelhaar/chamai/pkg/domain"
	"github.com/felixgeelhaar/chamai/pkg/storage"
)

// Workspace bundles the project-level infrastructure: the .chamai repository,
// the loaded config and the definition source it points at.
type Workspace struct {
	Root       string
	Repo       *storage.FilesystemRepository
	Config     *config.Config
	Definition domain.DefinitionSource
}

// NewWorkspace loads config for root. A broken config file falls back to defaults
// and the error is returned next to the usable workspace.
func NewWorkspace(root string) (*Workspace, error) {
	cfg, err := config.Load(root)
	if err != nil {
		cfg = config.Default()
	}
	return &Workspace{
		Root:       root,
		Repo:       storage.NewFilesystemRepository(root),
		Config:     cfg,
		Definition: storage.NewDefinitionSource(root, cfg.Definition),
	}, err
}
