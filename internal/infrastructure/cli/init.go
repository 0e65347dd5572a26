package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/chamai/internal/infrastructure/config"
	"github.com/felixgeelhaar/chamai/pkg/storage"
)

var initTitle string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a chamai project with the sample checklist",
	Long: `Create .chamai/config.yaml and write the bundled sample checklist to the
configured definition path. Existing files are left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getProjectRoot()
		if err != nil {
			return err
		}

		repo := storage.NewFilesystemRepository(root)
		if err := repo.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize project: %w", err)
		}

		cfg, err := config.Load(root)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if initTitle != "" {
			cfg.Title = initTitle
		}

		configPath, err := repo.ResolvePath(storage.ConfigFile)
		if err != nil {
			return err
		}
		if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) || initTitle != "" {
			if err := config.Save(root, cfg); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Printf("Wrote %s\n", configPath)
		}

		if strings.HasPrefix(cfg.Definition, "http://") || strings.HasPrefix(cfg.Definition, "https://") {
			fmt.Printf("Checklist is loaded from %s\n", cfg.Definition)
		} else {
			defPath := cfg.Definition
			if !filepath.IsAbs(defPath) {
				defPath = filepath.Join(root, defPath)
			}
			written, err := storage.WriteSampleDefinition(defPath)
			if err != nil {
				return err
			}
			if written {
				fmt.Printf("Wrote sample checklist to %s\n", defPath)
			} else {
				fmt.Printf("Keeping existing checklist at %s\n", defPath)
			}
		}

		logger.Info("Project initialized", zap.String("root", root))
		fmt.Println("Successfully initialized chamai project")
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initTitle, "title", "", "Brand shown in titles and exports")
	RootCmd.AddCommand(initCmd)
}
