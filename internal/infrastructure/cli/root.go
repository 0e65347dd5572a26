package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/chamai/internal/infrastructure/config"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var (
	projectPath string
	verbose     bool

	// logger is rebuilt from the project config before every command.
	logger = zap.NewNop()
	// logToFile is set when logging.file is configured.
	logToFile bool
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "chamai",
	Version: Version,
	Short:   "Score medical-AI reports against the ChAMAI checklist",
	Long: `ChAMAI is a reporting checklist for medical AI research.
Authors self-assess each item (NA / No / Yes), reviewers grade it (OK / mR / MR),
and the reviewer grades add up to a score with a quality label.

Answers are kept per project in .chamai/ and can be exported as CSV or PDF.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogger()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	return MapError(RootCmd.Execute())
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&projectPath, "project", "C", "", "Project directory (default: current directory)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// setupLogger builds the zap logger from .chamai/config.yaml. A broken config
// still yields a logger so the command can report the problem itself.
func setupLogger() error {
	root, err := getProjectRoot()
	if err != nil {
		return err
	}
	cfg, err := config.Load(root)
	if err != nil {
		cfg = config.Default()
	}

	l, err := newLogger(root, cfg.Logging, verbose)
	if err != nil {
		return err
	}
	logger = l
	logToFile = cfg.Logging.File != ""
	return nil
}

func newLogger(root string, lc config.LoggingConfig, debug bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.DisableStacktrace = true

	level := zap.NewAtomicLevelAt(zap.WarnLevel)
	if lc.Level != "" {
		parsed, err := zap.ParseAtomicLevel(lc.Level)
		if err != nil {
			return nil, NewCLIError("invalid logging.level in config", "Use one of debug, info, warn, error", err)
		}
		level = parsed
	}
	if debug {
		level.SetLevel(zap.DebugLevel)
	}
	zc.Level = level

	if lc.File != "" {
		path := lc.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		zc.OutputPaths = []string{path}
		zc.ErrorOutputPaths = []string{path}
	}

	return zc.Build()
}
