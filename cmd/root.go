package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/lipu-linku/sona/internal/config"
	"github.com/lipu-linku/sona/internal/ingest"
	"github.com/lipu-linku/sona/internal/logging"
	"github.com/lipu-linku/sona/internal/registry"
	"github.com/lipu-linku/sona/internal/store"
)

var (
	rootDir      string
	registryPath string
	logLevel     string

	cfg *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootDir, "root", "r", "", "Dataset root directory (default $SONA_ROOT or .)")
	rootCmd.PersistentFlags().StringVarP(&registryPath, "config", "c", "", "Path to HCL collection registry (default built-in)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "DEBUG, INFO, WARN or ERROR (default $SONA_LOG_LEVEL or INFO)")
}

var rootCmd = &cobra.Command{
	Use:           "sona",
	Short:         "sona: build, check and maintain the multilingual dictionary dataset",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		if rootDir != "" {
			cfg.Root = rootDir
		}
		if registryPath != "" {
			cfg.Registry = registryPath
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		logging.Setup(cfg.LogLevel, cmd.ErrOrStderr())
		return nil
	},
}

// dataset bundles what every command needs to work on one dataset root.
type dataset struct {
	reg     *registry.Registry
	fs      billy.Filesystem
	locator *store.Locator
	records *store.RecordStore
	logger  *slog.Logger
}

func newDataset(reg *registry.Registry, fs billy.Filesystem) *dataset {
	return &dataset{
		reg:     reg,
		fs:      fs,
		locator: store.NewLocator(fs),
		records: store.NewRecordStore(fs),
		logger:  slog.Default(),
	}
}

// openDataset loads the registry and roots a filesystem at the configured directory.
// Registry errors surface before the dataset is touched.
func openDataset() (*dataset, error) {
	reg := registry.Default()
	if cfg.Registry != "" {
		var err error
		if reg, err = registry.Load(cfg.Registry); err != nil {
			return nil, err
		}
	}
	info, err := os.Stat(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("dataset root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dataset root %s is not a directory", cfg.Root)
	}
	return newDataset(reg, osfs.New(cfg.Root)), nil
}

func (d *dataset) engine() *ingest.Engine {
	e := ingest.NewEngine(d.reg, d.locator, d.records)
	e.Logger = d.logger
	return e
}

// knownLanguages lists the ids of the registry's languages collection.
func (d *dataset) knownLanguages() ([]string, error) {
	if d.reg.Languages() == "" {
		return nil, nil
	}
	c, err := d.reg.Get(d.reg.Languages())
	if err != nil {
		return nil, err
	}
	m, err := d.engine().FetchEntities(c)
	if err != nil {
		return nil, err
	}
	return m.IDs(), nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
