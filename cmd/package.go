package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/lipu-linku/sona/internal/emit"
)

var sqlitePath string

func init() {
	packageCmd.Flags().StringVar(&sqlitePath, "sqlite", "", "Also write the snapshot into this SQLite database")
	rootCmd.AddCommand(packageCmd)
}

var packageCmd = &cobra.Command{
	Use:   "package [out-dir]",
	Short: "Aggregate every collection into JSON artifacts",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := openDataset()
		if err != nil {
			return err
		}
		outDir := "generated"
		if len(args) == 1 {
			outDir = args[0]
		}
		if !filepath.IsAbs(outDir) {
			outDir = filepath.Join(cfg.Root, outDir)
		}
		return runPackage(cmd.OutOrStdout(), ds, outDir, sqlitePath)
	},
}

func runPackage(out io.Writer, ds *dataset, outDir, dbPath string) error {
	start := time.Now()
	eng := ds.engine()
	snap, err := eng.LoadAll()
	if err != nil {
		return err
	}
	if len(snap.Duplicates) > 0 {
		errs := make([]error, len(snap.Duplicates))
		for i, d := range snap.Duplicates {
			errs[i] = d
		}
		return errors.Join(errs...)
	}
	for _, d := range eng.Report.Items() {
		ds.logger.Warn("skipped", "diagnostic", d.String())
	}

	sinks := []emit.Sink{emit.NewJSONSink(osfs.New(outDir), ds.logger)}
	if dbPath != "" {
		_ = os.Remove(dbPath) // Overwrite
		sink, err := emit.NewSQLiteSink(dbPath)
		if err != nil {
			return err
		}
		sinks = append(sinks, sink)
	}
	if err := emit.Package(ds.reg, snap, sinks...); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Packaged into %s in %v.\n", outDir, time.Since(start).Round(time.Millisecond))
	return nil
}
