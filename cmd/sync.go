package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lipu-linku/sona/internal/merge"
)

func init() {
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push source records into every language's translation files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := openDataset()
		if err != nil {
			return err
		}
		return runSync(cmd.OutOrStdout(), ds)
	},
}

func runSync(out io.Writer, ds *dataset) error {
	langs, err := ds.knownLanguages()
	if err != nil {
		return err
	}
	s := merge.NewSyncer(ds.reg, ds.locator, ds.records)
	s.Logger = ds.logger

	written, err := s.SyncAll(langs)
	if err != nil {
		return err
	}
	for _, d := range s.Report.Sorted() {
		_, _ = fmt.Fprintln(out, "-", d.String())
	}
	_, _ = fmt.Fprintf(out, "Synced %d file(s) across %d language(s).\n", len(written), len(langs))
	if n := len(s.Report.Errors()); n > 0 {
		return fmt.Errorf("%d file(s) could not be synced", n)
	}
	return nil
}
