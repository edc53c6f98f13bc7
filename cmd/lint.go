package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lipu-linku/sona/internal/linter"
)

func init() {
	rootCmd.AddCommand(lintCmd)
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Report TOML syntax errors under the dataset root",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := openDataset()
		if err != nil {
			return err
		}
		return runLint(cmd.OutOrStdout(), ds)
	},
}

func runLint(out io.Writer, ds *dataset) error {
	findings, err := linter.Lint(ds.fs, ds.logger)
	if err != nil {
		return err
	}
	for _, f := range findings {
		_, _ = fmt.Fprintln(out, f.String())
	}
	if len(findings) > 0 {
		return fmt.Errorf("%d syntax error(s) found", len(findings))
	}
	_, _ = fmt.Fprintln(out, "Done!")
	return nil
}
