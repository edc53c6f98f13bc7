package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lipu-linku/sona/internal/validate"
)

func init() {
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check references, translation coverage and record identity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := openDataset()
		if err != nil {
			return err
		}
		return runValidate(cmd.OutOrStdout(), ds)
	},
}

func runValidate(out io.Writer, ds *dataset) error {
	report, err := validate.Run(ds.engine())
	if err != nil {
		return err
	}
	items := report.Sorted()
	if len(items) > 0 {
		_, _ = fmt.Fprintln(out, "Diagnostics:")
		for _, d := range items {
			_, _ = fmt.Fprintln(out, "-", d.String())
		}
	}
	if n := len(report.Errors()); n > 0 {
		return fmt.Errorf("%d error(s) found while checking the dataset", n)
	}
	_, _ = fmt.Fprintln(out, "Done!")
	return nil
}
