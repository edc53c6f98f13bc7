package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lipu-linku/sona/internal/schemas"
)

func init() {
	rootCmd.AddCommand(schemasCmd)
}

var schemasCmd = &cobra.Command{
	Use:   "schemas",
	Short: "Insert or update the #:schema line of every record file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := openDataset()
		if err != nil {
			return err
		}
		return runSchemas(cmd.OutOrStdout(), ds)
	},
}

func runSchemas(out io.Writer, ds *dataset) error {
	a := schemas.NewAssigner(ds.reg, ds.locator, ds.records)
	a.Logger = ds.logger
	written, err := a.AssignAll()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Updated %d file(s).\n", len(written))
	return nil
}
