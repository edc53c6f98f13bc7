package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/lipu-linku/sona/internal/langs"
	"github.com/lipu-linku/sona/internal/schemas"
)

var fetchTimeout time.Duration

func init() {
	fetchLangsCmd.Flags().DurationVar(&fetchTimeout, "timeout", 0, "Request timeout (default $SONA_FETCH_TIMEOUT or 30s)")
	rootCmd.AddCommand(fetchLangsCmd)
}

var fetchLangsCmd = &cobra.Command{
	Use:   "fetch-langs",
	Short: "Refresh the languages collection from Crowdin",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := openDataset()
		if err != nil {
			return err
		}
		timeout := cfg.FetchTimeout
		if fetchTimeout > 0 {
			timeout = fetchTimeout
		}
		client := langs.NewClient(cfg.CrowdinProjectURL, cfg.CrowdinToken, timeout)
		return runFetchLangs(cmd.Context(), cmd.OutOrStdout(), ds, client)
	},
}

func runFetchLangs(ctx context.Context, out io.Writer, ds *dataset, client *langs.Client) error {
	if ctx == nil {
		ctx = context.Background()
	}
	project, err := client.Fetch(ctx)
	if err != nil {
		return err
	}
	u := &langs.Updater{
		Registry: ds.reg,
		Records:  ds.records,
		Schemas:  schemas.NewAssigner(ds.reg, ds.locator, ds.records),
		Logger:   ds.logger,
	}
	written, err := u.Apply(project)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Fetched %d language(s), wrote %d file(s).\n", len(project.TargetLanguages), len(written))
	return nil
}
