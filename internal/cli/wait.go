package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zbx-labs/zbxkit/pkg/api"
)

func waitCmd(a *app) *cobra.Command {
	var (
		attempts int
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "wait",
		Short: "Wait until the API answers",
		Long: `Poll apiinfo.version until the API endpoint answers, then print the
server version. Useful as a gate before provisioning or test runs
against a freshly started server.`,
		Example: `  zbxkit wait
  zbxkit wait --attempts 40 --interval 3s --url http://zabbix.example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			client := a.newAPI()
			ver, err := client.WaitReady(ctx, attempts, interval)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Zabbix API %s ready at %s\n", ver, client.URL())
			return nil
		},
	}

	cmd.Flags().IntVar(&attempts, "attempts", api.DefaultReadyAttempts, "polls before giving up")
	cmd.Flags().DurationVar(&interval, "interval", api.DefaultReadyInterval, "pause between polls")
	return cmd
}
