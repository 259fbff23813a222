package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func getCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Query one item from a passive agent",
		Example: `  zbxkit get agent.ping
  zbxkit get 'vfs.fs.size[/,used]' --agent-host 192.168.1.5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			resp, err := a.newGetter().Get(ctx, args[0])
			if err != nil {
				return err
			}
			if !resp.Supported() {
				return fmt.Errorf("%s: %s", args[0], resp.ErrMsg)
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Value)
			return nil
		},
	}
}
