package cli

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zbx-labs/zbxkit/pkg/api"
)

func apiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "api <method> [params-json]",
		Short: "Call a JSON-RPC API method",
		Long: `Call any Zabbix API method and print the result as indented JSON.
Parameters are given as a JSON document; when omitted, {} is sent.
Methods that need a session log in first with the configured token or
credentials and log out afterwards.`,
		Example: `  zbxkit api apiinfo.version
  zbxkit api host.get '{"output": ["hostid", "name"]}'
  zbxkit api history.get '{"itemids": "23296", "limit": 5}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			method := args[0]
			var params any
			if len(args) == 2 {
				if !json.Valid([]byte(args[1])) {
					return fmt.Errorf("params are not valid JSON: %s", args[1])
				}
				params = json.RawMessage(args[1])
			}

			ctx, cancel := signalContext()
			defer cancel()

			client := a.newAPI()
			if api.RequiresAuth(method) {
				if err := client.Login(ctx); err != nil {
					return err
				}
				defer client.Logout(ctx)
			}

			result, err := client.Call(ctx, method, params)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := json.Indent(&buf, result, "", "  "); err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), string(result))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), buf.String())
			return nil
		},
	}
}
