package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zbx-labs/zbxkit/pkg/sender"
)

func sendCmd(a *app) *cobra.Command {
	var (
		host  string
		key   string
		value string
		input string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Push values to a trapper port",
		Long: `Push values to a Zabbix server or proxy trapper port. A single value is
given with --host, --key and --value; a batch is read from a JSON Lines
file (one {"host", "key", "value"} object per line, with optional "clock"
and "ns") via --input, where "-" means standard input.`,
		Example: `  zbxkit send --host web1 --key app.users --value 42
  zbxkit send --input values.jsonl
  generate-metrics | zbxkit send --input -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := collectItems(cmd.InOrStdin(), host, key, value, input)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			snd, err := a.newSender()
			if err != nil {
				return err
			}
			resp, err := snd.Send(ctx, items)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp)
			if resp.Total > 0 && resp.Failed == resp.Total {
				return fmt.Errorf("server rejected all %d values", resp.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "host the value belongs to")
	cmd.Flags().StringVar(&key, "key", "", "item key")
	cmd.Flags().StringVar(&value, "value", "", "item value")
	cmd.Flags().StringVar(&input, "input", "", "JSON Lines file with values, - for stdin")
	return cmd
}

// collectItems builds the value batch from either the --input stream or
// the --host/--key/--value triple. Mixing the two is rejected.
func collectItems(stdin io.Reader, host, key, value, input string) ([]sender.ItemValue, error) {
	if input != "" {
		if host != "" || key != "" || value != "" {
			return nil, fmt.Errorf("--input cannot be combined with --host, --key or --value")
		}
		if input == "-" {
			return readItems(stdin)
		}
		f, err := os.Open(input)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return readItems(f)
	}

	if host == "" || key == "" || value == "" {
		return nil, fmt.Errorf("either --input or all of --host, --key and --value are required")
	}
	return []sender.ItemValue{{Host: host, Key: key, Value: value}}, nil
}

func readItems(r io.Reader) ([]sender.ItemValue, error) {
	var items []sender.ItemValue
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var item sender.ItemValue
		if err := json.Unmarshal([]byte(text), &item); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if item.Host == "" || item.Key == "" {
			return nil, fmt.Errorf("line %d: host and key are required", line)
		}
		items = append(items, item)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no values to send")
	}
	return items, nil
}
