package cli

import (
	"github.com/spf13/cobra"

	"github.com/zbx-labs/zbxkit/internal/verify"
)

func checklogCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "checklog <log>...",
		Short: "Judge finished runs by their log files",
		Long: `Apply the log verdict rule to already-written log files: a log passes
when its last non-empty line contains the OK marker. The exit status
reflects the verdict, which makes the command usable as a CI gate over
logs produced elsewhere.`,
		Example: `  zbxkit checklog verify-logs/*.log
  zbxkit checklog integration.log smoke.log`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verdicts, err := verify.CheckLogs(args)
			verify.PrintVerdicts(cmd.OutOrStdout(), verdicts)
			return err
		},
	}
}
