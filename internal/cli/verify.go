package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zbx-labs/zbxkit/internal/verify"
	"github.com/zbx-labs/zbxkit/pkg/log"
)

func verifyCmd(a *app) *cobra.Command {
	var (
		watch   bool
		workers int
	)

	cmd := &cobra.Command{
		Use:   "verify <scenario>",
		Short: "Run a verification scenario against a live setup",
		Long: `Run the suites of a scenario file against a live Zabbix setup. Every
suite runs twice, once with checks in order and once spread over a
worker pool, and writes a log per run. The command succeeds only when
the last line of every log carries the OK marker.

With --watch the scenario file is reloaded on change and re-run, which
turns a terminal into a live verification loop while editing checks.`,
		Example: `  zbxkit verify scenario.yaml
  zbxkit verify scenario.yaml --workers 8
  zbxkit verify scenario.yaml --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			run := func(sc *verify.Scenario) (*verify.Report, error) {
				if workers > 0 {
					sc.Workers = workers
				}
				r, err := verify.NewRunner(sc, verify.WithLogger(a.log))
				if err != nil {
					return nil, err
				}
				rep, err := r.Run(ctx)
				if err != nil {
					return nil, err
				}
				verify.PrintReport(cmd.OutOrStdout(), rep)
				return rep, nil
			}

			if watch {
				w := verify.NewWatcher(args[0], 0, a.log, func(sc *verify.Scenario) {
					// In watch mode a failed run is a result to look
					// at, not a reason to stop watching.
					if _, err := run(sc); err != nil {
						a.log.Error("verification run failed", log.Err(err))
					}
				})
				return w.Run(ctx)
			}

			sc, err := verify.LoadScenario(args[0])
			if err != nil {
				return err
			}
			rep, err := run(sc)
			if err != nil {
				return err
			}
			if !rep.Passed {
				return fmt.Errorf("verification failed, see %s", sc.LogDir)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "re-run when the scenario file changes")
	cmd.Flags().IntVar(&workers, "workers", 0, "async worker count (overrides the scenario)")
	return cmd
}
