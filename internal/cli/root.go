package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/zbx-labs/zbxkit/internal/cliconfig"
	"github.com/zbx-labs/zbxkit/pkg/api"
	"github.com/zbx-labs/zbxkit/pkg/getter"
	"github.com/zbx-labs/zbxkit/pkg/log"
	"github.com/zbx-labs/zbxkit/pkg/sender"
)

const longHelp = `Talk to Zabbix components from the command line: query passive agents,
push trapper values, call the JSON-RPC API and run verification suites
against a live setup.

Configuration comes from ~/.zbxkit/config.toml, ZBXKIT_* environment
variables (ZABBIX_URL, ZABBIX_USER, ZABBIX_PASSWORD and ZABBIX_TOKEN are
recognized too) and flags, in increasing order of precedence.`

var exampleUsage = strings.TrimSpace(`
  zbxkit get agent.ping
  zbxkit send --host web1 --key app.users --value 42
  zbxkit api host.get '{"output": ["hostid", "name"]}'
  zbxkit wait --attempts 20 --interval 5s
  zbxkit verify scenario.yaml --watch
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// Execute runs the zbxkit command tree.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries the resolved configuration and loggers shared by the
// subcommands. setup fills it before any RunE fires.
type app struct {
	cfg     cliconfig.Config
	cfgPath string

	zl  zerolog.Logger
	log log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: cliconfig.DefaultConfig()}

	root := &cobra.Command{
		Use:          "zbxkit",
		Short:        "Query, feed and verify Zabbix from the command line",
		Long:         longHelp,
		Example:      exampleUsage,
		Version:      fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", "", "path to config file (default: $HOME/.zbxkit/config.toml)")
	pf.StringVar(&a.cfg.AgentHost, "agent-host", a.cfg.AgentHost, "passive agent address")
	pf.IntVar(&a.cfg.AgentPort, "agent-port", a.cfg.AgentPort, "passive agent port")
	pf.StringVar(&a.cfg.Servers, "servers", a.cfg.Servers, "trapper targets, ServerActive syntax (clusters by comma, HA nodes by semicolon)")
	pf.IntVar(&a.cfg.ChunkSize, "chunk-size", a.cfg.ChunkSize, "values per trapper request")
	pf.StringVar(&a.cfg.AgentConfig, "agent-config", a.cfg.AgentConfig, "agent configuration file to read trapper targets from")
	pf.StringVar(&a.cfg.URL, "url", a.cfg.URL, "Zabbix API endpoint")
	pf.StringVar(&a.cfg.User, "user", a.cfg.User, "API user name")
	pf.StringVar(&a.cfg.Password, "password", a.cfg.Password, "API user password")
	pf.StringVar(&a.cfg.Token, "token", a.cfg.Token, "API token (wins over user/password on 5.4+)")
	pf.BoolVar(&a.cfg.SkipVersionCheck, "skip-version-check", a.cfg.SkipVersionCheck, "accept server versions outside the supported window")
	pf.DurationVar(&a.cfg.Timeout, "timeout", a.cfg.Timeout, "network timeout (0 keeps each client's default)")
	pf.StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "log level: debug, info, warn or error")

	root.AddCommand(
		getCmd(a),
		sendCmd(a),
		apiCmd(a),
		waitCmd(a),
		verifyCmd(a),
		checklogCmd(a),
	)
	return root
}

// setup resolves the effective configuration: config file first, then
// environment, while flags set on the command line always win.
func (a *app) setup(cmd *cobra.Command) error {
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	cfgFile := a.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}
	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config %s: %w", cfgFile, err)
		}
		if err := cliconfig.ApplyFileConfig(&a.cfg, fc, changed); err != nil {
			return err
		}
	}
	if err := cliconfig.ApplyEnvConfig(&a.cfg, changed); err != nil {
		return err
	}
	if err := cliconfig.ResolveServers(&a.cfg, changed); err != nil {
		return err
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	zl, err := cliconfig.LeveledLogger(a.cfg.LogLevel)
	if err != nil {
		return err
	}
	a.zl = zl
	a.log = log.NewZerologAdapterWithLogger(zl)

	logCfg := a.cfg
	if logCfg.Password != "" {
		logCfg.Password = "*****"
	}
	if logCfg.Token != "" {
		logCfg.Token = "*****"
	}
	zl.Debug().Interface("config", logCfg).Msg("configuration")
	return nil
}

func (a *app) newGetter() *getter.Getter {
	opts := []getter.Option{
		getter.WithHost(a.cfg.AgentHost),
		getter.WithPort(a.cfg.AgentPort),
		getter.WithLogger(a.log),
	}
	if a.cfg.Timeout > 0 {
		opts = append(opts, getter.WithTimeout(a.cfg.Timeout))
	}
	return getter.New(opts...)
}

func (a *app) newSender() (*sender.Sender, error) {
	opts := []sender.Option{
		sender.WithServers(a.cfg.Servers),
		sender.WithChunkSize(a.cfg.ChunkSize),
		sender.WithLogger(a.log),
	}
	if a.cfg.Timeout > 0 {
		opts = append(opts, sender.WithTimeout(a.cfg.Timeout))
	}
	return sender.New(opts...)
}

func (a *app) newAPI() *api.Client {
	opts := []api.Option{api.WithLogger(a.log)}
	if a.cfg.URL != "" {
		opts = append(opts, api.WithURL(a.cfg.URL))
	}
	if a.cfg.Token != "" {
		opts = append(opts, api.WithToken(a.cfg.Token))
	}
	if a.cfg.User != "" {
		opts = append(opts, api.WithCredentials(a.cfg.User, a.cfg.Password))
	}
	if a.cfg.Timeout > 0 {
		opts = append(opts, api.WithTimeout(a.cfg.Timeout))
	}
	if a.cfg.SkipVersionCheck {
		opts = append(opts, api.WithSkipVersionCheck())
	}
	return api.New(opts...)
}

// signalContext returns a context that ends on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
