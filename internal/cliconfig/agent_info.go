package cliconfig

import (
	"fmt"

	"github.com/zbx-labs/zbxkit/pkg/agentconf"
)

// ResolveServers fills the trapper server list from the agent
// configuration file when one is named, the way the native sender
// treats its -c flag. An explicit --servers flag still wins.
func ResolveServers(cfg *Config, changed map[string]bool) error {
	if cfg.AgentConfig == "" || changed["servers"] {
		return nil
	}
	ac, err := agentconf.Load(cfg.AgentConfig)
	if err != nil {
		return fmt.Errorf("read agent config: %w", err)
	}
	cfg.Servers = ac.ServerRow()
	return nil
}
