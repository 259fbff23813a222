package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (ZBXKIT_*).
// The ZABBIX_URL, ZABBIX_USER, ZABBIX_PASSWORD and ZABBIX_TOKEN variables
// are recognized for API credentials too, with the ZBXKIT_ form winning.
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("agent-host", os.Getenv("ZBXKIT_AGENT_HOST"), &cfg.AgentHost)
	s.setString("servers", os.Getenv("ZBXKIT_SERVERS"), &cfg.Servers)
	s.setString("agent-config", os.Getenv("ZBXKIT_AGENT_CONFIG"), &cfg.AgentConfig)
	s.setString("url", envOr("ZBXKIT_URL", "ZABBIX_URL"), &cfg.URL)
	s.setString("user", envOr("ZBXKIT_USER", "ZABBIX_USER"), &cfg.User)
	s.setString("password", envOr("ZBXKIT_PASSWORD", "ZABBIX_PASSWORD"), &cfg.Password)
	s.setString("token", envOr("ZBXKIT_TOKEN", "ZABBIX_TOKEN"), &cfg.Token)
	s.setString("log-level", os.Getenv("ZBXKIT_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setIntFromString("agent-port", os.Getenv("ZBXKIT_AGENT_PORT"), &cfg.AgentPort); err != nil {
		return err
	}
	if err := s.setIntFromString("chunk-size", os.Getenv("ZBXKIT_CHUNK_SIZE"), &cfg.ChunkSize); err != nil {
		return err
	}

	if err := s.setDuration("timeout", os.Getenv("ZBXKIT_TIMEOUT"), &cfg.Timeout); err != nil {
		return err
	}

	s.setBoolFromString("skip-version-check", os.Getenv("ZBXKIT_SKIP_VERSION_CHECK"), &cfg.SkipVersionCheck)

	return nil
}

// envOr returns the first non-empty value among the named variables.
func envOr(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
