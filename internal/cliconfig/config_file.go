package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	AgentHost        string `toml:"agent_host"`
	AgentPort        int    `toml:"agent_port"`
	Servers          string `toml:"servers"`
	ChunkSize        int    `toml:"chunk_size"`
	AgentConfig      string `toml:"agent_config"`
	URL              string `toml:"url"`
	User             string `toml:"user"`
	Password         string `toml:"password"`
	Token            string `toml:"token"`
	SkipVersionCheck *bool  `toml:"skip_version_check"`
	Timeout          string `toml:"timeout"`
	LogLevel         string `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.zbxkit/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".zbxkit", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("agent-host", fc.AgentHost, &cfg.AgentHost)
	s.setString("servers", fc.Servers, &cfg.Servers)
	s.setString("agent-config", fc.AgentConfig, &cfg.AgentConfig)
	s.setString("url", fc.URL, &cfg.URL)
	s.setString("user", fc.User, &cfg.User)
	s.setString("password", fc.Password, &cfg.Password)
	s.setString("token", fc.Token, &cfg.Token)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	s.setInt("agent-port", fc.AgentPort, &cfg.AgentPort)
	s.setInt("chunk-size", fc.ChunkSize, &cfg.ChunkSize)

	if err := s.setDuration("timeout", fc.Timeout, &cfg.Timeout); err != nil {
		return err
	}

	s.setBool("skip-version-check", fc.SkipVersionCheck, &cfg.SkipVersionCheck)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
