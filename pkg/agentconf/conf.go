package agentconf

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"
)

// DefaultPath is where distribution packages install the agent configuration.
const DefaultPath = "/etc/zabbix/zabbix_agentd.conf"

// defaultServerRow is used when the file names no server at all.
const defaultServerRow = "127.0.0.1:10051"

// Config holds the keys read from a Zabbix agent configuration file.
// Later occurrences of a key override earlier ones, like the agent itself
// behaves.
type Config struct {
	// ServerActive is the raw ServerActive row: comma-separated clusters
	// of semicolon-separated high-availability nodes.
	ServerActive string

	// Server is the raw Server row, used when ServerActive is absent.
	Server string

	// SourceIP is the local address to send from.
	SourceIP string

	// TLS collects all TLS* keys verbatim, by their name as written.
	TLS map[string]string
}

// Load reads and parses the agent configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("agentconf: read %s: %w", path, err)
	}
	cfg, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("agentconf: parse %s: %w", path, err)
	}
	return cfg, nil
}

// parse reads Key=Value lines. Blank lines and #-comments are skipped,
// key matching is case-insensitive, lines without '=' are ignored.
func parse(data []byte) (*Config, error) {
	cfg := &Config{TLS: map[string]string{}}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch {
		case strings.EqualFold(key, "ServerActive"):
			cfg.ServerActive = value
		case strings.EqualFold(key, "Server"):
			cfg.Server = value
		case strings.EqualFold(key, "SourceIP"):
			cfg.SourceIP = value
		case len(key) >= 3 && strings.EqualFold(key[:3], "TLS"):
			cfg.TLS[key] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ServerRow returns the address row data should be sent to: ServerActive
// when present, otherwise Server, otherwise 127.0.0.1:10051.
func (c *Config) ServerRow() string {
	if c.ServerActive != "" {
		return c.ServerActive
	}
	if c.Server != "" {
		return c.Server
	}
	return defaultServerRow
}

// Clusters splits the server row into per-cluster address strings.
// Each element still carries its semicolon-separated node list.
func (c *Config) Clusters() []string {
	parts := strings.Split(c.ServerRow(), ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}
