package sender

import (
	"fmt"
	"time"

	"github.com/zbx-labs/zbxkit/pkg/agentconf"
	"github.com/zbx-labs/zbxkit/pkg/log"
)

// Option configures optional behavior of a Sender.
type Option func(*options)

// options holds the staged configuration for a Sender. Server addresses
// are kept raw here and parsed in New so option application cannot fail.
type options struct {
	serverSpec string
	agentCfg   *agentconf.Config
	configPath string

	timeout   time.Duration
	chunkSize int
	sourceIP  string
	compress  bool
	dial      DialFunc
	logger    log.Logger
}

// resolveServers turns the staged server configuration into clusters.
// An agent configuration wins over an address spec; its SourceIP, when
// present, wins over WithSourceIP, matching zabbix_sender behavior.
func (o *options) resolveServers() ([]Cluster, string, error) {
	agentCfg := o.agentCfg
	if o.configPath != "" {
		loaded, err := agentconf.Load(o.configPath)
		if err != nil {
			return nil, "", err
		}
		agentCfg = loaded
	}

	if agentCfg != nil {
		var clusters []Cluster
		for _, spec := range agentCfg.Clusters() {
			c, err := ParseCluster(spec)
			if err != nil {
				return nil, "", err
			}
			clusters = append(clusters, c)
		}
		sourceIP := o.sourceIP
		if agentCfg.SourceIP != "" {
			sourceIP = agentCfg.SourceIP
		}
		return clusters, sourceIP, nil
	}

	spec := o.serverSpec
	if spec == "" {
		spec = defaultServer
	}
	clusters, err := ParseClusters(spec)
	if err != nil {
		return nil, "", err
	}
	return clusters, o.sourceIP, nil
}

// WithServer targets a single server node.
func WithServer(host string, port int) Option {
	return func(o *options) {
		o.serverSpec = fmt.Sprintf("%s:%d", host, port)
	}
}

// WithServers targets servers given in ServerActive syntax: commas
// separate clusters, semicolons separate the nodes of one cluster,
// e.g. "zbx1.example.com;zbx2.example.com:20051,zbx3.example.com".
func WithServers(spec string) Option {
	return func(o *options) {
		o.serverSpec = spec
	}
}

// WithAgentConfig takes servers and source IP from a parsed agent
// configuration, like zabbix_sender -c does.
func WithAgentConfig(cfg *agentconf.Config) Option {
	return func(o *options) {
		o.agentCfg = cfg
	}
}

// WithConfigFile loads the agent configuration file at path during New
// and applies it like WithAgentConfig.
func WithConfigFile(path string) Option {
	return func(o *options) {
		o.configPath = path
	}
}

// WithTimeout sets the per-connection timeout. Defaults to 10 seconds.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// WithChunkSize caps how many values go into one request.
// Defaults to 250.
func WithChunkSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}

// WithSourceIP sets the local address data is sent from.
func WithSourceIP(ip string) Option {
	return func(o *options) {
		o.sourceIP = ip
	}
}

// WithCompression enables zlib compression of request payloads.
func WithCompression() Option {
	return func(o *options) {
		o.compress = true
	}
}

// WithDialFunc sets a custom dialer, e.g. for TLS connections.
// When set, WithSourceIP has no effect.
func WithDialFunc(dial DialFunc) Option {
	return func(o *options) {
		o.dial = dial
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
