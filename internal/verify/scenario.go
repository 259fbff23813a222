package verify

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zbx-labs/zbxkit/pkg/sender"
)

// DefaultLogDir receives the suite logs and summary when the scenario
// does not name a directory.
const DefaultLogDir = "verify-logs"

// Scenario describes one verification run: the components to talk to
// and the suites of checks to execute against them.
type Scenario struct {
	Agent   AgentTarget
	Trapper TrapperTarget
	API     APITarget

	LogDir  string
	Workers int

	Suites []Suite
}

// AgentTarget locates the Zabbix agent to query.
type AgentTarget struct {
	Host    string
	Port    int
	Timeout time.Duration
}

// TrapperTarget locates the trapper endpoint item values are sent to.
// Servers uses the ServerActive syntax: commas separate clusters,
// semicolons separate the nodes of one cluster.
type TrapperTarget struct {
	Servers   string
	ChunkSize int
}

// APITarget locates the JSON-RPC API and how to authenticate against it.
type APITarget struct {
	URL              string
	User             string
	Password         string
	Token            string
	Timeout          time.Duration
	SkipVersionCheck bool
}

// Suite is a named group of checks that shares one log file per mode.
type Suite struct {
	Name   string
	Checks []Check
}

// Check is one verification step. Exactly one of Agent, Sender or API
// is set.
type Check struct {
	Name   string
	Agent  *AgentCheck
	Sender *SenderCheck
	API    *APICheck
}

// AgentCheck queries one item key from the agent. An unsupported reply
// fails the check.
type AgentCheck struct {
	// Key is the item key to query.
	Key string

	// Want, when set, is the exact reply value expected.
	Want string

	// WantJSON requires the reply value to parse as JSON, the contract
	// of discovery keys such as net.if.discovery.
	WantJSON bool
}

// SenderCheck reports item values through the trapper protocol.
type SenderCheck struct {
	Items []sender.ItemValue

	// WantProcessed additionally fails the check when the server
	// rejects any of the values. By default only the exchange itself
	// must succeed, matching how a server treats unknown hosts.
	WantProcessed bool
}

// APICheck calls one API method.
type APICheck struct {
	Method string
	Params map[string]any

	// WantType, when set, is the required JSON shape of the result:
	// "string", "list", "object", "bool" or "number".
	WantType string
}

type yamlScenario struct {
	Agent struct {
		Host    string `yaml:"host"`
		Port    int    `yaml:"port"`
		Timeout string `yaml:"timeout"`
	} `yaml:"agent"`
	Trapper struct {
		Servers   string `yaml:"servers"`
		ChunkSize int    `yaml:"chunk_size"`
	} `yaml:"trapper"`
	API struct {
		URL              string `yaml:"url"`
		User             string `yaml:"user"`
		Password         string `yaml:"password"`
		Token            string `yaml:"token"`
		Timeout          string `yaml:"timeout"`
		SkipVersionCheck bool   `yaml:"skip_version_check"`
	} `yaml:"api"`
	LogDir  string      `yaml:"log_dir"`
	Workers int         `yaml:"workers"`
	Suites  []yamlSuite `yaml:"suites"`
}

type yamlSuite struct {
	Name   string      `yaml:"name"`
	Checks []yamlCheck `yaml:"checks"`
}

type yamlCheck struct {
	Name   string           `yaml:"name"`
	Agent  *yamlAgentCheck  `yaml:"agent"`
	Sender *yamlSenderCheck `yaml:"sender"`
	API    *yamlAPICheck    `yaml:"api"`
}

type yamlAgentCheck struct {
	Key      string `yaml:"key"`
	Want     string `yaml:"want"`
	WantJSON bool   `yaml:"want_json"`
}

type yamlSenderCheck struct {
	Items         []yamlItem `yaml:"items"`
	WantProcessed bool       `yaml:"want_processed"`
}

type yamlItem struct {
	Host  string `yaml:"host"`
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
	Clock int64  `yaml:"clock"`
	NS    int    `yaml:"ns"`
}

type yamlAPICheck struct {
	Method   string         `yaml:"method"`
	Params   map[string]any `yaml:"params"`
	WantType string         `yaml:"want_type"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("verify: read scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var y yamlScenario
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, fmt.Errorf("verify: parse scenario: %w", err)
	}
	return mapScenario(y)
}

func mapScenario(y yamlScenario) (*Scenario, error) {
	sc := &Scenario{
		LogDir:  y.LogDir,
		Workers: y.Workers,
	}
	if sc.LogDir == "" {
		sc.LogDir = DefaultLogDir
	}

	sc.Agent.Host = y.Agent.Host
	sc.Agent.Port = y.Agent.Port
	d, err := parseTimeout(y.Agent.Timeout)
	if err != nil {
		return nil, fmt.Errorf("verify: agent timeout: %w", err)
	}
	sc.Agent.Timeout = d

	sc.Trapper.Servers = y.Trapper.Servers
	sc.Trapper.ChunkSize = y.Trapper.ChunkSize

	sc.API.URL = y.API.URL
	sc.API.User = y.API.User
	sc.API.Password = y.API.Password
	sc.API.Token = y.API.Token
	sc.API.SkipVersionCheck = y.API.SkipVersionCheck
	d, err = parseTimeout(y.API.Timeout)
	if err != nil {
		return nil, fmt.Errorf("verify: api timeout: %w", err)
	}
	sc.API.Timeout = d

	if len(y.Suites) == 0 {
		return nil, fmt.Errorf("verify: scenario has no suites")
	}
	seen := map[string]bool{}
	for _, ys := range y.Suites {
		if ys.Name == "" {
			return nil, fmt.Errorf("verify: suite without a name")
		}
		if seen[ys.Name] {
			return nil, fmt.Errorf("verify: duplicate suite %q", ys.Name)
		}
		seen[ys.Name] = true
		if len(ys.Checks) == 0 {
			return nil, fmt.Errorf("verify: suite %q has no checks", ys.Name)
		}

		suite := Suite{Name: ys.Name}
		for i, yc := range ys.Checks {
			check, err := mapCheck(yc)
			if err != nil {
				return nil, fmt.Errorf("verify: suite %q check %d: %w", ys.Name, i+1, err)
			}
			suite.Checks = append(suite.Checks, check)
		}
		sc.Suites = append(sc.Suites, suite)
	}
	return sc, nil
}

func mapCheck(y yamlCheck) (Check, error) {
	c := Check{Name: y.Name}
	kinds := 0
	if y.Agent != nil {
		kinds++
	}
	if y.Sender != nil {
		kinds++
	}
	if y.API != nil {
		kinds++
	}
	if kinds != 1 {
		return Check{}, fmt.Errorf("exactly one of agent, sender or api must be set")
	}

	switch {
	case y.Agent != nil:
		if y.Agent.Key == "" {
			return Check{}, fmt.Errorf("agent check without an item key")
		}
		c.Agent = &AgentCheck{Key: y.Agent.Key, Want: y.Agent.Want, WantJSON: y.Agent.WantJSON}
		if c.Name == "" {
			c.Name = y.Agent.Key
		}

	case y.Sender != nil:
		if len(y.Sender.Items) == 0 {
			return Check{}, fmt.Errorf("sender check without items")
		}
		sc := &SenderCheck{WantProcessed: y.Sender.WantProcessed}
		for _, it := range y.Sender.Items {
			if it.Host == "" || it.Key == "" {
				return Check{}, fmt.Errorf("sender item needs host and key")
			}
			sc.Items = append(sc.Items, sender.ItemValue{
				Host:  it.Host,
				Key:   it.Key,
				Value: it.Value,
				Clock: it.Clock,
				NS:    it.NS,
			})
		}
		c.Sender = sc
		if c.Name == "" {
			c.Name = fmt.Sprintf("send %d values", len(sc.Items))
		}

	case y.API != nil:
		if y.API.Method == "" {
			return Check{}, fmt.Errorf("api check without a method")
		}
		switch y.API.WantType {
		case "", "string", "list", "object", "bool", "number":
		default:
			return Check{}, fmt.Errorf("unknown want_type %q", y.API.WantType)
		}
		c.API = &APICheck{Method: y.API.Method, Params: y.API.Params, WantType: y.API.WantType}
		if c.Name == "" {
			c.Name = y.API.Method
		}
	}
	return c, nil
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// hasAPIChecks reports whether any check of the suite needs a logged-in
// API session.
func (s Suite) hasAPIChecks() bool {
	for _, c := range s.Checks {
		if c.API != nil {
			return true
		}
	}
	return false
}
