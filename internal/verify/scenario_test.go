package verify

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const scenarioYAML = `
agent:
  host: 127.0.0.1
  port: 10050
  timeout: 3s
trapper:
  servers: "zbx1:10051;zbx2:10051,zbx3:10051"
  chunk_size: 10
api:
  url: http://localhost/zabbix
  user: Admin
  password: zabbix
  skip_version_check: true
log_dir: run-logs
workers: 2
suites:
  - name: getter
    checks:
      - agent:
          key: agent.ping
          want: "1"
      - name: discovery is json
        agent:
          key: net.if.discovery
          want_json: true
  - name: sender
    checks:
      - sender:
          want_processed: true
          items:
            - host: host1
              key: item.key.1
              value: "10"
              clock: 1695713666
              ns: 100
            - host: host1
              key: item.key.2
              value: "test message"
  - name: api
    checks:
      - api:
          method: host.get
          params:
            output: [hostid, name]
          want_type: list
`

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(scenarioYAML))
	if err != nil {
		t.Fatalf("ParseScenario() error = %v", err)
	}

	if sc.Agent.Host != "127.0.0.1" || sc.Agent.Port != 10050 {
		t.Errorf("agent target = %s:%d, want 127.0.0.1:10050", sc.Agent.Host, sc.Agent.Port)
	}
	if sc.Agent.Timeout != 3*time.Second {
		t.Errorf("agent timeout = %v, want 3s", sc.Agent.Timeout)
	}
	if sc.Trapper.Servers != "zbx1:10051;zbx2:10051,zbx3:10051" {
		t.Errorf("trapper servers = %q", sc.Trapper.Servers)
	}
	if sc.Trapper.ChunkSize != 10 {
		t.Errorf("chunk size = %d, want 10", sc.Trapper.ChunkSize)
	}
	if !sc.API.SkipVersionCheck {
		t.Error("skip_version_check not mapped")
	}
	if sc.LogDir != "run-logs" {
		t.Errorf("log dir = %q, want run-logs", sc.LogDir)
	}
	if sc.Workers != 2 {
		t.Errorf("workers = %d, want 2", sc.Workers)
	}

	if len(sc.Suites) != 3 {
		t.Fatalf("len(suites) = %d, want 3", len(sc.Suites))
	}

	getterSuite := sc.Suites[0]
	if getterSuite.Checks[0].Name != "agent.ping" {
		t.Errorf("unnamed agent check = %q, want key as name", getterSuite.Checks[0].Name)
	}
	if getterSuite.Checks[1].Name != "discovery is json" {
		t.Errorf("named check = %q", getterSuite.Checks[1].Name)
	}
	if !getterSuite.Checks[1].Agent.WantJSON {
		t.Error("want_json not mapped")
	}

	senderSuite := sc.Suites[1]
	if senderSuite.Checks[0].Name != "send 2 values" {
		t.Errorf("unnamed sender check = %q, want \"send 2 values\"", senderSuite.Checks[0].Name)
	}
	items := senderSuite.Checks[0].Sender.Items
	if items[0].Clock != 1695713666 || items[0].NS != 100 {
		t.Errorf("item clock/ns = %d/%d, want 1695713666/100", items[0].Clock, items[0].NS)
	}
	if !senderSuite.Checks[0].Sender.WantProcessed {
		t.Error("want_processed not mapped")
	}

	apiSuite := sc.Suites[2]
	if apiSuite.Checks[0].Name != "host.get" {
		t.Errorf("unnamed api check = %q, want method as name", apiSuite.Checks[0].Name)
	}
	if apiSuite.Checks[0].API.WantType != "list" {
		t.Errorf("want_type = %q, want list", apiSuite.Checks[0].API.WantType)
	}
	if _, ok := apiSuite.Checks[0].API.Params["output"]; !ok {
		t.Error("params not mapped")
	}
	if !apiSuite.hasAPIChecks() {
		t.Error("hasAPIChecks() = false for api suite")
	}
	if getterSuite.hasAPIChecks() {
		t.Error("hasAPIChecks() = true for agent-only suite")
	}
}

func TestParseScenarioDefaults(t *testing.T) {
	sc, err := ParseScenario([]byte(`
suites:
  - name: smoke
    checks:
      - agent:
          key: agent.ping
`))
	if err != nil {
		t.Fatalf("ParseScenario() error = %v", err)
	}
	if sc.LogDir != DefaultLogDir {
		t.Errorf("log dir = %q, want %q", sc.LogDir, DefaultLogDir)
	}
	if sc.Agent.Timeout != 0 {
		t.Errorf("agent timeout = %v, want 0", sc.Agent.Timeout)
	}
}

func TestParseScenarioErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "no suites",
			yaml:    "agent:\n  host: localhost\n",
			wantErr: "no suites",
		},
		{
			name:    "suite without name",
			yaml:    "suites:\n  - checks:\n      - agent:\n          key: agent.ping\n",
			wantErr: "without a name",
		},
		{
			name: "duplicate suite",
			yaml: `
suites:
  - name: smoke
    checks:
      - agent: {key: agent.ping}
  - name: smoke
    checks:
      - agent: {key: agent.ping}
`,
			wantErr: `duplicate suite "smoke"`,
		},
		{
			name:    "suite without checks",
			yaml:    "suites:\n  - name: smoke\n",
			wantErr: "has no checks",
		},
		{
			name: "check with two kinds",
			yaml: `
suites:
  - name: smoke
    checks:
      - agent: {key: agent.ping}
        api: {method: host.get}
`,
			wantErr: "exactly one of",
		},
		{
			name: "check with no kind",
			yaml: `
suites:
  - name: smoke
    checks:
      - name: empty
`,
			wantErr: "exactly one of",
		},
		{
			name: "agent check without key",
			yaml: `
suites:
  - name: smoke
    checks:
      - agent: {want: "1"}
`,
			wantErr: "without an item key",
		},
		{
			name: "sender check without items",
			yaml: `
suites:
  - name: smoke
    checks:
      - sender: {want_processed: true}
`,
			wantErr: "without items",
		},
		{
			name: "sender item without host",
			yaml: `
suites:
  - name: smoke
    checks:
      - sender:
          items:
            - key: item.key.1
              value: "10"
`,
			wantErr: "needs host and key",
		},
		{
			name: "api check without method",
			yaml: `
suites:
  - name: smoke
    checks:
      - api: {want_type: list}
`,
			wantErr: "without a method",
		},
		{
			name: "unknown want_type",
			yaml: `
suites:
  - name: smoke
    checks:
      - api: {method: host.get, want_type: tuple}
`,
			wantErr: `unknown want_type "tuple"`,
		},
		{
			name:    "bad agent timeout",
			yaml:    "agent:\n  timeout: fast\nsuites:\n  - name: smoke\n    checks:\n      - agent: {key: agent.ping}\n",
			wantErr: "agent timeout",
		},
		{
			name:    "not yaml",
			yaml:    "{{nope",
			wantErr: "parse scenario",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			if err == nil {
				t.Fatal("ParseScenario() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(scenarioYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario() error = %v", err)
	}
	if len(sc.Suites) != 3 {
		t.Errorf("len(suites) = %d, want 3", len(sc.Suites))
	}

	if _, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadScenario() on a missing file: error = nil, want error")
	}
}
