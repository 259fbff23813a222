package verify

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// summaryFile is the machine-readable run summary written next to the
// suite logs.
const summaryFile = "summary.json"

// Report is the outcome of one full scenario run.
type Report struct {
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at"`
	Passed    bool          `json:"passed"`
	Suites    []SuiteResult `json:"suites"`
	LogFiles  []string      `json:"log_files"`
}

// SuiteResult is the outcome of one suite in one mode.
type SuiteResult struct {
	Suite      string        `json:"suite"`
	Mode       string        `json:"mode"`
	LogFile    string        `json:"log_file"`
	StartedAt  time.Time     `json:"started_at"`
	DurationMS int64         `json:"duration_ms"`
	Passed     bool          `json:"passed"`
	Failures   int           `json:"failures"`
	Checks     []CheckResult `json:"checks"`
}

// CheckResult is the outcome of a single check.
type CheckResult struct {
	Name       string `json:"name"`
	Passed     bool   `json:"passed"`
	Message    string `json:"message,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// WriteSummary persists the report as JSON under dir. The file is
// written to a temp path and renamed so readers never see a partial
// summary. Returns the summary path.
func WriteSummary(dir string, rep *Report) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("verify: create summary dir: %w", err)
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", fmt.Errorf("verify: marshal summary: %w", err)
	}

	path := filepath.Join(dir, summaryFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("verify: write summary: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("verify: replace summary: %w", err)
	}
	return path, nil
}

// ReadSummary loads a previously written summary.
func ReadSummary(dir string) (*Report, error) {
	data, err := os.ReadFile(filepath.Join(dir, summaryFile))
	if err != nil {
		return nil, fmt.Errorf("verify: read summary: %w", err)
	}
	var rep Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("verify: parse summary: %w", err)
	}
	return &rep, nil
}
