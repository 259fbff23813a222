package verify

import (
	"fmt"
	"os"
	"strings"
)

// SuccessMarker is the token a healthy suite log ends with. The verdict
// rule is deliberately blunt: a run passes exactly when the last
// non-empty line of every log contains this token.
const SuccessMarker = "OK"

// LogVerdict is the marker-rule outcome for a single log file.
type LogVerdict struct {
	// Path is the inspected log file.
	Path string `json:"path"`

	// LastLine is the last non-empty line found, trimmed. Empty when
	// the file was empty or unreadable.
	LastLine string `json:"last_line"`

	// OK reports whether LastLine contains the success marker.
	OK bool `json:"ok"`
}

// CheckLogs applies the marker rule to every path. Unreadable and empty
// files fail the rule. The returned error is non-nil when at least one
// log failed; the verdicts are returned either way.
func CheckLogs(paths []string) ([]LogVerdict, error) {
	verdicts := make([]LogVerdict, 0, len(paths))
	failed := 0
	for _, path := range paths {
		v := LogVerdict{Path: path}
		data, err := os.ReadFile(path)
		if err == nil {
			v.LastLine = lastNonEmptyLine(data)
			v.OK = strings.Contains(v.LastLine, SuccessMarker)
		}
		if !v.OK {
			failed++
		}
		verdicts = append(verdicts, v)
	}
	if failed > 0 {
		return verdicts, fmt.Errorf("verify: %d of %d logs did not end with %q", failed, len(paths), SuccessMarker)
	}
	return verdicts, nil
}

func lastNonEmptyLine(data []byte) string {
	lines := strings.Split(string(data), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
