package verify

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeLog(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCheckLogs(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantOK   bool
		wantLast string
	}{
		{
			name:     "ends with marker",
			content:  "Ran 3 checks in 0.120s\n\nOK\n",
			wantOK:   true,
			wantLast: "OK",
		},
		{
			name:     "trailing blank lines ignored",
			content:  "OK\n\n\n",
			wantOK:   true,
			wantLast: "OK",
		},
		{
			name:     "marker embedded in last line",
			content:  "all checks OK (skipped=1)\n",
			wantOK:   true,
			wantLast: "all checks OK (skipped=1)",
		},
		{
			name:     "failed verdict",
			content:  "Ran 3 checks in 0.120s\n\nFAILED (failures=2)\n",
			wantOK:   false,
			wantLast: "FAILED (failures=2)",
		},
		{
			name:     "empty file",
			content:  "",
			wantOK:   false,
			wantLast: "",
		},
		{
			name:     "whitespace only",
			content:  " \n\t\n",
			wantOK:   false,
			wantLast: "",
		},
		{
			name:     "marker earlier but not last",
			content:  "OK\npanic: runtime error\n",
			wantOK:   false,
			wantLast: "panic: runtime error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeLog(t, t.TempDir(), "suite.log", tt.content)

			verdicts, err := CheckLogs([]string{path})
			if len(verdicts) != 1 {
				t.Fatalf("len(verdicts) = %d, want 1", len(verdicts))
			}
			v := verdicts[0]
			if v.OK != tt.wantOK {
				t.Errorf("OK = %v, want %v", v.OK, tt.wantOK)
			}
			if v.LastLine != tt.wantLast {
				t.Errorf("LastLine = %q, want %q", v.LastLine, tt.wantLast)
			}
			if tt.wantOK && err != nil {
				t.Errorf("CheckLogs() error = %v, want nil", err)
			}
			if !tt.wantOK && err == nil {
				t.Error("CheckLogs() error = nil, want error")
			}
		})
	}
}

func TestCheckLogsMissingFile(t *testing.T) {
	verdicts, err := CheckLogs([]string{filepath.Join(t.TempDir(), "gone.log")})
	if err == nil {
		t.Fatal("CheckLogs() error = nil, want error")
	}
	if verdicts[0].OK {
		t.Error("OK = true for a missing file")
	}
}

func TestCheckLogsCountsFailures(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeLog(t, dir, "a.log", "OK\n"),
		writeLog(t, dir, "b.log", "FAILED (failures=1)\n"),
		writeLog(t, dir, "c.log", "OK\n"),
	}

	verdicts, err := CheckLogs(paths)
	if err == nil {
		t.Fatal("CheckLogs() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "1 of 3 logs") {
		t.Errorf("error = %q, want it to count 1 of 3", err)
	}
	if len(verdicts) != 3 {
		t.Errorf("len(verdicts) = %d, want all 3 inspected", len(verdicts))
	}
	if !verdicts[0].OK || verdicts[1].OK || !verdicts[2].OK {
		t.Errorf("verdicts = %+v, want only b.log failed", verdicts)
	}
}
