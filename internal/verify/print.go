package verify

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// PrintReport renders a run report for a terminal.
func PrintReport(w io.Writer, rep *Report) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	bold := color.New(color.Bold)

	for _, s := range rep.Suites {
		bold.Fprintf(w, "%s (%s)\n", s.Suite, s.Mode)
		for _, c := range s.Checks {
			if c.Passed {
				green.Fprintf(w, "  [ OK ] %s (%dms)\n", c.Name, c.DurationMS)
			} else {
				red.Fprintf(w, "  [FAIL] %s: %s\n", c.Name, c.Message)
			}
		}
	}

	failed := 0
	for _, s := range rep.Suites {
		if !s.Passed {
			failed++
		}
	}
	fmt.Fprintln(w)
	if rep.Passed {
		green.Fprintf(w, "PASSED (%d suite runs)\n", len(rep.Suites))
	} else {
		red.Fprintf(w, "FAILED (%d of %d suite runs)\n", failed, len(rep.Suites))
	}
}

// PrintVerdicts renders marker-rule verdicts for a terminal.
func PrintVerdicts(w io.Writer, verdicts []LogVerdict) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	for _, v := range verdicts {
		if v.OK {
			green.Fprintf(w, "[ OK ] %s\n", v.Path)
		} else {
			line := v.LastLine
			if line == "" {
				line = "(no output)"
			}
			red.Fprintf(w, "[FAIL] %s: %s\n", v.Path, line)
		}
	}
}
