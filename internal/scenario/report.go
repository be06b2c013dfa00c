package scenario

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vango-dev/reactive/internal/errors"
)

// Trace entry kinds.
const (
	KindStep     = "step"
	KindRun      = "run"
	KindSkip     = "skip"
	KindFlush    = "flush"
	KindComputed = "computed"
	KindFail     = "fail"
)

// TraceEntry is one line of a scenario trace. Step is 0 for the initial
// runs made before the first step.
type TraceEntry struct {
	Step   int    `json:"step"`
	Watch  string `json:"watch,omitempty"`
	Kind   string `json:"kind"`
	Values []any  `json:"values,omitempty"`
	Detail string `json:"detail,omitempty"`
}

func (e TraceEntry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s", e.Step, e.Kind)
	if e.Watch != "" {
		b.WriteString(" ")
		b.WriteString(e.Watch)
	}
	if e.Values != nil {
		fmt.Fprintf(&b, " %v", e.Values)
	}
	if e.Detail != "" {
		b.WriteString(" ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

// Report is the outcome of one scenario run.
type Report struct {
	Scenario string          `json:"scenario"`
	File     string          `json:"file,omitempty"`
	Started  time.Time       `json:"started"`
	Duration time.Duration   `json:"duration"`
	Trace    []TraceEntry    `json:"trace"`
	Failures []*errors.Error `json:"failures,omitempty"`
}

// Passed reports whether every expectation held.
func (r *Report) Passed() bool {
	return len(r.Failures) == 0
}

// Runs returns the trace entries of kind KindRun for watch.
func (r *Report) Runs(watch string) []TraceEntry {
	var out []TraceEntry
	for _, e := range r.Trace {
		if e.Kind == KindRun && e.Watch == watch {
			out = append(out, e)
		}
	}
	return out
}

// WriteText prints the report for a terminal. The trace is included when
// verbose is set or the scenario failed.
func (r *Report) WriteText(w io.Writer, verbose bool) {
	status := "PASS"
	if !r.Passed() {
		status = "FAIL"
	}
	fmt.Fprintf(w, "%s %s (%s)\n", status, r.Scenario, r.Duration.Round(time.Microsecond))

	if verbose || !r.Passed() {
		for _, e := range r.Trace {
			fmt.Fprintf(w, "    %s\n", e)
		}
	}
	for _, f := range r.Failures {
		errors.Fprint(w, f)
	}
}
