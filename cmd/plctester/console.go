package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jorik41/plctester/internal/runner"
)

var (
	passColor = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	boldColor = color.New(color.Bold)
)

// consoleSink renders run progress as the indented module/test/step listing
// operators are used to.
type consoleSink struct {
	w io.Writer
}

func newConsoleSink(w io.Writer) *consoleSink {
	return &consoleSink{w: w}
}

func (s *consoleSink) Publish(ev runner.Event) {
	switch ev.Type {
	case runner.EventModuleStarted:
		boldColor.Fprintf(s.w, "Module: %s\n", ev.Module)
	case runner.EventCaseStarted:
		fmt.Fprintf(s.w, "  Test: %s\n", ev.Case)
	case runner.EventStepStarted:
		fmt.Fprintf(s.w, "    Step %d: %s\n", ev.StepIndex, ev.StepName)
	case runner.EventCaseCompleted:
		if ev.Verdict == runner.VerdictPassed {
			fmt.Fprintf(s.w, "  Result: %s\n", passColor.Sprint(ev.Verdict))
		} else {
			fmt.Fprintf(s.w, "  Result: %s\n", failColor.Sprint(ev.Verdict))
			for _, reason := range ev.Failures {
				failColor.Fprintf(s.w, "    Failure: %s\n", reason)
			}
		}
	case runner.EventRunFailed:
		failColor.Fprintf(s.w, "Run failed: %s\n", ev.Error)
	}
}

func printSummary(w io.Writer, report *runner.Report) {
	if report == nil {
		return
	}
	passed, failed := report.Counts()
	fmt.Fprintln(w)
	if failed == 0 {
		passColor.Fprintf(w, "%d test case(s) passed\n", passed)
	} else {
		failColor.Fprintf(w, "%d passed, %d failed\n", passed, failed)
	}
}
