package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jorik41/plctester/internal/plan"
	"github.com/jorik41/plctester/internal/runner"
	"github.com/jorik41/plctester/internal/s7"
	"github.com/jorik41/plctester/internal/s7/sim"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runFlags struct {
	address     string
	rack        int
	slot        int
	timeout     time.Duration
	useSim      bool
	stopOnError bool
	jsonOutput  bool
	verbose     bool
}

var runCmd = &cobra.Command{
	Use:   "run <plan-file>",
	Short: "Execute a test plan against a PLC (or the built-in simulator)",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlan,
}

func init() {
	runCmd.Flags().StringVar(&runFlags.address, "address", "127.0.0.1:102", "PLC address (host:port)")
	runCmd.Flags().IntVar(&runFlags.rack, "rack", 0, "PLC rack number")
	runCmd.Flags().IntVar(&runFlags.slot, "slot", 1, "PLC slot number")
	runCmd.Flags().DurationVar(&runFlags.timeout, "timeout", 5*time.Second, "connection timeout")
	runCmd.Flags().BoolVar(&runFlags.useSim, "sim", false, "run against the in-memory simulator instead of a PLC")
	runCmd.Flags().BoolVar(&runFlags.stopOnError, "stop-on-error", false, "abort the run on the first step error")
	runCmd.Flags().BoolVar(&runFlags.jsonOutput, "json", false, "print the report as JSON instead of text")
	runCmd.Flags().BoolVar(&runFlags.verbose, "verbose", false, "enable debug logging")
}

func runPlan(cmd *cobra.Command, args []string) error {
	p, err := plan.LoadFile(args[0])
	if err != nil {
		return err
	}

	logger := zap.NewNop()
	if runFlags.verbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer logger.Sync()
	}

	var port s7.MemoryPort
	if runFlags.useSim {
		port = sim.New()
	} else {
		port = s7.NewClient(runFlags.address, runFlags.rack, runFlags.slot, runFlags.timeout)
	}

	var sink runner.EventSink = runner.NopSink{}
	if !runFlags.jsonOutput {
		sink = newConsoleSink(os.Stdout)
	}

	r := runner.New(port, logger, runner.Options{StopOnError: runFlags.stopOnError}, sink)
	report, err := r.Run(context.Background(), p)
	if err != nil && report == nil {
		return err
	}

	if runFlags.jsonOutput {
		data, merr := json.MarshalIndent(report, "", "  ")
		if merr != nil {
			return merr
		}
		fmt.Println(string(data))
	} else {
		printSummary(os.Stdout, report)
	}

	if err != nil {
		return err
	}

	if _, failed := report.Counts(); failed > 0 {
		return fmt.Errorf("%d test case(s) failed", failed)
	}
	return nil
}
