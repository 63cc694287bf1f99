package main

import (
	"fmt"

	"github.com/jorik41/plctester/internal/plan"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <plan-file>",
	Short: "Check a plan file against the schema without running it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := plan.LoadFile(args[0])
		if err != nil {
			return err
		}

		var cases, steps int
		for _, m := range p.Modules {
			for _, t := range m.Tests {
				cases++
				steps += len(t.Steps)
			}
		}

		fmt.Printf("%s: valid (%d module(s), %d test case(s), %d step(s))\n",
			args[0], len(p.Modules), cases, steps)
		return nil
	},
}
