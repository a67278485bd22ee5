// Command fusestat runs FUSE's canonical optimization pipeline —
// vectorization, then constant folding, then frequent-subcircuit
// replacement, then dead-node elimination — over a small module built
// in-process by a fixture, and prints before/after node counts per
// circuit.
//
// This is not a general frontend: it does not read Bristol or HyCC files,
// and there is no on-disk module format to load. It exists to give the
// pass pipeline a real command-line entry point, built on
// github.com/spf13/cobra.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fuse-ir/fuse"
	"github.com/fuse-ir/fuse/passes/cf"
	"github.com/fuse-ir/fuse/passes/dne"
	"github.com/fuse-ir/fuse/passes/fsr"
	"github.com/fuse-ir/fuse/passes/vectorize"
)

func main() {
	var debug bool

	rootCmd := &cobra.Command{
		Use:   "fusestat",
		Short: "fusestat",
		Long:  "Runs FUSE's canonical pass pipeline over a built-in fixture module and reports node counts.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug-level pass logging")
	rootCmd.AddCommand(newRunCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var fsrBudgetSeconds int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "run the canonical pipeline over the fixture module",
		RunE: func(cmd *cobra.Command, args []string) error {
			m := buildFixtureModule()
			before := nodeCounts(m)

			if err := runPipeline(m, fsrBudgetSeconds); err != nil {
				return err
			}

			after := nodeCounts(m)
			printReport(cmd, before, after)
			return nil
		},
	}
	cmd.Flags().IntVar(&fsrBudgetSeconds, "fsr-budget-seconds", 5, "wall-clock budget for frequent-subcircuit replacement")
	return cmd
}

// runPipeline mutates m in place through the canonical pass order:
// vectorization, then constant folding, then FSR, then module-level DNE
// with unused-circuit removal.
func runPipeline(m *fuse.Module, fsrBudgetSeconds int) error {
	main, ok := m.Circuit(m.Entry)
	if !ok {
		return fmt.Errorf("fusestat: entry circuit %q not found", m.Entry)
	}

	if _, err := vectorize.Circuit(main, vectorize.Params{Op: fuse.Xor, MinGates: 3, MaxDepth: 32}); err != nil {
		return err
	}

	folded, _, err := cf.Circuit(main)
	if err != nil {
		return err
	}
	m.AddCircuit(folded)

	ctx := context.Background()
	if fsrBudgetSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(fsrBudgetSeconds)*time.Second)
		defer cancel()
	}
	if _, err := fsr.Run(ctx, m, m.Entry, fsr.Options{}); err != nil {
		return err
	}

	if _, err := dne.Module(m, dne.Options{RemoveUnusedCircuits: true}); err != nil {
		return err
	}
	return nil
}

func nodeCounts(m *fuse.Module) map[string]int {
	counts := make(map[string]int, m.Len())
	for _, name := range m.Order() {
		c, _ := m.Circuit(name)
		counts[name] = c.Len()
	}
	return counts
}

func printReport(cmd *cobra.Command, before, after map[string]int) {
	for _, name := range sortedKeys(before) {
		a, stillPresent := after[name]
		if !stillPresent {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d -> removed\n", name, before[name])
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d -> %d\n", name, before[name], a)
	}
	for _, name := range sortedKeys(after) {
		if _, existedBefore := before[name]; !existedBefore {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: new -> %d\n", name, after[name])
		}
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}
