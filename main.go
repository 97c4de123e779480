// ════════════════════════════════════════════════════════════════════════════════════════════════
// pdq - Priority Dispatch Queue Tooling
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Component: Command-line entry point
//
// Description:
//   Benchmarks the dispatch queue against a binary-heap baseline, checkpoints queues
//   into the sqlite journal and replays them to verify dispatch order survives a
//   snapshot round trip.
//
// Commands:
//   - bench:  sweep workloads over element counts, optionally record runs
//   - replay: build a random queue, snapshot it, restore it, compare drains
//   - runs:   list recorded benchmark runs
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pdq/debug"
)

func main() {
	// Interrupts cancel the running command between workload steps
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	debug.Sync()
	if err != nil {
		debug.DropError("pdq", err)
		os.Exit(1)
	}
}

// newRootCmd assembles the command tree.
func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "pdq",
		Short:         "Priority dispatch queue benchmarks and snapshot tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			debug.SetVerbose(verbose)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug-level logging")

	root.AddCommand(newBenchCmd(), newReplayCmd(), newRunsCmd())
	return root
}
