package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pdq/constants"
	"pdq/debug"
	"pdq/dispatchq"
	"pdq/journal"
	"pdq/xorshift"
)

// dispatcher is the contract shared by the dispatch queue and the heap baseline.
type dispatcher interface {
	InsertOrReprioritize(e uint64, p dispatchq.Priority) error
	TryPop() (uint64, bool)
	Size() int
	Clear()
}

// implementation names a dispatcher constructor.
type implementation struct {
	name string
	make func() dispatcher
}

var implementations = []implementation{
	{"dispatchq", func() dispatcher { return dispatchq.NewWithCapacity[uint64](constants.DefaultBucketCapacity) }},
	{"heap", func() dispatcher { return newHeapQueue() }},
}

// input is one generated workload: distinct keys plus per-step priorities.
type input struct {
	keys  []uint64
	prios []dispatchq.Priority
	churn [][2]uint64 // (key index, priority)
}

func newInput(n int, seed uint64) input {
	g := xorshift.New(seed)
	in := input{
		keys:  g.Perm(n),
		prios: make([]dispatchq.Priority, n),
		churn: g.Pairs(n, uint64(n), dispatchq.Levels),
	}
	for i := range in.prios {
		in.prios[i] = dispatchq.Priority(g.Intn(dispatchq.Levels))
	}
	return in
}

// workload measures one access pattern and returns the timed duration and
// the number of operations it covers.
type workload struct {
	name string
	run  func(d dispatcher, in input) (time.Duration, int, error)
}

func fill(d dispatcher, in input) error {
	for i, k := range in.keys {
		if err := d.InsertOrReprioritize(k, in.prios[i]); err != nil {
			return err
		}
	}
	return nil
}

func drainCount(d dispatcher) int {
	n := 0
	for {
		if _, ok := d.TryPop(); !ok {
			return n
		}
		n++
	}
}

var workloads = []workload{
	{"pop", func(d dispatcher, in input) (time.Duration, int, error) {
		if err := fill(d, in); err != nil {
			return 0, 0, err
		}
		start := time.Now()
		n := drainCount(d)
		elapsed := time.Since(start)
		if n != len(in.keys) {
			return 0, 0, fmt.Errorf("popped %d of %d", n, len(in.keys))
		}
		return elapsed, n, nil
	}},
	{"push-pop", func(d dispatcher, in input) (time.Duration, int, error) {
		start := time.Now()
		if err := fill(d, in); err != nil {
			return 0, 0, err
		}
		n := drainCount(d)
		return time.Since(start), len(in.keys) + n, nil
	}},
	{"churn", func(d dispatcher, in input) (time.Duration, int, error) {
		if err := fill(d, in); err != nil {
			return 0, 0, err
		}
		start := time.Now()
		for _, c := range in.churn {
			if err := d.InsertOrReprioritize(in.keys[c[0]], dispatchq.Priority(c[1])); err != nil {
				return 0, 0, err
			}
		}
		elapsed := time.Since(start)
		if d.Size() != len(in.keys) {
			return 0, 0, fmt.Errorf("size %d after churn; want %d", d.Size(), len(in.keys))
		}
		return elapsed, len(in.churn), nil
	}},
}

// defaultSizes sweeps BenchMinN..BenchMaxN by BenchMultiplier.
func defaultSizes() []int {
	var out []int
	for n := constants.BenchMinN; n <= constants.BenchMaxN; n *= constants.BenchMultiplier {
		out = append(out, n)
	}
	return out
}

func knownWorkload(name string) bool {
	for _, w := range workloads {
		if w.name == name {
			return true
		}
	}
	return false
}

// runBench executes every workload × implementation × size combination.
func runBench(ctx context.Context, sizes []int, seed uint64, only string) ([]journal.Run, error) {
	if only != "" && !knownWorkload(only) {
		return nil, fmt.Errorf("bench: unknown workload %q", only)
	}
	var runs []journal.Run
	for _, n := range sizes {
		if n <= 0 {
			return nil, fmt.Errorf("bench: invalid size %d", n)
		}
		in := newInput(n, seed)
		for _, w := range workloads {
			if only != "" && w.name != only {
				continue
			}
			for _, impl := range implementations {
				if err := ctx.Err(); err != nil {
					return runs, err
				}
				d := impl.make()
				elapsed, ops, err := w.run(d, in)
				if err != nil {
					return runs, fmt.Errorf("bench %s/%s n=%d: %w", w.name, impl.name, n, err)
				}
				r := journal.Run{
					Workload: w.name,
					Impl:     impl.name,
					N:        n,
					Seed:     seed,
					NsPerOp:  float64(elapsed.Nanoseconds()) / float64(ops),
				}
				debug.Logger().Debug("bench step",
					zap.String("workload", r.Workload),
					zap.String("impl", r.Impl),
					zap.Int("n", r.N),
					zap.Float64("ns_per_op", r.NsPerOp))
				runs = append(runs, r)
			}
		}
	}
	return runs, nil
}

func newBenchCmd() *cobra.Command {
	var (
		sizes       []int
		seed        uint64
		journalPath string
		only        string
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Compare the dispatch queue with a binary-heap baseline",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(sizes) == 0 {
				sizes = defaultSizes()
			}
			runs, err := runBench(cmd.Context(), sizes, seed, only)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "WORKLOAD\tIMPL\tN\tNS/OP")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%.2f\n", r.Workload, r.Impl, r.N, r.NsPerOp)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if journalPath == "" {
				return nil
			}
			j, err := journal.Open(cmd.Context(), journalPath)
			if err != nil {
				return err
			}
			defer j.Close()
			if _, err := j.RecordRuns(cmd.Context(), runs...); err != nil {
				return err
			}
			debug.DropMessage("BENCH", fmt.Sprintf("recorded %d runs in %s", len(runs), journalPath))
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&sizes, "n", nil, "element counts to sweep (default 1e3..1e6 by 10x)")
	cmd.Flags().Uint64Var(&seed, "seed", constants.DefaultSeed, "xorshift seed")
	cmd.Flags().StringVar(&journalPath, "journal", "", "sqlite journal to record runs into")
	cmd.Flags().StringVar(&only, "workload", "", "run a single workload (pop, push-pop, churn)")
	return cmd
}
