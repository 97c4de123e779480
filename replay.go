package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pdq/constants"
	"pdq/debug"
	"pdq/dispatchq"
	"pdq/journal"
	"pdq/snapshot"
	"pdq/xorshift"
)

// replayResult summarizes one checkpoint/restore round trip.
type replayResult struct {
	Name    string
	Size    int
	Mask    uint64
	Payload int
}

// randomQueue fills a queue with n distinct elements at random priorities,
// then reprioritizes a quarter of them so buckets carry recycled slots.
func randomQueue(n int, seed uint64) (*dispatchq.Queue[uint64], error) {
	g := xorshift.New(seed)
	q := dispatchq.NewWithCapacity[uint64](constants.DefaultBucketCapacity)
	keys := g.Perm(n)
	for _, k := range keys {
		if err := q.InsertIfAbsent(k, dispatchq.Priority(g.Intn(dispatchq.Levels))); err != nil {
			return nil, err
		}
	}
	if n == 0 {
		return q, nil
	}
	for _, pr := range g.Pairs(n/4, uint64(n), dispatchq.Levels) {
		if err := q.InsertOrReprioritize(keys[pr[0]], dispatchq.Priority(pr[1])); err != nil {
			return nil, err
		}
	}
	return q, nil
}

// replay checkpoints a random queue into j under name, restores it into a
// fresh queue and verifies both drain in the same order.
func replay(ctx context.Context, j *journal.Journal, name string, n int, seed uint64) (replayResult, error) {
	src, err := randomQueue(n, seed)
	if err != nil {
		return replayResult{}, err
	}
	payload, err := snapshot.Marshal(src)
	if err != nil {
		return replayResult{}, err
	}
	if err := j.SaveSnapshot(ctx, name, payload, src.Size()); err != nil {
		return replayResult{}, err
	}

	stored, err := j.LoadSnapshot(ctx, name)
	if err != nil {
		return replayResult{}, err
	}
	dst := dispatchq.New[uint64]()
	if err := snapshot.Unmarshal(stored, dst); err != nil {
		return replayResult{}, err
	}

	res := replayResult{Name: name, Size: src.Size(), Mask: src.Mask(), Payload: len(payload)}
	for i := 0; ; i++ {
		if i&0xfff == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}
		a, okA := src.TryPop()
		b, okB := dst.TryPop()
		if okA != okB {
			return res, fmt.Errorf("replay: drain length diverged at %d", i)
		}
		if !okA {
			return res, nil
		}
		if a != b {
			return res, fmt.Errorf("replay: dispatch order diverged at %d: %d vs %d", i, a, b)
		}
	}
}

func newReplayCmd() *cobra.Command {
	var (
		n           int
		seed        uint64
		journalPath string
		name        string
	)
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Checkpoint a random queue, restore it and compare dispatch order",
		RunE: func(cmd *cobra.Command, args []string) error {
			if n < 0 {
				return fmt.Errorf("replay: invalid size %d", n)
			}
			ctx := cmd.Context()
			j, err := journal.Open(ctx, journalPath)
			if err != nil {
				return err
			}
			defer j.Close()

			res, err := replay(ctx, j, name, n, seed)
			if err != nil {
				return err
			}
			debug.Logger().Debug("replay verified",
				zap.String("name", res.Name),
				zap.Int("size", res.Size),
				zap.Uint64("mask", res.Mask),
				zap.Int("payload_bytes", res.Payload))
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d elements, mask %#016x, %d bytes, order verified\n",
				res.Name, res.Size, res.Mask, res.Payload)
			debug.DropMessage("REPLAY", "snapshot "+res.Name+" round trip ok")
			return nil
		},
	}
	cmd.Flags().IntVar(&n, "n", constants.BenchMinN*10, "elements in the checkpointed queue")
	cmd.Flags().Uint64Var(&seed, "seed", constants.DefaultSeed, "xorshift seed")
	cmd.Flags().StringVar(&journalPath, "journal", constants.DefaultJournalPath, "sqlite journal path")
	cmd.Flags().StringVar(&name, "name", "replay", "snapshot name")
	return cmd
}
