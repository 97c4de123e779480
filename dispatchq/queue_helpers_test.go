// queue_helpers_test.go: shared helpers for dispatchq test suites
// ===============================================================
// Centralizes invariant checking, fixture generation and drain helpers so
// the correctness, stress and benchmark suites stay focused on behavior.

package dispatchq

import (
	"errors"
	"fmt"
	"testing"

	"golang.org/x/crypto/sha3"
)

// addr is a fixed-size comparable element used by fixture-driven tests.
type addr [20]byte

// makeAddr returns a deterministic 20-byte element from Keccak256(seed).
func makeAddr(seed uint32) addr {
	h := sha3.Sum256([]byte{byte(seed), byte(seed >> 8), byte(seed >> 16), byte(seed >> 24)})
	var a addr
	copy(a[:], h[:20])
	return a
}

// checkInvariants verifies every structural invariant of q:
//   - mask bit p ⇔ bucket p non-empty
//   - each chain is well linked (prev/next agree, head/tail terminate)
//   - index ⇔ chain membership is a bijection with matching locations
//   - size == Σ bucket sizes == len(index)
//   - freelist slots are dead and disjoint from the chain
func (q *Queue[T]) checkInvariants() error {
	total := 0
	seen := make(map[T]struct{}, len(q.index))

	for p := 0; p < Levels; p++ {
		b := &q.buckets[p]
		bit := q.mask&(1<<uint(p)) != 0
		if bit != (b.size > 0) {
			return fmt.Errorf("mask bit %d = %v but bucket size = %d", p, bit, b.size)
		}

		walked := 0
		prev := nilIdx
		for h := b.head; h != nilIdx; h = b.arena[h].next {
			s := &b.arena[h]
			if !s.live {
				return fmt.Errorf("bucket %d: dead slot %d in chain", p, h)
			}
			if s.prev != prev {
				return fmt.Errorf("bucket %d: slot %d prev=%d want %d", p, h, s.prev, prev)
			}
			loc, ok := q.index[s.elem]
			if !ok {
				return fmt.Errorf("bucket %d: element %v missing from index", p, s.elem)
			}
			if loc.prio != Priority(p) || loc.at != h {
				return fmt.Errorf("bucket %d: element %v indexed at (%d,%d) want (%d,%d)",
					p, s.elem, loc.prio, loc.at, p, h)
			}
			if _, dup := seen[s.elem]; dup {
				return fmt.Errorf("element %v appears in more than one slot", s.elem)
			}
			seen[s.elem] = struct{}{}
			prev = h
			walked++
			if walked > len(b.arena) {
				return fmt.Errorf("bucket %d: chain cycle", p)
			}
		}
		if b.tail != prev {
			return fmt.Errorf("bucket %d: tail=%d want %d", p, b.tail, prev)
		}
		if walked != b.size {
			return fmt.Errorf("bucket %d: walked %d, size %d", p, walked, b.size)
		}

		free := 0
		for h := b.free; h != nilIdx; h = b.arena[h].next {
			if b.arena[h].live {
				return fmt.Errorf("bucket %d: live slot %d on freelist", p, h)
			}
			free++
			if free > len(b.arena) {
				return fmt.Errorf("bucket %d: freelist cycle", p)
			}
		}
		if free+walked != len(b.arena) {
			return fmt.Errorf("bucket %d: %d free + %d live != arena %d", p, free, walked, len(b.arena))
		}
		total += walked
	}

	if total != q.size {
		return fmt.Errorf("size=%d but buckets hold %d", q.size, total)
	}
	if len(q.index) != q.size {
		return fmt.Errorf("size=%d but index holds %d", q.size, len(q.index))
	}
	return nil
}

// mustInvariants fails the test if q violates any structural invariant.
func mustInvariants[T comparable](t testing.TB, q *Queue[T]) {
	t.Helper()
	if err := q.checkInvariants(); err != nil {
		t.Fatalf("invariant violated: %v", err)
	}
}

// mustInsert calls InsertIfAbsent and fails the test on error.
func mustInsert[T comparable](t testing.TB, q *Queue[T], e T, p Priority) {
	t.Helper()
	if err := q.InsertIfAbsent(e, p); err != nil {
		t.Fatalf("InsertIfAbsent(%v, %d): %v", e, p, err)
	}
}

// mustReprioritize calls InsertOrReprioritize and fails the test on error.
func mustReprioritize[T comparable](t testing.TB, q *Queue[T], e T, p Priority) {
	t.Helper()
	if err := q.InsertOrReprioritize(e, p); err != nil {
		t.Fatalf("InsertOrReprioritize(%v, %d): %v", e, p, err)
	}
}

// mustPop pops once and fails unless the popped element equals want.
func mustPop[T comparable](t testing.TB, q *Queue[T], want T) {
	t.Helper()
	got, ok := q.TryPop()
	if !ok {
		t.Fatalf("TryPop on non-empty queue returned empty; want %v", want)
	}
	if got != want {
		t.Fatalf("TryPop = %v; want %v", got, want)
	}
}

// mustEmptyPop fails unless TryPop reports an empty queue.
func mustEmptyPop[T comparable](t testing.TB, q *Queue[T]) {
	t.Helper()
	if got, ok := q.TryPop(); ok {
		t.Fatalf("TryPop on empty queue returned %v", got)
	}
}

// drain pops everything and returns elements in dispatch order.
func drain[T comparable](q *Queue[T]) []T {
	out := make([]T, 0, q.Size())
	for {
		e, ok := q.TryPop()
		if !ok {
			return out
		}
		out = append(out, e)
	}
}

// isInvalid reports whether err is the invalid-priority rejection.
func isInvalid(err error) bool {
	return errors.Is(err, ErrInvalidPriority)
}
