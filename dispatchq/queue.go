// ============================================================================
// DISPATCHQ: BOUNDED-PRIORITY DISPATCH QUEUE
// ============================================================================
//
// Queue provides O(1) insert, pop-highest-priority, existence check, arbitrary
// removal and in-place reprioritization for unique elements tagged with one
// of Levels discrete priorities.
//
// Architecture overview:
//   - Fixed array of Levels buckets, one per priority
//   - Each bucket is an arena of fixed slots chained into a FIFO list,
//     with released slots recycled through a per-bucket freelist
//   - Occupancy mask: bit p set ⇔ bucket p non-empty
//   - Location index: element → (priority, slot) for O(1) lookup and unlink
//
// Ordering:
//   - Lower numeric priority dispatches first (least-significant set bit)
//   - Same-priority elements dispatch in insertion order
//   - Reprioritization always appends at the tail of the new bucket
//
// Safety model:
//   - Single owner. No internal locking; callers serialize access.
//   - Out-of-range priorities are rejected with ErrInvalidPriority and never
//     reach the mask.

package dispatchq

import (
	"errors"

	"pdq/bitwise"
)

// ============================================================================
// CONFIGURATION CONSTANTS
// ============================================================================

// Levels is the number of priority levels. Valid priorities are [0, Levels).
// It is fixed at 64 so the occupancy mask fits a single uint64 on every platform.
const Levels = 64

// Priority is a dispatch priority. 0 is dispatched first, Levels-1 last.
type Priority uint8

// idx32 addresses a slot inside one bucket arena.
type idx32 uint32

// Freelist terminator and null chain link
const nilIdx idx32 = ^idx32(0)

var _ [Levels - bitwise.Width]byte // Levels must equal the mask width
var _ [bitwise.Width - Levels]byte

// ErrInvalidPriority is returned when a priority is outside [0, Levels).
var ErrInvalidPriority = errors.New("dispatchq: invalid priority")

// ============================================================================
// CORE DATA STRUCTURES
// ============================================================================

// slot holds one element and its FIFO chain links.
// Free slots reuse next as the freelist link.
type slot[T comparable] struct {
	elem T
	prev idx32
	next idx32
	live bool
}

// bucket is the FIFO chain for a single priority.
// Slot indices never move, so locations recorded in the index stay valid
// across arena growth.
type bucket[T comparable] struct {
	arena []slot[T]
	head  idx32 // Oldest element, popped first
	tail  idx32 // Newest element, appended after
	free  idx32 // Freelist head
	size  int
}

// location records where an element currently lives.
type location struct {
	prio Priority
	at   idx32
}

// Queue is a bounded-priority dispatch queue of unique elements.
// The zero value is not usable; construct with New or NewWithCapacity.
type Queue[T comparable] struct {
	buckets [Levels]bucket[T]
	index   map[T]location
	mask    uint64 // Occupancy mask, bit p ⇔ buckets[p].size > 0
	size    int
}

// ============================================================================
// CONSTRUCTORS
// ============================================================================

// New returns an empty queue.
func New[T comparable]() *Queue[T] {
	return NewWithCapacity[T](0)
}

// NewWithCapacity returns an empty queue whose buckets are pre-sized to hold
// perBucket elements each before their arenas grow.
func NewWithCapacity[T comparable](perBucket int) *Queue[T] {
	if perBucket < 0 {
		perBucket = 0
	}
	q := &Queue[T]{index: make(map[T]location)}
	for i := range q.buckets {
		b := &q.buckets[i]
		b.head, b.tail, b.free = nilIdx, nilIdx, nilIdx
		if perBucket > 0 {
			b.arena = make([]slot[T], 0, perBucket)
		}
	}
	return q
}

// ============================================================================
// BUCKET OPERATIONS
// ============================================================================

// pushBack appends e at the tail and returns its slot.
// Freed slots are recycled before the arena grows.
func (b *bucket[T]) pushBack(e T) idx32 {
	var h idx32
	if b.free != nilIdx {
		h = b.free
		b.free = b.arena[h].next
	} else {
		h = idx32(len(b.arena))
		b.arena = append(b.arena, slot[T]{})
	}

	s := &b.arena[h]
	s.elem, s.live = e, true
	s.prev, s.next = b.tail, nilIdx

	if b.tail != nilIdx {
		b.arena[b.tail].next = h
	} else {
		b.head = h
	}
	b.tail = h
	b.size++
	return h
}

// unlink detaches slot h from the chain and returns it to the freelist.
func (b *bucket[T]) unlink(h idx32) {
	s := &b.arena[h]

	if s.prev != nilIdx {
		b.arena[s.prev].next = s.next
	} else {
		b.head = s.next
	}
	if s.next != nilIdx {
		b.arena[s.next].prev = s.prev
	} else {
		b.tail = s.prev
	}

	var zero T
	s.elem, s.live = zero, false
	s.prev = nilIdx
	s.next = b.free
	b.free = h
	b.size--
}

// reset empties the bucket, keeping arena capacity.
func (b *bucket[T]) reset() {
	clear(b.arena)
	b.arena = b.arena[:0]
	b.head, b.tail, b.free = nilIdx, nilIdx, nilIdx
	b.size = 0
}

// ============================================================================
// INTERNAL OPERATIONS
// ============================================================================

// link appends e to bucket p and records it. e must be absent.
func (q *Queue[T]) link(e T, p Priority) {
	at := q.buckets[p].pushBack(e)
	q.index[e] = location{prio: p, at: at}
	bitwise.SetBit(&q.mask, uint(p))
	q.size++
}

// detach removes the element at loc from its bucket and clears the mask bit
// when the bucket drains. The index entry is left to the caller.
func (q *Queue[T]) detach(loc location) {
	b := &q.buckets[loc.prio]
	b.unlink(loc.at)
	if b.size == 0 {
		bitwise.ClearBit(&q.mask, uint(loc.prio))
	}
	q.size--
}

// ============================================================================
// PUBLIC API OPERATIONS
// ============================================================================

// Exists reports whether e is currently queued.
func (q *Queue[T]) Exists(e T) bool {
	_, ok := q.index[e]
	return ok
}

// InsertIfAbsent queues e at priority p unless e is already queued, in which
// case its priority and position are left untouched.
func (q *Queue[T]) InsertIfAbsent(e T, p Priority) error {
	if p >= Levels {
		return ErrInvalidPriority
	}
	if _, ok := q.index[e]; ok {
		return nil
	}
	q.link(e, p)
	return nil
}

// InsertOrReprioritize queues e at priority p. If e is already queued at a
// different priority it moves to the tail of bucket p; at the same priority
// nothing changes.
func (q *Queue[T]) InsertOrReprioritize(e T, p Priority) error {
	if p >= Levels {
		return ErrInvalidPriority
	}
	loc, ok := q.index[e]
	if !ok {
		q.link(e, p)
		return nil
	}
	if loc.prio == p {
		return nil
	}
	q.detach(loc)
	q.link(e, p)
	return nil
}

// TryPop removes and returns the oldest element of the lowest occupied
// priority. It reports false when the queue is empty.
func (q *Queue[T]) TryPop() (T, bool) {
	var zero T
	if q.mask == 0 {
		return zero, false
	}

	p := Priority(bitwise.CTZ(q.mask))
	b := &q.buckets[p]
	h := b.head
	e := b.arena[h].elem

	q.detach(location{prio: p, at: h})
	delete(q.index, e)
	return e, true
}

// Peek returns the element TryPop would return, with its priority, without
// removing it.
func (q *Queue[T]) Peek() (T, Priority, bool) {
	var zero T
	if q.mask == 0 {
		return zero, 0, false
	}
	p := Priority(bitwise.CTZ(q.mask))
	b := &q.buckets[p]
	return b.arena[b.head].elem, p, true
}

// Remove drops e from the queue. Absent elements are ignored.
func (q *Queue[T]) Remove(e T) {
	loc, ok := q.index[e]
	if !ok {
		return
	}
	q.detach(loc)
	delete(q.index, e)
}

// PriorityOf returns the current priority of e.
func (q *Queue[T]) PriorityOf(e T) (Priority, bool) {
	loc, ok := q.index[e]
	return loc.prio, ok
}

// Clear removes every element. Arena capacity is retained.
func (q *Queue[T]) Clear() {
	for m := q.mask; m != 0; {
		p := bitwise.CTZ(m)
		q.buckets[p].reset()
		m &^= 1 << uint(p)
	}
	clear(q.index)
	q.mask = 0
	q.size = 0
}

// Size returns the number of queued elements.
func (q *Queue[T]) Size() int { return q.size }

// Empty reports whether the queue holds no elements.
func (q *Queue[T]) Empty() bool { return q.size == 0 }

// Mask returns the occupancy mask: bit p is set iff priority p has elements.
func (q *Queue[T]) Mask() uint64 { return q.mask }

// Len returns the number of elements queued at priority p.
// Invalid priorities report 0.
func (q *Queue[T]) Len(p Priority) int {
	if p >= Levels {
		return 0
	}
	return q.buckets[p].size
}

// Each calls fn for every element in dispatch order until fn returns false.
// fn must not mutate the queue.
func (q *Queue[T]) Each(fn func(e T, p Priority) bool) {
	for m := q.mask; m != 0; {
		p := bitwise.CTZ(m)
		b := &q.buckets[p]
		for h := b.head; h != nilIdx; h = b.arena[h].next {
			if !fn(b.arena[h].elem, Priority(p)) {
				return
			}
		}
		m &^= 1 << uint(p)
	}
}
