package main

import (
	"container/heap"

	"pdq/dispatchq"
)

// heapItem is one element in the binary-heap baseline.
type heapItem struct {
	elem  uint64
	prio  dispatchq.Priority
	seq   uint64 // insertion order, FIFO tie-break
	index int    // position in the heap, maintained by Swap/Push/Pop
}

// heapItems is a min-heap ordered by (prio, seq).
type heapItems []*heapItem

func (h heapItems) Len() int { return len(h) }
func (h heapItems) Less(i, j int) bool {
	if h[i].prio != h[j].prio {
		return h[i].prio < h[j].prio
	}
	return h[i].seq < h[j].seq
}
func (h heapItems) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *heapItems) Push(x any) {
	it := x.(*heapItem)
	it.index = len(*h)
	*h = append(*h, it)
}

func (h *heapItems) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*h = old[:n-1]
	return it
}

// heapQueue is the O(log n) baseline the dispatch queue is measured against.
// It offers the same insert/reprioritize/pop contract.
type heapQueue struct {
	items heapItems
	index map[uint64]*heapItem
	seq   uint64
}

func newHeapQueue() *heapQueue {
	return &heapQueue{index: make(map[uint64]*heapItem)}
}

func (q *heapQueue) InsertOrReprioritize(e uint64, p dispatchq.Priority) error {
	if p >= dispatchq.Levels {
		return dispatchq.ErrInvalidPriority
	}
	q.seq++
	if it, ok := q.index[e]; ok {
		if it.prio == p {
			return nil
		}
		// moves to the back of its new priority class
		it.prio, it.seq = p, q.seq
		heap.Fix(&q.items, it.index)
		return nil
	}
	it := &heapItem{elem: e, prio: p, seq: q.seq}
	heap.Push(&q.items, it)
	q.index[e] = it
	return nil
}

func (q *heapQueue) TryPop() (uint64, bool) {
	if len(q.items) == 0 {
		return 0, false
	}
	it := heap.Pop(&q.items).(*heapItem)
	delete(q.index, it.elem)
	return it.elem, true
}

func (q *heapQueue) Size() int { return len(q.items) }

func (q *heapQueue) Clear() {
	q.items = q.items[:0]
	clear(q.index)
	q.seq = 0
}
