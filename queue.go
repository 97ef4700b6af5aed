package netsim

//
// Event and timer priority queues (§4.C)
//

import "container/heap"

// frameDelivery is a scheduled receive: the payload in flight, the
// link it arrived on, and the nodes that should observe it.
type frameDelivery struct {
	deliverAtMicros int64
	seq             int64 // insertion order, for stable tie-breaking
	payload         []byte
	link            Link
	receivers       []*Node
}

// eventHeap is a min-heap of [frameDelivery] ordered by
// (deliverAtMicros, seq): equal timestamps are broken by insertion
// order (§4.C).
type eventHeap []*frameDelivery

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].deliverAtMicros != h[j].deliverAtMicros {
		return h[i].deliverAtMicros < h[j].deliverAtMicros
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) { *h = append(*h, x.(*frameDelivery)) }

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// eventQueue wraps [eventHeap] with an insertion-order counter.
type eventQueue struct {
	heap eventHeap
	seq  int64
}

// push enqueues a delivery, stamping it with the next insertion-order
// sequence number.
func (q *eventQueue) push(d *frameDelivery) {
	d.seq = q.seq
	q.seq++
	heap.Push(&q.heap, d)
}

// peek returns the head of the queue without removing it, or nil.
func (q *eventQueue) peek() *frameDelivery {
	if len(q.heap) == 0 {
		return nil
	}
	return q.heap[0]
}

// pop removes and returns the head of the queue.
func (q *eventQueue) pop() *frameDelivery {
	return heap.Pop(&q.heap).(*frameDelivery)
}

// Timer is a deferred per-node callback (§3).
type Timer struct {
	fireAtMicros int64
	id           int
	nodeIndex    int
	kind         EventKind
	data         any
	cancelled    bool
}

// timerHeap is a min-heap of [*Timer] ordered by (fireAtMicros, id).
type timerHeap []*Timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].fireAtMicros != h[j].fireAtMicros {
		return h[i].fireAtMicros < h[j].fireAtMicros
	}
	return h[i].id < h[j].id
}

func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *timerHeap) Push(x any) { *h = append(*h, x.(*Timer)) }

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// timerQueue wraps [timerHeap] with an ID-indexed map so that
// cancellation (§5 "Cancellation & timeout") is O(1).
type timerQueue struct {
	heap timerHeap
	byID map[int]*Timer
}

// newTimerQueue creates an empty [timerQueue].
func newTimerQueue() *timerQueue {
	return &timerQueue{byID: map[int]*Timer{}}
}

// push enqueues t and indexes it by ID.
func (q *timerQueue) push(t *Timer) {
	heap.Push(&q.heap, t)
	q.byID[t.id] = t
}

// peek returns the head of the queue without removing it, or nil.
func (q *timerQueue) peek() *Timer {
	if len(q.heap) == 0 {
		return nil
	}
	return q.heap[0]
}

// pop removes and returns the head of the queue. It does not remove
// the entry from byID: the caller does that once it has decided
// whether the timer fires (a cancelled timer may still be at the head
// and is simply dropped by the caller, per §3 invariant 4).
func (q *timerQueue) pop() *Timer {
	return heap.Pop(&q.heap).(*Timer)
}

// cancel marks the timer live under id as cancelled and removes it
// from byID. Returns true if the timer existed and was not already
// cancelled.
func (q *timerQueue) cancel(id int) bool {
	t, ok := q.byID[id]
	if !ok {
		return false
	}
	t.cancelled = true
	delete(q.byID, id)
	return true
}

// get returns the live timer for id, if any.
func (q *timerQueue) get(id int) (*Timer, bool) {
	t, ok := q.byID[id]
	return t, ok
}

// forget removes id from byID without cancelling it. Called once a
// timer has fired naturally.
func (q *timerQueue) forget(id int) {
	delete(q.byID, id)
}
