package internal

import (
	"sort"
	"sync"
)

// effectQueue is the commit-phase queue (§4.7): observer side effects are
// not run inline as their node ticks, they're appended here and run once
// propagation has reached quiescence, in the order their observers were
// *registered* (P5) rather than the order the scheduler happened to tick
// them in — those two orders diverge whenever two observers sit at
// different levels, since the scheduler always visits lower levels first
// regardless of which observer was constructed first. Each entry carries
// its observer's node id (assigned in construction order), and run sorts by
// it before executing, which is what keeps commit order tied to
// registration order instead of level order.
//
// Grounded on the teacher's internal/queue.go EffectQueue, collapsed from
// its render/user phase split — that split is part of the teacher's
// UI-framework sugar (spec §1 declares the operator/observer facade out of
// scope), and spec §4.7 only ever asks for a single ordered commit-phase
// queue. mu guards enqueue against the parallel engine, which ticks
// same-level nodes from multiple goroutines concurrently.
type effectQueue struct {
	mu      sync.Mutex
	entries []effectEntry
}

type effectEntry struct {
	id uint64
	fn func()
}

func newEffectQueue() *effectQueue { return &effectQueue{} }

func (q *effectQueue) enqueue(id uint64, fn func()) {
	q.mu.Lock()
	q.entries = append(q.entries, effectEntry{id: id, fn: fn})
	q.mu.Unlock()
}

// run executes every queued effect in registration order, clearing the
// queue first so that effects scheduling further effects (nested
// observers) are deferred to the *next* drain rather than appended
// mid-iteration.
func (q *effectQueue) run() {
	q.mu.Lock()
	entries := q.entries
	q.entries = nil
	q.mu.Unlock()

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].id < entries[j].id })
	for _, e := range entries {
		e.fn()
	}
}

func (q *effectQueue) empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries) == 0
}

// continuationQueue holds follow-up transactions enqueued by observers
// during commit. Drained as a FIFO before a Sync do_transaction returns, or
// before the async driver goes idle (§4.7).
type continuationQueue struct {
	fns []func() error
}

func (q *continuationQueue) enqueue(fn func() error) {
	q.fns = append(q.fns, fn)
}

func (q *continuationQueue) empty() bool { return len(q.fns) == 0 }

func (q *continuationQueue) pop() (func() error, bool) {
	if len(q.fns) == 0 {
		return nil, false
	}
	fn := q.fns[0]
	q.fns = q.fns[1:]
	return fn, true
}
