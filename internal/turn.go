package internal

import (
	"sort"
	"sync"

	"github.com/petermattis/goid"
)

// TxMode selects how a transaction is driven relative to its caller (§4.3,
// §6).
type TxMode int

const (
	// Sync blocks the caller until commit.
	Sync TxMode = iota
	// Async queues the turn and returns immediately; the caller awaits
	// commit via the returned Handle.
	Async
	// Merged coalesces with an in-flight, not-yet-propagating async turn
	// against the same domain, when the domain's merge policy allows it.
	Merged
)

// Handle is returned by Transaction; it carries shared ownership over the
// turn's outcome (§6 "each returns a handle").
type Handle struct {
	done   chan struct{}
	err    error
	turnID uint64
}

func (h *Handle) Wait() error {
	<-h.done
	return h.err
}

func (h *Handle) TurnID() uint64 { return h.turnID }

func closedHandle(turnID uint64, err error) *Handle {
	h := &Handle{done: make(chan struct{}), err: err, turnID: turnID}
	close(h.done)
	return h
}

// pendingTx is one queued async/merged turn; Merged transactions sharing a
// still-unstarted pendingTx append their body and handle to the same slot.
type pendingTx struct {
	bodies  []func() error
	handles []*Handle
	started bool
}

// Turn is one atomic propagation cycle (§3, §4.3). It owns the staged input
// mutations, the membership/pending-count bookkeeping the scheduler needs,
// and the per-turn error/continuation accumulators.
type Turn struct {
	id     uint64
	domain *Domain

	staged []stagedChange
	// appliedStaged is set once this turn's applyStaged has run. A Write or
	// Emit staged after that point (typically from inside the commit-phase
	// effect queue) can no longer be folded into this turn's staged list —
	// it is routed to a continuation turn instead (§4.7).
	appliedStaged bool

	// membership: nodes transitively reachable from this turn's changed
	// inputs (§4.4 step 1). Cached across inputs sharing descendants.
	membership map[*ReactiveNode]bool
	// pending: remaining member predecessors (that will themselves tick)
	// before a member node can be resolved.
	pending map[*ReactiveNode]int
	// anyChanged: "any predecessor changed" bit, set the first time any
	// predecessor of this member (direct changed input, or a member whose
	// tick reported Changed) is known to have changed.
	anyChanged map[*ReactiveNode]bool
	ticked     map[*ReactiveNode]bool

	// schedMu guards pending/anyChanged/ticked against concurrent resolve()
	// calls from the parallel engine, which ticks every node in a level on
	// its own goroutine. The sequential engine never contends on it.
	schedMu sync.Mutex

	errors        []error
	continuations continuationQueue

	// touched tracks every event-stream node (EventSource, Merge, Filter,
	// Map) whose per-turn buffer was written this turn, so the
	// buffers can be cleared once propagation and the commit-phase queue
	// have both finished — an event only exists for the one turn in which
	// it fired (§3 "event streams carry no value between turns").
	touched map[*ReactiveNode]bufferedNode
}

// touch registers n as having written to its per-turn buffer this turn.
func (t *Turn) touch(n *ReactiveNode, b bufferedNode) {
	t.schedMu.Lock()
	if t.touched == nil {
		t.touched = map[*ReactiveNode]bufferedNode{}
	}
	t.touched[n] = b
	t.schedMu.Unlock()
}

// clearBuffers drains every touched node's per-turn buffer. Called at the
// end of runTurn, after the commit-phase effect queue has run.
func (t *Turn) clearBuffers() {
	for _, b := range t.touched {
		b.clearBuffer()
	}
}

type stagedChange struct {
	node  *ReactiveNode
	apply func() bool // returns true if this input actually changed
}

func newTurn(id uint64, d *Domain) *Turn {
	return &Turn{
		id:         id,
		domain:     d,
		membership: map[*ReactiveNode]bool{},
		pending:    map[*ReactiveNode]int{},
		anyChanged: map[*ReactiveNode]bool{},
		ticked:     map[*ReactiveNode]bool{},
	}
}

func (t *Turn) ID() uint64 { return t.id }

func (t *Turn) recordCallbackError(n *ReactiveNode, cause error) {
	t.schedMu.Lock()
	t.errors = append(t.errors, &CallbackError{NodeID: n.id, Cause: cause})
	t.schedMu.Unlock()
}

func (t *Turn) recordObserverError(n *ReactiveNode, cause error) {
	t.schedMu.Lock()
	t.errors = append(t.errors, &ObserverError{NodeID: n.id, Cause: cause})
	t.schedMu.Unlock()
}

// Continue enqueues a follow-up transaction body to run as a continuation
// turn once the current turn (and any continuations queued ahead of it)
// commits (§4.7).
func (t *Turn) Continue(body func() error) {
	t.continuations.enqueue(body)
}

// stage appends a staged input mutation. Called either directly (if the
// calling goroutine already holds this domain's turn) or via Domain.stage,
// which wraps a bare Write/Emit in its own one-shot Sync transaction.
func (t *Turn) stage(node *ReactiveNode, apply func() bool) {
	t.staged = append(t.staged, stagedChange{node: node, apply: apply})
}

// applyStaged runs every staged mutation in staging order and seeds
// membership/pending-count bookkeeping for every input that actually
// changed (§4.4 step 1).
func (t *Turn) applyStaged() {
	var changedInputs []*ReactiveNode
	for _, s := range t.staged {
		if s.apply() {
			changedInputs = append(changedInputs, s.node)
		}
	}
	t.staged = nil
	t.appliedStaged = true
	if len(changedInputs) == 0 {
		return
	}

	changedSet := make(map[*ReactiveNode]bool, len(changedInputs))
	for _, n := range changedInputs {
		changedSet[n] = true
	}

	visited := map[*ReactiveNode]bool{}
	var walk func(n *ReactiveNode)
	walk = func(n *ReactiveNode) {
		for _, succ := range n.succs {
			if visited[succ] {
				continue
			}
			visited[succ] = true
			t.membership[succ] = true
			walk(succ)
		}
	}
	for _, n := range changedInputs {
		walk(n)
	}

	for member := range t.membership {
		count := 0
		changed := false
		for _, p := range member.preds {
			if t.membership[p] {
				count++
			}
			if changedSet[p] {
				changed = true
			}
		}
		t.pending[member] = count
		if changed {
			t.anyChanged[member] = true
		}
	}
}

// seed returns every member whose pending count is already zero — the
// scheduler's initial ready set (§4.4 step 2). Sorted by node id (creation
// order) rather than left in map iteration order: node ids double as a
// stable registration order, which is what keeps same-level sinks' commit
// order deterministic and tied to registration order (P5) instead of to
// Go's randomized map ranging.
func (t *Turn) seed() []*ReactiveNode {
	var ready []*ReactiveNode
	for member, count := range t.pending {
		if count == 0 {
			ready = append(ready, member)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i].id < ready[j].id })
	return ready
}

// resolve runs (or skips, per minimality) one member node and returns any
// successors newly made ready by doing so (§4.4 step 3).
func (t *Turn) resolve(n *ReactiveNode) []*ReactiveNode {
	t.schedMu.Lock()
	if t.ticked[n] {
		t.schedMu.Unlock()
		return nil
	}
	t.ticked[n] = true
	shouldTick := t.anyChanged[n] && !n.disposed
	t.schedMu.Unlock()

	// n.tick runs outside schedMu: it may run user callbacks, recurse into
	// Attach/Detach for dynamic dependencies, and must not serialize
	// same-level nodes against each other under the parallel engine.
	changed := false
	if shouldTick {
		result := n.tick(t)
		changed = result == Changed || result == DynamicReattach
	}
	// else: P2 minimality — no predecessor of n actually changed, so n is
	// never ticked at all.

	var newlyReady []*ReactiveNode
	t.schedMu.Lock()
	for _, succ := range n.succs {
		if !t.membership[succ] {
			continue
		}
		if changed {
			t.anyChanged[succ] = true
		}
		t.pending[succ]--
		if t.pending[succ] == 0 {
			newlyReady = append(newlyReady, succ)
		} else if t.pending[succ] < 0 {
			t.domain.assert(false, "sig: negative pending-predecessor count on node %d", succ.id)
		}
	}
	t.schedMu.Unlock()
	return newlyReady
}

// stage records a Write/Emit against the currently active turn. A mutation
// staged after this turn's own staged changes have already been applied —
// the common case being a Write made from inside the commit-phase effect
// queue — can no longer join this turn, so it is deferred into a
// continuation turn that runs once this one (and any continuations queued
// ahead of it) finishes (§4.7). This is what lets an Observe's effect write
// to a Var and have that write actually propagate.
func (d *Domain) stage(node *ReactiveNode, apply func() bool) {
	if d.insideTurnOnThisGoroutine() {
		if d.currentTurn.appliedStaged {
			d.currentTurn.Continue(func() error {
				d.stage(node, apply)
				return nil
			})
			return
		}
		d.currentTurn.stage(node, apply)
		return
	}
	_, _ = d.runSyncNow(func() error {
		d.currentTurn.stage(node, apply)
		return nil
	})
}

// Transaction opens a turn against the domain in the given mode and runs
// body inside it (§4.3, §6 do_transaction).
func (d *Domain) Transaction(mode TxMode, body func() error) (*Handle, error) {
	if err := d.isPoisoned(); err != nil {
		return nil, err
	}

	if d.insideTurnOnThisGoroutine() {
		// Nested call on the goroutine already driving this domain's turn
		// (e.g. NewBatch inside NewBatch, or a Write during a Transaction
		// body): fold straight into the active turn instead of trying to
		// re-acquire the turn lock, which would deadlock.
		err := body()
		return closedHandle(d.currentTurn.id, err), err
	}

	switch mode {
	case Async:
		return d.enqueueAsync(body, false)
	case Merged:
		return d.enqueueAsync(body, true)
	default:
		return d.runSyncNow(body)
	}
}

func (d *Domain) runSyncNow(body func() error) (*Handle, error) {
	gid := goid.Get()

	d.txMu.Lock()
	d.mu.Lock()
	d.txHolder, d.txHolderSet = gid, true
	d.mu.Unlock()

	err := d.runTurn(body)

	d.mu.Lock()
	d.txHolderSet = false
	d.mu.Unlock()
	d.txMu.Unlock()

	turnID := d.lastTurnID()
	if te, ok := err.(*TurnError); ok {
		return closedHandle(turnID, te), te
	}
	return closedHandle(turnID, err), err
}

func (d *Domain) lastTurnID() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.turnSeq
}

func (d *Domain) enqueueAsync(body func() error, merge bool) (*Handle, error) {
	h := &Handle{done: make(chan struct{})}

	d.mu.Lock()
	if merge && d.mergePolicy == MergeAdjacent && len(d.asyncQueue) > 0 {
		tail := d.asyncQueue[len(d.asyncQueue)-1]
		if !tail.started {
			tail.bodies = append(tail.bodies, body)
			tail.handles = append(tail.handles, h)
			d.mu.Unlock()
			return h, nil
		}
	}
	pt := &pendingTx{bodies: []func() error{body}, handles: []*Handle{h}}
	d.asyncQueue = append(d.asyncQueue, pt)
	shouldDrive := len(d.asyncQueue) == 1
	d.mu.Unlock()

	if shouldDrive {
		go d.driveAsyncQueue()
	}

	return h, nil
}

// driveAsyncQueue runs queued async/merged turns one at a time, FIFO — the
// resolution this module picks for spec.md §9's open question on
// async-merge semantics: two sequential commits, not one combined change.
func (d *Domain) driveAsyncQueue() {
	for {
		d.mu.Lock()
		if len(d.asyncQueue) == 0 {
			d.mu.Unlock()
			return
		}
		pt := d.asyncQueue[0]
		pt.started = true
		d.mu.Unlock()

		_, err := d.runSyncNow(func() error {
			for _, b := range pt.bodies {
				if e := b(); e != nil {
					return e
				}
			}
			return nil
		})

		for _, h := range pt.handles {
			h.err = err
			close(h.done)
		}

		d.mu.Lock()
		d.asyncQueue = d.asyncQueue[1:]
		d.mu.Unlock()
	}
}

// runTurn advances the turn counter to take the new turn's id, drives the
// stages of one turn (§4.3: apply staged changes, run the scheduler to
// quiescence, run the commit-phase queue) and then drains any continuation
// turns the commit phase enqueued.
func (d *Domain) runTurn(body func() error) (err error) {
	d.mu.Lock()
	d.turnSeq++
	turn := newTurn(d.turnSeq, d)
	d.mu.Unlock()

	d.currentTurn = turn
	defer func() { d.currentTurn = nil }()

	func() {
		defer func() {
			if r := recover(); r != nil {
				err = asError(r)
			}
		}()
		err = body()
	}()
	if err != nil {
		return err
	}

	turn.applyStaged()
	d.runScheduler(turn)
	d.effects.run()
	turn.clearBuffers()

	for !turn.continuations.empty() {
		next, _ := turn.continuations.pop()
		if cerr := d.runTurn(next); cerr != nil {
			turn.errors = append(turn.errors, cerr)
		}
	}

	if len(turn.errors) > 0 {
		return &TurnError{TurnID: turn.id, Errors: turn.errors}
	}
	return nil
}

func (d *Domain) runScheduler(turn *Turn) {
	switch d.engineKind {
	case EngineParallel, EngineRelaxedParallel:
		d.runParallel(turn)
	default:
		d.runSequential(turn)
	}
}
