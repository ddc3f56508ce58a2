package internal

// Observe is the sink node kind (§4.1 "Observe"): a side-effecting reaction
// with no successors of its own. Grounded on the teacher's
// internal/effect.go wrapping internal/computed.go: the first run happens
// eagerly and synchronously at construction (bypassing the commit-phase
// queue, exactly like the teacher's NewComputed running once inside its own
// constructor); every later run is driven by the scheduler, which defers
// the actual work onto the domain's effectQueue instead of running inline
// (the teacher's NewEffect overriding fn to enqueue rather than call
// compute directly).
type Observe struct {
	*ReactiveNode
	*Owner

	fn          func() func()
	cleanup     func()
	initialized bool
}

// NewObserve creates an Observe and runs fn once before returning. fn may
// return a cleanup closure, run immediately before the next run (or at
// Dispose) — the same contract as the teacher's effect cleanup value.
func (d *Domain) NewObserve(fn func() func()) *Observe {
	o := &Observe{
		ReactiveNode: d.newNode(KindObserve),
		Owner:        d.NewOwner(),
		fn:           fn,
	}

	o.run(nil)
	o.initialized = true
	o.tick = o.scheduledTick

	return o
}

func (o *Observe) run(t *Turn) {
	if o.initialized && o.ReactiveNode.disposed {
		// Torn down by an ancestor (or an explicit Dispose) after this run
		// was queued: a disposed observer never runs again.
		return
	}
	if o.initialized {
		o.Owner.Dispose()
	}
	o.ReactiveNode.disposed = false
	o.ReactiveNode.domain.clearPreds(o.ReactiveNode)
	// Re-registered every run for the same reason as Computed.recompute:
	// Dispose() above wipes o.Owner's cleanup list, including this one. It
	// also runs fn's returned cleanup, so that closure fires on every
	// disposal (this node's own re-run or an ancestor's), after any nested
	// children have been disposed.
	o.Owner.OnCleanup(func() {
		o.ReactiveNode.disposed = true
		o.ReactiveNode.domain.clearPreds(o.ReactiveNode)
		if prev := o.cleanup; prev != nil {
			o.cleanup = nil
			prev()
		}
	})

	runFn := func() {
		o.ReactiveNode.domain.tracker.runWithNode(o.ReactiveNode, o.Owner, func() {
			o.cleanup = o.fn()
		})
	}

	if t == nil {
		runFn()
		return
	}
	defer func() {
		if r := recover(); r != nil {
			t.recordObserverError(o.ReactiveNode, asError(r))
		}
	}()
	runFn()
}

// scheduledTick defers the actual rerun to the commit-phase effect queue
// (§4.7) rather than running inline while the scheduler is still walking
// the graph — observer side effects only become visible once propagation
// has reached quiescence.
func (o *Observe) scheduledTick(t *Turn) TickResult {
	o.ReactiveNode.domain.effects.enqueue(o.ReactiveNode.id, func() { o.run(t) })
	return Unchanged
}
