package internal

// ReactorResult tells a Reactor what to do once its task function returns.
type ReactorResult int

const (
	// ReactorAwait re-runs the task the next time any node it read during
	// this run changes — the task is re-armed, watching whatever it read.
	ReactorAwait ReactorResult = iota
	// ReactorDone ends the reactor: its task will not run again.
	ReactorDone
)

// Reactor is an optional coroutine-style extension (§9) built on top of
// Observe: instead of a side effect with a fixed dependency set, a Reactor
// re-runs its task and lets the task's own return value decide whether to
// keep watching or stop, state-machine style. Grounded on
// other_examples/b97tsk-async's Coroutine/Task model ("a Task is spawned
// with a Coroutine... the Coroutine can just re-run the Task whenever any
// of these Events notifies... A Coroutine can switch from one Task to
// another until a Task ends it") — reduced here to the single-task case,
// since multi-task state-machine switching is sugar this module's spec
// doesn't call for.
type Reactor struct {
	*Observe

	stopped bool
}

// NewReactor spawns task, running it once synchronously like any Observe,
// and re-running it (through the usual deferred commit-phase path) every
// time a node it read changes, until it returns ReactorDone.
func (d *Domain) NewReactor(task func() ReactorResult) *Reactor {
	r := &Reactor{}
	r.Observe = d.NewObserve(func() func() {
		if r.stopped {
			return nil
		}
		if task() == ReactorDone {
			r.stopped = true
			d.clearPreds(r.Observe.ReactiveNode)
		}
		return nil
	})
	return r
}

// Stop ends the reactor early, equivalent to its task returning
// ReactorDone on its own.
func (r *Reactor) Stop() {
	r.stopped = true
	r.Observe.ReactiveNode.domain.clearPreds(r.Observe.ReactiveNode)
}
