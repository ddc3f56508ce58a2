package internal

// Computed is the derived signal node kind (§4.1 "Computed/Lift"): its
// value is produced by re-running compute, re-tracking whatever Vars,
// Computeds, or stream-combinator nodes it reads along the way. Grounded on
// the teacher's internal/computed.go NewComputed/run shape: each recompute
// disposes the owner scope from the previous run (so child resources from a
// stale branch of the compute function are cleaned up) before clearing and
// re-establishing the dependency edges.
type Computed struct {
	*ReactiveNode
	*Owner

	compute func(c *Computed) any
	value   any
	equal   EqualFunc

	initialized bool
}

// ComputedOption configures a single Computed at construction.
type ComputedOption func(*Computed)

func WithComputedEquality(eq EqualFunc) ComputedOption {
	return func(c *Computed) {
		if eq != nil {
			c.equal = eq
		}
	}
}

// NewComputed creates a Computed and runs compute once, synchronously,
// before returning (§4.1: "the first run is eager, bypassing the
// commit-phase queue"). Every subsequent recompute happens only as the
// scheduler ticks the node during a turn.
func (d *Domain) NewComputed(compute func(c *Computed) any, opts ...ComputedOption) *Computed {
	c := &Computed{
		ReactiveNode: d.newNode(KindComputed),
		Owner:        d.NewOwner(),
		compute:      compute,
		equal:        d.equal,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.tick = c.runTick

	c.recompute(nil)
	c.initialized = true

	return c
}

// recompute disposes the previous run's owned resources, clears the node's
// current predecessor set, and re-runs compute with dependency tracking
// scoped to this node. When t is non-nil (a scheduled recompute during a
// turn), a panic from compute is caught and recorded as a CallbackError
// instead of propagating (§7.2) — the node's prior value is kept and the
// tick is reported Unchanged. At construction (t == nil) a panic propagates
// to the caller of NewComputed, same as the teacher's bare run().
func (c *Computed) recompute(t *Turn) (panicked bool) {
	if c.initialized {
		c.Owner.Dispose()
	}
	c.ReactiveNode.disposed = false
	c.ReactiveNode.domain.clearPreds(c.ReactiveNode)
	// Dispose() above clears every cleanup registered on c.Owner (including
	// this one, on a re-run); re-register it so a *later* Dispose — whether
	// from this node's own next recompute or from an ancestor tearing it
	// down for good — always marks the node disposed and detaches it from
	// the graph, even if no further recompute ever follows.
	c.Owner.OnCleanup(func() {
		c.ReactiveNode.disposed = true
		c.ReactiveNode.domain.clearPreds(c.ReactiveNode)
	})

	run := func() {
		c.ReactiveNode.domain.tracker.runWithNode(c.ReactiveNode, c.Owner, func() {
			c.value = c.compute(c)
		})
	}

	if t == nil {
		run()
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			t.recordCallbackError(c.ReactiveNode, asError(r))
			panicked = true
		}
	}()
	run()
	return false
}

func (c *Computed) runTick(t *Turn) TickResult {
	old := c.value
	if c.recompute(t); c.equal(old, c.value) {
		return Unchanged
	}
	return Changed
}

// Read returns the current value, tracking this Computed as a dependency
// of whatever node is currently being evaluated.
func (c *Computed) Read() any {
	c.ReactiveNode.domain.tracker.track(c.ReactiveNode)
	return c.value
}

// Peek returns the current value without tracking a dependency.
func (c *Computed) Peek() any { return c.value }
