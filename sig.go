// Package sig is a dataflow propagation engine: a DAG of reactive nodes
// (signals, derived computations, event streams, and sinks) evaluated
// inside explicit Domains, with update minimality and glitch freedom
// guaranteed regardless of which engine (sequential or parallel) drives
// propagation.
package sig

import "github.com/AnatoleLucet/sig/internal"

func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}
	return v.(T)
}

// EngineKind selects the propagation strategy a Domain runs.
type EngineKind = internal.EngineKind

const (
	EngineSequential      = internal.EngineSequential
	EngineParallel        = internal.EngineParallel
	EngineRelaxedParallel = internal.EngineRelaxedParallel
)

// MergePolicy controls whether queued Async transactions may coalesce.
type MergePolicy = internal.MergePolicy

const (
	MergeNone     = internal.MergeNone
	MergeAdjacent = internal.MergeAdjacent
)

// TxMode selects how a Transaction is driven relative to its caller.
type TxMode = internal.TxMode

const (
	Sync   = internal.Sync
	Async  = internal.Async
	Merged = internal.Merged
)

// EqualFunc is a per-node change-detection comparator.
type EqualFunc = internal.EqualFunc

// NeverEqual always reports a mismatch — useful for nodes whose type has
// no meaningful equality.
var NeverEqual EqualFunc = internal.NeverEqual

// Handle is returned by Transaction; it lets the caller await a
// non-blocking (Async/Merged) turn's commit.
type Handle = internal.Handle

// Domain is the explicit, first-class container for one propagation
// engine and the nodes bound to it (§2 in the design notes: a process may
// run many domains; nodes never cross domain boundaries). This replaces
// the teacher's goroutine-keyed singleton Runtime with a value the caller
// constructs and threads explicitly.
type Domain struct {
	domain *internal.Domain
}

// DomainOption configures a Domain at construction.
type DomainOption func(*internal.Domain)

func WithEngine(kind EngineKind) DomainOption {
	return DomainOption(internal.WithEngine(kind))
}

func WithWorkerCount(n int) DomainOption {
	return DomainOption(internal.WithWorkerCount(n))
}

func WithMergePolicy(p MergePolicy) DomainOption {
	return DomainOption(internal.WithMergePolicy(p))
}

func WithDefaultEquality(eq EqualFunc) DomainOption {
	return DomainOption(internal.WithDefaultEquality(eq))
}

// NewDomain creates a Domain, sequential and single-threaded by default.
func NewDomain(opts ...DomainOption) *Domain {
	internalOpts := make([]internal.DomainOption, len(opts))
	for i, o := range opts {
		internalOpts[i] = internal.DomainOption(o)
	}
	return &Domain{domain: internal.NewDomain(internalOpts...)}
}

// Transaction opens a turn against the domain in the given mode and runs
// body inside it, returning a Handle the caller can Wait on.
func (d *Domain) Transaction(mode TxMode, body func() error) (*Handle, error) {
	return d.domain.Transaction(mode, body)
}

// NewBatch runs fn inside one synchronous transaction, batching every
// signal write and event emission made within it into a single update
// cycle instead of one per write.
func (d *Domain) NewBatch(fn func()) {
	_, _ = d.domain.Transaction(Sync, func() error {
		fn()
		return nil
	})
}

// Untrack runs fn without tracking any reactive dependency reads made
// inside it.
func (d *Domain) Untrack(fn func()) {
	d.domain.Untrack(fn)
}

// OnCleanup registers fn against the domain's current owner, if any.
func (d *Domain) OnCleanup(fn func()) {
	d.domain.OnCleanup(fn)
}

// Signal is a mutable reactive cell (§4.1 Var).
type Signal[T any] struct {
	v *internal.Var
}

// SignalOption configures a single Signal at construction.
type SignalOption func(*internal.Var)

func WithSignalEquality[T any](eq func(a, b T) bool) SignalOption {
	return SignalOption(internal.WithVarEquality(func(a, b any) bool {
		return eq(as[T](a), as[T](b))
	}))
}

// NewSignal creates a signal holding initial.
func NewSignal[T any](d *Domain, initial T, opts ...SignalOption) *Signal[T] {
	internalOpts := make([]internal.VarOption, len(opts))
	for i, o := range opts {
		internalOpts[i] = internal.VarOption(o)
	}
	return &Signal[T]{v: d.domain.NewVar(initial, internalOpts...)}
}

// Read the current value, tracking the dependency if within a reactive
// context.
func (s *Signal[T]) Read() T { return as[T](s.v.Read()) }

// Peek reads the current value without tracking a dependency.
func (s *Signal[T]) Peek() T { return as[T](s.v.Peek()) }

// Write a new value, staged into the enclosing (or an implicit one-shot)
// transaction.
func (s *Signal[T]) Write(v T) { s.v.Write(v) }

// Computed is a derived signal, recomputed whenever a dependency it read
// on its last run has changed (§4.1 Computed/Lift).
type Computed[T any] struct {
	c *internal.Computed
}

// ComputedOption configures a single Computed at construction.
type ComputedOption func(*internal.Computed)

func WithComputedEquality[T any](eq func(a, b T) bool) ComputedOption {
	return ComputedOption(internal.WithComputedEquality(func(a, b any) bool {
		return eq(as[T](a), as[T](b))
	}))
}

// NewComputed creates a computed signal deriving its value from compute,
// which runs once synchronously before NewComputed returns, and again
// every time the scheduler determines a dependency actually changed.
func NewComputed[T any](d *Domain, compute func() T, opts ...ComputedOption) *Computed[T] {
	internalOpts := make([]internal.ComputedOption, len(opts))
	for i, o := range opts {
		internalOpts[i] = internal.ComputedOption(o)
	}
	return &Computed[T]{
		c: d.domain.NewComputed(func(c *internal.Computed) any {
			return compute()
		}, internalOpts...),
	}
}

// Read the current value, tracking the dependency if within a reactive
// context.
func (c *Computed[T]) Read() T { return as[T](c.c.Read()) }

// Peek reads the current value without tracking a dependency.
func (c *Computed[T]) Peek() T { return as[T](c.c.Peek()) }

// EventSource is a discrete event stream input (§4.1 EventSource): it has
// no persistent value, only occurrences that exist for the turn in which
// they were emitted.
type EventSource[T any] struct {
	e *internal.EventSource
}

// NewEventSource creates an event stream with no predecessors.
func NewEventSource[T any](d *Domain) *EventSource[T] {
	return &EventSource[T]{e: d.domain.NewEventSource()}
}

// Emit stages v as an occurrence of this stream.
func (e *EventSource[T]) Emit(v T) { e.e.Emit(v) }

// Occurrences returns the values emitted this turn, tracking a dependency
// if within a reactive context.
func (e *EventSource[T]) Occurrences() []T { return occurrencesAs[T](e.e.Occurrences()) }

func occurrencesAs[T any](vs []any) []T {
	if vs == nil {
		return nil
	}
	out := make([]T, len(vs))
	for i, v := range vs {
		out[i] = as[T](v)
	}
	return out
}

// Merge combines several event streams of the same type into one: an
// occurrence on any source stream this turn is an occurrence of the
// merged stream (§4.1 Merge).
type Merge[T any] struct {
	m *internal.Merge
}

// Stream is implemented by every typed stream wrapper (EventSource, Merge,
// Filter, Map) and is the argument type NewMerge/NewFilter/NewMap/NewFold
// take. asStream returns the underlying internal node, already satisfying
// internal.EventStream — a sealed interface, so this package can hold and
// pass these values around without being able to author new
// implementations of its own. elem is never called; its only job is to
// pin T to the wrapper's actual occurrence type, so passing a Stream[int]
// where a Stream[string] is expected is a compile error rather than a
// type-assertion panic at runtime.
type Stream[T any] interface {
	asStream() internal.EventStream
	elem() T
}

func (e *EventSource[T]) asStream() internal.EventStream { return e.e }
func (e *EventSource[T]) elem() T                         { var zero T; return zero }

func (m *Merge[T]) asStream() internal.EventStream { return m.m }
func (m *Merge[T]) elem() T                         { var zero T; return zero }

func (f *Filter[T]) asStream() internal.EventStream { return f.f }
func (f *Filter[T]) elem() T                         { var zero T; return zero }

func (m *Map[T, U]) asStream() internal.EventStream { return m.m }
func (m *Map[T, U]) elem() U                         { var zero U; return zero }

// NewMerge combines sources into one stream. Within a turn, occurrences
// are ordered by source index, then emission order within each source.
func NewMerge[T any](d *Domain, sources ...Stream[T]) *Merge[T] {
	internalSources := make([]internal.EventStream, len(sources))
	for i, s := range sources {
		internalSources[i] = s.asStream()
	}
	return &Merge[T]{m: d.domain.NewMerge(internalSources...)}
}

// Occurrences returns the values merged this turn, tracking a dependency
// if within a reactive context.
func (m *Merge[T]) Occurrences() []T { return occurrencesAs[T](m.m.Occurrences()) }

// Filter passes through only the occurrences of source matching pred
// (§4.1 Filter).
type Filter[T any] struct {
	f *internal.Filter
}

func NewFilter[T any](d *Domain, source Stream[T], pred func(T) bool) *Filter[T] {
	return &Filter[T]{
		f: d.domain.NewFilter(source.asStream(), func(v any) bool {
			return pred(as[T](v))
		}),
	}
}

func (f *Filter[T]) Occurrences() []T { return occurrencesAs[T](f.f.Occurrences()) }

// Map transforms every occurrence of source through fn (§4.1 Map).
type Map[T, U any] struct {
	m *internal.MapNode
}

func NewMap[T, U any](d *Domain, source Stream[T], fn func(T) U) *Map[T, U] {
	return &Map[T, U]{
		m: d.domain.NewMap(source.asStream(), func(v any) any {
			return fn(as[T](v))
		}),
	}
}

func (m *Map[T, U]) Occurrences() []U { return occurrencesAs[U](m.m.Occurrences()) }

// Fold reduces a stream into a persistent signal: each occurrence folds
// into the accumulator via reduce, in emission order (§4.1 Fold).
type Fold[T, Acc any] struct {
	f *internal.Fold
}

// FoldOption configures a single Fold at construction.
type FoldOption func(*internal.Fold)

func WithFoldEquality[Acc any](eq func(a, b Acc) bool) FoldOption {
	return FoldOption(internal.WithFoldEquality(func(a, b any) bool {
		return eq(as[Acc](a), as[Acc](b))
	}))
}

func NewFold[T, Acc any](d *Domain, source Stream[T], initial Acc, reduce func(acc Acc, occurrence T) Acc, opts ...FoldOption) *Fold[T, Acc] {
	internalOpts := make([]internal.FoldOption, len(opts))
	for i, o := range opts {
		internalOpts[i] = internal.FoldOption(o)
	}
	f := d.domain.NewFold(source.asStream(), initial, func(acc, occurrence any) any {
		return reduce(as[Acc](acc), as[T](occurrence))
	}, internalOpts...)
	return &Fold[T, Acc]{f: f}
}

func (f *Fold[T, Acc]) Read() Acc { return as[Acc](f.f.Read()) }
func (f *Fold[T, Acc]) Peek() Acc { return as[Acc](f.f.Peek()) }

// Effect is a sink node: a side-effecting reaction to reads made inside
// fn. The first run happens eagerly before NewEffect returns; later runs
// are driven by the scheduler and deferred onto the commit-phase queue
// (§4.7). fn may return a cleanup closure, run before the next run (or at
// Dispose).
type Effect struct {
	o *internal.Observe
}

func NewEffect(d *Domain, fn func() func()) *Effect {
	return &Effect{o: d.domain.NewObserve(fn)}
}

func (e *Effect) Dispose() { e.o.Owner.Dispose() }

// ReactorResult tells a Reactor what to do once its task returns.
type ReactorResult = internal.ReactorResult

const (
	ReactorAwait = internal.ReactorAwait
	ReactorDone  = internal.ReactorDone
)

// Reactor is an optional coroutine-style extension: task re-runs every
// time a node it read changes, state-machine style, until it returns
// ReactorDone.
type Reactor struct {
	r *internal.Reactor
}

func NewReactor(d *Domain, task func() ReactorResult) *Reactor {
	return &Reactor{r: d.domain.NewReactor(task)}
}

func (r *Reactor) Stop() { r.r.Stop() }

// Context is a reactive-context value, inherited down the owner tree
// unless overridden (§4.8). Unlike Signal, setting a Context value does
// not itself trigger recomputation — owners read it directly, not through
// the dependency graph.
type Context[T any] struct {
	key     *int
	initial T
	domain  *internal.Domain
}

// NewContext creates a context identified by its own identity (not by
// name), with initial as the value seen by owners that never Set it.
func NewContext[T any](d *Domain, initial T) *Context[T] {
	return &Context[T]{key: new(int), initial: initial, domain: d.domain}
}

// Value retrieves the value visible to the current owner: the nearest
// ancestor's Set value, or initial if none set it.
func (c *Context[T]) Value() T {
	o := c.domain.CurrentOwner()
	if o == nil {
		return c.initial
	}
	if v, ok := o.ContextValue(c.key); ok {
		return as[T](v)
	}
	return c.initial
}

// Set overrides the context's value for the current owner and its
// descendants.
func (c *Context[T]) Set(value T) {
	o := c.domain.CurrentOwner()
	if o == nil {
		return
	}
	o.SetContext(c.key, value)
}

// Owner is a lifetime scope: nodes created while an owner is current are
// disposed together when it is (§4.8).
type Owner struct {
	owner *internal.Owner
}

// NewOwner creates an owner attached under the domain's current owner, if
// any.
func NewOwner(d *Domain) *Owner {
	return &Owner{owner: d.domain.NewOwner()}
}

// Run executes fn with this owner as current; nodes created inside fn
// attach under it.
func (o *Owner) Run(fn func() error) error { return o.owner.Run(fn) }

// Dispose this owner and all its children, in reverse construction order.
func (o *Owner) Dispose() { o.owner.Dispose() }

// OnCleanup registers fn to run once, the next time this owner is
// disposed.
func (o *Owner) OnCleanup(fn func()) { o.owner.OnCleanup(fn) }

// OnError registers a panic handler for code run under this owner.
func (o *Owner) OnError(fn func(any)) { o.owner.OnError(fn) }
