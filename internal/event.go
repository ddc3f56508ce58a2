package internal

// bufferedNode is implemented by every event-stream node kind (EventSource
// and the stream combinators Merge/Filter/Map): each holds a per-turn
// buffer of emitted values that exists only for the turn in which it was
// written, and must be drained once that turn's commit phase has run (§3).
type bufferedNode interface {
	clearBuffer()
}

// EventStream is satisfied by every node kind that carries a per-turn
// buffer of occurrences: EventSource plus the Merge/Filter/Map combinators.
// Fold deliberately does not implement it — its output is a persistent
// value (§4.1 "Fold reduces a stream into a signal"), not another stream.
//
// occurrences is unexported, which seals the interface: callers outside
// this package can hold and pass around an EventStream value (every
// concrete stream kind already satisfies it), but cannot author a new
// implementation of their own. Merge/Filter/Map/Fold sources are always
// one of this package's own node kinds.
type EventStream interface {
	AsNode() *ReactiveNode
	occurrences() []any
}

// EventSource is the input node kind for discrete event streams (§4.1
// "EventSource"), the stream-side counterpart to Var. It has no
// predecessors and no persistent value — Emit stages a value into the
// node's per-turn buffer, which downstream Merge/Filter/Map/Fold nodes read
// during the same turn and which is cleared afterward.
type EventSource struct {
	*ReactiveNode

	buffer []any
}

func (d *Domain) NewEventSource() *EventSource {
	return &EventSource{ReactiveNode: d.newNode(KindEventSource)}
}

// Emit stages v as an occurrence of this event stream. Unlike Var.Write,
// there is no equality check — every Emit is, by definition, a change
// (§4.1: "an event occurrence is never suppressed by value comparison").
func (e *EventSource) Emit(v any) {
	e.domain.stage(e.ReactiveNode, func() bool {
		e.buffer = append(e.buffer, v)
		e.domain.currentTurn.touch(e.ReactiveNode, e)
		return true
	})
}

// Occurrences returns the values emitted on this stream during the current
// turn, tracking a dependency if called while this node is being read by a
// combinator under construction or re-tracking.
func (e *EventSource) Occurrences() []any {
	e.domain.tracker.track(e.ReactiveNode)
	return e.buffer
}

func (e *EventSource) occurrences() []any { return e.buffer }
func (e *EventSource) clearBuffer()       { e.buffer = nil }
