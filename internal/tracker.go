package internal

import (
	"sync"

	"github.com/petermattis/goid"
)

// trackState is the dependency-tracking context for one goroutine working
// inside one domain: which owner new child nodes attach under, which node
// (if any) is currently being ticked (so reads can record a dependency
// edge), and whether tracking is currently suppressed (Untrack).
//
// The teacher locates its *whole* per-goroutine Runtime this way (via
// goid, see internal/runtime_default.go); here the Domain is an explicit
// value instead of a goroutine-keyed singleton (spec §9), but goid is still
// the right tool for keeping each goroutine's tracking context separate —
// the parallel engine ticks independent nodes concurrently on different
// goroutines within the *same* domain, and their "current node" must not
// collide.
type tracker struct {
	states sync.Map // int64 (goroutine id) -> *trackState
}

type trackState struct {
	tracking bool
	owner    *Owner
	node     *ReactiveNode
}

func newTracker() *tracker { return &tracker{} }

func (t *tracker) state() *trackState {
	gid := goid.Get()
	if s, ok := t.states.Load(gid); ok {
		return s.(*trackState)
	}
	s := &trackState{tracking: true}
	actual, _ := t.states.LoadOrStore(gid, s)
	return actual.(*trackState)
}

func (t *tracker) runWithOwner(o *Owner, fn func()) {
	s := t.state()
	prev := s.owner
	s.owner = o
	defer func() { s.owner = prev }()
	fn()
}

// runWithNode scopes both the current owner and the current tracked node —
// used while ticking a Computed/Observe/combinator node, so that (a) nested
// node construction attaches under the right owner and (b) reads of other
// nodes during the tick record a dependency edge onto this node.
func (t *tracker) runWithNode(n *ReactiveNode, o *Owner, fn func()) {
	s := t.state()
	prevOwner, prevNode := s.owner, s.node
	s.owner, s.node = o, n
	defer func() { s.owner, s.node = prevOwner, prevNode }()
	fn()
}

func (t *tracker) runUntracked(fn func()) {
	s := t.state()
	prev := s.tracking
	s.tracking = false
	defer func() { s.tracking = prev }()
	fn()
}

func (t *tracker) currentOwner() *Owner       { return t.state().owner }
func (t *tracker) currentNode() *ReactiveNode { return t.state().node }

func (t *tracker) shouldTrack() bool {
	s := t.state()
	return s.tracking && s.node != nil
}

// track records dep as a predecessor of whatever node is currently being
// ticked on this goroutine, if tracking is active.
func (t *tracker) track(dep *ReactiveNode) {
	s := t.state()
	if s.tracking && s.node != nil {
		_ = dep.domain.Attach(dep, s.node)
	}
}
