package internal

import "sort"

// levelHeap is the scheduler's level-ordered ready set (§4.4): nodes become
// ready when their pending-predecessor count hits zero, and are drained in
// ascending level order, FIFO within a level.
//
// The teacher's internal/heap.go buckets by level in a pre-sized array of
// intrusive linked lists for O(1) insert/remove. This module generalizes to
// an arbitrary, not-pre-sized level range (levels can grow unboundedly as
// the graph reshapes across attach/detach calls), so buckets are kept in a
// map of slices instead; FIFO order within a level is preserved by simple
// append order.
type levelHeap struct {
	buckets map[int][]*ReactiveNode
	active  map[int]bool
}

func newLevelHeap() *levelHeap {
	return &levelHeap{buckets: map[int][]*ReactiveNode{}, active: map[int]bool{}}
}

func (h *levelHeap) Insert(n *ReactiveNode) {
	lvl := n.level
	h.buckets[lvl] = append(h.buckets[lvl], n)
	h.active[lvl] = true
}

func (h *levelHeap) Empty() bool { return len(h.active) == 0 }

// PopLowestLevel removes and returns every node currently queued at the
// lowest active level, along with that level. Used by both engines: the
// sequential engine processes the returned nodes one at a time (still in
// FIFO order), the parallel engine fans them out concurrently and treats
// the return-to-caller boundary as its level barrier.
func (h *levelHeap) PopLowestLevel() (level int, nodes []*ReactiveNode, ok bool) {
	if len(h.active) == 0 {
		return 0, nil, false
	}
	levels := make([]int, 0, len(h.active))
	for l := range h.active {
		levels = append(levels, l)
	}
	sort.Ints(levels)
	lvl := levels[0]
	nodes = h.buckets[lvl]
	delete(h.buckets, lvl)
	delete(h.active, lvl)
	return lvl, nodes, true
}
