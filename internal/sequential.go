package internal

// runSequential is the reference propagation strategy (§4.5): single
// goroutine, no locking beyond the domain's turn lock already held by the
// caller, deterministic ascending-level/FIFO-within-level visit order.
func (d *Domain) runSequential(turn *Turn) {
	heap := newLevelHeap()
	for _, n := range turn.seed() {
		heap.Insert(n)
	}

	for !heap.Empty() {
		_, nodes, ok := heap.PopLowestLevel()
		if !ok {
			break
		}
		for _, n := range nodes {
			for _, ready := range turn.resolve(n) {
				heap.Insert(ready)
			}
		}
	}
}
