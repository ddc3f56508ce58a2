package internal

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// runParallel is the work-stealing evaluator (§4.6): nodes at the same
// level share no predecessor/successor edges among themselves, so every
// node admitted at level L can tick concurrently. The pool drains level L
// to completion (the level barrier, an errgroup.Wait) before admitting
// L+1 — that barrier is what keeps this glitch-free (P3) under
// concurrency, grounded on golang.org/x/sync/errgroup's fan-out/join shape
// as used elsewhere in the retrieved pack (grailbio/reflow,
// AleutianFOSS) for worker-pool concurrency.
//
// EngineRelaxedParallel skips the barrier: successors are admitted the
// moment their pending count hits zero, without waiting for the rest of
// their level to finish. That's only safe if user computations never
// observe sibling nodes mid-turn — callers opt in explicitly (§4.6).
func (d *Domain) runParallel(turn *Turn) {
	if d.engineKind == EngineRelaxedParallel {
		d.runRelaxedParallel(turn)
		return
	}

	sem := make(chan struct{}, d.workerCount)
	heap := newLevelHeap()
	for _, n := range turn.seed() {
		heap.Insert(n)
	}

	var mu sync.Mutex

	for !heap.Empty() {
		_, nodes, ok := heap.PopLowestLevel()
		if !ok {
			break
		}

		g := &errgroup.Group{}
		for _, n := range nodes {
			n := n
			g.Go(func() error {
				sem <- struct{}{}
				defer func() { <-sem }()

				ready := turn.resolve(n)

				mu.Lock()
				for _, r := range ready {
					heap.Insert(r)
				}
				mu.Unlock()
				return nil
			})
		}
		// Level barrier: every task at this level completes (and its
		// successors are admitted into the heap) before the next level is
		// popped.
		_ = g.Wait()
	}
}

// runRelaxedParallel admits nodes into flight as soon as they're ready,
// with no level barrier; pending counts alone guarantee every node still
// only ticks after all its membership predecessors have resolved.
func (d *Domain) runRelaxedParallel(turn *Turn) {
	sem := make(chan struct{}, d.workerCount)

	var mu sync.Mutex
	var wg sync.WaitGroup

	var admit func(n *ReactiveNode)
	admit = func(n *ReactiveNode) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			ready := turn.resolve(n)

			mu.Lock()
			toAdmit := append([]*ReactiveNode(nil), ready...)
			mu.Unlock()

			for _, r := range toAdmit {
				admit(r)
			}
		}()
	}

	for _, n := range turn.seed() {
		admit(n)
	}
	wg.Wait()
}
