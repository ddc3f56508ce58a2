package internal

// Fold reduces a stream into a persistent signal (§4.1 "Fold"): each
// occurrence this turn folds into the accumulator via reduce, in emission
// order, and the node's value is the accumulator after the last
// occurrence. With no occurrences this turn it reports Unchanged exactly
// like a Computed none of whose dependencies actually changed (P2).
type Fold struct {
	*ReactiveNode

	source EventStream
	reduce func(acc, occurrence any) any
	value  any
	equal  EqualFunc
}

func (d *Domain) NewFold(source EventStream, initial any, reduce func(acc, occurrence any) any, opts ...FoldOption) *Fold {
	f := &Fold{ReactiveNode: d.newNode(KindFold), source: source, reduce: reduce, value: initial, equal: d.equal}
	for _, opt := range opts {
		opt(f)
	}
	f.tick = f.runTick
	_ = d.Attach(source.AsNode(), f.ReactiveNode)
	return f
}

// FoldOption configures a single Fold at construction.
type FoldOption func(*Fold)

func WithFoldEquality(eq EqualFunc) FoldOption {
	return func(f *Fold) {
		if eq != nil {
			f.equal = eq
		}
	}
}

func (f *Fold) runTick(t *Turn) TickResult {
	occ := f.source.occurrences()
	if len(occ) == 0 {
		return Unchanged
	}
	old := f.value
	acc := f.value
	for _, v := range occ {
		ok := true
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.recordCallbackError(f.ReactiveNode, asError(r))
					ok = false
				}
			}()
			acc = f.reduce(acc, v)
		}()
		if !ok {
			return Unchanged
		}
	}
	f.value = acc
	if f.equal(old, f.value) {
		return Unchanged
	}
	return Changed
}

// Read returns the current accumulated value, tracking this Fold as a
// dependency of whatever node is currently being evaluated.
func (f *Fold) Read() any {
	f.domain.tracker.track(f.ReactiveNode)
	return f.value
}

func (f *Fold) Peek() any { return f.value }
