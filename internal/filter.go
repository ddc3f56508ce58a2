package internal

// Filter passes through only the occurrences of source that satisfy pred
// (§4.1 "Filter"). Grounded on the teacher's Computed.run pattern of a
// user-supplied callback re-run each tick, specialized to stream values
// instead of a single memoized value.
type Filter struct {
	*ReactiveNode

	source EventStream
	pred   func(any) bool
	buffer []any
}

func (d *Domain) NewFilter(source EventStream, pred func(any) bool) *Filter {
	f := &Filter{ReactiveNode: d.newNode(KindFilter), source: source, pred: pred}
	f.tick = f.runTick
	_ = d.Attach(source.AsNode(), f.ReactiveNode)
	return f
}

func (f *Filter) runTick(t *Turn) TickResult {
	var kept []any
	for _, v := range f.source.occurrences() {
		keep := false
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.recordCallbackError(f.ReactiveNode, asError(r))
				}
			}()
			keep = f.pred(v)
		}()
		if keep {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return Unchanged
	}
	f.buffer = kept
	t.touch(f.ReactiveNode, f)
	return Changed
}

func (f *Filter) Occurrences() []any {
	f.domain.tracker.track(f.ReactiveNode)
	return f.buffer
}

func (f *Filter) occurrences() []any { return f.buffer }
func (f *Filter) clearBuffer()       { f.buffer = nil }
