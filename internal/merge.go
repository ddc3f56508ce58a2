package internal

// Merge combines several event streams into one (§4.1 "Merge"): an
// occurrence on any source stream this turn is an occurrence of the merged
// stream. Grounded on the teacher's level-bubbling shape in
// internal/computed.go's Link (a successor's level always rises above every
// predecessor's) generalized to N static predecessors fixed at
// construction rather than one dynamically re-tracked set.
type Merge struct {
	*ReactiveNode

	sources []EventStream
	buffer  []any
}

// NewMerge creates a Merge over the given source streams. The merged
// stream's occurrences, within a turn, are ordered by source index first
// and by emission order within each source second.
func (d *Domain) NewMerge(sources ...EventStream) *Merge {
	m := &Merge{ReactiveNode: d.newNode(KindMerge), sources: sources}
	m.tick = m.runTick
	for _, s := range sources {
		_ = d.Attach(s.AsNode(), m.ReactiveNode)
	}
	return m
}

func (m *Merge) runTick(t *Turn) TickResult {
	var out []any
	for _, s := range m.sources {
		out = append(out, s.occurrences()...)
	}
	if len(out) == 0 {
		return Unchanged
	}
	m.buffer = out
	t.touch(m.ReactiveNode, m)
	return Changed
}

func (m *Merge) Occurrences() []any {
	m.domain.tracker.track(m.ReactiveNode)
	return m.buffer
}

func (m *Merge) occurrences() []any { return m.buffer }
func (m *Merge) clearBuffer()       { m.buffer = nil }
