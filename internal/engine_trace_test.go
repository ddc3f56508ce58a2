package internal

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
)

// nodeValue is one entry of a deterministic end-of-turn trace: a node id
// (assigned in construction order, so stable across engines) paired with
// its final value.
type nodeValue struct {
	ID    uint64 `json:"id"`
	Value any    `json:"value"`
}

// buildParallelEquivalenceGraph constructs the fixed graph named in
// spec.md §8 scenario 5 ("parallel equivalence"): in -> op1, in -> op2,
// out = op1+op2, against a domain configured with the given engine.
func buildParallelEquivalenceGraph(engine EngineKind) (d *Domain, in *Var, out *Computed) {
	d = NewDomain(WithEngine(engine), WithWorkerCount(4))
	in = d.NewVar(0)
	op1 := d.NewComputed(func(c *Computed) any { return in.Read().(int)*3 + 1 })
	op2 := d.NewComputed(func(c *Computed) any { return in.Read().(int)*2 - 1 })
	out = d.NewComputed(func(c *Computed) any { return op1.Read().(int) + op2.Read().(int) })
	return d, in, out
}

// traceAfterSequence drives the given input sequence through a fresh
// instance of the graph and returns the final values of the input and
// output nodes, sorted by id.
func traceAfterSequence(engine EngineKind, inputs []int) []nodeValue {
	_, in, out := buildParallelEquivalenceGraph(engine)
	for _, v := range inputs {
		in.Write(v)
	}
	return []nodeValue{
		{ID: in.ReactiveNode.id, Value: in.Read()},
		{ID: out.ReactiveNode.id, Value: out.Read()},
	}
}

// TestEngineTraceGolden is P6 (sequential ≡ parallel): both engines are
// driven through the same fixed input sequence and their final traces are
// compared against one golden fixture, so the fixture doubles as the
// cross-engine equivalence check and as a regression pin on the graph's
// own arithmetic.
func TestEngineTraceGolden(t *testing.T) {
	inputs := []int{1, 2, 3, 5, 8, 13}

	seqTrace := traceAfterSequence(EngineSequential, inputs)
	parTrace := traceAfterSequence(EngineParallel, inputs)

	assert.Equal(t, seqTrace, parTrace)

	actual, err := json.Marshal(seqTrace)
	assert.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "parallel_equivalence_trace", actual)
}

// TestParallelEquivalenceRandomized is the randomized half of scenario 5
// (§8: "1000 randomized input sequences"): across 1000 independently
// generated write sequences, the sequential and parallel engines always
// agree on the final value. Seeded fixed so a failure is reproducible,
// grounded on the retrieved pack's own `rand.New(rand.NewSource(0))`
// fixed-seed fuzz-test style (e.g. grailbio-reflow/values/less_test.go).
func TestParallelEquivalenceRandomized(t *testing.T) {
	const sequenceCount = 1000
	r := rand.New(rand.NewSource(0))

	for i := 0; i < sequenceCount; i++ {
		length := r.Intn(12) + 1
		seq := make([]int, length)
		for j := range seq {
			seq[j] = r.Intn(201) - 100
		}

		seqTrace := traceAfterSequence(EngineSequential, seq)
		parTrace := traceAfterSequence(EngineParallel, seq)
		assert.Equalf(t, seqTrace, parTrace, "sequence %d (%v) diverged between engines", i, seq)
	}
}

// TestRelaxedParallelEquivalence checks the opt-in relaxed engine (no level
// barrier) still agrees with the sequential engine on this side-effect-free
// graph, where skipping the barrier is safe by construction.
func TestRelaxedParallelEquivalence(t *testing.T) {
	inputs := []int{4, 9, 16, 25}

	seqTrace := traceAfterSequence(EngineSequential, inputs)
	relaxedTrace := traceAfterSequence(EngineRelaxedParallel, inputs)

	assert.Equal(t, seqTrace, relaxedTrace)
}
