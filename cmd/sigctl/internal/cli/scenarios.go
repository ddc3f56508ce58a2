package cli

import (
	"fmt"
	"log/slog"

	"github.com/AnatoleLucet/sig"
)

// Scenario is a canned propagation graph sigctl can build and drive,
// named after the end-to-end cases in the testable-properties design
// notes (§8): area, diamond, merge.
type Scenario func(d *sig.Domain, log *slog.Logger) error

var scenarios = map[string]Scenario{
	"area":    areaScenario,
	"diamond": diamondScenario,
	"merge":   mergeScenario,
}

// areaScenario: a two-input product, the textbook single-level-fan-in
// case (width, height -> area).
func areaScenario(d *sig.Domain, log *slog.Logger) error {
	width := sig.NewSignal(d, 3)
	height := sig.NewSignal(d, 4)
	area := sig.NewComputed(d, func() int {
		return width.Read() * height.Read()
	})

	sig.NewEffect(d, func() func() {
		log.Info("area", "value", area.Read())
		return nil
	})

	d.NewBatch(func() {
		width.Write(5)
		height.Write(6)
	})
	return nil
}

// diamondScenario: a shared input reaching one node through two distinct
// paths (a -> b, a -> c, b+c -> d) — the case update minimality and
// glitch freedom are defined against (§8 P1-P4).
func diamondScenario(d *sig.Domain, log *slog.Logger) error {
	a := sig.NewSignal(d, 1)
	b := sig.NewComputed(d, func() int { return a.Read() * 2 })
	c := sig.NewComputed(d, func() int { return a.Read() + 1 })
	ticks := 0
	dNode := sig.NewComputed(d, func() int {
		ticks++
		return b.Read() + c.Read()
	})

	sig.NewEffect(d, func() func() {
		log.Info("diamond", "d", dNode.Read(), "recomputes", ticks)
		return nil
	})

	a.Write(2)
	return nil
}

// mergeScenario: two independent event sources feeding one merged stream,
// observed through a Fold that counts total occurrences.
func mergeScenario(d *sig.Domain, log *slog.Logger) error {
	clicks := sig.NewEventSource[string](d)
	taps := sig.NewEventSource[string](d)
	merged := sig.NewMerge[string](d, clicks, taps)
	count := sig.NewFold[string, int](d, merged, 0, func(acc int, _ string) int {
		return acc + 1
	})

	sig.NewEffect(d, func() func() {
		log.Info("merge", "occurrences", merged.Occurrences(), "total", count.Read())
		return nil
	})

	d.NewBatch(func() {
		clicks.Emit("click")
		taps.Emit("tap")
	})
	return nil
}

func runScenario(name string, d *sig.Domain, log *slog.Logger) error {
	scenario, ok := scenarios[name]
	if !ok {
		return fmt.Errorf("unknown scenario %q", name)
	}
	return scenario(d, log)
}
