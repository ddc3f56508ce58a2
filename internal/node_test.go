package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func assertLevelMonotone(t *testing.T, nodes []*ReactiveNode) {
	t.Helper()
	for _, n := range nodes {
		for _, p := range n.preds {
			assert.Lessf(t, p.level, n.level, "node %d (level %d) does not sit strictly above predecessor %d (level %d)", n.id, n.level, p.id, p.level)
		}
	}
}

// TestLevelMonotonicityAfterAttach is P4: every edge satisfies
// level(pred) < level(succ) after a sequence of attach operations succeeds.
func TestLevelMonotonicityAfterAttach(t *testing.T) {
	d := NewDomain()

	a := d.newNode(KindComputed)
	b := d.newNode(KindComputed)
	c := d.newNode(KindComputed)
	e := d.newNode(KindComputed)

	assert.NoError(t, d.Attach(a, b))
	assert.NoError(t, d.Attach(b, c))
	assert.NoError(t, d.Attach(a, e))
	assert.NoError(t, d.Attach(c, e))

	assertLevelMonotone(t, []*ReactiveNode{a, b, c, e})
}

// TestLevelMonotonicityAfterDetachReattach exercises P4 across a detach
// followed by a re-attach that raises a node's level further than its
// original position.
func TestLevelMonotonicityAfterDetachReattach(t *testing.T) {
	d := NewDomain()

	a := d.newNode(KindComputed)
	b := d.newNode(KindComputed)
	c := d.newNode(KindComputed)
	x := d.newNode(KindComputed)

	assert.NoError(t, d.Attach(a, x))
	assert.Equal(t, 1, x.level)

	assert.NoError(t, d.Detach(a, x))
	assert.NoError(t, d.Attach(a, b))
	assert.NoError(t, d.Attach(b, c))
	assert.NoError(t, d.Attach(c, x))

	assertLevelMonotone(t, []*ReactiveNode{a, b, c, x})
	assert.Equal(t, 3, x.level)
}

// TestCycleLeavesGraphUnchanged checks the second half of scenario 6:
// a rejected Attach leaves every edge and level exactly as it was.
func TestCycleLeavesGraphUnchanged(t *testing.T) {
	d := NewDomain()

	a := d.newNode(KindComputed)
	b := d.newNode(KindComputed)

	assert.NoError(t, d.Attach(a, b))
	levelBefore := b.level
	predsBefore := append([]*ReactiveNode(nil), b.preds...)

	err := d.Attach(b, a)
	assert.ErrorIs(t, err, ErrCycle)

	assert.Equal(t, levelBefore, b.level)
	assert.Equal(t, predsBefore, b.preds)
	assert.Empty(t, a.preds)
}

func TestDetachUnknownPredecessor(t *testing.T) {
	d := NewDomain()
	a := d.newNode(KindComputed)
	b := d.newNode(KindComputed)

	err := d.Detach(a, b)
	assert.ErrorIs(t, err, ErrNotAPredecessor)
}

func TestAttachRejectsCrossDomain(t *testing.T) {
	d1 := NewDomain()
	d2 := NewDomain()

	a := d1.newNode(KindComputed)
	b := d2.newNode(KindComputed)

	err := d1.Attach(a, b)
	assert.ErrorIs(t, err, ErrCrossDomain)
}
