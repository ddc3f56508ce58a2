package internal

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/petermattis/goid"
)

// EngineKind selects the propagation strategy (§6 `engine = sequential |
// parallel`).
type EngineKind int

const (
	EngineSequential EngineKind = iota
	EngineParallel
	// EngineRelaxedParallel skips the level barrier between levels,
	// trusting per-node pending counts alone (§4.6 "relaxed mode"). Opt-in;
	// user computations must not observe sibling nodes under this mode.
	EngineRelaxedParallel
)

// MergePolicy controls whether Async transactions may coalesce (§6
// `merge_policy = none | adjacent`).
type MergePolicy int

const (
	MergeNone MergePolicy = iota
	MergeAdjacent
)

// Domain is the process-level container that owns one propagation engine
// and the nodes bound to it (§2). Multiple domains may coexist and never
// share nodes. This is the spec's explicit-value redesign of the teacher's
// goroutine-keyed singleton Runtime (internal/runtime_default.go) — see
// DESIGN.md.
type Domain struct {
	id uuid.UUID

	// mu guards all fields below except the turn lock itself: node/turn
	// sequence counters, the async queue, poison state, and which
	// goroutine (if any) currently holds the turn lock.
	mu sync.Mutex

	// txMu is the domain's single "current turn" lock (§4.3: "two
	// transactions against the same domain never interleave their
	// propagation phases").
	txMu sync.Mutex

	txHolderSet bool
	txHolder    int64

	nodeSeq uint64
	turnSeq uint64

	tracker     *tracker
	effects     *effectQueue
	currentTurn *Turn

	poisoned  bool
	poisonErr error

	engineKind  EngineKind
	workerCount int
	mergePolicy MergePolicy
	equal       EqualFunc

	asyncQueue []*pendingTx
}

// DomainOption configures a Domain at construction (§6 configuration
// table).
type DomainOption func(*Domain)

func WithEngine(kind EngineKind) DomainOption {
	return func(d *Domain) { d.engineKind = kind }
}

func WithWorkerCount(n int) DomainOption {
	return func(d *Domain) {
		if n > 0 {
			d.workerCount = n
		}
	}
}

func WithMergePolicy(p MergePolicy) DomainOption {
	return func(d *Domain) { d.mergePolicy = p }
}

func WithDefaultEquality(eq EqualFunc) DomainOption {
	return func(d *Domain) {
		if eq != nil {
			d.equal = eq
		}
	}
}

func NewDomain(opts ...DomainOption) *Domain {
	d := &Domain{
		id:          uuid.New(),
		tracker:     newTracker(),
		effects:     newEffectQueue(),
		engineKind:  EngineSequential,
		workerCount: runtime.GOMAXPROCS(0),
		mergePolicy: MergeNone,
		equal:       DefaultEqual,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Domain) ID() uuid.UUID { return d.id }

func (d *Domain) Tracker() *tracker { return d.tracker }

func (d *Domain) CurrentOwner() *Owner { return d.tracker.currentOwner() }

func (d *Domain) OnCleanup(fn func()) {
	if o := d.tracker.currentOwner(); o != nil {
		o.OnCleanup(fn)
	}
}

func (d *Domain) Untrack(fn func()) {
	d.tracker.runUntracked(fn)
}

// attachToCurrentOwner hooks a freshly-constructed owner under whatever
// owner is active on the calling goroutine, if any (nested Computed/Effect
// construction inside another's tick/Run).
func (d *Domain) attachToCurrentOwner(o *Owner) {
	if parent := d.tracker.currentOwner(); parent != nil {
		parent.addChild(o)
	}
}

func (d *Domain) isPoisoned() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.poisoned {
		return &PoisonedError{Cause: d.poisonErr}
	}
	return nil
}

// poison marks the domain poisoned after an engine-internal assertion
// failure (§7.4): every subsequent Transaction call fails immediately.
func (d *Domain) poison(cause error) {
	d.mu.Lock()
	d.poisoned = true
	d.poisonErr = cause
	d.mu.Unlock()
}

func (d *Domain) assert(cond bool, format string, args ...any) {
	if !cond {
		err := fmt.Errorf(format, args...)
		d.poison(err)
		panic(&PoisonedError{Cause: err})
	}
}

// insideTurnOnThisGoroutine reports whether the calling goroutine currently
// holds this domain's turn lock (i.e. we're nested inside an already-running
// transaction body — NewBatch-in-NewBatch, or a Write during a
// Transaction's body).
func (d *Domain) insideTurnOnThisGoroutine() bool {
	gid := goid.Get()
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.txHolderSet && d.txHolder == gid
}
