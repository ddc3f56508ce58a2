package internal

// Var is the mutable input node kind (§4.1 "Var/Signal"): a reactive cell
// with no predecessors, holding a value that only ever changes as a staged
// turn mutation. Grounded on the teacher's internal/signal.go, with the
// pendingValue/Commit split dropped — in this module applyStaged always
// runs synchronously at the start of runTurn, so there is never a window
// where a Var needs to report its old value to one reader and a new one to
// another within the same turn.
type Var struct {
	*ReactiveNode

	value any
	equal EqualFunc
}

// NewVar creates a Var holding initial, using the domain's default equality
// unless overridden.
func (d *Domain) NewVar(initial any, opts ...VarOption) *Var {
	v := &Var{
		ReactiveNode: d.newNode(KindVar),
		value:        initial,
		equal:        d.equal,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// VarOption configures a single Var at construction.
type VarOption func(*Var)

// WithVarEquality overrides the comparator used to decide whether a Write
// actually changes the value (§4.2 "equality = default | user | never").
func WithVarEquality(eq EqualFunc) VarOption {
	return func(v *Var) {
		if eq != nil {
			v.equal = eq
		}
	}
}

// Read returns the current value, tracking this Var as a dependency of
// whatever node is currently being evaluated (§4.1).
func (v *Var) Read() any {
	v.domain.tracker.track(v.ReactiveNode)
	return v.value
}

// Peek returns the current value without tracking a dependency.
func (v *Var) Peek() any {
	return v.value
}

// Write stages a new value for this Var. The mutation is applied atomically
// at the start of the turn it's staged into (§4.3); reads made earlier in
// the same transaction body see the prior value. A Write outside any active
// transaction opens an implicit one-shot Sync turn (§6).
func (v *Var) Write(next any) {
	v.domain.stage(v.ReactiveNode, func() bool {
		if v.equal(v.value, next) {
			return false
		}
		v.value = next
		return true
	})
}
