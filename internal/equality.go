package internal

import "reflect"

// EqualFunc is the per-node change-detection comparator (§4.2, §6
// "equality = default | user"). Returning true means the recomputed value
// counts as Unchanged for scheduling purposes.
type EqualFunc func(a, b any) bool

// DefaultEqual is structural equality: a plain == for comparable values,
// falling back to reflect.DeepEqual for anything that would panic on ==
// (slices, maps, funcs nested in structs, etc).
func DefaultEqual(a, b any) bool {
	equal, comparable := tryCompare(a, b)
	if comparable {
		return equal
	}
	return reflect.DeepEqual(a, b)
}

func tryCompare(a, b any) (equal, comparable bool) {
	defer func() {
		if recover() != nil {
			comparable = false
		}
	}()
	return a == b, true
}

// NeverEqual is useful for nodes that should always be treated as changed
// (e.g. a Var holding a type with no meaningful equality).
func NeverEqual(a, b any) bool { return false }
