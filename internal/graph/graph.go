// Package graph linearizes the output set into a dependency-first ordering.
package graph

import "cidify/internal/core"

// Node visit states for the cycle-tolerant depth-first traversal.
const (
	unvisited = iota
	inProgress
	done
)

// Linearize returns every artifact name in the set exactly once, such that
// for every artifact A depending on B (with B present in the set) B appears
// before A wherever the edge structure is acyclic.
//
// Cycles do not fail: a node reached again while still on the traversal
// stack is treated as already satisfied and skipped, sacrificing the hard
// topological guarantee for the cyclic subset but guaranteeing termination
// and a total ordering. References to names outside the set are ignored.
//
// Roots are visited in the set's insertion order, so the result is
// deterministic for a given output set.
func Linearize(set *core.OutputSet) []string {
	state := make(map[string]int, set.Len())
	order := make([]string, 0, set.Len())

	var visit func(name string)
	visit = func(name string) {
		if state[name] != unvisited {
			return
		}
		a, ok := set.Get(name)
		if !ok {
			return
		}
		state[name] = inProgress
		for _, ref := range a.References() {
			if set.Has(ref) {
				visit(ref)
			}
		}
		state[name] = done
		order = append(order, name)
	}

	for _, name := range set.Names() {
		visit(name)
	}
	return order
}
