package bondgraph

import "fmt"

// PathEdges converts a path into the bonds it runs along, in path order.
func PathEdges(path Path) []Bond {
	if len(path) < 2 {
		return nil
	}
	edges := make([]Bond, 0, len(path)-1)
	for i := 0; i+1 < len(path); i++ {
		edges = append(edges, Bond{From: path[i], To: path[i+1]})
	}
	return edges
}

// InvertPath reverses every bond along the path, in path order.
//
// Every bond is checked before any is flipped: if one of them does not exist
// in the stated direction the graph is left untouched and an error wrapping
// ErrBondNotFound is returned. Such a failure means the path and the graph
// disagree and is never an expected runtime condition.
//
// Reversing a path moves one unit of donor capacity from its tail to its
// head: path[0] accepts one more bond, path[len-1] donates one more, and every
// interior site keeps its balance.
func (g *Graph) InvertPath(path Path) error {
	return g.invert("InvertPath", PathEdges(path))
}

// InvertBonds reverses a list of bonds with the same all-or-nothing checks as
// InvertPath. The bonds need not form a path.
func (g *Graph) InvertBonds(bonds []Bond) error {
	return g.invert("InvertBonds", bonds)
}

func (g *Graph) invert(op string, bonds []Bond) error {
	idx := make([]int, 0, len(bonds))
	seen := make(map[pairKey]struct{}, len(bonds))
	for i, b := range bonds {
		k := keyOf(b.From, b.To)
		if _, dup := seen[k]; dup {
			// the earlier reversal already turned this bond around
			return &GraphError{Op: op, Entity: "bond", From: b.From, To: b.To,
				Cause: ErrBondNotFound, Context: fmt.Sprintf("bond repeated at step %d", i)}
		}
		if !g.HasBond(b.From, b.To) {
			return &GraphError{Op: op, Entity: "bond", From: b.From, To: b.To,
				Cause: ErrBondNotFound, Context: fmt.Sprintf("step %d of %d", i, len(bonds))}
		}
		seen[k] = struct{}{}
		idx = append(idx, g.index[k])
	}

	for _, i := range idx {
		g.flip(i)
	}
	return nil
}
