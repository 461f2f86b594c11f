package graph

import "slices"

// Flatten returns every descendant of root in ascending source offset.
// Nodes sharing an offset keep their depth-first discovery order.
// Parameters and comments are not part of the listing.
func (g *Graph) Flatten(root NodeID) []NodeID {
	var out []NodeID
	var walk func(id NodeID)
	walk = func(id NodeID) {
		for _, c := range g.Node(id).Children {
			out = append(out, c)
			walk(c)
		}
	}
	walk(root)

	slices.SortStableFunc(out, func(a, b NodeID) int {
		return g.Nodes[a].Pos.Offset - g.Nodes[b].Pos.Offset
	})
	return out
}

// Descendants counts the nodes reachable from root, root excluded.
func (g *Graph) Descendants(root NodeID) int {
	n := 0
	for _, c := range g.Node(root).Children {
		n += 1 + g.Descendants(c)
	}
	return n
}
