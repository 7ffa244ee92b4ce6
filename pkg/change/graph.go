package change

import "fmt"

// Node wraps one file-level change for selective acceptance.
// A dependent node's correctness presumes its enabling nodes were
// accepted; an independent node can be rejected in isolation.
type Node struct {
	Change      FileChange `json:"change"`
	Independent bool       `json:"independent"`
}

// Graph is an arena of change nodes with dependency edges stored as
// index pairs. Edges always point from an enabling node to a dependent
// node added later, so acyclicity is a structural property.
type Graph struct {
	Nodes []Node   `json:"nodes"`
	Edges [][2]int `json:"edges"`
}

// AddNode appends a node and returns its id.
func (g *Graph) AddNode(n Node) int {
	g.Nodes = append(g.Nodes, n)
	return len(g.Nodes) - 1
}

// AddEdge records that node `to` depends on node `from` having been
// accepted. Edges must point forward in arena order.
func (g *Graph) AddEdge(from, to int) error {
	if from < 0 || to >= len(g.Nodes) || from >= to {
		return fmt.Errorf("invalid dependency edge %d -> %d (nodes: %d)", from, to, len(g.Nodes))
	}
	g.Edges = append(g.Edges, [2]int{from, to})
	return nil
}

// Dependents returns the ids of nodes directly depending on id.
func (g *Graph) Dependents(id int) []int {
	var out []int
	for _, e := range g.Edges {
		if e[0] == id {
			out = append(out, e[1])
		}
	}
	return out
}

// TransitiveDependents returns every node reachable from id via
// forward edges, in ascending id order.
func (g *Graph) TransitiveDependents(id int) []int {
	seen := make(map[int]bool)
	stack := []int{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, dep := range g.Dependents(cur) {
			if !seen[dep] {
				seen[dep] = true
				stack = append(stack, dep)
			}
		}
	}

	out := make([]int, 0, len(seen))
	for i := range g.Nodes {
		if seen[i] {
			out = append(out, i)
		}
	}
	return out
}

// Acyclic verifies the structural invariant that every edge points
// forward in arena order.
func (g *Graph) Acyclic() bool {
	for _, e := range g.Edges {
		if e[0] >= e[1] {
			return false
		}
	}
	return true
}

// Composite flattens the graph's nodes back into a composite change in
// arena order. Returns nil when the graph is empty.
func (g *Graph) Composite() *Composite {
	if g == nil || len(g.Nodes) == 0 {
		return nil
	}
	var c Composite
	for _, n := range g.Nodes {
		c.Append(n.Change)
	}
	return c.Normalize()
}
