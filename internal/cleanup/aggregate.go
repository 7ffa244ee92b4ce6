package cleanup

import (
	"context"

	"github.com/dkarlsen/scythe/pkg/change"
)

// filePair is a dependency between two files' changes: the interface
// side enables the implementation side.
type filePair struct {
	interfacePath string
	implPath      string
}

// aggregate realizes the builder's scripts into a flat composite,
// honoring cancellation between files.
func aggregate(ctx context.Context, b *editBuilder) (*change.Composite, error) {
	var composite change.Composite
	for _, path := range b.order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fc, err := b.scripts[path].Realize()
		if err != nil {
			return nil, err
		}
		composite.Append(fc)
	}
	return composite.Normalize(), nil
}

// aggregateGraph realizes the builder's scripts into a dependency
// graph for selective acceptance. A file whose change removes an
// interface declaration is not independent and carries a forward edge
// to the file removing the corresponding implementation; nodes are
// ordered so that every edge points from an earlier node to a later
// one, keeping the graph acyclic by construction.
func aggregateGraph(ctx context.Context, b *editBuilder, pairs []filePair, report *Report) (*change.Graph, error) {
	changes := make(map[string]change.FileChange, len(b.order))
	for _, path := range b.order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fc, err := b.scripts[path].Realize()
		if err != nil {
			return nil, err
		}
		if !fc.Empty() {
			changes[path] = fc
		}
	}
	if len(changes) == 0 {
		return nil, nil
	}

	edges := dedupePairs(pairs, changes, report)

	dependent := make(map[string]bool)
	for _, e := range edges {
		dependent[e.interfacePath] = true
		dependent[e.implPath] = true
	}

	order := topoOrder(b.order, edges, changes)

	graph := &change.Graph{}
	index := make(map[string]int, len(order))
	for _, path := range order {
		index[path] = graph.AddNode(change.Node{
			Change:      changes[path],
			Independent: !dependent[path],
		})
	}
	for _, e := range edges {
		from, to := index[e.interfacePath], index[e.implPath]
		if from >= to {
			// longer dependency cycle broken by ordering
			report.Add(SeverityWarning, e.interfacePath,
				"circular dependency with %s broken", e.implPath)
			continue
		}
		if err := graph.AddEdge(from, to); err != nil {
			return nil, err
		}
	}

	return graph, nil
}

// dedupePairs drops self-pairs, pairs touching files without changes,
// duplicates, and mutual pairs (which would otherwise form a cycle at
// file granularity; both files stay dependent, joined by one edge).
func dedupePairs(pairs []filePair, changes map[string]change.FileChange, report *Report) []filePair {
	seen := make(map[filePair]bool)
	var out []filePair
	for _, p := range pairs {
		if p.interfacePath == p.implPath {
			continue
		}
		if _, ok := changes[p.interfacePath]; !ok {
			continue
		}
		if _, ok := changes[p.implPath]; !ok {
			continue
		}
		if seen[p] {
			continue
		}
		if seen[filePair{interfacePath: p.implPath, implPath: p.interfacePath}] {
			report.Add(SeverityWarning, p.interfacePath,
				"mutual dependency with %s collapsed to a single edge", p.implPath)
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// topoOrder sorts file paths so edge sources precede their targets,
// breaking ties by original file-processing order.
func topoOrder(fileOrder []string, edges []filePair, changes map[string]change.FileChange) []string {
	indegree := make(map[string]int)
	var paths []string
	for _, path := range fileOrder {
		if _, ok := changes[path]; ok {
			paths = append(paths, path)
			indegree[path] = 0
		}
	}
	for _, e := range edges {
		indegree[e.implPath]++
	}

	var order []string
	placed := make(map[string]bool)
	for len(order) < len(paths) {
		advanced := false
		for _, path := range paths {
			if placed[path] || indegree[path] > 0 {
				continue
			}
			placed[path] = true
			order = append(order, path)
			advanced = true
			for _, e := range edges {
				if e.interfacePath == path {
					indegree[e.implPath]--
				}
			}
		}
		if !advanced {
			// cannot happen after dedupePairs, but refuse to spin
			for _, path := range paths {
				if !placed[path] {
					placed[path] = true
					order = append(order, path)
				}
			}
		}
	}
	return order
}
