package cleanup

import (
	"context"
	"fmt"

	"github.com/dkarlsen/scythe/pkg/change"
)

// State tracks a change set through selection and application.
type State int

const (
	StateComputed State = iota
	StateSelected
	StateRecomputed
	StateApplied
	StateDiscarded
)

func (s State) String() string {
	switch s {
	case StateComputed:
		return "computed"
	case StateSelected:
		return "selected"
	case StateRecomputed:
		return "recomputed"
	case StateApplied:
		return "applied"
	case StateDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// RecomputeFunc re-runs change computation over fresh file contexts,
// scoped to the given paths.
type RecomputeFunc func(ctx context.Context, paths []string) (*change.Composite, error)

// Controller walks a computed change graph through user selection,
// recomputation, and final application or discard.
type Controller struct {
	graph     *change.Graph
	state     State
	kept      []bool
	recompute RecomputeFunc
	report    *Report
}

// NewController wraps a freshly computed graph. recompute may be nil
// when the caller guarantees positions stay valid between computation
// and application.
func NewController(graph *change.Graph, recompute RecomputeFunc) (*Controller, error) {
	if graph == nil || len(graph.Nodes) == 0 {
		return nil, fmt.Errorf("cleanup: controller requires a non-empty change graph")
	}
	kept := make([]bool, len(graph.Nodes))
	for i := range kept {
		kept[i] = true
	}
	return &Controller{
		graph:     graph,
		state:     StateComputed,
		kept:      kept,
		recompute: recompute,
		report:    &Report{},
	}, nil
}

func (c *Controller) State() State   { return c.state }
func (c *Controller) Report() Report { return *c.report }

// Select drops the rejected nodes along with every node transitively
// dependent on them. Cascaded drops the user did not name are recorded
// as warnings. Selecting away every node discards the change set.
func (c *Controller) Select(rejected []int) error {
	if c.state != StateComputed {
		return fmt.Errorf("cleanup: select from state %s", c.state)
	}
	named := make(map[int]bool, len(rejected))
	for _, i := range rejected {
		if i < 0 || i >= len(c.kept) {
			return fmt.Errorf("cleanup: selection index %d out of range", i)
		}
		named[i] = true
	}
	for i := range named {
		c.kept[i] = false
		for _, dep := range c.graph.TransitiveDependents(i) {
			if c.kept[dep] && !named[dep] {
				c.report.Add(SeverityWarning, c.graph.Nodes[dep].Change.Path,
					"dropped together with rejected change in %s", c.graph.Nodes[i].Change.Path)
			}
			c.kept[dep] = false
		}
	}
	for _, keep := range c.kept {
		if keep {
			c.state = StateSelected
			return nil
		}
	}
	c.state = StateDiscarded
	return nil
}

// RequiresRecompute reports whether the remaining changes must be
// recomputed against fresh sources before application.
func (c *Controller) RequiresRecompute() bool {
	return c.state == StateSelected && c.recompute != nil
}

// Recompute re-runs change computation for files that still have
// pending changes, replacing the stale per-file edits.
func (c *Controller) Recompute(ctx context.Context) (*change.Composite, error) {
	if c.state != StateSelected {
		return nil, fmt.Errorf("cleanup: recompute from state %s", c.state)
	}
	if c.recompute == nil {
		return nil, fmt.Errorf("cleanup: no recompute function configured")
	}
	var paths []string
	for i, keep := range c.kept {
		if keep {
			paths = append(paths, c.graph.Nodes[i].Change.Path)
		}
	}
	composite, err := c.recompute(ctx, paths)
	if err != nil {
		return nil, err
	}
	c.state = StateRecomputed
	return composite, nil
}

// Changes returns the currently pending changes as a flat composite.
func (c *Controller) Changes() *change.Composite {
	var composite change.Composite
	for i, keep := range c.kept {
		if keep {
			composite.Append(c.graph.Nodes[i].Change)
		}
	}
	return composite.Normalize()
}

// MarkApplied records that the pending changes were written out.
func (c *Controller) MarkApplied() error {
	switch c.state {
	case StateSelected, StateRecomputed:
		c.state = StateApplied
		return nil
	case StateComputed:
		return fmt.Errorf("cleanup: apply before selection")
	default:
		return fmt.Errorf("cleanup: apply from state %s", c.state)
	}
}

// Discard abandons the change set. Valid from any non-terminal state.
func (c *Controller) Discard() error {
	switch c.state {
	case StateApplied, StateDiscarded:
		return fmt.Errorf("cleanup: discard from state %s", c.state)
	}
	c.state = StateDiscarded
	return nil
}
