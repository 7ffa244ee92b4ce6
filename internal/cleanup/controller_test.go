package cleanup

import (
	"context"
	"errors"
	"testing"

	"github.com/dkarlsen/scythe/pkg/change"
)

func testGraph(t *testing.T) *change.Graph {
	t.Helper()
	g := &change.Graph{}
	iface := g.AddNode(change.Node{
		Change: change.FileChange{Path: "greeter.java", Edits: []change.TextEdit{{StartByte: 0, EndByte: 4}}},
	})
	impl := g.AddNode(change.Node{
		Change: change.FileChange{Path: "adapter.java", Edits: []change.TextEdit{{StartByte: 0, EndByte: 4}}},
	})
	g.AddNode(change.Node{
		Change:      change.FileChange{Path: "util.java", Edits: []change.TextEdit{{StartByte: 0, EndByte: 4}}},
		Independent: true,
	})
	if err := g.AddEdge(iface, impl); err != nil {
		t.Fatalf("AddEdge() error: %v", err)
	}
	return g
}

func TestControllerRequiresGraph(t *testing.T) {
	if _, err := NewController(nil, nil); err == nil {
		t.Error("NewController(nil) should fail")
	}
	if _, err := NewController(&change.Graph{}, nil); err == nil {
		t.Error("NewController(empty) should fail")
	}
}

func TestControllerSelectCascades(t *testing.T) {
	c, err := NewController(testGraph(t), nil)
	if err != nil {
		t.Fatalf("NewController() error: %v", err)
	}
	if c.State() != StateComputed {
		t.Fatalf("State() = %s, want computed", c.State())
	}

	// Rejecting the interface-side change drops the implementation too.
	if err := c.Select([]int{0}); err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if c.State() != StateSelected {
		t.Errorf("State() = %s, want selected", c.State())
	}

	warnings := c.Report().Filter(SeverityWarning)
	if len(warnings) != 1 || warnings[0].Path != "adapter.java" {
		t.Errorf("cascade warning = %+v, want one for adapter.java", warnings)
	}

	remaining := c.Changes()
	if remaining == nil || len(remaining.Changes) != 1 || remaining.Changes[0].Path != "util.java" {
		t.Errorf("Changes() = %+v, want only util.java", remaining)
	}
}

func TestControllerSelectAllDiscards(t *testing.T) {
	c, err := NewController(testGraph(t), nil)
	if err != nil {
		t.Fatalf("NewController() error: %v", err)
	}
	if err := c.Select([]int{0, 2}); err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if c.State() != StateDiscarded {
		t.Errorf("State() = %s, want discarded", c.State())
	}
	if c.Changes() != nil {
		t.Error("Changes() after full rejection should be nil")
	}
}

func TestControllerSelectValidation(t *testing.T) {
	c, err := NewController(testGraph(t), nil)
	if err != nil {
		t.Fatalf("NewController() error: %v", err)
	}
	if err := c.Select([]int{7}); err == nil {
		t.Error("out-of-range selection should fail")
	}
	if err := c.Select(nil); err != nil {
		t.Fatalf("Select(nil) error: %v", err)
	}
	if err := c.Select(nil); err == nil {
		t.Error("second Select should fail")
	}
}

func TestControllerInvalidTransitions(t *testing.T) {
	c, err := NewController(testGraph(t), nil)
	if err != nil {
		t.Fatalf("NewController() error: %v", err)
	}
	if err := c.MarkApplied(); err == nil {
		t.Error("MarkApplied before selection should fail")
	}
	if _, err := c.Recompute(context.Background()); err == nil {
		t.Error("Recompute before selection should fail")
	}

	if err := c.Select(nil); err != nil {
		t.Fatal(err)
	}
	if err := c.MarkApplied(); err != nil {
		t.Fatalf("MarkApplied() error: %v", err)
	}
	if c.State() != StateApplied {
		t.Errorf("State() = %s, want applied", c.State())
	}
	if err := c.Discard(); err == nil {
		t.Error("Discard after apply should fail")
	}
	if err := c.MarkApplied(); err == nil {
		t.Error("double apply should fail")
	}
}

func TestControllerRecompute(t *testing.T) {
	var got []string
	recompute := func(ctx context.Context, paths []string) (*change.Composite, error) {
		got = paths
		var comp change.Composite
		comp.Append(change.FileChange{Path: "util.java", Edits: []change.TextEdit{{StartByte: 2, EndByte: 6}}})
		return comp.Normalize(), nil
	}

	c, err := NewController(testGraph(t), recompute)
	if err != nil {
		t.Fatalf("NewController() error: %v", err)
	}
	if err := c.Select([]int{0}); err != nil {
		t.Fatal(err)
	}
	if !c.RequiresRecompute() {
		t.Error("RequiresRecompute() should be true after selection")
	}

	composite, err := c.Recompute(context.Background())
	if err != nil {
		t.Fatalf("Recompute() error: %v", err)
	}
	if c.State() != StateRecomputed {
		t.Errorf("State() = %s, want recomputed", c.State())
	}
	if len(got) != 1 || got[0] != "util.java" {
		t.Errorf("recompute paths = %v, want [util.java]", got)
	}
	if composite == nil || len(composite.Changes) != 1 {
		t.Errorf("Recompute() composite = %+v", composite)
	}
	if err := c.MarkApplied(); err != nil {
		t.Errorf("MarkApplied() after recompute error: %v", err)
	}
}

func TestControllerRecomputeError(t *testing.T) {
	boom := errors.New("parse failed")
	c, err := NewController(testGraph(t), func(ctx context.Context, paths []string) (*change.Composite, error) {
		return nil, boom
	})
	if err != nil {
		t.Fatalf("NewController() error: %v", err)
	}
	if err := c.Select(nil); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Recompute(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Recompute() error = %v, want %v", err, boom)
	}
	// state unchanged on failure
	if c.State() != StateSelected {
		t.Errorf("State() = %s, want selected", c.State())
	}
}

func TestControllerDiscard(t *testing.T) {
	c, err := NewController(testGraph(t), nil)
	if err != nil {
		t.Fatalf("NewController() error: %v", err)
	}
	if err := c.Discard(); err != nil {
		t.Fatalf("Discard() error: %v", err)
	}
	if c.State() != StateDiscarded {
		t.Errorf("State() = %s, want discarded", c.State())
	}
	if err := c.Discard(); err == nil {
		t.Error("double discard should fail")
	}
}
