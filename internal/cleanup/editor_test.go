package cleanup

import (
	"context"
	"strings"
	"testing"

	"github.com/dkarlsen/scythe/internal/semantic"
	"github.com/dkarlsen/scythe/pkg/parser"
)

func declFor(t *testing.T, path, src, typeName, method string) (*Declaration, []byte) {
	t.Helper()
	fc := parseContext(t, path, parser.LangJava, src)
	syms, err := semantic.ForLanguage(parser.LangJava).Extract(fc.Tree)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	for i := range syms.Types {
		ty := &syms.Types[i]
		if ty.Name != typeName {
			continue
		}
		for j := range ty.Methods {
			m := &ty.Methods[j]
			if m.Name == method {
				return &Declaration{
					Key:    Key{DeclaringType: typeName, Name: m.Name, Params: m.Params},
					Path:   path,
					Node:   m.Node,
					Type:   ty,
					Method: m,
				}, fc.Tree.Source
			}
		}
	}
	t.Fatalf("method %s.%s not found", typeName, method)
	return nil, nil
}

func TestRemovalSpanTakesWholeLines(t *testing.T) {
	src := "class C {\n    void dead() {\n    }\n\n    void alive() {\n    }\n}\n"
	decl, source := declFor(t, "C.java", src, "C", "dead")

	b := newEditBuilder(map[string][]byte{"C.java": source})
	if err := b.remove(decl); err != nil {
		t.Fatalf("remove() error: %v", err)
	}

	composite, err := aggregate(context.Background(), b)
	if err != nil {
		t.Fatalf("aggregate() error: %v", err)
	}
	after, err := composite.Changes[0].Apply(source)
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	got := string(after)
	if strings.Contains(got, "dead") {
		t.Errorf("dead method still present:\n%s", got)
	}
	if strings.Contains(got, "    \n    }") || strings.Contains(got, "    }\n\n\n") {
		t.Errorf("leftover indentation or blank run:\n%s", got)
	}
	if !strings.Contains(got, "void alive()") {
		t.Errorf("alive method damaged:\n%s", got)
	}
}

func TestRemoveSameDeclarationTwice(t *testing.T) {
	src := "class C {\n    void dead() {\n    }\n}\n"
	decl, source := declFor(t, "C.java", src, "C", "dead")

	b := newEditBuilder(map[string][]byte{"C.java": source})
	if err := b.remove(decl); err != nil {
		t.Fatalf("first remove() error: %v", err)
	}
	if err := b.remove(decl); err != nil {
		t.Fatalf("second remove() error: %v", err)
	}
	if b.scripts["C.java"].Len() != 1 {
		t.Errorf("Len() = %d, want 1 (idempotent append)", b.scripts["C.java"].Len())
	}
}

func TestRemoveWithoutSourceFails(t *testing.T) {
	src := "class C {\n    void dead() {\n    }\n}\n"
	decl, _ := declFor(t, "C.java", src, "C", "dead")

	b := newEditBuilder(map[string][]byte{})
	if err := b.remove(decl); err == nil {
		t.Error("remove() without recorded source should fail")
	}
}

func TestOneScriptPerFile(t *testing.T) {
	src := "class C {\n    void one() {\n    }\n\n    void two() {\n    }\n}\n"
	d1, source := declFor(t, "C.java", src, "C", "one")
	d2, _ := declFor(t, "C.java", src, "C", "two")

	b := newEditBuilder(map[string][]byte{"C.java": source})
	if err := b.remove(d1); err != nil {
		t.Fatal(err)
	}
	if err := b.remove(d2); err != nil {
		t.Fatal(err)
	}
	if len(b.scripts) != 1 {
		t.Errorf("len(scripts) = %d, want 1", len(b.scripts))
	}
	if b.scripts["C.java"].Len() != 2 {
		t.Errorf("Len() = %d, want 2", b.scripts["C.java"].Len())
	}
}

func TestDedupePairsCollapsesMutualDependency(t *testing.T) {
	report := &Report{}
	pairs := []filePair{
		{interfacePath: "a.java", implPath: "b.java"},
		{interfacePath: "b.java", implPath: "a.java"},
		{interfacePath: "a.java", implPath: "b.java"},
		{interfacePath: "a.java", implPath: "a.java"},
	}

	src := "class A {\n    void m() {\n    }\n}\n"
	dA, srcA := declFor(t, "a.java", src, "A", "m")
	srcB := strings.ReplaceAll(src, "A", "B")
	dB, _ := declFor(t, "b.java", srcB, "B", "m")

	builder := newEditBuilder(map[string][]byte{"a.java": srcA, "b.java": []byte(srcB)})
	if err := builder.remove(dA); err != nil {
		t.Fatal(err)
	}
	if err := builder.remove(dB); err != nil {
		t.Fatal(err)
	}

	graph, err := aggregateGraph(context.Background(), builder, pairs, report)
	if err != nil {
		t.Fatalf("aggregateGraph() error: %v", err)
	}
	if len(graph.Edges) != 1 {
		t.Errorf("len(Edges) = %d, want 1 (mutual pair collapsed)", len(graph.Edges))
	}
	if !graph.Acyclic() {
		t.Error("graph must stay acyclic")
	}
	if len(report.Filter(SeverityWarning)) == 0 {
		t.Error("collapsing a mutual pair should warn")
	}
	for _, n := range graph.Nodes {
		if n.Independent {
			t.Errorf("%s participates in a pair and must not be independent", n.Change.Path)
		}
	}
}
