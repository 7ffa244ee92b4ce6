package fileproc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/dkarlsen/scythe/pkg/parser"
)

func writeFiles(t *testing.T, files map[string]string) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		paths = append(paths, path)
	}
	return dir, paths
}

func TestMapFilesWithContextPreservesOrder(t *testing.T) {
	_, paths := writeFiles(t, map[string]string{
		"a.go": "package a\n",
		"b.go": "package b\n",
		"c.go": "package c\n",
	})

	results, errs := MapFilesWithContext(context.Background(), paths, 2, func(p *parser.Parser, path string) (string, error) {
		return filepath.Base(path), nil
	}, nil)
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(results) != len(paths) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(paths))
	}
	for i, path := range paths {
		if results[i] != filepath.Base(path) {
			t.Errorf("results[%d] = %s, want %s", i, results[i], filepath.Base(path))
		}
	}
}

func TestMapFilesWithContextCollectsErrors(t *testing.T) {
	_, paths := writeFiles(t, map[string]string{
		"a.go": "package a\n",
		"b.go": "package b\n",
	})

	boom := errors.New("bad file")
	results, errs := MapFilesWithContext(context.Background(), paths, 0, func(p *parser.Parser, path string) (string, error) {
		if filepath.Base(path) == "b.go" {
			return "", boom
		}
		return "ok", nil
	}, nil)

	if errs == nil || !errs.HasErrors() {
		t.Fatal("expected collected errors")
	}
	if len(errs.Errors) != 1 || filepath.Base(errs.Errors[0].Path) != "b.go" {
		t.Errorf("errors = %v", errs.Errors)
	}
	if len(results) != 2 {
		t.Errorf("failed slot should stay in place, got %d results", len(results))
	}
}

func TestMapFilesWithContextProgress(t *testing.T) {
	_, paths := writeFiles(t, map[string]string{
		"a.go": "package a\n",
		"b.go": "package b\n",
		"c.go": "package c\n",
	})

	var ticks atomic.Int64
	_, errs := MapFilesWithContext(context.Background(), paths, 1, func(p *parser.Parser, path string) (struct{}, error) {
		return struct{}{}, nil
	}, func() { ticks.Add(1) })
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if got := ticks.Load(); got != int64(len(paths)) {
		t.Errorf("progress ticks = %d, want %d", got, len(paths))
	}
}

func TestMapFilesWithContextCancellation(t *testing.T) {
	_, paths := writeFiles(t, map[string]string{
		"a.go": "package a\n",
		"b.go": "package b\n",
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, errs := MapFilesWithContext(ctx, paths, 1, func(p *parser.Parser, path string) (struct{}, error) {
		return struct{}{}, nil
	}, nil)
	if errs == nil || !errs.HasErrors() {
		t.Fatal("canceled context should surface as errors")
	}
}

func TestMapFilesEmptyInput(t *testing.T) {
	results, errs := MapFilesWithContext(context.Background(), nil, 0, func(p *parser.Parser, path string) (int, error) {
		return 0, nil
	}, nil)
	if results != nil || errs != nil {
		t.Error("empty input should short-circuit")
	}
}

func TestParseBatch(t *testing.T) {
	_, paths := writeFiles(t, map[string]string{
		"Order.java": "class Order {\n    void total() {\n    }\n}\n",
		"app.ts":     "class App {\n    run(): void {\n    }\n}\n",
	})

	contexts, errs := ParseBatch(context.Background(), paths, 2, nil)
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(contexts) != 2 {
		t.Fatalf("len(contexts) = %d, want 2", len(contexts))
	}
	for i, fc := range contexts {
		if fc.Path != paths[i] {
			t.Errorf("contexts[%d].Path = %s, want %s", i, fc.Path, paths[i])
		}
		if fc.Tree == nil {
			t.Errorf("contexts[%d].Tree is nil", i)
		}
	}
}

func TestParseBatchKeepsFailedSlot(t *testing.T) {
	dir, paths := writeFiles(t, map[string]string{
		"Order.java": "class Order {}\n",
	})
	missing := filepath.Join(dir, "gone.java")
	paths = append(paths, missing)

	contexts, errs := ParseBatch(context.Background(), paths, 1, nil)
	if errs == nil || !errs.HasErrors() {
		t.Fatal("missing file should be recorded as an error")
	}
	if len(contexts) != 2 {
		t.Fatalf("len(contexts) = %d, want 2", len(contexts))
	}
	if contexts[1].Path != missing {
		t.Errorf("failed slot path = %s, want %s", contexts[1].Path, missing)
	}
	if contexts[1].Tree != nil {
		t.Error("failed slot should have a nil tree")
	}
}

func TestWorkers(t *testing.T) {
	if got := Workers(4); got != 4 {
		t.Errorf("Workers(4) = %d", got)
	}
	if got := Workers(0); got <= 0 {
		t.Errorf("Workers(0) = %d, want positive default", got)
	}
}

func TestProcessingErrorsError(t *testing.T) {
	errs := &ProcessingErrors{}
	if errs.Error() != "no errors" {
		t.Errorf("empty Error() = %q", errs.Error())
	}
	errs.Add("a.go", errors.New("boom"))
	if errs.Error() != "a.go: boom" {
		t.Errorf("single Error() = %q", errs.Error())
	}
	errs.Add("b.go", errors.New("bang"))
	if errs.Error() == "a.go: boom" {
		t.Error("multi-error summary expected")
	}
}
