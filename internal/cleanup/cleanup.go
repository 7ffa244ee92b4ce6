// Package cleanup detects methods that are declared but never invoked
// across a batch of parsed source files and builds the edits that
// remove them, together with the interface declarations they satisfy.
package cleanup

import (
	"context"
	"fmt"

	"github.com/dkarlsen/scythe/internal/semantic"
	"github.com/dkarlsen/scythe/pkg/change"
	"github.com/dkarlsen/scythe/pkg/config"
	"github.com/dkarlsen/scythe/pkg/parser"
)

// FileContext is one file of the batch. Tree may be nil for files the
// parser skipped; they contribute nothing and produce no edits.
type FileContext struct {
	Path string
	Tree *parser.Result
}

// Cleanup is the unused-method removal pass. A single value may run
// many batches; each run produces a fresh report.
type Cleanup struct {
	cfg    *config.Config
	report *Report
}

func New(cfg *config.Config) *Cleanup {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Cleanup{cfg: cfg, report: &Report{}}
}

// Report returns the statuses accumulated by the most recent run.
func (c *Cleanup) Report() Report { return *c.report }

// RequiresRecomputeAfterSelection reports whether byte positions in a
// computed change set survive a partial selection. They do not: edits
// are absolute offsets into the sources they were computed from, so
// after the user rejects part of a change set the remainder must be
// recomputed before application.
func (c *Cleanup) RequiresRecomputeAfterSelection() bool { return true }

// ComputeChanges runs detection over the batch and returns the edits
// removing every unused method, at most one file change per file.
// Returns (nil, nil) when cleanup is disabled or nothing is removable.
// Cancellation mid-run yields no partial composite.
func (c *Cleanup) ComputeChanges(ctx context.Context, contexts []FileContext) (*change.Composite, error) {
	builder, _, err := c.run(ctx, contexts)
	if err != nil || builder == nil {
		return nil, err
	}
	return aggregate(ctx, builder)
}

// ComputeIndependentChanges is ComputeChanges with per-file change
// granularity: the result graph marks which file changes can be
// accepted in isolation and which depend on another file's change
// being accepted too.
func (c *Cleanup) ComputeIndependentChanges(ctx context.Context, contexts []FileContext) (*change.Graph, error) {
	builder, pairs, err := c.run(ctx, contexts)
	if err != nil || builder == nil {
		return nil, err
	}
	return aggregateGraph(ctx, builder, pairs, c.report)
}

// NewController wraps a graph computed by this Cleanup so callers can
// drive selection and recomputation. contexts must supply fresh trees
// when recomputing.
func (c *Cleanup) NewController(graph *change.Graph, refresh func(ctx context.Context, paths []string) ([]FileContext, error)) (*Controller, error) {
	var recompute RecomputeFunc
	if refresh != nil {
		recompute = func(ctx context.Context, paths []string) (*change.Composite, error) {
			fresh, err := refresh(ctx, paths)
			if err != nil {
				return nil, err
			}
			return c.ComputeChanges(ctx, fresh)
		}
	}
	return NewController(graph, recompute)
}

// run performs extraction, resolution, collection, detection and edit
// building. Returns a nil builder when the pass is disabled or the
// batch is empty.
func (c *Cleanup) run(ctx context.Context, contexts []FileContext) (*editBuilder, []filePair, error) {
	c.report = &Report{}

	if !c.cfg.Cleanup.Enabled || len(contexts) == 0 {
		return nil, nil, nil
	}

	files := make([]*semantic.FileSymbols, 0, len(contexts))
	sources := make(map[string][]byte, len(contexts))
	for _, fc := range contexts {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if fc.Tree == nil {
			c.report.Add(SeverityInfo, fc.Path, "no parse tree; skipped")
			continue
		}
		syms, err := c.extract(fc)
		if err != nil {
			c.report.Add(SeverityWarning, fc.Path, "symbol extraction failed: %v", err)
			continue
		}
		syms.Path = fc.Path
		files = append(files, syms)
		sources[fc.Path] = fc.Tree.Source
	}
	if len(files) == 0 {
		return nil, nil, nil
	}

	resolver := semantic.NewResolver(files)

	coll, err := collect(ctx, files, resolver, c.report)
	if err != nil {
		return nil, nil, err
	}

	candidates := detectUnused(coll)
	if len(candidates) == 0 {
		return nil, nil, nil
	}

	builder := newEditBuilder(sources)
	var pairs []filePair
	for _, cand := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if !c.cfg.Cleanup.RemoveInterfaceMembers && cand.Type.Kind == semantic.KindInterface {
			continue
		}
		if err := builder.remove(cand); err != nil {
			return nil, nil, err
		}
		if !c.cfg.Cleanup.RemoveInterfaceMembers {
			continue
		}
		for _, co := range expandOverrides(cand, resolver, c.report) {
			if err := builder.remove(co.decl); err != nil {
				return nil, nil, err
			}
			pairs = append(pairs, filePair{
				interfacePath: co.decl.Path,
				implPath:      co.candidate.Path,
			})
		}
	}

	return builder, pairs, nil
}

// extract runs the language extractor for one file, converting a
// grammar-level panic into a per-file error so a single malformed tree
// cannot take down the batch.
func (c *Cleanup) extract(fc FileContext) (syms *semantic.FileSymbols, err error) {
	defer func() {
		if r := recover(); r != nil {
			syms = nil
			err = fmt.Errorf("extractor panic: %v", r)
		}
	}()

	ext := semantic.ForLanguage(fc.Tree.Language)
	if ext == nil {
		return nil, fmt.Errorf("unsupported language %s", fc.Tree.Language)
	}
	return ext.Extract(fc.Tree)
}
