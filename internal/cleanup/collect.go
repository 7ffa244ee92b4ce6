package cleanup

import (
	"context"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/dkarlsen/scythe/internal/semantic"
	sitter "github.com/smacker/go-tree-sitter"
)

// Declaration is a located, bound method-declaration occurrence
// attributed to one file. Read-only after collection.
type Declaration struct {
	Key    Key
	Path   string
	Node   *sitter.Node
	Type   *semantic.Type
	Method *semantic.Method
}

// collection holds the two maps the detector operates on: declarations
// keyed per file by interned key id, and the global invoked-key set.
// The invoked bitmap is accumulated during collection and never
// mutated afterwards.
type collection struct {
	interner *Interner
	resolver *semantic.Resolver

	// path -> key id -> declaration; within one file the last writer
	// wins, duplicates across files register independently.
	declared map[string]map[uint32]*Declaration
	files    []string // file processing order
	invoked  *roaring.Bitmap
}

// collect walks every file's symbols once, registering declarations
// and invocations. Files are processed in caller order; cancellation
// is honored between files.
func collect(ctx context.Context, files []*semantic.FileSymbols, resolver *semantic.Resolver, report *Report) (*collection, error) {
	c := &collection{
		interner: NewInterner(),
		resolver: resolver,
		declared: make(map[string]map[uint32]*Declaration),
		invoked:  roaring.New(),
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if f == nil {
			continue
		}
		c.collectFile(f, report)
	}

	return c, nil
}

func (c *collection) collectFile(f *semantic.FileSymbols, report *Report) {
	perFile, ok := c.declared[f.Path]
	if !ok {
		perFile = make(map[uint32]*Declaration)
		c.declared[f.Path] = perFile
		c.files = append(c.files, f.Path)
	}

	for i := range f.Types {
		t := &f.Types[i]
		for j := range t.Methods {
			m := &t.Methods[j]
			if m.Constructor || m.Name == "" || m.Node == nil {
				continue
			}
			binding := c.resolver.ResolveDeclaration(t, m)
			id := c.interner.Intern(KeyOf(binding))
			perFile[id] = &Declaration{
				Key:    KeyOf(binding),
				Path:   f.Path,
				Node:   m.Node,
				Type:   t,
				Method: m,
			}
		}
	}

	unresolved := 0
	for i := range f.Invocations {
		bindings := c.resolver.ResolveInvocation(&f.Invocations[i])
		if bindings == nil {
			unresolved++
			continue
		}
		for _, b := range bindings {
			c.invoked.Add(c.interner.Intern(KeyOf(b)))
		}
	}
	if unresolved > 0 {
		report.Add(SeverityInfo, f.Path, "%d invocation(s) with unresolvable bindings excluded from analysis", unresolved)
	}
}
