package cleanup

import (
	"fmt"

	"github.com/dkarlsen/scythe/pkg/change"
	sitter "github.com/smacker/go-tree-sitter"
)

// editBuilder maintains exactly one edit script per file. Scripts are
// created lazily on first edit and are the unique mutation point for
// that file's removals; appending the same node twice is a no-op.
type editBuilder struct {
	sources map[string][]byte
	scripts map[string]*change.EditScript
	order   []string // first-edit order per file
}

func newEditBuilder(sources map[string][]byte) *editBuilder {
	return &editBuilder{
		sources: sources,
		scripts: make(map[string]*change.EditScript),
	}
}

// remove schedules removal of a declaration's node, extended to whole
// lines where the node owns them.
func (b *editBuilder) remove(d *Declaration) error {
	script, ok := b.scripts[d.Path]
	if !ok {
		source, haveSource := b.sources[d.Path]
		if !haveSource {
			return fmt.Errorf("no source recorded for %s", d.Path)
		}
		script = change.NewEditScript(d.Path, source)
		b.scripts[d.Path] = script
		b.order = append(b.order, d.Path)
	}

	return script.RemoveRange(removalSpan(d.Node, b.sources[d.Path]))
}

// removalSpan widens a node's byte range to swallow its leading
// indentation and trailing newline, but only when the node is alone on
// its lines. A declaration sharing a line with other tokens is removed
// without touching them.
func removalSpan(node *sitter.Node, source []byte) change.TextEdit {
	start := node.StartByte()
	end := node.EndByte()

	lineStart := start
	for lineStart > 0 && (source[lineStart-1] == ' ' || source[lineStart-1] == '\t') {
		lineStart--
	}
	ownsLineStart := lineStart == 0 || source[lineStart-1] == '\n'

	lineEnd := end
	for lineEnd < uint32(len(source)) && (source[lineEnd] == ' ' || source[lineEnd] == '\t') {
		lineEnd++
	}
	ownsLineEnd := lineEnd >= uint32(len(source)) || source[lineEnd] == '\n'

	if ownsLineStart && ownsLineEnd {
		start = lineStart
		end = lineEnd
		if end < uint32(len(source)) {
			end++ // the trailing newline
		}
	}

	return change.TextEdit{
		StartByte: start,
		EndByte:   end,
		StartLine: node.StartPoint().Row + 1,
		EndLine:   node.EndPoint().Row + 1,
	}
}
