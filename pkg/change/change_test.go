package change

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditScriptIdempotentAppend(t *testing.T) {
	src := []byte("line one\nline two\nline three\n")
	s := NewEditScript("a.java", src)

	edit := TextEdit{StartByte: 9, EndByte: 18, StartLine: 2, EndLine: 2}
	require.NoError(t, s.RemoveRange(edit))
	require.NoError(t, s.RemoveRange(edit))

	assert.Equal(t, 1, s.Len())
}

func TestEditScriptRejectsOutOfBounds(t *testing.T) {
	s := NewEditScript("a.java", []byte("short"))

	err := s.RemoveRange(TextEdit{StartByte: 0, EndByte: 100})
	assert.Error(t, err)

	err = s.RemoveRange(TextEdit{StartByte: 4, EndByte: 2})
	assert.Error(t, err)
}

func TestRealizeSortsEdits(t *testing.T) {
	src := []byte("aaaa bbbb cccc dddd\n")
	s := NewEditScript("a.java", src)

	require.NoError(t, s.RemoveRange(TextEdit{StartByte: 10, EndByte: 15}))
	require.NoError(t, s.RemoveRange(TextEdit{StartByte: 0, EndByte: 5}))

	fc, err := s.Realize()
	require.NoError(t, err)
	require.Len(t, fc.Edits, 2)
	assert.Equal(t, uint32(0), fc.Edits[0].StartByte)
	assert.Equal(t, uint32(10), fc.Edits[1].StartByte)
}

func TestRealizeDetectsOverlap(t *testing.T) {
	src := []byte("aaaa bbbb cccc\n")
	s := NewEditScript("a.java", src)

	require.NoError(t, s.RemoveRange(TextEdit{StartByte: 0, EndByte: 8}))
	require.NoError(t, s.RemoveRange(TextEdit{StartByte: 5, EndByte: 12}))

	_, err := s.Realize()
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	src := []byte("keep1 DROP keep2 DROP2 keep3")
	s := NewEditScript("a.java", src)

	require.NoError(t, s.RemoveRange(TextEdit{StartByte: 6, EndByte: 11})) // "DROP "
	require.NoError(t, s.RemoveRange(TextEdit{StartByte: 17, EndByte: 23})) // "DROP2 "

	fc, err := s.Realize()
	require.NoError(t, err)

	out, err := fc.Apply(src)
	require.NoError(t, err)
	assert.Equal(t, "keep1 keep2 keep3", string(out))
}

func TestApplyStaleSource(t *testing.T) {
	src := []byte("original content\n")
	s := NewEditScript("a.java", src)
	require.NoError(t, s.RemoveRange(TextEdit{StartByte: 0, EndByte: 9}))

	fc, err := s.Realize()
	require.NoError(t, err)

	_, err = fc.Apply([]byte("modified content\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stale")
}

func TestCompositeNormalize(t *testing.T) {
	var empty Composite
	assert.Nil(t, empty.Normalize())

	var nilComposite *Composite
	assert.Nil(t, nilComposite.Normalize())

	var c Composite
	c.Append(FileChange{Path: "a.java", Edits: []TextEdit{{StartByte: 0, EndByte: 1}}})
	require.NotNil(t, c.Normalize())
	assert.Equal(t, 1, c.EditCount())
}

func TestCompositeSkipsEmptyChanges(t *testing.T) {
	var c Composite
	c.Append(FileChange{Path: "a.java"})
	assert.Nil(t, c.Normalize())
}

func TestGraphEdges(t *testing.T) {
	var g Graph
	iface := g.AddNode(Node{Change: FileChange{Path: "IService.java"}, Independent: false})
	impl := g.AddNode(Node{Change: FileChange{Path: "ServiceImpl.java"}, Independent: false})
	other := g.AddNode(Node{Change: FileChange{Path: "Other.java"}, Independent: true})

	require.NoError(t, g.AddEdge(iface, impl))

	assert.Equal(t, []int{impl}, g.Dependents(iface))
	assert.Empty(t, g.Dependents(other))
	assert.True(t, g.Acyclic())
}

func TestGraphRejectsBackwardEdge(t *testing.T) {
	var g Graph
	a := g.AddNode(Node{})
	b := g.AddNode(Node{})

	assert.Error(t, g.AddEdge(b, a))
	assert.Error(t, g.AddEdge(a, a))
	assert.Error(t, g.AddEdge(a, 5))
}

func TestTransitiveDependents(t *testing.T) {
	var g Graph
	a := g.AddNode(Node{})
	b := g.AddNode(Node{})
	c := g.AddNode(Node{})
	d := g.AddNode(Node{})

	require.NoError(t, g.AddEdge(a, b))
	require.NoError(t, g.AddEdge(b, c))

	assert.Equal(t, []int{b, c}, g.TransitiveDependents(a))
	assert.Empty(t, g.TransitiveDependents(d))
}

func TestGraphComposite(t *testing.T) {
	var g Graph
	g.AddNode(Node{Change: FileChange{Path: "a.java", Edits: []TextEdit{{StartByte: 0, EndByte: 1}}}})
	g.AddNode(Node{Change: FileChange{Path: "b.java", Edits: []TextEdit{{StartByte: 2, EndByte: 3}}}})

	c := g.Composite()
	require.NotNil(t, c)
	assert.Len(t, c.Changes, 2)
	assert.Equal(t, "a.java", c.Changes[0].Path)

	var emptyGraph Graph
	assert.Nil(t, emptyGraph.Composite())
}
