// Package change models the text edits scythe schedules against source files.
package change

import (
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/zeebo/blake3"
)

// TextEdit removes the byte range [StartByte, EndByte) from a file.
// Positions are valid only against the exact source text recorded by
// the owning script's checksum.
type TextEdit struct {
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line"`
	EndLine   uint32 `json:"end_line"`
}

// Checksum returns the hex-encoded blake3 digest of source.
func Checksum(source []byte) string {
	sum := blake3.Sum256(source)
	return hex.EncodeToString(sum[:])
}

// EditScript accumulates removal operations against one file.
// Appending the same span twice is a no-op.
type EditScript struct {
	path     string
	checksum string
	size     uint32
	ops      map[[2]uint32]TextEdit
}

// NewEditScript creates an edit script bound to the given source text.
func NewEditScript(path string, source []byte) *EditScript {
	return &EditScript{
		path:     path,
		checksum: Checksum(source),
		size:     uint32(len(source)),
		ops:      make(map[[2]uint32]TextEdit),
	}
}

// Path returns the file the script edits.
func (s *EditScript) Path() string { return s.path }

// Len returns the number of distinct removal operations.
func (s *EditScript) Len() int { return len(s.ops) }

// RemoveRange schedules removal of a byte range. Idempotent per span.
func (s *EditScript) RemoveRange(edit TextEdit) error {
	if edit.StartByte > edit.EndByte {
		return fmt.Errorf("%s: inverted edit range [%d, %d)", s.path, edit.StartByte, edit.EndByte)
	}
	if edit.EndByte > s.size {
		return fmt.Errorf("%s: edit range [%d, %d) exceeds source size %d", s.path, edit.StartByte, edit.EndByte, s.size)
	}
	s.ops[[2]uint32{edit.StartByte, edit.EndByte}] = edit
	return nil
}

// Realize converts the script into an immutable FileChange with edits
// sorted by start position. Overlapping edits are a builder invariant
// violation and reported as an error.
func (s *EditScript) Realize() (FileChange, error) {
	edits := make([]TextEdit, 0, len(s.ops))
	for _, op := range s.ops {
		edits = append(edits, op)
	}
	sort.Slice(edits, func(i, j int) bool {
		if edits[i].StartByte != edits[j].StartByte {
			return edits[i].StartByte < edits[j].StartByte
		}
		return edits[i].EndByte < edits[j].EndByte
	})

	for i := 1; i < len(edits); i++ {
		if edits[i].StartByte < edits[i-1].EndByte {
			return FileChange{}, fmt.Errorf("%s: overlapping edits [%d, %d) and [%d, %d)",
				s.path, edits[i-1].StartByte, edits[i-1].EndByte, edits[i].StartByte, edits[i].EndByte)
		}
	}

	return FileChange{Path: s.path, Checksum: s.checksum, Edits: edits}, nil
}

// FileChange is a realized, position-based edit set for one file.
type FileChange struct {
	Path     string     `json:"path"`
	Checksum string     `json:"checksum"`
	Edits    []TextEdit `json:"edits"`
}

// Empty reports whether the change carries no edits.
func (c FileChange) Empty() bool { return len(c.Edits) == 0 }

// Apply applies the edits to source and returns the result.
// The source must be byte-identical to the text the edits were computed
// against; a checksum mismatch means the positions are stale.
func (c FileChange) Apply(source []byte) ([]byte, error) {
	if got := Checksum(source); got != c.Checksum {
		return nil, fmt.Errorf("%s: source changed since analysis (stale edit positions)", c.Path)
	}

	out := make([]byte, len(source))
	copy(out, source)

	// Edits are sorted ascending and non-overlapping; apply back to front
	// so earlier positions stay valid.
	for i := len(c.Edits) - 1; i >= 0; i-- {
		e := c.Edits[i]
		if e.EndByte > uint32(len(out)) {
			return nil, fmt.Errorf("%s: edit range [%d, %d) out of bounds", c.Path, e.StartByte, e.EndByte)
		}
		out = append(out[:e.StartByte], out[e.EndByte:]...)
	}
	return out, nil
}

// Composite is the ordered bundle of file-level changes produced by one
// pipeline run. Order is the order files were processed.
type Composite struct {
	Changes []FileChange `json:"changes"`
}

// Append adds a file-level change, skipping empty ones.
func (c *Composite) Append(fc FileChange) {
	if fc.Empty() {
		return
	}
	c.Changes = append(c.Changes, fc)
}

// Normalize returns nil for an empty composite so callers see "no
// change" rather than an empty result.
func (c *Composite) Normalize() *Composite {
	if c == nil || len(c.Changes) == 0 {
		return nil
	}
	return c
}

// EditCount returns the total number of edits across all files.
func (c *Composite) EditCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, fc := range c.Changes {
		n += len(fc.Edits)
	}
	return n
}
