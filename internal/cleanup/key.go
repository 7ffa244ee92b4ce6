package cleanup

import (
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/dkarlsen/scythe/internal/semantic"
)

// Key is the canonical identity of a method signature: declaring type,
// name, and erased parameter types. Two declarations with the same key
// are the same symbol for usage analysis.
type Key struct {
	DeclaringType string
	Name          string
	Params        []string
}

// KeyOf derives the key for a resolved binding. A binding without a
// declaring type yields an empty-string prefix; accepted, but such
// keys collide aggressively and callers should avoid producing them.
func KeyOf(b semantic.Binding) Key {
	return Key{DeclaringType: b.DeclaringType, Name: b.Name, Params: b.Params}
}

// String renders the key in a stable, unambiguous form.
func (k Key) String() string {
	var b strings.Builder
	b.WriteString(k.DeclaringType)
	b.WriteByte('#')
	b.WriteString(k.Name)
	b.WriteByte('(')
	for i, p := range k.Params {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p)
	}
	b.WriteByte(')')
	return b.String()
}

// Hash returns a deterministic 64-bit digest of the key. It is the
// identity the interner buckets on.
func (k Key) Hash() uint64 {
	return xxhash.Sum64String(k.String())
}

// Interner maps key digests to dense uint32 ids so set algebra over
// keys can run on bitmaps. Ids are assigned in first-seen order.
type Interner struct {
	ids map[uint64]uint32
}

// NewInterner creates an empty interner.
func NewInterner() *Interner {
	return &Interner{ids: make(map[uint64]uint32)}
}

// Intern returns the id for k, assigning the next free id on first use.
func (in *Interner) Intern(k Key) uint32 {
	h := k.Hash()
	if id, ok := in.ids[h]; ok {
		return id
	}
	id := uint32(len(in.ids))
	in.ids[h] = id
	return id
}

// Lookup returns the id for k without assigning one.
func (in *Interner) Lookup(k Key) (uint32, bool) {
	id, ok := in.ids[k.Hash()]
	return id, ok
}

// Len returns the number of interned keys.
func (in *Interner) Len() int {
	return len(in.ids)
}
