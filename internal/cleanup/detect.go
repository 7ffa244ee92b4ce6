package cleanup

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

// detectUnused returns every declaration whose key has no invocation
// anywhere in the batch. Results are ordered by file then node start
// position so output is reproducible for identical input.
func detectUnused(c *collection) []*Declaration {
	declaredIDs := roaring.New()
	for _, perFile := range c.declared {
		for id := range perFile {
			declaredIDs.Add(id)
		}
	}

	unusedIDs := roaring.AndNot(declaredIDs, c.invoked)
	if unusedIDs.IsEmpty() {
		return nil
	}

	var candidates []*Declaration
	for _, path := range c.files {
		for id, decl := range c.declared[path] {
			if unusedIDs.Contains(id) {
				candidates = append(candidates, decl)
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Path != candidates[j].Path {
			return candidates[i].Path < candidates[j].Path
		}
		return candidates[i].Node.StartByte() < candidates[j].Node.StartByte()
	})

	return candidates
}
