package cleanup

import (
	"github.com/dkarlsen/scythe/internal/semantic"
)

// coordinated is an interface-side declaration that must be removed in
// lock-step with the implementation-side candidate that triggered it.
type coordinated struct {
	decl      *Declaration
	candidate *Declaration
}

// expandOverrides finds every syntactically separate declaration that
// must go together with the candidate: members of the declaring type's
// directly implemented interfaces whose signature is structurally
// identical (same name, same erased parameter sequence, every position
// equal). An interface declared outside the batch yields no extra
// declaration; only the implementation is removed and a warning notes
// the stale interface member.
func expandOverrides(cand *Declaration, resolver *semantic.Resolver, report *Report) []coordinated {
	if cand.Type == nil || cand.Type.Kind != semantic.KindClass {
		return nil
	}

	var out []coordinated
	for _, iface := range cand.Type.Implements {
		if _, known := resolver.Kind(iface); !known {
			report.Add(SeverityWarning, cand.Path,
				"interface %s is outside the batch; removing only %s leaves its declaration of %s stale",
				iface, cand.Key.String(), cand.Key.Name)
			continue
		}

		binding := semantic.Binding{DeclaringType: iface, Name: cand.Key.Name, Params: cand.Key.Params}
		for _, site := range resolver.Sites(binding) {
			out = append(out, coordinated{
				decl: &Declaration{
					Key:    KeyOf(binding),
					Path:   site.Path,
					Node:   site.Method.Node,
					Type:   site.Type,
					Method: site.Method,
				},
				candidate: cand,
			})
		}
	}

	// Interfaces recovered structurally (no implements clause, Go).
	for _, iface := range resolver.ImplementedInterfaces(cand.Type.Name) {
		if declaresInterface(cand.Type, iface) {
			continue // already handled above
		}
		binding := semantic.Binding{DeclaringType: iface, Name: cand.Key.Name, Params: cand.Key.Params}
		for _, site := range resolver.Sites(binding) {
			out = append(out, coordinated{
				decl: &Declaration{
					Key:    KeyOf(binding),
					Path:   site.Path,
					Node:   site.Method.Node,
					Type:   site.Type,
					Method: site.Method,
				},
				candidate: cand,
			})
		}
	}

	return out
}

func declaresInterface(t *semantic.Type, iface string) bool {
	for _, name := range t.Implements {
		if name == iface {
			return true
		}
	}
	return false
}
