package semantic

import (
	"sort"
	"strings"

	"github.com/dkarlsen/scythe/pkg/parser"
)

// Binding is a resolved method identity: declaring type, name, and
// erased parameter types.
type Binding struct {
	DeclaringType string
	Name          string
	Params        []string
}

// Signature renders the binding for diagnostics.
func (b Binding) Signature() string {
	return b.DeclaringType + "." + b.Name + "(" + strings.Join(b.Params, ", ") + ")"
}

func sameParams(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Site is one declaration occurrence of a binding in the batch.
type Site struct {
	Path   string
	Type   *Type
	Method *Method
}

// Resolver answers binding questions over one batch of files. It is
// built once per pipeline run and read-only afterwards.
type Resolver struct {
	files []*FileSymbols

	kinds        map[string]TypeKind
	methods      map[string][]Method // type name -> merged method list
	implements   map[string][]string // class -> interfaces it implements
	implementers map[string][]string // interface -> implementing classes
}

// NewResolver indexes a batch of extracted files.
func NewResolver(files []*FileSymbols) *Resolver {
	r := &Resolver{
		files:        files,
		kinds:        make(map[string]TypeKind),
		methods:      make(map[string][]Method),
		implements:   make(map[string][]string),
		implementers: make(map[string][]string),
	}

	for _, f := range files {
		if f == nil {
			continue
		}
		for i := range f.Types {
			t := &f.Types[i]
			r.kinds[t.Name] = t.Kind
			r.methods[t.Name] = append(r.methods[t.Name], t.Methods...)
			for _, iface := range t.Implements {
				r.addImplements(t.Name, iface)
			}
		}
	}

	// Go has no declared implements relation; recover it structurally.
	r.inferStructuralImplements()

	for _, classes := range r.implementers {
		sort.Strings(classes)
	}
	return r
}

func (r *Resolver) addImplements(class, iface string) {
	for _, existing := range r.implements[class] {
		if existing == iface {
			return
		}
	}
	r.implements[class] = append(r.implements[class], iface)
	r.implementers[iface] = append(r.implementers[iface], class)
}

// inferStructuralImplements marks a class as implementing an interface
// when every interface method has a structurally identical counterpart
// on the class. Only applied where no implements clause exists.
func (r *Resolver) inferStructuralImplements() {
	for _, f := range r.files {
		if f == nil || f.Language != parser.LangGo {
			continue
		}
		for i := range f.Types {
			t := &f.Types[i]
			if t.Kind != KindClass {
				continue
			}
			for ifaceName, kind := range r.kinds {
				if kind != KindInterface {
					continue
				}
				if r.satisfies(t.Name, ifaceName) {
					r.addImplements(t.Name, ifaceName)
				}
			}
		}
	}
}

func (r *Resolver) satisfies(class, iface string) bool {
	ifaceMethods := r.methods[iface]
	if len(ifaceMethods) == 0 {
		return false
	}
	for _, im := range ifaceMethods {
		found := false
		for _, cm := range r.methods[class] {
			if cm.Name == im.Name && sameParams(cm.Params, im.Params) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Kind reports whether a type name is known in the batch.
func (r *Resolver) Kind(name string) (TypeKind, bool) {
	k, ok := r.kinds[name]
	return k, ok
}

// ImplementedInterfaces returns the interfaces a class directly
// implements, restricted to interfaces declared in the batch.
func (r *Resolver) ImplementedInterfaces(class string) []string {
	var out []string
	for _, iface := range r.implements[class] {
		if k, ok := r.kinds[iface]; ok && k == KindInterface {
			out = append(out, iface)
		}
	}
	return out
}

// Implementers returns the batch classes implementing an interface.
func (r *Resolver) Implementers(iface string) []string {
	return r.implementers[iface]
}

// ResolveDeclaration produces the binding for a method declared on a type.
func (r *Resolver) ResolveDeclaration(t *Type, m *Method) Binding {
	return Binding{DeclaringType: t.Name, Name: m.Name, Params: m.Params}
}

// ResolveInvocation resolves a call site to the bindings it can reach.
// The first binding is the static target; further bindings cover
// dispatch through the implements relation in either direction, so a
// call through an interface reference also counts as use of every
// batch implementation, and a call on a class also counts as use of
// the matching interface member. Returns nil when the receiver type
// cannot be determined and the name+arity is ambiguous in the batch.
func (r *Resolver) ResolveInvocation(inv *Invocation) []Binding {
	receiver := inv.ReceiverType
	if receiver == "" && inv.ReceiverIdent != "" {
		// A bare identifier receiver naming a batch type is a static call.
		if _, ok := r.kinds[inv.ReceiverIdent]; ok {
			receiver = inv.ReceiverIdent
		}
	}

	if receiver != "" {
		if m, ok := r.findMethod(receiver, inv.Name, inv.Args); ok {
			primary := Binding{DeclaringType: receiver, Name: inv.Name, Params: m.Params}
			return append([]Binding{primary}, r.dispatchTargets(primary)...)
		}
		// Receiver known but method not declared on it in the batch:
		// the binding is outside the batch, treat as unresolved.
		return nil
	}

	return r.resolveByNameArity(inv.Name, inv.Args)
}

func (r *Resolver) findMethod(typeName, method string, args int) (Method, bool) {
	for _, m := range r.methods[typeName] {
		if m.Name == method && len(m.Params) == args {
			return m, true
		}
	}
	return Method{}, false
}

// dispatchTargets returns the counterpart bindings reachable from b
// through the implements relation: implementations when b is an
// interface member, the interface member when b sits on a class.
func (r *Resolver) dispatchTargets(b Binding) []Binding {
	var out []Binding
	if k, ok := r.kinds[b.DeclaringType]; ok && k == KindInterface {
		for _, class := range r.implementers[b.DeclaringType] {
			if m, ok := r.findExact(class, b.Name, b.Params); ok {
				out = append(out, Binding{DeclaringType: class, Name: b.Name, Params: m.Params})
			}
		}
		return out
	}
	for _, iface := range r.ImplementedInterfaces(b.DeclaringType) {
		if m, ok := r.findExact(iface, b.Name, b.Params); ok {
			out = append(out, Binding{DeclaringType: iface, Name: b.Name, Params: m.Params})
		}
	}
	return out
}

func (r *Resolver) findExact(typeName, method string, params []string) (Method, bool) {
	for _, m := range r.methods[typeName] {
		if m.Name == method && sameParams(m.Params, params) {
			return m, true
		}
	}
	return Method{}, false
}

// resolveByNameArity is the fallback for receivers whose type could
// not be inferred: if exactly one declaring type in the batch has a
// matching method, the call resolves there; otherwise it stays
// unresolved and contributes no usage.
func (r *Resolver) resolveByNameArity(name string, args int) []Binding {
	var match *Binding
	for typeName, methods := range r.methods {
		for _, m := range methods {
			if m.Name != name || len(m.Params) != args {
				continue
			}
			b := Binding{DeclaringType: typeName, Name: name, Params: m.Params}
			if match != nil && match.DeclaringType != typeName {
				return nil // ambiguous
			}
			if match == nil {
				match = &b
			}
		}
	}
	if match == nil {
		return nil
	}
	return append([]Binding{*match}, r.dispatchTargets(*match)...)
}

// Sites returns every declaration occurrence in the batch whose
// resolved binding equals b, in file order.
func (r *Resolver) Sites(b Binding) []Site {
	var sites []Site
	for _, f := range r.files {
		if f == nil {
			continue
		}
		for i := range f.Types {
			t := &f.Types[i]
			if t.Name != b.DeclaringType {
				continue
			}
			for j := range t.Methods {
				m := &t.Methods[j]
				if m.Name == b.Name && sameParams(m.Params, b.Params) {
					sites = append(sites, Site{Path: f.Path, Type: t, Method: m})
				}
			}
		}
	}
	return sites
}
