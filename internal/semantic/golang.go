package semantic

import (
	"strings"

	"github.com/dkarlsen/scythe/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// goExtractor maps Go's receiver methods and interface types onto the
// class/interface model. Go has no declared implements relation; the
// resolver computes it structurally over the batch.
type goExtractor struct{}

func (goExtractor) Extract(result *parser.Result) (*FileSymbols, error) {
	syms := &FileSymbols{Path: result.Path, Language: result.Language}
	src := result.Source
	root := result.Tree.RootNode()

	types := make(map[string]*Type)

	// Interface declarations and named struct types.
	parser.Walk(root, src, func(node *sitter.Node, source []byte) bool {
		if node.Type() != "type_spec" {
			return true
		}
		name := parser.NodeText(node.ChildByFieldName("name"), source)
		typ := node.ChildByFieldName("type")
		if name == "" || typ == nil {
			return true
		}
		switch typ.Type() {
		case "interface_type":
			t := &Type{Name: name, Kind: KindInterface, Node: node.Parent()}
			collectGoInterfaceMethods(typ, source, t)
			types[name] = t
		case "struct_type":
			types[name] = &Type{Name: name, Kind: KindClass, Node: node.Parent()}
		}
		return true
	})

	// Methods attach to their receiver's type.
	parser.Walk(root, src, func(node *sitter.Node, source []byte) bool {
		if node.Type() != "method_declaration" {
			return true
		}
		recvType := goReceiverType(node, source)
		if recvType == "" {
			return true
		}
		t, ok := types[recvType]
		if !ok {
			t = &Type{Name: recvType, Kind: KindClass}
			types[recvType] = t
		}
		t.Methods = append(t.Methods, Method{
			Name:   parser.NodeText(node.ChildByFieldName("name"), source),
			Params: goParamTypes(node.ChildByFieldName("parameters"), source),
			Node:   node,
		})

		env := goMethodEnv(node, source)
		collectGoInvocations(node.ChildByFieldName("body"), source, recvType, env, syms)
		return false
	})

	// Calls in plain functions.
	parser.Walk(root, src, func(node *sitter.Node, source []byte) bool {
		if node.Type() != "function_declaration" {
			return true
		}
		env := goMethodEnv(node, source)
		collectGoInvocations(node.ChildByFieldName("body"), source, "", env, syms)
		return false
	})

	for _, t := range types {
		syms.Types = append(syms.Types, *t)
	}
	return syms, nil
}

func collectGoInterfaceMethods(ifaceType *sitter.Node, src []byte, t *Type) {
	for i := range int(ifaceType.NamedChildCount()) {
		child := ifaceType.NamedChild(i)
		// grammar revisions name this node method_spec or method_elem
		if child.Type() != "method_spec" && child.Type() != "method_elem" {
			continue
		}
		t.Methods = append(t.Methods, Method{
			Name:   parser.NodeText(child.ChildByFieldName("name"), src),
			Params: goParamTypes(child.ChildByFieldName("parameters"), src),
			Node:   child,
		})
	}
}

func goReceiverType(method *sitter.Node, src []byte) string {
	recv := method.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	for i := range int(recv.NamedChildCount()) {
		p := recv.NamedChild(i)
		if p.Type() != "parameter_declaration" {
			continue
		}
		if typ := p.ChildByFieldName("type"); typ != nil {
			return Erase(strings.TrimPrefix(parser.NodeText(typ, src), "*"))
		}
	}
	return ""
}

func goParamTypes(params *sitter.Node, src []byte) []string {
	if params == nil {
		return nil
	}
	var types []string
	for i := range int(params.NamedChildCount()) {
		p := params.NamedChild(i)
		if p.Type() != "parameter_declaration" && p.Type() != "variadic_parameter_declaration" {
			continue
		}
		typ := p.ChildByFieldName("type")
		if typ == nil {
			continue
		}
		erased := Erase(strings.TrimPrefix(parser.NodeText(typ, src), "[]"))

		// one parameter_declaration may bind several names to one type
		names := 0
		for j := range int(p.NamedChildCount()) {
			if p.NamedChild(j).Type() == "identifier" {
				names++
			}
		}
		if names == 0 {
			names = 1
		}
		for range names {
			types = append(types, erased)
		}
	}
	return types
}

// goMethodEnv maps identifiers to type names: the receiver, typed
// parameters, var declarations, and composite-literal short decls.
func goMethodEnv(fn *sitter.Node, src []byte) map[string]string {
	env := make(map[string]string)

	if recv := fn.ChildByFieldName("receiver"); recv != nil {
		for i := range int(recv.NamedChildCount()) {
			p := recv.NamedChild(i)
			if p.Type() != "parameter_declaration" {
				continue
			}
			name := parser.NodeText(p.ChildByFieldName("name"), src)
			typ := goReceiverType(fn, src)
			if name != "" && typ != "" {
				env[name] = typ
			}
		}
	}

	if params := fn.ChildByFieldName("parameters"); params != nil {
		for i := range int(params.NamedChildCount()) {
			p := params.NamedChild(i)
			if p.Type() != "parameter_declaration" {
				continue
			}
			typ := p.ChildByFieldName("type")
			if typ == nil {
				continue
			}
			erased := Erase(strings.TrimPrefix(parser.NodeText(typ, src), "*"))
			for j := range int(p.NamedChildCount()) {
				if c := p.NamedChild(j); c.Type() == "identifier" {
					env[parser.NodeText(c, src)] = erased
				}
			}
		}
	}

	body := fn.ChildByFieldName("body")
	if body == nil {
		return env
	}

	parser.Walk(body, src, func(n *sitter.Node, s []byte) bool {
		switch n.Type() {
		case "var_spec":
			typ := n.ChildByFieldName("type")
			if typ == nil {
				return true
			}
			erased := Erase(strings.TrimPrefix(parser.NodeText(typ, s), "*"))
			for j := range int(n.NamedChildCount()) {
				if c := n.NamedChild(j); c.Type() == "identifier" {
					env[parser.NodeText(c, s)] = erased
				}
			}
		case "short_var_declaration":
			left := n.ChildByFieldName("left")
			right := n.ChildByFieldName("right")
			if left == nil || right == nil {
				return true
			}
			if left.NamedChildCount() != 1 || right.NamedChildCount() != 1 {
				return true
			}
			name := parser.NodeText(left.NamedChild(0), s)
			if typ := goLiteralType(right.NamedChild(0), s); name != "" && typ != "" {
				env[name] = typ
			}
		}
		return true
	})

	return env
}

// goLiteralType infers the type of `Foo{...}` and `&Foo{...}`.
func goLiteralType(expr *sitter.Node, src []byte) string {
	if expr == nil {
		return ""
	}
	if expr.Type() == "unary_expression" {
		if operand := expr.ChildByFieldName("operand"); operand != nil {
			return goLiteralType(operand, src)
		}
	}
	if expr.Type() == "composite_literal" {
		return Erase(parser.NodeText(expr.ChildByFieldName("type"), src))
	}
	return ""
}

func collectGoInvocations(body *sitter.Node, src []byte, enclosing string, env map[string]string, syms *FileSymbols) {
	if body == nil {
		return
	}

	parser.Walk(body, src, func(n *sitter.Node, s []byte) bool {
		if n.Type() != "call_expression" {
			return true
		}

		fn := n.ChildByFieldName("function")
		if fn == nil || fn.Type() != "selector_expression" {
			return true
		}

		inv := Invocation{
			Name:          parser.NodeText(fn.ChildByFieldName("field"), s),
			Args:          countArgs(n.ChildByFieldName("arguments")),
			EnclosingType: enclosing,
			Node:          n,
		}

		operand := fn.ChildByFieldName("operand")
		if operand != nil && operand.Type() == "identifier" {
			ident := parser.NodeText(operand, s)
			if typ, ok := env[ident]; ok {
				inv.ReceiverType = typ
			} else {
				inv.ReceiverIdent = ident
			}
		}

		if inv.Name != "" {
			syms.Invocations = append(syms.Invocations, inv)
		}
		return true
	})
}
