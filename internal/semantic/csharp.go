package semantic

import (
	"github.com/dkarlsen/scythe/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

type csharpExtractor struct{}

func (csharpExtractor) Extract(result *parser.Result) (*FileSymbols, error) {
	syms := &FileSymbols{Path: result.Path, Language: result.Language}
	src := result.Source

	parser.Walk(result.Tree.RootNode(), src, func(node *sitter.Node, source []byte) bool {
		switch node.Type() {
		case "class_declaration":
			extractCSharpType(node, source, KindClass, syms)
		case "interface_declaration":
			extractCSharpType(node, source, KindInterface, syms)
		}
		return true
	})

	return syms, nil
}

func extractCSharpType(node *sitter.Node, src []byte, kind TypeKind, syms *FileSymbols) {
	name := parser.NodeText(node.ChildByFieldName("name"), src)
	if name == "" {
		return
	}

	t := Type{Name: name, Kind: kind, Node: node}

	// base_list covers both base classes and interfaces; the convention
	// of naming interfaces IFoo is not assumed — the resolver checks
	// whether each base name is actually an interface in the batch.
	if bases := node.ChildByFieldName("bases"); bases != nil {
		for i := range int(bases.NamedChildCount()) {
			base := bases.NamedChild(i)
			if text := Erase(parser.NodeText(base, src)); text != "" {
				t.Implements = append(t.Implements, text)
			}
		}
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		syms.Types = append(syms.Types, t)
		return
	}

	fields := csharpFieldEnv(body, src)

	for i := range int(body.NamedChildCount()) {
		child := body.NamedChild(i)
		switch child.Type() {
		case "method_declaration":
			t.Methods = append(t.Methods, csharpMethod(child, src, false))
			if kind == KindClass {
				collectCSharpInvocations(child, src, name, csharpMethodEnv(child, src, fields), syms)
			}
		case "constructor_declaration":
			t.Methods = append(t.Methods, csharpMethod(child, src, true))
			collectCSharpInvocations(child, src, name, csharpMethodEnv(child, src, fields), syms)
		}
	}

	syms.Types = append(syms.Types, t)
}

func csharpMethod(node *sitter.Node, src []byte, ctor bool) Method {
	return Method{
		Name:        parser.NodeText(node.ChildByFieldName("name"), src),
		Params:      csharpParamTypes(node.ChildByFieldName("parameters"), src),
		Constructor: ctor,
		Node:        node,
	}
}

func csharpParamTypes(params *sitter.Node, src []byte) []string {
	if params == nil {
		return nil
	}
	var types []string
	for i := range int(params.NamedChildCount()) {
		p := params.NamedChild(i)
		if p.Type() != "parameter" {
			continue
		}
		if typ := p.ChildByFieldName("type"); typ != nil {
			types = append(types, Erase(parser.NodeText(typ, src)))
		}
	}
	return types
}

func csharpFieldEnv(body *sitter.Node, src []byte) map[string]string {
	env := make(map[string]string)
	for i := range int(body.NamedChildCount()) {
		child := body.NamedChild(i)
		switch child.Type() {
		case "field_declaration":
			parser.Walk(child, src, func(n *sitter.Node, s []byte) bool {
				if n.Type() == "variable_declaration" {
					typ := Erase(parser.NodeText(n.ChildByFieldName("type"), s))
					for j := range int(n.NamedChildCount()) {
						d := n.NamedChild(j)
						if d.Type() == "variable_declarator" {
							if nameNode := d.ChildByFieldName("name"); nameNode != nil && typ != "" {
								env[parser.NodeText(nameNode, s)] = typ
							}
						}
					}
					return false
				}
				return true
			})
		case "property_declaration":
			typ := Erase(parser.NodeText(child.ChildByFieldName("type"), src))
			name := parser.NodeText(child.ChildByFieldName("name"), src)
			if typ != "" && name != "" {
				env[name] = typ
			}
		}
	}
	return env
}

func csharpMethodEnv(method *sitter.Node, src []byte, fields map[string]string) map[string]string {
	env := make(map[string]string, len(fields))
	for k, v := range fields {
		env[k] = v
	}

	if params := method.ChildByFieldName("parameters"); params != nil {
		for i := range int(params.NamedChildCount()) {
			p := params.NamedChild(i)
			if p.Type() != "parameter" {
				continue
			}
			typ := Erase(parser.NodeText(p.ChildByFieldName("type"), src))
			name := parser.NodeText(p.ChildByFieldName("name"), src)
			if typ != "" && name != "" {
				env[name] = typ
			}
		}
	}

	if body := method.ChildByFieldName("body"); body != nil {
		parser.Walk(body, src, func(n *sitter.Node, s []byte) bool {
			if n.Type() != "variable_declaration" {
				return true
			}
			typ := Erase(parser.NodeText(n.ChildByFieldName("type"), s))
			if typ == "" || typ == "var" {
				return true
			}
			for j := range int(n.NamedChildCount()) {
				d := n.NamedChild(j)
				if d.Type() == "variable_declarator" {
					if nameNode := d.ChildByFieldName("name"); nameNode != nil {
						env[parser.NodeText(nameNode, s)] = typ
					}
				}
			}
			return true
		})
	}

	return env
}

func collectCSharpInvocations(method *sitter.Node, src []byte, enclosing string, env map[string]string, syms *FileSymbols) {
	body := method.ChildByFieldName("body")
	if body == nil {
		return
	}

	parser.Walk(body, src, func(n *sitter.Node, s []byte) bool {
		if n.Type() != "invocation_expression" {
			return true
		}

		fn := n.ChildByFieldName("function")
		if fn == nil {
			return true
		}

		inv := Invocation{
			Args:          countArgs(csharpArguments(n)),
			EnclosingType: enclosing,
			Node:          n,
		}

		switch fn.Type() {
		case "identifier":
			inv.Name = parser.NodeText(fn, s)
			inv.ReceiverType = enclosing
		case "member_access_expression":
			inv.Name = parser.NodeText(fn.ChildByFieldName("name"), s)
			expr := fn.ChildByFieldName("expression")
			switch {
			case expr == nil:
				// no receiver info
			case expr.Type() == "this_expression":
				inv.ReceiverType = enclosing
			case expr.Type() == "identifier":
				ident := parser.NodeText(expr, s)
				if typ, ok := env[ident]; ok {
					inv.ReceiverType = typ
				} else {
					inv.ReceiverIdent = ident
				}
			}
		default:
			return true
		}

		if inv.Name != "" {
			syms.Invocations = append(syms.Invocations, inv)
		}
		return true
	})
}

func csharpArguments(invocation *sitter.Node) *sitter.Node {
	if args := invocation.ChildByFieldName("arguments"); args != nil {
		return args
	}
	for i := range int(invocation.NamedChildCount()) {
		if c := invocation.NamedChild(i); c.Type() == "argument_list" {
			return c
		}
	}
	return nil
}
