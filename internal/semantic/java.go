package semantic

import (
	"github.com/dkarlsen/scythe/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

type javaExtractor struct{}

func (javaExtractor) Extract(result *parser.Result) (*FileSymbols, error) {
	syms := &FileSymbols{Path: result.Path, Language: result.Language}
	src := result.Source

	parser.Walk(result.Tree.RootNode(), src, func(node *sitter.Node, source []byte) bool {
		switch node.Type() {
		case "class_declaration":
			extractJavaClass(node, source, syms)
		case "interface_declaration":
			extractJavaInterface(node, source, syms)
		}
		return true
	})

	return syms, nil
}

func extractJavaClass(node *sitter.Node, src []byte, syms *FileSymbols) {
	name := parser.NodeText(node.ChildByFieldName("name"), src)
	if name == "" {
		return
	}

	t := Type{Name: name, Kind: KindClass, Node: node}

	// implements list lives under the "interfaces" field: super_interfaces > type_list
	if ifaces := node.ChildByFieldName("interfaces"); ifaces != nil {
		parser.Walk(ifaces, src, func(n *sitter.Node, s []byte) bool {
			if n.Type() == "type_identifier" || n.Type() == "generic_type" {
				t.Implements = append(t.Implements, Erase(parser.NodeText(n, s)))
				return false
			}
			return true
		})
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		syms.Types = append(syms.Types, t)
		return
	}

	fields := javaFieldEnv(body, src)

	for i := range int(body.NamedChildCount()) {
		child := body.NamedChild(i)
		switch child.Type() {
		case "method_declaration":
			m := javaMethod(child, src, false)
			t.Methods = append(t.Methods, m)
			collectJavaInvocations(child, src, name, javaMethodEnv(child, src, fields), syms)
		case "constructor_declaration":
			m := javaMethod(child, src, true)
			t.Methods = append(t.Methods, m)
			collectJavaInvocations(child, src, name, javaMethodEnv(child, src, fields), syms)
		}
	}

	syms.Types = append(syms.Types, t)
}

func extractJavaInterface(node *sitter.Node, src []byte, syms *FileSymbols) {
	name := parser.NodeText(node.ChildByFieldName("name"), src)
	if name == "" {
		return
	}

	t := Type{Name: name, Kind: KindInterface, Node: node}

	if body := node.ChildByFieldName("body"); body != nil {
		for i := range int(body.NamedChildCount()) {
			child := body.NamedChild(i)
			if child.Type() == "method_declaration" {
				t.Methods = append(t.Methods, javaMethod(child, src, false))
			}
		}
	}

	syms.Types = append(syms.Types, t)
}

func javaMethod(node *sitter.Node, src []byte, ctor bool) Method {
	return Method{
		Name:        parser.NodeText(node.ChildByFieldName("name"), src),
		Params:      javaParamTypes(node.ChildByFieldName("parameters"), src),
		Constructor: ctor,
		Node:        node,
	}
}

func javaParamTypes(params *sitter.Node, src []byte) []string {
	if params == nil {
		return nil
	}
	var types []string
	for i := range int(params.NamedChildCount()) {
		p := params.NamedChild(i)
		switch p.Type() {
		case "formal_parameter", "spread_parameter":
			if typ := p.ChildByFieldName("type"); typ != nil {
				types = append(types, Erase(parser.NodeText(typ, src)))
			}
		}
	}
	return types
}

// javaFieldEnv maps field names declared directly in a class body to
// their erased types.
func javaFieldEnv(body *sitter.Node, src []byte) map[string]string {
	env := make(map[string]string)
	for i := range int(body.NamedChildCount()) {
		child := body.NamedChild(i)
		if child.Type() != "field_declaration" {
			continue
		}
		typ := Erase(parser.NodeText(child.ChildByFieldName("type"), src))
		if typ == "" {
			continue
		}
		parser.Walk(child, src, func(n *sitter.Node, s []byte) bool {
			if n.Type() == "variable_declarator" {
				if nameNode := n.ChildByFieldName("name"); nameNode != nil {
					env[parser.NodeText(nameNode, s)] = typ
				}
				return false
			}
			return true
		})
	}
	return env
}

// javaMethodEnv layers parameter and local variable types over the
// field environment. Declaration order and shadowing are ignored; the
// resolver treats ambiguity as unresolved rather than guessing.
func javaMethodEnv(method *sitter.Node, src []byte, fields map[string]string) map[string]string {
	env := make(map[string]string, len(fields))
	for k, v := range fields {
		env[k] = v
	}

	if params := method.ChildByFieldName("parameters"); params != nil {
		for i := range int(params.NamedChildCount()) {
			p := params.NamedChild(i)
			if p.Type() != "formal_parameter" {
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
			if n.Type() != "local_variable_declaration" {
				return true
			}
			typ := Erase(parser.NodeText(n.ChildByFieldName("type"), s))
			if typ == "" {
				return true
			}
			parser.Walk(n, s, func(d *sitter.Node, ds []byte) bool {
				if d.Type() == "variable_declarator" {
					if nameNode := d.ChildByFieldName("name"); nameNode != nil {
						env[parser.NodeText(nameNode, ds)] = typ
					}
					return false
				}
				return true
			})
			return true
		})
	}

	return env
}

func collectJavaInvocations(method *sitter.Node, src []byte, enclosing string, env map[string]string, syms *FileSymbols) {
	body := method.ChildByFieldName("body")
	if body == nil {
		return
	}

	parser.Walk(body, src, func(n *sitter.Node, s []byte) bool {
		if n.Type() != "method_invocation" {
			return true
		}

		inv := Invocation{
			Name:          parser.NodeText(n.ChildByFieldName("name"), s),
			Args:          countArgs(n.ChildByFieldName("arguments")),
			EnclosingType: enclosing,
			Node:          n,
		}

		obj := n.ChildByFieldName("object")
		switch {
		case obj == nil:
			inv.ReceiverType = enclosing
		case obj.Type() == "this":
			inv.ReceiverType = enclosing
		case obj.Type() == "identifier":
			ident := parser.NodeText(obj, s)
			if typ, ok := env[ident]; ok {
				inv.ReceiverType = typ
			} else {
				inv.ReceiverIdent = ident
			}
		case obj.Type() == "field_access":
			// this.field.m() — resolve the field through the env
			fieldName := parser.NodeText(obj.ChildByFieldName("field"), s)
			if objOfObj := obj.ChildByFieldName("object"); objOfObj != nil && objOfObj.Type() == "this" {
				if typ, ok := env[fieldName]; ok {
					inv.ReceiverType = typ
				}
			}
		}

		syms.Invocations = append(syms.Invocations, inv)
		return true
	})
}

func countArgs(args *sitter.Node) int {
	if args == nil {
		return 0
	}
	return int(args.NamedChildCount())
}
