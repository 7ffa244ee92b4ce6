package semantic

import (
	"strings"

	"github.com/dkarlsen/scythe/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

type typescriptExtractor struct{}

func (typescriptExtractor) Extract(result *parser.Result) (*FileSymbols, error) {
	syms := &FileSymbols{Path: result.Path, Language: result.Language}
	src := result.Source

	parser.Walk(result.Tree.RootNode(), src, func(node *sitter.Node, source []byte) bool {
		switch node.Type() {
		case "class_declaration":
			extractTSClass(node, source, syms)
		case "interface_declaration":
			extractTSInterface(node, source, syms)
		}
		return true
	})

	// Calls outside any class body (module-level code) still count as usages.
	collectTSInvocations(result.Tree.RootNode(), src, "", map[string]string{}, syms, true)

	return syms, nil
}

func extractTSClass(node *sitter.Node, src []byte, syms *FileSymbols) {
	name := parser.NodeText(node.ChildByFieldName("name"), src)
	if name == "" {
		return
	}

	t := Type{Name: name, Kind: KindClass, Node: node}

	// class_heritage > implements_clause > type identifiers
	for i := range int(node.NamedChildCount()) {
		child := node.NamedChild(i)
		if child.Type() != "class_heritage" {
			continue
		}
		parser.Walk(child, src, func(n *sitter.Node, s []byte) bool {
			if n.Type() == "implements_clause" {
				for j := range int(n.NamedChildCount()) {
					if text := Erase(parser.NodeText(n.NamedChild(j), s)); text != "" {
						t.Implements = append(t.Implements, text)
					}
				}
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

	fields := tsFieldEnv(body, src)

	for i := range int(body.NamedChildCount()) {
		child := body.NamedChild(i)
		if child.Type() != "method_definition" {
			continue
		}
		mname := parser.NodeText(child.ChildByFieldName("name"), src)
		m := Method{
			Name:        mname,
			Params:      tsParamTypes(child.ChildByFieldName("parameters"), src),
			Constructor: mname == "constructor",
			Node:        child,
		}
		t.Methods = append(t.Methods, m)

		if mbody := child.ChildByFieldName("body"); mbody != nil {
			collectTSInvocations(mbody, src, name, tsMethodEnv(child, src, fields), syms, false)
		}
	}

	syms.Types = append(syms.Types, t)
}

func extractTSInterface(node *sitter.Node, src []byte, syms *FileSymbols) {
	name := parser.NodeText(node.ChildByFieldName("name"), src)
	if name == "" {
		return
	}

	t := Type{Name: name, Kind: KindInterface, Node: node}

	if body := node.ChildByFieldName("body"); body != nil {
		for i := range int(body.NamedChildCount()) {
			child := body.NamedChild(i)
			if child.Type() != "method_signature" {
				continue
			}
			t.Methods = append(t.Methods, Method{
				Name:   parser.NodeText(child.ChildByFieldName("name"), src),
				Params: tsParamTypes(child.ChildByFieldName("parameters"), src),
				Node:   child,
			})
		}
	}

	syms.Types = append(syms.Types, t)
}

func tsParamTypes(params *sitter.Node, src []byte) []string {
	if params == nil {
		return nil
	}
	var types []string
	for i := range int(params.NamedChildCount()) {
		p := params.NamedChild(i)
		switch p.Type() {
		case "required_parameter", "optional_parameter":
			types = append(types, tsAnnotatedType(p, src))
		}
	}
	return types
}

// tsAnnotatedType reads a ": T" type annotation, returning "any" when
// the parameter is untyped so arity still lines up across signatures.
func tsAnnotatedType(node *sitter.Node, src []byte) string {
	if ann := node.ChildByFieldName("type"); ann != nil {
		text := strings.TrimSpace(strings.TrimPrefix(parser.NodeText(ann, src), ":"))
		return Erase(text)
	}
	return "any"
}

func tsFieldEnv(body *sitter.Node, src []byte) map[string]string {
	env := make(map[string]string)
	for i := range int(body.NamedChildCount()) {
		child := body.NamedChild(i)
		if child.Type() != "public_field_definition" {
			continue
		}
		name := parser.NodeText(child.ChildByFieldName("name"), src)
		if name == "" {
			continue
		}
		if typ := tsAnnotatedType(child, src); typ != "any" {
			env[name] = typ
		}
	}
	return env
}

func tsMethodEnv(method *sitter.Node, src []byte, fields map[string]string) map[string]string {
	env := make(map[string]string, len(fields))
	for k, v := range fields {
		env[k] = v
	}

	if params := method.ChildByFieldName("parameters"); params != nil {
		for i := range int(params.NamedChildCount()) {
			p := params.NamedChild(i)
			if p.Type() != "required_parameter" && p.Type() != "optional_parameter" {
				continue
			}
			name := parser.NodeText(p.ChildByFieldName("pattern"), src)
			if typ := tsAnnotatedType(p, src); name != "" && typ != "any" {
				env[name] = typ
			}
		}
	}

	if body := method.ChildByFieldName("body"); body != nil {
		parser.Walk(body, src, func(n *sitter.Node, s []byte) bool {
			if n.Type() != "variable_declarator" {
				return true
			}
			name := parser.NodeText(n.ChildByFieldName("name"), s)
			if typ := tsAnnotatedType(n, s); name != "" && typ != "any" {
				env[name] = typ
			}
			return true
		})
	}

	return env
}

// collectTSInvocations walks a subtree for call expressions. When
// topLevelOnly is set, calls inside class bodies are skipped because
// they were already collected with their method's environment.
func collectTSInvocations(root *sitter.Node, src []byte, enclosing string, env map[string]string, syms *FileSymbols, topLevelOnly bool) {
	parser.Walk(root, src, func(n *sitter.Node, s []byte) bool {
		if topLevelOnly && (n.Type() == "class_declaration" || n.Type() == "interface_declaration") {
			return false
		}
		if n.Type() != "call_expression" {
			return true
		}

		fn := n.ChildByFieldName("function")
		if fn == nil {
			return true
		}

		inv := Invocation{
			Args:          countArgs(n.ChildByFieldName("arguments")),
			EnclosingType: enclosing,
			Node:          n,
		}

		switch fn.Type() {
		case "identifier":
			// Plain function call, not a method; skip.
			return true
		case "member_expression":
			inv.Name = parser.NodeText(fn.ChildByFieldName("property"), s)
			obj := fn.ChildByFieldName("object")
			switch {
			case obj == nil:
				// no receiver info
			case obj.Type() == "this":
				inv.ReceiverType = enclosing
			case obj.Type() == "identifier":
				ident := parser.NodeText(obj, s)
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
