// Package semantic extracts type, method, and invocation symbols from
// parsed source files and resolves method bindings across a batch.
// It plays the role of the front end the cleanup engine consumes:
// trees go in, binding-resolved symbols come out.
package semantic

import (
	"strings"

	"github.com/dkarlsen/scythe/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// TypeKind distinguishes concrete types from interfaces.
type TypeKind int

const (
	KindClass TypeKind = iota
	KindInterface
)

func (k TypeKind) String() string {
	if k == KindInterface {
		return "interface"
	}
	return "class"
}

// Method is a method declaration belonging to one type in one file.
type Method struct {
	Name        string
	Params      []string // erased parameter type names, in order
	Constructor bool
	Node        *sitter.Node
}

// Type is a class or interface declaration.
type Type struct {
	Name       string
	Kind       TypeKind
	Implements []string // directly implemented interface names
	Methods    []Method
	Node       *sitter.Node
}

// Invocation is a method call site with enough syntactic context for
// the batch resolver to attempt binding resolution.
type Invocation struct {
	Name          string
	Args          int
	EnclosingType string // type whose body contains the call, "" at top level
	ReceiverType  string // declared type of the receiver when syntactically evident
	ReceiverIdent string // raw receiver identifier when the type is not evident
	Node          *sitter.Node
}

// FileSymbols is everything extracted from one parsed file.
type FileSymbols struct {
	Path        string
	Language    parser.Language
	Types       []Type
	Invocations []Invocation
}

// Extractor pulls symbols out of a parsed file.
type Extractor interface {
	Extract(result *parser.Result) (*FileSymbols, error)
}

// ForLanguage returns an Extractor for the given language, or nil if
// the language has no class/interface structure scythe understands.
func ForLanguage(lang parser.Language) Extractor {
	switch lang {
	case parser.LangJava:
		return javaExtractor{}
	case parser.LangCSharp:
		return csharpExtractor{}
	case parser.LangTypeScript:
		return typescriptExtractor{}
	case parser.LangGo:
		return goExtractor{}
	default:
		return nil
	}
}

// Erase strips generic type arguments from a type name so that
// differently instantiated signatures collide on the same identity:
// "List<String>" and "List<Integer>" both erase to "List".
// Pointer and nullable markers are dropped as well.
func Erase(typeName string) string {
	s := strings.TrimSpace(typeName)
	s = strings.TrimPrefix(s, "*")
	s = strings.TrimSuffix(s, "?")

	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch r {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
				continue
			}
		default:
			if depth == 0 {
				b.WriteRune(r)
			}
		}
	}
	return strings.TrimSpace(b.String())
}
