// Package treesitter parses C++ sources with tree-sitter and exposes their
// declarations, doc comments and terse signatures to the documentation tree.
package treesitter

// Kind classifies extracted declarations.
type Kind int

const (
	KindNamespace Kind = iota
	KindRecord
	KindClassTemplate
	KindFunction
	KindFunctionTemplate
	KindVariable
	KindField
	KindEnum
	KindEnumConstant
)

// Decl is a single declaration of a parsed unit.
type Decl struct {
	Kind      Kind
	Name      string
	Signature string // e.g. "template <typename T> void tpl()"
	Comment   string
	Parent    int // index of the enclosing declaration, -1 at top level
	Pattern   int // templated declaration of a template, -1 otherwise
	StartLine int // 1-indexed
	EndLine   int // 1-indexed
}

// IsFunction reports whether k is a function or function template.
func (k Kind) IsFunction() bool {
	return k == KindFunction || k == KindFunctionTemplate
}

func (k Kind) String() string {
	switch k {
	case KindNamespace:
		return "namespace"
	case KindRecord:
		return "record"
	case KindClassTemplate:
		return "class template"
	case KindFunction:
		return "function"
	case KindFunctionTemplate:
		return "function template"
	case KindVariable:
		return "variable"
	case KindField:
		return "field"
	case KindEnum:
		return "enum"
	case KindEnumConstant:
		return "enum constant"
	default:
		return "unknown"
	}
}

// Unit is one parsed source file. Decls are stored in pre-order: every
// declaration follows its parent.
type Unit struct {
	Path   string
	Decls  []Decl
	Errors int // syntax error nodes tree-sitter recovered from
}
