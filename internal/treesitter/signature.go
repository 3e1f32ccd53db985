package treesitter

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

const anonymous = "(anonymous)"

// terse renders node on one line without its body, the way a declaration
// reads in a synopsis: "class omg", "void foo()", "int g_var = 10".
func terse(node *sitter.Node, src []byte) string {
	text := string(src[node.StartByte():cutPoint(node)])
	text = collapse(text)
	return strings.TrimSpace(strings.TrimSuffix(text, ";"))
}

// cutPoint returns the byte offset where node's body starts, or its end.
func cutPoint(node *sitter.Node) uint32 {
	switch node.Type() {
	case "function_definition":
		count := int(node.NamedChildCount())
		for i := 0; i < count; i++ {
			if child := node.NamedChild(i); child.Type() == "field_initializer_list" {
				return child.StartByte()
			}
		}
		if body := node.ChildByFieldName("body"); body != nil {
			return body.StartByte()
		}
	case "class_specifier", "struct_specifier", "union_specifier",
		"enum_specifier", "namespace_definition":
		if body := node.ChildByFieldName("body"); body != nil {
			return body.StartByte()
		}
	case "template_declaration":
		if inner := templateInner(node); inner != nil {
			return cutPoint(inner)
		}
	}
	return node.EndByte()
}

// collapse joins whitespace runs into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// declName returns the display name of a declaration node.
func declName(node *sitter.Node, src []byte) string {
	switch node.Type() {
	case "template_declaration":
		if inner := templateInner(node); inner != nil {
			return declName(inner, src)
		}
		return anonymous
	case "function_definition", "declaration", "field_declaration":
		for _, d := range declarators(node) {
			if name, _ := declaratorName(d); name != nil {
				return simpleName(name, src)
			}
		}
		return anonymous
	}
	if name := node.ChildByFieldName("name"); name != nil {
		return simpleName(name, src)
	}
	return anonymous
}

// simpleName strips namespace qualifiers: "omg::bar" names "bar".
func simpleName(name *sitter.Node, src []byte) string {
	for name.Type() == "qualified_identifier" {
		next := name.ChildByFieldName("name")
		if next == nil {
			break
		}
		name = next
	}
	return name.Content(src)
}
