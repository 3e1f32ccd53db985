package treesitter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
)

// langForExt returns the tree-sitter language for a file extension, or nil.
func langForExt(ext string) *sitter.Language {
	switch ext {
	case ".h", ".hh", ".hpp", ".hxx", ".h++", ".inl", ".ipp",
		".c", ".cc", ".cpp", ".cxx", ".c++":
		return cpp.GetLanguage()
	default:
		return nil
	}
}

// Supported returns true if the file extension has a tree-sitter grammar.
func Supported(path string) bool {
	return langForExt(strings.ToLower(filepath.Ext(path))) != nil
}

// ParseFile reads and parses a file.
func ParseFile(ctx context.Context, path string) (*Unit, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSource(ctx, path, src)
}

// ParseSource parses C++ source bytes. The grammar is used regardless of the
// path's extension so that explicitly named files are always accepted.
func ParseSource(ctx context.Context, path string, src []byte) (*Unit, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(cpp.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	u := &Unit{Path: path}
	b := &builder{unit: u, src: src}
	b.walk(root, -1)

	if root.HasError() {
		u.Errors = countErrors(root)
		log.Warn().Str("file", path).Int("errors", u.Errors).Msg("syntax errors, results may be incomplete")
	}
	log.Debug().Str("file", path).Int("decls", len(u.Decls)).Msg("parsed")
	return u, nil
}

// builder collects declarations in pre-order.
type builder struct {
	unit *Unit
	src  []byte
}

// transparent lists nodes whose children belong to the enclosing declaration.
var transparent = map[string]bool{
	"declaration_list":       true,
	"field_declaration_list": true,
	"linkage_specification":  true,
	"preproc_if":             true,
	"preproc_ifdef":          true,
	"preproc_else":           true,
	"preproc_elif":           true,
	"preproc_elifdef":        true,
	"ERROR":                  true,
}

func (b *builder) walk(node *sitter.Node, parent int) {
	count := int(node.NamedChildCount())
	for i := 0; i < count; i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "namespace_definition":
			idx := b.add(KindNamespace, child, child, parent)
			if body := child.ChildByFieldName("body"); body != nil {
				b.walk(body, idx)
			}

		case "class_specifier", "struct_specifier", "union_specifier":
			b.record(child, child, parent)

		case "enum_specifier":
			b.enum(child, child, parent)

		case "function_definition":
			b.function(child, child, parent)

		case "declaration", "field_declaration", "type_definition":
			b.declaration(child, child, parent)

		case "template_declaration":
			b.template(child, parent)

		default:
			if transparent[child.Type()] {
				b.walk(child, parent)
			}
		}
	}
}

// add appends a declaration for node and returns its index. anchor is the
// node whose neighbouring comments document the declaration.
func (b *builder) add(kind Kind, node, anchor *sitter.Node, parent int) int {
	d := Decl{
		Kind:      kind,
		Name:      declName(node, b.src),
		Signature: terse(node, b.src),
		Comment:   docComment(anchor, b.src),
		Parent:    parent,
		Pattern:   -1,
		StartLine: line(node),
		EndLine:   endLine(node),
	}
	b.unit.Decls = append(b.unit.Decls, d)
	return len(b.unit.Decls) - 1
}

// record registers a class, struct or union and the members of its body. A
// forward declaration is registered without children; callers skip
// elaborated type references such as "struct stat st;".
func (b *builder) record(node, anchor *sitter.Node, parent int) int {
	return b.recordAs(node, anchor, parent, -1)
}

// recordAs is record with the members parented to members, or to the record
// itself when members is negative.
func (b *builder) recordAs(node, anchor *sitter.Node, parent, members int) int {
	if node.ChildByFieldName("name") == nil && node.ChildByFieldName("body") == nil {
		return -1
	}
	idx := b.add(KindRecord, node, anchor, parent)
	if members < 0 {
		members = idx
	}
	if body := node.ChildByFieldName("body"); body != nil {
		b.walk(body, members)
	}
	return idx
}

// function registers a function definition. An export macro between the
// class key and the name ("class API Foo { ... };") makes the grammar read a
// class as a function named Foo with a compound statement body; such
// definitions are registered as records instead.
func (b *builder) function(node, anchor *sitter.Node, parent int) int {
	return b.functionAs(node, anchor, parent, -1)
}

func (b *builder) functionAs(node, anchor *sitter.Node, parent, members int) int {
	body, ok := macroRecord(node)
	if !ok {
		return b.add(KindFunction, node, anchor, parent)
	}
	idx := b.add(KindRecord, node, anchor, parent)
	if members < 0 {
		members = idx
	}
	b.walk(body, members)
	return idx
}

// macroRecord reports whether a function_definition is a class whose head
// carries a macro, returning the body holding its members.
func macroRecord(node *sitter.Node) (*sitter.Node, bool) {
	typ := node.ChildByFieldName("type")
	if typ == nil || typ.ChildByFieldName("body") != nil {
		return nil, false
	}
	switch typ.Type() {
	case "class_specifier", "struct_specifier", "union_specifier":
	default:
		return nil, false
	}
	decl := node.ChildByFieldName("declarator")
	if decl == nil {
		return nil, false
	}
	if _, isFunc := declaratorName(decl); isFunc {
		return nil, false
	}
	body := node.ChildByFieldName("body")
	return body, body != nil && body.Type() == "compound_statement"
}

func (b *builder) enum(node, anchor *sitter.Node, parent int) int {
	body := node.ChildByFieldName("body")
	if body == nil {
		return -1
	}
	idx := b.add(KindEnum, node, anchor, parent)
	count := int(body.NamedChildCount())
	for i := 0; i < count; i++ {
		child := body.NamedChild(i)
		if child.Type() == "enumerator" {
			b.add(KindEnumConstant, child, child, idx)
		}
	}
	return idx
}

// declaration handles declaration-like statements: an optional inline type
// definition followed by one declaration per declarator. It returns the index
// of the first function declared, or -1.
func (b *builder) declaration(node, anchor *sitter.Node, parent int) int {
	decls := declarators(node)
	if typ := node.ChildByFieldName("type"); typ != nil {
		switch typ.Type() {
		case "class_specifier", "struct_specifier", "union_specifier":
			if typ.ChildByFieldName("body") != nil || len(decls) == 0 {
				b.record(typ, anchor, parent)
			}
		case "enum_specifier":
			b.enum(typ, anchor, parent)
		}
	}
	if node.Type() == "type_definition" {
		return -1
	}

	first := -1
	for _, d := range decls {
		nameNode, isFunc := declaratorName(d)
		if nameNode == nil {
			continue
		}
		kind := KindVariable
		switch {
		case isFunc:
			kind = KindFunction
		case node.Type() == "field_declaration" && !hasStorageClass(node, b.src, "static"):
			kind = KindField
		}
		sig := terse(node, b.src)
		if len(decls) > 1 {
			sig = collapse(string(b.src[node.StartByte():decls[0].StartByte()]) + d.Content(b.src))
		}
		b.unit.Decls = append(b.unit.Decls, Decl{
			Kind:      kind,
			Name:      simpleName(nameNode, b.src),
			Signature: sig,
			Comment:   docComment(anchor, b.src),
			Parent:    parent,
			Pattern:   -1,
			StartLine: line(node),
			EndLine:   endLine(node),
		})
		if isFunc && first < 0 {
			first = len(b.unit.Decls) - 1
		}
	}
	return first
}

// template registers class and function templates with their templated
// pattern as a child. Members of a class template hang off the template
// itself so the class appears once in the tree. Other templates lend their
// comment to the inner declaration.
func (b *builder) template(node *sitter.Node, parent int) {
	inner := templateInner(node)
	if inner == nil {
		return
	}
	switch inner.Type() {
	case "class_specifier", "struct_specifier", "union_specifier":
		if inner.ChildByFieldName("name") == nil {
			return
		}
		idx := b.add(KindClassTemplate, node, node, parent)
		b.unit.Decls[idx].Pattern = b.recordAs(inner, inner, idx, idx)

	case "function_definition":
		if _, ok := macroRecord(inner); ok {
			idx := b.add(KindClassTemplate, node, node, parent)
			b.unit.Decls[idx].Pattern = b.functionAs(inner, inner, idx, idx)
			return
		}
		idx := b.add(KindFunctionTemplate, node, node, parent)
		b.unit.Decls[idx].Pattern = b.add(KindFunction, inner, inner, idx)

	case "declaration", "field_declaration":
		if !declaresFunction(inner) {
			b.declaration(inner, node, parent)
			return
		}
		idx := b.add(KindFunctionTemplate, node, node, parent)
		b.unit.Decls[idx].Pattern = b.declaration(inner, inner, idx)

	case "template_declaration":
		b.template(inner, parent)
	}
}

func templateInner(node *sitter.Node) *sitter.Node {
	params := node.ChildByFieldName("parameters")
	count := int(node.NamedChildCount())
	for i := count - 1; i >= 0; i-- {
		child := node.NamedChild(i)
		if params != nil && child.StartByte() == params.StartByte() {
			break
		}
		if t := child.Type(); t != "comment" && t != "ERROR" {
			return child
		}
	}
	return nil
}

// declarators returns the declarator children of a declaration node.
func declarators(node *sitter.Node) []*sitter.Node {
	c := sitter.NewTreeCursor(node)
	defer c.Close()
	if !c.GoToFirstChild() {
		return nil
	}
	var out []*sitter.Node
	for {
		if c.CurrentFieldName() == "declarator" {
			out = append(out, c.CurrentNode())
		}
		if !c.GoToNextSibling() {
			return out
		}
	}
}

func declaresFunction(node *sitter.Node) bool {
	for _, d := range declarators(node) {
		if _, isFunc := declaratorName(d); isFunc {
			return true
		}
	}
	return false
}

// declaratorName unwraps pointer, reference, array and init declarators down
// to the declared name. isFunc is true when a function declarator applies to
// the name itself rather than to a parenthesized pointer.
func declaratorName(d *sitter.Node) (name *sitter.Node, isFunc bool) {
	for d != nil {
		switch d.Type() {
		case "identifier", "field_identifier", "qualified_identifier",
			"destructor_name", "operator_name", "operator_cast",
			"template_function", "type_identifier":
			return d, isFunc
		case "function_declarator":
			inner := d.ChildByFieldName("declarator")
			if inner != nil && inner.Type() != "parenthesized_declarator" {
				isFunc = true
			}
			d = inner
		case "parenthesized_declarator":
			d = d.NamedChild(0)
		default:
			next := d.ChildByFieldName("declarator")
			if next == nil && d.NamedChildCount() > 0 {
				next = d.NamedChild(int(d.NamedChildCount()) - 1)
			}
			d = next
		}
	}
	return nil, false
}

func hasStorageClass(node *sitter.Node, src []byte, class string) bool {
	count := int(node.NamedChildCount())
	for i := 0; i < count; i++ {
		child := node.NamedChild(i)
		if child.Type() == "storage_class_specifier" && child.Content(src) == class {
			return true
		}
	}
	return false
}

func countErrors(node *sitter.Node) int {
	n := 0
	if node.Type() == "ERROR" || node.IsMissing() {
		n++
	}
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		n += countErrors(node.Child(i))
	}
	return n
}

// helpers

func line(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1 // 1-indexed
}

func endLine(node *sitter.Node) int {
	return int(node.EndPoint().Row) + 1
}
