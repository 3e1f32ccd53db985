// Package doctree builds the documentation tree of a translation unit.
//
// A Registry receives declaration visits from a traversal driver and decides,
// one declaration at a time, whether it becomes a Node and which previously
// seen declaration is its parent. Undocumented declarations are skipped unless
// a documented descendant needs them as a bridge to keep its ancestry intact.
package doctree

import "fmt"

// DeclID identifies a declaration owned by an external AST. The registry only
// compares and hashes it.
type DeclID struct {
	Unit  uint32
	Index uint32
}

func (id DeclID) String() string {
	return fmt.Sprintf("%d:%d", id.Unit, id.Index)
}

// Source resolves declarations for the registry.
type Source interface {
	// Parent returns the immediately enclosing declaration, or false at the
	// top of the containment hierarchy.
	Parent(id DeclID) (DeclID, bool)
	// Comment returns the documentation attached to id, one newline-terminated
	// line per text block, or "" when there is none.
	Comment(id DeclID) string
}

// Describer renders declarations for output. The registry never calls it.
type Describer interface {
	Signature(id DeclID) string
	Name(id DeclID) string
}

// Kinder is implemented by describers that can label declaration kinds.
type Kinder interface {
	Kind(id DeclID) string
}

// Locator is implemented by describers that know where a declaration lives.
type Locator interface {
	Location(id DeclID) (file string, line int)
}

// Node is one entry of the documentation tree.
type Node struct {
	Comment  string
	Decl     DeclID
	Parent   *Node
	Children []*Node

	root bool
}

// IsRoot reports whether n is the sentinel root, which has no declaration.
func (n *Node) IsRoot() bool {
	return n.root
}

// Depth returns the number of ancestors between n and the root; the root's
// children are at depth 0 and the root itself at -1.
func (n *Node) Depth() int {
	d := -1
	for p := n; p != nil && !p.root; p = p.Parent {
		d++
	}
	return d
}
