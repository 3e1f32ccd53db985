package extract

import (
	"github.com/xonecas/clong/internal/doctree"
	"github.com/xonecas/clong/internal/treesitter"
)

// Visitor receives one call per declaration of interest.
type Visitor interface {
	Register(id doctree.DeclID) *doctree.Node
	RegisterFunction(id doctree.DeclID) *doctree.Node
	MarkVisited(id doctree.DeclID)
}

// Traverse visits the declarations of unit in pre-order. Functions and
// function templates go to RegisterFunction, every other kind to Register.
// The templated pattern of a class or function template is marked visited
// right after its template and never registered on its own.
func Traverse(p *treesitter.Program, unit int, v Visitor) {
	u := p.Units()[unit]
	patterns := make(map[int]bool)
	for i, d := range u.Decls {
		if patterns[i] {
			continue
		}
		id := p.ID(unit, i)
		if d.Kind.IsFunction() {
			v.RegisterFunction(id)
		} else {
			v.Register(id)
		}
		if d.Pattern >= 0 {
			patterns[d.Pattern] = true
			v.MarkVisited(p.ID(unit, d.Pattern))
		}
	}
}
