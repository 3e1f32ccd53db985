package treesitter

import (
	"github.com/xonecas/clong/internal/doctree"
)

// Program holds the parsed units of one run and resolves declaration IDs
// against them. It is immutable once built and safe for concurrent reads.
type Program struct {
	units []*Unit
}

// NewProgram creates a program over units. Unit i owns the IDs whose Unit
// field is i.
func NewProgram(units ...*Unit) *Program {
	return &Program{units: units}
}

// Units returns the units in input order.
func (p *Program) Units() []*Unit {
	return p.units
}

// ID returns the declaration ID of decl index within unit.
func (p *Program) ID(unit, index int) doctree.DeclID {
	return doctree.DeclID{Unit: uint32(unit), Index: uint32(index)}
}

// Decl returns the declaration behind id.
func (p *Program) Decl(id doctree.DeclID) (*Decl, bool) {
	if int(id.Unit) >= len(p.units) {
		return nil, false
	}
	u := p.units[id.Unit]
	if u == nil || int(id.Index) >= len(u.Decls) {
		return nil, false
	}
	return &u.Decls[id.Index], true
}

// Parent implements doctree.Source.
func (p *Program) Parent(id doctree.DeclID) (doctree.DeclID, bool) {
	d, ok := p.Decl(id)
	if !ok || d.Parent < 0 {
		return doctree.DeclID{}, false
	}
	return p.ID(int(id.Unit), d.Parent), true
}

// Comment implements doctree.Source.
func (p *Program) Comment(id doctree.DeclID) string {
	if d, ok := p.Decl(id); ok {
		return d.Comment
	}
	return ""
}

// Signature implements doctree.Describer.
func (p *Program) Signature(id doctree.DeclID) string {
	if d, ok := p.Decl(id); ok {
		return d.Signature
	}
	return "(null-decl)"
}

// Name implements doctree.Describer.
func (p *Program) Name(id doctree.DeclID) string {
	if d, ok := p.Decl(id); ok {
		return d.Name
	}
	return ""
}

// Kind returns the kind of id's declaration as a label.
func (p *Program) Kind(id doctree.DeclID) string {
	if d, ok := p.Decl(id); ok {
		return d.Kind.String()
	}
	return "unknown"
}

// Location returns the file and 1-indexed start line of id's declaration.
func (p *Program) Location(id doctree.DeclID) (string, int) {
	d, ok := p.Decl(id)
	if !ok {
		return "", 0
	}
	return p.units[id.Unit].Path, d.StartLine
}
