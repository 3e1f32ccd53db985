package render

import (
	"encoding/json"
	"io"

	"github.com/xonecas/clong/internal/doctree"
)

// Entry is the JSON form of a node.
type Entry struct {
	Name      string  `json:"name"`
	Kind      string  `json:"kind,omitempty"`
	Signature string  `json:"signature"`
	Comment   string  `json:"comment"`
	File      string  `json:"file,omitempty"`
	Line      int     `json:"line,omitempty"`
	Children  []Entry `json:"children,omitempty"`
}

// Entries converts the children of root into JSON entries. Kind and location
// are filled in when d implements doctree.Kinder or doctree.Locator.
func Entries(root *doctree.Node, d doctree.Describer) []Entry {
	kinds, _ := d.(doctree.Kinder)
	loc, _ := d.(doctree.Locator)

	var convert func(n *doctree.Node) Entry
	convert = func(n *doctree.Node) Entry {
		e := Entry{
			Name:      d.Name(n.Decl),
			Signature: d.Signature(n.Decl),
			Comment:   n.Comment,
		}
		if kinds != nil {
			e.Kind = kinds.Kind(n.Decl)
		}
		if loc != nil {
			e.File, e.Line = loc.Location(n.Decl)
		}
		for _, c := range n.Children {
			e.Children = append(e.Children, convert(c))
		}
		return e
	}

	out := make([]Entry, 0, len(root.Children))
	for _, c := range root.Children {
		out = append(out, convert(c))
	}
	return out
}

// JSON writes the tree under root as an indented JSON array.
func JSON(w io.Writer, root *doctree.Node, d doctree.Describer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Entries(root, d))
}
