// Package render writes a finished documentation tree in human and machine
// readable forms.
package render

import (
	"bufio"
	"io"
	"strings"

	"github.com/xonecas/clong/internal/doctree"
)

// Tree writes the canonical dump of the tree under root: one line per node in
// pre-order, "<indent>- <signature> -- <comment>", two spaces of indent per
// level and newlines in comments escaped as `\n`. The root itself is not
// printed.
func Tree(w io.Writer, root *doctree.Node, d doctree.Describer) error {
	bw := bufio.NewWriter(w)
	doctree.Walk(root, func(n *doctree.Node, depth int) {
		bw.WriteString(strings.Repeat("  ", depth))
		bw.WriteString("- ")
		bw.WriteString(d.Signature(n.Decl))
		bw.WriteString(" -- ")
		bw.WriteString(EscapeComment(n.Comment))
		bw.WriteByte('\n')
	})
	return bw.Flush()
}

// TreeString returns the canonical dump as a string.
func TreeString(root *doctree.Node, d doctree.Describer) string {
	var b strings.Builder
	_ = Tree(&b, root, d)
	return b.String()
}

// EscapeComment replaces every newline with the two characters `\n`.
func EscapeComment(s string) string {
	return strings.ReplaceAll(s, "\n", `\n`)
}
