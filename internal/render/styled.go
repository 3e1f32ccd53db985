package render

import (
	"bufio"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/xonecas/clong/internal/doctree"
	"github.com/xonecas/clong/internal/highlight"
)

// Style configures the coloured dump.
type Style struct {
	Theme string // Chroma theme
	Width int    // truncate lines to this many cells; 0 disables
}

// Styled writes the same layout as Tree with ANSI colours: signatures are
// syntax highlighted and guides and comments take colours from the theme.
func Styled(w io.Writer, root *doctree.Node, d doctree.Describer, st Style) error {
	p := highlight.ThemePalette(st.Theme)
	guide := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Guide))
	comment := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Comment)).Italic(true)

	loc, _ := d.(doctree.Locator)
	bw := bufio.NewWriter(w)
	doctree.Walk(root, func(n *doctree.Node, depth int) {
		lang := "cpp"
		if loc != nil {
			file, _ := loc.Location(n.Decl)
			lang = highlight.DetectLanguage(file)
		}

		var b strings.Builder
		b.WriteString(guide.Render(strings.Repeat("  ", depth) + "-"))
		b.WriteByte(' ')
		b.WriteString(highlight.Highlight(d.Signature(n.Decl), lang, st.Theme))
		b.WriteString(guide.Render(" --"))
		if n.Comment != "" {
			b.WriteByte(' ')
			b.WriteString(comment.Render(strings.TrimSpace(EscapeComment(n.Comment))))
		}

		out := b.String()
		if st.Width > 0 {
			out = ansi.Truncate(out, st.Width, "…")
		}
		bw.WriteString(out)
		bw.WriteByte('\n')
	})
	return bw.Flush()
}
