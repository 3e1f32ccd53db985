package treesitter

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// docComment returns the documentation attached to anchor: the leading doc
// comments above it, then a trailing "///<" style comment on its last line.
// Each text line is newline-terminated; "" means undocumented.
func docComment(anchor *sitter.Node, src []byte) string {
	var b strings.Builder
	leading := leadingComments(anchor, src)
	if len(leading) == 0 {
		leading = foldedComments(anchor, src)
	}
	for _, c := range leading {
		writeCommentText(&b, c.Content(src))
	}
	if c := trailingComment(anchor, src); c != nil {
		writeCommentText(&b, c.Content(src))
	}
	return b.String()
}

// leadingComments collects the doc comments directly preceding anchor, in
// source order. Ordinary comments are skipped; once one doc comment is found,
// earlier ones only join while they sit on adjacent lines.
func leadingComments(anchor *sitter.Node, src []byte) []*sitter.Node {
	var found []*sitter.Node
	for s := anchor.PrevSibling(); s != nil; s = s.PrevSibling() {
		if s.Type() != "comment" {
			break
		}
		text := s.Content(src)
		if !isDocComment(text) {
			continue
		}
		if isTrailingComment(text) {
			break
		}
		if n := len(found); n > 0 && s.EndPoint().Row+1 < found[n-1].StartPoint().Row {
			break
		}
		found = append(found, s)
	}
	for i, j := 0, len(found)-1; i < j; i, j = i+1, j-1 {
		found[i], found[j] = found[j], found[i]
	}
	return found
}

// foldedComments collects doc comments the grammar swallowed into a
// declaration ahead of its declarator. A bare macro line such as Q_OBJECT
// inside a class body is read as the start of the next member, taking the
// member's comment with it.
func foldedComments(anchor *sitter.Node, src []byte) []*sitter.Node {
	switch anchor.Type() {
	case "declaration", "field_declaration", "function_definition":
	default:
		return nil
	}
	c := sitter.NewTreeCursor(anchor)
	defer c.Close()
	if !c.GoToFirstChild() {
		return nil
	}
	var found []*sitter.Node
	for c.CurrentFieldName() != "declarator" {
		if n := c.CurrentNode(); n.Type() == "comment" {
			text := n.Content(src)
			if isDocComment(text) && !isTrailingComment(text) {
				if k := len(found); k > 0 && found[k-1].EndPoint().Row+1 < n.StartPoint().Row {
					found = found[:0]
				}
				found = append(found, n)
			}
		}
		if !c.GoToNextSibling() {
			break
		}
	}
	return found
}

// trailingComment returns a "///<" style comment starting on the line node
// ends on, skipping separators.
func trailingComment(node *sitter.Node, src []byte) *sitter.Node {
	row := node.EndPoint().Row
	for s := node.NextSibling(); s != nil; s = s.NextSibling() {
		switch {
		case s.Type() == "comment":
			text := s.Content(src)
			if s.StartPoint().Row == row && isDocComment(text) && isTrailingComment(text) {
				return s
			}
			return nil
		case !s.IsNamed() && (s.Type() == "," || s.Type() == ";"):
			continue
		default:
			return nil
		}
	}
	return nil
}

func isDocComment(text string) bool {
	switch {
	case strings.HasPrefix(text, "///"):
		return !strings.HasPrefix(text, "////")
	case strings.HasPrefix(text, "//!"):
		return true
	case strings.HasPrefix(text, "/**"):
		return !strings.HasPrefix(text, "/**/") && !strings.HasPrefix(text, "/***")
	case strings.HasPrefix(text, "/*!"):
		return true
	}
	return false
}

func isTrailingComment(text string) bool {
	return len(text) > 3 && text[3] == '<'
}

// writeCommentText appends the text lines of a raw doc comment to b.
func writeCommentText(b *strings.Builder, raw string) {
	var lines []string
	if strings.HasPrefix(raw, "//") {
		lines = []string{strings.TrimPrefix(raw[3:], "<")}
	} else {
		body := strings.TrimSuffix(raw[3:], "*/")
		body = strings.TrimPrefix(body, "<")
		lines = strings.Split(body, "\n")
		for i := 1; i < len(lines); i++ {
			l := strings.TrimLeft(lines[i], " \t")
			lines[i] = strings.TrimPrefix(l, "*")
		}
	}
	for _, l := range lines {
		l = stripBlockCommand(strings.TrimRight(l, "\r"))
		if strings.TrimSpace(l) == "" {
			continue
		}
		b.WriteString(l)
		b.WriteByte('\n')
	}
}

// blockCommands are the Doxygen commands whose name is dropped from the text
// when they start a line.
var blockCommands = map[string]bool{
	"brief": true, "short": true, "details": true,
	"return": true, "returns": true, "result": true,
	"param": true, "tparam": true,
	"note": true, "warning": true, "attention": true, "remark": true, "remarks": true,
	"see": true, "sa": true, "since": true, "deprecated": true,
	"throw": true, "throws": true, "exception": true,
	"pre": true, "post": true, "invariant": true,
	"author": true, "authors": true, "version": true, "date": true,
	"todo": true, "bug": true, "par": true,
}

// stripBlockCommand removes a leading "\cmd" or "@cmd" from l, and for
// parameter commands also the direction and parameter name.
func stripBlockCommand(l string) string {
	trimmed := strings.TrimLeft(l, " \t")
	if trimmed == "" || (trimmed[0] != '\\' && trimmed[0] != '@') {
		return l
	}
	i := 1
	for i < len(trimmed) && isLetter(trimmed[i]) {
		i++
	}
	cmd := trimmed[1:i]
	if !blockCommands[cmd] {
		return l
	}
	rest := trimmed[i:]
	if cmd == "param" || cmd == "tparam" {
		rest = strings.TrimLeft(rest, " \t")
		if strings.HasPrefix(rest, "[") {
			if j := strings.IndexByte(rest, ']'); j >= 0 {
				rest = strings.TrimLeft(rest[j+1:], " \t")
			}
		}
		if j := strings.IndexAny(rest, " \t"); j >= 0 {
			rest = rest[j:]
		} else {
			rest = ""
		}
	}
	return rest
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
