package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/exp/golden"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xonecas/clong/internal/doctree"
)

type fakeDecl struct {
	parent    int
	name      string
	kind      string
	signature string
	comment   string
	file      string
	line      int
}

// fakeProgram is a single unit whose declarations are addressed by index.
type fakeProgram []fakeDecl

func (p fakeProgram) Parent(id doctree.DeclID) (doctree.DeclID, bool) {
	if pi := p[id.Index].parent; pi >= 0 {
		return doctree.DeclID{Index: uint32(pi)}, true
	}
	return doctree.DeclID{}, false
}

func (p fakeProgram) Comment(id doctree.DeclID) string   { return p[id.Index].comment }
func (p fakeProgram) Signature(id doctree.DeclID) string { return p[id.Index].signature }
func (p fakeProgram) Name(id doctree.DeclID) string      { return p[id.Index].name }
func (p fakeProgram) Kind(id doctree.DeclID) string      { return p[id.Index].kind }

func (p fakeProgram) Location(id doctree.DeclID) (string, int) {
	return p[id.Index].file, p[id.Index].line
}

func sample(t *testing.T) (*doctree.Registry, fakeProgram) {
	t.Helper()
	p := fakeProgram{
		{parent: -1, name: "sp", kind: "namespace", signature: "namespace sp", comment: "namespace doc\n", file: "a.hpp", line: 1},
		{parent: 0, name: "foo", kind: "function", signature: "void foo()", comment: "Foo\nbar\n", file: "a.hpp", line: 3},
		{parent: 0, name: "hidden", kind: "function", signature: "void hidden()", file: "a.hpp", line: 5},
		{parent: -1, name: "main", kind: "function", signature: "int main()", comment: "The main\n", file: "main.c", line: 10},
	}
	r := doctree.New(p)
	r.Register(doctree.DeclID{Index: 0})
	r.RegisterFunction(doctree.DeclID{Index: 1})
	r.RegisterFunction(doctree.DeclID{Index: 2})
	r.RegisterFunction(doctree.DeclID{Index: 3})
	require.Equal(t, 3, r.Len())
	return r, p
}

func TestTreeGolden(t *testing.T) {
	r, p := sample(t)
	golden.RequireEqual(t, TreeString(r.Root(), p))
}

func TestJSONGolden(t *testing.T) {
	r, p := sample(t)
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, r.Root(), p))
	golden.RequireEqual(t, buf.Bytes())
}

func TestJSONRoundTrip(t *testing.T) {
	r, p := sample(t)
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, r.Root(), p))

	var got []Entry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, Entries(r.Root(), p), got)
}

func TestEmptyTree(t *testing.T) {
	r := doctree.New(fakeProgram{})
	assert.Empty(t, TreeString(r.Root(), fakeProgram{}))

	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, r.Root(), fakeProgram{}))
	assert.Equal(t, "[]\n", buf.String())
}

func TestEscapeComment(t *testing.T) {
	assert.Equal(t, `a\nb\n`, EscapeComment("a\nb\n"))
	assert.Equal(t, "", EscapeComment(""))
}

func TestStyledMatchesTreeWhenStripped(t *testing.T) {
	r, p := sample(t)
	var buf bytes.Buffer
	require.NoError(t, Styled(&buf, r.Root(), p, Style{Theme: "github-dark"}))

	out := buf.String()
	assert.Contains(t, out, "\x1b[")

	want := []string{
		`- namespace sp -- namespace doc\n`,
		`  - void foo() -- Foo\nbar\n`,
		`- int main() -- The main\n`,
	}
	got := strings.Split(strings.TrimSuffix(ansi.Strip(out), "\n"), "\n")
	assert.Equal(t, want, got)
}

func TestStyledTruncates(t *testing.T) {
	r, p := sample(t)
	var buf bytes.Buffer
	require.NoError(t, Styled(&buf, r.Root(), p, Style{Theme: "github-dark", Width: 12}))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	for _, l := range lines {
		assert.LessOrEqual(t, ansi.StringWidth(l), 12, "line %q", ansi.Strip(l))
	}
}
