package doctree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource is an in-memory declaration graph keyed by Index.
type fakeSource struct {
	parents  map[uint32]uint32
	comments map[uint32]string
	calls    map[uint32]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		parents:  make(map[uint32]uint32),
		comments: make(map[uint32]string),
		calls:    make(map[uint32]int),
	}
}

func (s *fakeSource) decl(i uint32, parent uint32, comment string) DeclID {
	if parent != 0 {
		s.parents[i] = parent
	}
	s.comments[i] = comment
	return DeclID{Index: i}
}

func (s *fakeSource) Parent(id DeclID) (DeclID, bool) {
	p, ok := s.parents[id.Index]
	if !ok {
		return DeclID{}, false
	}
	return DeclID{Index: p}, true
}

func (s *fakeSource) Comment(id DeclID) string {
	s.calls[id.Index]++
	return s.comments[id.Index]
}

func id(i uint32) DeclID { return DeclID{Index: i} }

func TestRegister_Idempotent(t *testing.T) {
	src := newFakeSource()
	ns := src.decl(1, 0, " ns\n")
	fn := src.decl(2, 1, " fn\n")

	r := New(src)
	require.NotNil(t, r.Register(ns))
	first := r.Register(fn)
	second := r.Register(fn)

	require.NotNil(t, first)
	assert.Same(t, first, second)
	assert.Len(t, first.Parent.Children, 1)
	assert.Equal(t, 1, src.calls[2], "memoised registration must not re-extract the comment")
	assert.Equal(t, 2, r.Len())
}

func TestRegister_SkipsUndocumented(t *testing.T) {
	src := newFakeSource()
	fn := src.decl(1, 0, "")
	cls := src.decl(2, 0, "")
	method := src.decl(3, 2, "")

	r := New(src)
	assert.Nil(t, r.RegisterFunction(fn))
	assert.Nil(t, r.Register(cls))
	assert.Nil(t, r.RegisterFunction(method))

	assert.Empty(t, r.Root().Children)
	assert.Empty(t, r.Functions())
	assert.True(t, r.Visited(cls))
	assert.Equal(t, 0, r.Len())
}

func TestRegister_SkippedStaysSkipped(t *testing.T) {
	src := newFakeSource()
	d := src.decl(1, 0, "")

	r := New(src)
	assert.Nil(t, r.Register(d))
	src.comments[1] = " late\n"
	assert.Nil(t, r.Register(d))
	assert.Equal(t, 1, src.calls[1])
}

func TestRegister_BridgesUndocumentedParent(t *testing.T) {
	// struct not_documented { /// doc
	//   void i_am_documented(); };
	src := newFakeSource()
	record := src.decl(1, 0, "")
	method := src.decl(2, 1, " Is documented\n")

	r := New(src)
	assert.Nil(t, r.Register(record))
	n := r.RegisterFunction(method)
	require.NotNil(t, n)

	root := r.Root()
	require.Len(t, root.Children, 1)
	bridge := root.Children[0]
	assert.Equal(t, record, bridge.Decl)
	assert.Empty(t, bridge.Comment)
	require.Len(t, bridge.Children, 1)
	assert.Same(t, n, bridge.Children[0])
	assert.Same(t, bridge, n.Parent)

	// The bridge is now registered, so revisiting it returns it.
	assert.Same(t, bridge, r.Register(record))
}

func TestRegister_BridgesMultipleLevels(t *testing.T) {
	src := newFakeSource()
	ns := src.decl(1, 0, "")
	record := src.decl(2, 1, "")
	method := src.decl(3, 2, " Is documented\n")

	r := New(src)
	r.Register(ns)
	r.Register(record)
	n := r.RegisterFunction(method)
	require.NotNil(t, n)

	root := r.Root()
	require.Len(t, root.Children, 1)
	assert.Equal(t, ns, root.Children[0].Decl)
	require.Len(t, root.Children[0].Children, 1)
	assert.Equal(t, record, root.Children[0].Children[0].Decl)
	require.Len(t, root.Children[0].Children[0].Children, 1)
	assert.Same(t, n, root.Children[0].Children[0].Children[0])
	assert.Equal(t, 2, n.Depth())
}

func TestRegister_UnvisitedAncestorsAreSkipped(t *testing.T) {
	// Ancestors that were never visited are walked past, not bridged.
	src := newFakeSource()
	ns := src.decl(1, 0, " ns\n")
	src.decl(2, 1, "")
	fn := src.decl(3, 2, " fn\n")

	r := New(src)
	nsNode := r.Register(ns)
	n := r.Register(fn)
	require.NotNil(t, n)
	assert.Same(t, nsNode, n.Parent)
	assert.Equal(t, 2, r.Len())
}

func TestRegister_NoVisitedAncestorAttachesToRoot(t *testing.T) {
	src := newFakeSource()
	src.decl(1, 0, "")
	fn := src.decl(2, 1, " fn\n")

	r := New(src)
	n := r.Register(fn)
	require.NotNil(t, n)
	assert.Same(t, r.Root(), n.Parent)
}

func TestMarkVisited_SuppressesRegistration(t *testing.T) {
	src := newFakeSource()
	tpl := src.decl(1, 0, " tpl\n")
	pattern := src.decl(2, 1, " tpl\n")

	r := New(src)
	r.MarkVisited(pattern)
	r.MarkVisited(pattern)
	require.NotNil(t, r.RegisterFunction(tpl))
	assert.Nil(t, r.RegisterFunction(pattern))
	assert.Len(t, r.Functions(), 1)
	assert.Equal(t, 0, src.calls[2])
}

func TestMarkVisited_PatternBridgesMembers(t *testing.T) {
	src := newFakeSource()
	tpl := src.decl(1, 0, " tpl\n")
	pattern := src.decl(2, 1, "")
	member := src.decl(3, 2, " member\n")

	r := New(src)
	tplNode := r.Register(tpl)
	r.MarkVisited(pattern)
	n := r.Register(member)
	require.NotNil(t, n)
	require.NotNil(t, n.Parent)
	assert.Equal(t, pattern, n.Parent.Decl)
	assert.Same(t, tplNode, n.Parent.Parent)
}

func TestRegisterFunction_IndexOnce(t *testing.T) {
	src := newFakeSource()
	fn := src.decl(1, 0, " fn\n")
	v := src.decl(2, 0, " var\n")

	r := New(src)
	a := r.RegisterFunction(fn)
	b := r.RegisterFunction(fn)
	r.Register(v)

	assert.Same(t, a, b)
	require.Len(t, r.Functions(), 1)
	assert.Equal(t, fn, r.Functions()[0].Decl)
}

func TestRegisterFunction_BridgedLaterJoinsIndex(t *testing.T) {
	src := newFakeSource()
	fn := src.decl(1, 0, "")
	local := src.decl(2, 1, " local\n")

	r := New(src)
	assert.Nil(t, r.RegisterFunction(fn))
	require.NotNil(t, r.Register(local))

	require.Len(t, r.Functions(), 1)
	assert.Equal(t, fn, r.Functions()[0].Decl)
}

func TestRegister_CyclicParentsTerminate(t *testing.T) {
	tests := []struct {
		name    string
		parents map[uint32]uint32
		visit   []uint32
	}{
		{"self parent", map[uint32]uint32{1: 1}, []uint32{1}},
		{"unvisited loop", map[uint32]uint32{1: 2, 2: 3, 3: 2}, []uint32{1}},
		{"visited loop", map[uint32]uint32{1: 2, 2: 1}, []uint32{2, 1}},
		{"long visited loop", map[uint32]uint32{1: 2, 2: 3, 3: 1}, []uint32{3, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newFakeSource()
			for i := uint32(1); i <= 3; i++ {
				src.comments[i] = ""
			}
			src.comments[1] = " documented\n"
			src.parents = tt.parents

			r := New(src)
			for _, v := range tt.visit {
				r.Register(id(v))
			}

			n, ok := r.Lookup(id(1))
			require.True(t, ok)
			assertReachable(t, r, n)

			count := 0
			r.Walk(func(*Node, int) { count++ })
			assert.Equal(t, r.Len(), count, "every node appears exactly once under root")
		})
	}
}

func TestWalk_PreOrderDepths(t *testing.T) {
	src := newFakeSource()
	a := src.decl(1, 0, " a\n")
	b := src.decl(2, 1, " b\n")
	c := src.decl(3, 2, " c\n")
	d := src.decl(4, 1, " d\n")
	e := src.decl(5, 0, " e\n")

	r := New(src)
	for _, x := range []DeclID{a, b, c, d, e} {
		r.Register(x)
	}

	type visit struct {
		decl  DeclID
		depth int
	}
	var got []visit
	r.Walk(func(n *Node, depth int) {
		got = append(got, visit{n.Decl, depth})
	})
	assert.Equal(t, []visit{{a, 0}, {b, 1}, {c, 2}, {d, 1}, {e, 0}}, got)
}

func assertReachable(t *testing.T, r *Registry, n *Node) {
	t.Helper()
	steps := 0
	for p := n; p != r.Root(); p = p.Parent {
		require.NotNil(t, p.Parent, "node detached from root")
		require.Less(t, steps, r.Len(), "parent links form a cycle")
		steps++
	}
}
