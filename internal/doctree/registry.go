package doctree

import (
	"github.com/rs/zerolog/log"
)

// Registry owns every Node of one traversal. It is not safe for concurrent
// mutation; once the traversal is done it may be read from any goroutine.
type Registry struct {
	src  Source
	root *Node

	nodes   map[DeclID]*Node
	visited map[DeclID]struct{}

	// Declarations whose node is created but not yet attached to a parent.
	pending map[DeclID]struct{}

	funcDecls map[DeclID]struct{}
	funcSet   map[*Node]struct{}
	functions []*Node
}

// New creates an empty registry resolving declarations through src.
func New(src Source) *Registry {
	return &Registry{
		src:       src,
		root:      &Node{root: true},
		nodes:     make(map[DeclID]*Node),
		visited:   make(map[DeclID]struct{}),
		pending:   make(map[DeclID]struct{}),
		funcDecls: make(map[DeclID]struct{}),
		funcSet:   make(map[*Node]struct{}),
	}
}

// Root returns the sentinel root node.
func (r *Registry) Root() *Node {
	return r.root
}

// Functions returns the nodes registered through RegisterFunction, in
// registration order.
func (r *Registry) Functions() []*Node {
	return r.functions
}

// Lookup returns the node registered for id, if any.
func (r *Registry) Lookup(id DeclID) (*Node, bool) {
	n, ok := r.nodes[id]
	return n, ok
}

// Visited reports whether id has been considered, with or without a node.
func (r *Registry) Visited(id DeclID) bool {
	_, ok := r.visited[id]
	return ok
}

// Len returns the number of non-root nodes.
func (r *Registry) Len() int {
	return len(r.nodes)
}

// MarkVisited records id as considered without creating a node for it. A
// later Register of id returns nil unless a descendant forces a bridge.
func (r *Registry) MarkVisited(id DeclID) {
	log.Debug().Stringer("decl", id).Msg("mark visited")
	r.visited[id] = struct{}{}
}

// Register returns the node for id, creating it when id is documented. It
// returns nil for undocumented declarations and for declarations that were
// already considered without producing a node.
func (r *Registry) Register(id DeclID) *Node {
	return r.register(id, false)
}

// RegisterFunction registers id and, when a node results, adds it to the
// functions index.
func (r *Registry) RegisterFunction(id DeclID) *Node {
	r.funcDecls[id] = struct{}{}
	n := r.register(id, false)
	if n != nil {
		r.indexFunction(n)
	}
	return n
}

func (r *Registry) indexFunction(n *Node) {
	if _, ok := r.funcSet[n]; ok {
		return
	}
	r.funcSet[n] = struct{}{}
	r.functions = append(r.functions, n)
}

func (r *Registry) register(id DeclID, force bool) *Node {
	if _, seen := r.visited[id]; seen {
		if n, ok := r.nodes[id]; ok {
			return n
		}
		if !force {
			return nil
		}
	}
	r.visited[id] = struct{}{}

	comment := r.src.Comment(id)
	if comment == "" && !force {
		log.Debug().Stringer("decl", id).Msg("skip undocumented")
		return nil
	}

	n := &Node{Decl: id, Comment: comment}
	r.nodes[id] = n
	if force {
		log.Debug().Stringer("decl", id).Msg("bridge")
	}

	r.pending[id] = struct{}{}
	parent := r.ancestor(id)
	delete(r.pending, id)

	n.Parent = parent
	parent.Children = append(parent.Children, n)

	// A function skipped on its own visit may still be bridged later.
	if _, ok := r.funcDecls[id]; ok {
		r.indexFunction(n)
	}
	return n
}

// ancestor walks the parent chain of id up to the first visited declaration
// and returns its node, forcing one into existence when that declaration was
// skipped. It falls back to the root when the chain ends or loops.
func (r *Registry) ancestor(id DeclID) *Node {
	seen := map[DeclID]struct{}{id: {}}
	cur := id
	for {
		p, ok := r.src.Parent(cur)
		if !ok {
			return r.root
		}
		if _, loop := seen[p]; loop {
			log.Warn().Stringer("decl", id).Stringer("parent", p).Msg("parent chain loops, attaching to root")
			return r.root
		}
		seen[p] = struct{}{}

		if _, visited := r.visited[p]; visited {
			if _, busy := r.pending[p]; busy {
				log.Warn().Stringer("decl", id).Stringer("parent", p).Msg("parent is being registered, attaching to root")
				return r.root
			}
			if n := r.register(p, true); n != nil {
				return n
			}
			return r.root
		}
		cur = p
	}
}

// Walk calls fn for every non-root node in depth-first pre-order, children in
// insertion order. depth is 0 for the root's children.
func (r *Registry) Walk(fn func(n *Node, depth int)) {
	Walk(r.root, fn)
}

// Walk calls fn for every descendant of root in depth-first pre-order.
func Walk(root *Node, fn func(n *Node, depth int)) {
	var visit func(n *Node, depth int)
	visit = func(n *Node, depth int) {
		for _, c := range n.Children {
			fn(c, depth)
			visit(c, depth+1)
		}
	}
	visit(root, 0)
}
