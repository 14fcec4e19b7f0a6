// Package graph holds the in-memory graph representation and the pure
// algorithms of the intelligence engine: PageRank, bounded shortest
// path, Jaccard relatedness, tag aggregation, and timeline bucketing.
//
// Nothing here performs I/O or raises errors; every function consumes
// whatever graph it is given. Graphs are keyed by canonical string IDs
// (addresses, CIDs, slugs), never by pointers, so cyclic structures are
// traversed iteratively with explicit visited sets and work budgets.
package graph

// Edge is a directed, weighted out-edge.
type Edge struct {
	To     string
	Weight float64
}

// Graph is a directed multigraph keyed by node ID. Node and edge
// insertion order is preserved, which makes traversal tie-breaking
// deterministic for a fixed input stream.
type Graph struct {
	nodes map[string]struct{}
	order []string
	out   map[string][]Edge
}

func New() *Graph {
	return &Graph{
		nodes: make(map[string]struct{}),
		out:   make(map[string][]Edge),
	}
}

func (g *Graph) AddNode(id string) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = struct{}{}
	g.order = append(g.order, id)
}

// AddEdge inserts a directed edge, creating both endpoints as needed.
// Duplicate edges are permitted; weighted builders rely on that.
func (g *Graph) AddEdge(from, to string, weight float64) {
	g.AddNode(from)
	g.AddNode(to)
	g.out[from] = append(g.out[from], Edge{To: to, Weight: weight})
}

// Nodes returns node IDs in insertion order.
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.order...)
}

// Out returns the out-edges of a node in insertion order.
func (g *Graph) Out(id string) []Edge {
	return g.out[id]
}

func (g *Graph) Len() int {
	return len(g.nodes)
}

func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}
