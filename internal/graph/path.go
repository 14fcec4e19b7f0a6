package graph

// maxTraversalNodes bounds the BFS work budget. Visiting more nodes
// aborts the search: on an adversarially dense graph a full traversal
// could dominate query latency.
const maxTraversalNodes = 5000

// maxPathDepth clamps the caller-supplied depth limit.
const maxPathDepth = 10

// PathResult is the outcome of a shortest-path search.
type PathResult struct {
	Path  []string `json:"path"`
	Depth int      `json:"depth"`
	Found bool     `json:"found"`
}

// ShortestPath runs a bounded breadth-first search from source to
// target. Depth limits above 10 are clamped; a non-positive limit finds
// nothing but the trivial self-path. Tie-breaking between equal-length
// paths follows adjacency insertion order.
func ShortestPath(g *Graph, source, target string, maxDepth int) PathResult {
	notFound := PathResult{Path: []string{}, Depth: 0, Found: false}

	if source == target {
		return PathResult{Path: []string{source}, Depth: 0, Found: true}
	}
	if maxDepth <= 0 {
		return notFound
	}
	if maxDepth > maxPathDepth {
		maxDepth = maxPathDepth
	}
	if !g.HasNode(source) || !g.HasNode(target) {
		return notFound
	}

	type item struct {
		node  string
		depth int
	}
	parent := map[string]string{source: ""}
	queue := []item{{source, 0}}
	visited := 1

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.depth >= maxDepth {
			continue
		}
		for _, e := range g.Out(cur.node) {
			if _, seen := parent[e.To]; seen {
				continue
			}
			parent[e.To] = cur.node
			visited++
			if visited > maxTraversalNodes {
				return notFound
			}
			if e.To == target {
				return PathResult{
					Path:  reconstruct(parent, source, target),
					Depth: cur.depth + 1,
					Found: true,
				}
			}
			queue = append(queue, item{e.To, cur.depth + 1})
		}
	}
	return notFound
}

func reconstruct(parent map[string]string, source, target string) []string {
	var rev []string
	for node := target; node != ""; node = parent[node] {
		rev = append(rev, node)
		if node == source {
			break
		}
	}
	path := make([]string, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		path = append(path, rev[i])
	}
	return path
}
