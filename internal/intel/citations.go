package intel

import (
	"context"
	"sort"

	"github.com/agentmesh/backend/internal/graph"
	"github.com/agentmesh/backend/pkg/model"
)

// Citations have no contract event, so the event path cannot serve
// citation queries: their fallback is the well-typed empty result.

const (
	maxCitationTreeDepth    = 5
	maxCitationTreeChildren = 100
	maxLineageDepth         = 20
)

func (s *Service) fetchCitations(ctx context.Context, query string) ([]model.Citation, error) {
	return runQuery(ctx, s, query,
		s.indexedCitations,
		func(ctx context.Context) ([]model.Citation, error) { return []model.Citation{}, nil },
	)
}

// communitiesOf maps the given cids to their communities, best effort.
func (s *Service) communitiesOf(ctx context.Context, cids []string) map[string]string {
	if len(cids) == 0 {
		return map[string]string{}
	}
	posts, err := runQuery(ctx, s, "contentCommunities",
		func(ctx context.Context) ([]model.Content, error) {
			return s.indexedPostsByIDs(ctx, cids)
		},
		func(ctx context.Context) ([]model.Content, error) { return s.eventPosts(ctx) },
	)
	if err != nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(posts))
	for _, p := range posts {
		out[p.CID] = p.Community
	}
	return out
}

// CitationTree walks the citation graph from a root, outbound (what the
// root cites, transitively) or inbound (what cites the root). Depth is
// clamped to 5 and the child cap of 100 applies per node, so a subtree's
// shape never depends on its siblings' fan-out; a visited set keeps
// cycles from recursing.
func (s *Service) CitationTree(ctx context.Context, cid string, maxDepth int, direction CitationDirection) (*CitationNode, error) {
	if cid == "" {
		return nil, model.InvalidInputf("empty cid")
	}
	if direction != DirectionOutbound && direction != DirectionInbound {
		return nil, model.InvalidInputf("unknown citation direction %q", direction)
	}
	if maxDepth <= 0 || maxDepth > maxCitationTreeDepth {
		maxDepth = maxCitationTreeDepth
	}

	citations, err := s.fetchCitations(ctx, "citationTree")
	if err != nil {
		return nil, err
	}

	adjacency := make(map[string][]string)
	for _, c := range citations {
		if direction == DirectionOutbound {
			adjacency[c.SourceCID] = append(adjacency[c.SourceCID], c.TargetCID)
		} else {
			adjacency[c.TargetCID] = append(adjacency[c.TargetCID], c.SourceCID)
		}
	}

	root := &CitationNode{CID: cid}
	visited := map[string]struct{}{cid: {}}
	stack := []*CitationNode{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node.Depth >= maxDepth {
			continue
		}
		for _, next := range adjacency[node.CID] {
			if _, seen := visited[next]; seen {
				continue
			}
			if len(node.Children) >= maxCitationTreeChildren {
				break
			}
			visited[next] = struct{}{}
			child := &CitationNode{CID: next, Depth: node.Depth + 1}
			node.Children = append(node.Children, child)
			stack = append(stack, child)
		}
	}
	return root, nil
}

// InfluenceLineage follows the chain of first outbound citations from a
// root: at every hop the earliest citation by timestamp is taken. The
// chain stops at a leaf, a cycle, or the depth clamp, and each step
// records the content's community so transitions are visible.
func (s *Service) InfluenceLineage(ctx context.Context, cid string, maxDepth int) ([]LineageStep, error) {
	if cid == "" {
		return nil, model.InvalidInputf("empty cid")
	}
	if maxDepth <= 0 || maxDepth > maxLineageDepth {
		maxDepth = maxLineageDepth
	}

	citations, err := s.fetchCitations(ctx, "influenceLineage")
	if err != nil {
		return nil, err
	}

	outbound := make(map[string][]model.Citation)
	for _, c := range citations {
		outbound[c.SourceCID] = append(outbound[c.SourceCID], c)
	}
	for _, edges := range outbound {
		sort.Slice(edges, func(i, j int) bool {
			if edges[i].Timestamp != edges[j].Timestamp {
				return edges[i].Timestamp < edges[j].Timestamp
			}
			return edges[i].TargetCID < edges[j].TargetCID
		})
	}

	chain := []LineageStep{{CID: cid}}
	visited := map[string]struct{}{cid: {}}
	current := cid
	for len(chain) <= maxDepth {
		edges := outbound[current]
		if len(edges) == 0 {
			break
		}
		first := edges[0]
		if _, cycle := visited[first.TargetCID]; cycle {
			break
		}
		visited[first.TargetCID] = struct{}{}
		chain = append(chain, LineageStep{CID: first.TargetCID, Timestamp: first.Timestamp})
		current = first.TargetCID
	}

	cids := make([]string, len(chain))
	for i, step := range chain {
		cids[i] = step.CID
	}
	communities := s.communitiesOf(ctx, cids)
	for i := range chain {
		chain[i].Community = communities[chain[i].CID]
	}
	return chain, nil
}

// MostCited ranks content by inbound citation count, optionally scoped
// to one community. PageRank stays 0 here; CitationPageRank computes it.
func (s *Service) MostCited(ctx context.Context, community string, limit int) ([]CitedContent, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}

	counts, err := runQuery(ctx, s, "mostCited",
		s.indexedCitationCounts,
		func(ctx context.Context) ([]model.CitationCount, error) { return []model.CitationCount{}, nil },
	)
	if err != nil {
		return nil, err
	}

	if community != "" {
		community = model.NormalizeCommunity(community)
		cids := make([]string, 0, len(counts))
		for _, c := range counts {
			cids = append(cids, c.CID)
		}
		communities := s.communitiesOf(ctx, cids)
		filtered := counts[:0:0]
		for _, c := range counts {
			if communities[c.CID] == community {
				filtered = append(filtered, c)
			}
		}
		counts = filtered
	}

	sort.Slice(counts, func(i, j int) bool {
		if counts[i].InboundCount != counts[j].InboundCount {
			return counts[i].InboundCount > counts[j].InboundCount
		}
		return counts[i].CID < counts[j].CID
	})
	if len(counts) > limit {
		counts = counts[:limit]
	}

	out := make([]CitedContent, 0, len(counts))
	for _, c := range counts {
		out = append(out, CitedContent{CID: c.CID, CitationCount: c.InboundCount})
	}
	return out, nil
}

// CitationBridges finds content whose outgoing citations touch both of
// two communities, ranked by the number of qualifying citations.
// PageRank stays 0 here as well.
func (s *Service) CitationBridges(ctx context.Context, communityA, communityB string, limit int) ([]CitedContent, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	communityA = model.NormalizeCommunity(communityA)
	communityB = model.NormalizeCommunity(communityB)
	if communityA == communityB {
		return nil, model.InvalidInputf("bridge communities must differ, got %q twice", communityA)
	}

	citations, err := s.fetchCitations(ctx, "citationBridges")
	if err != nil {
		return nil, err
	}
	if len(citations) == 0 {
		return []CitedContent{}, nil
	}

	targets := make(map[string]struct{})
	for _, c := range citations {
		targets[c.TargetCID] = struct{}{}
	}
	cids := make([]string, 0, len(targets))
	for cid := range targets {
		cids = append(cids, cid)
	}
	sort.Strings(cids)
	communities := s.communitiesOf(ctx, cids)

	type tally struct {
		touchesA, touchesB bool
		qualifying         int
	}
	agg := make(map[string]*tally)
	for _, c := range citations {
		community := communities[c.TargetCID]
		if community != communityA && community != communityB {
			continue
		}
		t, ok := agg[c.SourceCID]
		if !ok {
			t = &tally{}
			agg[c.SourceCID] = t
		}
		if community == communityA {
			t.touchesA = true
		} else {
			t.touchesB = true
		}
		t.qualifying++
	}

	out := make([]CitedContent, 0, len(agg))
	for cid, t := range agg {
		if !t.touchesA || !t.touchesB {
			continue
		}
		out = append(out, CitedContent{CID: cid, CitationCount: t.qualifying})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CitationCount != out[j].CitationCount {
			return out[i].CitationCount > out[j].CitationCount
		}
		return out[i].CID < out[j].CID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CitationPageRank ranks content by PageRank over the citation graph,
// optionally restricted to citations within one community.
func (s *Service) CitationPageRank(ctx context.Context, community string, limit int) ([]CitedContent, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}

	citations, err := s.fetchCitations(ctx, "citationPageRank")
	if err != nil {
		return nil, err
	}
	if len(citations) == 0 {
		return []CitedContent{}, nil
	}

	if community != "" {
		community = model.NormalizeCommunity(community)
		involved := make(map[string]struct{})
		for _, c := range citations {
			involved[c.SourceCID] = struct{}{}
			involved[c.TargetCID] = struct{}{}
		}
		cids := make([]string, 0, len(involved))
		for cid := range involved {
			cids = append(cids, cid)
		}
		sort.Strings(cids)
		communities := s.communitiesOf(ctx, cids)

		filtered := citations[:0:0]
		for _, c := range citations {
			if communities[c.SourceCID] == community && communities[c.TargetCID] == community {
				filtered = append(filtered, c)
			}
		}
		citations = filtered
		if len(citations) == 0 {
			return []CitedContent{}, nil
		}
	}

	inbound := make(map[string]int)
	for _, c := range citations {
		inbound[c.TargetCID]++
	}

	ranked, _ := graph.PageRank(graph.BuildCitationGraph(citations), s.pageRankOptions())
	out := make([]CitedContent, 0, limit)
	for _, r := range ranked {
		if len(out) == limit {
			break
		}
		out = append(out, CitedContent{
			CID:           r.ID,
			PageRank:      r.Score,
			CitationCount: inbound[r.ID],
		})
	}
	return out, nil
}
