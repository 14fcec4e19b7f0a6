package graph

import (
	"github.com/agentmesh/backend/pkg/model"
)

// BuildAttestationGraph builds the directed trust graph from the active
// attestation set. Edges are unique per (attester, subject) pair; the
// caller composes revocations before calling (model.ComposeAttestations
// for event streams, the indexer's active flag for records).
func BuildAttestationGraph(active []model.Attestation) *Graph {
	g := New()
	type pair struct{ from, to string }
	seen := make(map[pair]struct{}, len(active))

	for _, att := range active {
		if !att.Active {
			continue
		}
		from := model.NormalizeAddress(att.Attester)
		to := model.NormalizeAddress(att.Subject)
		p := pair{from, to}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		g.AddEdge(from, to, 1)
	}
	return g
}

// BuildVotingGraph builds the weighted voter -> author graph. Edge
// weight is the positive upvote aggregate; pairs with zero upvotes are
// excluded.
func BuildVotingGraph(rels []model.VotingRelation) *Graph {
	g := New()
	for _, rel := range rels {
		if rel.Upvotes <= 0 {
			continue
		}
		g.AddEdge(model.NormalizeAddress(rel.Voter), model.NormalizeAddress(rel.Author), float64(rel.Upvotes))
	}
	return g
}

// BuildCitationGraph builds the directed source -> target content graph.
func BuildCitationGraph(citations []model.Citation) *Graph {
	g := New()
	for _, c := range citations {
		g.AddEdge(c.SourceCID, c.TargetCID, 1)
	}
	return g
}

// AuthorsByCommunity groups the distinct authors of active posts per
// community, the author sets Jaccard relatedness is computed over.
func AuthorsByCommunity(posts []model.Content) map[string]map[string]struct{} {
	out := make(map[string]map[string]struct{})
	for _, p := range posts {
		if !p.IsActive || p.Community == "" {
			continue
		}
		community := model.NormalizeCommunity(p.Community)
		if out[community] == nil {
			out[community] = make(map[string]struct{})
		}
		out[community][model.NormalizeAddress(p.Author)] = struct{}{}
	}
	return out
}
