package intel

import (
	"context"
	"sort"

	"github.com/agentmesh/backend/internal/graph"
	"github.com/agentmesh/backend/pkg/model"
)

// TrustPath finds the shortest attestation chain from source to target.
// Both endpoints accept an address or a basename. Depth limits above 10
// are clamped.
func (s *Service) TrustPath(ctx context.Context, source, target string, maxDepth int) (TrustPath, error) {
	src, err := s.resolveAgent(ctx, source)
	if err != nil {
		return TrustPath{Path: []string{}}, err
	}
	dst, err := s.resolveAgent(ctx, target)
	if err != nil {
		return TrustPath{Path: []string{}}, err
	}

	atts, err := runQuery(ctx, s, "trustPath",
		s.indexedActiveAttestations,
		s.eventAttestations,
	)
	if err != nil {
		return TrustPath{Path: []string{}}, err
	}

	result := graph.ShortestPath(graph.BuildAttestationGraph(atts), src, dst, maxDepth)
	return TrustPath{Path: result.Path, Depth: result.Depth, Found: result.Found}, nil
}

// CollaborationNetwork finds an agent's mutual voting partners. Both
// directions must carry at least one upvote; the collaboration score is
// twice the smaller direction.
func (s *Service) CollaborationNetwork(ctx context.Context, agent string, limit int) ([]Collaborator, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	addr, err := s.resolveAgent(ctx, agent)
	if err != nil {
		return nil, err
	}

	rels, err := runQuery(ctx, s, "collaborationNetwork",
		func(ctx context.Context) ([]model.VotingRelation, error) {
			return s.indexedVotingRelationsInvolving(ctx, addr)
		},
		s.eventVotingRelations,
	)
	if err != nil {
		return nil, err
	}

	given := make(map[string]int)
	received := make(map[string]int)
	for _, rel := range rels {
		switch {
		case rel.Voter == addr && rel.Author != addr:
			given[rel.Author] += rel.Upvotes
		case rel.Author == addr && rel.Voter != addr:
			received[rel.Voter] += rel.Upvotes
		}
	}

	out := make([]Collaborator, 0, len(given))
	for partner, g := range given {
		r := received[partner]
		if g <= 0 || r <= 0 {
			continue
		}
		score := g
		if r < g {
			score = r
		}
		out = append(out, Collaborator{
			Address:     partner,
			Given:       g,
			Received:    r,
			CollabScore: 2 * score,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CollabScore != out[j].CollabScore {
			return out[i].CollabScore > out[j].CollabScore
		}
		return out[i].Address < out[j].Address
	})
	if len(out) > limit {
		out = out[:limit]
	}
	enrichCollaborators(out, s.lookupNames(ctx, collaboratorAddresses(out)))
	return out, nil
}

// VotingInfluence ranks agents by PageRank over the upvote-weighted
// voter -> author graph.
func (s *Service) VotingInfluence(ctx context.Context, limit int) ([]RankedAgent, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}

	rels, err := runQuery(ctx, s, "votingInfluence",
		s.indexedVotingRelations,
		s.eventVotingRelations,
	)
	if err != nil {
		return nil, err
	}

	ranked, _ := graph.PageRank(graph.BuildVotingGraph(rels), s.pageRankOptions())
	out := make([]RankedAgent, 0, limit)
	for _, r := range ranked {
		if len(out) == limit {
			break
		}
		out = append(out, RankedAgent{Address: r.ID, Score: r.Score})
	}
	enrichRankedAgents(out, s.lookupNames(ctx, rankedAddresses(out)))
	return out, nil
}

// TrustPageRank computes PageRank over the active attestation graph and
// returns the ranking plus the full score map. The reputation composer
// consumes the map for weighted trust and quality.
func (s *Service) TrustPageRank(ctx context.Context) ([]graph.Ranked, map[string]float64, error) {
	atts, err := runQuery(ctx, s, "trustPageRank",
		s.indexedActiveAttestations,
		s.eventAttestations,
	)
	if err != nil {
		return nil, nil, err
	}
	ranked, scores := graph.PageRank(graph.BuildAttestationGraph(atts), s.pageRankOptions())
	return ranked, scores, nil
}

func (s *Service) pageRankOptions() graph.PageRankOptions {
	opts := graph.DefaultPageRankOptions()
	if s.cfg.PageRank.DampingFactor > 0 && s.cfg.PageRank.DampingFactor < 1 {
		opts.Damping = s.cfg.PageRank.DampingFactor
	}
	if s.cfg.PageRank.MaxIterations > 0 {
		opts.MaxIterations = s.cfg.PageRank.MaxIterations
	}
	return opts
}

// AgentProfile fetches one agent's observable counters. The second
// return reports whether the agent is known to either source.
func (s *Service) AgentProfile(ctx context.Context, agent string) (model.Agent, bool, error) {
	addr, err := s.resolveAgent(ctx, agent)
	if err != nil {
		return model.Agent{}, false, err
	}

	type profile struct {
		agent model.Agent
		found bool
	}
	p, err := runQuery(ctx, s, "agentProfile",
		func(ctx context.Context) (profile, error) {
			a, found, err := s.indexedAgent(ctx, addr)
			return profile{a, found}, err
		},
		func(ctx context.Context) (profile, error) {
			all, err := s.eventAgents(ctx)
			if err != nil {
				return profile{}, err
			}
			a, found := all[addr]
			return profile{a, found}, nil
		},
	)
	if err != nil {
		return model.Agent{}, false, err
	}
	if !p.found {
		return model.Agent{Address: addr}, false, nil
	}
	return p.agent, true, nil
}

// AttestationsFor returns the active attestations targeting one agent.
func (s *Service) AttestationsFor(ctx context.Context, agent string) ([]model.Attestation, error) {
	addr, err := s.resolveAgent(ctx, agent)
	if err != nil {
		return nil, err
	}
	return runQuery(ctx, s, "attestationsFor",
		func(ctx context.Context) ([]model.Attestation, error) {
			return s.indexedAttestationsFor(ctx, addr)
		},
		func(ctx context.Context) ([]model.Attestation, error) {
			atts, err := s.eventAttestations(ctx)
			if err != nil {
				return nil, err
			}
			out := atts[:0:0]
			for _, a := range atts {
				if a.Subject == addr {
					out = append(out, a)
				}
			}
			return out, nil
		},
	)
}

// VotingRelationsFor returns the voting relations targeting one agent's
// content.
func (s *Service) VotingRelationsFor(ctx context.Context, agent string) ([]model.VotingRelation, error) {
	addr, err := s.resolveAgent(ctx, agent)
	if err != nil {
		return nil, err
	}
	return runQuery(ctx, s, "votingRelationsFor",
		func(ctx context.Context) ([]model.VotingRelation, error) {
			return s.indexedVotingRelationsFor(ctx, addr)
		},
		func(ctx context.Context) ([]model.VotingRelation, error) {
			rels, err := s.eventVotingRelations(ctx)
			if err != nil {
				return nil, err
			}
			out := rels[:0:0]
			for _, r := range rels {
				if r.Author == addr {
					out = append(out, r)
				}
			}
			return out, nil
		},
	)
}
