package intel

import (
	"context"
	"sort"
	"time"

	"github.com/agentmesh/backend/internal/graph"
	"github.com/agentmesh/backend/pkg/model"
)

// RelatedCommunities ranks other communities by Jaccard relatedness of
// their author sets. Communities sharing no authors are excluded, so
// relatedness is always in (0, 1].
func (s *Service) RelatedCommunities(ctx context.Context, community string, limit int) ([]RelatedCommunity, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	community = model.NormalizeCommunity(community)

	posts, err := runQuery(ctx, s, "relatedCommunities",
		s.indexedAllPosts,
		func(ctx context.Context) ([]model.Content, error) { return s.eventPosts(ctx) },
	)
	if err != nil {
		return nil, err
	}

	byCommunity := graph.AuthorsByCommunity(posts)
	target, ok := byCommunity[community]
	if !ok {
		return []RelatedCommunity{}, nil
	}

	out := make([]RelatedCommunity, 0, len(byCommunity))
	for other, authors := range byCommunity {
		if other == community {
			continue
		}
		shared, similarity := graph.Jaccard(target, authors)
		if shared == 0 {
			continue
		}
		out = append(out, RelatedCommunity{
			Community:    other,
			SharedAgents: shared,
			Relatedness:  similarity,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Relatedness != out[j].Relatedness {
			return out[i].Relatedness > out[j].Relatedness
		}
		return out[i].Community < out[j].Community
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CommunityHealth summarises a community's activity. An unknown
// community yields a zero-filled summary, not an error.
func (s *Service) CommunityHealth(ctx context.Context, community string) (CommunityHealth, error) {
	community = model.NormalizeCommunity(community)
	empty := CommunityHealth{Community: community, TopCIDs: []string{}}

	return runQuery(ctx, s, "communityHealth",
		func(ctx context.Context) (CommunityHealth, error) {
			c, found, err := s.indexedCommunity(ctx, community)
			if err != nil {
				return empty, err
			}
			if !found {
				return empty, nil
			}
			posts, err := s.indexedCommunityPosts(ctx, community)
			if err != nil {
				return empty, err
			}
			return healthFromPosts(c, posts), nil
		},
		func(ctx context.Context) (CommunityHealth, error) {
			posts, err := s.eventCommunityPosts(ctx, community)
			if err != nil {
				return empty, err
			}
			if len(posts) == 0 {
				return empty, nil
			}
			authors := make(map[string]struct{})
			total := 0
			for _, p := range posts {
				authors[p.Author] = struct{}{}
				total += p.Score
			}
			return healthFromPosts(model.Community{
				Slug:          community,
				TotalPosts:    len(posts),
				UniqueAuthors: len(authors),
				TotalScore:    total,
			}, posts), nil
		},
	)
}

func healthFromPosts(c model.Community, posts []model.Content) CommunityHealth {
	h := CommunityHealth{
		Community:     c.Slug,
		TotalPosts:    c.TotalPosts,
		UniqueAuthors: c.UniqueAuthors,
		TopCIDs:       []string{},
	}
	if c.TotalPosts > 0 {
		h.AvgScore = float64(c.TotalScore) / float64(c.TotalPosts)
	}

	sorted := append([]model.Content(nil), posts...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].CID < sorted[j].CID
	})
	for _, p := range sorted {
		if len(h.TopCIDs) == 5 {
			break
		}
		h.TopCIDs = append(h.TopCIDs, p.CID)
	}
	return h
}

// CommunityList returns the known community slugs, deduplicated and
// sorted ascending.
func (s *Service) CommunityList(ctx context.Context) ([]string, error) {
	return runQuery(ctx, s, "communityList",
		func(ctx context.Context) ([]string, error) {
			communities, err := s.indexedCommunities(ctx)
			if err != nil {
				return nil, err
			}
			out := make([]string, 0, len(communities))
			for _, c := range communities {
				out = append(out, c.Slug)
			}
			return dedupSorted(out), nil
		},
		func(ctx context.Context) ([]string, error) {
			posts, err := s.eventPosts(ctx)
			if err != nil {
				return nil, err
			}
			out := make([]string, 0)
			for _, p := range posts {
				if p.Community != "" {
					out = append(out, p.Community)
				}
			}
			return dedupSorted(out), nil
		},
	)
}

func dedupSorted(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// TrendingCommunities ranks communities by posting velocity: the ratio
// of posts in the current window to the previous window of equal length.
func (s *Service) TrendingCommunities(ctx context.Context, windowHours, limit int) ([]TrendingCommunity, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	if windowHours <= 0 {
		windowHours = 168
	}
	now := time.Now().Unix()
	window := int64(windowHours) * 3600

	trending, err := runQuery(ctx, s, "trendingCommunities",
		func(ctx context.Context) ([]TrendingCommunity, error) {
			days, err := s.indexedCommunityDaysSince(ctx, now-2*window)
			if err != nil {
				return nil, err
			}
			agg := make(map[string]*TrendingCommunity)
			for _, d := range days {
				t, ok := agg[d.Community]
				if !ok {
					t = &TrendingCommunity{Community: d.Community}
					agg[d.Community] = t
				}
				switch {
				case d.DayTimestamp >= now-window:
					t.CurrentPosts += d.PostsInPeriod
					t.CurrentVotes += d.VotesInPeriod
				case d.DayTimestamp >= now-2*window:
					t.PreviousPosts += d.PostsInPeriod
				}
			}
			out := make([]TrendingCommunity, 0, len(agg))
			for _, t := range agg {
				out = append(out, *t)
			}
			return out, nil
		},
		func(ctx context.Context) ([]TrendingCommunity, error) {
			// Block timestamps drive the window split. Posts whose
			// header lookup failed carry timestamp 0 and are dropped
			// rather than lumped into the current window.
			posts, err := s.eventPosts(ctx)
			if err != nil {
				return nil, err
			}
			agg := make(map[string]*TrendingCommunity)
			for _, p := range posts {
				if p.Timestamp <= 0 || p.Timestamp < now-2*window {
					continue
				}
				t, ok := agg[p.Community]
				if !ok {
					t = &TrendingCommunity{Community: p.Community}
					agg[p.Community] = t
				}
				if p.Timestamp >= now-window {
					t.CurrentPosts++
					t.CurrentVotes += p.Upvotes + p.Downvotes
				} else {
					t.PreviousPosts++
				}
			}
			out := make([]TrendingCommunity, 0, len(agg))
			for _, t := range agg {
				out = append(out, *t)
			}
			return out, nil
		},
	)
	if err != nil {
		return nil, err
	}

	for i := range trending {
		t := &trending[i]
		switch {
		case t.PreviousPosts > 0:
			t.Velocity = float64(t.CurrentPosts) / float64(t.PreviousPosts)
		case t.CurrentPosts > 0:
			t.Velocity = 10
		default:
			t.Velocity = 0
		}
	}
	sort.Slice(trending, func(i, j int) bool {
		if trending[i].Velocity != trending[j].Velocity {
			return trending[i].Velocity > trending[j].Velocity
		}
		return trending[i].Community < trending[j].Community
	})
	if len(trending) > limit {
		trending = trending[:limit]
	}
	return trending, nil
}

// NetworkConsensus returns the top-scored active posts of a community.
func (s *Service) NetworkConsensus(ctx context.Context, community string, limit int) ([]ConsensusPost, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	community = model.NormalizeCommunity(community)

	posts, err := runQuery(ctx, s, "networkConsensus",
		func(ctx context.Context) ([]model.Content, error) {
			return s.indexedCommunityPosts(ctx, community)
		},
		func(ctx context.Context) ([]model.Content, error) {
			return s.eventCommunityPosts(ctx, community)
		},
	)
	if err != nil {
		return nil, err
	}

	active := posts[:0:0]
	for _, p := range posts {
		if p.IsActive {
			active = append(active, p)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].Score != active[j].Score {
			return active[i].Score > active[j].Score
		}
		return active[i].CID < active[j].CID
	})
	if len(active) > limit {
		active = active[:limit]
	}

	out := make([]ConsensusPost, 0, len(active))
	for _, p := range active {
		out = append(out, ConsensusPost{
			CID:       p.CID,
			Author:    p.Author,
			Score:     p.Score,
			Upvotes:   p.Upvotes,
			Downvotes: p.Downvotes,
		})
	}
	enrichConsensus(out, s.lookupNames(ctx, consensusAddresses(out)))
	return out, nil
}

// BridgeAgents finds agents posting in both of two communities, ranked
// by their combined post score.
func (s *Service) BridgeAgents(ctx context.Context, communityA, communityB string, limit int) ([]BridgeAgent, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	communityA = model.NormalizeCommunity(communityA)
	communityB = model.NormalizeCommunity(communityB)
	if communityA == communityB {
		return nil, model.InvalidInputf("bridge communities must differ, got %q twice", communityA)
	}

	posts, err := runQuery(ctx, s, "bridgeAgents",
		s.indexedAllPosts,
		func(ctx context.Context) ([]model.Content, error) { return s.eventPosts(ctx) },
	)
	if err != nil {
		return nil, err
	}

	type tally struct {
		inA, inB       int
		postsA, postsB int
	}
	agg := make(map[string]*tally)
	for _, p := range posts {
		if !p.IsActive {
			continue
		}
		switch p.Community {
		case communityA:
			t := agg[p.Author]
			if t == nil {
				t = &tally{}
				agg[p.Author] = t
			}
			t.inA += p.Score
			t.postsA++
		case communityB:
			t := agg[p.Author]
			if t == nil {
				t = &tally{}
				agg[p.Author] = t
			}
			t.inB += p.Score
			t.postsB++
		}
	}

	out := make([]BridgeAgent, 0, len(agg))
	for addr, t := range agg {
		if t.postsA == 0 || t.postsB == 0 {
			continue
		}
		out = append(out, BridgeAgent{
			Address:       addr,
			ScoreInA:      t.inA,
			ScoreInB:      t.inB,
			CombinedScore: t.inA + t.inB,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CombinedScore != out[j].CombinedScore {
			return out[i].CombinedScore > out[j].CombinedScore
		}
		return out[i].Address < out[j].Address
	})
	if len(out) > limit {
		out = out[:limit]
	}
	enrichBridgeAgents(out, s.lookupNames(ctx, bridgeAddresses(out)))
	return out, nil
}
