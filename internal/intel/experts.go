package intel

import (
	"context"
	"sort"
	"time"

	"github.com/agentmesh/backend/pkg/model"
)

// Experts ranks the authors of a community by total post score.
func (s *Service) Experts(ctx context.Context, community string, limit int) ([]Expert, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	community = model.NormalizeCommunity(community)

	posts, err := runQuery(ctx, s, "experts",
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

	experts := expertsFromPosts(posts)
	if len(experts) > limit {
		experts = experts[:limit]
	}
	enrichExperts(experts, s.lookupNames(ctx, expertAddresses(experts)))
	return experts, nil
}

func (s *Service) eventCommunityPosts(ctx context.Context, community string) ([]model.Content, error) {
	posts, err := s.eventPosts(ctx)
	if err != nil {
		return nil, err
	}
	out := posts[:0:0]
	for _, p := range posts {
		if p.Community == community {
			out = append(out, p)
		}
	}
	return out, nil
}

func expertsFromPosts(posts []model.Content) []Expert {
	agg := make(map[string]*Expert)
	for _, p := range posts {
		if !p.IsActive {
			continue
		}
		e, ok := agg[p.Author]
		if !ok {
			e = &Expert{Address: p.Author}
			agg[p.Author] = e
		}
		e.PostCount++
		e.TotalScore += p.Score
	}

	out := make([]Expert, 0, len(agg))
	for _, e := range agg {
		if e.PostCount > 0 {
			e.AvgScore = float64(e.TotalScore) / float64(e.PostCount)
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalScore != out[j].TotalScore {
			return out[i].TotalScore > out[j].TotalScore
		}
		return out[i].Address < out[j].Address
	})
	return out
}

// AgentTopicMap summarises where one agent posts, ordered by total score.
func (s *Service) AgentTopicMap(ctx context.Context, agent string) ([]TopicEntry, error) {
	addr, err := s.resolveAgent(ctx, agent)
	if err != nil {
		return nil, err
	}

	posts, err := runQuery(ctx, s, "agentTopicMap",
		func(ctx context.Context) ([]model.Content, error) {
			return s.indexedAuthorPosts(ctx, addr)
		},
		func(ctx context.Context) ([]model.Content, error) {
			posts, err := s.eventPosts(ctx)
			if err != nil {
				return nil, err
			}
			out := posts[:0:0]
			for _, p := range posts {
				if p.Author == addr {
					out = append(out, p)
				}
			}
			return out, nil
		},
	)
	if err != nil {
		return nil, err
	}

	agg := make(map[string]*TopicEntry)
	for _, p := range posts {
		if !p.IsActive {
			continue
		}
		t, ok := agg[p.Community]
		if !ok {
			t = &TopicEntry{Community: p.Community}
			agg[p.Community] = t
		}
		t.PostCount++
		t.TotalScore += p.Score
	}
	out := make([]TopicEntry, 0, len(agg))
	for _, t := range agg {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalScore != out[j].TotalScore {
			return out[i].TotalScore > out[j].TotalScore
		}
		return out[i].Community < out[j].Community
	})
	return out, nil
}

// EmergingAgents lists agents registered within the window, ranked by
// posting rate.
func (s *Service) EmergingAgents(ctx context.Context, windowHours, limit int) ([]EmergingAgent, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	if windowHours <= 0 {
		windowHours = 336
	}
	now := time.Now().Unix()
	cutoff := now - int64(windowHours)*3600

	agents, err := runQuery(ctx, s, "emergingAgents",
		func(ctx context.Context) ([]model.Agent, error) {
			return s.indexedAgentsSince(ctx, cutoff)
		},
		func(ctx context.Context) ([]model.Agent, error) {
			all, err := s.eventAgents(ctx)
			if err != nil {
				return nil, err
			}
			out := make([]model.Agent, 0, len(all))
			for _, a := range all {
				if a.RegisteredAt >= cutoff {
					out = append(out, a)
				}
			}
			return out, nil
		},
	)
	if err != nil {
		return nil, err
	}

	out := make([]EmergingAgent, 0, len(agents))
	for _, a := range agents {
		days := int((now - a.RegisteredAt) / 86400)
		if days < 0 {
			days = 0
		}
		denom := days
		if denom < 1 {
			denom = 1
		}
		out = append(out, EmergingAgent{
			Address:               a.Address,
			PostCount:             a.PostCount,
			DaysSinceRegistration: days,
			ActivityRate:          float64(a.PostCount) / float64(denom),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ActivityRate != out[j].ActivityRate {
			return out[i].ActivityRate > out[j].ActivityRate
		}
		return out[i].Address < out[j].Address
	})
	if len(out) > limit {
		out = out[:limit]
	}
	enrichEmergingAgents(out, s.lookupNames(ctx, emergingAddresses(out)))
	return out, nil
}
