package intel

import (
	"context"

	"github.com/agentmesh/backend/internal/graph"
	"github.com/agentmesh/backend/pkg/model"
)

// TagCloud aggregates sanitised tags, network-wide or scoped to one
// community.
func (s *Service) TagCloud(ctx context.Context, community string, limit int) ([]graph.TagCount, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}

	posts, err := s.taggedPosts(ctx, community, "tagCloud")
	if err != nil {
		return nil, err
	}
	return graph.TagCloud(posts, limit), nil
}

// ConceptTimeline buckets the posts carrying a tag into daily bins.
func (s *Service) ConceptTimeline(ctx context.Context, tag, community string) ([]graph.TimelineBucket, int, error) {
	if graph.SanitizeTag(tag) == "" {
		return nil, 0, model.InvalidInputf("empty tag after sanitising %q", tag)
	}

	posts, err := s.taggedPosts(ctx, community, "conceptTimeline")
	if err != nil {
		return nil, 0, err
	}
	buckets, total := graph.ConceptTimeline(posts, tag)
	return buckets, total, nil
}

func (s *Service) taggedPosts(ctx context.Context, community, query string) ([]model.Content, error) {
	if community == "" {
		return runQuery(ctx, s, query,
			s.indexedAllPosts,
			func(ctx context.Context) ([]model.Content, error) { return s.eventPosts(ctx) },
		)
	}
	community = model.NormalizeCommunity(community)
	return runQuery(ctx, s, query,
		func(ctx context.Context) ([]model.Content, error) {
			return s.indexedCommunityPosts(ctx, community)
		},
		func(ctx context.Context) ([]model.Content, error) {
			return s.eventCommunityPosts(ctx, community)
		},
	)
}
