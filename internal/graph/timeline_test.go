package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmesh/backend/pkg/model"
)

func TestConceptTimelineDailyBuckets(t *testing.T) {
	posts := []model.Content{
		{CID: "p1", Tags: []string{"memory"}, Timestamp: 100, Score: 1},
		{CID: "p2", Tags: []string{"memory"}, Timestamp: 200, Score: 2},
		{CID: "p3", Tags: []string{"memory"}, Timestamp: 86500, Score: 3},
		{CID: "p4", Tags: []string{"other"}, Timestamp: 100},
	}

	buckets, total := ConceptTimeline(posts, "memory")
	assert.Equal(t, 3, total)
	require.Len(t, buckets, 2)

	assert.Equal(t, int64(0), buckets[0].Timestamp)
	assert.Equal(t, 2, buckets[0].Count)
	assert.Equal(t, 3, buckets[0].TotalScore)

	assert.Equal(t, int64(86400), buckets[1].Timestamp)
	assert.Equal(t, 1, buckets[1].Count)
	assert.Equal(t, 3, buckets[1].TotalScore)
}

func TestConceptTimelineSanitisesTarget(t *testing.T) {
	posts := []model.Content{
		{CID: "p1", Tags: []string{"AI "}, Timestamp: 100},
	}
	buckets, total := ConceptTimeline(posts, "  ai")
	assert.Equal(t, 1, total)
	require.Len(t, buckets, 1)
}

func TestConceptTimelineNoMatches(t *testing.T) {
	buckets, total := ConceptTimeline(nil, "memory")
	assert.Zero(t, total)
	assert.Empty(t, buckets)

	buckets, total = ConceptTimeline([]model.Content{{CID: "p1"}}, "\u200b")
	assert.Zero(t, total)
	assert.Empty(t, buckets)
}
