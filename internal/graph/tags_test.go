package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmesh/backend/pkg/model"
)

func TestSanitizeTag(t *testing.T) {
	assert.Equal(t, "ai", SanitizeTag("AI "))
	assert.Equal(t, "ai", SanitizeTag("\tAI\n"))
	assert.Equal(t, "reverse", SanitizeTag("\u202eReverse"))
	assert.Equal(t, "zerowidth", SanitizeTag("zero\u200bwidth"))
	assert.Equal(t, "bom", SanitizeTag("\ufeffbom"))
	assert.Equal(t, "", SanitizeTag(" \u202a\u200b "))

	long := strings.Repeat("x", 80)
	assert.Len(t, SanitizeTag(long), 50)
}

func TestTagCloudAggregation(t *testing.T) {
	posts := []model.Content{
		{CID: "p1", Tags: []string{"AI ", "ai"}, Score: 3},
		{CID: "p2", Tags: []string{"AI"}, Score: 2},
		{CID: "p3", Tags: []string{"\u202eReverse"}, Score: 1},
	}

	cloud := TagCloud(posts, 10)
	require.Len(t, cloud, 2)

	assert.Equal(t, "ai", cloud[0].Tag)
	assert.Equal(t, 3, cloud[0].Count)
	assert.Equal(t, 8, cloud[0].TotalScore) // p1 twice, p2 once

	assert.Equal(t, "reverse", cloud[1].Tag)
	assert.Equal(t, 1, cloud[1].Count)
	assert.Equal(t, 1, cloud[1].TotalScore)
}

func TestTagCloudLimitAndTieBreak(t *testing.T) {
	posts := []model.Content{
		{CID: "p1", Tags: []string{"beta", "alpha"}},
	}
	cloud := TagCloud(posts, 10)
	require.Len(t, cloud, 2)
	assert.Equal(t, "alpha", cloud[0].Tag)
	assert.Equal(t, "beta", cloud[1].Tag)

	cloud = TagCloud(posts, 1)
	require.Len(t, cloud, 1)
	assert.Equal(t, "alpha", cloud[0].Tag)
}

func TestTagCloudEmpty(t *testing.T) {
	assert.Empty(t, TagCloud(nil, 10))
	assert.Empty(t, TagCloud([]model.Content{{CID: "p1"}}, 10))
	assert.Empty(t, TagCloud([]model.Content{{CID: "p1", Tags: []string{"\u200b"}}}, 10))
}
