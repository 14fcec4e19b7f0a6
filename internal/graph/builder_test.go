package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmesh/backend/pkg/model"
)

func TestBuildAttestationGraphDedupes(t *testing.T) {
	atts := []model.Attestation{
		{Attester: "0xAA", Subject: "0xBB", Active: true},
		{Attester: "0xaa", Subject: "0xbb", Active: true}, // same pair, different case
		{Attester: "0xbb", Subject: "0xcc", Active: true},
		{Attester: "0xcc", Subject: "0xdd", Active: false}, // revoked, excluded
	}
	g := BuildAttestationGraph(atts)

	assert.Equal(t, 3, g.Len()) // 0xaa, 0xbb, 0xcc
	require.Len(t, g.Out("0xaa"), 1)
	assert.Equal(t, "0xbb", g.Out("0xaa")[0].To)
	assert.Empty(t, g.Out("0xcc"))
}

func TestBuildVotingGraphWeights(t *testing.T) {
	rels := []model.VotingRelation{
		{Voter: "0xaa", Author: "0xbb", Upvotes: 4, Downvotes: 1},
		{Voter: "0xbb", Author: "0xcc", Upvotes: 0, Downvotes: 3}, // no upvotes, excluded
	}
	g := BuildVotingGraph(rels)

	require.Len(t, g.Out("0xaa"), 1)
	assert.Equal(t, 4.0, g.Out("0xaa")[0].Weight)
	assert.Empty(t, g.Out("0xbb"))
}

func TestAuthorsByCommunity(t *testing.T) {
	posts := []model.Content{
		{CID: "p1", Author: "0xAA", Community: "AI", IsActive: true},
		{CID: "p2", Author: "0xbb", Community: "ai", IsActive: true},
		{CID: "p3", Author: "0xcc", Community: "ai", IsActive: false}, // inactive, excluded
		{CID: "p4", Author: "0xaa", Community: "", IsActive: true},
	}
	byCommunity := AuthorsByCommunity(posts)

	require.Contains(t, byCommunity, "ai")
	assert.Len(t, byCommunity["ai"], 2)
	assert.NotContains(t, byCommunity, "")
}

func TestJaccard(t *testing.T) {
	a := map[string]struct{}{"x": {}, "y": {}}
	b := map[string]struct{}{"y": {}, "z": {}}

	shared, similarity := Jaccard(a, b)
	assert.Equal(t, 1, shared)
	assert.InDelta(t, 1.0/3, similarity, 1e-9)

	shared, similarity = Jaccard(a, map[string]struct{}{"q": {}})
	assert.Zero(t, shared)
	assert.Zero(t, similarity)

	shared, similarity = Jaccard(nil, nil)
	assert.Zero(t, shared)
	assert.Zero(t, similarity)
}
