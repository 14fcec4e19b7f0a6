package reputation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmesh/backend/internal/config"
	"github.com/agentmesh/backend/internal/graph"
	"github.com/agentmesh/backend/pkg/model"
)

var (
	addrAgent = "0x" + strings.Repeat("aa", 20)
	addrWhale = "0x" + strings.Repeat("bb", 20) // high pagerank
	addrDust  = "0x" + strings.Repeat("cc", 20) // below the floor
)

type fakeIntel struct {
	profile model.Agent
	found   bool
	scores  map[string]float64
	atts    []model.Attestation
	rels    []model.VotingRelation

	prErr      error
	trustCalls int
}

func (f *fakeIntel) TrustPageRank(ctx context.Context) ([]graph.Ranked, map[string]float64, error) {
	f.trustCalls++
	if f.prErr != nil {
		return nil, nil, f.prErr
	}
	ranked := make([]graph.Ranked, 0, len(f.scores))
	for id, score := range f.scores {
		ranked = append(ranked, graph.Ranked{ID: id, Score: score})
	}
	return ranked, f.scores, nil
}

func (f *fakeIntel) AgentProfile(ctx context.Context, agent string) (model.Agent, bool, error) {
	if !f.found {
		return model.Agent{Address: agent}, false, nil
	}
	return f.profile, true, nil
}

func (f *fakeIntel) AttestationsFor(ctx context.Context, agent string) ([]model.Attestation, error) {
	return f.atts, nil
}

func (f *fakeIntel) VotingRelationsFor(ctx context.Context, agent string) ([]model.VotingRelation, error) {
	return f.rels, nil
}

type fakeNames struct{ byAddr map[string]string }

func (f *fakeNames) LookupAddresses(ctx context.Context, addrs []string) map[string]string {
	out := make(map[string]string)
	for _, a := range addrs {
		if name, ok := f.byAddr[a]; ok {
			out[a] = name
		}
	}
	return out
}

func scoringConfig() *config.Config {
	cfg := config.Default()
	cfg.Scoring.MinPageRankForInfluence = 0.05
	return cfg
}

func registeredDaysAgo(days int) int64 {
	return time.Now().Unix() - int64(days)*86400
}

func TestComputeScoreWeightedTrust(t *testing.T) {
	intel := &fakeIntel{
		found: true,
		profile: model.Agent{
			Address:           addrAgent,
			RegisteredAt:      registeredDaysAgo(400), // past the tenure cap
			PostCount:         10,
			FollowerCount:     25,
			CommunitiesActive: []string{"a", "b", "c", "d", "e"},
		},
		scores: map[string]float64{addrWhale: 0.20, addrDust: 0.00001},
		atts: []model.Attestation{
			{Attester: addrWhale, Subject: addrAgent, Active: true},
			{Attester: addrDust, Subject: addrAgent, Active: true},
		},
	}
	c := NewComposer(intel, nil, scoringConfig())

	score, err := c.ComputeScore(context.Background(), addrAgent, false, nil)
	require.NoError(t, err)

	// Only the whale's 0.20 counts: min(0.20/0.5, 1) * 100.
	assert.Equal(t, 40.0, score.Trust)
	assert.Equal(t, 100.0, score.Tenure)
	assert.Equal(t, 10.0, score.Activity)
	assert.Equal(t, 50.0, score.Influence)
	assert.Equal(t, 50.0, score.Breadth)
	// No weighted votes: quality stays at the neutral midpoint.
	assert.Equal(t, 50.0, score.Quality)

	want := (40.0 + 100 + 10 + 50 + 50 + 50) / 6
	assert.InDelta(t, want, score.Overall, 0.01)
}

func TestComputeScoreRevokedAttestationIgnored(t *testing.T) {
	intel := &fakeIntel{
		found:   true,
		profile: model.Agent{Address: addrAgent, PostCount: 1},
		scores:  map[string]float64{addrWhale: 0.5},
		atts: []model.Attestation{
			{Attester: addrWhale, Subject: addrAgent, Active: false},
		},
	}
	c := NewComposer(intel, nil, scoringConfig())

	score, err := c.ComputeScore(context.Background(), addrAgent, false, nil)
	require.NoError(t, err)
	assert.Zero(t, score.Trust)
}

func TestComputeScoreWeightedQuality(t *testing.T) {
	intel := &fakeIntel{
		found:   true,
		profile: model.Agent{Address: addrAgent, PostCount: 10},
		scores:  map[string]float64{addrWhale: 0.20, addrDust: 0.00001},
		rels: []model.VotingRelation{
			{Voter: addrWhale, Author: addrAgent, Upvotes: 5, Downvotes: 0},
			{Voter: addrDust, Author: addrAgent, Upvotes: 100, Downvotes: 0}, // below the floor
		},
	}
	c := NewComposer(intel, nil, scoringConfig())

	score, err := c.ComputeScore(context.Background(), addrAgent, false, nil)
	require.NoError(t, err)

	// 50 + (0.20 * 5 / 10) * 500 = 100, already at the cap.
	assert.Equal(t, 100.0, score.Quality)
}

func TestComputeScoreQualityIgnoresDownvoteOnlyVoters(t *testing.T) {
	intel := &fakeIntel{
		found:   true,
		profile: model.Agent{Address: addrAgent, PostCount: 10},
		scores:  map[string]float64{addrWhale: 0.20, addrDust: 0.20},
		rels: []model.VotingRelation{
			{Voter: addrWhale, Author: addrAgent, Upvotes: 5, Downvotes: 2},
			{Voter: addrDust, Author: addrAgent, Upvotes: 0, Downvotes: 50}, // never upvoted
		},
	}
	c := NewComposer(intel, nil, scoringConfig())

	score, err := c.ComputeScore(context.Background(), addrAgent, false, nil)
	require.NoError(t, err)

	// Only the upvoting relation counts, at its net balance:
	// 50 + (0.20 * (5 - 2) / 10) * 500 = 80.
	assert.Equal(t, 80.0, score.Quality)
}

func TestComputeScoreUnknownAgent(t *testing.T) {
	c := NewComposer(&fakeIntel{}, nil, nil)

	score, err := c.ComputeScore(context.Background(), addrAgent, false, nil)
	require.NoError(t, err)
	assert.Equal(t, addrAgent, score.Address)
	assert.Equal(t, 50.0, score.Quality)
	assert.Zero(t, score.Overall)
	assert.Zero(t, score.Trust)
	assert.Zero(t, score.Tenure)
}

func TestComputeScoreQualityNeutralWithoutPosts(t *testing.T) {
	intel := &fakeIntel{
		found:   true,
		profile: model.Agent{Address: addrAgent, PostCount: 0},
		scores:  map[string]float64{addrWhale: 0.5},
	}
	c := NewComposer(intel, nil, scoringConfig())

	score, err := c.ComputeScore(context.Background(), addrAgent, false, nil)
	require.NoError(t, err)
	assert.Equal(t, 50.0, score.Quality)
	assert.Zero(t, score.Activity)
}

func TestComputeScoreRawFallback(t *testing.T) {
	intel := &fakeIntel{
		found: true,
		profile: model.Agent{
			Address:          addrAgent,
			PostCount:        4,
			UpvotesReceived:  8,
			AttestationCount: 3,
		},
		prErr: errors.New("both sources down"),
	}
	c := NewComposer(intel, nil, scoringConfig())

	score, err := c.ComputeScore(context.Background(), addrAgent, false, nil)
	require.NoError(t, err)

	// Raw formulas: trust = min(3*20, 100), quality = 50 + (8/4)*5.
	assert.Equal(t, 60.0, score.Trust)
	assert.Equal(t, 60.0, score.Quality)
}

func TestComputeScoreBoosts(t *testing.T) {
	intel := &fakeIntel{
		found:   true,
		profile: model.Agent{Address: addrAgent, PostCount: 90},
		scores:  map[string]float64{},
	}
	c := NewComposer(intel, nil, scoringConfig())

	boosted, err := c.ComputeScore(context.Background(), addrAgent, false, &Boosts{
		Activity: 50, // 90 + 50 clamps to 100
		Quality:  -10,
		Breadth:  5,
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, boosted.Activity)
	assert.Equal(t, 40.0, boosted.Quality)
	assert.Equal(t, 5.0, boosted.Breadth)

	want := (boosted.Tenure + boosted.Quality + boosted.Trust + boosted.Influence + boosted.Activity + boosted.Breadth) / 6
	assert.InDelta(t, want, boosted.Overall, 0.01)
}

func TestComputeScoreCancellation(t *testing.T) {
	intel := &fakeIntel{found: true, profile: model.Agent{Address: addrAgent}, prErr: errors.New("slow")}
	c := NewComposer(intel, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ComputeScore(ctx, addrAgent, false, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPageRankSnapshotCached(t *testing.T) {
	intel := &fakeIntel{scores: map[string]float64{addrWhale: 1}}
	c := NewComposer(intel, nil, nil)

	for i := 0; i < 3; i++ {
		ranked, err := c.PageRank(context.Background(), false)
		require.NoError(t, err)
		require.Len(t, ranked, 1)
		assert.Equal(t, addrWhale, ranked[0].Address)
	}
	assert.Equal(t, 1, intel.trustCalls)
}

func TestPageRankSnapshotExpiry(t *testing.T) {
	intel := &fakeIntel{scores: map[string]float64{addrWhale: 1}}
	cfg := config.Default()
	cfg.PageRank.CacheTTL = 10 * time.Millisecond
	c := NewComposer(intel, nil, cfg)

	_, err := c.PageRank(context.Background(), false)
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	_, err = c.PageRank(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, intel.trustCalls)
}

func TestPageRankWithNames(t *testing.T) {
	intel := &fakeIntel{scores: map[string]float64{addrWhale: 1}}
	names := &fakeNames{byAddr: map[string]string{addrWhale: "whale.base.eth"}}
	c := NewComposer(intel, names, nil)

	ranked, err := c.PageRank(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "whale.base.eth", ranked[0].Name)
}

func TestInfluenceFloorDefaultsToHalfUniform(t *testing.T) {
	intel := &fakeIntel{
		found:   true,
		profile: model.Agent{Address: addrAgent, PostCount: 1},
		// Four agents: uniform is 0.25, default floor 0.125.
		scores: map[string]float64{addrWhale: 0.7, addrDust: 0.1, "a": 0.1, "b": 0.1},
		atts: []model.Attestation{
			{Attester: addrWhale, Subject: addrAgent, Active: true},
			{Attester: addrDust, Subject: addrAgent, Active: true},
		},
	}
	c := NewComposer(intel, nil, config.Default())

	score, err := c.ComputeScore(context.Background(), addrAgent, false, nil)
	require.NoError(t, err)

	// Only the 0.7 attester clears 0.125: min(0.7/0.5, 1) * 100.
	assert.Equal(t, 100.0, score.Trust)
}
