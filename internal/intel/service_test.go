package intel

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmesh/backend/internal/chain"
	"github.com/agentmesh/backend/pkg/model"
)

func hexAddr(s string) common.Address { return common.HexToAddress(s) }

var (
	addrAlice = "0x" + strings.Repeat("aa", 20)
	addrBob   = "0x" + strings.Repeat("bb", 20)
	addrCarol = "0x" + strings.Repeat("cc", 20)
	addrDave  = "0x" + strings.Repeat("dd", 20)
)

// fakeIndexed serves canned JSON per root field. The longer field names
// come first so "communities" is not shadowed by "community".
type fakeIndexed struct {
	data    map[string]string
	err     error
	healthy bool
	calls   int
}

var rootFields = []string{
	"communityDaySnapshots", "citationCounts", "votingRelations",
	"attestations", "communities", "citations", "contents",
	"agents", "community", "agent",
}

func (f *fakeIndexed) Query(ctx context.Context, query string, vars map[string]any, out any) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	for _, field := range rootFields {
		if !strings.Contains(query, field+"(") {
			continue
		}
		raw, ok := f.data[field]
		if !ok {
			raw = "[]"
			if field == "agent" || field == "community" {
				raw = "null"
			}
		}
		return json.Unmarshal([]byte(`{"`+field+`":`+raw+`}`), out)
	}
	return fmt.Errorf("%w: unmatched query %s", model.ErrUpstream, query)
}

func (f *fakeIndexed) IsHealthy(ctx context.Context) bool { return f.healthy }

// fakeEvents serves canned decoded events.
type fakeEvents struct {
	posts      []chain.ContentPublishedEvent
	votes      []chain.VoteCastEvent
	created    []chain.AttestationCreatedEvent
	revoked    []chain.AttestationRevokedEvent
	follows    []chain.FollowedEvent
	registered []chain.RegisteredEvent
	blockTimes map[uint64]int64
}

func (f *fakeEvents) ContentPublished(ctx context.Context) ([]chain.ContentPublishedEvent, error) {
	return f.posts, nil
}
func (f *fakeEvents) VotesCast(ctx context.Context) ([]chain.VoteCastEvent, error) {
	return f.votes, nil
}
func (f *fakeEvents) AttestationsCreated(ctx context.Context) ([]chain.AttestationCreatedEvent, error) {
	return f.created, nil
}
func (f *fakeEvents) AttestationsRevoked(ctx context.Context) ([]chain.AttestationRevokedEvent, error) {
	return f.revoked, nil
}
func (f *fakeEvents) Follows(ctx context.Context) ([]chain.FollowedEvent, error) {
	return f.follows, nil
}
func (f *fakeEvents) Registrations(ctx context.Context) ([]chain.RegisteredEvent, error) {
	return f.registered, nil
}
func (f *fakeEvents) BlockTime(ctx context.Context, block uint64) (int64, error) {
	ts, ok := f.blockTimes[block]
	if !ok {
		return 0, fmt.Errorf("%w: no header", model.ErrTransport)
	}
	return ts, nil
}

type fakeNames struct {
	byAddr map[string]string
}

func (f *fakeNames) ResolveNameOrAddress(ctx context.Context, input string) (string, error) {
	if model.IsAddress(input) {
		return model.NormalizeAddress(input), nil
	}
	for addr, name := range f.byAddr {
		if name == strings.ToLower(input) {
			return addr, nil
		}
	}
	return "", nil
}

func (f *fakeNames) LookupAddresses(ctx context.Context, addrs []string) map[string]string {
	out := make(map[string]string)
	for _, a := range addrs {
		if name, ok := f.byAddr[a]; ok {
			out[a] = name
		}
	}
	return out
}

func contentJSON(cid, author, community string, score int, ts int64) string {
	return fmt.Sprintf(`{"id":%q,"author":{"id":%q},"community":%q,"score":"%d","upvotes":"%d","downvotes":"0","isActive":true,"timestamp":"%d"}`,
		cid, author, community, score, score, ts)
}

func TestExpertsRanking(t *testing.T) {
	indexed := &fakeIndexed{data: map[string]string{
		"contents": "[" + strings.Join([]string{
			contentJSON("p1", addrAlice, "ai", 10, 100),
			contentJSON("p2", addrBob, "ai", 4, 200),
			contentJSON("p3", addrAlice, "ai", 2, 300),
		}, ",") + "]",
	}}
	s := NewService(indexed, nil, nil, nil)

	experts, err := s.Experts(context.Background(), "AI", 2)
	require.NoError(t, err)
	require.Len(t, experts, 2)

	assert.Equal(t, addrAlice, experts[0].Address)
	assert.Equal(t, 2, experts[0].PostCount)
	assert.Equal(t, 12, experts[0].TotalScore)
	assert.Equal(t, 6.0, experts[0].AvgScore)

	assert.Equal(t, addrBob, experts[1].Address)
	assert.Equal(t, 1, experts[1].PostCount)
	assert.Equal(t, 4, experts[1].TotalScore)
	assert.Equal(t, 4.0, experts[1].AvgScore)
}

func TestExpertsInvalidLimit(t *testing.T) {
	indexed := &fakeIndexed{}
	s := NewService(indexed, nil, nil, nil)

	_, err := s.Experts(context.Background(), "ai", 0)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
	assert.Zero(t, indexed.calls)
}

func TestExpertsEmptyCommunity(t *testing.T) {
	s := NewService(&fakeIndexed{}, nil, nil, nil)

	experts, err := s.Experts(context.Background(), "deserted", 5)
	require.NoError(t, err)
	assert.Empty(t, experts)
}

func TestExpertsFallsBackToEvents(t *testing.T) {
	indexed := &fakeIndexed{err: fmt.Errorf("%w: connection refused", model.ErrTransport)}
	events := &fakeEvents{
		posts: []chain.ContentPublishedEvent{
			{Author: hexAddr(addrAlice), Cid: "p1", Community: "ai", BlockNumber: 1},
			{Author: hexAddr(addrBob), Cid: "p2", Community: "ai", BlockNumber: 2},
		},
		votes: []chain.VoteCastEvent{
			{Voter: hexAddr(addrCarol), Cid: "p1", VoteType: chain.VoteTypeUp},
			{Voter: hexAddr(addrDave), Cid: "p1", VoteType: chain.VoteTypeUp},
			{Voter: hexAddr(addrCarol), Cid: "p2", VoteType: chain.VoteTypeDown},
		},
		blockTimes: map[uint64]int64{1: 100, 2: 200},
	}
	s := NewService(indexed, events, nil, nil)

	experts, err := s.Experts(context.Background(), "ai", 5)
	require.NoError(t, err)
	require.Len(t, experts, 2)
	assert.Equal(t, addrAlice, experts[0].Address)
	assert.Equal(t, 2, experts[0].TotalScore)
	assert.Equal(t, addrBob, experts[1].Address)
	assert.Equal(t, -1, experts[1].TotalScore)
}

func TestRelatedCommunities(t *testing.T) {
	indexed := &fakeIndexed{data: map[string]string{
		"contents": "[" + strings.Join([]string{
			contentJSON("p1", addrAlice, "ai", 1, 100),
			contentJSON("p2", addrBob, "ai", 1, 100),
			contentJSON("p3", addrBob, "philosophy", 1, 100),
			contentJSON("p4", addrCarol, "philosophy", 1, 100),
			contentJSON("p5", addrDave, "sports", 1, 100),
		}, ",") + "]",
	}}
	s := NewService(indexed, nil, nil, nil)

	related, err := s.RelatedCommunities(context.Background(), "ai", 5)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, "philosophy", related[0].Community)
	assert.Equal(t, 1, related[0].SharedAgents)
	assert.InDelta(t, 1.0/3, related[0].Relatedness, 1e-9)
}

func attestationJSON(attester, subject string, ts int64) string {
	return fmt.Sprintf(`{"attester":{"id":%q},"subject":{"id":%q},"active":true,"reason":"","timestamp":"%d"}`,
		attester, subject, ts)
}

func TestTrustPath(t *testing.T) {
	indexed := &fakeIndexed{data: map[string]string{
		"attestations": "[" + strings.Join([]string{
			attestationJSON(addrAlice, addrBob, 1),
			attestationJSON(addrBob, addrCarol, 2),
			attestationJSON(addrCarol, addrDave, 3),
		}, ",") + "]",
	}}
	s := NewService(indexed, nil, nil, nil)

	path, err := s.TrustPath(context.Background(), addrAlice, addrDave, 5)
	require.NoError(t, err)
	require.True(t, path.Found)
	assert.Equal(t, []string{addrAlice, addrBob, addrCarol, addrDave}, path.Path)
	assert.Equal(t, 3, path.Depth)

	path, err = s.TrustPath(context.Background(), addrAlice, addrDave, 2)
	require.NoError(t, err)
	assert.False(t, path.Found)
}

func TestTrustPathEventFallbackComposesRevocations(t *testing.T) {
	events := &fakeEvents{
		created: []chain.AttestationCreatedEvent{
			{Attester: hexAddr(addrAlice), Subject: hexAddr(addrBob), BlockNumber: 1},
			{Attester: hexAddr(addrBob), Subject: hexAddr(addrCarol), BlockNumber: 2},
			{Attester: hexAddr(addrBob), Subject: hexAddr(addrCarol), BlockNumber: 4}, // re-created
			{Attester: hexAddr(addrCarol), Subject: hexAddr(addrDave), BlockNumber: 5},
		},
		revoked: []chain.AttestationRevokedEvent{
			{Attester: hexAddr(addrBob), Subject: hexAddr(addrCarol), BlockNumber: 3},
		},
	}
	s := NewService(nil, events, nil, nil)

	path, err := s.TrustPath(context.Background(), addrAlice, addrDave, 5)
	require.NoError(t, err)
	require.True(t, path.Found)
	assert.Equal(t, 3, path.Depth)
}

func TestAttestationsForDeduplicatesReCreation(t *testing.T) {
	events := &fakeEvents{
		created: []chain.AttestationCreatedEvent{
			{Attester: hexAddr(addrAlice), Subject: hexAddr(addrBob), BlockNumber: 1},
			{Attester: hexAddr(addrAlice), Subject: hexAddr(addrBob), BlockNumber: 3},
		},
		revoked: []chain.AttestationRevokedEvent{
			{Attester: hexAddr(addrAlice), Subject: hexAddr(addrBob), BlockNumber: 2},
		},
	}
	s := NewService(nil, events, nil, nil)

	atts, err := s.AttestationsFor(context.Background(), addrBob)
	require.NoError(t, err)
	require.Len(t, atts, 1)
	assert.Equal(t, addrAlice, atts[0].Attester)
	assert.True(t, atts[0].Active)
}

func TestTrendingVelocityRules(t *testing.T) {
	day := int64(86400)
	now := time.Now().Unix()
	snapshot := func(community string, ts int64, posts, votes int) string {
		return fmt.Sprintf(`{"community":%q,"dayTimestamp":"%d","postsInPeriod":"%d","votesInPeriod":"%d"}`,
			community, ts, posts, votes)
	}
	indexed := &fakeIndexed{data: map[string]string{
		"communityDaySnapshots": "[" + strings.Join([]string{
			snapshot("steady", now-day, 10, 3),
			snapshot("steady", now-8*day, 5, 0),
			snapshot("fresh", now-day, 4, 1),
			snapshot("fading", now-8*day, 7, 0),
		}, ",") + "]",
	}}
	s := NewService(indexed, nil, nil, nil)

	trending, err := s.TrendingCommunities(context.Background(), 168, 10)
	require.NoError(t, err)
	require.Len(t, trending, 3)

	assert.Equal(t, "fresh", trending[0].Community)
	assert.Equal(t, 10.0, trending[0].Velocity)

	assert.Equal(t, "steady", trending[1].Community)
	assert.Equal(t, 2.0, trending[1].Velocity)
	assert.Equal(t, 3, trending[1].CurrentVotes)

	assert.Equal(t, "fading", trending[2].Community)
	assert.Zero(t, trending[2].Velocity)
}

func TestCollaborationNetwork(t *testing.T) {
	relation := func(voter, author string, up int) string {
		return fmt.Sprintf(`{"voter":{"id":%q},"author":{"id":%q},"upvotes":"%d","downvotes":"0"}`, voter, author, up)
	}
	indexed := &fakeIndexed{data: map[string]string{
		"votingRelations": "[" + strings.Join([]string{
			relation(addrAlice, addrBob, 3),
			relation(addrBob, addrAlice, 5),
			relation(addrAlice, addrCarol, 2), // one-way, excluded
		}, ",") + "]",
	}}
	s := NewService(indexed, nil, nil, nil)

	partners, err := s.CollaborationNetwork(context.Background(), addrAlice, 10)
	require.NoError(t, err)
	require.Len(t, partners, 1)
	assert.Equal(t, addrBob, partners[0].Address)
	assert.Equal(t, 3, partners[0].Given)
	assert.Equal(t, 5, partners[0].Received)
	assert.Equal(t, 6, partners[0].CollabScore)
}

func TestMostCitedKeepsPageRankZero(t *testing.T) {
	indexed := &fakeIndexed{data: map[string]string{
		"citationCounts": `[{"id":"p1","inboundCount":"7"},{"id":"p2","inboundCount":"3"}]`,
	}}
	s := NewService(indexed, nil, nil, nil)

	cited, err := s.MostCited(context.Background(), "", 10)
	require.NoError(t, err)
	require.Len(t, cited, 2)
	assert.Equal(t, "p1", cited[0].CID)
	assert.Equal(t, 7, cited[0].CitationCount)
	assert.Zero(t, cited[0].PageRank)
	assert.Zero(t, cited[1].PageRank)
}

func TestCitationTreeStopsAtCycle(t *testing.T) {
	indexed := &fakeIndexed{data: map[string]string{
		"citations": `[
			{"source":{"id":"a"},"target":{"id":"b"},"timestamp":"1"},
			{"source":{"id":"b"},"target":{"id":"a"},"timestamp":"2"}
		]`,
	}}
	s := NewService(indexed, nil, nil, nil)

	tree, err := s.CitationTree(context.Background(), "a", 5, DirectionOutbound)
	require.NoError(t, err)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "b", tree.Children[0].CID)
	assert.Empty(t, tree.Children[0].Children)
}

func TestCitationTreeUnknownDirection(t *testing.T) {
	s := NewService(&fakeIndexed{}, nil, nil, nil)

	_, err := s.CitationTree(context.Background(), "a", 5, "sideways")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestInfluenceLineageFollowsFirstCitation(t *testing.T) {
	indexed := &fakeIndexed{data: map[string]string{
		"citations": `[
			{"source":{"id":"a"},"target":{"id":"late"},"timestamp":"50"},
			{"source":{"id":"a"},"target":{"id":"b"},"timestamp":"10"},
			{"source":{"id":"b"},"target":{"id":"a"},"timestamp":"20"}
		]`,
		"contents": "[" + contentJSON("a", addrAlice, "ai", 1, 100) + "," + contentJSON("b", addrBob, "philosophy", 1, 200) + "]",
	}}
	s := NewService(indexed, nil, nil, nil)

	lineage, err := s.InfluenceLineage(context.Background(), "a", 10)
	require.NoError(t, err)
	require.Len(t, lineage, 2) // a -> b, then b -> a is a cycle
	assert.Equal(t, "a", lineage[0].CID)
	assert.Equal(t, "ai", lineage[0].Community)
	assert.Equal(t, "b", lineage[1].CID)
	assert.Equal(t, "philosophy", lineage[1].Community)
}

func TestCommunityHealthUnknown(t *testing.T) {
	s := NewService(&fakeIndexed{}, nil, nil, nil)

	health, err := s.CommunityHealth(context.Background(), "ghost-town")
	require.NoError(t, err)
	assert.Equal(t, "ghost-town", health.Community)
	assert.Zero(t, health.TotalPosts)
	assert.Empty(t, health.TopCIDs)
}

func TestCommunityList(t *testing.T) {
	indexed := &fakeIndexed{data: map[string]string{
		"communities": `[
			{"id":"zeta","totalPosts":"1","uniqueAuthors":"1","totalScore":"0","lastPostAt":"0"},
			{"id":"alpha","totalPosts":"2","uniqueAuthors":"1","totalScore":"0","lastPostAt":"0"}
		]`,
	}}
	s := NewService(indexed, nil, nil, nil)

	list, err := s.CommunityList(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, list)
}

func TestEnrichmentAttachesNames(t *testing.T) {
	indexed := &fakeIndexed{data: map[string]string{
		"contents": "[" + contentJSON("p1", addrAlice, "ai", 5, 100) + "]",
	}}
	names := &fakeNames{byAddr: map[string]string{addrAlice: "alice.base.eth"}}
	s := NewService(indexed, nil, names, nil)

	experts, err := s.Experts(context.Background(), "ai", 5)
	require.NoError(t, err)
	require.Len(t, experts, 1)
	assert.Equal(t, "alice.base.eth", experts[0].Name)
}

func TestNoSourcesYieldsEmptyResult(t *testing.T) {
	s := NewService(nil, nil, nil, nil)

	experts, err := s.Experts(context.Background(), "ai", 5)
	require.NoError(t, err)
	assert.Empty(t, experts)
}

func TestBreakerSkipsDeadIndexedSource(t *testing.T) {
	indexed := &fakeIndexed{err: fmt.Errorf("%w: refused", model.ErrTransport)}
	s := NewService(indexed, nil, nil, nil)

	for i := 0; i < 3; i++ {
		_, err := s.Experts(context.Background(), "ai", 5)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, indexed.calls)

	// Three consecutive failures opened the breaker: no further probes.
	_, err := s.Experts(context.Background(), "ai", 5)
	require.NoError(t, err)
	assert.Equal(t, 3, indexed.calls)
}

func TestTagCloudScoped(t *testing.T) {
	indexed := &fakeIndexed{data: map[string]string{
		"contents": `[
			{"id":"p1","author":{"id":"` + addrAlice + `"},"community":"ai","score":"3","upvotes":"3","downvotes":"0","isActive":true,"tags":["AI ","ai"],"timestamp":"100"},
			{"id":"p2","author":{"id":"` + addrBob + `"},"community":"ai","score":"2","upvotes":"2","downvotes":"0","isActive":true,"tags":["AI"],"timestamp":"200"}
		]`,
	}}
	s := NewService(indexed, nil, nil, nil)

	cloud, err := s.TagCloud(context.Background(), "ai", 10)
	require.NoError(t, err)
	require.Len(t, cloud, 1)
	assert.Equal(t, "ai", cloud[0].Tag)
	assert.Equal(t, 3, cloud[0].Count)
}
