package intel

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/agentmesh/backend/internal/chain"
	"github.com/agentmesh/backend/internal/subgraph"
	"github.com/agentmesh/backend/pkg/model"
)

// Paging limits against the indexed source. The subgraph caps a single
// page at 1000 rows; maxRecords bounds the total a query will pull.
const (
	pageSize   = 1000
	maxRecords = 5000
)

// fetchPages pulls every page of one root field, stopping at a short
// page or the record cap.
func fetchPages[R any](ctx context.Context, s *Service, query, field string, vars map[string]any) ([]R, error) {
	var out []R
	for skip := 0; ; skip += pageSize {
		v := make(map[string]any, len(vars)+2)
		for k, val := range vars {
			v[k] = val
		}
		v["first"] = pageSize
		v["skip"] = skip

		var envelope map[string]json.RawMessage
		if err := s.indexed.Query(ctx, query, v, &envelope); err != nil {
			return nil, err
		}
		raw, ok := envelope[field]
		if !ok {
			return nil, fmt.Errorf("%w: missing field %q", model.ErrMalformedResponse, field)
		}
		var page []R
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", model.ErrMalformedResponse, field, err)
		}
		out = append(out, page...)
		if len(page) < pageSize || len(out) >= maxRecords {
			return out, nil
		}
	}
}

// Indexed fetch helpers. Undecodable records are skipped by the batch
// converters; the rest of the batch proceeds.

func (s *Service) indexedCommunityPosts(ctx context.Context, community string) ([]model.Content, error) {
	recs, err := fetchPages[subgraph.ContentRecord](ctx, s, queryContentsByCommunity, "contents",
		map[string]any{"community": model.NormalizeCommunity(community)})
	if err != nil {
		return nil, err
	}
	return subgraph.Contents(recs), nil
}

func (s *Service) indexedAuthorPosts(ctx context.Context, author string) ([]model.Content, error) {
	recs, err := fetchPages[subgraph.ContentRecord](ctx, s, queryContentsByAuthor, "contents",
		map[string]any{"author": author})
	if err != nil {
		return nil, err
	}
	return subgraph.Contents(recs), nil
}

func (s *Service) indexedAllPosts(ctx context.Context) ([]model.Content, error) {
	recs, err := fetchPages[subgraph.ContentRecord](ctx, s, queryContentsAll, "contents", nil)
	if err != nil {
		return nil, err
	}
	return subgraph.Contents(recs), nil
}

func (s *Service) indexedPostsByIDs(ctx context.Context, ids []string) ([]model.Content, error) {
	recs, err := fetchPages[subgraph.ContentRecord](ctx, s, queryContentsByIDs, "contents",
		map[string]any{"ids": ids})
	if err != nil {
		return nil, err
	}
	return subgraph.Contents(recs), nil
}

func (s *Service) indexedActiveAttestations(ctx context.Context) ([]model.Attestation, error) {
	recs, err := fetchPages[subgraph.AttestationRecord](ctx, s, queryAttestationsActive, "attestations", nil)
	if err != nil {
		return nil, err
	}
	return subgraph.Attestations(recs), nil
}

func (s *Service) indexedAttestationsFor(ctx context.Context, subject string) ([]model.Attestation, error) {
	recs, err := fetchPages[subgraph.AttestationRecord](ctx, s, queryAttestationsBySubject, "attestations",
		map[string]any{"subject": subject})
	if err != nil {
		return nil, err
	}
	return subgraph.Attestations(recs), nil
}

func (s *Service) indexedVotingRelations(ctx context.Context) ([]model.VotingRelation, error) {
	recs, err := fetchPages[subgraph.VotingRelationRecord](ctx, s, queryVotingRelationsAll, "votingRelations", nil)
	if err != nil {
		return nil, err
	}
	return subgraph.VotingRelations(recs), nil
}

func (s *Service) indexedVotingRelationsFor(ctx context.Context, author string) ([]model.VotingRelation, error) {
	recs, err := fetchPages[subgraph.VotingRelationRecord](ctx, s, queryVotingRelationsByAuthor, "votingRelations",
		map[string]any{"author": author})
	if err != nil {
		return nil, err
	}
	return subgraph.VotingRelations(recs), nil
}

func (s *Service) indexedVotingRelationsInvolving(ctx context.Context, agent string) ([]model.VotingRelation, error) {
	recs, err := fetchPages[subgraph.VotingRelationRecord](ctx, s, queryVotingRelationsByAgent, "votingRelations",
		map[string]any{"agent": agent})
	if err != nil {
		return nil, err
	}
	return subgraph.VotingRelations(recs), nil
}

func (s *Service) indexedAgent(ctx context.Context, addr string) (model.Agent, bool, error) {
	var envelope struct {
		Agent *subgraph.AgentRecord `json:"agent"`
	}
	if err := s.indexed.Query(ctx, queryAgentByID, map[string]any{"id": addr}, &envelope); err != nil {
		return model.Agent{}, false, err
	}
	if envelope.Agent == nil {
		return model.Agent{}, false, nil
	}
	agent, err := envelope.Agent.ToModel()
	if err != nil {
		return model.Agent{}, false, err
	}
	return agent, true, nil
}

func (s *Service) indexedAgentsSince(ctx context.Context, cutoff int64) ([]model.Agent, error) {
	recs, err := fetchPages[subgraph.AgentRecord](ctx, s, queryAgentsRegisteredSince, "agents",
		map[string]any{"cutoff": fmt.Sprintf("%d", cutoff)})
	if err != nil {
		return nil, err
	}
	out := make([]model.Agent, 0, len(recs))
	for _, r := range recs {
		if a, err := r.ToModel(); err == nil {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Service) indexedCommunity(ctx context.Context, slug string) (model.Community, bool, error) {
	var envelope struct {
		Community *subgraph.CommunityRecord `json:"community"`
	}
	if err := s.indexed.Query(ctx, queryCommunityByID, map[string]any{"id": slug}, &envelope); err != nil {
		return model.Community{}, false, err
	}
	if envelope.Community == nil {
		return model.Community{}, false, nil
	}
	c, err := envelope.Community.ToModel()
	if err != nil {
		return model.Community{}, false, err
	}
	return c, true, nil
}

func (s *Service) indexedCommunities(ctx context.Context) ([]model.Community, error) {
	recs, err := fetchPages[subgraph.CommunityRecord](ctx, s, queryCommunitiesAll, "communities", nil)
	if err != nil {
		return nil, err
	}
	out := make([]model.Community, 0, len(recs))
	for _, r := range recs {
		if c, err := r.ToModel(); err == nil {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Service) indexedCommunityDaysSince(ctx context.Context, cutoff int64) ([]model.CommunityDaySnapshot, error) {
	recs, err := fetchPages[subgraph.CommunityDayRecord](ctx, s, queryCommunityDaysSince, "communityDaySnapshots",
		map[string]any{"cutoff": fmt.Sprintf("%d", cutoff)})
	if err != nil {
		return nil, err
	}
	out := make([]model.CommunityDaySnapshot, 0, len(recs))
	for _, r := range recs {
		if d, err := r.ToModel(); err == nil {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Service) indexedCitations(ctx context.Context) ([]model.Citation, error) {
	recs, err := fetchPages[subgraph.CitationRecord](ctx, s, queryCitationsAll, "citations", nil)
	if err != nil {
		return nil, err
	}
	return subgraph.Citations(recs), nil
}

func (s *Service) indexedCitationCounts(ctx context.Context) ([]model.CitationCount, error) {
	recs, err := fetchPages[subgraph.CitationCountRecord](ctx, s, queryCitationCounts, "citationCounts", nil)
	if err != nil {
		return nil, err
	}
	out := make([]model.CitationCount, 0, len(recs))
	for _, r := range recs {
		if c, err := r.ToModel(); err == nil {
			out = append(out, c)
		}
	}
	return out, nil
}

// Event-path assembly. The scanner returns raw decoded events; these
// helpers fold them into the same value types the indexed path yields,
// so every algorithm downstream is source-oblivious.

// blockClock memoizes block-header timestamp lookups within one query.
type blockClock struct {
	events EventSource
	cache  map[uint64]int64
}

func newBlockClock(events EventSource) *blockClock {
	return &blockClock{events: events, cache: make(map[uint64]int64)}
}

// at returns the block timestamp, or 0 when the header lookup fails.
func (c *blockClock) at(ctx context.Context, block uint64) int64 {
	if ts, ok := c.cache[block]; ok {
		return ts
	}
	ts, err := c.events.BlockTime(ctx, block)
	if err != nil {
		ts = 0
	}
	c.cache[block] = ts
	return ts
}

// eventPosts reconstructs active content from publish and vote events.
// Timestamps come from block headers; a failed header lookup leaves the
// timestamp at 0.
func (s *Service) eventPosts(ctx context.Context) ([]model.Content, error) {
	pubs, err := s.events.ContentPublished(ctx)
	if err != nil {
		return nil, err
	}
	votes, err := s.events.VotesCast(ctx)
	if err != nil {
		// Vote-less posts are still posts.
		s.log.Warn("vote scan failed, scores default to zero", "err", err)
		votes = nil
	}

	type tally struct{ up, down int }
	tallies := make(map[string]tally, len(votes))
	for _, v := range votes {
		t := tallies[v.Cid]
		if v.VoteType == chain.VoteTypeUp {
			t.up++
		} else {
			t.down++
		}
		tallies[v.Cid] = t
	}

	clock := newBlockClock(s.events)
	out := make([]model.Content, 0, len(pubs))
	for _, p := range pubs {
		t := tallies[p.Cid]
		out = append(out, model.Content{
			CID:       p.Cid,
			Author:    model.NormalizeAddress(p.Author.Hex()),
			Community: model.NormalizeCommunity(p.Community),
			Score:     t.up - t.down,
			Upvotes:   t.up,
			Downvotes: t.down,
			IsActive:  true,
			Timestamp: clock.at(ctx, p.BlockNumber),
		})
	}
	return out, nil
}

// eventAttestations composes creations and revocations, in block order,
// into the active attestation set.
func (s *Service) eventAttestations(ctx context.Context) ([]model.Attestation, error) {
	created, err := s.events.AttestationsCreated(ctx)
	if err != nil {
		return nil, err
	}
	revoked, err := s.events.AttestationsRevoked(ctx)
	if err != nil {
		return nil, err
	}

	type entry struct {
		block uint64
		att   model.Attestation
	}
	stream := make([]entry, 0, len(created)+len(revoked))
	for _, c := range created {
		var ts int64
		if c.Timestamp != nil {
			ts = c.Timestamp.Int64()
		}
		stream = append(stream, entry{c.BlockNumber, model.Attestation{
			Attester:  model.NormalizeAddress(c.Attester.Hex()),
			Subject:   model.NormalizeAddress(c.Subject.Hex()),
			Active:    true,
			Reason:    c.Reason,
			Timestamp: ts,
		}})
	}
	for _, r := range revoked {
		stream = append(stream, entry{r.BlockNumber, model.Attestation{
			Attester: model.NormalizeAddress(r.Attester.Hex()),
			Subject:  model.NormalizeAddress(r.Subject.Hex()),
			Active:   false,
		}})
	}
	sort.SliceStable(stream, func(i, j int) bool { return stream[i].block < stream[j].block })

	atts := make([]model.Attestation, len(stream))
	for i, e := range stream {
		atts[i] = e.att
	}
	return model.ComposeAttestations(atts), nil
}

// eventVotingRelations aggregates vote events into voter -> author
// relations. Votes on unseen content are dropped: without the publish
// event the author is unknown.
func (s *Service) eventVotingRelations(ctx context.Context) ([]model.VotingRelation, error) {
	pubs, err := s.events.ContentPublished(ctx)
	if err != nil {
		return nil, err
	}
	votes, err := s.events.VotesCast(ctx)
	if err != nil {
		return nil, err
	}

	authorOf := make(map[string]string, len(pubs))
	for _, p := range pubs {
		authorOf[p.Cid] = model.NormalizeAddress(p.Author.Hex())
	}

	type pair struct{ voter, author string }
	agg := make(map[pair]*model.VotingRelation)
	order := make([]pair, 0)
	for _, v := range votes {
		author, ok := authorOf[v.Cid]
		if !ok {
			continue
		}
		p := pair{model.NormalizeAddress(v.Voter.Hex()), author}
		rel, ok := agg[p]
		if !ok {
			rel = &model.VotingRelation{Voter: p.voter, Author: p.author}
			agg[p] = rel
			order = append(order, p)
		}
		if v.VoteType == chain.VoteTypeUp {
			rel.Upvotes++
		} else {
			rel.Downvotes++
		}
	}

	out := make([]model.VotingRelation, 0, len(order))
	for _, p := range order {
		out = append(out, *agg[p])
	}
	return out, nil
}

// eventAgents reconstructs agent profiles from registration, publish,
// follow, and vote events. The registry contract only emits type 0 for
// autonomous agents, so the event path maps 0 to AgentKindAgent.
func (s *Service) eventAgents(ctx context.Context) (map[string]model.Agent, error) {
	regs, err := s.events.Registrations(ctx)
	if err != nil {
		return nil, err
	}

	clock := newBlockClock(s.events)
	agents := make(map[string]model.Agent, len(regs))
	for _, r := range regs {
		kind := model.AgentKindAgent
		if r.AgentType == uint8(model.AgentKindHuman) {
			kind = model.AgentKindHuman
		}
		addr := model.NormalizeAddress(r.Agent.Hex())
		agents[addr] = model.Agent{
			Address:      addr,
			Kind:         kind,
			RegisteredAt: clock.at(ctx, r.BlockNumber),
		}
	}

	posts, err := s.eventPosts(ctx)
	if err != nil {
		return nil, err
	}
	communities := make(map[string]map[string]struct{})
	for _, p := range posts {
		a := agents[p.Author]
		if a.Address == "" {
			a.Address = p.Author
		}
		a.PostCount++
		a.UpvotesReceived += p.Upvotes
		a.DownvotesReceived += p.Downvotes
		if communities[p.Author] == nil {
			communities[p.Author] = make(map[string]struct{})
		}
		communities[p.Author][p.Community] = struct{}{}
		agents[p.Author] = a
	}
	for addr, set := range communities {
		a := agents[addr]
		a.CommunitiesActive = make([]string, 0, len(set))
		for c := range set {
			a.CommunitiesActive = append(a.CommunitiesActive, c)
		}
		sort.Strings(a.CommunitiesActive)
		agents[addr] = a
	}

	follows, err := s.events.Follows(ctx)
	if err != nil {
		s.log.Warn("follow scan failed, follower counts default to zero", "err", err)
		follows = nil
	}
	for _, f := range follows {
		addr := model.NormalizeAddress(f.Followed.Hex())
		a := agents[addr]
		if a.Address == "" {
			a.Address = addr
		}
		a.FollowerCount++
		agents[addr] = a
	}

	atts, err := s.eventAttestations(ctx)
	if err != nil {
		s.log.Warn("attestation scan failed, attestation counts default to zero", "err", err)
		atts = nil
	}
	for _, att := range atts {
		a := agents[att.Subject]
		if a.Address == "" {
			a.Address = att.Subject
		}
		a.AttestationCount++
		agents[att.Subject] = a
	}

	return agents, nil
}
