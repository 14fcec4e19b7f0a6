// Package model defines the value types shared by the agentmesh
// intelligence engine: agents, content, communities, and the directed
// relations (attestations, voting relations, citations) the graph layer
// is built from.
//
// Instances arrive from two very different channels, the indexed
// subgraph and raw contract event logs, so every type here is a plain
// value with canonicalized keys (lowercase addresses, lowercase
// community slugs) and no source-specific fields.
package model

// AgentKind classifies a registered agent. The registry contract encodes
// it as a uint8; 0 means the caller never declared a kind.
type AgentKind uint8

const (
	AgentKindUnspecified AgentKind = 0
	AgentKindHuman       AgentKind = 1
	AgentKindAgent       AgentKind = 2
)

func (k AgentKind) String() string {
	switch k {
	case AgentKindHuman:
		return "human"
	case AgentKindAgent:
		return "agent"
	default:
		return "unspecified"
	}
}

// Agent is the observable profile of a network participant.
type Agent struct {
	Address           string    `json:"address"`
	Name              string    `json:"name,omitempty"`
	Kind              AgentKind `json:"kind"`
	RegisteredAt      int64     `json:"registeredAt"`
	PostCount         int       `json:"postCount"`
	FollowerCount     int       `json:"followerCount"`
	CommunitiesActive []string  `json:"communitiesActive,omitempty"`
	UpvotesReceived   int       `json:"upvotesReceived"`
	DownvotesReceived int       `json:"downvotesReceived"`
	AttestationCount  int       `json:"attestationCount"`
}

// Content is a published post or reply, addressed by its CID.
// Score is always Upvotes - Downvotes.
type Content struct {
	CID       string   `json:"cid"`
	Author    string   `json:"author"`
	Community string   `json:"community"`
	Score     int      `json:"score"`
	Upvotes   int      `json:"upvotes"`
	Downvotes int      `json:"downvotes"`
	IsActive  bool     `json:"isActive"`
	ParentCID string   `json:"parentCid,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Timestamp int64    `json:"timestamp"`
}

// Community is the per-slug rollup maintained by the indexer.
type Community struct {
	Slug          string `json:"slug"`
	TotalPosts    int    `json:"totalPosts"`
	UniqueAuthors int    `json:"uniqueAuthors"`
	TotalScore    int    `json:"totalScore"`
	LastPostAt    int64  `json:"lastPostAt"`
}

// Attestation is a directed trust edge attester -> subject. Revocations
// are separate tuples; ComposeAttestations folds them into the active set.
type Attestation struct {
	Attester  string `json:"attester"`
	Subject   string `json:"subject"`
	Active    bool   `json:"active"`
	Reason    string `json:"reason,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// VotingRelation aggregates every vote one agent has cast on another's
// content. A relation exists only when at least one vote was cast.
type VotingRelation struct {
	Voter     string `json:"voter"`
	Author    string `json:"author"`
	Upvotes   int    `json:"upvotes"`
	Downvotes int    `json:"downvotes"`
}

// Citation is a directed edge between two content items.
type Citation struct {
	SourceCID string `json:"sourceCid"`
	TargetCID string `json:"targetCid"`
	Timestamp int64  `json:"timestamp"`
}

// CitationCount is the per-target inbound tally kept by the indexer.
type CitationCount struct {
	CID          string `json:"cid"`
	InboundCount int    `json:"inboundCount"`
}

// CommunityDaySnapshot is a per-community daily activity rollup.
type CommunityDaySnapshot struct {
	Community     string `json:"community"`
	DayTimestamp  int64  `json:"dayTimestamp"`
	PostsInPeriod int    `json:"postsInPeriod"`
	VotesInPeriod int    `json:"votesInPeriod"`
}

// ComposeAttestations folds an ordered stream of creations and
// revocations into the active set. A revocation removes the
// (attester, subject) pair; a later re-creation reinstates it. Input
// order must be chronological; block order satisfies that for event
// streams, and indexed records already carry a composed Active flag.
func ComposeAttestations(stream []Attestation) []Attestation {
	type pair struct{ attester, subject string }
	active := make(map[pair]Attestation)
	// order tracks every pair ever created, not just the currently
	// active ones: a revoke-then-re-create must not enqueue the pair a
	// second time.
	seen := make(map[pair]struct{}, len(stream))
	order := make([]pair, 0, len(stream))

	for _, att := range stream {
		p := pair{NormalizeAddress(att.Attester), NormalizeAddress(att.Subject)}
		if !att.Active {
			delete(active, p)
			continue
		}
		if _, dup := seen[p]; !dup {
			seen[p] = struct{}{}
			order = append(order, p)
		}
		att.Attester, att.Subject = p.attester, p.subject
		active[p] = att
	}

	out := make([]Attestation, 0, len(active))
	for _, p := range order {
		if att, ok := active[p]; ok {
			out = append(out, att)
		}
	}
	return out
}
