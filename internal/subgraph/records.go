package subgraph

import (
	"strconv"

	"github.com/agentmesh/backend/pkg/model"
)

// The subgraph serialises BigInt and BigDecimal fields as strings, so
// every record type carries string numerics and a ToModel conversion.
// A record that fails to parse is a decode error; the batch converters
// skip it and keep the rest.

// Ref is an entity reference selected as { id }.
type Ref struct {
	ID string `json:"id"`
}

type AgentRecord struct {
	ID                string   `json:"id"`
	AgentType         string   `json:"agentType"`
	RegisteredAt      string   `json:"registeredAt"`
	PostCount         string   `json:"postCount"`
	FollowerCount     string   `json:"followerCount"`
	UpvotesReceived   string   `json:"upvotesReceived"`
	DownvotesReceived string   `json:"downvotesReceived"`
	AttestationCount  string   `json:"attestationCount"`
	CommunitiesActive []string `json:"communitiesActive"`
}

func (r AgentRecord) ToModel() (model.Agent, error) {
	registered, err := atoi64(r.RegisteredAt)
	if err != nil {
		return model.Agent{}, err
	}
	posts, err := atoi(r.PostCount)
	if err != nil {
		return model.Agent{}, err
	}
	followers, err := atoi(r.FollowerCount)
	if err != nil {
		return model.Agent{}, err
	}
	up, err := atoi(r.UpvotesReceived)
	if err != nil {
		return model.Agent{}, err
	}
	down, err := atoi(r.DownvotesReceived)
	if err != nil {
		return model.Agent{}, err
	}
	atts, err := atoi(r.AttestationCount)
	if err != nil {
		return model.Agent{}, err
	}

	kind := model.AgentKindUnspecified
	if n, err := atoi(r.AgentType); err == nil && n >= 0 && n <= 2 {
		kind = model.AgentKind(n)
	}

	communities := make([]string, 0, len(r.CommunitiesActive))
	for _, c := range r.CommunitiesActive {
		communities = append(communities, model.NormalizeCommunity(c))
	}

	return model.Agent{
		Address:           model.NormalizeAddress(r.ID),
		Kind:              kind,
		RegisteredAt:      registered,
		PostCount:         posts,
		FollowerCount:     followers,
		UpvotesReceived:   up,
		DownvotesReceived: down,
		AttestationCount:  atts,
		CommunitiesActive: communities,
	}, nil
}

type ContentRecord struct {
	ID        string   `json:"id"`
	Author    Ref      `json:"author"`
	Community string   `json:"community"`
	Score     string   `json:"score"`
	Upvotes   string   `json:"upvotes"`
	Downvotes string   `json:"downvotes"`
	IsActive  bool     `json:"isActive"`
	Parent    *Ref     `json:"parent"`
	Tags      []string `json:"tags"`
	Timestamp string   `json:"timestamp"`
}

func (r ContentRecord) ToModel() (model.Content, error) {
	score, err := atoi(r.Score)
	if err != nil {
		return model.Content{}, err
	}
	up, err := atoi(r.Upvotes)
	if err != nil {
		return model.Content{}, err
	}
	down, err := atoi(r.Downvotes)
	if err != nil {
		return model.Content{}, err
	}
	ts, err := atoi64(r.Timestamp)
	if err != nil {
		return model.Content{}, err
	}

	c := model.Content{
		CID:       r.ID,
		Author:    model.NormalizeAddress(r.Author.ID),
		Community: model.NormalizeCommunity(r.Community),
		Score:     score,
		Upvotes:   up,
		Downvotes: down,
		IsActive:  r.IsActive,
		Tags:      r.Tags,
		Timestamp: ts,
	}
	if r.Parent != nil {
		c.ParentCID = r.Parent.ID
	}
	return c, nil
}

type CommunityRecord struct {
	ID            string `json:"id"`
	TotalPosts    string `json:"totalPosts"`
	UniqueAuthors string `json:"uniqueAuthors"`
	TotalScore    string `json:"totalScore"`
	LastPostAt    string `json:"lastPostAt"`
}

func (r CommunityRecord) ToModel() (model.Community, error) {
	posts, err := atoi(r.TotalPosts)
	if err != nil {
		return model.Community{}, err
	}
	authors, err := atoi(r.UniqueAuthors)
	if err != nil {
		return model.Community{}, err
	}
	score, err := atoi(r.TotalScore)
	if err != nil {
		return model.Community{}, err
	}
	last, err := atoi64(r.LastPostAt)
	if err != nil {
		return model.Community{}, err
	}
	return model.Community{
		Slug:          model.NormalizeCommunity(r.ID),
		TotalPosts:    posts,
		UniqueAuthors: authors,
		TotalScore:    score,
		LastPostAt:    last,
	}, nil
}

type AttestationRecord struct {
	Attester  Ref    `json:"attester"`
	Subject   Ref    `json:"subject"`
	Active    bool   `json:"active"`
	Reason    string `json:"reason"`
	Timestamp string `json:"timestamp"`
}

func (r AttestationRecord) ToModel() (model.Attestation, error) {
	ts, err := atoi64(r.Timestamp)
	if err != nil {
		return model.Attestation{}, err
	}
	return model.Attestation{
		Attester:  model.NormalizeAddress(r.Attester.ID),
		Subject:   model.NormalizeAddress(r.Subject.ID),
		Active:    r.Active,
		Reason:    r.Reason,
		Timestamp: ts,
	}, nil
}

type VotingRelationRecord struct {
	Voter     Ref    `json:"voter"`
	Author    Ref    `json:"author"`
	Upvotes   string `json:"upvotes"`
	Downvotes string `json:"downvotes"`
}

func (r VotingRelationRecord) ToModel() (model.VotingRelation, error) {
	up, err := atoi(r.Upvotes)
	if err != nil {
		return model.VotingRelation{}, err
	}
	down, err := atoi(r.Downvotes)
	if err != nil {
		return model.VotingRelation{}, err
	}
	return model.VotingRelation{
		Voter:     model.NormalizeAddress(r.Voter.ID),
		Author:    model.NormalizeAddress(r.Author.ID),
		Upvotes:   up,
		Downvotes: down,
	}, nil
}

type CommunityDayRecord struct {
	Community     string `json:"community"`
	DayTimestamp  string `json:"dayTimestamp"`
	PostsInPeriod string `json:"postsInPeriod"`
	VotesInPeriod string `json:"votesInPeriod"`
}

func (r CommunityDayRecord) ToModel() (model.CommunityDaySnapshot, error) {
	day, err := atoi64(r.DayTimestamp)
	if err != nil {
		return model.CommunityDaySnapshot{}, err
	}
	posts, err := atoi(r.PostsInPeriod)
	if err != nil {
		return model.CommunityDaySnapshot{}, err
	}
	votes, err := atoi(r.VotesInPeriod)
	if err != nil {
		return model.CommunityDaySnapshot{}, err
	}
	return model.CommunityDaySnapshot{
		Community:     model.NormalizeCommunity(r.Community),
		DayTimestamp:  day,
		PostsInPeriod: posts,
		VotesInPeriod: votes,
	}, nil
}

type CitationRecord struct {
	Source    Ref    `json:"source"`
	Target    Ref    `json:"target"`
	Timestamp string `json:"timestamp"`
}

func (r CitationRecord) ToModel() (model.Citation, error) {
	ts, err := atoi64(r.Timestamp)
	if err != nil {
		return model.Citation{}, err
	}
	return model.Citation{
		SourceCID: r.Source.ID,
		TargetCID: r.Target.ID,
		Timestamp: ts,
	}, nil
}

type CitationCountRecord struct {
	ID           string `json:"id"`
	InboundCount string `json:"inboundCount"`
}

func (r CitationCountRecord) ToModel() (model.CitationCount, error) {
	n, err := atoi(r.InboundCount)
	if err != nil {
		return model.CitationCount{}, err
	}
	return model.CitationCount{CID: r.ID, InboundCount: n}, nil
}

// Contents converts a record batch, silently skipping undecodable rows.
func Contents(recs []ContentRecord) []model.Content {
	out := make([]model.Content, 0, len(recs))
	for _, r := range recs {
		if c, err := r.ToModel(); err == nil {
			out = append(out, c)
		}
	}
	return out
}

// Attestations converts a record batch, skipping undecodable rows.
func Attestations(recs []AttestationRecord) []model.Attestation {
	out := make([]model.Attestation, 0, len(recs))
	for _, r := range recs {
		if a, err := r.ToModel(); err == nil {
			out = append(out, a)
		}
	}
	return out
}

// VotingRelations converts a record batch, skipping undecodable rows.
func VotingRelations(recs []VotingRelationRecord) []model.VotingRelation {
	out := make([]model.VotingRelation, 0, len(recs))
	for _, r := range recs {
		if v, err := r.ToModel(); err == nil {
			out = append(out, v)
		}
	}
	return out
}

// Citations converts a record batch, skipping undecodable rows.
func Citations(recs []CitationRecord) []model.Citation {
	out := make([]model.Citation, 0, len(recs))
	for _, r := range recs {
		if c, err := r.ToModel(); err == nil {
			out = append(out, c)
		}
	}
	return out
}

func atoi(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, model.ErrDecode
	}
	return n, nil
}

func atoi64(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, model.ErrDecode
	}
	return n, nil
}
