// Package reputation computes the six-component reputation score:
// tenure, activity, influence, breadth, plus PageRank-weighted trust and
// quality. Weighting trust by the attester's PageRank is the engine's
// Sybil resistance: a thousand fresh accounts attesting to each other
// hold negligible PageRank mass and so move nothing.
package reputation

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/agentmesh/backend/internal/config"
	"github.com/agentmesh/backend/internal/graph"
	"github.com/agentmesh/backend/pkg/model"
)

// Intelligence is the slice of the intel service the composer needs.
type Intelligence interface {
	TrustPageRank(ctx context.Context) ([]graph.Ranked, map[string]float64, error)
	AgentProfile(ctx context.Context, agent string) (model.Agent, bool, error)
	AttestationsFor(ctx context.Context, agent string) ([]model.Attestation, error)
	VotingRelationsFor(ctx context.Context, agent string) ([]model.VotingRelation, error)
}

// NameSource attaches basenames to scored agents.
type NameSource interface {
	LookupAddresses(ctx context.Context, addrs []string) map[string]string
}

// Score is the composed reputation of one agent. Components are in
// [0, 100] and rounded to two decimals; Overall is their mean.
type Score struct {
	Address   string  `json:"address"`
	Name      string  `json:"name,omitempty"`
	Tenure    float64 `json:"tenure"`
	Quality   float64 `json:"quality"`
	Trust     float64 `json:"trust"`
	Influence float64 `json:"influence"`
	Activity  float64 `json:"activity"`
	Breadth   float64 `json:"breadth"`
	Overall   float64 `json:"overall"`
}

// Boosts are optional external additive offsets. Each boosted component
// is clamped to [0, 100] after addition; Overall is recomputed.
type Boosts struct {
	Activity  float64 `json:"activity"`
	Quality   float64 `json:"quality"`
	Influence float64 `json:"influence"`
	Breadth   float64 `json:"breadth"`
}

// RankedScore is one row of the public PageRank listing.
type RankedScore struct {
	Address string  `json:"address"`
	Name    string  `json:"name,omitempty"`
	Score   float64 `json:"score"`
}

type prSnapshot struct {
	ranked    []graph.Ranked
	scores    map[string]float64
	expiresAt time.Time
}

// Composer scores agents over the intel service. The PageRank snapshot
// is cached with a TTL; concurrent callers may recompute redundantly and
// the last writer wins.
type Composer struct {
	intel Intelligence
	names NameSource
	cfg   *config.Config
	log   *slog.Logger

	mu       sync.RWMutex
	snapshot *prSnapshot
}

// NewComposer wires a composer. names may be nil to disable enrichment.
func NewComposer(intel Intelligence, names NameSource, cfg *config.Config) *Composer {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Composer{
		intel: intel,
		names: names,
		cfg:   cfg,
		log:   slog.Default().With("component", "reputation"),
	}
}

// ComputeScore composes the six-component score for one agent. An
// unknown agent yields a zeroed score with neutral quality, never an
// error; only invalid input and cancellation surface.
func (c *Composer) ComputeScore(ctx context.Context, agent string, withName bool, boosts *Boosts) (Score, error) {
	profile, found, err := c.intel.AgentProfile(ctx, agent)
	if err != nil {
		return Score{}, err
	}
	if !found {
		score := Score{Address: profile.Address, Quality: 50}
		c.attachName(ctx, &score, withName)
		return score, nil
	}

	snap, prErr := c.pageRank(ctx)
	if prErr != nil && ctx.Err() != nil {
		return Score{}, ctx.Err()
	}

	// Attestations and voting relations are independent fetches.
	var (
		wg      sync.WaitGroup
		atts    []model.Attestation
		rels    []model.VotingRelation
		attsErr error
		relsErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		atts, attsErr = c.intel.AttestationsFor(ctx, profile.Address)
	}()
	go func() {
		defer wg.Done()
		rels, relsErr = c.intel.VotingRelationsFor(ctx, profile.Address)
	}()
	wg.Wait()
	if ctx.Err() != nil {
		return Score{}, ctx.Err()
	}

	score := Score{
		Address:   profile.Address,
		Tenure:    tenure(profile.RegisteredAt),
		Activity:  math.Min(float64(profile.PostCount), 100),
		Influence: math.Min(float64(profile.FollowerCount), 50) / 50 * 100,
		Breadth:   math.Min(float64(len(profile.CommunitiesActive)), 10) / 10 * 100,
	}

	if prErr != nil || attsErr != nil {
		// Raw fallback: attestation count stands in for weighted trust.
		score.Trust = math.Min(float64(profile.AttestationCount)*20, 100)
	} else {
		score.Trust = c.weightedTrust(snap, atts)
	}
	if prErr != nil || relsErr != nil {
		score.Quality = rawQuality(profile)
	} else {
		score.Quality = c.weightedQuality(snap, rels, profile.PostCount)
	}

	score.round()
	score.Overall = round2(mean(score.Tenure, score.Quality, score.Trust, score.Influence, score.Activity, score.Breadth))

	if boosts != nil {
		score.Activity = round2(clamp(score.Activity+boosts.Activity, 0, 100))
		score.Quality = round2(clamp(score.Quality+boosts.Quality, 0, 100))
		score.Influence = round2(clamp(score.Influence+boosts.Influence, 0, 100))
		score.Breadth = round2(clamp(score.Breadth+boosts.Breadth, 0, 100))
		score.Overall = round2(mean(score.Tenure, score.Quality, score.Trust, score.Influence, score.Activity, score.Breadth))
	}

	c.attachName(ctx, &score, withName)
	return score, nil
}

// PageRank returns the trust-graph ranking from the cached snapshot.
func (c *Composer) PageRank(ctx context.Context, withName bool) ([]RankedScore, error) {
	snap, err := c.pageRank(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]RankedScore, 0, len(snap.ranked))
	for _, r := range snap.ranked {
		out = append(out, RankedScore{Address: r.ID, Score: r.Score})
	}
	if withName && c.names != nil && len(out) > 0 {
		addrs := make([]string, len(out))
		for i, r := range out {
			addrs[i] = r.Address
		}
		names := c.names.LookupAddresses(ctx, addrs)
		for i := range out {
			out[i].Name = names[out[i].Address]
		}
	}
	return out, nil
}

// pageRank serves the cached snapshot, recomputing on expiry. Reads take
// the shared lock; the refresh swap takes the exclusive one.
func (c *Composer) pageRank(ctx context.Context) (*prSnapshot, error) {
	c.mu.RLock()
	snap := c.snapshot
	c.mu.RUnlock()
	if snap != nil && time.Now().Before(snap.expiresAt) {
		return snap, nil
	}

	ranked, scores, err := c.intel.TrustPageRank(ctx)
	if err != nil {
		return nil, err
	}
	ttl := c.cfg.PageRank.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	snap = &prSnapshot{ranked: ranked, scores: scores, expiresAt: time.Now().Add(ttl)}

	c.mu.Lock()
	c.snapshot = snap
	c.mu.Unlock()
	compMetrics.refreshes.Inc()
	c.log.Debug("pagerank snapshot refreshed", "agents", len(scores))
	return snap, nil
}

// influenceFloor is the minimum PageRank an attester or voter needs for
// its contribution to count. A configured 0 means half the uniform
// score, 0.5/N.
func (c *Composer) influenceFloor(snap *prSnapshot) float64 {
	if c.cfg.Scoring.MinPageRankForInfluence > 0 {
		return c.cfg.Scoring.MinPageRankForInfluence
	}
	n := len(snap.scores)
	if n == 0 {
		return 0
	}
	return 0.5 / float64(n)
}

func (c *Composer) weightedTrust(snap *prSnapshot, atts []model.Attestation) float64 {
	floor := c.influenceFloor(snap)
	threshold := c.cfg.Scoring.TrustThreshold
	if threshold <= 0 {
		threshold = 0.5
	}

	weightedSum := 0.0
	for _, att := range atts {
		if !att.Active {
			continue
		}
		if pr := snap.scores[att.Attester]; pr >= floor && pr > 0 {
			weightedSum += pr
		}
	}
	return math.Min(weightedSum/threshold, 1) * 100
}

func (c *Composer) weightedQuality(snap *prSnapshot, rels []model.VotingRelation, postCount int) float64 {
	if postCount <= 0 {
		return 50
	}
	floor := c.influenceFloor(snap)
	scaling := c.cfg.Scoring.QualityScalingFactor
	if scaling <= 0 {
		scaling = 500
	}

	weightedSum := 0.0
	for _, rel := range rels {
		// Only voters who upvoted the author count; their net balance
		// still subtracts downvotes.
		if rel.Upvotes <= 0 {
			continue
		}
		if pr := snap.scores[rel.Voter]; pr >= floor && pr > 0 {
			weightedSum += pr * float64(rel.Upvotes-rel.Downvotes)
		}
	}
	return clamp(50+(weightedSum/float64(postCount))*scaling, 0, 100)
}

func rawQuality(profile model.Agent) float64 {
	if profile.PostCount <= 0 {
		return 50
	}
	avg := float64(profile.UpvotesReceived-profile.DownvotesReceived) / float64(profile.PostCount)
	return clamp(50+avg*5, 0, 100)
}

func tenure(registeredAt int64) float64 {
	if registeredAt <= 0 {
		return 0
	}
	days := float64(time.Now().Unix()-registeredAt) / 86400
	if days < 0 {
		days = 0
	}
	return math.Min(days, 365) / 365 * 100
}

func (s *Score) round() {
	s.Tenure = round2(s.Tenure)
	s.Quality = round2(s.Quality)
	s.Trust = round2(s.Trust)
	s.Influence = round2(s.Influence)
	s.Activity = round2(s.Activity)
	s.Breadth = round2(s.Breadth)
}

func (c *Composer) attachName(ctx context.Context, s *Score, withName bool) {
	if !withName || c.names == nil || s.Address == "" {
		return
	}
	s.Name = c.names.LookupAddresses(ctx, []string{s.Address})[s.Address]
}

func mean(vs ...float64) float64 {
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
