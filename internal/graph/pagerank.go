package graph

import (
	"math"
	"sort"
)

// PageRankOptions parameterise the power iteration.
type PageRankOptions struct {
	Damping       float64
	MaxIterations int
	Tolerance     float64
}

// DefaultPageRankOptions returns the documented defaults.
func DefaultPageRankOptions() PageRankOptions {
	return PageRankOptions{Damping: 0.85, MaxIterations: 20, Tolerance: 1e-6}
}

// Ranked is one node of a PageRank distribution.
type Ranked struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// PageRank runs power iteration over the graph and returns the ranking
// sorted by score descending (ties by ID for determinism) together with
// the score map. Scores are non-negative and sum to 1 across the
// population: mass from dangling nodes is redistributed uniformly so
// the distribution stays normalised.
func PageRank(g *Graph, opts PageRankOptions) ([]Ranked, map[string]float64) {
	if opts.Damping <= 0 || opts.Damping >= 1 {
		opts.Damping = 0.85
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = 20
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = 1e-6
	}

	nodes := g.Nodes()
	n := len(nodes)
	if n == 0 {
		return nil, map[string]float64{}
	}

	score := make(map[string]float64, n)
	for _, v := range nodes {
		score[v] = 1.0 / float64(n)
	}

	d := opts.Damping
	for iter := 0; iter < opts.MaxIterations; iter++ {
		next := make(map[string]float64, n)
		base := (1 - d) / float64(n)
		for _, v := range nodes {
			next[v] = base
		}

		dangling := 0.0
		for _, u := range nodes {
			edges := g.Out(u)
			wTotal := 0.0
			for _, e := range edges {
				wTotal += e.Weight
			}
			if wTotal == 0 {
				dangling += score[u]
				continue
			}
			for _, e := range edges {
				next[e.To] += d * score[u] * (e.Weight / wTotal)
			}
		}
		if dangling > 0 {
			share := d * dangling / float64(n)
			for _, v := range nodes {
				next[v] += share
			}
		}

		maxDelta := 0.0
		for _, v := range nodes {
			if delta := math.Abs(next[v] - score[v]); delta > maxDelta {
				maxDelta = delta
			}
		}
		score = next
		if maxDelta < opts.Tolerance {
			break
		}
	}

	ranked := make([]Ranked, 0, n)
	for _, v := range nodes {
		ranked = append(ranked, Ranked{ID: v, Score: score[v]})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ID < ranked[j].ID
	})
	return ranked, score
}
