package graph

import (
	"sort"

	"github.com/agentmesh/backend/pkg/model"
)

const secondsPerDay = 86400

// TimelineBucket is one day of activity for a tag.
type TimelineBucket struct {
	Timestamp  int64 `json:"timestamp"`
	Count      int   `json:"count"`
	TotalScore int   `json:"totalScore"`
}

// ConceptTimeline buckets the posts carrying a tag into daily bins and
// returns the buckets in ascending order plus the matched post total.
// The target tag is sanitised with the same rules as the post tags, so
// "AI " matches "ai".
func ConceptTimeline(posts []model.Content, tag string) ([]TimelineBucket, int) {
	target := SanitizeTag(tag)
	if target == "" {
		return []TimelineBucket{}, 0
	}

	buckets := make(map[int64]*TimelineBucket)
	total := 0
	for _, p := range posts {
		matched := false
		for _, raw := range p.Tags {
			if SanitizeTag(raw) == target {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		total++

		day := (p.Timestamp / secondsPerDay) * secondsPerDay
		b, ok := buckets[day]
		if !ok {
			b = &TimelineBucket{Timestamp: day}
			buckets[day] = b
		}
		b.Count++
		b.TotalScore += p.Score
	}

	out := make([]TimelineBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, total
}
