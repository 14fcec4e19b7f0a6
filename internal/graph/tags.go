package graph

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agentmesh/backend/pkg/model"
)

// maxTagLength is the rune limit applied after sanitising.
const maxTagLength = 50

// TagCount aggregates occurrences of one tag.
type TagCount struct {
	Tag        string `json:"tag"`
	Count      int    `json:"count"`
	TotalScore int    `json:"totalScore"`
}

// SanitizeTag normalises a raw tag: control characters, bidi overrides
// and zero-width characters are stripped, surrounding whitespace is
// trimmed, the result is lowercased and truncated to 50 runes. An empty
// result means the tag should be dropped.
func SanitizeTag(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsControl(r) || isBidiControl(r) || isZeroWidth(r) {
			continue
		}
		b.WriteRune(r)
	}
	tag := strings.ToLower(strings.TrimSpace(b.String()))
	runes := []rune(tag)
	if len(runes) > maxTagLength {
		tag = string(runes[:maxTagLength])
	}
	return tag
}

func isBidiControl(r rune) bool {
	// LRE..RLO and PDF, LRI..PDI, ALM.
	return (r >= 0x202A && r <= 0x202E) || (r >= 0x2066 && r <= 0x2069) || r == 0x061C
}

func isZeroWidth(r rune) bool {
	// ZWSP, ZWNJ, ZWJ, LRM, RLM, and the BOM.
	return (r >= 0x200B && r <= 0x200F) || r == 0xFEFF
}

// TagCloud aggregates sanitised tags over a post set and returns the top
// limit tags by count descending (ties by tag ascending). Every
// occurrence counts, so a post repeating a tag contributes repeatedly.
func TagCloud(posts []model.Content, limit int) []TagCount {
	counts := make(map[string]*TagCount)
	for _, p := range posts {
		for _, raw := range p.Tags {
			tag := SanitizeTag(raw)
			if tag == "" {
				continue
			}
			tc, ok := counts[tag]
			if !ok {
				tc = &TagCount{Tag: tag}
				counts[tag] = tc
			}
			tc.Count++
			tc.TotalScore += p.Score
		}
	}

	out := make([]TagCount, 0, len(counts))
	for _, tc := range counts {
		out = append(out, *tc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
