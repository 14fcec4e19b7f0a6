package graph

// Jaccard returns the intersection size and the Jaccard similarity of
// two sets: |A ∩ B| / |A ∪ B|. Two empty sets have similarity 0.
func Jaccard(a, b map[string]struct{}) (shared int, similarity float64) {
	for k := range a {
		if _, ok := b[k]; ok {
			shared++
		}
	}
	union := len(a) + len(b) - shared
	if union == 0 {
		return 0, 0
	}
	return shared, float64(shared) / float64(union)
}
