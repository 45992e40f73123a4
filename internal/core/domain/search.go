package domain

// SearchResult represents a single search hit.
type SearchResult struct {
	// Document is the matched document.
	Document Document

	// Score is the relevance score; higher is better for every search mode
	// except plain vector search, where it is the cosine distance.
	Score float64

	// Snippet is an excerpt around the matched terms (full-text only).
	Snippet string
}

// IterativeResult is the outcome of a graph-expanding search.
type IterativeResult struct {
	// Results is the final result set.
	Results []SearchResult

	// Rounds is the number of searches performed.
	Rounds int

	// Converged is true when two consecutive rounds returned the same ids.
	Converged bool
}

// SourceIDs returns the source ids of results in order.
func SourceIDs(results []SearchResult) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.Document.SourceID
	}
	return ids
}

// SameSourceSet reports whether two result lists contain the same ids,
// ignoring order.
func SameSourceSet(a, b []SearchResult) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, r := range a {
		seen[r.Document.SourceID]++
	}
	for _, r := range b {
		if seen[r.Document.SourceID] == 0 {
			return false
		}
		seen[r.Document.SourceID]--
	}
	return true
}
