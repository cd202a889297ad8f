package resolve

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// matchConfidence calculates a confidence score between 0.0 and 1.0 for how
// well a search result name matches the query that produced it. The score is
// diagnostic only; it is logged for debugging but never gates a match, since
// the search API already returned its best candidate.
func matchConfidence(query, itemName string) float64 {
	normalizedQuery := strings.ToLower(strings.TrimSpace(query))
	normalizedItem := strings.ToLower(strings.TrimSpace(itemName))

	if normalizedQuery == normalizedItem {
		return 1.0
	}

	// Substring containment scores by length ratio
	if strings.Contains(normalizedItem, normalizedQuery) {
		ratio := float64(len(normalizedQuery)) / float64(len(normalizedItem))
		return 0.8 + (ratio * 0.2)
	}
	if strings.Contains(normalizedQuery, normalizedItem) {
		ratio := float64(len(normalizedItem)) / float64(len(normalizedQuery))
		return 0.7 + (ratio * 0.2)
	}

	matches := fuzzy.Find(normalizedQuery, []string{normalizedItem})
	if len(matches) > 0 {
		// Fuzzy scores are unbounded; normalize into the 0.1-0.7 band so a
		// fuzzy hit never outranks a containment hit.
		fuzzyScore := float64(matches[0].Score)
		maxExpectedScore := float64(len(normalizedQuery) * 2)
		confidence := (fuzzyScore / maxExpectedScore) * 0.7

		if confidence > 0.7 {
			confidence = 0.7
		}
		if confidence < 0.1 {
			confidence = 0.1
		}

		return confidence
	}

	return 0.1
}
