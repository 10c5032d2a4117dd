package discovery

import "strings"

// ScoreInput carries the candidate fields the opportunity scorer looks at.
// WebsiteScore is a pointer so "not assessed" and "scored zero" stay distinct.
type ScoreInput struct {
	WebsiteURL   string
	WebsiteScore *int
	City         string
	BusinessType string
}

// OpportunityScore rates how promising a candidate is as a sales target on a
// 1-10 scale. The product thesis inverts website quality: businesses with
// weak or absent web presence score higher. Pure and deterministic.
func OpportunityScore(in ScoreInput, targetLocations, highValueTypes []string) int {
	score := 5

	// Bad website = high opportunity.
	if in.WebsiteScore != nil {
		if bonus := 10 - *in.WebsiteScore; bonus > 0 {
			score += bonus
		}
	}

	// No website at all = great lead.
	if in.WebsiteURL == "" {
		score += 3
	}

	if matchesAny(in.City, targetLocations) {
		score += 2
	}

	if matchesAny(in.BusinessType, highValueTypes) {
		score += 2
	}

	return clampScore(score)
}

// matchesAny reports whether s contains any entry of list, case-insensitively.
func matchesAny(s string, list []string) bool {
	if s == "" {
		return false
	}
	lower := strings.ToLower(s)
	for _, entry := range list {
		if strings.Contains(lower, strings.ToLower(entry)) {
			return true
		}
	}
	return false
}
