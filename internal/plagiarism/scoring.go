package plagiarism

import (
	"math"
)

// Severity band thresholds. Each band is closed on its lower bound.
const (
	HighThreshold   = 0.70
	MediumThreshold = 0.40
)

// DefaultCompareThreshold is the all-pairs report cut-off used by the UI
const DefaultCompareThreshold = 0.7

// Severity is the reviewer-attention band of a score
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Similarity calculates the Jaccard index |a∩b| / |a∪b|.
// Two empty sets score 0, not 1: blank extractions are never flagged.
func Similarity(a, b TokenSet) float64 {
	// Iterate the smaller set
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}

	intersection := 0
	for token := range small {
		if large.Contains(token) {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0.0
	}

	return float64(intersection) / float64(union)
}

// Classify returns the severity band of a score
func Classify(score float64) Severity {
	if score >= HighThreshold {
		return SeverityHigh
	} else if score >= MediumThreshold {
		return SeverityMedium
	}
	return SeverityLow
}

// ParseSeverity parses a band name, reporting false for unknown names
func ParseSeverity(s string) (Severity, bool) {
	switch Severity(s) {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return Severity(s), true
	default:
		return "", false
	}
}

// Color returns the tag color the UI renders for the band
func (s Severity) Color() string {
	switch s {
	case SeverityHigh:
		return "red"
	case SeverityMedium:
		return "orange"
	default:
		return "green"
	}
}

// Percent rounds a score to a whole percentage
func Percent(score float64) int {
	return int(math.Round(score * 100))
}

// SeverityCounts is the band distribution of a set of scores
type SeverityCounts struct {
	High   int `json:"high" bson:"high"`
	Medium int `json:"medium" bson:"medium"`
	Low    int `json:"low" bson:"low"`
}

// Total returns the number of classified scores
func (c SeverityCounts) Total() int {
	return c.High + c.Medium + c.Low
}

// Add classifies one score into the counts
func (c *SeverityCounts) Add(score float64) {
	switch Classify(score) {
	case SeverityHigh:
		c.High++
	case SeverityMedium:
		c.Medium++
	default:
		c.Low++
	}
}

// CountSeverities buckets every score into its band
func CountSeverities(scores []float64) SeverityCounts {
	var counts SeverityCounts
	for _, score := range scores {
		counts.Add(score)
	}
	return counts
}
