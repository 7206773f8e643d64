package vetting

import "strings"

// ScoringThresholds defines the lower bound of each risk tier. Every verdict
// source (heuristic, model recompute, merge) buckets scores with these.
type ScoringThresholds struct {
	HighMin   int `json:"high_min"`   // Default: 70
	MediumMin int `json:"medium_min"` // Default: 40
	// Low: 0-39
}

// DefaultScoringThresholds returns default thresholds
func DefaultScoringThresholds() ScoringThresholds {
	return ScoringThresholds{
		HighMin:   70,
		MediumMin: 40,
	}
}

// Tier buckets a score
func (t ScoringThresholds) Tier(score int) Tier {
	switch {
	case score >= t.HighMin:
		return TierHigh
	case score >= t.MediumMin:
		return TierMedium
	default:
		return TierLow
	}
}

// TierForScore buckets a score with the default thresholds
func TierForScore(score int) Tier {
	return DefaultScoringThresholds().Tier(score)
}

// Penalty weights
const (
	weightNoTLS              = 20
	weightLoginForm          = 15
	weightManyThirdParty     = 15
	weightSomeThirdParty     = 8
	weightLongRedirectChain  = 20
	weightShortRedirectChain = 10
	weightNoPrivacyPolicy    = 10
	weightDeepSubdomain      = 5
	weightSuspiciousTLD      = 15
	weightDomainMismatch     = 10

	maxScore = 100
)

// TLDs with a disproportionate share of abuse
var suspiciousTLDs = []string{".xyz", ".top", ".click", ".buzz", ".tk", ".ml", ".ga", ".cf"}

func hasSuspiciousTLD(host string) bool {
	for _, tld := range suspiciousTLDs {
		if strings.HasSuffix(host, tld) {
			return true
		}
	}
	return false
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > maxScore {
		return maxScore
	}
	return score
}
