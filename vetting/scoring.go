package vetting

import (
	"fmt"
	"strings"
)

// Signals are the inputs of the risk aggregation.
type Signals struct {
	HasHTTPS           bool
	DomainAgeDays      *int
	SuspiciousKeywords []string
	SuspiciousTLD      bool
}

// RiskSummary is the aggregated score with one reason per check.
type RiskSummary struct {
	Score     int            `json:"score"`
	Reasons   []string       `json:"reasons"`
	Breakdown ScoreBreakdown `json:"breakdown"`
}

// ScoreBreakdown shows the points each check contributed.
type ScoreBreakdown struct {
	HTTPS      int `json:"https"`
	DomainAge  int `json:"domain_age"`
	Keywords   int `json:"keywords"`
	TLD        int `json:"tld"`
	RawTotal   int `json:"raw_total"`
	FinalScore int `json:"final_score"`
}

// CalculateRisk turns the static signals into a score in [5, 100] and four
// reasons, always in the order HTTPS, domain age, keywords, TLD.
func CalculateRisk(s Signals) RiskSummary {
	var breakdown ScoreBreakdown
	reasons := make([]string, 0, 4)

	// HTTPS
	if !s.HasHTTPS {
		breakdown.HTTPS = weightHTTPSMissing
		reasons = append(reasons, "Website does not use HTTPS encryption")
	} else {
		reasons = append(reasons, "Website uses HTTPS encryption")
	}

	// Domain age
	points, reason := scoreDomainAge(s.DomainAgeDays)
	breakdown.DomainAge = points
	reasons = append(reasons, reason)

	// Keywords
	if n := len(s.SuspiciousKeywords); n > 0 {
		penalty := n * weightKeywordPerHit
		if penalty > weightKeywordsMax {
			penalty = weightKeywordsMax
		}
		breakdown.Keywords = penalty
		reasons = append(reasons, fmt.Sprintf("Found %d suspicious keyword(s) in URL: %s",
			n, strings.Join(s.SuspiciousKeywords, ", ")))
	} else {
		reasons = append(reasons, "No suspicious keywords found in URL")
	}

	// TLD
	if s.SuspiciousTLD {
		breakdown.TLD = weightSuspiciousTLD
		reasons = append(reasons, "Domain uses a suspicious top-level domain (TLD)")
	} else {
		reasons = append(reasons, "Domain uses a standard TLD")
	}

	breakdown.RawTotal = breakdown.HTTPS + breakdown.DomainAge + breakdown.Keywords + breakdown.TLD
	breakdown.FinalScore = clampScore(breakdown.RawTotal)

	return RiskSummary{
		Score:     breakdown.FinalScore,
		Reasons:   reasons,
		Breakdown: breakdown,
	}
}

func scoreDomainAge(days *int) (int, string) {
	if days == nil {
		return weightAgeUnknown, "Could not verify domain age (WHOIS unavailable)"
	}

	d := *days
	switch {
	case d < ageVeryNewDays:
		return weightDomainVeryNew, fmt.Sprintf("Domain is very new (%d days old) - high risk of being fake", d)
	case d < ageRecentDays:
		return weightDomainRecent, fmt.Sprintf("Domain is relatively new (%d days old) - moderate risk", d)
	case d < ageEstablishedDays:
		return weightDomainUnderYear, fmt.Sprintf("Domain is less than 1 year old (%d days)", d)
	default:
		return 0, fmt.Sprintf("Domain is established (%d days old)", d)
	}
}

// clampScore caps at 100 first, then applies the floor of 5: static analysis
// alone never rates a site as risk-free.
func clampScore(sum int) int {
	if sum > maxRiskScore {
		sum = maxRiskScore
	}
	if sum < minRiskScore {
		sum = minRiskScore
	}
	return sum
}
