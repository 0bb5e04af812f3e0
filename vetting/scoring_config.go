package vetting

// Points added to the risk score per signal.
const (
	weightHTTPSMissing    = 20
	weightAgeUnknown      = 15
	weightDomainVeryNew   = 30
	weightDomainRecent    = 20
	weightDomainUnderYear = 10
	weightKeywordPerHit   = 5
	weightKeywordsMax     = 30
	weightSuspiciousTLD   = 20
)

// Domain age buckets are half-open: [0,30), [30,90), [90,365), [365,inf).
const (
	ageVeryNewDays     = 30
	ageRecentDays      = 90
	ageEstablishedDays = 365
)

const (
	minRiskScore = 5
	maxRiskScore = 100
)

// RiskLevel is a coarse label for a risk score.
type RiskLevel string

const (
	RiskLevelHigh     RiskLevel = "high-risk"
	RiskLevelModerate RiskLevel = "moderate-risk"
	RiskLevelLow      RiskLevel = "low-risk"
	RiskLevelSafe     RiskLevel = "high-safety"
)

// ScoringThresholds maps protection (100 - risk score) to risk levels.
type ScoringThresholds struct {
	HighRiskBelow int `json:"high_risk_below"` // Default: 50
	ModerateBelow int `json:"moderate_below"`  // Default: 80
	LowRiskBelow  int `json:"low_risk_below"`  // Default: 90
	// High safety: 90-100
}

// DefaultScoringThresholds returns default thresholds
func DefaultScoringThresholds() ScoringThresholds {
	return ScoringThresholds{
		HighRiskBelow: 50,
		ModerateBelow: 80,
		LowRiskBelow:  90,
	}
}

// ClassifyRisk labels a risk score using the default thresholds.
func ClassifyRisk(score int) RiskLevel {
	return DefaultScoringThresholds().Classify(score)
}

func (t ScoringThresholds) Classify(score int) RiskLevel {
	protection := 100 - score
	if protection < 0 {
		protection = 0
	}

	switch {
	case protection < t.HighRiskBelow:
		return RiskLevelHigh
	case protection < t.ModerateBelow:
		return RiskLevelModerate
	case protection < t.LowRiskBelow:
		return RiskLevelLow
	default:
		return RiskLevelSafe
	}
}
