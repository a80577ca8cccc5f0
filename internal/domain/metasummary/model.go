package metasummary

import "time"

// Verdict classifies how pervasive a company's legal terms are.
type Verdict string

const (
	VerdictVeryPervasive    Verdict = "very_pervasive"
	VerdictPervasive        Verdict = "pervasive"
	VerdictModerate         Verdict = "moderate"
	VerdictUserFriendly     Verdict = "user_friendly"
	VerdictVeryUserFriendly Verdict = "very_user_friendly"
	VerdictUnknown          Verdict = "unknown"
)

// severityRanks is the fixed verdict ordering used for risk sorting.
// Higher rank means more pervasive terms.
var severityRanks = map[Verdict]int{
	VerdictVeryPervasive:    5,
	VerdictPervasive:        4,
	VerdictModerate:         3,
	VerdictUserFriendly:     2,
	VerdictVeryUserFriendly: 1,
	VerdictUnknown:          0,
}

// SeverityRank returns the severity rank for a verdict. Unrecognised
// verdicts rank as unknown.
func SeverityRank(v Verdict) int {
	if rank, ok := severityRanks[v]; ok {
		return rank
	}
	return 0
}

// RiskScore is a single named risk dimension scored by the analysis engine.
type RiskScore struct {
	Score         float64 `json:"score"` // 0-10
	Justification string  `json:"justification,omitempty"`
}

// MetaSummary is the per-company AI analysis artifact: free-text summary,
// named risk scores, and key points. Read-only from this service.
type MetaSummary struct {
	CompanySlug string               `json:"company_slug"`
	Summary     string               `json:"summary"`
	Verdict     Verdict              `json:"verdict"`
	Scores      map[string]RiskScore `json:"scores,omitempty"`
	KeyPoints   []string             `json:"key_points,omitempty"`
	GeneratedAt time.Time            `json:"generated_at"`
}
