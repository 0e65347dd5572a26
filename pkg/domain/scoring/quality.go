package scoring

// Quality labels, ordered from worst to best.
const (
	LabelIncomplete = "Incomplete"
	LabelVeryLow    = "Very Low"
	LabelLow        = "Low"
	LabelModerate   = "Moderate"
	LabelHigh       = "High"
	LabelExcellent  = "Excellent"
)

// Quality is a label plus the badge tag presentation layers style it with.
type Quality struct {
	Label string `json:"label"`
	Badge string `json:"badge"`
}

var (
	qualityIncomplete = Quality{Label: LabelIncomplete, Badge: "csp-badge-incomplete"}
	qualityVeryLow    = Quality{Label: LabelVeryLow, Badge: "csp-badge-verylow"}
	qualityLow        = Quality{Label: LabelLow, Badge: "csp-badge-low"}
	qualityModerate   = Quality{Label: LabelModerate, Badge: "csp-badge-moderate"}
	qualityHigh       = Quality{Label: LabelHigh, Badge: "csp-badge-high"}
	qualityExcellent  = Quality{Label: LabelExcellent, Badge: "csp-badge-excellent"}
)

// Qualities returns every quality bucket from worst to best.
func Qualities() []Quality {
	return []Quality{qualityIncomplete, qualityVeryLow, qualityLow, qualityModerate, qualityHigh, qualityExcellent}
}

// QualityFromScore buckets 100*score/max. First match wins:
// exactly 0 is Incomplete, then <30, <50, <70, <85, else Excellent.
// A non-positive maxScore is treated as 1.
func QualityFromScore(score, maxScore float64) Quality {
	pct := 100 * score / SafeMax(maxScore)

	switch {
	case pct == 0:
		return qualityIncomplete
	case pct < 30:
		return qualityVeryLow
	case pct < 50:
		return qualityLow
	case pct < 70:
		return qualityModerate
	case pct < 85:
		return qualityHigh
	default:
		return qualityExcellent
	}
}
