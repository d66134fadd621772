package model

// IntentLevel is the ordinal tier a final score maps to.
type IntentLevel string

const (
	IntentVeryLow  IntentLevel = "Very Low"
	IntentLow      IntentLevel = "Low"
	IntentMedium   IntentLevel = "Medium"
	IntentHigh     IntentLevel = "High"
	IntentVeryHigh IntentLevel = "Very High"
)

// IntentLevels lists all tiers from lowest to highest.
var IntentLevels = []IntentLevel{
	IntentVeryLow, IntentLow, IntentMedium, IntentHigh, IntentVeryHigh,
}

// Valid reports whether the value is a known tier.
func (l IntentLevel) Valid() bool {
	switch l {
	case IntentVeryLow, IntentLow, IntentMedium, IntentHigh, IntentVeryHigh:
		return true
	}
	return false
}

// ClassifyIntent maps a reranked score to its intent tier. Boundary values
// belong to the higher tier.
func ClassifyIntent(score int) IntentLevel {
	switch {
	case score >= 80:
		return IntentVeryHigh
	case score >= 60:
		return IntentHigh
	case score >= 40:
		return IntentMedium
	case score >= 20:
		return IntentLow
	default:
		return IntentVeryLow
	}
}
