package domain

import (
	"fmt"
	"math"
)

// maxImpactHundredths caps the total at 999,999.99 points.
const maxImpactHundredths = 99_999_999

// ImpactScore is an immutable ecological impact figure with exactly two
// decimal places, held as hundredths of a point.
type ImpactScore struct {
	hundredths int64
}

// NewImpactScore builds a score from hundredths of a point.
func NewImpactScore(hundredths int64) (ImpactScore, error) {
	if hundredths < 0 {
		return ImpactScore{}, NewValidationError("impact_score", "impact score cannot be negative")
	}
	if hundredths > maxImpactHundredths {
		return ImpactScore{}, NewValidationError("impact_score", "impact score cannot exceed 999999.99")
	}
	return ImpactScore{hundredths: hundredths}, nil
}

// ImpactScoreFromFloat builds a score from a decimal figure. Values with
// more than two decimal places are rejected rather than rounded.
func ImpactScoreFromFloat(value float64) (ImpactScore, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return ImpactScore{}, NewValidationError("impact_score", "impact score must be a finite number")
	}
	scaled := value * 100
	if math.Abs(scaled-math.Round(scaled)) > 1e-6 {
		return ImpactScore{}, NewValidationError("impact_score",
			"impact score cannot have more than 2 decimal places")
	}
	return NewImpactScore(int64(math.Round(scaled)))
}

// ZeroImpactScore returns a zero score.
func ZeroImpactScore() ImpactScore { return ImpactScore{} }

// Hundredths returns the raw value in hundredths of a point.
func (s ImpactScore) Hundredths() int64 { return s.hundredths }

// Float returns the score as a decimal number.
func (s ImpactScore) Float() float64 { return float64(s.hundredths) / 100 }

// IsZero reports whether the score is zero.
func (s ImpactScore) IsZero() bool { return s.hundredths == 0 }

// Add returns s + other, re-validating the upper bound.
func (s ImpactScore) Add(other ImpactScore) (ImpactScore, error) {
	return NewImpactScore(s.hundredths + other.hundredths)
}

// Sub returns s - other, failing instead of going negative.
func (s ImpactScore) Sub(other ImpactScore) (ImpactScore, error) {
	if other.hundredths > s.hundredths {
		return ImpactScore{}, NewInvariantError(RuleNegativeResult,
			"impact score cannot become negative")
	}
	return NewImpactScore(s.hundredths - other.hundredths)
}

func (s ImpactScore) String() string {
	return fmt.Sprintf("%d.%02d", s.hundredths/100, s.hundredths%100)
}
