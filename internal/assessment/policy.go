package assessment

import (
	"errors"
	"fmt"
)

// Policy holds the thresholds that turn per-criterion ratings into a verdict.
type Policy struct {
	// PositiveRating is the minimum rating for a criterion to count as met.
	PositiveRating int `mapstructure:"positive-rating"`
	// SuperRating is the minimum super-criterion rating that forces "high".
	SuperRating int `mapstructure:"super-rating"`
	HighCount   int `mapstructure:"high-count"`
	MediumCount int `mapstructure:"medium-count"`
}

// DefaultPolicy returns the standard O-1A thresholds.
func DefaultPolicy() Policy {
	return Policy{
		PositiveRating: 6,
		SuperRating:    9,
		HighCount:      6,
		MediumCount:    3,
	}
}

// Validate rejects thresholds that would make the tiers ambiguous.
func (p Policy) Validate() error {
	var errs []error
	if p.PositiveRating < 1 || p.PositiveRating > 10 {
		errs = append(errs, fmt.Errorf("positive-rating must be within 1..10, got %d", p.PositiveRating))
	}
	if p.SuperRating < 1 || p.SuperRating > 10 {
		errs = append(errs, fmt.Errorf("super-rating must be within 1..10, got %d", p.SuperRating))
	}
	if p.MediumCount < 1 {
		errs = append(errs, fmt.Errorf("medium-count must be positive, got %d", p.MediumCount))
	}
	if p.HighCount <= p.MediumCount {
		errs = append(errs, fmt.Errorf("high-count (%d) must exceed medium-count (%d)", p.HighCount, p.MediumCount))
	}
	return errors.Join(errs...)
}

// PositiveCount counts outcomes rated at or above PositiveRating. Failures
// never count.
func (p Policy) PositiveCount(outcomes []Outcome) int {
	count := 0
	for _, o := range outcomes {
		if rating, ok := o.Rating(); ok && rating >= p.PositiveRating {
			count++
		}
	}
	return count
}

// Score maps a positive count onto an eligibility tier.
func (p Policy) Score(positiveCount int) Eligibility {
	switch {
	case positiveCount >= p.HighCount:
		return EligibilityHigh
	case positiveCount >= p.MediumCount:
		return EligibilityMedium
	default:
		return EligibilityLow
	}
}

// ShortCircuits reports whether a super-criterion outcome decides the run.
func (p Policy) ShortCircuits(super Outcome) bool {
	rating, ok := super.Rating()
	return ok && rating >= p.SuperRating
}
