package training

import "time"

// Regulatory constants. These are defined values, not derived ones;
// the 365.25-day year and the 7.15-hour training day must be
// reproduced exactly.
const (
	DaysPerYear = 365.25

	ComplianceWindowYears = 6
	RequiredTrainingDays  = 3
	HoursPerTrainingDay   = 7.15

	MinLiveRatio = 0.70

	// The at-risk heuristic uses a shorter trailing window and its own
	// threshold. Kept literally; do not fold into the 6-year rule.
	AtRiskWindowYears = 5
	AtRiskDays        = 2.5
)

// Thresholds parameterizes the aggregator. Zero fields fall back to
// the regulatory defaults.
type Thresholds struct {
	WindowYears       int
	RequiredDays      float64
	HoursPerDay       float64
	MinLiveRatio      float64
	AtRiskWindowYears int
	AtRiskDays        float64
}

// DefaultThresholds returns the regulatory defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		WindowYears:       ComplianceWindowYears,
		RequiredDays:      RequiredTrainingDays,
		HoursPerDay:       HoursPerTrainingDay,
		MinLiveRatio:      MinLiveRatio,
		AtRiskWindowYears: AtRiskWindowYears,
		AtRiskDays:        AtRiskDays,
	}
}

func (t Thresholds) withDefaults() Thresholds {
	def := DefaultThresholds()
	if t.WindowYears == 0 {
		t.WindowYears = def.WindowYears
	}
	if t.RequiredDays == 0 {
		t.RequiredDays = def.RequiredDays
	}
	if t.HoursPerDay == 0 {
		t.HoursPerDay = def.HoursPerDay
	}
	if t.MinLiveRatio == 0 {
		t.MinLiveRatio = def.MinLiveRatio
	}
	if t.AtRiskWindowYears == 0 {
		t.AtRiskWindowYears = def.AtRiskWindowYears
	}
	if t.AtRiskDays == 0 {
		t.AtRiskDays = def.AtRiskDays
	}
	return t
}

func yearsBack(asOf time.Time, years int) time.Time {
	return asOf.Add(-time.Duration(float64(years) * DaysPerYear * 24 * float64(time.Hour)))
}
