package competency

import "time"

// DaysPerMonth is the fixed average-month length used for all validity
// arithmetic. Validity periods are durations, not calendar months.
const DaysPerMonth = 30.44

// RecyclingState describes where a competency stands in its validity
// window.
type RecyclingState string

const (
	StateValid         RecyclingState = "Valid"
	StateRecyclingSoon RecyclingState = "RecyclingSoon"
	StateExpired       RecyclingState = "Expired"
)

// RecyclingStatus is the result of evaluating a competency's validity
// at a point in time. DueDate and WarningDate are nil for skills that
// never expire.
type RecyclingStatus struct {
	State          RecyclingState `json:"state"`
	DueDate        *time.Time     `json:"due_date,omitempty"`
	WarningDate    *time.Time     `json:"warning_date,omitempty"`
	NeedsRecycling bool           `json:"needs_recycling"`
}

// EvaluateRecycling computes the validity state of evidence dated
// latestEvidence for a skill with the given validity period, as of the
// given instant. A nil validity period means the skill never expires.
// The warning window is one quarter of the validity period.
func EvaluateRecycling(validityMonths *int, latestEvidence, asOf time.Time) RecyclingStatus {
	if validityMonths == nil {
		return RecyclingStatus{State: StateValid}
	}

	validity := time.Duration(float64(*validityMonths) * DaysPerMonth * 24 * float64(time.Hour))
	due := latestEvidence.Add(validity)
	warning := due.Add(-validity / 4)

	status := RecyclingStatus{
		DueDate:     &due,
		WarningDate: &warning,
	}
	switch {
	case asOf.After(due):
		status.State = StateExpired
		status.NeedsRecycling = true
	case asOf.Before(warning):
		status.State = StateValid
	default:
		status.State = StateRecyclingSoon
	}
	return status
}

// LatestEvidenceDate returns the effective last evidence date for a
// competency: the evaluation date, extended by any later practice of
// the same skill. Practice never shortens validity.
func LatestEvidenceDate(evaluationDate time.Time, practiceDates []time.Time) time.Time {
	latest := evaluationDate
	for _, d := range practiceDates {
		if d.After(latest) {
			latest = d
		}
	}
	return latest
}
