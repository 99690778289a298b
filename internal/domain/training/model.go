package training

import "time"

// Mode is the delivery mode of a continuing-education event.
type Mode string

const (
	ModeLive   Mode = "Live"
	ModeOnline Mode = "Online"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeLive || m == ModeOnline
}

// Status is the validation state of an attendance record.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// Terminal reports whether the status can no longer change.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Event is a continuing-education event staff can attend.
type Event struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
	Mode  Mode      `json:"mode"`
	// DurationHours is the nominal duration, used as the default
	// validated hour count on approval.
	DurationHours float64 `json:"duration_hours"`
}

// Record is one user's attendance of an event. Event date, mode and
// nominal duration are denormalized onto the record by the repository.
type Record struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	EventID string `json:"event_id"`

	EventDate    time.Time `json:"event_date"`
	Mode         Mode      `json:"mode"`
	NominalHours float64   `json:"nominal_hours"`

	Status Status `json:"status"`
	// ValidatedHours is 0 until a validator approves the record.
	ValidatedHours float64 `json:"validated_hours"`
	ValidatorID    *string `json:"validator_id,omitempty"`
}

// YearSummary buckets hours by the calendar year of the event date.
type YearSummary struct {
	Year         int     `json:"year"`
	LiveHours    float64 `json:"live_hours"`
	OnlineHours  float64 `json:"online_hours"`
	PendingHours float64 `json:"pending_hours"`
}

// ComplianceSnapshot is the full compliance evaluation for one user at
// one instant.
type ComplianceSnapshot struct {
	TotalHours    float64 `json:"total_hours"`
	LiveHours     float64 `json:"live_hours"`
	OnlineHours   float64 `json:"online_hours"`
	RequiredHours float64 `json:"required_hours"`
	IsCompliant   bool    `json:"is_compliant"`
	// LiveRatio is 0 when no hours are recorded; the ratio test is
	// then vacuously satisfied.
	LiveRatio            float64       `json:"live_ratio"`
	IsLiveRatioCompliant bool          `json:"is_live_ratio_compliant"`
	IsAtRiskNextYear     bool          `json:"is_at_risk_next_year"`
	Yearly               []YearSummary `json:"yearly"`
}
