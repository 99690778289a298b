package evidence

import (
	"time"

	"github.com/ganot/skillkeeper/internal/domain/competency"
)

// TrainingSession is an internal hands-on session covering one or more
// skills for a roster of attendees.
type TrainingSession struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Location  string    `json:"location,omitempty"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	// TutorID is the session lead, authorized for every covered skill.
	TutorID     string   `json:"tutor_id,omitempty"`
	AttendeeIDs []string `json:"attendee_ids"`
	SkillIDs    []string `json:"skill_ids"`
	// Realized flips once every (attendee, skill) pair has an
	// evaluated competency.
	Realized bool `json:"realized"`

	EthicalAuthorizationID string `json:"ethical_authorization_id,omitempty"`
	AnimalCount            int    `json:"animal_count,omitempty"`
}

// SessionSubmission is one validated (attendee, skill, level) triple.
type SessionSubmission struct {
	AttendeeID string           `json:"attendee_id"`
	SkillID    string           `json:"skill_id"`
	Level      competency.Level `json:"level"`
}

// Status is the lifecycle state of an external training record.
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

// Claim is one skill claimed on an external training: what was
// trained, at what level, on which contexts. Consumed once on
// approval.
type Claim struct {
	SkillID  string                `json:"skill_id"`
	Level    competency.Level      `json:"level"`
	Contexts competency.ContextSet `json:"contexts,omitempty"`
	// PracticeDate, when set, additionally records hands-on practice.
	PracticeDate *time.Time `json:"practice_date,omitempty"`
	WantsTutor   bool       `json:"wants_tutor"`
}

// ExternalTraining is a user-submitted course taken outside the
// organization, awaiting validation.
type ExternalTraining struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	// TrainerName is the external trainer, when known. Empty means the
	// approving validator is credited as evaluator.
	TrainerName string     `json:"trainer_name,omitempty"`
	Date        time.Time  `json:"date"`
	Status      Status     `json:"status"`
	ValidatorID *string    `json:"validator_id,omitempty"`
	Claims      []Claim    `json:"claims"`
}

// PracticeEvent is a self-declared practice of one or more skills on a
// date. It can only ever extend competency validity.
type PracticeEvent struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	Date     time.Time `json:"date"`
	SkillIDs []string  `json:"skill_ids"`
	Notes    string    `json:"notes,omitempty"`
}

// TutorIntent is a tri-state tutor-roster instruction.
type TutorIntent int

const (
	TutorKeep TutorIntent = iota
	TutorAdd
	TutorRemove
)

// SelfDeclaredItem is one entry of a self-declared practice batch,
// always scoped to a competency the acting user owns.
type SelfDeclaredItem struct {
	CompetencyID string            `json:"competency_id"`
	Level        *competency.Level `json:"level,omitempty"`
	PracticeDate *time.Time        `json:"practice_date,omitempty"`
	Tutor        TutorIntent       `json:"tutor"`
}

// TutorChange records a tutor-roster mutation that actually happened.
type TutorChange struct {
	UserID  string `json:"user_id"`
	SkillID string `json:"skill_id"`
	Added   bool   `json:"added"`
}

// SessionValidationResult reports the outcome of a session validation
// batch.
type SessionValidationResult struct {
	UpdatedCompetencies []competency.Competency `json:"updated_competencies"`
	SessionRealized     bool                    `json:"session_realized"`
}

// ApprovalResult reports the outcome of an external training approval.
type ApprovalResult struct {
	UpdatedCompetencies []competency.Competency `json:"updated_competencies"`
	NewPracticeEvents   []PracticeEvent         `json:"new_practice_events"`
	TutorAdditions      []TutorChange           `json:"tutor_additions"`
}

// PracticeResult reports the outcome of a self-declared practice
// batch. DuplicateSkillIDs lists skills whose practice event was
// absorbed as an idempotent resubmission.
type PracticeResult struct {
	UpdatedCompetencies []competency.Competency `json:"updated_competencies"`
	NewPracticeEvents   []PracticeEvent         `json:"new_practice_events"`
	TutorChanges        []TutorChange           `json:"tutor_changes"`
	DuplicateSkillIDs   []string                `json:"duplicate_skill_ids,omitempty"`
}
