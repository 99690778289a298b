package evidence

import "errors"

var (
	// ErrSessionNotFound indicates the training session doesn't exist.
	ErrSessionNotFound = errors.New("training session not found")
	// ErrTrainingNotFound indicates the external training doesn't exist.
	ErrTrainingNotFound = errors.New("external training not found")
	// ErrUserNotFound indicates the referenced user doesn't exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrNotAuthorized indicates the validator lacks scope for the skill.
	ErrNotAuthorized = errors.New("validator not authorized for skill")
	// ErrNotAttendee indicates the submission targets someone outside
	// the session roster.
	ErrNotAttendee = errors.New("user is not a session attendee")
	// ErrSkillNotCovered indicates the submission targets a skill the
	// session doesn't cover.
	ErrSkillNotCovered = errors.New("skill not covered by session")
	// ErrAlreadyDecided indicates the external training status is
	// terminal; approving or rejecting again is refused.
	ErrAlreadyDecided = errors.New("external training already decided")
	// ErrNotOwner indicates a self-declared item targets a competency
	// owned by someone else.
	ErrNotOwner = errors.New("competency not owned by acting user")
	// ErrInvalidItem indicates a malformed evidence item.
	ErrInvalidItem = errors.New("invalid evidence item")
)
