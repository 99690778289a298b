package competency

import "errors"

var (
	// ErrCompetencyNotFound indicates the competency doesn't exist.
	ErrCompetencyNotFound = errors.New("competency not found")
	// ErrSkillNotFound indicates the referenced skill doesn't exist.
	ErrSkillNotFound = errors.New("skill not found")
	// ErrInvalidLevel indicates an unknown proficiency level.
	ErrInvalidLevel = errors.New("invalid competency level")
	// ErrInvalidEvaluator indicates a malformed evaluator variant.
	ErrInvalidEvaluator = errors.New("invalid evaluator")
	// ErrDuplicateContextSet indicates two competencies for the same
	// (user, skill) share a context-set. This must never reach
	// storage; seeing it means a reconciliation bug.
	ErrDuplicateContextSet = errors.New("duplicate context-set for user and skill")
)
