package competency

import "time"

// Level is an ordered proficiency grade.
type Level string

const (
	LevelNovice       Level = "Novice"
	LevelIntermediate Level = "Intermediate"
	LevelExpert       Level = "Expert"
)

// Rank returns the ordering position of the level, Novice lowest.
// Unknown levels rank below Novice.
func (l Level) Rank() int {
	switch l {
	case LevelNovice:
		return 1
	case LevelIntermediate:
		return 2
	case LevelExpert:
		return 3
	}
	return 0
}

// Valid reports whether l is a known level.
func (l Level) Valid() bool {
	return l.Rank() > 0
}

// ParseLevel converts a raw string into a Level.
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if !l.Valid() {
		return "", ErrInvalidLevel
	}
	return l, nil
}

// Complexity classifies how demanding a skill is to acquire.
type Complexity string

const (
	ComplexitySimple   Complexity = "Simple"
	ComplexityModerate Complexity = "Moderate"
	ComplexityComplex  Complexity = "Complex"
)

// Context is a subject category (e.g. a species) a skill or
// competency applies to.
type Context struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Skill is a practical ability staff can be certified in.
type Skill struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Complexity  Complexity `json:"complexity"`
	// ValidityPeriodMonths is nil for skills that never expire.
	ValidityPeriodMonths *int       `json:"validity_period_months,omitempty"`
	Contexts             ContextSet `json:"contexts,omitempty"`
	ReferenceURLs        []string   `json:"reference_urls,omitempty"`
}

// User is a staff member tracked by the engine.
type User struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	// IsValidator grants the global validation role: authorization for
	// every skill in every session.
	IsValidator bool `json:"is_validator"`
}

// EvaluatorKind discriminates the evaluator variant.
type EvaluatorKind string

const (
	EvaluatorInternal EvaluatorKind = "internal"
	EvaluatorExternal EvaluatorKind = "external"
)

// Evaluator identifies who certified a competency: either an internal
// user or an external trainer known only by name. The two sides are
// mutually exclusive; use the constructors.
type Evaluator struct {
	Kind   EvaluatorKind `json:"kind"`
	UserID string        `json:"user_id,omitempty"`
	Name   string        `json:"name,omitempty"`
}

// InternalEvaluator references a user by ID.
func InternalEvaluator(userID string) Evaluator {
	return Evaluator{Kind: EvaluatorInternal, UserID: userID}
}

// ExternalEvaluator records an external trainer by name.
func ExternalEvaluator(name string) Evaluator {
	return Evaluator{Kind: EvaluatorExternal, Name: name}
}

// Validate checks the variant carries exactly the field its kind requires.
func (e Evaluator) Validate() error {
	switch e.Kind {
	case EvaluatorInternal:
		if e.UserID == "" || e.Name != "" {
			return ErrInvalidEvaluator
		}
	case EvaluatorExternal:
		if e.Name == "" || e.UserID != "" {
			return ErrInvalidEvaluator
		}
	default:
		return ErrInvalidEvaluator
	}
	return nil
}

// Competency is the canonical statement that a user is certified in a
// skill, at a level, for a context-set, as of an evaluation date.
type Competency struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	SkillID        string     `json:"skill_id"`
	Level          Level      `json:"level"`
	EvaluationDate time.Time  `json:"evaluation_date"`
	Evaluator      Evaluator  `json:"evaluator"`
	// SessionID references the training session that produced this
	// competency, if any.
	SessionID *string `json:"session_id,omitempty"`
	// ExternalTrainingID references the approved external training
	// that produced this competency, if any.
	ExternalTrainingID *string    `json:"external_training_id,omitempty"`
	Contexts           ContextSet `json:"contexts,omitempty"`
}
