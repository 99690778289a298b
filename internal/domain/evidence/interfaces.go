package evidence

import (
	"context"
	"time"

	"github.com/ganot/skillkeeper/internal/domain/competency"
)

// SessionRepository provides persistence for training sessions.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*TrainingSession, error)
	SetRealized(ctx context.Context, id string, realized bool) error
}

// ExternalTrainingRepository provides persistence for external
// trainings and their claims.
type ExternalTrainingRepository interface {
	Create(ctx context.Context, training *ExternalTraining) error
	Get(ctx context.Context, id string) (*ExternalTraining, error)
	SetStatus(ctx context.Context, id string, status Status, validatorID string) error
}

// PracticeRepository provides persistence for practice events.
type PracticeRepository interface {
	Create(ctx context.Context, event *PracticeEvent) error
	// Exists reports whether an event for (userID, date) already
	// references the skill. Dates are compared by calendar day.
	Exists(ctx context.Context, userID, skillID string, date time.Time) (bool, error)
}

// CatalogRepository provides user/skill lookups and the tutor roster.
type CatalogRepository interface {
	GetUser(ctx context.Context, id string) (*competency.User, error)
	GetSkill(ctx context.Context, id string) (*competency.Skill, error)
	IsTutor(ctx context.Context, userID, skillID string) (bool, error)
	AddTutor(ctx context.Context, userID, skillID string) error
	RemoveTutor(ctx context.Context, userID, skillID string) error
}

// CompetencyService is the slice of the competency service the
// reconciler needs.
type CompetencyService interface {
	Upsert(ctx context.Context, req competency.UpsertRequest) (*competency.Competency, bool, error)
	Get(ctx context.Context, id string) (*competency.Competency, error)
	SetLevel(ctx context.Context, id string, level competency.Level) (*competency.Competency, error)
	ListForUserSkill(ctx context.Context, userID, skillID string) ([]competency.Competency, error)
}
