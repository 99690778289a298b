package competency

import (
	"context"
	"time"
)

// CompetencyRepository provides persistence for competencies.
type CompetencyRepository interface {
	Create(ctx context.Context, comp *Competency) error
	Update(ctx context.Context, comp *Competency) error
	Get(ctx context.Context, id string) (*Competency, error)
	ListForUserSkill(ctx context.Context, userID, skillID string) ([]Competency, error)
	ListForUser(ctx context.Context, userID string) ([]Competency, error)
}

// SkillReader provides read access to the skill catalog.
type SkillReader interface {
	GetSkill(ctx context.Context, id string) (*Skill, error)
}

// PracticeReader exposes declared practice dates for validity extension.
type PracticeReader interface {
	PracticeDates(ctx context.Context, userID, skillID string) ([]time.Time, error)
}
