package competency

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ganot/skillkeeper/internal/repository"
)

// Service handles canonical competency records: matching incoming
// evidence onto existing records and evaluating validity.
type Service struct {
	comps    CompetencyRepository
	skills   SkillReader
	practice PracticeReader
	logger   *slog.Logger
}

// NewService creates a new competency service.
func NewService(comps CompetencyRepository, skills SkillReader, practice PracticeReader, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		comps:    comps,
		skills:   skills,
		practice: practice,
		logger:   logger,
	}
}

// UpsertRequest describes one unit of evidence to fold into the
// canonical records for (UserID, SkillID).
type UpsertRequest struct {
	UserID         string
	SkillID        string
	Contexts       ContextSet
	Level          Level
	EvaluationDate time.Time
	Evaluator      Evaluator

	SessionID          *string
	ExternalTrainingID *string
}

// Match finds the single existing competency whose context-set equals
// candidate. A nil result with nil error signals that a new record is
// required. Two matches mean storage already violates the
// distinct-context-set invariant and is reported as fatal.
func Match(existing []Competency, candidate ContextSet) (*Competency, error) {
	var target *Competency
	for i := range existing {
		if existing[i].Contexts.Equal(candidate) {
			if target != nil {
				return nil, ErrDuplicateContextSet
			}
			target = &existing[i]
		}
	}
	return target, nil
}

// Upsert applies one unit of evidence: the matching competency is
// updated in place, or a new record is created when no existing
// context-set matches. The caller is responsible for running this
// inside a transaction when concurrent submissions are possible.
// The bool result reports whether a new record was created.
func (s *Service) Upsert(ctx context.Context, req UpsertRequest) (*Competency, bool, error) {
	if !req.Level.Valid() {
		return nil, false, ErrInvalidLevel
	}
	if err := req.Evaluator.Validate(); err != nil {
		return nil, false, err
	}

	existing, err := s.comps.ListForUserSkill(ctx, req.UserID, req.SkillID)
	if err != nil {
		return nil, false, fmt.Errorf("listing competencies: %w", err)
	}

	candidate := NewContextSet(req.Contexts...)
	target, err := Match(existing, candidate)
	if err != nil {
		return nil, false, err
	}

	if target == nil {
		comp := &Competency{
			ID:                 uuid.NewString(),
			UserID:             req.UserID,
			SkillID:            req.SkillID,
			Level:              req.Level,
			EvaluationDate:     req.EvaluationDate,
			Evaluator:          req.Evaluator,
			SessionID:          req.SessionID,
			ExternalTrainingID: req.ExternalTrainingID,
			Contexts:           candidate,
		}
		if err := s.comps.Create(ctx, comp); err != nil {
			return nil, false, fmt.Errorf("creating competency: %w", err)
		}
		s.logger.Debug("competency created",
			"user", req.UserID, "skill", req.SkillID, "contexts", candidate.Key())
		return comp, true, nil
	}

	// Replacing the evaluator wholesale clears whichever side
	// (internal or external) is not part of this update.
	updated := *target
	updated.Level = req.Level
	updated.EvaluationDate = req.EvaluationDate
	updated.Evaluator = req.Evaluator
	if req.SessionID != nil {
		updated.SessionID = req.SessionID
	}
	if req.ExternalTrainingID != nil {
		updated.ExternalTrainingID = req.ExternalTrainingID
	}
	if err := s.comps.Update(ctx, &updated); err != nil {
		return nil, false, fmt.Errorf("updating competency: %w", err)
	}
	s.logger.Debug("competency updated",
		"id", updated.ID, "user", req.UserID, "skill", req.SkillID)
	return &updated, false, nil
}

// Get returns a competency by ID.
func (s *Service) Get(ctx context.Context, id string) (*Competency, error) {
	comp, err := s.comps.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCompetencyNotFound
		}
		return nil, fmt.Errorf("getting competency: %w", err)
	}
	return comp, nil
}

// ListForUser returns all competencies held by a user.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]Competency, error) {
	return s.comps.ListForUser(ctx, userID)
}

// ListForUserSkill returns the competencies a user holds in one skill.
func (s *Service) ListForUserSkill(ctx context.Context, userID, skillID string) ([]Competency, error) {
	return s.comps.ListForUserSkill(ctx, userID, skillID)
}

// SetLevel overwrites the level of an existing competency. Setting the
// level it already has is a no-op.
func (s *Service) SetLevel(ctx context.Context, id string, level Level) (*Competency, error) {
	if !level.Valid() {
		return nil, ErrInvalidLevel
	}
	comp, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if comp.Level == level {
		return comp, nil
	}
	updated := *comp
	updated.Level = level
	if err := s.comps.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("updating level: %w", err)
	}
	return &updated, nil
}

// Status evaluates the recycling state of a competency as of the given
// instant. Declared practice of the same skill after the evaluation
// date extends validity without touching the record.
func (s *Service) Status(ctx context.Context, competencyID string, asOf time.Time) (RecyclingStatus, error) {
	comp, err := s.Get(ctx, competencyID)
	if err != nil {
		return RecyclingStatus{}, err
	}

	skill, err := s.skills.GetSkill(ctx, comp.SkillID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return RecyclingStatus{}, ErrSkillNotFound
		}
		return RecyclingStatus{}, fmt.Errorf("getting skill: %w", err)
	}

	dates, err := s.practice.PracticeDates(ctx, comp.UserID, comp.SkillID)
	if err != nil {
		return RecyclingStatus{}, fmt.Errorf("loading practice dates: %w", err)
	}

	latest := LatestEvidenceDate(comp.EvaluationDate, dates)
	return EvaluateRecycling(skill.ValidityPeriodMonths, latest, asOf), nil
}
