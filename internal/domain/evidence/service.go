package evidence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ganot/skillkeeper/internal/domain/competency"
	"github.com/ganot/skillkeeper/internal/repository"
)

// Service is the evidence reconciler: it folds evidence from training
// sessions, external trainings and self-declared practice into
// canonical competency records. Every mutating batch is pre-validated
// in full and then applied inside one transaction.
type Service struct {
	sessions  SessionRepository
	trainings ExternalTrainingRepository
	practice  PracticeRepository
	catalog   CatalogRepository
	comps     CompetencyService
	tx        repository.TxRunner
	logger    *slog.Logger
}

// NewService creates a new reconciler.
func NewService(
	sessions SessionRepository,
	trainings ExternalTrainingRepository,
	practice PracticeRepository,
	catalog CatalogRepository,
	comps CompetencyService,
	tx repository.TxRunner,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		sessions:  sessions,
		trainings: trainings,
		practice:  practice,
		catalog:   catalog,
		comps:     comps,
		tx:        tx,
		logger:    logger,
	}
}

// SessionValidationRequest describes one session validation batch.
type SessionValidationRequest struct {
	SessionID   string
	ValidatorID string
	Submissions []SessionSubmission
	// EvaluatedAt stamps the resulting competencies. Zero means now.
	EvaluatedAt time.Time
}

// ValidateSession applies a batch of (attendee, skill, level)
// validations for a session. The validator must be authorized for each
// submitted skill: the global validator role covers all skills, the
// session lead and skill tutors cover their own. Afterwards the
// session's Realized flag is re-derived; rechecking an already
// realized session is a no-op.
func (s *Service) ValidateSession(ctx context.Context, req SessionValidationRequest) (*SessionValidationResult, error) {
	sess, err := s.sessions.Get(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}

	validator, err := s.catalog.GetUser(ctx, req.ValidatorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("loading validator: %w", err)
	}

	// Whole batch checked before any write.
	for _, sub := range req.Submissions {
		if !contains(sess.AttendeeIDs, sub.AttendeeID) {
			return nil, fmt.Errorf("%w: %s", ErrNotAttendee, sub.AttendeeID)
		}
		if !contains(sess.SkillIDs, sub.SkillID) {
			return nil, fmt.Errorf("%w: %s", ErrSkillNotCovered, sub.SkillID)
		}
		if !sub.Level.Valid() {
			return nil, competency.ErrInvalidLevel
		}
		ok, err := s.authorizedForSkill(ctx, validator, sess, sub.SkillID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotAuthorized, sub.SkillID)
		}
	}

	evaluatedAt := req.EvaluatedAt
	if evaluatedAt.IsZero() {
		evaluatedAt = time.Now()
	}

	result := &SessionValidationResult{}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		for _, sub := range req.Submissions {
			skill, err := s.catalog.GetSkill(ctx, sub.SkillID)
			if err != nil {
				return fmt.Errorf("loading skill %s: %w", sub.SkillID, err)
			}
			comp, _, err := s.comps.Upsert(ctx, competency.UpsertRequest{
				UserID:         sub.AttendeeID,
				SkillID:        sub.SkillID,
				Contexts:       skill.Contexts,
				Level:          sub.Level,
				EvaluationDate: evaluatedAt,
				Evaluator:      competency.InternalEvaluator(req.ValidatorID),
				SessionID:      &sess.ID,
			})
			if err != nil {
				return err
			}
			result.UpdatedCompetencies = append(result.UpdatedCompetencies, *comp)
		}

		realized, err := s.sessionComplete(ctx, sess)
		if err != nil {
			return err
		}
		result.SessionRealized = realized
		if realized && !sess.Realized {
			if err := s.sessions.SetRealized(ctx, sess.ID, true); err != nil {
				return fmt.Errorf("marking session realized: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("session validated",
		"session", sess.ID, "submissions", len(req.Submissions), "realized", result.SessionRealized)
	return result, nil
}

// SubmitExternalTrainingRequest describes a user-submitted external
// training awaiting validation.
type SubmitExternalTrainingRequest struct {
	UserID      string
	TrainerName string
	Date        time.Time
	Claims      []Claim
}

// SubmitExternalTraining records a pending external training with its
// skill claims.
func (s *Service) SubmitExternalTraining(ctx context.Context, req SubmitExternalTrainingRequest) (*ExternalTraining, error) {
	if _, err := s.catalog.GetUser(ctx, req.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if len(req.Claims) == 0 {
		return nil, fmt.Errorf("%w: no claims", ErrInvalidItem)
	}
	for i := range req.Claims {
		if !req.Claims[i].Level.Valid() {
			return nil, competency.ErrInvalidLevel
		}
		if _, err := s.catalog.GetSkill(ctx, req.Claims[i].SkillID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, competency.ErrSkillNotFound
			}
			return nil, fmt.Errorf("loading skill: %w", err)
		}
		req.Claims[i].Contexts = competency.NewContextSet(req.Claims[i].Contexts...)
	}

	training := &ExternalTraining{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		TrainerName: req.TrainerName,
		Date:        req.Date,
		Status:      StatusPending,
		Claims:      req.Claims,
	}
	if err := s.trainings.Create(ctx, training); err != nil {
		return nil, fmt.Errorf("creating external training: %w", err)
	}
	return training, nil
}

// ApproveExternalTraining approves a pending external training and
// folds each claim into the claimant's competencies. The claim's own
// context-set drives matching; the evaluator is the external trainer
// when named, otherwise the approving validator. Approving a decided
// training is refused without touching competencies.
func (s *Service) ApproveExternalTraining(ctx context.Context, trainingID, validatorID string) (*ApprovalResult, error) {
	training, err := s.trainings.Get(ctx, trainingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainingNotFound
		}
		return nil, fmt.Errorf("loading external training: %w", err)
	}
	if training.Status.Terminal() {
		return nil, ErrAlreadyDecided
	}
	if _, err := s.catalog.GetUser(ctx, validatorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("loading validator: %w", err)
	}

	evaluator := competency.InternalEvaluator(validatorID)
	if training.TrainerName != "" {
		evaluator = competency.ExternalEvaluator(training.TrainerName)
	}

	result := &ApprovalResult{}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.trainings.SetStatus(ctx, training.ID, StatusApproved, validatorID); err != nil {
			return fmt.Errorf("setting status: %w", err)
		}

		for _, claim := range training.Claims {
			comp, _, err := s.comps.Upsert(ctx, competency.UpsertRequest{
				UserID:             training.UserID,
				SkillID:            claim.SkillID,
				Contexts:           claim.Contexts,
				Level:              claim.Level,
				EvaluationDate:     training.Date,
				Evaluator:          evaluator,
				ExternalTrainingID: &training.ID,
			})
			if err != nil {
				return err
			}
			result.UpdatedCompetencies = append(result.UpdatedCompetencies, *comp)

			if claim.PracticeDate != nil {
				event, created, err := s.recordPractice(ctx, training.UserID, claim.SkillID, *claim.PracticeDate, "")
				if err != nil {
					return err
				}
				if created {
					result.NewPracticeEvents = append(result.NewPracticeEvents, *event)
				}
			}

			if claim.WantsTutor {
				change, err := s.addTutor(ctx, training.UserID, claim.SkillID)
				if err != nil {
					return err
				}
				if change != nil {
					result.TutorAdditions = append(result.TutorAdditions, *change)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("external training approved",
		"training", training.ID, "user", training.UserID, "claims", len(training.Claims))
	return result, nil
}

// RejectExternalTraining rejects a pending external training. No
// competency is touched.
func (s *Service) RejectExternalTraining(ctx context.Context, trainingID, validatorID string) error {
	training, err := s.trainings.Get(ctx, trainingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTrainingNotFound
		}
		return fmt.Errorf("loading external training: %w", err)
	}
	if training.Status.Terminal() {
		return ErrAlreadyDecided
	}
	if err := s.trainings.SetStatus(ctx, training.ID, StatusRejected, validatorID); err != nil {
		return fmt.Errorf("setting status: %w", err)
	}
	s.logger.Info("external training rejected", "training", training.ID)
	return nil
}

// DeclarePractice applies a batch of self-declared practice items,
// restricted to competencies the acting user owns. The whole batch is
// rejected before any write when an item fails ownership or existence
// checks. Duplicate practice declarations are absorbed and reported,
// not failed.
func (s *Service) DeclarePractice(ctx context.Context, userID string, items []SelfDeclaredItem) (*PracticeResult, error) {
	comps := make([]*competency.Competency, len(items))
	for i, item := range items {
		if item.CompetencyID == "" {
			return nil, fmt.Errorf("%w: missing competency id", ErrInvalidItem)
		}
		comp, err := s.comps.Get(ctx, item.CompetencyID)
		if err != nil {
			return nil, err
		}
		if comp.UserID != userID {
			return nil, fmt.Errorf("%w: %s", ErrNotOwner, item.CompetencyID)
		}
		if item.Level != nil && !item.Level.Valid() {
			return nil, competency.ErrInvalidLevel
		}
		comps[i] = comp
	}

	result := &PracticeResult{}
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		for i, item := range items {
			comp := comps[i]

			if item.Level != nil && *item.Level != comp.Level {
				updated, err := s.comps.SetLevel(ctx, comp.ID, *item.Level)
				if err != nil {
					return err
				}
				result.UpdatedCompetencies = append(result.UpdatedCompetencies, *updated)
			}

			if item.PracticeDate != nil {
				event, created, err := s.recordPractice(ctx, userID, comp.SkillID, *item.PracticeDate, "")
				if err != nil {
					return err
				}
				if created {
					result.NewPracticeEvents = append(result.NewPracticeEvents, *event)
				} else {
					result.DuplicateSkillIDs = append(result.DuplicateSkillIDs, comp.SkillID)
				}
			}

			switch item.Tutor {
			case TutorAdd:
				change, err := s.addTutor(ctx, userID, comp.SkillID)
				if err != nil {
					return err
				}
				if change != nil {
					result.TutorChanges = append(result.TutorChanges, *change)
				}
			case TutorRemove:
				isTutor, err := s.catalog.IsTutor(ctx, userID, comp.SkillID)
				if err != nil {
					return fmt.Errorf("checking tutor roster: %w", err)
				}
				if isTutor {
					if err := s.catalog.RemoveTutor(ctx, userID, comp.SkillID); err != nil {
						return fmt.Errorf("removing tutor: %w", err)
					}
					result.TutorChanges = append(result.TutorChanges, TutorChange{
						UserID:  userID,
						SkillID: comp.SkillID,
						Added:   false,
					})
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("practice declared",
		"user", userID, "items", len(items), "events", len(result.NewPracticeEvents))
	return result, nil
}

// recordPractice creates a practice event unless one already covers
// the skill for that user and day.
func (s *Service) recordPractice(ctx context.Context, userID, skillID string, date time.Time, notes string) (*PracticeEvent, bool, error) {
	day := date.UTC().Truncate(24 * time.Hour)
	exists, err := s.practice.Exists(ctx, userID, skillID, day)
	if err != nil {
		return nil, false, fmt.Errorf("checking practice events: %w", err)
	}
	if exists {
		return nil, false, nil
	}
	event := &PracticeEvent{
		ID:       uuid.NewString(),
		UserID:   userID,
		Date:     day,
		SkillIDs: []string{skillID},
		Notes:    notes,
	}
	if err := s.practice.Create(ctx, event); err != nil {
		return nil, false, fmt.Errorf("creating practice event: %w", err)
	}
	return event, true, nil
}

// addTutor adds the user to the skill's tutor roster, returning nil
// when membership already existed.
func (s *Service) addTutor(ctx context.Context, userID, skillID string) (*TutorChange, error) {
	isTutor, err := s.catalog.IsTutor(ctx, userID, skillID)
	if err != nil {
		return nil, fmt.Errorf("checking tutor roster: %w", err)
	}
	if isTutor {
		return nil, nil
	}
	if err := s.catalog.AddTutor(ctx, userID, skillID); err != nil {
		return nil, fmt.Errorf("adding tutor: %w", err)
	}
	return &TutorChange{UserID: userID, SkillID: skillID, Added: true}, nil
}

func (s *Service) authorizedForSkill(ctx context.Context, validator *competency.User, sess *TrainingSession, skillID string) (bool, error) {
	if validator.IsValidator {
		return true, nil
	}
	if sess.TutorID != "" && sess.TutorID == validator.ID {
		return true, nil
	}
	isTutor, err := s.catalog.IsTutor(ctx, validator.ID, skillID)
	if err != nil {
		return false, fmt.Errorf("checking tutor roster: %w", err)
	}
	return isTutor, nil
}

// sessionComplete reports whether every (attendee, skill) pair has an
// evaluated competency.
func (s *Service) sessionComplete(ctx context.Context, sess *TrainingSession) (bool, error) {
	for _, attendee := range sess.AttendeeIDs {
		for _, skillID := range sess.SkillIDs {
			comps, err := s.comps.ListForUserSkill(ctx, attendee, skillID)
			if err != nil {
				return false, fmt.Errorf("listing competencies: %w", err)
			}
			evaluated := false
			for _, c := range comps {
				if !c.EvaluationDate.IsZero() {
					evaluated = true
					break
				}
			}
			if !evaluated {
				return false, nil
			}
		}
	}
	return true, nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
