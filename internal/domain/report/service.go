package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ganot/skillkeeper/internal/domain/competency"
	"github.com/ganot/skillkeeper/internal/domain/training"
)

// UnspecifiedBucket collects competencies whose skill and record both
// carry no contexts.
const UnspecifiedBucket = "unspecified"

// CompetencyReader provides read access to all competency records.
type CompetencyReader interface {
	ListAll(ctx context.Context) ([]competency.Competency, error)
	PracticeDates(ctx context.Context, userID, skillID string) ([]time.Time, error)
}

// CatalogReader provides read access to the skill/user/context catalog.
type CatalogReader interface {
	GetSkill(ctx context.Context, id string) (*competency.Skill, error)
	ListUsers(ctx context.Context) ([]competency.User, error)
	ListContexts(ctx context.Context) ([]competency.Context, error)
	CountSkillsWithoutTutors(ctx context.Context) (int, error)
}

// EvidenceCounter counts evidence awaiting validation.
type EvidenceCounter interface {
	CountPendingExternalTrainings(ctx context.Context) (int, error)
	CountUnrealizedSessions(ctx context.Context, endedBefore time.Time) (int, error)
}

// TrainingCounter counts continuing-education records awaiting
// validation.
type TrainingCounter interface {
	CountPendingRecords(ctx context.Context) (int, error)
}

// ComplianceEvaluator evaluates a user's continuous-training
// compliance.
type ComplianceEvaluator interface {
	Snapshot(ctx context.Context, userID string, asOf time.Time) (*training.ComplianceSnapshot, error)
}

// PendingEvidence counts evidence awaiting a validator.
type PendingEvidence struct {
	ExternalTrainings   int `json:"external_trainings"`
	TrainingValidations int `json:"training_validations"`
	UnrealizedSessions  int `json:"unrealized_sessions"`
	SkillsWithoutTutors int `json:"skills_without_tutors"`
}

// Overview aggregates the dashboard projections.
type Overview struct {
	RecyclingByContext map[string]int  `json:"recycling_by_context"`
	NonCompliantUsers  int             `json:"non_compliant_users"`
	Pending            PendingEvidence `json:"pending"`
}

// Service derives dashboard counts from the engine's state. Every
// method is a pure read.
type Service struct {
	comps      CompetencyReader
	catalog    CatalogReader
	evidence   EvidenceCounter
	trainings  TrainingCounter
	compliance ComplianceEvaluator
	logger     *slog.Logger
}

// NewService creates a new reporting service.
func NewService(
	comps CompetencyReader,
	catalog CatalogReader,
	evidence EvidenceCounter,
	trainings TrainingCounter,
	compliance ComplianceEvaluator,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		comps:      comps,
		catalog:    catalog,
		evidence:   evidence,
		trainings:  trainings,
		compliance: compliance,
		logger:     logger,
	}
}

// RecyclingByContext counts competencies needing recycling, grouped by
// context name. A competency's own contexts win; the skill's contexts
// are the fallback; competencies with neither land in the
// "unspecified" bucket.
func (s *Service) RecyclingByContext(ctx context.Context, asOf time.Time) (map[string]int, error) {
	comps, err := s.comps.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing competencies: %w", err)
	}

	contexts, err := s.catalog.ListContexts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing contexts: %w", err)
	}
	names := make(map[string]string, len(contexts))
	for _, c := range contexts {
		names[c.ID] = c.Name
	}

	skills := make(map[string]*competency.Skill)
	counts := make(map[string]int)
	for _, comp := range comps {
		skill, ok := skills[comp.SkillID]
		if !ok {
			skill, err = s.catalog.GetSkill(ctx, comp.SkillID)
			if err != nil {
				return nil, fmt.Errorf("loading skill %s: %w", comp.SkillID, err)
			}
			skills[comp.SkillID] = skill
		}

		dates, err := s.comps.PracticeDates(ctx, comp.UserID, comp.SkillID)
		if err != nil {
			return nil, fmt.Errorf("loading practice dates: %w", err)
		}
		latest := competency.LatestEvidenceDate(comp.EvaluationDate, dates)
		status := competency.EvaluateRecycling(skill.ValidityPeriodMonths, latest, asOf)
		if !status.NeedsRecycling {
			continue
		}

		buckets := comp.Contexts
		if buckets.Empty() {
			buckets = skill.Contexts
		}
		if buckets.Empty() {
			counts[UnspecifiedBucket]++
			continue
		}
		for _, id := range buckets {
			name := names[id]
			if name == "" {
				name = id
			}
			counts[name]++
		}
	}
	return counts, nil
}

// NonCompliantUsers returns the IDs of users whose continuous-training
// snapshot is non-compliant as of the given instant.
func (s *Service) NonCompliantUsers(ctx context.Context, asOf time.Time) ([]string, error) {
	users, err := s.catalog.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	var out []string
	for _, u := range users {
		snap, err := s.compliance.Snapshot(ctx, u.ID, asOf)
		if err != nil {
			return nil, fmt.Errorf("snapshot for %s: %w", u.ID, err)
		}
		if !snap.IsCompliant {
			out = append(out, u.ID)
		}
	}
	return out, nil
}

// PendingEvidence counts evidence rows awaiting validation.
func (s *Service) PendingEvidence(ctx context.Context, asOf time.Time) (*PendingEvidence, error) {
	externals, err := s.evidence.CountPendingExternalTrainings(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting external trainings: %w", err)
	}
	validations, err := s.trainings.CountPendingRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting training records: %w", err)
	}
	sessions, err := s.evidence.CountUnrealizedSessions(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("counting sessions: %w", err)
	}
	tutorless, err := s.catalog.CountSkillsWithoutTutors(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting tutorless skills: %w", err)
	}
	return &PendingEvidence{
		ExternalTrainings:   externals,
		TrainingValidations: validations,
		UnrealizedSessions:  sessions,
		SkillsWithoutTutors: tutorless,
	}, nil
}

// Overview aggregates all projections for a dashboard render.
func (s *Service) Overview(ctx context.Context, asOf time.Time) (*Overview, error) {
	recycling, err := s.RecyclingByContext(ctx, asOf)
	if err != nil {
		return nil, err
	}
	nonCompliant, err := s.NonCompliantUsers(ctx, asOf)
	if err != nil {
		return nil, err
	}
	pending, err := s.PendingEvidence(ctx, asOf)
	if err != nil {
		return nil, err
	}
	return &Overview{
		RecyclingByContext: recycling,
		NonCompliantUsers:  len(nonCompliant),
		Pending:            *pending,
	}, nil
}
