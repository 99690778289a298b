package mocks

import (
	"context"
	"time"

	"github.com/ganot/skillkeeper/internal/domain/competency"
	"github.com/ganot/skillkeeper/internal/domain/evidence"
	"github.com/ganot/skillkeeper/internal/domain/training"
	"github.com/stretchr/testify/mock"
)

// TxRunner is a pass-through repository.TxRunner for service tests.
type TxRunner struct{}

func (TxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// CompetencyRepository is a mock for competency.CompetencyRepository.
type CompetencyRepository struct {
	mock.Mock
}

func (m *CompetencyRepository) Create(ctx context.Context, comp *competency.Competency) error {
	args := m.Called(ctx, comp)
	return args.Error(0)
}

func (m *CompetencyRepository) Update(ctx context.Context, comp *competency.Competency) error {
	args := m.Called(ctx, comp)
	return args.Error(0)
}

func (m *CompetencyRepository) Get(ctx context.Context, id string) (*competency.Competency, error) {
	args := m.Called(ctx, id)
	if comp, ok := args.Get(0).(*competency.Competency); ok {
		return comp, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CompetencyRepository) ListForUserSkill(ctx context.Context, userID, skillID string) ([]competency.Competency, error) {
	args := m.Called(ctx, userID, skillID)
	if list, ok := args.Get(0).([]competency.Competency); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CompetencyRepository) ListForUser(ctx context.Context, userID string) ([]competency.Competency, error) {
	args := m.Called(ctx, userID)
	if list, ok := args.Get(0).([]competency.Competency); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CompetencyRepository) ListAll(ctx context.Context) ([]competency.Competency, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]competency.Competency); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CompetencyRepository) PracticeDates(ctx context.Context, userID, skillID string) ([]time.Time, error) {
	args := m.Called(ctx, userID, skillID)
	if dates, ok := args.Get(0).([]time.Time); ok {
		return dates, args.Error(1)
	}
	return nil, args.Error(1)
}

// SkillReader is a mock for competency.SkillReader.
type SkillReader struct {
	mock.Mock
}

func (m *SkillReader) GetSkill(ctx context.Context, id string) (*competency.Skill, error) {
	args := m.Called(ctx, id)
	if skill, ok := args.Get(0).(*competency.Skill); ok {
		return skill, args.Error(1)
	}
	return nil, args.Error(1)
}

// PracticeReader is a mock for competency.PracticeReader.
type PracticeReader struct {
	mock.Mock
}

func (m *PracticeReader) PracticeDates(ctx context.Context, userID, skillID string) ([]time.Time, error) {
	args := m.Called(ctx, userID, skillID)
	if dates, ok := args.Get(0).([]time.Time); ok {
		return dates, args.Error(1)
	}
	return nil, args.Error(1)
}

// SessionRepository is a mock for evidence.SessionRepository.
type SessionRepository struct {
	mock.Mock
}

func (m *SessionRepository) Get(ctx context.Context, id string) (*evidence.TrainingSession, error) {
	args := m.Called(ctx, id)
	if sess, ok := args.Get(0).(*evidence.TrainingSession); ok {
		return sess, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) SetRealized(ctx context.Context, id string, realized bool) error {
	args := m.Called(ctx, id, realized)
	return args.Error(0)
}

// ExternalTrainingRepository is a mock for
// evidence.ExternalTrainingRepository.
type ExternalTrainingRepository struct {
	mock.Mock
}

func (m *ExternalTrainingRepository) Create(ctx context.Context, training *evidence.ExternalTraining) error {
	args := m.Called(ctx, training)
	return args.Error(0)
}

func (m *ExternalTrainingRepository) Get(ctx context.Context, id string) (*evidence.ExternalTraining, error) {
	args := m.Called(ctx, id)
	if tr, ok := args.Get(0).(*evidence.ExternalTraining); ok {
		return tr, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ExternalTrainingRepository) SetStatus(ctx context.Context, id string, status evidence.Status, validatorID string) error {
	args := m.Called(ctx, id, status, validatorID)
	return args.Error(0)
}

// PracticeRepository is a mock for evidence.PracticeRepository.
type PracticeRepository struct {
	mock.Mock
}

func (m *PracticeRepository) Create(ctx context.Context, event *evidence.PracticeEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *PracticeRepository) Exists(ctx context.Context, userID, skillID string, date time.Time) (bool, error) {
	args := m.Called(ctx, userID, skillID, date)
	return args.Bool(0), args.Error(1)
}

// CatalogRepository is a mock for evidence.CatalogRepository.
type CatalogRepository struct {
	mock.Mock
}

func (m *CatalogRepository) GetUser(ctx context.Context, id string) (*competency.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*competency.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CatalogRepository) GetSkill(ctx context.Context, id string) (*competency.Skill, error) {
	args := m.Called(ctx, id)
	if skill, ok := args.Get(0).(*competency.Skill); ok {
		return skill, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CatalogRepository) IsTutor(ctx context.Context, userID, skillID string) (bool, error) {
	args := m.Called(ctx, userID, skillID)
	return args.Bool(0), args.Error(1)
}

func (m *CatalogRepository) AddTutor(ctx context.Context, userID, skillID string) error {
	args := m.Called(ctx, userID, skillID)
	return args.Error(0)
}

func (m *CatalogRepository) RemoveTutor(ctx context.Context, userID, skillID string) error {
	args := m.Called(ctx, userID, skillID)
	return args.Error(0)
}

// CompetencyService is a mock for evidence.CompetencyService.
type CompetencyService struct {
	mock.Mock
}

func (m *CompetencyService) Upsert(ctx context.Context, req competency.UpsertRequest) (*competency.Competency, bool, error) {
	args := m.Called(ctx, req)
	if comp, ok := args.Get(0).(*competency.Competency); ok {
		return comp, args.Bool(1), args.Error(2)
	}
	return nil, args.Bool(1), args.Error(2)
}

func (m *CompetencyService) Get(ctx context.Context, id string) (*competency.Competency, error) {
	args := m.Called(ctx, id)
	if comp, ok := args.Get(0).(*competency.Competency); ok {
		return comp, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CompetencyService) SetLevel(ctx context.Context, id string, level competency.Level) (*competency.Competency, error) {
	args := m.Called(ctx, id, level)
	if comp, ok := args.Get(0).(*competency.Competency); ok {
		return comp, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CompetencyService) ListForUserSkill(ctx context.Context, userID, skillID string) ([]competency.Competency, error) {
	args := m.Called(ctx, userID, skillID)
	if list, ok := args.Get(0).([]competency.Competency); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// TrainingRepository is a mock for training.TrainingRepository.
type TrainingRepository struct {
	mock.Mock
}

func (m *TrainingRepository) GetEvent(ctx context.Context, id string) (*training.Event, error) {
	args := m.Called(ctx, id)
	if event, ok := args.Get(0).(*training.Event); ok {
		return event, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TrainingRepository) GetRecord(ctx context.Context, id string) (*training.Record, error) {
	args := m.Called(ctx, id)
	if rec, ok := args.Get(0).(*training.Record); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TrainingRepository) FindRecord(ctx context.Context, userID, eventID string) (*training.Record, error) {
	args := m.Called(ctx, userID, eventID)
	if rec, ok := args.Get(0).(*training.Record); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TrainingRepository) CreateRecord(ctx context.Context, rec *training.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *TrainingRepository) UpdateRecord(ctx context.Context, rec *training.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *TrainingRepository) ListRecordsForUser(ctx context.Context, userID string, since time.Time) ([]training.Record, error) {
	args := m.Called(ctx, userID, since)
	if list, ok := args.Get(0).([]training.Record); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// CatalogReader is a mock for report.CatalogReader.
type CatalogReader struct {
	mock.Mock
}

func (m *CatalogReader) GetSkill(ctx context.Context, id string) (*competency.Skill, error) {
	args := m.Called(ctx, id)
	if skill, ok := args.Get(0).(*competency.Skill); ok {
		return skill, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CatalogReader) ListUsers(ctx context.Context) ([]competency.User, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]competency.User); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CatalogReader) ListContexts(ctx context.Context) ([]competency.Context, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]competency.Context); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CatalogReader) CountSkillsWithoutTutors(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// EvidenceCounter is a mock for report.EvidenceCounter.
type EvidenceCounter struct {
	mock.Mock
}

func (m *EvidenceCounter) CountPendingExternalTrainings(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *EvidenceCounter) CountUnrealizedSessions(ctx context.Context, endedBefore time.Time) (int, error) {
	args := m.Called(ctx, endedBefore)
	return args.Int(0), args.Error(1)
}

// TrainingCounter is a mock for report.TrainingCounter.
type TrainingCounter struct {
	mock.Mock
}

func (m *TrainingCounter) CountPendingRecords(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// ComplianceEvaluator is a mock for report.ComplianceEvaluator.
type ComplianceEvaluator struct {
	mock.Mock
}

func (m *ComplianceEvaluator) Snapshot(ctx context.Context, userID string, asOf time.Time) (*training.ComplianceSnapshot, error) {
	args := m.Called(ctx, userID, asOf)
	if snap, ok := args.Get(0).(*training.ComplianceSnapshot); ok {
		return snap, args.Error(1)
	}
	return nil, args.Error(1)
}
