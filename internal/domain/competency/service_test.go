package competency_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ganot/skillkeeper/internal/domain/competency"
	"github.com/ganot/skillkeeper/internal/repository"
	"github.com/ganot/skillkeeper/internal/repository/mocks"
)

func TestMatch(t *testing.T) {
	existing := []competency.Competency{
		{ID: "c1", Contexts: competency.NewContextSet("mouse")},
		{ID: "c2", Contexts: competency.NewContextSet("mouse", "rat")},
		{ID: "c3"},
	}

	target, err := competency.Match(existing, competency.NewContextSet("rat", "mouse"))
	require.NoError(t, err)
	require.NotNil(t, target)
	require.Equal(t, "c2", target.ID)

	// No subset or superset matching
	target, err = competency.Match(existing, competency.NewContextSet("rat"))
	require.NoError(t, err)
	require.Nil(t, target)

	// The context-free record only matches the empty set
	target, err = competency.Match(existing, nil)
	require.NoError(t, err)
	require.Equal(t, "c3", target.ID)

	// Two records with the same context-set is a storage invariant
	// violation
	corrupt := append(existing, competency.Competency{ID: "c4", Contexts: competency.NewContextSet("mouse")})
	_, err = competency.Match(corrupt, competency.NewContextSet("mouse"))
	require.ErrorIs(t, err, competency.ErrDuplicateContextSet)
}

func TestUpsertCreatesWhenNoMatch(t *testing.T) {
	ctx := context.Background()
	comps := &mocks.CompetencyRepository{}

	comps.On("ListForUserSkill", ctx, "u1", "s1").Return([]competency.Competency{
		{ID: "c1", UserID: "u1", SkillID: "s1", Level: competency.LevelExpert,
			Contexts: competency.NewContextSet("rat")},
	}, nil)
	comps.On("Create", ctx, mock.Anything).Return(nil)

	svc := competency.NewService(comps, nil, nil, nil)
	comp, created, err := svc.Upsert(ctx, competency.UpsertRequest{
		UserID:         "u1",
		SkillID:        "s1",
		Contexts:       competency.NewContextSet("mouse"),
		Level:          competency.LevelNovice,
		EvaluationDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Evaluator:      competency.InternalEvaluator("validator"),
	})
	require.NoError(t, err)
	require.True(t, created)
	require.NotEmpty(t, comp.ID)
	require.Equal(t, competency.NewContextSet("mouse"), comp.Contexts)
	comps.AssertExpectations(t)
}

func TestUpsertUpdatesMatchInPlace(t *testing.T) {
	ctx := context.Background()
	comps := &mocks.CompetencyRepository{}

	sessionID := "sess1"
	existing := competency.Competency{
		ID: "c1", UserID: "u1", SkillID: "s1",
		Level:          competency.LevelNovice,
		EvaluationDate: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		Evaluator:      competency.ExternalEvaluator("Old Trainer"),
		Contexts:       competency.NewContextSet("mouse"),
	}
	comps.On("ListForUserSkill", ctx, "u1", "s1").Return([]competency.Competency{existing}, nil)
	comps.On("Update", ctx, mock.MatchedBy(func(c *competency.Competency) bool {
		return c.ID == "c1" &&
			c.Level == competency.LevelIntermediate &&
			c.Evaluator.Kind == competency.EvaluatorInternal &&
			c.Evaluator.Name == "" &&
			c.SessionID != nil && *c.SessionID == sessionID
	})).Return(nil)

	svc := competency.NewService(comps, nil, nil, nil)
	comp, created, err := svc.Upsert(ctx, competency.UpsertRequest{
		UserID:         "u1",
		SkillID:        "s1",
		Contexts:       competency.NewContextSet("mouse"),
		Level:          competency.LevelIntermediate,
		EvaluationDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Evaluator:      competency.InternalEvaluator("validator"),
		SessionID:      &sessionID,
	})
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, "c1", comp.ID)
	comps.AssertExpectations(t)
}

func TestUpsertRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	svc := competency.NewService(&mocks.CompetencyRepository{}, nil, nil, nil)

	_, _, err := svc.Upsert(ctx, competency.UpsertRequest{
		UserID: "u1", SkillID: "s1",
		Level:     competency.Level("Master"),
		Evaluator: competency.InternalEvaluator("v"),
	})
	require.ErrorIs(t, err, competency.ErrInvalidLevel)

	_, _, err = svc.Upsert(ctx, competency.UpsertRequest{
		UserID: "u1", SkillID: "s1",
		Level:     competency.LevelNovice,
		Evaluator: competency.Evaluator{Kind: competency.EvaluatorInternal, UserID: "v", Name: "both"},
	})
	require.ErrorIs(t, err, competency.ErrInvalidEvaluator)
}

func TestSetLevelNoOp(t *testing.T) {
	ctx := context.Background()
	comps := &mocks.CompetencyRepository{}
	comps.On("Get", ctx, "c1").Return(&competency.Competency{
		ID: "c1", Level: competency.LevelExpert,
	}, nil)

	svc := competency.NewService(comps, nil, nil, nil)
	comp, err := svc.SetLevel(ctx, "c1", competency.LevelExpert)
	require.NoError(t, err)
	require.Equal(t, competency.LevelExpert, comp.Level)
	comps.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestGetMapsNotFound(t *testing.T) {
	ctx := context.Background()
	comps := &mocks.CompetencyRepository{}
	comps.On("Get", ctx, "missing").Return(nil, repository.ErrNotFound)

	svc := competency.NewService(comps, nil, nil, nil)
	_, err := svc.Get(ctx, "missing")
	require.ErrorIs(t, err, competency.ErrCompetencyNotFound)
}

func TestStatusUsesLatestPractice(t *testing.T) {
	ctx := context.Background()
	comps := &mocks.CompetencyRepository{}
	skills := &mocks.SkillReader{}
	practice := &mocks.PracticeReader{}

	evaluated := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	practiced := time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC)
	validity := 12

	comps.On("Get", ctx, "c1").Return(&competency.Competency{
		ID: "c1", UserID: "u1", SkillID: "s1",
		Level: competency.LevelNovice, EvaluationDate: evaluated,
	}, nil)
	skills.On("GetSkill", ctx, "s1").Return(&competency.Skill{
		ID: "s1", ValidityPeriodMonths: &validity,
	}, nil)
	practice.On("PracticeDates", ctx, "u1", "s1").Return([]time.Time{practiced}, nil)

	svc := competency.NewService(comps, skills, practice, nil)

	// Without the practice this instant would be past due; with it the
	// competency is still valid.
	asOf := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	status, err := svc.Status(ctx, "c1", asOf)
	require.NoError(t, err)
	require.Equal(t, competency.StateValid, status.State)
	require.False(t, status.NeedsRecycling)

	wantDue := practiced.Add(time.Duration(12 * competency.DaysPerMonth * 24 * float64(time.Hour)))
	require.True(t, status.DueDate.Equal(wantDue))
}
