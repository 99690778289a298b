package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ganot/skillkeeper/internal/domain/competency"
	"github.com/ganot/skillkeeper/internal/domain/evidence"
	"github.com/ganot/skillkeeper/internal/repository"
)

func seedCompetency(t *testing.T, repo *CompetencyRepository, userID, skillID string, contexts ...string) *competency.Competency {
	t.Helper()
	comp := &competency.Competency{
		ID:             uuid.NewString(),
		UserID:         userID,
		SkillID:        skillID,
		Level:          competency.LevelNovice,
		EvaluationDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Evaluator:      competency.InternalEvaluator(userID),
		Contexts:       competency.NewContextSet(contexts...),
	}
	require.NoError(t, repo.Create(context.Background(), comp))
	return comp
}

func TestCompetencyCreateGet(t *testing.T) {
	db := NewTestDB(t)
	catalog := NewCatalogRepository(db)
	repo := NewCompetencyRepository(db)
	ctx := context.Background()

	seedUser(t, catalog, "u1", false)
	seedContext(t, catalog, "ctx-mouse", "Mouse")
	seedSkill(t, catalog, "s1", nil, "ctx-mouse")

	created := seedCompetency(t, repo, "u1", "s1", "ctx-mouse")

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "u1", got.UserID)
	require.Equal(t, "s1", got.SkillID)
	require.Equal(t, competency.LevelNovice, got.Level)
	require.Equal(t, competency.EvaluatorInternal, got.Evaluator.Kind)
	require.Equal(t, "u1", got.Evaluator.UserID)
	require.Equal(t, competency.NewContextSet("ctx-mouse"), got.Contexts)
	require.True(t, got.EvaluationDate.Equal(created.EvaluationDate))

	_, err = repo.Get(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCompetencyUpdate(t *testing.T) {
	db := NewTestDB(t)
	catalog := NewCatalogRepository(db)
	repo := NewCompetencyRepository(db)
	ctx := context.Background()

	seedUser(t, catalog, "u1", false)
	seedContext(t, catalog, "ctx-mouse", "Mouse")
	seedContext(t, catalog, "ctx-rat", "Rat")
	seedSkill(t, catalog, "s1", nil)

	comp := seedCompetency(t, repo, "u1", "s1", "ctx-mouse")

	comp.Level = competency.LevelExpert
	comp.Evaluator = competency.ExternalEvaluator("Dr. Vet")
	comp.Contexts = competency.NewContextSet("ctx-rat")
	require.NoError(t, repo.Update(ctx, comp))

	got, err := repo.Get(ctx, comp.ID)
	require.NoError(t, err)
	require.Equal(t, competency.LevelExpert, got.Level)
	require.Equal(t, competency.EvaluatorExternal, got.Evaluator.Kind)
	require.Equal(t, "Dr. Vet", got.Evaluator.Name)
	require.Empty(t, got.Evaluator.UserID)
	require.Equal(t, competency.NewContextSet("ctx-rat"), got.Contexts)

	missing := *comp
	missing.ID = "missing"
	require.ErrorIs(t, repo.Update(ctx, &missing), repository.ErrNotFound)
}

func TestCompetencyLists(t *testing.T) {
	db := NewTestDB(t)
	catalog := NewCatalogRepository(db)
	repo := NewCompetencyRepository(db)
	ctx := context.Background()

	seedUser(t, catalog, "u1", false)
	seedUser(t, catalog, "u2", false)
	seedContext(t, catalog, "ctx-mouse", "Mouse")
	seedContext(t, catalog, "ctx-rat", "Rat")
	seedSkill(t, catalog, "s1", nil)
	seedSkill(t, catalog, "s2", nil)

	seedCompetency(t, repo, "u1", "s1", "ctx-mouse")
	seedCompetency(t, repo, "u1", "s1", "ctx-rat")
	seedCompetency(t, repo, "u1", "s2")
	seedCompetency(t, repo, "u2", "s1")

	list, err := repo.ListForUserSkill(ctx, "u1", "s1")
	require.NoError(t, err)
	require.Len(t, list, 2)

	list, err = repo.ListForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 3)

	list, err = repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 4)
}

func TestCompetencyPracticeDates(t *testing.T) {
	db := NewTestDB(t)
	catalog := NewCatalogRepository(db)
	repo := NewCompetencyRepository(db)
	practice := NewPracticeRepository(db)
	ctx := context.Background()

	seedUser(t, catalog, "u1", false)
	seedSkill(t, catalog, "s1", nil)
	seedSkill(t, catalog, "s2", nil)

	first := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	second := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, practice.Create(ctx, &evidence.PracticeEvent{
		ID: uuid.NewString(), UserID: "u1", Date: first, SkillIDs: []string{"s1", "s2"},
	}))
	require.NoError(t, practice.Create(ctx, &evidence.PracticeEvent{
		ID: uuid.NewString(), UserID: "u1", Date: second, SkillIDs: []string{"s1"},
	}))

	dates, err := repo.PracticeDates(ctx, "u1", "s1")
	require.NoError(t, err)
	require.Len(t, dates, 2)

	dates, err = repo.PracticeDates(ctx, "u1", "s2")
	require.NoError(t, err)
	require.Len(t, dates, 1)
	require.True(t, dates[0].Equal(first))
}
