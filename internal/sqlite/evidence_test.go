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

func TestSessionRoundTrip(t *testing.T) {
	db := NewTestDB(t)
	catalog := NewCatalogRepository(db)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	seedUser(t, catalog, "tutor", false)
	seedUser(t, catalog, "att1", false)
	seedUser(t, catalog, "att2", false)
	seedSkill(t, catalog, "s1", nil)

	start := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	sess := &evidence.TrainingSession{
		ID:                     uuid.NewString(),
		Title:                  "Handling workshop",
		Location:               "Room 2",
		StartTime:              start,
		EndTime:                start.Add(3 * time.Hour),
		TutorID:                "tutor",
		AttendeeIDs:            []string{"att1", "att2"},
		SkillIDs:               []string{"s1"},
		EthicalAuthorizationID: "EA-42",
		AnimalCount:            6,
	}
	require.NoError(t, repo.Create(ctx, sess))

	got, err := repo.Get(ctx, sess.ID)
	require.NoError(t, err)
	require.Equal(t, "Handling workshop", got.Title)
	require.Equal(t, "tutor", got.TutorID)
	require.ElementsMatch(t, []string{"att1", "att2"}, got.AttendeeIDs)
	require.Equal(t, []string{"s1"}, got.SkillIDs)
	require.False(t, got.Realized)
	require.Equal(t, "EA-42", got.EthicalAuthorizationID)
	require.Equal(t, 6, got.AnimalCount)

	_, err = repo.Get(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.SetRealized(ctx, sess.ID, true))
	got, err = repo.Get(ctx, sess.ID)
	require.NoError(t, err)
	require.True(t, got.Realized)

	require.ErrorIs(t, repo.SetRealized(ctx, "missing", true), repository.ErrNotFound)
}

func TestCountUnrealizedSessions(t *testing.T) {
	db := NewTestDB(t)
	catalog := NewCatalogRepository(db)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	seedUser(t, catalog, "tutor", false)

	newSession := func(end time.Time, realized bool) {
		sess := &evidence.TrainingSession{
			ID:        uuid.NewString(),
			Title:     "Session",
			StartTime: end.Add(-2 * time.Hour),
			EndTime:   end,
			TutorID:   "tutor",
			Realized:  realized,
		}
		require.NoError(t, repo.Create(ctx, sess))
	}

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	newSession(now.Add(-48*time.Hour), false)
	newSession(now.Add(-24*time.Hour), true)
	newSession(now.Add(24*time.Hour), false) // still upcoming

	count, err := repo.CountUnrealizedSessions(ctx, now)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestExternalTrainingRoundTrip(t *testing.T) {
	db := NewTestDB(t)
	catalog := NewCatalogRepository(db)
	repo := NewExternalTrainingRepository(db)
	ctx := context.Background()

	seedUser(t, catalog, "u1", false)
	seedUser(t, catalog, "validator", true)
	seedContext(t, catalog, "ctx-mouse", "Mouse")
	seedSkill(t, catalog, "s1", nil, "ctx-mouse")
	seedSkill(t, catalog, "s2", nil)

	practiceDate := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)
	training := &evidence.ExternalTraining{
		ID:          uuid.NewString(),
		UserID:      "u1",
		TrainerName: "Course Provider",
		Date:        time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		Status:      evidence.StatusPending,
		Claims: []evidence.Claim{
			{
				SkillID:      "s1",
				Level:        competency.LevelIntermediate,
				Contexts:     competency.NewContextSet("ctx-mouse"),
				PracticeDate: &practiceDate,
				WantsTutor:   true,
			},
			{SkillID: "s2", Level: competency.LevelNovice},
		},
	}
	require.NoError(t, repo.Create(ctx, training))

	got, err := repo.Get(ctx, training.ID)
	require.NoError(t, err)
	require.Equal(t, evidence.StatusPending, got.Status)
	require.Equal(t, "Course Provider", got.TrainerName)
	require.Nil(t, got.ValidatorID)
	require.Len(t, got.Claims, 2)
	require.Equal(t, "s1", got.Claims[0].SkillID)
	require.Equal(t, competency.NewContextSet("ctx-mouse"), got.Claims[0].Contexts)
	require.NotNil(t, got.Claims[0].PracticeDate)
	require.True(t, got.Claims[0].PracticeDate.Equal(practiceDate))
	require.True(t, got.Claims[0].WantsTutor)
	require.Nil(t, got.Claims[1].PracticeDate)
	require.Empty(t, got.Claims[1].Contexts)

	require.NoError(t, repo.SetStatus(ctx, training.ID, evidence.StatusApproved, "validator"))
	got, err = repo.Get(ctx, training.ID)
	require.NoError(t, err)
	require.Equal(t, evidence.StatusApproved, got.Status)
	require.NotNil(t, got.ValidatorID)
	require.Equal(t, "validator", *got.ValidatorID)

	count, err := repo.CountPendingExternalTrainings(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, count)

	require.ErrorIs(t, repo.SetStatus(ctx, "missing", evidence.StatusRejected, "validator"), repository.ErrNotFound)
}

func TestPracticeExists(t *testing.T) {
	db := NewTestDB(t)
	catalog := NewCatalogRepository(db)
	repo := NewPracticeRepository(db)
	ctx := context.Background()

	seedUser(t, catalog, "u1", false)
	seedSkill(t, catalog, "s1", nil)
	seedSkill(t, catalog, "s2", nil)

	day := time.Date(2024, 7, 3, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, &evidence.PracticeEvent{
		ID:       uuid.NewString(),
		UserID:   "u1",
		Date:     day,
		SkillIDs: []string{"s1"},
	}))

	exists, err := repo.Exists(ctx, "u1", "s1", day)
	require.NoError(t, err)
	require.True(t, exists)

	// Same calendar day, different clock time
	exists, err = repo.Exists(ctx, "u1", "s1", day.Add(15*time.Hour))
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.Exists(ctx, "u1", "s1", day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.False(t, exists)

	exists, err = repo.Exists(ctx, "u1", "s2", day)
	require.NoError(t, err)
	require.False(t, exists)
}
