package competency_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ganot/skillkeeper/internal/domain/competency"
)

func months(n int) *int { return &n }

func validityOf(n int) time.Duration {
	return time.Duration(float64(n) * competency.DaysPerMonth * 24 * float64(time.Hour))
}

func TestEvaluateRecyclingNeverExpires(t *testing.T) {
	status := competency.EvaluateRecycling(nil,
		time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	require.Equal(t, competency.StateValid, status.State)
	require.Nil(t, status.DueDate)
	require.Nil(t, status.WarningDate)
	require.False(t, status.NeedsRecycling)
}

func TestEvaluateRecyclingExpired(t *testing.T) {
	evaluated := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	status := competency.EvaluateRecycling(months(12), evaluated, asOf)
	require.Equal(t, competency.StateExpired, status.State)
	require.True(t, status.NeedsRecycling)

	// 12 months of 30.44 days each, not calendar months
	wantDue := evaluated.Add(validityOf(12))
	require.NotNil(t, status.DueDate)
	require.True(t, status.DueDate.Equal(wantDue))

	wantWarning := wantDue.Add(-validityOf(12) / 4)
	require.NotNil(t, status.WarningDate)
	require.True(t, status.WarningDate.Equal(wantWarning))
}

func TestEvaluateRecyclingStates(t *testing.T) {
	evaluated := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	due := evaluated.Add(validityOf(12))
	warning := due.Add(-validityOf(12) / 4)

	// Before the warning window
	status := competency.EvaluateRecycling(months(12), evaluated, warning.Add(-time.Hour))
	require.Equal(t, competency.StateValid, status.State)
	require.False(t, status.NeedsRecycling)

	// Inside the warning window, including its first instant
	status = competency.EvaluateRecycling(months(12), evaluated, warning)
	require.Equal(t, competency.StateRecyclingSoon, status.State)
	require.False(t, status.NeedsRecycling)

	// The due instant itself is not yet expired
	status = competency.EvaluateRecycling(months(12), evaluated, due)
	require.Equal(t, competency.StateRecyclingSoon, status.State)

	status = competency.EvaluateRecycling(months(12), evaluated, due.Add(time.Second))
	require.Equal(t, competency.StateExpired, status.State)
	require.True(t, status.NeedsRecycling)
}

func TestLatestEvidenceDate(t *testing.T) {
	evaluated := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	earlier := evaluated.AddDate(0, -2, 0)
	later := evaluated.AddDate(0, 3, 0)

	// Practice after the evaluation extends validity
	require.True(t, competency.LatestEvidenceDate(evaluated, []time.Time{earlier, later}).Equal(later))

	// Practice before the evaluation never shortens it
	require.True(t, competency.LatestEvidenceDate(evaluated, []time.Time{earlier}).Equal(evaluated))

	require.True(t, competency.LatestEvidenceDate(evaluated, nil).Equal(evaluated))
}
