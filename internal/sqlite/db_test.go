package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new in-memory SQLite database for testing
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	err = db.RunMigrations()
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// TestMigrations verifies that migrations run successfully
func TestMigrations(t *testing.T) {
	db := NewTestDB(t)

	// Verify all tables were created
	tables := []string{
		"users",
		"contexts",
		"skills",
		"skill_contexts",
		"skill_tutors",
		"competencies",
		"competency_contexts",
		"practice_events",
		"practice_event_skills",
		"training_sessions",
		"session_attendees",
		"session_skills",
		"external_trainings",
		"external_training_claims",
		"external_training_claim_contexts",
		"training_events",
		"training_records",
	}

	for _, table := range tables {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err, "failed to query table %s", table)
		require.Equal(t, 1, count, "table %s not found", table)
	}
}

// TestForeignKeys verifies that foreign key constraints are enabled
func TestForeignKeys(t *testing.T) {
	db := NewTestDB(t)

	var enabled int
	err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled)
	require.NoError(t, err)
	require.Equal(t, 1, enabled, "foreign keys not enabled")
}

// TestCompetenciesTable verifies the competencies table constraints
func TestCompetenciesTable(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		`INSERT INTO users (id, full_name, email) VALUES (?, ?, ?)`,
		"u1", "Test User", "u1@example.org")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx,
		`INSERT INTO skills (id, name, complexity) VALUES (?, ?, ?)`,
		"s1", "Handling", "Simple")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx,
		`INSERT INTO competencies (id, user_id, skill_id, level, evaluation_date, evaluator_kind, evaluator_user_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		"c1", "u1", "s1", "Novice", "2024-01-01T00:00:00Z", "internal", "u1")
	require.NoError(t, err)

	// Level constraint
	_, err = db.ExecContext(ctx,
		`INSERT INTO competencies (id, user_id, skill_id, level, evaluation_date, evaluator_kind)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		"c2", "u1", "s1", "Master", "2024-01-01T00:00:00Z", "internal")
	require.Error(t, err, "should fail with unknown level")

	// User foreign key
	_, err = db.ExecContext(ctx,
		`INSERT INTO competencies (id, user_id, skill_id, level, evaluation_date, evaluator_kind)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		"c3", "missing", "s1", "Novice", "2024-01-01T00:00:00Z", "internal")
	require.Error(t, err, "should fail with invalid user_id")
}

// TestTrainingRecordsTable verifies the records table constraints
func TestTrainingRecordsTable(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		`INSERT INTO users (id, full_name, email) VALUES (?, ?, ?)`,
		"u1", "Test User", "u1@example.org")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx,
		`INSERT INTO training_events (id, title, event_date, mode, duration_hours)
		 VALUES (?, ?, ?, ?, ?)`,
		"e1", "Welfare Refresher", "2024-03-01T00:00:00Z", "Live", 7.15)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx,
		`INSERT INTO training_records (id, user_id, event_id, status) VALUES (?, ?, ?, ?)`,
		"r1", "u1", "e1", "Pending")
	require.NoError(t, err)

	// One record per (user, event)
	_, err = db.ExecContext(ctx,
		`INSERT INTO training_records (id, user_id, event_id, status) VALUES (?, ?, ?, ?)`,
		"r2", "u1", "e1", "Pending")
	require.Error(t, err, "should fail on duplicate attendance")

	// Mode constraint on events
	_, err = db.ExecContext(ctx,
		`INSERT INTO training_events (id, title, event_date, mode, duration_hours)
		 VALUES (?, ?, ?, ?, ?)`,
		"e2", "Bad Mode", "2024-03-01T00:00:00Z", "Hybrid", 1)
	require.Error(t, err, "should fail with unknown mode")
}

// TestRunInTx verifies rollback and nested transaction reuse
func TestRunInTx(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := db.RunInTx(ctx, func(ctx context.Context) error {
		_, err := db.conn(ctx).ExecContext(ctx,
			`INSERT INTO users (id, full_name, email) VALUES (?, ?, ?)`,
			"u1", "Test User", "u1@example.org")
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int
	err = db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 0, count, "rolled-back insert should not persist")

	err = db.RunInTx(ctx, func(outer context.Context) error {
		return db.RunInTx(outer, func(inner context.Context) error {
			_, err := db.conn(inner).ExecContext(inner,
				`INSERT INTO users (id, full_name, email) VALUES (?, ?, ?)`,
				"u2", "Nested User", "u2@example.org")
			return err
		})
	})
	require.NoError(t, err)

	err = db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
