package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ganot/skillkeeper/internal/domain/competency"
	"github.com/ganot/skillkeeper/internal/domain/evidence"
	"github.com/ganot/skillkeeper/internal/repository"
)

// SessionRepository implements persistence for training sessions.
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a session with its attendee and skill rosters.
func (r *SessionRepository) Create(ctx context.Context, sess *evidence.TrainingSession) error {
	conn := r.db.conn(ctx)
	_, err := conn.ExecContext(ctx, `
		INSERT INTO training_sessions (
			id, title, location, start_time, end_time, tutor_id,
			ethical_authorization_id, animal_count, realized
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID,
		sess.Title,
		sess.Location,
		sess.StartTime,
		sess.EndTime,
		nullableString(sess.TutorID),
		sess.EthicalAuthorizationID,
		sess.AnimalCount,
		sess.Realized,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create session: %w", err)
	}
	for _, userID := range sess.AttendeeIDs {
		if _, err := conn.ExecContext(ctx,
			`INSERT INTO session_attendees (session_id, user_id) VALUES (?, ?)`,
			sess.ID, userID,
		); err != nil {
			return fmt.Errorf("failed to add attendee: %w", err)
		}
	}
	for _, skillID := range sess.SkillIDs {
		if _, err := conn.ExecContext(ctx,
			`INSERT INTO session_skills (session_id, skill_id) VALUES (?, ?)`,
			sess.ID, skillID,
		); err != nil {
			return fmt.Errorf("failed to add covered skill: %w", err)
		}
	}
	return nil
}

// Get retrieves a session with its rosters.
func (r *SessionRepository) Get(ctx context.Context, id string) (*evidence.TrainingSession, error) {
	var (
		sess  evidence.TrainingSession
		tutor sql.NullString
	)
	err := r.db.conn(ctx).QueryRowContext(ctx, `
		SELECT id, title, location, start_time, end_time, tutor_id,
		       ethical_authorization_id, animal_count, realized
		FROM training_sessions WHERE id = ?`, id,
	).Scan(
		&sess.ID,
		&sess.Title,
		&sess.Location,
		&sess.StartTime,
		&sess.EndTime,
		&tutor,
		&sess.EthicalAuthorizationID,
		&sess.AnimalCount,
		&sess.Realized,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	sess.TutorID = tutor.String

	sess.AttendeeIDs, err = r.memberIDs(ctx,
		`SELECT user_id FROM session_attendees WHERE session_id = ?`, id)
	if err != nil {
		return nil, err
	}
	sess.SkillIDs, err = r.memberIDs(ctx,
		`SELECT skill_id FROM session_skills WHERE session_id = ?`, id)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// SetRealized updates the session's realized flag.
func (r *SessionRepository) SetRealized(ctx context.Context, id string, realized bool) error {
	result, err := r.db.conn(ctx).ExecContext(ctx,
		`UPDATE training_sessions SET realized = ? WHERE id = ?`, realized, id)
	if err != nil {
		return fmt.Errorf("failed to set realized: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CountUnrealizedSessions counts past sessions still awaiting
// validation.
func (r *SessionRepository) CountUnrealizedSessions(ctx context.Context, endedBefore time.Time) (int, error) {
	var n int
	err := r.db.conn(ctx).QueryRowContext(ctx,
		`SELECT COUNT(1) FROM training_sessions WHERE realized = 0 AND end_time < ?`,
		endedBefore,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return n, nil
}

func (r *SessionRepository) memberIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load session members: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ExternalTrainingRepository implements persistence for external
// trainings and their skill claims.
type ExternalTrainingRepository struct {
	db *DB
}

// NewExternalTrainingRepository creates a new ExternalTrainingRepository
func NewExternalTrainingRepository(db *DB) *ExternalTrainingRepository {
	return &ExternalTrainingRepository{db: db}
}

// Create inserts a training with its claims.
func (r *ExternalTrainingRepository) Create(ctx context.Context, training *evidence.ExternalTraining) error {
	conn := r.db.conn(ctx)
	_, err := conn.ExecContext(ctx, `
		INSERT INTO external_trainings (id, user_id, trainer_name, training_date, status, validator_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		training.ID,
		training.UserID,
		training.TrainerName,
		training.Date,
		training.Status,
		training.ValidatorID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create external training: %w", err)
	}
	for _, claim := range training.Claims {
		if _, err := conn.ExecContext(ctx, `
			INSERT INTO external_training_claims (training_id, skill_id, level, practice_date, wants_tutor)
			VALUES (?, ?, ?, ?, ?)`,
			training.ID, claim.SkillID, claim.Level, claim.PracticeDate, claim.WantsTutor,
		); err != nil {
			return fmt.Errorf("failed to create claim: %w", err)
		}
		for _, contextID := range claim.Contexts {
			if _, err := conn.ExecContext(ctx, `
				INSERT INTO external_training_claim_contexts (training_id, skill_id, context_id)
				VALUES (?, ?, ?)`,
				training.ID, claim.SkillID, contextID,
			); err != nil {
				return fmt.Errorf("failed to associate claim context: %w", err)
			}
		}
	}
	return nil
}

// Get retrieves a training with its claims.
func (r *ExternalTrainingRepository) Get(ctx context.Context, id string) (*evidence.ExternalTraining, error) {
	var training evidence.ExternalTraining
	err := r.db.conn(ctx).QueryRowContext(ctx, `
		SELECT id, user_id, trainer_name, training_date, status, validator_id
		FROM external_trainings WHERE id = ?`, id,
	).Scan(
		&training.ID,
		&training.UserID,
		&training.TrainerName,
		&training.Date,
		&training.Status,
		&training.ValidatorID,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get external training: %w", err)
	}

	rows, err := r.db.conn(ctx).QueryContext(ctx, `
		SELECT skill_id, level, practice_date, wants_tutor
		FROM external_training_claims WHERE training_id = ?
		ORDER BY skill_id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load claims: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			claim    evidence.Claim
			practice sql.NullTime
		)
		if err := rows.Scan(&claim.SkillID, &claim.Level, &practice, &claim.WantsTutor); err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		if practice.Valid {
			claim.PracticeDate = &practice.Time
		}
		training.Claims = append(training.Claims, claim)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range training.Claims {
		contexts, err := r.claimContexts(ctx, id, training.Claims[i].SkillID)
		if err != nil {
			return nil, err
		}
		training.Claims[i].Contexts = competency.NewContextSet(contexts...)
	}
	return &training, nil
}

// SetStatus finalizes a training's status and validator.
func (r *ExternalTrainingRepository) SetStatus(ctx context.Context, id string, status evidence.Status, validatorID string) error {
	result, err := r.db.conn(ctx).ExecContext(ctx,
		`UPDATE external_trainings SET status = ?, validator_id = ? WHERE id = ?`,
		status, validatorID, id)
	if err != nil {
		return fmt.Errorf("failed to set status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CountPendingExternalTrainings counts trainings awaiting validation.
func (r *ExternalTrainingRepository) CountPendingExternalTrainings(ctx context.Context) (int, error) {
	var n int
	err := r.db.conn(ctx).QueryRowContext(ctx,
		`SELECT COUNT(1) FROM external_trainings WHERE status = ?`,
		evidence.StatusPending,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count external trainings: %w", err)
	}
	return n, nil
}

func (r *ExternalTrainingRepository) claimContexts(ctx context.Context, trainingID, skillID string) ([]string, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx, `
		SELECT context_id FROM external_training_claim_contexts
		WHERE training_id = ? AND skill_id = ?`, trainingID, skillID)
	if err != nil {
		return nil, fmt.Errorf("failed to load claim contexts: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan context id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// EvidenceCounts bundles the pending-evidence counters of both
// evidence aggregates behind one reporting-facing type.
type EvidenceCounts struct {
	Sessions  *SessionRepository
	Trainings *ExternalTrainingRepository
}

func (c EvidenceCounts) CountUnrealizedSessions(ctx context.Context, endedBefore time.Time) (int, error) {
	return c.Sessions.CountUnrealizedSessions(ctx, endedBefore)
}

func (c EvidenceCounts) CountPendingExternalTrainings(ctx context.Context) (int, error) {
	return c.Trainings.CountPendingExternalTrainings(ctx)
}

// PracticeRepository implements persistence for practice events.
type PracticeRepository struct {
	db *DB
}

// NewPracticeRepository creates a new PracticeRepository
func NewPracticeRepository(db *DB) *PracticeRepository {
	return &PracticeRepository{db: db}
}

// Create inserts a practice event with its skill associations.
func (r *PracticeRepository) Create(ctx context.Context, event *evidence.PracticeEvent) error {
	conn := r.db.conn(ctx)
	_, err := conn.ExecContext(ctx,
		`INSERT INTO practice_events (id, user_id, practice_date, notes) VALUES (?, ?, ?, ?)`,
		event.ID, event.UserID, event.Date, event.Notes)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create practice event: %w", err)
	}
	for _, skillID := range event.SkillIDs {
		if _, err := conn.ExecContext(ctx,
			`INSERT INTO practice_event_skills (event_id, skill_id) VALUES (?, ?)`,
			event.ID, skillID,
		); err != nil {
			return fmt.Errorf("failed to associate skill: %w", err)
		}
	}
	return nil
}

// Exists reports whether an event for (userID, date) already
// references the skill. Dates are compared by calendar day.
func (r *PracticeRepository) Exists(ctx context.Context, userID, skillID string, date time.Time) (bool, error) {
	dayStart := date.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)

	var n int
	err := r.db.conn(ctx).QueryRowContext(ctx, `
		SELECT COUNT(1)
		FROM practice_events e
		JOIN practice_event_skills s ON s.event_id = e.id
		WHERE e.user_id = ? AND s.skill_id = ?
		  AND e.practice_date >= ? AND e.practice_date < ?`,
		userID, skillID, dayStart, dayEnd,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check practice events: %w", err)
	}
	return n > 0, nil
}
