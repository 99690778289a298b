package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ganot/skillkeeper/internal/domain/competency"
	"github.com/ganot/skillkeeper/internal/repository"
)

// CompetencyRepository implements persistence for canonical competency
// records and exposes practice dates for validity evaluation.
type CompetencyRepository struct {
	db *DB
}

// NewCompetencyRepository creates a new CompetencyRepository
func NewCompetencyRepository(db *DB) *CompetencyRepository {
	return &CompetencyRepository{db: db}
}

// Create inserts a competency and its context-set.
func (r *CompetencyRepository) Create(ctx context.Context, comp *competency.Competency) error {
	conn := r.db.conn(ctx)
	_, err := conn.ExecContext(ctx, `
		INSERT INTO competencies (
			id, user_id, skill_id, level, evaluation_date,
			evaluator_kind, evaluator_user_id, evaluator_name,
			session_id, external_training_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		comp.ID,
		comp.UserID,
		comp.SkillID,
		comp.Level,
		comp.EvaluationDate,
		comp.Evaluator.Kind,
		nullableString(comp.Evaluator.UserID),
		nullableString(comp.Evaluator.Name),
		comp.SessionID,
		comp.ExternalTrainingID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create competency: %w", err)
	}
	return r.replaceContexts(ctx, comp.ID, comp.Contexts)
}

// Update rewrites a competency's mutable fields and context-set.
func (r *CompetencyRepository) Update(ctx context.Context, comp *competency.Competency) error {
	result, err := r.db.conn(ctx).ExecContext(ctx, `
		UPDATE competencies
		SET level = ?, evaluation_date = ?,
		    evaluator_kind = ?, evaluator_user_id = ?, evaluator_name = ?,
		    session_id = ?, external_training_id = ?
		WHERE id = ?`,
		comp.Level,
		comp.EvaluationDate,
		comp.Evaluator.Kind,
		nullableString(comp.Evaluator.UserID),
		nullableString(comp.Evaluator.Name),
		comp.SessionID,
		comp.ExternalTrainingID,
		comp.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update competency: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return r.replaceContexts(ctx, comp.ID, comp.Contexts)
}

// Get retrieves a competency by ID.
func (r *CompetencyRepository) Get(ctx context.Context, id string) (*competency.Competency, error) {
	comp, err := r.scanOne(ctx, `
		SELECT id, user_id, skill_id, level, evaluation_date,
		       evaluator_kind, evaluator_user_id, evaluator_name,
		       session_id, external_training_id
		FROM competencies WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	return comp, nil
}

// ListForUserSkill returns the competencies a user holds in one skill.
func (r *CompetencyRepository) ListForUserSkill(ctx context.Context, userID, skillID string) ([]competency.Competency, error) {
	return r.list(ctx, `
		SELECT id, user_id, skill_id, level, evaluation_date,
		       evaluator_kind, evaluator_user_id, evaluator_name,
		       session_id, external_training_id
		FROM competencies WHERE user_id = ? AND skill_id = ?
		ORDER BY evaluation_date`, userID, skillID)
}

// ListForUser returns all competencies held by a user.
func (r *CompetencyRepository) ListForUser(ctx context.Context, userID string) ([]competency.Competency, error) {
	return r.list(ctx, `
		SELECT id, user_id, skill_id, level, evaluation_date,
		       evaluator_kind, evaluator_user_id, evaluator_name,
		       session_id, external_training_id
		FROM competencies WHERE user_id = ?
		ORDER BY skill_id, evaluation_date`, userID)
}

// ListAll returns every competency record.
func (r *CompetencyRepository) ListAll(ctx context.Context) ([]competency.Competency, error) {
	return r.list(ctx, `
		SELECT id, user_id, skill_id, level, evaluation_date,
		       evaluator_kind, evaluator_user_id, evaluator_name,
		       session_id, external_training_id
		FROM competencies ORDER BY user_id, skill_id`)
}

// PracticeDates returns the dates on which a user declared practice of
// a skill.
func (r *CompetencyRepository) PracticeDates(ctx context.Context, userID, skillID string) ([]time.Time, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx, `
		SELECT e.practice_date
		FROM practice_events e
		JOIN practice_event_skills s ON s.event_id = e.id
		WHERE e.user_id = ? AND s.skill_id = ?
		ORDER BY e.practice_date`, userID, skillID)
	if err != nil {
		return nil, fmt.Errorf("failed to load practice dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan practice date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func (r *CompetencyRepository) scanOne(ctx context.Context, query string, args ...any) (*competency.Competency, error) {
	var (
		comp          competency.Competency
		evaluatorUser sql.NullString
		evaluatorName sql.NullString
	)
	err := r.db.conn(ctx).QueryRowContext(ctx, query, args...).Scan(
		&comp.ID,
		&comp.UserID,
		&comp.SkillID,
		&comp.Level,
		&comp.EvaluationDate,
		&comp.Evaluator.Kind,
		&evaluatorUser,
		&evaluatorName,
		&comp.SessionID,
		&comp.ExternalTrainingID,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get competency: %w", err)
	}
	comp.Evaluator.UserID = evaluatorUser.String
	comp.Evaluator.Name = evaluatorName.String

	contexts, err := r.competencyContexts(ctx, comp.ID)
	if err != nil {
		return nil, err
	}
	comp.Contexts = contexts
	return &comp, nil
}

func (r *CompetencyRepository) list(ctx context.Context, query string, args ...any) ([]competency.Competency, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list competencies: %w", err)
	}
	defer rows.Close()

	var comps []competency.Competency
	for rows.Next() {
		var (
			comp          competency.Competency
			evaluatorUser sql.NullString
			evaluatorName sql.NullString
		)
		if err := rows.Scan(
			&comp.ID,
			&comp.UserID,
			&comp.SkillID,
			&comp.Level,
			&comp.EvaluationDate,
			&comp.Evaluator.Kind,
			&evaluatorUser,
			&evaluatorName,
			&comp.SessionID,
			&comp.ExternalTrainingID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan competency: %w", err)
		}
		comp.Evaluator.UserID = evaluatorUser.String
		comp.Evaluator.Name = evaluatorName.String
		comps = append(comps, comp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range comps {
		contexts, err := r.competencyContexts(ctx, comps[i].ID)
		if err != nil {
			return nil, err
		}
		comps[i].Contexts = contexts
	}
	return comps, nil
}

func (r *CompetencyRepository) competencyContexts(ctx context.Context, competencyID string) (competency.ContextSet, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx,
		`SELECT context_id FROM competency_contexts WHERE competency_id = ?`, competencyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load competency contexts: %w", err)
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
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return competency.NewContextSet(ids...), nil
}

func (r *CompetencyRepository) replaceContexts(ctx context.Context, competencyID string, contexts competency.ContextSet) error {
	conn := r.db.conn(ctx)
	if _, err := conn.ExecContext(ctx,
		`DELETE FROM competency_contexts WHERE competency_id = ?`, competencyID); err != nil {
		return fmt.Errorf("failed to clear competency contexts: %w", err)
	}
	for _, contextID := range contexts {
		if _, err := conn.ExecContext(ctx,
			`INSERT INTO competency_contexts (competency_id, context_id) VALUES (?, ?)`,
			competencyID, contextID,
		); err != nil {
			return fmt.Errorf("failed to associate context: %w", err)
		}
	}
	return nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
