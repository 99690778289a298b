package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ganot/skillkeeper/internal/domain/competency"
	"github.com/ganot/skillkeeper/internal/repository"
)

// CatalogRepository provides users, skills, contexts and the tutor
// roster.
type CatalogRepository struct {
	db *DB
}

// NewCatalogRepository creates a new CatalogRepository
func NewCatalogRepository(db *DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// CreateUser inserts a user.
func (r *CatalogRepository) CreateUser(ctx context.Context, u *competency.User) error {
	_, err := r.db.conn(ctx).ExecContext(ctx,
		`INSERT INTO users (id, full_name, email, is_validator) VALUES (?, ?, ?, ?)`,
		u.ID, u.FullName, u.Email, u.IsValidator,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (r *CatalogRepository) GetUser(ctx context.Context, id string) (*competency.User, error) {
	var u competency.User
	err := r.db.conn(ctx).QueryRowContext(ctx,
		`SELECT id, full_name, email, is_validator FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.FullName, &u.Email, &u.IsValidator)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// ListUsers returns all users.
func (r *CatalogRepository) ListUsers(ctx context.Context) ([]competency.User, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx,
		`SELECT id, full_name, email, is_validator FROM users ORDER BY full_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []competency.User
	for rows.Next() {
		var u competency.User
		if err := rows.Scan(&u.ID, &u.FullName, &u.Email, &u.IsValidator); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CreateContext inserts a context entity.
func (r *CatalogRepository) CreateContext(ctx context.Context, c *competency.Context) error {
	_, err := r.db.conn(ctx).ExecContext(ctx,
		`INSERT INTO contexts (id, name) VALUES (?, ?)`, c.ID, c.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create context: %w", err)
	}
	return nil
}

// ListContexts returns all context entities.
func (r *CatalogRepository) ListContexts(ctx context.Context) ([]competency.Context, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx, `SELECT id, name FROM contexts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list contexts: %w", err)
	}
	defer rows.Close()

	var contexts []competency.Context
	for rows.Next() {
		var c competency.Context
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan context: %w", err)
		}
		contexts = append(contexts, c)
	}
	return contexts, rows.Err()
}

// CreateSkill inserts a skill and its context associations.
func (r *CatalogRepository) CreateSkill(ctx context.Context, s *competency.Skill) error {
	conn := r.db.conn(ctx)
	_, err := conn.ExecContext(ctx,
		`INSERT INTO skills (id, name, description, complexity, validity_period_months, reference_urls)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.Name, s.Description, s.Complexity, nullableInt(s.ValidityPeriodMonths),
		strings.Join(s.ReferenceURLs, "\n"),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create skill: %w", err)
	}
	for _, contextID := range s.Contexts {
		if _, err := conn.ExecContext(ctx,
			`INSERT INTO skill_contexts (skill_id, context_id) VALUES (?, ?)`,
			s.ID, contextID,
		); err != nil {
			return fmt.Errorf("failed to associate context: %w", err)
		}
	}
	return nil
}

// GetSkill retrieves a skill with its context-set.
func (r *CatalogRepository) GetSkill(ctx context.Context, id string) (*competency.Skill, error) {
	var (
		s        competency.Skill
		validity sql.NullInt64
		refs     sql.NullString
	)
	err := r.db.conn(ctx).QueryRowContext(ctx,
		`SELECT id, name, description, complexity, validity_period_months, reference_urls
		 FROM skills WHERE id = ?`, id,
	).Scan(&s.ID, &s.Name, &s.Description, &s.Complexity, &validity, &refs)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get skill: %w", err)
	}
	if validity.Valid {
		months := int(validity.Int64)
		s.ValidityPeriodMonths = &months
	}
	if refs.Valid && refs.String != "" {
		s.ReferenceURLs = strings.Split(refs.String, "\n")
	}

	contexts, err := r.skillContexts(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Contexts = contexts
	return &s, nil
}

// ListSkills returns every skill with its context-set.
func (r *CatalogRepository) ListSkills(ctx context.Context) ([]competency.Skill, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx, `SELECT id FROM skills ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list skills: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan skill id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	skills := make([]competency.Skill, 0, len(ids))
	for _, id := range ids {
		skill, err := r.GetSkill(ctx, id)
		if err != nil {
			return nil, err
		}
		skills = append(skills, *skill)
	}
	return skills, nil
}

func (r *CatalogRepository) skillContexts(ctx context.Context, skillID string) (competency.ContextSet, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx,
		`SELECT context_id FROM skill_contexts WHERE skill_id = ?`, skillID)
	if err != nil {
		return nil, fmt.Errorf("failed to load skill contexts: %w", err)
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

// IsTutor reports tutor-roster membership.
func (r *CatalogRepository) IsTutor(ctx context.Context, userID, skillID string) (bool, error) {
	var n int
	err := r.db.conn(ctx).QueryRowContext(ctx,
		`SELECT COUNT(1) FROM skill_tutors WHERE user_id = ? AND skill_id = ?`,
		userID, skillID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check tutor roster: %w", err)
	}
	return n > 0, nil
}

// AddTutor adds a user to a skill's tutor roster. Adding an existing
// member is a no-op.
func (r *CatalogRepository) AddTutor(ctx context.Context, userID, skillID string) error {
	_, err := r.db.conn(ctx).ExecContext(ctx,
		`INSERT OR IGNORE INTO skill_tutors (skill_id, user_id) VALUES (?, ?)`,
		skillID, userID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to add tutor: %w", err)
	}
	return nil
}

// RemoveTutor removes a user from a skill's tutor roster.
func (r *CatalogRepository) RemoveTutor(ctx context.Context, userID, skillID string) error {
	_, err := r.db.conn(ctx).ExecContext(ctx,
		`DELETE FROM skill_tutors WHERE skill_id = ? AND user_id = ?`,
		skillID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove tutor: %w", err)
	}
	return nil
}

// CountSkillsWithoutTutors counts skills with an empty tutor roster.
func (r *CatalogRepository) CountSkillsWithoutTutors(ctx context.Context) (int, error) {
	var n int
	err := r.db.conn(ctx).QueryRowContext(ctx,
		`SELECT COUNT(1) FROM skills s
		 WHERE NOT EXISTS (SELECT 1 FROM skill_tutors t WHERE t.skill_id = s.id)`,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count tutorless skills: %w", err)
	}
	return n, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
