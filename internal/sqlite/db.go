package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

type txKey struct{}

// RunInTx implements repository.TxRunner. Repositories called within
// fn share one transaction; nested calls reuse the outer transaction.
func (db *DB) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok && tx != nil {
		return fn(ctx)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %w: %v", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn returns the transaction bound to ctx, or the bare connection.
func (db *DB) conn(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok && tx != nil {
		return tx
	}
	return db.DB
}

// RunMigrations runs the migrations directly (for testing)
func (db *DB) RunMigrations() error {
	migration := `
-- Users
CREATE TABLE users (
    id TEXT PRIMARY KEY,
    full_name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    is_validator INTEGER NOT NULL DEFAULT 0
);

-- Contexts (species and other subject categories)
CREATE TABLE contexts (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

-- Skills
CREATE TABLE skills (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    description TEXT,
    complexity TEXT NOT NULL DEFAULT 'Simple' CHECK(complexity IN ('Simple', 'Moderate', 'Complex')),
    validity_period_months INTEGER,
    reference_urls TEXT
);

CREATE TABLE skill_contexts (
    skill_id TEXT NOT NULL,
    context_id TEXT NOT NULL,
    PRIMARY KEY (skill_id, context_id),
    FOREIGN KEY (skill_id) REFERENCES skills(id),
    FOREIGN KEY (context_id) REFERENCES contexts(id)
);

CREATE TABLE skill_tutors (
    skill_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    PRIMARY KEY (skill_id, user_id),
    FOREIGN KEY (skill_id) REFERENCES skills(id),
    FOREIGN KEY (user_id) REFERENCES users(id)
);

-- Canonical competency records
CREATE TABLE competencies (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    skill_id TEXT NOT NULL,
    level TEXT NOT NULL CHECK(level IN ('Novice', 'Intermediate', 'Expert')),
    evaluation_date TIMESTAMP NOT NULL,
    evaluator_kind TEXT NOT NULL CHECK(evaluator_kind IN ('internal', 'external')),
    evaluator_user_id TEXT,
    evaluator_name TEXT,
    session_id TEXT,
    external_training_id TEXT,
    FOREIGN KEY (user_id) REFERENCES users(id),
    FOREIGN KEY (skill_id) REFERENCES skills(id)
);
CREATE INDEX idx_competencies_user_skill ON competencies(user_id, skill_id);

CREATE TABLE competency_contexts (
    competency_id TEXT NOT NULL,
    context_id TEXT NOT NULL,
    PRIMARY KEY (competency_id, context_id),
    FOREIGN KEY (competency_id) REFERENCES competencies(id),
    FOREIGN KEY (context_id) REFERENCES contexts(id)
);

-- Self-declared practice
CREATE TABLE practice_events (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    practice_date TIMESTAMP NOT NULL,
    notes TEXT,
    FOREIGN KEY (user_id) REFERENCES users(id)
);
CREATE INDEX idx_practice_events_user ON practice_events(user_id, practice_date);

CREATE TABLE practice_event_skills (
    event_id TEXT NOT NULL,
    skill_id TEXT NOT NULL,
    PRIMARY KEY (event_id, skill_id),
    FOREIGN KEY (event_id) REFERENCES practice_events(id),
    FOREIGN KEY (skill_id) REFERENCES skills(id)
);

-- Internal training sessions
CREATE TABLE training_sessions (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    location TEXT,
    start_time TIMESTAMP NOT NULL,
    end_time TIMESTAMP NOT NULL,
    tutor_id TEXT,
    ethical_authorization_id TEXT,
    animal_count INTEGER,
    realized INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (tutor_id) REFERENCES users(id)
);

CREATE TABLE session_attendees (
    session_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    PRIMARY KEY (session_id, user_id),
    FOREIGN KEY (session_id) REFERENCES training_sessions(id),
    FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE TABLE session_skills (
    session_id TEXT NOT NULL,
    skill_id TEXT NOT NULL,
    PRIMARY KEY (session_id, skill_id),
    FOREIGN KEY (session_id) REFERENCES training_sessions(id),
    FOREIGN KEY (skill_id) REFERENCES skills(id)
);

-- External trainings and their skill claims
CREATE TABLE external_trainings (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    trainer_name TEXT,
    training_date TIMESTAMP NOT NULL,
    status TEXT NOT NULL CHECK(status IN ('Pending', 'Approved', 'Rejected')),
    validator_id TEXT,
    FOREIGN KEY (user_id) REFERENCES users(id),
    FOREIGN KEY (validator_id) REFERENCES users(id)
);
CREATE INDEX idx_external_trainings_status ON external_trainings(status);

CREATE TABLE external_training_claims (
    training_id TEXT NOT NULL,
    skill_id TEXT NOT NULL,
    level TEXT NOT NULL,
    practice_date TIMESTAMP,
    wants_tutor INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (training_id, skill_id),
    FOREIGN KEY (training_id) REFERENCES external_trainings(id),
    FOREIGN KEY (skill_id) REFERENCES skills(id)
);

CREATE TABLE external_training_claim_contexts (
    training_id TEXT NOT NULL,
    skill_id TEXT NOT NULL,
    context_id TEXT NOT NULL,
    PRIMARY KEY (training_id, skill_id, context_id),
    FOREIGN KEY (training_id, skill_id) REFERENCES external_training_claims(training_id, skill_id),
    FOREIGN KEY (context_id) REFERENCES contexts(id)
);

-- Continuing-education events and attendance
CREATE TABLE training_events (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    event_date TIMESTAMP NOT NULL,
    mode TEXT NOT NULL CHECK(mode IN ('Live', 'Online')),
    duration_hours REAL NOT NULL DEFAULT 0
);

CREATE TABLE training_records (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    event_id TEXT NOT NULL,
    status TEXT NOT NULL CHECK(status IN ('Pending', 'Approved', 'Rejected')),
    validated_hours REAL NOT NULL DEFAULT 0,
    validator_id TEXT,
    UNIQUE (user_id, event_id),
    FOREIGN KEY (user_id) REFERENCES users(id),
    FOREIGN KEY (event_id) REFERENCES training_events(id),
    FOREIGN KEY (validator_id) REFERENCES users(id)
);
CREATE INDEX idx_training_records_user ON training_records(user_id);
`

	_, err := db.Exec(migration)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
