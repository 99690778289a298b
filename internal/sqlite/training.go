package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ganot/skillkeeper/internal/domain/training"
	"github.com/ganot/skillkeeper/internal/repository"
)

const recordColumns = `
	r.id, r.user_id, r.event_id, e.event_date, e.mode, e.duration_hours,
	r.status, r.validated_hours, r.validator_id`

// TrainingRepository implements persistence for continuing-education
// events and attendance records. Event date, mode and nominal hours
// are denormalized onto records at read time.
type TrainingRepository struct {
	db *DB
}

// NewTrainingRepository creates a new TrainingRepository
func NewTrainingRepository(db *DB) *TrainingRepository {
	return &TrainingRepository{db: db}
}

// CreateEvent inserts a continuing-education event.
func (r *TrainingRepository) CreateEvent(ctx context.Context, event *training.Event) error {
	_, err := r.db.conn(ctx).ExecContext(ctx,
		`INSERT INTO training_events (id, title, event_date, mode, duration_hours) VALUES (?, ?, ?, ?, ?)`,
		event.ID, event.Title, event.Date, event.Mode, event.DurationHours)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// GetEvent retrieves an event by ID.
func (r *TrainingRepository) GetEvent(ctx context.Context, id string) (*training.Event, error) {
	var event training.Event
	err := r.db.conn(ctx).QueryRowContext(ctx,
		`SELECT id, title, event_date, mode, duration_hours FROM training_events WHERE id = ?`, id,
	).Scan(&event.ID, &event.Title, &event.Date, &event.Mode, &event.DurationHours)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &event, nil
}

// GetRecord retrieves an attendance record by ID.
func (r *TrainingRepository) GetRecord(ctx context.Context, id string) (*training.Record, error) {
	row := r.db.conn(ctx).QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM training_records r
		JOIN training_events e ON e.id = r.event_id
		WHERE r.id = ?`, id)
	return scanRecord(row)
}

// FindRecord retrieves the record for (userID, eventID).
func (r *TrainingRepository) FindRecord(ctx context.Context, userID, eventID string) (*training.Record, error) {
	row := r.db.conn(ctx).QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM training_records r
		JOIN training_events e ON e.id = r.event_id
		WHERE r.user_id = ? AND r.event_id = ?`, userID, eventID)
	return scanRecord(row)
}

// CreateRecord inserts an attendance record.
func (r *TrainingRepository) CreateRecord(ctx context.Context, rec *training.Record) error {
	_, err := r.db.conn(ctx).ExecContext(ctx, `
		INSERT INTO training_records (id, user_id, event_id, status, validated_hours, validator_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.EventID, rec.Status, rec.ValidatedHours, rec.ValidatorID)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create record: %w", err)
	}
	return nil
}

// UpdateRecord updates a record's status, hours and validator.
func (r *TrainingRepository) UpdateRecord(ctx context.Context, rec *training.Record) error {
	result, err := r.db.conn(ctx).ExecContext(ctx, `
		UPDATE training_records
		SET status = ?, validated_hours = ?, validator_id = ?
		WHERE id = ?`,
		rec.Status, rec.ValidatedHours, rec.ValidatorID, rec.ID)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
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

// ListRecordsForUser returns the user's records whose event date falls
// on or after since, oldest first.
func (r *TrainingRepository) ListRecordsForUser(ctx context.Context, userID string, since time.Time) ([]training.Record, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM training_records r
		JOIN training_events e ON e.id = r.event_id
		WHERE r.user_id = ? AND e.event_date >= ?
		ORDER BY e.event_date`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []training.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// CountPendingRecords counts attendance records awaiting validation.
func (r *TrainingRepository) CountPendingRecords(ctx context.Context) (int, error) {
	var n int
	err := r.db.conn(ctx).QueryRowContext(ctx,
		`SELECT COUNT(1) FROM training_records WHERE status = ?`,
		training.StatusPending,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*training.Record, error) {
	var rec training.Record
	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.EventID,
		&rec.EventDate,
		&rec.Mode,
		&rec.NominalHours,
		&rec.Status,
		&rec.ValidatedHours,
		&rec.ValidatorID,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan record: %w", err)
	}
	return &rec, nil
}
