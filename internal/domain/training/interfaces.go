package training

import (
	"context"
	"time"
)

// TrainingRepository provides persistence for continuing-education
// events and attendance records.
type TrainingRepository interface {
	GetEvent(ctx context.Context, id string) (*Event, error)
	GetRecord(ctx context.Context, id string) (*Record, error)
	// FindRecord returns the record for (userID, eventID), or
	// repository.ErrNotFound.
	FindRecord(ctx context.Context, userID, eventID string) (*Record, error)
	CreateRecord(ctx context.Context, rec *Record) error
	UpdateRecord(ctx context.Context, rec *Record) error
	// ListRecordsForUser returns records whose event date falls on or
	// after since.
	ListRecordsForUser(ctx context.Context, userID string, since time.Time) ([]Record, error)
}
