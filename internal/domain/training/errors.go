package training

import "errors"

var (
	// ErrEventNotFound indicates the continuing-education event doesn't exist.
	ErrEventNotFound = errors.New("training event not found")
	// ErrRecordNotFound indicates the attendance record doesn't exist.
	ErrRecordNotFound = errors.New("training record not found")
	// ErrAlreadyDecided indicates the record status is terminal.
	ErrAlreadyDecided = errors.New("training record already decided")
	// ErrInvalidHours indicates a negative validated hour count.
	ErrInvalidHours = errors.New("invalid validated hours")
)
