package training

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ganot/skillkeeper/internal/repository"
)

// Service tracks continuing-education attendance and evaluates
// regulatory compliance over the rolling window.
type Service struct {
	repo       TrainingRepository
	thresholds Thresholds
	logger     *slog.Logger
}

// NewService creates a new continuous-training service.
func NewService(repo TrainingRepository, thresholds Thresholds, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       repo,
		thresholds: thresholds.withDefaults(),
		logger:     logger,
	}
}

// Submit records a pending attendance of an event. Resubmitting the
// same (user, event) pair returns the existing record; the bool result
// reports whether a new record was created.
func (s *Service) Submit(ctx context.Context, userID, eventID string) (*Record, bool, error) {
	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, ErrEventNotFound
		}
		return nil, false, fmt.Errorf("loading event: %w", err)
	}

	existing, err := s.repo.FindRecord(ctx, userID, eventID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, fmt.Errorf("checking existing record: %w", err)
	}

	rec := &Record{
		ID:           uuid.NewString(),
		UserID:       userID,
		EventID:      event.ID,
		EventDate:    event.Date,
		Mode:         event.Mode,
		NominalHours: event.DurationHours,
		Status:       StatusPending,
	}
	if err := s.repo.CreateRecord(ctx, rec); err != nil {
		return nil, false, fmt.Errorf("creating record: %w", err)
	}
	return rec, true, nil
}

// Approve validates a pending attendance record. The validated hour
// count defaults to the event's nominal duration when nil. Approving a
// decided record is refused.
func (s *Service) Approve(ctx context.Context, recordID, validatorID string, hours *float64) (*Record, error) {
	rec, err := s.repo.GetRecord(ctx, recordID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("loading record: %w", err)
	}
	if rec.Status.Terminal() {
		return nil, ErrAlreadyDecided
	}

	validated := rec.NominalHours
	if hours != nil {
		if *hours < 0 {
			return nil, ErrInvalidHours
		}
		validated = *hours
	}

	updated := *rec
	updated.Status = StatusApproved
	updated.ValidatedHours = validated
	updated.ValidatorID = &validatorID
	if err := s.repo.UpdateRecord(ctx, &updated); err != nil {
		return nil, fmt.Errorf("approving record: %w", err)
	}
	s.logger.Info("training record approved",
		"record", rec.ID, "user", rec.UserID, "hours", validated)
	return &updated, nil
}

// Reject refuses a pending attendance record.
func (s *Service) Reject(ctx context.Context, recordID, validatorID string) (*Record, error) {
	rec, err := s.repo.GetRecord(ctx, recordID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("loading record: %w", err)
	}
	if rec.Status.Terminal() {
		return nil, ErrAlreadyDecided
	}

	updated := *rec
	updated.Status = StatusRejected
	updated.ValidatorID = &validatorID
	if err := s.repo.UpdateRecord(ctx, &updated); err != nil {
		return nil, fmt.Errorf("rejecting record: %w", err)
	}
	return &updated, nil
}

// Snapshot evaluates a user's compliance as of the given instant.
// Approved hours are summed over [asOf - WindowYears*365.25d, asOf);
// the at-risk heuristic uses its own shorter trailing window. The
// yearly summary buckets the same span by calendar year of the event
// date.
func (s *Service) Snapshot(ctx context.Context, userID string, asOf time.Time) (*ComplianceSnapshot, error) {
	windowStart := yearsBack(asOf, s.thresholds.WindowYears)
	firstYear := asOf.Year() - (s.thresholds.WindowYears - 1)
	yearSpanStart := time.Date(firstYear, time.January, 1, 0, 0, 0, 0, time.UTC)

	since := windowStart
	if yearSpanStart.Before(since) {
		since = yearSpanStart
	}
	records, err := s.repo.ListRecordsForUser(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}

	snap := &ComplianceSnapshot{
		RequiredHours: s.thresholds.RequiredDays * s.thresholds.HoursPerDay,
	}

	atRiskStart := yearsBack(asOf, s.thresholds.AtRiskWindowYears)
	var atRiskHours float64

	byYear := make(map[int]*YearSummary)
	for year := firstYear; year <= asOf.Year(); year++ {
		byYear[year] = &YearSummary{Year: year}
	}

	for _, rec := range records {
		inWindow := !rec.EventDate.Before(windowStart) && rec.EventDate.Before(asOf)

		if rec.Status == StatusApproved && inWindow {
			switch rec.Mode {
			case ModeLive:
				snap.LiveHours += rec.ValidatedHours
			case ModeOnline:
				snap.OnlineHours += rec.ValidatedHours
			}
			if !rec.EventDate.Before(atRiskStart) {
				atRiskHours += rec.ValidatedHours
			}
		}

		if summary, ok := byYear[rec.EventDate.Year()]; ok {
			switch rec.Status {
			case StatusApproved:
				if rec.Mode == ModeLive {
					summary.LiveHours += rec.ValidatedHours
				} else {
					summary.OnlineHours += rec.ValidatedHours
				}
			case StatusPending:
				summary.PendingHours += rec.NominalHours
			}
		}
	}

	snap.TotalHours = snap.LiveHours + snap.OnlineHours
	snap.IsCompliant = snap.TotalHours >= snap.RequiredHours
	if snap.TotalHours > 0 {
		snap.LiveRatio = snap.LiveHours / snap.TotalHours
		snap.IsLiveRatioCompliant = snap.LiveRatio >= s.thresholds.MinLiveRatio
	} else {
		// No training yet cannot fail the ratio test.
		snap.IsLiveRatioCompliant = true
	}
	snap.IsAtRiskNextYear = atRiskHours < s.thresholds.AtRiskDays*s.thresholds.HoursPerDay

	for year := firstYear; year <= asOf.Year(); year++ {
		snap.Yearly = append(snap.Yearly, *byYear[year])
	}
	return snap, nil
}
