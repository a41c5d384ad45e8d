package occupancy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Xebarter/Leap-sub002/internal/domain/models"
	domain "github.com/Xebarter/Leap-sub002/internal/domain/occupancy"
	repo "github.com/Xebarter/Leap-sub002/internal/repository/mongodb"
	"github.com/Xebarter/Leap-sub002/internal/repository/sheets"
	"github.com/Xebarter/Leap-sub002/internal/service/notify"
)

const dateLayout = "2 Jan 2006"

// reminderDays are the remaining-day counts on which tenants get a reminder.
var reminderDays = map[int]bool{30: true, 7: true, 1: true}

// SweepResult summarizes one pass of the expiry sweep.
type SweepResult struct {
	Scanned  int
	Reminded int
	Failed   int
	Expired  int
}

// Service coordinates occupancy lifecycle changes with persistence, the
// ledger export and tenant notifications.
type Service struct {
	repo     repo.OccupancyRepository
	ledger   sheets.Ledger
	notifier notify.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a new occupancy service instance.
func NewService(repository repo.OccupancyRepository, ledger sheets.Ledger, notifier notify.Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ledger == nil {
		ledger = sheets.NopLedger{}
	}
	if notifier == nil {
		notifier = notify.NewLogNotifier(logger)
	}
	return &Service{
		repo:     repository,
		ledger:   ledger,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Status returns the current occupancy of a property with its derived countdown.
func (s *Service) Status(ctx context.Context, propertyID string) (models.OccupancyStatusView, error) {
	rec, err := s.repo.FindCurrentOccupancy(ctx, propertyID)
	if err != nil {
		return models.OccupancyStatusView{}, fmt.Errorf("find occupancy for %s: %w", propertyID, err)
	}
	return domain.View(rec, s.now()), nil
}

// History lists every occupancy of a property, newest first.
func (s *Service) History(ctx context.Context, propertyID string) ([]models.OccupancyRecord, error) {
	records, err := s.repo.ListOccupancies(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("list occupancies for %s: %w", propertyID, err)
	}
	return records, nil
}

// Extend pushes the end date of the property's live occupancy forward.
// Rule violations are reported in the response; the returned error is only
// set for lookup and storage failures.
func (s *Service) Extend(ctx context.Context, propertyID string, req models.ExtendRequest) (models.ExtendResponse, error) {
	if err := domain.ValidateExtension(req.AdditionalMonths); err != nil {
		return models.ExtendResponse{Success: false, Error: err.Error()}, nil
	}

	rec, err := s.repo.FindCurrentOccupancy(ctx, propertyID)
	if err != nil {
		return models.ExtendResponse{}, fmt.Errorf("find occupancy for %s: %w", propertyID, err)
	}

	now := s.now()
	updated, err := domain.Extend(rec, req.AdditionalMonths, req.Reason, now)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidExtension) || errors.Is(err, domain.ErrNotExtendable) {
			return models.ExtendResponse{Success: false, Error: err.Error()}, nil
		}
		return models.ExtendResponse{}, err
	}

	if err := s.repo.SaveOccupancy(ctx, updated); err != nil {
		return models.ExtendResponse{}, fmt.Errorf("save occupancy %s: %w", rec.ID, err)
	}
	s.appendLedger(ctx, updated)

	s.logger.Info("occupancy extended",
		zap.String("occupancy_id", updated.ID),
		zap.String("property_id", propertyID),
		zap.Int("months", req.AdditionalMonths),
		zap.String("amount_paid", updated.AmountPaid.String()),
		zap.Time("new_end_date", updated.EndDate))

	newEnd := updated.EndDate
	due := updated.History[len(updated.History)-1].Amount
	return models.ExtendResponse{
		Success:    true,
		Message:    fmt.Sprintf("Occupancy extended by %d month(s) until %s", req.AdditionalMonths, newEnd.Format(dateLayout)),
		NewEndDate: &newEnd,
		AmountDue:  &due,
	}, nil
}

// Cancel ends the property's live occupancy now and frees the unit.
func (s *Service) Cancel(ctx context.Context, propertyID string, req models.CancelRequest) (models.CancelResponse, error) {
	rec, err := s.repo.FindCurrentOccupancy(ctx, propertyID)
	if err != nil {
		return models.CancelResponse{}, fmt.Errorf("find occupancy for %s: %w", propertyID, err)
	}

	updated, err := domain.Cancel(rec, req.Reason, s.now())
	if err != nil {
		if errors.Is(err, domain.ErrNotCancellable) {
			return models.CancelResponse{Success: false, Error: err.Error()}, nil
		}
		return models.CancelResponse{}, err
	}

	// Release before saving: a failed release must leave the occupancy live.
	switch err := s.repo.SetUnitAvailability(ctx, propertyID, true); {
	case errors.Is(err, repo.ErrNotFound):
		s.logger.Warn("cancelled occupancy has no configured unit", zap.String("property_id", propertyID))
	case err != nil:
		return models.CancelResponse{}, fmt.Errorf("release unit %s: %w", propertyID, err)
	}

	if err := s.repo.SaveOccupancy(ctx, updated); err != nil {
		return models.CancelResponse{}, fmt.Errorf("save occupancy %s: %w", rec.ID, err)
	}

	s.appendLedger(ctx, updated)

	if updated.TenantPhone != "" {
		msg := models.ReminderMessage{
			To:      updated.TenantPhone,
			Message: fmt.Sprintf("Your occupancy of unit %s has been cancelled.", propertyID),
		}
		if err := s.notifier.SendOutbound(ctx, msg); err != nil {
			s.logger.Warn("failed to notify tenant of cancellation", zap.String("occupancy_id", updated.ID), zap.Error(err))
		}
	}

	s.logger.Info("occupancy cancelled", zap.String("occupancy_id", updated.ID), zap.String("property_id", propertyID))
	return models.CancelResponse{Success: true, Message: "Occupancy cancelled"}, nil
}

// SweepExpiring reminds tenants whose occupancy ends in exactly 30, 7 or 1
// days and counts live records that have already run out.
func (s *Service) SweepExpiring(ctx context.Context) (SweepResult, error) {
	records, err := s.repo.ListLiveOccupancies(ctx)
	if err != nil {
		return SweepResult{}, fmt.Errorf("list live occupancies: %w", err)
	}

	now := s.now()
	var result SweepResult
	for _, rec := range records {
		result.Scanned++
		if domain.EffectiveStatus(rec, now) == models.OccupancyExpired {
			result.Expired++
			continue
		}

		days := domain.DaysRemaining(rec.EndDate, now)
		if !reminderDays[days] {
			continue
		}
		if err := s.notifier.RemindExpiring(ctx, rec, days); err != nil {
			result.Failed++
			s.logger.Warn("failed to send expiry reminder",
				zap.String("occupancy_id", rec.ID),
				zap.Int("days_remaining", days),
				zap.Error(err))
			continue
		}
		result.Reminded++
	}

	s.logger.Info("occupancy sweep complete",
		zap.Int("scanned", result.Scanned),
		zap.Int("reminded", result.Reminded),
		zap.Int("failed", result.Failed),
		zap.Int("expired", result.Expired))
	return result, nil
}

// appendLedger exports the latest history event. Export failures are logged
// and never undo the stored change.
func (s *Service) appendLedger(ctx context.Context, rec models.OccupancyRecord) {
	if len(rec.History) == 0 {
		return
	}
	event := rec.History[len(rec.History)-1]
	if err := s.ledger.AppendOccupancyEvent(ctx, rec, event); err != nil {
		s.logger.Warn("failed to append occupancy ledger row",
			zap.String("occupancy_id", rec.ID),
			zap.String("kind", string(event.Kind)),
			zap.Error(err))
	}
}
