package occupancy

import (
	"fmt"
	"time"

	"github.com/Xebarter/Leap-sub002/internal/domain/models"
)

// EffectiveStatus infers expiry at read time: a live record whose window has
// passed reads as expired even though the stored status is unchanged.
func EffectiveStatus(rec models.OccupancyRecord, now time.Time) models.OccupancyStatus {
	if rec.Status.Live() && DaysRemaining(rec.EndDate, now) < 0 {
		return models.OccupancyExpired
	}
	return rec.Status
}

// Extend returns rec moved to the extended state with its end date pushed
// forward and the months charged at the record's monthly rate. The first
// extension records the original end date.
func Extend(rec models.OccupancyRecord, months int, reason string, now time.Time) (models.OccupancyRecord, error) {
	if err := ValidateExtension(months); err != nil {
		return rec, err
	}
	if !rec.Status.Live() {
		return rec, fmt.Errorf("%w: status is %s", ErrNotExtendable, rec.Status)
	}
	if !rec.CanExtend {
		return rec, fmt.Errorf("%w: extensions disabled for this occupancy", ErrNotExtendable)
	}

	newEnd, err := ExtendEndDate(rec.EndDate, months)
	if err != nil {
		return rec, err
	}

	amount := TotalRevenueForPeriod(rec.MonthlyRate, months)

	out := cloneRecord(rec)
	if out.OriginalEndDate == nil {
		original := rec.EndDate
		out.OriginalEndDate = &original
	}
	out.EndDate = newEnd
	out.MonthsPaid += months
	out.AmountPaid = rec.AmountPaid.Add(amount)
	out.Status = models.OccupancyExtended
	out.UpdatedAt = now
	out.History = append(out.History, models.OccupancyEvent{
		Kind:        models.OccupancyEventExtended,
		At:          now,
		PreviousEnd: rec.EndDate,
		NewEnd:      newEnd,
		Months:      months,
		Amount:      amount,
		Reason:      reason,
	})
	return out, nil
}

// Cancel ends a live occupancy immediately, regardless of remaining days.
func Cancel(rec models.OccupancyRecord, reason string, now time.Time) (models.OccupancyRecord, error) {
	if !rec.Status.Live() {
		return rec, fmt.Errorf("%w: status is %s", ErrNotCancellable, rec.Status)
	}

	out := cloneRecord(rec)
	cancelledAt := now
	out.Status = models.OccupancyCancelled
	out.CanExtend = false
	out.CancelledAt = &cancelledAt
	out.CancellationReason = reason
	out.UpdatedAt = now
	out.History = append(out.History, models.OccupancyEvent{
		Kind:        models.OccupancyEventCancelled,
		At:          now,
		PreviousEnd: rec.EndDate,
		NewEnd:      rec.EndDate,
		Reason:      reason,
	})
	return out, nil
}

// View builds the read model for rec at now.
func View(rec models.OccupancyRecord, now time.Time) models.OccupancyStatusView {
	days := DaysRemaining(rec.EndDate, now)
	status := EffectiveStatus(rec, now)
	label := StatusLabel(days)
	if status == models.OccupancyCancelled {
		label = LabelExpired
	}
	return models.OccupancyStatusView{
		Record:          rec,
		DaysRemaining:   days,
		Label:           string(label),
		EffectiveStatus: status,
		PeriodRevenue:   TotalRevenueForPeriod(rec.MonthlyRate, rec.MonthsPaid),
	}
}

func cloneRecord(rec models.OccupancyRecord) models.OccupancyRecord {
	out := rec
	out.History = append([]models.OccupancyEvent(nil), rec.History...)
	return out
}
