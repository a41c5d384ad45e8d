// Package occupancy implements the date arithmetic and lifecycle rules for
// a tenant's paid occupancy window.
package occupancy

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DaysPerMonth is the fixed month length used for extensions. Calendar
	// months are deliberately not used.
	DaysPerMonth = 30

	MinExtensionMonths = 1
	MaxExtensionMonths = 12

	criticalDays = 7
	soonDays     = 30

	day = 24 * time.Hour
)

// Label buckets remaining days for display.
type Label string

const (
	LabelExpired          Label = "Expired"
	LabelExpiringCritical Label = "ExpiringCritical"
	LabelExpiringSoon     Label = "ExpiringSoon"
	LabelActive           Label = "Active"
)

var (
	ErrInvalidExtension = fmt.Errorf("additional months must be between %d and %d", MinExtensionMonths, MaxExtensionMonths)
	ErrNotExtendable    = errors.New("occupancy cannot be extended")
	ErrNotCancellable   = errors.New("occupancy cannot be cancelled")
)

// DaysRemaining returns ceil((end-now)/1 day). The result is negative once
// the window has passed.
func DaysRemaining(end, now time.Time) int {
	d := end.Sub(now)
	q := d / day
	if d%day > 0 {
		q++
	}
	return int(q)
}

// StatusLabel classifies remaining days. Bucket upper edges are inclusive.
func StatusLabel(days int) Label {
	switch {
	case days < 0:
		return LabelExpired
	case days <= criticalDays:
		return LabelExpiringCritical
	case days <= soonDays:
		return LabelExpiringSoon
	default:
		return LabelActive
	}
}

// ValidateExtension checks that months is an accepted extension length.
func ValidateExtension(months int) error {
	if months < MinExtensionMonths || months > MaxExtensionMonths {
		return ErrInvalidExtension
	}
	return nil
}

// ExtendEndDate moves end forward by months fixed 30-day months.
func ExtendEndDate(end time.Time, months int) (time.Time, error) {
	if err := ValidateExtension(months); err != nil {
		return time.Time{}, err
	}
	return end.AddDate(0, 0, months*DaysPerMonth), nil
}

// TotalRevenueForPeriod is pricePerMonth * monthsPaid with no proration.
func TotalRevenueForPeriod(pricePerMonth decimal.Decimal, monthsPaid int) decimal.Decimal {
	return pricePerMonth.Mul(decimal.NewFromInt(int64(monthsPaid)))
}
