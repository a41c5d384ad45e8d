package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExtendRequest is the payload accepted by the occupancy extend endpoint.
type ExtendRequest struct {
	AdditionalMonths int    `json:"additional_months"`
	Reason           string `json:"reason"`
}

// ExtendResponse reports the outcome of an extension. Error is set whenever
// Success is false.
type ExtendResponse struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message,omitempty"`
	Error      string           `json:"error,omitempty"`
	NewEndDate *time.Time       `json:"new_end_date,omitempty"`
	AmountDue  *decimal.Decimal `json:"amount_due,omitempty"`
}

// CancelRequest is the payload accepted by the occupancy cancel endpoint.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// CancelResponse reports the outcome of a cancellation.
type CancelResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OccupancyStatusView is the read model returned for a property's current
// occupancy. PeriodRevenue is MonthlyRate times MonthsPaid.
type OccupancyStatusView struct {
	Record          OccupancyRecord `json:"record"`
	DaysRemaining   int             `json:"days_remaining"`
	Label           string          `json:"label"`
	EffectiveStatus OccupancyStatus `json:"effective_status"`
	PeriodRevenue   decimal.Decimal `json:"period_revenue"`
}

// ReminderMessage describes an outbound text sent to a tenant.
type ReminderMessage struct {
	To      string `json:"to" binding:"required"`
	Message string `json:"message" binding:"required"`
}
