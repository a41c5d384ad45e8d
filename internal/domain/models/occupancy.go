package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OccupancyStatus is the stored lifecycle state of an occupancy record.
type OccupancyStatus string

const (
	OccupancyActive    OccupancyStatus = "active"
	OccupancyExtended  OccupancyStatus = "extended"
	OccupancyExpired   OccupancyStatus = "expired"
	OccupancyCancelled OccupancyStatus = "cancelled"
)

// Live reports whether the status still grants the tenant access to the unit.
func (s OccupancyStatus) Live() bool {
	return s == OccupancyActive || s == OccupancyExtended
}

// OccupancyEventKind labels an entry of the occupancy history.
type OccupancyEventKind string

const (
	OccupancyEventExtended  OccupancyEventKind = "extended"
	OccupancyEventCancelled OccupancyEventKind = "cancelled"
)

// OccupancyEvent is an audit entry appended on every extend or cancel.
type OccupancyEvent struct {
	Kind        OccupancyEventKind `bson:"kind" json:"kind"`
	At          time.Time          `bson:"at" json:"at"`
	PreviousEnd time.Time          `bson:"previous_end" json:"previous_end"`
	NewEnd      time.Time          `bson:"new_end" json:"new_end"`
	Months      int                `bson:"months,omitempty" json:"months,omitempty"`
	Amount      decimal.Decimal    `bson:"amount" json:"amount"`
	Reason      string             `bson:"reason,omitempty" json:"reason,omitempty"`
}

// OccupancyRecord tracks a tenant's paid window on a property. EndDate is
// authoritative for remaining time; MonthsPaid is kept for audit only.
// MonthlyRate is the template price agreed at booking and AmountPaid the
// running total charged for the window, both in UGX.
type OccupancyRecord struct {
	ID                 string           `bson:"_id" json:"id"`
	PropertyID         string           `bson:"property_id" json:"property_id"`
	TenantID           string           `bson:"tenant_id" json:"tenant_id"`
	TenantPhone        string           `bson:"tenant_phone,omitempty" json:"tenant_phone,omitempty"`
	StartDate          time.Time        `bson:"start_date" json:"start_date"`
	EndDate            time.Time        `bson:"end_date" json:"end_date"`
	OriginalEndDate    *time.Time       `bson:"original_end_date,omitempty" json:"original_end_date,omitempty"`
	MonthsPaid         int              `bson:"months_paid" json:"months_paid"`
	MonthlyRate        decimal.Decimal  `bson:"monthly_rate" json:"monthly_rate"`
	AmountPaid         decimal.Decimal  `bson:"amount_paid" json:"amount_paid"`
	Status             OccupancyStatus  `bson:"status" json:"status"`
	CanExtend          bool             `bson:"can_extend" json:"can_extend"`
	CancelledAt        *time.Time       `bson:"cancelled_at,omitempty" json:"cancelled_at,omitempty"`
	CancellationReason string           `bson:"cancellation_reason,omitempty" json:"cancellation_reason,omitempty"`
	History            []OccupancyEvent `bson:"history,omitempty" json:"history,omitempty"`
	UpdatedAt          time.Time        `bson:"updated_at" json:"updated_at"`
}
