package domain

import (
	"time"
)

type FuelCard struct {
	ID             string `json:"id" gorm:"primaryKey"`
	OrganizationID string `json:"organization_id" gorm:"index;uniqueIndex:idx_fuel_cards_org_number"`
	// CardNumber is stored as first observed; comparisons always go through
	// normalize.CardNumber on both sides.
	CardNumber string `json:"card_number" gorm:"uniqueIndex:idx_fuel_cards_org_number"`

	// Denormalized view of the currently active assignment, if any.
	VehicleID           *string    `json:"vehicle_id,omitempty" gorm:"index"`
	AssignmentStartDate *time.Time `json:"assignment_start_date,omitempty"`
	AssignmentEndDate   *time.Time `json:"assignment_end_date,omitempty"`
	IsActiveAssignment  bool       `json:"is_active_assignment"`

	IsValidated      ValidationStatus `json:"is_validated" gorm:"default:pending"`
	ValidationErrors string           `json:"validation_errors,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// CardAssignment is one historical attachment period of a card to a vehicle.
// For a given card at most one row is active at any instant.
type CardAssignment struct {
	ID        string     `json:"id" gorm:"primaryKey"`
	CardID    string     `json:"card_id" gorm:"index"`
	VehicleID string     `json:"vehicle_id" gorm:"index"`
	StartDate time.Time  `json:"assignment_start_date"`
	EndDate   *time.Time `json:"assignment_end_date,omitempty"` // nil = open-ended
	IsActive  bool       `json:"is_active_assignment"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// openEndSentinel bounds open-ended assignments for interval arithmetic only;
// the stored column stays NULL.
var openEndSentinel = time.Date(2099, 12, 31, 23, 59, 59, 0, time.UTC)

// EffectiveEnd returns the end of the period, substituting the sentinel for
// open-ended assignments.
func (a CardAssignment) EffectiveEnd() time.Time {
	if a.EndDate == nil {
		return openEndSentinel
	}
	return *a.EndDate
}

// Overlaps reports whether [a.Start, a.End] intersects [start, end],
// containment in either direction included.
func (a CardAssignment) Overlaps(start, end time.Time) bool {
	return !a.StartDate.After(end) && !start.After(a.EffectiveEnd())
}

// AssignmentConflict describes an existing assignment that blocks a new one.
type AssignmentConflict struct {
	AssignmentID string     `json:"assignment_id"`
	VehicleID    string     `json:"vehicle_id"`
	VehicleName  string     `json:"vehicle_name"`
	StartDate    time.Time  `json:"assignment_start_date"`
	EndDate      *time.Time `json:"assignment_end_date,omitempty"`
}
