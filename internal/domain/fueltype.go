package domain

import (
	"time"
)

type FuelType struct {
	ID             string           `json:"id" gorm:"primaryKey"`
	OrganizationID string           `json:"organization_id" gorm:"index;uniqueIndex:idx_fuel_types_org_original_name"`
	OriginalName   string           `json:"original_name" gorm:"uniqueIndex:idx_fuel_types_org_original_name"`
	NormalizedName string           `json:"normalized_name"`
	IsValidated    ValidationStatus `json:"is_validated" gorm:"default:pending"`
	ValidationErrors string         `json:"validation_errors,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}
