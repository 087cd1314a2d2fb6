package domain

import (
	"time"
)

type ValidationStatus string

const (
	ValidationStatusPending ValidationStatus = "pending"
	ValidationStatusValid   ValidationStatus = "valid"
	ValidationStatusInvalid ValidationStatus = "invalid"
)

// DictionaryType names the reference tables maintained by the resolver.
type DictionaryType string

const (
	DictionaryVehicle    DictionaryType = "vehicle"
	DictionaryFuelCard   DictionaryType = "fuel_card"
	DictionaryGasStation DictionaryType = "gas_station"
	DictionaryFuelType   DictionaryType = "fuel_type"
)

type Vehicle struct {
	ID             string `json:"id" gorm:"primaryKey"`
	OrganizationID string `json:"organization_id" gorm:"index;uniqueIndex:idx_vehicles_org_original_name"`
	// OriginalName is write-once: the raw identifier as first observed.
	OriginalName     string           `json:"original_name" gorm:"uniqueIndex:idx_vehicles_org_original_name"`
	Name             string           `json:"name"`
	GarageNumber     string           `json:"garage_number"`
	LicensePlate     string           `json:"license_plate"`
	IsValidated      ValidationStatus `json:"is_validated" gorm:"default:pending"`
	ValidationErrors string           `json:"validation_errors,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}
