package domain

import (
	"time"
)

type GasStation struct {
	ID             string           `json:"id" gorm:"primaryKey"`
	OrganizationID string           `json:"organization_id" gorm:"index;uniqueIndex:idx_gas_stations_org_original_name"`
	OriginalName   string           `json:"original_name" gorm:"uniqueIndex:idx_gas_stations_org_original_name"`
	Name           string           `json:"name"`
	AZSNumber      string           `json:"azs_number"`
	Latitude       *float64         `json:"latitude,omitempty"`
	Longitude      *float64         `json:"longitude,omitempty"`
	Address        string           `json:"address,omitempty"`
	IsValidated    ValidationStatus `json:"is_validated" gorm:"default:pending"`
	ValidationErrors string         `json:"validation_errors,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// HasCoordinates reports whether the station position is known.
func (s *GasStation) HasCoordinates() bool {
	return s.Latitude != nil && s.Longitude != nil
}
