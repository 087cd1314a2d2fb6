package domain

import (
	"time"
)

// VehicleRefuel is an independent tank-refuel event reported by onboard
// telemetry. Append-only.
type VehicleRefuel struct {
	ID              string     `json:"id" gorm:"primaryKey"`
	VehicleID       string     `json:"vehicle_id" gorm:"index:idx_vehicle_refuels_vehicle_date"`
	RefuelDate      time.Time  `json:"refuel_date" gorm:"index:idx_vehicle_refuels_vehicle_date"`
	Quantity        float64    `json:"quantity"` // liters
	FuelLevelBefore *float64   `json:"fuel_level_before,omitempty"`
	FuelLevelAfter  *float64   `json:"fuel_level_after,omitempty"`
	OdometerReading *float64   `json:"odometer_reading,omitempty"`
	Latitude        *float64   `json:"latitude,omitempty"`
	Longitude       *float64   `json:"longitude,omitempty"`
	Accuracy        *float64   `json:"accuracy,omitempty"` // meters
	SourceSystem    string     `json:"source_system"`
	CreatedAt       time.Time  `json:"created_at"`
}

// HasCoordinates reports whether the refuel carries its own fix.
func (r *VehicleRefuel) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// VehicleLocation is a single GPS sample. Append-only, high volume.
type VehicleLocation struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	VehicleID string    `json:"vehicle_id" gorm:"index:idx_vehicle_locations_vehicle_ts"`
	Timestamp time.Time `json:"timestamp" gorm:"index:idx_vehicle_locations_vehicle_ts"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"` // meters
	CreatedAt time.Time `json:"created_at"`
}
