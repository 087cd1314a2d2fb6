package domain

import (
	"time"
)

// FuelTransaction is an ingested purchase record. Rows are immutable once
// written; the analysis engine only ever reads them.
type FuelTransaction struct {
	ID              string    `json:"id" gorm:"primaryKey"`
	OrganizationID  string    `json:"organization_id" gorm:"index"`
	TransactionDate time.Time `json:"transaction_date" gorm:"index"`
	Quantity        float64   `json:"quantity"` // liters
	Price           float64   `json:"price,omitempty"`
	Total           float64   `json:"total,omitempty"`
	CardNumber      string    `json:"card_number"`
	CardID          *string   `json:"card_id,omitempty" gorm:"index"`
	VehicleID       *string   `json:"vehicle_id,omitempty" gorm:"index"`
	GasStationID    *string   `json:"gas_station_id,omitempty" gorm:"index"`
	FuelTypeID      *string   `json:"fuel_type_id,omitempty"`
	Product         string    `json:"product"`
	SourceSystem    string    `json:"source_system,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
