package domain

import (
	"time"
)

type MatchStatus string

const (
	MatchStatusMatched          MatchStatus = "matched"
	MatchStatusNoRefuel         MatchStatus = "no_refuel"
	MatchStatusTimeMismatch     MatchStatus = "time_mismatch"
	MatchStatusQuantityMismatch MatchStatus = "quantity_mismatch"
	MatchStatusLocationMismatch MatchStatus = "location_mismatch"
	MatchStatusMultipleMatches  MatchStatus = "multiple_matches"
)

type AnomalyType string

const (
	AnomalyFuelTheft        AnomalyType = "fuel_theft"
	AnomalyCardMisuse       AnomalyType = "card_misuse"
	AnomalyDataError        AnomalyType = "data_error"
	AnomalyEquipmentFailure AnomalyType = "equipment_failure"
)

// AnalysisResult is the outcome of correlating one purchase transaction with
// vehicle telemetry. Re-running analysis overwrites the row keyed by
// TransactionID.
type AnalysisResult struct {
	ID              string       `json:"id" gorm:"primaryKey"`
	TransactionID   string       `json:"transaction_id" gorm:"uniqueIndex"`
	RefuelID        *string      `json:"refuel_id,omitempty"`
	MatchStatus     MatchStatus  `json:"match_status"`
	MatchConfidence float64      `json:"match_confidence"`
	DistanceToAZS   *float64     `json:"distance_to_azs,omitempty"`   // meters
	TimeDifference  *float64     `json:"time_difference,omitempty"`   // seconds
	QuantityDiff    *float64     `json:"quantity_difference,omitempty"` // liters
	IsAnomaly       bool         `json:"is_anomaly"`
	AnomalyType     *AnomalyType `json:"anomaly_type,omitempty"`
	AnalyzedAt      time.Time    `json:"analyzed_at"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// AnalysisParams are the tunables of a correlation run.
type AnalysisParams struct {
	TimeWindowMinutes        int     `json:"time_window_minutes"`
	QuantityTolerancePercent float64 `json:"quantity_tolerance_percent"`
	AZSRadiusMeters          float64 `json:"azs_radius_meters"`
	// LargePurchaseFloorLiters splits fuel_theft from data_error when no
	// refuel was recorded at all.
	LargePurchaseFloorLiters float64 `json:"large_purchase_floor_liters"`
}

// DefaultAnalysisParams returns the documented defaults.
func DefaultAnalysisParams() AnalysisParams {
	return AnalysisParams{
		TimeWindowMinutes:        30,
		QuantityTolerancePercent: 5,
		AZSRadiusMeters:          500,
		LargePurchaseFloorLiters: 100,
	}
}

// PeriodFilter restricts a bulk analysis run.
type PeriodFilter struct {
	CardIDs         []string `json:"card_ids,omitempty"`
	VehicleIDs      []string `json:"vehicle_ids,omitempty"`
	OrganizationIDs []string `json:"organization_ids,omitempty"`
}

// PeriodSummary aggregates a bulk run.
type PeriodSummary struct {
	Analyzed  int                 `json:"analyzed"`
	Matched   int                 `json:"matched"`
	Anomalies int                 `json:"anomalies"`
	Errors    int                 `json:"errors"`
	ByStatus  map[MatchStatus]int `json:"by_status"`
	ByAnomaly map[AnomalyType]int `json:"by_anomaly_type"`
}

// AnomalyStats summarizes stored analysis results.
type AnomalyStats struct {
	TotalAnomalies int                 `json:"total_anomalies"`
	ByType         map[AnomalyType]int `json:"by_type"`
	ByStatus       map[MatchStatus]int `json:"by_status"`
}
