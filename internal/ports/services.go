package ports

import (
	"context"
	"time"

	"github.com/fleetops/fuelwatch/internal/domain"
)

// VehicleHints carries optional corroborating data observed alongside a raw
// vehicle identifier.
type VehicleHints struct {
	GarageNumber string
	LicensePlate string
}

// StationHints carries optional corroborating data for a gas-station string.
type StationHints struct {
	Latitude  *float64
	Longitude *float64
	Address   string
}

// ResolverService maps raw identifier strings onto canonical dictionary rows,
// creating rows only when nothing plausibly matches. Ambiguity comes back as
// warnings, never as errors.
type ResolverService interface {
	ResolveVehicle(ctx context.Context, orgID, raw string, hints VehicleHints) (*domain.Vehicle, []domain.ResolutionWarning, error)
	ResolveCard(ctx context.Context, orgID, raw string) (*domain.FuelCard, []domain.ResolutionWarning, error)
	ResolveGasStation(ctx context.Context, orgID, raw string, hints StationHints) (*domain.GasStation, []domain.ResolutionWarning, error)
	ResolveFuelType(ctx context.Context, orgID, raw string) (*domain.FuelType, []domain.ResolutionWarning, error)
	// MergeVehicles folds source into target: references are rewritten,
	// display fields backfilled, the source row deleted. Idempotent.
	MergeVehicles(ctx context.Context, sourceID, targetID string) (*domain.Vehicle, error)
}

// AssignmentResult reports the outcome of an assignment attempt together with
// whatever blocked it.
type AssignmentResult struct {
	OK        bool                        `json:"ok"`
	Message   string                      `json:"message"`
	Conflicts []domain.AssignmentConflict `json:"conflicts,omitempty"`
}

// AssignmentService owns the card-to-vehicle attachment state machine.
type AssignmentService interface {
	AssignCard(ctx context.Context, cardID, vehicleID string, start time.Time, end *time.Time, checkOverlap bool) (*AssignmentResult, error)
	UnassignCard(ctx context.Context, cardID string) (*AssignmentResult, error)
	AssignmentHistory(ctx context.Context, cardID string) ([]domain.CardAssignment, error)
}

// AnalysisService correlates purchase transactions with vehicle telemetry.
type AnalysisService interface {
	AnalyzeTransaction(ctx context.Context, txID string, params *domain.AnalysisParams) (*domain.AnalysisResult, error)
	AnalyzePeriod(ctx context.Context, from, to time.Time, filter domain.PeriodFilter, params *domain.AnalysisParams) (*domain.PeriodSummary, error)
	AnomalyStats(ctx context.Context, from, to *time.Time, anomalyType *domain.AnomalyType) (*domain.AnomalyStats, error)
}
