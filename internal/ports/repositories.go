package ports

import (
	"context"
	"time"

	"github.com/fleetops/fuelwatch/internal/domain"
)

// VehicleRepository persists canonical vehicles. ScanBatch pages the
// reference table in stable creation order so repeated scans visit
// candidates deterministically.
type VehicleRepository interface {
	Create(ctx context.Context, v *domain.Vehicle) error
	Save(ctx context.Context, v *domain.Vehicle) error
	FindByID(ctx context.Context, id string) (*domain.Vehicle, error)
	FindByOriginalName(ctx context.Context, orgID, name string) (*domain.Vehicle, error)
	ScanBatch(ctx context.Context, orgID string, offset, limit int) ([]domain.Vehicle, error)
	List(ctx context.Context, orgID string, status *domain.ValidationStatus, limit, offset int) ([]domain.Vehicle, error)
	// MergeInto rewrites every reference to source (transactions, fuel
	// cards) onto target, persists target and deletes source, all in one
	// database transaction.
	MergeInto(ctx context.Context, source, target *domain.Vehicle) error
}

type FuelCardRepository interface {
	Create(ctx context.Context, c *domain.FuelCard) error
	Save(ctx context.Context, c *domain.FuelCard) error
	FindByID(ctx context.Context, id string) (*domain.FuelCard, error)
	ScanBatch(ctx context.Context, orgID string, offset, limit int) ([]domain.FuelCard, error)
	ListAssignments(ctx context.Context, cardID string) ([]domain.CardAssignment, error)
	ActiveAssignments(ctx context.Context, cardID string) ([]domain.CardAssignment, error)
	// SwitchAssignment deactivates every active assignment of the card,
	// inserts the new period and updates the card's denormalized view as a
	// single transaction. Never partially applied.
	SwitchAssignment(ctx context.Context, card *domain.FuelCard, assignment *domain.CardAssignment) error
	CloseActiveAssignment(ctx context.Context, card *domain.FuelCard, at time.Time) error
}

type GasStationRepository interface {
	Create(ctx context.Context, s *domain.GasStation) error
	Save(ctx context.Context, s *domain.GasStation) error
	FindByID(ctx context.Context, id string) (*domain.GasStation, error)
	FindByOriginalName(ctx context.Context, orgID, name string) (*domain.GasStation, error)
	ScanBatch(ctx context.Context, orgID string, offset, limit int) ([]domain.GasStation, error)
}

type FuelTypeRepository interface {
	Create(ctx context.Context, f *domain.FuelType) error
	Save(ctx context.Context, f *domain.FuelType) error
	FindByID(ctx context.Context, id string) (*domain.FuelType, error)
	FindByOriginalName(ctx context.Context, orgID, name string) (*domain.FuelType, error)
	ScanBatch(ctx context.Context, orgID string, offset, limit int) ([]domain.FuelType, error)
}

type TransactionRepository interface {
	Save(ctx context.Context, tx *domain.FuelTransaction) error
	FindByID(ctx context.Context, id string) (*domain.FuelTransaction, error)
	FindForPeriod(ctx context.Context, from, to time.Time, filter domain.PeriodFilter) ([]domain.FuelTransaction, error)
}

type TelemetryRepository interface {
	SaveRefuel(ctx context.Context, r *domain.VehicleRefuel) error
	SaveLocation(ctx context.Context, l *domain.VehicleLocation) error
	RefuelsInWindow(ctx context.Context, vehicleID string, from, to time.Time) ([]domain.VehicleRefuel, error)
	// NearestLocation returns the GPS sample closest in time to at, or nil
	// when the vehicle has no samples.
	NearestLocation(ctx context.Context, vehicleID string, at time.Time) (*domain.VehicleLocation, error)
}

type AnalysisRepository interface {
	// Upsert overwrites any previous result for the same transaction.
	Upsert(ctx context.Context, res *domain.AnalysisResult) error
	FindByTransactionID(ctx context.Context, txID string) (*domain.AnalysisResult, error)
	Stats(ctx context.Context, from, to *time.Time, anomalyType *domain.AnomalyType) (*domain.AnomalyStats, error)
}

type NormalizationProfileRepository interface {
	FindByType(ctx context.Context, dict domain.DictionaryType) (*domain.NormalizationProfile, error)
	Save(ctx context.Context, p *domain.NormalizationProfile) error
}
