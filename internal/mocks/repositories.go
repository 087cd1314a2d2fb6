package mocks

import (
	"context"
	"time"

	"github.com/fleetops/fuelwatch/internal/domain"
)

// MockVehicleRepository is a mock implementation of VehicleRepository
type MockVehicleRepository struct {
	CreateFunc             func(ctx context.Context, v *domain.Vehicle) error
	SaveFunc               func(ctx context.Context, v *domain.Vehicle) error
	FindByIDFunc           func(ctx context.Context, id string) (*domain.Vehicle, error)
	FindByOriginalNameFunc func(ctx context.Context, orgID, name string) (*domain.Vehicle, error)
	ScanBatchFunc          func(ctx context.Context, orgID string, offset, limit int) ([]domain.Vehicle, error)
	ListFunc               func(ctx context.Context, orgID string, status *domain.ValidationStatus, limit, offset int) ([]domain.Vehicle, error)
	MergeIntoFunc          func(ctx context.Context, source, target *domain.Vehicle) error
}

func (m *MockVehicleRepository) Create(ctx context.Context, v *domain.Vehicle) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, v)
	}
	return nil
}

func (m *MockVehicleRepository) Save(ctx context.Context, v *domain.Vehicle) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, v)
	}
	return nil
}

func (m *MockVehicleRepository) FindByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockVehicleRepository) FindByOriginalName(ctx context.Context, orgID, name string) (*domain.Vehicle, error) {
	if m.FindByOriginalNameFunc != nil {
		return m.FindByOriginalNameFunc(ctx, orgID, name)
	}
	return nil, nil
}

func (m *MockVehicleRepository) ScanBatch(ctx context.Context, orgID string, offset, limit int) ([]domain.Vehicle, error) {
	if m.ScanBatchFunc != nil {
		return m.ScanBatchFunc(ctx, orgID, offset, limit)
	}
	return nil, nil
}

func (m *MockVehicleRepository) List(ctx context.Context, orgID string, status *domain.ValidationStatus, limit, offset int) ([]domain.Vehicle, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, orgID, status, limit, offset)
	}
	return nil, nil
}

func (m *MockVehicleRepository) MergeInto(ctx context.Context, source, target *domain.Vehicle) error {
	if m.MergeIntoFunc != nil {
		return m.MergeIntoFunc(ctx, source, target)
	}
	return nil
}

// MockFuelCardRepository is a mock implementation of FuelCardRepository
type MockFuelCardRepository struct {
	CreateFunc                func(ctx context.Context, c *domain.FuelCard) error
	SaveFunc                  func(ctx context.Context, c *domain.FuelCard) error
	FindByIDFunc              func(ctx context.Context, id string) (*domain.FuelCard, error)
	ScanBatchFunc             func(ctx context.Context, orgID string, offset, limit int) ([]domain.FuelCard, error)
	ListAssignmentsFunc       func(ctx context.Context, cardID string) ([]domain.CardAssignment, error)
	ActiveAssignmentsFunc     func(ctx context.Context, cardID string) ([]domain.CardAssignment, error)
	SwitchAssignmentFunc      func(ctx context.Context, card *domain.FuelCard, assignment *domain.CardAssignment) error
	CloseActiveAssignmentFunc func(ctx context.Context, card *domain.FuelCard, at time.Time) error
}

func (m *MockFuelCardRepository) Create(ctx context.Context, c *domain.FuelCard) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, c)
	}
	return nil
}

func (m *MockFuelCardRepository) Save(ctx context.Context, c *domain.FuelCard) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, c)
	}
	return nil
}

func (m *MockFuelCardRepository) FindByID(ctx context.Context, id string) (*domain.FuelCard, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockFuelCardRepository) ScanBatch(ctx context.Context, orgID string, offset, limit int) ([]domain.FuelCard, error) {
	if m.ScanBatchFunc != nil {
		return m.ScanBatchFunc(ctx, orgID, offset, limit)
	}
	return nil, nil
}

func (m *MockFuelCardRepository) ListAssignments(ctx context.Context, cardID string) ([]domain.CardAssignment, error) {
	if m.ListAssignmentsFunc != nil {
		return m.ListAssignmentsFunc(ctx, cardID)
	}
	return nil, nil
}

func (m *MockFuelCardRepository) ActiveAssignments(ctx context.Context, cardID string) ([]domain.CardAssignment, error) {
	if m.ActiveAssignmentsFunc != nil {
		return m.ActiveAssignmentsFunc(ctx, cardID)
	}
	return nil, nil
}

func (m *MockFuelCardRepository) SwitchAssignment(ctx context.Context, card *domain.FuelCard, assignment *domain.CardAssignment) error {
	if m.SwitchAssignmentFunc != nil {
		return m.SwitchAssignmentFunc(ctx, card, assignment)
	}
	return nil
}

func (m *MockFuelCardRepository) CloseActiveAssignment(ctx context.Context, card *domain.FuelCard, at time.Time) error {
	if m.CloseActiveAssignmentFunc != nil {
		return m.CloseActiveAssignmentFunc(ctx, card, at)
	}
	return nil
}

// MockGasStationRepository is a mock implementation of GasStationRepository
type MockGasStationRepository struct {
	CreateFunc             func(ctx context.Context, s *domain.GasStation) error
	SaveFunc               func(ctx context.Context, s *domain.GasStation) error
	FindByIDFunc           func(ctx context.Context, id string) (*domain.GasStation, error)
	FindByOriginalNameFunc func(ctx context.Context, orgID, name string) (*domain.GasStation, error)
	ScanBatchFunc          func(ctx context.Context, orgID string, offset, limit int) ([]domain.GasStation, error)
}

func (m *MockGasStationRepository) Create(ctx context.Context, s *domain.GasStation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, s)
	}
	return nil
}

func (m *MockGasStationRepository) Save(ctx context.Context, s *domain.GasStation) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, s)
	}
	return nil
}

func (m *MockGasStationRepository) FindByID(ctx context.Context, id string) (*domain.GasStation, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockGasStationRepository) FindByOriginalName(ctx context.Context, orgID, name string) (*domain.GasStation, error) {
	if m.FindByOriginalNameFunc != nil {
		return m.FindByOriginalNameFunc(ctx, orgID, name)
	}
	return nil, nil
}

func (m *MockGasStationRepository) ScanBatch(ctx context.Context, orgID string, offset, limit int) ([]domain.GasStation, error) {
	if m.ScanBatchFunc != nil {
		return m.ScanBatchFunc(ctx, orgID, offset, limit)
	}
	return nil, nil
}

// MockFuelTypeRepository is a mock implementation of FuelTypeRepository
type MockFuelTypeRepository struct {
	CreateFunc             func(ctx context.Context, f *domain.FuelType) error
	SaveFunc               func(ctx context.Context, f *domain.FuelType) error
	FindByIDFunc           func(ctx context.Context, id string) (*domain.FuelType, error)
	FindByOriginalNameFunc func(ctx context.Context, orgID, name string) (*domain.FuelType, error)
	ScanBatchFunc          func(ctx context.Context, orgID string, offset, limit int) ([]domain.FuelType, error)
}

func (m *MockFuelTypeRepository) Create(ctx context.Context, f *domain.FuelType) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, f)
	}
	return nil
}

func (m *MockFuelTypeRepository) Save(ctx context.Context, f *domain.FuelType) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, f)
	}
	return nil
}

func (m *MockFuelTypeRepository) FindByID(ctx context.Context, id string) (*domain.FuelType, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockFuelTypeRepository) FindByOriginalName(ctx context.Context, orgID, name string) (*domain.FuelType, error) {
	if m.FindByOriginalNameFunc != nil {
		return m.FindByOriginalNameFunc(ctx, orgID, name)
	}
	return nil, nil
}

func (m *MockFuelTypeRepository) ScanBatch(ctx context.Context, orgID string, offset, limit int) ([]domain.FuelType, error) {
	if m.ScanBatchFunc != nil {
		return m.ScanBatchFunc(ctx, orgID, offset, limit)
	}
	return nil, nil
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	SaveFunc          func(ctx context.Context, tx *domain.FuelTransaction) error
	FindByIDFunc      func(ctx context.Context, id string) (*domain.FuelTransaction, error)
	FindForPeriodFunc func(ctx context.Context, from, to time.Time, filter domain.PeriodFilter) ([]domain.FuelTransaction, error)
}

func (m *MockTransactionRepository) Save(ctx context.Context, tx *domain.FuelTransaction) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx)
	}
	return nil
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id string) (*domain.FuelTransaction, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockTransactionRepository) FindForPeriod(ctx context.Context, from, to time.Time, filter domain.PeriodFilter) ([]domain.FuelTransaction, error) {
	if m.FindForPeriodFunc != nil {
		return m.FindForPeriodFunc(ctx, from, to, filter)
	}
	return nil, nil
}

// MockTelemetryRepository is a mock implementation of TelemetryRepository
type MockTelemetryRepository struct {
	SaveRefuelFunc      func(ctx context.Context, r *domain.VehicleRefuel) error
	SaveLocationFunc    func(ctx context.Context, l *domain.VehicleLocation) error
	RefuelsInWindowFunc func(ctx context.Context, vehicleID string, from, to time.Time) ([]domain.VehicleRefuel, error)
	NearestLocationFunc func(ctx context.Context, vehicleID string, at time.Time) (*domain.VehicleLocation, error)
}

func (m *MockTelemetryRepository) SaveRefuel(ctx context.Context, r *domain.VehicleRefuel) error {
	if m.SaveRefuelFunc != nil {
		return m.SaveRefuelFunc(ctx, r)
	}
	return nil
}

func (m *MockTelemetryRepository) SaveLocation(ctx context.Context, l *domain.VehicleLocation) error {
	if m.SaveLocationFunc != nil {
		return m.SaveLocationFunc(ctx, l)
	}
	return nil
}

func (m *MockTelemetryRepository) RefuelsInWindow(ctx context.Context, vehicleID string, from, to time.Time) ([]domain.VehicleRefuel, error) {
	if m.RefuelsInWindowFunc != nil {
		return m.RefuelsInWindowFunc(ctx, vehicleID, from, to)
	}
	return nil, nil
}

func (m *MockTelemetryRepository) NearestLocation(ctx context.Context, vehicleID string, at time.Time) (*domain.VehicleLocation, error) {
	if m.NearestLocationFunc != nil {
		return m.NearestLocationFunc(ctx, vehicleID, at)
	}
	return nil, nil
}

// MockAnalysisRepository is a mock implementation of AnalysisRepository
type MockAnalysisRepository struct {
	UpsertFunc              func(ctx context.Context, res *domain.AnalysisResult) error
	FindByTransactionIDFunc func(ctx context.Context, txID string) (*domain.AnalysisResult, error)
	StatsFunc               func(ctx context.Context, from, to *time.Time, anomalyType *domain.AnomalyType) (*domain.AnomalyStats, error)
}

func (m *MockAnalysisRepository) Upsert(ctx context.Context, res *domain.AnalysisResult) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, res)
	}
	return nil
}

func (m *MockAnalysisRepository) FindByTransactionID(ctx context.Context, txID string) (*domain.AnalysisResult, error) {
	if m.FindByTransactionIDFunc != nil {
		return m.FindByTransactionIDFunc(ctx, txID)
	}
	return nil, nil
}

func (m *MockAnalysisRepository) Stats(ctx context.Context, from, to *time.Time, anomalyType *domain.AnomalyType) (*domain.AnomalyStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx, from, to, anomalyType)
	}
	return nil, nil
}

// MockNormalizationProfileRepository is a mock implementation of NormalizationProfileRepository
type MockNormalizationProfileRepository struct {
	FindByTypeFunc func(ctx context.Context, dict domain.DictionaryType) (*domain.NormalizationProfile, error)
	SaveFunc       func(ctx context.Context, p *domain.NormalizationProfile) error
}

func (m *MockNormalizationProfileRepository) FindByType(ctx context.Context, dict domain.DictionaryType) (*domain.NormalizationProfile, error) {
	if m.FindByTypeFunc != nil {
		return m.FindByTypeFunc(ctx, dict)
	}
	return nil, nil
}

func (m *MockNormalizationProfileRepository) Save(ctx context.Context, p *domain.NormalizationProfile) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, p)
	}
	return nil
}
