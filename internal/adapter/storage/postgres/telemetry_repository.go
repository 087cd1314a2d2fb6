package postgres

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fleetops/fuelwatch/internal/domain"
	"github.com/fleetops/fuelwatch/internal/ports"
)

type TelemetryRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewTelemetryRepository(db *gorm.DB, log *zap.Logger) ports.TelemetryRepository {
	return &TelemetryRepository{
		db:  db,
		log: log,
	}
}

func (r *TelemetryRepository) SaveRefuel(ctx context.Context, refuel *domain.VehicleRefuel) error {
	return r.db.WithContext(ctx).Save(refuel).Error
}

func (r *TelemetryRepository) SaveLocation(ctx context.Context, loc *domain.VehicleLocation) error {
	return r.db.WithContext(ctx).Save(loc).Error
}

func (r *TelemetryRepository) RefuelsInWindow(ctx context.Context, vehicleID string, from, to time.Time) ([]domain.VehicleRefuel, error) {
	var refuels []domain.VehicleRefuel
	err := r.db.WithContext(ctx).
		Where("vehicle_id = ? AND refuel_date BETWEEN ? AND ?", vehicleID, from, to).
		Order("refuel_date").
		Find(&refuels).Error
	return refuels, err
}

// NearestLocation returns the position fix closest in time to the given
// instant, looking on both sides of it.
func (r *TelemetryRepository) NearestLocation(ctx context.Context, vehicleID string, at time.Time) (*domain.VehicleLocation, error) {
	var before, after domain.VehicleLocation

	errBefore := r.db.WithContext(ctx).
		Where("vehicle_id = ? AND timestamp <= ?", vehicleID, at).
		Order("timestamp DESC").
		First(&before).Error
	errAfter := r.db.WithContext(ctx).
		Where("vehicle_id = ? AND timestamp > ?", vehicleID, at).
		Order("timestamp ASC").
		First(&after).Error

	hasBefore := errBefore == nil
	hasAfter := errAfter == nil
	if errBefore != nil && !errors.Is(errBefore, gorm.ErrRecordNotFound) {
		return nil, errBefore
	}
	if errAfter != nil && !errors.Is(errAfter, gorm.ErrRecordNotFound) {
		return nil, errAfter
	}

	switch {
	case hasBefore && hasAfter:
		if at.Sub(before.Timestamp) <= after.Timestamp.Sub(at) {
			return &before, nil
		}
		return &after, nil
	case hasBefore:
		return &before, nil
	case hasAfter:
		return &after, nil
	default:
		return nil, nil
	}
}
