package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fleetops/fuelwatch/internal/domain"
	"github.com/fleetops/fuelwatch/internal/ports"
)

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

type VehicleRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewVehicleRepository(db *gorm.DB, log *zap.Logger) ports.VehicleRepository {
	return &VehicleRepository{
		db:  db,
		log: log,
	}
}

func (r *VehicleRepository) Create(ctx context.Context, v *domain.Vehicle) error {
	err := r.db.WithContext(ctx).Create(v).Error
	return conflict(err, "vehicle", v.OriginalName)
}

func (r *VehicleRepository) Save(ctx context.Context, v *domain.Vehicle) error {
	return r.db.WithContext(ctx).Save(v).Error
}

func (r *VehicleRepository) FindByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	var v domain.Vehicle
	err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (r *VehicleRepository) FindByOriginalName(ctx context.Context, orgID, name string) (*domain.Vehicle, error) {
	var v domain.Vehicle
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND original_name = ?", orgID, name).
		First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// ScanBatch pages the reference table in creation order so repeated scans
// visit candidates deterministically.
func (r *VehicleRepository) ScanBatch(ctx context.Context, orgID string, offset, limit int) ([]domain.Vehicle, error) {
	var vs []domain.Vehicle
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("created_at, id").
		Offset(offset).Limit(limit).
		Find(&vs).Error
	return vs, err
}

func (r *VehicleRepository) List(ctx context.Context, orgID string, status *domain.ValidationStatus, limit, offset int) ([]domain.Vehicle, error) {
	q := r.db.WithContext(ctx).Where("organization_id = ?", orgID)
	if status != nil {
		q = q.Where("is_validated = ?", *status)
	}
	var vs []domain.Vehicle
	err := q.Order("created_at desc").Offset(offset).Limit(limit).Find(&vs).Error
	return vs, err
}

// MergeInto rewrites every reference to source onto target, persists target
// and deletes source inside one transaction.
func (r *VehicleRepository) MergeInto(ctx context.Context, source, target *domain.Vehicle) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.FuelTransaction{}).
			Where("vehicle_id = ?", source.ID).
			Update("vehicle_id", target.ID).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.FuelCard{}).
			Where("vehicle_id = ?", source.ID).
			Update("vehicle_id", target.ID).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.CardAssignment{}).
			Where("vehicle_id = ?", source.ID).
			Update("vehicle_id", target.ID).Error; err != nil {
			return err
		}
		if err := tx.Save(target).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Vehicle{}, "id = ?", source.ID).Error
	})
}
