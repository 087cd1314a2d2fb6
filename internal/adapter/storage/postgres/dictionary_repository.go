package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fleetops/fuelwatch/internal/domain"
	"github.com/fleetops/fuelwatch/internal/ports"
)

type GasStationRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewGasStationRepository(db *gorm.DB, log *zap.Logger) ports.GasStationRepository {
	return &GasStationRepository{
		db:  db,
		log: log,
	}
}

func (r *GasStationRepository) Create(ctx context.Context, s *domain.GasStation) error {
	err := r.db.WithContext(ctx).Create(s).Error
	return conflict(err, "gas station", s.OriginalName)
}

func (r *GasStationRepository) Save(ctx context.Context, s *domain.GasStation) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *GasStationRepository) FindByID(ctx context.Context, id string) (*domain.GasStation, error) {
	var s domain.GasStation
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *GasStationRepository) FindByOriginalName(ctx context.Context, orgID, name string) (*domain.GasStation, error) {
	var s domain.GasStation
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND original_name = ?", orgID, name).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *GasStationRepository) ScanBatch(ctx context.Context, orgID string, offset, limit int) ([]domain.GasStation, error) {
	var ss []domain.GasStation
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("created_at, id").
		Offset(offset).Limit(limit).
		Find(&ss).Error
	return ss, err
}

type FuelTypeRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewFuelTypeRepository(db *gorm.DB, log *zap.Logger) ports.FuelTypeRepository {
	return &FuelTypeRepository{
		db:  db,
		log: log,
	}
}

func (r *FuelTypeRepository) Create(ctx context.Context, f *domain.FuelType) error {
	err := r.db.WithContext(ctx).Create(f).Error
	return conflict(err, "fuel type", f.OriginalName)
}

func (r *FuelTypeRepository) Save(ctx context.Context, f *domain.FuelType) error {
	return r.db.WithContext(ctx).Save(f).Error
}

func (r *FuelTypeRepository) FindByID(ctx context.Context, id string) (*domain.FuelType, error) {
	var f domain.FuelType
	err := r.db.WithContext(ctx).First(&f, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

func (r *FuelTypeRepository) FindByOriginalName(ctx context.Context, orgID, name string) (*domain.FuelType, error) {
	var f domain.FuelType
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND original_name = ?", orgID, name).
		First(&f).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

func (r *FuelTypeRepository) ScanBatch(ctx context.Context, orgID string, offset, limit int) ([]domain.FuelType, error) {
	var fs []domain.FuelType
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("created_at, id").
		Offset(offset).Limit(limit).
		Find(&fs).Error
	return fs, err
}

type NormalizationProfileRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewNormalizationProfileRepository(db *gorm.DB, log *zap.Logger) ports.NormalizationProfileRepository {
	return &NormalizationProfileRepository{
		db:  db,
		log: log,
	}
}

func (r *NormalizationProfileRepository) FindByType(ctx context.Context, dict domain.DictionaryType) (*domain.NormalizationProfile, error) {
	var p domain.NormalizationProfile
	err := r.db.WithContext(ctx).First(&p, "dictionary_type = ?", dict).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *NormalizationProfileRepository) Save(ctx context.Context, p *domain.NormalizationProfile) error {
	return r.db.WithContext(ctx).Save(p).Error
}
