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

type TransactionRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewTransactionRepository(db *gorm.DB, log *zap.Logger) ports.TransactionRepository {
	return &TransactionRepository{
		db:  db,
		log: log,
	}
}

func (r *TransactionRepository) Save(ctx context.Context, tx *domain.FuelTransaction) error {
	return r.db.WithContext(ctx).Save(tx).Error
}

func (r *TransactionRepository) FindByID(ctx context.Context, id string) (*domain.FuelTransaction, error) {
	var tx domain.FuelTransaction
	err := r.db.WithContext(ctx).First(&tx, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tx, nil
}

func (r *TransactionRepository) FindForPeriod(ctx context.Context, from, to time.Time, filter domain.PeriodFilter) ([]domain.FuelTransaction, error) {
	q := r.db.WithContext(ctx).
		Where("transaction_date BETWEEN ? AND ?", from, to)

	if len(filter.CardIDs) > 0 {
		q = q.Where("card_id IN ?", filter.CardIDs)
	}
	if len(filter.VehicleIDs) > 0 {
		q = q.Where("vehicle_id IN ?", filter.VehicleIDs)
	}
	if len(filter.OrganizationIDs) > 0 {
		q = q.Where("organization_id IN ?", filter.OrganizationIDs)
	}

	var txs []domain.FuelTransaction
	err := q.Order("transaction_date, id").Find(&txs).Error
	return txs, err
}
