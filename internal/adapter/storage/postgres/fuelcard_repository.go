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

type FuelCardRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewFuelCardRepository(db *gorm.DB, log *zap.Logger) ports.FuelCardRepository {
	return &FuelCardRepository{
		db:  db,
		log: log,
	}
}

func (r *FuelCardRepository) Create(ctx context.Context, c *domain.FuelCard) error {
	err := r.db.WithContext(ctx).Create(c).Error
	return conflict(err, "fuel card", c.CardNumber)
}

func (r *FuelCardRepository) Save(ctx context.Context, c *domain.FuelCard) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *FuelCardRepository) FindByID(ctx context.Context, id string) (*domain.FuelCard, error) {
	var c domain.FuelCard
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *FuelCardRepository) ScanBatch(ctx context.Context, orgID string, offset, limit int) ([]domain.FuelCard, error) {
	var cs []domain.FuelCard
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("created_at, id").
		Offset(offset).Limit(limit).
		Find(&cs).Error
	return cs, err
}

func (r *FuelCardRepository) ListAssignments(ctx context.Context, cardID string) ([]domain.CardAssignment, error) {
	var as []domain.CardAssignment
	err := r.db.WithContext(ctx).
		Where("card_id = ?", cardID).
		Order("start_date desc").
		Find(&as).Error
	return as, err
}

func (r *FuelCardRepository) ActiveAssignments(ctx context.Context, cardID string) ([]domain.CardAssignment, error) {
	var as []domain.CardAssignment
	err := r.db.WithContext(ctx).
		Where("card_id = ? AND is_active = ?", cardID, true).
		Find(&as).Error
	return as, err
}

// SwitchAssignment deactivates every active period of the card, inserts the
// new one and updates the card's denormalized view, all in one transaction so
// the card never appears attached to two vehicles.
func (r *FuelCardRepository) SwitchAssignment(ctx context.Context, card *domain.FuelCard, assignment *domain.CardAssignment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.CardAssignment{}).
			Where("card_id = ? AND is_active = ?", card.ID, true).
			Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now()}).Error; err != nil {
			return err
		}
		if err := tx.Create(assignment).Error; err != nil {
			return err
		}
		return tx.Save(card).Error
	})
}

// CloseActiveAssignment ends the card's active period at the given instant.
func (r *FuelCardRepository) CloseActiveAssignment(ctx context.Context, card *domain.FuelCard, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.CardAssignment{}).
			Where("card_id = ? AND is_active = ?", card.ID, true).
			Updates(map[string]interface{}{"is_active": false, "end_date": at, "updated_at": time.Now()}).Error; err != nil {
			return err
		}
		card.IsActiveAssignment = false
		card.VehicleID = nil
		card.AssignmentEndDate = &at
		card.UpdatedAt = time.Now()
		return tx.Save(card).Error
	})
}
