package postgres

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fleetops/fuelwatch/internal/domain"
	"github.com/fleetops/fuelwatch/internal/ports"
)

type AnalysisRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewAnalysisRepository(db *gorm.DB, log *zap.Logger) ports.AnalysisRepository {
	return &AnalysisRepository{
		db:  db,
		log: log,
	}
}

// Upsert keeps one result row per transaction. Re-analyzing a transaction
// replaces the previous verdict.
func (r *AnalysisRepository) Upsert(ctx context.Context, result *domain.AnalysisResult) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "transaction_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"refuel_id", "match_status", "match_confidence",
				"distance_to_azs", "time_difference", "quantity_diff",
				"is_anomaly", "anomaly_type", "analyzed_at", "updated_at",
			}),
		}).
		Create(result).Error
}

func (r *AnalysisRepository) FindByTransactionID(ctx context.Context, txID string) (*domain.AnalysisResult, error) {
	var res domain.AnalysisResult
	err := r.db.WithContext(ctx).First(&res, "transaction_id = ?", txID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (r *AnalysisRepository) Stats(ctx context.Context, from, to *time.Time, anomalyType *domain.AnomalyType) (*domain.AnomalyStats, error) {
	base := r.db.WithContext(ctx).Model(&domain.AnalysisResult{})
	if from != nil {
		base = base.Where("analyzed_at >= ?", *from)
	}
	if to != nil {
		base = base.Where("analyzed_at <= ?", *to)
	}
	if anomalyType != nil {
		base = base.Where("anomaly_type = ?", *anomalyType)
	}

	stats := &domain.AnomalyStats{
		ByType:   make(map[domain.AnomalyType]int),
		ByStatus: make(map[domain.MatchStatus]int),
	}

	type typeRow struct {
		AnomalyType domain.AnomalyType
		Count       int
	}
	var typeRows []typeRow
	err := base.Session(&gorm.Session{}).
		Select("anomaly_type, COUNT(*) AS count").
		Where("is_anomaly = ?", true).
		Group("anomaly_type").
		Scan(&typeRows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range typeRows {
		stats.ByType[row.AnomalyType] = row.Count
		stats.TotalAnomalies += row.Count
	}

	type statusRow struct {
		MatchStatus domain.MatchStatus
		Count       int
	}
	var statusRows []statusRow
	err = base.Session(&gorm.Session{}).
		Select("match_status, COUNT(*) AS count").
		Group("match_status").
		Scan(&statusRows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range statusRows {
		stats.ByStatus[row.MatchStatus] = row.Count
	}

	return stats, nil
}
