package postgres

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fleetops/fuelwatch/internal/domain"
)

// NewConnection initializes a PostgreSQL connection using GORM. Driver
// errors are translated so unique-constraint violations surface as
// gorm.ErrDuplicatedKey, which the repositories map onto the integrity
// conflict type the resolver recovers from.
func NewConnection(url string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(url), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Info("Successfully connected to PostgreSQL")
	return db, nil
}

// RunMigrations creates or updates the schema for every entity the engine
// owns.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Vehicle{},
		&domain.FuelCard{},
		&domain.CardAssignment{},
		&domain.GasStation{},
		&domain.FuelType{},
		&domain.FuelTransaction{},
		&domain.VehicleRefuel{},
		&domain.VehicleLocation{},
		&domain.AnalysisResult{},
		&domain.NormalizationProfile{},
	)
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// conflict converts a translated duplicate-key error into the domain
// integrity conflict; other errors pass through.
func conflict(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if isDuplicate(err) {
		return &domain.IntegrityConflictError{Resource: resource, Key: key, Err: err}
	}
	return err
}
