package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	_ "github.com/lib/pq"

	"github.com/fleetops/fuelwatch/internal/adapter/storage/postgres"
	"gorm.io/gorm"
)

// TestEnv holds test environment resources
type TestEnv struct {
	DB       *gorm.DB
	SQL      *sql.DB
	Redis    *goredis.Client
	RedisURL string

	PostgresContainer testcontainers.Container
	RedisContainer    testcontainers.Container
	Logger            *zap.Logger
	ctx               context.Context
}

var testEnv *TestEnv

// SetupTestEnvironment initializes the test environment with containers
func SetupTestEnvironment(t *testing.T) *TestEnv {
	if testEnv != nil {
		return testEnv
	}

	ctx := context.Background()

	// Check if using external services (CI environment)
	if os.Getenv("DATABASE_URL") != "" {
		return setupExternalServices(t, ctx)
	}

	// Use testcontainers for local testing
	return setupContainers(t, ctx)
}

func setupExternalServices(t *testing.T, ctx context.Context) *TestEnv {
	logger, _ := zap.NewDevelopment()

	dbURL := os.Getenv("DATABASE_URL")
	db, err := postgres.NewConnection(dbURL, logger)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := sql.Open("postgres", dbURL)
	if err != nil {
		t.Fatalf("Failed to open raw database handle: %v", err)
	}
	if err := sqlDB.Ping(); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opt, err := goredis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("Failed to parse Redis URL: %v", err)
	}

	redisClient := goredis.NewClient(opt)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to connect to Redis: %v", err)
	}

	testEnv = &TestEnv{
		DB:       db,
		SQL:      sqlDB,
		Redis:    redisClient,
		RedisURL: redisURL,
		Logger:   logger,
		ctx:      ctx,
	}

	return testEnv
}

func setupContainers(t *testing.T, ctx context.Context) *TestEnv {
	logger, _ := zap.NewDevelopment()

	// Start Postgres container
	postgresContainer, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("fuelwatch_test"),
		tcpostgres.WithUsername("fuelwatch"),
		tcpostgres.WithPassword("fuelwatch_test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("Failed to start postgres container: %v", err)
	}

	pgConnStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get postgres connection string: %v", err)
	}

	db, err := postgres.NewConnection(pgConnStr, logger)
	if err != nil {
		t.Fatalf("Failed to connect to postgres: %v", err)
	}

	sqlDB, err := sql.Open("postgres", pgConnStr)
	if err != nil {
		t.Fatalf("Failed to open raw database handle: %v", err)
	}
	for i := 0; i < 30; i++ {
		if err := sqlDB.Ping(); err == nil {
			break
		}
		time.Sleep(time.Second)
	}

	// Start Redis container
	redisContainer, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Skipf("Failed to start redis container: %v", err)
	}

	redisURL, err := redisContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("Failed to get redis connection string: %v", err)
	}

	opt, err := goredis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("Failed to parse redis connection string: %v", err)
	}

	redisClient := goredis.NewClient(opt)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to connect to redis: %v", err)
	}

	testEnv = &TestEnv{
		DB:                db,
		SQL:               sqlDB,
		Redis:             redisClient,
		RedisURL:          redisURL,
		PostgresContainer: postgresContainer,
		RedisContainer:    redisContainer,
		Logger:            logger,
		ctx:               ctx,
	}

	return testEnv
}

// SetupSchema migrates the engine schema
func SetupSchema(t *testing.T, db *gorm.DB) {
	if err := postgres.RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
}

// CleanDatabase truncates all tables
func CleanDatabase(t *testing.T, db *sql.DB) {
	tables := []string{
		"analysis_results",
		"vehicle_locations",
		"vehicle_refuels",
		"fuel_transactions",
		"card_assignments",
		"fuel_cards",
		"vehicles",
		"gas_stations",
		"fuel_types",
		"normalization_profiles",
	}

	for _, table := range tables {
		_, err := db.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			// Table might not exist, that's ok
			t.Logf("Failed to truncate %s: %v", table, err)
		}
	}
}

// FlushRedis clears all Redis keys
func FlushRedis(t *testing.T, client *goredis.Client) {
	ctx := context.Background()
	if err := client.FlushAll(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush redis: %v", err)
	}
}
