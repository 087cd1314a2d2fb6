package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

var (
	serverURL   = flag.String("server", "http://localhost:8080", "Engine API base URL")
	orgID       = flag.String("org", "org-demo", "Organization ID to seed")
	token       = flag.String("token", "", "Bearer token, if the API requires auth")
	vehicles    = flag.Int("vehicles", 10, "Number of vehicles to seed")
	days        = flag.Int("days", 7, "Days of history to generate")
	anomalyRate = flag.Float64("anomaly-rate", 0.1, "Fraction of transactions made anomalous")
	seed        = flag.Int64("seed", 0, "Random seed (0 uses current time)")
	analyze     = flag.Bool("analyze", true, "Run period analysis after seeding")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
)

func main() {
	flag.Parse()

	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		logger.Info("Interrupted, stopping simulator")
		cancel()
	}()

	sim := NewSimulator(Config{
		ServerURL:   *serverURL,
		OrgID:       *orgID,
		Token:       *token,
		Vehicles:    *vehicles,
		Days:        *days,
		AnomalyRate: *anomalyRate,
		Seed:        rngSeed,
		Analyze:     *analyze,
	}, logger)

	if err := sim.Run(ctx); err != nil {
		logger.Fatal("Simulation failed", zap.Error(err))
	}

	logger.Info("Simulation complete")
}
