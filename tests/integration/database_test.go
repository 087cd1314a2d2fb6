package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fleetops/fuelwatch/internal/adapter/storage/postgres"
	"github.com/fleetops/fuelwatch/internal/domain"
	"github.com/fleetops/fuelwatch/internal/service/assignment"
)

// TestDatabase_VehicleUniqueness tests that the org plus original-name unique
// index surfaces as an integrity conflict the resolver can recover from.
func TestDatabase_VehicleUniqueness(t *testing.T) {
	env := SetupTestEnvironment(t)
	if env == nil || env.DB == nil {
		t.Skip("Database not available")
	}

	SetupSchema(t, env.DB)
	CleanDatabase(t, env.SQL)

	ctx := context.Background()
	repo := postgres.NewVehicleRepository(env.DB, env.Logger)
	orgID := uuid.New().String()

	t.Run("CreateVehicle", func(t *testing.T) {
		v := &domain.Vehicle{
			ID:             uuid.New().String(),
			OrganizationID: orgID,
			OriginalName:   "Камаз 5320 А123ВС77",
			Name:           "Камаз 5320 А123ВС77",
			LicensePlate:   "А123ВС77",
			IsValidated:    domain.ValidationStatusPending,
		}
		if err := repo.Create(ctx, v); err != nil {
			t.Fatalf("Failed to create vehicle: %v", err)
		}
	})

	t.Run("FindByOriginalName", func(t *testing.T) {
		found, err := repo.FindByOriginalName(ctx, orgID, "Камаз 5320 А123ВС77")
		if err != nil {
			t.Fatalf("Failed to look up vehicle: %v", err)
		}
		if found == nil {
			t.Fatal("Expected the vehicle to be found")
		}
		if found.LicensePlate != "А123ВС77" {
			t.Errorf("Expected license plate А123ВС77, got %s", found.LicensePlate)
		}
	})

	t.Run("DuplicateOriginalNameConflicts", func(t *testing.T) {
		dup := &domain.Vehicle{
			ID:             uuid.New().String(),
			OrganizationID: orgID,
			OriginalName:   "Камаз 5320 А123ВС77",
		}
		err := repo.Create(ctx, dup)
		var conflict *domain.IntegrityConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("Expected IntegrityConflictError, got %v", err)
		}
	})

	t.Run("OtherOrganizationIsIndependent", func(t *testing.T) {
		other := &domain.Vehicle{
			ID:             uuid.New().String(),
			OrganizationID: uuid.New().String(),
			OriginalName:   "Камаз 5320 А123ВС77",
		}
		if err := repo.Create(ctx, other); err != nil {
			t.Fatalf("Same name in another organization must not conflict: %v", err)
		}
	})

	t.Run("NotFoundReturnsNil", func(t *testing.T) {
		found, err := repo.FindByID(ctx, uuid.New().String())
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if found != nil {
			t.Error("Expected nil for a missing vehicle")
		}
	})
}

// TestDatabase_AssignmentSwitch tests the transactional switch of a card
// between vehicles, including the denormalized card columns.
func TestDatabase_AssignmentSwitch(t *testing.T) {
	env := SetupTestEnvironment(t)
	if env == nil || env.DB == nil {
		t.Skip("Database not available")
	}

	SetupSchema(t, env.DB)
	CleanDatabase(t, env.SQL)

	ctx := context.Background()
	vehicles := postgres.NewVehicleRepository(env.DB, env.Logger)
	cards := postgres.NewFuelCardRepository(env.DB, env.Logger)
	svc := assignment.NewService(cards, vehicles, env.Logger)

	orgID := uuid.New().String()
	truck := &domain.Vehicle{ID: uuid.New().String(), OrganizationID: orgID, OriginalName: "Газель О456РТ77"}
	van := &domain.Vehicle{ID: uuid.New().String(), OrganizationID: orgID, OriginalName: "Газон В789АМ77"}
	card := &domain.FuelCard{ID: uuid.New().String(), OrganizationID: orgID, CardNumber: "7005 8301 2233 4455"}

	for _, v := range []*domain.Vehicle{truck, van} {
		if err := vehicles.Create(ctx, v); err != nil {
			t.Fatalf("Failed to create vehicle: %v", err)
		}
	}
	if err := cards.Create(ctx, card); err != nil {
		t.Fatalf("Failed to create card: %v", err)
	}

	start := time.Now().UTC().Truncate(time.Second)

	t.Run("AssignOpensActivePeriod", func(t *testing.T) {
		res, err := svc.AssignCard(ctx, card.ID, truck.ID, start, nil, true)
		if err != nil {
			t.Fatalf("Failed to assign card: %v", err)
		}
		if !res.OK {
			t.Fatalf("Expected assignment to succeed: %s", res.Message)
		}

		stored, err := cards.FindByID(ctx, card.ID)
		if err != nil || stored == nil {
			t.Fatalf("Failed to reload card: %v", err)
		}
		if stored.VehicleID == nil || *stored.VehicleID != truck.ID {
			t.Errorf("Expected card to point at the truck, got %v", stored.VehicleID)
		}
		if !stored.IsActiveAssignment {
			t.Error("Expected the denormalized active flag set")
		}
	})

	t.Run("SwitchClosesPreviousPeriod", func(t *testing.T) {
		res, err := svc.AssignCard(ctx, card.ID, van.ID, start.Add(48*time.Hour), nil, false)
		if err != nil {
			t.Fatalf("Failed to switch card: %v", err)
		}
		if !res.OK {
			t.Fatalf("Expected switch to succeed: %s", res.Message)
		}

		var active int
		err = env.SQL.QueryRow(
			`SELECT COUNT(*) FROM card_assignments WHERE card_id = $1 AND is_active = true`, card.ID,
		).Scan(&active)
		if err != nil {
			t.Fatalf("Failed to count active assignments: %v", err)
		}
		if active != 1 {
			t.Errorf("Expected exactly one active assignment, got %d", active)
		}

		history, err := svc.AssignmentHistory(ctx, card.ID)
		if err != nil {
			t.Fatalf("Failed to load history: %v", err)
		}
		if len(history) != 2 {
			t.Fatalf("Expected two historical periods, got %d", len(history))
		}
	})

	t.Run("UnassignLeavesNoActivePeriod", func(t *testing.T) {
		res, err := svc.UnassignCard(ctx, card.ID)
		if err != nil {
			t.Fatalf("Failed to unassign card: %v", err)
		}
		if !res.OK {
			t.Fatalf("Expected unassign to succeed: %s", res.Message)
		}

		stored, err := cards.FindByID(ctx, card.ID)
		if err != nil || stored == nil {
			t.Fatalf("Failed to reload card: %v", err)
		}
		if stored.IsActiveAssignment {
			t.Error("Expected the active flag cleared")
		}
	})
}

// TestDatabase_AnalysisUpsert tests that re-running analysis overwrites the
// row keyed by transaction rather than accumulating duplicates.
func TestDatabase_AnalysisUpsert(t *testing.T) {
	env := SetupTestEnvironment(t)
	if env == nil || env.DB == nil {
		t.Skip("Database not available")
	}

	SetupSchema(t, env.DB)
	CleanDatabase(t, env.SQL)

	ctx := context.Background()
	results := postgres.NewAnalysisRepository(env.DB, env.Logger)
	txID := uuid.New().String()

	first := &domain.AnalysisResult{
		ID:            uuid.New().String(),
		TransactionID: txID,
		MatchStatus:   domain.MatchStatusNoRefuel,
		IsAnomaly:     true,
		AnalyzedAt:    time.Now().UTC(),
	}
	theft := domain.AnomalyFuelTheft
	first.AnomalyType = &theft

	if err := results.Upsert(ctx, first); err != nil {
		t.Fatalf("Failed to upsert first result: %v", err)
	}

	second := &domain.AnalysisResult{
		ID:              uuid.New().String(),
		TransactionID:   txID,
		MatchStatus:     domain.MatchStatusMatched,
		MatchConfidence: 0.93,
		IsAnomaly:       false,
		AnalyzedAt:      time.Now().UTC(),
	}
	if err := results.Upsert(ctx, second); err != nil {
		t.Fatalf("Failed to upsert second result: %v", err)
	}

	var count int
	if err := env.SQL.QueryRow(
		`SELECT COUNT(*) FROM analysis_results WHERE transaction_id = $1`, txID,
	).Scan(&count); err != nil {
		t.Fatalf("Failed to count results: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected a single row per transaction, got %d", count)
	}

	stored, err := results.FindByTransactionID(ctx, txID)
	if err != nil || stored == nil {
		t.Fatalf("Failed to reload result: %v", err)
	}
	if stored.MatchStatus != domain.MatchStatusMatched {
		t.Errorf("Expected the rerun to win, got %s", stored.MatchStatus)
	}
	if stored.IsAnomaly {
		t.Error("Expected the anomaly flag cleared by the rerun")
	}
}

// TestDatabase_TelemetryQueries tests the windowed refuel scan and the
// nearest-GPS-sample lookup.
func TestDatabase_TelemetryQueries(t *testing.T) {
	env := SetupTestEnvironment(t)
	if env == nil || env.DB == nil {
		t.Skip("Database not available")
	}

	SetupSchema(t, env.DB)
	CleanDatabase(t, env.SQL)

	ctx := context.Background()
	telemetry := postgres.NewTelemetryRepository(env.DB, env.Logger)

	vehicleID := uuid.New().String()
	at := time.Date(2026, 5, 12, 10, 0, 0, 0, time.UTC)

	for _, offset := range []time.Duration{-2 * time.Hour, -10 * time.Minute, 15 * time.Minute, 3 * time.Hour} {
		r := &domain.VehicleRefuel{
			ID:         uuid.New().String(),
			VehicleID:  vehicleID,
			RefuelDate: at.Add(offset),
			Quantity:   40,
		}
		if err := telemetry.SaveRefuel(ctx, r); err != nil {
			t.Fatalf("Failed to save refuel: %v", err)
		}
	}

	t.Run("RefuelsInWindow", func(t *testing.T) {
		refuels, err := telemetry.RefuelsInWindow(ctx, vehicleID, at.Add(-30*time.Minute), at.Add(30*time.Minute))
		if err != nil {
			t.Fatalf("Failed to query refuels: %v", err)
		}
		if len(refuels) != 2 {
			t.Fatalf("Expected 2 refuels inside the window, got %d", len(refuels))
		}
	})

	t.Run("NearestLocationPicksCloserSide", func(t *testing.T) {
		before := &domain.VehicleLocation{
			ID: uuid.New().String(), VehicleID: vehicleID,
			Timestamp: at.Add(-20 * time.Minute), Latitude: 55.70, Longitude: 37.60, Accuracy: 25,
		}
		after := &domain.VehicleLocation{
			ID: uuid.New().String(), VehicleID: vehicleID,
			Timestamp: at.Add(5 * time.Minute), Latitude: 55.76, Longitude: 37.62, Accuracy: 15,
		}
		for _, l := range []*domain.VehicleLocation{before, after} {
			if err := telemetry.SaveLocation(ctx, l); err != nil {
				t.Fatalf("Failed to save location: %v", err)
			}
		}

		sample, err := telemetry.NearestLocation(ctx, vehicleID, at)
		if err != nil {
			t.Fatalf("Failed to query nearest location: %v", err)
		}
		if sample == nil {
			t.Fatal("Expected a sample")
		}
		if sample.ID != after.ID {
			t.Errorf("Expected the sample 5 minutes after the purchase, got %s", sample.ID)
		}
	})

	t.Run("NearestLocationEmptyTrack", func(t *testing.T) {
		sample, err := telemetry.NearestLocation(ctx, uuid.New().String(), at)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if sample != nil {
			t.Error("Expected nil for a vehicle with no track")
		}
	})
}
