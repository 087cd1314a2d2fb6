package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/fleetops/fuelwatch/internal/domain"
	"github.com/fleetops/fuelwatch/internal/mocks"
)

func TestMergeVehicles_TargetMissing(t *testing.T) {
	// Arrange
	svc := newTestService(&mocks.MockVehicleRepository{}, nil, nil, nil, nil)

	// Act
	_, err := svc.MergeVehicles(context.Background(), "veh-src", "veh-missing")

	// Assert
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestMergeVehicles_SameSourceAndTarget(t *testing.T) {
	// Arrange
	target := &domain.Vehicle{ID: "veh-1", OriginalName: "1023 А123ВС77"}
	merged := false
	vehicles := &mocks.MockVehicleRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Vehicle, error) {
			if id == "veh-1" {
				return target, nil
			}
			return nil, nil
		},
		MergeIntoFunc: func(ctx context.Context, source, tgt *domain.Vehicle) error {
			merged = true
			return nil
		},
	}
	svc := newTestService(vehicles, nil, nil, nil, nil)

	// Act
	v, err := svc.MergeVehicles(context.Background(), "veh-1", "veh-1")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.ID != "veh-1" {
		t.Fatalf("expected target returned, got %+v", v)
	}
	if merged {
		t.Error("merge of a vehicle into itself must be a no-op")
	}
}

func TestMergeVehicles_SourceAlreadyGone(t *testing.T) {
	// Arrange: re-running a merge after the source row was deleted.
	target := &domain.Vehicle{ID: "veh-tgt", OriginalName: "1023 А123ВС77"}
	merged := false
	vehicles := &mocks.MockVehicleRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Vehicle, error) {
			if id == "veh-tgt" {
				return target, nil
			}
			return nil, nil
		},
		MergeIntoFunc: func(ctx context.Context, source, tgt *domain.Vehicle) error {
			merged = true
			return nil
		},
	}
	svc := newTestService(vehicles, nil, nil, nil, nil)

	// Act
	v, err := svc.MergeVehicles(context.Background(), "veh-src", "veh-tgt")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.ID != "veh-tgt" {
		t.Fatalf("expected target returned, got %+v", v)
	}
	if merged {
		t.Error("expected idempotent no-op when source is gone")
	}
}

func TestMergeVehicles_BackfillsDisplayFields(t *testing.T) {
	// Arrange: the source carries a plate and garage number the target lacks.
	source := &domain.Vehicle{ID: "veh-src", OriginalName: "1023 А123ВС77", GarageNumber: "1023", LicensePlate: "А123ВС77"}
	target := &domain.Vehicle{ID: "veh-tgt", OriginalName: "Камаз 1023"}
	var mergedSource, mergedTarget *domain.Vehicle
	vehicles := &mocks.MockVehicleRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Vehicle, error) {
			switch id {
			case "veh-src":
				return source, nil
			case "veh-tgt":
				return target, nil
			}
			return nil, nil
		},
		MergeIntoFunc: func(ctx context.Context, src, tgt *domain.Vehicle) error {
			mergedSource, mergedTarget = src, tgt
			return nil
		},
	}
	svc := newTestService(vehicles, nil, nil, nil, nil)

	// Act
	v, err := svc.MergeVehicles(context.Background(), "veh-src", "veh-tgt")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mergedSource == nil || mergedSource.ID != "veh-src" {
		t.Fatalf("expected MergeInto called with source, got %+v", mergedSource)
	}
	if mergedTarget == nil || mergedTarget.ID != "veh-tgt" {
		t.Fatalf("expected MergeInto called with target, got %+v", mergedTarget)
	}
	if v.GarageNumber != "1023" || v.LicensePlate != "А123ВС77" {
		t.Errorf("expected display fields backfilled from source, got %+v", v)
	}
}
