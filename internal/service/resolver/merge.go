package resolver

import (
	"context"

	"go.uber.org/zap"

	"github.com/fleetops/fuelwatch/internal/domain"
)

// MergeVehicles folds sourceID into targetID: every transaction and fuel-card
// reference to the source is rewritten onto the target, display fields present
// on the source but empty on the target are copied over, and the source row is
// deleted, all within one database transaction. Calling it again after a
// successful merge is a no-op returning the target.
func (s *Service) MergeVehicles(ctx context.Context, sourceID, targetID string) (*domain.Vehicle, error) {
	target, err := s.vehicles.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, &domain.NotFoundError{Resource: "vehicle", ID: targetID}
	}

	if sourceID == targetID {
		return target, nil
	}

	source, err := s.vehicles.FindByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if source == nil {
		// Already merged (or never existed): the target is the answer
		// either way, which is what makes the operation idempotent.
		return target, nil
	}

	if target.Name == "" && source.Name != "" {
		target.Name = source.Name
	}
	if target.GarageNumber == "" && source.GarageNumber != "" {
		target.GarageNumber = source.GarageNumber
	}
	if target.LicensePlate == "" && source.LicensePlate != "" {
		target.LicensePlate = source.LicensePlate
	}

	if err := s.vehicles.MergeInto(ctx, source, target); err != nil {
		return nil, err
	}

	s.log.Info("Merged vehicles",
		zap.String("source_id", source.ID),
		zap.String("source_name", source.OriginalName),
		zap.String("target_id", target.ID),
	)
	return target, nil
}
