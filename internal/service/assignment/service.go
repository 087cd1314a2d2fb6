// Package assignment owns the card-to-vehicle attachment state machine: a
// fuel card belongs to at most one vehicle at any instant.
package assignment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fleetops/fuelwatch/internal/domain"
	"github.com/fleetops/fuelwatch/internal/observability/telemetry"
	"github.com/fleetops/fuelwatch/internal/ports"
)

type Service struct {
	cards    ports.FuelCardRepository
	vehicles ports.VehicleRepository
	log      *zap.Logger
}

func NewService(cards ports.FuelCardRepository, vehicles ports.VehicleRepository, log *zap.Logger) ports.AssignmentService {
	return &Service{
		cards:    cards,
		vehicles: vehicles,
		log:      log,
	}
}

// AssignCard attaches a card to a vehicle for [start, end]. With checkOverlap
// set, the request is rejected when the card already has an active assignment
// to a different vehicle whose period intersects the requested one; the
// conflicting periods come back so a caller can present a disambiguation UI.
// The change is applied atomically or not at all.
func (s *Service) AssignCard(ctx context.Context, cardID, vehicleID string, start time.Time, end *time.Time, checkOverlap bool) (*ports.AssignmentResult, error) {
	if end != nil && end.Before(start) {
		return nil, &domain.ValidationError{Field: "assignment period", Reason: "end date before start date"}
	}

	card, err := s.cards.FindByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, &domain.NotFoundError{Resource: "fuel card", ID: cardID}
	}

	vehicle, err := s.vehicles.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, &domain.NotFoundError{Resource: "vehicle", ID: vehicleID}
	}

	if checkOverlap {
		conflicts, err := s.findConflicts(ctx, card, vehicleID, start, end)
		if err != nil {
			return nil, err
		}
		if len(conflicts) > 0 {
			telemetry.AssignmentConflictsTotal.Inc()
			s.log.Info("Rejected card assignment due to overlap",
				zap.String("card_id", cardID),
				zap.String("vehicle_id", vehicleID),
				zap.Int("conflicts", len(conflicts)),
			)
			return &ports.AssignmentResult{
				OK:        false,
				Message:   fmt.Sprintf("card %s already assigned to another vehicle in the requested period", card.CardNumber),
				Conflicts: conflicts,
			}, nil
		}
	}

	now := time.Now()
	next := &domain.CardAssignment{
		ID:        uuid.New().String(),
		CardID:    card.ID,
		VehicleID: vehicle.ID,
		StartDate: start,
		EndDate:   end,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	card.VehicleID = &vehicle.ID
	card.AssignmentStartDate = &start
	card.AssignmentEndDate = end
	card.IsActiveAssignment = true
	card.UpdatedAt = now

	// Deactivate-then-activate happens inside one repository transaction so
	// the card never appears to belong to two vehicles.
	if err := s.cards.SwitchAssignment(ctx, card, next); err != nil {
		return nil, err
	}

	return &ports.AssignmentResult{
		OK:      true,
		Message: fmt.Sprintf("card %s assigned to %s", card.CardNumber, vehicle.OriginalName),
	}, nil
}

func (s *Service) findConflicts(ctx context.Context, card *domain.FuelCard, vehicleID string, start time.Time, end *time.Time) ([]domain.AssignmentConflict, error) {
	active, err := s.cards.ActiveAssignments(ctx, card.ID)
	if err != nil {
		return nil, err
	}

	reqEnd := domain.CardAssignment{EndDate: end}.EffectiveEnd()

	var conflicts []domain.AssignmentConflict
	for _, a := range active {
		if a.VehicleID == vehicleID {
			continue
		}
		if !a.Overlaps(start, reqEnd) {
			continue
		}
		name := a.VehicleID
		if v, err := s.vehicles.FindByID(ctx, a.VehicleID); err == nil && v != nil {
			name = v.OriginalName
		}
		conflicts = append(conflicts, domain.AssignmentConflict{
			AssignmentID: a.ID,
			VehicleID:    a.VehicleID,
			VehicleName:  name,
			StartDate:    a.StartDate,
			EndDate:      a.EndDate,
		})
	}
	return conflicts, nil
}

// UnassignCard closes the card's active assignment as of now.
func (s *Service) UnassignCard(ctx context.Context, cardID string) (*ports.AssignmentResult, error) {
	card, err := s.cards.FindByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, &domain.NotFoundError{Resource: "fuel card", ID: cardID}
	}
	if !card.IsActiveAssignment {
		return &ports.AssignmentResult{OK: true, Message: "card has no active assignment"}, nil
	}

	now := time.Now()
	if err := s.cards.CloseActiveAssignment(ctx, card, now); err != nil {
		return nil, err
	}
	return &ports.AssignmentResult{
		OK:      true,
		Message: fmt.Sprintf("card %s unassigned", card.CardNumber),
	}, nil
}

func (s *Service) AssignmentHistory(ctx context.Context, cardID string) ([]domain.CardAssignment, error) {
	card, err := s.cards.FindByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, &domain.NotFoundError{Resource: "fuel card", ID: cardID}
	}
	return s.cards.ListAssignments(ctx, cardID)
}
