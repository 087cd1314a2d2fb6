package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fleetops/fuelwatch/internal/domain"
	"github.com/fleetops/fuelwatch/internal/ports"
)

// TelemetryHandler ingests onboard telemetry: tank refuel events and GPS
// samples. Both streams are append-only.
type TelemetryHandler struct {
	telemetry ports.TelemetryRepository
	log       *zap.Logger
}

func NewTelemetryHandler(telemetry ports.TelemetryRepository, log *zap.Logger) *TelemetryHandler {
	return &TelemetryHandler{
		telemetry: telemetry,
		log:       log,
	}
}

type ingestRefuelRequest struct {
	VehicleID       string    `json:"vehicle_id"`
	RefuelDate      time.Time `json:"refuel_date"`
	Quantity        float64   `json:"quantity"`
	FuelLevelBefore *float64  `json:"fuel_level_before,omitempty"`
	FuelLevelAfter  *float64  `json:"fuel_level_after,omitempty"`
	OdometerReading *float64  `json:"odometer_reading,omitempty"`
	Latitude        *float64  `json:"latitude,omitempty"`
	Longitude       *float64  `json:"longitude,omitempty"`
	Accuracy        *float64  `json:"accuracy,omitempty"`
	SourceSystem    string    `json:"source_system,omitempty"`
}

func (h *TelemetryHandler) IngestRefuel(c *fiber.Ctx) error {
	var req ingestRefuelRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if req.VehicleID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "vehicle_id is required"})
	}
	if req.RefuelDate.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "refuel_date is required"})
	}

	refuel := &domain.VehicleRefuel{
		ID:              uuid.New().String(),
		VehicleID:       req.VehicleID,
		RefuelDate:      req.RefuelDate,
		Quantity:        req.Quantity,
		FuelLevelBefore: req.FuelLevelBefore,
		FuelLevelAfter:  req.FuelLevelAfter,
		OdometerReading: req.OdometerReading,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		Accuracy:        req.Accuracy,
		SourceSystem:    req.SourceSystem,
	}

	if err := h.telemetry.SaveRefuel(c.Context(), refuel); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(refuel)
}

type ingestLocationRequest struct {
	VehicleID string    `json:"vehicle_id"`
	Timestamp time.Time `json:"timestamp"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy,omitempty"`
}

func (h *TelemetryHandler) IngestLocation(c *fiber.Ctx) error {
	var req ingestLocationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if req.VehicleID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "vehicle_id is required"})
	}
	if req.Timestamp.IsZero() {
		req.Timestamp = time.Now().UTC()
	}

	loc := &domain.VehicleLocation{
		ID:        uuid.New().String(),
		VehicleID: req.VehicleID,
		Timestamp: req.Timestamp,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Accuracy:  req.Accuracy,
	}

	if err := h.telemetry.SaveLocation(c.Context(), loc); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(loc)
}
