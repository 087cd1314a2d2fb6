package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fleetops/fuelwatch/internal/domain"
	"github.com/fleetops/fuelwatch/internal/ports"
)

// DictionaryHandler exposes read access to the canonical reference tables.
type DictionaryHandler struct {
	vehicles  ports.VehicleRepository
	cards     ports.FuelCardRepository
	stations  ports.GasStationRepository
	fuelTypes ports.FuelTypeRepository
	log       *zap.Logger
}

func NewDictionaryHandler(
	vehicles ports.VehicleRepository,
	cards ports.FuelCardRepository,
	stations ports.GasStationRepository,
	fuelTypes ports.FuelTypeRepository,
	log *zap.Logger,
) *DictionaryHandler {
	return &DictionaryHandler{
		vehicles:  vehicles,
		cards:     cards,
		stations:  stations,
		fuelTypes: fuelTypes,
		log:       log,
	}
}

func (h *DictionaryHandler) ListVehicles(c *fiber.Ctx) error {
	orgID := c.Query("organization_id")
	if orgID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "organization_id is required"})
	}

	var status *domain.ValidationStatus
	if raw := c.Query("status"); raw != "" {
		s := domain.ValidationStatus(raw)
		status = &s
	}

	limit := c.QueryInt("limit", 100)
	offset := c.QueryInt("offset", 0)

	vehicles, err := h.vehicles.List(c.Context(), orgID, status, limit, offset)
	if err != nil {
		return err
	}

	return c.JSON(vehicles)
}

func (h *DictionaryHandler) GetVehicle(c *fiber.Ctx) error {
	vehicle, err := h.vehicles.FindByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	if vehicle == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Vehicle not found"})
	}
	return c.JSON(vehicle)
}

func (h *DictionaryHandler) GetCard(c *fiber.Ctx) error {
	card, err := h.cards.FindByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	if card == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Fuel card not found"})
	}
	return c.JSON(card)
}

func (h *DictionaryHandler) GetGasStation(c *fiber.Ctx) error {
	station, err := h.stations.FindByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	if station == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Gas station not found"})
	}
	return c.JSON(station)
}

func (h *DictionaryHandler) GetFuelType(c *fiber.Ctx) error {
	fuelType, err := h.fuelTypes.FindByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	if fuelType == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Fuel type not found"})
	}
	return c.JSON(fuelType)
}
