package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fleetops/fuelwatch/internal/domain"
	"github.com/fleetops/fuelwatch/internal/ports"
)

type ResolveHandler struct {
	service ports.ResolverService
	log     *zap.Logger
}

func NewResolveHandler(service ports.ResolverService, log *zap.Logger) *ResolveHandler {
	return &ResolveHandler{
		service: service,
		log:     log,
	}
}

type resolveVehicleRequest struct {
	OrganizationID string `json:"organization_id"`
	Name           string `json:"name"`
	GarageNumber   string `json:"garage_number,omitempty"`
	LicensePlate   string `json:"license_plate,omitempty"`
}

type resolveResponse struct {
	Entity   interface{}                `json:"entity"`
	Warnings []domain.ResolutionWarning `json:"warnings,omitempty"`
}

func (h *ResolveHandler) ResolveVehicle(c *fiber.Ctx) error {
	var req resolveVehicleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	vehicle, warnings, err := h.service.ResolveVehicle(c.Context(), req.OrganizationID, req.Name, ports.VehicleHints{
		GarageNumber: req.GarageNumber,
		LicensePlate: req.LicensePlate,
	})
	if err != nil {
		return err
	}

	return c.JSON(resolveResponse{Entity: vehicle, Warnings: warnings})
}

type resolveCardRequest struct {
	OrganizationID string `json:"organization_id"`
	CardNumber     string `json:"card_number"`
}

func (h *ResolveHandler) ResolveCard(c *fiber.Ctx) error {
	var req resolveCardRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	card, warnings, err := h.service.ResolveCard(c.Context(), req.OrganizationID, req.CardNumber)
	if err != nil {
		return err
	}

	return c.JSON(resolveResponse{Entity: card, Warnings: warnings})
}

type resolveStationRequest struct {
	OrganizationID string   `json:"organization_id"`
	Name           string   `json:"name"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	Address        string   `json:"address,omitempty"`
}

func (h *ResolveHandler) ResolveGasStation(c *fiber.Ctx) error {
	var req resolveStationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	station, warnings, err := h.service.ResolveGasStation(c.Context(), req.OrganizationID, req.Name, ports.StationHints{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Address:   req.Address,
	})
	if err != nil {
		return err
	}

	return c.JSON(resolveResponse{Entity: station, Warnings: warnings})
}

type resolveFuelTypeRequest struct {
	OrganizationID string `json:"organization_id"`
	Name           string `json:"name"`
}

func (h *ResolveHandler) ResolveFuelType(c *fiber.Ctx) error {
	var req resolveFuelTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	fuelType, warnings, err := h.service.ResolveFuelType(c.Context(), req.OrganizationID, req.Name)
	if err != nil {
		return err
	}

	return c.JSON(resolveResponse{Entity: fuelType, Warnings: warnings})
}

type mergeVehiclesRequest struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
}

func (h *ResolveHandler) MergeVehicles(c *fiber.Ctx) error {
	var req mergeVehiclesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if req.SourceID == "" || req.TargetID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "source_id and target_id are required"})
	}

	target, err := h.service.MergeVehicles(c.Context(), req.SourceID, req.TargetID)
	if err != nil {
		return err
	}

	return c.JSON(target)
}
