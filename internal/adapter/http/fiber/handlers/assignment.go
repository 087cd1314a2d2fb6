package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fleetops/fuelwatch/internal/ports"
)

type AssignmentHandler struct {
	service ports.AssignmentService
	log     *zap.Logger
}

func NewAssignmentHandler(service ports.AssignmentService, log *zap.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service: service,
		log:     log,
	}
}

type assignCardRequest struct {
	VehicleID    string     `json:"vehicle_id"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	CheckOverlap bool       `json:"check_overlap"`
}

func (h *AssignmentHandler) Assign(c *fiber.Ctx) error {
	cardID := c.Params("id")

	var req assignCardRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if req.VehicleID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "vehicle_id is required"})
	}
	if req.StartDate.IsZero() {
		req.StartDate = time.Now().UTC()
	}

	result, err := h.service.AssignCard(c.Context(), cardID, req.VehicleID, req.StartDate, req.EndDate, req.CheckOverlap)
	if err != nil {
		return err
	}

	if !result.OK {
		return c.Status(fiber.StatusConflict).JSON(result)
	}
	return c.JSON(result)
}

func (h *AssignmentHandler) Unassign(c *fiber.Ctx) error {
	cardID := c.Params("id")

	result, err := h.service.UnassignCard(c.Context(), cardID)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

func (h *AssignmentHandler) History(c *fiber.Ctx) error {
	cardID := c.Params("id")

	assignments, err := h.service.AssignmentHistory(c.Context(), cardID)
	if err != nil {
		return err
	}

	return c.JSON(assignments)
}
