package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fleetops/fuelwatch/internal/domain"
	"github.com/fleetops/fuelwatch/internal/ports"
)

type AnalysisHandler struct {
	service  ports.AnalysisService
	defaults *domain.AnalysisParams
	log      *zap.Logger
}

// NewAnalysisHandler builds the analysis surface. defaults, when non-nil,
// stands in for requests that carry no params of their own; per-field zero
// values still fall back to the engine defaults downstream.
func NewAnalysisHandler(service ports.AnalysisService, defaults *domain.AnalysisParams, log *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service:  service,
		defaults: defaults,
		log:      log,
	}
}

func (h *AnalysisHandler) params(req *domain.AnalysisParams) *domain.AnalysisParams {
	if req != nil {
		return req
	}
	return h.defaults
}

type analyzeTransactionRequest struct {
	Params *domain.AnalysisParams `json:"params,omitempty"`
}

func (h *AnalysisHandler) AnalyzeTransaction(c *fiber.Ctx) error {
	txID := c.Params("id")

	var req analyzeTransactionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
		}
	}

	result, err := h.service.AnalyzeTransaction(c.Context(), txID, h.params(req.Params))
	if err != nil {
		return err
	}

	return c.JSON(result)
}

type analyzePeriodRequest struct {
	From   time.Time              `json:"from"`
	To     time.Time              `json:"to"`
	Filter domain.PeriodFilter    `json:"filter"`
	Params *domain.AnalysisParams `json:"params,omitempty"`
}

func (h *AnalysisHandler) AnalyzePeriod(c *fiber.Ctx) error {
	var req analyzePeriodRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if req.From.IsZero() || req.To.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "from and to are required"})
	}
	if req.To.Before(req.From) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "to must not precede from"})
	}

	summary, err := h.service.AnalyzePeriod(c.Context(), req.From, req.To, req.Filter, h.params(req.Params))
	if err != nil {
		return err
	}

	return c.JSON(summary)
}

func (h *AnalysisHandler) AnomalyStats(c *fiber.Ctx) error {
	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid from timestamp"})
		}
		from = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid to timestamp"})
		}
		to = &t
	}

	var anomalyType *domain.AnomalyType
	if raw := c.Query("type"); raw != "" {
		t := domain.AnomalyType(raw)
		anomalyType = &t
	}

	stats, err := h.service.AnomalyStats(c.Context(), from, to, anomalyType)
	if err != nil {
		return err
	}

	return c.JSON(stats)
}
