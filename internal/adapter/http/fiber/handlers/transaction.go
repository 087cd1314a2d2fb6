package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fleetops/fuelwatch/internal/domain"
	"github.com/fleetops/fuelwatch/internal/ports"
)

// TransactionHandler ingests purchase records. Each ingested row is run
// through the resolver so the stored transaction carries canonical card,
// station and fuel type references.
type TransactionHandler struct {
	resolver     ports.ResolverService
	transactions ports.TransactionRepository
	log          *zap.Logger
}

func NewTransactionHandler(resolver ports.ResolverService, transactions ports.TransactionRepository, log *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		resolver:     resolver,
		transactions: transactions,
		log:          log,
	}
}

type ingestTransactionRequest struct {
	OrganizationID  string    `json:"organization_id"`
	TransactionDate time.Time `json:"transaction_date"`
	Quantity        float64   `json:"quantity"`
	Price           float64   `json:"price,omitempty"`
	Total           float64   `json:"total,omitempty"`
	CardNumber      string    `json:"card_number"`
	Product         string    `json:"product,omitempty"`
	GasStation      string    `json:"gas_station,omitempty"`
	Latitude        *float64  `json:"latitude,omitempty"`
	Longitude       *float64  `json:"longitude,omitempty"`
	Address         string    `json:"address,omitempty"`
	SourceSystem    string    `json:"source_system,omitempty"`
}

type ingestTransactionResponse struct {
	Transaction *domain.FuelTransaction    `json:"transaction"`
	Warnings    []domain.ResolutionWarning `json:"warnings,omitempty"`
}

func (h *TransactionHandler) Ingest(c *fiber.Ctx) error {
	var req ingestTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if req.CardNumber == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "card_number is required"})
	}
	if req.TransactionDate.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "transaction_date is required"})
	}

	tx := &domain.FuelTransaction{
		ID:              uuid.New().String(),
		OrganizationID:  req.OrganizationID,
		TransactionDate: req.TransactionDate,
		Quantity:        req.Quantity,
		Price:           req.Price,
		Total:           req.Total,
		CardNumber:      req.CardNumber,
		Product:         req.Product,
		SourceSystem:    req.SourceSystem,
	}

	var warnings []domain.ResolutionWarning

	card, cardWarnings, err := h.resolver.ResolveCard(c.Context(), req.OrganizationID, req.CardNumber)
	if err != nil {
		return err
	}
	warnings = append(warnings, cardWarnings...)
	tx.CardID = &card.ID
	if card.VehicleID != nil {
		tx.VehicleID = card.VehicleID
	}

	if req.GasStation != "" {
		station, stationWarnings, err := h.resolver.ResolveGasStation(c.Context(), req.OrganizationID, req.GasStation, ports.StationHints{
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
			Address:   req.Address,
		})
		if err != nil {
			return err
		}
		warnings = append(warnings, stationWarnings...)
		tx.GasStationID = &station.ID
	}

	if req.Product != "" {
		fuelType, fuelWarnings, err := h.resolver.ResolveFuelType(c.Context(), req.OrganizationID, req.Product)
		if err != nil {
			return err
		}
		warnings = append(warnings, fuelWarnings...)
		tx.FuelTypeID = &fuelType.ID
	}

	if err := h.transactions.Save(c.Context(), tx); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(ingestTransactionResponse{
		Transaction: tx,
		Warnings:    warnings,
	})
}

func (h *TransactionHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	tx, err := h.transactions.FindByID(c.Context(), id)
	if err != nil {
		return err
	}
	if tx == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Transaction not found"})
	}
	return c.JSON(tx)
}
