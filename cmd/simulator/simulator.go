package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fleetops/fuelwatch/internal/domain"
)

// Config drives one simulation run.
type Config struct {
	ServerURL   string
	OrgID       string
	Token       string
	Vehicles    int
	Days        int
	AnomalyRate float64
	Seed        int64
	Analyze     bool
}

// Simulator seeds the engine with a synthetic fleet and a telemetry trail,
// deliberately corrupting a fraction of the transactions so the analysis
// pipeline has something to find.
type Simulator struct {
	cfg    Config
	client *http.Client
	rng    *rand.Rand
	log    *zap.Logger
}

func NewSimulator(cfg Config, log *zap.Logger) *Simulator {
	return &Simulator{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		log:    log,
	}
}

var plateLetters = []rune("АВЕКМНОРСТУХ")

var products = []string{"АИ-92", "АИ-95", "ДТ"}

type station struct {
	name string
	lat  float64
	lon  float64
}

var stations = []station{
	{"АЗС №17 Лукойл", 55.7522, 37.6156},
	{"АЗС №3 Газпромнефть", 55.7810, 37.5830},
	{"АЗС 42 Роснефть", 55.7210, 37.6550},
	{"Татнефть АЗС №8", 55.7990, 37.6410},
}

type seededVehicle struct {
	id     string
	cardID string
}

func (s *Simulator) Run(ctx context.Context) error {
	s.log.Info("Seeding fleet",
		zap.Int("vehicles", s.cfg.Vehicles),
		zap.Int("days", s.cfg.Days),
		zap.Float64("anomaly_rate", s.cfg.AnomalyRate),
	)

	fleet, err := s.seedFleet(ctx)
	if err != nil {
		return fmt.Errorf("seed fleet: %w", err)
	}

	from := time.Now().UTC().AddDate(0, 0, -s.cfg.Days)
	to := time.Now().UTC()

	if err := s.generateHistory(ctx, fleet, from); err != nil {
		return fmt.Errorf("generate history: %w", err)
	}

	if s.cfg.Analyze {
		return s.runAnalysis(ctx, from, to)
	}
	return nil
}

func (s *Simulator) seedFleet(ctx context.Context) ([]seededVehicle, error) {
	fleet := make([]seededVehicle, 0, s.cfg.Vehicles)
	start := time.Now().UTC().AddDate(0, 0, -s.cfg.Days-1)

	for i := 0; i < s.cfg.Vehicles; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		plate := s.randomPlate()
		garage := 1000 + i

		var vehicleResp struct {
			Entity domain.Vehicle `json:"entity"`
		}
		err := s.post(ctx, "/api/v1/resolve/vehicles", map[string]interface{}{
			"organization_id": s.cfg.OrgID,
			"name":            fmt.Sprintf("%d %s", garage, plate),
		}, &vehicleResp)
		if err != nil {
			return nil, err
		}

		var cardResp struct {
			Entity domain.FuelCard `json:"entity"`
		}
		cardNumber := fmt.Sprintf("7005 83%02d %04d", s.rng.Intn(100), s.rng.Intn(10000))
		err = s.post(ctx, "/api/v1/resolve/cards", map[string]interface{}{
			"organization_id": s.cfg.OrgID,
			"card_number":     cardNumber,
		}, &cardResp)
		if err != nil {
			return nil, err
		}

		err = s.post(ctx, fmt.Sprintf("/api/v1/cards/%s/assign", cardResp.Entity.ID), map[string]interface{}{
			"vehicle_id":    vehicleResp.Entity.ID,
			"start_date":    start.Format(time.RFC3339),
			"check_overlap": true,
		}, nil)
		if err != nil {
			return nil, err
		}

		fleet = append(fleet, seededVehicle{
			id:     vehicleResp.Entity.ID,
			cardID: cardResp.Entity.ID,
		})
	}

	s.log.Info("Fleet seeded", zap.Int("vehicles", len(fleet)))
	return fleet, nil
}

func (s *Simulator) generateHistory(ctx context.Context, fleet []seededVehicle, from time.Time) error {
	transactions := 0
	anomalies := 0

	for day := 0; day < s.cfg.Days; day++ {
		for _, v := range fleet {
			if err := ctx.Err(); err != nil {
				return err
			}

			st := stations[s.rng.Intn(len(stations))]
			product := products[s.rng.Intn(len(products))]
			quantity := 20 + s.rng.Float64()*40
			txTime := from.AddDate(0, 0, day).
				Add(time.Duration(6+s.rng.Intn(14)) * time.Hour).
				Add(time.Duration(s.rng.Intn(60)) * time.Minute)

			var txResp struct {
				Transaction domain.FuelTransaction `json:"transaction"`
			}
			err := s.post(ctx, "/api/v1/transactions", map[string]interface{}{
				"organization_id":  s.cfg.OrgID,
				"transaction_date": txTime.Format(time.RFC3339),
				"quantity":         round2(quantity),
				"card_number":      s.cardNumberFor(ctx, v.cardID),
				"product":          product,
				"gas_station":      st.name,
				"latitude":         st.lat,
				"longitude":        st.lon,
				"source_system":    "simulator",
			}, &txResp)
			if err != nil {
				return err
			}
			transactions++

			if s.rng.Float64() < s.cfg.AnomalyRate {
				anomalies++
				if err := s.emitAnomalousRefuel(ctx, v.id, st, quantity, txTime); err != nil {
					return err
				}
				continue
			}

			if err := s.emitMatchingRefuel(ctx, v.id, st, quantity, txTime); err != nil {
				return err
			}
		}
	}

	s.log.Info("History generated",
		zap.Int("transactions", transactions),
		zap.Int("anomalous", anomalies),
	)
	return nil
}

// emitMatchingRefuel posts a refuel the analyzer should pair with the
// transaction: same quantity within a percent, a few minutes later, at the
// station's coordinates.
func (s *Simulator) emitMatchingRefuel(ctx context.Context, vehicleID string, st station, quantity float64, txTime time.Time) error {
	jitter := 1 + (s.rng.Float64()-0.5)*0.02
	refuelTime := txTime.Add(time.Duration(1+s.rng.Intn(10)) * time.Minute)
	before := 10 + s.rng.Float64()*20
	after := before + quantity

	return s.post(ctx, "/api/v1/telemetry/refuels", map[string]interface{}{
		"vehicle_id":        vehicleID,
		"refuel_date":       refuelTime.Format(time.RFC3339),
		"quantity":          round2(quantity * jitter),
		"fuel_level_before": round2(before),
		"fuel_level_after":  round2(after),
		"latitude":          st.lat + (s.rng.Float64()-0.5)*0.001,
		"longitude":         st.lon + (s.rng.Float64()-0.5)*0.001,
		"accuracy":          10 + s.rng.Float64()*40,
		"source_system":     "simulator",
	}, nil)
}

// emitAnomalousRefuel produces one of three corruption patterns: no refuel
// at all, a refuel for half the purchased volume, or a refuel far from the
// station.
func (s *Simulator) emitAnomalousRefuel(ctx context.Context, vehicleID string, st station, quantity float64, txTime time.Time) error {
	switch s.rng.Intn(3) {
	case 0:
		// Purchased fuel never reached the tank.
		return nil
	case 1:
		refuelTime := txTime.Add(time.Duration(2+s.rng.Intn(8)) * time.Minute)
		return s.post(ctx, "/api/v1/telemetry/refuels", map[string]interface{}{
			"vehicle_id":    vehicleID,
			"refuel_date":   refuelTime.Format(time.RFC3339),
			"quantity":      round2(quantity * 0.5),
			"latitude":      st.lat,
			"longitude":     st.lon,
			"accuracy":      20.0,
			"source_system": "simulator",
		}, nil)
	default:
		// Roughly 5 km away from the purchase location.
		refuelTime := txTime.Add(time.Duration(2+s.rng.Intn(8)) * time.Minute)
		return s.post(ctx, "/api/v1/telemetry/refuels", map[string]interface{}{
			"vehicle_id":    vehicleID,
			"refuel_date":   refuelTime.Format(time.RFC3339),
			"quantity":      round2(quantity),
			"latitude":      st.lat + 0.045,
			"longitude":     st.lon,
			"accuracy":      20.0,
			"source_system": "simulator",
		}, nil)
	}
}

func (s *Simulator) runAnalysis(ctx context.Context, from, to time.Time) error {
	var summary domain.PeriodSummary
	err := s.post(ctx, "/api/v1/analysis/period", map[string]interface{}{
		"from": from.Format(time.RFC3339),
		"to":   to.Format(time.RFC3339),
		"filter": map[string]interface{}{
			"organization_ids": []string{s.cfg.OrgID},
		},
	}, &summary)
	if err != nil {
		return fmt.Errorf("period analysis: %w", err)
	}

	s.log.Info("Analysis summary",
		zap.Int("analyzed", summary.Analyzed),
		zap.Int("matched", summary.Matched),
		zap.Int("anomalies", summary.Anomalies),
		zap.Int("errors", summary.Errors),
	)
	return nil
}

// cardNumberFor fetches the stored card so transactions reference the
// exact number the dictionary holds.
func (s *Simulator) cardNumberFor(ctx context.Context, cardID string) string {
	var card domain.FuelCard
	if err := s.get(ctx, "/api/v1/cards/"+cardID, &card); err != nil {
		s.log.Warn("Failed to fetch card", zap.String("card_id", cardID), zap.Error(err))
		return ""
	}
	return card.CardNumber
}

func (s *Simulator) randomPlate() string {
	l := func() rune { return plateLetters[s.rng.Intn(len(plateLetters))] }
	return fmt.Sprintf("%c%03d%c%c77", l(), 100+s.rng.Intn(900), l(), l())
}

func (s *Simulator) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.ServerURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}

	return s.do(req, out)
}

func (s *Simulator) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.ServerURL+path, nil)
	if err != nil {
		return err
	}
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}
	return s.do(req, out)
}

func (s *Simulator) do(req *http.Request, out interface{}) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, apiErr.Error)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
