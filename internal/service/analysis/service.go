// Package analysis cross-checks purchase transactions against independent
// vehicle telemetry (tank refuel events, GPS track) and classifies the
// outcome.
package analysis

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fleetops/fuelwatch/internal/adapter/queue"
	"github.com/fleetops/fuelwatch/internal/domain"
	"github.com/fleetops/fuelwatch/internal/observability/telemetry"
	"github.com/fleetops/fuelwatch/internal/ports"
)

// SubjectAnomalyDetected is published for every anomalous analysis result.
const SubjectAnomalyDetected = "anomaly.detected"

type Service struct {
	transactions ports.TransactionRepository
	vehicles     ports.VehicleRepository
	stations     ports.GasStationRepository
	telemetry    ports.TelemetryRepository
	results      ports.AnalysisRepository
	mq           queue.MessageQueue
	log          *zap.Logger
}

func NewService(
	transactions ports.TransactionRepository,
	vehicles ports.VehicleRepository,
	stations ports.GasStationRepository,
	telemetryRepo ports.TelemetryRepository,
	results ports.AnalysisRepository,
	mq queue.MessageQueue,
	log *zap.Logger,
) ports.AnalysisService {
	return &Service{
		transactions: transactions,
		vehicles:     vehicles,
		stations:     stations,
		telemetry:    telemetryRepo,
		results:      results,
		mq:           mq,
		log:          log,
	}
}

// evaluation is one refuel candidate measured against the transaction.
type evaluation struct {
	refuel domain.VehicleRefuel
	status domain.MatchStatus
	dev    deviations
}

// AnalyzeTransaction correlates one purchase with the vehicle's telemetry and
// persists the classified result, overwriting any previous run for the same
// transaction.
func (s *Service) AnalyzeTransaction(ctx context.Context, txID string, params *domain.AnalysisParams) (*domain.AnalysisResult, error) {
	started := time.Now()
	defer func() { telemetry.AnalysisDuration.Observe(time.Since(started).Seconds()) }()

	p := withDefaults(params)

	tx, err := s.transactions.FindByID(ctx, txID)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, &domain.NotFoundError{Resource: "transaction", ID: txID}
	}
	if tx.VehicleID == nil {
		return nil, &domain.NotFoundError{Resource: "vehicle", ID: "unresolved for transaction " + txID}
	}
	vehicle, err := s.vehicles.FindByID(ctx, *tx.VehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, &domain.NotFoundError{Resource: "vehicle", ID: *tx.VehicleID}
	}

	res, err := s.correlate(ctx, tx, vehicle, p)
	if err != nil {
		return nil, err
	}

	if err := s.results.Upsert(ctx, res); err != nil {
		return nil, err
	}

	telemetry.AnalysesTotal.WithLabelValues(string(res.MatchStatus)).Inc()
	if res.IsAnomaly {
		if res.AnomalyType != nil {
			telemetry.AnomaliesTotal.WithLabelValues(string(*res.AnomalyType)).Inc()
		}
		s.publishAnomaly(tx, res)
	}
	return res, nil
}

func (s *Service) correlate(ctx context.Context, tx *domain.FuelTransaction, vehicle *domain.Vehicle, p domain.AnalysisParams) (*domain.AnalysisResult, error) {
	window := time.Duration(p.TimeWindowMinutes) * time.Minute
	from := tx.TransactionDate.Add(-window)
	to := tx.TransactionDate.Add(window)

	refuels, err := s.telemetry.RefuelsInWindow(ctx, vehicle.ID, from, to)
	if err != nil {
		return nil, err
	}

	res := &domain.AnalysisResult{
		ID:            uuid.New().String(),
		TransactionID: tx.ID,
		AnalyzedAt:    time.Now(),
	}

	if len(refuels) == 0 {
		res.MatchStatus = domain.MatchStatusNoRefuel
		res.IsAnomaly, res.AnomalyType = classify(res.MatchStatus, tx.Quantity, deviations{}, p)
		return res, nil
	}

	// Candidates ranked by how close in time they sit to the purchase.
	sort.SliceStable(refuels, func(i, j int) bool {
		di := absDuration(refuels[i].RefuelDate.Sub(tx.TransactionDate))
		dj := absDuration(refuels[j].RefuelDate.Sub(tx.TransactionDate))
		return di < dj
	})

	stationLat, stationLon, stationKnown := s.stationCoordinates(ctx, tx)

	evals := make([]evaluation, 0, len(refuels))
	plausible := 0
	for _, r := range refuels {
		ev := s.evaluate(ctx, tx, r, stationLat, stationLon, stationKnown, p)
		if ev.status == domain.MatchStatusMatched {
			plausible++
		}
		evals = append(evals, ev)
	}

	if plausible > 1 {
		res.MatchStatus = domain.MatchStatusMultipleMatches
		res.IsAnomaly, res.AnomalyType = classify(res.MatchStatus, tx.Quantity, deviations{}, p)
		return res, nil
	}

	// The single plausible candidate, or the closest-in-time failure.
	best := evals[0]
	if plausible == 1 {
		for _, ev := range evals {
			if ev.status == domain.MatchStatusMatched {
				best = ev
				break
			}
		}
	}

	res.MatchStatus = best.status
	res.RefuelID = &best.refuel.ID
	res.TimeDifference = best.dev.timeSeconds
	res.QuantityDiff = best.dev.quantityAbs
	res.DistanceToAZS = best.dev.distance
	if best.status == domain.MatchStatusMatched {
		res.MatchConfidence = confidence(best.dev, p)
	}
	res.IsAnomaly, res.AnomalyType = classify(best.status, tx.Quantity, best.dev, p)
	return res, nil
}

// evaluate measures one refuel candidate against the transaction. Checks run
// in order: quantity, location, time; the first failure names the status.
func (s *Service) evaluate(ctx context.Context, tx *domain.FuelTransaction, r domain.VehicleRefuel, stationLat, stationLon float64, stationKnown bool, p domain.AnalysisParams) evaluation {
	ev := evaluation{refuel: r}

	timeSeconds := r.RefuelDate.Sub(tx.TransactionDate).Seconds()
	ev.dev.timeSeconds = &timeSeconds

	qtyAbs := tx.Quantity - r.Quantity
	ev.dev.quantityAbs = &qtyAbs
	quantityOK := false
	if r.Quantity > 0 {
		rel := math.Abs(qtyAbs) / r.Quantity
		ev.dev.quantityRel = &rel
		quantityOK = rel <= p.QuantityTolerancePercent/100
	}
	ev.dev.refuelLarger = r.Quantity > tx.Quantity
	ev.dev.levelsContradict = tankLevelsContradict(r)

	// Location: prefer the refuel's own fix, otherwise the GPS sample
	// nearest in time to the purchase. The comparison radius widens by the
	// reported accuracies of both measurements involved.
	ev.dev.radiusUsed = p.AZSRadiusMeters
	locationOK := true
	if stationKnown {
		var lat, lon float64
		var accuracy float64
		measured := false
		if r.HasCoordinates() {
			lat, lon = *r.Latitude, *r.Longitude
			if r.Accuracy != nil {
				accuracy = *r.Accuracy
			}
			measured = true
		} else if sample, err := s.telemetry.NearestLocation(ctx, r.VehicleID, tx.TransactionDate); err == nil && sample != nil {
			lat, lon = sample.Latitude, sample.Longitude
			accuracy = sample.Accuracy
			measured = true
		}
		if measured {
			dist := haversineMeters(stationLat, stationLon, lat, lon)
			ev.dev.distance = &dist
			ev.dev.radiusUsed = p.AZSRadiusMeters + accuracy
			locationOK = dist <= ev.dev.radiusUsed
		}
	}

	timeOK := math.Abs(timeSeconds) <= float64(p.TimeWindowMinutes)*60

	switch {
	case !quantityOK:
		ev.status = domain.MatchStatusQuantityMismatch
	case !locationOK:
		ev.status = domain.MatchStatusLocationMismatch
	case !timeOK:
		ev.status = domain.MatchStatusTimeMismatch
	default:
		ev.status = domain.MatchStatusMatched
	}
	return ev
}

func (s *Service) stationCoordinates(ctx context.Context, tx *domain.FuelTransaction) (lat, lon float64, known bool) {
	if tx.GasStationID == nil {
		return 0, 0, false
	}
	st, err := s.stations.FindByID(ctx, *tx.GasStationID)
	if err != nil || st == nil || !st.HasCoordinates() {
		return 0, 0, false
	}
	return *st.Latitude, *st.Longitude, true
}

// tankLevelsContradict reports whether the recorded before/after tank levels
// disagree with the claimed refuel quantity beyond sensor noise.
func tankLevelsContradict(r domain.VehicleRefuel) bool {
	if r.FuelLevelBefore == nil || r.FuelLevelAfter == nil {
		return false
	}
	delta := *r.FuelLevelAfter - *r.FuelLevelBefore
	slack := math.Max(2, 0.1*r.Quantity)
	return math.Abs(delta-r.Quantity) > slack
}

// AnalyzePeriod runs the per-transaction analysis over every transaction in
// the range, sequentially. Each result is independent, so a caller could
// fan the loop out without changing outputs.
func (s *Service) AnalyzePeriod(ctx context.Context, from, to time.Time, filter domain.PeriodFilter, params *domain.AnalysisParams) (*domain.PeriodSummary, error) {
	txs, err := s.transactions.FindForPeriod(ctx, from, to, filter)
	if err != nil {
		return nil, err
	}

	summary := &domain.PeriodSummary{
		ByStatus:  make(map[domain.MatchStatus]int),
		ByAnomaly: make(map[domain.AnomalyType]int),
	}

	for _, tx := range txs {
		res, err := s.AnalyzeTransaction(ctx, tx.ID, params)
		if err != nil {
			summary.Errors++
			s.log.Warn("Skipping transaction during bulk analysis",
				zap.String("transaction_id", tx.ID),
				zap.Error(err),
			)
			continue
		}
		summary.Analyzed++
		summary.ByStatus[res.MatchStatus]++
		if res.MatchStatus == domain.MatchStatusMatched {
			summary.Matched++
		}
		if res.IsAnomaly {
			summary.Anomalies++
			if res.AnomalyType != nil {
				summary.ByAnomaly[*res.AnomalyType]++
			}
		}
	}

	s.log.Info("Bulk analysis finished",
		zap.Time("from", from),
		zap.Time("to", to),
		zap.Int("analyzed", summary.Analyzed),
		zap.Int("anomalies", summary.Anomalies),
		zap.Int("errors", summary.Errors),
	)
	return summary, nil
}

func (s *Service) AnomalyStats(ctx context.Context, from, to *time.Time, anomalyType *domain.AnomalyType) (*domain.AnomalyStats, error) {
	return s.results.Stats(ctx, from, to, anomalyType)
}

func (s *Service) publishAnomaly(tx *domain.FuelTransaction, res *domain.AnalysisResult) {
	if s.mq == nil {
		return
	}
	payload := map[string]interface{}{
		"transaction_id": tx.ID,
		"vehicle_id":     tx.VehicleID,
		"card_number":    tx.CardNumber,
		"quantity":       tx.Quantity,
		"match_status":   res.MatchStatus,
		"anomaly_type":   res.AnomalyType,
		"analyzed_at":    res.AnalyzedAt,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := s.mq.Publish(SubjectAnomalyDetected, data); err != nil {
		s.log.Warn("Failed to publish anomaly event", zap.String("transaction_id", tx.ID), zap.Error(err))
	}
}

func withDefaults(params *domain.AnalysisParams) domain.AnalysisParams {
	d := domain.DefaultAnalysisParams()
	if params == nil {
		return d
	}
	p := *params
	if p.TimeWindowMinutes <= 0 {
		p.TimeWindowMinutes = d.TimeWindowMinutes
	}
	if p.QuantityTolerancePercent <= 0 {
		p.QuantityTolerancePercent = d.QuantityTolerancePercent
	}
	if p.AZSRadiusMeters <= 0 {
		p.AZSRadiusMeters = d.AZSRadiusMeters
	}
	if p.LargePurchaseFloorLiters <= 0 {
		p.LargePurchaseFloorLiters = d.LargePurchaseFloorLiters
	}
	return p
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
