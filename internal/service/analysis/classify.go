package analysis

import (
	"math"

	"github.com/fleetops/fuelwatch/internal/domain"
)

// deviations captures how far the best telemetry candidate sits from the
// purchase on each axis. Nil means the axis could not be measured.
type deviations struct {
	timeSeconds  *float64
	quantityAbs  *float64 // liters, tx minus refuel
	quantityRel  *float64 // relative to the refuel quantity
	distance     *float64 // meters
	radiusUsed   float64  // azs radius plus accuracy padding
	refuelLarger bool
	levelsContradict bool
}

// classify assigns the anomaly flag and type for a match status.
//
// Decision table (deterministic for identical inputs):
//
//	no_refuel          quantity > large-purchase floor        -> fuel_theft
//	no_refuel          quantity <= floor                      -> data_error
//	quantity_mismatch  refuel recorded less than purchased    -> fuel_theft
//	quantity_mismatch  refuel recorded more, or the tank
//	                   levels contradict the delta            -> equipment_failure
//	location_mismatch  distance > 10x comparison radius       -> card_misuse
//	location_mismatch  within the 10x drift band              -> data_error
//	anything else                                             -> no anomaly
func classify(status domain.MatchStatus, txQuantity float64, dev deviations, params domain.AnalysisParams) (bool, *domain.AnomalyType) {
	switch status {
	case domain.MatchStatusNoRefuel:
		if txQuantity > params.LargePurchaseFloorLiters {
			return true, anomaly(domain.AnomalyFuelTheft)
		}
		return true, anomaly(domain.AnomalyDataError)

	case domain.MatchStatusQuantityMismatch:
		if dev.refuelLarger || dev.levelsContradict {
			return true, anomaly(domain.AnomalyEquipmentFailure)
		}
		return true, anomaly(domain.AnomalyFuelTheft)

	case domain.MatchStatusLocationMismatch:
		if dev.distance != nil && *dev.distance > 10*dev.radiusUsed {
			return true, anomaly(domain.AnomalyCardMisuse)
		}
		return true, anomaly(domain.AnomalyDataError)
	}
	return false, nil
}

func anomaly(t domain.AnomalyType) *domain.AnomalyType {
	return &t
}

// Confidence weights: time deviation dominates, quantity and distance split
// the rest.
const (
	confWeightTime     = 0.4
	confWeightQuantity = 0.3
	confWeightDistance = 0.3
)

// confidence maps the combined deviation onto (0, 1]. Each axis is normalized
// by its tolerance bound and clamped, so the value is monotonic in every
// deviation and hits 1.0 only on perfect agreement. Unmeasured axes count as
// zero deviation.
func confidence(dev deviations, params domain.AnalysisParams) float64 {
	windowSeconds := float64(params.TimeWindowMinutes) * 60

	var tNorm, qNorm, dNorm float64
	if dev.timeSeconds != nil && windowSeconds > 0 {
		tNorm = clamp01(math.Abs(*dev.timeSeconds) / windowSeconds)
	}
	if dev.quantityRel != nil && params.QuantityTolerancePercent > 0 {
		qNorm = clamp01(math.Abs(*dev.quantityRel) / (params.QuantityTolerancePercent / 100))
	}
	if dev.distance != nil && dev.radiusUsed > 0 {
		dNorm = clamp01(*dev.distance / dev.radiusUsed)
	}

	c := 1 - (confWeightTime*tNorm + confWeightQuantity*qNorm + confWeightDistance*dNorm)
	return clamp01(c)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
