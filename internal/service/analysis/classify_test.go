package analysis

import (
	"math"
	"testing"

	"github.com/fleetops/fuelwatch/internal/domain"
)

func floatPtr(v float64) *float64 { return &v }

func TestClassify_DecisionTable(t *testing.T) {
	params := domain.DefaultAnalysisParams()

	tests := []struct {
		name        string
		status      domain.MatchStatus
		txQuantity  float64
		dev         deviations
		wantAnomaly bool
		wantType    *domain.AnomalyType
	}{
		{
			name:        "no refuel with large purchase is theft",
			status:      domain.MatchStatusNoRefuel,
			txQuantity:  150,
			wantAnomaly: true,
			wantType:    anomaly(domain.AnomalyFuelTheft),
		},
		{
			name:        "no refuel with small purchase is data error",
			status:      domain.MatchStatusNoRefuel,
			txQuantity:  40,
			wantAnomaly: true,
			wantType:    anomaly(domain.AnomalyDataError),
		},
		{
			name:        "refuel smaller than purchase is theft",
			status:      domain.MatchStatusQuantityMismatch,
			txQuantity:  40,
			dev:         deviations{quantityAbs: floatPtr(20)},
			wantAnomaly: true,
			wantType:    anomaly(domain.AnomalyFuelTheft),
		},
		{
			name:        "refuel larger than purchase is equipment failure",
			status:      domain.MatchStatusQuantityMismatch,
			txQuantity:  40,
			dev:         deviations{quantityAbs: floatPtr(-20), refuelLarger: true},
			wantAnomaly: true,
			wantType:    anomaly(domain.AnomalyEquipmentFailure),
		},
		{
			name:        "contradicting tank levels are equipment failure",
			status:      domain.MatchStatusQuantityMismatch,
			txQuantity:  40,
			dev:         deviations{quantityAbs: floatPtr(10), levelsContradict: true},
			wantAnomaly: true,
			wantType:    anomaly(domain.AnomalyEquipmentFailure),
		},
		{
			name:        "far location is card misuse",
			status:      domain.MatchStatusLocationMismatch,
			txQuantity:  40,
			dev:         deviations{distance: floatPtr(6000), radiusUsed: 500},
			wantAnomaly: true,
			wantType:    anomaly(domain.AnomalyCardMisuse),
		},
		{
			name:        "near-miss location is data error",
			status:      domain.MatchStatusLocationMismatch,
			txQuantity:  40,
			dev:         deviations{distance: floatPtr(1200), radiusUsed: 500},
			wantAnomaly: true,
			wantType:    anomaly(domain.AnomalyDataError),
		},
		{
			name:       "matched is never an anomaly",
			status:     domain.MatchStatusMatched,
			txQuantity: 40,
		},
		{
			name:       "time mismatch is never an anomaly",
			status:     domain.MatchStatusTimeMismatch,
			txQuantity: 40,
		},
		{
			name:       "multiple matches is never an anomaly",
			status:     domain.MatchStatusMultipleMatches,
			txQuantity: 40,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			isAnomaly, anomalyType := classify(tt.status, tt.txQuantity, tt.dev, params)

			// Assert
			if isAnomaly != tt.wantAnomaly {
				t.Errorf("expected anomaly=%v, got %v", tt.wantAnomaly, isAnomaly)
			}
			if tt.wantType == nil {
				if anomalyType != nil {
					t.Errorf("expected no anomaly type, got %s", *anomalyType)
				}
				return
			}
			if anomalyType == nil {
				t.Fatalf("expected anomaly type %s, got nil", *tt.wantType)
			}
			if *anomalyType != *tt.wantType {
				t.Errorf("expected anomaly type %s, got %s", *tt.wantType, *anomalyType)
			}
		})
	}
}

func TestConfidence_PerfectAgreement(t *testing.T) {
	// Arrange
	params := domain.DefaultAnalysisParams()
	dev := deviations{
		timeSeconds: floatPtr(0),
		quantityRel: floatPtr(0),
		distance:    floatPtr(0),
		radiusUsed:  params.AZSRadiusMeters,
	}

	// Act
	c := confidence(dev, params)

	// Assert
	if c != 1 {
		t.Errorf("expected confidence 1.0, got %f", c)
	}
}

func TestConfidence_MonotonicInTimeDeviation(t *testing.T) {
	// Arrange
	params := domain.DefaultAnalysisParams()
	near := deviations{timeSeconds: floatPtr(60)}
	far := deviations{timeSeconds: floatPtr(900)}

	// Act
	cNear := confidence(near, params)
	cFar := confidence(far, params)

	// Assert
	if cNear <= cFar {
		t.Errorf("expected confidence to drop with time deviation: near=%f far=%f", cNear, cFar)
	}
}

func TestConfidence_WeightsSumToFloor(t *testing.T) {
	// Every axis at or beyond its bound drives confidence to zero.
	// Arrange
	params := domain.DefaultAnalysisParams()
	dev := deviations{
		timeSeconds: floatPtr(float64(params.TimeWindowMinutes) * 60 * 2),
		quantityRel: floatPtr(1),
		distance:    floatPtr(params.AZSRadiusMeters * 3),
		radiusUsed:  params.AZSRadiusMeters,
	}

	// Act
	c := confidence(dev, params)

	// Assert
	if c != 0 {
		t.Errorf("expected confidence 0, got %f", c)
	}
}

func TestConfidence_UnmeasuredAxesCountAsAgreement(t *testing.T) {
	// Arrange
	params := domain.DefaultAnalysisParams()
	dev := deviations{timeSeconds: floatPtr(300)}

	// Act
	c := confidence(dev, params)

	// Assert: 300s over an 1800s window weighted at 0.4.
	want := 1 - 0.4*(300.0/1800.0)
	if math.Abs(c-want) > 1e-9 {
		t.Errorf("expected confidence %f, got %f", want, c)
	}
}

func TestTankLevelsContradict(t *testing.T) {
	tests := []struct {
		name   string
		refuel domain.VehicleRefuel
		want   bool
	}{
		{
			name:   "levels missing",
			refuel: domain.VehicleRefuel{Quantity: 40},
			want:   false,
		},
		{
			name: "levels agree with quantity",
			refuel: domain.VehicleRefuel{
				Quantity:        40,
				FuelLevelBefore: floatPtr(100),
				FuelLevelAfter:  floatPtr(141),
			},
			want: false,
		},
		{
			name: "levels contradict quantity",
			refuel: domain.VehicleRefuel{
				Quantity:        40,
				FuelLevelBefore: floatPtr(100),
				FuelLevelAfter:  floatPtr(110),
			},
			want: true,
		},
		{
			name: "small quantity uses absolute slack",
			refuel: domain.VehicleRefuel{
				Quantity:        5,
				FuelLevelBefore: floatPtr(20),
				FuelLevelAfter:  floatPtr(26.5),
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tankLevelsContradict(tt.refuel); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
