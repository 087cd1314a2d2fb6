package resolver

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fleetops/fuelwatch/internal/domain"
	"github.com/fleetops/fuelwatch/internal/normalize"
	"github.com/fleetops/fuelwatch/internal/observability/telemetry"
	"github.com/fleetops/fuelwatch/internal/ports"
)

// Event subjects published by the resolver.
const (
	SubjectMerged             = "resolver.merged"
	SubjectDuplicateSuspected = "resolver.duplicate_suspected"
)

func isIntegrityConflict(err error) bool {
	var ic *domain.IntegrityConflictError
	return errors.As(err, &ic)
}

// ResolveVehicle maps a raw vehicle identifier onto a canonical Vehicle row.
func (s *Service) ResolveVehicle(ctx context.Context, orgID, raw string, hints ports.VehicleHints) (*domain.Vehicle, []domain.ResolutionWarning, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil, &domain.ValidationError{Field: "vehicle name", Reason: "must not be empty"}
	}

	opts := s.options(ctx, domain.DictionaryVehicle)
	normQuery := normalize.VehicleName(raw)

	found, warnings, err := s.matchVehicle(ctx, orgID, raw, normQuery)
	if err != nil {
		return nil, nil, err
	}
	if found != nil {
		if s.backfillVehicle(found, hints, normQuery) {
			if err := s.vehicles.Save(ctx, found); err != nil {
				return nil, nil, err
			}
		}
		return found, warnings, nil
	}

	owner := normalize.OwnerName(raw, opts)
	v := &domain.Vehicle{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		OriginalName:   raw,
		Name:           normQuery,
		GarageNumber:   firstNonEmpty(hints.GarageNumber, owner.GarageNumber),
		LicensePlate:   firstNonEmpty(hints.LicensePlate, owner.LicensePlate),
		IsValidated:    domain.ValidationStatusPending,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := s.vehicles.Create(ctx, v); err != nil {
		if isIntegrityConflict(err) {
			// Lost a concurrent create race; the competing row is
			// committed now, so the lookup is retried once.
			again, againWarnings, lookupErr := s.matchVehicle(ctx, orgID, raw, normQuery)
			if lookupErr == nil && again != nil {
				return again, againWarnings, nil
			}
			return nil, nil, err
		}
		return nil, nil, err
	}

	warnings = append(warnings, domain.CreatedWarning(domain.DictionaryVehicle, raw, v.ID))
	telemetry.ResolutionsTotal.WithLabelValues(string(domain.DictionaryVehicle), "created").Inc()
	return v, warnings, nil
}

// matchVehicle runs lookup steps 1-3: exact original name, exact normalized,
// fuzzy. A warn-band hit returns a nil vehicle with the duplicate warning so
// the caller proceeds to creation.
func (s *Service) matchVehicle(ctx context.Context, orgID, raw, normQuery string) (*domain.Vehicle, []domain.ResolutionWarning, error) {
	if v, err := s.vehicles.FindByOriginalName(ctx, orgID, raw); err != nil {
		return nil, nil, err
	} else if v != nil {
		telemetry.ResolutionsTotal.WithLabelValues(string(domain.DictionaryVehicle), "exact").Inc()
		return v, nil, nil
	}

	fetch := func(ctx context.Context, offset, limit int) ([]candidate, error) {
		rows, err := s.vehicles.ScanBatch(ctx, orgID, offset, limit)
		if err != nil {
			return nil, err
		}
		out := make([]candidate, len(rows))
		for i, r := range rows {
			out[i] = candidate{id: r.ID, key: normalize.VehicleName(r.OriginalName), display: r.OriginalName}
		}
		return out, nil
	}

	exact, top, err := s.fuzzyScan(ctx, normQuery, fetch, nil)
	if err != nil {
		return nil, nil, err
	}
	if exact != nil {
		v, err := s.vehicles.FindByID(ctx, exact.id)
		if err != nil {
			return nil, nil, err
		}
		telemetry.ResolutionsTotal.WithLabelValues(string(domain.DictionaryVehicle), "exact_normalized").Inc()
		return v, nil, nil
	}

	if len(top) == 0 {
		return nil, nil, nil
	}
	best := top[0]
	switch {
	case best.score >= s.cfg.MergeThreshold:
		v, err := s.vehicles.FindByID(ctx, best.id)
		if err != nil {
			return nil, nil, err
		}
		w := domain.MergedWarning(domain.DictionaryVehicle, raw, best.id, best.display, best.score)
		s.publish(SubjectMerged, w)
		telemetry.ResolutionsTotal.WithLabelValues(string(domain.DictionaryVehicle), "merged").Inc()
		s.log.Info("Fuzzy-merged vehicle identifier",
			zap.String("query", raw),
			zap.String("matched", best.display),
			zap.Int("score", best.score),
		)
		return v, []domain.ResolutionWarning{w}, nil
	case best.score >= s.cfg.WarnThreshold:
		w := domain.DuplicateWarning(domain.DictionaryVehicle, raw, best.id, best.display, best.score)
		s.publish(SubjectDuplicateSuspected, w)
		telemetry.DuplicateWarningsTotal.WithLabelValues(string(domain.DictionaryVehicle)).Inc()
		return nil, []domain.ResolutionWarning{w}, nil
	}
	return nil, nil, nil
}

func (s *Service) backfillVehicle(v *domain.Vehicle, hints ports.VehicleHints, normQuery string) bool {
	changed := false
	if v.GarageNumber == "" && hints.GarageNumber != "" {
		v.GarageNumber = hints.GarageNumber
		changed = true
	}
	if v.LicensePlate == "" {
		plate := firstNonEmpty(hints.LicensePlate, normalize.CompactPlate(normalize.FindLicensePlate(normQuery)))
		if plate != "" {
			v.LicensePlate = plate
			changed = true
		}
	}
	return changed
}

// ResolveCard maps a raw card number onto a canonical FuelCard row. Card
// numbers are compared normalized on both sides; a blank number fails fast.
func (s *Service) ResolveCard(ctx context.Context, orgID, raw string) (*domain.FuelCard, []domain.ResolutionWarning, error) {
	normQuery := normalize.CardNumber(raw)
	if normQuery == "" {
		return nil, nil, &domain.ValidationError{Field: "card number", Reason: "must not be empty"}
	}

	found, warnings, err := s.matchCard(ctx, orgID, raw, normQuery)
	if err != nil {
		return nil, nil, err
	}
	if found != nil {
		return found, warnings, nil
	}

	c := &domain.FuelCard{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		CardNumber:     normQuery,
		IsValidated:    domain.ValidationStatusPending,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := s.cards.Create(ctx, c); err != nil {
		if isIntegrityConflict(err) {
			again, againWarnings, lookupErr := s.matchCard(ctx, orgID, raw, normQuery)
			if lookupErr == nil && again != nil {
				return again, againWarnings, nil
			}
			return nil, nil, err
		}
		return nil, nil, err
	}

	warnings = append(warnings, domain.CreatedWarning(domain.DictionaryFuelCard, raw, c.ID))
	telemetry.ResolutionsTotal.WithLabelValues(string(domain.DictionaryFuelCard), "created").Inc()
	return c, warnings, nil
}

func (s *Service) matchCard(ctx context.Context, orgID, raw, normQuery string) (*domain.FuelCard, []domain.ResolutionWarning, error) {
	fetch := func(ctx context.Context, offset, limit int) ([]candidate, error) {
		rows, err := s.cards.ScanBatch(ctx, orgID, offset, limit)
		if err != nil {
			return nil, err
		}
		out := make([]candidate, len(rows))
		for i, r := range rows {
			out[i] = candidate{id: r.ID, key: normalize.CardNumber(r.CardNumber), display: r.CardNumber}
		}
		return out, nil
	}

	exact, top, err := s.fuzzyScan(ctx, normQuery, fetch, nil)
	if err != nil {
		return nil, nil, err
	}
	if exact != nil {
		c, err := s.cards.FindByID(ctx, exact.id)
		if err != nil {
			return nil, nil, err
		}
		telemetry.ResolutionsTotal.WithLabelValues(string(domain.DictionaryFuelCard), "exact").Inc()
		return c, nil, nil
	}

	if len(top) == 0 {
		return nil, nil, nil
	}
	best := top[0]
	switch {
	case best.score >= s.cfg.CardMergeThreshold:
		c, err := s.cards.FindByID(ctx, best.id)
		if err != nil {
			return nil, nil, err
		}
		w := domain.MergedWarning(domain.DictionaryFuelCard, raw, best.id, best.display, best.score)
		s.publish(SubjectMerged, w)
		telemetry.ResolutionsTotal.WithLabelValues(string(domain.DictionaryFuelCard), "merged").Inc()
		return c, []domain.ResolutionWarning{w}, nil
	case best.score >= s.cfg.CardWarnThreshold:
		w := domain.DuplicateWarning(domain.DictionaryFuelCard, raw, best.id, best.display, best.score)
		s.publish(SubjectDuplicateSuspected, w)
		telemetry.DuplicateWarningsTotal.WithLabelValues(string(domain.DictionaryFuelCard)).Inc()
		return nil, []domain.ResolutionWarning{w}, nil
	}
	return nil, nil, nil
}

// ResolveGasStation maps a raw station name onto a canonical GasStation row.
// Stations whose names carry different embedded numbers (КАЗС10 vs КАЗС07)
// are never fuzzy-merged even when their extracted AZS numbers coincide.
func (s *Service) ResolveGasStation(ctx context.Context, orgID, raw string, hints ports.StationHints) (*domain.GasStation, []domain.ResolutionWarning, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil, &domain.ValidationError{Field: "gas station name", Reason: "must not be empty"}
	}

	opts := s.options(ctx, domain.DictionaryGasStation)
	normQuery := opts.Apply(raw)

	found, warnings, err := s.matchStation(ctx, orgID, raw, normQuery, opts)
	if err != nil {
		return nil, nil, err
	}
	if found != nil {
		if s.backfillStation(found, hints) {
			if err := s.stations.Save(ctx, found); err != nil {
				return nil, nil, err
			}
		}
		return found, warnings, nil
	}

	st := &domain.GasStation{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		OriginalName:   raw,
		Name:           normQuery,
		AZSNumber:      normalize.AZSNumber(raw),
		Latitude:       hints.Latitude,
		Longitude:      hints.Longitude,
		Address:        hints.Address,
		IsValidated:    domain.ValidationStatusPending,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := s.stations.Create(ctx, st); err != nil {
		if isIntegrityConflict(err) {
			again, againWarnings, lookupErr := s.matchStation(ctx, orgID, raw, normQuery, opts)
			if lookupErr == nil && again != nil {
				return again, againWarnings, nil
			}
			return nil, nil, err
		}
		return nil, nil, err
	}

	warnings = append(warnings, domain.CreatedWarning(domain.DictionaryGasStation, raw, st.ID))
	telemetry.ResolutionsTotal.WithLabelValues(string(domain.DictionaryGasStation), "created").Inc()
	return st, warnings, nil
}

func (s *Service) matchStation(ctx context.Context, orgID, raw, normQuery string, opts normalize.Options) (*domain.GasStation, []domain.ResolutionWarning, error) {
	if st, err := s.stations.FindByOriginalName(ctx, orgID, raw); err != nil {
		return nil, nil, err
	} else if st != nil {
		telemetry.ResolutionsTotal.WithLabelValues(string(domain.DictionaryGasStation), "exact").Inc()
		return st, nil, nil
	}

	azsQuery := normalize.AZSNumber(raw)

	fetch := func(ctx context.Context, offset, limit int) ([]candidate, error) {
		rows, err := s.stations.ScanBatch(ctx, orgID, offset, limit)
		if err != nil {
			return nil, err
		}
		out := make([]candidate, len(rows))
		for i, r := range rows {
			out[i] = candidate{id: r.ID, key: opts.Apply(r.OriginalName), display: r.OriginalName}
		}
		return out, nil
	}

	// Known false positive: "КАЗС10" and "КАЗС07" may extract the same AZS
	// number yet name different stations. When the embedded numeric tokens
	// disagree the candidate is out, a new row gets created instead.
	disqualify := func(c candidate) bool {
		return normalize.AZSNumber(c.display) == azsQuery && !normalize.SameEmbeddedNumbers(raw, c.display)
	}

	exact, top, err := s.fuzzyScan(ctx, normQuery, fetch, disqualify)
	if err != nil {
		return nil, nil, err
	}
	if exact != nil {
		st, err := s.stations.FindByID(ctx, exact.id)
		if err != nil {
			return nil, nil, err
		}
		telemetry.ResolutionsTotal.WithLabelValues(string(domain.DictionaryGasStation), "exact_normalized").Inc()
		return st, nil, nil
	}

	if len(top) == 0 {
		return nil, nil, nil
	}
	best := top[0]
	switch {
	case best.score >= s.cfg.MergeThreshold:
		st, err := s.stations.FindByID(ctx, best.id)
		if err != nil {
			return nil, nil, err
		}
		w := domain.MergedWarning(domain.DictionaryGasStation, raw, best.id, best.display, best.score)
		s.publish(SubjectMerged, w)
		telemetry.ResolutionsTotal.WithLabelValues(string(domain.DictionaryGasStation), "merged").Inc()
		return st, []domain.ResolutionWarning{w}, nil
	case best.score >= s.cfg.WarnThreshold:
		w := domain.DuplicateWarning(domain.DictionaryGasStation, raw, best.id, best.display, best.score)
		s.publish(SubjectDuplicateSuspected, w)
		telemetry.DuplicateWarningsTotal.WithLabelValues(string(domain.DictionaryGasStation)).Inc()
		return nil, []domain.ResolutionWarning{w}, nil
	}
	return nil, nil, nil
}

func (s *Service) backfillStation(st *domain.GasStation, hints ports.StationHints) bool {
	changed := false
	if st.Latitude == nil && hints.Latitude != nil && hints.Longitude != nil {
		st.Latitude = hints.Latitude
		st.Longitude = hints.Longitude
		changed = true
	}
	if st.Address == "" && hints.Address != "" {
		st.Address = hints.Address
		changed = true
	}
	return changed
}

// ResolveFuelType maps a raw product label onto a canonical FuelType row.
func (s *Service) ResolveFuelType(ctx context.Context, orgID, raw string) (*domain.FuelType, []domain.ResolutionWarning, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil, &domain.ValidationError{Field: "fuel type", Reason: "must not be empty"}
	}

	normQuery := normalize.Fuel(raw)

	found, warnings, err := s.matchFuelType(ctx, orgID, raw, normQuery)
	if err != nil {
		return nil, nil, err
	}
	if found != nil {
		return found, warnings, nil
	}

	f := &domain.FuelType{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		OriginalName:   raw,
		NormalizedName: normQuery,
		IsValidated:    domain.ValidationStatusPending,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := s.fuelTypes.Create(ctx, f); err != nil {
		if isIntegrityConflict(err) {
			again, againWarnings, lookupErr := s.matchFuelType(ctx, orgID, raw, normQuery)
			if lookupErr == nil && again != nil {
				return again, againWarnings, nil
			}
			return nil, nil, err
		}
		return nil, nil, err
	}

	warnings = append(warnings, domain.CreatedWarning(domain.DictionaryFuelType, raw, f.ID))
	telemetry.ResolutionsTotal.WithLabelValues(string(domain.DictionaryFuelType), "created").Inc()
	return f, warnings, nil
}

func (s *Service) matchFuelType(ctx context.Context, orgID, raw, normQuery string) (*domain.FuelType, []domain.ResolutionWarning, error) {
	if f, err := s.fuelTypes.FindByOriginalName(ctx, orgID, raw); err != nil {
		return nil, nil, err
	} else if f != nil {
		telemetry.ResolutionsTotal.WithLabelValues(string(domain.DictionaryFuelType), "exact").Inc()
		return f, nil, nil
	}

	fetch := func(ctx context.Context, offset, limit int) ([]candidate, error) {
		rows, err := s.fuelTypes.ScanBatch(ctx, orgID, offset, limit)
		if err != nil {
			return nil, err
		}
		out := make([]candidate, len(rows))
		for i, r := range rows {
			key := r.NormalizedName
			if key == "" {
				key = normalize.Fuel(r.OriginalName)
			}
			out[i] = candidate{id: r.ID, key: key, display: r.OriginalName}
		}
		return out, nil
	}

	exact, top, err := s.fuzzyScan(ctx, normQuery, fetch, nil)
	if err != nil {
		return nil, nil, err
	}
	if exact != nil {
		f, err := s.fuelTypes.FindByID(ctx, exact.id)
		if err != nil {
			return nil, nil, err
		}
		telemetry.ResolutionsTotal.WithLabelValues(string(domain.DictionaryFuelType), "exact_normalized").Inc()
		return f, nil, nil
	}

	if len(top) == 0 {
		return nil, nil, nil
	}
	best := top[0]
	switch {
	case best.score >= s.cfg.MergeThreshold:
		f, err := s.fuelTypes.FindByID(ctx, best.id)
		if err != nil {
			return nil, nil, err
		}
		w := domain.MergedWarning(domain.DictionaryFuelType, raw, best.id, best.display, best.score)
		s.publish(SubjectMerged, w)
		telemetry.ResolutionsTotal.WithLabelValues(string(domain.DictionaryFuelType), "merged").Inc()
		return f, []domain.ResolutionWarning{w}, nil
	case best.score >= s.cfg.WarnThreshold:
		w := domain.DuplicateWarning(domain.DictionaryFuelType, raw, best.id, best.display, best.score)
		s.publish(SubjectDuplicateSuspected, w)
		telemetry.DuplicateWarningsTotal.WithLabelValues(string(domain.DictionaryFuelType)).Inc()
		return nil, []domain.ResolutionWarning{w}, nil
	}
	return nil, nil, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
