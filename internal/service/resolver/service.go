package resolver

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/fleetops/fuelwatch/internal/adapter/queue"
	"github.com/fleetops/fuelwatch/internal/domain"
	"github.com/fleetops/fuelwatch/internal/normalize"
	"github.com/fleetops/fuelwatch/internal/observability/telemetry"
	"github.com/fleetops/fuelwatch/internal/ports"
	"github.com/fleetops/fuelwatch/internal/similarity"
)

// Config bounds the fuzzy scan and sets the decision thresholds. Scores are
// on the 0-100 similarity scale.
type Config struct {
	MergeThreshold     int
	WarnThreshold      int
	CardMergeThreshold int
	CardWarnThreshold  int
	BatchSize          int
	MaxScanRows        int
	TopK               int
}

func DefaultConfig() Config {
	return Config{
		MergeThreshold:     95,
		WarnThreshold:      85,
		CardMergeThreshold: 98,
		CardWarnThreshold:  90,
		BatchSize:          5000,
		MaxScanRows:        50000,
		TopK:               5,
	}
}

const profileCacheTTL = 5 * time.Minute

type Service struct {
	vehicles  ports.VehicleRepository
	cards     ports.FuelCardRepository
	stations  ports.GasStationRepository
	fuelTypes ports.FuelTypeRepository
	profiles  ports.NormalizationProfileRepository
	cache     ports.Cache
	mq        queue.MessageQueue
	scorer    similarity.Scorer
	cfg       Config
	log       *zap.Logger
}

func NewService(
	vehicles ports.VehicleRepository,
	cards ports.FuelCardRepository,
	stations ports.GasStationRepository,
	fuelTypes ports.FuelTypeRepository,
	profiles ports.NormalizationProfileRepository,
	cache ports.Cache,
	mq queue.MessageQueue,
	scorer similarity.Scorer,
	cfg Config,
	log *zap.Logger,
) ports.ResolverService {
	return &Service{
		vehicles:  vehicles,
		cards:     cards,
		stations:  stations,
		fuelTypes: fuelTypes,
		profiles:  profiles,
		cache:     cache,
		mq:        mq,
		scorer:    scorer,
		cfg:       cfg,
		log:       log,
	}
}

// options loads the normalization profile for a dictionary type, going
// through the cache first and falling back to defaults when nothing is
// configured.
func (s *Service) options(ctx context.Context, dict domain.DictionaryType) normalize.Options {
	key := "normprofile:" + string(dict)

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err == nil && raw != "" {
			var p domain.NormalizationProfile
			if err := json.Unmarshal([]byte(raw), &p); err == nil {
				return p.Options()
			}
		}
	}

	p, err := s.profiles.FindByType(ctx, dict)
	if err != nil {
		s.log.Warn("Failed to load normalization profile, using defaults",
			zap.String("dictionary", string(dict)),
			zap.Error(err),
		)
		return normalize.DefaultOptions()
	}
	if p == nil {
		return normalize.DefaultOptions()
	}

	if s.cache != nil {
		if data, err := json.Marshal(p); err == nil {
			_ = s.cache.Set(ctx, key, string(data), profileCacheTTL)
		}
	}
	return p.Options()
}

// candidate is one reference-table row flattened for matching. key is the
// normalized comparison string, display the stored original name.
type candidate struct {
	id      string
	key     string
	display string
}

type scoredCandidate struct {
	candidate
	score int
}

// fuzzyScan pages through a reference table in bounded batches, returning
// either an exact normalized match (scan stops immediately) or the global
// top-K fuzzy candidates merged across batches. disqualify removes candidates
// that must never be merged regardless of score.
func (s *Service) fuzzyScan(
	ctx context.Context,
	query string,
	fetch func(ctx context.Context, offset, limit int) ([]candidate, error),
	disqualify func(c candidate) bool,
) (*candidate, []scoredCandidate, error) {
	var merged []scoredCandidate
	scanned := 0
	defer func() { telemetry.FuzzyScanRows.Observe(float64(scanned)) }()

	for offset := 0; offset < s.cfg.MaxScanRows; offset += s.cfg.BatchSize {
		limit := s.cfg.BatchSize
		if remaining := s.cfg.MaxScanRows - offset; remaining < limit {
			limit = remaining
		}

		batch, err := fetch(ctx, offset, limit)
		if err != nil {
			return nil, nil, err
		}
		scanned += len(batch)

		var batchTop []scoredCandidate
		for i := range batch {
			c := batch[i]
			if disqualify != nil && disqualify(c) {
				continue
			}
			if c.key == query {
				return &c, nil, nil
			}
			batchTop = append(batchTop, scoredCandidate{candidate: c, score: s.scorer.Score(query, c.key)})
		}

		sort.SliceStable(batchTop, func(i, j int) bool { return batchTop[i].score > batchTop[j].score })
		if len(batchTop) > s.cfg.TopK {
			batchTop = batchTop[:s.cfg.TopK]
		}
		merged = append(merged, batchTop...)

		if len(batch) < limit {
			break
		}
	}

	sort.SliceStable(merged, func(i, j int) bool { return merged[i].score > merged[j].score })
	if len(merged) > s.cfg.TopK {
		merged = merged[:s.cfg.TopK]
	}
	return nil, merged, nil
}

// publish emits a resolver event. Failures are logged, never propagated;
// resolution does not depend on event delivery.
func (s *Service) publish(subject string, payload interface{}) {
	if s.mq == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := s.mq.Publish(subject, data); err != nil {
		s.log.Warn("Failed to publish resolver event", zap.String("subject", subject), zap.Error(err))
	}
}
