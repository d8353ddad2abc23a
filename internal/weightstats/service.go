package weightstats

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/trendweight/internal/telemetry/metrics"
	"github.com/2beens/trendweight/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const (
	queryCacheSizeBytes    = 10 * 1024 * 1024
	queryCacheExpireSecs   = 10 * 60
	dateKeyLayout          = "2006-01-02"
	recomputeQueueCapacity = 1
)

// Service holds the current processed record sequence and answers queries
// over it. Every ingest recomputes the full derived set wholesale and swaps
// it in atomically; in-flight readers keep their previous snapshot.
type Service struct {
	cfg            AnalysisConfig
	processor      *Processor
	analyzer       *Analyzer
	metricsManager *metrics.Manager

	mu      sync.RWMutex
	records []DailyRecord
	version uint64

	queryCache *freecache.Cache

	// pending holds at most one raw snapshot waiting to be recomputed;
	// a newer submission supersedes an older one that was not picked up yet
	pending chan RawInput
}

func NewService(cfg AnalysisConfig, metricsManager *metrics.Manager) *Service {
	cfg = cfg.WithDefaults()
	return &Service{
		cfg:            cfg,
		processor:      NewProcessor(cfg),
		analyzer:       NewAnalyzer(cfg),
		metricsManager: metricsManager,
		queryCache:     freecache.NewCache(queryCacheSizeBytes),
		pending:        make(chan RawInput, recomputeQueueCapacity),
	}
}

// Run consumes submitted raw snapshots until the context is done. Bursts of
// submissions collapse to the latest one; each picked-up snapshot is
// recomputed to completion.
func (s *Service) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Debugln("weightstats service: recompute loop stopped")
			return
		case raw := <-s.pending:
			s.Ingest(ctx, raw)
		}
	}
}

// Submit hands a raw snapshot to the recompute loop without blocking.
// A snapshot still waiting to be picked up is discarded in favor of this one.
func (s *Service) Submit(raw RawInput) {
	for {
		select {
		case s.pending <- raw:
			return
		default:
		}
		// queue full: drop the superseded snapshot and retry
		select {
		case <-s.pending:
		default:
		}
	}
}

// Ingest merges and processes the given raw snapshot synchronously, then
// swaps it in as the current sequence. Returns the number of daily records.
func (s *Service) Ingest(ctx context.Context, raw RawInput) int {
	_, span := tracing.GlobalTracer.Start(ctx, "service.weightstats.ingest")
	defer span.End()

	started := time.Now()

	merged, droppedKeys := Merge(raw)
	processed := s.processor.Process(merged)

	s.mu.Lock()
	s.records = processed
	s.version++
	s.mu.Unlock()

	s.queryCache.Clear()

	if s.metricsManager != nil {
		s.metricsManager.CounterIngests.Inc()
		s.metricsManager.CounterRecomputes.Inc()
		s.metricsManager.CounterDroppedDateKeys.Add(float64(droppedKeys))
		s.metricsManager.GaugeRecords.Set(float64(len(processed)))
		s.metricsManager.HistRecomputeDuration.Observe(time.Since(started).Seconds())
	}

	log.Debugf(
		"weightstats: ingested %d records (%d malformed date keys dropped) in %s",
		len(processed), droppedKeys, time.Since(started),
	)

	return len(processed)
}

// Records returns the current processed sequence. The returned slice must be
// treated as read-only; it is shared with concurrent readers.
func (s *Service) Records() []DailyRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

// Query builds (or serves from cache) the display-stats bundle for the given
// ranges and goal parameters.
func (s *Service) Query(ctx context.Context, params QueryParams) (_ *DisplayStats, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.weightstats.query")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	s.mu.RLock()
	records := s.records
	version := s.version
	s.mu.RUnlock()

	cacheKey := queryCacheKey(version, params)
	if cached, cacheErr := s.queryCache.Get(cacheKey); cacheErr == nil {
		var stats DisplayStats
		if unmarshalErr := json.Unmarshal(cached, &stats); unmarshalErr == nil {
			if s.metricsManager != nil {
				s.metricsManager.CounterQueryCacheHits.Inc()
			}
			return &stats, nil
		} else {
			log.Errorf("weightstats: failed to unmarshal cached query result: %s", unmarshalErr)
		}
	}

	stats, err := s.analyzer.DisplayStats(ctx, records, params)
	if err != nil {
		return nil, fmt.Errorf("display stats: %w", err)
	}

	if statsBytes, marshalErr := json.Marshal(stats); marshalErr == nil {
		if err := s.queryCache.Set(cacheKey, statsBytes, queryCacheExpireSecs); err != nil {
			log.Errorf("weightstats: failed to cache query result: %s", err)
		}
	}

	return stats, nil
}

func queryCacheKey(version uint64, params QueryParams) []byte {
	key := fmt.Sprintf(
		"%d::%s::%s", version,
		params.From.Format(dateKeyLayout), params.To.Format(dateKeyLayout),
	)
	if params.RegressionFrom != nil {
		key += "::rf:" + params.RegressionFrom.Format(dateKeyLayout)
	}
	if params.RegressionTo != nil {
		key += "::rt:" + params.RegressionTo.Format(dateKeyLayout)
	}
	if params.GoalWeight != nil {
		key += fmt.Sprintf("::gw:%.3f", *params.GoalWeight)
	}
	if params.GoalDate != nil {
		key += "::gd:" + params.GoalDate.Format(dateKeyLayout)
	}
	return []byte(key)
}
