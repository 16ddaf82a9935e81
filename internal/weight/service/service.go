package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/2beens/weightstats/internal/telemetry/metrics"
	"github.com/2beens/weightstats/internal/telemetry/tracing"
	"github.com/2beens/weightstats/internal/weight"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=service_test

type entryStore interface {
	Read(ctx context.Context) ([]weight.Observation, error)
	Append(ctx context.Context, obs weight.Observation) error
	Replace(ctx context.Context, index int, obs weight.Observation) error
	Remove(ctx context.Context, index int) error
	Len(ctx context.Context) (int, error)
}

const (
	minCacheSizeMB = 1
	// a cached chart goes stale once "now" moves on, even without writes
	chartCacheTTLSeconds = 300
)

// Entry is a stored observation together with its positional index.
type Entry struct {
	Index  int       `json:"index"`
	Date   time.Time `json:"date"`
	Weight float64   `json:"weight"`
}

type ChartParams struct {
	Granularity weight.Granularity
	// Target is nil when no goal weight is set.
	Target *float64
}

type ChartView struct {
	Granularity weight.Granularity `json:"granularity"`
	Target      *float64           `json:"target"`
	weight.Chart
}

type Projection struct {
	Target      float64    `json:"target"`
	Date        *time.Time `json:"date"`
	Reason      string     `json:"reason,omitempty"`
	Text        string     `json:"text"`
	SlopePerDay *float64   `json:"slopePerDay,omitempty"`
	Points      int        `json:"points"`
}

type Params struct {
	Store    entryStore
	Builder  *weight.Builder
	Metrics  *metrics.Manager
	Location *time.Location
	// DefaultTarget is used when a caller does not say anything about the target, nil for none.
	DefaultTarget *float64
	CacheSizeMB   int
}

type Service struct {
	store         entryStore
	builder       *weight.Builder
	metrics       *metrics.Manager
	location      *time.Location
	defaultTarget *float64
	chartCache    *freecache.Cache
	// generation is bumped after every write; cached charts are keyed by it
	generation atomic.Uint64
}

func New(params Params) *Service {
	location := params.Location
	if location == nil {
		location = time.UTC
	}
	cacheSizeMB := params.CacheSizeMB
	if cacheSizeMB < minCacheSizeMB {
		cacheSizeMB = minCacheSizeMB
	}
	m := params.Metrics
	if m == nil {
		m = metrics.NewTestManager()
	}
	return &Service{
		store:         params.Store,
		builder:       params.Builder,
		metrics:       m,
		location:      location,
		defaultTarget: params.DefaultTarget,
		chartCache:    freecache.NewCache(cacheSizeMB * 1024 * 1024),
	}
}

func (s *Service) DefaultTarget() *float64 {
	return s.defaultTarget
}

// Builder exposes the chart builder, mostly for its locale aware formatting.
func (s *Service) Builder() *weight.Builder {
	return s.builder
}

func (s *Service) List(ctx context.Context) (_ []Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.weight.list")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	obs, err := s.store.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}
	s.metrics.GaugeEntries.Set(float64(len(obs)))

	entries := make([]Entry, len(obs))
	for i, o := range obs {
		entries[i] = Entry{
			Index:  i,
			Date:   o.Date.In(s.location),
			Weight: o.Weight,
		}
	}
	return entries, nil
}

func (s *Service) Add(ctx context.Context, obs weight.Observation) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.weight.add")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if err := obs.Validate(); err != nil {
		return err
	}
	if err := s.store.Append(ctx, obs); err != nil {
		return fmt.Errorf("append entry: %w", err)
	}

	s.metrics.CounterEntriesAdded.Inc()
	s.invalidateCharts()
	log.Debugf("weight entry added: %s -> %.1f", obs.Date.Format(time.RFC3339), obs.Weight)
	return nil
}

func (s *Service) Update(ctx context.Context, index int, obs weight.Observation) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.weight.update")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.Int("index", index))

	if err := obs.Validate(); err != nil {
		return err
	}
	if err := s.store.Replace(ctx, index, obs); err != nil {
		return fmt.Errorf("replace entry %d: %w", index, err)
	}

	s.metrics.CounterEntriesUpdated.Inc()
	s.invalidateCharts()
	return nil
}

func (s *Service) Remove(ctx context.Context, index int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.weight.remove")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.Int("index", index))

	if err := s.store.Remove(ctx, index); err != nil {
		return fmt.Errorf("remove entry %d: %w", index, err)
	}

	s.metrics.CounterEntriesRemoved.Inc()
	s.invalidateCharts()
	return nil
}

// Chart runs the aggregation and projection pipeline over one snapshot of
// the store. Results are memoized per (granularity, target) until the next
// write made through this service, or for chartCacheTTLSeconds at most.
func (s *Service) Chart(ctx context.Context, params ChartParams) (_ *ChartView, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.weight.chart")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("granularity", params.Granularity.String()))

	if !params.Granularity.IsValid() {
		return nil, fmt.Errorf("invalid granularity: %s", params.Granularity)
	}
	if params.Target != nil && !weight.ValidWeight(*params.Target) {
		return nil, fmt.Errorf("%w: %v", weight.ErrInvalidTarget, *params.Target)
	}

	// generation is loaded before the store snapshot is taken
	cacheKey := chartCacheKey(s.generation.Load(), params)
	if cached, err := s.chartCache.Get(cacheKey); err == nil {
		view := &ChartView{}
		if err := json.Unmarshal(cached, view); err == nil {
			s.metrics.CounterChartCache.WithLabelValues("hit").Inc()
			span.SetAttributes(attribute.Bool("cached", true))
			return view, nil
		}
		log.Warnf("dropping undecodable cached chart [%s]", cacheKey)
		s.chartCache.Del(cacheKey)
	}
	s.metrics.CounterChartCache.WithLabelValues("miss").Inc()

	obs, err := s.store.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}
	s.metrics.GaugeEntries.Set(float64(len(obs)))

	start := time.Now()
	chart := weight.Compute(weight.InLocation(obs, s.location), weight.ComputeParams{
		Granularity: params.Granularity,
		Target:      params.Target,
	}, s.builder)
	s.metrics.HistogramChartDuration.Observe(time.Since(start).Seconds())
	s.observeProjection(params.Target, chart.Completion.Reason)

	view := &ChartView{
		Granularity: params.Granularity,
		Target:      params.Target,
		Chart:       chart,
	}
	if encoded, err := json.Marshal(view); err != nil {
		log.Errorf("encode chart for cache: %s", err)
	} else if err := s.chartCache.Set(cacheKey, encoded, chartCacheTTLSeconds); err != nil {
		log.Warnf("cache chart [%s]: %s", cacheKey, err)
	}

	return view, nil
}

// Projection fits the trend over the full history and projects the date the target is reached.
func (s *Service) Projection(ctx context.Context, target float64) (_ *Projection, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.weight.projection")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.Float64("target", target))

	if !weight.ValidWeight(target) {
		return nil, fmt.Errorf("%w: %v", weight.ErrInvalidTarget, target)
	}

	obs, err := s.store.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}

	view := weight.Aggregate(weight.InLocation(obs, s.location), weight.GranularityAll)
	chart := s.builder.Build(view, &target)
	s.observeProjection(&target, chart.Completion.Reason)

	projection := &Projection{
		Target: target,
		Date:   chart.Completion.Date,
		Reason: chart.Completion.Reason,
		Text:   chart.Completion.Text,
		Points: len(view),
	}
	if trend, fitErr := s.builder.Estimator().Fit(view); fitErr == nil {
		slope := trend.SlopePerDay()
		projection.SlopePerDay = &slope
	}
	return projection, nil
}

func (s *Service) observeProjection(target *float64, reason string) {
	if target == nil {
		return
	}
	outcome := reason
	if outcome == "" {
		outcome = "projected"
	}
	s.metrics.CounterProjections.WithLabelValues(outcome).Inc()
}

func (s *Service) invalidateCharts() {
	s.generation.Add(1)
	s.chartCache.Clear()
}

func chartCacheKey(generation uint64, params ChartParams) []byte {
	target := "none"
	if params.Target != nil {
		target = strconv.FormatFloat(*params.Target, 'f', -1, 64)
	}
	return []byte(strconv.FormatUint(generation, 10) + "|" + params.Granularity.String() + "|" + target)
}
