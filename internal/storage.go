package internal

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/weightstats/internal/config"
	"github.com/2beens/weightstats/internal/telemetry/metrics"
	"github.com/2beens/weightstats/internal/weight"
	"github.com/2beens/weightstats/internal/weight/service"
	"github.com/2beens/weightstats/internal/weight/store"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
)

// StoreDeps carries the clients the redis and postgres backends need.
type StoreDeps struct {
	RedisClient *redis.Client
	DBPool      *pgxpool.Pool
}

// NewWeightService wires the configured store, the chart builder and the
// service on top. The returned func closes the store.
func NewWeightService(
	ctx context.Context,
	cfg *config.Config,
	deps StoreDeps,
	metricsManager *metrics.Manager,
	now func() time.Time,
) (*service.Service, func() error, error) {
	location, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}

	lang, err := language.Parse(cfg.Language)
	if err != nil {
		log.Warnf("unknown language [%s], falling back to pt-BR: %s", cfg.Language, err)
		lang = language.BrazilianPortuguese
	}

	entryStore, closeStore, err := newEntryStore(ctx, cfg, deps)
	if err != nil {
		return nil, nil, fmt.Errorf("new entry store: %w", err)
	}

	builder := weight.NewBuilder(
		weight.NewEstimator(cfg.TrendWindow, now),
		weight.BuilderOptions{
			AxisMargin:        cfg.AxisMargin,
			PartialGoalOffset: cfg.PartialGoalOffset,
			Language:          lang,
		},
	)

	return service.New(service.Params{
		Store:         entryStore,
		Builder:       builder,
		Metrics:       metricsManager,
		Location:      location,
		DefaultTarget: cfg.DefaultTargetWeight(),
		CacheSizeMB:   cfg.ChartCacheSizeMB,
	}), closeStore, nil
}

// newEntryStore builds the store for the configured backend. The returned
// func releases whatever the store holds open (file handles, sqlite db).
func newEntryStore(ctx context.Context, cfg *config.Config, deps StoreDeps) (store.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StoreBackend {
	case config.StoreMemory:
		log.Warnln("using in-memory store, entries are lost on restart")
		return store.NewMemory(), noop, nil
	case config.StorePostgres:
		if deps.DBPool == nil {
			return nil, nil, fmt.Errorf("postgres store: db pool not set")
		}
		repo := store.NewPGRepo(deps.DBPool)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, nil, fmt.Errorf("postgres store: %w", err)
		}
		return repo, noop, nil
	}

	codec, err := store.CodecByName(cfg.StoreCodec)
	if err != nil {
		return nil, nil, err
	}

	var blob store.Blob
	switch cfg.StoreBackend {
	case config.StoreFile:
		blob, err = store.NewFileBlob(cfg.FileStore)
	case config.StoreSQLite:
		blob, err = store.OpenSQLiteBlob(cfg.SQLiteStore, cfg.StoreKey)
	case config.StoreRedis:
		if deps.RedisClient == nil {
			return nil, nil, fmt.Errorf("redis store: redis client not set")
		}
		blob = store.NewRedisBlob(deps.RedisClient, cfg.StoreKey)
	default:
		return nil, nil, fmt.Errorf("unknown store backend: %s", cfg.StoreBackend)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%s store: %w", cfg.StoreBackend, err)
	}

	log.Debugf("using %s store with %s codec", cfg.StoreBackend, codec.Name())
	kv := store.NewKV(blob, codec)
	return kv, kv.Close, nil
}
