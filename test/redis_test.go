package test

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/2beens/weightstats/internal/middleware"
	"github.com/2beens/weightstats/internal/telemetry/metrics"
	"github.com/2beens/weightstats/internal/weight"
	"github.com/2beens/weightstats/internal/weight/store"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func (s *IntegrationTestSuite) newRedisClient() *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr: net.JoinHostPort("localhost", s.redisPort),
	})
	s.T().Cleanup(func() {
		_ = rdb.Close()
	})
	return rdb
}

func (s *IntegrationTestSuite) TestRedisBlob_KVRoundTrip() {
	ctx := context.Background()
	rdb := s.newRedisClient()
	key := "integration-weights"
	s.Require().NoError(rdb.Del(ctx, key).Err())

	for _, codec := range []store.Codec{store.JSONCodec{}, store.YAMLCodec{}} {
		s.Require().NoError(rdb.Del(ctx, key).Err())
		kv := store.NewKV(store.NewRedisBlob(rdb, key), codec)

		s.Require().NoError(kv.Append(ctx, weight.Observation{Date: day(1), Weight: 100}))
		s.Require().NoError(kv.Append(ctx, weight.Observation{Date: day(8), Weight: 98.5}))
		s.Require().NoError(kv.Replace(ctx, 0, weight.Observation{Date: day(2), Weight: 99}))

		// a second KV over the same key sees the persisted entries
		other := store.NewKV(store.NewRedisBlob(rdb, key), codec)
		entries, err := other.Read(ctx)
		s.Require().NoError(err)
		s.Require().Len(entries, 2, codec.Name())
		s.True(entries[0].Date.Equal(day(2)))
		s.Equal(99.0, entries[0].Weight)
		s.Equal(98.5, entries[1].Weight)

		s.Require().NoError(other.Remove(ctx, 1))
		s.ErrorIs(other.Remove(ctx, 5), store.ErrEntryNotFound)

		n, err := kv.Len(ctx)
		s.Require().NoError(err)
		s.Equal(1, n)
	}
}

func (s *IntegrationTestSuite) TestRateLimit_RealRedis() {
	rdb := s.newRedisClient()
	s.Require().NoError(rdb.FlushDB(context.Background()).Err())

	limiter := redis_rate.NewLimiter(rdb)
	limited := middleware.RateLimit(limiter, metrics.NewTestManager(), "integration-router", 2)(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusCreated)
		}),
	)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/weight/entries", nil)
		req.RemoteAddr = "10.0.0.7:4242"
		rr := httptest.NewRecorder()
		limited.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	s.Equal([]int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)

	// reads are never limited
	req := httptest.NewRequest(http.MethodGet, "/weight/entries", nil)
	req.RemoteAddr = "10.0.0.7:4242"
	rr := httptest.NewRecorder()
	limited.ServeHTTP(rr, req)
	s.Equal(http.StatusCreated, rr.Code)
}
