package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/2beens/weightstats/internal/telemetry/tracing"
	"github.com/2beens/weightstats/internal/weight"

	"go.opentelemetry.io/otel/attribute"
)

// Blob is a single-value backend. Load returns nil data when nothing was saved yet.
type Blob interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Close() error
}

// KV keeps the whole sequence serialized under one key. Every mutation
// reads the blob, applies the change and writes the full sequence back.
type KV struct {
	mutex sync.Mutex
	blob  Blob
	codec Codec
}

func NewKV(blob Blob, codec Codec) *KV {
	return &KV{
		blob:  blob,
		codec: codec,
	}
}

func (s *KV) Read(ctx context.Context) (_ []weight.Observation, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "store.kv.read")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("codec", s.codec.Name()))

	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.load(ctx)
}

func (s *KV) Append(ctx context.Context, obs weight.Observation) error {
	if err := obs.Validate(); err != nil {
		return err
	}
	return s.mutate(ctx, "store.kv.append", func(entries []weight.Observation) ([]weight.Observation, error) {
		return append(entries, obs), nil
	})
}

func (s *KV) Replace(ctx context.Context, index int, obs weight.Observation) error {
	if err := obs.Validate(); err != nil {
		return err
	}
	return s.mutate(ctx, "store.kv.replace", func(entries []weight.Observation) ([]weight.Observation, error) {
		return replaceAt(entries, index, obs)
	})
}

func (s *KV) Remove(ctx context.Context, index int) error {
	return s.mutate(ctx, "store.kv.remove", func(entries []weight.Observation) ([]weight.Observation, error) {
		return removeAt(entries, index)
	})
}

func (s *KV) Len(ctx context.Context) (int, error) {
	entries, err := s.Read(ctx)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

func (s *KV) Close() error {
	return s.blob.Close()
}

func (s *KV) load(ctx context.Context) ([]weight.Observation, error) {
	data, err := s.blob.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load blob: %w", err)
	}
	if data == nil {
		return []weight.Observation{}, nil
	}
	return s.codec.Decode(data)
}

func (s *KV) mutate(
	ctx context.Context,
	spanName string,
	apply func([]weight.Observation) ([]weight.Observation, error),
) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, spanName)
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		return err
	}
	entries, err = apply(entries)
	if err != nil {
		return err
	}
	data, err := s.codec.Encode(entries)
	if err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}
	if err := s.blob.Save(ctx, data); err != nil {
		return fmt.Errorf("save blob: %w", err)
	}
	return nil
}
