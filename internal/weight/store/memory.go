package store

import (
	"context"
	"sync"

	"github.com/2beens/weightstats/internal/weight"
)

type Memory struct {
	mutex   sync.RWMutex
	entries []weight.Observation
}

func NewMemory(initial ...weight.Observation) *Memory {
	entries := make([]weight.Observation, len(initial))
	copy(entries, initial)
	return &Memory{
		entries: entries,
	}
}

func (m *Memory) Read(_ context.Context) ([]weight.Observation, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	snapshot := make([]weight.Observation, len(m.entries))
	copy(snapshot, m.entries)
	return snapshot, nil
}

func (m *Memory) Append(_ context.Context, obs weight.Observation) error {
	if err := obs.Validate(); err != nil {
		return err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.entries = append(m.entries, obs)
	return nil
}

func (m *Memory) Replace(_ context.Context, index int, obs weight.Observation) error {
	if err := obs.Validate(); err != nil {
		return err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	entries, err := replaceAt(m.entries, index, obs)
	if err != nil {
		return err
	}
	m.entries = entries
	return nil
}

func (m *Memory) Remove(_ context.Context, index int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	entries, err := removeAt(m.entries, index)
	if err != nil {
		return err
	}
	m.entries = entries
	return nil
}

func (m *Memory) Len(_ context.Context) (int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.entries), nil
}
