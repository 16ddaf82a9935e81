package store

import (
	"context"
	"errors"

	"github.com/2beens/weightstats/internal/weight"
)

// DefaultKey is the key under which key-value backends keep the whole sequence.
const DefaultKey = "app-weight-tracker"

var ErrEntryNotFound = errors.New("weight entry not found")

// Store persists the user's observation list. Entries are identified by their
// position in insertion order.
type Store interface {
	// Read returns a consistent snapshot of all entries, in insertion order.
	Read(ctx context.Context) ([]weight.Observation, error)
	Append(ctx context.Context, obs weight.Observation) error
	Replace(ctx context.Context, index int, obs weight.Observation) error
	Remove(ctx context.Context, index int) error
	Len(ctx context.Context) (int, error)
}

func inRange(index, length int) bool {
	return index >= 0 && index < length
}

func replaceAt(entries []weight.Observation, index int, obs weight.Observation) ([]weight.Observation, error) {
	if !inRange(index, len(entries)) {
		return nil, ErrEntryNotFound
	}
	entries[index] = obs
	return entries, nil
}

func removeAt(entries []weight.Observation, index int) ([]weight.Observation, error) {
	if !inRange(index, len(entries)) {
		return nil, ErrEntryNotFound
	}
	return append(entries[:index], entries[index+1:]...), nil
}
