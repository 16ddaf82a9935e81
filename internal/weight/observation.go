package weight

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

var (
	ErrInvalidObservation = errors.New("invalid observation")
	ErrInvalidTarget      = errors.New("invalid target weight")
)

// Observation is a single dated body-weight measurement, in kilos.
type Observation struct {
	Date   time.Time `json:"date" yaml:"date"`
	Weight float64   `json:"weight" yaml:"weight"`
}

// ValidWeight reports whether w is a finite, positive weight.
func ValidWeight(w float64) bool {
	return w > 0 && !math.IsInf(w, 0) && !math.IsNaN(w)
}

func (o Observation) Validate() error {
	if o.Date.IsZero() {
		return fmt.Errorf("%w: date missing", ErrInvalidObservation)
	}
	if !ValidWeight(o.Weight) {
		return fmt.Errorf("%w: weight must be positive, got %v", ErrInvalidObservation, o.Weight)
	}
	return nil
}

// Granularity can be one of:
//   - all
//   - weekly
//   - monthly
type Granularity string

const (
	GranularityAll     Granularity = "all"
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
)

func (g Granularity) String() string {
	return string(g)
}

func (g Granularity) IsValid() bool {
	switch g {
	case GranularityAll, GranularityWeekly, GranularityMonthly:
		return true
	default:
		return false
	}
}

func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "raw":
		return GranularityAll, nil
	case "weekly", "week":
		return GranularityWeekly, nil
	case "monthly", "month":
		return GranularityMonthly, nil
	default:
		return "", fmt.Errorf("unknown granularity: %s", s)
	}
}

// SortDescending returns a copy of obs ordered most recent first.
// Observations sharing a date keep their relative order.
func SortDescending(obs []Observation) []Observation {
	sorted := make([]Observation, len(obs))
	copy(sorted, obs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	return sorted
}

// InLocation returns a copy of obs with every date expressed in loc.
func InLocation(obs []Observation, loc *time.Location) []Observation {
	converted := make([]Observation, len(obs))
	for i, o := range obs {
		converted[i] = Observation{Date: o.Date.In(loc), Weight: o.Weight}
	}
	return converted
}
