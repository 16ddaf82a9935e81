package weight

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// DefaultTrendWindow is the number of most recent observations the trend is fitted on.
const DefaultTrendWindow = 10

const millisPerDay = float64(24 * time.Hour / time.Millisecond)

// maxOffsetMillis keeps projected dates within what time.Duration can express.
const maxOffsetMillis = float64(math.MaxInt64 / int64(time.Millisecond))

// ErrNoTrend is returned when no forward projection can be made. It is not a
// failure: callers are expected to simply omit the projection.
var ErrNoTrend = errors.New("no trend")

var (
	ErrInsufficientData     = fmt.Errorf("%w: insufficient data", ErrNoTrend)
	ErrDegenerateTrend      = fmt.Errorf("%w: zero variance in time", ErrNoTrend)
	ErrNonConvergingTrend   = fmt.Errorf("%w: weight is not decreasing", ErrNoTrend)
	ErrProjectionOutOfRange = fmt.Errorf("%w: projected date out of range", ErrNoTrend)
)

// NoTrendReason returns a short machine friendly reason for a no-trend error.
func NoTrendReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, ErrDegenerateTrend):
		return "degenerate_trend"
	case errors.Is(err, ErrNonConvergingTrend):
		return "non_converging_trend"
	case errors.Is(err, ErrProjectionOutOfRange):
		return "out_of_range"
	default:
		return "unknown"
	}
}

// Trend is a least-squares line of weight over time. X is expressed in
// milliseconds since Origin.
type Trend struct {
	Slope     float64   `json:"slope"`
	Intercept float64   `json:"intercept"`
	Origin    time.Time `json:"origin"`
	Points    int       `json:"points"`
}

// SlopePerDay is the slope in kilos per day.
func (t Trend) SlopePerDay() float64 {
	return t.Slope * millisPerDay
}

func (t Trend) WeightAt(at time.Time) float64 {
	return t.Intercept + t.Slope*float64(at.Sub(t.Origin).Milliseconds())
}

type Estimator struct {
	Window int
	Now    func() time.Time
}

func NewEstimator(window int, now func() time.Time) *Estimator {
	if window < 2 {
		window = DefaultTrendWindow
	}
	if now == nil {
		now = time.Now
	}
	return &Estimator{
		Window: window,
		Now:    now,
	}
}

// Fit computes the ordinary least-squares line over the most recent Window
// observations. obs is expected most recent first.
func (e *Estimator) Fit(obs []Observation) (Trend, error) {
	if len(obs) < 2 {
		return Trend{}, ErrInsufficientData
	}

	recent := SortDescending(obs)
	if len(recent) > e.Window {
		recent = recent[:e.Window]
	}

	// the oldest point of the window is X = 0, so that identical timestamps
	// give an exactly zero denominator instead of float noise
	origin := recent[len(recent)-1].Date

	n := float64(len(recent))
	var sumX, sumY, sumXY, sumX2 float64
	for i := len(recent) - 1; i >= 0; i-- {
		x := float64(recent[i].Date.Sub(origin).Milliseconds())
		y := recent[i].Weight
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	denominator := n*sumX2 - sumX*sumX
	if denominator == 0 {
		return Trend{}, ErrDegenerateTrend
	}

	slope := (n*sumXY - sumX*sumY) / denominator
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return Trend{}, ErrDegenerateTrend
	}
	intercept := (sumY - slope*sumX) / n

	return Trend{
		Slope:     slope,
		Intercept: intercept,
		Origin:    origin,
		Points:    len(recent),
	}, nil
}

// PredictCompletionDate returns the moment the trend reaches targetWeight.
// A target the line has already crossed yields the current moment.
func (e *Estimator) PredictCompletionDate(obs []Observation, targetWeight float64) (time.Time, error) {
	trend, err := e.Fit(obs)
	if err != nil {
		return time.Time{}, err
	}
	return e.completionDate(trend, targetWeight)
}

func (e *Estimator) completionDate(trend Trend, targetWeight float64) (time.Time, error) {
	if trend.Slope >= 0 {
		return time.Time{}, ErrNonConvergingTrend
	}

	offset := (targetWeight - trend.Intercept) / trend.Slope
	if math.IsNaN(offset) || math.IsInf(offset, 0) {
		return time.Time{}, ErrProjectionOutOfRange
	}

	now := e.Now()
	if offset < float64(now.Sub(trend.Origin).Milliseconds()) {
		return now, nil
	}
	if offset > maxOffsetMillis {
		return time.Time{}, ErrProjectionOutOfRange
	}

	return trend.Origin.Add(time.Duration(math.Round(offset)) * time.Millisecond), nil
}
