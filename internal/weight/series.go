package weight

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const DefaultPartialGoalOffset = 10.0

// Point is a single (date, weight) pair of a chart series.
type Point struct {
	Date   time.Time `json:"date"`
	Weight float64   `json:"weight"`
}

type GoalKind string

const (
	GoalFinal   GoalKind = "final"
	GoalPartial GoalKind = "partial"
)

// GoalLine is a horizontal marker on the chart.
type GoalLine struct {
	Kind   GoalKind `json:"kind"`
	Weight float64  `json:"weight"`
	Label  string   `json:"label"`
}

type Completion struct {
	// Date is nil when there is no trend to project.
	Date   *time.Time `json:"date"`
	Reason string     `json:"reason,omitempty"`
	Text   string     `json:"text"`
}

// Chart is everything a rendering layer needs to draw progress towards the target.
type Chart struct {
	Historical []Point `json:"historical"`
	// Projected is either empty or the segment from the latest observation to the predicted goal.
	Projected []Point `json:"projected"`
	// YAxisFloor is nil when the axis should auto scale.
	YAxisFloor *float64   `json:"yAxisFloor"`
	GoalLines  []GoalLine `json:"goalLines"`
	Completion Completion `json:"completion"`
}

type BuilderOptions struct {
	// AxisMargin is subtracted from the target to get the y axis floor.
	AxisMargin float64
	// PartialGoalOffset places an intermediate goal line above the target, 0 disables it.
	PartialGoalOffset float64
	Language          language.Tag
}

type Builder struct {
	estimator *Estimator
	options   BuilderOptions
	printer   *message.Printer
}

func NewBuilder(estimator *Estimator, options BuilderOptions) *Builder {
	if options.Language == language.Und {
		options.Language = language.BrazilianPortuguese
	}
	return &Builder{
		estimator: estimator,
		options:   options,
		printer:   message.NewPrinter(options.Language),
	}
}

func (b *Builder) Estimator() *Estimator {
	return b.estimator
}

// Build shapes the chart series from a view ordered most recent first.
// A nil target means no goal is set.
func (b *Builder) Build(view []Observation, target *float64) Chart {
	chart := Chart{
		Historical: make([]Point, 0, len(view)),
		Projected:  []Point{},
		GoalLines:  []GoalLine{},
	}

	// charts render left to right, so oldest first
	for i := len(view) - 1; i >= 0; i-- {
		chart.Historical = append(chart.Historical, Point{Date: view[i].Date, Weight: view[i].Weight})
	}

	if target == nil {
		chart.Completion = Completion{Text: b.printer.Sprintf("no target set")}
		return chart
	}

	floor := *target - b.options.AxisMargin
	chart.YAxisFloor = &floor
	chart.GoalLines = b.goalLines(*target)

	predicted, err := b.predict(view, *target)
	if err != nil {
		chart.Completion = Completion{
			Reason: NoTrendReason(err),
			Text:   b.printer.Sprintf("no trend"),
		}
		return chart
	}

	latest := chart.Historical[len(chart.Historical)-1]
	chart.Projected = []Point{
		latest,
		{Date: predicted, Weight: *target},
	}
	chart.Completion = Completion{
		Date: &predicted,
		Text: b.printer.Sprintf("projected completion: %s", b.FormatDate(predicted)),
	}

	return chart
}

func (b *Builder) predict(view []Observation, target float64) (time.Time, error) {
	if len(view) < 2 {
		return time.Time{}, ErrInsufficientData
	}
	return b.estimator.PredictCompletionDate(view, target)
}

func (b *Builder) goalLines(target float64) []GoalLine {
	lines := make([]GoalLine, 0, 2)
	if b.options.PartialGoalOffset > 0 {
		partial := target + b.options.PartialGoalOffset
		lines = append(lines, GoalLine{
			Kind:   GoalPartial,
			Weight: partial,
			Label:  b.printer.Sprintf("partial: %s", b.FormatWeight(partial)),
		})
	}
	lines = append(lines, GoalLine{
		Kind:   GoalFinal,
		Weight: target,
		Label:  b.printer.Sprintf("final: %s", b.FormatWeight(target)),
	})
	return lines
}
