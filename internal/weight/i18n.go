package weight

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	SeriesHistorical = 0
	SeriesProjected  = 1
)

func init() {
	for key, msg := range map[string]string{
		"no target set":            "nenhuma meta definida",
		"no trend":                 "sem tendência",
		"projected completion: %s": "conclusão prevista: %s",
		"partial: %s":              "parcial: %s",
		"final: %s":                "final: %s",
	} {
		if err := message.SetString(language.BrazilianPortuguese, key, msg); err != nil {
			panic(fmt.Sprintf("set pt-BR message %q: %s", key, err))
		}
	}
}

// Tooltip describes the chart point under the cursor.
type Tooltip struct {
	SeriesIndex int   `json:"seriesIndex"`
	PointIndex  int   `json:"pointIndex"`
	Point       Point `json:"point"`
}

// Tooltip returns the tooltip for a point of the given series, if it exists.
func (c Chart) Tooltip(seriesIndex, pointIndex int) (Tooltip, bool) {
	var series []Point
	switch seriesIndex {
	case SeriesHistorical:
		series = c.Historical
	case SeriesProjected:
		series = c.Projected
	default:
		return Tooltip{}, false
	}
	if pointIndex < 0 || pointIndex >= len(series) {
		return Tooltip{}, false
	}
	return Tooltip{
		SeriesIndex: seriesIndex,
		PointIndex:  pointIndex,
		Point:       series[pointIndex],
	}, true
}

func (b *Builder) FormatTooltip(t Tooltip) string {
	return fmt.Sprintf("%s<br/><strong>%s</strong>", b.FormatDate(t.Point.Date), b.FormatWeight(t.Point.Weight))
}

func (b *Builder) FormatWeight(w float64) string {
	return b.printer.Sprintf("%v kg", number.Decimal(w, number.MaxFractionDigits(1)))
}

func (b *Builder) FormatDate(t time.Time) string {
	return t.Format(dateLayout(b.options.Language))
}

func dateLayout(tag language.Tag) string {
	if tag == language.AmericanEnglish {
		return "01/02/2006"
	}
	base, _ := tag.Base()
	switch base.String() {
	case "en", "pt", "es", "fr", "it", "de", "nl":
		return "02/01/2006"
	default:
		return "2006-01-02"
	}
}
