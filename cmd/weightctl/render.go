package main

import (
	"fmt"
	"strings"

	"github.com/2beens/weightstats/internal/weight"
	"github.com/2beens/weightstats/internal/weight/service"

	"github.com/charmbracelet/lipgloss"
)

var (
	subtle   = lipgloss.AdaptiveColor{Light: "#6c6f85", Dark: "#a6adc8"}
	accent   = lipgloss.AdaptiveColor{Light: "#1e66f5", Dark: "#89b4fa"}
	positive = lipgloss.AdaptiveColor{Light: "#40a02b", Dark: "#a6e3a1"}
	warning  = lipgloss.AdaptiveColor{Light: "#fe640b", Dark: "#fab387"}

	titleStyle = lipgloss.NewStyle().Foreground(accent).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(subtle)
	okStyle    = lipgloss.NewStyle().Foreground(positive)
	warnStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	indexStyle = lipgloss.NewStyle().Foreground(subtle).Width(5).Align(lipgloss.Right)
	cellStyle  = lipgloss.NewStyle().PaddingLeft(2)
)

func renderEntries(b *weight.Builder, entries []service.Entry) string {
	if len(entries) == 0 {
		return mutedStyle.Render("no entries yet") + "\n"
	}

	var sb strings.Builder
	title := fmt.Sprintf("%d entries", len(entries))
	if len(entries) == 1 {
		title = "1 entry"
	}
	sb.WriteString(titleStyle.Render(title) + "\n")
	for _, e := range entries {
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			indexStyle.Render(fmt.Sprintf("#%d", e.Index)),
			cellStyle.Render(b.FormatDate(e.Date)),
			cellStyle.Render(b.FormatWeight(e.Weight)),
		))
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderPoints(b *weight.Builder, points []weight.Point) string {
	var sb strings.Builder
	for i, p := range points {
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			indexStyle.Render(fmt.Sprintf("%d", i)),
			cellStyle.Render(b.FormatDate(p.Date)),
			cellStyle.Render(b.FormatWeight(p.Weight)),
		))
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderChart(b *weight.Builder, chart *service.ChartView) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf("history (%s)", chart.Granularity)) + "\n")
	if len(chart.Historical) == 0 {
		sb.WriteString(mutedStyle.Render("no entries yet") + "\n")
	}
	sb.WriteString(renderPoints(b, chart.Historical))

	if len(chart.Projected) > 0 {
		sb.WriteString(titleStyle.Render("projection") + "\n")
		sb.WriteString(renderPoints(b, chart.Projected))
	}

	for _, line := range chart.GoalLines {
		sb.WriteString(mutedStyle.Render("goal "+line.Label) + "\n")
	}
	if chart.YAxisFloor != nil {
		sb.WriteString(mutedStyle.Render("y axis from "+b.FormatWeight(*chart.YAxisFloor)) + "\n")
	}

	sb.WriteString(renderCompletion(chart.Completion.Date != nil, chart.Completion.Text))
	return sb.String()
}

func renderProjection(b *weight.Builder, p *service.Projection) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("target "+b.FormatWeight(p.Target)) + "\n")
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("fitted over %d entries", p.Points)) + "\n")
	if p.SlopePerDay != nil {
		sb.WriteString(mutedStyle.Render(fmt.Sprintf("trend %s per week", b.FormatWeight(*p.SlopePerDay*7))) + "\n")
	}
	sb.WriteString(renderCompletion(p.Date != nil, p.Text))
	return sb.String()
}

func renderCompletion(projected bool, text string) string {
	if projected {
		return okStyle.Render(text) + "\n"
	}
	return warnStyle.Render(text) + "\n"
}
