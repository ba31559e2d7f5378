// Package export renders the briefing note and assembles the export pack.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/guptarohit/asciigraph"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/ops-cockpit/internal/kpi"
	"github.com/sells-group/ops-cockpit/internal/model"
	"github.com/sells-group/ops-cockpit/internal/pipeline"
	"github.com/sells-group/ops-cockpit/internal/recommend"
)

// Briefing limits.
const (
	HighlightCount = 6
	MaxHighlights  = 10
	chartHeight    = 8
	chartWidth     = 60
)

// Briefing is the one-page executive note.
type Briefing struct {
	Title       string
	Subtitle    string
	GeneratedAt time.Time
	Locale      string
	Summary     kpi.Summary
	Highlights  []string
	Weekly      []kpi.WeekPoint
}

// NewBriefing builds a briefing from a pipeline result. Highlights are the
// highest-risk runs in recommendation order.
func NewBriefing(res *pipeline.Result, locale string, now time.Time) Briefing {
	p := Printer(locale)
	b := Briefing{
		Title:       "Operational Controller Cockpit",
		Subtitle:    "Generated " + now.Format("2006-01-02 15:04"),
		GeneratedAt: now,
		Locale:      locale,
		Summary:     kpi.Summarize(res.Scored),
		Weekly:      kpi.WeeklyCostPerKm(res.Scored),
	}
	for i, idx := range recommend.Rank(res.Scored) {
		if i == HighlightCount {
			break
		}
		r := &res.Scored[idx]
		b.Highlights = append(b.Highlights, p.Sprintf("%s | %s | %s | %s: risk %s (%.0f), profit %s",
			r.Subsidiary, r.Activity, r.Contract, r.EquipmentID,
			r.RiskLevel, r.RiskScore, amount(p, r.Profit, 0)))
	}
	return b
}

// Printer returns a number printer for a cockpit locale such as "fr_qc" or "en".
func Printer(locale string) *message.Printer {
	return message.NewPrinter(localeTag(locale))
}

func localeTag(locale string) language.Tag {
	if strings.HasPrefix(strings.ToLower(locale), "en") {
		return language.English
	}
	return language.CanadianFrench
}

func amount(p *message.Printer, v model.Float, decimals int) string {
	if !v.Valid {
		return "n/a"
	}
	return p.Sprintf(fmt.Sprintf("%%.%df", decimals), v.Value)
}

// Markdown renders the briefing note.
func (b Briefing) Markdown() string {
	p := Printer(b.Locale)
	s := b.Summary

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n%s\n\n", b.Title, b.Subtitle)

	sb.WriteString("## Executive snapshot\n\n")
	margin := "n/a"
	if s.Margin.Valid {
		margin = p.Sprintf("%.1f%%", s.Margin.Value*100)
	}
	for _, ln := range []string{
		"Revenue: " + p.Sprintf("%.0f", s.Revenue),
		"Costs: " + p.Sprintf("%.0f", s.TotalCost),
		"Profit: " + p.Sprintf("%.0f", s.Profit),
		"Avg margin: " + margin,
		"Median cost/km: " + amount(p, s.CostPerKm, 2),
		"Median cost/hr: " + amount(p, s.CostPerHour, 2),
		"Median cost/m3: " + amount(p, s.CostPerM3, 2),
		"Total downtime (h): " + p.Sprintf("%.1f", s.DowntimeHours),
	} {
		fmt.Fprintf(&sb, "- %s\n", ln)
	}

	sb.WriteString("\n## Key highlights\n\n")
	if len(b.Highlights) == 0 {
		sb.WriteString("No runs scored.\n")
	}
	for i, h := range b.Highlights {
		if i == MaxHighlights {
			break
		}
		fmt.Fprintf(&sb, "- %s\n", h)
	}

	if chart := b.Chart(); chart != "" {
		fmt.Fprintf(&sb, "\n## Weekly trend\n\n```\n%s\n```\n", chart)
	}

	fmt.Fprintf(&sb, "\nGenerated: %s\n", b.GeneratedAt.Format(time.RFC3339))
	return sb.String()
}

// Chart plots the weekly median cost per km. Weeks without a defined value
// are skipped. It returns "" when there is nothing to plot.
func (b Briefing) Chart() string {
	var data []float64
	for _, w := range b.Weekly {
		if w.CostPerKm.Valid {
			data = append(data, w.CostPerKm.Value)
		}
	}
	if len(data) == 0 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(chartHeight),
		asciigraph.Width(chartWidth),
		asciigraph.Caption("Median cost per km (weekly)"),
	)
}
