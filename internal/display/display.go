// Package display renders reports, delta tables, and query responses
// for the terminal.
package display

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jfields/renewlens/internal/history"
	"github.com/jfields/renewlens/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#10B981")).
		Background(lipgloss.Color("#1F2937")).
		Padding(0, 1).
		MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#3B82F6"))

	panelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#3B82F6")).
		Padding(1, 2).
		Width(80)

	buyStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981"))
	watchStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B"))
	avoidStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))

	upStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	downStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	flatStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	errStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
)

func recommendationStyle(rec models.Recommendation) lipgloss.Style {
	switch rec {
	case models.RecommendBuy:
		return buyStyle
	case models.RecommendAvoid:
		return avoidStyle
	default:
		return watchStyle
	}
}

func directionStyle(direction string) lipgloss.Style {
	switch direction {
	case history.DirectionUp:
		return upStyle
	case history.DirectionDown:
		return downStyle
	default:
		return flatStyle
	}
}

func directionArrow(direction string) string {
	switch direction {
	case history.DirectionUp:
		return "↑"
	case history.DirectionDown:
		return "↓"
	default:
		return "→"
	}
}

// RenderReport formats a full research report.
func RenderReport(report *models.ExecutiveSummary) string {
	if report == nil {
		return errStyle.Render("no report available")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Research Report: %s", report.Ticker)))
	b.WriteString("\n")

	rec := recommendationStyle(report.Recommendation).Render(string(report.Recommendation))
	b.WriteString(fmt.Sprintf("Recommendation: %s   Outlook: %s   Confidence: %.1f%%\n\n",
		rec, report.MarketOutlook, report.Confidence*100))

	b.WriteString(panelStyle.Render(report.Summary))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Sub-scores"))
	b.WriteString(fmt.Sprintf("\n  valuation %.2f   momentum %.2f   news %.2f   macro %.2f\n\n",
		report.Scores.Valuation, report.Scores.Momentum, report.Scores.News, report.Scores.Macro))

	if len(report.Agents) > 0 {
		b.WriteString(sectionStyle.Render("Analyst Desk"))
		b.WriteString("\n")
		for _, role := range sortedAgentNames(report.Agents) {
			agent := report.Agents[role]
			b.WriteString(fmt.Sprintf("  %-18s conf %.2f  weight %.1f\n", role, agent.Confidence, agent.Weight))
			b.WriteString(dimStyle.Render(wrapIndent(agent.Summary, "    ", 74)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(sectionStyle.Render("Data Sources"))
	b.WriteString(fmt.Sprintf("\n  news %d   filings %d   macro %d   price days %d\n",
		report.DataSources.NewsArticles, report.DataSources.SECFilings,
		report.DataSources.MacroIndicators, report.DataSources.PriceHistoryDays))

	if len(report.Citations) > 0 {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render("Citations"))
		b.WriteString("\n")
		for _, c := range report.Citations {
			b.WriteString(dimStyle.Render("  " + c))
			b.WriteString("\n")
		}
	}

	if !report.GeneratedAt.IsZero() {
		b.WriteString(dimStyle.Render(fmt.Sprintf("\nGenerated at %s\n", report.GeneratedAt.Format("2006-01-02 15:04 MST"))))
	}
	return b.String()
}

// RenderDeltaTable formats the current-vs-previous comparison table.
func RenderDeltaTable(rows []history.Delta, previousDir string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Confidence Deltas"))
	b.WriteString("\n")
	if previousDir != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf("baseline: archive/%s\n\n", previousDir)))
	} else {
		b.WriteString(dimStyle.Render("baseline: none (first run)\n\n"))
	}

	if len(rows) == 0 {
		b.WriteString("no current reports; run an analysis first\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("  %-7s %-18s %10s %9s  %s\n", "Ticker", "Outlook", "Conf %", "Delta %", "Interpretation"))
	for _, row := range rows {
		line := fmt.Sprintf("  %-7s %-18s %10.1f %s %+7.1f  %s",
			row.Ticker, row.Outlook, row.Confidence,
			directionArrow(row.Direction), row.Delta,
			truncate(row.Interpretation, 60))
		b.WriteString(directionStyle(row.Direction).Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderRunHistory formats the per-archive timeline.
func RenderRunHistory(records []history.RunRecord) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Run History"))
	b.WriteString("\n")

	if len(records) == 0 {
		b.WriteString("no archived runs yet\n")
		return b.String()
	}

	for _, rec := range records {
		line := fmt.Sprintf("  %s  %-7s %6.1f%%  %s %+6.1f  %s",
			rec.RunDate.Format("2006-01-02 15:04"), rec.Ticker, rec.Confidence,
			directionArrow(rec.Direction), rec.Delta, rec.Outlook)
		b.WriteString(directionStyle(rec.Direction).Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderEnvelope formats a natural-language query response.
func RenderEnvelope(resp *models.ResponseEnvelope) string {
	if resp == nil {
		return errStyle.Render("no response")
	}
	if !resp.Success {
		out := errStyle.Render("Query failed: " + resp.Error)
		if resp.Explanation != "" {
			out += "\n" + dimStyle.Render(resp.Explanation)
		}
		return out
	}

	var b strings.Builder
	if resp.Explanation != "" {
		b.WriteString(dimStyle.Render(resp.Explanation))
		b.WriteString("\n\n")
	}
	if resp.Summary != "" {
		b.WriteString(resp.Summary)
		b.WriteString("\n")
	}

	if resp.Chart != nil {
		b.WriteString("\n")
		b.WriteString(renderChart(resp.Chart))
	}

	for _, crew := range resp.CrewAnalyses {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render("Analyst Desk: " + crew.Ticker))
		b.WriteString("\n")
		if crew.Error != "" {
			b.WriteString(errStyle.Render("  " + crew.Error))
			b.WriteString("\n")
			continue
		}
		for _, role := range sortedOutputNames(crew.Outputs) {
			out := crew.Outputs[role]
			b.WriteString(fmt.Sprintf("  %-18s conf %.2f\n", role, out.Confidence))
			b.WriteString(dimStyle.Render(wrapIndent(out.Summary, "    ", 74)))
			b.WriteString("\n")
		}
	}

	if len(resp.NewsHeadlines) > 0 {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render("Headlines"))
		b.WriteString("\n")
		for _, article := range resp.NewsHeadlines {
			b.WriteString("  - " + article.Title + "\n")
		}
	}

	if len(resp.FilingsData) > 0 {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render("SEC Filings"))
		b.WriteString("\n")
		for _, filing := range resp.FilingsData {
			b.WriteString(fmt.Sprintf("  %-5s filed %s  %s\n", filing.Form, filing.FiledAt, filing.ReportURL))
		}
	}
	if resp.FilingAnalysis != "" {
		b.WriteString(dimStyle.Render("  " + resp.FilingAnalysis))
		b.WriteString("\n")
	}

	if resp.DetailedReport != nil {
		b.WriteString("\n")
		b.WriteString(RenderReport(resp.DetailedReport))
	}
	return b.String()
}

// renderChart sketches a chart spec as text: the terminal surface has
// no plotting, so it lists series with their latest values.
func renderChart(chart *models.ChartSpec) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render(fmt.Sprintf("%s (%s, %s)", chart.Title, chart.Type, chart.Timeframe)))
	b.WriteString("\n")
	for _, series := range chart.Series {
		if len(series.Y) == 0 {
			continue
		}
		last := series.Y[len(series.Y)-1]
		b.WriteString(fmt.Sprintf("  %-20s %d points, latest %.2f\n", series.Name, len(series.Y), last))
	}
	return b.String()
}

func sortedAgentNames(agents map[string]models.AgentSummary) []string {
	names := make([]string, 0, len(agents))
	for name := range agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedOutputNames(outputs map[string]models.SpecialistOutput) []string {
	names := make([]string, 0, len(outputs))
	for name := range outputs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

func wrapIndent(text, indent string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return indent
	}

	var b strings.Builder
	line := indent
	for _, word := range words {
		if len(line)+len(word)+1 > width && line != indent {
			b.WriteString(line)
			b.WriteString("\n")
			line = indent
		}
		if line != indent {
			line += " "
		}
		line += word
	}
	b.WriteString(line)
	return b.String()
}
