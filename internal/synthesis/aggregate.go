// Package synthesis turns specialist outputs into the persisted report
// and drives the evaluate/optimize refinement loop.
package synthesis

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jfields/renewlens/consts"
	"github.com/jfields/renewlens/internal/agents"
	"github.com/jfields/renewlens/internal/models"
)

// Recommendation thresholds over the evaluator's weighted total.
const (
	buyThreshold   = 0.70
	watchThreshold = 0.50
)

// Aggregate builds the executive summary from the stage outputs and the
// fetched context. Overall confidence is the weighted mean of role
// confidences; sub-scores come from the roles that own each dimension.
// With zero usable roles it returns an explicit degraded report rather
// than failing.
func Aggregate(rc *agents.Context, outputs map[string]models.SpecialistOutput) *models.ExecutiveSummary {
	report := &models.ExecutiveSummary{
		Ticker:      rc.Ticker,
		GeneratedAt: time.Now(),
		DataSources: models.DataSourceCounts{
			NewsArticles:     len(rc.News) + len(rc.SectorNews),
			SECFilings:       len(rc.Filings),
			MacroIndicators:  rc.Macro.IndicatorCount(),
			PriceHistoryDays: len(rc.Prices),
		},
	}

	usable := usableRoles(outputs)
	if len(usable) == 0 {
		report.Summary = fmt.Sprintf("No specialist analysis could be produced for %s; treat this report as a data-availability signal only.", rc.Ticker)
		report.Recommendation = models.RecommendWatch
		report.Confidence = 0.50
		report.MarketOutlook = ClassifyOutlook(report.Confidence)
		report.Citations = []string{}
		return report
	}

	var weightedSum, weightTotal float64
	agentsMap := make(map[string]models.AgentSummary, len(usable))
	for _, name := range usable {
		out := outputs[name]
		w := agents.RoleWeight(name)
		weightedSum += out.Confidence * w
		weightTotal += w
		agentsMap[name] = models.AgentSummary{
			Summary:    out.Summary,
			Confidence: out.Confidence,
			Weight:     w,
		}
	}
	report.Agents = agentsMap
	report.Confidence = weightedSum / weightTotal
	report.Scores = subScores(outputs, rc)
	report.Citations = collectCitations(rc)
	report.Summary = composeSummary(rc, outputs, usable)

	total := WeightedTotal(report.Scores)
	report.Recommendation = recommend(total)
	report.MarketOutlook = ClassifyOutlook(report.Confidence)
	return report
}

// usableRoles returns role names with a non-errored output, in stable
// registry order so summaries and citations are deterministic.
func usableRoles(outputs map[string]models.SpecialistOutput) []string {
	var names []string
	for _, role := range agents.Registry {
		if out, ok := outputs[role.Name]; ok && out.Err == "" {
			names = append(names, role.Name)
		}
	}
	return names
}

// subScores maps each report dimension to the confidence of the role
// that owns it; the news dimension blends news_policy and earnings.
func subScores(outputs map[string]models.SpecialistOutput, rc *agents.Context) models.Scores {
	conf := func(name string) float64 {
		if out, ok := outputs[name]; ok && out.Err == "" {
			return out.Confidence
		}
		return 0
	}

	newsScore := conf(consts.RoleNewsPolicy)
	if e := conf(consts.RoleEarnings); e > 0 {
		newsScore = (newsScore + e) / 2
	}

	macroScore := 0.0
	if rc.Macro != nil && rc.Macro.IndicatorCount() > 0 {
		macroScore = conf(consts.RoleMomentum)
	}

	return models.Scores{
		Valuation: conf(consts.RoleValuation),
		Momentum:  conf(consts.RoleMomentum),
		News:      newsScore,
		Macro:     macroScore,
	}
}

// collectCitations gathers article and filing URLs in first-seen order,
// deduplicated.
func collectCitations(rc *agents.Context) []string {
	seen := make(map[string]bool)
	citations := []string{}
	add := func(url string) {
		if url == "" || seen[url] {
			return
		}
		seen[url] = true
		citations = append(citations, url)
	}

	for _, a := range rc.News {
		add(a.URL)
	}
	for _, a := range rc.SectorNews {
		add(a.URL)
	}
	for _, f := range rc.Filings {
		add(f.ReportURL)
	}
	return citations
}

func composeSummary(rc *agents.Context, outputs map[string]models.SpecialistOutput, usable []string) string {
	var parts []string
	for _, name := range usable {
		parts = append(parts, outputs[name].Summary)
	}
	header := fmt.Sprintf("%s research synthesis (%d-day window, %d of %d analysts reporting).",
		rc.Ticker, rc.Days, len(usable), len(agents.Registry))
	return header + "\n\n" + strings.Join(parts, "\n")
}

func recommend(total float64) models.Recommendation {
	switch {
	case total >= buyThreshold:
		return models.RecommendBuy
	case total >= watchThreshold:
		return models.RecommendWatch
	default:
		return models.RecommendAvoid
	}
}

// ClassifyOutlook maps overall confidence to the coarse outlook label.
// Total over [0,1] and monotonic.
func ClassifyOutlook(confidence float64) models.Outlook {
	switch {
	case confidence >= 0.80:
		return models.OutlookBullish
	case confidence >= 0.60:
		return models.OutlookNeutral
	default:
		return models.OutlookBearish
	}
}

// SortedRoleNames is a helper for display layers that want a stable
// ordering of the agents map.
func SortedRoleNames(m map[string]models.AgentSummary) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
