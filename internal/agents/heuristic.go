package agents

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/jfields/renewlens/consts"
	"github.com/jfields/renewlens/internal/models"
	"github.com/jfields/renewlens/internal/router"
)

// HeuristicConfig holds the documented constants of the deterministic
// confidence heuristic. Confidence = Base, plus NumericBonus when the
// summary carries numeric evidence, plus TrendBonus when it makes a
// directional call, plus up to LengthBonus scaled by summary length.
// These feed the user-visible overall confidence directly, so changing
// them changes recommendations.
type HeuristicConfig struct {
	Base          float64
	NumericBonus  float64
	TrendBonus    float64
	LengthBonus   float64
	LengthDivisor int
}

func DefaultHeuristicConfig() HeuristicConfig {
	return HeuristicConfig{
		Base:          0.35,
		NumericBonus:  0.25,
		TrendBonus:    0.20,
		LengthBonus:   0.20,
		LengthDivisor: 400,
	}
}

var trendWords = []string{
	"uptrend", "downtrend", "upward", "downward", "gaining", "declining",
	"momentum", "rally", "sell-off", "breakout",
}

// HeuristicBackend is the deterministic reference backend. It writes each
// role's summary from the raw context and derives confidence from the
// text it produced.
type HeuristicBackend struct {
	cfg HeuristicConfig
}

func NewHeuristicBackend(cfg HeuristicConfig) *HeuristicBackend {
	return &HeuristicBackend{cfg: cfg}
}

func (h *HeuristicBackend) Analyze(ctx context.Context, role Role, rc *Context) (models.SpecialistOutput, error) {
	var summary string
	switch role.Name {
	case consts.RoleNewsPolicy:
		summary = h.newsPolicySummary(rc)
	case consts.RoleEarnings:
		summary = h.earningsSummary(rc)
	case consts.RoleMarketTechnical:
		summary = h.technicalSummary(rc)
	case consts.RoleValuation:
		summary = h.valuationSummary(rc)
	case consts.RoleMomentum:
		summary = h.momentumSummary(rc)
	default:
		return models.SpecialistOutput{}, fmt.Errorf("unknown role %q", role.Name)
	}

	return models.SpecialistOutput{
		Role:       role.Name,
		Summary:    summary,
		Confidence: h.Confidence(summary),
	}, nil
}

// Confidence derives a [0,1] score from a summary text.
func (h *HeuristicBackend) Confidence(summary string) float64 {
	if strings.TrimSpace(summary) == "" {
		return 0
	}

	conf := h.cfg.Base

	if strings.ContainsFunc(summary, unicode.IsDigit) {
		conf += h.cfg.NumericBonus
	}

	lower := strings.ToLower(summary)
	for _, w := range trendWords {
		if strings.Contains(lower, w) {
			conf += h.cfg.TrendBonus
			break
		}
	}

	lengthShare := float64(len(summary)) / float64(h.cfg.LengthDivisor)
	if lengthShare > 1 {
		lengthShare = 1
	}
	conf += h.cfg.LengthBonus * lengthShare

	if conf > 1 {
		conf = 1
	}
	return conf
}

func (h *HeuristicBackend) newsPolicySummary(rc *Context) string {
	policyItems := router.FilterByCategory(rc.Routed, router.CategoryNews)

	var b strings.Builder
	fmt.Fprintf(&b, "Reviewed %d company articles and %d sector headlines for %s over %d days.",
		len(rc.News), len(rc.SectorNews), rc.Ticker, rc.Days)
	if len(policyItems) > 0 {
		fmt.Fprintf(&b, " %d items carry policy or regulatory signals, led by %q.",
			len(policyItems), policyItems[0].Title)
	}
	if themes := collectThemes(rc); len(themes) > 0 {
		fmt.Fprintf(&b, " Dominant themes: %s.", strings.Join(themes, ", "))
	}
	if len(rc.News) == 0 && len(rc.SectorNews) == 0 {
		b.WriteString(" No news coverage available in the window.")
	}
	return b.String()
}

func (h *HeuristicBackend) earningsSummary(rc *Context) string {
	earningsItems := router.FilterByCategory(rc.Routed, router.CategoryEarnings)

	var b strings.Builder
	fmt.Fprintf(&b, "%d SEC filings on record for %s", len(rc.Filings), rc.Ticker)
	if len(rc.Filings) > 0 {
		forms := make([]string, 0, len(rc.Filings))
		for _, f := range rc.Filings {
			forms = append(forms, f.Form)
		}
		fmt.Fprintf(&b, " (%s), most recent filed %s", strings.Join(forms, ", "), rc.Filings[0].FiledAt)
	}
	b.WriteString(".")
	if len(earningsItems) > 0 {
		fmt.Fprintf(&b, " %d headlines reference earnings or guidance, led by %q.",
			len(earningsItems), earningsItems[0].Title)
	}
	return b.String()
}

func (h *HeuristicBackend) technicalSummary(rc *Context) string {
	if len(rc.Prices) < 2 {
		return fmt.Sprintf("Insufficient price history for %s to assess trend.", rc.Ticker)
	}

	first := rc.Prices[0].Close
	last := rc.Prices[len(rc.Prices)-1].Close
	change := pctChange(first, last)

	direction := "downtrend"
	if last.GreaterThan(first) {
		direction = "uptrend"
	}
	return fmt.Sprintf("%s closed at %s over %d sessions, a %s%% move confirming a %s from the window open of %s.",
		rc.Ticker, last.StringFixed(2), len(rc.Prices), change.StringFixed(2), direction, first.StringFixed(2))
}

func (h *HeuristicBackend) valuationSummary(rc *Context) string {
	if len(rc.Prices) == 0 {
		return fmt.Sprintf("No price data to place %s in its trading range.", rc.Ticker)
	}

	low, high := rc.Prices[0].Close, rc.Prices[0].Close
	for _, p := range rc.Prices[1:] {
		if p.Close.LessThan(low) {
			low = p.Close
		}
		if p.Close.GreaterThan(high) {
			high = p.Close
		}
	}
	last := rc.Prices[len(rc.Prices)-1].Close

	position := "mid-range"
	span := high.Sub(low)
	if span.IsPositive() {
		frac, _ := last.Sub(low).Div(span).Float64()
		switch {
		case frac >= 0.75:
			position = "near the top of its range"
		case frac <= 0.25:
			position = "near the bottom of its range"
		}
	}
	return fmt.Sprintf("%s trades at %s, %s (window low %s, high %s).",
		rc.Ticker, last.StringFixed(2), position, low.StringFixed(2), high.StringFixed(2))
}

func (h *HeuristicBackend) momentumSummary(rc *Context) string {
	if len(rc.Prices) < 2 {
		return fmt.Sprintf("Insufficient price history for %s to measure momentum.", rc.Ticker)
	}

	upDays := 0
	for i := 1; i < len(rc.Prices); i++ {
		if rc.Prices[i].Close.GreaterThan(rc.Prices[i-1].Close) {
			upDays++
		}
	}
	total := len(rc.Prices) - 1
	share := float64(upDays) / float64(total)

	label := "fading momentum"
	if share >= 0.5 {
		label = "gaining momentum"
	}
	return fmt.Sprintf("%s rose on %d of %d sessions (%.0f%%), %s across the lookback window.",
		rc.Ticker, upDays, total, share*100, label)
}

func collectThemes(rc *Context) []string {
	seen := make(map[string]bool)
	var themes []string
	for _, a := range rc.News {
		for _, th := range a.Themes {
			if !seen[th] {
				seen[th] = true
				themes = append(themes, th)
			}
		}
	}
	for _, a := range rc.SectorNews {
		for _, th := range a.Themes {
			if !seen[th] {
				seen[th] = true
				themes = append(themes, th)
			}
		}
	}
	if len(themes) > 5 {
		themes = themes[:5]
	}
	return themes
}

func pctChange(from, to decimal.Decimal) decimal.Decimal {
	if from.IsZero() {
		return decimal.Zero
	}
	return to.Sub(from).Div(from).Mul(decimal.NewFromInt(100))
}
