// Package query parses free-text questions into a classified intent and
// extracted parameters for the natural-language graph.
package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jfields/renewlens/internal/models"
	"github.com/jfields/renewlens/internal/watchlist"
)

// intentTable is checked in order, first match wins. Earlier entries
// therefore outrank later ones when a query matches several.
var intentTable = []struct {
	intent   models.QueryIntent
	patterns []*regexp.Regexp
}{
	{models.IntentPriceChart, compileAll(
		`show.*price.*chart|chart.*price|plot.*price|price.*performance|stock.*chart`,
		`price.*over.*time|historical.*price|price.*trend`,
	)},
	{models.IntentComparison, compileAll(
		`compare.*vs|compare.*with|comparison.*between|vs\.|versus`,
		`which.*better|best.*performing|top.*stock|rank.*companies`,
	)},
	{models.IntentNewsSentiment, compileAll(
		`news.*sentiment|sentiment.*analysis|recent.*news|latest.*news`,
		`media.*coverage|press.*release|announcement|headline`,
	)},
	{models.IntentTechnical, compileAll(
		`technical.*analysis|indicators|moving.*average|rsi|macd`,
		`support.*resistance|trend.*analysis|momentum|volatility`,
	)},
	{models.IntentFundamental, compileAll(
		`fundamental|earnings|revenue|profit|margin|valuation`,
		`p/e.*ratio|financial.*health|balance.*sheet|cash.*flow`,
		`sec.*filing|10-k|10-q|annual.*report|quarterly.*report|filings`,
	)},
	{models.IntentSectorOverview, compileAll(
		`sector.*overview|industry.*analysis|renewable.*energy.*sector`,
		`solar.*industry|wind.*industry|clean.*energy.*market`,
	)},
}

// timeframeTable maps query phrasing to a timeframe code, first match
// wins. The multi-month entries sit above the bare "month" pattern so
// "3 months" resolves to a quarter instead of a month.
var timeframeTable = []struct {
	pattern *regexp.Regexp
	code    string
}{
	{regexp.MustCompile(`today|1\s*day`), "1d"},
	{regexp.MustCompile(`week|7\s*days?`), "7d"},
	{regexp.MustCompile(`6\s*months?|half\s*year`), "180d"},
	{regexp.MustCompile(`12\s*months?|year`), "365d"},
	{regexp.MustCompile(`quarter|3\s*months?`), "90d"},
	{regexp.MustCompile(`ytd|year.*to.*date`), "ytd"},
	{regexp.MustCompile(`month|30\s*days?`), "30d"},
}

var chartTypeTable = []struct {
	pattern *regexp.Regexp
	kind    string
}{
	{regexp.MustCompile(`candlestick|ohlc`), "candlestick"},
	{regexp.MustCompile(`bar.*chart`), "bar"},
	{regexp.MustCompile(`area.*chart`), "area"},
	{regexp.MustCompile(`line.*chart|line`), "line"},
}

var metricTable = []struct {
	metric  string
	pattern *regexp.Regexp
}{
	{"price", regexp.MustCompile(`price|stock.*price`)},
	{"volume", regexp.MustCompile(`volume|trading.*volume`)},
	{"returns", regexp.MustCompile(`returns?|performance|gain|loss`)},
	{"volatility", regexp.MustCompile(`volatility|risk`)},
	{"correlation", regexp.MustCompile(`correlation|correlated`)},
	{"moving_average", regexp.MustCompile(`moving.*average|ma\b|sma|ema`)},
}

var subsectorTable = []struct {
	subsector string
	pattern   *regexp.Regexp
}{
	{"solar", regexp.MustCompile(`solar|photovoltaic|pv`)},
	{"wind", regexp.MustCompile(`wind|turbine`)},
	{"utility", regexp.MustCompile(`utility|utilities`)},
	{"storage", regexp.MustCompile(`battery|storage|energy.*storage`)},
}

// companyNames maps common company-name phrasings to their tickers,
// scanned in order so extraction is stable across runs.
var companyNames = []struct {
	name   string
	ticker string
}{
	{"first solar", "FSLR"},
	{"enphase", "ENPH"},
	{"sunrun", "RUN"},
	{"nextera", "NEE"},
	{"brookfield", "BEPC"},
	{"vestas", "VWDRY"},
	{"orsted", "DNNGY"},
}

var sectorTerms = []string{"solar", "wind", "renewable", "clean energy"}

// defaultTickerCount bounds the sector fallback so a vague query does
// not fan out over the whole watchlist.
const defaultTickerCount = 5

// Processor turns raw query text into a ParsedQuery. Stateless and
// deterministic.
type Processor struct {
	knownTickers []string
}

func NewProcessor() *Processor {
	return &Processor{knownTickers: watchlist.Tickers()}
}

// Parse classifies the query and extracts its parameters.
func (p *Processor) Parse(raw string) *models.ParsedQuery {
	query := strings.ToLower(raw)

	intent := p.extractIntent(query)
	params := models.QueryParameters{
		Tickers:        p.extractTickers(query),
		Timeframe:      extractByTable(query, timeframeTable, "30d"),
		ChartType:      extractChartType(query),
		Metrics:        extractMetrics(query),
		Subsector:      extractSubsector(query),
		ComparisonType: extractComparisonType(query),
	}

	return &models.ParsedQuery{
		Intent:      intent,
		Parameters:  params,
		Confidence:  calculateConfidence(intent, params, query),
		RawQuery:    raw,
		Explanation: explain(intent, params),
	}
}

func (p *Processor) extractIntent(query string) models.QueryIntent {
	for _, entry := range intentTable {
		for _, re := range entry.patterns {
			if re.MatchString(query) {
				return entry.intent
			}
		}
	}
	return models.IntentUnknown
}

func (p *Processor) extractTickers(query string) []string {
	var tickers []string
	seen := make(map[string]bool)
	add := func(t string) {
		if !seen[t] {
			seen[t] = true
			tickers = append(tickers, t)
		}
	}

	for _, ticker := range p.knownTickers {
		re := regexp.MustCompile(`\b` + strings.ToLower(ticker) + `\b`)
		if re.MatchString(query) {
			add(ticker)
		}
	}

	for _, entry := range companyNames {
		if strings.Contains(query, entry.name) {
			add(entry.ticker)
		}
	}

	// Sector terms without a specific ticker fall back to a default
	// watchlist subset.
	if len(tickers) == 0 {
		for _, term := range sectorTerms {
			if strings.Contains(query, term) {
				n := defaultTickerCount
				if n > len(p.knownTickers) {
					n = len(p.knownTickers)
				}
				return append([]string{}, p.knownTickers[:n]...)
			}
		}
	}
	return tickers
}

func extractByTable(query string, table []struct {
	pattern *regexp.Regexp
	code    string
}, fallback string) string {
	for _, entry := range table {
		if entry.pattern.MatchString(query) {
			return entry.code
		}
	}
	return fallback
}

func extractChartType(query string) string {
	for _, entry := range chartTypeTable {
		if entry.pattern.MatchString(query) {
			return entry.kind
		}
	}
	return "line"
}

func extractMetrics(query string) []string {
	var metrics []string
	for _, entry := range metricTable {
		if entry.pattern.MatchString(query) {
			metrics = append(metrics, entry.metric)
		}
	}
	return metrics
}

func extractSubsector(query string) string {
	for _, entry := range subsectorTable {
		if entry.pattern.MatchString(query) {
			return entry.subsector
		}
	}
	return ""
}

var (
	performanceRe = regexp.MustCompile(`performance|returns|gains`)
	valuationRe   = regexp.MustCompile(`valuation|p/e|price.*ratio`)
	riskRe        = regexp.MustCompile(`volatility|risk`)
)

func extractComparisonType(query string) string {
	switch {
	case performanceRe.MatchString(query):
		return "performance"
	case valuationRe.MatchString(query):
		return "valuation"
	case riskRe.MatchString(query):
		return "risk"
	default:
		return ""
	}
}

// calculateConfidence is additive: base 0.5, +0.3 for a recognized
// intent, +0.2 for explicit tickers, +0.1 for an explicit timeframe
// word, capped at 1.0.
func calculateConfidence(intent models.QueryIntent, params models.QueryParameters, query string) float64 {
	confidence := 0.5
	if intent != models.IntentUnknown {
		confidence += 0.3
	}
	if len(params.Tickers) > 0 {
		confidence += 0.2
	}
	for _, word := range []string{"day", "week", "month", "year"} {
		if strings.Contains(query, word) {
			confidence += 0.1
			break
		}
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

func explain(intent models.QueryIntent, params models.QueryParameters) string {
	subject := strings.Join(params.Tickers, ", ")
	if subject == "" {
		subject = "renewable energy stocks"
	}

	switch intent {
	case models.IntentPriceChart:
		return fmt.Sprintf("I'll create a price chart for %s over the %s", subject, params.Timeframe)
	case models.IntentComparison:
		return fmt.Sprintf("I'll compare %s across key metrics", subject)
	case models.IntentNewsSentiment:
		return fmt.Sprintf("I'll analyze recent news sentiment for %s", subject)
	case models.IntentTechnical:
		return fmt.Sprintf("I'll perform technical analysis on %s", subject)
	case models.IntentFundamental:
		return fmt.Sprintf("I'll analyze fundamentals for %s", subject)
	case models.IntentSectorOverview:
		return "I'll provide an overview of the renewable energy sector"
	default:
		return "I'll try to provide relevant renewable energy market analysis"
	}
}

// TimeframeDays converts a timeframe code into a lookback in days.
func TimeframeDays(code string) int {
	switch code {
	case "1d":
		return 1
	case "7d":
		return 7
	case "90d":
		return 90
	case "180d":
		return 180
	case "365d", "ytd":
		return 365
	default:
		return 30
	}
}

func compileAll(patterns ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		res = append(res, regexp.MustCompile(p))
	}
	return res
}
