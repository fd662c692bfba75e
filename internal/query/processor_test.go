package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jfields/renewlens/internal/models"
)

func TestParsePriceChart(t *testing.T) {
	p := NewProcessor()

	parsed := p.Parse("Show me FSLR's price chart for the last month")
	assert.Equal(t, models.IntentPriceChart, parsed.Intent)
	assert.Equal(t, []string{"FSLR"}, parsed.Parameters.Tickers)
	assert.Equal(t, "30d", parsed.Parameters.Timeframe)
	assert.Equal(t, "line", parsed.Parameters.ChartType)
	assert.Greater(t, parsed.Confidence, 0.8)
}

func TestParseComparison(t *testing.T) {
	p := NewProcessor()

	parsed := p.Parse("Compare ENPH vs RUN performance")
	assert.Equal(t, models.IntentComparison, parsed.Intent)
	assert.ElementsMatch(t, []string{"ENPH", "RUN"}, parsed.Parameters.Tickers)
	assert.Equal(t, "performance", parsed.Parameters.ComparisonType)
}

func TestParseCompanyNames(t *testing.T) {
	p := NewProcessor()

	parsed := p.Parse("latest news about first solar and enphase")
	assert.Equal(t, models.IntentNewsSentiment, parsed.Intent)
	assert.ElementsMatch(t, []string{"FSLR", "ENPH"}, parsed.Parameters.Tickers)
}

func TestParseCompanyNamesOrderStable(t *testing.T) {
	p := NewProcessor()

	// Name extraction follows table order, so repeated parses cannot
	// reshuffle which tickers survive downstream caps.
	for i := 0; i < 50; i++ {
		parsed := p.Parse("latest news about first solar and enphase and sunrun")
		assert.Equal(t, []string{"FSLR", "ENPH", "RUN"}, parsed.Parameters.Tickers)
	}
}

func TestParseSectorFallback(t *testing.T) {
	p := NewProcessor()

	parsed := p.Parse("how is the solar industry doing")
	assert.Equal(t, models.IntentSectorOverview, parsed.Intent)
	assert.Len(t, parsed.Parameters.Tickers, defaultTickerCount)
	assert.Equal(t, "solar", parsed.Parameters.Subsector)
}

func TestParseUnknownIntent(t *testing.T) {
	p := NewProcessor()

	parsed := p.Parse("hello there")
	assert.Equal(t, models.IntentUnknown, parsed.Intent)
	assert.Empty(t, parsed.Parameters.Tickers)
	assert.Equal(t, "30d", parsed.Parameters.Timeframe)
	assert.NotEmpty(t, parsed.Explanation)
}

func TestParseTimeframes(t *testing.T) {
	p := NewProcessor()

	cases := map[string]string{
		"FSLR chart for today":             "1d",
		"ENPH price trend over a week":     "7d",
		"RUN price trend this quarter":     "90d",
		"NEE price trend over 6 months":    "180d",
		"JKS historical price for a year":  "365d",
		"CSIQ price trend":                 "30d",
	}
	for q, want := range cases {
		parsed := p.Parse(q)
		assert.Equal(t, want, parsed.Parameters.Timeframe, "query: %s", q)
	}
}

func TestParseChartTypeAndMetrics(t *testing.T) {
	p := NewProcessor()

	parsed := p.Parse("plot price as a candlestick chart with volume and moving average for SEDG")
	assert.Equal(t, "candlestick", parsed.Parameters.ChartType)
	assert.Contains(t, parsed.Parameters.Metrics, "volume")
	assert.Contains(t, parsed.Parameters.Metrics, "moving_average")
	assert.Contains(t, parsed.Parameters.Tickers, "SEDG")
}

func TestParseFundamentalFilings(t *testing.T) {
	p := NewProcessor()

	parsed := p.Parse("show me the latest 10-K filings for FSLR")
	assert.Equal(t, models.IntentFundamental, parsed.Intent)
}

func TestConfidenceCapped(t *testing.T) {
	p := NewProcessor()

	parsed := p.Parse("compare FSLR vs ENPH performance over the last month")
	assert.LessOrEqual(t, parsed.Confidence, 1.0)
	assert.InDelta(t, 1.0, parsed.Confidence, 1e-9)
}

func TestTimeframeDays(t *testing.T) {
	assert.Equal(t, 7, TimeframeDays("7d"))
	assert.Equal(t, 180, TimeframeDays("180d"))
	assert.Equal(t, 365, TimeframeDays("ytd"))
	assert.Equal(t, 30, TimeframeDays("bogus"))
}
