package charts

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfields/renewlens/internal/dataflows"
)

func series(closes ...float64) []dataflows.PricePoint {
	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	out := make([]dataflows.PricePoint, 0, len(closes))
	for i, c := range closes {
		out = append(out, dataflows.PricePoint{
			Date:  base.AddDate(0, 0, i),
			Close: decimal.NewFromFloat(c),
		})
	}
	return out
}

func TestPriceChart(t *testing.T) {
	spec := PriceChart("FSLR", series(10, 11, 12), "line", "30d")

	require.Len(t, spec.Series, 1)
	assert.Equal(t, "FSLR", spec.Series[0].Name)
	assert.Equal(t, []float64{10, 11, 12}, spec.Series[0].Y)
	assert.Equal(t, "2026-04-01", spec.Series[0].X[0])
}

func TestComparisonChartNormalizes(t *testing.T) {
	spec := ComparisonChart([]string{"ENPH", "RUN"}, map[string][]dataflows.PricePoint{
		"ENPH": series(50, 55),
		"RUN":  series(10, 9),
	}, "30d")

	require.Len(t, spec.Series, 2)
	assert.Equal(t, "ENPH", spec.Series[0].Name)
	assert.Equal(t, "RUN", spec.Series[1].Name)
	for _, s := range spec.Series {
		assert.Equal(t, 100.0, s.Y[0], "series %s must start at 100", s.Name)
	}
	assert.InDelta(t, 110.0, spec.Series[0].Y[1], 1e-9)
	assert.InDelta(t, 90.0, spec.Series[1].Y[1], 1e-9)
}

func TestComparisonChartSkipsEmpty(t *testing.T) {
	spec := ComparisonChart([]string{"NEE", "JKS"}, map[string][]dataflows.PricePoint{
		"NEE": series(80, 82),
		"JKS": nil,
	}, "7d")
	assert.Len(t, spec.Series, 1)
}

func TestMultiPriceChartKeepsTickerOrder(t *testing.T) {
	histories := map[string][]dataflows.PricePoint{
		"RUN":  series(10, 9),
		"FSLR": series(100, 101),
		"ENPH": series(50, 55),
	}

	spec := MultiPriceChart([]string{"FSLR", "ENPH", "RUN"}, histories, "line", "30d")
	require.Len(t, spec.Series, 3)
	assert.Equal(t, "FSLR", spec.Series[0].Name)
	assert.Equal(t, "ENPH", spec.Series[1].Name)
	assert.Equal(t, "RUN", spec.Series[2].Name)
}

func TestTechnicalChartSMA(t *testing.T) {
	spec := TechnicalChart("FSLR", series(1, 2, 3, 4, 5), []int{3, 10}, "30d")

	// Price series plus SMA3; SMA10 skipped (window exceeds data).
	require.Len(t, spec.Series, 2)
	smaSeries := spec.Series[1]
	assert.Equal(t, "SMA3", smaSeries.Name)
	assert.Equal(t, []float64{2, 3, 4}, smaSeries.Y)
	assert.Len(t, smaSeries.X, 3)
}

func TestSectorOverviewChart(t *testing.T) {
	spec := SectorOverviewChart([]dataflows.Quote{
		{Ticker: "FSLR", PctChange: decimal.NewFromFloat(1.5)},
		{Ticker: "ENPH", PctChange: decimal.NewFromFloat(-2.25)},
	})

	require.Len(t, spec.Series, 1)
	assert.Equal(t, []string{"FSLR", "ENPH"}, spec.Series[0].X)
	assert.Equal(t, []float64{1.5, -2.25}, spec.Series[0].Y)
	assert.Equal(t, "bar", spec.Type)
}
