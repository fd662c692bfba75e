// Package charts assembles renderer-agnostic chart data for the
// natural-language analysis paths. Rendering itself is left to the
// presentation layer.
package charts

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jfields/renewlens/internal/dataflows"
	"github.com/jfields/renewlens/internal/models"
)

const dateLayout = "2006-01-02"

// PriceChart builds a close-price series for one ticker.
func PriceChart(ticker string, prices []dataflows.PricePoint, chartType, timeframe string) *models.ChartSpec {
	x := make([]string, 0, len(prices))
	y := make([]float64, 0, len(prices))
	for _, p := range prices {
		x = append(x, p.Date.Format(dateLayout))
		v, _ := p.Close.Float64()
		y = append(y, v)
	}

	return &models.ChartSpec{
		Type:      chartType,
		Title:     fmt.Sprintf("%s Close Price (%s)", ticker, timeframe),
		Timeframe: timeframe,
		Series:    []models.ChartSeries{{Name: ticker, X: x, Y: y}},
	}
}

// MultiPriceChart plots several tickers' raw close series on one chart.
// Series appear in ticker order, not map order.
func MultiPriceChart(tickers []string, histories map[string][]dataflows.PricePoint, chartType, timeframe string) *models.ChartSpec {
	spec := &models.ChartSpec{
		Type:      chartType,
		Title:     fmt.Sprintf("Close Prices (%s)", timeframe),
		Timeframe: timeframe,
	}

	for _, ticker := range tickers {
		prices := histories[ticker]
		if len(prices) == 0 {
			continue
		}
		x := make([]string, 0, len(prices))
		y := make([]float64, 0, len(prices))
		for _, p := range prices {
			x = append(x, p.Date.Format(dateLayout))
			v, _ := p.Close.Float64()
			y = append(y, v)
		}
		spec.Series = append(spec.Series, models.ChartSeries{Name: ticker, X: x, Y: y})
	}
	return spec
}

// ComparisonChart normalizes each ticker's close series to 100 at the
// window start so different price levels compare on one axis. Series
// appear in ticker order, not map order.
func ComparisonChart(tickers []string, histories map[string][]dataflows.PricePoint, timeframe string) *models.ChartSpec {
	spec := &models.ChartSpec{
		Type:      "line",
		Title:     fmt.Sprintf("Normalized Performance (%s, start = 100)", timeframe),
		Timeframe: timeframe,
	}

	hundred := decimal.NewFromInt(100)
	for _, ticker := range tickers {
		prices := histories[ticker]
		if len(prices) == 0 {
			continue
		}
		base := prices[0].Close
		if base.IsZero() {
			continue
		}

		x := make([]string, 0, len(prices))
		y := make([]float64, 0, len(prices))
		for _, p := range prices {
			x = append(x, p.Date.Format(dateLayout))
			v, _ := p.Close.Div(base).Mul(hundred).Float64()
			y = append(y, v)
		}
		spec.Series = append(spec.Series, models.ChartSeries{Name: ticker, X: x, Y: y})
	}
	return spec
}

// TechnicalChart overlays simple moving averages on the close series.
// Windows larger than the series are skipped.
func TechnicalChart(ticker string, prices []dataflows.PricePoint, smaWindows []int, timeframe string) *models.ChartSpec {
	spec := PriceChart(ticker, prices, "line", timeframe)
	spec.Title = fmt.Sprintf("%s Technical View (%s)", ticker, timeframe)

	for _, window := range smaWindows {
		if window <= 0 || window > len(prices) {
			continue
		}
		x, y := sma(prices, window)
		spec.Series = append(spec.Series, models.ChartSeries{
			Name: fmt.Sprintf("SMA%d", window),
			X:    x,
			Y:    y,
		})
	}
	return spec
}

// SectorOverviewChart is a bar chart of day-over-day percent moves from
// a batch quote snapshot.
func SectorOverviewChart(quotes []dataflows.Quote) *models.ChartSpec {
	spec := &models.ChartSpec{
		Type:  "bar",
		Title: "Sector Snapshot: Daily % Change",
	}

	x := make([]string, 0, len(quotes))
	y := make([]float64, 0, len(quotes))
	for _, q := range quotes {
		x = append(x, q.Ticker)
		v, _ := q.PctChange.Float64()
		y = append(y, v)
	}
	spec.Series = []models.ChartSeries{{Name: "pct_change", X: x, Y: y}}
	return spec
}

// sma computes a simple moving average over close prices. The first
// window-1 points are dropped rather than padded.
func sma(prices []dataflows.PricePoint, window int) ([]string, []float64) {
	x := make([]string, 0, len(prices)-window+1)
	y := make([]float64, 0, len(prices)-window+1)

	sum := decimal.Zero
	div := decimal.NewFromInt(int64(window))
	for i, p := range prices {
		sum = sum.Add(p.Close)
		if i >= window {
			sum = sum.Sub(prices[i-window].Close)
		}
		if i >= window-1 {
			x = append(x, p.Date.Format(dateLayout))
			v, _ := sum.Div(div).Float64()
			y = append(y, v)
		}
	}
	return x, y
}
