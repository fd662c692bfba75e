package dataflows

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"

	"github.com/jfields/renewlens/internal/config"
)

// YahooClient serves price history and batch quotes from Yahoo Finance.
type YahooClient struct {
	cache *CacheManager
}

func NewYahooClient(cfg *config.Config) *YahooClient {
	cacheDir := filepath.Join(cfg.DataCacheDir, "yahoo")
	return &YahooClient{
		cache: NewCacheManager(cacheDir, 24*time.Hour, cfg.CacheEnabled),
	}
}

// FetchHistory returns up to `days` of daily OHLCV rows, oldest first.
// An unknown ticker yields an empty slice, not an error.
func (yc *YahooClient) FetchHistory(ctx context.Context, ticker string, days int, refresh bool) ([]PricePoint, error) {
	if err := ValidateSymbol(ticker); err != nil {
		return nil, err
	}
	ticker = NormalizeSymbol(ticker)

	end := time.Now()
	start := end.AddDate(0, 0, -days)

	cacheKey := map[string]interface{}{
		"symbol": ticker,
		"start":  start.Format("2006-01-02"),
		"end":    end.Format("2006-01-02"),
	}

	if refresh {
		yc.cache.Invalidate("yahoo", "history", cacheKey)
	}

	var cached []PricePoint
	if yc.cache.Get("yahoo", "history", cacheKey, &cached) {
		return cached, nil
	}

	var result []PricePoint
	err := WithRetry(DefaultRetryConfig(), func() error {
		params := &chart.Params{
			Symbol:   ticker,
			Start:    datetime.New(&start),
			End:      datetime.New(&end),
			Interval: datetime.OneDay,
		}

		iter := chart.Get(params)

		result = make([]PricePoint, 0)
		for iter.Next() {
			bar := iter.Bar()
			result = append(result, PricePoint{
				Date:     time.Unix(int64(bar.Timestamp), 0),
				Open:     bar.Open,
				High:     bar.High,
				Low:      bar.Low,
				Close:    bar.Close,
				AdjClose: bar.AdjClose,
				Volume:   int64(bar.Volume),
			})
		}

		if err := iter.Err(); err != nil {
			return fmt.Errorf("failed to get history for %s: %w", ticker, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	yc.cache.Set("yahoo", "history", cacheKey, result)
	return result, nil
}

// BatchQuotes returns a snapshot quote per ticker. Tickers that fail to
// resolve are skipped rather than failing the batch.
func (yc *YahooClient) BatchQuotes(ctx context.Context, tickers []string) ([]Quote, error) {
	quotes := make([]Quote, 0, len(tickers))
	for _, t := range tickers {
		if err := ValidateSymbol(t); err != nil {
			continue
		}
		q, err := quote.Get(NormalizeSymbol(t))
		if err != nil || q == nil {
			continue
		}

		price := decimal.NewFromFloat(q.RegularMarketPrice)
		prev := decimal.NewFromFloat(q.RegularMarketPreviousClose)
		pct := decimal.Zero
		if !prev.IsZero() {
			pct = price.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100))
		}

		quotes = append(quotes, Quote{
			Ticker:    NormalizeSymbol(t),
			Price:     price,
			PrevClose: prev,
			PctChange: pct,
		})
	}
	return quotes, nil
}
