package dataflows

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrRateLimited is returned by adapters when the upstream provider
// answers with HTTP 429. Callers treat it like an empty result and must
// not retry within the same run.
var ErrRateLimited = errors.New("rate limited by data provider")

// PricePoint represents one day of OHLCV history
type PricePoint struct {
	Date     time.Time       `json:"date"`
	Open     decimal.Decimal `json:"open"`
	High     decimal.Decimal `json:"high"`
	Low      decimal.Decimal `json:"low"`
	Close    decimal.Decimal `json:"close"`
	AdjClose decimal.Decimal `json:"adj_close"`
	Volume   int64           `json:"volume"`
}

// Quote represents a batch snapshot quote for a ticker
type Quote struct {
	Ticker    string          `json:"ticker"`
	Price     decimal.Decimal `json:"price"`
	PrevClose decimal.Decimal `json:"prev_close"`
	PctChange decimal.Decimal `json:"pct_change"`
}

// NewsArticle represents a news article from any news source
type NewsArticle struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Source      string    `json:"source,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
	Themes      []string  `json:"themes,omitempty"`
}

// Filing represents one SEC EDGAR filing reference
type Filing struct {
	Form            string `json:"form"`
	FiledAt         string `json:"filedAt"`
	AccessionNumber string `json:"accessionNumber"`
	PrimaryDocument string `json:"primaryDocument"`
	ReportURL       string `json:"reportUrl"`
}

// MacroPoint is one observation of a macro time series
type MacroPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// MacroSeries represents a FRED time series
type MacroSeries struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Points []MacroPoint `json:"points"`
}

// MacroSnapshot bundles the default macro indicator set for one run
type MacroSnapshot struct {
	Series    []MacroSeries `json:"series"`
	FetchedAt time.Time     `json:"fetched_at"`
}

// IndicatorCount reports how many series carry at least one observation.
func (m *MacroSnapshot) IndicatorCount() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, s := range m.Series {
		if len(s.Points) > 0 {
			n++
		}
	}
	return n
}

// TickerMetadata holds static company metadata, immutable once fetched
type TickerMetadata struct {
	Sector   string `json:"sector"`
	Industry string `json:"industry"`
	LongName string `json:"long_name"`
}

// PriceSource provides historical prices and batch quotes
type PriceSource interface {
	FetchHistory(ctx context.Context, ticker string, days int, refresh bool) ([]PricePoint, error)
	BatchQuotes(ctx context.Context, tickers []string) ([]Quote, error)
}

// NewsSource provides company and sector news
type NewsSource interface {
	FetchNews(ctx context.Context, ticker string, days int, refresh bool) ([]NewsArticle, error)
	FetchSectorNews(ctx context.Context, subsector, region string, days int, refresh bool) ([]NewsArticle, error)
}

// FilingsSource provides SEC filing references
type FilingsSource interface {
	FetchFilings(ctx context.Context, ticker string, forms []string, limit int) ([]Filing, error)
}

// MacroSource provides macro-economic series
type MacroSource interface {
	FetchSnapshot(ctx context.Context, refresh bool) (*MacroSnapshot, error)
	FetchSeries(ctx context.Context, seriesID string, start, end time.Time) (*MacroSeries, error)
}

// MetadataSource provides static ticker metadata
type MetadataSource interface {
	GetMetadata(ctx context.Context, ticker string) (TickerMetadata, error)
}
