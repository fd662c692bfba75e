package models

import (
	"time"
)

// Recommendation buckets an overall evaluation score into an action label.
type Recommendation string

const (
	RecommendBuy   Recommendation = "BUY"
	RecommendWatch Recommendation = "WATCH"
	RecommendAvoid Recommendation = "AVOID"
)

// Outlook is the coarse market-outlook label derived from overall confidence.
type Outlook string

const (
	OutlookBullish Outlook = "Bullish"
	OutlookNeutral Outlook = "Neutral/Watchlist"
	OutlookBearish Outlook = "Bearish"
)

// Scores holds the per-dimension sub-scores of a report, each in [0,1].
type Scores struct {
	Valuation float64 `json:"valuation"`
	Momentum  float64 `json:"momentum"`
	News      float64 `json:"news"`
	Macro     float64 `json:"macro"`
}

// AgentSummary is the per-role slice of a report: what the specialist said,
// how confident it was, and its aggregation weight.
type AgentSummary struct {
	Summary    string  `json:"summary"`
	Confidence float64 `json:"confidence"`
	Weight     float64 `json:"weight"`
}

// DataSourceCounts records how much raw material backed a report.
type DataSourceCounts struct {
	NewsArticles     int `json:"news_articles"`
	SECFilings       int `json:"sec_filings"`
	MacroIndicators  int `json:"macro_indicators"`
	PriceHistoryDays int `json:"price_history_days"`
}

// ExecutiveSummary is the persisted per-ticker report artifact. It is
// mutable only between the synthesize step and graph termination (the
// optimizer edits summary and confidence in place); once serialized it is
// never modified.
type ExecutiveSummary struct {
	Ticker         string                  `json:"ticker"`
	Summary        string                  `json:"summary"`
	Scores         Scores                  `json:"scores"`
	Recommendation Recommendation          `json:"recommendation"`
	Confidence     float64                 `json:"confidence"`
	Citations      []string                `json:"citations"`
	DataSources    DataSourceCounts        `json:"data_sources"`
	Agents         map[string]AgentSummary `json:"agents,omitempty"`
	MarketOutlook  Outlook                 `json:"market_outlook,omitempty"`
	GeneratedAt    time.Time               `json:"generated_at"`
}

// SpecialistOutput is one analyst role's contribution. Immutable once the
// specialist stage returns; refinement loops never touch these.
type SpecialistOutput struct {
	Role       string  `json:"role"`
	Summary    string  `json:"summary"`
	Confidence float64 `json:"confidence"`
	Err        string  `json:"error,omitempty"`
}
