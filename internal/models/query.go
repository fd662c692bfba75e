package models

import (
	"github.com/jfields/renewlens/internal/dataflows"
)

// QueryIntent is the classified purpose of a free-text query.
type QueryIntent string

const (
	IntentPriceChart     QueryIntent = "price_chart"
	IntentComparison     QueryIntent = "comparison"
	IntentNewsSentiment  QueryIntent = "news_sentiment"
	IntentTechnical      QueryIntent = "technical_analysis"
	IntentFundamental    QueryIntent = "fundamental_analysis"
	IntentSectorOverview QueryIntent = "sector_overview"
	IntentUnknown        QueryIntent = "unknown"
)

// QueryParameters holds everything extracted from a query besides intent.
type QueryParameters struct {
	Tickers        []string `json:"tickers"`
	Timeframe      string   `json:"timeframe"`
	ChartType      string   `json:"chart_type"`
	Metrics        []string `json:"metrics"`
	Subsector      string   `json:"subsector,omitempty"`
	ComparisonType string   `json:"comparison_type,omitempty"`
}

// ParsedQuery is the full result of natural-language query parsing.
// Ephemeral: created per call, discarded with the response.
type ParsedQuery struct {
	Intent      QueryIntent     `json:"intent"`
	Parameters  QueryParameters `json:"parameters"`
	Confidence  float64         `json:"confidence"`
	RawQuery    string          `json:"raw_query"`
	Explanation string          `json:"explanation"`
}

// ChartSeries is one named line/bar series of a chart.
type ChartSeries struct {
	Name string    `json:"name"`
	X    []string  `json:"x"`
	Y    []float64 `json:"y"`
}

// ChartSpec is a renderer-agnostic chart description. The presentation
// layer decides how to draw it; the core only assembles the data.
type ChartSpec struct {
	Type      string        `json:"type"`
	Title     string        `json:"title"`
	Timeframe string        `json:"timeframe"`
	Series    []ChartSeries `json:"series"`
}

// CrewAnalysis bundles one ticker's specialist outputs for the NL
// news-sentiment path.
type CrewAnalysis struct {
	Ticker  string                      `json:"ticker"`
	Outputs map[string]SpecialistOutput `json:"outputs,omitempty"`
	Error   string                      `json:"error,omitempty"`
}

// ResponseEnvelope is the uniform response of the NL graph. Success is
// false iff any upstream node recorded an error.
type ResponseEnvelope struct {
	Success        bool                    `json:"success"`
	AnalysisType   string                  `json:"analysis_type,omitempty"`
	Summary        string                  `json:"summary,omitempty"`
	Explanation    string                  `json:"explanation,omitempty"`
	Chart          *ChartSpec              `json:"chart,omitempty"`
	CrewAnalyses   []CrewAnalysis          `json:"crew_analyses,omitempty"`
	NewsHeadlines  []dataflows.NewsArticle `json:"news_headlines,omitempty"`
	DetailedReport *ExecutiveSummary       `json:"detailed_report,omitempty"`
	FilingsData    []dataflows.Filing      `json:"filings_data,omitempty"`
	FilingAnalysis string                  `json:"filing_analysis,omitempty"`
	Error          string                  `json:"error,omitempty"`
}

// NLState is threaded through the natural-language graph nodes.
type NLState struct {
	Query  string
	Parsed *ParsedQuery
	Route  string

	AnalysisType   string
	Summary        string
	Chart          *ChartSpec
	CrewAnalyses   []CrewAnalysis
	NewsHeadlines  []dataflows.NewsArticle
	DetailedReport *ExecutiveSummary
	FilingsData    []dataflows.Filing
	FilingAnalysis string
	Err            string

	Response *ResponseEnvelope
}
