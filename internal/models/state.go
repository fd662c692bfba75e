package models

import (
	"github.com/jfields/renewlens/internal/dataflows"
)

// RoutedItem is a news article tagged with its coarse category
// (earnings, news or market).
type RoutedItem struct {
	Category string               `json:"type"`
	Item     dataflows.NewsArticle `json:"item"`
}

// FetchResults accumulates the fan-out fetch phase. A failed or
// unavailable adapter leaves its field empty; fetch never aborts a run.
type FetchResults struct {
	Prices     []dataflows.PricePoint
	News       []dataflows.NewsArticle
	SectorNews []dataflows.NewsArticle
	Filings    []dataflows.Filing
	Macro      *dataflows.MacroSnapshot
}

// ResearchState is threaded through every node of the research graph.
// It is owned by exactly one graph execution; concurrent runs for
// different tickers each get their own instance.
type ResearchState struct {
	Ticker   string
	Days     int
	Refresh  bool
	Metadata dataflows.TickerMetadata

	Fetched     FetchResults
	Routed      []RoutedItem
	Specialists map[string]SpecialistOutput

	// Refinement loop working set. Report survives optimize→synthesize
	// cycles so optimizer edits are never discarded.
	Report     *ExecutiveSummary
	Score      float64
	Critique   string
	Iterations int
}

func NewResearchState(ticker string, days int, refresh bool, meta dataflows.TickerMetadata) *ResearchState {
	return &ResearchState{
		Ticker:   ticker,
		Days:     days,
		Refresh:  refresh,
		Metadata: meta,
	}
}
