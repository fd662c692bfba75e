package dataflows

import (
	"github.com/jfields/renewlens/internal/config"
)

// Bundle groups the external data adapters behind their source
// interfaces so the orchestrator can be wired with fakes in tests.
type Bundle struct {
	Prices   PriceSource
	News     NewsSource
	Filings  FilingsSource
	Macro    MacroSource
	Metadata MetadataSource
}

func NewBundle(cfg *config.Config) *Bundle {
	return &Bundle{
		Prices:   NewYahooClient(cfg),
		News:     NewNewsAPIClient(cfg),
		Filings:  NewEdgarClient(cfg),
		Macro:    NewFredClient(cfg),
		Metadata: NewMetadataClient(),
	}
}
