package dataflows

import (
	"context"
	"sync"

	"github.com/piquette/finance-go/equity"

	"github.com/jfields/renewlens/internal/watchlist"
)

// MetadataClient resolves static company metadata lazily and caches it
// in-process for the lifetime of the process. Entries are immutable once
// fetched.
type MetadataClient struct {
	mu    sync.RWMutex
	cache map[string]TickerMetadata
}

func NewMetadataClient() *MetadataClient {
	return &MetadataClient{
		cache: make(map[string]TickerMetadata),
	}
}

func (mc *MetadataClient) GetMetadata(ctx context.Context, ticker string) (TickerMetadata, error) {
	if err := ValidateSymbol(ticker); err != nil {
		return TickerMetadata{}, err
	}
	ticker = NormalizeSymbol(ticker)

	mc.mu.RLock()
	if md, ok := mc.cache[ticker]; ok {
		mc.mu.RUnlock()
		return md, nil
	}
	mc.mu.RUnlock()

	md := TickerMetadata{}

	// Yahoo carries the display name; sector/industry come from the
	// curated watchlist, which is authoritative for our coverage.
	if eq, err := equity.Get(ticker); err == nil && eq != nil {
		md.LongName = eq.LongName
		if md.LongName == "" {
			md.LongName = eq.ShortName
		}
	}
	if w, ok := watchlist.Lookup(ticker); ok {
		md.Sector = "Renewable Energy"
		md.Industry = w.Subsector
		if md.LongName == "" {
			md.LongName = w.Name
		}
	}

	mc.mu.Lock()
	mc.cache[ticker] = md
	mc.mu.Unlock()

	return md, nil
}
