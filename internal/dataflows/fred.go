package dataflows

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jfields/renewlens/internal/config"
)

// defaultMacroSeries is the indicator set fetched for every research run.
// Policy rate and CPI drive financing costs for capital-heavy renewables,
// industrial production proxies electricity demand.
var defaultMacroSeries = []struct {
	ID   string
	Name string
}{
	{"FEDFUNDS", "Federal Funds Effective Rate"},
	{"CPIAUCSL", "Consumer Price Index (All Urban)"},
	{"INDPRO", "Industrial Production Index"},
}

// FredClient fetches macro series from the FRED observations API.
// Without an API key it returns an empty snapshot so runs can proceed
// with the macro sub-score neutralized.
type FredClient struct {
	client *resty.Client
	cache  *CacheManager
	apiKey string
}

func NewFredClient(cfg *config.Config) *FredClient {
	cacheDir := filepath.Join(cfg.DataCacheDir, "fred")
	cache := NewCacheManager(cacheDir, 12*time.Hour, cfg.CacheEnabled)

	client := resty.New()
	client.SetBaseURL("https://api.stlouisfed.org/fred")
	client.SetTimeout(30 * time.Second)

	return &FredClient{client: client, cache: cache, apiKey: cfg.FredAPIKey}
}

type fredObservationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// FetchSnapshot fetches the default indicator set over the past year.
// Individual series failures degrade to empty series rather than failing
// the snapshot.
func (c *FredClient) FetchSnapshot(ctx context.Context, refresh bool) (*MacroSnapshot, error) {
	snapshot := &MacroSnapshot{FetchedAt: time.Now()}
	if c.apiKey == "" {
		return snapshot, nil
	}

	cacheKey := "default_set"
	if refresh {
		c.cache.Invalidate("fred", "snapshot", cacheKey)
	}
	var cached MacroSnapshot
	if c.cache.Get("fred", "snapshot", cacheKey, &cached) {
		return &cached, nil
	}

	end := time.Now()
	start := end.AddDate(-1, 0, 0)
	for _, def := range defaultMacroSeries {
		series, err := c.FetchSeries(ctx, def.ID, start, end)
		if err != nil {
			series = &MacroSeries{ID: def.ID, Name: def.Name}
		}
		if series.Name == "" {
			series.Name = def.Name
		}
		snapshot.Series = append(snapshot.Series, *series)
	}

	c.cache.Set("fred", "snapshot", cacheKey, snapshot)
	return snapshot, nil
}

// FetchSeries fetches one FRED series over [start, end]. FRED encodes
// missing observations as ".", those are skipped.
func (c *FredClient) FetchSeries(ctx context.Context, seriesID string, start, end time.Time) (*MacroSeries, error) {
	if c.apiKey == "" {
		return &MacroSeries{ID: seriesID}, nil
	}

	var body fredObservationsResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"series_id":         seriesID,
			"api_key":           c.apiKey,
			"file_type":         "json",
			"observation_start": start.Format("2006-01-02"),
			"observation_end":   end.Format("2006-01-02"),
		}).
		SetResult(&body).
		Get("/series/observations")
	if err != nil {
		return nil, fmt.Errorf("fetching FRED series %s: %w", seriesID, err)
	}
	if resp.StatusCode() == http.StatusTooManyRequests {
		return nil, fmt.Errorf("fred series %s: %w", seriesID, ErrRateLimited)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fred series %s: status %d", seriesID, resp.StatusCode())
	}

	series := &MacroSeries{ID: seriesID}
	for _, obs := range body.Observations {
		if obs.Value == "." {
			continue
		}
		v, err := strconv.ParseFloat(obs.Value, 64)
		if err != nil {
			continue
		}
		series.Points = append(series.Points, MacroPoint{Date: obs.Date, Value: v})
	}
	return series, nil
}
