package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jfields/renewlens/internal/config"
)

// EdgarClient fetches filing metadata from the SEC EDGAR submissions API.
// EDGAR requires a descriptive User-Agent with contact info on every
// request and throttles aggressively without one.
type EdgarClient struct {
	client *resty.Client
	cache  *CacheManager
}

func NewEdgarClient(cfg *config.Config) *EdgarClient {
	cacheDir := filepath.Join(cfg.DataCacheDir, "edgar")
	cache := NewCacheManager(cacheDir, 6*time.Hour, cfg.CacheEnabled)

	client := resty.New()
	client.SetBaseURL("https://data.sec.gov")
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", cfg.SECUserAgent)
	client.SetHeader("Accept-Encoding", "gzip, deflate")

	return &EdgarClient{client: client, cache: cache}
}

// tickerMap is the shape of EDGAR's company_tickers.json index.
type tickerMap map[string]struct {
	CIK    int    `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

type recentFilings struct {
	AccessionNumber []string `json:"accessionNumber"`
	FilingDate      []string `json:"filingDate"`
	Form            []string `json:"form"`
	PrimaryDocument []string `json:"primaryDocument"`
}

type submissionsResponse struct {
	CIK     string `json:"cik"`
	Name    string `json:"name"`
	Filings struct {
		Recent recentFilings `json:"recent"`
	} `json:"filings"`
}

// FetchFilings returns recent filings for ticker restricted to the given
// form types, newest first. An unknown ticker (foreign ADRs mostly) is
// not an error and yields an empty slice.
func (c *EdgarClient) FetchFilings(ctx context.Context, ticker string, forms []string, limit int) ([]Filing, error) {
	symbol := NormalizeSymbol(ticker)
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}

	cacheKey := fmt.Sprintf("%s:%s:%d", symbol, strings.Join(forms, ","), limit)
	var cached []Filing
	if c.cache.Get("edgar", "filings", cacheKey, &cached) {
		return cached, nil
	}

	cik, err := c.lookupCIK(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if cik == "" {
		log.Printf("[EDGAR] no CIK mapping for %s, skipping filings", symbol)
		return nil, nil
	}

	var subs submissionsResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&subs).
		Get(fmt.Sprintf("/submissions/CIK%s.json", cik))
	if err != nil {
		return nil, fmt.Errorf("fetching submissions for %s: %w", symbol, err)
	}
	if resp.StatusCode() == http.StatusTooManyRequests {
		return nil, fmt.Errorf("edgar submissions for %s: %w", symbol, ErrRateLimited)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("edgar submissions for %s: status %d", symbol, resp.StatusCode())
	}

	filings := collectFilings(subs.Filings.Recent, forms, limit, cik)

	c.cache.Set("edgar", "filings", cacheKey, filings)
	return filings, nil
}

// collectFilings walks EDGAR's parallel arrays newest first. A malformed
// response can leave the arrays ragged, so it indexes no further than
// the shortest required one.
func collectFilings(recent recentFilings, forms []string, limit int, cik string) []Filing {
	wanted := make(map[string]bool, len(forms))
	for _, f := range forms {
		wanted[strings.ToUpper(f)] = true
	}

	n := len(recent.Form)
	if len(recent.FilingDate) < n {
		n = len(recent.FilingDate)
	}
	if len(recent.AccessionNumber) < n {
		n = len(recent.AccessionNumber)
	}

	filings := make([]Filing, 0, limit)
	for i := 0; i < n; i++ {
		if len(filings) >= limit {
			break
		}
		form := recent.Form[i]
		if len(wanted) > 0 && !wanted[strings.ToUpper(form)] {
			continue
		}
		accession := recent.AccessionNumber[i]
		doc := ""
		if i < len(recent.PrimaryDocument) {
			doc = recent.PrimaryDocument[i]
		}
		filings = append(filings, Filing{
			Form:            form,
			FiledAt:         recent.FilingDate[i],
			AccessionNumber: accession,
			PrimaryDocument: doc,
			ReportURL:       buildFilingURL(cik, accession, doc),
		})
	}
	return filings
}

// lookupCIK resolves a ticker to its zero-padded 10-digit CIK using the
// company_tickers.json index, cached for a day since it rarely changes.
func (c *EdgarClient) lookupCIK(ctx context.Context, symbol string) (string, error) {
	var index tickerMap
	if !c.cache.Get("edgar", "cik_index", "all", &index) {
		resp, err := c.client.R().
			SetContext(ctx).
			Get("https://www.sec.gov/files/company_tickers.json")
		if err != nil {
			return "", fmt.Errorf("fetching CIK index: %w", err)
		}
		if resp.IsError() {
			return "", fmt.Errorf("fetching CIK index: status %d", resp.StatusCode())
		}
		if err := json.Unmarshal(resp.Body(), &index); err != nil {
			return "", fmt.Errorf("parsing CIK index: %w", err)
		}
		c.cache.Set("edgar", "cik_index", "all", index)
	}

	for _, entry := range index {
		if strings.EqualFold(entry.Ticker, symbol) {
			return fmt.Sprintf("%010d", entry.CIK), nil
		}
	}
	return "", nil
}

func buildFilingURL(cik, accession, doc string) string {
	if doc == "" {
		return ""
	}
	stripped := strings.ReplaceAll(accession, "-", "")
	cikTrim := strings.TrimLeft(cik, "0")
	return fmt.Sprintf("https://www.sec.gov/Archives/edgar/data/%s/%s/%s", cikTrim, stripped, doc)
}
