package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jfields/renewlens/internal/config"
)

// renewableThemes tags articles with sector-specific topics so the
// news_policy specialist and the item router can key off them.
var renewableThemes = []string{
	"solar", "wind", "ev", "climate", "carbon", "subsidy", "policy",
	"tariff", "hydrogen", "storage",
}

// NewsAPIClient fetches company and sector news from NewsAPI. Without an
// API key it degrades to the Google News scraper for sector queries and
// to empty results for company queries.
type NewsAPIClient struct {
	client   *resty.Client
	cache    *CacheManager
	apiKey   string
	fallback *NewsScraperClient
}

func NewNewsAPIClient(cfg *config.Config) *NewsAPIClient {
	cacheDir := filepath.Join(cfg.DataCacheDir, "newsapi")
	cache := NewCacheManager(cacheDir, 2*time.Hour, cfg.CacheEnabled)

	client := resty.New()
	client.SetBaseURL("https://newsapi.org/v2")
	client.SetTimeout(30 * time.Second)

	return &NewsAPIClient{
		client:   client,
		cache:    cache,
		apiKey:   cfg.NewsAPIKey,
		fallback: NewNewsScraperClient(cfg),
	}
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// FetchNews returns recent articles mentioning the ticker. Missing key →
// empty result; rate limit → ErrRateLimited.
func (nc *NewsAPIClient) FetchNews(ctx context.Context, ticker string, days int, refresh bool) ([]NewsArticle, error) {
	if nc.apiKey == "" {
		return nil, nil
	}
	if err := ValidateSymbol(ticker); err != nil {
		return nil, err
	}
	ticker = NormalizeSymbol(ticker)

	cacheKey := map[string]interface{}{"ticker": ticker, "days": days}
	if refresh {
		nc.cache.Invalidate("newsapi", "company", cacheKey)
	}
	var cached []NewsArticle
	if nc.cache.Get("newsapi", "company", cacheKey, &cached) {
		return cached, nil
	}

	from := time.Now().AddDate(0, 0, -days).Format("2006-01-02")
	articles, err := nc.query(ctx, ticker+" stock", from)
	if err != nil {
		return nil, err
	}

	nc.cache.Set("newsapi", "company", cacheKey, articles)
	return articles, nil
}

// FetchSectorNews returns renewable-sector articles, optionally narrowed
// by subsector and region.
func (nc *NewsAPIClient) FetchSectorNews(ctx context.Context, subsector, region string, days int, refresh bool) ([]NewsArticle, error) {
	terms := []string{"renewable energy"}
	if subsector != "" {
		terms = append(terms, subsector)
	}
	if region != "" {
		terms = append(terms, region)
	}
	query := strings.Join(terms, " ")

	if nc.apiKey == "" {
		return nc.fallback.SearchNews(ctx, query, days)
	}

	cacheKey := map[string]interface{}{"query": query, "days": days}
	if refresh {
		nc.cache.Invalidate("newsapi", "sector", cacheKey)
	}
	var cached []NewsArticle
	if nc.cache.Get("newsapi", "sector", cacheKey, &cached) {
		return cached, nil
	}

	from := time.Now().AddDate(0, 0, -days).Format("2006-01-02")
	articles, err := nc.query(ctx, query, from)
	if err != nil {
		return nil, err
	}

	nc.cache.Set("newsapi", "sector", cacheKey, articles)
	return articles, nil
}

func (nc *NewsAPIClient) query(ctx context.Context, q, from string) ([]NewsArticle, error) {
	var result []NewsArticle
	err := WithRetry(DefaultRetryConfig(), func() error {
		resp, err := nc.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"q":        q,
				"from":     from,
				"language": "en",
				"sortBy":   "publishedAt",
				"pageSize": "50",
				"apiKey":   nc.apiKey,
			}).
			Get("/everything")
		if err != nil {
			return fmt.Errorf("failed to fetch news for %q: %w", q, err)
		}

		if resp.StatusCode() == http.StatusTooManyRequests {
			return ErrRateLimited
		}
		if resp.StatusCode() != http.StatusOK {
			return fmt.Errorf("NewsAPI error %d: %s", resp.StatusCode(), resp.String())
		}

		var payload newsAPIResponse
		if err := json.Unmarshal(resp.Body(), &payload); err != nil {
			return fmt.Errorf("failed to parse news response: %w", err)
		}

		result = make([]NewsArticle, 0, len(payload.Articles))
		for _, a := range payload.Articles {
			published, _ := time.Parse(time.RFC3339, a.PublishedAt)
			result = append(result, NewsArticle{
				Title:       a.Title,
				Description: a.Description,
				URL:         a.URL,
				Source:      a.Source.Name,
				PublishedAt: published,
				Themes:      ExtractThemes(a.Title + " " + a.Description),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ExtractThemes scans text for renewable-sector keywords.
func ExtractThemes(text string) []string {
	lower := strings.ToLower(text)
	var themes []string
	for _, kw := range renewableThemes {
		if strings.Contains(lower, kw) {
			themes = append(themes, kw)
		}
	}
	return themes
}
