package dataflows

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/jfields/renewlens/internal/config"
)

// NewsScraperClient is the keyless fallback news source: it scrapes
// Google News search results. Best-effort only; an empty page is an
// empty result, never an error.
type NewsScraperClient struct {
	client *resty.Client
	cache  *CacheManager
}

func NewNewsScraperClient(cfg *config.Config) *NewsScraperClient {
	cacheDir := filepath.Join(cfg.DataCacheDir, "news_scraper")
	cache := NewCacheManager(cacheDir, 2*time.Hour, cfg.CacheEnabled)

	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "Mozilla/5.0 (compatible; renewlens/1.0)")

	return &NewsScraperClient{
		client: client,
		cache:  cache,
	}
}

// SearchNews scrapes Google News for articles matching the query within
// the lookback window.
func (ns *NewsScraperClient) SearchNews(ctx context.Context, query string, days int) ([]NewsArticle, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}

	cacheKey := map[string]interface{}{"query": query, "days": days}
	var cached []NewsArticle
	if ns.cache.Get("google_news", "search", cacheKey, &cached) {
		return cached, nil
	}

	end := time.Now()
	start := end.AddDate(0, 0, -days)
	searchURL := ns.buildSearchURL(query, start, end)

	var result []NewsArticle
	err := WithRetry(DefaultRetryConfig(), func() error {
		resp, err := ns.client.R().SetContext(ctx).Get(searchURL)
		if err != nil {
			return fmt.Errorf("failed to fetch Google News: %w", err)
		}
		if resp.StatusCode() == http.StatusTooManyRequests {
			return ErrRateLimited
		}
		if resp.StatusCode() != http.StatusOK {
			return fmt.Errorf("HTTP error %d when fetching Google News", resp.StatusCode())
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
		if err != nil {
			return fmt.Errorf("failed to parse HTML: %w", err)
		}

		result = ns.parseResults(doc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	ns.cache.Set("google_news", "search", cacheKey, result)
	return result, nil
}

func (ns *NewsScraperClient) buildSearchURL(query string, start, end time.Time) string {
	q := query + fmt.Sprintf(" after:%s before:%s",
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	return fmt.Sprintf("https://news.google.com/search?q=%s&hl=en&gl=US&ceid=US:en",
		url.QueryEscape(q))
}

func (ns *NewsScraperClient) parseResults(doc *goquery.Document) []NewsArticle {
	var articles []NewsArticle

	doc.Find("article").Each(func(i int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Find("h3").Text())
		if title == "" {
			title = strings.TrimSpace(s.Find("h4").Text())
		}
		if title == "" {
			return
		}

		href, ok := s.Find("a").First().Attr("href")
		if !ok {
			return
		}

		source := strings.TrimSpace(s.Find("div[data-n-tid]").Text())
		if source == "" {
			source = "Google News"
		}

		articles = append(articles, NewsArticle{
			Title:       title,
			Description: strings.TrimSpace(s.Find("span").Last().Text()),
			URL:         ns.cleanURL(href),
			Source:      source,
			PublishedAt: time.Time{},
			Themes:      ExtractThemes(title),
		})
	})

	return articles
}

// cleanURL unwraps Google News redirect links where possible.
func (ns *NewsScraperClient) cleanURL(raw string) string {
	if strings.Contains(raw, "url=") {
		parts := strings.Split(raw, "url=")
		if len(parts) > 1 {
			if decoded, err := url.QueryUnescape(parts[1]); err == nil {
				return decoded
			}
		}
	}
	if strings.HasPrefix(raw, "./") {
		return "https://news.google.com/" + strings.TrimPrefix(raw, "./")
	}
	return raw
}
