// Package router classifies fetched news items into coarse categories
// so specialists and downstream consumers can filter by topic.
package router

import (
	"strings"

	"github.com/jfields/renewlens/internal/dataflows"
	"github.com/jfields/renewlens/internal/models"
)

const (
	CategoryEarnings = "earnings"
	CategoryNews     = "news"
	CategoryMarket   = "market"
)

// category tables are checked in order, first match wins. Substring
// stems ("subsid", "regulat") deliberately cover plural and -ion forms.
var categoryTable = []struct {
	category string
	keywords []string
}{
	{CategoryEarnings, []string{"earnings", "guidance", "q1", "q2", "q3", "q4"}},
	{CategoryNews, []string{"policy", "tariff", "subsid", "ira", "regulat"}},
}

// Route tags each article with its category. Classification is keyword
// based over title+description, case insensitive, defaulting to market.
// Deterministic, no side effects, empty input yields empty output.
func Route(items []dataflows.NewsArticle) []models.RoutedItem {
	routed := make([]models.RoutedItem, 0, len(items))
	for _, item := range items {
		routed = append(routed, models.RoutedItem{
			Category: Classify(item),
			Item:     item,
		})
	}
	return routed
}

// Classify returns the category for a single article.
func Classify(item dataflows.NewsArticle) string {
	text := strings.ToLower(item.Title + " " + item.Description)
	for _, entry := range categoryTable {
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				return entry.category
			}
		}
	}
	return CategoryMarket
}

// FilterByCategory returns the items routed to the given category,
// preserving order.
func FilterByCategory(routed []models.RoutedItem, category string) []dataflows.NewsArticle {
	var out []dataflows.NewsArticle
	for _, r := range routed {
		if r.Category == category {
			out = append(out, r.Item)
		}
	}
	return out
}
