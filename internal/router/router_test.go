package router

import (
	"testing"

	"github.com/jfields/renewlens/internal/dataflows"
)

func TestRouteCategories(t *testing.T) {
	items := []dataflows.NewsArticle{
		{Title: "Q2 earnings beat", Description: ""},
		{Title: "Policy update on solar subsidies", Description: ""},
		{Title: "Analyst upgrades FSLR", Description: ""},
	}

	routed := Route(items)
	if len(routed) != 3 {
		t.Fatalf("expected 3 routed items, got %d", len(routed))
	}

	want := []string{CategoryEarnings, CategoryNews, CategoryMarket}
	for i, w := range want {
		if routed[i].Category != w {
			t.Errorf("item %d: expected %s, got %s", i, w, routed[i].Category)
		}
	}
}

func TestRoutePriorityOrder(t *testing.T) {
	// Earnings keywords outrank policy keywords when both match.
	item := dataflows.NewsArticle{Title: "Guidance cut after new tariff ruling"}
	if got := Classify(item); got != CategoryEarnings {
		t.Errorf("expected earnings to win, got %s", got)
	}
}

func TestRouteCaseInsensitive(t *testing.T) {
	item := dataflows.NewsArticle{Title: "EARNINGS CALL SCHEDULED"}
	if got := Classify(item); got != CategoryEarnings {
		t.Errorf("expected earnings, got %s", got)
	}
}

func TestRouteDescriptionMatches(t *testing.T) {
	item := dataflows.NewsArticle{
		Title:       "Company update",
		Description: "New regulatory framework announced",
	}
	if got := Classify(item); got != CategoryNews {
		t.Errorf("expected news, got %s", got)
	}
}

func TestRouteEmptyInput(t *testing.T) {
	if routed := Route(nil); len(routed) != 0 {
		t.Errorf("expected empty output, got %d items", len(routed))
	}
}

func TestFilterByCategory(t *testing.T) {
	routed := Route([]dataflows.NewsArticle{
		{Title: "Q1 guidance raised"},
		{Title: "Market wrap"},
		{Title: "Q3 earnings preview"},
	})

	earnings := FilterByCategory(routed, CategoryEarnings)
	if len(earnings) != 2 {
		t.Fatalf("expected 2 earnings items, got %d", len(earnings))
	}
	if earnings[0].Title != "Q1 guidance raised" {
		t.Errorf("order not preserved: %s", earnings[0].Title)
	}
}
