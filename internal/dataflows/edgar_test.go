package dataflows

import (
	"testing"
)

func TestCollectFilingsFiltersAndLimits(t *testing.T) {
	recent := recentFilings{
		AccessionNumber: []string{"0001-24-000001", "0001-24-000002", "0001-24-000003"},
		FilingDate:      []string{"2026-04-30", "2026-03-15", "2026-02-01"},
		Form:            []string{"10-Q", "8-K", "10-K"},
		PrimaryDocument: []string{"q1.htm", "pr.htm", "annual.htm"},
	}

	filings := collectFilings(recent, []string{"10-q", "10-K"}, 5, "0000123456")
	if len(filings) != 2 {
		t.Fatalf("expected 2 filings, got %d", len(filings))
	}
	if filings[0].Form != "10-Q" || filings[0].FiledAt != "2026-04-30" {
		t.Errorf("unexpected first filing: %+v", filings[0])
	}
	if filings[1].Form != "10-K" {
		t.Errorf("unexpected second filing: %+v", filings[1])
	}

	capped := collectFilings(recent, nil, 1, "0000123456")
	if len(capped) != 1 {
		t.Errorf("expected limit of 1, got %d", len(capped))
	}
}

func TestCollectFilingsToleratesRaggedArrays(t *testing.T) {
	// A truncated response must not panic; entries without a date or
	// accession number are dropped.
	recent := recentFilings{
		AccessionNumber: []string{"0001-24-000001"},
		FilingDate:      []string{"2026-04-30", "2026-03-15"},
		Form:            []string{"10-Q", "8-K", "10-K"},
		PrimaryDocument: nil,
	}

	filings := collectFilings(recent, nil, 5, "0000123456")
	if len(filings) != 1 {
		t.Fatalf("expected 1 filing from ragged arrays, got %d", len(filings))
	}
	if filings[0].PrimaryDocument != "" {
		t.Errorf("expected empty primary document, got %q", filings[0].PrimaryDocument)
	}
}
