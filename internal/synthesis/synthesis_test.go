package synthesis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfields/renewlens/consts"
	"github.com/jfields/renewlens/internal/agents"
	"github.com/jfields/renewlens/internal/dataflows"
	"github.com/jfields/renewlens/internal/models"
)

func fullOutputs(conf float64) map[string]models.SpecialistOutput {
	outputs := make(map[string]models.SpecialistOutput)
	for _, role := range agents.Registry {
		outputs[role.Name] = models.SpecialistOutput{
			Role:       role.Name,
			Summary:    "Directional view with 42% supporting figures.",
			Confidence: conf,
		}
	}
	return outputs
}

func testContext() *agents.Context {
	return &agents.Context{
		Ticker: "ENPH",
		Days:   30,
		News: []dataflows.NewsArticle{
			{Title: "a", URL: "https://example.com/a"},
			{Title: "b", URL: "https://example.com/b"},
			{Title: "dup", URL: "https://example.com/a"},
		},
		Filings: []dataflows.Filing{
			{Form: "10-K", ReportURL: "https://sec.example/10k"},
		},
	}
}

func TestAggregateWeightedConfidence(t *testing.T) {
	outputs := fullOutputs(0.5)
	outputs[consts.RoleMomentum] = models.SpecialistOutput{
		Role: consts.RoleMomentum, Summary: "up", Confidence: 1.0,
	}

	report := Aggregate(testContext(), outputs)

	// (0.5*1 + 0.5*1 + 0.5*1 + 0.5*1.2 + 1.0*1.3) / (1+1+1+1.2+1.3)
	want := (0.5*3 + 0.5*1.2 + 1.0*1.3) / 5.5
	assert.InDelta(t, want, report.Confidence, 1e-9)
	assert.Len(t, report.Agents, 5)
	assert.Equal(t, 1.3, report.Agents[consts.RoleMomentum].Weight)
}

func TestAggregateCitationsFirstSeenDeduped(t *testing.T) {
	report := Aggregate(testContext(), fullOutputs(0.6))

	require.Equal(t, []string{
		"https://example.com/a",
		"https://example.com/b",
		"https://sec.example/10k",
	}, report.Citations)
}

func TestAggregateZeroRolesDegrades(t *testing.T) {
	outputs := map[string]models.SpecialistOutput{
		consts.RoleMomentum: {Role: consts.RoleMomentum, Err: "boom"},
	}

	report := Aggregate(testContext(), outputs)
	assert.Equal(t, models.RecommendWatch, report.Recommendation)
	assert.Equal(t, 0.50, report.Confidence)
	assert.NotEmpty(t, report.Summary)
	assert.Empty(t, report.Agents)
}

func TestAggregateDataSourceCounts(t *testing.T) {
	rc := testContext()
	rc.SectorNews = []dataflows.NewsArticle{{Title: "sector"}}

	report := Aggregate(rc, fullOutputs(0.6))
	assert.Equal(t, 4, report.DataSources.NewsArticles)
	assert.Equal(t, 1, report.DataSources.SECFilings)
	assert.Equal(t, 0, report.DataSources.MacroIndicators)
}

func TestEvaluateWeightsAndCritique(t *testing.T) {
	report := &models.ExecutiveSummary{
		Scores: models.Scores{Valuation: 0.8, Momentum: 0.9, News: 0.2, Macro: 0.7},
	}

	score, critique := Evaluate(report)
	want := 0.25*0.8 + 0.35*0.9 + 0.25*0.2 + 0.15*0.7
	assert.InDelta(t, want, score, 1e-9)
	assert.Contains(t, critique, "news")
}

func TestEvaluateDeterministic(t *testing.T) {
	report := &models.ExecutiveSummary{
		Scores: models.Scores{Valuation: 0.4, Momentum: 0.4, News: 0.4, Macro: 0.4},
	}
	s1, c1 := Evaluate(report)
	s2, c2 := Evaluate(report)
	assert.Equal(t, s1, s2)
	assert.Equal(t, c1, c2)
}

func TestOptimizeBoundedBoost(t *testing.T) {
	report := &models.ExecutiveSummary{Summary: "base", Confidence: 0.55}

	Optimize(report, "needs more momentum evidence")
	assert.InDelta(t, 0.70, report.Confidence, 1e-9)
	assert.Contains(t, report.Summary, "Refined per critique")

	// Second pass hits the ceiling.
	Optimize(report, "still weak")
	assert.InDelta(t, 0.85, report.Confidence, 1e-9)

	// Further passes never exceed the ceiling.
	Optimize(report, "again")
	assert.LessOrEqual(t, report.Confidence, 0.85)
}

func TestOptimizeZeroConfidenceFloor(t *testing.T) {
	report := &models.ExecutiveSummary{Summary: "empty run"}

	Optimize(report, "no data")
	assert.InDelta(t, 0.65, report.Confidence, 1e-9)
}

func TestClassifyOutlookTotalAndMonotonic(t *testing.T) {
	assert.Equal(t, models.OutlookBearish, ClassifyOutlook(0))
	assert.Equal(t, models.OutlookBearish, ClassifyOutlook(0.59))
	assert.Equal(t, models.OutlookNeutral, ClassifyOutlook(0.60))
	assert.Equal(t, models.OutlookNeutral, ClassifyOutlook(0.79))
	assert.Equal(t, models.OutlookBullish, ClassifyOutlook(0.80))
	assert.Equal(t, models.OutlookBullish, ClassifyOutlook(1.0))
}

func TestRecommendationThresholds(t *testing.T) {
	cases := []struct {
		scores models.Scores
		want   models.Recommendation
	}{
		{models.Scores{Valuation: 1, Momentum: 1, News: 1, Macro: 1}, models.RecommendBuy},
		{models.Scores{Valuation: 0.5, Momentum: 0.5, News: 0.5, Macro: 0.5}, models.RecommendWatch},
		{models.Scores{}, models.RecommendAvoid},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, recommend(WeightedTotal(tc.scores)))
	}
}
