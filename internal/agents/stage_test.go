package agents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfields/renewlens/consts"
	"github.com/jfields/renewlens/internal/dataflows"
	"github.com/jfields/renewlens/internal/models"
	"github.com/jfields/renewlens/internal/router"
)

func testContext() *Context {
	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	prices := make([]dataflows.PricePoint, 0, 10)
	for i := 0; i < 10; i++ {
		close := decimal.NewFromFloat(100 + float64(i)*1.5)
		prices = append(prices, dataflows.PricePoint{
			Date:  base.AddDate(0, 0, i),
			Close: close,
		})
	}

	news := []dataflows.NewsArticle{
		{Title: "FSLR Q1 earnings beat guidance", URL: "https://example.com/1", Themes: []string{"solar"}},
		{Title: "New tariff ruling on panel imports", URL: "https://example.com/2", Themes: []string{"policy"}},
	}

	return &Context{
		Ticker: "FSLR",
		Days:   30,
		Prices: prices,
		News:   news,
		Filings: []dataflows.Filing{
			{Form: "10-Q", FiledAt: "2026-02-25"},
		},
		Routed: router.Route(news),
	}
}

func TestStageProducesAllRoles(t *testing.T) {
	stage := NewStage(NewHeuristicBackend(DefaultHeuristicConfig()))

	outputs := stage.Run(context.Background(), testContext())
	require.Len(t, outputs, len(Registry))

	for _, role := range Registry {
		out, ok := outputs[role.Name]
		require.True(t, ok, "missing role %s", role.Name)
		assert.Equal(t, role.Name, out.Role)
		assert.NotEmpty(t, out.Summary)
		assert.Empty(t, out.Err)
		assert.GreaterOrEqual(t, out.Confidence, 0.0)
		assert.LessOrEqual(t, out.Confidence, 1.0)
	}
}

func TestStageIsDeterministic(t *testing.T) {
	stage := NewStage(NewHeuristicBackend(DefaultHeuristicConfig()))

	a := stage.Run(context.Background(), testContext())
	b := stage.Run(context.Background(), testContext())
	assert.Equal(t, a, b)
}

type failingBackend struct {
	failRole string
	inner    Backend
}

func (f *failingBackend) Analyze(ctx context.Context, role Role, rc *Context) (models.SpecialistOutput, error) {
	if role.Name == f.failRole {
		return models.SpecialistOutput{}, errors.New("upstream unavailable")
	}
	return f.inner.Analyze(ctx, role, rc)
}

func TestStageFailedRoleBecomesPlaceholder(t *testing.T) {
	backend := &failingBackend{
		failRole: consts.RoleMomentum,
		inner:    NewHeuristicBackend(DefaultHeuristicConfig()),
	}
	stage := NewStage(backend)

	outputs := stage.Run(context.Background(), testContext())
	require.Len(t, outputs, len(Registry))

	failed := outputs[consts.RoleMomentum]
	assert.Zero(t, failed.Confidence)
	assert.NotEmpty(t, failed.Err)

	ok := outputs[consts.RoleValuation]
	assert.Empty(t, ok.Err)
	assert.Greater(t, ok.Confidence, 0.0)
}

func TestHeuristicConfidenceBounds(t *testing.T) {
	h := NewHeuristicBackend(DefaultHeuristicConfig())

	assert.Zero(t, h.Confidence(""))
	assert.Zero(t, h.Confidence("   "))

	// Numeric evidence plus a directional call scores higher than bare prose.
	rich := "FSLR rose 12% over 30 sessions, confirming an uptrend with strong momentum."
	poor := "Nothing notable happened."
	assert.Greater(t, h.Confidence(rich), h.Confidence(poor))
	assert.LessOrEqual(t, h.Confidence(rich), 1.0)
}

func TestRoleWeights(t *testing.T) {
	assert.Equal(t, 1.3, RoleWeight(consts.RoleMomentum))
	assert.Equal(t, 1.2, RoleWeight(consts.RoleValuation))
	assert.Equal(t, 1.0, RoleWeight(consts.RoleEarnings))
	assert.Equal(t, 1.0, RoleWeight("someone_else"))
}
