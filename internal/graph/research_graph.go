// Package graph wires the research pipeline and the natural-language
// pipeline as eino graphs.
package graph

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cloudwego/eino/compose"

	"github.com/jfields/renewlens/consts"
	"github.com/jfields/renewlens/internal/agents"
	"github.com/jfields/renewlens/internal/config"
	"github.com/jfields/renewlens/internal/dataflows"
	"github.com/jfields/renewlens/internal/memory"
	"github.com/jfields/renewlens/internal/models"
	"github.com/jfields/renewlens/internal/router"
	"github.com/jfields/renewlens/internal/synthesis"
)

// defaultFilingForms is the form set fetched for every run.
var defaultFilingForms = []string{"10-K", "10-Q", "8-K"}

// ResearchGraph runs the full research pipeline for one ticker:
// fetch, route, specialist analysis, synthesis, and the bounded
// evaluate/optimize refinement loop.
type ResearchGraph struct {
	cfg      *config.Config
	data     *dataflows.Bundle
	stage    *agents.Stage
	mem      *memory.Store
	runnable compose.Runnable[*models.ResearchState, *models.ResearchState]
}

// NewResearchGraph compiles the graph. The memory store is optional;
// with nil, learnings are not recorded.
func NewResearchGraph(ctx context.Context, cfg *config.Config, data *dataflows.Bundle, backend agents.Backend, mem *memory.Store) (*ResearchGraph, error) {
	rg := &ResearchGraph{
		cfg:   cfg,
		data:  data,
		stage: agents.NewStage(backend),
		mem:   mem,
	}

	g := compose.NewGraph[*models.ResearchState, *models.ResearchState](
		compose.WithGenLocalState(func(ctx context.Context) *models.ResearchState {
			return &models.ResearchState{}
		}),
	)

	_ = g.AddLambdaNode(consts.FetchPrices, compose.InvokableLambdaWithOption(rg.fetchPrices))
	_ = g.AddLambdaNode(consts.FetchNews, compose.InvokableLambdaWithOption(rg.fetchNews))
	_ = g.AddLambdaNode(consts.FetchFilings, compose.InvokableLambdaWithOption(rg.fetchFilings))
	_ = g.AddLambdaNode(consts.FetchMacro, compose.InvokableLambdaWithOption(rg.fetchMacro))
	_ = g.AddLambdaNode(consts.RouteItems, compose.InvokableLambdaWithOption(rg.routeItems))
	_ = g.AddLambdaNode(consts.RunSpecialists, compose.InvokableLambdaWithOption(rg.runSpecialists))
	_ = g.AddLambdaNode(consts.Synthesize, compose.InvokableLambdaWithOption(rg.synthesize))
	_ = g.AddLambdaNode(consts.Evaluate, compose.InvokableLambdaWithOption(rg.evaluate))
	_ = g.AddLambdaNode(consts.Optimize, compose.InvokableLambdaWithOption(rg.optimize))

	_ = g.AddEdge(compose.START, consts.FetchPrices)
	_ = g.AddEdge(consts.FetchPrices, consts.FetchNews)
	_ = g.AddEdge(consts.FetchNews, consts.FetchFilings)
	_ = g.AddEdge(consts.FetchFilings, consts.FetchMacro)
	_ = g.AddEdge(consts.FetchMacro, consts.RouteItems)
	_ = g.AddEdge(consts.RouteItems, consts.RunSpecialists)
	_ = g.AddEdge(consts.RunSpecialists, consts.Synthesize)
	_ = g.AddEdge(consts.Synthesize, consts.Evaluate)

	_ = g.AddBranch(consts.Evaluate, compose.NewGraphBranch(rg.refineHandOff, map[string]bool{
		consts.Optimize: true,
		compose.END:     true,
	}))
	_ = g.AddEdge(consts.Optimize, consts.Synthesize)

	runnable, err := g.Compile(ctx,
		compose.WithGraphName("RenewLens-Research"),
		compose.WithNodeTriggerMode(compose.AnyPredecessor),
		compose.WithMaxRunSteps(cfg.MaxRunSteps),
	)
	if err != nil {
		return nil, fmt.Errorf("compiling research graph: %w", err)
	}
	rg.runnable = runnable
	return rg, nil
}

// Run executes the pipeline and always returns a report. Node failures
// degrade the report instead of surfacing; the single exception is the
// caller-supplied context being cancelled, which still yields a
// degraded report rather than an error.
func (rg *ResearchGraph) Run(ctx context.Context, ticker string, days int, refresh bool) *models.ExecutiveSummary {
	ticker = dataflows.NormalizeSymbol(ticker)
	if days <= 0 {
		days = rg.cfg.DefaultLookbackDays
	}

	meta, err := rg.data.Metadata.GetMetadata(ctx, ticker)
	if err != nil {
		log.Printf("[Research] metadata lookup failed for %s: %v", ticker, err)
		meta = dataflows.TickerMetadata{}
	}

	state := models.NewResearchState(ticker, days, refresh, meta)

	result, err := rg.runnable.Invoke(ctx, state, rg.invokeOpts()...)
	if err != nil {
		log.Printf("[Research] graph execution failed for %s: %v", ticker, err)
		result = state
	}

	report := result.Report
	if report == nil {
		report = &models.ExecutiveSummary{
			Ticker:         ticker,
			Summary:        fmt.Sprintf("Research run for %s produced no report; data sources may be unavailable.", ticker),
			Recommendation: models.RecommendWatch,
			Confidence:     0.50,
			MarketOutlook:  synthesis.ClassifyOutlook(0.50),
			Citations:      []string{},
			GeneratedAt:    time.Now(),
		}
	}

	if rg.mem != nil {
		if err := rg.mem.UpdateFromRun(ctx, ticker, result.Score, result.Critique); err != nil {
			log.Printf("[Research] memory update failed for %s: %v", ticker, err)
		}
	}
	return report
}

func (rg *ResearchGraph) invokeOpts() []compose.Option {
	if rg.cfg.Debug {
		return []compose.Option{compose.WithCallbacks(&TraceCallback{})}
	}
	return nil
}

// RunSpecialistsOnly executes the fetch and specialist phases without
// synthesis, for callers that want raw per-role outputs.
func (rg *ResearchGraph) RunSpecialistsOnly(ctx context.Context, ticker string, days int) (map[string]models.SpecialistOutput, error) {
	ticker = dataflows.NormalizeSymbol(ticker)
	if err := dataflows.ValidateSymbol(ticker); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = rg.cfg.DefaultLookbackDays
	}

	state := models.NewResearchState(ticker, days, false, dataflows.TickerMetadata{})
	for _, step := range []func(context.Context, *models.ResearchState, ...any) (*models.ResearchState, error){
		rg.fetchPrices, rg.fetchNews, rg.fetchFilings, rg.fetchMacro, rg.routeItems, rg.runSpecialists,
	} {
		if _, err := step(ctx, state); err != nil {
			return nil, err
		}
	}
	return state.Specialists, nil
}

func (rg *ResearchGraph) fetchPrices(ctx context.Context, state *models.ResearchState, opts ...any) (*models.ResearchState, error) {
	prices, err := rg.data.Prices.FetchHistory(ctx, state.Ticker, state.Days, state.Refresh)
	if err != nil {
		log.Printf("[Research] price fetch failed for %s: %v", state.Ticker, err)
		prices = nil
	}
	state.Fetched.Prices = prices
	return state, nil
}

func (rg *ResearchGraph) fetchNews(ctx context.Context, state *models.ResearchState, opts ...any) (*models.ResearchState, error) {
	news, err := rg.data.News.FetchNews(ctx, state.Ticker, state.Days, state.Refresh)
	if err != nil {
		log.Printf("[Research] news fetch failed for %s: %v", state.Ticker, err)
		news = nil
	}
	state.Fetched.News = news

	sector, err := rg.data.News.FetchSectorNews(ctx, state.Metadata.Industry, "", 7, state.Refresh)
	if err != nil {
		log.Printf("[Research] sector news fetch failed: %v", err)
		sector = nil
	}
	state.Fetched.SectorNews = sector
	return state, nil
}

func (rg *ResearchGraph) fetchFilings(ctx context.Context, state *models.ResearchState, opts ...any) (*models.ResearchState, error) {
	filings, err := rg.data.Filings.FetchFilings(ctx, state.Ticker, defaultFilingForms, 5)
	if err != nil {
		log.Printf("[Research] filings fetch failed for %s: %v", state.Ticker, err)
		filings = nil
	}
	state.Fetched.Filings = filings
	return state, nil
}

func (rg *ResearchGraph) fetchMacro(ctx context.Context, state *models.ResearchState, opts ...any) (*models.ResearchState, error) {
	snapshot, err := rg.data.Macro.FetchSnapshot(ctx, state.Refresh)
	if err != nil {
		log.Printf("[Research] macro fetch failed: %v", err)
		snapshot = nil
	}
	state.Fetched.Macro = snapshot
	return state, nil
}

func (rg *ResearchGraph) routeItems(ctx context.Context, state *models.ResearchState, opts ...any) (*models.ResearchState, error) {
	items := append(append([]dataflows.NewsArticle{}, state.Fetched.News...), state.Fetched.SectorNews...)
	state.Routed = router.Route(items)
	return state, nil
}

func (rg *ResearchGraph) runSpecialists(ctx context.Context, state *models.ResearchState, opts ...any) (*models.ResearchState, error) {
	state.Specialists = rg.stage.Run(ctx, specialistContext(state))
	return state, nil
}

// synthesize builds the report on the first pass. On refinement passes
// the report already carries the optimizer's edits, so it is kept
// rather than regenerated.
func (rg *ResearchGraph) synthesize(ctx context.Context, state *models.ResearchState, opts ...any) (*models.ResearchState, error) {
	if state.Report == nil {
		state.Report = synthesis.Aggregate(specialistContext(state), state.Specialists)
	}
	return state, nil
}

func (rg *ResearchGraph) evaluate(ctx context.Context, state *models.ResearchState, opts ...any) (*models.ResearchState, error) {
	state.Score, state.Critique = synthesis.Evaluate(state.Report)
	return state, nil
}

func (rg *ResearchGraph) optimize(ctx context.Context, state *models.ResearchState, opts ...any) (*models.ResearchState, error) {
	state.Report = synthesis.Optimize(state.Report, state.Critique)
	state.Iterations++
	return state, nil
}

// refineHandOff bounds the refinement loop: at most MaxRefineRounds
// optimize passes, and none once the score clears the threshold.
func (rg *ResearchGraph) refineHandOff(ctx context.Context, state *models.ResearchState) (string, error) {
	if state.Score < rg.cfg.EvalThreshold && state.Iterations < rg.cfg.MaxRefineRounds {
		return consts.Optimize, nil
	}
	return compose.END, nil
}

func specialistContext(state *models.ResearchState) *agents.Context {
	return &agents.Context{
		Ticker:     state.Ticker,
		Days:       state.Days,
		Metadata:   state.Metadata,
		Prices:     state.Fetched.Prices,
		News:       state.Fetched.News,
		SectorNews: state.Fetched.SectorNews,
		Filings:    state.Fetched.Filings,
		Macro:      state.Fetched.Macro,
		Routed:     state.Routed,
	}
}
