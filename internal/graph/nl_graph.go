package graph

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/compose"

	"github.com/jfields/renewlens/consts"
	"github.com/jfields/renewlens/internal/charts"
	"github.com/jfields/renewlens/internal/config"
	"github.com/jfields/renewlens/internal/dataflows"
	"github.com/jfields/renewlens/internal/models"
	"github.com/jfields/renewlens/internal/query"
	"github.com/jfields/renewlens/internal/watchlist"
)

// technicalSMAWindows are the moving-average overlays of the technical
// analysis path.
var technicalSMAWindows = []int{5, 20}

// NLGraph answers free-text queries: parse, route by intent, run one
// analysis node, and wrap the result in a uniform envelope.
type NLGraph struct {
	cfg       *config.Config
	data      *dataflows.Bundle
	processor *query.Processor
	research  *ResearchGraph
	runnable  compose.Runnable[*models.NLState, *models.NLState]
}

func NewNLGraph(ctx context.Context, cfg *config.Config, data *dataflows.Bundle, research *ResearchGraph) (*NLGraph, error) {
	ng := &NLGraph{
		cfg:       cfg,
		data:      data,
		processor: query.NewProcessor(),
		research:  research,
	}

	g := compose.NewGraph[*models.NLState, *models.NLState](
		compose.WithGenLocalState(func(ctx context.Context) *models.NLState {
			return &models.NLState{}
		}),
	)

	_ = g.AddLambdaNode(consts.ParseQuery, compose.InvokableLambdaWithOption(ng.parseQuery))
	_ = g.AddLambdaNode(consts.RouteByIntent, compose.InvokableLambdaWithOption(ng.routeByIntent))
	_ = g.AddLambdaNode(consts.CreatePriceChart, compose.InvokableLambdaWithOption(ng.createPriceChart))
	_ = g.AddLambdaNode(consts.CreateComparison, compose.InvokableLambdaWithOption(ng.createComparison))
	_ = g.AddLambdaNode(consts.AnalyzeNews, compose.InvokableLambdaWithOption(ng.analyzeNewsSentiment))
	_ = g.AddLambdaNode(consts.AnalyzeTechnical, compose.InvokableLambdaWithOption(ng.createTechnicalAnalysis))
	_ = g.AddLambdaNode(consts.AnalyzeFundamental, compose.InvokableLambdaWithOption(ng.analyzeFundamentals))
	_ = g.AddLambdaNode(consts.SectorOverview, compose.InvokableLambdaWithOption(ng.createSectorOverview))
	_ = g.AddLambdaNode(consts.GeneralAnalysis, compose.InvokableLambdaWithOption(ng.runGeneralAnalysis))
	_ = g.AddLambdaNode(consts.FinalizeResponse, compose.InvokableLambdaWithOption(ng.finalizeResponse))

	_ = g.AddEdge(compose.START, consts.ParseQuery)
	_ = g.AddEdge(consts.ParseQuery, consts.RouteByIntent)

	analysisNodes := []string{
		consts.CreatePriceChart,
		consts.CreateComparison,
		consts.AnalyzeNews,
		consts.AnalyzeTechnical,
		consts.AnalyzeFundamental,
		consts.SectorOverview,
		consts.GeneralAnalysis,
	}
	outMap := make(map[string]bool, len(analysisNodes))
	for _, node := range analysisNodes {
		outMap[node] = true
	}
	_ = g.AddBranch(consts.RouteByIntent, compose.NewGraphBranch(ng.intentHandOff, outMap))

	for _, node := range analysisNodes {
		_ = g.AddEdge(node, consts.FinalizeResponse)
	}
	_ = g.AddEdge(consts.FinalizeResponse, compose.END)

	runnable, err := g.Compile(ctx,
		compose.WithGraphName("RenewLens-NL"),
		compose.WithNodeTriggerMode(compose.AnyPredecessor),
		compose.WithMaxRunSteps(cfg.NLMaxRunSteps),
	)
	if err != nil {
		return nil, fmt.Errorf("compiling NL graph: %w", err)
	}
	ng.runnable = runnable
	return ng, nil
}

// ProcessQuery answers a free-text query. It never returns an error;
// every failure ends up in the envelope's Error field.
func (ng *NLGraph) ProcessQuery(ctx context.Context, q string) *models.ResponseEnvelope {
	state := &models.NLState{Query: q}

	result, err := ng.runnable.Invoke(ctx, state, ng.research.invokeOpts()...)
	if err != nil {
		log.Printf("[NL] graph execution failed: %v", err)
		return &models.ResponseEnvelope{
			Success: false,
			Error:   fmt.Sprintf("error processing query: %v", err),
		}
	}
	if result.Response == nil {
		return &models.ResponseEnvelope{
			Success: false,
			Error:   "query processing produced no response",
		}
	}
	return result.Response
}

func (ng *NLGraph) parseQuery(ctx context.Context, state *models.NLState, opts ...any) (*models.NLState, error) {
	state.Parsed = ng.processor.Parse(state.Query)
	return state, nil
}

// routeByIntent maps intent to a node name. Unknown intents route to
// general analysis, never to an error state.
func (ng *NLGraph) routeByIntent(ctx context.Context, state *models.NLState, opts ...any) (*models.NLState, error) {
	switch state.Parsed.Intent {
	case models.IntentPriceChart:
		state.Route = consts.CreatePriceChart
	case models.IntentComparison:
		state.Route = consts.CreateComparison
	case models.IntentNewsSentiment:
		state.Route = consts.AnalyzeNews
	case models.IntentTechnical:
		state.Route = consts.AnalyzeTechnical
	case models.IntentFundamental:
		state.Route = consts.AnalyzeFundamental
	case models.IntentSectorOverview:
		state.Route = consts.SectorOverview
	default:
		state.Route = consts.GeneralAnalysis
	}
	return state, nil
}

func (ng *NLGraph) intentHandOff(ctx context.Context, state *models.NLState) (string, error) {
	return state.Route, nil
}

func (ng *NLGraph) createPriceChart(ctx context.Context, state *models.NLState, opts ...any) (*models.NLState, error) {
	params := state.Parsed.Parameters
	if len(params.Tickers) == 0 {
		state.Err = "no ticker specified for price chart"
		return state, nil
	}

	days := query.TimeframeDays(params.Timeframe)
	if len(params.Tickers) == 1 {
		ticker := params.Tickers[0]
		prices, err := ng.data.Prices.FetchHistory(ctx, ticker, days, false)
		if err != nil {
			state.Err = fmt.Sprintf("error creating price chart: %v", err)
			return state, nil
		}
		state.Chart = charts.PriceChart(ticker, prices, params.ChartType, params.Timeframe)
	} else {
		histories, err := ng.fetchHistories(ctx, params.Tickers, days)
		if err != nil {
			state.Err = fmt.Sprintf("error creating price chart: %v", err)
			return state, nil
		}
		state.Chart = charts.MultiPriceChart(params.Tickers, histories, params.ChartType, params.Timeframe)
	}

	state.AnalysisType = "price_chart"
	state.Summary = fmt.Sprintf("Created price chart for %s over %s",
		strings.Join(params.Tickers, ", "), params.Timeframe)
	return state, nil
}

func (ng *NLGraph) createComparison(ctx context.Context, state *models.NLState, opts ...any) (*models.NLState, error) {
	params := state.Parsed.Parameters
	if len(params.Tickers) == 0 {
		state.Err = "no tickers specified for comparison"
		return state, nil
	}

	histories, err := ng.fetchHistories(ctx, params.Tickers, query.TimeframeDays(params.Timeframe))
	if err != nil {
		state.Err = fmt.Sprintf("error creating comparison: %v", err)
		return state, nil
	}

	state.Chart = charts.ComparisonChart(params.Tickers, histories, params.Timeframe)
	state.AnalysisType = "comparison"
	state.Summary = fmt.Sprintf("Created comparison analysis for %s", strings.Join(params.Tickers, ", "))
	return state, nil
}

func (ng *NLGraph) analyzeNewsSentiment(ctx context.Context, state *models.NLState, opts ...any) (*models.NLState, error) {
	params := state.Parsed.Parameters

	if len(params.Tickers) == 0 {
		headlines, err := ng.data.News.FetchSectorNews(ctx, params.Subsector, "", 7, false)
		if err != nil {
			state.Err = fmt.Sprintf("error analyzing news sentiment: %v", err)
			return state, nil
		}
		state.NewsHeadlines = headlines
		state.AnalysisType = "sector_news"
		state.Summary = "Retrieved sector news for renewable energy"
		return state, nil
	}

	// Cap at two tickers: each crew pass runs the full specialist stage.
	tickers := params.Tickers
	if len(tickers) > 2 {
		tickers = tickers[:2]
	}

	var analyses []models.CrewAnalysis
	for _, ticker := range tickers {
		outputs, err := ng.research.RunSpecialistsOnly(ctx, ticker, 7)
		if err != nil {
			log.Printf("[NL] crew analysis failed for %s: %v", ticker, err)
			analyses = append(analyses, models.CrewAnalysis{
				Ticker: ticker,
				Error:  fmt.Sprintf("crew analysis failed: %v", err),
			})
			continue
		}
		analyses = append(analyses, models.CrewAnalysis{Ticker: ticker, Outputs: outputs})
	}

	state.CrewAnalyses = analyses
	state.AnalysisType = "news_sentiment"
	state.Summary = fmt.Sprintf("Analyzed news sentiment for %s", strings.Join(tickers, ", "))
	return state, nil
}

func (ng *NLGraph) createTechnicalAnalysis(ctx context.Context, state *models.NLState, opts ...any) (*models.NLState, error) {
	params := state.Parsed.Parameters
	if len(params.Tickers) == 0 {
		state.Err = "no ticker specified for technical analysis"
		return state, nil
	}

	ticker := params.Tickers[0]
	prices, err := ng.data.Prices.FetchHistory(ctx, ticker, query.TimeframeDays(params.Timeframe), false)
	if err != nil {
		state.Err = fmt.Sprintf("error creating technical analysis: %v", err)
		return state, nil
	}

	state.Chart = charts.TechnicalChart(ticker, prices, technicalSMAWindows, params.Timeframe)
	state.AnalysisType = "technical_analysis"
	state.Summary = fmt.Sprintf("Created technical analysis for %s", ticker)
	return state, nil
}

func (ng *NLGraph) analyzeFundamentals(ctx context.Context, state *models.NLState, opts ...any) (*models.NLState, error) {
	params := state.Parsed.Parameters
	if len(params.Tickers) == 0 {
		state.Err = "no ticker specified for fundamental analysis"
		return state, nil
	}

	ticker := params.Tickers[0]
	filings, err := ng.data.Filings.FetchFilings(ctx, ticker, []string{"10-K", "10-Q"}, 2)
	if err != nil {
		state.AnalysisType = "fundamental_analysis"
		state.Summary = fmt.Sprintf("Fundamental analysis for %s: unable to fetch SEC filings (%v)", ticker, err)
		return state, nil
	}

	state.FilingsData = filings
	state.AnalysisType = "fundamental_analysis"
	state.Summary = fmt.Sprintf("Fundamental analysis for %s: retrieved %d recent SEC filings", ticker, len(filings))
	if len(filings) > 0 {
		forms := make([]string, 0, len(filings))
		for _, f := range filings {
			forms = append(forms, f.Form)
		}
		state.FilingAnalysis = fmt.Sprintf("Found recent filings for %s. Latest filing types: %s",
			ticker, strings.Join(forms, ", "))
	}
	return state, nil
}

func (ng *NLGraph) createSectorOverview(ctx context.Context, state *models.NLState, opts ...any) (*models.NLState, error) {
	params := state.Parsed.Parameters

	tickers := params.Tickers
	if params.Subsector != "" {
		if items := watchlist.BySubsector(params.Subsector); len(items) > 0 {
			tickers = make([]string, 0, len(items))
			for _, item := range items {
				tickers = append(tickers, item.Ticker)
			}
		}
	}
	if len(tickers) == 0 {
		tickers = watchlist.Tickers()
	}

	quotes, err := ng.data.Prices.BatchQuotes(ctx, tickers)
	if err != nil {
		state.Err = fmt.Sprintf("error creating sector overview: %v", err)
		return state, nil
	}

	state.Chart = charts.SectorOverviewChart(quotes)
	state.AnalysisType = "sector_overview"
	suffix := ""
	if params.Subsector != "" {
		suffix = " - " + params.Subsector
	}
	state.Summary = fmt.Sprintf("Created sector overview for renewable energy%s", suffix)
	return state, nil
}

func (ng *NLGraph) runGeneralAnalysis(ctx context.Context, state *models.NLState, opts ...any) (*models.NLState, error) {
	params := state.Parsed.Parameters
	if len(params.Tickers) == 0 {
		state.Err = "no ticker specified for detailed analysis"
		return state, nil
	}

	ticker := params.Tickers[0]
	report := ng.research.Run(ctx, ticker, query.TimeframeDays(params.Timeframe), false)
	state.DetailedReport = report
	state.AnalysisType = "detailed_analysis"
	state.Summary = fmt.Sprintf("Completed comprehensive analysis for %s", ticker)
	return state, nil
}

// finalizeResponse builds the uniform envelope. Success is false iff an
// upstream node recorded an error.
func (ng *NLGraph) finalizeResponse(ctx context.Context, state *models.NLState, opts ...any) (*models.NLState, error) {
	explanation := ""
	if state.Parsed != nil {
		explanation = state.Parsed.Explanation
	}

	if state.Err != "" {
		state.Response = &models.ResponseEnvelope{
			Success:     false,
			Error:       state.Err,
			Explanation: explanation,
		}
		return state, nil
	}

	state.Response = &models.ResponseEnvelope{
		Success:        true,
		AnalysisType:   state.AnalysisType,
		Summary:        state.Summary,
		Explanation:    explanation,
		Chart:          state.Chart,
		CrewAnalyses:   state.CrewAnalyses,
		NewsHeadlines:  state.NewsHeadlines,
		DetailedReport: state.DetailedReport,
		FilingsData:    state.FilingsData,
		FilingAnalysis: state.FilingAnalysis,
	}
	return state, nil
}

func (ng *NLGraph) fetchHistories(ctx context.Context, tickers []string, days int) (map[string][]dataflows.PricePoint, error) {
	if len(tickers) > 5 {
		tickers = tickers[:5]
	}

	histories := make(map[string][]dataflows.PricePoint, len(tickers))
	for _, ticker := range tickers {
		prices, err := ng.data.Prices.FetchHistory(ctx, ticker, days, false)
		if err != nil {
			log.Printf("[NL] history fetch failed for %s: %v", ticker, err)
			continue
		}
		histories[ticker] = prices
	}
	if len(histories) == 0 {
		return nil, fmt.Errorf("no price history available for %s", strings.Join(tickers, ", "))
	}
	return histories, nil
}
