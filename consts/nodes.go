package consts

// Research graph nodes
const (
	FetchPrices    = "fetch_prices"
	FetchNews      = "fetch_news"
	FetchFilings   = "fetch_filings"
	FetchMacro     = "fetch_macro"
	RouteItems     = "route_items"
	RunSpecialists = "run_specialists"
	Synthesize     = "synthesize"
	Evaluate       = "evaluate"
	Optimize       = "optimize"
)

// Natural-language graph nodes
const (
	ParseQuery         = "parse_query"
	RouteByIntent      = "route_by_intent"
	CreatePriceChart   = "create_price_chart"
	CreateComparison   = "create_comparison"
	AnalyzeNews        = "analyze_news_sentiment"
	AnalyzeTechnical   = "create_technical_analysis"
	AnalyzeFundamental = "analyze_fundamentals"
	SectorOverview     = "create_sector_overview"
	GeneralAnalysis    = "run_general_analysis"
	FinalizeResponse   = "finalize_response"
)

// Specialist roles
const (
	RoleNewsPolicy      = "news_policy"
	RoleEarnings        = "earnings"
	RoleMarketTechnical = "market_technical"
	RoleValuation       = "valuation"
	RoleMomentum        = "momentum"
)
