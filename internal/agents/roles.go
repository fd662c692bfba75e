// Package agents implements the specialist analysis stage: a fixed set
// of analyst roles that each turn the fetched context into a short
// summary with a derived confidence.
package agents

import (
	"github.com/jfields/renewlens/consts"
)

// ToolID identifies a data capability a role is allowed to draw on.
type ToolID string

const (
	ToolPriceHistory    ToolID = "price_history"
	ToolCompanyNews     ToolID = "company_news"
	ToolSectorHeadlines ToolID = "sector_headlines"
	ToolFilings         ToolID = "filings"
	ToolMacroSnapshot   ToolID = "macro_snapshot"
)

// Role describes one specialist: its aggregation weight and which slices
// of the fetched context it reads. Momentum and valuation carry a higher
// weight because their sub-scores dominate the evaluator.
type Role struct {
	Name         string
	SystemPrompt string
	Tools        []ToolID
	Weight       float64
}

const (
	WeightMomentum  = 1.3
	WeightValuation = 1.2
	WeightBaseline  = 1.0
)

// Registry is the fixed role set, in stable iteration order.
var Registry = []Role{
	{
		Name: consts.RoleNewsPolicy,
		SystemPrompt: "You are a News/Policy Analyst focused on renewable energy. " +
			"Classify news by topic, extract policy and subsidy signals, and summarize with citations.",
		Tools:  []ToolID{ToolCompanyNews, ToolSectorHeadlines},
		Weight: WeightBaseline,
	},
	{
		Name: consts.RoleEarnings,
		SystemPrompt: "You are an Earnings/Fundamentals Analyst. " +
			"Parse filings and earnings items for guidance deltas, margins, and capacity plans.",
		Tools:  []ToolID{ToolFilings, ToolCompanyNews},
		Weight: WeightBaseline,
	},
	{
		Name: consts.RoleMarketTechnical,
		SystemPrompt: "You are a Market/Technical Analyst. " +
			"Compute simple indicators from price history and produce a trend assessment.",
		Tools:  []ToolID{ToolPriceHistory},
		Weight: WeightBaseline,
	},
	{
		Name: consts.RoleValuation,
		SystemPrompt: "You are a Valuation Analyst. " +
			"Relate recent price levels to the stock's own trading range and flag stretch or discount.",
		Tools:  []ToolID{ToolPriceHistory, ToolFilings},
		Weight: WeightValuation,
	},
	{
		Name: consts.RoleMomentum,
		SystemPrompt: "You are a Momentum Analyst. " +
			"Measure directional persistence of the price series over the lookback window.",
		Tools:  []ToolID{ToolPriceHistory, ToolMacroSnapshot},
		Weight: WeightMomentum,
	},
}

// LookupRole returns the role definition by name.
func LookupRole(name string) (Role, bool) {
	for _, r := range Registry {
		if r.Name == name {
			return r, true
		}
	}
	return Role{}, false
}

// RoleWeight returns the aggregation weight for a role name, defaulting
// to baseline for unknown roles so aggregation stays total.
func RoleWeight(name string) float64 {
	if r, ok := LookupRole(name); ok {
		return r.Weight
	}
	return WeightBaseline
}
