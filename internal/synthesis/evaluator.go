package synthesis

import (
	"fmt"

	"github.com/jfields/renewlens/internal/models"
)

// Evaluator weights. Momentum dominates because short-window price
// action is the most reliable signal this system produces.
const (
	weightValuation = 0.25
	weightMomentum  = 0.35
	weightNews      = 0.25
	weightMacro     = 0.15
)

// WeightedTotal folds the sub-scores into a single [0,1] score.
func WeightedTotal(s models.Scores) float64 {
	return weightValuation*s.Valuation +
		weightMomentum*s.Momentum +
		weightNews*s.News +
		weightMacro*s.Macro
}

// Evaluate scores a synthesized report and explains which dimension is
// holding it back. Pure and deterministic so the refinement loop is
// testable.
func Evaluate(report *models.ExecutiveSummary) (float64, string) {
	total := WeightedTotal(report.Scores)

	weakName, weakVal := weakestDimension(report.Scores)
	critique := fmt.Sprintf(
		"Overall score %.2f. The %s dimension is weakest at %.2f; strengthen its evidence base to improve the report.",
		total, weakName, weakVal)
	return total, critique
}

func weakestDimension(s models.Scores) (string, float64) {
	name, val := "valuation", s.Valuation
	if s.Momentum < val {
		name, val = "momentum", s.Momentum
	}
	if s.News < val {
		name, val = "news", s.News
	}
	if s.Macro < val {
		name, val = "macro", s.Macro
	}
	return name, val
}
