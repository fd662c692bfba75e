package synthesis

import (
	"fmt"
	"strings"

	"github.com/jfields/renewlens/internal/models"
)

// Optimizer bounds. Each pass lifts confidence by at most the increment
// and never past the ceiling, so two passes cannot manufacture a
// Bullish outlook out of thin air.
const (
	confidenceIncrement = 0.15
	confidenceCeiling   = 0.85
)

// Optimize revises a low-scoring report in place: it appends a
// refinement note derived from the critique and applies the bounded
// confidence boost. The outlook is reclassified from the new
// confidence. Specialist outputs are never touched.
func Optimize(report *models.ExecutiveSummary, critique string) *models.ExecutiveSummary {
	note := fmt.Sprintf("Refined per critique: %s", critique)
	report.Summary = strings.TrimSpace(report.Summary + "\n\n" + note)

	conf := report.Confidence
	if conf == 0 {
		conf = 0.5
	}
	conf += confidenceIncrement
	if conf > confidenceCeiling {
		conf = confidenceCeiling
	}
	report.Confidence = conf
	report.MarketOutlook = ClassifyOutlook(conf)
	return report
}
