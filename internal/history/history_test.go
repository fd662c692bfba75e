package history

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfields/renewlens/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	root := t.TempDir()
	return NewStore(root, filepath.Join(root, "archive"))
}

func report(ticker string, confidence float64) *models.ExecutiveSummary {
	return &models.ExecutiveSummary{
		Ticker:         ticker,
		Summary:        "Synthesis for " + ticker,
		Confidence:     confidence,
		Recommendation: models.RecommendWatch,
		MarketOutlook:  models.OutlookNeutral,
		GeneratedAt:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSaveAndLoadCurrent(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveReport(report("fslr", 0.7)))
	require.NoError(t, store.SaveReport(report("ENPH", 0.55)))

	current, err := store.LoadCurrent()
	require.NoError(t, err)
	require.Len(t, current, 2)
	assert.Equal(t, 0.7, current["FSLR"].Confidence)
	assert.Equal(t, 0.55, current["ENPH"].Confidence)

	// A lowercase ticker is normalized on the way in, so map keys and
	// the report field agree.
	assert.Equal(t, "FSLR", current["FSLR"].Ticker)

	single, err := store.LoadReport("FSLR")
	require.NoError(t, err)
	require.NotNil(t, single)
	assert.Equal(t, "FSLR", single.Ticker)

	missing, err := store.LoadReport("RUN")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLoadCurrentSkipsCorruptFiles(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SaveReport(report("FSLR", 0.7)))
	require.NoError(t, os.WriteFile(store.ReportPath("ENPH"), []byte("{not json"), 0o644))

	current, err := store.LoadCurrent()
	require.NoError(t, err)
	require.Len(t, current, 1)
	assert.Contains(t, current, "FSLR")
}

func TestArchiveMovesCurrentSet(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SaveReport(report("FSLR", 0.7)))
	require.NoError(t, store.SaveReport(report("ENPH", 0.55)))

	name, err := store.Archive()
	require.NoError(t, err)
	require.NotEmpty(t, name)

	current, err := store.LoadCurrent()
	require.NoError(t, err)
	assert.Empty(t, current)

	archived, err := loadRunDir(filepath.Join(store.archiveDir, name))
	require.NoError(t, err)
	assert.Len(t, archived, 2)
}

func TestArchiveNoOpWhenEmpty(t *testing.T) {
	store := newTestStore(t)

	name, err := store.Archive()
	require.NoError(t, err)
	assert.Empty(t, name)

	dirs, err := store.ArchiveDirs()
	require.NoError(t, err)
	assert.Empty(t, dirs)
}

func TestArchiveRejectsDuplicateTimestamp(t *testing.T) {
	store := newTestStore(t)
	stamp := time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC)

	require.NoError(t, store.SaveReport(report("FSLR", 0.7)))
	_, err := store.archiveAt(stamp)
	require.NoError(t, err)

	require.NoError(t, store.SaveReport(report("FSLR", 0.8)))
	_, err = store.archiveAt(stamp)
	assert.Error(t, err)
}

func TestLoadCurrentAndPrevious(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveReport(report("FSLR", 0.5)))
	_, err := store.archiveAt(time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.NoError(t, store.SaveReport(report("FSLR", 0.7)))

	current, previous, prevDir, err := store.LoadCurrentAndPrevious()
	require.NoError(t, err)
	assert.Equal(t, "20260701_1000", prevDir)
	assert.Equal(t, 0.7, current["FSLR"].Confidence)
	assert.Equal(t, 0.5, previous["FSLR"].Confidence)
}

func TestLoadCurrentAndBaseline(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveReport(report("FSLR", 0.4)))
	_, err := store.archiveAt(time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.NoError(t, store.SaveReport(report("FSLR", 0.5)))
	_, err = store.archiveAt(time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.NoError(t, store.SaveReport(report("FSLR", 0.7)))

	current, previous, err := store.LoadCurrentAndBaseline("20260601_1000")
	require.NoError(t, err)
	assert.Equal(t, 0.7, current["FSLR"].Confidence)
	assert.Equal(t, 0.4, previous["FSLR"].Confidence)

	_, _, err = store.LoadCurrentAndBaseline("20990101_0000")
	assert.Error(t, err)
}

func TestComputeConfidenceDeltas(t *testing.T) {
	current := map[string]*models.ExecutiveSummary{
		"FSLR": report("FSLR", 0.7),
		"ENPH": report("ENPH", 0.7),
		"RUN":  report("RUN", 0.4),
	}
	previous := map[string]*models.ExecutiveSummary{
		"FSLR": report("FSLR", 0.5),
		"RUN":  report("RUN", 0.6),
		"NEE":  report("NEE", 0.9),
	}

	rows := ComputeConfidenceDeltas(current, previous)
	require.Len(t, rows, 3)

	// Sorted by ticker; NEE is previous-only and ignored.
	assert.Equal(t, "ENPH", rows[0].Ticker)
	assert.Equal(t, 70.0, rows[0].Confidence)
	assert.Equal(t, 70.0, rows[0].Delta)
	assert.Equal(t, DirectionUp, rows[0].Direction)

	assert.Equal(t, "FSLR", rows[1].Ticker)
	assert.Equal(t, 20.0, rows[1].Delta)
	assert.Equal(t, DirectionUp, rows[1].Direction)

	assert.Equal(t, "RUN", rows[2].Ticker)
	assert.Equal(t, -20.0, rows[2].Delta)
	assert.Equal(t, DirectionDown, rows[2].Direction)
}

func TestComputeConfidenceDeltasFlat(t *testing.T) {
	current := map[string]*models.ExecutiveSummary{"FSLR": report("FSLR", 0.6)}
	previous := map[string]*models.ExecutiveSummary{"FSLR": report("FSLR", 0.6)}

	rows := ComputeConfidenceDeltas(current, previous)
	require.Len(t, rows, 1)
	assert.Equal(t, 0.0, rows[0].Delta)
	assert.Equal(t, DirectionFlat, rows[0].Direction)
}

func TestExtractInterpretationMarkerPriority(t *testing.T) {
	agents := map[string]models.AgentSummary{
		"momentum": {Summary: "Interpretation: momentum is fading."},
		"earnings": {Summary: "Filings on record. Interpretation: margins are stabilizing."},
	}

	assert.Equal(t, "margins are stabilizing.", ExtractInterpretation(agents))
}

func TestExtractInterpretationFallback(t *testing.T) {
	agents := map[string]models.AgentSummary{
		"valuation": {Summary: "Trades near the top of its range. Window high was set in July. More text here."},
	}

	got := ExtractInterpretation(agents)
	assert.Equal(t, "Trades near the top of its range. Window high was set in July.", got)
}

func TestExtractInterpretationClipsLongText(t *testing.T) {
	agents := map[string]models.AgentSummary{
		"earnings": {Summary: "Interpretation: " + strings.Repeat("x", 600)},
	}

	got := ExtractInterpretation(agents)
	assert.Equal(t, 401, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "…"))
}

func TestExtractInterpretationEmpty(t *testing.T) {
	assert.Empty(t, ExtractInterpretation(nil))
	assert.Empty(t, ExtractInterpretation(map[string]models.AgentSummary{}))
}

func TestWriteCSV(t *testing.T) {
	rows := []Delta{
		{Ticker: "FSLR", Outlook: "Neutral/Watchlist", Confidence: 70.0, Delta: 20.0, Direction: DirectionUp, Interpretation: "margins up"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Ticker,Outlook,Confidence,Delta,Direction,Interpretation", lines[0])
	assert.Contains(t, lines[1], "FSLR,Neutral/Watchlist,70.0,20.0,up")
}

func TestScanRunHistory(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveReport(report("FSLR", 0.5)))
	_, err := store.archiveAt(time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.NoError(t, store.SaveReport(report("FSLR", 0.7)))
	require.NoError(t, store.SaveReport(report("ENPH", 0.6)))
	_, err = store.archiveAt(time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	records, err := store.ScanRunHistory()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "FSLR", records[0].Ticker)
	assert.Equal(t, 50.0, records[0].Confidence)
	assert.Equal(t, DirectionFlat, records[0].Direction)

	assert.Equal(t, "ENPH", records[1].Ticker)
	assert.Equal(t, 0.0, records[1].Delta)

	assert.Equal(t, "FSLR", records[2].Ticker)
	assert.Equal(t, 20.0, records[2].Delta)
	assert.Equal(t, DirectionUp, records[2].Direction)
}
