package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/charmbracelet/lipgloss"

	"github.com/jfields/renewlens/internal/config"
	"github.com/jfields/renewlens/internal/display"
	"github.com/jfields/renewlens/internal/history"
)

const (
	menuAnalyze    = "Analyze a ticker"
	menuAnalyzeAll = "Analyze the whole watchlist"
	menuAsk        = "Ask a question"
	menuDeltas     = "Show confidence deltas"
	menuRunHistory = "Show run history"
	menuArchive    = "Archive current reports"
	menuQuit       = "Quit"
)

var bannerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#10B981")).
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#10B981")).
	Padding(1, 2)

// runInteractiveMode drives the menu loop until the user quits. When a
// config manager is available the session watches config.json and
// rebuilds the pipeline on external edits, so key or threshold changes
// take effect without a restart.
func runInteractiveMode(ctx context.Context, cfg *config.Config, mgr *config.Manager) error {
	fmt.Println(bannerStyle.Render("RenewLens — renewable energy equity research"))
	fmt.Println()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	first, err := NewApp(ctx, cfg)
	if err != nil {
		return err
	}

	var current atomic.Pointer[App]
	current.Store(first)
	defer func() { current.Load().Close() }()

	if mgr != nil {
		if err := watchConfig(ctx, mgr, &current, cfg.Debug); err != nil {
			log.Printf("[Config] live reload unavailable: %v", err)
		}
	}

	for {
		app := current.Load()

		choice, err := PromptForMenuChoice()
		if err != nil {
			if errors.Is(err, terminal.InterruptErr) {
				return nil
			}
			return err
		}

		switch choice {
		case menuAnalyze:
			err = interactiveAnalyze(ctx, app)
		case menuAnalyzeAll:
			err = analyzeWatchlist(ctx, app, 0, false)
		case menuAsk:
			err = interactiveAsk(ctx, app)
		case menuDeltas:
			err = interactiveDeltas(ctx, app)
		case menuRunHistory:
			err = interactiveRunHistory(app)
		case menuArchive:
			err = interactiveArchive(app)
		case menuQuit:
			return nil
		}

		if err != nil {
			if errors.Is(err, terminal.InterruptErr) {
				continue
			}
			fmt.Printf("error: %v\n", err)
		}
		fmt.Println()
	}
}

// watchConfig rebuilds the pipeline whenever config.json changes on
// disk. The command-line debug flag survives reloads.
func watchConfig(ctx context.Context, mgr *config.Manager, current *atomic.Pointer[App], debugFlag bool) error {
	return mgr.Watch(ctx, func(next config.Config) {
		next.Debug = next.Debug || debugFlag
		rebuilt, err := NewApp(ctx, &next)
		if err != nil {
			log.Printf("[Config] reload failed, keeping previous pipeline: %v", err)
			return
		}
		if old := current.Swap(rebuilt); old != nil {
			old.Close()
		}
		log.Printf("[Config] reloaded %s", mgr.Path())
	})
}

func interactiveAnalyze(ctx context.Context, app *App) error {
	ticker, err := PromptForTicker()
	if err != nil {
		return err
	}
	return analyzeOne(ctx, app, ticker, 0, false)
}

func interactiveAsk(ctx context.Context, app *App) error {
	question, err := PromptForQuestion()
	if err != nil {
		return err
	}
	resp := app.NL.ProcessQuery(ctx, question)
	fmt.Println(display.RenderEnvelope(resp))
	return nil
}

// interactiveDeltas shows the comparison table, first filling an empty
// current set by analyzing the watchlist.
func interactiveDeltas(ctx context.Context, app *App) error {
	current, previous, prevDir, err := app.Reports.LoadCurrentAndPrevious()
	if err != nil {
		return err
	}

	if len(current) == 0 {
		ok, err := PromptConfirm("No current reports found. Analyze the watchlist now?", true)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := analyzeWatchlist(ctx, app, 0, false); err != nil {
			return err
		}
		current, previous, prevDir, err = app.Reports.LoadCurrentAndPrevious()
		if err != nil {
			return err
		}
	}

	rows := history.ComputeConfidenceDeltas(current, previous)
	fmt.Println(display.RenderDeltaTable(rows, prevDir))
	return nil
}

func interactiveRunHistory(app *App) error {
	records, err := app.Reports.ScanRunHistory()
	if err != nil {
		return err
	}
	fmt.Println(display.RenderRunHistory(records))
	return nil
}

func interactiveArchive(app *App) error {
	name, err := app.Reports.Archive()
	if err != nil {
		return err
	}
	if name == "" {
		fmt.Println("nothing to archive")
		return nil
	}
	fmt.Printf("archived current reports to archive/%s\n", name)
	return nil
}
