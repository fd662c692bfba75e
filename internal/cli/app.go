// Package cli is the cobra command surface and interactive shell.
package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/jfields/renewlens/internal/agents"
	"github.com/jfields/renewlens/internal/config"
	"github.com/jfields/renewlens/internal/dataflows"
	"github.com/jfields/renewlens/internal/debug"
	"github.com/jfields/renewlens/internal/graph"
	"github.com/jfields/renewlens/internal/history"
	"github.com/jfields/renewlens/internal/memory"
)

// App holds the wired pipeline shared by every command. Built once per
// process, lazily on first use.
type App struct {
	Cfg      *config.Config
	Data     *dataflows.Bundle
	Research *graph.ResearchGraph
	NL       *graph.NLGraph
	Reports  *history.Store
	Memory   *memory.Store
}

// NewApp wires adapters, memory, and both graphs from the config.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("preparing directories: %w", err)
	}

	// The devops server must be up before graph compilation.
	dbg := debug.NewEinoDebugger(cfg)
	if err := dbg.Initialize(ctx); err != nil {
		log.Printf("[App] eino debug server unavailable: %v", err)
	}

	bundle := dataflows.NewBundle(cfg)
	backend := agents.NewBackend(ctx, cfg)

	mem, err := memory.Open(cfg.MemoryDBPath)
	if err != nil {
		log.Printf("[App] memory store unavailable, learnings disabled: %v", err)
		mem = nil
	}

	research, err := graph.NewResearchGraph(ctx, cfg, bundle, backend, mem)
	if err != nil {
		return nil, err
	}
	nl, err := graph.NewNLGraph(ctx, cfg, bundle, research)
	if err != nil {
		return nil, err
	}

	return &App{
		Cfg:      cfg,
		Data:     bundle,
		Research: research,
		NL:       nl,
		Reports:  history.NewStore(cfg.ReportsDir, cfg.ArchiveDir),
		Memory:   mem,
	}, nil
}

// Close releases held resources.
func (a *App) Close() {
	if a.Memory != nil {
		if err := a.Memory.Close(); err != nil {
			log.Printf("[App] closing memory store: %v", err)
		}
	}
}
