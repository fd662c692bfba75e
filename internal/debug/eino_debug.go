// Package debug hosts the optional eino devops visual-debug server.
package debug

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino-ext/devops"

	"github.com/jfields/renewlens/internal/config"
)

type EinoDebugger struct {
	cfg *config.Config
}

func NewEinoDebugger(cfg *config.Config) *EinoDebugger {
	return &EinoDebugger{cfg: cfg}
}

// Initialize starts the devops debug server when enabled. Must run
// before the graphs are compiled so they register with the server.
func (d *EinoDebugger) Initialize(ctx context.Context) error {
	if !d.cfg.EinoDebugEnabled {
		return nil
	}

	if err := devops.Init(ctx); err != nil {
		return fmt.Errorf("initializing eino debug server: %w", err)
	}
	log.Printf("[EinoDebug] debug server listening at %s", d.DebugURL())
	return nil
}

func (d *EinoDebugger) IsEnabled() bool {
	return d.cfg.EinoDebugEnabled
}

func (d *EinoDebugger) DebugURL() string {
	if !d.cfg.EinoDebugEnabled {
		return ""
	}
	return fmt.Sprintf("http://localhost:%d", d.cfg.EinoDebugPort)
}
