package agents

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/jfields/renewlens/internal/dataflows"
	"github.com/jfields/renewlens/internal/models"
)

// Context is the read-only material handed to every role in one stage
// invocation. Roles never see each other's output.
type Context struct {
	Ticker     string
	Days       int
	Metadata   dataflows.TickerMetadata
	Prices     []dataflows.PricePoint
	News       []dataflows.NewsArticle
	SectorNews []dataflows.NewsArticle
	Filings    []dataflows.Filing
	Macro      *dataflows.MacroSnapshot
	Routed     []models.RoutedItem
}

// Backend produces one role's output from the shared context.
type Backend interface {
	Analyze(ctx context.Context, role Role, rc *Context) (models.SpecialistOutput, error)
}

// Stage runs every registered role against a context.
type Stage struct {
	backend Backend
	roles   []Role
}

func NewStage(backend Backend) *Stage {
	return &Stage{backend: backend, roles: Registry}
}

// Run fans the roles out concurrently and collects their outputs keyed by
// role name. A failing role yields a zero-confidence placeholder instead
// of aborting the batch, so the orchestrator always gets whatever roles
// succeeded.
func (s *Stage) Run(ctx context.Context, rc *Context) map[string]models.SpecialistOutput {
	outputs := make(map[string]models.SpecialistOutput, len(s.roles))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, role := range s.roles {
		wg.Add(1)
		go func(role Role) {
			defer wg.Done()

			out, err := s.analyzeSafe(ctx, role, rc)
			if err != nil {
				log.Printf("[Stage] role %s failed: %v", role.Name, err)
				out = models.SpecialistOutput{
					Role:    role.Name,
					Summary: fmt.Sprintf("analysis unavailable for %s", role.Name),
					Err:     err.Error(),
				}
			}

			mu.Lock()
			outputs[role.Name] = out
			mu.Unlock()
		}(role)
	}
	wg.Wait()

	return outputs
}

// analyzeSafe converts a backend panic into an error so one misbehaving
// role cannot take down the whole run.
func (s *Stage) analyzeSafe(ctx context.Context, role Role, rc *Context) (out models.SpecialistOutput, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("role %s panicked: %v", role.Name, r)
		}
	}()
	return s.backend.Analyze(ctx, role, rc)
}
