package agents

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/jfields/renewlens/internal/config"
	"github.com/jfields/renewlens/internal/models"
)

// NewBackend selects the stage backend from configuration. Without an
// LLM provider (or without its key) the deterministic heuristic backend
// is used, which is also the one exercised by tests.
func NewBackend(ctx context.Context, cfg *config.Config) Backend {
	heuristic := NewHeuristicBackend(DefaultHeuristicConfig())

	var (
		cm  model.BaseChatModel
		err error
	)
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			break
		}
		cm, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.LLMModel,
		})
	case "deepseek":
		if cfg.DeepSeekAPIKey == "" {
			break
		}
		cm, err = deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:    cfg.DeepSeekAPIKey,
			BaseURL:   "https://api.deepseek.com/v1",
			Model:     cfg.LLMModel,
			MaxTokens: 2000,
		})
	}
	if err != nil {
		log.Printf("[Agents] chat model init failed, falling back to heuristic: %v", err)
		return heuristic
	}
	if cm == nil {
		return heuristic
	}

	log.Printf("[Agents] using %s backend (%s)", cfg.LLMProvider, cfg.LLMModel)
	return &ModelBackend{model: cm, heuristic: heuristic}
}

// ModelBackend asks a chat model for each role's summary. Confidence is
// still derived by the deterministic heuristic so the aggregation and
// refinement loop behave identically across backends.
type ModelBackend struct {
	model     model.BaseChatModel
	heuristic *HeuristicBackend
}

func (m *ModelBackend) Analyze(ctx context.Context, role Role, rc *Context) (models.SpecialistOutput, error) {
	msgs := []*schema.Message{
		schema.SystemMessage(role.SystemPrompt),
		schema.UserMessage(m.buildUserPrompt(role, rc)),
	}

	resp, err := m.model.Generate(ctx, msgs)
	if err != nil {
		log.Printf("[Agents] %s generate failed, degrading to heuristic: %v", role.Name, err)
		return m.heuristic.Analyze(ctx, role, rc)
	}

	summary := strings.TrimSpace(resp.Content)
	if summary == "" {
		return m.heuristic.Analyze(ctx, role, rc)
	}

	return models.SpecialistOutput{
		Role:       role.Name,
		Summary:    summary,
		Confidence: m.heuristic.Confidence(summary),
	}, nil
}

func (m *ModelBackend) buildUserPrompt(role Role, rc *Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s (%s). Lookback: %d days.\n",
		rc.Ticker, rc.Metadata.LongName, rc.Days)

	for _, tool := range role.Tools {
		switch tool {
		case ToolPriceHistory:
			if n := len(rc.Prices); n > 0 {
				last := rc.Prices[n-1]
				fmt.Fprintf(&b, "Price history: %d sessions, last close %s on %s.\n",
					n, last.Close.StringFixed(2), last.Date.Format("2006-01-02"))
			}
		case ToolCompanyNews:
			for i, a := range rc.News {
				if i >= 5 {
					break
				}
				fmt.Fprintf(&b, "News: %s (%s)\n", a.Title, a.URL)
			}
		case ToolSectorHeadlines:
			for i, a := range rc.SectorNews {
				if i >= 5 {
					break
				}
				fmt.Fprintf(&b, "Sector: %s\n", a.Title)
			}
		case ToolFilings:
			for i, f := range rc.Filings {
				if i >= 5 {
					break
				}
				fmt.Fprintf(&b, "Filing: %s filed %s\n", f.Form, f.FiledAt)
			}
		case ToolMacroSnapshot:
			if rc.Macro != nil {
				fmt.Fprintf(&b, "Macro indicators available: %d\n", rc.Macro.IndicatorCount())
			}
		}
	}

	b.WriteString("Write a 3-5 sentence analysis with a clear directional view.")
	return b.String()
}
