package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ProjectDir   string `json:"project_dir"`
	ReportsDir   string `json:"reports_dir"`
	ArchiveDir   string `json:"archive_dir"`
	DataCacheDir string `json:"data_cache_dir"`
	MemoryDBPath string `json:"memory_db_path"`

	// Specialist backend. "heuristic" needs no credentials; "openai" and
	// "deepseek" require the matching API key.
	LLMProvider    string `json:"llm_provider"`
	LLMModel       string `json:"llm_model"`
	OpenAIAPIKey   string `json:"openai_api_key"`
	DeepSeekAPIKey string `json:"deepseek_api_key"`

	// Data adapter credentials. An empty key degrades the adapter to its
	// keyless fallback (or to empty results), never to an error.
	NewsAPIKey   string `json:"newsapi_key"`
	FredAPIKey   string `json:"fred_api_key"`
	SECUserAgent string `json:"sec_user_agent"`

	DefaultLookbackDays int     `json:"default_lookback_days"`
	MaxRefineRounds     int     `json:"max_refine_rounds"`
	EvalThreshold       float64 `json:"eval_threshold"`
	MaxRunSteps         int     `json:"max_run_steps"`
	NLMaxRunSteps       int     `json:"nl_max_run_steps"`

	CacheEnabled bool `json:"cache_enabled"`
	Debug        bool `json:"debug"`

	// Eino debug server
	EinoDebugEnabled bool `json:"eino_debug_enabled"`
	EinoDebugPort    int  `json:"eino_debug_port"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()
	cfg := DefaultConfigWithRoot(currentDir)

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg.loadFromEnv()
	return cfg
}

func DefaultConfigWithRoot(root string) *Config {
	return &Config{
		ProjectDir:   root,
		ReportsDir:   root,
		ArchiveDir:   filepath.Join(root, "archive"),
		DataCacheDir: filepath.Join(root, "data", "cache"),
		MemoryDBPath: filepath.Join(root, "data", "memory.db"),

		LLMProvider: "heuristic",
		LLMModel:    "gpt-4o-mini",

		SECUserAgent: "renewlens research contact@example.com",

		DefaultLookbackDays: 30,
		MaxRefineRounds:     2,
		EvalThreshold:       0.8,
		MaxRunSteps:         25,
		NLMaxRunSteps:       10,

		CacheEnabled: true,
		Debug:        false,

		EinoDebugEnabled: false,
		EinoDebugPort:    52538,
	}
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("PROJECT_DIR"); val != "" {
		c.ProjectDir = val
	}
	if val := os.Getenv("REPORTS_DIR"); val != "" {
		c.ReportsDir = val
	}
	if val := os.Getenv("ARCHIVE_DIR"); val != "" {
		c.ArchiveDir = val
	}
	if val := os.Getenv("DATA_CACHE_DIR"); val != "" {
		c.DataCacheDir = val
	}
	if val := os.Getenv("MEMORY_DB_PATH"); val != "" {
		c.MemoryDBPath = val
	}

	if val := os.Getenv("LLM_PROVIDER"); val != "" {
		c.LLMProvider = val
	}
	if val := os.Getenv("LLM_MODEL"); val != "" {
		c.LLMModel = val
	}
	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		c.OpenAIAPIKey = val
	}
	if val := os.Getenv("DEEPSEEK_API_KEY"); val != "" {
		c.DeepSeekAPIKey = val
	}

	if val := os.Getenv("NEWSAPI_KEY"); val != "" {
		c.NewsAPIKey = val
	}
	if val := os.Getenv("FRED_API_KEY"); val != "" {
		c.FredAPIKey = val
	}
	if val := os.Getenv("SEC_USER_AGENT"); val != "" {
		c.SECUserAgent = val
	}

	if val := os.Getenv("DEFAULT_LOOKBACK_DAYS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.DefaultLookbackDays = v
		}
	}
	if val := os.Getenv("MAX_REFINE_ROUNDS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxRefineRounds = v
		}
	}
	if val := os.Getenv("EVAL_THRESHOLD"); val != "" {
		if v, err := strconv.ParseFloat(val, 64); err == nil {
			c.EvalThreshold = v
		}
	}
	if val := os.Getenv("MAX_RUN_STEPS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxRunSteps = v
		}
	}
	if val := os.Getenv("NL_MAX_RUN_STEPS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.NLMaxRunSteps = v
		}
	}

	if val := os.Getenv("CACHE_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.CacheEnabled = enabled
		}
	}
	if val := os.Getenv("RENEWLENS_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}

	if val := os.Getenv("EINO_DEBUG_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.EinoDebugEnabled = enabled
		}
	}
	if val := os.Getenv("EINO_DEBUG_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.EinoDebugPort = port
		}
	}
}

// HasNewsKey reports whether the NewsAPI adapter can hit the real API.
// The core only checks presence; key validity is the provider's problem.
func (c *Config) HasNewsKey() bool { return strings.TrimSpace(c.NewsAPIKey) != "" }

// HasFredKey reports whether the FRED adapter can hit the real API.
func (c *Config) HasFredKey() bool { return strings.TrimSpace(c.FredAPIKey) != "" }

func (c *Config) Validate() error {
	if strings.TrimSpace(c.ReportsDir) == "" {
		return fmt.Errorf("reports_dir is required")
	}
	if strings.TrimSpace(c.ArchiveDir) == "" {
		return fmt.Errorf("archive_dir is required")
	}
	if c.MaxRefineRounds < 0 {
		return fmt.Errorf("max_refine_rounds must be >= 0")
	}
	if c.EvalThreshold < 0 || c.EvalThreshold > 1 {
		return fmt.Errorf("eval_threshold must be within [0,1]")
	}
	return nil
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.ProjectDir, c.ReportsDir, c.ArchiveDir, c.DataCacheDir, filepath.Dir(c.MemoryDBPath)}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}
