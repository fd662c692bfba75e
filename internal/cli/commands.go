package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jfields/renewlens/internal/config"
	"github.com/jfields/renewlens/internal/display"
	"github.com/jfields/renewlens/internal/history"
	"github.com/jfields/renewlens/internal/models"
	"github.com/jfields/renewlens/internal/watchlist"
)

const version = "1.0.0"

// loadConfig layers the on-disk config.json over environment defaults.
// When the config file cannot be managed the environment config still
// works, just without live reload.
func loadConfig() (*config.Config, *config.Manager) {
	envCfg := config.DefaultConfig()
	mgr, err := config.NewManager(
		config.WithConfigDir(envCfg.ProjectDir),
		config.WithInitialConfig(envCfg),
	)
	if err != nil {
		log.Printf("[Config] config.json unavailable, using environment only: %v", err)
		return envCfg, nil
	}
	cfg := mgr.Get()
	return &cfg, mgr
}

// NewRootCmd builds the command tree. Running without a subcommand
// starts the interactive shell.
func NewRootCmd() *cobra.Command {
	cfg, mgr := loadConfig()

	rootCmd := &cobra.Command{
		Use:   "renewlens",
		Short: "RenewLens - renewable energy equity research",
		Long: `RenewLens coordinates market data, news, SEC filings, and macro series
into scored research reports for renewable-energy tickers, and answers
free-text questions about the sector.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debugFlag, _ := cmd.Flags().GetBool("debug"); debugFlag {
				cfg.Debug = true
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractiveMode(cmd.Context(), cfg, mgr)
		},
	}

	rootCmd.AddCommand(newAnalyzeCmd(cfg))
	rootCmd.AddCommand(newAskCmd(cfg))
	rootCmd.AddCommand(newHistoryCmd(cfg))
	rootCmd.AddCommand(newArchiveCmd(cfg))
	rootCmd.AddCommand(newConfigCmd(cfg, mgr))
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	return rootCmd
}

func newAnalyzeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [TICKER]",
		Short: "Run a research report for a ticker",
		Long: `Run the full research pipeline for one ticker, or for the whole
watchlist with --all.
Example: renewlens analyze FSLR --days=60`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, _ := cmd.Flags().GetInt("days")
			refresh, _ := cmd.Flags().GetBool("refresh")
			all, _ := cmd.Flags().GetBool("all")

			app, err := NewApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			if all {
				return analyzeWatchlist(cmd.Context(), app, days, refresh)
			}
			if len(args) == 0 {
				return fmt.Errorf("ticker is required unless --all is set")
			}
			return analyzeOne(cmd.Context(), app, args[0], days, refresh)
		},
	}

	cmd.Flags().Int("days", 0, "Lookback window in days (default from config)")
	cmd.Flags().Bool("refresh", false, "Bypass cached adapter responses")
	cmd.Flags().Bool("all", false, "Analyze every watchlist ticker")
	return cmd
}

func analyzeOne(ctx context.Context, app *App, ticker string, days int, refresh bool) error {
	report := app.Research.Run(ctx, ticker, days, refresh)
	if err := app.Reports.SaveReport(report); err != nil {
		return fmt.Errorf("saving report: %w", err)
	}
	fmt.Println(display.RenderReport(report))
	return nil
}

func analyzeWatchlist(ctx context.Context, app *App, days int, refresh bool) error {
	tickers := watchlist.Tickers()
	for i, ticker := range tickers {
		fmt.Printf("[%d/%d] analyzing %s...\n", i+1, len(tickers), ticker)
		report := app.Research.Run(ctx, ticker, days, refresh)
		if err := app.Reports.SaveReport(report); err != nil {
			log.Printf("[Analyze] saving report for %s failed: %v", ticker, err)
			continue
		}
		fmt.Printf("  %s  %s  confidence %.1f%%\n",
			report.Recommendation, report.MarketOutlook, report.Confidence*100)
	}
	fmt.Printf("analyzed %d tickers\n", len(tickers))
	return nil
}

func newAskCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "ask [QUESTION]",
		Short: "Ask a free-text question about the sector",
		Long: `Route a natural-language question through the query pipeline.
Example: renewlens ask "compare ENPH vs RUN performance this quarter"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			resp := app.NL.ProcessQuery(cmd.Context(), strings.Join(args, " "))
			fmt.Println(display.RenderEnvelope(resp))
			return nil
		},
	}
}

func newHistoryCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show confidence deltas against the previous run",
		RunE: func(cmd *cobra.Command, args []string) error {
			csvPath, _ := cmd.Flags().GetString("csv")
			runs, _ := cmd.Flags().GetBool("runs")

			store := history.NewStore(cfg.ReportsDir, cfg.ArchiveDir)
			if runs {
				records, err := store.ScanRunHistory()
				if err != nil {
					return err
				}
				fmt.Println(display.RenderRunHistory(records))
				return nil
			}

			baseline, _ := cmd.Flags().GetString("baseline")
			var (
				current, previous map[string]*models.ExecutiveSummary
				prevDir           string
				err               error
			)
			if baseline != "" {
				current, previous, err = store.LoadCurrentAndBaseline(baseline)
				prevDir = baseline
			} else {
				current, previous, prevDir, err = store.LoadCurrentAndPrevious()
			}
			if err != nil {
				return err
			}
			rows := history.ComputeConfidenceDeltas(current, previous)

			if csvPath != "" {
				f, err := os.Create(csvPath)
				if err != nil {
					return fmt.Errorf("creating csv file: %w", err)
				}
				defer f.Close()
				if err := history.WriteCSV(f, rows); err != nil {
					return err
				}
				fmt.Printf("wrote %d rows to %s\n", len(rows), csvPath)
				return nil
			}

			fmt.Println(display.RenderDeltaTable(rows, prevDir))
			return nil
		},
	}

	cmd.Flags().String("csv", "", "Export the delta table to a CSV file")
	cmd.Flags().Bool("runs", false, "Show the full per-archive run timeline instead")
	cmd.Flags().String("baseline", "", "Compare against a specific archive directory instead of the latest")
	return cmd
}

func newArchiveCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "archive",
		Short: "Move the current report set into a timestamped archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := history.NewStore(cfg.ReportsDir, cfg.ArchiveDir)
			name, err := store.Archive()
			if err != nil {
				return fmt.Errorf("archive failed: %w", err)
			}
			if name == "" {
				fmt.Println("nothing to archive")
				return nil
			}
			fmt.Printf("archived current reports to archive/%s\n", name)
			return nil
		},
	}
}

func newConfigCmd(cfg *config.Config, mgr *config.Manager) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Run: func(cmd *cobra.Command, args []string) {
			if mgr != nil {
				fmt.Printf("Config File:        %s\n", mgr.Path())
			}
			showConfig(cfg)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig(cfg)
		},
	})

	return configCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("RenewLens v%s\n", version)
			fmt.Println("Renewable energy equity research pipeline")
		},
	}
}

func showConfig(cfg *config.Config) {
	fmt.Println("RenewLens Configuration")
	fmt.Println("═══════════════════════════════════════")
	fmt.Printf("Project Directory:  %s\n", cfg.ProjectDir)
	fmt.Printf("Reports Directory:  %s\n", cfg.ReportsDir)
	fmt.Printf("Archive Directory:  %s\n", cfg.ArchiveDir)
	fmt.Printf("Cache Directory:    %s\n", cfg.DataCacheDir)
	fmt.Printf("Memory Database:    %s\n", cfg.MemoryDBPath)
	fmt.Println()
	fmt.Printf("LLM Provider:       %s\n", cfg.LLMProvider)
	fmt.Printf("LLM Model:          %s\n", cfg.LLMModel)
	fmt.Println()
	fmt.Printf("Lookback Days:      %d\n", cfg.DefaultLookbackDays)
	fmt.Printf("Refine Rounds:      %d\n", cfg.MaxRefineRounds)
	fmt.Printf("Eval Threshold:     %.2f\n", cfg.EvalThreshold)
	fmt.Println()
	fmt.Printf("Cache Enabled:      %t\n", cfg.CacheEnabled)
	fmt.Printf("Debug Mode:         %t\n", cfg.Debug)
	fmt.Printf("Eino Debug:         %t\n", cfg.EinoDebugEnabled)
	if cfg.EinoDebugEnabled {
		fmt.Printf("Eino Debug URL:     http://localhost:%d\n", cfg.EinoDebugPort)
	}
	fmt.Println()

	fmt.Println("API Configuration:")
	fmt.Println("─────────────────────")
	printKeyStatus("OpenAI API", cfg.OpenAIAPIKey != "")
	printKeyStatus("DeepSeek API", cfg.DeepSeekAPIKey != "")
	printKeyStatus("NewsAPI", cfg.NewsAPIKey != "")
	printKeyStatus("FRED API", cfg.FredAPIKey != "")
	fmt.Printf("SEC User Agent:     %s\n", cfg.SECUserAgent)
}

func printKeyStatus(name string, configured bool) {
	status := "not configured"
	if configured {
		status = "configured"
	}
	fmt.Printf("%-19s %s\n", name+":", status)
}

func validateConfig(cfg *config.Config) error {
	fmt.Println("Validating RenewLens configuration...")

	fmt.Print("  directories... ")
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Println("FAIL")
		return fmt.Errorf("directory validation failed: %w", err)
	}
	fmt.Println("ok")

	fmt.Print("  values... ")
	if err := cfg.Validate(); err != nil {
		fmt.Println("FAIL")
		return err
	}
	fmt.Println("ok")

	var warnings []string
	if cfg.LLMProvider != "heuristic" && cfg.OpenAIAPIKey == "" && cfg.DeepSeekAPIKey == "" {
		warnings = append(warnings, "no LLM API key; specialist stage falls back to the heuristic backend")
	}
	if cfg.NewsAPIKey == "" {
		warnings = append(warnings, "NewsAPI key not configured; news coverage will be empty")
	}
	if cfg.FredAPIKey == "" {
		warnings = append(warnings, "FRED API key not configured; macro snapshot will be empty")
	}

	if len(warnings) == 0 {
		fmt.Println("configuration valid")
		return nil
	}
	fmt.Printf("configuration valid with %d warnings:\n", len(warnings))
	for _, w := range warnings {
		fmt.Printf("  - %s\n", w)
	}
	return nil
}
