// nsenews collects Indian financial news, scores it for investment
// relevance and reports on the NSE companies it mentions.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/seenimoa/nsenews/api"
	"github.com/seenimoa/nsenews/internal/config"
	"github.com/seenimoa/nsenews/internal/logging"
	"github.com/seenimoa/nsenews/internal/pipeline"
	"github.com/seenimoa/nsenews/internal/report"
	"github.com/seenimoa/nsenews/pkg/models"
	"github.com/seenimoa/nsenews/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger
var (
	cfg    *config.Config
	logger *slog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "nsenews",
	Short: "NSE company news analysis",
	Long: `nsenews reads Indian financial news feeds, matches articles to
NSE-listed companies and scores each one for sentiment, market impact
and investment relevance.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			cfg.Logging.Level = "debug"
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err = logging.Init(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(companiesCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("nsenews %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full news analysis",
	Long: `Fetch general and company news from every configured source, analyze
it and print the report. With --input, articles are read from a JSON file
instead of the network.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		output, _ := cmd.Flags().GetString("output")
		noSave, _ := cmd.Flags().GetBool("no-save")

		p, err := buildPipeline(cfg, logger)
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()

		var res models.PipelineResult
		if input != "" {
			articles, err := pipeline.LoadArticles(input)
			if err != nil {
				return err
			}
			res = p.AnalyzeArticles(ctx, articles)
		} else {
			res, err = p.RunFull(ctx)
			if err != nil {
				return err
			}
		}
		return finish(cmd, res, output, noSave)
	},
}

func init() {
	analyzeCmd.Flags().String("input", "", "analyze articles from a JSON file instead of fetching")
	analyzeCmd.Flags().String("output", "", "result file name (default: timestamped)")
	analyzeCmd.Flags().Bool("no-save", false, "print the report without saving the result")
	analyzeCmd.Flags().Bool("styled", false, "colour report headings")
}

// --- Companies Command ---

var companiesCmd = &cobra.Command{
	Use:   "companies SYMBOL...",
	Short: "Analyze news for specific companies",
	Example: `  nsenews companies TCS INFY RELIANCE
  nsenews companies hdfcbank.ns --output hdfc.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		noSave, _ := cmd.Flags().GetBool("no-save")

		p, err := buildPipeline(cfg, logger)
		if err != nil {
			return err
		}
		if p.Registry().Len() == 0 {
			return fmt.Errorf("company list %q is required for targeted analysis", cfg.Registry.CompaniesFile)
		}
		ctx, cancel := signalContext()
		defer cancel()

		res, err := p.RunCompanies(ctx, utils.NormalizeSymbols(args))
		if err != nil {
			return err
		}
		return finish(cmd, res, output, noSave)
	},
}

func init() {
	companiesCmd.Flags().String("output", "", "result file name (default: timestamped)")
	companiesCmd.Flags().Bool("no-save", false, "print the report without saving the result")
	companiesCmd.Flags().Bool("styled", false, "colour report headings")
}

// finish saves res unless disabled and prints its text report.
func finish(cmd *cobra.Command, res models.PipelineResult, output string, noSave bool) error {
	if !noSave {
		path, err := pipeline.SaveResult(cfg.Output.Dir, res, output)
		if err != nil {
			return err
		}
		logger.Info("results saved", "path", path)
	}

	rc := report.DefaultConfig()
	rc.Styled, _ = cmd.Flags().GetBool("styled")
	fmt.Fprintln(cmd.OutOrStdout(), report.RenderText(res, rc))
	return nil
}

// --- Report Command ---

var reportCmd = &cobra.Command{
	Use:   "report [result.json]",
	Short: "Render a saved result as a text or HTML report",
	Long:  "Render a saved result. Without an argument the latest result in the output directory is used.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		formatName, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")
		format, err := report.ParseFormat(formatName)
		if err != nil {
			return err
		}

		path := filepath.Join(cfg.Output.Dir, pipeline.LatestFile)
		if len(args) == 1 {
			path = args[0]
		}
		res, err := pipeline.LoadResult(path)
		if err != nil {
			return err
		}

		rc := report.DefaultConfig()
		rc.Styled, _ = cmd.Flags().GetBool("styled")
		rc.Styled = rc.Styled && format == report.FormatText && out == ""

		text, err := report.Generate(res, format, rc)
		if errors.Is(err, report.ErrNoData) {
			text, err = report.NoDataMessage, nil
		}
		if err != nil {
			return err
		}

		if out == "" {
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		}
		if err := os.WriteFile(out, []byte(text), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		logger.Info("report written", "path", out, "format", format)
		return nil
	},
}

func init() {
	reportCmd.Flags().String("format", "text", "report format (text, html)")
	reportCmd.Flags().String("out", "", "write the report to a file instead of stdout")
	reportCmd.Flags().Bool("styled", false, "colour report headings (text only)")
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if schedule, _ := cmd.Flags().GetString("refresh"); cmd.Flags().Changed("refresh") {
			cfg.API.RefreshSchedule = schedule
		}
		p, err := buildPipeline(cfg, logger)
		if err != nil {
			return err
		}
		srv := api.NewServer(cfg, p, api.WithLogger(logger), api.WithVersion(version))
		return srv.ListenAndServe(cfg.API.Addr())
	},
}

func init() {
	serveCmd.Flags().String("refresh", "", "cron schedule for background refreshes, empty disables")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and the latest saved result",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, "═══════════════════════════════════════")
		fmt.Fprintln(w, "  nsenews System Status")
		fmt.Fprintln(w, "═══════════════════════════════════════")
		fmt.Fprintf(w, "  Version:       %s (%s)\n", version, commit)
		fmt.Fprintf(w, "  Time (IST):    %s\n", utils.FormatDateTimeIST(utils.NowIST()))
		fmt.Fprintln(w)

		fmt.Fprintln(w, "  Configuration:")
		fmt.Fprintf(w, "    Sentiment:     %s\n", cfg.Sentiment.Engine)
		fmt.Fprintf(w, "    Company list:  %s\n", cfg.Registry.CompaniesFile)
		fmt.Fprintf(w, "    Sources:       %d\n", len(buildSources(cfg.Sources)))
		fmt.Fprintf(w, "    Output dir:    %s\n", cfg.Output.Dir)
		fmt.Fprintf(w, "    API Server:    %s\n", cfg.API.Addr())
		fmt.Fprintln(w)

		fmt.Fprintln(w, "  Latest result:")
		res, err := pipeline.LoadLatest(cfg.Output.Dir)
		switch {
		case errors.Is(err, os.ErrNotExist):
			fmt.Fprintln(w, "    none")
		case err != nil:
			fmt.Fprintf(w, "    unreadable: %v\n", err)
		default:
			fmt.Fprintf(w, "    Timestamp:     %s\n", utils.FormatDateTimeIST(res.Timestamp))
			fmt.Fprintf(w, "    Analyzed:      %d\n", res.AnalyzedArticles)
			fmt.Fprintf(w, "    Relevant:      %d\n", res.RelevantArticles)
			if res.Error != "" {
				fmt.Fprintf(w, "    Error:         %s\n", res.Error)
			}
		}

		fmt.Fprintln(w, "═══════════════════════════════════════")
		return nil
	},
}
