// MarketPulse — news-driven stock impact analysis.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pulseworks/marketpulse/internal/config"
	"github.com/pulseworks/marketpulse/internal/pipeline"
	"github.com/pulseworks/marketpulse/pkg/logger"
	"github.com/pulseworks/marketpulse/pkg/models"
	"github.com/pulseworks/marketpulse/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var (
	cfg *config.Config
	log zerolog.Logger
	pl  *pipeline.Pipeline
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "marketpulse",
	Short: "MarketPulse — news-driven stock impact analysis",
	Long: `MarketPulse correlates financial news with market data.
It fetches headlines from configured sources, identifies the stocks each
article affects, scores the sentiment, and ranks articles by their observed
market impact.`,
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
		log = logger.New(logger.Config{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Output: cfg.Logging.Output,
		})
		pl = pipeline.New(cfg, log)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(technicalCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("MarketPulse %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- News Command ---

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Fetch recent news and rank articles by market impact",
	RunE: func(cmd *cobra.Command, args []string) error {
		todayOnly, _ := cmd.Flags().GetBool("today")

		impacts, err := pl.GetRecentNews(cmd.Context(), todayOnly)
		if err != nil {
			return err
		}
		if len(impacts) == 0 {
			fmt.Println("No market-moving news found.")
			return nil
		}

		fmt.Printf("📰 %d market-moving article(s)\n\n", len(impacts))
		for i, imp := range impacts {
			fmt.Printf("%2d. [%.2f %s] %s\n", i+1, imp.ImpactScore, imp.ImpactLevel, imp.Article.Title)
			fmt.Printf("    %s | %s | sentiment: %s (%.2f)\n",
				imp.Article.Source,
				strings.Join(imp.Symbols, ", "),
				imp.Sentiment.Assessment,
				imp.Sentiment.Polarity)
			for _, sym := range imp.Symbols {
				if m := imp.Metrics[sym]; m != nil {
					fmt.Printf("    %s %s (%s)\n",
						sym, utils.FormatPrice(m.CurrentPrice), utils.FormatPercent(m.DailyChangePct))
				}
			}
		}
		return nil
	},
}

func init() {
	newsCmd.Flags().Bool("today", false, "only include articles published today")
}

// --- Metrics Command ---

var metricsCmd = &cobra.Command{
	Use:   "metrics [symbol]",
	Short: "Show current market metrics for a stock",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := pl.GetStockMetrics(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("📊 %s\n", m.Symbol)
		fmt.Printf("  Price:        %s (%s)\n", utils.FormatPrice(m.CurrentPrice), utils.FormatPercent(m.DailyChangePct))
		fmt.Printf("  Prev Close:   %s\n", utils.FormatPrice(m.PrevClose))
		fmt.Printf("  Day Range:    %s – %s\n", utils.FormatPrice(m.IntradayLow), utils.FormatPrice(m.IntradayHigh))
		fmt.Printf("  Volume:       %s (avg %s, %s)\n",
			utils.FormatVolume(m.Volume), utils.FormatVolume(int64(m.AvgVolume)), utils.FormatPercent(m.VolumeChangePct))
		return nil
	},
}

// --- Compare Command ---

var compareCmd = &cobra.Command{
	Use:   "compare [symbols...]",
	Short: "Compare stock performance over a period",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		period, _ := cmd.Flags().GetString("period")

		cmps, err := pl.Compare(cmd.Context(), args, models.Period(period))
		if err != nil {
			return err
		}

		fmt.Printf("📈 Performance over %s\n\n", period)
		for _, c := range cmps {
			fmt.Printf("  %-6s %s → %s  (%s)\n",
				c.Symbol,
				utils.FormatPrice(c.InitialPrice),
				utils.FormatPrice(c.CurrentPrice),
				utils.FormatPercent(c.ChangePct))
		}
		return nil
	},
}

func init() {
	compareCmd.Flags().String("period", "1M", "comparison period (1W, 1M, 3M, 6M, 1Y)")
}

// --- Technical Command ---

var technicalCmd = &cobra.Command{
	Use:   "technical [symbol]",
	Short: "Run technical analysis on a stock",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		period, _ := cmd.Flags().GetString("period")

		ti, err := pl.TechnicalIndicators(cmd.Context(), args[0], models.Period(period))
		if err != nil {
			return err
		}
		signals, agg, conf, err := pl.Signals(cmd.Context(), args[0], models.Period(period))
		if err != nil {
			return err
		}

		fmt.Printf("📊 Technical Analysis: %s (%s)\n\n", ti.Symbol, period)
		fmt.Printf("  RSI(14):   %.1f\n", ti.RSI)
		fmt.Printf("  MACD:      %.2f / signal %.2f / hist %.2f\n",
			ti.MACD.MACDLine, ti.MACD.SignalLine, ti.MACD.Histogram)
		fmt.Printf("  Bollinger: %.2f / %.2f / %.2f\n",
			ti.Bollinger.Lower, ti.Bollinger.Middle, ti.Bollinger.Upper)
		fmt.Printf("  ADX(14):   %.1f\n", ti.ADX)
		for _, p := range []int{20, 50, 200} {
			if v, ok := ti.SMA[p]; ok {
				fmt.Printf("  SMA(%d):  %s\n", p, utils.FormatPrice(v))
			}
		}

		if len(signals) > 0 {
			fmt.Println("\n  Signals:")
			for _, s := range signals {
				fmt.Printf("    %-16s %-7s %.0f%%  %s\n", s.Source, s.Type, s.Confidence*100, s.Reason)
			}
		}
		fmt.Printf("\n  Overall: %s (%.0f%% confidence)\n", agg, conf*100)
		return nil
	},
}

func init() {
	technicalCmd.Flags().String("period", "3M", "analysis period (1W, 1M, 3M, 6M, 1Y)")
}
