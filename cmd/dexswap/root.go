package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/config"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/dex"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/logging"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/providers"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	providerName string
	envFile      string
	jsonOutput   bool
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "dexswap",
	Short: "Quote and execute Solana swaps through a DEX aggregator",
	Long: `dexswap quotes and executes token swaps on Solana through an aggregator.

Tokens are mint addresses; use 11111111111111111111111111111111 for native SOL.

Examples:
  dexswap quote 11111111111111111111111111111111 EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v 0.5
  dexswap swap EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v 11111111111111111111111111111111 25 --slippage 1
  dexswap watch`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load(envFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&providerName, "provider", "p", "", "Aggregator provider (default from DEX_PROVIDER)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Environment file to load")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// loadConfig reads and validates the environment configuration.
func loadConfig() (*config.Config, *logrus.Logger, error) {
	cfg := config.Load()
	if verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if providerName != "" {
		cfg.Provider = providerName
	}
	return cfg, logging.New(cfg.LogLevel), nil
}

func openProvider() (dex.Provider, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return providers.New(cfg.Provider, cfg, logger)
}

// signalContext is cancelled on Ctrl+C or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printError(err error) {
	if jsonOutput {
		out := map[string]any{"error": err.Error()}
		if de, ok := dex.AsError(err); ok {
			out["stage"] = de.Stage
			out["category"] = de.Category()
			out["retryable"] = de.Retryable()
			if de.Signature != "" {
				out["signature"] = de.Signature
			}
		}
		_ = printJSON(out)
		return
	}

	fmt.Fprintf(os.Stderr, "\n%s %v\n", color.RedString("Error:"), err)
	if de, ok := dex.AsError(err); ok {
		fmt.Fprintf(os.Stderr, "  Stage:      %s\n", de.Stage)
		fmt.Fprintf(os.Stderr, "  Category:   %s\n", de.Category())
		if de.Signature != "" {
			fmt.Fprintf(os.Stderr, "  Tx:         %s\n", color.CyanString(de.Signature))
		}
		if de.Retryable() {
			color.Yellow("  Retry from a fresh quote is safe.\n")
		}
	}
	fmt.Fprintln(os.Stderr)
}

func printQuote(q *dex.Quote) {
	fmt.Printf("\n  Provider:         %s\n", q.Provider)
	fmt.Printf("  You pay:          %s %s\n", q.InAmount.String(), tokenLabel(q.From))
	fmt.Printf("  You receive:      %s %s\n", color.GreenString(q.OutAmount.String()), tokenLabel(q.To))
	fmt.Printf("  Minimum received: %s %s\n", dex.ToHuman(q.MinOutAmountRaw, q.To.Decimals).String(), tokenLabel(q.To))
	fmt.Printf("  Price impact:     %s%%\n", q.PriceImpactPct.StringFixed(4))
	fmt.Printf("  Slippage:         %d bps\n", q.SlippageBps)
	if len(q.RouteLabels) > 0 {
		fmt.Printf("  Route:            %v\n", q.RouteLabels)
	}
	fmt.Println()
}

func tokenLabel(t dex.TokenDescriptor) string {
	if t.Symbol != "" {
		return t.Symbol
	}
	return t.Address
}
