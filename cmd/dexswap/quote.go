package main

import (
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/constants"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/dex"
	"github.com/spf13/cobra"
)

var (
	chain        string
	slippage     string
	unrestricted bool
)

var quoteCmd = &cobra.Command{
	Use:   "quote <from-mint> <to-mint> <amount>",
	Short: "Fetch a fresh quote without executing",
	Args:  cobra.ExactArgs(3),
	RunE:  runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)
	addRequestFlags(quoteCmd)
}

func addRequestFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&chain, "chain", constants.SolanaChainID, "Chain identifier")
	cmd.Flags().StringVarP(&slippage, "slippage", "s", "", "Slippage tolerance in percent (default 0.5)")
	cmd.Flags().BoolVar(&unrestricted, "unrestricted", false, "Allow routes through any intermediate token")
}

func buildQuoteRequest(args []string) dex.QuoteRequest {
	req := dex.QuoteRequest{
		Chain:     chain,
		FromToken: args[0],
		ToToken:   args[1],
		Amount:    args[2],
		Slippage:  slippage,
	}
	if unrestricted {
		restrict := false
		req.RestrictIntermediateTokens = &restrict
	}
	return req
}

func runQuote(cmd *cobra.Command, args []string) error {
	p, err := openProvider()
	if err != nil {
		printError(err)
		return err
	}
	defer p.Close()

	ctx, cancel := signalContext()
	defer cancel()

	q, err := p.GetQuote(ctx, buildQuoteRequest(args))
	if err != nil {
		printError(err)
		return err
	}

	if jsonOutput {
		return printJSON(map[string]any{
			"provider":         q.Provider,
			"in_amount":        q.InAmount,
			"out_amount":       q.OutAmount,
			"min_out_amount":   dex.ToHuman(q.MinOutAmountRaw, q.To.Decimals),
			"price_impact_pct": q.PriceImpactPct,
			"slippage_bps":     q.SlippageBps,
			"route":            q.RouteLabels,
			"expires_at":       q.ExpiresAt,
		})
	}
	printQuote(q)
	return nil
}
