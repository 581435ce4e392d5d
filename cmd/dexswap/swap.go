package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/dex"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	recipient string
	noConfirm bool
)

var swapCmd = &cobra.Command{
	Use:   "swap <from-mint> <to-mint> <amount>",
	Short: "Quote, sign, submit and confirm a swap",
	Long: `Swap executes with a fresh quote every time; a preview quote is never reused.

With --recipient the output goes to the recipient's token account, which is
created first when missing. Native SOL output cannot be redirected.`,
	Args: cobra.ExactArgs(3),
	RunE: runSwap,
}

func init() {
	rootCmd.AddCommand(swapCmd)
	addRequestFlags(swapCmd)
	swapCmd.Flags().StringVar(&recipient, "recipient", "", "Deliver output to this wallet instead of the signer")
	swapCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
}

func runSwap(cmd *cobra.Command, args []string) error {
	p, err := openProvider()
	if err != nil {
		printError(err)
		return err
	}
	defer p.Close()

	ctx, cancel := signalContext()
	defer cancel()

	req := dex.SwapRequest{QuoteRequest: buildQuoteRequest(args), Recipient: recipient}

	if !noConfirm && !jsonOutput {
		preview, err := p.GetQuote(ctx, req.QuoteRequest)
		if err != nil {
			printError(err)
			return err
		}
		printQuote(preview)
		if recipient != "" {
			fmt.Printf("  Recipient:        %s\n\n", color.CyanString(recipient))
		}
		if !confirm("Proceed with swap? (a fresh quote will be used) [y/N]: ") {
			color.Yellow("Swap cancelled.\n")
			return nil
		}
	}

	res, err := p.Swap(ctx, req)
	if err != nil {
		printError(err)
		return err
	}

	if jsonOutput {
		return printJSON(map[string]any{
			"provider":    res.Provider,
			"signature":   res.Signature,
			"status":      res.Status,
			"recipient":   res.Recipient,
			"in_amount":   res.Quote.InAmount,
			"out_amount":  res.Quote.OutAmount,
			"duration_ms": res.Duration.Milliseconds(),
		})
	}

	if res.Confirmed() {
		color.Green("\n✓ Swap confirmed\n")
	} else {
		color.Yellow("\nSwap submitted but not confirmed yet; check the signature before retrying\n")
	}
	fmt.Printf("  Signature:        %s\n", color.CyanString(res.Signature))
	fmt.Printf("  Quoted output:    %s %s\n", res.Quote.OutAmount.String(), tokenLabel(res.Quote.To))
	if res.Recipient != "" {
		fmt.Printf("  Recipient:        %s\n", res.Recipient)
	}
	fmt.Printf("  Took:             %s\n\n", res.Duration.Round(time.Millisecond))
	return nil
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
