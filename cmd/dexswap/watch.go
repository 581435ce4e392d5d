package main

import (
	"fmt"

	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/cache"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/config"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/constants"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/logging"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/models"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var watchPair string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream execution events published to Redis",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchPair, "pair", "", "Only show one <inMint>-<outMint> pair")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	ctx, cancel := signalContext()
	defer cancel()

	client, err := redisClient(ctx, cfg)
	if err != nil {
		printError(err)
		return err
	}
	defer client.Close()

	channel := constants.PubSubChannelExecutions
	if watchPair != "" {
		channel = constants.PubSubPairPrefix + watchPair
	}

	if !jsonOutput {
		color.Cyan("Watching %s (Ctrl+C to stop)\n", channel)
	}

	pubsub := cache.NewPubSubManager(client, logger)
	err = pubsub.Subscribe(ctx, channel, func(ev *models.ExecutionEvent) {
		if jsonOutput {
			_ = printJSON(ev)
			return
		}
		status := color.GreenString(ev.Status)
		if ev.Status != "confirmed" {
			status = color.YellowString(ev.Status)
		}
		fmt.Printf("%s  %s  %s -> %s  %s  %s\n",
			ev.Timestamp.Format("15:04:05"), status,
			ev.AmountIn.String(), ev.AmountOut.String(), ev.Pair, color.CyanString(ev.Signature))
	})
	if err != nil && ctx.Err() == nil {
		printError(err)
		return err
	}
	return nil
}
