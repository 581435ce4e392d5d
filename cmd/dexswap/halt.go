package main

import (
	"context"
	"fmt"
	"time"

	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/config"
	"github.com/aman-zulfiqar/solana-dex-aggregator/internal/flags"
	"github.com/fatih/color"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var haltReason string

var haltCmd = &cobra.Command{
	Use:   "halt",
	Short: "Stop new swaps (all providers, or one with --provider)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return setHalt()
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Clear a halt set with 'halt'",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return clearHalt()
	},
}

var haltListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show stored halt switches",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listHalts()
	},
}

func init() {
	rootCmd.AddCommand(haltCmd, resumeCmd)
	haltCmd.AddCommand(haltListCmd)
	haltCmd.Flags().StringVar(&haltReason, "reason", "", "Reason shown to callers")
}

// redisClient connects to the configured Redis or fails.
func redisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("REDIS_ADDR is not set")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// openFlags connects to Redis and returns the flag store with its closer.
func openFlags(ctx context.Context) (*flags.Store, func(), error) {
	client, err := redisClient(ctx, config.Load())
	if err != nil {
		return nil, nil, err
	}
	store, err := flags.NewStore(client)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return store, func() { _ = client.Close() }, nil
}

func haltKey() string {
	if providerName != "" {
		return flags.ProviderHaltKey(providerName)
	}
	return flags.KeySwapsHalted
}

func setHalt() error {
	ctx, cancel := signalContext()
	defer cancel()

	store, closeStore, err := openFlags(ctx)
	if err != nil {
		printError(err)
		return err
	}
	defer closeStore()

	f, err := store.Upsert(ctx, haltKey(), true, haltReason)
	if err != nil {
		printError(err)
		return err
	}

	if jsonOutput {
		return printJSON(f)
	}
	color.Yellow("Swaps halted (%s)\n", f.Key)
	return nil
}

func clearHalt() error {
	ctx, cancel := signalContext()
	defer cancel()

	store, closeStore, err := openFlags(ctx)
	if err != nil {
		printError(err)
		return err
	}
	defer closeStore()

	key := haltKey()
	if err := store.Delete(ctx, key); err != nil {
		printError(err)
		return err
	}

	if jsonOutput {
		return printJSON(map[string]string{"cleared": key})
	}
	color.Green("Swaps resumed (%s)\n", key)
	return nil
}

func listHalts() error {
	ctx, cancel := signalContext()
	defer cancel()

	store, closeStore, err := openFlags(ctx)
	if err != nil {
		printError(err)
		return err
	}
	defer closeStore()

	halts, err := store.ListHalts(ctx)
	if err != nil {
		printError(err)
		return err
	}

	if jsonOutput {
		return printJSON(halts)
	}
	if len(halts) == 0 {
		fmt.Println("No halt switches stored")
		return nil
	}
	for _, f := range halts {
		state := color.GreenString("off")
		if f.Value {
			state = color.RedString("HALTED")
		}
		fmt.Printf("%-28s %-8s %s  %s\n", f.Key, state, f.UpdatedAt.Format("2006-01-02 15:04:05"), f.Reason)
	}
	return nil
}
