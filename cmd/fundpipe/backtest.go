package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/valuelab/fundpipe/internal/app"
	"github.com/valuelab/fundpipe/internal/core"
	"github.com/valuelab/fundpipe/internal/logger"
)

var backtestTicker string

var backtestCmd = &cobra.Command{
	Use:   "backtest [strategy]",
	Short: "Run a backtest strategy over a fund's return history",
	Long:  "Run a named strategy against a fund's monthly return series and show final value, CAGR and maximum drawdown",
	Args:  cobra.ExactArgs(1),
	RunE:  runBacktest,
}

func init() {
	backtestCmd.Flags().StringVar(&backtestTicker, "ticker", "", "Fund ticker to backtest (required)")
	backtestCmd.MarkFlagRequired("ticker")

	rootCmd.AddCommand(backtestCmd)
}

// cliIdentity runs command-line invocations with operator privileges.
func cliIdentity() *core.Identity {
	return &core.Identity{ID: "cli", Role: core.RoleAdmin, OrganizationID: "cli"}
}

func runBacktest(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	a, err := app.New(cfg, log)
	if err != nil {
		return fmt.Errorf("wiring pipeline: %w", err)
	}

	name := args[0]
	transform, ok := a.Strategies.Get(name)
	if !ok {
		return fmt.Errorf("unknown strategy %q (available: %s)", name, strings.Join(a.Strategies.Names(), ", "))
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	result, err := a.Backtests.Run(ctx, cliIdentity(), backtestTicker, transform)
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	fmt.Println("=== fundpipe Backtest ===")
	fmt.Printf("Strategy: %s\n", name)
	fmt.Printf("Ticker:   %s\n", backtestTicker)
	fmt.Println()
	fmt.Printf("Final value:    %.2f\n", result.FinalValue)
	fmt.Printf("CAGR:           %.2f%%\n", result.CAGR*100)
	fmt.Printf("Max drawdown:   %.2f%%\n", result.MaxDrawdown*100)

	return nil
}
