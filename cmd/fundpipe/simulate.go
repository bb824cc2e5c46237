package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/valuelab/fundpipe/internal/app"
	"github.com/valuelab/fundpipe/internal/logger"
	"github.com/valuelab/fundpipe/internal/simulate"
)

var (
	simulateTicker string
	simulatePaths  int
	simulateYears  int
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a Monte Carlo simulation over a fund's return history",
	RunE:  runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&simulateTicker, "ticker", "", "Fund ticker to simulate (required)")
	simulateCmd.Flags().IntVar(&simulatePaths, "paths", 100, "Number of simulated paths")
	simulateCmd.Flags().IntVar(&simulateYears, "years", 10, "Projection horizon in years")
	simulateCmd.MarkFlagRequired("ticker")

	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
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

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	result, err := a.Service.FundReturns(ctx, cliIdentity(), simulateTicker)
	if err != nil {
		return fmt.Errorf("fetching return series: %w", err)
	}

	paths := simulate.New().Run(result.Series.Returns(), simulatePaths, simulateYears)

	finals := make([]float64, 0, len(paths))
	for _, p := range paths {
		if len(p) > 0 {
			finals = append(finals, p[len(p)-1].Value)
		}
	}
	sort.Float64s(finals)

	fmt.Println("=== fundpipe Monte Carlo ===")
	fmt.Printf("Ticker:  %s\n", simulateTicker)
	fmt.Printf("Paths:   %d\n", simulatePaths)
	fmt.Printf("Horizon: %d years\n", simulateYears)
	fmt.Println()
	if len(finals) > 0 {
		fmt.Printf("Final value (worst):  %.2f\n", finals[0])
		fmt.Printf("Final value (median): %.2f\n", finals[len(finals)/2])
		fmt.Printf("Final value (best):   %.2f\n", finals[len(finals)-1])
	}

	return nil
}
