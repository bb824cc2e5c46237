package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "fundpipe",
	Short: "fundpipe - fund return series and risk analytics service",
	Long: `fundpipe fetches monthly fund price history, normalizes it into an
indexed return series and derives risk metrics (VaR, expected shortfall,
beta, Sharpe). It serves the pipeline over HTTP and can run backtests and
Monte Carlo simulations from the command line.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
