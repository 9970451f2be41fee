package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "auctionsim",
	Short: "Multi-round player auction simulator",
	Long: `auctionsim runs a player auction between model-driven or heuristic
franchises. Lots are dealt set by set, every party bids each round and a
lot sells once the leading bid survives the round limit.`,
	SilenceUsage: true,
}

var cfgFile string

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML); AUCTION_* environment variables override it")
}
