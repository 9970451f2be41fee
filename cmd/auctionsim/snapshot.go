package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudx-io/playerauction/config"
	"github.com/cloudx-io/playerauction/store"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Print the latest recorded auction snapshot as JSON",
	RunE:  runSnapshot,
}

var (
	snapshotDB        string
	snapshotAuctionID string
)

func init() {
	snapshotCmd.Flags().StringVar(&snapshotDB, "db", "", "sqlite ledger path (overrides store.path)")
	snapshotCmd.Flags().StringVar(&snapshotAuctionID, "auction", "", "auction ID (default: most recent)")
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(_ *cobra.Command, _ []string) error {
	db, err := openLedger(snapshotDB)
	if err != nil {
		return err
	}
	defer db.Close()

	snap, err := db.LatestSnapshot(snapshotAuctionID)
	if err != nil {
		return err
	}
	return printJSON(snap)
}

// openLedger opens the ledger named by the flag or, failing that, the config.
func openLedger(path string) (*store.DB, error) {
	if path == "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return nil, err
		}
		path = cfg.Store.Path
	}
	if path == "" {
		return nil, fmt.Errorf("no ledger configured: pass --db or set store.path")
	}
	return store.Open(path)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
