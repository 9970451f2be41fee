package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
	"github.com/spf13/cobra"

	"github.com/cloudx-io/playerauction/auctioneer"
	"github.com/cloudx-io/playerauction/store"
	"github.com/cloudx-io/playerauction/validation"
)

const playersCSV = `Players,Type,Base,Sold_Price,Category,Experience,Set,Serial_No
Star Opener,BAT,2,18.5,Capped,Experienced,SBC,1
Steady Opener,BAT,1.5,6,Capped,Experienced,SBC,2
Star Allrounder,AR,2,12,Capped,Experienced,SAC,3
Rookie Spinner,BOWL,0.3,-,Uncapped,Emerging,EmBwU,4
`

// executeCommand runs the root command with args
func executeCommand(root *cobra.Command, args ...string) error {
	root.SetArgs(args)
	return root.Execute()
}

func TestRootCommand(t *testing.T) {
	check.Equal(t, "auctionsim", rootCmd.Use)

	cmdMap := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		cmdMap[cmd.Name()] = true
	}
	for _, name := range []string{"run", "snapshot", "receipts", "key"} {
		check.True(t, cmdMap[name])
	}
}

func TestRunCommand_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "players.csv")
	assert.NoError(t, os.WriteFile(catalogPath, []byte(playersCSV), 0o600))
	dbPath := filepath.Join(dir, "auction.db")
	keyPath := filepath.Join(dir, "receipts.pem")

	t.Setenv("AUCTION_BIDDING_STAGGER", "0s")
	t.Setenv("AUCTION_LLM_API_KEYS", "")
	t.Setenv("AUCTION_LOG_LEVEL", "error")

	err := executeCommand(rootCmd, "run", "--catalog", catalogPath, "--db", dbPath, "--key", keyPath, "--seed", "11")
	assert.NoError(t, err)

	db, err := store.Open(dbPath)
	assert.NoError(t, err)
	defer db.Close()

	latest, err := db.LatestAuction()
	assert.NoError(t, err)
	check.True(t, latest.FinishedAt.Valid)

	snap, err := db.LatestSnapshot(latest.ID)
	assert.NoError(t, err)
	check.Equal(t, 4, len(snap.Sales)+len(snap.Unsold))

	receipts, err := db.Receipts(latest.ID)
	assert.NoError(t, err)
	check.Equal(t, len(snap.Sales), len(receipts))

	// every stored receipt is signed by the key the run created
	keys, err := auctioneer.LoadOrCreateKeyManager(keyPath)
	assert.NoError(t, err)
	for _, r := range receipts {
		check.NoError(t, validation.VerifyCOSESignature(r.Signed(), keys.PublicKey))
	}
	assert.NoError(t, executeCommand(rootCmd, "key", keyPath))

	assert.NoError(t, executeCommand(rootCmd, "snapshot", "--db", dbPath))
	assert.NoError(t, executeCommand(rootCmd, "receipts", "--db", dbPath))
}

func TestRunCommand_MissingCatalog(t *testing.T) {
	err := executeCommand(rootCmd, "run", "--catalog", filepath.Join(t.TempDir(), "missing.csv"))
	check.Error(t, err)
}
