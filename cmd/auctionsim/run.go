package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cloudx-io/playerauction/agents"
	"github.com/cloudx-io/playerauction/auctionapi"
	"github.com/cloudx-io/playerauction/auctioneer"
	"github.com/cloudx-io/playerauction/catalog"
	"github.com/cloudx-io/playerauction/config"
	"github.com/cloudx-io/playerauction/core"
	"github.com/cloudx-io/playerauction/llm"
	"github.com/cloudx-io/playerauction/logger"
	"github.com/cloudx-io/playerauction/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a complete auction over a players catalog",
	Long: `Run deals every lot in the catalog, collects bids from every party each
round and sells or discards lots until the catalog is exhausted.

When a store path is configured the sales, unsold lots, receipts and the
final snapshot are written to the sqlite ledger.`,
	RunE: runAuction,
}

var (
	runCatalog  string
	runStatsDir string
	runSeed     uint64
	runDB       string
	runKeyPath  string
	runJSON     bool
)

func init() {
	runCmd.Flags().StringVar(&runCatalog, "catalog", "", "players CSV (required)")
	runCmd.Flags().StringVar(&runStatsDir, "stats-dir", "", "directory of <serial>.txt player stats")
	runCmd.Flags().Uint64Var(&runSeed, "seed", 0, "seed for lot order and heuristic bidders (overrides app.seed)")
	runCmd.Flags().StringVar(&runDB, "db", "", "sqlite ledger path (overrides store.path)")
	runCmd.Flags().StringVar(&runKeyPath, "key", "", "receipt signing key PEM, created if missing (default: ephemeral key)")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the final snapshot as JSON")
	_ = runCmd.MarkFlagRequired("catalog")
	rootCmd.AddCommand(runCmd)
}

func runAuction(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("seed") {
		cfg.App.Seed = runSeed
	}
	if runDB != "" {
		cfg.Store.Path = runDB
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := catalog.LoadCSV(runCatalog, catalog.Options{StatsDir: runStatsDir, Logger: log})
	if err != nil {
		return err
	}

	parties := make([]*core.Party, 0, len(cfg.Auction.Parties))
	for _, name := range cfg.Auction.Parties {
		parties = append(parties, &core.Party{Name: name, Budget: cfg.Auction.PartyBudget})
	}
	league, err := core.NewLeague(cat, parties)
	if err != nil {
		return err
	}

	opts := auctioneer.Options{
		Adjudicator: core.NewAdjudicator(cfg.Auction.RaiseSchedule, cfg.Auction.RoundLimit, log),
		Dispenser:   core.NewDispenser(core.NewRand(cfg.App.Seed), log),
		Logger:      log,
	}

	var decider agents.Decider
	client, err := llm.New(cfg.LLM.Options(), log)
	switch {
	case err == nil:
		opts.Explainer = agents.NewReasoner(client, cfg.LLM.MaxTokens)
		opts.Squads = agents.NewSquadManager(client, cfg.LLM.MaxTokens, log)
		if cfg.Bidding.Strategy == config.StrategyLLM {
			decider = agents.NewLLMDecider(client, cfg.LLM.MaxTokens)
		}
	case errors.Is(err, llm.ErrDisabled):
		log.Info("no llm api keys configured; using fallback rationales and plain holdings")
	default:
		return err
	}
	if decider == nil {
		// bidders draw from their own streams so lot order does not depend on bidding
		decider = agents.NewHeuristicDecider(agents.PartyStreams(cfg.App.Seed, cfg.Auction.Parties))
	}

	guard := agents.NewGuard(decider, cfg.Bidding.Timeout, cfg.Bidding.Retries, log)
	opts.Pool = auctioneer.NewBidderPool(guard, cfg.Auction.RaiseSchedule, cfg.Bidding.Stagger, log)

	if cfg.Receipts.Enabled {
		keys, err := loadKeys(runKeyPath)
		if err != nil {
			return err
		}
		opts.Receipts = auctioneer.NewReceiptIssuer(keys, log)
		log.Info("signing receipts", zap.String("key_fingerprint", keys.Fingerprint()))
	}

	if cfg.Store.Path != "" {
		db, err := store.Open(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer db.Close()
		opts.Ledger = db
	}

	a, err := auctioneer.New(league, opts)
	if err != nil {
		return err
	}
	result, err := a.Run(ctx)
	if err != nil {
		return fmt.Errorf("auction %s: %w", league.ID, err)
	}

	if runJSON {
		return printJSON(result.Snapshot)
	}
	printSummary(result.Snapshot)
	return nil
}

func loadKeys(path string) (*auctioneer.KeyManager, error) {
	if path == "" {
		return auctioneer.NewKeyManager()
	}
	return auctioneer.LoadOrCreateKeyManager(path)
}

func printSummary(snap *auctionapi.Snapshot) {
	fmt.Println()
	fmt.Println("AUCTION SUMMARY")
	fmt.Println(strings.Repeat("─", 50))
	fmt.Printf("Auction: %s\n", snap.AuctionID)
	fmt.Printf("Sold: %d   Unsold: %d\n", len(snap.Sales), len(snap.Unsold))
	fmt.Println()

	for _, p := range snap.Parties {
		fmt.Printf("%s  (budget left %.2f Cr, %d players, %s)\n", p.Name, p.Budget, len(p.Lots), p.HoldingsKind)
		fmt.Println(strings.Repeat("─", 50))

		prices := make(map[string]float64, len(p.Lots))
		for _, s := range snap.Sales {
			if s.Party == p.Name {
				prices[s.Lot.Name] = s.Price
			}
		}
		lots := append([]auctionapi.LotSummary(nil), p.Lots...)
		sort.SliceStable(lots, func(i, j int) bool { return prices[lots[i].Name] > prices[lots[j].Name] })
		for _, l := range lots {
			fmt.Printf("  %-28s %-8s %6.2f Cr\n", l.Name, l.Specialism, prices[l.Name])
		}
		if r := p.Roster; r != nil {
			fmt.Printf("  Captain: %s   Wicket keeper: %s\n", r.Captain, r.WicketKeeper)
		}
		fmt.Println()
	}

	if len(snap.Unsold) > 0 {
		fmt.Println("UNSOLD")
		fmt.Println(strings.Repeat("─", 50))
		for _, l := range snap.Unsold {
			fmt.Printf("  %-28s %-8s %6.2f Cr\n", l.Name, l.Specialism, l.ReservePrice)
		}
		fmt.Println()
	}
}

// compile-time check that the sqlite ledger satisfies the auctioneer
var _ auctioneer.Ledger = (*store.DB)(nil)
