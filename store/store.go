// Package store keeps the auction ledger in SQLite: sales, unsold lots,
// signed receipts and CBOR snapshots.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/cloudx-io/playerauction/auctionapi"
)

var ErrNotFound = errors.New("not found")

// DB wraps a SQLite connection holding one or more auctions.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite ledger at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// one writer; the driver loop is single threaded anyway
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS auctions (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		finished_at TEXT
	);

	CREATE TABLE IF NOT EXISTS sales (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		auction_id TEXT NOT NULL,
		lot_name TEXT NOT NULL,
		specialism TEXT NOT NULL,
		category TEXT NOT NULL,
		reserve_price REAL NOT NULL,
		party TEXT NOT NULL,
		price REAL NOT NULL,
		rounds INTEGER NOT NULL,
		bid_id TEXT NOT NULL,
		rationale TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS unsold (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		auction_id TEXT NOT NULL,
		lot_name TEXT NOT NULL,
		specialism TEXT NOT NULL,
		category TEXT NOT NULL,
		reserve_price REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS receipts (
		receipt_id TEXT PRIMARY KEY,
		auction_id TEXT NOT NULL,
		lot_name TEXT NOT NULL,
		party TEXT NOT NULL,
		price REAL NOT NULL,
		issued_at TEXT NOT NULL,
		cose BLOB NOT NULL
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		auction_id TEXT NOT NULL,
		taken_at TEXT NOT NULL,
		payload BLOB NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sales_auction ON sales(auction_id);
	CREATE INDEX IF NOT EXISTS idx_unsold_auction ON unsold(auction_id);
	CREATE INDEX IF NOT EXISTS idx_receipts_auction ON receipts(auction_id);
	CREATE INDEX IF NOT EXISTS idx_snapshots_auction ON snapshots(auction_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// Auction is one recorded run.
type Auction struct {
	ID         string         `db:"id"`
	StartedAt  string         `db:"started_at"`
	FinishedAt sql.NullString `db:"finished_at"`
}

// BeginAuction registers a new run.
func (db *DB) BeginAuction(id string, startedAt time.Time) error {
	_, err := db.conn.Exec("INSERT INTO auctions (id, started_at) VALUES (?, ?)", id, formatTime(startedAt))
	if err != nil {
		return fmt.Errorf("begin auction %s: %w", id, err)
	}
	return nil
}

// FinishAuction stamps the end of a run.
func (db *DB) FinishAuction(id string, finishedAt time.Time) error {
	res, err := db.conn.Exec("UPDATE auctions SET finished_at = ? WHERE id = ?", formatTime(finishedAt), id)
	if err != nil {
		return fmt.Errorf("finish auction %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish auction %s: %w", id, ErrNotFound)
	}
	return nil
}

// LatestAuction returns the most recently started run.
func (db *DB) LatestAuction() (Auction, error) {
	var a Auction
	err := db.conn.Get(&a, "SELECT id, started_at, finished_at FROM auctions ORDER BY started_at DESC, rowid DESC LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return Auction{}, fmt.Errorf("latest auction: %w", ErrNotFound)
	}
	return a, err
}

// RecordSale appends a finalized sale.
func (db *DB) RecordSale(auctionID string, rec auctionapi.SaleRecord) error {
	_, err := db.conn.Exec(`INSERT INTO sales
		(auction_id, lot_name, specialism, category, reserve_price, party, price, rounds, bid_id, rationale)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		auctionID, rec.Lot.Name, rec.Lot.Specialism, rec.Lot.Category, rec.Lot.ReservePrice,
		rec.Party, rec.Price, rec.Rounds, rec.BidID, rec.Rationale)
	if err != nil {
		return fmt.Errorf("record sale of %s: %w", rec.Lot.Name, err)
	}
	return nil
}

// RecordUnsold appends a lot that closed without a sale.
func (db *DB) RecordUnsold(auctionID string, lot auctionapi.LotSummary) error {
	_, err := db.conn.Exec(`INSERT INTO unsold
		(auction_id, lot_name, specialism, category, reserve_price)
		VALUES (?, ?, ?, ?, ?)`,
		auctionID, lot.Name, lot.Specialism, lot.Category, lot.ReservePrice)
	if err != nil {
		return fmt.Errorf("record unsold %s: %w", lot.Name, err)
	}
	return nil
}

type saleRow struct {
	LotName      string  `db:"lot_name"`
	Specialism   string  `db:"specialism"`
	Category     string  `db:"category"`
	ReservePrice float64 `db:"reserve_price"`
	Party        string  `db:"party"`
	Price        float64 `db:"price"`
	Rounds       int     `db:"rounds"`
	BidID        string  `db:"bid_id"`
	Rationale    string  `db:"rationale"`
}

func (r saleRow) lot() auctionapi.LotSummary {
	return auctionapi.LotSummary{
		Name:         r.LotName,
		Specialism:   r.Specialism,
		Category:     r.Category,
		ReservePrice: r.ReservePrice,
	}
}

// Sales lists an auction's sales in the order they were recorded.
func (db *DB) Sales(auctionID string) ([]auctionapi.SaleRecord, error) {
	var rows []saleRow
	err := db.conn.Select(&rows, `SELECT lot_name, specialism, category, reserve_price, party, price, rounds, bid_id, rationale
		FROM sales WHERE auction_id = ? ORDER BY id`, auctionID)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	out := make([]auctionapi.SaleRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, auctionapi.SaleRecord{
			Lot:       r.lot(),
			Party:     r.Party,
			Price:     r.Price,
			Rounds:    r.Rounds,
			BidID:     r.BidID,
			Rationale: r.Rationale,
		})
	}
	return out, nil
}

// Unsold lists an auction's unsold lots in the order they were recorded.
func (db *DB) Unsold(auctionID string) ([]auctionapi.LotSummary, error) {
	var rows []saleRow
	err := db.conn.Select(&rows, `SELECT lot_name, specialism, category, reserve_price
		FROM unsold WHERE auction_id = ? ORDER BY id`, auctionID)
	if err != nil {
		return nil, fmt.Errorf("list unsold: %w", err)
	}

	out := make([]auctionapi.LotSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.lot())
	}
	return out, nil
}
