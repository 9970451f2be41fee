package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/cloudx-io/playerauction/auctionapi"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

var (
	opener  = auctionapi.LotSummary{Name: "Star Opener", Specialism: "BAT", Category: "SBC", ReservePrice: 2}
	spinner = auctionapi.LotSummary{Name: "Rookie Spinner", Specialism: "BOWL", Category: "EmBwU", ReservePrice: 0.3}
)

func TestAuctions(t *testing.T) {
	db := openTestDB(t)
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	_, err := db.LatestAuction()
	check.True(t, errors.Is(err, ErrNotFound))

	assert.NoError(t, db.BeginAuction("a1", start))
	assert.NoError(t, db.BeginAuction("a2", start.Add(time.Hour)))
	check.Error(t, db.BeginAuction("a1", start))

	latest, err := db.LatestAuction()
	assert.NoError(t, err)
	check.Equal(t, "a2", latest.ID)
	check.False(t, latest.FinishedAt.Valid)

	assert.NoError(t, db.FinishAuction("a2", start.Add(2*time.Hour)))
	latest, err = db.LatestAuction()
	assert.NoError(t, err)
	check.True(t, latest.FinishedAt.Valid)

	check.True(t, errors.Is(db.FinishAuction("missing", start), ErrNotFound))
}

func TestSalesAndUnsold(t *testing.T) {
	db := openTestDB(t)

	sale := auctionapi.SaleRecord{Lot: opener, Party: "Chennai", Price: 2.25, Rounds: 5, BidID: "bid-1", Rationale: "Needed an opener."}
	assert.NoError(t, db.RecordSale("a1", sale))
	assert.NoError(t, db.RecordSale("a2", auctionapi.SaleRecord{Lot: spinner, Party: "Mumbai", Price: 0.3, Rounds: 3, BidID: "bid-2"}))
	assert.NoError(t, db.RecordUnsold("a1", spinner))

	sales, err := db.Sales("a1")
	assert.NoError(t, err)
	check.Equal(t, []auctionapi.SaleRecord{sale}, sales)

	unsold, err := db.Unsold("a1")
	assert.NoError(t, err)
	check.Equal(t, []auctionapi.LotSummary{spinner}, unsold)

	none, err := db.Unsold("a2")
	assert.NoError(t, err)
	check.Equal(t, 0, len(none))
}

func TestReceipts(t *testing.T) {
	db := openTestDB(t)
	issued := time.Date(2026, 3, 1, 10, 5, 0, 0, time.UTC)

	receipt := &auctionapi.SaleReceipt{ReceiptID: "r1", AuctionID: "a1", Lot: opener, Party: "Chennai", Price: 2.25, Timestamp: issued}
	signed := auctionapi.ReceiptCOSE{0xd2, 0x84, 0x01, 0x02}
	assert.NoError(t, db.SaveReceipt(receipt, signed))
	check.Error(t, db.SaveReceipt(receipt, signed))

	got, err := db.Receipt("r1")
	assert.NoError(t, err)
	check.Equal(t, "a1", got.AuctionID)
	check.Equal(t, "Star Opener", got.LotName)
	check.Equal(t, 2.25, got.Price)
	check.Equal(t, signed, got.Signed())

	_, err = db.Receipt("missing")
	check.True(t, errors.Is(err, ErrNotFound))

	all, err := db.Receipts("a1")
	assert.NoError(t, err)
	assert.Equal(t, 1, len(all))
	check.Equal(t, "r1", all[0].ReceiptID)
}

func TestSnapshots(t *testing.T) {
	db := openTestDB(t)

	_, err := db.LatestSnapshot("")
	check.True(t, errors.Is(err, ErrNotFound))

	taken := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)
	first := &auctionapi.Snapshot{AuctionID: "a1", TakenAt: taken, Unsold: []auctionapi.LotSummary{spinner}}
	second := &auctionapi.Snapshot{AuctionID: "a2", TakenAt: taken.Add(time.Minute), RemainingLots: map[string]int{"SBC": 1}}
	assert.NoError(t, db.SaveSnapshot(first))
	assert.NoError(t, db.SaveSnapshot(second))

	latest, err := db.LatestSnapshot("")
	assert.NoError(t, err)
	check.Equal(t, "a2", latest.AuctionID)
	check.Equal(t, 1, latest.RemainingLots["SBC"])

	byAuction, err := db.LatestSnapshot("a1")
	assert.NoError(t, err)
	check.True(t, byAuction.TakenAt.Equal(taken))
	check.Equal(t, []auctionapi.LotSummary{spinner}, byAuction.Unsold)
}
