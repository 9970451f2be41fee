package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/cloudx-io/playerauction/auctionapi"
)

// StoredReceipt is a signed receipt with the fields it is indexed by.
type StoredReceipt struct {
	ReceiptID string  `db:"receipt_id"`
	AuctionID string  `db:"auction_id"`
	LotName   string  `db:"lot_name"`
	Party     string  `db:"party"`
	Price     float64 `db:"price"`
	IssuedAt  string  `db:"issued_at"`
	COSE      []byte  `db:"cose"`
}

// Signed returns the COSE_Sign1 bytes of the receipt.
func (r StoredReceipt) Signed() auctionapi.ReceiptCOSE {
	return auctionapi.ReceiptCOSE(r.COSE)
}

// SaveReceipt stores the signed form of receipt.
func (db *DB) SaveReceipt(receipt *auctionapi.SaleReceipt, signed auctionapi.ReceiptCOSE) error {
	_, err := db.conn.Exec(`INSERT INTO receipts
		(receipt_id, auction_id, lot_name, party, price, issued_at, cose)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		receipt.ReceiptID, receipt.AuctionID, receipt.Lot.Name, receipt.Party, receipt.Price,
		formatTime(receipt.Timestamp), []byte(signed))
	if err != nil {
		return fmt.Errorf("save receipt %s: %w", receipt.ReceiptID, err)
	}
	return nil
}

// Receipt loads one receipt by ID.
func (db *DB) Receipt(receiptID string) (StoredReceipt, error) {
	var r StoredReceipt
	err := db.conn.Get(&r, `SELECT receipt_id, auction_id, lot_name, party, price, issued_at, cose
		FROM receipts WHERE receipt_id = ?`, receiptID)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredReceipt{}, fmt.Errorf("receipt %s: %w", receiptID, ErrNotFound)
	}
	if err != nil {
		return StoredReceipt{}, fmt.Errorf("receipt %s: %w", receiptID, err)
	}
	return r, nil
}

// Receipts lists an auction's receipts in issue order.
func (db *DB) Receipts(auctionID string) ([]StoredReceipt, error) {
	var rows []StoredReceipt
	err := db.conn.Select(&rows, `SELECT receipt_id, auction_id, lot_name, party, price, issued_at, cose
		FROM receipts WHERE auction_id = ? ORDER BY issued_at, rowid`, auctionID)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	return rows, nil
}

// SaveSnapshot stores snap CBOR encoded.
func (db *DB) SaveSnapshot(snap *auctionapi.Snapshot) error {
	payload, err := snap.EncodeCBOR()
	if err != nil {
		return err
	}
	_, err = db.conn.Exec("INSERT INTO snapshots (auction_id, taken_at, payload) VALUES (?, ?, ?)",
		snap.AuctionID, formatTime(snap.TakenAt), payload)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the newest snapshot of auctionID, or of any auction
// when auctionID is empty.
func (db *DB) LatestSnapshot(auctionID string) (*auctionapi.Snapshot, error) {
	var payload []byte
	var err error
	if auctionID == "" {
		err = db.conn.Get(&payload, "SELECT payload FROM snapshots ORDER BY id DESC LIMIT 1")
	} else {
		err = db.conn.Get(&payload, "SELECT payload FROM snapshots WHERE auction_id = ? ORDER BY id DESC LIMIT 1", auctionID)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("latest snapshot: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("latest snapshot: %w", err)
	}
	return auctionapi.DecodeSnapshotCBOR(payload)
}
