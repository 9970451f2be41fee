package core

import (
	"crypto/sha256"
	"fmt"
	"sort"
)

// ComputeBidHash computes the commitment for one accepted bid.
// Used by the auctioneer when issuing receipts and by validation when checking them.
//
// Formula: SHA256(bid_id + "|" + sprintf("%.6f", amount) + "|" + nonce)
//
// The amount is formatted to exactly 6 decimal places so the hash does not
// depend on how the float is represented in memory.
func ComputeBidHash(bidID string, amount float64, nonce string) string {
	data := fmt.Sprintf("%s|%.6f|%s", bidID, amount, nonce)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// ComputeLotHash commits to the lot that was sold within an auction.
//
// Formula: SHA256(auction_id + "|" + lot_name + "|" + rounds + "|" + nonce)
func ComputeLotHash(auctionID, lotName string, rounds int, nonce string) string {
	data := fmt.Sprintf("%s|%s|%d|%s", auctionID, lotName, rounds, nonce)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// ComputeBudgetsHash commits to every party's remaining budget after a sale.
//
// Formula: SHA256(nonce + "|" + sorted_key_value_pairs)
// where sorted_key_value_pairs = "party1:budget1|party2:budget2|..." (sorted by party name)
func ComputeBudgetsHash(budgets map[string]float64, nonce string) string {
	data := nonce

	parties := make([]string, 0, len(budgets))
	for party := range budgets {
		parties = append(parties, party)
	}
	sort.Strings(parties)

	for _, party := range parties {
		data += fmt.Sprintf("|%s:%.6f", party, budgets[party])
	}
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
