package core

import (
	"crypto/sha256"
	"fmt"
	"testing"
)

func TestComputeBidHash(t *testing.T) {
	bidID := "bid_123"
	amount := 2.50
	nonce := "test_nonce_456"

	hash := ComputeBidHash(bidID, amount, nonce)

	if len(hash) != 64 {
		t.Errorf("ComputeBidHash() hash length = %d, want 64", len(hash))
	}

	if hash != ComputeBidHash(bidID, amount, nonce) {
		t.Errorf("ComputeBidHash() not deterministic")
	}

	if hash == ComputeBidHash(bidID, amount+0.25, nonce) {
		t.Errorf("Different amounts should produce different hashes")
	}

	expectedData := fmt.Sprintf("%s|%.6f|%s", bidID, amount, nonce)
	expectedHash := fmt.Sprintf("%x", sha256.Sum256([]byte(expectedData)))
	if hash != expectedHash {
		t.Errorf("ComputeBidHash() = %v, want %v", hash, expectedHash)
	}
}

func TestComputeLotHash(t *testing.T) {
	hash := ComputeLotHash("auction-1", "Test Player", 4, "n")

	expected := fmt.Sprintf("%x", sha256.Sum256([]byte("auction-1|Test Player|4|n")))
	if hash != expected {
		t.Errorf("ComputeLotHash() = %v, want %v", hash, expected)
	}
	if hash == ComputeLotHash("auction-1", "Test Player", 5, "n") {
		t.Errorf("Different round counts should produce different hashes")
	}
}

func TestComputeBudgetsHash_OrderIndependent(t *testing.T) {
	nonce := "budget-nonce"
	a := map[string]float64{"Chennai": 12.5, "Mumbai": 9.75, "Delhi": 20}
	b := map[string]float64{"Delhi": 20, "Mumbai": 9.75, "Chennai": 12.5}

	if ComputeBudgetsHash(a, nonce) != ComputeBudgetsHash(b, nonce) {
		t.Errorf("ComputeBudgetsHash() depends on map iteration order")
	}

	expectedData := nonce + "|Chennai:12.500000|Delhi:20.000000|Mumbai:9.750000"
	expected := fmt.Sprintf("%x", sha256.Sum256([]byte(expectedData)))
	if got := ComputeBudgetsHash(a, nonce); got != expected {
		t.Errorf("ComputeBudgetsHash() = %v, want %v", got, expected)
	}

	if ComputeBudgetsHash(map[string]float64{}, nonce) == ComputeBudgetsHash(a, nonce) {
		t.Errorf("Empty budgets should hash differently")
	}
}
