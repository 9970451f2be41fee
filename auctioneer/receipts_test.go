package auctioneer

import (
	"regexp"
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/cloudx-io/playerauction/core"
)

func checkHashPattern(t *testing.T, hash string) {
	t.Helper()
	matched, err := regexp.MatchString(`^[a-f0-9]{64}$`, hash)
	check.Nil(t, err)
	check.True(t, matched)
}

func testSale() core.Sale {
	lot := &core.Lot{Name: "Opener", Specialism: "BAT", Category: "SBC", ReservePrice: 2}
	return core.Sale{
		Lot:    lot,
		Party:  "Mumbai",
		Price:  2.25,
		BidID:  "bid-2",
		Rounds: 5,
		BidHistory: []core.CurrentBid{
			{ID: "bid-1", Party: "Chennai", Amount: 2.0},
			{ID: "bid-2", Party: "Mumbai", Amount: 2.25},
		},
	}
}

func TestGenerateNonce(t *testing.T) {
	nonce1, err := generateNonce()
	check.NoError(t, err)
	nonce2, err := generateNonce()
	check.NoError(t, err)

	check.Equal(t, 64, len(nonce1))
	checkHashPattern(t, nonce1)
	check.NotEqual(t, nonce1, nonce2)
}

func TestReceiptIssuer_Issue(t *testing.T) {
	km, err := NewKeyManager()
	assert.NoError(t, err)
	issuer := NewReceiptIssuer(km, nil)
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return issuedAt }

	sale := testSale()
	budgets := map[string]float64{"Chennai": 20, "Mumbai": 17.75}

	issued, err := issuer.Issue("auction-1", sale, budgets)
	assert.NoError(t, err)

	r := issued.Receipt
	check.Equal(t, "auction-1", r.AuctionID)
	check.Equal(t, "Opener", r.Lot.Name)
	check.Equal(t, "Mumbai", r.Party)
	check.Equal(t, 2.25, r.Price)
	check.Equal(t, 5, r.Rounds)
	check.Equal(t, "bid-2", r.WinningBidID)
	check.Equal(t, km.Fingerprint(), r.KeyFingerprint)
	check.True(t, r.Timestamp.Equal(issuedAt))

	assert.Equal(t, 2, len(r.BidHashes))
	for i, bid := range sale.BidHistory {
		checkHashPattern(t, r.BidHashes[i])
		check.Equal(t, core.ComputeBidHash(bid.ID, bid.Amount, r.BidHashNonce), r.BidHashes[i])
	}
	check.Equal(t, core.ComputeLotHash("auction-1", "Opener", 5, r.LotHashNonce), r.LotHash)
	check.Equal(t, core.ComputeBudgetsHash(budgets, r.BudgetsNonce), r.BudgetsHash)
	check.NotEqual(t, r.BidHashNonce, r.LotHashNonce)

	decoded, err := issued.Signed.Receipt()
	assert.NoError(t, err)
	check.Equal(t, r.ReceiptID, decoded.ReceiptID)
	check.Equal(t, r.BidHashes, decoded.BidHashes)
	check.Equal(t, r.BudgetsHash, decoded.BudgetsHash)
}

func TestReceiptIssuer_Errors(t *testing.T) {
	km, err := NewKeyManager()
	assert.NoError(t, err)

	_, err = NewReceiptIssuer(km, nil).Issue("auction-1", core.Sale{Party: "Mumbai"}, nil)
	check.Error(t, err)

	_, err = NewReceiptIssuer(nil, nil).Issue("auction-1", testSale(), nil)
	check.Error(t, err)
}
