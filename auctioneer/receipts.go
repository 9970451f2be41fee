package auctioneer

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cloudx-io/playerauction/auctionapi"
	"github.com/cloudx-io/playerauction/core"
)

// Receipt is an issued sale receipt together with its signed form.
type Receipt struct {
	Receipt *auctionapi.SaleReceipt
	Signed  auctionapi.ReceiptCOSE
}

// ReceiptIssuer signs a receipt for every finalized sale.
type ReceiptIssuer struct {
	keys   *KeyManager
	now    func() time.Time
	logger *zap.Logger
}

// NewReceiptIssuer creates an issuer signing with keys.
func NewReceiptIssuer(keys *KeyManager, logger *zap.Logger) *ReceiptIssuer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceiptIssuer{keys: keys, now: time.Now, logger: logger}
}

// Fingerprint identifies the signing key.
func (ri *ReceiptIssuer) Fingerprint() string {
	return ri.keys.Fingerprint()
}

// Issue commits to the sale's accepted bids, the lot and the budgets left
// after the sale, and signs the result.
func (ri *ReceiptIssuer) Issue(auctionID string, sale core.Sale, budgets map[string]float64) (Receipt, error) {
	if ri.keys == nil {
		return Receipt{}, fmt.Errorf("receipt key manager is nil")
	}
	if sale.Lot == nil {
		return Receipt{}, fmt.Errorf("sale has no lot")
	}

	bidHashNonce, err := generateNonce()
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to generate bid hash nonce: %w", err)
	}
	lotNonce, err := generateNonce()
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to generate lot nonce: %w", err)
	}
	budgetsNonce, err := generateNonce()
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to generate budgets nonce: %w", err)
	}

	// one hash per bid that led the lot, in acceptance order
	bidHashes := make([]string, 0, len(sale.BidHistory))
	for _, bid := range sale.BidHistory {
		bidHashes = append(bidHashes, core.ComputeBidHash(bid.ID, bid.Amount, bidHashNonce))
	}

	receipt := &auctionapi.SaleReceipt{
		ReceiptID:      uuid.NewString(),
		AuctionID:      auctionID,
		Lot:            auctionapi.Summarize(sale.Lot),
		Party:          sale.Party,
		Price:          sale.Price,
		Rounds:         sale.Rounds,
		WinningBidID:   sale.BidID,
		BidHashes:      bidHashes,
		BidHashNonce:   bidHashNonce,
		LotHash:        core.ComputeLotHash(auctionID, sale.Lot.Name, sale.Rounds, lotNonce),
		LotHashNonce:   lotNonce,
		BudgetsHash:    core.ComputeBudgetsHash(budgets, budgetsNonce),
		BudgetsNonce:   budgetsNonce,
		KeyFingerprint: ri.keys.Fingerprint(),
		Timestamp:      ri.now().UTC(),
	}

	payload, err := receipt.EncodeCBOR()
	if err != nil {
		return Receipt{}, err
	}
	signed, err := ri.keys.Sign(payload)
	if err != nil {
		ri.logger.Error("receipt signing failed", zap.String("lot", sale.Lot.Name), zap.Error(err))
		return Receipt{}, err
	}

	ri.logger.Debug("receipt issued",
		zap.String("receipt_id", receipt.ReceiptID),
		zap.String("lot", sale.Lot.Name),
		zap.Int("bytes", len(signed)),
	)
	return Receipt{Receipt: receipt, Signed: signed}, nil
}

// generateSecureRandomBytes reads length bytes from crypto/rand
func generateSecureRandomBytes(length int) ([]byte, error) {
	randomBytes := make([]byte, length)
	if _, err := rand.Read(randomBytes); err != nil {
		return nil, fmt.Errorf("entropy generation failed: %w", err)
	}
	return randomBytes, nil
}

func generateNonce() (string, error) {
	randomBytes, err := generateSecureRandomBytes(32) // 256 bits of entropy
	if err != nil {
		return "", fmt.Errorf("failed to generate secure nonce - %w", err)
	}
	return hex.EncodeToString(randomBytes), nil
}
