package validation

import (
	"fmt"

	"github.com/cloudx-io/playerauction/auctionapi"
	"github.com/cloudx-io/playerauction/core"
)

// ReceiptValidationInput contains all inputs needed to check a sale receipt
type ReceiptValidationInput struct {
	ReceiptCOSEBase64 auctionapi.ReceiptCOSEBase64
	TrustedKeys       []TrustedKey
	BidID             string  // ID of a bid the verifier placed on the lot
	BidAmount         float64 // Amount that bid set the price to
	LotName           string
	Party             string             // Expected buyer
	Price             float64            // Expected final price
	Budgets           map[string]float64 // Remaining budgets after the sale, per party
}

// ValidateReceipt verifies a signed sale receipt and checks that:
// - The signing key is trusted and the signature verifies
// - The verifier's bid was one of the accepted bids
// - The lot name matches the committed lot hash
// - The buyer and price match
// - The budgets match the committed budgets hash
//
// Returns:
//   - ReceiptValidationResult with detailed results (call result.IsValid() to check overall status)
//   - error if validation cannot be performed (e.g., malformed input)
func ValidateReceipt(input *ReceiptValidationInput) (*ReceiptValidationResult, error) {
	coseBytes, err := input.ReceiptCOSEBase64.Decode()
	if err != nil {
		return nil, fmt.Errorf("decode receipt: %w", err)
	}

	receipt, err := coseBytes.Receipt()
	if err != nil {
		return nil, fmt.Errorf("failed to parse receipt payload: %w", err)
	}

	result := &ReceiptValidationResult{
		BaseValidationResult: *validateCommonSignature(coseBytes, input.TrustedKeys),
	}

	if result.KeyTrusted && receipt.KeyFingerprint != "" {
		if kid, err := ReceiptKeyID(coseBytes); err == nil && kid != receipt.KeyFingerprint {
			result.KeyTrusted = false
			result.ValidationDetails = append(result.ValidationDetails,
				fmt.Sprintf("Payload fingerprint %s does not match key ID %s", receipt.KeyFingerprint, kid))
		}
	}

	result.BidHashValid = validateBidHash(input, receipt, result)
	result.LotValid = validateLotHash(input, receipt, result)
	result.SaleValid = validateSale(input, receipt, result)
	result.BudgetsHashValid = validateBudgetsHash(input, receipt, result)

	return result, nil
}

func validateBidHash(input *ReceiptValidationInput, receipt *auctionapi.SaleReceipt, result *ReceiptValidationResult) bool {
	if receipt.BidHashNonce == "" {
		result.ValidationDetails = append(result.ValidationDetails, "Bid hash nonce missing from receipt")
		return false
	}

	computedHash := core.ComputeBidHash(input.BidID, input.BidAmount, receipt.BidHashNonce)
	for _, receiptHash := range receipt.BidHashes {
		if computedHash == receiptHash {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Bid hash found in receipt: %s", computedHash))
			return true
		}
	}

	result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Bid hash NOT found in receipt. Computed: %s", computedHash))
	result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Total hashes in receipt: %d", len(receipt.BidHashes)))
	return false
}

func validateLotHash(input *ReceiptValidationInput, receipt *auctionapi.SaleReceipt, result *ReceiptValidationResult) bool {
	if receipt.LotHashNonce == "" {
		result.ValidationDetails = append(result.ValidationDetails, "Lot hash nonce missing from receipt")
		return false
	}
	if input.LotName != receipt.Lot.Name {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Lot mismatch: expected %q, receipt has %q", input.LotName, receipt.Lot.Name))
		return false
	}

	computedHash := core.ComputeLotHash(receipt.AuctionID, input.LotName, receipt.Rounds, receipt.LotHashNonce)
	if computedHash == receipt.LotHash {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Lot hash validation passed: %s", computedHash))
		return true
	}

	result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Lot hash mismatch: computed %s, receipt has %s", computedHash, receipt.LotHash))
	return false
}

func validateSale(input *ReceiptValidationInput, receipt *auctionapi.SaleReceipt, result *ReceiptValidationResult) bool {
	valid := true
	if input.Party != receipt.Party {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Buyer mismatch: expected %q, receipt has %q", input.Party, receipt.Party))
		valid = false
	}
	if core.MoneyCmp(input.Price, receipt.Price) != 0 {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Price mismatch: expected %.6f, receipt has %.6f", input.Price, receipt.Price))
		valid = false
	}
	if valid {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Sale validation passed: %s at %.6f", receipt.Party, receipt.Price))
	}
	return valid
}

func validateBudgetsHash(input *ReceiptValidationInput, receipt *auctionapi.SaleReceipt, result *ReceiptValidationResult) bool {
	if receipt.BudgetsNonce == "" {
		result.ValidationDetails = append(result.ValidationDetails, "Budgets nonce missing from receipt")
		return false
	}

	budgets := input.Budgets
	if budgets == nil {
		budgets = map[string]float64{}
	}

	computedHash := core.ComputeBudgetsHash(budgets, receipt.BudgetsNonce)
	if computedHash == receipt.BudgetsHash {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Budgets hash validation passed: %s", computedHash))
		return true
	}

	result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Budgets hash mismatch: computed %s, receipt has %s", computedHash, receipt.BudgetsHash))
	return false
}
