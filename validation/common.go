package validation

import (
	"fmt"

	"github.com/cloudx-io/playerauction/auctionapi"
	"github.com/cloudx-io/playerauction/auctionapi/parsing"
)

// validateCommonSignature performs validation shared by every signed receipt:
// the key ID must name a trusted key and the signature must verify under it.
func validateCommonSignature(coseBytes auctionapi.ReceiptCOSE, trustedKeys []TrustedKey) *BaseValidationResult {
	result := &BaseValidationResult{}

	kid, err := ReceiptKeyID(coseBytes)
	if err != nil {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Key ID unreadable: %v", err))
		return result
	}

	trusted, idx := FindTrustedKey(kid, trustedKeys)
	if trusted == nil {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Signing key %s is not trusted", kid))
		return result
	}
	result.KeyTrusted = true
	if trusted.Label != "" {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Signing key matches trusted key %d (%s)", idx, trusted.Label))
	} else {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Signing key matches trusted key %d", idx))
	}

	pub, err := parsing.ParsePublicKeyPEM([]byte(trusted.PublicKeyPEM))
	if err != nil {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Trusted key unusable: %v", err))
		return result
	}

	if err := VerifyCOSESignature(coseBytes, pub); err != nil {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Signature verification failed: %v", err))
		return result
	}
	result.SignatureValid = true
	result.ValidationDetails = append(result.ValidationDetails, "COSE signature valid")

	return result
}
