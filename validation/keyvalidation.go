package validation

import (
	"crypto/elliptic"
	"fmt"

	"github.com/cloudx-io/playerauction/auctionapi/parsing"
)

// ValidatePublicKey checks a PEM-encoded auctioneer public key before it is
// handed out to verifiers.
//
// Parameters:
//   - publicKeyPEM: PEM-encoded PKIX public key, as written by the auctioneer
//   - trustedKeys: the keys verifiers currently accept
//
// Returns:
//   - KeyValidationResult with detailed results (call result.IsValid() to check overall status)
//   - error if the key cannot be parsed at all
func ValidatePublicKey(publicKeyPEM string, trustedKeys []TrustedKey) (*KeyValidationResult, error) {
	pub, err := parsing.ParsePublicKeyPEM([]byte(publicKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	fingerprint, err := parsing.PublicKeyFingerprint(pub)
	if err != nil {
		return nil, err
	}

	result := &KeyValidationResult{Fingerprint: fingerprint}

	if pub.Curve == elliptic.P256() {
		result.CurveValid = true
		result.ValidationDetails = append(result.ValidationDetails, "Key is on P-256")
	} else {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Key is on %s, receipts require P-256", pub.Curve.Params().Name))
	}

	if trusted, idx := FindTrustedKey(fingerprint, trustedKeys); trusted != nil {
		result.KeyTrusted = true
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Fingerprint %s matches trusted key %d", fingerprint, idx))
	} else {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Fingerprint %s is not in the trusted keys", fingerprint))
	}

	return result, nil
}
