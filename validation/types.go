package validation

// BaseValidationResult contains the checks every signed receipt goes through
type BaseValidationResult struct {
	KeyTrusted        bool
	SignatureValid    bool
	ValidationDetails []string
}

// ReceiptValidationResult contains validation results for one sale receipt
type ReceiptValidationResult struct {
	BaseValidationResult
	BidHashValid     bool
	LotValid         bool
	SaleValid        bool
	BudgetsHashValid bool
}

// IsValid returns true if all receipt validation checks passed
func (r *ReceiptValidationResult) IsValid() bool {
	return r.KeyTrusted && r.SignatureValid && r.BidHashValid && r.LotValid && r.SaleValid && r.BudgetsHashValid
}

// KeyValidationResult contains validation results for an auctioneer public key
type KeyValidationResult struct {
	Fingerprint       string
	CurveValid        bool
	KeyTrusted        bool
	ValidationDetails []string
}

// IsValid returns true if all key validation checks passed
func (r *KeyValidationResult) IsValid() bool {
	return r.CurveValid && r.KeyTrusted
}

// TrustedKey is an auctioneer signing key a verifier accepts receipts from
type TrustedKey struct {
	Fingerprint  string `json:"fingerprint"`
	PublicKeyPEM string `json:"public_key_pem"`
	Label        string `json:"label,omitempty"` // e.g. the season or operator the key was issued for
}

// TrustedKeyConfig represents the trusted keys file structure
type TrustedKeyConfig struct {
	Keys []TrustedKey `json:"keys"`
}
