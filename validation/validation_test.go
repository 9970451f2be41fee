package validation

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
	"github.com/veraison/go-cose"

	"github.com/cloudx-io/playerauction/auctioneer"
	"github.com/cloudx-io/playerauction/auctionapi"
	"github.com/cloudx-io/playerauction/core"
)

var testBudgets = map[string]float64{"Chennai": 20, "Mumbai": 17.75}

func testSale() core.Sale {
	return core.Sale{
		Lot:    &core.Lot{Name: "Opener", Specialism: "BAT", Category: "SBC", ReservePrice: 2},
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

func trustedKeyFor(t *testing.T, km *auctioneer.KeyManager, label string) TrustedKey {
	t.Helper()
	pemData, err := km.PublicKeyPEM()
	assert.NoError(t, err)
	return TrustedKey{Fingerprint: km.Fingerprint(), PublicKeyPEM: pemData, Label: label}
}

func issueReceipt(t *testing.T, km *auctioneer.KeyManager) auctionapi.ReceiptCOSE {
	t.Helper()
	issued, err := auctioneer.NewReceiptIssuer(km, nil).Issue("auction-1", testSale(), testBudgets)
	assert.NoError(t, err)
	return issued.Signed
}

func validInput(signed auctionapi.ReceiptCOSE, keys []TrustedKey) *ReceiptValidationInput {
	return &ReceiptValidationInput{
		ReceiptCOSEBase64: signed.EncodeBase64(),
		TrustedKeys:       keys,
		BidID:             "bid-1",
		BidAmount:         2.0,
		LotName:           "Opener",
		Party:             "Mumbai",
		Price:             2.25,
		Budgets:           map[string]float64{"Chennai": 20, "Mumbai": 17.75},
	}
}

func TestValidateReceipt_Valid(t *testing.T) {
	km, err := auctioneer.NewKeyManager()
	assert.NoError(t, err)
	signed := issueReceipt(t, km)

	result, err := ValidateReceipt(validInput(signed, []TrustedKey{trustedKeyFor(t, km, "season-1")}))
	assert.NoError(t, err)

	check.True(t, result.KeyTrusted)
	check.True(t, result.SignatureValid)
	check.True(t, result.BidHashValid)
	check.True(t, result.LotValid)
	check.True(t, result.SaleValid)
	check.True(t, result.BudgetsHashValid)
	check.True(t, result.IsValid())
	check.GreaterThanOrEqual(t, len(result.ValidationDetails), 6)
}

func TestValidateReceipt_URLSafeEncoding(t *testing.T) {
	km, err := auctioneer.NewKeyManager()
	assert.NoError(t, err)
	signed := issueReceipt(t, km)

	input := validInput(signed, []TrustedKey{trustedKeyFor(t, km, "")})
	input.ReceiptCOSEBase64 = signed.EncodeURLSafe()

	result, err := ValidateReceipt(input)
	assert.NoError(t, err)
	check.True(t, result.IsValid())
}

func TestValidateReceipt_Mismatches(t *testing.T) {
	km, err := auctioneer.NewKeyManager()
	assert.NoError(t, err)
	signed := issueReceipt(t, km)
	keys := []TrustedKey{trustedKeyFor(t, km, "")}

	tests := []struct {
		name   string
		modify func(*ReceiptValidationInput)
		check  func(*ReceiptValidationResult) bool
	}{
		{
			name:   "unknown bid",
			modify: func(in *ReceiptValidationInput) { in.BidID = "bid-9" },
			check:  func(r *ReceiptValidationResult) bool { return r.BidHashValid },
		},
		{
			name:   "wrong bid amount",
			modify: func(in *ReceiptValidationInput) { in.BidAmount = 2.5 },
			check:  func(r *ReceiptValidationResult) bool { return r.BidHashValid },
		},
		{
			name:   "wrong lot",
			modify: func(in *ReceiptValidationInput) { in.LotName = "Spinner" },
			check:  func(r *ReceiptValidationResult) bool { return r.LotValid },
		},
		{
			name:   "wrong buyer",
			modify: func(in *ReceiptValidationInput) { in.Party = "Chennai" },
			check:  func(r *ReceiptValidationResult) bool { return r.SaleValid },
		},
		{
			name:   "wrong price",
			modify: func(in *ReceiptValidationInput) { in.Price = 2.5 },
			check:  func(r *ReceiptValidationResult) bool { return r.SaleValid },
		},
		{
			name:   "wrong budgets",
			modify: func(in *ReceiptValidationInput) { in.Budgets["Mumbai"] = 20 },
			check:  func(r *ReceiptValidationResult) bool { return r.BudgetsHashValid },
		},
		{
			name:   "no budgets",
			modify: func(in *ReceiptValidationInput) { in.Budgets = nil },
			check:  func(r *ReceiptValidationResult) bool { return r.BudgetsHashValid },
		},
		{
			name:   "untrusted key",
			modify: func(in *ReceiptValidationInput) { in.TrustedKeys = nil },
			check:  func(r *ReceiptValidationResult) bool { return r.KeyTrusted || r.SignatureValid },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput(signed, keys)
			tt.modify(input)

			result, err := ValidateReceipt(input)
			assert.NoError(t, err)
			check.False(t, tt.check(result))
			check.False(t, result.IsValid())
		})
	}
}

func TestValidateReceipt_ForgedKeyID(t *testing.T) {
	trustedKM, err := auctioneer.NewKeyManager()
	assert.NoError(t, err)
	signed := issueReceipt(t, trustedKM)

	// re-sign the same payload with another key while claiming the trusted key ID
	forger, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	assert.NoError(t, err)
	signer, err := cose.NewSigner(cose.AlgorithmES256, forger)
	assert.NoError(t, err)

	var original cose.Sign1Message
	assert.NoError(t, original.UnmarshalCBOR(signed))

	forged := cose.NewSign1Message()
	forged.Headers.Protected.SetAlgorithm(cose.AlgorithmES256)
	forged.Headers.Protected[cose.HeaderLabelKeyID] = []byte(trustedKM.Fingerprint())
	forged.Payload = original.Payload
	assert.NoError(t, forged.Sign(rand.Reader, nil, signer))
	forgedBytes, err := forged.MarshalCBOR()
	assert.NoError(t, err)

	result, err := ValidateReceipt(validInput(forgedBytes, []TrustedKey{trustedKeyFor(t, trustedKM, "")}))
	assert.NoError(t, err)
	check.True(t, result.KeyTrusted)
	check.False(t, result.SignatureValid)
	check.True(t, result.BidHashValid)
	check.False(t, result.IsValid())
}

func TestValidateReceipt_Malformed(t *testing.T) {
	_, err := ValidateReceipt(&ReceiptValidationInput{ReceiptCOSEBase64: ""})
	check.Error(t, err)

	_, err = ValidateReceipt(&ReceiptValidationInput{ReceiptCOSEBase64: "!!!not base64!!!"})
	check.Error(t, err)

	_, err = ValidateReceipt(&ReceiptValidationInput{ReceiptCOSEBase64: auctionapi.ReceiptCOSE([]byte{0xff, 0x00}).EncodeBase64()})
	check.Error(t, err)
}

func TestVerifyCOSESignature(t *testing.T) {
	km, err := auctioneer.NewKeyManager()
	assert.NoError(t, err)
	other, err := auctioneer.NewKeyManager()
	assert.NoError(t, err)
	signed := issueReceipt(t, km)

	check.NoError(t, VerifyCOSESignature(signed, km.PublicKey))
	check.Error(t, VerifyCOSESignature(signed, other.PublicKey))
	check.Error(t, VerifyCOSESignature(auctionapi.ReceiptCOSE{0x01}, km.PublicKey))

	kid, err := ReceiptKeyID(signed)
	assert.NoError(t, err)
	check.Equal(t, km.Fingerprint(), kid)
}

func TestLoadTrustedKeys(t *testing.T) {
	km, err := auctioneer.NewKeyManager()
	assert.NoError(t, err)
	pemData, err := km.PublicKeyPEM()
	assert.NoError(t, err)

	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	quotedPEM := jsonString(t, pemData)

	keys, err := LoadTrustedKeys(write("derived.json", `{"keys": [{"public_key_pem": `+quotedPEM+`, "label": "season-1"}]}`))
	assert.NoError(t, err)
	assert.Equal(t, 1, len(keys))
	check.Equal(t, km.Fingerprint(), keys[0].Fingerprint)
	check.Equal(t, "season-1", keys[0].Label)

	found, idx := FindTrustedKey(km.Fingerprint(), keys)
	check.NotNil(t, found)
	check.Equal(t, 0, idx)

	missing, idx := FindTrustedKey("deadbeef", keys)
	check.Nil(t, missing)
	check.Equal(t, -1, idx)

	_, err = LoadTrustedKeys(write("mismatch.json", `{"keys": [{"fingerprint": "deadbeef", "public_key_pem": `+quotedPEM+`}]}`))
	check.Error(t, err)

	_, err = LoadTrustedKeys(write("empty.json", `{"keys": []}`))
	check.Error(t, err)

	_, err = LoadTrustedKeys(write("broken.json", `{"keys": [`))
	check.Error(t, err)

	_, err = LoadTrustedKeys(filepath.Join(dir, "absent.json"))
	check.Error(t, err)
}

func TestValidatePublicKey(t *testing.T) {
	km, err := auctioneer.NewKeyManager()
	assert.NoError(t, err)
	trusted := trustedKeyFor(t, km, "")

	result, err := ValidatePublicKey(trusted.PublicKeyPEM, []TrustedKey{trusted})
	assert.NoError(t, err)
	check.Equal(t, km.Fingerprint(), result.Fingerprint)
	check.True(t, result.CurveValid)
	check.True(t, result.KeyTrusted)
	check.True(t, result.IsValid())

	result, err = ValidatePublicKey(trusted.PublicKeyPEM, nil)
	assert.NoError(t, err)
	check.False(t, result.KeyTrusted)
	check.False(t, result.IsValid())

	_, err = ValidatePublicKey("not a key", nil)
	check.Error(t, err)
}

func jsonString(t *testing.T, s string) string {
	t.Helper()
	data, err := json.Marshal(s)
	assert.NoError(t, err)
	return string(data)
}
