package auctionapi

import (
	"encoding/base64"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/cloudx-io/playerauction/auctionapi/parsing"
)

// ReceiptCOSE is a raw COSE_Sign1 message carrying a CBOR SaleReceipt.
type ReceiptCOSE []byte

// ReceiptCOSEBase64 is a base64-encoded ReceiptCOSE, standard or URL-safe.
type ReceiptCOSEBase64 string

// EncodeBase64 encodes the receipt with standard base64.
func (r ReceiptCOSE) EncodeBase64() ReceiptCOSEBase64 {
	return ReceiptCOSEBase64(base64.StdEncoding.EncodeToString(r))
}

// EncodeURLSafe encodes the receipt with unpadded URL-safe base64.
func (r ReceiptCOSE) EncodeURLSafe() ReceiptCOSEBase64 {
	return ReceiptCOSEBase64(base64.RawURLEncoding.EncodeToString(r))
}

// Receipt extracts and decodes the receipt payload without verifying the signature.
func (r ReceiptCOSE) Receipt() (*SaleReceipt, error) {
	payload, err := parsing.ExtractCOSEPayload(r)
	if err != nil {
		return nil, fmt.Errorf("extract receipt payload: %w", err)
	}
	return DecodeReceiptCBOR(payload)
}

func (b ReceiptCOSEBase64) String() string {
	return string(b)
}

// Decode accepts either standard or unpadded URL-safe base64.
func (b ReceiptCOSEBase64) Decode() (ReceiptCOSE, error) {
	if b == "" {
		return nil, fmt.Errorf("empty receipt")
	}
	data, err := base64.StdEncoding.DecodeString(string(b))
	if err == nil {
		return ReceiptCOSE(data), nil
	}
	data, urlErr := base64.RawURLEncoding.DecodeString(string(b))
	if urlErr != nil {
		return nil, fmt.Errorf("decode base64 receipt: %w", err)
	}
	return ReceiptCOSE(data), nil
}

// EncodeCBOR encodes the receipt payload in canonical CBOR.
func (r *SaleReceipt) EncodeCBOR() ([]byte, error) {
	data, err := encMode.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode receipt: %w", err)
	}
	return data, nil
}

// DecodeReceiptCBOR decodes a receipt payload produced by EncodeCBOR.
func DecodeReceiptCBOR(data []byte) (*SaleReceipt, error) {
	var receipt SaleReceipt
	if err := cbor.Unmarshal(data, &receipt); err != nil {
		return nil, fmt.Errorf("decode receipt: %w", err)
	}
	return &receipt, nil
}
