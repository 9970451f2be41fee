package validation

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/veraison/go-cose"

	"github.com/cloudx-io/playerauction/auctionapi"
)

// parseSign1 accepts both tagged and untagged COSE_Sign1 encodings
func parseSign1(coseBytes []byte) (*cose.Sign1Message, error) {
	var msg cose.Sign1Message
	if err := msg.UnmarshalCBOR(coseBytes); err == nil {
		return &msg, nil
	}

	var untagged cose.UntaggedSign1Message
	if err := untagged.UnmarshalCBOR(coseBytes); err != nil {
		return nil, fmt.Errorf("parse COSE_Sign1: %w", err)
	}
	return (*cose.Sign1Message)(&untagged), nil
}

// ReceiptKeyID returns the key ID carried in the receipt's protected header
func ReceiptKeyID(coseBytes auctionapi.ReceiptCOSE) (string, error) {
	msg, err := parseSign1(coseBytes)
	if err != nil {
		return "", err
	}
	kid, ok := msg.Headers.Protected[cose.HeaderLabelKeyID].([]byte)
	if !ok || len(kid) == 0 {
		return "", errors.New("receipt has no key ID")
	}
	return string(kid), nil
}

// VerifyCOSESignature verifies an ES256 COSE_Sign1 receipt against publicKey
func VerifyCOSESignature(coseBytes auctionapi.ReceiptCOSE, publicKey *ecdsa.PublicKey) error {
	msg, err := parseSign1(coseBytes)
	if err != nil {
		return err
	}

	alg, err := msg.Headers.Protected.Algorithm()
	if err != nil {
		return fmt.Errorf("read algorithm: %w", err)
	}
	if alg != cose.AlgorithmES256 {
		return fmt.Errorf("unexpected algorithm %s", alg)
	}

	verifier, err := cose.NewVerifier(cose.AlgorithmES256, publicKey)
	if err != nil {
		return fmt.Errorf("create verifier: %w", err)
	}
	if err := msg.Verify(nil, verifier); err != nil {
		return fmt.Errorf("COSE signature verification failed: %w", err)
	}
	return nil
}
