package auctioneer

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"github.com/veraison/go-cose"

	"github.com/cloudx-io/playerauction/auctionapi"
	"github.com/cloudx-io/playerauction/auctionapi/parsing"
)

const privateKeyPEMType = "EC PRIVATE KEY"

// KeyManager holds the auctioneer's P-256 signing key for sale receipts
type KeyManager struct {
	privateKey  *ecdsa.PrivateKey // Keep private - sensitive!
	PublicKey   *ecdsa.PublicKey
	fingerprint string
	signer      cose.Signer
}

// NewKeyManager creates a KeyManager with a freshly generated key pair
func NewKeyManager() (*KeyManager, error) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key pair: %w", err)
	}
	return newKeyManager(privateKey)
}

func newKeyManager(privateKey *ecdsa.PrivateKey) (*KeyManager, error) {
	if privateKey.Curve != elliptic.P256() {
		return nil, fmt.Errorf("receipt key must be P-256, got %s", privateKey.Curve.Params().Name)
	}
	fingerprint, err := parsing.PublicKeyFingerprint(&privateKey.PublicKey)
	if err != nil {
		return nil, err
	}
	signer, err := cose.NewSigner(cose.AlgorithmES256, privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create signer: %w", err)
	}
	return &KeyManager{
		privateKey:  privateKey,
		PublicKey:   &privateKey.PublicKey,
		fingerprint: fingerprint,
		signer:      signer,
	}, nil
}

// LoadOrCreateKeyManager reads the PEM private key at path, generating and
// writing one when the file does not exist yet.
func LoadOrCreateKeyManager(path string) (*KeyManager, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		km, err := NewKeyManager()
		if err != nil {
			return nil, err
		}
		if err := km.writePrivateKey(path); err != nil {
			return nil, err
		}
		return km, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key: %w", err)
	}

	block, _ := pem.Decode(data)
	if block == nil || block.Type != privateKeyPEMType {
		return nil, fmt.Errorf("%s does not hold an %s block", path, privateKeyPEMType)
	}
	privateKey, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse key: %w", err)
	}
	return newKeyManager(privateKey)
}

func (km *KeyManager) writePrivateKey(path string) error {
	der, err := x509.MarshalECPrivateKey(km.privateKey)
	if err != nil {
		return fmt.Errorf("failed to marshal private key: %w", err)
	}
	data := pem.EncodeToMemory(&pem.Block{Type: privateKeyPEMType, Bytes: der})
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write key: %w", err)
	}
	return nil
}

// PublicKeyPEM returns the public key in PEM format
func (km *KeyManager) PublicKeyPEM() (string, error) {
	data, err := parsing.EncodePublicKeyPEM(km.PublicKey)
	if err != nil {
		return "", fmt.Errorf("failed to export public key: %w", err)
	}
	return string(data), nil
}

// Fingerprint is the SHA-256 of the public key's DER encoding, in hex.
func (km *KeyManager) Fingerprint() string {
	return km.fingerprint
}

// Sign wraps payload in a COSE_Sign1 message signed with ES256. The key
// fingerprint travels in the protected header as the key ID.
func (km *KeyManager) Sign(payload []byte) (auctionapi.ReceiptCOSE, error) {
	msg := cose.NewSign1Message()
	msg.Headers.Protected.SetAlgorithm(cose.AlgorithmES256)
	msg.Headers.Protected[cose.HeaderLabelKeyID] = []byte(km.fingerprint)
	msg.Payload = payload

	if err := msg.Sign(rand.Reader, nil, km.signer); err != nil {
		return nil, fmt.Errorf("failed to sign receipt: %w", err)
	}
	signed, err := msg.MarshalCBOR()
	if err != nil {
		return nil, fmt.Errorf("failed to encode receipt: %w", err)
	}
	return auctionapi.ReceiptCOSE(signed), nil
}
