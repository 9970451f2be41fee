package auctioneer

import (
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
	"github.com/veraison/go-cose"

	"github.com/cloudx-io/playerauction/auctionapi/parsing"
)

func TestNewKeyManager(t *testing.T) {
	km, err := NewKeyManager()
	assert.NoError(t, err)
	assert.NotNil(t, km)
	assert.NotNil(t, km.privateKey)
	assert.NotNil(t, km.PublicKey)
	check.Equal(t, 64, len(km.Fingerprint()))
}

func TestKeyManager_PublicKeyPEM(t *testing.T) {
	km, err := NewKeyManager()
	assert.NoError(t, err)

	pemStr, err := km.PublicKeyPEM()
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(pemStr, "-----BEGIN PUBLIC KEY-----"))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(pemStr), "-----END PUBLIC KEY-----"))

	block, _ := pem.Decode([]byte(pemStr))
	assert.NotNil(t, block)
	_, err = x509.ParsePKIXPublicKey(block.Bytes)
	assert.NoError(t, err)

	pub, err := parsing.ParsePublicKeyPEM([]byte(pemStr))
	assert.NoError(t, err)
	fingerprint, err := parsing.PublicKeyFingerprint(pub)
	assert.NoError(t, err)
	check.Equal(t, km.Fingerprint(), fingerprint)
}

func TestKeyManager_UniqueKeys(t *testing.T) {
	km1, _ := NewKeyManager()
	km2, _ := NewKeyManager()
	km3, _ := NewKeyManager()

	check.NotEqual(t, km1.Fingerprint(), km2.Fingerprint())
	check.NotEqual(t, km1.Fingerprint(), km3.Fingerprint())
	check.NotEqual(t, km2.Fingerprint(), km3.Fingerprint())
}

func TestKeyManager_SignVerifyRoundTrip(t *testing.T) {
	km, err := NewKeyManager()
	assert.NoError(t, err)

	signed, err := km.Sign([]byte("receipt payload"))
	assert.NoError(t, err)

	var msg cose.Sign1Message
	assert.NoError(t, msg.UnmarshalCBOR(signed))
	check.Equal(t, []byte("receipt payload"), msg.Payload)

	kid, ok := msg.Headers.Protected[cose.HeaderLabelKeyID].([]byte)
	assert.True(t, ok)
	check.Equal(t, km.Fingerprint(), string(kid))

	verifier, err := cose.NewVerifier(cose.AlgorithmES256, km.PublicKey)
	assert.NoError(t, err)
	check.NoError(t, msg.Verify(nil, verifier))

	other, _ := NewKeyManager()
	wrong, err := cose.NewVerifier(cose.AlgorithmES256, other.PublicKey)
	assert.NoError(t, err)
	check.Error(t, msg.Verify(nil, wrong))
}

func TestLoadOrCreateKeyManager(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipts.pem")

	created, err := LoadOrCreateKeyManager(path)
	assert.NoError(t, err)
	info, err := os.Stat(path)
	assert.NoError(t, err)
	check.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadOrCreateKeyManager(path)
	assert.NoError(t, err)
	check.Equal(t, created.Fingerprint(), loaded.Fingerprint())

	bad := filepath.Join(t.TempDir(), "bad.pem")
	assert.NoError(t, os.WriteFile(bad, []byte("not a key"), 0o600))
	_, err = LoadOrCreateKeyManager(bad)
	check.Error(t, err)
}
