package validation

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/cloudx-io/playerauction/auctionapi/parsing"
)

// LoadTrustedKeys loads the accepted auctioneer keys from a JSON file
func LoadTrustedKeys(path string) ([]TrustedKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read trusted keys file: %w", err)
	}

	var config TrustedKeyConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse trusted keys: %w", err)
	}

	if len(config.Keys) == 0 {
		return nil, fmt.Errorf("no keys found in trusted keys file")
	}

	for i, key := range config.Keys {
		pub, err := parsing.ParsePublicKeyPEM([]byte(key.PublicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("trusted key %d: %w", i, err)
		}
		fingerprint, err := parsing.PublicKeyFingerprint(pub)
		if err != nil {
			return nil, fmt.Errorf("trusted key %d: %w", i, err)
		}
		// the fingerprint is derived when the file omits it
		if key.Fingerprint == "" {
			config.Keys[i].Fingerprint = fingerprint
			continue
		}
		if !strings.EqualFold(key.Fingerprint, fingerprint) {
			return nil, fmt.Errorf("trusted key %d: fingerprint %s does not match its public key", i, key.Fingerprint)
		}
	}

	return config.Keys, nil
}

// FindTrustedKey returns the trusted key with the given fingerprint.
// If no key matches, returns (nil, -1)
func FindTrustedKey(fingerprint string, keys []TrustedKey) (*TrustedKey, int) {
	for i := range keys {
		if strings.EqualFold(keys[i].Fingerprint, fingerprint) {
			return &keys[i], i
		}
	}
	return nil, -1
}
