package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/cloudx-io/playerauction/validation"
)

// plainTextHandler is a simple slog handler that writes plain text to stdout
// without timestamps or log levels - appropriate for CLI output
type plainTextHandler struct{}

func (*plainTextHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (*plainTextHandler) Handle(_ context.Context, r slog.Record) error {
	_, err := fmt.Fprintln(os.Stdout, r.Message)
	return err
}

func (h *plainTextHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

func (h *plainTextHandler) WithGroup(_ string) slog.Handler {
	return h
}

var logger = slog.New(&plainTextHandler{})

func main() {
	var (
		publicKeyPath   = flag.String("public-key", "", "Path to public key PEM file (required)")
		trustedKeysPath = flag.String("trusted-keys", "", "Path to trusted keys JSON file (required)")
		outputFormat    = flag.String("format", "text", "Output format: text or json")
		help            = flag.Bool("help", false, "Show usage information")
	)

	flag.Parse()

	if *help || *publicKeyPath == "" || *trustedKeysPath == "" {
		showUsage()
		if *publicKeyPath == "" || *trustedKeysPath == "" {
			os.Exit(1)
		}
		os.Exit(0)
	}

	publicKey, err := os.ReadFile(*publicKeyPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading public key: %v\n", err)
		os.Exit(2)
	}

	trustedKeys, err := validation.LoadTrustedKeys(*trustedKeysPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading trusted keys: %v\n", err)
		os.Exit(2)
	}

	result, err := validation.ValidatePublicKey(string(publicKey), trustedKeys)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation error: %v\n", err)
		os.Exit(2)
	}

	if *outputFormat == "json" {
		if err := outputJSON(result); err != nil {
			fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
			os.Exit(2)
		}
	} else {
		outputText(result)
	}

	if !result.IsValid() {
		os.Exit(1)
	}
	os.Exit(0)
}

func showUsage() {
	logger.Info("Auctioneer Key Validator")
	logger.Info("")
	logger.Info("Checks that a receipt signing key is a P-256 key listed in the trusted keys.")
	logger.Info("")
	logger.Info("Usage:")
	logger.Info("  key-validator --public-key <pem> --trusted-keys <path> [options]")
	logger.Info("")
	logger.Info("Required Flags:")
	logger.Info("  --public-key <path>               Path to public key PEM file")
	logger.Info("  --trusted-keys <path>             Path to trusted keys JSON file")
	logger.Info("")
	logger.Info("Optional Flags:")
	logger.Info("  --format <text|json>              Output format (default: text)")
	logger.Info("  --help                            Show this help message")
	logger.Info("")
	logger.Info("Examples:")
	logger.Info("  key-validator --public-key receipts.pub.pem --trusted-keys keys.json")
	logger.Info("  key-validator --public-key receipts.pub.pem --trusted-keys keys.json --format json")
	logger.Info("")
	logger.Info("Exit Codes:")
	logger.Info("  0 - Validation passed")
	logger.Info("  1 - Validation failed")
	logger.Info("  2 - Invalid input or runtime error")
}

func outputText(result *validation.KeyValidationResult) {
	logger.Info("Auctioneer Key Validator")
	logger.Info("========================")
	logger.Info("")

	logger.Info("Summary:")
	logger.Info(fmt.Sprintf("  Fingerprint:       %s", result.Fingerprint))
	logger.Info(fmt.Sprintf("  Curve Valid:       %v", result.CurveValid))
	logger.Info(fmt.Sprintf("  Key Trusted:       %v", result.KeyTrusted))

	logger.Info("")
	logger.Info("Details:")
	for _, detail := range result.ValidationDetails {
		logger.Info("  - " + detail)
	}

	logger.Info("")
	logger.Info("========================")
	if result.IsValid() {
		logger.Info("VALIDATION: ✓ PASSED")
		logger.Info("Exit Code: 0")
	} else {
		logger.Info("VALIDATION: ✗ FAILED")
		logger.Info("Exit Code: 1")
	}
}

func outputJSON(result *validation.KeyValidationResult) error {
	output := map[string]any{
		"valid":       result.IsValid(),
		"fingerprint": result.Fingerprint,
		"curve_valid": result.CurveValid,
		"key_trusted": result.KeyTrusted,
		"details":     result.ValidationDetails,
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return err
	}
	logger.Info(string(data))
	return nil
}
