package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/cloudx-io/playerauction/auctionapi"
	"github.com/cloudx-io/playerauction/validation"
)

// claim is what a party believes about a sale it took part in
type claim struct {
	BidID     string             `json:"bid_id"`
	BidAmount float64            `json:"bid_amount"`
	Lot       string             `json:"lot"`
	Party     string             `json:"party"`
	Price     float64            `json:"price"`
	Budgets   map[string]float64 `json:"budgets"`
}

type receiptEnvelope struct {
	ReceiptCOSEBase64 auctionapi.ReceiptCOSEBase64 `json:"receipt_cose_base64"`
}

func main() {
	// Define CLI flags
	var (
		receiptInput    = flag.String("receipt", "", "Receipt JSON with receipt_cose_base64 (file path or inline JSON)")
		claimInput      = flag.String("claim", "", "Expected sale details JSON (file path or inline JSON)")
		trustedKeysPath = flag.String("trusted-keys", "", "Path to trusted keys JSON file")
		outputFormat    = flag.String("format", "text", "Output format: text or json")
		help            = flag.Bool("help", false, "Show usage information")
	)

	flag.Parse()

	// Show help
	if *help {
		showUsage()
		os.Exit(0)
	}

	// Check for required inputs
	if *receiptInput == "" || *claimInput == "" || *trustedKeysPath == "" {
		showUsage()
		fmt.Fprintf(os.Stderr, "\nError: All three inputs are required (--receipt, --claim, --trusted-keys)\n")
		os.Exit(1)
	}

	receiptJSON, err := readJSONInput(*receiptInput)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading receipt: %v\n", err)
		os.Exit(2)
	}

	claimJSON, err := readJSONInput(*claimInput)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading claim: %v\n", err)
		os.Exit(2)
	}

	trustedKeys, err := validation.LoadTrustedKeys(*trustedKeysPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading trusted keys: %v\n", err)
		os.Exit(2)
	}

	validationInput, err := extractValidationInput(receiptJSON, claimJSON)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error extracting validation data: %v\n", err)
		os.Exit(2)
	}
	validationInput.TrustedKeys = trustedKeys

	// Validate using library
	result, err := validation.ValidateReceipt(validationInput)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation error: %v\n", err)
		os.Exit(2)
	}

	// Output results
	if *outputFormat == "json" {
		outputJSON(result)
	} else {
		outputText(result)
	}

	// Exit with appropriate code
	if !result.IsValid() {
		os.Exit(1)
	}
	os.Exit(0)
}

func showUsage() {
	fmt.Println("Sale Receipt Validator")
	fmt.Println()
	fmt.Println("Checks a signed sale receipt against what a party saw during the auction.")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  receipt-validator --receipt <json> --claim <json> --trusted-keys <path> [options]")
	fmt.Println()
	fmt.Println("Required Flags:")
	fmt.Println("  --receipt <json>                  Receipt as exported by auctionsim receipts")
	fmt.Println("  --claim <json>                    Expected sale details")
	fmt.Println("  --trusted-keys <path>             Trusted auctioneer keys")
	fmt.Println()
	fmt.Println("Optional Flags:")
	fmt.Println("  --format <text|json>              Output format (default: text)")
	fmt.Println("  --help                            Show this help message")
	fmt.Println()
	fmt.Println("Input Format:")
	fmt.Println("  --receipt and --claim accept either a file path or inline JSON string.")
	fmt.Println()
	fmt.Println("Receipt:")
	fmt.Println("  {")
	fmt.Println("    \"receipt_cose_base64\": \"0oRDoQEm...\"")
	fmt.Println("  }")
	fmt.Println()
	fmt.Println("Claim:")
	fmt.Println("  {")
	fmt.Println("    \"bid_id\": \"3b6f...\",")
	fmt.Println("    \"bid_amount\": 2.25,")
	fmt.Println("    \"lot\": \"Virat Kohli\",")
	fmt.Println("    \"party\": \"TeamA\",")
	fmt.Println("    \"price\": 2.25,")
	fmt.Println("    \"budgets\": {\"TeamA\": 97.75, \"TeamB\": 100, \"TeamC\": 100}")
	fmt.Println("  }")
	fmt.Println()
	fmt.Println("Trusted Keys:")
	fmt.Println("  {\"keys\": [{\"fingerprint\": \"ab12...\", \"public_key_pem\": \"-----BEGIN PUBLIC KEY-----\\n...\", \"label\": \"season-1\"}]}")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  receipt-validator --receipt receipt.json --claim claim.json --trusted-keys keys.json")
	fmt.Println()
	fmt.Println("Exit Codes:")
	fmt.Println("  0 - Validation passed")
	fmt.Println("  1 - Validation failed")
	fmt.Println("  2 - Invalid input or runtime error")
}

func readJSONInput(input string) ([]byte, error) {
	// Try reading as file first
	if data, err := os.ReadFile(input); err == nil {
		return data, nil
	}
	// Treat as inline JSON
	return []byte(input), nil
}

func extractValidationInput(receiptJSON, claimJSON []byte) (*validation.ReceiptValidationInput, error) {
	var envelope receiptEnvelope
	if err := json.Unmarshal(receiptJSON, &envelope); err != nil {
		return nil, fmt.Errorf("parse receipt: %w", err)
	}
	if envelope.ReceiptCOSEBase64 == "" {
		return nil, fmt.Errorf("missing 'receipt_cose_base64' in receipt")
	}

	var c claim
	if err := json.Unmarshal(claimJSON, &c); err != nil {
		return nil, fmt.Errorf("parse claim: %w", err)
	}
	if c.BidID == "" {
		return nil, fmt.Errorf("missing 'bid_id' in claim")
	}
	if c.Lot == "" || c.Party == "" {
		return nil, fmt.Errorf("claim needs both 'lot' and 'party'")
	}

	return &validation.ReceiptValidationInput{
		ReceiptCOSEBase64: envelope.ReceiptCOSEBase64,
		BidID:             c.BidID,
		BidAmount:         c.BidAmount,
		LotName:           c.Lot,
		Party:             c.Party,
		Price:             c.Price,
		Budgets:           c.Budgets,
	}, nil
}

func outputText(result *validation.ReceiptValidationResult) {
	fmt.Println("Sale Receipt Validator")
	fmt.Println("======================")
	fmt.Println()

	fmt.Println("Validation Results:")
	fmt.Println("-------------------")

	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("  Key Trusted:             %v\n", result.KeyTrusted)
	fmt.Printf("  Signature Valid:         %v\n", result.SignatureValid)
	fmt.Printf("  Bid Hash Valid:          %v\n", result.BidHashValid)
	fmt.Printf("  Lot Valid:               %v\n", result.LotValid)
	fmt.Printf("  Sale Valid:              %v\n", result.SaleValid)
	fmt.Printf("  Budgets Hash Valid:      %v\n", result.BudgetsHashValid)

	fmt.Println()
	fmt.Println("Details:")
	for _, detail := range result.ValidationDetails {
		fmt.Printf("  - %s\n", detail)
	}

	fmt.Println()
	fmt.Println("======================")
	if result.IsValid() {
		fmt.Println("VALIDATION: ✓ PASSED")
		fmt.Println("Exit Code: 0")
	} else {
		fmt.Println("VALIDATION: ✗ FAILED")
		fmt.Println("Exit Code: 1")
	}
}

func outputJSON(result *validation.ReceiptValidationResult) {
	output := map[string]any{
		"valid":              result.IsValid(),
		"key_trusted":        result.KeyTrusted,
		"signature_valid":    result.SignatureValid,
		"bid_hash_valid":     result.BidHashValid,
		"lot_valid":          result.LotValid,
		"sale_valid":         result.SaleValid,
		"budgets_hash_valid": result.BudgetsHashValid,
		"details":            result.ValidationDetails,
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		os.Exit(2)
	}
	fmt.Println(string(data))
}
