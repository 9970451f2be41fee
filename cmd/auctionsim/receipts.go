package main

import (
	"github.com/spf13/cobra"

	"github.com/cloudx-io/playerauction/auctionapi"
)

var receiptsCmd = &cobra.Command{
	Use:   "receipts",
	Short: "Export signed sale receipts as JSON",
	Long: `Receipts prints every signed receipt of an auction. Each entry carries the
decoded receipt next to receipt_cose_base64, which is what receipt-validator
expects in its --receipt input.`,
	RunE: runReceipts,
}

var (
	receiptsDB        string
	receiptsAuctionID string
	receiptsID        string
)

type exportedReceipt struct {
	Receipt           *auctionapi.SaleReceipt      `json:"receipt"`
	ReceiptCOSEBase64 auctionapi.ReceiptCOSEBase64 `json:"receipt_cose_base64"`
}

func init() {
	receiptsCmd.Flags().StringVar(&receiptsDB, "db", "", "sqlite ledger path (overrides store.path)")
	receiptsCmd.Flags().StringVar(&receiptsAuctionID, "auction", "", "auction ID (default: most recent)")
	receiptsCmd.Flags().StringVar(&receiptsID, "id", "", "export a single receipt by ID")
	rootCmd.AddCommand(receiptsCmd)
}

func runReceipts(_ *cobra.Command, _ []string) error {
	db, err := openLedger(receiptsDB)
	if err != nil {
		return err
	}
	defer db.Close()

	if receiptsID != "" {
		stored, err := db.Receipt(receiptsID)
		if err != nil {
			return err
		}
		exported, err := exportReceipt(stored.Signed())
		if err != nil {
			return err
		}
		return printJSON(exported)
	}

	auctionID := receiptsAuctionID
	if auctionID == "" {
		latest, err := db.LatestAuction()
		if err != nil {
			return err
		}
		auctionID = latest.ID
	}

	stored, err := db.Receipts(auctionID)
	if err != nil {
		return err
	}
	out := make([]exportedReceipt, 0, len(stored))
	for _, s := range stored {
		exported, err := exportReceipt(s.Signed())
		if err != nil {
			return err
		}
		out = append(out, exported)
	}
	return printJSON(out)
}

func exportReceipt(signed auctionapi.ReceiptCOSE) (exportedReceipt, error) {
	receipt, err := signed.Receipt()
	if err != nil {
		return exportedReceipt{}, err
	}
	return exportedReceipt{Receipt: receipt, ReceiptCOSEBase64: signed.EncodeBase64()}, nil
}
