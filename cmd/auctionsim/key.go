package main

import (
	"github.com/spf13/cobra"

	"github.com/cloudx-io/playerauction/auctioneer"
	"github.com/cloudx-io/playerauction/validation"
)

var keyCmd = &cobra.Command{
	Use:   "key <path>",
	Short: "Create or load a receipt signing key and print its trusted key entry",
	Long: `Key loads the PEM signing key at path, generating it when the file does not
exist, and prints the entry verifiers add to their trusted keys file.`,
	Args: cobra.ExactArgs(1),
	RunE: runKey,
}

var keyLabel string

func init() {
	keyCmd.Flags().StringVar(&keyLabel, "label", "", "label stored with the trusted key entry")
	rootCmd.AddCommand(keyCmd)
}

func runKey(_ *cobra.Command, args []string) error {
	keys, err := auctioneer.LoadOrCreateKeyManager(args[0])
	if err != nil {
		return err
	}
	pemData, err := keys.PublicKeyPEM()
	if err != nil {
		return err
	}
	return printJSON(validation.TrustedKeyConfig{Keys: []validation.TrustedKey{{
		Fingerprint:  keys.Fingerprint(),
		PublicKeyPEM: pemData,
		Label:        keyLabel,
	}}})
}
