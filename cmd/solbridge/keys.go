package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/code-payments/solana-bridge/pkg/bridge"
	"github.com/code-payments/solana-bridge/pkg/wallet"
)

var (
	keygenOutfile    string
	keygenMnemonic   bool
	keygenWords      int
	keygenRecover    string
	keygenPassphrase string
	keygenPath       string
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a new keypair",
	Args:  cobra.NoArgs,
	RunE:  runKeygen,
}

var pubkeyCmd = &cobra.Command{
	Use:   "pubkey <keypair-file>",
	Short: "Print the address of a keypair file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		account, err := readKeypair(args[0])
		if err != nil {
			return err
		}
		defer account.Zero()

		fmt.Fprintln(cmd.OutOrStdout(), account.String())
		return nil
	},
}

func init() {
	keygenCmd.Flags().StringVarP(&keygenOutfile, "outfile", "o", "", "write the keypair to this file instead of stdout")
	keygenCmd.Flags().BoolVar(&keygenMnemonic, "mnemonic", false, "derive the keypair from a new BIP-39 mnemonic")
	keygenCmd.Flags().IntVar(&keygenWords, "words", 12, "mnemonic length: 12 or 24 words")
	keygenCmd.Flags().StringVar(&keygenRecover, "recover", "", "derive the keypair from an existing mnemonic")
	keygenCmd.Flags().StringVar(&keygenPassphrase, "passphrase", "", "BIP-39 passphrase")
	keygenCmd.Flags().StringVar(&keygenPath, "derivation-path", wallet.DefaultDerivationPath, "derivation path")
}

func runKeygen(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	mnemonic := keygenRecover
	if keygenMnemonic && mnemonic == "" {
		var bits int
		switch keygenWords {
		case 12:
			bits = 128
		case 24:
			bits = 256
		default:
			return errors.Errorf("unsupported mnemonic length %d", keygenWords)
		}

		var err error
		if mnemonic, err = wallet.NewMnemonic(bits); err != nil {
			return err
		}
		fmt.Fprintf(out, "mnemonic: %s\n", mnemonic)
	}

	var account *wallet.SigningAccount
	var err error
	if mnemonic != "" {
		account, err = bridge.AccountFromMnemonic(mnemonic, keygenPassphrase, keygenPath)
	} else {
		account, err = bridge.GenerateAccount()
	}
	if err != nil {
		return err
	}
	defer account.Zero()

	if keygenOutfile != "" {
		if err := writeKeypair(keygenOutfile, account); err != nil {
			return err
		}
		fmt.Fprintf(out, "pubkey: %s\n", account)
		return nil
	}

	secret := account.PrivateKey()
	defer wallet.Zero(secret)

	fmt.Fprintf(out, "pubkey: %s\n", account)
	fmt.Fprintf(out, "keypair: %s\n", encodeKeypair(secret))
	return nil
}
