package bridge

import (
	"github.com/code-payments/solana-bridge/pkg/wallet"
)

// WatchAccount returns a read-only account for a base58 address.
func WatchAccount(address string) (*wallet.ReadOnlyAccount, error) {
	account, err := wallet.NewAccountFromPublicKeyString(address)
	if err != nil {
		return nil, newError(InvalidInput, err, "invalid address %q", address)
	}
	return account, nil
}

// ImportAccount returns a signing account for a 64 byte secret key.
func ImportAccount(secret []byte) (*wallet.SigningAccount, error) {
	account, err := wallet.NewAccountFromPrivateKeyBytes(secret)
	if err != nil {
		return nil, newError(WalletError, err, "invalid keypair")
	}
	return account, nil
}

// AccountFromMnemonic derives a signing account from a BIP-39 mnemonic. An
// empty path selects wallet.DefaultDerivationPath.
func AccountFromMnemonic(mnemonic, passphrase, path string) (*wallet.SigningAccount, error) {
	account, err := wallet.NewAccountFromMnemonic(mnemonic, passphrase, path)
	if err != nil {
		return nil, newError(WalletError, err, "cannot derive keypair")
	}
	return account, nil
}

func GenerateAccount() (*wallet.SigningAccount, error) {
	account, err := wallet.NewRandomAccount()
	if err != nil {
		return nil, newError(WalletError, err, "cannot generate keypair")
	}
	return account, nil
}

// ExportPrivateKey returns a copy of the account's secret key. The caller
// owns the copy and should wallet.Zero it.
func ExportPrivateKey(account wallet.Account) ([]byte, error) {
	if !wallet.HasPrivateKey(account) {
		return nil, newError(WalletError, wallet.ErrPrivateKeyUnavailable, "account %s is read-only", account)
	}
	return account.(wallet.Signer).PrivateKey(), nil
}
