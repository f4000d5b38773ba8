package wallet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/blocto/solana-go-sdk/pkg/hdwallet"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39"
)

// DefaultDerivationPath is the account path used by most Solana wallets.
const DefaultDerivationPath = "m/44'/501'/0'/0'"

const hardenedOffset uint32 = 0x80000000

var (
	ErrInvalidMnemonic       = errors.New("invalid mnemonic")
	ErrInvalidDerivationPath = errors.New("invalid derivation path")
)

// NewMnemonic returns a fresh English mnemonic. bits must be a multiple of
// 32 between 128 and 256.
func NewMnemonic(bits int) (string, error) {
	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", errors.Wrap(err, "error generating entropy")
	}
	return bip39.NewMnemonic(entropy)
}

// NewAccountFromMnemonic derives the keypair at path from a BIP-39 mnemonic
// and optional passphrase. An empty path selects DefaultDerivationPath.
func NewAccountFromMnemonic(mnemonic, passphrase, path string) (*SigningAccount, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidMnemonic, err.Error())
	}
	defer Zero(seed)

	if path == "" {
		path = DefaultDerivationPath
	}

	key, chainCode, err := DeriveKey(seed, path)
	if err != nil {
		return nil, err
	}
	defer Zero(key)
	defer Zero(chainCode)

	return NewAccountFromSeed(key)
}

// ParseDerivationPath parses paths such as m/44'/501'/0'/0'. ed25519 only
// supports hardened derivation, so every index is hardened whether or not it
// carries a ' or h suffix.
func ParseDerivationPath(path string) ([]uint32, error) {
	parts := strings.Split(path, "/")
	if parts[0] != "m" {
		return nil, errors.Wrapf(ErrInvalidDerivationPath, "%q must start with m", path)
	}

	indices := make([]uint32, 0, len(parts)-1)
	for _, part := range parts[1:] {
		trimmed := strings.TrimSuffix(strings.TrimSuffix(part, "'"), "h")
		index, err := strconv.ParseUint(trimmed, 10, 31)
		if err != nil || trimmed == "" {
			return nil, errors.Wrapf(ErrInvalidDerivationPath, "bad index %q", part)
		}
		indices = append(indices, uint32(index)+hardenedOffset)
	}
	return indices, nil
}

// DeriveKey runs SLIP-0010 ed25519 derivation of seed along path, returning
// the 32 byte private key seed and chain code.
//
// Reference: https://github.com/satoshilabs/slips/blob/master/slip-0010.md
func DeriveKey(seed []byte, path string) (key, chainCode []byte, err error) {
	indices, err := ParseDerivationPath(path)
	if err != nil {
		return nil, nil, err
	}

	derived, err := hdwallet.Derived(hardenedPath(indices), seed)
	if err != nil {
		return nil, nil, errors.Wrap(ErrInvalidDerivationPath, err.Error())
	}
	return derived.PrivateKey, derived.ChainCode, nil
}

// hardenedPath renders indices in the m/44'/501' form, marking every index
// as hardened.
func hardenedPath(indices []uint32) string {
	var sb strings.Builder
	sb.WriteString("m")
	for _, index := range indices {
		fmt.Fprintf(&sb, "/%d'", index-hardenedOffset)
	}
	return sb.String()
}
