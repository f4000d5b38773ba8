package wallet

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tyler-smith/go-bip39"
)

func TestDeriveKey_Slip10Vectors(t *testing.T) {
	seed, err := hex.DecodeString("000102030405060708090a0b0c0d0e0f")
	require.NoError(t, err)

	for _, tc := range []struct {
		path      string
		chainCode string
		key       string
		publicKey string
	}{
		{
			path:      "m",
			chainCode: "90046a93de5380a72b5e45010748567d5ea02bbf6522f979e05c0d8d8ca9fffb",
			key:       "2b4be7f19ee27bbf30c667b642d5f4aa69fd169872f8fc3059c08ebae2eb19e7",
			publicKey: "a4b2856bfec510abab89753fac1ac0e1112364e7d250545963f135f2a33188ed",
		},
		{
			path:      "m/0'",
			chainCode: "8b59aa11380b624e81507a27fedda59fea6d0b779a778918a2fd3590e16e9c69",
			key:       "68e0fe46dfb67e368c75379acec591dad19df3cde26e63b93a8e704f1dade7a3",
			publicKey: "8c8a13df77a28f3445213a0f432fde644acaa215fc72dcdf300d5efaa85d350c",
		},
	} {
		key, chainCode, err := DeriveKey(seed, tc.path)
		require.NoError(t, err)
		assert.Equal(t, tc.key, hex.EncodeToString(key), tc.path)
		assert.Equal(t, tc.chainCode, hex.EncodeToString(chainCode), tc.path)

		account, err := NewAccountFromSeed(key)
		require.NoError(t, err)
		assert.Equal(t, tc.publicKey, hex.EncodeToString(account.PublicKey()), tc.path)
	}
}

func TestParseDerivationPath(t *testing.T) {
	indices, err := ParseDerivationPath(DefaultDerivationPath)
	require.NoError(t, err)
	assert.Equal(t, []uint32{hardenedOffset + 44, hardenedOffset + 501, hardenedOffset, hardenedOffset}, indices)

	// unmarked and h suffixed indices are hardened too
	alt, err := ParseDerivationPath("m/44h/501/0'/0")
	require.NoError(t, err)
	assert.Equal(t, indices, alt)

	indices, err = ParseDerivationPath("m")
	require.NoError(t, err)
	assert.Empty(t, indices)

	assert.Equal(t, "m/44'/501'/0'/0'", hardenedPath(alt))
	assert.Equal(t, "m", hardenedPath(nil))

	for _, path := range []string{
		"",
		"44'/501'",
		"m/",
		"m/x'",
		"m/-1'",
		"m/2147483648'",
		"m/''",
	} {
		_, err := ParseDerivationPath(path)
		assert.ErrorIs(t, err, ErrInvalidDerivationPath, path)
	}
}

func TestNewAccountFromMnemonic(t *testing.T) {
	mnemonic, err := NewMnemonic(128)
	require.NoError(t, err)
	assert.Len(t, strings.Fields(mnemonic), 12)
	assert.True(t, bip39.IsMnemonicValid(mnemonic))

	a, err := NewAccountFromMnemonic(mnemonic, "", "")
	require.NoError(t, err)
	b, err := NewAccountFromMnemonic(mnemonic, "", DefaultDerivationPath)
	require.NoError(t, err)
	assert.Equal(t, a.PublicKey(), b.PublicKey())

	seed := bip39.NewSeed(mnemonic, "")
	key, _, err := DeriveKey(seed, DefaultDerivationPath)
	require.NoError(t, err)
	expected, err := NewAccountFromSeed(key)
	require.NoError(t, err)
	assert.Equal(t, expected.PublicKey(), a.PublicKey())

	withPassphrase, err := NewAccountFromMnemonic(mnemonic, "passphrase", "")
	require.NoError(t, err)
	assert.NotEqual(t, a.PublicKey(), withPassphrase.PublicKey())

	otherAccount, err := NewAccountFromMnemonic(mnemonic, "", "m/44'/501'/1'/0'")
	require.NoError(t, err)
	assert.NotEqual(t, a.PublicKey(), otherAccount.PublicKey())
}

func TestNewAccountFromMnemonic_Invalid(t *testing.T) {
	_, err := NewAccountFromMnemonic("not a real mnemonic", "", "")
	assert.ErrorIs(t, err, ErrInvalidMnemonic)

	mnemonic, err := NewMnemonic(256)
	require.NoError(t, err)
	assert.Len(t, strings.Fields(mnemonic), 24)

	_, err = NewAccountFromMnemonic(mnemonic, "", "n/44'")
	assert.ErrorIs(t, err, ErrInvalidDerivationPath)

	_, err = NewMnemonic(100)
	assert.Error(t, err)
}
