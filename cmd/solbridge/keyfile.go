package main

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/code-payments/solana-bridge/pkg/bridge"
	"github.com/code-payments/solana-bridge/pkg/wallet"
)

// Keypair files hold the 64 byte secret as a JSON array of integers, the
// format used by solana-keygen.

func readKeypair(path string) (*wallet.SigningAccount, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read keypair %s", path)
	}

	secret, err := decodeKeypair(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid keypair %s", path)
	}
	defer wallet.Zero(secret)

	return bridge.ImportAccount(secret)
}

func decodeKeypair(raw []byte) ([]byte, error) {
	var values []int
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, err
	}

	secret := make([]byte, len(values))
	for i, v := range values {
		if v < 0 || v > 255 {
			return nil, errors.Errorf("byte %d out of range: %d", i, v)
		}
		secret[i] = byte(v)
	}
	return secret, nil
}

func encodeKeypair(secret []byte) []byte {
	values := make([]int, len(secret))
	for i, b := range secret {
		values[i] = int(b)
	}

	encoded, _ := json.Marshal(values)
	return encoded
}

func writeKeypair(path string, account *wallet.SigningAccount) error {
	secret := account.PrivateKey()
	defer wallet.Zero(secret)

	if _, err := os.Stat(path); err == nil {
		return errors.Errorf("%s already exists", path)
	}
	return os.WriteFile(path, encodeKeypair(secret), 0o600)
}
