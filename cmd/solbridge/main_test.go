package main

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/solana-bridge/pkg/bridge"
	"github.com/code-payments/solana-bridge/pkg/solana"
	"github.com/code-payments/solana-bridge/pkg/solana/token"
	"github.com/code-payments/solana-bridge/pkg/testutil"
)

func execute(t *testing.T, args ...string) string {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestParseSeeds(t *testing.T) {
	key := testutil.GenerateSolanaKeys(t, 1)[0]

	seeds, err := parseSeeds([]string{"metadata", "hex:00ff", "pubkey:" + solana.Base58(key)})
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("metadata"), {0, 0xff}, key}, seeds)

	_, err = parseSeeds([]string{"hex:zz"})
	assert.Error(t, err)
	_, err = parseSeeds([]string{"pubkey:abc"})
	assert.Error(t, err)
}

func TestKeypairFile(t *testing.T) {
	secret := testutil.GenerateSolanaKeypair(t)
	encoded := encodeKeypair(secret)
	assert.True(t, strings.HasPrefix(string(encoded), "["))

	decoded, err := decodeKeypair(encoded)
	require.NoError(t, err)
	assert.EqualValues(t, secret, decoded)

	_, err = decodeKeypair([]byte("[1, 256]"))
	assert.Error(t, err)
	_, err = decodeKeypair([]byte(`"base64"`))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, os.WriteFile(path, encoded, 0o600))

	account, err := readKeypair(path)
	require.NoError(t, err)
	assert.Equal(t, secret.Public().(ed25519.PublicKey), account.PublicKey())
	assert.Equal(t, account.String()+"\n", execute(t, "pubkey", path))

	assert.Error(t, writeKeypair(path, account))
}

func TestPdaCommand(t *testing.T) {
	address, bump, err := bridge.FindProgramAddress("11111111111111111111111111111111", [][]byte{[]byte("metadata"), []byte("MySeed")})
	require.NoError(t, err)

	out := execute(t, "pda", "11111111111111111111111111111111", "metadata", "MySeed")
	assert.Equal(t, fmt.Sprintf("%s %d\n", address, bump), out)
}

func TestAtaCommand(t *testing.T) {
	out := execute(t, "ata", "4uQeVj5tqViQh7yWWGStvkEG1Zmhx6uasJtWCJziofM", "8opHzTAnfzRpPEx21XtnrVTX28YQuCpAjcn1PczScKh")
	assert.Equal(t, "H7MQwEzt97tUJryocn3qaEoy2ymWstwyEk1i9Yv3EmuZ\n", out)
}

func TestTransferAndDecode(t *testing.T) {
	secret := testutil.GenerateSolanaKeypair(t)
	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, os.WriteFile(path, encodeKeypair(secret), 0o600))

	to := testutil.GenerateSolanaKeys(t, 1)[0]
	out := execute(t, "transfer",
		"--keypair", path,
		"--to", solana.Base58(to),
		"--lamports", "1000",
		"--memo", "thanks",
		"--compute-unit-price", "1000",
		"--blockhash", "11111111111111111111111111111111",
	)

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(out))
	require.NoError(t, err)

	builder := bridge.NewTransactionBuilder(bridge.WithOverrides(bridge.Overrides{}))
	require.NoError(t, builder.Deserialize(raw))
	assert.True(t, builder.IsFullySigned())

	tx, err := builder.Transaction()
	require.NoError(t, err)
	require.Len(t, tx.Message.Instructions, 3)

	var described bytes.Buffer
	describeTransaction(&described, builder.State(), tx)
	text := described.String()
	assert.Contains(t, text, "state: fully_signed")
	assert.Contains(t, text, "compute unit price 1000 micro-lamports")
	assert.Contains(t, text, "system transfer 1000 lamports")
	assert.Contains(t, text, `memo "thanks"`)

	assert.Equal(t, text, execute(t, "decode", strings.TrimSpace(out)))
}

func TestDescribeTokenInstruction(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 3)

	tx, err := solana.NewTransaction(keys[2], token.Transfer(keys[0], keys[1], keys[2], 77), token.CloseAccount(keys[0], keys[1], keys[2]))
	require.NoError(t, err)

	assert.Contains(t, describeInstruction(tx.Message, 0), "token Transfer 77")
	assert.Contains(t, describeInstruction(tx.Message, 1), "token CloseAccount")

	other, err := solana.NewTransaction(keys[0], solana.NewInstruction(keys[1], []byte{1, 2}))
	require.NoError(t, err)
	assert.Equal(t, "program "+solana.Base58(keys[1])+", 0 accounts, 2 bytes of data", describeInstruction(other.Message, 0))
}

func TestConfigEndpoint(t *testing.T) {
	for env, expected := range map[string]solana.Environment{
		"dev":     solana.EnvironmentDev,
		"testnet": solana.EnvironmentTest,
		"prod":    solana.EnvironmentProd,
	} {
		endpoint, err := Config{Environment: env}.endpoint()
		require.NoError(t, err)
		assert.Equal(t, string(expected), endpoint)
	}

	endpoint, err := Config{Environment: "dev", RpcEndpoint: "http://localhost:8899"}.endpoint()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8899", endpoint)

	_, err = Config{Environment: "moon"}.endpoint()
	assert.Error(t, err)
}
