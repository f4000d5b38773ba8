package system

import (
	"crypto/ed25519"
	"encoding/binary"
	"strings"
	"testing"

	sgo "github.com/gagliardetto/solana-go"
	sgosystem "github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/solana-bridge/pkg/solana"
	"github.com/code-payments/solana-bridge/pkg/testutil"
)

func TestProgramKey(t *testing.T) {
	assert.Equal(t, "11111111111111111111111111111111", solana.Base58(ProgramKey[:]))
}

func TestCreateAccount(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 3)

	instruction := CreateAccount(keys[0], keys[1], keys[2], 12345, 67890)

	command := make([]byte, 4)
	lamports := make([]byte, 8)
	binary.LittleEndian.PutUint64(lamports, 12345)
	size := make([]byte, 8)
	binary.LittleEndian.PutUint64(size, 67890)

	assert.Equal(t, command, instruction.Data[0:4])
	assert.Equal(t, lamports, instruction.Data[4:12])
	assert.Equal(t, size, instruction.Data[12:20])
	assert.Equal(t, []byte(keys[2]), instruction.Data[20:52])

	decompiled, err := DecompileCreateAccount(roundTrip(t, keys[0], instruction), 0)
	require.NoError(t, err)
	assert.Equal(t, keys[0], decompiled.Funder)
	assert.Equal(t, keys[1], decompiled.Address)
	assert.Equal(t, keys[2], decompiled.Owner)
	assert.EqualValues(t, 12345, decompiled.Lamports)
	assert.EqualValues(t, 67890, decompiled.Size)
}

func TestDecompileNonCreate(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 4)

	instruction := CreateAccount(keys[0], keys[1], keys[2], 12345, 67890)

	instruction.Accounts = instruction.Accounts[:1]
	_, err := DecompileCreateAccount(compile(t, keys[0], instruction), 0)
	assert.NotNil(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "invalid number of accounts"), err)

	binary.LittleEndian.PutUint32(instruction.Data, commandTransfer)
	_, err = DecompileCreateAccount(compile(t, keys[0], instruction), 0)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)

	instruction.Data = make([]byte, 3)
	_, err = DecompileCreateAccount(compile(t, keys[0], instruction), 0)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)

	instruction.Program = keys[3]
	_, err = DecompileCreateAccount(compile(t, keys[0], instruction), 0)
	assert.Equal(t, solana.ErrIncorrectProgram, err)

	_, err = DecompileCreateAccount(compile(t, keys[0], instruction), 1)
	assert.NotNil(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "instruction doesn't exist"))
}

func TestTransfer(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 2)

	instruction := Transfer(keys[0], keys[1], 1_000_000)

	expectedData := make([]byte, 12)
	binary.LittleEndian.PutUint32(expectedData, 2)
	binary.LittleEndian.PutUint64(expectedData[4:], 1_000_000)
	assert.Equal(t, expectedData, instruction.Data)
	assert.Equal(t, ProgramKey[:], []byte(instruction.Program))

	require.Len(t, instruction.Accounts, 2)
	assert.True(t, instruction.Accounts[0].IsSigner)
	assert.True(t, instruction.Accounts[0].IsWritable)
	assert.False(t, instruction.Accounts[1].IsSigner)
	assert.True(t, instruction.Accounts[1].IsWritable)

	m := roundTrip(t, keys[0], instruction)
	require.Len(t, m.Accounts, 3)
	assert.Equal(t, solana.Header{NumSignatures: 1, NumReadonlySigned: 0, NumReadOnly: 1}, m.Header)

	decompiled, err := DecompileTransfer(m, 0)
	require.NoError(t, err)
	assert.Equal(t, keys[0], decompiled.From)
	assert.Equal(t, keys[1], decompiled.To)
	assert.EqualValues(t, 1_000_000, decompiled.Lamports)

	_, err = DecompileCreateAccount(m, 0)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)
}

func TestTransfer_SolanaGo(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 2)

	expected := sgosystem.NewTransferInstruction(
		42,
		sgo.PublicKeyFromBytes(keys[0]),
		sgo.PublicKeyFromBytes(keys[1]),
	).Build()

	data, err := expected.Data()
	require.NoError(t, err)

	actual := Transfer(keys[0], keys[1], 42)
	assert.Equal(t, data, actual.Data)
	assert.Equal(t, expected.ProgramID().Bytes(), []byte(actual.Program))
}

func compile(t *testing.T, payer ed25519.PublicKey, instructions ...solana.Instruction) solana.Message {
	tx, err := solana.NewTransaction(payer, instructions...)
	require.NoError(t, err)
	return tx.Message
}

func roundTrip(t *testing.T, payer ed25519.PublicKey, instructions ...solana.Instruction) solana.Message {
	compiled, err := solana.NewTransaction(payer, instructions...)
	require.NoError(t, err)

	var tx solana.Transaction
	require.NoError(t, tx.Unmarshal(compiled.Marshal()))
	return tx.Message
}
