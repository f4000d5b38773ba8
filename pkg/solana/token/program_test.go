package token

import (
	"crypto/ed25519"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/solana-bridge/pkg/solana"
	"github.com/code-payments/solana-bridge/pkg/testutil"
)

func TestProgramKey(t *testing.T) {
	assert.Equal(t, "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA", solana.Base58(ProgramKey))
	assert.Equal(t, "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL", solana.Base58(AssociatedTokenAccountProgramKey))
}

func TestGetCommand_Error(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 2)

	// invalid program
	cmd, err := GetCommand(compile(t, keys[0], solana.NewInstruction(keys[1], []byte{})), 0)
	assert.Equal(t, CommandUnknown, cmd)
	assert.Equal(t, solana.ErrIncorrectProgram, err)

	// no data
	cmd, err = GetCommand(compile(t, keys[0], solana.NewInstruction(ProgramKey, []byte{})), 0)
	assert.Equal(t, CommandUnknown, cmd)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "missing data")

	_, err = GetCommand(compile(t, keys[0], solana.NewInstruction(ProgramKey, []byte{3})), 1)
	assert.Contains(t, err.Error(), "doesn't exist")
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "Transfer", CommandTransfer.String())
	assert.Equal(t, "CloseAccount", CommandCloseAccount.String())
	assert.Equal(t, "Unknown", CommandUnknown.String())
}

func TestAmountInstructions(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 3)

	for _, tc := range []struct {
		name         string
		ixn          solana.Instruction
		cmd          Command
		tag          byte
		secondWrites bool
	}{
		{"transfer", Transfer(keys[0], keys[1], keys[2], 1_000_000), CommandTransfer, 3, true},
		{"approve", Approve(keys[0], keys[1], keys[2], 1_000_000), CommandApprove, 4, false},
		{"mint_to", MintTo(keys[0], keys[1], keys[2], 1_000_000), CommandMintTo, 7, true},
		{"burn", Burn(keys[0], keys[1], keys[2], 1_000_000), CommandBurn, 8, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, ProgramKey, tc.ixn.Program)
			require.Len(t, tc.ixn.Data, 9)
			assert.Equal(t, tc.tag, tc.ixn.Data[0])
			assert.EqualValues(t, 1_000_000, binary.LittleEndian.Uint64(tc.ixn.Data[1:]))

			require.Len(t, tc.ixn.Accounts, 3)
			for i, key := range keys {
				assert.Equal(t, key, tc.ixn.Accounts[i].PublicKey)
			}
			assert.True(t, tc.ixn.Accounts[0].IsWritable)
			assert.False(t, tc.ixn.Accounts[0].IsSigner)
			assert.Equal(t, tc.secondWrites, tc.ixn.Accounts[1].IsWritable)
			assert.False(t, tc.ixn.Accounts[1].IsSigner)
			assert.True(t, tc.ixn.Accounts[2].IsSigner)
			assert.False(t, tc.ixn.Accounts[2].IsWritable)

			m := compile(t, keys[2], tc.ixn)
			cmd, err := GetCommand(m, 0)
			require.NoError(t, err)
			assert.Equal(t, tc.cmd, cmd)

			decompiled, err := defaultProgram.DecompileAmount(m, 0, tc.cmd)
			require.NoError(t, err)
			assert.Equal(t, keys[0], decompiled.First)
			assert.Equal(t, keys[1], decompiled.Second)
			assert.Equal(t, keys[2], decompiled.Owner)
			assert.EqualValues(t, 1_000_000, decompiled.Amount)
		})
	}
}

func TestTransfer_AmountBounds(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 3)

	for _, amount := range []uint64{0, 1, math.MaxUint32 + 1, math.MaxUint64 - 1, math.MaxUint64} {
		ixn := Transfer(keys[0], keys[1], keys[2], amount)
		require.Len(t, ixn.Data, 9)
		assert.EqualValues(t, CommandTransfer, ixn.Data[0])
		assert.Equal(t, amount, binary.LittleEndian.Uint64(ixn.Data[1:]))

		decompiled, err := DecompileTransfer(compile(t, keys[2], ixn), 0)
		require.NoError(t, err)
		assert.Equal(t, amount, decompiled.Amount)
	}

	assert.Equal(t, []byte{3, 0, 0, 0, 0, 0, 0, 0, 0}, Transfer(keys[0], keys[1], keys[2], 0).Data)
	assert.Equal(t, []byte{3, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, Transfer(keys[0], keys[1], keys[2], math.MaxUint64).Data)
}

func TestRevoke(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 2)

	ixn := Revoke(keys[0], keys[1])
	assert.Equal(t, []byte{5}, ixn.Data)
	require.Len(t, ixn.Accounts, 2)
	assert.True(t, ixn.Accounts[0].IsWritable)
	assert.False(t, ixn.Accounts[0].IsSigner)
	assert.True(t, ixn.Accounts[1].IsSigner)
	assert.False(t, ixn.Accounts[1].IsWritable)
}

func TestTransfer(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 3)

	// The payer shares the owner key, the usual shape for wallet initiated
	// transfers.
	m := compile(t, keys[2], Transfer(keys[0], keys[1], keys[2], 123456789))
	assert.Equal(t, solana.Header{NumSignatures: 1, NumReadonlySigned: 0, NumReadOnly: 1}, m.Header)

	decompiled, err := DecompileTransfer(m, 0)
	require.NoError(t, err)
	assert.Equal(t, keys[0], decompiled.Source)
	assert.Equal(t, keys[1], decompiled.Destination)
	assert.Equal(t, keys[2], decompiled.Owner)
	assert.EqualValues(t, 123456789, decompiled.Amount)

	_, err = DecompileTransfer(compile(t, keys[2], CloseAccount(keys[0], keys[1], keys[2])), 0)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)

	short := Transfer(keys[0], keys[1], keys[2], 1)
	short.Data = short.Data[:5]
	_, err = DecompileTransfer(compile(t, keys[2], short), 0)
	assert.Contains(t, err.Error(), "invalid instruction data size")

	short = Transfer(keys[0], keys[1], keys[2], 1)
	short.Accounts = short.Accounts[:2]
	_, err = DecompileTransfer(compile(t, keys[2], short), 0)
	assert.Contains(t, err.Error(), "invalid number of accounts")

	_, err = defaultProgram.DecompileAmount(m, 0, CommandRevoke)
	assert.Contains(t, err.Error(), "has no amount")
}

func TestCustomProgram(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 4)
	program := Program(keys[3])

	ixn := program.Transfer(keys[0], keys[1], keys[2], 10)
	assert.Equal(t, keys[3], ixn.Program)

	m := compile(t, keys[2], ixn)
	_, err := DecompileTransfer(m, 0)
	assert.Equal(t, solana.ErrIncorrectProgram, err)

	decompiled, err := program.DecompileTransfer(m, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 10, decompiled.Amount)
}

func TestCloseAccount(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 3)

	ixn := CloseAccount(keys[0], keys[1], keys[2])
	assert.Equal(t, []byte{9}, ixn.Data)
	assert.True(t, ixn.Accounts[0].IsWritable)
	assert.True(t, ixn.Accounts[1].IsWritable)
	assert.True(t, ixn.Accounts[2].IsSigner)

	decompiled, err := DecompileCloseAccount(compile(t, keys[2], ixn), 0)
	require.NoError(t, err)
	assert.Equal(t, keys[0], decompiled.Account)
	assert.Equal(t, keys[1], decompiled.Destination)
	assert.Equal(t, keys[2], decompiled.Owner)

	_, err = DecompileCloseAccount(compile(t, keys[2], Revoke(keys[0], keys[2])), 0)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)
}

func compile(t *testing.T, payer ed25519.PublicKey, instructions ...solana.Instruction) solana.Message {
	tx, err := solana.NewTransaction(payer, instructions...)
	require.NoError(t, err)
	return tx.Message
}
