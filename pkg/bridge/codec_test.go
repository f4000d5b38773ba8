package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/solana-bridge/pkg/solana"
	"github.com/code-payments/solana-bridge/pkg/solana/memo"
	"github.com/code-payments/solana-bridge/pkg/solana/system"
	"github.com/code-payments/solana-bridge/pkg/testutil"
)

func TestInstructionEncoding(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 3)

	ix := solana.NewInstruction(keys[0], []byte{0xde, 0xad}, solana.NewAccountMeta(keys[1], true), solana.NewReadonlyAccountMeta(keys[2], false))

	encoded := EncodeInstruction(ix)
	require.Len(t, encoded, 32+8+2*34+8+2)
	assert.EqualValues(t, keys[0], encoded[:32])
	assert.Equal(t, []byte{2, 0, 0, 0, 0, 0, 0, 0}, encoded[32:40])
	assert.EqualValues(t, keys[1], encoded[40:72])
	assert.Equal(t, []byte{1, 1}, encoded[72:74])
	assert.EqualValues(t, keys[2], encoded[74:106])
	assert.Equal(t, []byte{0, 0}, encoded[106:108])
	assert.Equal(t, []byte{2, 0, 0, 0, 0, 0, 0, 0}, encoded[108:116])
	assert.Equal(t, []byte{0xde, 0xad}, encoded[116:])

	decoded, err := DecodeInstruction(encoded)
	require.NoError(t, err)
	assert.Equal(t, ix, decoded)
}

func TestInstructionsEncoding(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 2)

	ixs := []solana.Instruction{
		system.Transfer(keys[0], keys[1], 1000),
		memo.Instruction("hello"),
	}

	decoded, err := DecodeInstructions(EncodeInstructions(ixs))
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	for i := range ixs {
		assert.EqualValues(t, ixs[i].Program, decoded[i].Program)
		assert.Equal(t, ixs[i].Data, decoded[i].Data)
		assert.Len(t, decoded[i].Accounts, len(ixs[i].Accounts))
	}

	empty, err := DecodeInstructions(EncodeInstructions(nil))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestInstructionEncoding_Malformed(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 2)
	encoded := EncodeInstruction(solana.NewInstruction(keys[0], []byte{1}, solana.NewAccountMeta(keys[1], false)))

	badFlag := append([]byte(nil), encoded...)
	badFlag[72] = 2

	hugeLen := append([]byte(nil), encoded[:32]...)
	hugeLen = append(hugeLen, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)

	for _, b := range [][]byte{
		nil,
		encoded[:31],
		encoded[:len(encoded)-1],
		append(append([]byte(nil), encoded...), 0),
		badFlag,
		hugeLen,
	} {
		_, err := DecodeInstruction(b)
		assert.True(t, IsSerializationError(err))
	}

	_, err := DecodeInstructions([]byte{1, 0, 0, 0, 0, 0, 0, 0})
	assert.True(t, IsSerializationError(err))
	_, err = DecodeInstructions([]byte{1, 2, 3})
	assert.True(t, IsSerializationError(err))
}
