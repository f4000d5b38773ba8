package bridge

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/code-payments/solana-bridge/pkg/solana"
)

// Instructions cross the C boundary in the ledger SDK's native encoding:
//
//	program(32) || u64 #accounts || { key(32) || signer(1) || writable(1) } || u64 #data || data
//
// with lists of instructions prefixed by a u64 count. Integers are little
// endian.

const maxEncodedLen = solana.MaxTransactionSize

// EncodeInstruction encodes a single instruction.
func EncodeInstruction(ix solana.Instruction) []byte {
	var buf bytes.Buffer
	writeInstruction(&buf, ix)
	return buf.Bytes()
}

// EncodeInstructions encodes a counted list of instructions.
func EncodeInstructions(ixs []solana.Instruction) []byte {
	var buf bytes.Buffer
	writeUint64(&buf, uint64(len(ixs)))
	for _, ix := range ixs {
		writeInstruction(&buf, ix)
	}
	return buf.Bytes()
}

// DecodeInstruction decodes EncodeInstruction output, failing with
// SerializationError on malformed or trailing input.
func DecodeInstruction(b []byte) (solana.Instruction, error) {
	r := bytes.NewReader(b)
	ix, err := readInstruction(r)
	if err == nil && r.Len() > 0 {
		err = errors.Errorf("%d trailing bytes", r.Len())
	}
	if err != nil {
		return solana.Instruction{}, newError(SerializationError, err, "invalid instruction encoding")
	}
	return ix, nil
}

// DecodeInstructions decodes EncodeInstructions output.
func DecodeInstructions(b []byte) ([]solana.Instruction, error) {
	r := bytes.NewReader(b)

	ixs, err := func() ([]solana.Instruction, error) {
		n, err := readLen(r, 1)
		if err != nil {
			return nil, err
		}

		ixs := make([]solana.Instruction, n)
		for i := range ixs {
			if ixs[i], err = readInstruction(r); err != nil {
				return nil, errors.Wrapf(err, "instruction %d", i)
			}
		}
		if r.Len() > 0 {
			return nil, errors.Errorf("%d trailing bytes", r.Len())
		}
		return ixs, nil
	}()
	if err != nil {
		return nil, newError(SerializationError, err, "invalid instructions encoding")
	}
	return ixs, nil
}

func writeUint64(w io.Writer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	_, _ = w.Write(b[:])
}

func writeBool(buf *bytes.Buffer, v bool) {
	if v {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
}

func writeInstruction(buf *bytes.Buffer, ix solana.Instruction) {
	buf.Write(ix.Program)
	writeUint64(buf, uint64(len(ix.Accounts)))
	for _, a := range ix.Accounts {
		buf.Write(a.PublicKey)
		writeBool(buf, a.IsSigner)
		writeBool(buf, a.IsWritable)
	}
	writeUint64(buf, uint64(len(ix.Data)))
	buf.Write(ix.Data)
}

// readLen reads a u64 length and checks that the remaining input could hold
// that many elements of at least elemSize bytes.
func readLen(r *bytes.Reader, elemSize int) (int, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, errors.Wrap(err, "failed to read length")
	}

	n := binary.LittleEndian.Uint64(b[:])
	if n > maxEncodedLen || int(n)*elemSize > r.Len() {
		return 0, errors.Errorf("length %d exceeds input", n)
	}
	return int(n), nil
}

func readKey(r *bytes.Reader) (ed25519.PublicKey, error) {
	key := make(ed25519.PublicKey, ed25519.PublicKeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, errors.Wrap(err, "failed to read key")
	}
	return key, nil
}

func readBool(r *bytes.Reader) (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, errors.Wrap(err, "failed to read flag")
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, errors.Errorf("invalid flag %d", b)
	}
}

func readInstruction(r *bytes.Reader) (ix solana.Instruction, err error) {
	if ix.Program, err = readKey(r); err != nil {
		return ix, errors.Wrap(err, "program")
	}

	n, err := readLen(r, ed25519.PublicKeySize+2)
	if err != nil {
		return ix, errors.Wrap(err, "accounts")
	}
	ix.Accounts = make([]solana.AccountMeta, n)
	for i := range ix.Accounts {
		a := &ix.Accounts[i]
		if a.PublicKey, err = readKey(r); err != nil {
			return ix, errors.Wrapf(err, "account %d", i)
		}
		if a.IsSigner, err = readBool(r); err != nil {
			return ix, errors.Wrapf(err, "account %d", i)
		}
		if a.IsWritable, err = readBool(r); err != nil {
			return ix, errors.Wrapf(err, "account %d", i)
		}
	}

	n, err = readLen(r, 1)
	if err != nil {
		return ix, errors.Wrap(err, "data")
	}
	ix.Data = make([]byte, n)
	if _, err := io.ReadFull(r, ix.Data); err != nil {
		return ix, errors.Wrap(err, "data")
	}
	return ix, nil
}
