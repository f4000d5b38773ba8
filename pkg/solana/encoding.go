package solana

import (
	"bytes"
	"crypto/ed25519"
	"io"

	"github.com/pkg/errors"

	"github.com/code-payments/solana-bridge/pkg/solana/shortvec"
)

var (
	ErrVersionedMessage       = errors.New("versioned messages not supported")
	ErrTrailingBytes          = errors.New("trailing bytes after transaction")
	ErrSignatureCountMismatch = errors.New("signature count does not match header")
	ErrIndexOutOfRange        = errors.New("index out of range")
	ErrInvalidHeader          = errors.New("invalid message header")
)

func (s Signature) ToBase58() string {
	return s.String()
}

// Marshal encodes the transaction in the legacy wire format.
func (t Transaction) Marshal() []byte {
	b := bytes.NewBuffer(nil)

	// Signatures
	_, _ = shortvec.EncodeLen(b, len(t.Signatures))
	for _, s := range t.Signatures {
		_, _ = b.Write(s[:])
	}

	// Message
	_, _ = b.Write(t.Message.Marshal())

	return b.Bytes()
}

// Unmarshal decodes a legacy wire format transaction. The input must be
// consumed exactly.
func (t *Transaction) Unmarshal(b []byte) error {
	r := bytes.NewReader(b)

	sigLen, err := shortvec.DecodeLen(r)
	if err != nil {
		return errors.Wrap(err, "failed to read signature length")
	}

	signatures := make([]Signature, sigLen)
	for i := 0; i < sigLen; i++ {
		if _, err = io.ReadFull(r, signatures[i][:]); err != nil {
			return errors.Wrapf(err, "failed to read signature at %d", i)
		}
	}

	var m Message
	if err := m.unmarshal(r); err != nil {
		return err
	}
	if r.Len() > 0 {
		return errors.Wrapf(ErrTrailingBytes, "%d bytes", r.Len())
	}
	if sigLen != int(m.Header.NumSignatures) {
		return errors.Wrapf(ErrSignatureCountMismatch, "%d signatures, header requires %d", sigLen, m.Header.NumSignatures)
	}

	t.Signatures = signatures
	t.Message = m
	return nil
}

// Marshal encodes the message. These are the bytes covered by signatures.
func (m Message) Marshal() []byte {
	b := bytes.NewBuffer(nil)

	// Header
	_ = b.WriteByte(m.Header.NumSignatures)
	_ = b.WriteByte(m.Header.NumReadonlySigned)
	_ = b.WriteByte(m.Header.NumReadOnly)

	// Accounts
	_, _ = shortvec.EncodeLen(b, len(m.Accounts))
	for _, a := range m.Accounts {
		_, _ = b.Write(a)
	}

	// Recent Blockhash
	_, _ = b.Write(m.RecentBlockhash[:])

	// Instructions
	_, _ = shortvec.EncodeLen(b, len(m.Instructions))
	for _, i := range m.Instructions {
		_ = b.WriteByte(i.ProgramIndex)

		// Accounts
		_, _ = shortvec.EncodeLen(b, len(i.Accounts))
		_, _ = b.Write(i.Accounts)

		// Data
		_, _ = shortvec.EncodeLen(b, len(i.Data))
		_, _ = b.Write(i.Data)
	}

	return b.Bytes()
}

// Unmarshal decodes a legacy message. The input must be consumed exactly.
func (m *Message) Unmarshal(b []byte) error {
	r := bytes.NewReader(b)

	var decoded Message
	if err := decoded.unmarshal(r); err != nil {
		return err
	}
	if r.Len() > 0 {
		return errors.Wrapf(ErrTrailingBytes, "%d bytes", r.Len())
	}

	*m = decoded
	return nil
}

func (m *Message) unmarshal(r *bytes.Reader) (err error) {
	if r.Len() == 0 {
		return errors.Wrap(io.ErrUnexpectedEOF, "missing message")
	}

	// The top bit of the first byte marks a versioned message.
	if m.Header.NumSignatures, err = r.ReadByte(); err != nil {
		return errors.Wrap(err, "failed to read num signatures")
	}
	if m.Header.NumSignatures&0x80 != 0 {
		return ErrVersionedMessage
	}
	if m.Header.NumReadonlySigned, err = r.ReadByte(); err != nil {
		return errors.Wrap(err, "failed to read num readonly signatures")
	}
	if m.Header.NumReadOnly, err = r.ReadByte(); err != nil {
		return errors.Wrap(err, "failed to read num readonly")
	}

	// Accounts
	accountLen, err := shortvec.DecodeLen(r)
	if err != nil {
		return errors.Wrap(err, "failed to read account len")
	}
	if accountLen > MaxAccounts {
		return errors.Wrapf(ErrTooManyAccounts, "%d accounts", accountLen)
	}
	m.Accounts = make([]ed25519.PublicKey, accountLen)
	for i := 0; i < accountLen; i++ {
		m.Accounts[i] = make([]byte, ed25519.PublicKeySize)
		if _, err = io.ReadFull(r, m.Accounts[i]); err != nil {
			return errors.Wrapf(err, "failed to read account at index %d", i)
		}
	}

	if int(m.Header.NumSignatures) > accountLen ||
		m.Header.NumReadonlySigned > m.Header.NumSignatures ||
		int(m.Header.NumReadOnly) > accountLen-int(m.Header.NumSignatures) {
		return errors.Wrapf(
			ErrInvalidHeader,
			"header (%d, %d, %d) with %d accounts",
			m.Header.NumSignatures,
			m.Header.NumReadonlySigned,
			m.Header.NumReadOnly,
			accountLen,
		)
	}

	// Recent block hash
	if _, err = io.ReadFull(r, m.RecentBlockhash[:]); err != nil {
		return errors.Wrap(err, "failed to read recent block hash")
	}

	// Instructions
	instructionLen, err := shortvec.DecodeLen(r)
	if err != nil {
		return errors.Wrap(err, "failed to read instruction len")
	}
	m.Instructions = make([]CompiledInstruction, instructionLen)
	for i := 0; i < instructionLen; i++ {
		var c CompiledInstruction

		// Program Index
		if c.ProgramIndex, err = r.ReadByte(); err != nil {
			return errors.Wrapf(err, "failed to read instruction[%d] program index", i)
		}
		if int(c.ProgramIndex) >= len(m.Accounts) {
			return errors.Wrapf(ErrIndexOutOfRange, "instruction[%d] program index %d", i, c.ProgramIndex)
		}

		// Account Indexes
		accountLen, err = shortvec.DecodeLen(r)
		if err != nil {
			return errors.Wrapf(err, "failed to read instruction[%d] account len", i)
		}
		c.Accounts = make([]byte, accountLen)
		if _, err = io.ReadFull(r, c.Accounts); err != nil {
			return errors.Wrapf(err, "failed to read instruction[%d] accounts", i)
		}

		for _, index := range c.Accounts {
			if int(index) >= len(m.Accounts) {
				return errors.Wrapf(ErrIndexOutOfRange, "instruction[%d] account index %d", i, index)
			}
		}

		// Data
		dataLen, err := shortvec.DecodeLen(r)
		if err != nil {
			return errors.Wrapf(err, "failed to read instruction[%d] data len", i)
		}
		c.Data = make([]byte, dataLen)
		if _, err = io.ReadFull(r, c.Data); err != nil {
			return errors.Wrapf(err, "failed to read instruction[%d] data", i)
		}

		m.Instructions[i] = c
	}

	return nil
}
