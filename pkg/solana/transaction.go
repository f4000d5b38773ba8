package solana

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
	"math"
	"strings"

	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
)

const (
	// MaxTransactionSize taken from: https://github.com/solana-labs/solana/blob/39b3ac6a8d29e14faa1de73d8b46d390ad41797b/sdk/src/packet.rs#L9-L13
	MaxTransactionSize = 1232

	// MaxAccounts is the largest account table a compiled instruction can
	// address with single byte indices.
	MaxAccounts = math.MaxUint8 + 1
)

var (
	ErrTooManyAccounts = errors.New("too many accounts")
	ErrUnknownSigner   = errors.New("signing account is not a required signer")
)

type Signature [ed25519.SignatureSize]byte
type Blockhash [sha256.Size]byte

func (s Signature) String() string {
	return base58.Encode(s[:])
}

func (b Blockhash) String() string {
	return base58.Encode(b[:])
}

// IsZero reports whether the signature slot is still unsigned.
func (s Signature) IsZero() bool {
	return s == Signature{}
}

type Header struct {
	NumSignatures     byte
	NumReadonlySigned byte
	NumReadOnly       byte
}

type Message struct {
	Header          Header
	Accounts        []ed25519.PublicKey
	RecentBlockhash Blockhash
	Instructions    []CompiledInstruction
}

type Transaction struct {
	Signatures []Signature
	Message    Message
}

// NewTransaction compiles the instructions into an unsigned legacy
// transaction paid for by payer.
//
// The account table is deduplicated (promoting signer and writable flags) and
// ordered as: payer, signers, writable accounts, then read-only accounts, with
// program ids trailing the plain read-only accounts. Accounts keep the order in
// which they were first seen within each of those partitions.
func NewTransaction(payer ed25519.PublicKey, instructions ...Instruction) (Transaction, error) {
	if err := validateKey(payer); err != nil {
		return Transaction{}, errors.Wrap(err, "invalid payer")
	}

	accounts := []AccountMeta{
		{
			PublicKey:  payer,
			IsSigner:   true,
			IsWritable: true,
			isPayer:    true,
		},
	}

	for i, ix := range instructions {
		if err := validateKey(ix.Program); err != nil {
			return Transaction{}, errors.Wrapf(err, "invalid program for instruction %d", i)
		}
		for j, a := range ix.Accounts {
			if err := validateKey(a.PublicKey); err != nil {
				return Transaction{}, errors.Wrapf(err, "invalid account %d for instruction %d", j, i)
			}
		}

		accounts = append(accounts, ix.Accounts...)
		accounts = append(accounts, AccountMeta{
			PublicKey: ix.Program,
			isProgram: true,
		})
	}

	accounts = filterUnique(accounts)
	if len(accounts) > MaxAccounts {
		return Transaction{}, errors.Wrapf(ErrTooManyAccounts, "%d accounts", len(accounts))
	}
	sortAccountMetas(accounts)

	var m Message
	var numSignatures int
	for _, account := range accounts {
		m.Accounts = append(m.Accounts, account.PublicKey)

		if account.IsSigner {
			numSignatures++

			if !account.IsWritable {
				m.Header.NumReadonlySigned++
			}
		} else if !account.IsWritable {
			m.Header.NumReadOnly++
		}
	}
	if numSignatures > math.MaxUint8 {
		return Transaction{}, errors.Wrapf(ErrTooManyAccounts, "%d signers", numSignatures)
	}
	m.Header.NumSignatures = byte(numSignatures)

	// Generate the compiled instruction, which uses indices instead
	// of raw account keys.
	for _, i := range instructions {
		c := CompiledInstruction{
			ProgramIndex: byte(indexOf(m.Accounts, i.Program)),
			Accounts:     make([]byte, 0, len(i.Accounts)),
			Data:         i.Data,
		}

		for _, a := range i.Accounts {
			c.Accounts = append(c.Accounts, byte(indexOf(m.Accounts, a.PublicKey)))
		}

		m.Instructions = append(m.Instructions, c)
	}

	return Transaction{
		Signatures: make([]Signature, m.Header.NumSignatures),
		Message:    m,
	}, nil
}

// Signature returns the first signature, which identifies the transaction.
func (t *Transaction) Signature() []byte {
	if len(t.Signatures) == 0 {
		return nil
	}
	return t.Signatures[0][:]
}

func (t *Transaction) String() string {
	var sb strings.Builder
	sb.WriteString("Signatures:\n")
	for i, s := range t.Signatures {
		sb.WriteString(fmt.Sprintf("  %d: %s\n", i, s.String()))
	}
	sb.WriteString("Message:\n")
	sb.WriteString("  Header:\n")
	sb.WriteString(fmt.Sprintf("    NumSignatures: %d\n", t.Message.Header.NumSignatures))
	sb.WriteString(fmt.Sprintf("    NumReadOnly: %d\n", t.Message.Header.NumReadOnly))
	sb.WriteString(fmt.Sprintf("    NumReadOnlySigned: %d\n", t.Message.Header.NumReadonlySigned))
	sb.WriteString(fmt.Sprintf("  RecentBlockhash: %s\n", t.Message.RecentBlockhash.String()))
	sb.WriteString("  Accounts:\n")
	for i, a := range t.Message.Accounts {
		sb.WriteString(fmt.Sprintf("    %d: %s\n", i, base58.Encode(a)))
	}
	sb.WriteString("  Instructions:\n")
	for i := range t.Message.Instructions {
		sb.WriteString(fmt.Sprintf("    %d:\n", i))
		sb.WriteString(fmt.Sprintf("      ProgramIndex: %d\n", t.Message.Instructions[i].ProgramIndex))
		sb.WriteString(fmt.Sprintf("      Accounts: %v\n", t.Message.Instructions[i].Accounts))
		sb.WriteString(fmt.Sprintf("      Data: %v\n", t.Message.Instructions[i].Data))
	}
	return sb.String()
}

func (t *Transaction) SetBlockhash(bh Blockhash) {
	t.Message.RecentBlockhash = bh
}

// Signers returns the accounts that are required to sign, in slot order.
func (t *Transaction) Signers() []ed25519.PublicKey {
	n := int(t.Message.Header.NumSignatures)
	if n > len(t.Message.Accounts) {
		n = len(t.Message.Accounts)
	}
	return t.Message.Accounts[:n]
}

// Sign fills the signature slot of each signer. Either every signer is
// applied or, on error, the transaction is left untouched.
func (t *Transaction) Sign(signers ...ed25519.PrivateKey) error {
	messageBytes := t.Message.Marshal()

	signatures := make([]Signature, len(t.Signatures))
	copy(signatures, t.Signatures)

	for _, s := range signers {
		if len(s) != ed25519.PrivateKeySize {
			return errors.Errorf("invalid private key length: %d", len(s))
		}

		pub := s.Public().(ed25519.PublicKey)
		index := indexOf(t.Message.Accounts, pub)
		if index < 0 {
			return errors.Wrapf(ErrUnknownSigner, "%s is not in the account list", base58.Encode(pub))
		}
		if index >= len(signatures) {
			return errors.Wrapf(ErrUnknownSigner, "%s is not in the list of signers", base58.Encode(pub))
		}

		copy(signatures[index][:], ed25519.Sign(s, messageBytes))
	}

	t.Signatures = signatures
	return nil
}

// SignedSlots reports, for each signature slot, whether it holds a signature
// that verifies against the message and the slot's account.
func (t *Transaction) SignedSlots() []bool {
	messageBytes := t.Message.Marshal()
	signers := t.Signers()

	slots := make([]bool, len(t.Signatures))
	for i, s := range t.Signatures {
		if s.IsZero() || i >= len(signers) {
			continue
		}
		slots[i] = ed25519.Verify(signers[i], messageBytes, s[:])
	}
	return slots
}

// IsFullySigned reports whether every signature slot is valid.
func (t *Transaction) IsFullySigned() bool {
	if len(t.Signatures) == 0 {
		return false
	}
	for _, signed := range t.SignedSlots() {
		if !signed {
			return false
		}
	}
	return true
}

func validateKey(key ed25519.PublicKey) error {
	if len(key) != ed25519.PublicKeySize {
		return errors.Wrapf(ErrInvalidLength, "public key is %d bytes", len(key))
	}
	return nil
}

func filterUnique(accounts []AccountMeta) []AccountMeta {
	filtered := make([]AccountMeta, 0, len(accounts))

	for i := range accounts {
		for j := range filtered {
			// If we've already seen the account before, then we should check to
			// see if we should promote any of the permissions.
			if bytes.Equal(accounts[i].PublicKey, filtered[j].PublicKey) {
				if accounts[i].IsSigner {
					filtered[j].IsSigner = true
				}
				if accounts[i].IsWritable {
					filtered[j].IsWritable = true
				}
				if accounts[i].isPayer {
					filtered[j].isPayer = true
				}
				if accounts[i].isProgram {
					filtered[j].isProgram = true
				}

				goto next
			}
		}

		filtered = append(filtered, accounts[i])
	next:
	}

	return filtered
}

func indexOf(slice []ed25519.PublicKey, item ed25519.PublicKey) int {
	for i, val := range slice {
		if bytes.Equal(val, item) {
			return i
		}
	}

	return -1
}
