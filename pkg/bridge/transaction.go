package bridge

import (
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/solana-bridge/pkg/solana"
	"github.com/code-payments/solana-bridge/pkg/solana/system"
	"github.com/code-payments/solana-bridge/pkg/wallet"
)

// State is the lifecycle phase of a TransactionBuilder.
type State uint8

const (
	StateEmpty State = iota
	StateBuilt
	StatePartiallySigned
	StateFullySigned
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateBuilt:
		return "built"
	case StatePartiallySigned:
		return "partially_signed"
	case StateFullySigned:
		return "fully_signed"
	default:
		return "unknown"
	}
}

// TransactionBuilder compiles, signs and (de)serializes a single legacy
// transaction. Every build replaces the previous transaction. Failed calls
// leave the builder unchanged.
//
// A builder is not safe for concurrent use.
type TransactionBuilder struct {
	log  *logrus.Entry
	conf *conf

	state State
	tx    solana.Transaction
}

func NewTransactionBuilder(configProvider ConfigProvider) *TransactionBuilder {
	return &TransactionBuilder{
		log:  logrus.StandardLogger().WithField("type", "bridge/transaction_builder"),
		conf: configProvider(),
	}
}

func (b *TransactionBuilder) State() State {
	return b.state
}

// BuildTransfer builds a native transfer of lamports, paid for by from.
func (b *TransactionBuilder) BuildTransfer(from, to string, lamports uint64, blockhash string) error {
	fromKey, err := parseAddress("from address", from)
	if err != nil {
		return err
	}
	toKey, err := parseAddress("to address", to)
	if err != nil {
		return err
	}

	return b.compile(fromKey, blockhash, system.Transfer(fromKey, toKey, lamports))
}

// BuildTokenTransfer builds a token transfer, paid for by owner. An empty
// programID selects the configured default token program.
func (b *TransactionBuilder) BuildTokenTransfer(programID, source, destination, owner string, amount uint64, blockhash string) error {
	tokens := &TokenInstructions{ProgramID: programID, conf: b.conf}

	ix, err := tokens.Transfer(source, destination, owner, amount)
	if err != nil {
		return err
	}

	ownerKey, err := parseAddress("owner", owner)
	if err != nil {
		return err
	}
	return b.compile(ownerKey, blockhash, ix)
}

// BuildProgramCall builds a single instruction transaction. Accounts are
// passed to the program in the given order.
func (b *TransactionBuilder) BuildProgramCall(programID string, accounts []AccountInput, data []byte, blockhash, feePayer string) error {
	builder := NewInstructionBuilder(programID)
	builder.accounts = accounts
	builder.SetData(data)

	ix, err := builder.Build()
	if err != nil {
		return err
	}

	payer, err := parseAddress("fee payer", feePayer)
	if err != nil {
		return err
	}
	return b.compile(payer, blockhash, ix)
}

// BuildWithInstructions compiles an ordered list of instructions into one
// transaction.
func (b *TransactionBuilder) BuildWithInstructions(instructions []solana.Instruction, feePayer, blockhash string) error {
	if len(instructions) == 0 {
		return newError(InvalidInput, nil, "no instructions")
	}

	payer, err := parseAddress("fee payer", feePayer)
	if err != nil {
		return err
	}
	return b.compile(payer, blockhash, instructions...)
}

func (b *TransactionBuilder) compile(payer ed25519.PublicKey, blockhash string, instructions ...solana.Instruction) error {
	bh, err := parseBlockhash(blockhash)
	if err != nil {
		return err
	}

	for i, ix := range instructions {
		if len(ix.Program) != ed25519.PublicKeySize {
			return newError(InvalidInput, solana.ErrInvalidLength, "invalid program id in instruction %d", i)
		}
		for j, a := range ix.Accounts {
			if len(a.PublicKey) != ed25519.PublicKeySize {
				return newError(InvalidInput, solana.ErrInvalidLength, "invalid account %d in instruction %d", j, i)
			}
		}
	}

	tx, err := solana.NewTransaction(payer, instructions...)
	if err != nil {
		return newError(InvalidInput, err, "cannot compile transaction")
	}
	tx.SetBlockhash(bh)

	b.tx = tx
	b.setState(StateBuilt)

	b.log.WithFields(logrus.Fields{
		"payer":        RenderAddress(payer),
		"accounts":     len(tx.Message.Accounts),
		"instructions": len(tx.Message.Instructions),
		"signers":      len(tx.Signatures),
	}).Debug("compiled transaction")
	return nil
}

// Sign signs with a 64 byte secret key. Only the signer's own slot is
// filled.
func (b *TransactionBuilder) Sign(secret []byte) error {
	return b.SignWithKeypairs([][]byte{secret})
}

// SignWithKeypairs signs with every secret key, or with none of them if any
// is malformed or not a required signer. Signing is valid from Built or
// PartiallySigned.
func (b *TransactionBuilder) SignWithKeypairs(secrets [][]byte) error {
	if len(secrets) == 0 {
		return newError(WalletError, nil, "no keypairs provided")
	}

	keys := make([]ed25519.PrivateKey, len(secrets))
	for i, secret := range secrets {
		account, err := wallet.NewAccountFromPrivateKeyBytes(secret)
		if err != nil {
			return newError(WalletError, err, "invalid keypair %d", i)
		}
		keys[i] = account.PrivateKey()
	}
	defer func() {
		for _, k := range keys {
			wallet.Zero(k)
		}
	}()

	switch b.state {
	case StateEmpty:
		return newError(TransactionError, nil, "no transaction to sign")
	case StateFullySigned:
		return newError(TransactionError, nil, "transaction is already fully signed")
	}

	if err := b.tx.Sign(keys...); err != nil {
		return newError(TransactionError, err, "failed to sign transaction")
	}

	b.refreshState()
	return nil
}

// Serialize returns the wire encoding. Unsigned slots are all zero.
func (b *TransactionBuilder) Serialize() ([]byte, error) {
	if b.state == StateEmpty {
		return nil, newError(TransactionError, nil, "no transaction to serialize")
	}
	return b.tx.Marshal(), nil
}

// MessageBytes returns the bytes covered by signatures.
func (b *TransactionBuilder) MessageBytes() ([]byte, error) {
	if b.state == StateEmpty {
		return nil, newError(TransactionError, nil, "no transaction available")
	}
	return b.tx.Message.Marshal(), nil
}

// Deserialize replaces the builder's transaction with the decoded one. The
// state is derived from the signature slots.
func (b *TransactionBuilder) Deserialize(data []byte) error {
	var tx solana.Transaction
	if err := tx.Unmarshal(data); err != nil {
		return newError(SerializationError, err, "failed to deserialize transaction")
	}

	b.tx = tx
	b.refreshState()
	return nil
}

// Transaction returns a copy of the current transaction.
func (b *TransactionBuilder) Transaction() (solana.Transaction, error) {
	if b.state == StateEmpty {
		return solana.Transaction{}, newError(TransactionError, nil, "no transaction available")
	}

	tx := b.tx
	tx.Signatures = append([]solana.Signature(nil), b.tx.Signatures...)
	return tx, nil
}

// Signature is the base58 first signature, which identifies the transaction
// once signed by the fee payer.
func (b *TransactionBuilder) Signature() (string, error) {
	if b.state == StateEmpty || len(b.tx.Signatures) == 0 {
		return "", newError(TransactionError, nil, "no transaction available")
	}
	return b.tx.Signatures[0].String(), nil
}

func (b *TransactionBuilder) IsFullySigned() bool {
	return b.state == StateFullySigned
}

// FeeEstimate is the number of verified signature slots times the configured
// lamports per signature. It is advisory only.
func (b *TransactionBuilder) FeeEstimate() uint64 {
	return uint64(b.signedCount()) * b.conf.lamportsPerSignature.Get(context.Background())
}

func (b *TransactionBuilder) String() string {
	if b.state == StateEmpty {
		return "<empty>"
	}
	return b.tx.String()
}

// signedCount is the number of signature slots that verify against the
// message. Zero and garbage slots are not counted.
func (b *TransactionBuilder) signedCount() int {
	var signed int
	for _, ok := range b.tx.SignedSlots() {
		if ok {
			signed++
		}
	}
	return signed
}

func (b *TransactionBuilder) refreshState() {
	signed := b.signedCount()

	switch {
	case len(b.tx.Signatures) > 0 && signed == len(b.tx.Signatures):
		b.setState(StateFullySigned)
	case signed > 0:
		b.setState(StatePartiallySigned)
	default:
		b.setState(StateBuilt)
	}
}

func (b *TransactionBuilder) setState(s State) {
	if s != b.state {
		b.log.WithFields(logrus.Fields{
			"from": b.state.String(),
			"to":   s.String(),
		}).Debug("state transition")
	}
	b.state = s
}

// signedTransaction returns a copy of the transaction, requiring every
// signature slot to verify.
func (b *TransactionBuilder) signedTransaction() (solana.Transaction, error) {
	tx, err := b.Transaction()
	if err != nil {
		return tx, err
	}
	if !tx.IsFullySigned() {
		return tx, newError(TransactionError, errors.New("missing signatures"), "transaction is not fully signed")
	}
	return tx, nil
}
