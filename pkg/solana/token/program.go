package token

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/code-payments/solana-bridge/pkg/solana"
)

// ProgramKey is the address of the default token program.
//
// Current key: TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA
var ProgramKey = ed25519.PublicKey{6, 221, 246, 225, 215, 101, 161, 147, 217, 203, 225, 70, 206, 235, 121, 172, 28, 180, 133, 237, 95, 91, 55, 145, 58, 140, 245, 133, 126, 255, 0, 169}

type Command byte

const (
	// nolint:varcheck,deadcode,unused
	CommandInitializeMint Command = iota
	// nolint:varcheck,deadcode,unused
	CommandInitializeAccount
	// nolint:varcheck,deadcode,unused
	CommandInitializeMultisig
	CommandTransfer
	CommandApprove
	CommandRevoke
	// nolint:varcheck,deadcode,unused
	CommandSetAuthority
	CommandMintTo
	CommandBurn
	CommandCloseAccount

	CommandUnknown = Command(math.MaxUint8)
)

var commandNames = map[Command]string{
	CommandInitializeMint:     "InitializeMint",
	CommandInitializeAccount:  "InitializeAccount",
	CommandInitializeMultisig: "InitializeMultisig",
	CommandTransfer:           "Transfer",
	CommandApprove:            "Approve",
	CommandRevoke:             "Revoke",
	CommandSetAuthority:       "SetAuthority",
	CommandMintTo:             "MintTo",
	CommandBurn:               "Burn",
	CommandCloseAccount:       "CloseAccount",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "Unknown"
}

// Program builds instructions against a specific token program deployment.
// The zero value is not usable; package level helpers use ProgramKey.
type Program ed25519.PublicKey

var defaultProgram = Program(ProgramKey)

func GetCommand(m solana.Message, index int) (Command, error) {
	return defaultProgram.GetCommand(m, index)
}

func (p Program) GetCommand(m solana.Message, index int) (Command, error) {
	if index < 0 || index >= len(m.Instructions) {
		return CommandUnknown, errors.Errorf("instruction doesn't exist at %d", index)
	}

	i := m.Instructions[index]

	if !bytes.Equal(m.Accounts[i.ProgramIndex], p) {
		return CommandUnknown, solana.ErrIncorrectProgram
	}
	if len(i.Data) == 0 {
		return CommandUnknown, errors.New("token instruction missing data")
	}

	return Command(i.Data[0]), nil
}

func amountData(cmd Command, amount uint64) []byte {
	data := make([]byte, 1+8)
	data[0] = byte(cmd)
	binary.LittleEndian.PutUint64(data[1:], amount)
	return data
}

// Transfer moves amount base units from source to dest, authorized by owner.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/token/program/src/instruction.rs#L76-L91
func Transfer(source, dest, owner ed25519.PublicKey, amount uint64) solana.Instruction {
	return defaultProgram.Transfer(source, dest, owner, amount)
}

func (p Program) Transfer(source, dest, owner ed25519.PublicKey, amount uint64) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The source account.
	//   1. `[writable]` The destination account.
	//   2. `[signer]` The source account's owner/delegate.
	return solana.NewInstruction(
		ed25519.PublicKey(p),
		amountData(CommandTransfer, amount),
		solana.NewAccountMeta(source, false),
		solana.NewAccountMeta(dest, false),
		solana.NewReadonlyAccountMeta(owner, true),
	)
}

// Approve lets delegate transfer up to amount from source.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/token/program/src/instruction.rs#L92-L108
func Approve(source, delegate, owner ed25519.PublicKey, amount uint64) solana.Instruction {
	return defaultProgram.Approve(source, delegate, owner, amount)
}

func (p Program) Approve(source, delegate, owner ed25519.PublicKey, amount uint64) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The source account.
	//   1. `[]` The delegate.
	//   2. `[signer]` The source account owner.
	return solana.NewInstruction(
		ed25519.PublicKey(p),
		amountData(CommandApprove, amount),
		solana.NewAccountMeta(source, false),
		solana.NewReadonlyAccountMeta(delegate, false),
		solana.NewReadonlyAccountMeta(owner, true),
	)
}

// Revoke clears the delegate of source.
func Revoke(source, owner ed25519.PublicKey) solana.Instruction {
	return defaultProgram.Revoke(source, owner)
}

func (p Program) Revoke(source, owner ed25519.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		ed25519.PublicKey(p),
		[]byte{byte(CommandRevoke)},
		solana.NewAccountMeta(source, false),
		solana.NewReadonlyAccountMeta(owner, true),
	)
}

// MintTo mints amount new tokens into dest.
func MintTo(mint, dest, authority ed25519.PublicKey, amount uint64) solana.Instruction {
	return defaultProgram.MintTo(mint, dest, authority, amount)
}

func (p Program) MintTo(mint, dest, authority ed25519.PublicKey, amount uint64) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` The mint.
	//   1. `[writable]` The account to mint tokens to.
	//   2. `[signer]` The mint's minting authority.
	return solana.NewInstruction(
		ed25519.PublicKey(p),
		amountData(CommandMintTo, amount),
		solana.NewAccountMeta(mint, false),
		solana.NewAccountMeta(dest, false),
		solana.NewReadonlyAccountMeta(authority, true),
	)
}

// Burn destroys amount tokens held by account.
func Burn(account, mint, owner ed25519.PublicKey, amount uint64) solana.Instruction {
	return defaultProgram.Burn(account, mint, owner, amount)
}

func (p Program) Burn(account, mint, owner ed25519.PublicKey, amount uint64) solana.Instruction {
	return solana.NewInstruction(
		ed25519.PublicKey(p),
		amountData(CommandBurn, amount),
		solana.NewAccountMeta(account, false),
		solana.NewAccountMeta(mint, false),
		solana.NewReadonlyAccountMeta(owner, true),
	)
}

// CloseAccount closes account, transferring its lamports to dest. Non-native
// accounts may only be closed if their token amount is zero.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/token/program/src/instruction.rs#L183-L197
func CloseAccount(account, dest, owner ed25519.PublicKey) solana.Instruction {
	return defaultProgram.CloseAccount(account, dest, owner)
}

func (p Program) CloseAccount(account, dest, owner ed25519.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		ed25519.PublicKey(p),
		[]byte{byte(CommandCloseAccount)},
		solana.NewAccountMeta(account, false),
		solana.NewAccountMeta(dest, false),
		solana.NewReadonlyAccountMeta(owner, true),
	)
}

// DecompiledAmount is the shared shape of transfer, approve, mint_to and
// burn. Accounts are in instruction order.
type DecompiledAmount struct {
	Command Command
	First   ed25519.PublicKey
	Second  ed25519.PublicKey
	Owner   ed25519.PublicKey
	Amount  uint64
}

type DecompiledTransfer struct {
	Source      ed25519.PublicKey
	Destination ed25519.PublicKey
	Owner       ed25519.PublicKey
	Amount      uint64
}

func DecompileTransfer(m solana.Message, index int) (*DecompiledTransfer, error) {
	return defaultProgram.DecompileTransfer(m, index)
}

func (p Program) DecompileTransfer(m solana.Message, index int) (*DecompiledTransfer, error) {
	v, err := p.DecompileAmount(m, index, CommandTransfer)
	if err != nil {
		return nil, err
	}

	return &DecompiledTransfer{
		Source:      v.First,
		Destination: v.Second,
		Owner:       v.Owner,
		Amount:      v.Amount,
	}, nil
}

// DecompileAmount decodes any of the amount carrying commands.
func (p Program) DecompileAmount(m solana.Message, index int, cmd Command) (*DecompiledAmount, error) {
	switch cmd {
	case CommandTransfer, CommandApprove, CommandMintTo, CommandBurn:
	default:
		return nil, errors.Errorf("command %s has no amount", cmd)
	}

	if index < 0 || index >= len(m.Instructions) {
		return nil, errors.Errorf("instruction doesn't exist at %d", index)
	}

	i := m.Instructions[index]

	if !bytes.Equal(m.Accounts[i.ProgramIndex], p) {
		return nil, solana.ErrIncorrectProgram
	}
	if !bytes.HasPrefix(i.Data, []byte{byte(cmd)}) {
		return nil, solana.ErrIncorrectInstruction
	}
	// note: we do < 3 instead of != 3 in order to support multisig cases.
	if len(i.Accounts) < 3 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}
	if len(i.Data) != 9 {
		return nil, errors.Errorf("invalid instruction data size: %d", len(i.Data))
	}

	return &DecompiledAmount{
		Command: cmd,
		First:   m.Accounts[i.Accounts[0]],
		Second:  m.Accounts[i.Accounts[1]],
		Owner:   m.Accounts[i.Accounts[2]],
		Amount:  binary.LittleEndian.Uint64(i.Data[1:]),
	}, nil
}

type DecompiledCloseAccount struct {
	Account     ed25519.PublicKey
	Destination ed25519.PublicKey
	Owner       ed25519.PublicKey
}

func DecompileCloseAccount(m solana.Message, index int) (*DecompiledCloseAccount, error) {
	if index < 0 || index >= len(m.Instructions) {
		return nil, errors.Errorf("instruction doesn't exist at %d", index)
	}

	i := m.Instructions[index]

	if !bytes.Equal(m.Accounts[i.ProgramIndex], ProgramKey) {
		return nil, solana.ErrIncorrectProgram
	}
	if !bytes.Equal(i.Data, []byte{byte(CommandCloseAccount)}) {
		return nil, solana.ErrIncorrectInstruction
	}
	if len(i.Accounts) < 3 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}

	return &DecompiledCloseAccount{
		Account:     m.Accounts[i.Accounts[0]],
		Destination: m.Accounts[i.Accounts[1]],
		Owner:       m.Accounts[i.Accounts[2]],
	}, nil
}
