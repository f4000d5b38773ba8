package bridge

import (
	"context"
	"crypto/ed25519"

	"github.com/code-payments/solana-bridge/pkg/solana"
	"github.com/code-payments/solana-bridge/pkg/solana/token"
)

// AccountInput is an account reference in host form.
type AccountInput struct {
	PublicKey  string
	IsSigner   bool
	IsWritable bool
}

// InstructionBuilder assembles a single instruction. Accounts are kept in the
// order they were added; the target program's account convention is the
// caller's responsibility.
type InstructionBuilder struct {
	programID string
	accounts  []AccountInput
	data      []byte
}

func NewInstructionBuilder(programID string) *InstructionBuilder {
	return &InstructionBuilder{
		programID: programID,
	}
}

func (b *InstructionBuilder) AddAccount(publicKey string, isSigner, isWritable bool) *InstructionBuilder {
	b.accounts = append(b.accounts, AccountInput{
		PublicKey:  publicKey,
		IsSigner:   isSigner,
		IsWritable: isWritable,
	})
	return b
}

// SetData replaces the payload.
func (b *InstructionBuilder) SetData(data []byte) *InstructionBuilder {
	b.data = append([]byte(nil), data...)
	return b
}

// Build validates the program id and every account, failing with
// InvalidInput on the first bad value.
func (b *InstructionBuilder) Build() (solana.Instruction, error) {
	program, err := parseAddress("program id", b.programID)
	if err != nil {
		return solana.Instruction{}, err
	}

	accounts, err := parseAccounts(b.accounts)
	if err != nil {
		return solana.Instruction{}, err
	}

	return solana.Instruction{
		Program:  program,
		Accounts: accounts,
		Data:     append([]byte(nil), b.data...),
	}, nil
}

func parseAccounts(inputs []AccountInput) ([]solana.AccountMeta, error) {
	accounts := make([]solana.AccountMeta, len(inputs))
	for i, a := range inputs {
		key, err := solana.PublicKeyFromBase58(a.PublicKey)
		if err != nil {
			return nil, newError(InvalidInput, err, "invalid account %d %q", i, a.PublicKey)
		}

		accounts[i] = solana.AccountMeta{
			PublicKey:  key,
			IsSigner:   a.IsSigner,
			IsWritable: a.IsWritable,
		}
	}
	return accounts, nil
}

// TokenInstructions builds token program instructions from host strings.
// An empty ProgramID uses the configured default token program.
type TokenInstructions struct {
	ProgramID string

	conf *conf
}

func NewTokenInstructions(programID string, configProvider ConfigProvider) *TokenInstructions {
	return &TokenInstructions{
		ProgramID: programID,
		conf:      configProvider(),
	}
}

func (t *TokenInstructions) program() (token.Program, error) {
	programID := t.ProgramID
	if programID == "" && t.conf != nil {
		programID = t.conf.defaultTokenProgram.Get(context.Background())
	}
	if programID == "" {
		return token.Program(token.ProgramKey), nil
	}

	program, err := parseAddress("token program", programID)
	if err != nil {
		return nil, err
	}
	return token.Program(program), nil
}

// parseKeys resolves the program and each named address, in order.
func (t *TokenInstructions) parseKeys(fields []string, values ...string) (token.Program, []ed25519.PublicKey, error) {
	program, err := t.program()
	if err != nil {
		return nil, nil, err
	}

	keys := make([]ed25519.PublicKey, len(values))
	for i, v := range values {
		if keys[i], err = parseAddress(fields[i], v); err != nil {
			return nil, nil, err
		}
	}
	return program, keys, nil
}

func (t *TokenInstructions) Transfer(source, destination, owner string, amount uint64) (solana.Instruction, error) {
	p, k, err := t.parseKeys([]string{"source", "destination", "owner"}, source, destination, owner)
	if err != nil {
		return solana.Instruction{}, err
	}
	return p.Transfer(k[0], k[1], k[2], amount), nil
}

func (t *TokenInstructions) Approve(source, delegate, owner string, amount uint64) (solana.Instruction, error) {
	p, k, err := t.parseKeys([]string{"source", "delegate", "owner"}, source, delegate, owner)
	if err != nil {
		return solana.Instruction{}, err
	}
	return p.Approve(k[0], k[1], k[2], amount), nil
}

func (t *TokenInstructions) Revoke(source, owner string) (solana.Instruction, error) {
	p, k, err := t.parseKeys([]string{"source", "owner"}, source, owner)
	if err != nil {
		return solana.Instruction{}, err
	}
	return p.Revoke(k[0], k[1]), nil
}

func (t *TokenInstructions) MintTo(mint, destination, authority string, amount uint64) (solana.Instruction, error) {
	p, k, err := t.parseKeys([]string{"mint", "destination", "authority"}, mint, destination, authority)
	if err != nil {
		return solana.Instruction{}, err
	}
	return p.MintTo(k[0], k[1], k[2], amount), nil
}

func (t *TokenInstructions) Burn(account, mint, owner string, amount uint64) (solana.Instruction, error) {
	p, k, err := t.parseKeys([]string{"account", "mint", "owner"}, account, mint, owner)
	if err != nil {
		return solana.Instruction{}, err
	}
	return p.Burn(k[0], k[1], k[2], amount), nil
}

func (t *TokenInstructions) CloseAccount(account, destination, owner string) (solana.Instruction, error) {
	p, k, err := t.parseKeys([]string{"account", "destination", "owner"}, account, destination, owner)
	if err != nil {
		return solana.Instruction{}, err
	}
	return p.CloseAccount(k[0], k[1], k[2]), nil
}
