package bridge

import (
	"crypto/ed25519"
	"encoding/binary"
	"strings"

	"github.com/code-payments/solana-bridge/pkg/cache"
	"github.com/code-payments/solana-bridge/pkg/solana"
	"github.com/code-payments/solana-bridge/pkg/solana/token"
)

const derivedAddressCacheSize = 4096

type derivedAddress struct {
	address string
	bump    uint8
}

// Bump searches cost up to 256 hashes, so successful derivations are kept.
var derivedAddresses = cache.New[derivedAddress](derivedAddressCacheSize)

// derivationKey frames every part with its uvarint length, so distinct part
// lists never share a key.
func derivationKey(kind string, parts ...[]byte) string {
	var sb strings.Builder
	sb.WriteString(kind)

	var prefix [binary.MaxVarintLen64]byte
	for _, part := range parts {
		n := binary.PutUvarint(prefix[:], uint64(len(part)))
		sb.Write(prefix[:n])
		sb.Write(part)
	}
	return sb.String()
}

// ParseAddress parses a base58 address, failing with InvalidInput.
func ParseAddress(text string) (ed25519.PublicKey, error) {
	return parseAddress("address", text)
}

// RenderAddress renders an address as base58.
func RenderAddress(address ed25519.PublicKey) string {
	return solana.Base58(address)
}

func parseAddress(field, text string) (ed25519.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(text)
	if err != nil {
		return nil, newError(InvalidInput, err, "invalid %s %q", field, text)
	}
	return key, nil
}

func parseBlockhash(text string) (solana.Blockhash, error) {
	bh, err := solana.BlockhashFromBase58(text)
	if err != nil {
		return bh, newError(InvalidInput, err, "invalid blockhash %q", text)
	}
	return bh, nil
}

func parseSignature(text string) (solana.Signature, error) {
	sig, err := solana.SignatureFromBase58(text)
	if err != nil {
		return sig, newError(InvalidInput, err, "invalid signature %q", text)
	}
	return sig, nil
}

// FindProgramAddress derives the program address for seeds, returning it with
// its bump.
func FindProgramAddress(programID string, seeds [][]byte) (string, uint8, error) {
	program, err := parseAddress("program id", programID)
	if err != nil {
		return "", 0, err
	}

	if err := solana.ValidateSearchSeeds(seeds...); err != nil {
		return "", 0, newError(InvalidInput, err, "cannot derive program address")
	}

	key := derivationKey("pda", append([][]byte{program}, seeds...)...)
	if cached, ok := derivedAddresses.Retrieve(key); ok {
		return cached.address, cached.bump, nil
	}

	addr, bump, err := solana.FindProgramAddressAndBump(program, seeds...)
	if err != nil {
		return "", 0, newError(InvalidInput, err, "cannot derive program address")
	}

	rendered := RenderAddress(addr)
	_ = derivedAddresses.Insert(key, derivedAddress{address: rendered, bump: bump}, 1)
	return rendered, bump, nil
}

// CreateProgramAddress derives the program address for seeds without a bump
// search. The caller includes the bump as the last seed.
func CreateProgramAddress(programID string, seeds [][]byte) (string, error) {
	program, err := parseAddress("program id", programID)
	if err != nil {
		return "", err
	}

	addr, err := solana.CreateProgramAddress(program, seeds...)
	if err != nil {
		return "", newError(InvalidInput, err, "cannot create program address")
	}
	return RenderAddress(addr), nil
}

// FindAssociatedTokenAddress returns owner's associated token account for
// mint.
func FindAssociatedTokenAddress(owner, mint string) (string, error) {
	ownerKey, err := parseAddress("owner", owner)
	if err != nil {
		return "", err
	}
	mintKey, err := parseAddress("mint", mint)
	if err != nil {
		return "", err
	}

	key := derivationKey("ata", ownerKey, mintKey)
	if cached, ok := derivedAddresses.Retrieve(key); ok {
		return cached.address, nil
	}

	addr, err := token.GetAssociatedAccount(ownerKey, mintKey)
	if err != nil {
		return "", newError(InvalidInput, err, "cannot derive associated token address")
	}

	rendered := RenderAddress(addr)
	_ = derivedAddresses.Insert(key, derivedAddress{address: rendered}, 1)
	return rendered, nil
}
