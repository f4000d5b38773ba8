package solana

import (
	"crypto/ed25519"
	"crypto/sha256"

	"github.com/jdgcs/ed25519/edwards25519"
	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
)

const (
	maxSeeds      = 16
	maxSeedLength = 32

	pdaMarker = "ProgramDerivedAddress"
)

var (
	ErrTooManySeeds          = errors.New("too many seeds")
	ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")
	ErrNoViableBumpSeed      = errors.New("unable to find a viable program address bump seed")

	ErrInvalidPublicKey = errors.New("invalid public key")
	ErrInvalidBase58    = errors.New("invalid base58 encoding")
	ErrInvalidLength    = errors.New("invalid decoded length")
)

var (
	programHashCtor = sha256.New
)

// PublicKeyFromBase58 decodes a base58 encoded 32 byte address.
func PublicKeyFromBase58(text string) (ed25519.PublicKey, error) {
	b, err := decodeFixed(text, ed25519.PublicKeySize)
	if err != nil {
		return nil, err
	}
	return ed25519.PublicKey(b), nil
}

// BlockhashFromBase58 decodes a base58 encoded recent blockhash.
func BlockhashFromBase58(text string) (bh Blockhash, err error) {
	b, err := decodeFixed(text, len(bh))
	if err != nil {
		return bh, err
	}
	copy(bh[:], b)
	return bh, nil
}

// SignatureFromBase58 decodes a base58 encoded transaction signature.
func SignatureFromBase58(text string) (sig Signature, err error) {
	b, err := decodeFixed(text, len(sig))
	if err != nil {
		return sig, err
	}
	copy(sig[:], b)
	return sig, nil
}

// Base58 renders raw bytes (typically an address) as base58 text.
func Base58(b []byte) string {
	return base58.Encode(b)
}

func decodeFixed(text string, size int) ([]byte, error) {
	if len(text) == 0 {
		return nil, errors.Wrap(ErrInvalidBase58, "empty string")
	}

	b, err := base58.Decode(text)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidBase58, "%q: %v", text, err)
	}
	if len(b) != size {
		return nil, errors.Wrapf(ErrInvalidLength, "%q decodes to %d bytes, expected %d", text, len(b), size)
	}
	return b, nil
}

// CreateProgramAddress mirrors the implementation of the Solana SDK's CreateProgramAddress.
//
// ProgramAddresses are public keys that _do not_ lie on the ed25519 curve to ensure that
// there is no associated private key. In the event that the program and seed parameters
// result in a valid public key, ErrInvalidPublicKey is returned.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L158
func CreateProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	if err := validateSeeds(seeds, maxSeeds); err != nil {
		return nil, err
	}
	if len(program) != ed25519.PublicKeySize {
		return nil, errors.Wrapf(ErrInvalidLength, "program id is %d bytes", len(program))
	}

	h := programHashCtor()
	for _, v := range seeds {
		if _, err := h.Write(v); err != nil {
			return nil, errors.Wrap(err, "failed to hash seed")
		}
	}
	for _, v := range [][]byte{program, []byte(pdaMarker)} {
		if _, err := h.Write(v); err != nil {
			return nil, errors.Wrap(err, "failed to hash seed")
		}
	}

	var pub [32]byte
	copy(pub[:], h.Sum(nil))

	// A valid compressed Edwards point has a private key, so it must be
	// rejected. The ledger uses the same decompression rule as
	// ExtendedGroupElement.FromBytes.
	var A edwards25519.ExtendedGroupElement
	if A.FromBytes(&pub) {
		return nil, ErrInvalidPublicKey
	}

	return pub[:], nil
}

// ValidateSearchSeeds checks seeds against the limits of a bump search: at
// most 15 seeds, since the bump occupies the final slot, each at most 32
// bytes.
func ValidateSearchSeeds(seeds ...[]byte) error {
	return validateSeeds(seeds, maxSeeds-1)
}

func validateSeeds(seeds [][]byte, limit int) error {
	if len(seeds) > limit {
		return ErrTooManySeeds
	}
	for _, s := range seeds {
		if len(s) > maxSeedLength {
			return ErrMaxSeedLengthExceeded
		}
	}
	return nil
}

// FindProgramAddressAndBump mirrors the implementation of the Solana SDK's
// FindProgramAddress. It returns the address and bump seed.
//
// Bumps are tried from 255 down to 0. ErrNoViableBumpSeed is returned if every
// candidate is on the curve.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L234
func FindProgramAddressAndBump(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, uint8, error) {
	if err := ValidateSearchSeeds(seeds...); err != nil {
		return nil, 0, err
	}

	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)

	bumpSeed := []byte{0}
	withBump[len(seeds)] = bumpSeed

	for bump := 255; bump >= 0; bump-- {
		bumpSeed[0] = byte(bump)

		pub, err := CreateProgramAddress(program, withBump...)
		if err == nil {
			return pub, bumpSeed[0], nil
		}
		if err != ErrInvalidPublicKey {
			return nil, 0, err
		}
	}

	return nil, 0, ErrNoViableBumpSeed
}

// FindProgramAddress mirrors the implementation of the Solana SDK's FindProgramAddress.
// It only returns the address.
func FindProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	pub, _, err := FindProgramAddressAndBump(program, seeds...)
	return pub, err
}
