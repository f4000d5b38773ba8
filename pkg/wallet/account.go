// Package wallet wraps Solana keys as accounts that either only observe an
// address or can also sign for it.
package wallet

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"

	"filippo.io/edwards25519"
	"github.com/pkg/errors"

	"github.com/code-payments/solana-bridge/pkg/solana"
	"github.com/code-payments/solana-bridge/pkg/solana/token"
)

var (
	ErrInvalidPublicKey      = errors.New("invalid public key")
	ErrInvalidPrivateKey     = errors.New("invalid private key")
	ErrPrivateKeyUnavailable = errors.New("private key not available")
)

// Account is either a *ReadOnlyAccount or a *SigningAccount.
type Account interface {
	PublicKey() ed25519.PublicKey
	IsOnCurve() bool
	ToAssociatedTokenAccount(mint ed25519.PublicKey) (*ReadOnlyAccount, error)
	String() string

	account()
}

// Signer is an Account that holds its private key.
type Signer interface {
	Account

	PrivateKey() ed25519.PrivateKey
	Sign(message []byte) []byte
}

type ReadOnlyAccount struct {
	publicKey ed25519.PublicKey
}

type SigningAccount struct {
	ReadOnlyAccount
	privateKey ed25519.PrivateKey
}

func NewAccountFromPublicKey(publicKey ed25519.PublicKey) (*ReadOnlyAccount, error) {
	if len(publicKey) != ed25519.PublicKeySize {
		return nil, errors.Wrapf(ErrInvalidPublicKey, "length %d", len(publicKey))
	}

	return &ReadOnlyAccount{
		publicKey: append(ed25519.PublicKey(nil), publicKey...),
	}, nil
}

func NewAccountFromPublicKeyString(publicKey string) (*ReadOnlyAccount, error) {
	key, err := solana.PublicKeyFromBase58(publicKey)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidPublicKey, err.Error())
	}

	return NewAccountFromPublicKey(key)
}

// NewAccountFromPrivateKeyBytes imports a 64 byte seed || public key secret.
// The public half must be the one derived from the seed.
func NewAccountFromPrivateKeyBytes(privateKey []byte) (*SigningAccount, error) {
	if len(privateKey) != ed25519.PrivateKeySize {
		return nil, errors.Wrapf(ErrInvalidPrivateKey, "length %d", len(privateKey))
	}

	expected := ed25519.NewKeyFromSeed(privateKey[:ed25519.SeedSize])
	if !bytes.Equal(expected[ed25519.SeedSize:], privateKey[ed25519.SeedSize:]) {
		return nil, errors.Wrap(ErrInvalidPrivateKey, "private key doesn't map to public key")
	}

	return newSigningAccount(expected), nil
}

func NewAccountFromSeed(seed []byte) (*SigningAccount, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, errors.Wrapf(ErrInvalidPrivateKey, "seed length %d", len(seed))
	}

	return newSigningAccount(ed25519.NewKeyFromSeed(seed)), nil
}

func NewRandomAccount() (*SigningAccount, error) {
	_, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "error generating private key")
	}

	return newSigningAccount(privateKey), nil
}

func newSigningAccount(privateKey ed25519.PrivateKey) *SigningAccount {
	return &SigningAccount{
		ReadOnlyAccount: ReadOnlyAccount{
			publicKey: privateKey.Public().(ed25519.PublicKey),
		},
		privateKey: privateKey,
	}
}

func (a *ReadOnlyAccount) account() {}

func (a *ReadOnlyAccount) PublicKey() ed25519.PublicKey {
	return a.publicKey
}

// IsOnCurve reports whether the address is a valid curve point, i.e. one a
// private key could exist for. Program derived addresses are not.
func (a *ReadOnlyAccount) IsOnCurve() bool {
	return isOnCurve(a.publicKey)
}

func (a *ReadOnlyAccount) ToAssociatedTokenAccount(mint ed25519.PublicKey) (*ReadOnlyAccount, error) {
	ata, err := token.GetAssociatedAccount(a.publicKey, mint)
	if err != nil {
		return nil, err
	}

	return NewAccountFromPublicKey(ata)
}

func (a *ReadOnlyAccount) String() string {
	return solana.Base58(a.publicKey)
}

// PrivateKey returns a copy of the secret. Callers should Zero it once done.
func (a *SigningAccount) PrivateKey() ed25519.PrivateKey {
	return append(ed25519.PrivateKey(nil), a.privateKey...)
}

func (a *SigningAccount) Sign(message []byte) []byte {
	return ed25519.Sign(a.privateKey, message)
}

// Zero destroys the account's secret. The account can't sign afterwards.
func (a *SigningAccount) Zero() {
	Zero(a.privateKey)
	a.privateKey = nil
}

// HasPrivateKey reports whether a can sign.
func HasPrivateKey(a Account) bool {
	s, ok := a.(*SigningAccount)
	return ok && len(s.privateKey) == ed25519.PrivateKeySize
}

// Sign signs message with a, failing for watch only accounts.
func Sign(a Account, message []byte) ([]byte, error) {
	if !HasPrivateKey(a) {
		return nil, ErrPrivateKeyUnavailable
	}
	return a.(Signer).Sign(message), nil
}

// Zero overwrites b in place.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func isOnCurve(pubKey ed25519.PublicKey) bool {
	if len(pubKey) != ed25519.PublicKeySize {
		return false
	}

	_, err := new(edwards25519.Point).SetBytes(pubKey)
	return err == nil
}
