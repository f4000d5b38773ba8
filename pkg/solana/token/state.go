package token

import (
	"crypto/ed25519"
	"encoding/binary"
)

type AccountState byte

const (
	AccountStateUninitialized AccountState = iota
	AccountStateInitialized
	AccountStateFrozen
)

// Reference: https://github.com/solana-labs/solana-program-library/blob/11b1e3eefdd4e523768d63f7c70a7aa391ea0d02/token/program/src/state.rs#L125
const AccountSize = 165

// COption tag width.
const optionSize = 4

// Account is the on-chain layout of a token account, as returned by
// getAccountInfo for accounts owned by the token program.
type Account struct {
	Mint   ed25519.PublicKey
	Owner  ed25519.PublicKey
	Amount uint64
	// If set, DelegatedAmount is the amount the delegate may transfer.
	Delegate ed25519.PublicKey
	State    AccountState
	// If set, this is a wrapped SOL account and the value is its rent-exempt reserve.
	IsNative        *uint64
	DelegatedAmount uint64
	CloseAuthority  ed25519.PublicKey
}

func (a *Account) Marshal() []byte {
	b := make([]byte, AccountSize)

	w := accountWriter{b: b}
	w.key(a.Mint)
	w.key(a.Owner)
	w.u64(a.Amount)
	w.optionalKey(a.Delegate)
	w.b[w.off] = byte(a.State)
	w.off++
	w.optionalU64(a.IsNative)
	w.u64(a.DelegatedAmount)
	w.optionalKey(a.CloseAuthority)

	return b
}

func (a *Account) Unmarshal(b []byte) bool {
	if len(b) != AccountSize {
		return false
	}

	r := accountReader{b: b}
	a.Mint = r.key()
	a.Owner = r.key()
	a.Amount = r.u64()
	a.Delegate = r.optionalKey()
	a.State = AccountState(r.b[r.off])
	r.off++
	a.IsNative = r.optionalU64()
	a.DelegatedAmount = r.u64()
	a.CloseAuthority = r.optionalKey()

	return true
}

type accountWriter struct {
	b   []byte
	off int
}

func (w *accountWriter) key(k ed25519.PublicKey) {
	copy(w.b[w.off:], k)
	w.off += ed25519.PublicKeySize
}

func (w *accountWriter) u64(v uint64) {
	binary.LittleEndian.PutUint64(w.b[w.off:], v)
	w.off += 8
}

func (w *accountWriter) optionalKey(k ed25519.PublicKey) {
	if len(k) > 0 {
		binary.LittleEndian.PutUint32(w.b[w.off:], 1)
	}
	w.off += optionSize
	w.key(k)
}

func (w *accountWriter) optionalU64(v *uint64) {
	var val uint64
	if v != nil {
		binary.LittleEndian.PutUint32(w.b[w.off:], 1)
		val = *v
	}
	w.off += optionSize
	w.u64(val)
}

type accountReader struct {
	b   []byte
	off int
}

func (r *accountReader) key() ed25519.PublicKey {
	k := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(k, r.b[r.off:])
	r.off += ed25519.PublicKeySize
	return k
}

func (r *accountReader) u64() uint64 {
	v := binary.LittleEndian.Uint64(r.b[r.off:])
	r.off += 8
	return v
}

func (r *accountReader) present() bool {
	set := binary.LittleEndian.Uint32(r.b[r.off:]) != 0
	r.off += optionSize
	return set
}

func (r *accountReader) optionalKey() ed25519.PublicKey {
	if !r.present() {
		r.off += ed25519.PublicKeySize
		return nil
	}
	return r.key()
}

func (r *accountReader) optionalU64() *uint64 {
	if !r.present() {
		r.off += 8
		return nil
	}
	v := r.u64()
	return &v
}
