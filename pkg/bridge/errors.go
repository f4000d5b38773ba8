package bridge

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies every error surfaced by the bridge.
type Kind uint8

const (
	KindUnknown Kind = iota
	// InvalidInput is a malformed address, blockhash, program id or seed list.
	InvalidInput
	// WalletError is malformed secret key material.
	WalletError
	// TransactionError is an operation attempted in the wrong builder state.
	TransactionError
	// SerializationError is corrupt bytes on decode.
	SerializationError
	// FfiError is produced only by the C boundary.
	FfiError
	// RpcError is a failed remote call.
	RpcError
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "InvalidInput"
	case WalletError:
		return "WalletError"
	case TransactionError:
		return "TransactionError"
	case SerializationError:
		return "SerializationError"
	case FfiError:
		return "FfiError"
	case RpcError:
		return "RpcError"
	default:
		return "Unknown"
	}
}

// Error is the closed error type returned by the bridge. Message names the
// offending field; Err, if set, is the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Err:     cause,
	}
}

// NewFfiError is used by the C boundary for null pointers, bad handles and
// invalid text.
func NewFfiError(format string, args ...interface{}) error {
	return newError(FfiError, nil, format, args...)
}

// KindOf returns the kind of err, or KindUnknown if err did not come from
// the bridge.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsInvalidInput(err error) bool       { return KindOf(err) == InvalidInput }
func IsWalletError(err error) bool        { return KindOf(err) == WalletError }
func IsTransactionError(err error) bool   { return KindOf(err) == TransactionError }
func IsSerializationError(err error) bool { return KindOf(err) == SerializationError }
func IsFfiError(err error) bool           { return KindOf(err) == FfiError }
func IsRpcError(err error) bool           { return KindOf(err) == RpcError }
