package main

import (
	"fmt"
	"math"
	"runtime/cgo"
	"unicode/utf8"

	"github.com/code-payments/solana-bridge/pkg/bridge"
)

func newHandle(v interface{}) uintptr {
	return uintptr(cgo.NewHandle(v))
}

// lookup resolves h to a T. Zero, released and foreign handles are FfiErrors.
func lookup[T any](h uintptr, name string) (value T, err error) {
	if h == 0 {
		return value, bridge.NewFfiError("null %s handle", name)
	}

	defer func() {
		if r := recover(); r != nil {
			err = bridge.NewFfiError("invalid %s handle %d", name, h)
		}
	}()

	v, ok := cgo.Handle(h).Value().(T)
	if !ok {
		return value, bridge.NewFfiError("handle %d is not of type %s", h, name)
	}
	return v, nil
}

// release deletes h if it refers to a T.
func release[T any](h uintptr, name string) error {
	if _, err := lookup[T](h, name); err != nil {
		return err
	}
	cgo.Handle(h).Delete()
	return nil
}

func validateText(field, s string) error {
	if !utf8.ValidString(s) {
		return bridge.NewFfiError("invalid UTF-8 in %s", field)
	}
	return nil
}

// maxBufferLen caps byte buffers crossing the boundary.
const maxBufferLen = math.MaxInt32

// bufferLen converts a caller supplied length, rejecting values that do not
// fit a Go int32.
func bufferLen(field string, n uint64) (int, error) {
	if n > maxBufferLen {
		return 0, bridge.NewFfiError("%s length %d exceeds %d", field, n, maxBufferLen)
	}
	return int(n), nil
}

func boolResult(v bool) int {
	if v {
		return 1
	}
	return 0
}

func errorText(err error) string {
	if bridge.KindOf(err) == bridge.KindUnknown {
		return fmt.Sprintf("%s: %v", bridge.KindUnknown, err)
	}
	return err.Error()
}
