package main

/*
#include <stdint.h>
#include <stdlib.h>
*/
import "C"

import (
	"unsafe"

	"github.com/code-payments/solana-bridge/pkg/bridge"
)

func setError(errorOut **C.char, err error) {
	if errorOut != nil {
		*errorOut = C.CString(errorText(err))
	}
}

// goString copies a required C string.
func goString(s *C.char, field string) (string, error) {
	if s == nil {
		return "", bridge.NewFfiError("null %s", field)
	}

	text := C.GoString(s)
	if err := validateText(field, text); err != nil {
		return "", err
	}
	return text, nil
}

// optionalString copies a C string, mapping null to "".
func optionalString(s *C.char, field string) (string, error) {
	if s == nil {
		return "", nil
	}
	return goString(s, field)
}

// goBytes copies n bytes from p. A null p is only accepted for n == 0.
func goBytes(p *C.uint8_t, n C.size_t, field string) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	if p == nil {
		return nil, bridge.NewFfiError("null %s", field)
	}
	size, err := bufferLen(field, uint64(n))
	if err != nil {
		return nil, err
	}

	b := make([]byte, size)
	copy(b, unsafe.Slice((*byte)(unsafe.Pointer(p)), size))
	return b, nil
}

// cBuffer returns a malloc'd copy of b, storing its length in lenOut.
func cBuffer(b []byte, lenOut *C.size_t) *C.uint8_t {
	size := len(b)
	if size == 0 {
		size = 1
	}

	p := C.malloc(C.size_t(size))
	copy(unsafe.Slice((*byte)(p), size), b)

	if lenOut != nil {
		*lenOut = C.size_t(len(b))
	}
	return (*C.uint8_t)(p)
}

// zeroCBuffer wipes a caller visible copy of secret material.
func zeroCBuffer(p *C.uint8_t, n int) {
	b := unsafe.Slice((*byte)(unsafe.Pointer(p)), n)
	for i := range b {
		b[i] = 0
	}
}

//export solbridge_free_string
func solbridge_free_string(s *C.char) {
	if s != nil {
		C.free(unsafe.Pointer(s))
	}
}

//export solbridge_free_buffer
func solbridge_free_buffer(p *C.uint8_t) {
	if p != nil {
		C.free(unsafe.Pointer(p))
	}
}

// solbridge_free_secret wipes then frees a buffer holding key material.
//
//export solbridge_free_secret
func solbridge_free_secret(p *C.uint8_t, n C.size_t) {
	if p != nil {
		zeroCBuffer(p, int(n))
		C.free(unsafe.Pointer(p))
	}
}
