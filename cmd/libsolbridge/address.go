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

func goSeeds(seeds **C.uint8_t, seedLens *C.size_t, count C.size_t) ([][]byte, error) {
	n := int(count)
	if n == 0 {
		return nil, nil
	}
	if seeds == nil || seedLens == nil {
		return nil, bridge.NewFfiError("null seed arrays")
	}

	ptrs := unsafe.Slice(seeds, n)
	lens := unsafe.Slice(seedLens, n)

	out := make([][]byte, n)
	for i := range out {
		seed, err := goBytes(ptrs[i], lens[i], "seed")
		if err != nil {
			return nil, err
		}
		if seed == nil {
			seed = []byte{}
		}
		out[i] = seed
	}
	return out, nil
}

// solbridge_find_program_address stores the derived address in address_out
// and its bump in bump_out.
//
//export solbridge_find_program_address
func solbridge_find_program_address(seeds **C.uint8_t, seedLens *C.size_t, seedsCount C.size_t, programID *C.char, addressOut **C.char, bumpOut *C.uint8_t, errorOut **C.char) C.int {
	err := func() error {
		if addressOut == nil || bumpOut == nil {
			return bridge.NewFfiError("null output pointer")
		}

		parsed, err := goSeeds(seeds, seedLens, seedsCount)
		if err != nil {
			return err
		}
		program, err := goString(programID, "program id")
		if err != nil {
			return err
		}

		address, bump, err := bridge.FindProgramAddress(program, parsed)
		if err != nil {
			return err
		}

		*addressOut = C.CString(address)
		*bumpOut = C.uint8_t(bump)
		return nil
	}()
	return intResult(err, errorOut)
}

// solbridge_create_program_address derives an address from seeds that
// already include the bump.
//
//export solbridge_create_program_address
func solbridge_create_program_address(seeds **C.uint8_t, seedLens *C.size_t, seedsCount C.size_t, programID *C.char, errorOut **C.char) *C.char {
	parsed, err := goSeeds(seeds, seedLens, seedsCount)
	if err != nil {
		setError(errorOut, err)
		return nil
	}
	program, err := goString(programID, "program id")
	if err != nil {
		setError(errorOut, err)
		return nil
	}

	address, err := bridge.CreateProgramAddress(program, parsed)
	if err != nil {
		setError(errorOut, err)
		return nil
	}
	return C.CString(address)
}

//export solbridge_find_associated_token_address
func solbridge_find_associated_token_address(owner, mint *C.char, addressOut **C.char, errorOut **C.char) C.int {
	err := func() error {
		if addressOut == nil {
			return bridge.NewFfiError("null output pointer")
		}

		args, err := goStrings(
			namedString{owner, "owner"},
			namedString{mint, "mint"},
		)
		if err != nil {
			return err
		}

		address, err := bridge.FindAssociatedTokenAddress(args[0], args[1])
		if err != nil {
			return err
		}
		*addressOut = C.CString(address)
		return nil
	}()
	return intResult(err, errorOut)
}
