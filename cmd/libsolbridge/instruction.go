package main

/*
#include <stdint.h>
#include <stdlib.h>
*/
import "C"

import (
	"unsafe"

	"github.com/code-payments/solana-bridge/pkg/bridge"
	"github.com/code-payments/solana-bridge/pkg/solana"
)

// Token instructions are returned in the encoding understood by
// solbridge_encode_instruction_list. A null program_id selects the default
// token program.

func encodedInstruction(ix solana.Instruction, err error, lenOut *C.size_t, errorOut **C.char) *C.uint8_t {
	if err != nil {
		setError(errorOut, err)
		return nil
	}
	return cBuffer(bridge.EncodeInstruction(ix), lenOut)
}

// tokenInstruction resolves the program and the named address arguments,
// then builds the instruction with them.
func tokenInstruction(programID *C.char, build func(*bridge.TokenInstructions, []string) (solana.Instruction, error), args ...namedString) (solana.Instruction, error) {
	program, err := optionalString(programID, "token program id")
	if err != nil {
		return solana.Instruction{}, err
	}
	values, err := goStrings(args...)
	if err != nil {
		return solana.Instruction{}, err
	}
	return build(bridge.NewTokenInstructions(program, configProvider), values)
}

//export solbridge_token_transfer_instruction
func solbridge_token_transfer_instruction(programID, source, destination, owner *C.char, amount C.uint64_t, lenOut *C.size_t, errorOut **C.char) *C.uint8_t {
	ix, err := tokenInstruction(programID, func(t *bridge.TokenInstructions, v []string) (solana.Instruction, error) {
		return t.Transfer(v[0], v[1], v[2], uint64(amount))
	}, namedString{source, "source"}, namedString{destination, "destination"}, namedString{owner, "owner"})
	return encodedInstruction(ix, err, lenOut, errorOut)
}

//export solbridge_token_approve_instruction
func solbridge_token_approve_instruction(programID, source, delegate, owner *C.char, amount C.uint64_t, lenOut *C.size_t, errorOut **C.char) *C.uint8_t {
	ix, err := tokenInstruction(programID, func(t *bridge.TokenInstructions, v []string) (solana.Instruction, error) {
		return t.Approve(v[0], v[1], v[2], uint64(amount))
	}, namedString{source, "source"}, namedString{delegate, "delegate"}, namedString{owner, "owner"})
	return encodedInstruction(ix, err, lenOut, errorOut)
}

//export solbridge_token_revoke_instruction
func solbridge_token_revoke_instruction(programID, source, owner *C.char, lenOut *C.size_t, errorOut **C.char) *C.uint8_t {
	ix, err := tokenInstruction(programID, func(t *bridge.TokenInstructions, v []string) (solana.Instruction, error) {
		return t.Revoke(v[0], v[1])
	}, namedString{source, "source"}, namedString{owner, "owner"})
	return encodedInstruction(ix, err, lenOut, errorOut)
}

//export solbridge_token_mint_to_instruction
func solbridge_token_mint_to_instruction(programID, mint, destination, authority *C.char, amount C.uint64_t, lenOut *C.size_t, errorOut **C.char) *C.uint8_t {
	ix, err := tokenInstruction(programID, func(t *bridge.TokenInstructions, v []string) (solana.Instruction, error) {
		return t.MintTo(v[0], v[1], v[2], uint64(amount))
	}, namedString{mint, "mint"}, namedString{destination, "destination"}, namedString{authority, "authority"})
	return encodedInstruction(ix, err, lenOut, errorOut)
}

//export solbridge_token_burn_instruction
func solbridge_token_burn_instruction(programID, account, mint, owner *C.char, amount C.uint64_t, lenOut *C.size_t, errorOut **C.char) *C.uint8_t {
	ix, err := tokenInstruction(programID, func(t *bridge.TokenInstructions, v []string) (solana.Instruction, error) {
		return t.Burn(v[0], v[1], v[2], uint64(amount))
	}, namedString{account, "account"}, namedString{mint, "mint"}, namedString{owner, "owner"})
	return encodedInstruction(ix, err, lenOut, errorOut)
}

//export solbridge_token_close_account_instruction
func solbridge_token_close_account_instruction(programID, account, destination, owner *C.char, lenOut *C.size_t, errorOut **C.char) *C.uint8_t {
	ix, err := tokenInstruction(programID, func(t *bridge.TokenInstructions, v []string) (solana.Instruction, error) {
		return t.CloseAccount(v[0], v[1], v[2])
	}, namedString{account, "account"}, namedString{destination, "destination"}, namedString{owner, "owner"})
	return encodedInstruction(ix, err, lenOut, errorOut)
}

// solbridge_build_instruction encodes an arbitrary instruction. Accounts are
// kept in the given order.
//
//export solbridge_build_instruction
func solbridge_build_instruction(programID *C.char, accounts **C.char, isSigner *C.int, isWritable *C.int, accountsCount C.size_t, data *C.uint8_t, dataLen C.size_t, lenOut *C.size_t, errorOut **C.char) *C.uint8_t {
	ix, err := func() (solana.Instruction, error) {
		program, err := goString(programID, "program id")
		if err != nil {
			return solana.Instruction{}, err
		}

		builder := bridge.NewInstructionBuilder(program)

		n := int(accountsCount)
		if n > 0 {
			if accounts == nil || isSigner == nil || isWritable == nil {
				return solana.Instruction{}, bridge.NewFfiError("null account arrays")
			}

			keys := unsafe.Slice(accounts, n)
			signers := unsafe.Slice(isSigner, n)
			writables := unsafe.Slice(isWritable, n)
			for i := 0; i < n; i++ {
				key, err := goString(keys[i], "account")
				if err != nil {
					return solana.Instruction{}, err
				}
				builder.AddAccount(key, signers[i] != 0, writables[i] != 0)
			}
		}

		payload, err := goBytes(data, dataLen, "instruction data")
		if err != nil {
			return solana.Instruction{}, err
		}
		return builder.SetData(payload).Build()
	}()
	return encodedInstruction(ix, err, lenOut, errorOut)
}

// solbridge_encode_instruction_list combines individually encoded
// instructions into the counted list taken by
// solbridge_build_with_instructions.
//
//export solbridge_encode_instruction_list
func solbridge_encode_instruction_list(instructions **C.uint8_t, instructionLens *C.size_t, count C.size_t, lenOut *C.size_t, errorOut **C.char) *C.uint8_t {
	n := int(count)
	ixs := make([]solana.Instruction, n)
	if n > 0 {
		if instructions == nil || instructionLens == nil {
			setError(errorOut, bridge.NewFfiError("null instruction arrays"))
			return nil
		}

		ptrs := unsafe.Slice(instructions, n)
		lens := unsafe.Slice(instructionLens, n)
		for i := range ixs {
			b, err := goBytes(ptrs[i], lens[i], "instruction")
			if err != nil {
				setError(errorOut, err)
				return nil
			}
			if ixs[i], err = bridge.DecodeInstruction(b); err != nil {
				setError(errorOut, err)
				return nil
			}
		}
	}
	return cBuffer(bridge.EncodeInstructions(ixs), lenOut)
}
