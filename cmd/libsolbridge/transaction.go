package main

/*
#include <stdint.h>
#include <stdlib.h>
*/
import "C"

import (
	"unsafe"

	"github.com/code-payments/solana-bridge/pkg/bridge"
	"github.com/code-payments/solana-bridge/pkg/wallet"
)

const transactionName = "transaction"

var configProvider = bridge.WithEnvConfigs()

func transactionFor(h C.uintptr_t) (*bridge.TransactionBuilder, error) {
	return lookup[*bridge.TransactionBuilder](uintptr(h), transactionName)
}

//export solbridge_transaction_create
func solbridge_transaction_create() C.uintptr_t {
	return C.uintptr_t(newHandle(bridge.NewTransactionBuilder(configProvider)))
}

//export solbridge_transaction_destroy
func solbridge_transaction_destroy(h C.uintptr_t) {
	_ = release[*bridge.TransactionBuilder](uintptr(h), transactionName)
}

//export solbridge_build_transfer
func solbridge_build_transfer(h C.uintptr_t, from, to *C.char, lamports C.uint64_t, blockhash *C.char, errorOut **C.char) C.int {
	err := func() error {
		tx, err := transactionFor(h)
		if err != nil {
			return err
		}
		fromText, err := goString(from, "from address")
		if err != nil {
			return err
		}
		toText, err := goString(to, "to address")
		if err != nil {
			return err
		}
		bh, err := goString(blockhash, "blockhash")
		if err != nil {
			return err
		}
		return tx.BuildTransfer(fromText, toText, uint64(lamports), bh)
	}()
	return intResult(err, errorOut)
}

// solbridge_build_token_transfer builds a token transfer paid for by owner.
// A null program_id selects the default token program.
//
//export solbridge_build_token_transfer
func solbridge_build_token_transfer(h C.uintptr_t, programID, source, destination, owner *C.char, amount C.uint64_t, blockhash *C.char, errorOut **C.char) C.int {
	err := func() error {
		tx, err := transactionFor(h)
		if err != nil {
			return err
		}

		program, err := optionalString(programID, "token program id")
		if err != nil {
			return err
		}
		args, err := goStrings(
			namedString{source, "source"},
			namedString{destination, "destination"},
			namedString{owner, "owner"},
			namedString{blockhash, "blockhash"},
		)
		if err != nil {
			return err
		}
		return tx.BuildTokenTransfer(program, args[0], args[1], args[2], uint64(amount), args[3])
	}()
	return intResult(err, errorOut)
}

//export solbridge_build_program_call
func solbridge_build_program_call(
	h C.uintptr_t,
	programID *C.char,
	accounts **C.char,
	isSigner *C.int,
	isWritable *C.int,
	accountsCount C.size_t,
	data *C.uint8_t,
	dataLen C.size_t,
	blockhash *C.char,
	feePayer *C.char,
	errorOut **C.char,
) C.int {
	err := func() error {
		tx, err := transactionFor(h)
		if err != nil {
			return err
		}

		args, err := goStrings(
			namedString{programID, "program id"},
			namedString{blockhash, "blockhash"},
			namedString{feePayer, "fee payer"},
		)
		if err != nil {
			return err
		}

		n := int(accountsCount)
		inputs := make([]bridge.AccountInput, n)
		if n > 0 {
			if accounts == nil || isSigner == nil || isWritable == nil {
				return bridge.NewFfiError("null account arrays")
			}

			keys := unsafe.Slice(accounts, n)
			signers := unsafe.Slice(isSigner, n)
			writables := unsafe.Slice(isWritable, n)
			for i := range inputs {
				key, err := goString(keys[i], "account")
				if err != nil {
					return err
				}
				inputs[i] = bridge.AccountInput{
					PublicKey:  key,
					IsSigner:   signers[i] != 0,
					IsWritable: writables[i] != 0,
				}
			}
		}

		payload, err := goBytes(data, dataLen, "instruction data")
		if err != nil {
			return err
		}
		return tx.BuildProgramCall(args[0], inputs, payload, args[1], args[2])
	}()
	return intResult(err, errorOut)
}

// solbridge_build_with_instructions compiles a counted instruction list, as
// produced by solbridge_encode_instruction_list, into one transaction.
//
//export solbridge_build_with_instructions
func solbridge_build_with_instructions(h C.uintptr_t, instructions *C.uint8_t, instructionsLen C.size_t, feePayer, blockhash *C.char, errorOut **C.char) C.int {
	err := func() error {
		tx, err := transactionFor(h)
		if err != nil {
			return err
		}

		encoded, err := goBytes(instructions, instructionsLen, "instructions")
		if err != nil {
			return err
		}
		ixs, err := bridge.DecodeInstructions(encoded)
		if err != nil {
			return err
		}

		args, err := goStrings(
			namedString{feePayer, "fee payer"},
			namedString{blockhash, "blockhash"},
		)
		if err != nil {
			return err
		}
		return tx.BuildWithInstructions(ixs, args[0], args[1])
	}()
	return intResult(err, errorOut)
}

//export solbridge_sign
func solbridge_sign(h C.uintptr_t, secret *C.uint8_t, secretLen C.size_t, errorOut **C.char) C.int {
	err := func() error {
		tx, err := transactionFor(h)
		if err != nil {
			return err
		}

		key, err := goBytes(secret, secretLen, "secret key")
		if err != nil {
			return err
		}
		defer wallet.Zero(key)

		return tx.Sign(key)
	}()
	return intResult(err, errorOut)
}

//export solbridge_sign_with_keypairs
func solbridge_sign_with_keypairs(h C.uintptr_t, secrets **C.uint8_t, secretLens *C.size_t, count C.size_t, errorOut **C.char) C.int {
	err := func() error {
		tx, err := transactionFor(h)
		if err != nil {
			return err
		}

		n := int(count)
		keys := make([][]byte, n)
		defer func() {
			for _, k := range keys {
				wallet.Zero(k)
			}
		}()

		if n > 0 {
			if secrets == nil || secretLens == nil {
				return bridge.NewFfiError("null keypair arrays")
			}

			ptrs := unsafe.Slice(secrets, n)
			lens := unsafe.Slice(secretLens, n)
			for i := range keys {
				if keys[i], err = goBytes(ptrs[i], lens[i], "secret key"); err != nil {
					return err
				}
			}
		}

		return tx.SignWithKeypairs(keys)
	}()
	return intResult(err, errorOut)
}

//export solbridge_serialize
func solbridge_serialize(h C.uintptr_t, lenOut *C.size_t, errorOut **C.char) *C.uint8_t {
	tx, err := transactionFor(h)
	if err != nil {
		setError(errorOut, err)
		return nil
	}

	b, err := tx.Serialize()
	if err != nil {
		setError(errorOut, err)
		return nil
	}
	return cBuffer(b, lenOut)
}

//export solbridge_message_bytes
func solbridge_message_bytes(h C.uintptr_t, lenOut *C.size_t, errorOut **C.char) *C.uint8_t {
	tx, err := transactionFor(h)
	if err != nil {
		setError(errorOut, err)
		return nil
	}

	b, err := tx.MessageBytes()
	if err != nil {
		setError(errorOut, err)
		return nil
	}
	return cBuffer(b, lenOut)
}

//export solbridge_deserialize
func solbridge_deserialize(h C.uintptr_t, data *C.uint8_t, dataLen C.size_t, errorOut **C.char) C.int {
	err := func() error {
		tx, err := transactionFor(h)
		if err != nil {
			return err
		}

		b, err := goBytes(data, dataLen, "transaction")
		if err != nil {
			return err
		}
		return tx.Deserialize(b)
	}()
	return intResult(err, errorOut)
}

//export solbridge_transaction_signature
func solbridge_transaction_signature(h C.uintptr_t, errorOut **C.char) *C.char {
	tx, err := transactionFor(h)
	if err != nil {
		setError(errorOut, err)
		return nil
	}

	sig, err := tx.Signature()
	if err != nil {
		setError(errorOut, err)
		return nil
	}
	return C.CString(sig)
}

//export solbridge_transaction_is_fully_signed
func solbridge_transaction_is_fully_signed(h C.uintptr_t, errorOut **C.char) C.int {
	tx, err := transactionFor(h)
	if err != nil {
		setError(errorOut, err)
		return -1
	}
	return C.int(boolResult(tx.IsFullySigned()))
}

// solbridge_transaction_state returns 0 (empty), 1 (built), 2 (partially
// signed) or 3 (fully signed).
//
//export solbridge_transaction_state
func solbridge_transaction_state(h C.uintptr_t, errorOut **C.char) C.int {
	tx, err := transactionFor(h)
	if err != nil {
		setError(errorOut, err)
		return -1
	}
	return C.int(tx.State())
}

//export solbridge_transaction_fee_estimate
func solbridge_transaction_fee_estimate(h C.uintptr_t, errorOut **C.char) C.uint64_t {
	tx, err := transactionFor(h)
	if err != nil {
		setError(errorOut, err)
		return 0
	}
	return C.uint64_t(tx.FeeEstimate())
}

type namedString struct {
	value *C.char
	field string
}

func goStrings(args ...namedString) ([]string, error) {
	values := make([]string, len(args))
	for i, a := range args {
		v, err := goString(a.value, a.field)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func intResult(err error, errorOut **C.char) C.int {
	if err != nil {
		setError(errorOut, err)
		return 0
	}
	return 1
}
