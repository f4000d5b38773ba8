package main

/*
#include <stdint.h>
#include <stdlib.h>
*/
import "C"

import (
	"context"

	"github.com/code-payments/solana-bridge/pkg/bridge"
)

const rpcClientName = "rpc client"

func rpcClientFor(h C.uintptr_t) (*bridge.RpcClient, error) {
	return lookup[*bridge.RpcClient](uintptr(h), rpcClientName)
}

// rpcString runs a string valued call against the client behind h, taking
// one required string argument.
func rpcString(h C.uintptr_t, arg *C.char, field string, errorOut **C.char, call func(*bridge.RpcClient, string) (string, error)) *C.char {
	client, err := rpcClientFor(h)
	if err != nil {
		setError(errorOut, err)
		return nil
	}
	text, err := goString(arg, field)
	if err != nil {
		setError(errorOut, err)
		return nil
	}

	result, err := call(client, text)
	if err != nil {
		setError(errorOut, err)
		return nil
	}
	return C.CString(result)
}

// solbridge_rpc_client_create connects to url. A null or empty commitment
// selects finalized.
//
//export solbridge_rpc_client_create
func solbridge_rpc_client_create(url, commitment *C.char, errorOut **C.char) C.uintptr_t {
	endpoint, err := goString(url, "url")
	if err != nil {
		setError(errorOut, err)
		return 0
	}
	level, err := optionalString(commitment, "commitment")
	if err != nil {
		setError(errorOut, err)
		return 0
	}

	client, err := bridge.NewRpcClient(endpoint, level, configProvider)
	if err != nil {
		setError(errorOut, err)
		return 0
	}
	return C.uintptr_t(newHandle(client))
}

//export solbridge_rpc_client_destroy
func solbridge_rpc_client_destroy(h C.uintptr_t) {
	_ = release[*bridge.RpcClient](uintptr(h), rpcClientName)
}

//export solbridge_get_balance
func solbridge_get_balance(h C.uintptr_t, pubkey *C.char, errorOut **C.char) C.uint64_t {
	client, err := rpcClientFor(h)
	if err != nil {
		setError(errorOut, err)
		return 0
	}
	address, err := goString(pubkey, "public key")
	if err != nil {
		setError(errorOut, err)
		return 0
	}

	balance, err := client.GetBalance(context.Background(), address)
	if err != nil {
		setError(errorOut, err)
		return 0
	}
	return C.uint64_t(balance)
}

//export solbridge_get_token_account_balance
func solbridge_get_token_account_balance(h C.uintptr_t, tokenAccount *C.char, errorOut **C.char) C.uint64_t {
	client, err := rpcClientFor(h)
	if err != nil {
		setError(errorOut, err)
		return 0
	}
	address, err := goString(tokenAccount, "token account")
	if err != nil {
		setError(errorOut, err)
		return 0
	}

	balance, err := client.GetTokenAccountBalance(context.Background(), address)
	if err != nil {
		setError(errorOut, err)
		return 0
	}
	return C.uint64_t(balance)
}

//export solbridge_get_latest_blockhash
func solbridge_get_latest_blockhash(h C.uintptr_t, errorOut **C.char) *C.char {
	client, err := rpcClientFor(h)
	if err != nil {
		setError(errorOut, err)
		return nil
	}

	bh, err := client.GetLatestBlockhash(context.Background())
	if err != nil {
		setError(errorOut, err)
		return nil
	}
	return C.CString(bh)
}

//export solbridge_send_transaction
func solbridge_send_transaction(h, txHandle C.uintptr_t, errorOut **C.char) *C.char {
	client, err := rpcClientFor(h)
	if err != nil {
		setError(errorOut, err)
		return nil
	}
	tx, err := transactionFor(txHandle)
	if err != nil {
		setError(errorOut, err)
		return nil
	}

	sig, err := client.SendTransaction(context.Background(), tx)
	if err != nil {
		setError(errorOut, err)
		return nil
	}
	return C.CString(sig)
}

//export solbridge_simulate_transaction
func solbridge_simulate_transaction(h, txHandle C.uintptr_t, errorOut **C.char) *C.char {
	client, err := rpcClientFor(h)
	if err != nil {
		setError(errorOut, err)
		return nil
	}
	tx, err := transactionFor(txHandle)
	if err != nil {
		setError(errorOut, err)
		return nil
	}

	result, err := client.SimulateTransaction(context.Background(), tx)
	if err != nil {
		setError(errorOut, err)
		return nil
	}
	return C.CString(result)
}

//export solbridge_get_account_info
func solbridge_get_account_info(h C.uintptr_t, pubkey *C.char, errorOut **C.char) *C.char {
	return rpcString(h, pubkey, "public key", errorOut, func(c *bridge.RpcClient, address string) (string, error) {
		return c.GetAccountInfo(context.Background(), address)
	})
}

//export solbridge_get_program_accounts
func solbridge_get_program_accounts(h C.uintptr_t, programID *C.char, errorOut **C.char) *C.char {
	return rpcString(h, programID, "program id", errorOut, func(c *bridge.RpcClient, program string) (string, error) {
		return c.GetProgramAccounts(context.Background(), program)
	})
}

//export solbridge_get_transaction_status
func solbridge_get_transaction_status(h C.uintptr_t, signature *C.char, errorOut **C.char) *C.char {
	return rpcString(h, signature, "signature", errorOut, func(c *bridge.RpcClient, sig string) (string, error) {
		return c.GetTransactionStatus(context.Background(), sig)
	})
}

//export solbridge_get_account_data
func solbridge_get_account_data(h C.uintptr_t, pubkey *C.char, lenOut *C.size_t, errorOut **C.char) *C.uint8_t {
	client, err := rpcClientFor(h)
	if err != nil {
		setError(errorOut, err)
		return nil
	}
	address, err := goString(pubkey, "public key")
	if err != nil {
		setError(errorOut, err)
		return nil
	}

	data, err := client.GetAccountData(context.Background(), address)
	if err != nil {
		setError(errorOut, err)
		return nil
	}
	return cBuffer(data, lenOut)
}

//export solbridge_confirm_transaction
func solbridge_confirm_transaction(h C.uintptr_t, signature *C.char, errorOut **C.char) C.int {
	client, err := rpcClientFor(h)
	if err != nil {
		setError(errorOut, err)
		return -1
	}
	sig, err := goString(signature, "signature")
	if err != nil {
		setError(errorOut, err)
		return -1
	}

	confirmed, err := client.ConfirmTransaction(context.Background(), sig)
	if err != nil {
		setError(errorOut, err)
		return -1
	}
	return C.int(boolResult(confirmed))
}

//export solbridge_wait_for_confirmation
func solbridge_wait_for_confirmation(h C.uintptr_t, signature *C.char, errorOut **C.char) C.int {
	client, err := rpcClientFor(h)
	if err != nil {
		setError(errorOut, err)
		return 0
	}
	sig, err := goString(signature, "signature")
	if err != nil {
		setError(errorOut, err)
		return 0
	}

	return intResult(client.WaitForConfirmation(context.Background(), sig), errorOut)
}
