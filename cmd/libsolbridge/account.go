package main

/*
#include <stdint.h>
#include <stdlib.h>
*/
import "C"

import (
	"github.com/code-payments/solana-bridge/pkg/bridge"
	"github.com/code-payments/solana-bridge/pkg/wallet"
)

const accountName = "account"

func accountFor(h C.uintptr_t) (wallet.Account, error) {
	return lookup[wallet.Account](uintptr(h), accountName)
}

func accountHandle(account wallet.Account, err error, errorOut **C.char) C.uintptr_t {
	if err != nil {
		setError(errorOut, err)
		return 0
	}
	return C.uintptr_t(newHandle(account))
}

//export solbridge_account_generate
func solbridge_account_generate(errorOut **C.char) C.uintptr_t {
	account, err := bridge.GenerateAccount()
	return accountHandle(account, err, errorOut)
}

//export solbridge_account_from_pubkey
func solbridge_account_from_pubkey(pubkey *C.char, errorOut **C.char) C.uintptr_t {
	address, err := goString(pubkey, "public key")
	if err != nil {
		setError(errorOut, err)
		return 0
	}

	account, err := bridge.WatchAccount(address)
	return accountHandle(account, err, errorOut)
}

//export solbridge_account_from_private_key
func solbridge_account_from_private_key(secret *C.uint8_t, secretLen C.size_t, errorOut **C.char) C.uintptr_t {
	key, err := goBytes(secret, secretLen, "secret key")
	if err != nil {
		setError(errorOut, err)
		return 0
	}
	defer wallet.Zero(key)

	account, err := bridge.ImportAccount(key)
	return accountHandle(account, err, errorOut)
}

// solbridge_account_from_mnemonic derives an account from a BIP-39
// mnemonic. Null passphrase and derivation_path select "" and the default
// path.
//
//export solbridge_account_from_mnemonic
func solbridge_account_from_mnemonic(mnemonic, passphrase, derivationPath *C.char, errorOut **C.char) C.uintptr_t {
	words, err := goString(mnemonic, "mnemonic")
	if err != nil {
		setError(errorOut, err)
		return 0
	}
	pass, err := optionalString(passphrase, "passphrase")
	if err != nil {
		setError(errorOut, err)
		return 0
	}
	path, err := optionalString(derivationPath, "derivation path")
	if err != nil {
		setError(errorOut, err)
		return 0
	}

	account, err := bridge.AccountFromMnemonic(words, pass, path)
	return accountHandle(account, err, errorOut)
}

//export solbridge_account_destroy
func solbridge_account_destroy(h C.uintptr_t) {
	account, err := accountFor(h)
	if err != nil {
		return
	}
	if signer, ok := account.(*wallet.SigningAccount); ok {
		signer.Zero()
	}
	_ = release[wallet.Account](uintptr(h), accountName)
}

//export solbridge_account_get_pubkey
func solbridge_account_get_pubkey(h C.uintptr_t, errorOut **C.char) *C.char {
	account, err := accountFor(h)
	if err != nil {
		setError(errorOut, err)
		return nil
	}
	return C.CString(account.String())
}

//export solbridge_account_has_private_key
func solbridge_account_has_private_key(h C.uintptr_t, errorOut **C.char) C.int {
	account, err := accountFor(h)
	if err != nil {
		setError(errorOut, err)
		return -1
	}
	return C.int(boolResult(wallet.HasPrivateKey(account)))
}

// solbridge_account_get_private_key returns a copy of the 64 byte secret.
// Release it with solbridge_free_secret.
//
//export solbridge_account_get_private_key
func solbridge_account_get_private_key(h C.uintptr_t, lenOut *C.size_t, errorOut **C.char) *C.uint8_t {
	account, err := accountFor(h)
	if err != nil {
		setError(errorOut, err)
		return nil
	}

	secret, err := bridge.ExportPrivateKey(account)
	if err != nil {
		setError(errorOut, err)
		return nil
	}
	defer wallet.Zero(secret)

	return cBuffer(secret, lenOut)
}

//export solbridge_account_associated_token_address
func solbridge_account_associated_token_address(h C.uintptr_t, mint *C.char, errorOut **C.char) *C.char {
	account, err := accountFor(h)
	if err != nil {
		setError(errorOut, err)
		return nil
	}
	mintText, err := goString(mint, "mint")
	if err != nil {
		setError(errorOut, err)
		return nil
	}

	address, err := bridge.FindAssociatedTokenAddress(account.String(), mintText)
	if err != nil {
		setError(errorOut, err)
		return nil
	}
	return C.CString(address)
}
