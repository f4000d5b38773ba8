package main

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/code-payments/solana-bridge/pkg/bridge"
	"github.com/code-payments/solana-bridge/pkg/solana"
	compute_budget "github.com/code-payments/solana-bridge/pkg/solana/computebudget"
	"github.com/code-payments/solana-bridge/pkg/solana/memo"
	"github.com/code-payments/solana-bridge/pkg/solana/system"
	"github.com/code-payments/solana-bridge/pkg/solana/token"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <base64-transaction>",
	Short: "Describe a serialized transaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(args[0]))
		if err != nil {
			return err
		}

		builder := bridge.NewTransactionBuilder(bridge.WithEnvConfigs())
		if err := builder.Deserialize(raw); err != nil {
			return err
		}

		tx, err := builder.Transaction()
		if err != nil {
			return err
		}

		describeTransaction(cmd.OutOrStdout(), builder.State(), tx)
		return nil
	},
}

func describeTransaction(w io.Writer, state bridge.State, tx solana.Transaction) {
	m := tx.Message

	fmt.Fprintf(w, "state: %s\n", state)
	fmt.Fprintf(w, "blockhash: %s\n", m.RecentBlockhash)
	fmt.Fprintf(w, "signatures:\n")
	signers := tx.Signers()
	for i, sig := range tx.Signatures {
		text := sig.String()
		if sig.IsZero() {
			text = "<unsigned>"
		}
		fmt.Fprintf(w, "  %s: %s\n", solana.Base58(signers[i]), text)
	}

	fmt.Fprintf(w, "instructions:\n")
	for i := range m.Instructions {
		fmt.Fprintf(w, "  %d: %s\n", i, describeInstruction(m, i))
	}
}

func describeInstruction(m solana.Message, index int) string {
	ix := m.Instructions[index]
	program := m.Accounts[ix.ProgramIndex]

	switch {
	case bytes.Equal(program, system.ProgramKey[:]):
		if t, err := system.DecompileTransfer(m, index); err == nil {
			return fmt.Sprintf("system transfer %d lamports %s -> %s", t.Lamports, solana.Base58(t.From), solana.Base58(t.To))
		}
		if c, err := system.DecompileCreateAccount(m, index); err == nil {
			return fmt.Sprintf("system create account %s (%d bytes, %d lamports, owner %s)", solana.Base58(c.Address), c.Size, c.Lamports, solana.Base58(c.Owner))
		}
	case compute_budget.IsComputeBudgetInstruction(m, index):
		if limit, err := compute_budget.ParseSetComputeUnitLimitIxnData(ix.Data); err == nil {
			return fmt.Sprintf("compute unit limit %d", limit)
		}
		if price, err := compute_budget.ParseSetComputeUnitPriceIxnData(ix.Data); err == nil {
			return fmt.Sprintf("compute unit price %d micro-lamports", price)
		}
	case bytes.Equal(program, memo.ProgramKey):
		if d, err := memo.DecompileMemo(m, index); err == nil {
			return fmt.Sprintf("memo %q", d.Data)
		}
	case bytes.Equal(program, token.ProgramKey):
		return describeTokenInstruction(m, index)
	case bytes.Equal(program, token.AssociatedTokenAccountProgramKey):
		if c, err := token.DecompileCreateAssociatedAccount(m, index); err == nil {
			return fmt.Sprintf("create associated token account %s (owner %s, mint %s, idempotent %t)", solana.Base58(c.Address), solana.Base58(c.Owner), solana.Base58(c.Mint), c.Idempotent)
		}
	}

	return fmt.Sprintf("program %s, %d accounts, %d bytes of data", solana.Base58(program), len(ix.Accounts), len(ix.Data))
}

func describeTokenInstruction(m solana.Message, index int) string {
	cmd, err := token.GetCommand(m, index)
	if err != nil {
		return fmt.Sprintf("token: %v", err)
	}

	switch cmd {
	case token.CommandTransfer, token.CommandApprove, token.CommandMintTo, token.CommandBurn:
		if d, err := token.Program(token.ProgramKey).DecompileAmount(m, index, cmd); err == nil {
			return fmt.Sprintf("token %s %d: %s, %s (authority %s)", cmd, d.Amount, solana.Base58(d.First), solana.Base58(d.Second), solana.Base58(d.Owner))
		}
	case token.CommandCloseAccount:
		if d, err := token.DecompileCloseAccount(m, index); err == nil {
			return fmt.Sprintf("token %s %s -> %s (owner %s)", cmd, solana.Base58(d.Account), solana.Base58(d.Destination), solana.Base58(d.Owner))
		}
	}
	return fmt.Sprintf("token %s", cmd)
}
