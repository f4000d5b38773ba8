package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/code-payments/solana-bridge/pkg/bridge"
)

var pdaCmd = &cobra.Command{
	Use:   "pda <program-id> [seed...]",
	Short: "Derive a program address",
	Long: `Derive a program address and its bump seed.

Seeds are UTF-8 text unless prefixed with "hex:" or "pubkey:", in which
case they are decoded as hex bytes or a base58 address.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seeds, err := parseSeeds(args[1:])
		if err != nil {
			return err
		}

		address, bump, err := bridge.FindProgramAddress(args[0], seeds)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", address, bump)
		return nil
	},
}

var ataCmd = &cobra.Command{
	Use:   "ata <owner> <mint>",
	Short: "Derive an associated token account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		address, err := bridge.FindAssociatedTokenAddress(args[0], args[1])
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), address)
		return nil
	},
}

func parseSeeds(args []string) ([][]byte, error) {
	seeds := make([][]byte, len(args))
	for i, arg := range args {
		switch {
		case strings.HasPrefix(arg, "hex:"):
			b, err := hex.DecodeString(strings.TrimPrefix(arg, "hex:"))
			if err != nil {
				return nil, errors.Wrapf(err, "invalid hex seed %d", i)
			}
			seeds[i] = b
		case strings.HasPrefix(arg, "pubkey:"):
			key, err := bridge.ParseAddress(strings.TrimPrefix(arg, "pubkey:"))
			if err != nil {
				return nil, errors.Wrapf(err, "invalid pubkey seed %d", i)
			}
			seeds[i] = key
		default:
			seeds[i] = []byte(arg)
		}
	}
	return seeds, nil
}
