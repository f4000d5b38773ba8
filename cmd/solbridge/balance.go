package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var balanceToken bool

var balanceCmd = &cobra.Command{
	Use:   "balance <address>",
	Short: "Print the lamport balance of an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newRpcClient()
		if err != nil {
			return err
		}

		var balance uint64
		if balanceToken {
			balance, err = client.GetTokenAccountBalance(cmd.Context(), args[0])
		} else {
			balance, err = client.GetBalance(cmd.Context(), args[0])
		}
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), balance)
		return nil
	},
}

func init() {
	balanceCmd.Flags().BoolVar(&balanceToken, "token", false, "treat the address as a token account and print its token balance")
}
