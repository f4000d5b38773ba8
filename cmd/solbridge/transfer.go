package main

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/code-payments/solana-bridge/pkg/bridge"
	"github.com/code-payments/solana-bridge/pkg/solana"
	compute_budget "github.com/code-payments/solana-bridge/pkg/solana/computebudget"
	"github.com/code-payments/solana-bridge/pkg/solana/memo"
	"github.com/code-payments/solana-bridge/pkg/solana/system"
	"github.com/code-payments/solana-bridge/pkg/wallet"
)

type transferOptions struct {
	keypair          string
	to               string
	lamports         uint64
	memo             string
	computeUnitPrice uint64
	computeUnitLimit uint32
	blockhash        string
	submit           bool
	wait             bool
}

var transferOpts transferOptions

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Build and sign a lamport transfer, optionally submitting it",
	Args:  cobra.NoArgs,
	RunE:  runTransfer,
}

func init() {
	flags := transferCmd.Flags()
	flags.StringVarP(&transferOpts.keypair, "keypair", "k", "", "keypair file of the sender, who also pays fees")
	flags.StringVar(&transferOpts.to, "to", "", "recipient address")
	flags.Uint64Var(&transferOpts.lamports, "lamports", 0, "amount to transfer")
	flags.StringVar(&transferOpts.memo, "memo", "", "attach a memo")
	flags.Uint64Var(&transferOpts.computeUnitPrice, "compute-unit-price", 0, "priority fee in micro-lamports per compute unit")
	flags.Uint32Var(&transferOpts.computeUnitLimit, "compute-unit-limit", 0, "compute unit limit")
	flags.StringVar(&transferOpts.blockhash, "blockhash", "", "recent blockhash; fetched from the cluster when empty")
	flags.BoolVar(&transferOpts.submit, "submit", false, "submit the signed transaction")
	flags.BoolVar(&transferOpts.wait, "wait", false, "wait for confirmation after submitting")

	_ = transferCmd.MarkFlagRequired("keypair")
	_ = transferCmd.MarkFlagRequired("to")
}

// transferInstructions returns the compute budget, transfer and memo
// instructions, in that order.
func transferInstructions(from, to ed25519.PublicKey, opts transferOptions) ([]solana.Instruction, error) {
	var ixs []solana.Instruction

	if opts.computeUnitLimit > 0 {
		ixs = append(ixs, compute_budget.SetComputeUnitLimit(opts.computeUnitLimit))
	}
	if opts.computeUnitPrice > 0 {
		ixs = append(ixs, compute_budget.SetComputeUnitPrice(opts.computeUnitPrice))
	}

	ixs = append(ixs, system.Transfer(from, to, opts.lamports))

	if opts.memo != "" {
		if err := memo.Validate(opts.memo); err != nil {
			return nil, err
		}
		ixs = append(ixs, memo.Instruction(opts.memo))
	}
	return ixs, nil
}

func runTransfer(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	log := logrus.StandardLogger().WithField("type", "solbridge/transfer")

	sender, err := readKeypair(transferOpts.keypair)
	if err != nil {
		return err
	}
	defer sender.Zero()

	to, err := bridge.ParseAddress(transferOpts.to)
	if err != nil {
		return err
	}

	ixs, err := transferInstructions(sender.PublicKey(), to, transferOpts)
	if err != nil {
		return err
	}

	var client *bridge.RpcClient
	if transferOpts.blockhash == "" || transferOpts.submit {
		if client, err = newRpcClient(); err != nil {
			return err
		}
	}

	blockhash := transferOpts.blockhash
	if blockhash == "" {
		if blockhash, err = client.GetLatestBlockhash(ctx); err != nil {
			return err
		}
	}

	builder := bridge.NewTransactionBuilder(bridge.WithEnvConfigs())
	if err := builder.BuildWithInstructions(ixs, sender.String(), blockhash); err != nil {
		return err
	}

	secret := sender.PrivateKey()
	defer wallet.Zero(secret)
	if err := builder.Sign(secret); err != nil {
		return err
	}

	serialized, err := builder.Serialize()
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"to":           transferOpts.to,
		"lamports":     transferOpts.lamports,
		"instructions": len(ixs),
		"fee_estimate": builder.FeeEstimate(),
	}).Info("signed transfer")

	if !transferOpts.submit {
		fmt.Fprintln(out, base64.StdEncoding.EncodeToString(serialized))
		return nil
	}

	sig, err := client.SendTransaction(ctx, builder)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, sig)

	if transferOpts.wait {
		if err := client.WaitForConfirmation(ctx, sig); err != nil {
			return errors.Wrapf(err, "transaction %s not confirmed", sig)
		}
		fmt.Fprintln(out, "confirmed")
	}
	return nil
}
