package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "solbridge",
	Short:         "Build, sign and submit Solana transactions",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		config, err := loadConfig()
		if err != nil {
			return err
		}
		configureLogger(config)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "configuration file path")
	rootCmd.PersistentFlags().String("rpc-endpoint", "", "JSON-RPC endpoint, overrides --environment")
	rootCmd.PersistentFlags().String("environment", "dev", "cluster to use when no endpoint is set: dev, test or prod")
	rootCmd.PersistentFlags().String("commitment", "", "commitment level: processed, confirmed or finalized")
	rootCmd.PersistentFlags().String("log-level", "", "log level")

	bindFlags(rootCmd)

	rootCmd.AddCommand(
		keygenCmd,
		pubkeyCmd,
		pdaCmd,
		ataCmd,
		transferCmd,
		decodeCmd,
		balanceCmd,
	)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	cobra.CheckErr(rootCmd.ExecuteContext(ctx))
}
