package main

import (
	"os"

	"github.com/quantumauth-io/quantum-go-utils/log"
	"github.com/spf13/cobra"

	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/constants"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           constants.AppName,
		Short:         "THORChain transaction client",
		Long:          "Builds, signs through an external signer, broadcasts and tracks THORChain transactions.",
		Version:       Version + " (" + Commit + ", " + BuildDate + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.AddCommand(
		newServeCmd(),
		newNormalizeCmd(),
		newConvertCmd(),
		newStatusCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error("command failed", "error", err)
		os.Exit(1)
	}
}
