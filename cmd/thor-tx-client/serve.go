package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/quantumauth-io/quantum-go-utils/log"
	"github.com/spf13/cobra"

	clientconfig "github.com/quantumauth-io/thor-tx-client/cmd/thor-tx-client/config"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/engine"
	clienthttp "github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/http"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/signer"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the local transaction API on a loopback address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
}

func runServe(ctx context.Context) error {
	log.Info("thor-tx-client",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	cfg, err := clientconfig.Load()
	if err != nil {
		return err
	}
	ec, err := cfg.EngineConfig()
	if err != nil {
		return err
	}
	e, err := engine.New(ec)
	if err != nil {
		return err
	}

	var conn signer.Connector
	if cfg.ClientSettings.SignerURL != "" {
		conn = signer.NewRemoteConnector(cfg.ClientSettings.SignerURL, nil)
	} else {
		log.Warn("no signer configured, broadcast endpoints will be unavailable")
	}

	router := clienthttp.NewRouter(clienthttp.NewHandler(e, conn), cfg.ClientSettings.AllowedOrigins)
	server, err := clienthttp.NewServer(cfg.ClientSettings.LocalHost, cfg.ClientSettings.Port, router)
	if err != nil {
		return err
	}

	log.Info("active network", "network", e.Network().Mode, "rest", e.Network().RestURL)
	return server.Run(ctx)
}
