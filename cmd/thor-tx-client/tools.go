package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	clientconfig "github.com/quantumauth-io/thor-tx-client/cmd/thor-tx-client/config"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/assets"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/engine"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/networks"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/units"
)

func newNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <asset>",
		Short: "Print the canonical form of an asset identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), assets.Normalize(args[0]))
		},
	}
}

type convertFlags struct {
	toWire    bool
	toDisplay bool
}

func newConvertCmd() *cobra.Command {
	var flags convertFlags

	cmd := &cobra.Command{
		Use:   "convert <amount>",
		Short: "Convert an amount between display and wire units",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch {
			case flags.toWire && !flags.toDisplay:
				w, err := units.ToWire(units.DisplayAmount(args[0]))
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, w)
				return err
			case flags.toDisplay && !flags.toWire:
				d, err := units.ToDisplay(units.WireAmount(args[0]))
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, d)
				return err
			}
			return errors.New("exactly one of --to-wire or --to-display is required")
		},
	}

	cmd.Flags().BoolVar(&flags.toWire, "to-wire", false, "Convert a display amount to wire units.")
	cmd.Flags().BoolVar(&flags.toDisplay, "to-display", false, "Convert a wire amount to display units.")
	return cmd
}

type statusFlags struct {
	poll     bool
	attempts int
	interval time.Duration
	network  string
}

func newStatusCmd() *cobra.Command {
	var flags statusFlags

	cmd := &cobra.Command{
		Use:   "status <hash>",
		Short: "Show the settlement stages of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			return runStatus(cmd.Context(), cmd.OutOrStdout(), e, args[0], flags)
		},
	}

	cmd.Flags().BoolVar(&flags.poll, "poll", false, "Poll until the transaction is done or attempts run out.")
	cmd.Flags().IntVar(&flags.attempts, "attempts", 0, "Maximum poll attempts (0 uses the configured default).")
	cmd.Flags().DurationVar(&flags.interval, "interval", 0, "Delay between poll attempts (0 uses the configured default).")
	cmd.Flags().StringVar(&flags.network, "network", "", "Network to query (mainnet or stagenet).")
	return cmd
}

func runStatus(ctx context.Context, out io.Writer, e *engine.Engine, hash string, flags statusFlags) error {
	if flags.network != "" {
		mode, err := networks.ParseMode(flags.network)
		if err != nil {
			return err
		}
		if err := e.SetNetwork(mode); err != nil {
			return err
		}
	}

	if !flags.poll {
		s, err := e.GetTransactionSummary(ctx, hash)
		if err != nil {
			return err
		}
		return printJSON(out, s)
	}

	s, err := e.PollTransactionStatus(ctx, hash, flags.attempts, flags.interval)
	if err != nil {
		return err
	}
	return printJSON(out, s)
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
