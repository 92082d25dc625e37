// Package txbuilder turns a user intent into a message ready for signing.
package txbuilder

import (
	"context"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/cockroachdb/errors"

	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/assets"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/constants"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/networks"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/signer"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/txerr"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/units"
)

type Builder struct {
	coord   *networks.Coordinator
	modules *ModuleResolver
}

func NewBuilder(coord *networks.Coordinator, modules *ModuleResolver) *Builder {
	return &Builder{coord: coord, modules: modules}
}

// Prepare dispatches on the intent's deposit flag against the active network.
func (b *Builder) Prepare(ctx context.Context, from string, in Intent) (*Prepared, error) {
	return b.PrepareFor(ctx, b.coord.Active(), from, in)
}

// PrepareFor builds the intent against one network snapshot. Every network-dependent
// field of the result comes from cfg.
func (b *Builder) PrepareFor(ctx context.Context, cfg *networks.Config, from string, in Intent) (*Prepared, error) {
	if in.Deposit {
		return b.prepareDeposit(ctx, cfg, from, in)
	}
	return b.prepareSend(cfg, from, in)
}

// PrepareSend builds a peer-to-peer transfer. The destination must be an address on the
// active network and the amount must be at least one wire unit.
func (b *Builder) PrepareSend(from string, in Intent) (*Prepared, error) {
	return b.prepareSend(b.coord.Active(), from, in)
}

func (b *Builder) prepareSend(cfg *networks.Config, from string, in Intent) (*Prepared, error) {
	asset, err := resolveAsset(in.Asset)
	if err != nil {
		return nil, err
	}

	dest := strings.TrimSpace(in.Destination)
	if dest == "" {
		return nil, txerr.ErrMissingDestination
	}
	if err := validateAddress(dest, cfg.AddressPrefix); err != nil {
		return nil, err
	}

	wire, err := units.ToWire(in.Amount)
	if err != nil {
		return nil, err
	}
	if wire.IsZero() {
		return nil, errors.Wrapf(txerr.ErrInvalidAmount, "amount %q is below one wire unit", in.Amount.String())
	}

	coin := signer.Coin{Denom: asset.Denom(), Amount: wire.String()}
	return &Prepared{
		kind:    KindSend,
		from:    from,
		msg:     signer.MsgSend{FromAddress: from, ToAddress: dest, Amount: []signer.Coin{coin}},
		coin:    coin,
		asset:   asset,
		memo:    in.Memo,
		fee:     feeFor(cfg),
		network: cfg,
	}, nil
}

// PrepareDeposit builds a module-directed deposit. The memo is mandatory and a zero amount
// is allowed for registration-style calls.
func (b *Builder) PrepareDeposit(ctx context.Context, from string, in Intent) (*Prepared, error) {
	return b.prepareDeposit(ctx, b.coord.Active(), from, in)
}

func (b *Builder) prepareDeposit(ctx context.Context, cfg *networks.Config, from string, in Intent) (*Prepared, error) {
	asset, err := resolveAsset(in.Asset)
	if err != nil {
		return nil, err
	}

	memo := strings.TrimSpace(in.Memo)
	if memo == "" {
		return nil, txerr.ErrMissingMemo
	}

	wire, err := units.ToWire(in.Amount)
	if err != nil {
		return nil, err
	}

	module, err := b.modules.Resolve(ctx, cfg)
	if err != nil {
		return nil, err
	}

	coin := signer.Coin{Denom: asset.Denom(), Amount: wire.String()}
	return &Prepared{
		kind: KindDeposit,
		from: from,
		msg: signer.MsgDeposit{
			Signer:        from,
			ModuleAddress: module,
			Coins:         []signer.Coin{coin},
			Memo:          memo,
		},
		coin:    coin,
		asset:   asset,
		memo:    memo,
		fee:     feeFor(cfg),
		network: cfg,
	}, nil
}

func feeFor(cfg *networks.Config) signer.Fee {
	return signer.Fee{
		Amount: []signer.Coin{{Denom: constants.HomeDenom, Amount: cfg.FeeWire}},
		Gas:    cfg.DefaultGas,
	}
}

func resolveAsset(raw string) (assets.Asset, error) {
	if strings.TrimSpace(raw) == "" {
		return assets.Asset{}, txerr.ErrMissingAsset
	}
	asset := assets.Normalize(raw)
	if asset.IsUnknown() {
		return assets.Asset{}, errors.Wrapf(txerr.ErrMissingAsset, "unrecognized asset %q", raw)
	}
	return asset, nil
}

func validateAddress(addr, prefix string) error {
	hrp, _, err := bech32.Decode(addr)
	if err != nil {
		return errors.Wrapf(txerr.ErrInvalidDestination, "%q: %v", addr, err)
	}
	if hrp != prefix {
		return errors.Wrapf(txerr.ErrInvalidDestination, "%q is not a %s address", addr, prefix)
	}
	return nil
}
