package txbuilder

import (
	"context"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/assets"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/networks"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/signer"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/txerr"
)

const (
	alice     = "thor1quyqjzstpsxsurcszyfpx9q4zct3sxg6w4ldy7"
	bob       = "thor1pc83qygjzv2p29shrqv35xcur50p7gppcsz8vv"
	stageCarl = "sthor1z5tpwxqergd3c8g7ruszzg3rysjjvfeg6eaadt"
)

type fakeLookup struct {
	mu    sync.Mutex
	calls map[networks.Mode]int
	err   error
}

func (f *fakeLookup) ModuleAddress(_ context.Context, cfg *networks.Config, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[cfg.Mode]++
	if f.err != nil {
		return "", f.err
	}
	return cfg.AddressPrefix + "1module-" + name, nil
}

func (f *fakeLookup) count(mode networks.Mode) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[mode]
}

func newTestBuilder(t *testing.T) (*Builder, *networks.Coordinator, *fakeLookup) {
	t.Helper()
	coord, err := networks.NewCoordinator(map[networks.Mode]networks.Config{
		networks.Mainnet:  {RestURL: "https://node", RPCURL: "https://rpc", AddressPrefix: "thor"},
		networks.Stagenet: {RestURL: "https://stagenode", RPCURL: "https://stagerpc", AddressPrefix: "sthor", FeeWire: "1000000"},
	}, networks.Mainnet)
	require.NoError(t, err)

	lookup := &fakeLookup{calls: map[networks.Mode]int{}}
	return NewBuilder(coord, NewModuleResolver(lookup, coord)), coord, lookup
}

func TestPrepareSendRune(t *testing.T) {
	b, _, _ := newTestBuilder(t)

	p, err := b.PrepareSend(alice, Intent{Asset: "THOR.RUNE", Amount: "0.0001", Destination: bob})
	require.NoError(t, err)

	assert.Equal(t, KindSend, p.Kind())
	assert.Equal(t, "10000", p.Coin().Amount)
	assert.Equal(t, "rune", p.Coin().Denom)
	assert.Equal(t, networks.Mainnet, p.Network())
	assert.Equal(t, signer.MsgSend{FromAddress: alice, ToAddress: bob, Amount: []signer.Coin{{Denom: "rune", Amount: "10000"}}}, p.Payload())
	assert.Equal(t, "2000000", p.Fee().Amount[0].Amount)
}

func TestPrepareSendDenoms(t *testing.T) {
	b, _, _ := newTestBuilder(t)

	cases := map[string]string{
		"rune":          "rune",
		"BTC.BTC":       "btc/btc",
		"ETH-USDC-0XA0": "ETH-USDC-0XA0",
		"btc~btc":       "BTC~BTC",
	}
	for in, denom := range cases {
		p, err := b.PrepareSend(alice, Intent{Asset: in, Amount: "1", Destination: bob})
		require.NoError(t, err, in)
		assert.Equal(t, denom, p.Coin().Denom, in)
		assert.Equal(t, "100000000", p.Coin().Amount, in)
	}
}

func TestPrepareSendValidation(t *testing.T) {
	b, coord, _ := newTestBuilder(t)

	cases := []struct {
		name   string
		intent Intent
		want   error
	}{
		{"missing asset", Intent{Amount: "1", Destination: bob}, txerr.ErrMissingAsset},
		{"unknown asset", Intent{Asset: "BTC.", Amount: "1", Destination: bob}, txerr.ErrMissingAsset},
		{"missing destination", Intent{Asset: "RUNE", Amount: "1"}, txerr.ErrMissingDestination},
		{"bad checksum", Intent{Asset: "RUNE", Amount: "1", Destination: "thor1quyqjzstpsxsurcszyfpx9q4zct3sxg6w4ldy8"}, txerr.ErrInvalidDestination},
		{"wrong network", Intent{Asset: "RUNE", Amount: "1", Destination: stageCarl}, txerr.ErrInvalidDestination},
		{"zero amount", Intent{Asset: "RUNE", Amount: "0", Destination: bob}, txerr.ErrInvalidAmount},
		{"dust", Intent{Asset: "RUNE", Amount: "0.000000009", Destination: bob}, txerr.ErrInvalidAmount},
		{"negative", Intent{Asset: "RUNE", Amount: "-1", Destination: bob}, txerr.ErrInvalidAmount},
		{"not a number", Intent{Asset: "RUNE", Amount: "abc", Destination: bob}, txerr.ErrInvalidAmount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := b.PrepareSend(alice, tc.intent)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
			assert.True(t, txerr.IsValidation(err))
		})
	}

	require.NoError(t, coord.SetNetwork(networks.Stagenet))
	_, err := b.PrepareSend(alice, Intent{Asset: "RUNE", Amount: "1", Destination: stageCarl})
	require.NoError(t, err)
}

func TestPrepareDepositZeroAmount(t *testing.T) {
	b, _, lookup := newTestBuilder(t)
	ctx := context.Background()

	p, err := b.PrepareDeposit(ctx, alice, Intent{Asset: "BTC.BTC", Amount: "0", Memo: "SWAP:THOR.RUNE:" + alice, Deposit: true})
	require.NoError(t, err)
	assert.Equal(t, KindDeposit, p.Kind())
	assert.Equal(t, "0", p.Coin().Amount)
	assert.Equal(t, "btc/btc", p.Coin().Denom)

	msg, ok := p.Payload().(signer.MsgDeposit)
	require.True(t, ok)
	assert.Equal(t, "thor1module-thorchain", msg.ModuleAddress)
	assert.Equal(t, "SWAP:THOR.RUNE:"+alice, msg.Memo)

	_, err = b.PrepareDeposit(ctx, alice, Intent{Asset: "BTC.BTC", Amount: "0", Deposit: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, txerr.ErrMissingMemo))

	_, err = b.Prepare(ctx, alice, Intent{Asset: "BTC.BTC", Amount: "1", Memo: "  ", Deposit: true})
	assert.True(t, errors.Is(err, txerr.ErrMissingMemo))

	assert.Equal(t, 1, lookup.count(networks.Mainnet))
}

func TestModuleAddressCachedUntilSwitch(t *testing.T) {
	b, coord, lookup := newTestBuilder(t)
	ctx := context.Background()
	in := Intent{Asset: "RUNE", Amount: "1", Memo: "BOND:" + alice, Deposit: true}

	for range 3 {
		_, err := b.PrepareDeposit(ctx, alice, in)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, lookup.count(networks.Mainnet))

	require.NoError(t, coord.SetNetwork(networks.Stagenet))
	p, err := b.PrepareDeposit(ctx, alice, in)
	require.NoError(t, err)
	assert.Equal(t, 1, lookup.count(networks.Stagenet))
	assert.Equal(t, "sthor1module-thorchain", p.Payload().(signer.MsgDeposit).ModuleAddress)
	assert.Equal(t, "1000000", p.Fee().Amount[0].Amount)

	require.NoError(t, coord.SetNetwork(networks.Mainnet))
	_, err = b.PrepareDeposit(ctx, alice, in)
	require.NoError(t, err)
	assert.Equal(t, 2, lookup.count(networks.Mainnet))
}

func TestModuleAddressUnresolved(t *testing.T) {
	b, _, lookup := newTestBuilder(t)
	lookup.err = errors.New("connection refused")

	_, err := b.PrepareDeposit(context.Background(), alice, Intent{Asset: "RUNE", Amount: "1", Memo: "x", Deposit: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, txerr.ErrUnresolvedModuleAddress))
}

func TestPreparedJSON(t *testing.T) {
	b, _, _ := newTestBuilder(t)
	p, err := b.PrepareSend(alice, Intent{Asset: "THOR.RUNE", Amount: "1.5", Destination: bob})
	require.NoError(t, err)

	out, err := p.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(out), `"kind":"send"`)
	assert.Contains(t, string(out), `"@type":"/types.MsgSend"`)
	assert.Contains(t, string(out), `"amount":"150000000"`)
	assert.Equal(t, assets.KindNative, p.Asset().Kind)
}
