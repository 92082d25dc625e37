// Package engine is the method surface the presentation layer calls. It wires the network
// coordinator, builder, broadcaster and status tracker over one active network.
package engine

import (
	"context"
	"net/http"
	"time"

	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/assets"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/broadcast"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/constants"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/metrics"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/midgard"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/networks"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/signer"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/status"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/thornode"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/txbuilder"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/units"
)

type Config struct {
	Networks       map[networks.Mode]networks.Config
	DefaultNetwork networks.Mode

	PollAttempts       int
	PollInterval       time.Duration
	SequenceRetryDelay time.Duration

	// HTTPClient is used for node and indexer calls. Nil means a client with the default timeout.
	HTTPClient *http.Client

	broadcastSleep broadcast.SleepFunc
	pollSleep      status.SleepFunc
}

type Engine struct {
	coord       *networks.Coordinator
	node        *thornode.Client
	indexer     *midgard.Client
	chainIDs    *thornode.ChainIDResolver
	builder     *txbuilder.Builder
	broadcaster *broadcast.Broadcaster
	tracker     *status.Tracker
	metrics     *metrics.Recorder
}

func New(cfg Config) (*Engine, error) {
	coord, err := networks.NewCoordinator(cfg.Networks, cfg.DefaultNetwork)
	if err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.HTTPTimeout}
	}

	rec := metrics.NewRecorder()
	coord.Subscribe("metrics", func(_, next *networks.Config) {
		rec.NetworkSwitch(string(next.Mode))
	})

	node := thornode.NewClient(httpClient)
	indexer := midgard.NewClient(httpClient)
	chainIDs := thornode.NewChainIDResolver(node, coord)
	modules := txbuilder.NewModuleResolver(node, coord)

	retryDelay := constants.SequenceRetryDelay
	if cfg.SequenceRetryDelay > 0 {
		retryDelay = cfg.SequenceRetryDelay
	}

	return &Engine{
		coord:    coord,
		node:     node,
		indexer:  indexer,
		chainIDs: chainIDs,
		builder:  txbuilder.NewBuilder(coord, modules),
		broadcaster: broadcast.NewBroadcaster(coord, chainIDs,
			broadcast.WithRetryDelay(retryDelay),
			broadcast.WithAccountCheck(node),
			broadcast.WithSleep(cfg.broadcastSleep),
			broadcast.WithRecorder(rec)),
		tracker: status.NewTracker(coord, node, indexer,
			status.WithPolling(cfg.PollAttempts, cfg.PollInterval),
			status.WithSleep(cfg.pollSleep),
			status.WithRecorder(rec)),
		metrics: rec,
	}, nil
}

func (e *Engine) NormalizeAsset(raw string) assets.Asset {
	return assets.Normalize(raw)
}

func (e *Engine) ToWire(d units.DisplayAmount) (units.WireAmount, error) {
	return units.ToWire(d)
}

func (e *Engine) ToDisplay(w units.WireAmount) (units.DisplayAmount, error) {
	return units.ToDisplay(w)
}

// IsDust reports whether a display amount rounds down to zero wire units.
func (e *Engine) IsDust(d units.DisplayAmount) (bool, error) {
	return units.IsDust(d)
}

func (e *Engine) PrepareSend(from string, in txbuilder.Intent) (*txbuilder.Prepared, error) {
	return e.builder.PrepareSend(from, in)
}

func (e *Engine) PrepareDeposit(ctx context.Context, from string, in txbuilder.Intent) (*txbuilder.Prepared, error) {
	return e.builder.PrepareDeposit(ctx, from, in)
}

// Prepare builds either message shape depending on the intent's deposit flag.
func (e *Engine) Prepare(ctx context.Context, from string, in txbuilder.Intent) (*txbuilder.Prepared, error) {
	return e.builder.Prepare(ctx, from, in)
}

// BroadcastTransaction builds the intent against the signer's address, signs and submits it.
func (e *Engine) BroadcastTransaction(ctx context.Context, conn signer.Connector, in txbuilder.Intent) (*broadcast.Result, error) {
	return e.broadcaster.Broadcast(ctx, conn, e.buildFunc(in))
}

// EstimateGas never fails; it falls back to the network's default gas.
func (e *Engine) EstimateGas(ctx context.Context, conn signer.Connector, in txbuilder.Intent) string {
	return e.broadcaster.EstimateGas(ctx, conn, e.buildFunc(in))
}

func (e *Engine) buildFunc(in txbuilder.Intent) broadcast.BuildFunc {
	return func(ctx context.Context, cfg *networks.Config, from string) (*txbuilder.Prepared, error) {
		return e.builder.PrepareFor(ctx, cfg, from, in)
	}
}

func (e *Engine) GetTx(ctx context.Context, hash string) (*status.BasicInfo, error) {
	return e.tracker.GetTx(ctx, hash)
}

func (e *Engine) GetTransactionSummary(ctx context.Context, hash string) (*status.Summary, error) {
	return e.tracker.Summary(ctx, hash)
}

// PollTransactionStatus polls until the status is terminal or attempts run out. Zero
// arguments fall back to the configured polling defaults.
func (e *Engine) PollTransactionStatus(ctx context.Context, hash string, attempts int, interval time.Duration) (*status.Summary, error) {
	return e.tracker.Poll(ctx, hash, attempts, interval)
}

func (e *Engine) SetNetwork(mode networks.Mode) error {
	return e.coord.SetNetwork(mode)
}

// Network returns the active network snapshot.
func (e *Engine) Network() *networks.Config {
	return e.coord.Active()
}

func (e *Engine) ChainID(ctx context.Context) (string, error) {
	return e.chainIDs.ChainID(ctx, e.coord.Active())
}

func (e *Engine) Metrics() *metrics.Recorder {
	return e.metrics
}
