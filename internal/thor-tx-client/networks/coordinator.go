package networks

import (
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/constants"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/txerr"
)

// Listener is told about a switch synchronously, before SetNetwork returns.
type Listener func(prev, next *Config)

type listener struct {
	name string
	fn   Listener
}

// Coordinator holds the single active network snapshot every component reads endpoints from.
type Coordinator struct {
	configs map[Mode]Config
	active  atomic.Pointer[Config]

	mu        sync.Mutex
	listeners []listener
}

func NewCoordinator(configs map[Mode]Config, initial Mode) (*Coordinator, error) {
	if len(configs) == 0 {
		return nil, errors.New("networks config is empty")
	}

	normalized := make(map[Mode]Config, len(configs))
	for mode, cfg := range configs {
		if _, err := ParseMode(string(mode)); err != nil {
			return nil, err
		}
		cfg = cfg.normalize(mode)
		if cfg.FeeWire == "" {
			cfg.FeeWire = constants.DefaultFeeWire
		}
		if cfg.DefaultGas == "" {
			cfg.DefaultGas = constants.DefaultGasWire
		}
		if err := cfg.validate(); err != nil {
			return nil, err
		}
		normalized[mode] = cfg
	}

	c := &Coordinator{configs: normalized}

	cfg, ok := normalized[initial]
	if !ok {
		return nil, errors.Wrapf(txerr.ErrNetworkNotConfigured, "initial network %q", initial)
	}
	c.active.Store(&cfg)
	return c, nil
}

// Active returns the current snapshot. Callers read it once per operation so a concurrent
// switch cannot hand them endpoints from two different networks.
func (c *Coordinator) Active() *Config {
	return c.active.Load()
}

// Subscribe registers a dependent holding per-network state.
func (c *Coordinator) Subscribe(name string, fn Listener) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, listener{name: name, fn: fn})
}

// SetNetwork swaps the active snapshot and invalidates every subscriber while holding the
// switch lock, so two switches never interleave their invalidations.
func (c *Coordinator) SetNetwork(mode Mode) error {
	if _, err := ParseMode(string(mode)); err != nil {
		return err
	}
	cfg, ok := c.configs[mode]
	if !ok {
		return errors.Wrapf(txerr.ErrNetworkNotConfigured, "%q", mode)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.active.Load()
	if prev != nil && prev.Mode == mode {
		return nil
	}

	next := cfg
	c.active.Store(&next)

	for _, l := range c.listeners {
		l.fn(prev, &next)
	}

	var from Mode
	if prev != nil {
		from = prev.Mode
	}
	log.Info("network switched", "from", from, "to", mode, "invalidated", len(c.listeners))
	return nil
}
