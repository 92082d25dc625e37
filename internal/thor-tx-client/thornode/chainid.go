package thornode

import (
	"context"
	"sync"

	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/networks"
)

// ChainIDResolver returns the chain id for a network snapshot. A configured id wins;
// otherwise the node is asked once and the answer is cached until the network changes.
type ChainIDResolver struct {
	client *Client

	mu    sync.Mutex
	gen   uint64
	cache map[networks.Mode]string
}

func NewChainIDResolver(client *Client, coord *networks.Coordinator) *ChainIDResolver {
	r := &ChainIDResolver{
		client: client,
		cache:  make(map[networks.Mode]string),
	}
	coord.Subscribe("chain-id", func(_, _ *networks.Config) {
		r.reset()
	})
	return r
}

// ChainID resolves against cfg only, so callers holding one snapshot never mix networks.
func (r *ChainIDResolver) ChainID(ctx context.Context, cfg *networks.Config) (string, error) {
	if cfg.ChainID != "" {
		return cfg.ChainID, nil
	}

	r.mu.Lock()
	id, ok := r.cache[cfg.Mode]
	gen := r.gen
	r.mu.Unlock()
	if ok {
		return id, nil
	}

	id, err := r.client.NodeNetwork(ctx, cfg)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	// a switch while the lookup was in flight means the result must not outlive it
	if r.gen == gen {
		r.cache[cfg.Mode] = id
	}
	r.mu.Unlock()

	log.Info("resolved chain id", "network", cfg.Mode, "chainID", id)
	return id, nil
}

func (r *ChainIDResolver) reset() {
	r.mu.Lock()
	r.gen++
	clear(r.cache)
	r.mu.Unlock()
}
