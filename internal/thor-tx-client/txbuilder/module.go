package txbuilder

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/constants"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/networks"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/txerr"
)

// ModuleLookup queries a module account address on one network.
type ModuleLookup interface {
	ModuleAddress(ctx context.Context, cfg *networks.Config, name string) (string, error)
}

// ModuleResolver caches the deposit module address per network. The cache is dropped on
// every network switch.
type ModuleResolver struct {
	lookup ModuleLookup
	coord  *networks.Coordinator

	mu    sync.Mutex
	gen   uint64
	cache map[networks.Mode]string
}

func NewModuleResolver(lookup ModuleLookup, coord *networks.Coordinator) *ModuleResolver {
	r := &ModuleResolver{
		lookup: lookup,
		coord:  coord,
		cache:  make(map[networks.Mode]string),
	}
	coord.Subscribe("module-address", func(_, _ *networks.Config) {
		r.reset()
	})
	return r
}

// Resolve returns the module address for cfg's network.
func (r *ModuleResolver) Resolve(ctx context.Context, cfg *networks.Config) (string, error) {
	r.mu.Lock()
	addr, ok := r.cache[cfg.Mode]
	gen := r.gen
	r.mu.Unlock()
	if ok {
		return addr, nil
	}

	addr, err := r.lookup.ModuleAddress(ctx, cfg, constants.ModuleName)
	if err != nil {
		return "", errors.Mark(errors.Wrapf(err, "resolve %s module", constants.ModuleName), txerr.ErrUnresolvedModuleAddress)
	}

	r.mu.Lock()
	// a switch while the lookup was in flight means the result must not outlive it
	if r.gen == gen {
		r.cache[cfg.Mode] = addr
	}
	r.mu.Unlock()

	log.Info("module address resolved", "network", cfg.Mode, "module", constants.ModuleName, "address", addr)
	return addr, nil
}

func (r *ModuleResolver) reset() {
	r.mu.Lock()
	r.gen++
	clear(r.cache)
	r.mu.Unlock()
}
