package networks

import (
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/constants"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/txerr"
)

func testConfigs() map[Mode]Config {
	return map[Mode]Config{
		Mainnet: {
			RestURL:       "https://thornode.example.com/",
			RPCURL:        "https://rpc.example.com",
			AddressPrefix: "THOR",
			ChainID:       "thorchain-1",
		},
		Stagenet: {
			RestURL:       "https://stagenet-thornode.example.com",
			RPCURL:        "https://stagenet-rpc.example.com",
			AddressPrefix: "sthor",
			FeeWire:       "1000000",
		},
	}
}

func TestNewCoordinatorNormalizes(t *testing.T) {
	c, err := NewCoordinator(testConfigs(), Mainnet)
	require.NoError(t, err)

	active := c.Active()
	assert.Equal(t, Mainnet, active.Mode)
	assert.Equal(t, "https://thornode.example.com", active.RestURL)
	assert.Equal(t, "thor", active.AddressPrefix)
	assert.Equal(t, constants.DefaultFeeWire, active.FeeWire)
	assert.Equal(t, constants.DefaultGasWire, active.DefaultGas)

	require.NoError(t, c.SetNetwork(Stagenet))
	assert.Equal(t, "1000000", c.Active().FeeWire)
}

func TestNewCoordinatorRejectsBadConfig(t *testing.T) {
	_, err := NewCoordinator(nil, Mainnet)
	require.Error(t, err)

	cfgs := testConfigs()
	delete(cfgs, Stagenet)
	_, err = NewCoordinator(cfgs, Stagenet)
	assert.True(t, errors.Is(err, txerr.ErrNetworkNotConfigured))

	cfgs = testConfigs()
	m := cfgs[Mainnet]
	m.RestURL = ""
	cfgs[Mainnet] = m
	_, err = NewCoordinator(cfgs, Stagenet)
	require.Error(t, err)
}

func TestSetNetworkSwapsSnapshotAndNotifies(t *testing.T) {
	c, err := NewCoordinator(testConfigs(), Mainnet)
	require.NoError(t, err)

	before := c.Active()

	var calls []string
	c.Subscribe("a", func(prev, next *Config) {
		calls = append(calls, "a:"+string(prev.Mode)+"->"+string(next.Mode))
	})
	c.Subscribe("b", func(prev, next *Config) {
		// the new snapshot is already visible to dependents being invalidated
		assert.Equal(t, Stagenet, c.Active().Mode)
		calls = append(calls, "b")
	})

	require.NoError(t, c.SetNetwork(Stagenet))
	assert.Equal(t, []string{"a:mainnet->stagenet", "b"}, calls)
	assert.Equal(t, Stagenet, c.Active().Mode)

	// the old snapshot was replaced, not mutated
	assert.Equal(t, Mainnet, before.Mode)
	assert.Equal(t, "thor", before.AddressPrefix)

	require.NoError(t, c.SetNetwork(Stagenet))
	assert.Len(t, calls, 2, "switching to the active network is a no-op")
}

func TestSetNetworkRejectsUnknownMode(t *testing.T) {
	c, err := NewCoordinator(testConfigs(), Mainnet)
	require.NoError(t, err)

	err = c.SetNetwork("testnet")
	assert.True(t, errors.Is(err, txerr.ErrUnknownNetwork))
	assert.Equal(t, Mainnet, c.Active().Mode)
}

func TestConcurrentSwitchesNeverInterleave(t *testing.T) {
	c, err := NewCoordinator(testConfigs(), Mainnet)
	require.NoError(t, err)

	var mu sync.Mutex
	inFlight := 0
	maxInFlight := 0
	c.Subscribe("counter", func(prev, next *Config) {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		mu.Lock()
		inFlight--
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			mode := Mainnet
			if i%2 == 0 {
				mode = Stagenet
			}
			_ = c.SetNetwork(mode)
			_ = c.Active()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, maxInFlight)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" MAINNET ")
	require.NoError(t, err)
	assert.Equal(t, Mainnet, m)

	_, err = ParseMode("devnet")
	assert.True(t, errors.Is(err, txerr.ErrUnknownNetwork))
}
