package networks

import (
	"strings"

	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/txerr"

	"github.com/cockroachdb/errors"
)

// Mode selects one of the two supported networks.
type Mode string

const (
	Mainnet  Mode = "mainnet"
	Stagenet Mode = "stagenet"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Mainnet:
		return Mainnet, nil
	case Stagenet:
		return Stagenet, nil
	}
	return "", errors.Wrapf(txerr.ErrUnknownNetwork, "%q", s)
}

// Config describes one network's endpoints. A Config is an immutable snapshot: the
// coordinator swaps whole values and never edits one in place.
type Config struct {
	Mode          Mode   `json:"mode" yaml:"mode" mapstructure:"mode"`
	RestURL       string `json:"restUrl" yaml:"restUrl" mapstructure:"restUrl"`
	RPCURL        string `json:"rpcUrl" yaml:"rpcUrl" mapstructure:"rpcUrl"`
	IndexerURL    string `json:"indexerUrl,omitempty" yaml:"indexerUrl" mapstructure:"indexerUrl"`
	AddressPrefix string `json:"addressPrefix" yaml:"addressPrefix" mapstructure:"addressPrefix"`
	ChainID       string `json:"chainId,omitempty" yaml:"chainId" mapstructure:"chainId"`

	// FeeWire is the flat published network fee in wire units.
	FeeWire    string `json:"feeWire" yaml:"feeWire" mapstructure:"feeWire"`
	DefaultGas string `json:"defaultGas" yaml:"defaultGas" mapstructure:"defaultGas"`
}

func (c Config) normalize(mode Mode) Config {
	c.Mode = mode
	c.RestURL = strings.TrimRight(strings.TrimSpace(c.RestURL), "/")
	c.RPCURL = strings.TrimRight(strings.TrimSpace(c.RPCURL), "/")
	c.IndexerURL = strings.TrimRight(strings.TrimSpace(c.IndexerURL), "/")
	c.AddressPrefix = strings.ToLower(strings.TrimSpace(c.AddressPrefix))
	c.ChainID = strings.TrimSpace(c.ChainID)
	c.FeeWire = strings.TrimSpace(c.FeeWire)
	c.DefaultGas = strings.TrimSpace(c.DefaultGas)
	return c
}

func (c Config) validate() error {
	if c.RestURL == "" {
		return errors.Newf("network %q: rest url is empty", c.Mode)
	}
	if c.RPCURL == "" {
		return errors.Newf("network %q: rpc url is empty", c.Mode)
	}
	if c.AddressPrefix == "" {
		return errors.Newf("network %q: address prefix is empty", c.Mode)
	}
	return nil
}
