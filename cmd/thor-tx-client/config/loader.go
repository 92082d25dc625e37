package config

import (
	"bytes"
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	utilsconfig "github.com/quantumauth-io/quantum-go-utils/config"
	"github.com/spf13/viper"

	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/constants"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/engine"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/networks"
)

//go:embed config.yaml
var EmbeddedConfigYAML []byte

const envPrefix = "THORTX"

type ClientSettings struct {
	LocalHost      string
	Port           string
	DefaultNetwork string
	SignerURL      string
	AllowedOrigins []string
}

type PollingSettings struct {
	MaxAttempts int
	IntervalMs  int
}

type BroadcastSettings struct {
	SequenceRetryDelayMs int
}

type Config struct {
	ClientSettings *ClientSettings            `mapstructure:"Client"`
	Networks       map[string]networks.Config `mapstructure:"Networks"`
	Polling        PollingSettings            `mapstructure:"Polling"`
	Broadcast      BroadcastSettings          `mapstructure:"Broadcast"`
}

func Load() (*Config, error) {
	home, _ := os.UserHomeDir()
	paths := []string{
		filepath.Join(home, ".config", constants.AppName),
		".",
	}
	return LoadFrom(paths)
}

// LoadFrom layers the embedded defaults, the first config.yaml found in paths, and
// THORTX_* environment variables, in that order. A missing file is not an error.
func LoadFrom(paths []string) (*Config, error) {
	viper.Reset()
	if err := embeddedDefaults(); err != nil {
		return nil, err
	}
	viper.SetEnvPrefix(envPrefix)

	cfg, err := utilsconfig.ParseConfig[Config](paths)
	var notFound viper.ConfigFileNotFoundError
	switch {
	case errors.As(err, &notFound):
		cfg = new(Config)
		if err := viper.Unmarshal(cfg); err != nil {
			return nil, errors.Wrap(err, "decode config")
		}
	case err != nil:
		return nil, errors.Wrap(err, "load config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// embeddedDefaults registers every key of the embedded file as a default, so a user file
// only needs the keys it changes.
func embeddedDefaults() error {
	embedded := viper.New()
	embedded.SetConfigType("yaml")
	if err := embedded.ReadConfig(bytes.NewReader(EmbeddedConfigYAML)); err != nil {
		return errors.Wrap(err, "read embedded config")
	}
	for _, key := range embedded.AllKeys() {
		viper.SetDefault(key, embedded.Get(key))
	}
	return nil
}

func (c *Config) Validate() error {
	if c.ClientSettings == nil {
		return errors.New("Client section is missing")
	}
	if _, err := networks.ParseMode(c.ClientSettings.DefaultNetwork); err != nil {
		return errors.Wrap(err, "Client.DefaultNetwork")
	}
	if _, ok := c.Networks[strings.ToLower(c.ClientSettings.DefaultNetwork)]; !ok {
		return errors.Newf("Client.DefaultNetwork %q has no Networks entry", c.ClientSettings.DefaultNetwork)
	}
	for name, n := range c.Networks {
		if _, err := networks.ParseMode(name); err != nil {
			return errors.Wrapf(err, "Networks.%s", name)
		}
		if strings.TrimSpace(n.RestURL) == "" || strings.TrimSpace(n.RPCURL) == "" {
			return errors.Newf("Networks.%s needs restUrl and rpcUrl", name)
		}
		if strings.TrimSpace(n.AddressPrefix) == "" {
			return errors.Newf("Networks.%s needs addressPrefix", name)
		}
	}
	if c.Polling.MaxAttempts < 0 || c.Polling.IntervalMs < 0 {
		return errors.New("Polling values must not be negative")
	}
	if c.Broadcast.SequenceRetryDelayMs < 0 {
		return errors.New("Broadcast.SequenceRetryDelayMs must not be negative")
	}
	return nil
}

// EngineConfig turns the file layout into the engine's typed configuration.
func (c *Config) EngineConfig() (engine.Config, error) {
	nets := make(map[networks.Mode]networks.Config, len(c.Networks))
	for name, n := range c.Networks {
		mode, err := networks.ParseMode(name)
		if err != nil {
			return engine.Config{}, err
		}
		nets[mode] = n
	}
	def, err := networks.ParseMode(c.ClientSettings.DefaultNetwork)
	if err != nil {
		return engine.Config{}, err
	}

	return engine.Config{
		Networks:           nets,
		DefaultNetwork:     def,
		PollAttempts:       c.Polling.MaxAttempts,
		PollInterval:       time.Duration(c.Polling.IntervalMs) * time.Millisecond,
		SequenceRetryDelay: time.Duration(c.Broadcast.SequenceRetryDelayMs) * time.Millisecond,
	}, nil
}
