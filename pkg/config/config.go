// Package config loads process-level defaults for the udpr CLIs: packet
// size, readiness timeout, and (sender-side) listening port. It is not
// consulted by pkg/sender or pkg/receiver themselves — those packages take
// explicit constructor arguments per spec.md §6 — it only supplies the
// defaults cmd/udpr-send and cmd/udpr-recv fall back to when a flag isn't
// given.
//
// Grounded on the teacher's pkg/config usage (viper-backed, a package-level
// Get() singleton) seen throughout harness/engine/network.go and
// pkg/p2p/peer/connector.go (config.Get().Network..., config.Get().Timeout...).
package config

import (
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Config holds the defaults a udpr CLI binary starts from.
type Config struct {
	Network struct {
		// PacketSize is the default MTU hint (N) handed to SenderPeer.
		PacketSize uint16 `mapstructure:"packetsize"`
		// Port is the default sender listening port.
		Port uint16 `mapstructure:"port"`
	} `mapstructure:"network"`

	Timeout struct {
		// ReadinessMillis is the default readiness timeout in milliseconds.
		ReadinessMillis int `mapstructure:"readinessmillis"`
	} `mapstructure:"timeout"`

	Logger struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"logger"`
}

var (
	once sync.Once
	cfg  Config
)

func defaults() Config {
	var c Config
	c.Network.PacketSize = 508
	c.Network.Port = 9000
	c.Timeout.ReadinessMillis = 500
	c.Logger.Level = "info"
	return c
}

// Get returns the process-wide Config, loading it from file/env on first
// call. Safe for concurrent use.
func Get() *Config {
	once.Do(func() {
		cfg = defaults()
		_ = load(&cfg)
	})
	return &cfg
}

// LoadFromFile loads configuration from an explicit TOML path, overriding
// the package singleton. It's exposed separately from Get so CLI commands
// can honor a --config flag discovered after Get() may already have been
// called with env-only defaults.
func LoadFromFile(path string) (Config, error) {
	c := defaults()
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return c, err
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	cfg = c
	return c, nil
}

func load(c *Config) error {
	v := newViper()
	// A missing config file is not an error: env vars and the flag
	// package still apply, and the CLIs work with zero configuration.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}
	return v.Unmarshal(c)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("udpr")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.udpr")

	v.SetEnvPrefix("udpr")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unmarshal only sees keys viper knows about; binding them makes the
	// env vars apply even when no config file is found.
	for _, key := range []string{"network.packetsize", "network.port", "timeout.readinessmillis", "logger.level"} {
		_ = v.BindEnv(key)
	}

	return v
}
