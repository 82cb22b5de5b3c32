package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	EngineLnd    = "lnd"
	EngineMemory = "memory"

	DefaultMaxSimultaneousRequests = 25
	DefaultLogFileMaxSizeMB        = 50
	DefaultLogFileMaxBackups       = 5
)

type Config struct {
	// Engine selects the node backend behind every built node. Either "lnd"
	// or "memory". The memory engine never touches the network and is meant
	// for exercising hosts.
	Engine string `toml:"Engine"`

	// Log file path. Logs are written to stderr as well. If empty, logs are
	// only written to stderr.
	LogFile string `toml:"LogFile"`

	// Maximum size of the log file in megabytes before it is rotated.
	LogFileMaxSizeMB int `toml:"LogFileMaxSizeMB"`

	// Number of rotated log files to keep.
	LogFileMaxBackups int `toml:"LogFileMaxBackups"`

	// Address to expose prometheus metrics on, e.g. `127.0.0.1:9100`. Metrics
	// are not exposed if empty.
	MetricsAddress string `toml:"MetricsAddress"`

	Rpc RpcConfig `toml:"Rpc"`

	// Set this section when Engine is "lnd".
	Lnd *LndConfig `toml:"Lnd"`

	// Set this section when Engine is "memory".
	Memory *MemoryConfig `toml:"Memory"`
}

type RpcConfig struct {
	// Address of the websocket listener, e.g. `127.0.0.1:9740`. The host
	// connects to ws://<address>/rpc. If empty, the host talks over stdio.
	ListenAddress string `toml:"ListenAddress"`

	// Maximum number of requests handled at the same time per connection.
	// Waiting for an event counts as a request.
	MaxSimultaneousRequests int `toml:"MaxSimultaneousRequests"`
}

// Load reads the config file at path. A missing file yields the defaults, so
// the daemon can be started without one.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		_, err := os.Stat(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat config file %s: %w", path, err)
		}
		if err == nil {
			meta, err := toml.DecodeFile(path, cfg)
			if err != nil {
				return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
			}
			if undecoded := meta.Undecoded(); len(undecoded) > 0 {
				return nil, fmt.Errorf("unknown config key %s in %s", undecoded[0], path)
			}
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Engine) == "" {
		cfg.Engine = EngineLnd
	}
	if cfg.LogFileMaxSizeMB == 0 {
		cfg.LogFileMaxSizeMB = DefaultLogFileMaxSizeMB
	}
	if cfg.LogFileMaxBackups == 0 {
		cfg.LogFileMaxBackups = DefaultLogFileMaxBackups
	}
	if cfg.Rpc.MaxSimultaneousRequests == 0 {
		cfg.Rpc.MaxSimultaneousRequests = DefaultMaxSimultaneousRequests
	}
	if cfg.Engine == EngineMemory && cfg.Memory == nil {
		cfg.Memory = &MemoryConfig{}
	}
}

// applyEnv overrides the lnd connection secrets from LNBIND_* environment
// variables, so they don't have to be stored in the config file.
func applyEnv(cfg *Config) {
	env := map[string]func(*LndConfig, string){
		"LNBIND_LND_ADDRESS":         func(c *LndConfig, v string) { c.Address = v },
		"LNBIND_LND_CERT":            func(c *LndConfig, v string) { c.Cert = v },
		"LNBIND_LND_MACAROON":        func(c *LndConfig, v string) { c.Macaroon = v },
		"LNBIND_LND_WALLET_PASSWORD": func(c *LndConfig, v string) { c.WalletPassword = v },
	}

	for key, set := range env {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		if cfg.Lnd == nil {
			cfg.Lnd = &LndConfig{}
		}
		set(cfg.Lnd, v)
	}
}

func (c *Config) Validate() error {
	switch c.Engine {
	case EngineLnd:
		if c.Lnd == nil {
			return fmt.Errorf("engine %q requires the [Lnd] section", c.Engine)
		}
		if c.Lnd.Address == "" {
			return fmt.Errorf("Lnd.Address is not set")
		}
		if c.Lnd.Cert == "" {
			return fmt.Errorf("Lnd.Cert is not set")
		}
	case EngineMemory:
	default:
		return fmt.Errorf("unknown engine %q", c.Engine)
	}

	if c.Rpc.MaxSimultaneousRequests < 0 {
		return fmt.Errorf("Rpc.MaxSimultaneousRequests must not be negative")
	}

	return nil
}
