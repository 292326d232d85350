// Copyright 2024 The randcast-node Authors
// This file is part of the randcast-node library.

// Package config loads the node's TOML configuration, in the style of
// cmd/utils/nodecmd/dumpconfigcmd.go's loader: naoina/toml with
// field names matched verbatim (no snake_case normalization), string
// values beginning with "$" resolved from the environment the same way
// cmd/utils/flags.go resolves flag defaults.
package config

import (
	"bufio"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/naoina/toml"

	"github.com/arpa-network/randcast-node/chain"
	"github.com/arpa-network/randcast-node/errs"
	"github.com/arpa-network/randcast-node/log"
)

var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string { return key },
	FieldToKey:    func(rt reflect.Type, field string) string { return field },
	MissingField: func(rt reflect.Type, field string) error {
		link := ""
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see %s#%s", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// RetryConfig mirrors chain.Retry's fields for TOML decoding.
type RetryConfig struct {
	Base        time.Duration
	Factor      float64
	MaxAttempts uint64
	UseJitter   bool
}

// ToRetry converts the decoded TOML fields into the chain.Retry value
// contract calls, listener reset loops, and CommitterClient forwarding
// all wrap their operations in.
func (r RetryConfig) ToRetry() chain.Retry {
	return chain.Retry{Base: r.Base, Factor: r.Factor, MaxAttempts: r.MaxAttempts, UseJitter: r.UseJitter}
}

// ChainConfig is one `[[chain]]` table entry. The first entry in
// Config.Chains is the main chain; the rest are relayed chains — only
// the main chain's entry needs ControllerAddress/NodeRegistryAddress
// populated, since only it runs node activation and group relay.
type ChainConfig struct {
	ChainID                    uint64
	Description                string
	ProviderRPCEndpoint        string
	ControllerAddress          string
	AdapterAddress             string
	NodeRegistryAddress        string
	AdapterDeployedBlockHeight uint64
	Retry                      RetryConfig
}

// AccountConfig resolves to exactly one signing key source, enforced by
// Validate: a keystore file plus password, an HD wallet mnemonic plus
// derivation path, or a raw private key — never more than one.
type AccountConfig struct {
	Keystore   string
	Password   string
	HDWallet   string
	HDPath     string
	PrivateKey string
}

// Validate enforces the "exactly one of hdwallet, keystore,
// private_key" rule.
func (a AccountConfig) Validate() error {
	set := 0
	if a.Keystore != "" {
		set++
	}
	if a.HDWallet != "" {
		set++
	}
	if a.PrivateKey != "" {
		set++
	}
	if set != 1 {
		return errs.New(errs.AddressFormatError, "config.AccountConfig.Validate",
			fmt.Errorf("exactly one of keystore, hdwallet, private_key must be set, got %d", set))
	}
	return nil
}

// TimeLimitsConfig is the [time_limits] table: every polling interval
// and DKG/commit timeout a chain assembly needs.
type TimeLimitsConfig struct {
	BlockIntervalMillis           int64
	DKGTaskPollIntervalMillis     int64
	NodeActivationIntervalMillis  int64
	PostGroupingIntervalMillis    int64
	AggregationIntervalMillis     int64
	ReadyToHandleIntervalMillis   int64
	GroupRelayPollIntervalMillis  int64
	WaitForPhaseIntervalMillis    int64
	DKGShutdownCheckFreqMillis    int64
	DKGTimeoutBlocks              uint64
	ExclusiveWindowBlocks         uint64
	UseJitter                     bool
}

func (t TimeLimitsConfig) millis(v int64) time.Duration { return time.Duration(v) * time.Millisecond }

func (t TimeLimitsConfig) BlockInterval() time.Duration          { return t.millis(t.BlockIntervalMillis) }
func (t TimeLimitsConfig) DKGTaskPollInterval() time.Duration    { return t.millis(t.DKGTaskPollIntervalMillis) }
func (t TimeLimitsConfig) NodeActivationInterval() time.Duration { return t.millis(t.NodeActivationIntervalMillis) }
func (t TimeLimitsConfig) PostGroupingInterval() time.Duration   { return t.millis(t.PostGroupingIntervalMillis) }
func (t TimeLimitsConfig) AggregationInterval() time.Duration    { return t.millis(t.AggregationIntervalMillis) }
func (t TimeLimitsConfig) ReadyToHandleInterval() time.Duration  { return t.millis(t.ReadyToHandleIntervalMillis) }
func (t TimeLimitsConfig) GroupRelayPollInterval() time.Duration { return t.millis(t.GroupRelayPollIntervalMillis) }
func (t TimeLimitsConfig) WaitForPhaseInterval() time.Duration   { return t.millis(t.WaitForPhaseIntervalMillis) }
func (t TimeLimitsConfig) DKGShutdownCheckFrequency() time.Duration {
	return t.millis(t.DKGShutdownCheckFreqMillis)
}

// ListenerTuning is one `[[listeners]]` table entry: per-listener
// interval overrides, keyed by the listener's scheduler.Variant name.
// Entries absent here fall back to TimeLimitsConfig's blanket values.
type ListenerTuning struct {
	Name           string
	IntervalMillis int64
}

// Config is the root of the node's TOML configuration.
type Config struct {
	NodeRPCEndpoint string
	ManagementAddr  string
	ManagementToken string
	SQLitePath      string

	Chains    []ChainConfig
	Account   AccountConfig
	TimeLimits TimeLimitsConfig
	Logger    log.Config
	Listeners []ListenerTuning
}

// DefaultConfig follows the DefaultConfig pattern of gxp/config.go:
// sane values a deployment can override per field.
var DefaultConfig = Config{
	ManagementAddr: "127.0.0.1:8090",
	SQLitePath:     "randcast-node.db",
	TimeLimits: TimeLimitsConfig{
		BlockIntervalMillis:          3000,
		DKGTaskPollIntervalMillis:    5000,
		NodeActivationIntervalMillis: 10000,
		PostGroupingIntervalMillis:   5000,
		AggregationIntervalMillis:    2000,
		ReadyToHandleIntervalMillis:  2000,
		GroupRelayPollIntervalMillis: 5000,
		WaitForPhaseIntervalMillis:   1000,
		DKGShutdownCheckFreqMillis:   2000,
		DKGTimeoutBlocks:             100,
		ExclusiveWindowBlocks:        10,
		UseJitter:                    true,
	},
	Logger: log.Config{RollingFileSize: 100, MaxLogs: 10, ContextLogging: true, FilePath: "logs/node.log", Level: "info"},
}

// Load reads and decodes the TOML file at path over DefaultConfig,
// resolves "$"-prefixed environment references, and validates the
// account section.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig

	f, err := os.Open(path)
	if err != nil {
		return nil, errs.New(errs.DataAccess, "config.Load", err)
	}
	defer f.Close()

	if err := tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(&cfg); err != nil {
		return nil, errs.New(errs.Serialization, "config.Load", err)
	}

	resolveEnv(&cfg)

	if err := cfg.Account.Validate(); err != nil {
		return nil, err
	}
	if len(cfg.Chains) == 0 {
		return nil, errs.New(errs.DataAccess, "config.Load", fmt.Errorf("at least one [[chain]] entry is required"))
	}

	return &cfg, nil
}

// resolveEnv walks every string field that begins with "$" and
// replaces it with the named environment variable's value, the same
// convention flags.go uses for flag defaults.
func resolveEnv(cfg *Config) {
	cfg.NodeRPCEndpoint = envOrSelf(cfg.NodeRPCEndpoint)
	cfg.ManagementAddr = envOrSelf(cfg.ManagementAddr)
	cfg.ManagementToken = envOrSelf(cfg.ManagementToken)
	cfg.SQLitePath = envOrSelf(cfg.SQLitePath)
	cfg.Account.Keystore = envOrSelf(cfg.Account.Keystore)
	cfg.Account.Password = envOrSelf(cfg.Account.Password)
	cfg.Account.HDWallet = envOrSelf(cfg.Account.HDWallet)
	cfg.Account.PrivateKey = envOrSelf(cfg.Account.PrivateKey)
	for i := range cfg.Chains {
		cfg.Chains[i].ProviderRPCEndpoint = envOrSelf(cfg.Chains[i].ProviderRPCEndpoint)
		cfg.Chains[i].ControllerAddress = envOrSelf(cfg.Chains[i].ControllerAddress)
		cfg.Chains[i].AdapterAddress = envOrSelf(cfg.Chains[i].AdapterAddress)
		cfg.Chains[i].NodeRegistryAddress = envOrSelf(cfg.Chains[i].NodeRegistryAddress)
	}
}

func envOrSelf(s string) string {
	if !strings.HasPrefix(s, "$") {
		return s
	}
	if v := os.Getenv(strings.TrimPrefix(s, "$")); v != "" {
		return v
	}
	return s
}

// MainChain returns the first configured chain: the main chain is
// always the first entry.
func (c *Config) MainChain() ChainConfig {
	return c.Chains[0]
}

// RelayedChains returns every configured chain after the first.
func (c *Config) RelayedChains() []ChainConfig {
	if len(c.Chains) <= 1 {
		return nil
	}
	return c.Chains[1:]
}

// ListenerInterval looks up a per-listener override, falling back to
// fallback if none is configured.
func (c *Config) ListenerInterval(name string, fallback time.Duration) time.Duration {
	for _, l := range c.Listeners {
		if l.Name == name {
			return time.Duration(l.IntervalMillis) * time.Millisecond
		}
	}
	return fallback
}

// Dump renders cfg back to TOML, the format `randcastnode dumpconfig` prints.
func Dump(cfg *Config) ([]byte, error) {
	out, err := tomlSettings.Marshal(cfg)
	if err != nil {
		return nil, errs.New(errs.Serialization, "config.Dump", err)
	}
	return out, nil
}
