package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "node.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimalConfig = `
NodeRPCEndpoint = "127.0.0.1:9000"

[[Chains]]
ChainID = 1
ProviderRPCEndpoint = "https://main.example"
ControllerAddress = "0x0000000000000000000000000000000000000a"
NodeRegistryAddress = "0x0000000000000000000000000000000000000b"

[[Chains]]
ChainID = 2
ProviderRPCEndpoint = "https://relayed.example"

[Account]
PrivateKey = "0x1111111111111111111111111111111111111111111111111111111111111111"
`

func TestLoadParsesChainsAndAccount(t *testing.T) {
	path := writeTempConfig(t, minimalConfig)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Chains, 2)
	assert.Equal(t, uint64(1), cfg.MainChain().ChainID)
	require.Len(t, cfg.RelayedChains(), 1)
	assert.Equal(t, uint64(2), cfg.RelayedChains()[0].ChainID)
	assert.Equal(t, "127.0.0.1:9000", cfg.NodeRPCEndpoint)
}

func TestLoadRejectsMissingAccountSource(t *testing.T) {
	path := writeTempConfig(t, `
[[Chains]]
ChainID = 1
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsAmbiguousAccountSource(t *testing.T) {
	path := writeTempConfig(t, `
[[Chains]]
ChainID = 1

[Account]
PrivateKey = "0xabc"
Keystore = "/tmp/keystore.json"
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadResolvesEnvPrefixedValues(t *testing.T) {
	t.Setenv("ARPANODE_TEST_ENDPOINT", "resolved-from-env:9000")
	path := writeTempConfig(t, `
NodeRPCEndpoint = "$ARPANODE_TEST_ENDPOINT"

[[Chains]]
ChainID = 1

[Account]
PrivateKey = "0xabc"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "resolved-from-env:9000", cfg.NodeRPCEndpoint)
}

func TestListenerIntervalFallsBackWhenUnconfigured(t *testing.T) {
	cfg := &Config{}
	got := cfg.ListenerInterval("Block", 42)
	assert.Equal(t, int64(42), got.Nanoseconds())
}
