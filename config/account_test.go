package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAddressFromPrivateKeyIsDeterministic(t *testing.T) {
	a := AccountConfig{PrivateKey: "0x" + "11"}
	addr1, err := ResolveAddress(a)
	require.NoError(t, err)
	addr2, err := ResolveAddress(a)
	require.NoError(t, err)
	assert.Equal(t, addr1, addr2)
	assert.False(t, addr1.IsZero())
}

func TestResolveAddressDiffersAcrossKeys(t *testing.T) {
	addr1, err := ResolveAddress(AccountConfig{PrivateKey: "0x11"})
	require.NoError(t, err)
	addr2, err := ResolveAddress(AccountConfig{PrivateKey: "0x22"})
	require.NoError(t, err)
	assert.NotEqual(t, addr1, addr2)
}

func TestResolveAddressRejectsUnsetAccount(t *testing.T) {
	_, err := ResolveAddress(AccountConfig{})
	require.Error(t, err)
}
