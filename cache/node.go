package cache

import (
	"sync"

	"github.com/arpa-network/randcast-node/types"
)

// NodeCache holds this process's single NodeIdentity. Exclusively
// owned: one process, one identity, created on first run. The
// DKG key pair may be regenerated later (e.g. after a fresh BLS keypair
// is minted for a new group); the address never changes once set.
type NodeCache struct {
	mu sync.RWMutex
	id types.NodeIdentity
	ok bool
}

func NewNodeCache() *NodeCache {
	return &NodeCache{}
}

// Set installs identity, replacing whatever was there before.
func (c *NodeCache) Set(identity types.NodeIdentity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.id = identity
	c.ok = true
}

// Get returns the current identity; ok is false before the first Set.
func (c *NodeCache) Get() (types.NodeIdentity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.id, c.ok
}

// SetDKGKeyPair regenerates the DKG key pair in place, leaving the
// address and RPC endpoint untouched.
func (c *NodeCache) SetDKGKeyPair(priv, pub []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.id.DKGPrivateKey = priv
	c.id.DKGPublicKey = pub
}
