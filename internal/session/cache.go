package session

import (
	"sync"

	"github.com/Azurboy/MindVault-VibeSui/internal/crypto"
)

// SignatureCache holds raw signature bytes in memory, keyed by identity
// address. It is never written to disk; losing the process loses the cache,
// which is exactly the intended lifetime.
type SignatureCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func NewSignatureCache() *SignatureCache {
	return &SignatureCache{entries: make(map[string][]byte)}
}

func (c *SignatureCache) Put(address string, sig []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[address] = append([]byte(nil), sig...)
}

func (c *SignatureCache) Get(address string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sig, ok := c.entries[address]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), sig...), true
}

func (c *SignatureCache) Remove(address string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sig, ok := c.entries[address]; ok {
		crypto.Zero(sig)
		delete(c.entries, address)
	}
}
