// Package session owns the symmetric key for one logical user session. The
// key is derived from a wallet signature over a fixed message, lives only in
// memory, and is immutable between Initialize and Clear.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azurboy/MindVault-VibeSui/internal/crypto"
	"github.com/Azurboy/MindVault-VibeSui/internal/wallet"
)

var (
	ErrIdentityRequired = errors.New("session: no connected identity")
	ErrSigningRejected  = errors.New("session: signing rejected")
	ErrNotInitialized   = errors.New("session: encryption key not initialized")
)

// Session is constructed once per logical user session and passed to the
// components that need the key. It replaces the module-level singleton the
// browser client used: lifetime is the caller's to manage.
type Session struct {
	key         [32]byte
	initialized bool
	address     string
	cache       *SignatureCache
}

// New creates an uninitialized session. cache may be nil to disable the
// signature cache entirely.
func New(cache *SignatureCache) *Session {
	return &Session{cache: cache}
}

// Initialize requests a signature over the constant key-request message and
// derives the session key from it. The signature is cached (if a cache is
// configured) so RestoreFromCache can skip the signing prompt later in the
// same session. Anyone with access to the cache can re-derive the key; that
// is the documented tradeoff for not prompting on every page load.
func (s *Session) Initialize(ctx context.Context, signer wallet.Signer) error {
	if signer == nil || signer.Address() == "" {
		return ErrIdentityRequired
	}
	sig, err := signer.SignPersonalMessage(ctx, []byte(crypto.KeyRequestMessage))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSigningRejected, err)
	}
	key, err := crypto.DeriveSessionKey(sig)
	if err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Put(signer.Address(), sig)
	}
	s.key = key
	s.address = signer.Address()
	s.initialized = true
	return nil
}

// RestoreFromCache re-derives the key from a previously cached signature for
// the same address. Returns false (and stays uninitialized) when there is no
// usable cache entry; a cached signature bound to a different address is
// discarded, not reused.
func (s *Session) RestoreFromCache(address string) bool {
	if s.cache == nil || address == "" {
		return false
	}
	sig, ok := s.cache.Get(address)
	if !ok {
		return false
	}
	key, err := crypto.DeriveSessionKey(sig)
	if err != nil {
		s.cache.Remove(address)
		return false
	}
	s.key = key
	s.address = address
	s.initialized = true
	return true
}

func (s *Session) IsInitialized() bool { return s.initialized }

// Address returns the identity the current key belongs to, empty when
// uninitialized.
func (s *Session) Address() string { return s.address }

// Key returns the session key for callers that run the cipher directly,
// such as the history assembler's decrypt closure.
func (s *Session) Key() ([32]byte, error) {
	if !s.initialized {
		return [32]byte{}, ErrNotInitialized
	}
	return s.key, nil
}

// Encrypt seals plaintext under the session key. It does not attempt to
// initialize implicitly; callers ensure Initialize ran first.
func (s *Session) Encrypt(plaintext []byte) (crypto.EncryptedPayload, error) {
	if !s.initialized {
		return crypto.EncryptedPayload{}, ErrNotInitialized
	}
	return crypto.Seal(s.key, plaintext)
}

// Decrypt opens a payload sealed under the session key.
func (s *Session) Decrypt(ciphertext, nonce []byte) ([]byte, error) {
	if !s.initialized {
		return nil, ErrNotInitialized
	}
	return crypto.Open(s.key, ciphertext, nonce)
}

// Clear wipes the key and drops any cached signature for the current
// identity. After Clear, IsInitialized reports false and Encrypt/Decrypt
// fail.
func (s *Session) Clear() {
	crypto.Zero32(&s.key)
	s.initialized = false
	if s.cache != nil && s.address != "" {
		s.cache.Remove(s.address)
	}
	s.address = ""
}
