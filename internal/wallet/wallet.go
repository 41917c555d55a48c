// Package wallet models the external signing collaborator. The core only
// ever sees the Signer interface; LocalWallet is the CLI's implementation.
package wallet

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

var ErrSigningRejected = errors.New("wallet: signing rejected")

// Signer is the wallet-held secret behind the whole key model. Implementors
// must sign deterministically for a fixed message so that key derivation is
// repeatable across sessions.
type Signer interface {
	Address() string
	SignPersonalMessage(ctx context.Context, msg []byte) ([]byte, error)
}

// LocalWallet signs with an in-process ed25519 key.
type LocalWallet struct {
	priv ed25519.PrivateKey
	addr string
}

func NewLocalWallet() (*LocalWallet, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return FromPrivateKey(priv), nil
}

func FromPrivateKey(priv ed25519.PrivateKey) *LocalWallet {
	return &LocalWallet{priv: priv, addr: deriveAddress(priv.Public().(ed25519.PublicKey))}
}

func (w *LocalWallet) Address() string { return w.addr }

func (w *LocalWallet) SignPersonalMessage(_ context.Context, msg []byte) ([]byte, error) {
	return ed25519.Sign(w.priv, msg), nil
}

func (w *LocalWallet) PrivateKey() ed25519.PrivateKey {
	return w.priv
}

// deriveAddress produces the 0x-prefixed 32-byte address form the ledger
// uses for account identities.
func deriveAddress(pub ed25519.PublicKey) string {
	sum := sha256.Sum256(pub)
	return "0x" + hex.EncodeToString(sum[:])
}
