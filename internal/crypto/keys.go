package crypto

import (
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

// KeyRequestMessage is the constant message a wallet signs to seed key
// derivation. It never changes: signing the same message every session is
// what makes the derived key reconstructable without storing it anywhere.
const KeyRequestMessage = "mindvault-encryption-key-v1"

const (
	kdfSalt = "mindvault-salt-v1"
	kdfInfo = "aes-gcm-key"
)

var ErrKeyDerivationFailed = errors.New("crypto: key derivation failed")

// DeriveSessionKey derives the 256-bit session key from wallet signature
// bytes with HKDF-SHA256. Identical signature bytes always yield the
// identical key; the salt and info labels are fixed for this application.
func DeriveSessionKey(signature []byte) (key [32]byte, err error) {
	if len(signature) == 0 {
		return key, ErrKeyDerivationFailed
	}
	stream := hkdf.New(sha256.New, signature, []byte(kdfSalt), []byte(kdfInfo))
	if _, err := io.ReadFull(stream, key[:]); err != nil {
		return key, ErrKeyDerivationFailed
	}
	return key, nil
}

// Zero overwrites a byte slice in memory with zeros.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Zero32 wipes a fixed-size key in place.
func Zero32(k *[32]byte) {
	for i := range k {
		k[i] = 0
	}
}
