package crypto

import (
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/argon2"
	xchacha "golang.org/x/crypto/chacha20poly1305"
)

// Keystore sealing wraps a wallet secret at rest under a passphrase. This is
// a different regime from the session cipher: the input is a human
// passphrase, so the KDF must be memory-hard, and the payload is tiny and
// written once, so the larger XChaCha nonce is fine.

const (
	ksSaltSize = 32
	ksArgonMem = 128 * 1024
	ksArgonT   = 3
	ksArgonP   = 4
)

var ErrKeystoreLocked = errors.New("crypto: keystore passphrase incorrect")

// SealKeystore seals secret under passphrase. Layout: [salt||nonce||ct].
func SealKeystore(passphrase, secret []byte) ([]byte, error) {
	salt := make([]byte, ksSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	key := argon2.IDKey(passphrase, salt, ksArgonT, ksArgonMem, ksArgonP, 32)
	defer Zero(key)

	aead, err := xchacha.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, xchacha.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	out := make([]byte, 0, ksSaltSize+len(nonce)+len(secret)+aead.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	out = aead.Seal(out, nonce, secret, nil)
	return out, nil
}

// OpenKeystore reverses SealKeystore. A wrong passphrase fails the AEAD tag
// and is reported as ErrKeystoreLocked.
func OpenKeystore(passphrase, sealed []byte) ([]byte, error) {
	if len(sealed) < ksSaltSize+xchacha.NonceSizeX {
		return nil, ErrCiphertextTooShort
	}
	salt := sealed[:ksSaltSize]
	nonce := sealed[ksSaltSize : ksSaltSize+xchacha.NonceSizeX]
	ct := sealed[ksSaltSize+xchacha.NonceSizeX:]

	key := argon2.IDKey(passphrase, salt, ksArgonT, ksArgonMem, ksArgonP, 32)
	defer Zero(key)

	aead, err := xchacha.NewX(key)
	if err != nil {
		return nil, err
	}
	pt, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return nil, ErrKeystoreLocked
	}
	return pt, nil
}
