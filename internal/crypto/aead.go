package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
)

// NonceSize is the AES-GCM nonce length in bytes (96 bits). Every pointer
// recorded on chain carries a nonce of exactly this size.
const NonceSize = 12

var (
	ErrAuthenticationFailed = errors.New("crypto: message authentication failed")
	ErrCiphertextTooShort   = errors.New("crypto: ciphertext too short")
)

// EncryptedPayload is the output of Seal: the authenticated ciphertext and
// the nonce it was sealed under. The nonce travels with the on-chain pointer,
// never inside the blob.
type EncryptedPayload struct {
	Ciphertext []byte
	Nonce      []byte
}

// Seal encrypts plaintext under key with AES-256-GCM and a fresh random
// 96-bit nonce. Nonces are drawn from crypto/rand per call; uniqueness under
// one key is probabilistic, which is the accepted risk model for
// session-scoped keys.
func Seal(key [32]byte, plaintext []byte) (EncryptedPayload, error) {
	aead, err := newGCM(key)
	if err != nil {
		return EncryptedPayload{}, err
	}
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return EncryptedPayload{}, err
	}
	ct := aead.Seal(nil, nonce, plaintext, nil)
	return EncryptedPayload{Ciphertext: ct, Nonce: nonce}, nil
}

// Open decrypts and authenticates a payload sealed with Seal. Any tag
// failure (wrong key, wrong nonce, tampered ciphertext) surfaces as
// ErrAuthenticationFailed, never as garbage plaintext.
func Open(key [32]byte, ciphertext, nonce []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != NonceSize {
		return nil, ErrAuthenticationFailed
	}
	if len(ciphertext) < aead.Overhead() {
		return nil, ErrCiphertextTooShort
	}
	pt, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return pt, nil
}

func newGCM(key [32]byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
