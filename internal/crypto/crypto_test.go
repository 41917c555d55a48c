package crypto

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func randBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	return b
}

func randKey(t *testing.T) (k [32]byte) {
	t.Helper()
	copy(k[:], randBytes(t, 32))
	return k
}

func TestDeriveSessionKeyDeterministic(t *testing.T) {
	sig := randBytes(t, 64)
	k1, err := DeriveSessionKey(sig)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	k2, err := DeriveSessionKey(sig)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if k1 != k2 {
		t.Fatal("same signature must yield identical keys")
	}
}

func TestDeriveSessionKeyDistinctSignatures(t *testing.T) {
	k1, _ := DeriveSessionKey(randBytes(t, 64))
	k2, _ := DeriveSessionKey(randBytes(t, 64))
	if k1 == k2 {
		t.Fatal("distinct signatures yielded the same key")
	}
}

func TestDeriveSessionKeyEmpty(t *testing.T) {
	if _, err := DeriveSessionKey(nil); err == nil {
		t.Fatal("expected error for empty signature")
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	key := randKey(t)
	pt := randBytes(t, 4096)
	p, err := Seal(key, pt)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if len(p.Nonce) != NonceSize {
		t.Fatalf("nonce size = %d, want %d", len(p.Nonce), NonceSize)
	}
	out, err := Open(key, p.Ciphertext, p.Nonce)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(pt, out) {
		t.Fatal("plaintext mismatch")
	}
}

func TestSealFreshNonces(t *testing.T) {
	key := randKey(t)
	pt := []byte("same plaintext")
	p1, err := Seal(key, pt)
	if err != nil {
		t.Fatalf("seal1: %v", err)
	}
	p2, err := Seal(key, pt)
	if err != nil {
		t.Fatalf("seal2: %v", err)
	}
	if bytes.Equal(p1.Nonce, p2.Nonce) {
		t.Fatal("expected distinct nonces")
	}
	if bytes.Equal(p1.Ciphertext, p2.Ciphertext) {
		t.Fatal("expected distinct ciphertexts")
	}
}

func TestOpenWrongKey(t *testing.T) {
	p, err := Seal(randKey(t), []byte("secret"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := Open(randKey(t), p.Ciphertext, p.Nonce); err != ErrAuthenticationFailed {
		t.Fatalf("got %v, want ErrAuthenticationFailed", err)
	}
}

func TestOpenWrongNonce(t *testing.T) {
	key := randKey(t)
	p, err := Seal(key, []byte("secret"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := Open(key, p.Ciphertext, randBytes(t, NonceSize)); err != ErrAuthenticationFailed {
		t.Fatalf("got %v, want ErrAuthenticationFailed", err)
	}
}

func TestOpenTamperedCiphertext(t *testing.T) {
	key := randKey(t)
	p, err := Seal(key, []byte("secret"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	for i := range p.Ciphertext {
		mut := append([]byte(nil), p.Ciphertext...)
		mut[i] ^= 0xFF
		if _, err := Open(key, mut, p.Nonce); err != ErrAuthenticationFailed {
			t.Fatalf("flip at %d: got %v, want ErrAuthenticationFailed", i, err)
		}
	}
}

func TestOpenTruncated(t *testing.T) {
	key := randKey(t)
	if _, err := Open(key, []byte{1, 2, 3}, make([]byte, NonceSize)); err != ErrCiphertextTooShort {
		t.Fatalf("got %v, want ErrCiphertextTooShort", err)
	}
}

func TestKeystoreRoundTrip(t *testing.T) {
	secret := randBytes(t, 64)
	sealed, err := SealKeystore([]byte("correct horse"), secret)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	out, err := OpenKeystore([]byte("correct horse"), sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(secret, out) {
		t.Fatal("secret mismatch")
	}
}

func TestKeystoreWrongPassphrase(t *testing.T) {
	sealed, err := SealKeystore([]byte("right"), []byte("secret"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := OpenKeystore([]byte("wrong"), sealed); err != ErrKeystoreLocked {
		t.Fatalf("got %v, want ErrKeystoreLocked", err)
	}
}

func TestHexRoundTrip(t *testing.T) {
	b := randBytes(t, 33)
	out, err := FromHex(ToHex(b))
	if err != nil {
		t.Fatalf("FromHex: %v", err)
	}
	if !bytes.Equal(b, out) {
		t.Fatal("hex round trip mismatch")
	}
}

func TestBase64RoundTrip(t *testing.T) {
	b := randBytes(t, 33)
	out, err := FromBase64(ToBase64(b))
	if err != nil {
		t.Fatalf("FromBase64: %v", err)
	}
	if !bytes.Equal(b, out) {
		t.Fatal("base64 round trip mismatch")
	}
}
