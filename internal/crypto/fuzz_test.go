package crypto

import (
	"bytes"
	"errors"
	"testing"
)

func FuzzOpen(f *testing.F) {
	f.Add([]byte("hello"), []byte("sig"))
	f.Add([]byte{}, []byte("another signature"))
	f.Fuzz(func(t *testing.T, pt, sig []byte) {
		if len(sig) == 0 {
			t.Skip()
		}
		key, err := DeriveSessionKey(sig)
		if err != nil {
			t.Fatalf("derive: %v", err)
		}
		payload, err := Seal(key, pt)
		if err != nil {
			t.Fatalf("seal: %v", err)
		}
		got, err := Open(key, payload.Ciphertext, payload.Nonce)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		if !bytes.Equal(pt, got) {
			t.Fatal("roundtrip mismatch")
		}

		if len(payload.Ciphertext) > 0 {
			tampered := append([]byte(nil), payload.Ciphertext...)
			tampered[0] ^= 0xff
			if _, err := Open(key, tampered, payload.Nonce); !errors.Is(err, ErrAuthenticationFailed) {
				t.Fatalf("tampered open: %v", err)
			}
		}
	})
}
