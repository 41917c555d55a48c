package crypto

import (
	"encoding/base64"
	"encoding/hex"
)

// Byte/string helpers shared by the ledger and proof layers. Blob ids cross
// the chain as raw byte vectors, nonces as hex, signatures as base64.

func ToHex(b []byte) string { return hex.EncodeToString(b) }

func FromHex(s string) ([]byte, error) { return hex.DecodeString(s) }

func ToBase64(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

func FromBase64(s string) ([]byte, error) { return base64.StdEncoding.DecodeString(s) }
