// Package ledger reads and builds transactions against the on-chain
// data_vault program. The vault object itself is a black box of dynamic
// fields; this package only knows the field shapes it consumes.
package ledger

import (
	"encoding/json"
	"errors"
	"strconv"
)

const ModuleName = "data_vault"

// ClockObjectID is the shared clock object the Move calls read timestamps
// from.
const ClockObjectID = "0x6"

var (
	ErrLedgerUnavailable   = errors.New("ledger: fullnode unavailable")
	ErrVaultNotFound       = errors.New("ledger: vault not found")
	ErrTransactionFailed   = errors.New("ledger: transaction failed")
	ErrTransactionNotFound = errors.New("ledger: transaction not found")
	ErrPointerNotFound     = errors.New("ledger: pointer not found")
)

// Vault is the on-chain owned object aggregating a user's pointers.
type Vault struct {
	ID           string
	Owner        string
	PointerCount uint64
	CreatedAt    int64 // epoch millis, as recorded by the chain clock
}

// Pointer is one index-addressed blob reference under a vault. It carries
// everything needed to fetch and decrypt the blob except the key.
type Pointer struct {
	Index       uint64
	BlobID      string
	PayloadKind uint8
	Nonce       []byte
	CreatedAt   int64
}

// TransactionResult is the slice of a transaction block that proof
// verification inspects.
type TransactionResult struct {
	Digest      string
	Success     bool
	Status      string
	StoredEvent *PointerStoredEvent
}

// PointerStoredEvent is the structured event emitted when a pointer is
// appended. Older transactions may predate it.
type PointerStoredEvent struct {
	VaultID string
	Index   uint64
}

// Wire shapes. The chain encodes integers as strings and byte vectors as
// JSON arrays of numbers; the helpers below normalize that.

type pagedResult struct {
	Data        []json.RawMessage `json:"data"`
	HasNextPage bool              `json:"hasNextPage"`
	NextCursor  *string           `json:"nextCursor"`
}

type objectEnvelope struct {
	Data *objectData `json:"data"`
}

type objectData struct {
	ObjectID string          `json:"objectId"`
	Owner    json.RawMessage `json:"owner"`
	Content  *objectContent  `json:"content"`
}

type objectContent struct {
	DataType string          `json:"dataType"`
	Fields   json.RawMessage `json:"fields"`
}

type vaultFields struct {
	BlobCount string `json:"blob_count"`
	CreatedAt string `json:"created_at"`
}

type dynamicFieldName struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

type dynamicFieldEntry struct {
	Name dynamicFieldName `json:"name"`
}

type blobRefFields struct {
	Name struct {
		Fields struct {
			Index string `json:"index"`
		} `json:"fields"`
	} `json:"name"`
	Value struct {
		Fields struct {
			BlobID    []byte16 `json:"blob_id"`
			BlobType  string   `json:"blob_type"`
			IV        []byte16 `json:"iv"`
			CreatedAt string   `json:"created_at"`
		} `json:"fields"`
	} `json:"value"`
}

// byte16 decodes a single element of an on-chain byte vector, which may
// arrive as a JSON number or a numeric string depending on the node.
type byte16 uint8

func (b *byte16) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := strconv.ParseUint(s, 10, 8)
		if err != nil {
			return err
		}
		*b = byte16(n)
		return nil
	}
	var n uint8
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*b = byte16(n)
	return nil
}

func byteVec(v []byte16) []byte {
	out := make([]byte, len(v))
	for i, b := range v {
		out[i] = byte(b)
	}
	return out
}

// parseChainUint reads the string-encoded integers the chain uses for
// counters and timestamps. Empty strings decode to zero, matching how the
// original client treated missing fields.
func parseChainUint(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseUint(s, 10, 64)
}

// ownerAddress extracts the AddressOwner form; other ownership kinds
// (shared, immutable) yield an empty address.
func ownerAddress(raw json.RawMessage) string {
	var o struct {
		AddressOwner string `json:"AddressOwner"`
	}
	if err := json.Unmarshal(raw, &o); err != nil {
		return ""
	}
	return o.AddressOwner
}
