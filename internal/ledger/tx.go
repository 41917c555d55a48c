package ledger

import "fmt"

// Transaction is a signable Move-call description. Builders are pure:
// submission and signing belong to the wallet collaborator, which serializes
// this description into its native transaction format.
type Transaction struct {
	Target    string `json:"target"`
	Arguments []Arg  `json:"arguments"`
}

// Arg is one Move-call argument: either an object reference or a pure value
// with its Move type.
type Arg struct {
	Kind      string `json:"kind"` // "object" or "pure"
	Object    string `json:"object,omitempty"`
	ValueType string `json:"valueType,omitempty"`
	Value     any    `json:"value,omitempty"`
}

func objectArg(id string) Arg {
	return Arg{Kind: "object", Object: id}
}

func pureArg(moveType string, v any) Arg {
	return Arg{Kind: "pure", ValueType: moveType, Value: v}
}

func (c *Client) target(fn string) string {
	return fmt.Sprintf("%s::%s::%s", c.cfg.PackageID, ModuleName, fn)
}

// BuildCreateVault describes a create_vault call. The clock object supplies
// the creation timestamp.
func (c *Client) BuildCreateVault() *Transaction {
	return &Transaction{
		Target:    c.target("create_vault"),
		Arguments: []Arg{objectArg(ClockObjectID)},
	}
}

// BuildStoreBlob describes appending a pointer: blob id bytes, payload kind,
// and the encryption nonce. The ledger assigns the index at execution time.
func (c *Client) BuildStoreBlob(vaultID string, blobID []byte, payloadKind uint8, nonce []byte) *Transaction {
	return &Transaction{
		Target: c.target("store_blob"),
		Arguments: []Arg{
			objectArg(vaultID),
			pureArg("vector<u8>", blobID),
			pureArg("u8", payloadKind),
			pureArg("vector<u8>", nonce),
			objectArg(ClockObjectID),
		},
	}
}

// BuildGrantAccess describes granting a read (scope 0) or read-write
// (scope 1) grant to grantee, expiring at expiresAt epoch millis (0 = never).
func (c *Client) BuildGrantAccess(vaultID, grantee string, scope uint8, expiresAt uint64) *Transaction {
	return &Transaction{
		Target: c.target("grant_access"),
		Arguments: []Arg{
			objectArg(vaultID),
			pureArg("address", grantee),
			pureArg("u8", scope),
			pureArg("u64", expiresAt),
			objectArg(ClockObjectID),
		},
	}
}

// BuildRevokeAccess describes removing a grantee's access.
func (c *Client) BuildRevokeAccess(vaultID, grantee string) *Transaction {
	return &Transaction{
		Target: c.target("revoke_access"),
		Arguments: []Arg{
			objectArg(vaultID),
			pureArg("address", grantee),
		},
	}
}

// BuildDeleteBlob describes removing the pointer at index. Indexes of other
// pointers are untouched; the vault count decrements.
func (c *Client) BuildDeleteBlob(vaultID string, index uint64) *Transaction {
	return &Transaction{
		Target: c.target("delete_blob"),
		Arguments: []Arg{
			objectArg(vaultID),
			pureArg("u64", index),
		},
	}
}
