package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
)

const pageLimit = 50

type Config struct {
	PackageID string
	Network   string
	Transport Transport
	Logger    *log.Logger
}

func (c *Config) setDefaults() {
	if c.Network == "" {
		c.Network = "testnet"
	}
}

// Client wraps the fullnode RPC surface the core needs: vault and pointer
// reads plus transaction lookups. All methods are read-only; mutations go
// through the transaction builders in tx.go.
type Client struct {
	cfg Config
}

func NewClient(cfg Config) (*Client, error) {
	cfg.setDefaults()
	if cfg.PackageID == "" {
		return nil, fmt.Errorf("ledger: PackageID required")
	}
	if cfg.Transport == nil {
		return nil, fmt.Errorf("ledger: Transport required")
	}
	return &Client{cfg: cfg}, nil
}

func (c *Client) Network() string   { return c.cfg.Network }
func (c *Client) PackageID() string { return c.cfg.PackageID }

func (c *Client) warnf(format string, args ...any) {
	if c.cfg.Logger != nil {
		c.cfg.Logger.Printf(format, args...)
	}
}

func (c *Client) vaultStructType() string {
	return fmt.Sprintf("%s::%s::DataVault", c.cfg.PackageID, ModuleName)
}

// ListVaultsOwnedBy returns every vault object owned by identity. The owner
// field is the queried identity itself; ownership is the query filter.
func (c *Client) ListVaultsOwnedBy(ctx context.Context, identity string) ([]Vault, error) {
	query := map[string]any{
		"filter":  map[string]any{"StructType": c.vaultStructType()},
		"options": map[string]any{"showContent": true},
	}

	var vaults []Vault
	var cursor *string
	for {
		raw, err := c.cfg.Transport.Call(ctx, "suix_getOwnedObjects",
			[]any{identity, query, cursor, pageLimit})
		if err != nil {
			return nil, err
		}
		var page pagedResult
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("%w: bad owned-objects page: %v", ErrLedgerUnavailable, err)
		}
		for _, item := range page.Data {
			var env objectEnvelope
			if err := json.Unmarshal(item, &env); err != nil || env.Data == nil {
				c.warnf("skipping unreadable owned object: %v", err)
				continue
			}
			v, err := parseVault(env.Data, identity)
			if err != nil {
				c.warnf("skipping malformed vault %s: %v", env.Data.ObjectID, err)
				continue
			}
			vaults = append(vaults, v)
		}
		if !page.HasNextPage || page.NextCursor == nil {
			return vaults, nil
		}
		cursor = page.NextCursor
	}
}

// GetVaultState fetches one vault by id, including its recorded owner.
func (c *Client) GetVaultState(ctx context.Context, vaultID string) (Vault, error) {
	raw, err := c.cfg.Transport.Call(ctx, "sui_getObject",
		[]any{vaultID, map[string]any{"showContent": true, "showOwner": true}})
	if err != nil {
		return Vault{}, err
	}
	var env objectEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Vault{}, fmt.Errorf("%w: bad object response: %v", ErrLedgerUnavailable, err)
	}
	if env.Data == nil || env.Data.Content == nil || env.Data.Content.DataType != "moveObject" {
		return Vault{}, ErrVaultNotFound
	}
	return parseVault(env.Data, ownerAddress(env.Data.Owner))
}

func parseVault(d *objectData, owner string) (Vault, error) {
	if d.Content == nil || d.Content.DataType != "moveObject" {
		return Vault{}, fmt.Errorf("not a move object")
	}
	var f vaultFields
	if err := json.Unmarshal(d.Content.Fields, &f); err != nil {
		return Vault{}, err
	}
	count, err := parseChainUint(f.BlobCount)
	if err != nil {
		return Vault{}, fmt.Errorf("bad blob_count %q: %v", f.BlobCount, err)
	}
	created, err := parseChainUint(f.CreatedAt)
	if err != nil {
		return Vault{}, fmt.Errorf("bad created_at %q: %v", f.CreatedAt, err)
	}
	return Vault{
		ID:           d.ObjectID,
		Owner:        owner,
		PointerCount: count,
		CreatedAt:    int64(created),
	}, nil
}

// ListPointers walks the vault's dynamic fields to the end of the cursor and
// returns the complete pointer set, deduplicated and sorted ascending by
// index. Individual records that fail to fetch or parse are skipped with a
// warning; one corrupt pointer must not abort the rest.
func (c *Client) ListPointers(ctx context.Context, vaultID string) ([]Pointer, error) {
	seen := make(map[uint64]bool)
	var pointers []Pointer

	var cursor *string
	for {
		raw, err := c.cfg.Transport.Call(ctx, "suix_getDynamicFields",
			[]any{vaultID, cursor, pageLimit})
		if err != nil {
			return nil, err
		}
		var page pagedResult
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("%w: bad dynamic-fields page: %v", ErrLedgerUnavailable, err)
		}
		for _, item := range page.Data {
			var entry dynamicFieldEntry
			if err := json.Unmarshal(item, &entry); err != nil {
				c.warnf("skipping unreadable dynamic field on %s: %v", vaultID, err)
				continue
			}
			if !strings.Contains(entry.Name.Type, "BlobKey") {
				continue
			}
			p, err := c.fetchPointer(ctx, vaultID, entry.Name)
			if err != nil {
				c.warnf("skipping pointer on %s: %v", vaultID, err)
				continue
			}
			if seen[p.Index] {
				continue
			}
			seen[p.Index] = true
			pointers = append(pointers, p)
		}
		if !page.HasNextPage || page.NextCursor == nil {
			break
		}
		cursor = page.NextCursor
	}

	sort.Slice(pointers, func(i, j int) bool { return pointers[i].Index < pointers[j].Index })
	return pointers, nil
}

// GetPointer fetches a single pointer by index.
func (c *Client) GetPointer(ctx context.Context, vaultID string, index uint64) (Pointer, error) {
	name := dynamicFieldName{
		Type: fmt.Sprintf("%s::%s::BlobKey", c.cfg.PackageID, ModuleName),
	}
	name.Value, _ = json.Marshal(map[string]string{"index": fmt.Sprintf("%d", index)})
	p, err := c.fetchPointer(ctx, vaultID, name)
	if err != nil {
		return Pointer{}, err
	}
	return p, nil
}

func (c *Client) fetchPointer(ctx context.Context, vaultID string, name dynamicFieldName) (Pointer, error) {
	raw, err := c.cfg.Transport.Call(ctx, "suix_getDynamicFieldObject", []any{vaultID, name})
	if err != nil {
		return Pointer{}, err
	}
	var env objectEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Pointer{}, fmt.Errorf("bad dynamic field object: %v", err)
	}
	if env.Data == nil || env.Data.Content == nil || env.Data.Content.DataType != "moveObject" {
		return Pointer{}, ErrPointerNotFound
	}
	var f blobRefFields
	if err := json.Unmarshal(env.Data.Content.Fields, &f); err != nil {
		return Pointer{}, fmt.Errorf("bad blob ref fields: %v", err)
	}
	index, err := parseChainUint(f.Name.Fields.Index)
	if err != nil {
		return Pointer{}, fmt.Errorf("bad index %q: %v", f.Name.Fields.Index, err)
	}
	kind, err := parseChainUint(f.Value.Fields.BlobType)
	if err != nil || kind > 255 {
		return Pointer{}, fmt.Errorf("bad blob_type %q", f.Value.Fields.BlobType)
	}
	created, err := parseChainUint(f.Value.Fields.CreatedAt)
	if err != nil {
		return Pointer{}, fmt.Errorf("bad created_at %q", f.Value.Fields.CreatedAt)
	}
	if len(f.Value.Fields.BlobID) == 0 {
		return Pointer{}, fmt.Errorf("empty blob_id at index %d", index)
	}
	return Pointer{
		Index:       index,
		BlobID:      string(byteVec(f.Value.Fields.BlobID)),
		PayloadKind: uint8(kind),
		Nonce:       byteVec(f.Value.Fields.IV),
		CreatedAt:   int64(created),
	}, nil
}

type txEnvelope struct {
	Digest  string `json:"digest"`
	Effects *struct {
		Status struct {
			Status string `json:"status"`
		} `json:"status"`
	} `json:"effects"`
	Events []struct {
		Type       string          `json:"type"`
		ParsedJSON json.RawMessage `json:"parsedJson"`
	} `json:"events"`
}

// GetTransaction fetches a transaction block with effects and events, and
// extracts the pointer-stored event when present.
func (c *Client) GetTransaction(ctx context.Context, digest string) (TransactionResult, error) {
	raw, err := c.cfg.Transport.Call(ctx, "sui_getTransactionBlock",
		[]any{digest, map[string]any{"showEvents": true, "showEffects": true}})
	if err != nil {
		return TransactionResult{}, err
	}
	var env txEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return TransactionResult{}, fmt.Errorf("%w: bad transaction response: %v", ErrLedgerUnavailable, err)
	}
	if env.Digest == "" && env.Effects == nil {
		return TransactionResult{}, ErrTransactionNotFound
	}

	res := TransactionResult{Digest: env.Digest}
	if env.Effects != nil {
		res.Status = env.Effects.Status.Status
		res.Success = res.Status == "success"
	}
	for _, ev := range env.Events {
		if !strings.Contains(ev.Type, "BlobStored") {
			continue
		}
		var payload struct {
			VaultID string `json:"vault_id"`
			Index   string `json:"index"`
		}
		if err := json.Unmarshal(ev.ParsedJSON, &payload); err != nil {
			c.warnf("unparseable BlobStored event in %s: %v", digest, err)
			continue
		}
		index, err := parseChainUint(payload.Index)
		if err != nil {
			c.warnf("bad event index %q in %s", payload.Index, digest)
			continue
		}
		res.StoredEvent = &PointerStoredEvent{VaultID: payload.VaultID, Index: index}
		break
	}
	return res, nil
}
