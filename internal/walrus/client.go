// Package walrus is the HTTP client for the Walrus decentralized blob
// network. Uploads go to a publisher endpoint, reads to an aggregator; both
// speak the plain /v1/blobs REST surface.
package walrus

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Azurboy/MindVault-VibeSui/internal/storage"
)

const (
	DefaultPublisherURL  = "https://publisher.walrus-testnet.walrus.space"
	DefaultAggregatorURL = "https://aggregator.walrus-testnet.walrus.space"
	DefaultEpochs        = 5
)

type Config struct {
	PublisherURL  string
	AggregatorURL string
	Epochs        int
	HTTPClient    *http.Client
}

func (c *Config) setDefaults() {
	if c.PublisherURL == "" {
		c.PublisherURL = DefaultPublisherURL
	}
	if c.AggregatorURL == "" {
		c.AggregatorURL = DefaultAggregatorURL
	}
	if c.Epochs <= 0 {
		c.Epochs = DefaultEpochs
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
}

// Client implements storage.BlobStore against a Walrus publisher/aggregator
// pair. It keeps no local state; every call is a network round-trip.
type Client struct {
	cfg Config
}

func NewClient(cfg Config) *Client {
	cfg.setDefaults()
	return &Client{cfg: cfg}
}

// putResponse covers both upload outcomes. A blob that already exists on the
// network comes back as alreadyCertified, which is the idempotent success
// case, not an error.
type putResponse struct {
	NewlyCreated *struct {
		BlobObject struct {
			BlobID  string `json:"blobId"`
			Storage struct {
				EndEpoch int64 `json:"endEpoch"`
			} `json:"storage"`
		} `json:"blobObject"`
	} `json:"newlyCreated"`
	AlreadyCertified *struct {
		BlobID   string `json:"blobId"`
		EndEpoch int64  `json:"endEpoch"`
	} `json:"alreadyCertified"`
}

// Put uploads data and returns the content-derived blob id the network
// assigned.
func (c *Client) Put(ctx context.Context, data []byte) (string, error) {
	id, _, err := c.PutWithExpiry(ctx, data)
	return id, err
}

// PutWithExpiry is Put plus the storage end epoch, for callers that surface
// expiry to the user.
func (c *Client) PutWithExpiry(ctx context.Context, data []byte) (string, int64, error) {
	u := fmt.Sprintf("%s/v1/blobs?epochs=%d", c.cfg.PublisherURL, c.cfg.Epochs)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(data))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", 0, fmt.Errorf("%w: publisher returned %d: %s",
			storage.ErrStorageUnavailable, resp.StatusCode, bytes.TrimSpace(body))
	}

	var out putResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", 0, fmt.Errorf("%w: bad publisher response: %v", storage.ErrStorageUnavailable, err)
	}
	switch {
	case out.NewlyCreated != nil:
		return out.NewlyCreated.BlobObject.BlobID, out.NewlyCreated.BlobObject.Storage.EndEpoch, nil
	case out.AlreadyCertified != nil:
		return out.AlreadyCertified.BlobID, out.AlreadyCertified.EndEpoch, nil
	default:
		return "", 0, errors.New("walrus: unexpected publisher response format")
	}
}

// Get downloads the exact bytes previously stored under id.
func (c *Client) Get(ctx context.Context, id string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.blobURL(id), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return io.ReadAll(resp.Body)
	case http.StatusNotFound:
		return nil, storage.ErrBlobNotFound
	default:
		return nil, fmt.Errorf("%w: aggregator returned %d", storage.ErrStorageUnavailable, resp.StatusCode)
	}
}

// Exists probes for a blob without downloading the body.
func (c *Client) Exists(ctx context.Context, id string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.blobURL(id), nil)
	if err != nil {
		return false, err
	}
	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("%w: aggregator returned %d", storage.ErrStorageUnavailable, resp.StatusCode)
	}
}

func (c *Client) blobURL(id string) string {
	return c.cfg.AggregatorURL + "/v1/blobs/" + url.PathEscape(id)
}
