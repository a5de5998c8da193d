// Package torbox implements the debrid.Client interface against a
// TorBox-style REST API.
package torbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/debrideck/debrideck/internal/debrid"
)

const (
	// DefaultBaseURL is the hosted API endpoint.
	DefaultBaseURL = "https://api.torbox.app"

	defaultTimeout = 30 * time.Second

	apiPrefix = "/v1/api"
)

var _ debrid.Client = (*Client)(nil)

// Config holds the configuration for a TorBox client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the TorBox REST API. The API credential is supplied
// per call, never stored on the client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new TorBox client.
func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// envelope is the common TorBox response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Detail  string          `json:"detail"`
	Data    json.RawMessage `json:"data"`
}

// wireDownload is a record as returned by the mylist endpoints.
type wireDownload struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Size             int64   `json:"size"`
	Progress         float64 `json:"progress"`
	DownloadState    string  `json:"download_state"`
	DownloadPresent  bool    `json:"download_present"`
	DownloadFinished bool    `json:"download_finished"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
	Hash             string  `json:"hash,omitempty"`
	DownloadSpeed    int64   `json:"download_speed,omitempty"`
}

// collectionPath returns the API path segment for a collection.
func collectionPath(kind debrid.Kind) string {
	switch kind {
	case debrid.KindTorrent:
		return "torrents"
	case debrid.KindWeb:
		return "webdl"
	case debrid.KindUsenet:
		return "usenet"
	default:
		return ""
	}
}

// controlEndpoint returns the mutation endpoint for a collection.
func controlEndpoint(kind debrid.Kind) string {
	switch kind {
	case debrid.KindTorrent:
		return "controltorrent"
	case debrid.KindWeb:
		return "controlwebdownload"
	case debrid.KindUsenet:
		return "controlusenetdownload"
	default:
		return ""
	}
}

// idParam returns the query/body parameter name carrying the item id.
func idParam(kind debrid.Kind) string {
	switch kind {
	case debrid.KindTorrent:
		return "torrent_id"
	case debrid.KindWeb:
		return "web_id"
	case debrid.KindUsenet:
		return "usenet_id"
	default:
		return ""
	}
}

// Test verifies the credential by listing the torrent collection.
func (c *Client) Test(ctx context.Context, cred debrid.Credential) error {
	_, err := c.ListDownloads(ctx, cred, debrid.KindTorrent)
	return err
}

// ListDownloads returns all records of one collection.
func (c *Client) ListDownloads(ctx context.Context, cred debrid.Credential, kind debrid.Kind) ([]debrid.Download, error) {
	endpoint := fmt.Sprintf("%s%s/%s/mylist", c.baseURL, apiPrefix, collectionPath(kind))

	env, err := c.do(ctx, http.MethodGet, endpoint, cred, nil)
	if err != nil {
		return nil, err
	}

	var records []wireDownload
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, &records); err != nil {
			return nil, fmt.Errorf("failed to decode %s list: %w", kind, err)
		}
	}

	downloads := make([]debrid.Download, 0, len(records))
	for _, r := range records {
		downloads = append(downloads, debrid.Download{
			ID:               r.ID,
			Name:             r.Name,
			Size:             r.Size,
			Progress:         r.Progress,
			DownloadState:    r.DownloadState,
			DownloadPresent:  r.DownloadPresent,
			DownloadFinished: r.DownloadFinished,
			CreatedAt:        parseTime(r.CreatedAt),
			UpdatedAt:        parseTime(r.UpdatedAt),
			Hash:             r.Hash,
			DownloadSpeed:    r.DownloadSpeed,
		})
	}

	return downloads, nil
}

// GetDirectLink requests a direct download URL for an item. The API
// takes the credential as a query token on this endpoint.
func (c *Client) GetDirectLink(ctx context.Context, cred debrid.Credential, kind debrid.Kind, id int64) (string, error) {
	q := url.Values{}
	q.Set("token", string(cred))
	q.Set(idParam(kind), strconv.FormatInt(id, 10))

	endpoint := fmt.Sprintf("%s%s/%s/requestdl?%s", c.baseURL, apiPrefix, collectionPath(kind), q.Encode())

	env, err := c.do(ctx, http.MethodGet, endpoint, cred, nil)
	if err != nil {
		return "", err
	}

	var link string
	if err := json.Unmarshal(env.Data, &link); err != nil {
		return "", fmt.Errorf("failed to decode direct link: %w", err)
	}
	if link == "" {
		return "", fmt.Errorf("empty direct link in response")
	}

	return link, nil
}

// DeleteDownload removes an item from the service.
func (c *Client) DeleteDownload(ctx context.Context, cred debrid.Credential, kind debrid.Kind, id int64) error {
	body := map[string]any{
		idParam(kind): id,
		"operation":   "delete",
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s%s/%s/%s", c.baseURL, apiPrefix, collectionPath(kind), controlEndpoint(kind))

	_, err = c.do(ctx, http.MethodPost, endpoint, cred, payload)
	return err
}

// do issues a request and unwraps the response envelope.
func (c *Client) do(ctx context.Context, method, endpoint string, cred debrid.Credential, payload []byte) (*envelope, error) {
	var body io.Reader = http.NoBody
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+string(cred))
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, debrid.ErrAuthFailed
	case http.StatusNotFound:
		return nil, debrid.ErrNotFound
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var env envelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err == nil && env.Error != "" {
			return nil, mapAPIError(env)
		}
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !env.Success {
		return nil, mapAPIError(env)
	}

	return &env, nil
}

// mapAPIError converts an envelope failure to a client error.
func mapAPIError(env envelope) error {
	switch env.Error {
	case "BAD_TOKEN", "AUTH_ERROR", "OAUTH_VERIFICATION_ERROR":
		return debrid.ErrAuthFailed
	case "NOT_FOUND", "DATABASE_ERROR":
		return debrid.ErrNotFound
	case "DOWNLOAD_NOT_READY":
		return debrid.ErrNotReady
	}
	if env.Detail != "" {
		return fmt.Errorf("api error %s: %s", env.Error, env.Detail)
	}
	return fmt.Errorf("api error %s", env.Error)
}

// parseTime accepts the timestamp shapes the API has been seen to emit.
func parseTime(s string) time.Time {
	for _, layout := range []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
