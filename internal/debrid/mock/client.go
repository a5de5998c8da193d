// Package mock provides an in-memory debrid client for tests and
// developer mode.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/debrideck/debrideck/internal/debrid"
)

var _ debrid.Client = (*Client)(nil)

// Client is an in-memory implementation of debrid.Client. Items are
// held per collection; errors can be injected per operation.
type Client struct {
	mu    sync.Mutex
	items map[debrid.Kind][]debrid.Download
	links map[string]string // "<kind>:<id>" -> direct link

	// Injectable failures. A nil value means the operation succeeds.
	ListErr   map[debrid.Kind]error
	LinkErr   error
	DeleteErr error

	// Call counters for assertions.
	ListCalls   int
	LinkCalls   int
	DeleteCalls int
}

// New creates an empty mock client.
func New() *Client {
	return &Client{
		items:   make(map[debrid.Kind][]debrid.Download),
		links:   make(map[string]string),
		ListErr: make(map[debrid.Kind]error),
	}
}

// Seed replaces the items of one collection.
func (c *Client) Seed(kind debrid.Kind, items ...debrid.Download) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[kind] = append([]debrid.Download(nil), items...)
}

// SetLink registers the direct link returned for an item.
func (c *Client) SetLink(kind debrid.Kind, id int64, link string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.links[key(kind, id)] = link
}

// Test reports success unless torrent listing is set to fail.
func (c *Client) Test(ctx context.Context, cred debrid.Credential) error {
	_, err := c.ListDownloads(ctx, cred, debrid.KindTorrent)
	return err
}

// ListDownloads returns a copy of the collection's items.
func (c *Client) ListDownloads(ctx context.Context, cred debrid.Credential, kind debrid.Kind) ([]debrid.Download, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ListCalls++
	if err := c.ListErr[kind]; err != nil {
		return nil, err
	}
	return append([]debrid.Download(nil), c.items[kind]...), nil
}

// GetDirectLink returns the registered link for an item.
func (c *Client) GetDirectLink(ctx context.Context, cred debrid.Credential, kind debrid.Kind, id int64) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.LinkCalls++
	if c.LinkErr != nil {
		return "", c.LinkErr
	}
	link, ok := c.links[key(kind, id)]
	if !ok {
		return "", debrid.ErrNotFound
	}
	return link, nil
}

// DeleteDownload removes an item from the collection.
func (c *Client) DeleteDownload(ctx context.Context, cred debrid.Credential, kind debrid.Kind, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.DeleteCalls++
	if c.DeleteErr != nil {
		return c.DeleteErr
	}

	items := c.items[kind]
	for i, item := range items {
		if item.ID == id {
			c.items[kind] = append(items[:i:i], items[i+1:]...)
			return nil
		}
	}
	return debrid.ErrNotFound
}

func key(kind debrid.Kind, id int64) string {
	return fmt.Sprintf("%s:%d", kind, id)
}
