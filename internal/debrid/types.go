// Package debrid defines the contract with the remote debrid download
// service: the three download collections, the records they return, and
// the operations DebriDeck invokes on them.
package debrid

import (
	"context"
	"errors"
	"strconv"
	"time"
)

// Common errors for debrid clients.
var (
	ErrAuthFailed = errors.New("authentication failed")
	ErrNotFound   = errors.New("download not found")
	ErrNotReady   = errors.New("download not ready")
)

// Kind identifies which of the three remote collections a download
// belongs to. IDs are only unique within a kind.
type Kind string

const (
	KindTorrent Kind = "torrent"
	KindWeb     Kind = "web"
	KindUsenet  Kind = "usenet"
)

// Kinds lists all collections in their canonical merge order.
var Kinds = []Kind{KindTorrent, KindWeb, KindUsenet}

// ParseKind validates a kind string from an API path or query.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindTorrent, KindWeb, KindUsenet:
		return Kind(s), true
	default:
		return "", false
	}
}

// Credential is the API key for the remote service. It is passed
// explicitly into every call rather than held by the client.
type Credential string

// Download is one record from a remote collection.
//
// Progress is expected in [0,1]; values >= 1 are treated as complete.
// DownloadState is an opaque status string from the service and is not
// interpreted here. Hash and DownloadSpeed are populated for torrents
// only and are preserved without being used downstream.
type Download struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Size             int64     `json:"size"`
	Progress         float64   `json:"progress"`
	DownloadState    string    `json:"download_state"`
	DownloadPresent  bool      `json:"download_present"`
	DownloadFinished bool      `json:"download_finished"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	Hash          string `json:"hash,omitempty"`
	DownloadSpeed int64  `json:"download_speed,omitempty"`
}

// TaggedDownload is a Download tagged with its source collection. This
// is the normalized entity the rest of the pipeline operates on.
type TaggedDownload struct {
	Kind Kind `json:"kind"`
	Download
}

// Key returns the UI identity for the download. IDs collide across
// kinds, so the pair is the only safe list key.
func (d TaggedDownload) Key() string {
	return string(d.Kind) + ":" + strconv.FormatInt(d.ID, 10)
}

// Client is the capability contract consumed from the remote service.
type Client interface {
	// Test verifies the credential against the service.
	Test(ctx context.Context, cred Credential) error

	// ListDownloads returns all records of one collection.
	ListDownloads(ctx context.Context, cred Credential, kind Kind) ([]Download, error)

	// GetDirectLink returns a direct download URL for a ready item.
	GetDirectLink(ctx context.Context, cred Credential, kind Kind, id int64) (string, error)

	// DeleteDownload removes an item from the service.
	DeleteDownload(ctx context.Context, cred Credential, kind Kind, id int64) error
}
