package downloads

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/debrideck/debrideck/internal/debrid"
)

// ErrFetch marks a failed aggregation pass. Any single collection
// failing fails the whole pass; no partial list is ever produced.
var ErrFetch = errors.New("failed to fetch downloads")

// Aggregator fetches the three remote collections concurrently and
// merges them into one recency-ordered sequence.
type Aggregator struct {
	client debrid.Client
	logger zerolog.Logger
}

// NewAggregator creates a new aggregator.
func NewAggregator(client debrid.Client, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		client: client,
		logger: logger.With().Str("component", "aggregator").Logger(),
	}
}

type fetchResult struct {
	kind  debrid.Kind
	items []debrid.Download
	err   error
}

// FetchAll fetches all collections and returns the merged sequence,
// sorted by created_at descending. The sort is stable: records with
// equal timestamps keep the torrent, web, usenet concatenation order.
func (a *Aggregator) FetchAll(ctx context.Context, cred debrid.Credential) ([]debrid.TaggedDownload, error) {
	results := make(chan fetchResult, len(debrid.Kinds))

	for _, kind := range debrid.Kinds {
		go func(kind debrid.Kind) {
			items, err := a.client.ListDownloads(ctx, cred, kind)
			results <- fetchResult{kind: kind, items: items, err: err}
		}(kind)
	}

	byKind := make(map[debrid.Kind][]debrid.Download, len(debrid.Kinds))
	var fetchErr error
	for range debrid.Kinds {
		r := <-results
		if r.err != nil {
			if fetchErr == nil {
				fetchErr = fmt.Errorf("%w: %s collection: %w", ErrFetch, r.kind, r.err)
			}
			continue
		}
		byKind[r.kind] = r.items
	}
	if fetchErr != nil {
		return nil, fetchErr
	}

	merged := make([]debrid.TaggedDownload, 0, len(byKind[debrid.KindTorrent])+len(byKind[debrid.KindWeb])+len(byKind[debrid.KindUsenet]))
	for _, kind := range debrid.Kinds {
		for _, d := range byKind[kind] {
			merged = append(merged, debrid.TaggedDownload{Kind: kind, Download: d})
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})

	a.logger.Debug().
		Int("torrents", len(byKind[debrid.KindTorrent])).
		Int("web", len(byKind[debrid.KindWeb])).
		Int("usenet", len(byKind[debrid.KindUsenet])).
		Msg("aggregated downloads")

	return merged, nil
}
