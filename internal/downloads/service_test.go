package downloads

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/debrideck/debrideck/internal/debrid"
	"github.com/debrideck/debrideck/internal/debrid/mock"
	"github.com/debrideck/debrideck/internal/testutil"
)

type recordedEvent struct {
	event   string
	payload interface{}
}

type recorderHub struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recorderHub) Broadcast(event string, payload interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{event: event, payload: payload})
	return nil
}

func (r *recorderHub) byType(event string) []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []recordedEvent
	for _, e := range r.events {
		if e.event == event {
			out = append(out, e)
		}
	}
	return out
}

func newTestService(t *testing.T, client debrid.Client, hub *recorderHub) *Service {
	t.Helper()
	logger := testutil.NewTestLogger(t)
	agg := NewAggregator(client, logger)
	return NewService(agg, StaticCredential("key"), hub, logger)
}

func TestService_RefreshPopulatesList(t *testing.T) {
	client := mock.New()
	client.Seed(debrid.KindTorrent, debrid.Download{ID: 1, Name: "Ubuntu ISO", Size: 1536, DownloadFinished: true, CreatedAt: at(2)})
	client.Seed(debrid.KindWeb, debrid.Download{ID: 2, Name: "holiday.zip", Progress: 0.4, CreatedAt: at(3)})

	hub := &recorderHub{}
	svc := newTestService(t, client, hub)

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	result := svc.List("")
	if result.Total != 2 {
		t.Fatalf("Total = %d, want 2", result.Total)
	}
	if result.Error != "" {
		t.Errorf("Error = %q, want empty", result.Error)
	}
	if result.Items[0].Name != "holiday.zip" {
		t.Errorf("first item = %q, want holiday.zip", result.Items[0].Name)
	}
	if result.Items[0].Key != "web:2" {
		t.Errorf("Key = %q, want web:2", result.Items[0].Key)
	}
	if result.Items[0].CanRequestLink {
		t.Error("in-progress item should not offer link retrieval")
	}
	if !result.Items[1].CanRequestLink {
		t.Error("finished item should offer link retrieval")
	}
	if result.Items[1].SizeLabel != "1.5 KB" {
		t.Errorf("SizeLabel = %q, want 1.5 KB", result.Items[1].SizeLabel)
	}

	updated := hub.byType(EventUpdated)
	if len(updated) != 1 {
		t.Fatalf("expected 1 %s event, got %d", EventUpdated, len(updated))
	}
}

func TestService_FailedRefreshKeepsPreviousList(t *testing.T) {
	client := mock.New()
	client.Seed(debrid.KindTorrent, debrid.Download{ID: 1, Name: "kept", CreatedAt: at(1)})

	hub := &recorderHub{}
	svc := newTestService(t, client, hub)

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	client.ListErr[debrid.KindWeb] = errors.New("service unavailable")
	if err := svc.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}

	result := svc.List("")
	if result.Total != 1 || result.Items[0].Name != "kept" {
		t.Fatalf("stale list lost: %+v", result.Items)
	}
	if result.Error == "" {
		t.Error("expected error surfaced alongside stale list")
	}

	if got := hub.byType(EventError); len(got) != 1 {
		t.Errorf("expected 1 %s event, got %d", EventError, len(got))
	}

	// A subsequent successful refresh clears the error.
	delete(client.ListErr, debrid.KindWeb)
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if result := svc.List(""); result.Error != "" {
		t.Errorf("error not cleared after recovery: %q", result.Error)
	}
}

func TestService_ListFiltersByQuery(t *testing.T) {
	client := mock.New()
	client.Seed(debrid.KindTorrent, debrid.Download{ID: 1, Name: "Ubuntu ISO", CreatedAt: at(2)})
	client.Seed(debrid.KindWeb, debrid.Download{ID: 2, Name: "holiday.zip", CreatedAt: at(3)})

	svc := newTestService(t, client, &recorderHub{})
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	result := svc.List("ubuntu")
	if result.Total != 1 || result.Items[0].Name != "Ubuntu ISO" {
		t.Fatalf("unexpected filtered result: %+v", result.Items)
	}

	if result := svc.List("nothing-matches"); result.Total != 0 {
		t.Errorf("expected empty result, got %d items", result.Total)
	}
}

func TestService_Item(t *testing.T) {
	client := mock.New()
	client.Seed(debrid.KindUsenet, debrid.Download{ID: 9, Name: "post", CreatedAt: at(1)})

	svc := newTestService(t, client, &recorderHub{})
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	if _, ok := svc.Item(debrid.KindUsenet, 9); !ok {
		t.Error("expected to find usenet:9")
	}
	if _, ok := svc.Item(debrid.KindTorrent, 9); ok {
		t.Error("kind is part of the identity; torrent:9 must not match")
	}
	if _, ok := svc.Item(debrid.KindUsenet, 10); ok {
		t.Error("expected usenet:10 to be absent")
	}
}

// slowClient blocks its first refresh worth of list calls until released,
// then answers immediately.
type slowClient struct {
	calls    atomic.Int64
	started  chan struct{}
	release  chan struct{}
	onceOpen sync.Once
}

func (c *slowClient) Test(ctx context.Context, cred debrid.Credential) error { return nil }

func (c *slowClient) ListDownloads(ctx context.Context, cred debrid.Credential, kind debrid.Kind) ([]debrid.Download, error) {
	if c.calls.Add(1) <= int64(len(debrid.Kinds)) {
		c.onceOpen.Do(func() { close(c.started) })
		<-c.release
		if kind == debrid.KindTorrent {
			return []debrid.Download{{ID: 1, Name: "stale", CreatedAt: at(1)}}, nil
		}
		return nil, nil
	}
	if kind == debrid.KindTorrent {
		return []debrid.Download{{ID: 2, Name: "fresh", CreatedAt: at(2)}}, nil
	}
	return nil, nil
}

func (c *slowClient) GetDirectLink(ctx context.Context, cred debrid.Credential, kind debrid.Kind, id int64) (string, error) {
	return "", debrid.ErrNotFound
}

func (c *slowClient) DeleteDownload(ctx context.Context, cred debrid.Credential, kind debrid.Kind, id int64) error {
	return debrid.ErrNotFound
}

func TestService_SupersededRefreshIsDiscarded(t *testing.T) {
	client := &slowClient{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc := newTestService(t, client, &recorderHub{})

	done := make(chan error, 1)
	go func() {
		done <- svc.Refresh(context.Background())
	}()

	// The slow refresh has taken its sequence number once any of its
	// fetches is running.
	<-client.started

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("second Refresh() error = %v", err)
	}
	if result := svc.List(""); result.Total != 1 || result.Items[0].Name != "fresh" {
		t.Fatalf("unexpected list after fast refresh: %+v", result.Items)
	}

	close(client.release)
	if err := <-done; err != nil {
		t.Fatalf("superseded Refresh() error = %v", err)
	}

	// The stale result must not overwrite the newer one.
	if result := svc.List(""); result.Total != 1 || result.Items[0].Name != "fresh" {
		t.Fatalf("superseded refresh overwrote newer data: %+v", result.Items)
	}
}
