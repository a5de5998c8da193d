package downloads

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/debrideck/debrideck/internal/clipboard"
	"github.com/debrideck/debrideck/internal/debrid"
	"github.com/debrideck/debrideck/internal/debrid/mock"
	"github.com/debrideck/debrideck/internal/notify"
	"github.com/debrideck/debrideck/internal/testutil"
)

type recordedToast struct {
	id       string
	severity notify.Severity
	message  string
}

// recorderNotifier captures the toast sequence of an action.
type recorderNotifier struct {
	mu     sync.Mutex
	next   int
	toasts []recordedToast
}

func (r *recorderNotifier) Pending(msg string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	id := fmt.Sprintf("toast-%d", r.next)
	r.toasts = append(r.toasts, recordedToast{id: id, severity: notify.SeverityPending, message: msg})
	return id
}

func (r *recorderNotifier) Success(id, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, recordedToast{id: id, severity: notify.SeveritySuccess, message: msg})
}

func (r *recorderNotifier) Failure(id, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, recordedToast{id: id, severity: notify.SeverityFailure, message: msg})
}

func (r *recorderNotifier) sequence() []recordedToast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedToast(nil), r.toasts...)
}

func newTestDispatcher(t *testing.T, client debrid.Client) (*Dispatcher, *Service, *recorderNotifier, *clipboard.Memory) {
	t.Helper()
	logger := testutil.NewTestLogger(t)
	svc := newTestService(t, client, &recorderHub{})
	notifier := &recorderNotifier{}
	cb := &clipboard.Memory{}
	d := NewDispatcher(client, StaticCredential("key"), cb, notifier, svc, logger)
	return d, svc, notifier, cb
}

func TestDispatcher_RetrieveLinkSuccess(t *testing.T) {
	client := mock.New()
	item := debrid.TaggedDownload{
		Kind:     debrid.KindTorrent,
		Download: debrid.Download{ID: 1, Name: "Ubuntu ISO", DownloadFinished: true},
	}
	client.SetLink(debrid.KindTorrent, 1, "https://cdn.example/dl/abc")

	d, _, notifier, cb := newTestDispatcher(t, client)

	link, err := d.RetrieveLink(context.Background(), item)
	if err != nil {
		t.Fatalf("RetrieveLink() error = %v", err)
	}
	if link != "https://cdn.example/dl/abc" {
		t.Errorf("link = %q", link)
	}
	if cb.Text() != link {
		t.Errorf("clipboard = %q, want %q", cb.Text(), link)
	}

	seq := notifier.sequence()
	if len(seq) != 2 {
		t.Fatalf("expected pending then success, got %d toasts", len(seq))
	}
	if seq[0].severity != notify.SeverityPending {
		t.Errorf("first toast = %s, want pending", seq[0].severity)
	}
	if seq[1].severity != notify.SeveritySuccess || seq[1].message != "Link copied to clipboard" {
		t.Errorf("second toast = %+v", seq[1])
	}
	if seq[1].id != seq[0].id {
		t.Error("outcome toast must replace the pending toast")
	}
}

func TestDispatcher_RetrieveLinkFailure(t *testing.T) {
	client := mock.New()
	client.LinkErr = errors.New("link generation failed")

	d, _, notifier, cb := newTestDispatcher(t, client)
	item := debrid.TaggedDownload{Kind: debrid.KindWeb, Download: debrid.Download{ID: 2, Name: "holiday.zip"}}

	link, err := d.RetrieveLink(context.Background(), item)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrAction) {
		t.Errorf("expected ErrAction, got %v", err)
	}
	if link != "" {
		t.Errorf("link = %q, want empty", link)
	}
	if cb.Text() != "" {
		t.Errorf("clipboard must stay empty, got %q", cb.Text())
	}

	seq := notifier.sequence()
	if len(seq) != 2 || seq[1].severity != notify.SeverityFailure {
		t.Fatalf("expected pending then failure, got %+v", seq)
	}
	if seq[1].message != "link generation failed" {
		t.Errorf("failure message = %q", seq[1].message)
	}
}

func TestDispatcher_RetrieveLinkClipboardFailure(t *testing.T) {
	// A clipboard failure after a successful remote call is not an
	// action failure: the link is still returned.
	client := mock.New()
	client.SetLink(debrid.KindTorrent, 1, "https://cdn.example/dl/abc")

	d, _, notifier, cb := newTestDispatcher(t, client)
	cb.Err = clipboard.ErrUnavailable

	item := debrid.TaggedDownload{Kind: debrid.KindTorrent, Download: debrid.Download{ID: 1, Name: "Ubuntu ISO"}}
	link, err := d.RetrieveLink(context.Background(), item)
	if err != nil {
		t.Fatalf("RetrieveLink() error = %v", err)
	}
	if link != "https://cdn.example/dl/abc" {
		t.Errorf("link = %q", link)
	}

	seq := notifier.sequence()
	if len(seq) != 2 || seq[1].severity != notify.SeverityFailure {
		t.Fatalf("expected pending then failure, got %+v", seq)
	}
	if seq[1].message != "Link retrieved but could not be copied" {
		t.Errorf("failure message = %q", seq[1].message)
	}
}

func TestDispatcher_DeleteTriggersRefresh(t *testing.T) {
	client := mock.New()
	client.Seed(debrid.KindTorrent,
		debrid.Download{ID: 1, Name: "doomed", CreatedAt: at(1)},
		debrid.Download{ID: 2, Name: "kept", CreatedAt: at(2)},
	)

	d, svc, notifier, _ := newTestDispatcher(t, client)
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	item, ok := svc.Item(debrid.KindTorrent, 1)
	if !ok {
		t.Fatal("seed item missing")
	}

	if err := d.DeleteDownload(context.Background(), item); err != nil {
		t.Fatalf("DeleteDownload() error = %v", err)
	}

	seq := notifier.sequence()
	if len(seq) != 2 || seq[1].severity != notify.SeveritySuccess {
		t.Fatalf("expected pending then success, got %+v", seq)
	}
	if seq[1].message != "Deleted doomed" {
		t.Errorf("success message = %q", seq[1].message)
	}

	// The deletion shows up only once the background refresh lands.
	deadline := time.After(5 * time.Second)
	for {
		if _, ok := svc.Item(debrid.KindTorrent, 1); !ok {
			break
		}
		select {
		case <-deadline:
			t.Fatal("deleted item still present after background refresh")
		case <-time.After(10 * time.Millisecond):
		}
	}
	if _, ok := svc.Item(debrid.KindTorrent, 2); !ok {
		t.Error("unrelated item lost during refresh")
	}
}

func TestDispatcher_DeleteFailureLeavesListUntouched(t *testing.T) {
	client := mock.New()
	client.Seed(debrid.KindUsenet, debrid.Download{ID: 5, Name: "post", CreatedAt: at(1)})

	d, svc, notifier, _ := newTestDispatcher(t, client)
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	client.DeleteErr = errors.New("remote rejected delete")
	item, _ := svc.Item(debrid.KindUsenet, 5)

	err := d.DeleteDownload(context.Background(), item)
	if !errors.Is(err, ErrAction) {
		t.Fatalf("expected ErrAction, got %v", err)
	}

	seq := notifier.sequence()
	if len(seq) != 2 || seq[1].severity != notify.SeverityFailure {
		t.Fatalf("expected pending then failure, got %+v", seq)
	}
	if _, ok := svc.Item(debrid.KindUsenet, 5); !ok {
		t.Error("failed delete must not remove the item")
	}
}

func TestFailureMessage(t *testing.T) {
	if got := failureMessage(errors.New("boom")); got != "boom" {
		t.Errorf("failureMessage = %q", got)
	}
	if got := failureMessage(nil); got != genericFailure {
		t.Errorf("failureMessage(nil) = %q, want %q", got, genericFailure)
	}
	if got := failureMessage(errors.New("")); got != genericFailure {
		t.Errorf("failureMessage(empty) = %q, want %q", got, genericFailure)
	}
}
