package downloads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/debrideck/debrideck/internal/clipboard"
	"github.com/debrideck/debrideck/internal/debrid"
	"github.com/debrideck/debrideck/internal/notify"
)

// ErrAction marks a failed user action (link retrieval or deletion).
// Action failures are scoped to the single invocation; they never touch
// the held list or other in-flight actions.
var ErrAction = errors.New("action failed")

// genericFailure is shown when the underlying error has no message.
const genericFailure = "Something went wrong"

// refreshTimeout bounds the background refresh after a delete.
const refreshTimeout = 60 * time.Second

// Dispatcher orchestrates the two remote mutations. Each invocation is
// a strict pending -> call -> outcome sequence; concurrent invocations
// on different downloads proceed independently.
type Dispatcher struct {
	client    debrid.Client
	creds     CredentialSource
	clipboard clipboard.Writer
	notifier  notify.Notifier
	service   *Service
	logger    zerolog.Logger
}

// NewDispatcher creates the action dispatcher.
func NewDispatcher(client debrid.Client, creds CredentialSource, cb clipboard.Writer, notifier notify.Notifier, service *Service, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		client:    client,
		creds:     creds,
		clipboard: cb,
		notifier:  notifier,
		service:   service,
		logger:    logger.With().Str("component", "dispatcher").Logger(),
	}
}

// RetrieveLink fetches a direct download link for a ready item and
// copies it to the clipboard. Callers must only offer this action for
// ready items. A single attempt, no retry.
func (d *Dispatcher) RetrieveLink(ctx context.Context, item debrid.TaggedDownload) (string, error) {
	toastID := d.notifier.Pending("Retrieving link for " + item.Name)

	cred, err := d.creds.Credential(ctx)
	if err == nil {
		var link string
		link, err = d.client.GetDirectLink(ctx, cred, item.Kind, item.ID)
		if err == nil {
			if cbErr := d.clipboard.Write(link); cbErr != nil {
				d.logger.Warn().Err(cbErr).Str("key", item.Key()).Msg("clipboard write failed")
				d.notifier.Failure(toastID, "Link retrieved but could not be copied")
				return link, nil
			}
			d.notifier.Success(toastID, "Link copied to clipboard")
			return link, nil
		}
	}

	d.logger.Error().Err(err).Str("key", item.Key()).Msg("link retrieval failed")
	d.notifier.Failure(toastID, failureMessage(err))
	return "", fmt.Errorf("%w: retrieve link: %w", ErrAction, err)
}

// DeleteDownload removes an item from the service. On success a full
// refresh is triggered in the background; the list reflects the
// deletion only once that refresh completes. There is no optimistic
// local removal.
func (d *Dispatcher) DeleteDownload(ctx context.Context, item debrid.TaggedDownload) error {
	toastID := d.notifier.Pending("Deleting " + item.Name)

	cred, err := d.creds.Credential(ctx)
	if err == nil {
		err = d.client.DeleteDownload(ctx, cred, item.Kind, item.ID)
	}
	if err != nil {
		d.logger.Error().Err(err).Str("key", item.Key()).Msg("delete failed")
		d.notifier.Failure(toastID, failureMessage(err))
		return fmt.Errorf("%w: delete: %w", ErrAction, err)
	}

	d.notifier.Success(toastID, "Deleted "+item.Name)

	go func() {
		refreshCtx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		if err := d.service.Refresh(refreshCtx); err != nil {
			d.logger.Warn().Err(err).Msg("post-delete refresh failed")
		}
	}()

	return nil
}

func failureMessage(err error) string {
	if err == nil || err.Error() == "" {
		return genericFailure
	}
	return err.Error()
}
