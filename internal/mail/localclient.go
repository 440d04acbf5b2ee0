package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/workspace-secretary/secretary-go/internal/core"
	"github.com/workspace-secretary/secretary-go/internal/data"
)

// LocalClient is a Client backed by the local message cache instead of
// a remote mailbox session. It serves development mode and deployments
// where another process owns the remote sync: mutations land in the
// messages table and a separate agent reconciles them upstream.
type LocalClient struct {
	store *data.MessageRepo
}

// NewLocalClient creates a Client over the local message store.
func NewLocalClient(store *data.MessageRepo) *LocalClient {
	return &LocalClient{store: store}
}

// NewLocalFactory returns a Factory producing local-store clients.
func NewLocalFactory(store *data.MessageRepo) Factory {
	return func(_ context.Context) (Client, error) {
		return NewLocalClient(store), nil
	}
}

// MarkRead sets the read flag on a message.
func (c *LocalClient) MarkRead(ctx context.Context, uid int, folder string) error {
	return c.store.MarkRead(ctx, uid, folder)
}

// MarkUnread clears the read flag on a message.
func (c *LocalClient) MarkUnread(ctx context.Context, uid int, folder string) error {
	return c.store.MarkUnread(ctx, uid, folder)
}

// Move relocates a message to the destination folder.
func (c *LocalClient) Move(ctx context.Context, uid int, folder, destination string) error {
	err := c.store.Move(ctx, uid, folder, destination)
	if errors.Is(err, data.ErrMessageNotFound) {
		return fmt.Errorf("move %d in %s: %w", uid, folder, ErrNotFound)
	}
	return err
}

// AddLabels attaches labels to a message.
func (c *LocalClient) AddLabels(ctx context.Context, uid int, folder string, labels []string) error {
	for _, label := range labels {
		params := core.LabelParams{UID: uid, Folder: folder, Label: label}
		if err := c.store.AddLabel(ctx, params); err != nil {
			return err
		}
	}
	return nil
}

// RemoveLabels detaches labels from a message.
func (c *LocalClient) RemoveLabels(ctx context.Context, uid int, folder string, labels []string) error {
	for _, label := range labels {
		params := core.LabelParams{UID: uid, Folder: folder, Label: label}
		if err := c.store.RemoveLabel(ctx, params); err != nil {
			return err
		}
	}
	return nil
}

// ListUnread fetches unread message summaries from a folder.
func (c *LocalClient) ListUnread(ctx context.Context, folder string, limit int) ([]MessageSummary, error) {
	msgs, err := c.store.SearchUnread(ctx, core.SearchMessagesParams{Folder: folder, Limit: limit})
	if err != nil {
		return nil, err
	}

	summaries := make([]MessageSummary, 0, len(msgs))
	for _, m := range msgs {
		s := MessageSummary{
			UID:    m.UID,
			Folder: m.Folder,
			Unread: m.IsUnread,
			Labels: m.Labels,
		}
		if m.MessageID != nil {
			s.MessageID = *m.MessageID
		}
		if m.Subject != nil {
			s.Subject = *m.Subject
		}
		if m.FromAddr != nil {
			s.From = *m.FromAddr
		}
		if m.ToAddr != nil {
			s.To = *m.ToAddr
		}
		if m.CcAddr != nil {
			s.Cc = *m.CcAddr
		}
		if m.Date != nil {
			s.DateUnix = m.Date.Unix()
		}
		if m.BodyPreview != nil {
			s.BodyPreview = *m.BodyPreview
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// Close tears down the session. Local clients hold no connection state.
func (c *LocalClient) Close() error { return nil }
