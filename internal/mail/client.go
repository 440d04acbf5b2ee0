// Package mail defines the mailbox protocol port the job executors
// mutate through, plus a bounded connection pool. Mailbox servers cap
// concurrent sessions per account, so every remote call goes through a
// pooled client.
package mail

import (
	"context"
	"errors"
)

// Sentinel errors returned by Client implementations.
var (
	// ErrNotFound indicates the item no longer exists on the server,
	// typically because another client moved or deleted it.
	ErrNotFound = errors.New("mail: message not found")
	// ErrConflict indicates the server rejected the mutation because
	// the item changed underneath us.
	ErrConflict = errors.New("mail: message state conflict")
)

// Client is one live session against the remote mailbox. Clients are
// not safe for concurrent use; obtain one from a Pool per worker.
type Client interface {
	// MarkRead sets the read flag on a message.
	MarkRead(ctx context.Context, uid int, folder string) error
	// MarkUnread clears the read flag on a message.
	MarkUnread(ctx context.Context, uid int, folder string) error
	// Move relocates a message to the destination folder. The server
	// assigns a new uid in the destination; callers treat the old
	// (uid, folder) pair as gone.
	Move(ctx context.Context, uid int, folder, destination string) error
	// AddLabels attaches labels (keywords) to a message.
	AddLabels(ctx context.Context, uid int, folder string, labels []string) error
	// RemoveLabels detaches labels from a message.
	RemoveLabels(ctx context.Context, uid int, folder string, labels []string) error
	// ListUnread fetches unread message summaries from a folder.
	ListUnread(ctx context.Context, folder string, limit int) ([]MessageSummary, error)
	// Close tears down the session.
	Close() error
}

// MessageSummary is the header-level view a sync pass fetches.
type MessageSummary struct {
	UID         int
	Folder      string
	MessageID   string
	Subject     string
	From        string
	To          string
	Cc          string
	DateUnix    int64
	BodyPreview string
	Unread      bool
	Labels      []string
}

// Factory opens a new Client session.
type Factory func(ctx context.Context) (Client, error)
