package model

import "time"

// Message is the locally cached snapshot of one mailbox item. The
// preview scan reads from this cache instead of re-fetching over the
// mail protocol, and mutation jobs keep it in sync after each applied
// action.
type Message struct {
	UID         int        `json:"uid"          db:"uid"`
	Folder      string     `json:"folder"       db:"folder"`
	MessageID   *string    `json:"message_id,omitempty"   db:"message_id"`
	Subject     *string    `json:"subject,omitempty"      db:"subject"`
	FromAddr    *string    `json:"from_addr,omitempty"    db:"from_addr"`
	ToAddr      *string    `json:"to_addr,omitempty"      db:"to_addr"`
	CcAddr      *string    `json:"cc_addr,omitempty"      db:"cc_addr"`
	Date        *time.Time `json:"date,omitempty"         db:"date"`
	BodyPreview *string    `json:"body_preview,omitempty" db:"body_preview"`
	IsUnread    bool       `json:"is_unread"    db:"is_unread"`
	Labels      []string   `json:"labels,omitempty" db:"labels"`
}

// Ref returns the item identifier for this message.
func (m *Message) Ref() ItemRef {
	return ItemRef{UID: m.UID, Folder: m.Folder}
}
