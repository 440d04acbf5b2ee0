package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Mailbox mutation actions the engine knows how to apply.
const (
	ActionMarkRead    = "mark_read"
	ActionMarkUnread  = "mark_unread"
	ActionArchive     = "archive"
	ActionAddLabel    = "add_label"
	ActionRemoveLabel = "remove_label"
	ActionMove        = "move"
)

// ValidAction returns true for a known mutation action name.
func ValidAction(a string) bool {
	switch a {
	case ActionMarkRead, ActionMarkUnread, ActionArchive,
		ActionAddLabel, ActionRemoveLabel, ActionMove:
		return true
	}
	return false
}

// ItemRef identifies one mailbox item by uid and folder.
type ItemRef struct {
	UID    int    `json:"uid"`
	Folder string `json:"folder"`
}

// SyncPayload configures a mailbox_sync job. All fields are optional.
type SyncPayload struct {
	Folders []string `json:"folders,omitempty"`
}

// TriagePreviewPayload configures a triage_preview scan. Offset is an
// opaque continuation cursor from a previous scan page; Limit bounds
// one page so a large mailbox can be walked across independent jobs.
type TriagePreviewPayload struct {
	Folder string `json:"folder,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// BulkCleanupPayload configures a bulk_cleanup job.
type BulkCleanupPayload struct {
	UIDs        []ItemRef `json:"uids"`
	Destination string    `json:"destination,omitempty"`
	MarkRead    *bool     `json:"mark_read,omitempty"`
}

// TriageApplyItem is one item in a triage_apply payload.
type TriageApplyItem struct {
	UID         int      `json:"uid"`
	Folder      string   `json:"folder,omitempty"`
	Label       string   `json:"label,omitempty"`
	RemoveLabel string   `json:"remove_label,omitempty"`
	Actions     []string `json:"actions,omitempty"`
	Confidence  float64  `json:"confidence,omitempty"`
}

// TriageApplyPayload configures a triage_apply job.
type TriageApplyPayload struct {
	Items                  []TriageApplyItem `json:"items"`
	AutoApplyHighConfident *bool             `json:"auto_apply_high_confidence,omitempty"`
}

// AutoApply reports the auto_apply_high_confidence flag, defaulting to true.
func (p *TriageApplyPayload) AutoApply() bool {
	return p.AutoApplyHighConfident == nil || *p.AutoApplyHighConfident
}

// ValidatePayload checks that the payload decodes into the schema for
// the given job kind. The store persists payloads as opaque JSONB; the
// schema is enforced here at the boundary.
func ValidatePayload(kind JobKind, raw json.RawMessage) error {
	switch kind {
	case JobKindMailboxSync:
		var p SyncPayload
		return decodePayload(raw, &p, true)
	case JobKindTriagePreview:
		var p TriagePreviewPayload
		if err := decodePayload(raw, &p, true); err != nil {
			return err
		}
		if p.Limit < 0 || p.Offset < 0 {
			return errors.New("limit and offset must be non-negative")
		}
		return nil
	case JobKindBulkCleanup:
		var p BulkCleanupPayload
		if err := decodePayload(raw, &p, false); err != nil {
			return err
		}
		if len(p.UIDs) == 0 {
			return errors.New("uids is required")
		}
		return nil
	case JobKindTriageApply:
		var p TriageApplyPayload
		if err := decodePayload(raw, &p, false); err != nil {
			return err
		}
		if len(p.Items) == 0 {
			return errors.New("items is required")
		}
		for i := range p.Items {
			if p.Items[i].UID <= 0 {
				return fmt.Errorf("items[%d]: uid is required", i)
			}
			for _, a := range p.Items[i].Actions {
				if !ValidAction(a) {
					return fmt.Errorf("items[%d]: unknown action %q", i, a)
				}
			}
		}
		return nil
	}
	return fmt.Errorf("invalid job kind: %s", kind)
}

func decodePayload(raw json.RawMessage, dst any, optional bool) error {
	if len(raw) == 0 {
		if optional {
			return nil
		}
		return errors.New("payload is required")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
