package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/workspace-secretary/secretary-go/internal/core"
	"github.com/workspace-secretary/secretary-go/internal/domain/model"
	"github.com/workspace-secretary/secretary-go/internal/mail"
)

// syncFetchLimit caps how many unread summaries one sync pass pulls
// per folder.
const syncFetchLimit = 500

// handleSync refreshes the local message cache from the remote mailbox.
func (r *Runner) handleSync(ctx context.Context, job *model.Job) (err error) {
	var payload model.SyncPayload
	if len(job.Payload) > 0 {
		if decodeErr := json.Unmarshal(job.Payload, &payload); decodeErr != nil {
			return fmt.Errorf("decode sync payload: %w", decodeErr)
		}
	}
	folders := payload.Folders
	if len(folders) == 0 {
		folders = []string{"INBOX"}
	}

	client, err := r.acquireMail(ctx)
	if err != nil {
		return err
	}
	defer func() { r.releaseMail(client, err) }()

	var items []workItem
	for _, folder := range folders {
		summaries, listErr := client.ListUnread(ctx, folder, syncFetchLimit)
		if listErr != nil {
			return fmt.Errorf("list unread in %s: %w", folder, listErr)
		}
		for _, summary := range summaries {
			msg := summaryToMessage(summary)
			items = append(items, workItem{
				ref: msg.Ref(),
				fn: func(ctx context.Context) error {
					return r.messages.Upsert(ctx, msg)
				},
			})
		}
	}

	total := len(items)
	if progressErr := r.jobs.UpdateProgress(ctx, core.UpdateProgressParams{
		ID:            job.ID,
		TotalEstimate: &total,
	}); progressErr != nil {
		return fmt.Errorf("set total estimate: %w", progressErr)
	}

	result, err := r.runBatch(ctx, job, items, nil)
	if err != nil {
		return err
	}

	data, _ := json.Marshal(map[string]any{
		"folders":   folders,
		"synced":    result.Processed,
		"failed":    result.Failed,
		"fetch_cap": syncFetchLimit,
	})
	r.appendEvent(ctx, job.ID, model.EventLevelInfo,
		fmt.Sprintf("sync complete: %d messages across %d folders", result.Processed, len(folders)),
		data)
	return nil
}

func summaryToMessage(s mail.MessageSummary) *model.Message {
	msg := &model.Message{
		UID:      s.UID,
		Folder:   s.Folder,
		IsUnread: s.Unread,
		Labels:   append([]string(nil), s.Labels...),
	}
	msg.MessageID = optional(s.MessageID)
	msg.Subject = optional(s.Subject)
	msg.FromAddr = optional(s.From)
	msg.ToAddr = optional(s.To)
	msg.CcAddr = optional(s.Cc)
	msg.BodyPreview = optional(s.BodyPreview)
	if s.DateUnix > 0 {
		date := time.Unix(s.DateUnix, 0).UTC()
		msg.Date = &date
	}
	return msg
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
