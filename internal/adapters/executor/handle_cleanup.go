package executor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/workspace-secretary/secretary-go/internal/core"
	"github.com/workspace-secretary/secretary-go/internal/domain/model"
)

// handleCleanup moves an explicit list of items out of their folders,
// optionally marking them read first. Every remote call is journaled.
func (r *Runner) handleCleanup(ctx context.Context, job *model.Job) (err error) {
	var payload model.BulkCleanupPayload
	if decodeErr := json.Unmarshal(job.Payload, &payload); decodeErr != nil {
		return fmt.Errorf("decode cleanup payload: %w", decodeErr)
	}
	destination := payload.Destination
	if destination == "" {
		destination = archiveFolder
	}
	markRead := payload.MarkRead != nil && *payload.MarkRead

	total := len(payload.UIDs)
	if progressErr := r.jobs.UpdateProgress(ctx, core.UpdateProgressParams{
		ID:            job.ID,
		TotalEstimate: &total,
	}); progressErr != nil {
		return fmt.Errorf("set total estimate: %w", progressErr)
	}

	client, err := r.acquireMail(ctx)
	if err != nil {
		return err
	}
	defer func() { r.releaseMail(client, err) }()

	items := make([]workItem, 0, total)
	for _, ref := range payload.UIDs {
		items = append(items, workItem{
			ref: ref,
			fn: func(ctx context.Context) error {
				if markRead {
					if readErr := r.applyAction(ctx, client, model.ActionMarkRead, actionTarget{Ref: ref}); readErr != nil {
						return readErr
					}
				}
				return r.applyAction(ctx, client, model.ActionMove, actionTarget{
					Ref:         ref,
					Destination: destination,
				})
			},
		})
	}

	result, err := r.runBatch(ctx, job, items, nil)
	if err != nil {
		return err
	}

	data, _ := json.Marshal(map[string]any{
		"destination": destination,
		"moved":       result.Processed,
		"failed":      result.Failed,
		"mark_read":   markRead,
	})
	r.appendEvent(ctx, job.ID, model.EventLevelInfo,
		fmt.Sprintf("cleanup complete: %d moved to %s, %d failed",
			result.Processed, destination, result.Failed), data)
	return nil
}
