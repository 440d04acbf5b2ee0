package executor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/workspace-secretary/secretary-go/internal/core"
	"github.com/workspace-secretary/secretary-go/internal/domain/model"
	"github.com/workspace-secretary/secretary-go/internal/mail"
)

// handleTriageApply applies pre-classified labels and actions. Label
// changes always apply; destructive actions (mark_read, archive, move)
// are gated on high confidence plus the payload's auto-apply flag.
func (r *Runner) handleTriageApply(ctx context.Context, job *model.Job) (err error) {
	var payload model.TriageApplyPayload
	if decodeErr := json.Unmarshal(job.Payload, &payload); decodeErr != nil {
		return fmt.Errorf("decode triage apply payload: %w", decodeErr)
	}
	autoApply := payload.AutoApply()

	total := len(payload.Items)
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

	var skippedActions int
	items := make([]workItem, 0, total)
	for _, item := range payload.Items {
		ref := model.ItemRef{UID: item.UID, Folder: item.Folder}
		if ref.Folder == "" {
			ref.Folder = "INBOX"
		}
		items = append(items, workItem{
			ref: ref,
			fn: func(ctx context.Context) error {
				skipped, applyErr := r.applyTriageItem(ctx, client, triageItemParams{
					Ref:       ref,
					Item:      item,
					AutoApply: autoApply,
				})
				skippedActions += skipped
				return applyErr
			},
		})
	}

	result, err := r.runBatch(ctx, job, items, nil)
	if err != nil {
		return err
	}

	data, _ := json.Marshal(map[string]any{
		"applied":         result.Processed,
		"failed":          result.Failed,
		"skipped_actions": skippedActions,
		"auto_apply":      autoApply,
	})
	r.appendEvent(ctx, job.ID, model.EventLevelInfo,
		fmt.Sprintf("triage apply complete: %d items, %d failed", result.Processed, result.Failed),
		data)
	return nil
}

type triageItemParams struct {
	Ref       model.ItemRef
	Item      model.TriageApplyItem
	AutoApply bool
}

// applyTriageItem applies one item's labels and gated actions. Returns
// how many actions were withheld for lacking confidence.
func (r *Runner) applyTriageItem(
	ctx context.Context,
	client mail.Client,
	params triageItemParams,
) (skipped int, err error) {
	item := params.Item
	ref := params.Ref

	if item.Label != "" {
		if err := r.applyAction(ctx, client, model.ActionAddLabel, actionTarget{
			Ref: ref, Label: item.Label,
		}); err != nil {
			return skipped, err
		}
	}
	if item.RemoveLabel != "" {
		if err := r.applyAction(ctx, client, model.ActionRemoveLabel, actionTarget{
			Ref: ref, Label: item.RemoveLabel,
		}); err != nil {
			return skipped, err
		}
	}

	confident := params.AutoApply && item.Confidence >= model.HighConfidence
	for _, action := range item.Actions {
		if action == model.ActionAddLabel || action == model.ActionRemoveLabel {
			continue // handled above via the item's label fields
		}
		if !confident {
			skipped++
			continue
		}
		if err := r.applyAction(ctx, client, action, actionTarget{Ref: ref}); err != nil {
			return skipped, err
		}
	}
	return skipped, nil
}
