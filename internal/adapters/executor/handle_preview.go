package executor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/workspace-secretary/secretary-go/internal/core"
	"github.com/workspace-secretary/secretary-go/internal/domain/model"
)

const defaultPreviewLimit = 500

// handlePreview classifies one page of unread messages and stores the
// results as candidates for human review. The scan itself mutates
// nothing: until an approval lands, a preview job only reads.
func (r *Runner) handlePreview(ctx context.Context, job *model.Job) error {
	var payload model.TriagePreviewPayload
	if len(job.Payload) > 0 {
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("decode preview payload: %w", err)
		}
	}
	if payload.Folder == "" {
		payload.Folder = "INBOX"
	}
	if payload.Limit <= 0 {
		payload.Limit = defaultPreviewLimit
	}

	msgs, err := r.messages.SearchUnread(ctx, core.SearchMessagesParams{
		Folder: payload.Folder,
		Limit:  payload.Limit,
		Offset: payload.Offset,
	})
	if err != nil {
		return fmt.Errorf("search unread: %w", err)
	}

	total := len(msgs)
	if progressErr := r.jobs.UpdateProgress(ctx, core.UpdateProgressParams{
		ID:            job.ID,
		TotalEstimate: &total,
	}); progressErr != nil {
		return fmt.Errorf("set total estimate: %w", progressErr)
	}

	if total == 0 {
		r.appendEvent(ctx, job.ID, model.EventLevelInfo, "no unread messages to classify", nil)
		return nil
	}

	var (
		pending    []*model.Candidate
		byCategory = map[string]int{}
		highCount  int
	)
	items := make([]workItem, 0, total)
	for _, msg := range msgs {
		items = append(items, workItem{
			ref: msg.Ref(),
			fn: func(ctx context.Context) error {
				cl, clErr := r.classifier.Classify(ctx, msg)
				if clErr != nil {
					return clErr
				}
				cand, convErr := cl.ToCandidate(msg)
				if convErr != nil {
					return convErr
				}
				pending = append(pending, cand)
				byCategory[cand.Category]++
				if cand.Confidence >= model.HighConfidence {
					highCount++
				}
				return nil
			},
		})
	}

	// Candidates land per chunk, so a crash or cancellation mid-scan
	// keeps everything classified so far.
	flush := func(ctx context.Context) error {
		if len(pending) == 0 {
			return nil
		}
		if _, insertErr := r.candidates.InsertBatch(ctx, job.ID, pending); insertErr != nil {
			return fmt.Errorf("store candidates: %w", insertErr)
		}
		pending = pending[:0]
		return nil
	}

	result, batchErr := r.runBatch(ctx, job, items, flush)
	if batchErr != nil {
		return batchErr
	}

	hasMore := len(msgs) == payload.Limit
	summary := map[string]any{
		"folder":          payload.Folder,
		"total_processed": result.Processed,
		"failed":          result.Failed,
		"high_confidence": highCount,
		"needs_review":    result.Processed - highCount,
		"by_category":     byCategory,
		"has_more":        hasMore,
	}
	if hasMore {
		summary["next_offset"] = payload.Offset + len(msgs)
	}
	data, _ := json.Marshal(summary)
	r.appendEvent(ctx, job.ID, model.EventLevelInfo,
		fmt.Sprintf("preview complete: %d classified, %d high confidence, awaiting approval",
			result.Processed, highCount), data)
	return nil
}
