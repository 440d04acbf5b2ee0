package executor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/workspace-secretary/secretary-go/internal/core"
	"github.com/workspace-secretary/secretary-go/internal/domain/model"
)

const (
	// batchChunkSize bounds how stale progress and the cancel flag can
	// get: both are re-checked between chunks.
	batchChunkSize = 10
	// summaryEveryChunks throttles the per-chunk summary events.
	summaryEveryChunks = 5
)

// batchResult is the tally of one batched pass over a job's items.
type batchResult struct {
	Processed int // items applied successfully
	Failed    int // items that errored and were skipped
}

// runBatch applies fn to each item in chunks, checking the cancel flag
// and persisting progress between chunks. A failing item is counted
// and skipped, never fatal. The optional onChunk hook runs after each
// chunk and before its progress write, so per-chunk output is durable
// by the time progress advances. Returns errCancelled when the job's
// cancel flag was observed; the partial tally is still valid.
func (r *Runner) runBatch(
	ctx context.Context,
	job *model.Job,
	items []workItem,
	onChunk func(ctx context.Context) error,
) (batchResult, error) {
	var result batchResult

	for chunkStart := 0; chunkStart < len(items); chunkStart += batchChunkSize {
		cancelled, err := r.jobs.IsCancelRequested(ctx, job.ID)
		if err != nil {
			return result, fmt.Errorf("check cancel flag: %w", err)
		}
		if cancelled {
			return result, errCancelled
		}

		chunkEnd := min(chunkStart+batchChunkSize, len(items))
		for _, item := range items[chunkStart:chunkEnd] {
			if applyErr := item.apply(ctx); applyErr != nil {
				result.Failed++
				r.appendEvent(ctx, job.ID, model.EventLevelWarn,
					fmt.Sprintf("item %s failed: %v", item.describe(), applyErr), nil)
				continue
			}
			result.Processed++
		}

		if onChunk != nil {
			if err := onChunk(ctx); err != nil {
				return result, err
			}
		}

		processed := result.Processed
		if err := r.jobs.UpdateProgress(ctx, core.UpdateProgressParams{
			ID:        job.ID,
			Processed: &processed,
		}); err != nil {
			return result, fmt.Errorf("update progress: %w", err)
		}
		r.invalidate(ctx, job.ID)

		chunkNum := chunkStart/batchChunkSize + 1
		if chunkNum%summaryEveryChunks == 0 {
			data, _ := json.Marshal(map[string]any{
				"processed": result.Processed,
				"failed":    result.Failed,
				"total":     len(items),
			})
			r.appendEvent(ctx, job.ID, model.EventLevelInfo,
				fmt.Sprintf("progress: %d/%d processed, %d failed",
					result.Processed, len(items), result.Failed), data)
		}
	}
	return result, nil
}

// workItem is one unit inside a batched job.
type workItem struct {
	ref model.ItemRef
	fn  func(ctx context.Context) error
}

func (w workItem) apply(ctx context.Context) error { return w.fn(ctx) }

func (w workItem) describe() string {
	return fmt.Sprintf("%s/%d", w.ref.Folder, w.ref.UID)
}
