package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/workspace-secretary/secretary-go/internal/classify"
	"github.com/workspace-secretary/secretary-go/internal/core"
	"github.com/workspace-secretary/secretary-go/internal/domain/model"
	"github.com/workspace-secretary/secretary-go/internal/mail"
)

// handleTriageExecute carries out an approved proposal: it re-reads the
// approval from the job row, loads the selected candidates, and applies
// the approved actions to each. Candidate ids in the approval that no
// longer resolve are skipped and reported, not fatal.
func (r *Runner) handleTriageExecute(ctx context.Context, job *model.Job) (err error) {
	approval, err := r.jobs.GetApproval(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("load approval: %w", err)
	}
	if approval == nil {
		return errors.New("job claimed for execution without an approval")
	}

	selected, missing, err := r.selectCandidates(ctx, job.ID, approval.Payload.CandidateIDs)
	if err != nil {
		return err
	}
	if missing > 0 {
		r.appendEvent(ctx, job.ID, model.EventLevelWarn,
			fmt.Sprintf("%d approved candidates no longer exist, skipping", missing), nil)
	}

	total := len(selected)
	processed := 0
	if progressErr := r.jobs.UpdateProgress(ctx, core.UpdateProgressParams{
		ID:            job.ID,
		Processed:     &processed,
		TotalEstimate: &total,
	}); progressErr != nil {
		return fmt.Errorf("set total estimate: %w", progressErr)
	}
	if total == 0 {
		r.appendEvent(ctx, job.ID, model.EventLevelInfo, "nothing to execute", nil)
		return nil
	}

	client, err := r.acquireMail(ctx)
	if err != nil {
		return err
	}
	defer func() { r.releaseMail(client, err) }()

	items := make([]workItem, 0, total)
	for _, cand := range selected {
		ref := model.ItemRef{UID: cand.UID, Folder: cand.Folder}
		items = append(items, workItem{
			ref: ref,
			fn: func(ctx context.Context) error {
				if execErr := r.executeCandidate(ctx, client, cand, approval.Payload.Actions); execErr != nil {
					return execErr
				}
				if decErr := r.candidates.SetDecision(ctx, cand.ID, model.DecisionExecuted); decErr != nil {
					r.logger.WarnContext(ctx, "candidate decision not recorded",
						"candidate_id", cand.ID, "error", decErr)
				}
				return nil
			},
		})
	}

	result, err := r.runBatch(ctx, job, items, nil)
	if err != nil {
		return err
	}

	data, _ := json.Marshal(map[string]any{
		"approved_by": approval.ApprovedBy,
		"executed":    result.Processed,
		"failed":      result.Failed,
		"skipped":     missing,
	})
	r.appendEvent(ctx, job.ID, model.EventLevelInfo,
		fmt.Sprintf("execution complete: %d candidates executed, %d failed", result.Processed, result.Failed),
		data)
	return nil
}

// selectCandidates resolves approved candidate ids against the job's
// stored candidates. Returns the resolved set and how many ids did not
// resolve.
func (r *Runner) selectCandidates(
	ctx context.Context,
	jobID string,
	ids []int64,
) ([]*model.Candidate, int, error) {
	all, err := r.candidates.List(ctx, jobID, model.CandidateFilter{})
	if err != nil {
		return nil, 0, fmt.Errorf("load candidates: %w", err)
	}

	byID := make(map[int64]*model.Candidate, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}

	var (
		selected []*model.Candidate
		missing  int
	)
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			missing++
			continue
		}
		selected = append(selected, c)
	}
	return selected, missing, nil
}

// executeCandidate applies the approved action set to one candidate's
// item. The candidate's category label backs the add_label action.
func (r *Runner) executeCandidate(
	ctx context.Context,
	client mail.Client,
	cand *model.Candidate,
	actions []string,
) error {
	ref := model.ItemRef{UID: cand.UID, Folder: cand.Folder}
	label := classify.CategoryLabels[classify.Category(cand.Category)]

	for _, action := range actions {
		if err := r.applyAction(ctx, client, action, actionTarget{
			Ref:   ref,
			Label: label,
		}); err != nil {
			return err
		}
	}
	return nil
}
