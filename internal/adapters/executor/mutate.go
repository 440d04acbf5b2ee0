package executor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/workspace-secretary/secretary-go/internal/core"
	"github.com/workspace-secretary/secretary-go/internal/domain/model"
	"github.com/workspace-secretary/secretary-go/internal/mail"
)

const archiveFolder = "Archive"

// journaledMutation wraps one remote mail call with its audit trail.
type journaledMutation struct {
	Ref      model.ItemRef
	Action   string
	Params   map[string]any
	PreState map[string]any
	Do       func(ctx context.Context) error
}

// journaled records the attempt before touching the mailbox and the
// outcome after. Journal bookkeeping failures after the mail call are
// logged, not fatal: the mutation already happened.
func (r *Runner) journaled(ctx context.Context, mut journaledMutation) error {
	params, err := json.Marshal(mut.Params)
	if err != nil {
		return fmt.Errorf("marshal mutation params: %w", err)
	}
	preState, err := json.Marshal(mut.PreState)
	if err != nil {
		return fmt.Errorf("marshal mutation pre-state: %w", err)
	}

	journalID, err := r.mutations.Begin(ctx, model.BeginMutationParams{
		UID:      mut.Ref.UID,
		Folder:   mut.Ref.Folder,
		Action:   mut.Action,
		Params:   params,
		PreState: preState,
	})
	if err != nil {
		return fmt.Errorf("journal mutation: %w", err)
	}

	doErr := mut.Do(ctx)

	finish := core.FinishMutationParams{ID: journalID, Status: model.MutationStatusApplied}
	if doErr != nil {
		finish.Status = model.MutationStatusFailed
		finish.Error = doErr.Error()
	}
	if finishErr := r.mutations.Finish(ctx, finish); finishErr != nil {
		r.logger.WarnContext(ctx, "mutation journal not finished",
			"journal_id", journalID, "error", finishErr)
	}
	return doErr
}

// actionTarget names the item an action applies to and its arguments.
type actionTarget struct {
	Ref         model.ItemRef
	Label       string // add_label / remove_label
	Destination string // move; archive always goes to the archive folder
}

// applyAction performs one mutation action against the remote mailbox,
// journaled, and mirrors it into the local message cache.
func (r *Runner) applyAction(ctx context.Context, client mail.Client, action string, t actionTarget) error {
	switch action {
	case model.ActionMarkRead:
		err := r.journaled(ctx, journaledMutation{
			Ref:    t.Ref,
			Action: action,
			Do: func(ctx context.Context) error {
				return client.MarkRead(ctx, t.Ref.UID, t.Ref.Folder)
			},
		})
		if err != nil {
			return err
		}
		r.syncCache(ctx, t.Ref, func(ctx context.Context) error {
			return r.messages.MarkRead(ctx, t.Ref.UID, t.Ref.Folder)
		})
		return nil

	case model.ActionMarkUnread:
		return r.journaled(ctx, journaledMutation{
			Ref:    t.Ref,
			Action: action,
			Do: func(ctx context.Context) error {
				return client.MarkUnread(ctx, t.Ref.UID, t.Ref.Folder)
			},
		})

	case model.ActionArchive, model.ActionMove:
		destination := t.Destination
		if action == model.ActionArchive || destination == "" {
			destination = archiveFolder
		}
		err := r.journaled(ctx, journaledMutation{
			Ref:      t.Ref,
			Action:   action,
			Params:   map[string]any{"destination": destination},
			PreState: map[string]any{"folder": t.Ref.Folder},
			Do: func(ctx context.Context) error {
				return client.Move(ctx, t.Ref.UID, t.Ref.Folder, destination)
			},
		})
		if err != nil {
			return err
		}
		// The old uid is gone after a move.
		r.syncCache(ctx, t.Ref, func(ctx context.Context) error {
			return r.messages.Remove(ctx, t.Ref.UID, t.Ref.Folder)
		})
		return nil

	case model.ActionAddLabel:
		if t.Label == "" {
			return fmt.Errorf("add_label on %s/%d: no label given", t.Ref.Folder, t.Ref.UID)
		}
		err := r.journaled(ctx, journaledMutation{
			Ref:    t.Ref,
			Action: action,
			Params: map[string]any{"label": t.Label},
			Do: func(ctx context.Context) error {
				return client.AddLabels(ctx, t.Ref.UID, t.Ref.Folder, []string{t.Label})
			},
		})
		if err != nil {
			return err
		}
		r.syncCache(ctx, t.Ref, func(ctx context.Context) error {
			return r.messages.AddLabel(ctx, core.LabelParams{
				UID: t.Ref.UID, Folder: t.Ref.Folder, Label: t.Label,
			})
		})
		return nil

	case model.ActionRemoveLabel:
		if t.Label == "" {
			return fmt.Errorf("remove_label on %s/%d: no label given", t.Ref.Folder, t.Ref.UID)
		}
		err := r.journaled(ctx, journaledMutation{
			Ref:    t.Ref,
			Action: action,
			Params: map[string]any{"label": t.Label},
			Do: func(ctx context.Context) error {
				return client.RemoveLabels(ctx, t.Ref.UID, t.Ref.Folder, []string{t.Label})
			},
		})
		if err != nil {
			return err
		}
		r.syncCache(ctx, t.Ref, func(ctx context.Context) error {
			return r.messages.RemoveLabel(ctx, core.LabelParams{
				UID: t.Ref.UID, Folder: t.Ref.Folder, Label: t.Label,
			})
		})
		return nil

	default:
		return fmt.Errorf("unknown action %q", action)
	}
}

// syncCache mirrors an applied mutation into the local message cache.
// Best-effort: the next sync pass reconciles anything missed here.
func (r *Runner) syncCache(ctx context.Context, ref model.ItemRef, fn func(ctx context.Context) error) {
	if err := fn(ctx); err != nil {
		r.logger.WarnContext(ctx, "message cache not updated",
			"uid", ref.UID, "folder", ref.Folder, "error", err)
	}
}
