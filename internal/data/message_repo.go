package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/workspace-secretary/secretary-go/internal/core"
	"github.com/workspace-secretary/secretary-go/internal/domain/model"
)

const defaultSearchLimit = 50

// MessageRepo implements the local mailbox cache on Postgres. Sync jobs
// write into it and mutation jobs keep it consistent with the remote
// mailbox after each applied action.
type MessageRepo struct {
	DB *sql.DB
}

// NewMessageRepo creates a new MessageRepo.
func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{DB: db}
}

const messageColumns = `uid, folder, message_id, subject, from_addr, to_addr, cc_addr, date, body_preview, is_unread, labels`

// SearchUnread pages through unread messages in a folder, oldest first,
// so a continuation offset stays stable while the scan mutates nothing.
func (r *MessageRepo) SearchUnread(ctx context.Context, params core.SearchMessagesParams) ([]*model.Message, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE folder = $1 AND is_unread = TRUE
		ORDER BY date ASC NULLS FIRST, uid ASC
		LIMIT $2 OFFSET $3
	`, params.Folder, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("search unread: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var msgs []*model.Message
	for rows.Next() {
		m, scanErr := scanMessage(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		msgs = append(msgs, m)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("search unread rows: %w", rowsErr)
	}
	return msgs, nil
}

// CountInFolder returns the number of cached messages in a folder.
func (r *MessageRepo) CountInFolder(ctx context.Context, folder string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT count(*) FROM messages WHERE folder = $1`, folder).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return count, nil
}

// MarkRead flips the unread flag on one cached message. Missing rows
// are not an error: the cache may lag the remote mailbox.
func (r *MessageRepo) MarkRead(ctx context.Context, uid int, folder string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE messages SET is_unread = FALSE
		WHERE uid = $1 AND folder = $2
	`, uid, folder)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

// MarkUnread restores the unread flag on a cached message.
func (r *MessageRepo) MarkUnread(ctx context.Context, uid int, folder string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE messages SET is_unread = TRUE
		WHERE uid = $1 AND folder = $2
	`, uid, folder)
	if err != nil {
		return fmt.Errorf("mark unread: %w", err)
	}
	return nil
}

// Move relocates a cached message to another folder. The uid is kept,
// which matches stores that key messages account-wide rather than
// per-folder.
func (r *MessageRepo) Move(ctx context.Context, uid int, folder, destination string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE messages SET folder = $3
		WHERE uid = $1 AND folder = $2
	`, uid, folder, destination)
	if err != nil {
		return fmt.Errorf("move message: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("move message rows affected: %w", err)
	}
	if rows == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// Remove drops one cached message, typically after a move or archive
// relocated it out of its folder.
func (r *MessageRepo) Remove(ctx context.Context, uid int, folder string) error {
	_, err := r.DB.ExecContext(ctx, `
		DELETE FROM messages WHERE uid = $1 AND folder = $2
	`, uid, folder)
	if err != nil {
		return fmt.Errorf("remove message: %w", err)
	}
	return nil
}

// AddLabel appends a label to the cached message's label set if not
// already present.
func (r *MessageRepo) AddLabel(ctx context.Context, params core.LabelParams) error {
	label, err := json.Marshal(params.Label)
	if err != nil {
		return fmt.Errorf("marshal label: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, `
		UPDATE messages
		SET labels = labels || $3::jsonb
		WHERE uid = $1 AND folder = $2 AND NOT labels @> $3::jsonb
	`, params.UID, params.Folder, fmt.Sprintf("[%s]", label))
	if err != nil {
		return fmt.Errorf("add label: %w", err)
	}
	return nil
}

// RemoveLabel deletes a label from the cached message's label set.
func (r *MessageRepo) RemoveLabel(ctx context.Context, params core.LabelParams) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE messages
		SET labels = labels - $3
		WHERE uid = $1 AND folder = $2
	`, params.UID, params.Folder, params.Label)
	if err != nil {
		return fmt.Errorf("remove label: %w", err)
	}
	return nil
}

// Upsert inserts or refreshes one cached message by (uid, folder).
func (r *MessageRepo) Upsert(ctx context.Context, m *model.Message) error {
	labels, err := json.Marshal(m.Labels)
	if err != nil {
		return fmt.Errorf("marshal labels: %w", err)
	}
	if m.Labels == nil {
		labels = []byte(`[]`)
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO messages (`+messageColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (uid, folder) DO UPDATE SET
			message_id = EXCLUDED.message_id,
			subject = EXCLUDED.subject,
			from_addr = EXCLUDED.from_addr,
			to_addr = EXCLUDED.to_addr,
			cc_addr = EXCLUDED.cc_addr,
			date = EXCLUDED.date,
			body_preview = EXCLUDED.body_preview,
			is_unread = EXCLUDED.is_unread,
			labels = EXCLUDED.labels
	`, m.UID, m.Folder, m.MessageID, m.Subject, m.FromAddr, m.ToAddr,
		m.CcAddr, m.Date, m.BodyPreview, m.IsUnread, labels)
	if err != nil {
		return fmt.Errorf("upsert message: %w", err)
	}
	return nil
}

func scanMessage(rows *sql.Rows) (*model.Message, error) {
	m := &model.Message{}
	var (
		messageID, subject, fromAddr, toAddr, ccAddr, bodyPreview sql.NullString
		date                                                      sql.NullTime
		labels                                                    []byte
	)
	if err := rows.Scan(
		&m.UID, &m.Folder, &messageID, &subject, &fromAddr, &toAddr,
		&ccAddr, &date, &bodyPreview, &m.IsUnread, &labels,
	); err != nil {
		return nil, fmt.Errorf("scan message: %w", err)
	}
	m.MessageID = cloneNullableString(messageID)
	m.Subject = cloneNullableString(subject)
	m.FromAddr = cloneNullableString(fromAddr)
	m.ToAddr = cloneNullableString(toAddr)
	m.CcAddr = cloneNullableString(ccAddr)
	m.BodyPreview = cloneNullableString(bodyPreview)
	m.Date = cloneNullableTime(date)
	if len(labels) > 0 {
		if err := json.Unmarshal(labels, &m.Labels); err != nil {
			return nil, fmt.Errorf("unmarshal labels: %w", err)
		}
	}
	return m, nil
}
