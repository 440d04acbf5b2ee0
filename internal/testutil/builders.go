// Package testutil provides testing utilities and helpers for the secretary job engine.
package testutil

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/workspace-secretary/secretary-go/internal/domain/model"
)

// JobRequestBuilder provides a fluent interface for building CreateJobRequest objects for testing.
type JobRequestBuilder struct {
	req *model.CreateJobRequest
}

// NewJobRequest creates a new JobRequestBuilder with sensible defaults.
func NewJobRequest() *JobRequestBuilder {
	return &JobRequestBuilder{
		req: &model.CreateJobRequest{
			Kind:    model.JobKindMailboxSync,
			Payload: json.RawMessage(`{}`),
		},
	}
}

// WithKind sets the job kind.
func (b *JobRequestBuilder) WithKind(kind model.JobKind) *JobRequestBuilder {
	b.req.Kind = kind
	return b
}

// WithPayload sets the job payload.
func (b *JobRequestBuilder) WithPayload(payload json.RawMessage) *JobRequestBuilder {
	b.req.Payload = payload
	return b
}

// WithPayloadString sets the job payload from a string.
func (b *JobRequestBuilder) WithPayloadString(payload string) *JobRequestBuilder {
	b.req.Payload = json.RawMessage(payload)
	return b
}

// Build returns the constructed CreateJobRequest.
func (b *JobRequestBuilder) Build() *model.CreateJobRequest {
	return b.req
}

// MessageBuilder provides a fluent interface for building cached messages.
type MessageBuilder struct {
	msg *model.Message
}

// NewMessage creates a MessageBuilder with sensible defaults: an unread
// inbox message with a subject and sender filled in.
func NewMessage(uid int) *MessageBuilder {
	subject := fmt.Sprintf("test message %d", uid)
	from := "sender@example.com"
	to := "user@example.com"
	date := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(uid) * time.Minute)
	return &MessageBuilder{
		msg: &model.Message{
			UID:      uid,
			Folder:   "INBOX",
			Subject:  &subject,
			FromAddr: &from,
			ToAddr:   &to,
			Date:     &date,
			IsUnread: true,
		},
	}
}

// InFolder sets the folder.
func (b *MessageBuilder) InFolder(folder string) *MessageBuilder {
	b.msg.Folder = folder
	return b
}

// From sets the sender address.
func (b *MessageBuilder) From(addr string) *MessageBuilder {
	b.msg.FromAddr = &addr
	return b
}

// WithSubject sets the subject.
func (b *MessageBuilder) WithSubject(subject string) *MessageBuilder {
	b.msg.Subject = &subject
	return b
}

// WithBody sets the body preview.
func (b *MessageBuilder) WithBody(body string) *MessageBuilder {
	b.msg.BodyPreview = &body
	return b
}

// Read marks the message as read.
func (b *MessageBuilder) Read() *MessageBuilder {
	b.msg.IsUnread = false
	return b
}

// WithLabels sets the label list.
func (b *MessageBuilder) WithLabels(labels ...string) *MessageBuilder {
	b.msg.Labels = labels
	return b
}

// Build returns the constructed message.
func (b *MessageBuilder) Build() *model.Message {
	return b.msg
}
