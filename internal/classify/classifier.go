// Package classify assigns triage categories to mailbox messages. The
// default classifier is pure pattern matching over message headers, so
// a preview scan can grind through thousands of messages without
// touching anything external.
package classify

import (
	"context"

	"github.com/workspace-secretary/secretary-go/internal/domain/model"
)

// Category is a triage bucket a message can land in.
type Category string

const (
	CategoryActionRequired Category = "action-required"
	CategoryFYI            Category = "fyi"
	CategoryNewsletter     Category = "newsletter"
	CategoryNotification   Category = "notification"
	CategoryCleanup        Category = "cleanup"
	CategoryUnclear        Category = "unclear"
)

// CategoryLabels maps each category to the mailbox label applied when
// its proposal executes.
var CategoryLabels = map[Category]string{
	CategoryActionRequired: "Secretary/Action",
	CategoryFYI:            "Secretary/FYI",
	CategoryNewsletter:     "Secretary/Newsletters",
	CategoryNotification:   "Secretary/Notifications",
	CategoryCleanup:        "Secretary/Cleanup",
	CategoryUnclear:        "Secretary/Unclear",
}

// CategoryActions maps each category to the actions proposed alongside
// its label. Only cleanup proposes anything destructive.
var CategoryActions = map[Category][]string{
	CategoryActionRequired: {model.ActionAddLabel},
	CategoryFYI:            {model.ActionAddLabel},
	CategoryNewsletter:     {model.ActionAddLabel, model.ActionMarkRead},
	CategoryNotification:   {model.ActionAddLabel, model.ActionMarkRead},
	CategoryCleanup:        {model.ActionAddLabel, model.ActionMarkRead, model.ActionArchive},
	CategoryUnclear:        {model.ActionAddLabel},
}

// Identity describes the mailbox owner, used to recognize mail
// addressed directly to them and mail from people they care about.
type Identity struct {
	Email      string
	Name       string
	VIPSenders []string
}

// Classification is the outcome for one message.
type Classification struct {
	Category   Category       `json:"category"`
	Confidence float64        `json:"confidence"`
	Label      string         `json:"label"`
	Actions    []string       `json:"actions"`
	Signals    map[string]any `json:"signals"`
	Reasoning  string         `json:"reasoning"`
}

// Classifier assigns a category to one message.
type Classifier interface {
	Classify(ctx context.Context, msg *model.Message) (*Classification, error)
}
