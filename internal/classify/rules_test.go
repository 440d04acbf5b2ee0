package classify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workspace-secretary/secretary-go/internal/domain/model"
)

func strPtr(s string) *string { return &s }

func newTestClassifier(t *testing.T, rules []Rule) *RulesClassifier {
	t.Helper()
	c, err := NewRulesClassifier(Identity{
		Email:      "casey@example.com",
		Name:       "Casey",
		VIPSenders: []string{"boss@corp.example", "partner.example"},
	}, rules)
	require.NoError(t, err)
	return c
}

func msgWith(from, to, subject, preview string) *model.Message {
	return &model.Message{
		UID:         1,
		Folder:      "INBOX",
		FromAddr:    strPtr(from),
		ToAddr:      strPtr(to),
		Subject:     strPtr(subject),
		BodyPreview: strPtr(preview),
		IsUnread:    true,
	}
}

func TestClassifyVIPSender(t *testing.T) {
	c := newTestClassifier(t, nil)

	t.Run("exact address", func(t *testing.T) {
		cl, err := c.Classify(context.Background(),
			msgWith("boss@corp.example", "casey@example.com", "budget", ""))
		require.NoError(t, err)
		assert.Equal(t, CategoryActionRequired, cl.Category)
		assert.InDelta(t, 0.95, cl.Confidence, 0.001)
		assert.Equal(t, "Secretary/Action", cl.Label)
	})

	t.Run("registrable domain", func(t *testing.T) {
		cl, err := c.Classify(context.Background(),
			msgWith("anyone@mail.partner.example", "casey@example.com", "hello", ""))
		require.NoError(t, err)
		assert.Equal(t, CategoryActionRequired, cl.Category)
		assert.Equal(t, true, cl.Signals["vip_sender"])
	})
}

func TestClassifyNewsletter(t *testing.T) {
	c := newTestClassifier(t, nil)

	cl, err := c.Classify(context.Background(),
		msgWith("updates@news.example.com", "casey@example.com",
			"The Weekly Digest", "click here to unsubscribe"))
	require.NoError(t, err)
	assert.Equal(t, CategoryNewsletter, cl.Category)
	assert.Contains(t, cl.Actions, model.ActionMarkRead)
	assert.Contains(t, cl.Actions, model.ActionAddLabel)
	assert.NotContains(t, cl.Actions, model.ActionArchive)
}

func TestClassifyAutomatedSenders(t *testing.T) {
	c := newTestClassifier(t, nil)

	t.Run("notification", func(t *testing.T) {
		cl, err := c.Classify(context.Background(),
			msgWith("no-reply@service.example", "casey@example.com", "your build finished", ""))
		require.NoError(t, err)
		assert.Equal(t, CategoryNotification, cl.Category)
	})

	t.Run("receipt is cleanup", func(t *testing.T) {
		cl, err := c.Classify(context.Background(),
			msgWith("noreply@shop.example", "casey@example.com", "Order confirmation #1234", ""))
		require.NoError(t, err)
		assert.Equal(t, CategoryCleanup, cl.Category)
		assert.Contains(t, cl.Actions, model.ActionArchive)
	})
}

func TestClassifyDirectlyAddressed(t *testing.T) {
	c := newTestClassifier(t, nil)

	t.Run("with request", func(t *testing.T) {
		cl, err := c.Classify(context.Background(),
			msgWith("colleague@other.example", "casey@example.com",
				"Please review the draft", "can you take a look today?"))
		require.NoError(t, err)
		assert.Equal(t, CategoryActionRequired, cl.Category)
		assert.InDelta(t, 0.75, cl.Confidence, 0.001)
	})

	t.Run("without request", func(t *testing.T) {
		cl, err := c.Classify(context.Background(),
			msgWith("colleague@other.example", "casey@example.com",
				"Meeting notes", "attached for reference."))
		require.NoError(t, err)
		assert.Equal(t, CategoryFYI, cl.Category)
	})
}

func TestClassifyUnclearFallback(t *testing.T) {
	c := newTestClassifier(t, nil)

	cl, err := c.Classify(context.Background(),
		msgWith("stranger@somewhere.example", "team@example.com", "misc", "nothing here"))
	require.NoError(t, err)
	assert.Equal(t, CategoryUnclear, cl.Category)
	assert.Equal(t, "Secretary/Unclear", cl.Label)
	assert.Less(t, cl.Confidence, model.MediumConfidence)
}

func TestClassifyCustomRuleWins(t *testing.T) {
	rules := []Rule{{
		Name:       "archive-ci-noise",
		Expr:       `contains(subject, 'nightly build')`,
		Category:   CategoryCleanup,
		Confidence: 0.97,
	}}
	c := newTestClassifier(t, rules)

	// Rule fires even though the sender is a VIP.
	cl, err := c.Classify(context.Background(),
		msgWith("boss@corp.example", "casey@example.com", "nightly build passed", ""))
	require.NoError(t, err)
	assert.Equal(t, CategoryCleanup, cl.Category)
	assert.InDelta(t, 0.97, cl.Confidence, 0.001)
	assert.Equal(t, "archive-ci-noise", cl.Signals["rule"])
}

func TestRuleValidate(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		wantErr bool
	}{
		{
			name: "valid",
			rule: Rule{Name: "ok", Expr: `subject == 'x'`, Category: CategoryFYI, Confidence: 0.8},
		},
		{
			name:    "empty expression",
			rule:    Rule{Name: "bad", Expr: "  ", Category: CategoryFYI, Confidence: 0.8},
			wantErr: true,
		},
		{
			name:    "invalid expression",
			rule:    Rule{Name: "bad", Expr: "][", Category: CategoryFYI, Confidence: 0.8},
			wantErr: true,
		},
		{
			name:    "unknown category",
			rule:    Rule{Name: "bad", Expr: `subject`, Category: Category("spam"), Confidence: 0.8},
			wantErr: true,
		},
		{
			name:    "confidence out of range",
			rule:    Rule{Name: "bad", Expr: `subject`, Category: CategoryFYI, Confidence: 1.5},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSenderDomain(t *testing.T) {
	assert.Equal(t, "example.com", senderDomain("alerts@mail.notifications.example.com"))
	assert.Equal(t, "corp.example", senderDomain("boss@corp.example"))
	assert.Equal(t, "", senderDomain("not-an-address"))
}

func TestToCandidate(t *testing.T) {
	c := newTestClassifier(t, nil)
	msg := msgWith("updates@news.example.com", "casey@example.com",
		"The Weekly Digest", "unsubscribe")

	cl, err := c.Classify(context.Background(), msg)
	require.NoError(t, err)

	cand, err := cl.ToCandidate(msg)
	require.NoError(t, err)
	assert.Equal(t, msg.UID, cand.UID)
	assert.Equal(t, msg.Folder, cand.Folder)
	assert.Equal(t, string(CategoryNewsletter), cand.Category)
	assert.Equal(t, cl.Actions, cand.ProposedActions)
	assert.JSONEq(t, `{"sender_domain":"example.com","newsletter_markers":true,"reasoning":"newsletter markers in subject or body"}`,
		string(cand.Signals))
}
