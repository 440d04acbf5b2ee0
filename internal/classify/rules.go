package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
	"golang.org/x/net/publicsuffix"

	"github.com/workspace-secretary/secretary-go/internal/domain/model"
)

// Rule is a user-supplied classification override. Expr is a JMESPath
// expression evaluated against the message document; a truthy result
// assigns the rule's category and confidence, short-circuiting the
// builtin heuristics.
type Rule struct {
	Name       string   `json:"name"`
	Expr       string   `json:"expr"`
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"`
}

// Validate compiles the rule's expression and checks its category.
func (r *Rule) Validate() error {
	if strings.TrimSpace(r.Expr) == "" {
		return fmt.Errorf("rule %q: empty expression", r.Name)
	}
	if _, err := jmespath.Compile(r.Expr); err != nil {
		return fmt.Errorf("rule %q: %w", r.Name, err)
	}
	if _, ok := CategoryLabels[r.Category]; !ok {
		return fmt.Errorf("rule %q: unknown category %q", r.Name, r.Category)
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("rule %q: confidence out of range", r.Name)
	}
	return nil
}

// RulesClassifier is the default pattern-based classifier: custom
// JMESPath rules first, then builtin header heuristics. It never
// consults anything outside the message itself.
type RulesClassifier struct {
	identity Identity
	rules    []Rule
	vips     map[string]struct{}
}

// NewRulesClassifier builds a classifier for the given identity. All
// rules must validate.
func NewRulesClassifier(identity Identity, rules []Rule) (*RulesClassifier, error) {
	for i := range rules {
		if err := rules[i].Validate(); err != nil {
			return nil, err
		}
	}

	vips := make(map[string]struct{}, len(identity.VIPSenders))
	for _, v := range identity.VIPSenders {
		vips[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}
	return &RulesClassifier{identity: identity, rules: rules, vips: vips}, nil
}

// Classify assigns a category to one message.
func (c *RulesClassifier) Classify(_ context.Context, msg *model.Message) (*Classification, error) {
	doc := messageDoc(msg)

	for i := range c.rules {
		rule := &c.rules[i]
		result, err := jmespath.Search(rule.Expr, doc)
		if err != nil {
			return nil, fmt.Errorf("evaluate rule %q: %w", rule.Name, err)
		}
		if truthy(result) {
			return c.build(rule.Category, rule.Confidence,
				map[string]any{"rule": rule.Name},
				fmt.Sprintf("matched rule %q", rule.Name)), nil
		}
	}

	return c.heuristic(msg), nil
}

// heuristic is the builtin scoring pass. Order matters: the strongest
// signals are checked first and each message gets exactly one category.
func (c *RulesClassifier) heuristic(msg *model.Message) *Classification {
	from := strings.ToLower(deref(msg.FromAddr))
	subject := strings.ToLower(deref(msg.Subject))
	preview := strings.ToLower(deref(msg.BodyPreview))
	domain := senderDomain(from)

	signals := map[string]any{
		"sender_domain": domain,
	}

	if c.isVIP(from, domain) {
		signals["vip_sender"] = true
		return c.build(CategoryActionRequired, 0.95, signals, "sender is on the VIP list")
	}

	if hasAny(subject, newsletterSubjectMarkers) || hasAny(preview, newsletterBodyMarkers) {
		signals["newsletter_markers"] = true
		return c.build(CategoryNewsletter, 0.93, signals, "newsletter markers in subject or body")
	}

	if isAutomatedSender(from) {
		signals["automated_sender"] = true
		if hasAny(subject, receiptSubjectMarkers) {
			signals["receipt"] = true
			return c.build(CategoryCleanup, 0.90, signals, "automated receipt or confirmation")
		}
		return c.build(CategoryNotification, 0.92, signals, "automated sender address")
	}

	if c.addressedToUser(msg) {
		signals["directly_addressed"] = true
		if hasAny(subject, requestSubjectMarkers) || strings.Contains(preview, "?") {
			return c.build(CategoryActionRequired, 0.75, signals, "directly addressed with a request")
		}
		return c.build(CategoryFYI, 0.60, signals, "directly addressed, no request detected")
	}

	return c.build(CategoryUnclear, 0.30, signals, "no decisive signals")
}

func (c *RulesClassifier) build(cat Category, confidence float64, signals map[string]any, reasoning string) *Classification {
	return &Classification{
		Category:   cat,
		Confidence: confidence,
		Label:      CategoryLabels[cat],
		Actions:    append([]string(nil), CategoryActions[cat]...),
		Signals:    signals,
		Reasoning:  reasoning,
	}
}

// isVIP matches the full sender address or its registrable domain
// against the VIP list, so "ceo@corp.example" and "corp.example" both
// work as entries.
func (c *RulesClassifier) isVIP(from, domain string) bool {
	if _, ok := c.vips[from]; ok {
		return true
	}
	if domain == "" {
		return false
	}
	_, ok := c.vips[domain]
	return ok
}

func (c *RulesClassifier) addressedToUser(msg *model.Message) bool {
	email := strings.ToLower(c.identity.Email)
	if email == "" {
		return false
	}
	return strings.Contains(strings.ToLower(deref(msg.ToAddr)), email)
}

// senderDomain extracts the registrable domain (eTLD+1) from a sender
// address, so mail.notifications.example.com normalizes to example.com.
func senderDomain(addr string) string {
	at := strings.LastIndex(addr, "@")
	if at < 0 || at == len(addr)-1 {
		return ""
	}
	host := strings.Trim(addr[at+1:], "> ")
	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return etld1
}

var automatedSenderPrefixes = []string{
	"no-reply@", "noreply@", "do-not-reply@", "donotreply@",
	"notifications@", "notification@", "alerts@", "alert@",
	"mailer-daemon@", "bounce@", "automated@",
}

func isAutomatedSender(from string) bool {
	for _, prefix := range automatedSenderPrefixes {
		if strings.Contains(from, prefix) {
			return true
		}
	}
	return false
}

var (
	newsletterSubjectMarkers = []string{"newsletter", "digest", "weekly roundup", "this week in"}
	newsletterBodyMarkers    = []string{"unsubscribe", "email preferences", "manage your subscription"}
	receiptSubjectMarkers    = []string{"receipt", "your order", "order confirmation", "payment received", "invoice"}
	requestSubjectMarkers    = []string{"please", "request", "action required", "approval needed", "can you", "reminder:"}
)

func hasAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// messageDoc flattens a message into the document rules evaluate
// against.
func messageDoc(msg *model.Message) map[string]any {
	labels := make([]any, 0, len(msg.Labels))
	for _, l := range msg.Labels {
		labels = append(labels, l)
	}
	return map[string]any{
		"uid":           msg.UID,
		"folder":        msg.Folder,
		"subject":       deref(msg.Subject),
		"from":          deref(msg.FromAddr),
		"to":            deref(msg.ToAddr),
		"cc":            deref(msg.CcAddr),
		"body_preview":  deref(msg.BodyPreview),
		"is_unread":     msg.IsUnread,
		"labels":        labels,
		"sender_domain": senderDomain(strings.ToLower(deref(msg.FromAddr))),
	}
}

// truthy mirrors JMESPath truthiness: null, false, empty string,
// empty array and empty object are all false.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

func marshalSignals(cl *Classification) (json.RawMessage, error) {
	doc := make(map[string]any, len(cl.Signals)+1)
	for k, v := range cl.Signals {
		doc[k] = v
	}
	doc["reasoning"] = cl.Reasoning
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal signals: %w", err)
	}
	return raw, nil
}

// ToCandidate converts a classification of msg into a stored candidate
// row for a preview job.
func (cl *Classification) ToCandidate(msg *model.Message) (*model.Candidate, error) {
	signals, err := marshalSignals(cl)
	if err != nil {
		return nil, err
	}
	return &model.Candidate{
		UID:             msg.UID,
		Folder:          msg.Folder,
		MessageID:       msg.MessageID,
		FromAddr:        msg.FromAddr,
		ToAddr:          msg.ToAddr,
		CcAddr:          msg.CcAddr,
		Subject:         msg.Subject,
		Date:            msg.Date,
		BodyPreview:     msg.BodyPreview,
		Category:        string(cl.Category),
		Confidence:      cl.Confidence,
		Signals:         signals,
		ProposedActions: append([]string(nil), cl.Actions...),
	}, nil
}
