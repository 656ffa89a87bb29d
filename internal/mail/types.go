package mail

import (
	"strings"
	"time"
)

// Intent tags carried by the list endpoint on each email. An email with no
// tag is treated as IntentNew everywhere.
const (
	IntentNew          = "new"
	IntentMeeting      = "meeting"
	IntentSystem       = "system"
	IntentAnnouncement = "announcement"
	IntentFeedback     = "feedback"
)

// ReplyMessage is a single message inside a conversation.
type ReplyMessage struct {
	ID      string `json:"id,omitempty"`
	Sender  string `json:"sender,omitempty"`
	Content string `json:"content"`
}

// Email is a single conversation root as returned by the list endpoint.
// Field tags follow the wire shape of the poll result.
type Email struct {
	ID        string         `json:"message_id"`
	From      string         `json:"from_address"`
	Subject   string         `json:"subject"`
	Snippet   string         `json:"snippet"`
	Messages  []ReplyMessage `json:"messages"`
	IsRead    bool           `json:"is_read"`
	IsStarred bool           `json:"is_starred"`
	IsDeleted bool           `json:"is_deleted"`
	CreatedAt time.Time      `json:"created_at"`
	LabelIDs  []string       `json:"custom_labels"`
	Intent    string         `json:"labels"`
}

// HasLabel reports whether the email's label list contains labelID.
func (e *Email) HasLabel(labelID string) bool {
	for _, id := range e.LabelIDs {
		if id == labelID {
			return true
		}
	}
	return false
}

// EffectiveIntent returns the intent tag, falling back to IntentNew.
func (e *Email) EffectiveIntent() string {
	if strings.TrimSpace(e.Intent) == "" {
		return IntentNew
	}
	return e.Intent
}

// Clone returns a deep copy so callers can hand emails out of a store
// without aliasing the label or message slices. Empty non-nil slices stay
// non-nil so store normalization survives the copy.
func (e Email) Clone() Email {
	out := e
	if e.LabelIDs != nil {
		out.LabelIDs = make([]string, len(e.LabelIDs))
		copy(out.LabelIDs, e.LabelIDs)
	}
	if e.Messages != nil {
		out.Messages = make([]ReplyMessage, len(e.Messages))
		copy(out.Messages, e.Messages)
	}
	return out
}

// Label is a user- or system-defined tag.
type Label struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Color       string    `json:"color" yaml:"color"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	IsSystem    bool      `json:"is_system" yaml:"is_system"`
	Category    string    `json:"category,omitempty" yaml:"category,omitempty"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// Attachment is a file attached to an outbound message.
type Attachment struct {
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
	Data     []byte `json:"-"`
}

// OutboundEmail is the payload for send and save-draft calls.
type OutboundEmail struct {
	To          []string     `json:"to"`
	CC          []string     `json:"cc"`
	BCC         []string     `json:"bcc"`
	Subject     string       `json:"subject"`
	Body        string       `json:"body"`
	Attachments []Attachment `json:"attachments"`
}

// Empty reports whether the message carries nothing worth keeping,
// matching the silent-discard rule for blank drafts.
func (o *OutboundEmail) Empty() bool {
	return len(o.To) == 0 && strings.TrimSpace(o.Subject) == "" && strings.TrimSpace(o.Body) == ""
}
