package services

import (
	"context"
	"time"

	"github.com/ajramos/mailcore/internal/mail"
)

// LabelService owns the label taxonomy.
type LabelService interface {
	ListLabels(ctx context.Context) ([]mail.Label, error)
	GetLabel(ctx context.Context, id string) (mail.Label, bool)
	CreateLabel(ctx context.Context, name, color, description, category string) (mail.Label, error)
	UpdateLabel(ctx context.Context, id string, updates LabelUpdates) (mail.Label, error)
	// DeleteLabel strips the label from every email and returns the deleted
	// id so the caller can fall back to the default section if it was active.
	DeleteLabel(ctx context.Context, id string) (string, error)
}

// LabelUpdates carries the fields a label edit may change. Nil pointers
// leave the field untouched.
type LabelUpdates struct {
	Name        *string
	Color       *string
	Description *string
	Category    *string
}

// BulkActionService executes multi-email mutations against the store,
// recording the single most recent action for undo.
type BulkActionService interface {
	MarkRead(ctx context.Context, ids []string, read bool) error
	Delete(ctx context.Context, ids []string) error
	Restore(ctx context.Context, ids []string) error
	AssignLabels(ctx context.Context, ids []string, labelIDs []string) error
	ToggleStar(ctx context.Context, id string) error
}

// UndoService retains the single most recent undoable action.
type UndoService interface {
	RecordAction(ctx context.Context, action *LastAction) error
	UndoLastAction(ctx context.Context) (*UndoResult, error)
	HasUndoableAction() bool
	ClearUndoHistory() error
}

// ComposeService handles outbound send and save-draft calls. Both simulate
// network latency and are fire-and-forget from the engine's perspective.
type ComposeService interface {
	Send(ctx context.Context, msg mail.OutboundEmail) error
	SaveDraft(ctx context.Context, msg mail.OutboundEmail) error
	Drafts() []mail.OutboundEmail
	Close()
}

// ActionKind tags an undoable action.
type ActionKind string

const (
	ActionMarkAsRead ActionKind = "markAsRead"
	ActionDelete     ActionKind = "delete"
	ActionStar       ActionKind = "star"
)

// LastAction snapshots just the fields a bulk action touched, taken before
// the mutation was applied. Exactly one is retained; a new action
// overwrites it.
type LastAction struct {
	ID         string
	Kind       ActionKind
	EmailIDs   []string
	Timestamp  time.Time
	ReadStates map[string]bool // ActionMarkAsRead: prior is_read per id
	StarStates map[string]bool // ActionStar: prior is_starred per id
	Records    []mail.Email    // ActionDelete: full prior records
}

// UndoResult reports what an undo invocation did.
type UndoResult struct {
	Undone     bool
	Kind       ActionKind
	EmailCount int
}
