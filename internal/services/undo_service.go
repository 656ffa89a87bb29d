package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ajramos/mailcore/internal/store"
)

// UndoServiceImpl implements UndoService with single-level depth: recording
// a new action discards the previous one, and a successful undo clears the
// record.
type UndoServiceImpl struct {
	store      *store.EmailStore
	lastAction *LastAction
	mu         sync.RWMutex
	logger     *log.Logger // Optional - for debug logging
}

// NewUndoService creates a new undo service bound to the email store.
func NewUndoService(st *store.EmailStore) *UndoServiceImpl {
	return &UndoServiceImpl{store: st}
}

// SetLogger sets the logger for debug output.
func (s *UndoServiceImpl) SetLogger(logger *log.Logger) {
	s.logger = logger
}

// RecordAction records an action for potential undo, overwriting any
// previously recorded one.
func (s *UndoServiceImpl) RecordAction(ctx context.Context, action *LastAction) error {
	if action == nil {
		return fmt.Errorf("action cannot be nil")
	}
	if action.ID == "" {
		action.ID = uuid.New().String()
	}
	if action.Timestamp.IsZero() {
		action.Timestamp = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAction = action
	return nil
}

// UndoLastAction applies the inverse of the last recorded action. With no
// recorded action it is a no-op, not an error.
func (s *UndoServiceImpl) UndoLastAction(ctx context.Context) (*UndoResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastAction == nil {
		return &UndoResult{Undone: false}, nil
	}
	action := s.lastAction

	switch action.Kind {
	case ActionMarkAsRead:
		s.store.RestoreReadStates(action.ReadStates)
	case ActionStar:
		s.store.RestoreStarStates(action.StarStates)
	case ActionDelete:
		// Re-insert the snapshotted records and pull them back out of the
		// deleted partition so they do not exist in both at once.
		s.store.ReinsertDeleted(action.Records)
	default:
		return nil, fmt.Errorf("unknown action kind: %s", action.Kind)
	}

	if s.logger != nil {
		s.logger.Printf("undo applied: %s (%d emails)", action.Kind, len(action.EmailIDs))
	}
	s.lastAction = nil
	return &UndoResult{
		Undone:     true,
		Kind:       action.Kind,
		EmailCount: len(action.EmailIDs),
	}, nil
}

// HasUndoableAction checks if there is an action that can be undone.
func (s *UndoServiceImpl) HasUndoableAction() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastAction != nil
}

// ClearUndoHistory drops the recorded action.
func (s *UndoServiceImpl) ClearUndoHistory() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAction = nil
	return nil
}
