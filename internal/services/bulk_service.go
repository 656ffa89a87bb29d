package services

import (
	"context"
	"log"

	"github.com/ajramos/mailcore/internal/store"
)

// BulkActionServiceImpl implements BulkActionService. Each mutating
// operation snapshots the prior value of only the fields it will touch and
// records it through the undo service before applying the change.
type BulkActionServiceImpl struct {
	store       *store.EmailStore
	undoService UndoService // Optional - for recording undo actions
	logger      *log.Logger // Optional - for debug logging
}

// NewBulkActionService creates a new bulk action service.
func NewBulkActionService(st *store.EmailStore) *BulkActionServiceImpl {
	return &BulkActionServiceImpl{store: st}
}

// SetUndoService sets the undo service for recording undo actions.
// Called after initialization to avoid circular dependencies.
func (s *BulkActionServiceImpl) SetUndoService(undoService UndoService) {
	s.undoService = undoService
}

// SetLogger sets the logger for debug output.
func (s *BulkActionServiceImpl) SetLogger(logger *log.Logger) {
	s.logger = logger
}

// MarkRead sets the read flag on every matching email. Empty input is a
// no-op; unknown ids are skipped silently.
func (s *BulkActionServiceImpl) MarkRead(ctx context.Context, ids []string, read bool) error {
	if len(ids) == 0 {
		return nil
	}

	if s.undoService != nil {
		prior := make(map[string]bool, len(ids))
		for _, id := range ids {
			if e, ok := s.store.Get(id); ok {
				prior[e.ID] = e.IsRead
			}
		}
		_ = s.undoService.RecordAction(ctx, &LastAction{
			Kind:       ActionMarkAsRead,
			EmailIDs:   ids,
			ReadStates: prior,
		})
	}

	s.store.SetRead(ids, read)
	return nil
}

// Delete soft-deletes every matching email, snapshotting the full records
// for undo.
func (s *BulkActionServiceImpl) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	snapshots := s.store.SoftDelete(ids)
	if s.undoService != nil && len(snapshots) > 0 {
		_ = s.undoService.RecordAction(ctx, &LastAction{
			Kind:     ActionDelete,
			EmailIDs: ids,
			Records:  snapshots,
		})
	}
	if s.logger != nil {
		s.logger.Printf("bulk delete: %d emails", len(snapshots))
	}
	return nil
}

// Restore moves matching emails out of the bin. Not undoable.
func (s *BulkActionServiceImpl) Restore(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	s.store.Restore(ids)
	return nil
}

// AssignLabels replaces the label list on every matching email. Not
// undoable.
func (s *BulkActionServiceImpl) AssignLabels(ctx context.Context, ids []string, labelIDs []string) error {
	if len(ids) == 0 {
		return nil
	}
	s.store.SetLabels(ids, labelIDs)
	return nil
}

// ToggleStar flips the starred flag on a single email, recording the prior
// value for undo. Unknown ids are ignored.
func (s *BulkActionServiceImpl) ToggleStar(ctx context.Context, id string) error {
	e, ok := s.store.Get(id)
	if !ok {
		return nil
	}

	if s.undoService != nil {
		_ = s.undoService.RecordAction(ctx, &LastAction{
			Kind:       ActionStar,
			EmailIDs:   []string{id},
			StarStates: map[string]bool{id: e.IsStarred},
		})
	}

	s.store.ToggleStar(id)
	return nil
}
