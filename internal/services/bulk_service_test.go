package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajramos/mailcore/internal/mail"
	"github.com/ajramos/mailcore/internal/store"
)

func newController(t *testing.T, emails ...mail.Email) (*BulkActionServiceImpl, *UndoServiceImpl, *store.EmailStore) {
	t.Helper()
	st := store.NewEmailStore()
	st.ApplyBatch(emails)
	undo := NewUndoService(st)
	bulk := NewBulkActionService(st)
	bulk.SetUndoService(undo)
	return bulk, undo, st
}

func bulkEmail(id string) mail.Email {
	return mail.Email{
		ID:        id,
		From:      id + "@example.com",
		Subject:   "subject " + id,
		CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestBulkMarkRead_AppliesAndRecords(t *testing.T) {
	bulk, undo, st := newController(t, bulkEmail("a"), bulkEmail("b"))
	ctx := context.Background()

	require.NoError(t, bulk.MarkRead(ctx, []string{"a", "b"}, true))

	for _, e := range st.Emails() {
		assert.True(t, e.IsRead)
	}
	assert.True(t, undo.HasUndoableAction())
}

func TestBulkMarkRead_EmptyInputIsNoOp(t *testing.T) {
	bulk, undo, _ := newController(t, bulkEmail("a"))
	require.NoError(t, bulk.MarkRead(context.Background(), nil, true))
	assert.False(t, undo.HasUndoableAction(), "empty input must not record an action")
}

func TestBulkDelete_ThenUndo_RestoresActiveState(t *testing.T) {
	a := bulkEmail("a")
	a.IsStarred = true
	b := bulkEmail("b")
	b.IsRead = true
	bulk, undo, st := newController(t, a, b)
	ctx := context.Background()

	require.NoError(t, bulk.Delete(ctx, []string{"a", "b"}))
	assert.Empty(t, st.Emails())
	assert.Len(t, st.Deleted(), 2)

	res, err := undo.UndoLastAction(ctx)
	require.NoError(t, err)
	assert.True(t, res.Undone)
	assert.Equal(t, ActionDelete, res.Kind)
	assert.Equal(t, 2, res.EmailCount)

	// Both reappear with their original read/starred state; the bin does
	// not keep a second copy.
	require.Len(t, st.Emails(), 2)
	assert.Empty(t, st.Deleted())
	gotA, ok := st.Get("a")
	require.True(t, ok)
	assert.True(t, gotA.IsStarred)
	assert.False(t, gotA.IsRead)
	gotB, ok := st.Get("b")
	require.True(t, ok)
	assert.True(t, gotB.IsRead)
}

func TestBulkMarkRead_Undo_RestoresPriorFlags(t *testing.T) {
	a := bulkEmail("a")
	a.IsRead = true
	bulk, undo, st := newController(t, a, bulkEmail("b"))
	ctx := context.Background()

	require.NoError(t, bulk.MarkRead(ctx, []string{"a", "b"}, false))

	res, err := undo.UndoLastAction(ctx)
	require.NoError(t, err)
	assert.True(t, res.Undone)
	assert.Equal(t, ActionMarkAsRead, res.Kind)

	gotA, _ := st.Get("a")
	assert.True(t, gotA.IsRead, "a was read before the bulk action")
	gotB, _ := st.Get("b")
	assert.False(t, gotB.IsRead, "b was unread before the bulk action")
}

func TestToggleStar_Undo_RestoresPriorFlag(t *testing.T) {
	bulk, undo, st := newController(t, bulkEmail("a"))
	ctx := context.Background()

	require.NoError(t, bulk.ToggleStar(ctx, "a"))
	got, _ := st.Get("a")
	require.True(t, got.IsStarred)

	res, err := undo.UndoLastAction(ctx)
	require.NoError(t, err)
	assert.True(t, res.Undone)
	assert.Equal(t, ActionStar, res.Kind)

	got, _ = st.Get("a")
	assert.False(t, got.IsStarred)
}

func TestToggleStar_UnknownIDIsNoOp(t *testing.T) {
	bulk, undo, _ := newController(t, bulkEmail("a"))
	require.NoError(t, bulk.ToggleStar(context.Background(), "missing"))
	assert.False(t, undo.HasUndoableAction())
}

func TestRestore_IsNotUndoable(t *testing.T) {
	bulk, undo, st := newController(t, bulkEmail("a"))
	ctx := context.Background()

	require.NoError(t, bulk.Delete(ctx, []string{"a"}))
	require.NoError(t, undo.ClearUndoHistory())

	require.NoError(t, bulk.Restore(ctx, []string{"a"}))
	assert.Len(t, st.Emails(), 1)
	assert.False(t, undo.HasUndoableAction())
}

func TestAssignLabels_AppliesWithoutRecording(t *testing.T) {
	bulk, undo, st := newController(t, bulkEmail("a"), bulkEmail("b"))
	ctx := context.Background()

	require.NoError(t, bulk.AssignLabels(ctx, []string{"a"}, []string{"l1", "l2"}))

	got, _ := st.Get("a")
	assert.Equal(t, []string{"l1", "l2"}, got.LabelIDs)
	got, _ = st.Get("b")
	assert.Empty(t, got.LabelIDs)
	assert.False(t, undo.HasUndoableAction())
}

func TestNewBulkAction_OverwritesPreviousUndo(t *testing.T) {
	bulk, undo, st := newController(t, bulkEmail("a"), bulkEmail("b"))
	ctx := context.Background()

	require.NoError(t, bulk.MarkRead(ctx, []string{"a"}, true))
	require.NoError(t, bulk.Delete(ctx, []string{"b"}))

	// Undo reverses only the delete; the mark-read sticks.
	res, err := undo.UndoLastAction(ctx)
	require.NoError(t, err)
	assert.Equal(t, ActionDelete, res.Kind)

	got, _ := st.Get("a")
	assert.True(t, got.IsRead)
	assert.False(t, undo.HasUndoableAction(), "only one level of undo is retained")
}
