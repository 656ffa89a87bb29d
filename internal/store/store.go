package store

import (
	"sync"

	"github.com/ajramos/mailcore/internal/mail"
)

// EmailStore is the authoritative in-memory collection of emails for one
// browsing session. Every email lives in exactly one of the active or
// deleted partitions; ApplyBatch and every mutation preserve that.
type EmailStore struct {
	mu      sync.RWMutex
	active  []mail.Email
	deleted []mail.Email
	rev     uint64
}

// NewEmailStore returns an empty store.
func NewEmailStore() *EmailStore {
	return &EmailStore{}
}

// Rev returns a counter bumped on every state change. The view pipeline
// memoizes on it to skip recomputation when nothing relevant moved.
func (s *EmailStore) Rev() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rev
}

// ApplyBatch replaces the whole collection with the latest poll result.
// The batch is ground truth: active mail is whatever is not soft-deleted,
// the deleted partition is repopulated from the batch's deleted records.
// Each record gets its intent tag normalized (default "new").
func (s *EmailStore) ApplyBatch(results []mail.Email) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]mail.Email, 0, len(results))
	var deleted []mail.Email
	for _, e := range results {
		e = e.Clone()
		e.Intent = e.EffectiveIntent()
		if e.Messages == nil {
			e.Messages = []mail.ReplyMessage{}
		}
		if e.IsDeleted {
			deleted = append(deleted, e)
		} else {
			active = append(active, e)
		}
	}
	s.active = active
	s.deleted = deleted
	s.rev++
}

// Emails returns a copy of the active collection.
func (s *EmailStore) Emails() []mail.Email {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.active)
}

// Deleted returns a copy of the soft-deleted collection.
func (s *EmailStore) Deleted() []mail.Email {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.deleted)
}

// Get looks up an active email by id.
func (s *EmailStore) Get(id string) (mail.Email, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.active {
		if s.active[i].ID == id {
			return s.active[i].Clone(), true
		}
	}
	return mail.Email{}, false
}

// ToggleStar flips the starred flag on one active email. Unknown ids are
// ignored.
func (s *EmailStore) ToggleStar(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.active {
		if s.active[i].ID == id {
			s.active[i].IsStarred = !s.active[i].IsStarred
			s.rev++
			return
		}
	}
}

// SetRead sets the read flag on every matching active email.
func (s *EmailStore) SetRead(ids []string, read bool) {
	if len(ids) == 0 {
		return
	}
	want := idSet(ids)
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	for i := range s.active {
		if _, ok := want[s.active[i].ID]; ok {
			s.active[i].IsRead = read
			changed = true
		}
	}
	if changed {
		s.rev++
	}
}

// SetLabels replaces the label list on every matching active email.
func (s *EmailStore) SetLabels(ids []string, labelIDs []string) {
	if len(ids) == 0 {
		return
	}
	want := idSet(ids)
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	for i := range s.active {
		if _, ok := want[s.active[i].ID]; ok {
			s.active[i].LabelIDs = append([]string(nil), labelIDs...)
			changed = true
		}
	}
	if changed {
		s.rev++
	}
}

// StripLabel removes a label id from every email in both partitions.
// Used by the taxonomy's delete cascade.
func (s *EmailStore) StripLabel(labelID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	for _, part := range [][]mail.Email{s.active, s.deleted} {
		for i := range part {
			kept := part[i].LabelIDs[:0]
			for _, id := range part[i].LabelIDs {
				if id != labelID {
					kept = append(kept, id)
				} else {
					changed = true
				}
			}
			part[i].LabelIDs = kept
		}
	}
	if changed {
		s.rev++
	}
}

// SoftDelete moves matching emails to the deleted partition and returns
// copies of the records as they were before the move, for undo.
func (s *EmailStore) SoftDelete(ids []string) []mail.Email {
	if len(ids) == 0 {
		return nil
	}
	want := idSet(ids)
	s.mu.Lock()
	defer s.mu.Unlock()

	var snapshots []mail.Email
	kept := s.active[:0]
	for _, e := range s.active {
		if _, ok := want[e.ID]; !ok {
			kept = append(kept, e)
			continue
		}
		snapshots = append(snapshots, e.Clone())
		e.IsDeleted = true
		s.deleted = append(s.deleted, e)
	}
	s.active = kept
	if len(snapshots) > 0 {
		s.rev++
	}
	return snapshots
}

// Restore is the exact inverse of SoftDelete: matching records leave the
// deleted partition and rejoin the active collection.
func (s *EmailStore) Restore(ids []string) {
	if len(ids) == 0 {
		return
	}
	want := idSet(ids)
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	kept := s.deleted[:0]
	for _, e := range s.deleted {
		if _, ok := want[e.ID]; !ok {
			kept = append(kept, e)
			continue
		}
		e.IsDeleted = false
		s.active = append(s.active, e)
		changed = true
	}
	s.deleted = kept
	if changed {
		s.rev++
	}
}

// ReinsertDeleted puts previously snapshotted records back into the active
// collection and drops them from the deleted partition. Used when undoing
// a bulk delete, so the records do not end up present in both partitions.
func (s *EmailStore) ReinsertDeleted(records []mail.Email) {
	if len(records) == 0 {
		return
	}
	ids := make(map[string]struct{}, len(records))
	for _, r := range records {
		ids[r.ID] = struct{}{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.deleted[:0]
	for _, e := range s.deleted {
		if _, ok := ids[e.ID]; !ok {
			kept = append(kept, e)
		}
	}
	s.deleted = kept
	for _, r := range records {
		r = r.Clone()
		r.IsDeleted = false
		s.active = append(s.active, r)
	}
	s.rev++
}

// RestoreReadStates resets the read flag per id. Unknown ids are ignored.
func (s *EmailStore) RestoreReadStates(states map[string]bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	for i := range s.active {
		if read, ok := states[s.active[i].ID]; ok {
			s.active[i].IsRead = read
			changed = true
		}
	}
	if changed {
		s.rev++
	}
}

// RestoreStarStates resets the starred flag per id. Unknown ids are ignored.
func (s *EmailStore) RestoreStarStates(states map[string]bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	for i := range s.active {
		if starred, ok := states[s.active[i].ID]; ok {
			s.active[i].IsStarred = starred
			changed = true
		}
	}
	if changed {
		s.rev++
	}
}

func cloneAll(in []mail.Email) []mail.Email {
	out := make([]mail.Email, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

func idSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
