package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ajramos/mailcore/internal/mail"
)

const (
	labelNameMinLen = 2
	labelNameMaxLen = 20
)

// LabelServiceImpl implements LabelService over an in-memory taxonomy.
type LabelServiceImpl struct {
	store  LabelCascade
	mu     sync.RWMutex
	labels []mail.Label
	rev    uint64
	logger *log.Logger // Optional - for debug logging
	now    func() time.Time
}

// LabelCascade is the slice of the email store a label delete cascades into.
type LabelCascade interface {
	StripLabel(labelID string)
}

// NewLabelService creates a label service seeded with the built-in system
// labels. store may be nil in tests that never delete.
func NewLabelService(store LabelCascade) *LabelServiceImpl {
	return &LabelServiceImpl{
		store:  store,
		labels: DefaultLabels(),
		now:    time.Now,
	}
}

// DefaultLabels returns the built-in system labels. Their ids double as the
// heuristic keys in the view pipeline's section rules.
func DefaultLabels() []mail.Label {
	return []mail.Label{
		{ID: "work", Name: "Work", Color: "#1890ff", IsSystem: true, Category: "corporate"},
		{ID: "personal", Name: "Personal", Color: "#52c41a", IsSystem: true, Category: "corporate"},
		{ID: "important", Name: "Important", Color: "#f5222d", IsSystem: true, Category: "intent"},
		{ID: "travel", Name: "Travel", Color: "#faad14", IsSystem: true, Category: "intent"},
	}
}

// SetLogger sets the logger for debug output.
func (s *LabelServiceImpl) SetLogger(logger *log.Logger) {
	s.logger = logger
}

// Rev returns a counter bumped on every taxonomy change, used for pipeline
// memoization.
func (s *LabelServiceImpl) Rev() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rev
}

func (s *LabelServiceImpl) ListLabels(ctx context.Context) ([]mail.Label, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]mail.Label, len(s.labels))
	copy(out, s.labels)
	return out, nil
}

func (s *LabelServiceImpl) GetLabel(ctx context.Context, id string) (mail.Label, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.labels {
		if l.ID == id {
			return l, true
		}
	}
	return mail.Label{}, false
}

func (s *LabelServiceImpl) CreateLabel(ctx context.Context, name, color, description, category string) (mail.Label, error) {
	name = strings.TrimSpace(name)
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validateName(name, ""); err != nil {
		return mail.Label{}, err
	}

	label := mail.Label{
		ID:          uuid.New().String(),
		Name:        name,
		Color:       color,
		Description: strings.TrimSpace(description),
		Category:    category,
		CreatedAt:   s.now(),
	}
	s.labels = append(s.labels, label)
	s.rev++
	if s.logger != nil {
		s.logger.Printf("label created: %s (%s)", label.Name, label.ID)
	}
	return label, nil
}

func (s *LabelServiceImpl) UpdateLabel(ctx context.Context, id string, updates LabelUpdates) (mail.Label, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.labels {
		if s.labels[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return mail.Label{}, fmt.Errorf("update label %s: %w", id, ErrLabelNotFound)
	}
	if s.labels[idx].IsSystem {
		return mail.Label{}, fmt.Errorf("update label %s: %w", id, ErrLabelIsSystem)
	}

	if updates.Name != nil {
		name := strings.TrimSpace(*updates.Name)
		if err := s.validateName(name, id); err != nil {
			return mail.Label{}, err
		}
		s.labels[idx].Name = name
	}
	if updates.Color != nil {
		s.labels[idx].Color = *updates.Color
	}
	if updates.Description != nil {
		s.labels[idx].Description = strings.TrimSpace(*updates.Description)
	}
	if updates.Category != nil {
		s.labels[idx].Category = *updates.Category
	}
	s.rev++
	return s.labels[idx], nil
}

// DeleteLabel removes the label and strips its id from every email. The
// deleted id is returned so the caller can reset navigation if the active
// section pointed at it.
func (s *LabelServiceImpl) DeleteLabel(ctx context.Context, id string) (string, error) {
	s.mu.Lock()
	idx := -1
	for i := range s.labels {
		if s.labels[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return "", fmt.Errorf("delete label %s: %w", id, ErrLabelNotFound)
	}
	if s.labels[idx].IsSystem {
		s.mu.Unlock()
		return "", fmt.Errorf("delete label %s: %w", id, ErrLabelIsSystem)
	}
	s.labels = append(s.labels[:idx], s.labels[idx+1:]...)
	s.rev++
	s.mu.Unlock()

	if s.store != nil {
		s.store.StripLabel(id)
	}
	if s.logger != nil {
		s.logger.Printf("label deleted: %s", id)
	}
	return id, nil
}

// validateName enforces the length and case-insensitive uniqueness rules.
// excludeID skips the label being edited. Caller holds the lock.
func (s *LabelServiceImpl) validateName(name, excludeID string) error {
	if name == "" {
		return ErrLabelNameEmpty
	}
	if len([]rune(name)) < labelNameMinLen {
		return ErrLabelNameTooShort
	}
	if len([]rune(name)) > labelNameMaxLen {
		return ErrLabelNameTooLong
	}
	lower := strings.ToLower(name)
	for _, l := range s.labels {
		if l.ID != excludeID && strings.ToLower(l.Name) == lower {
			return ErrLabelNameDuplicate
		}
	}
	return nil
}
