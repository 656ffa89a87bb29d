package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ajramos/mailcore/internal/mail"
)

// ComposeServiceImpl implements ComposeService. Delivery is simulated with
// a fixed latency; completion callbacks fire on a background timer and must
// tolerate the service having been closed in the meantime.
type ComposeServiceImpl struct {
	sendLatency  time.Duration
	draftLatency time.Duration
	onDelivered  func(mail.OutboundEmail)

	mu     sync.Mutex
	drafts []mail.OutboundEmail
	closed bool
	logger *log.Logger // Optional - for debug logging
}

// NewComposeService creates a compose service with the given simulated
// latencies. onDelivered may be nil; it is invoked after the send latency
// elapses unless the service was closed first.
func NewComposeService(sendLatency, draftLatency time.Duration, onDelivered func(mail.OutboundEmail)) *ComposeServiceImpl {
	return &ComposeServiceImpl{
		sendLatency:  sendLatency,
		draftLatency: draftLatency,
		onDelivered:  onDelivered,
	}
}

// SetLogger sets the logger for debug output.
func (s *ComposeServiceImpl) SetLogger(logger *log.Logger) {
	s.logger = logger
}

// Send validates and dispatches an outbound message. The call returns as
// soon as the message is accepted; the simulated network delay runs in the
// background and its outcome is the caller's concern only via onDelivered.
func (s *ComposeServiceImpl) Send(ctx context.Context, msg mail.OutboundEmail) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("send: %w", ErrNoRecipients)
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("send: %w", ErrEngineClosed)
	}
	s.mu.Unlock()

	time.AfterFunc(s.sendLatency, func() {
		s.mu.Lock()
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return
		}
		if s.logger != nil {
			s.logger.Printf("sent email to %d recipients", len(msg.To))
		}
		if s.onDelivered != nil {
			s.onDelivered(msg)
		}
	})
	return nil
}

// SaveDraft stores the draft after the simulated latency. Messages with no
// recipients, subject and body are silently discarded.
func (s *ComposeServiceImpl) SaveDraft(ctx context.Context, msg mail.OutboundEmail) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("save draft: %w", ErrEngineClosed)
	}
	s.mu.Unlock()

	if msg.Empty() {
		return nil
	}

	time.AfterFunc(s.draftLatency, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}
		s.drafts = append(s.drafts, msg)
	})
	return nil
}

// Drafts returns the drafts saved so far.
func (s *ComposeServiceImpl) Drafts() []mail.OutboundEmail {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]mail.OutboundEmail, len(s.drafts))
	copy(out, s.drafts)
	return out
}

// Close marks the service torn down. In-flight timers still fire but their
// callbacks become no-ops.
func (s *ComposeServiceImpl) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}
