package poll

import "sync"

// Notification is the one-shot event raised when the total matching count
// changes between two consecutive polls. The caller displays it and
// auto-dismisses after its own fixed duration.
type Notification struct {
	Delta int // signed change since the previous poll
	Total int // latest total
}

// Notifier is a two-state machine: uninitialized until the first observed
// count, tracking afterwards. The first observation never emits.
type Notifier struct {
	mu        sync.Mutex
	tracking  bool
	lastTotal int
}

// NewNotifier returns a notifier in the uninitialized state.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Observe records the latest poll total. It returns a notification and
// true when tracking and the total changed; the recorded total is updated
// unconditionally.
func (n *Notifier) Observe(total int) (Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	emit := n.tracking && total != n.lastTotal
	delta := total - n.lastTotal
	n.lastTotal = total
	n.tracking = true

	if !emit {
		return Notification{}, false
	}
	return Notification{Delta: delta, Total: total}, true
}

// Reset returns the notifier to the uninitialized state.
func (n *Notifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tracking = false
	n.lastTotal = 0
}
