package engine

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/ajramos/mailcore/internal/mail"
	"github.com/ajramos/mailcore/internal/poll"
	"github.com/ajramos/mailcore/internal/services"
	"github.com/ajramos/mailcore/internal/store"
	"github.com/ajramos/mailcore/internal/views"
)

// Engine owns the session's mail state and the view configuration the
// presentation layer reads from: active section, search query, attribute
// filters and the checked-email selection. All mutations run to completion
// under one lock; the derived view and counts are pure functions of the
// latest state.
type Engine struct {
	store   *store.EmailStore
	labels  *services.LabelServiceImpl
	bulk    *services.BulkActionServiceImpl
	undo    *services.UndoServiceImpl
	compose *services.ComposeServiceImpl

	notifier *poll.Notifier
	poller   *poll.Poller
	events   chan poll.Notification

	mu      sync.Mutex
	section string
	search  string
	filters views.FilterOptions
	checked map[string]struct{}
	rules   views.SectionRules
	closed  bool

	memo   viewMemo
	logger *log.Logger // Optional - for debug logging
}

// viewMemo caches the derived view keyed on the full input tuple, so
// repeated reads skip recomputation when nothing relevant changed.
type viewMemo struct {
	valid     bool
	storeRev  uint64
	labelsRev uint64
	section   string
	search    string
	filters   views.FilterOptions
	out       []mail.Email
}

// Options configures a new engine.
type Options struct {
	Fetcher      poll.Fetcher // nil disables polling
	Query        poll.Query
	PollInterval time.Duration
	SectionRules views.SectionRules // nil uses the defaults
	SendLatency  time.Duration
	DraftLatency time.Duration
	Logger       *log.Logger
}

// New creates an engine with all services wired. Call Start to begin
// polling and Close to tear everything down.
func New(opts Options) *Engine {
	st := store.NewEmailStore()
	undo := services.NewUndoService(st)
	bulk := services.NewBulkActionService(st)
	bulk.SetUndoService(undo)
	labels := services.NewLabelService(st)

	rules := opts.SectionRules
	if rules == nil {
		rules = views.DefaultSectionRules()
	}

	e := &Engine{
		store:    st,
		labels:   labels,
		bulk:     bulk,
		undo:     undo,
		compose:  services.NewComposeService(opts.SendLatency, opts.DraftLatency, nil),
		notifier: poll.NewNotifier(),
		events:   make(chan poll.Notification, 16),
		section:  views.SectionInbox,
		filters:  views.DefaultFilters(),
		checked:  make(map[string]struct{}),
		rules:    rules,
		logger:   opts.Logger,
	}
	if opts.Logger != nil {
		labels.SetLogger(opts.Logger)
		bulk.SetLogger(opts.Logger)
		undo.SetLogger(opts.Logger)
		e.compose.SetLogger(opts.Logger)
	}
	if opts.Fetcher != nil {
		e.poller = poll.NewPoller(opts.Fetcher, opts.Query, opts.PollInterval, e.HandlePollResult)
		if opts.Logger != nil {
			e.poller.SetLogger(opts.Logger)
		}
	}
	return e
}

// Start launches the background poller, if one was configured.
func (e *Engine) Start() {
	if e.poller != nil {
		e.poller.Start()
	}
}

// Close stops the poller and marks the engine torn down. In-flight
// simulated network delays complete as no-ops.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	if e.poller != nil {
		e.poller.Stop()
	}
	e.compose.Close()
}

// Events is the one-shot notification stream from the poll diff detector.
func (e *Engine) Events() <-chan poll.Notification {
	return e.events
}

// Labels exposes the label taxonomy service.
func (e *Engine) Labels() services.LabelService { return e.labels }

// Compose exposes the outbound compose service.
func (e *Engine) Compose() services.ComposeService { return e.compose }

// HandlePollResult ingests one poll result: the count feeds the diff
// detector, the batch replaces the store unless results are missing.
func (e *Engine) HandlePollResult(res *poll.Result) {
	if res == nil {
		return
	}
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return
	}

	if n, ok := e.notifier.Observe(res.Count); ok {
		select {
		case e.events <- n:
		default:
			// Drop if nobody is draining; notifications are one-shot hints.
		}
	}
	if res.Results == nil {
		if e.logger != nil {
			e.logger.Printf("poll result had no records; keeping previous state")
		}
		return
	}
	e.store.ApplyBatch(res.Results)
}

// SetSection switches the active navigation section.
func (e *Engine) SetSection(section string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.section = section
}

// Section returns the active navigation section.
func (e *Engine) Section() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.section
}

// SetSearch updates the search query.
func (e *Engine) SetSearch(query string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.search = query
}

// SetFilters replaces the attribute filter configuration wholesale.
func (e *Engine) SetFilters(f views.FilterOptions) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filters = f
}

// Filters returns the active filter configuration.
func (e *Engine) Filters() views.FilterOptions {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filters
}

// Conversations derives the current view. The result is memoized on the
// (store revision, labels revision, section, search, filters) tuple and
// must be treated as read-only by consumers.
func (e *Engine) Conversations() []mail.Email {
	e.mu.Lock()
	defer e.mu.Unlock()

	storeRev, labelsRev := e.store.Rev(), e.labels.Rev()
	if e.memo.valid &&
		e.memo.storeRev == storeRev &&
		e.memo.labelsRev == labelsRev &&
		e.memo.section == e.section &&
		e.memo.search == e.search &&
		e.memo.filters == e.filters {
		return e.memo.out
	}

	labels, _ := e.labels.ListLabels(context.Background())
	out := views.Derive(views.Input{
		Emails:  e.store.Emails(),
		Deleted: e.store.Deleted(),
		Labels:  labels,
		Rules:   e.rules,
		Section: e.section,
		Search:  e.search,
		Filters: e.filters,
	})
	e.memo = viewMemo{
		valid:     true,
		storeRev:  storeRev,
		labelsRev: labelsRev,
		section:   e.section,
		search:    e.search,
		filters:   e.filters,
		out:       out,
	}
	return out
}

// Counts recomputes the per-section and per-label badge counts.
func (e *Engine) Counts() views.EmailCounts {
	labels, _ := e.labels.ListLabels(context.Background())
	e.mu.Lock()
	rules := e.rules
	e.mu.Unlock()
	return views.Aggregate(e.store.Emails(), e.store.Deleted(), labels, rules)
}

// MarkRead applies a bulk read-status change and clears the selection.
func (e *Engine) MarkRead(ctx context.Context, ids []string, read bool) error {
	err := e.bulk.MarkRead(ctx, ids, read)
	e.clearSelection()
	return err
}

// Delete soft-deletes the given emails and clears the selection.
func (e *Engine) Delete(ctx context.Context, ids []string) error {
	err := e.bulk.Delete(ctx, ids)
	e.clearSelection()
	return err
}

// Restore moves the given emails out of the bin and clears the selection.
func (e *Engine) Restore(ctx context.Context, ids []string) error {
	err := e.bulk.Restore(ctx, ids)
	e.clearSelection()
	return err
}

// AssignLabels replaces the label list on the given emails and clears the
// selection.
func (e *Engine) AssignLabels(ctx context.Context, ids []string, labelIDs []string) error {
	err := e.bulk.AssignLabels(ctx, ids, labelIDs)
	e.clearSelection()
	return err
}

// ToggleStar flips the starred flag on one email.
func (e *Engine) ToggleStar(ctx context.Context, id string) error {
	return e.bulk.ToggleStar(ctx, id)
}

// Undo reverses the most recent bulk action, if any, and clears the
// selection.
func (e *Engine) Undo(ctx context.Context) (*services.UndoResult, error) {
	res, err := e.undo.UndoLastAction(ctx)
	e.clearSelection()
	return res, err
}

// DeleteLabel removes a label from the taxonomy, cascading into the email
// store. If the active section pointed at the deleted label, navigation
// falls back to the inbox.
func (e *Engine) DeleteLabel(ctx context.Context, id string) error {
	deletedID, err := e.labels.DeleteLabel(ctx, id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	if e.section == views.CustomLabelSection(deletedID) || e.section == views.SystemLabelSection(deletedID) {
		e.section = views.SectionInbox
	}
	e.mu.Unlock()
	return nil
}

// ToggleChecked flips an email in or out of the selection set.
func (e *Engine) ToggleChecked(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.checked[id]; ok {
		delete(e.checked, id)
	} else {
		e.checked[id] = struct{}{}
	}
}

// SelectAll checks every email in the current view.
func (e *Engine) SelectAll() {
	convs := e.Conversations()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checked = make(map[string]struct{}, len(convs))
	for _, c := range convs {
		e.checked[c.ID] = struct{}{}
	}
}

// ClearSelection unchecks everything.
func (e *Engine) ClearSelection() {
	e.clearSelection()
}

// Checked returns the ids of the currently selected emails.
func (e *Engine) Checked() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.checked))
	for id := range e.checked {
		out = append(out, id)
	}
	return out
}

func (e *Engine) clearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.checked) > 0 {
		e.checked = make(map[string]struct{})
	}
}
