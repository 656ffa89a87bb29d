package poll

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/ajramos/mailcore/internal/mail"
)

// Query is the opaque list request handed to the fetch collaborator.
type Query struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search,omitempty"`
	Folder   string `json:"folder"`
}

// Result is the shape the engine consumes from a poll. A nil Results slice
// means "no update": prior store state is retained.
type Result struct {
	Results []mail.Email `json:"results"`
	Count   int          `json:"count"`
}

// Fetcher is the external collaborator that performs the list call. The
// engine neither constructs nor validates the transport underneath it.
type Fetcher interface {
	FetchList(ctx context.Context, q Query) (*Result, error)
}

// fetchTimeout bounds a single list call.
const fetchTimeout = 30 * time.Second

// Poller issues the list call on a fixed interval and hands each
// successful result to the onResult callback. Failed fetches leave all
// state untouched; the next tick retries naturally (no internal backoff).
type Poller struct {
	fetcher  Fetcher
	query    Query
	interval time.Duration
	onResult func(*Result)
	logger   *log.Logger // Optional - for debug logging

	mu      sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewPoller creates a poller. onResult is invoked from the polling
// goroutine for every successful fetch.
func NewPoller(fetcher Fetcher, query Query, interval time.Duration, onResult func(*Result)) *Poller {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &Poller{
		fetcher:  fetcher,
		query:    query,
		interval: interval,
		onResult: onResult,
	}
}

// SetLogger sets the logger for debug output.
func (p *Poller) SetLogger(logger *log.Logger) {
	p.logger = logger
}

// Start launches the polling loop with an immediate initial fetch.
// Starting an already-running poller is a no-op.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	go p.loop(p.stopCh, p.doneCh)
}

// Stop halts the polling loop and waits for it to exit. An in-flight fetch
// completes (or times out) first; its result is still delivered.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	close(stopCh)
	<-doneCh
}

func (p *Poller) loop(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.fetchOnce()
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			p.fetchOnce()
		}
	}
}

func (p *Poller) fetchOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	res, err := p.fetcher.FetchList(ctx, p.query)
	if err != nil {
		if p.logger != nil {
			p.logger.Printf("poll failed: %v", err)
		}
		return
	}
	if res == nil {
		return
	}
	if p.onResult != nil {
		p.onResult(res)
	}
}
