package dashboard

import (
	"context"
	"log/slog"
	"sync"

	"github.com/spacesedan/ballotboard/internal/clients"
	"github.com/spacesedan/ballotboard/internal/processing"
)

// SourceResolver validates data-source keys. *clients.RouteTable implements it.
type SourceResolver interface {
	Resolve(key string) (clients.Source, error)
}

// Dashboard owns the data-source selection of one single-source view. Select
// is the only way to change it; every change dispatches a fetch tagged with a
// new generation, and a fetch only commits if its generation is still current
// when it completes.
type Dashboard struct {
	fetcher  processing.SummaryFetcher
	resolver SourceResolver
	opts     processing.TransformOptions

	base       context.Context
	cancelBase context.CancelFunc

	mu         sync.Mutex
	selection  string
	generation uint64
	cancel     context.CancelFunc
	done       chan struct{}
	view       SummaryView
	closed     bool
}

func NewDashboard(fetcher processing.SummaryFetcher, resolver SourceResolver, opts processing.TransformOptions) *Dashboard {
	base, cancel := context.WithCancel(context.Background())
	return &Dashboard{
		fetcher:    fetcher,
		resolver:   resolver,
		opts:       opts,
		base:       base,
		cancelBase: cancel,
		view:       SummaryView{State: StateLoading},
	}
}

// Select switches to key and dispatches a fetch. The returned channel is
// closed once that fetch has settled, whether it committed or was discarded.
// Unknown keys fail before the selection changes.
func (d *Dashboard) Select(key string) (<-chan struct{}, error) {
	if _, err := d.resolver.Resolve(key); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, ErrClosed
	}

	if d.cancel != nil {
		d.cancel()
	}

	d.generation++
	gen := d.generation
	d.selection = key
	d.view = SummaryView{State: StateLoading, Source: key, Generation: gen}

	ctx, cancel := context.WithCancel(d.base)
	d.cancel = cancel
	done := make(chan struct{})
	d.done = done

	go d.fetch(ctx, cancel, key, gen, done)
	return done, nil
}

// Ensure selects key only if it differs from the current selection or the
// last fetch for it failed. Otherwise it returns the channel of the fetch
// already dispatched.
func (d *Dashboard) Ensure(key string) (<-chan struct{}, error) {
	d.mu.Lock()
	if key == d.selection && d.done != nil && !d.closed && d.view.State != StateError {
		done := d.done
		d.mu.Unlock()
		return done, nil
	}
	d.mu.Unlock()
	return d.Select(key)
}

func (d *Dashboard) fetch(ctx context.Context, cancel context.CancelFunc, key string, gen uint64, done chan struct{}) {
	defer close(done)
	defer cancel()

	payload, err := d.fetcher.FetchSummary(ctx, key)

	var next SummaryView
	if err != nil {
		next = SummaryView{
			State:      StateError,
			Source:     key,
			Generation: gen,
			Message:    clients.UserMessage(err),
			Err:        err,
		}
	} else {
		model := processing.Transform(payload, d.opts)
		next = SummaryView{State: StateReady, Source: key, Generation: gen, Model: &model}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if gen != d.generation || d.closed {
		slog.Debug("[Dashboard] Discarding stale result",
			slog.String("source", key),
			slog.Uint64("generation", gen),
			slog.Uint64("current", d.generation))
		return
	}

	if err != nil {
		slog.Warn("[Dashboard] Summary fetch failed",
			slog.String("source", key),
			slog.Bool("timeout", clients.IsTimeout(err)),
			slog.String("error", err.Error()))
	}
	d.view = next
}

func (d *Dashboard) View() SummaryView {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.view
}

func (d *Dashboard) Selection() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.selection
}

// Close cancels any in-flight fetch. Results arriving afterwards are dropped.
func (d *Dashboard) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.cancelBase()
}
