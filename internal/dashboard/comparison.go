package dashboard

import (
	"context"
	"log/slog"
	"sync"

	"github.com/spacesedan/ballotboard/internal/clients"
	"github.com/spacesedan/ballotboard/internal/processing"
)

type Side struct {
	Key   string
	Title string
}

// ComparisonBoard renders two sources side by side. A load either commits
// both cards or none; a failure on one side never leaves the other visible.
type ComparisonBoard struct {
	fetcher processing.SummaryFetcher
	left    Side
	right   Side
	opts    processing.TransformOptions

	base       context.Context
	cancelBase context.CancelFunc

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	done       chan struct{}
	view       ComparisonView
	closed     bool
}

func NewComparisonBoard(fetcher processing.SummaryFetcher, left, right Side) *ComparisonBoard {
	base, cancel := context.WithCancel(context.Background())
	return &ComparisonBoard{
		fetcher: fetcher,
		left:    left,
		right:   right,
		opts: processing.TransformOptions{
			PreviewLimit: processing.CompactPreviewLimit,
			Palette:      processing.DefaultPositionalPalette(),
		},
		base:       base,
		cancelBase: cancel,
		view:       ComparisonView{State: StateLoading},
	}
}

// Load dispatches a new comparison fetch, superseding any in flight.
func (c *ComparisonBoard) Load() (<-chan struct{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if c.cancel != nil {
		c.cancel()
	}

	c.generation++
	gen := c.generation
	c.view = ComparisonView{State: StateLoading, Generation: gen}

	ctx, cancel := context.WithCancel(c.base)
	c.cancel = cancel
	done := make(chan struct{})
	c.done = done

	go c.fetch(ctx, cancel, gen, done)
	return done, nil
}

// Ensure starts a load unless one is already pending or has succeeded.
func (c *ComparisonBoard) Ensure() (<-chan struct{}, error) {
	c.mu.Lock()
	if c.done != nil && !c.closed && c.view.State != StateError {
		done := c.done
		c.mu.Unlock()
		return done, nil
	}
	c.mu.Unlock()
	return c.Load()
}

func (c *ComparisonBoard) fetch(ctx context.Context, cancel context.CancelFunc, gen uint64, done chan struct{}) {
	defer close(done)
	defer cancel()

	result, err := processing.FetchComparison(ctx, c.fetcher, c.left.Key, c.right.Key)

	var next ComparisonView
	if err != nil {
		next = ComparisonView{
			State:      StateError,
			Generation: gen,
			Message:    clients.UserMessage(err),
			Err:        err,
		}
	} else {
		leftModel := processing.Transform(result.Left, c.opts)
		rightModel := processing.Transform(result.Right, c.opts)
		next = ComparisonView{
			State:      StateReady,
			Generation: gen,
			Left:       &CardView{Side: "left", Key: c.left.Key, Title: c.left.Title, Model: &leftModel},
			Right:      &CardView{Side: "right", Key: c.right.Key, Title: c.right.Title, Model: &rightModel},
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || c.closed {
		slog.Debug("[ComparisonBoard] Discarding stale result",
			slog.Uint64("generation", gen),
			slog.Uint64("current", c.generation))
		return
	}
	c.view = next
}

func (c *ComparisonBoard) View() ComparisonView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *ComparisonBoard) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cancelBase()
}
