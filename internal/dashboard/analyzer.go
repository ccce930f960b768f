package dashboard

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spacesedan/ballotboard/internal/clients"
	"github.com/spacesedan/ballotboard/internal/models"
	"github.com/spacesedan/ballotboard/internal/processing"
)

// TextAnalyzer is satisfied by clients.BallotClient.
type TextAnalyzer interface {
	AnalyzeText(ctx context.Context, text string) (models.AnalyzeResponse, error)
}

// InFlightGuard admits at most one holder per key.
type InFlightGuard interface {
	TryAcquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

type AnalysisResult struct {
	SourceText string `json:"source_text,omitempty"`
	Label      string `json:"label,omitempty"`
	Color      string `json:"color,omitempty"`
	Message    string `json:"error,omitempty"`
	Err        error  `json:"-"`
}

func (r AnalysisResult) Failed() bool {
	return r.Message != ""
}

type AnalyzerState struct {
	Busy   bool            `json:"busy"`
	Result *AnalysisResult `json:"result,omitempty"`
}

// Analyzer submits single texts for classification. While one submission is
// outstanding, further ones are rejected with ErrBusy rather than queued.
type Analyzer struct {
	client  TextAnalyzer
	guard   InFlightGuard
	key     string
	palette processing.ColorPolicy

	mu    sync.Mutex
	state AnalyzerState
}

func NewAnalyzer(client TextAnalyzer, guard InFlightGuard, key string) *Analyzer {
	if guard == nil {
		guard = NewLocalGuard()
	}
	return &Analyzer{
		client:  client,
		guard:   guard,
		key:     key,
		palette: processing.AnalyzerPalette(),
	}
}

// Submit analyzes text. Blank text is a no-op: no request, no state change,
// and a nil result.
func (a *Analyzer) Submit(ctx context.Context, text string) (*AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	ok, err := a.guard.TryAcquire(ctx, a.key)
	if err != nil {
		return nil, err
	}
	if !ok {
		slog.Info("[Analyzer] Rejecting overlapping submission",
			slog.String("session", a.key))
		return nil, ErrBusy
	}
	defer func() {
		// a cancelled request must still free the key
		releaseCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = a.guard.Release(releaseCtx, a.key)
	}()

	a.mu.Lock()
	a.state = AnalyzerState{Busy: true}
	a.mu.Unlock()

	resp, err := a.client.AnalyzeText(ctx, text)

	var result AnalysisResult
	if err != nil {
		slog.Error("[Analyzer] Analysis failed",
			slog.String("session", a.key),
			slog.String("error", err.Error()))
		result = AnalysisResult{Message: clients.UserMessage(err), Err: err}
	} else {
		result = AnalysisResult{
			SourceText: resp.Tweet,
			Label:      resp.Sentiment,
			Color:      a.palette.ColorFor(0, resp.Sentiment),
		}
	}

	a.mu.Lock()
	a.state = AnalyzerState{Result: &result}
	a.mu.Unlock()

	return &result, nil
}

func (a *Analyzer) State() AnalyzerState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// LocalGuard is an in-process InFlightGuard.
type LocalGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocalGuard() *LocalGuard {
	return &LocalGuard{held: make(map[string]struct{})}
}

func (g *LocalGuard) TryAcquire(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.held[key]; busy {
		return false, nil
	}
	g.held[key] = struct{}{}
	return true, nil
}

func (g *LocalGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, key)
	return nil
}
