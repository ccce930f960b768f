package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/ballotboard/internal/clients"
	"github.com/spacesedan/ballotboard/internal/models"
	"github.com/spacesedan/ballotboard/internal/processing"
)

func TestAnalyzer_BlankTextIsNoOp(t *testing.T) {
	backend := newStubBackend(nil)
	a := NewAnalyzer(backend, nil, "session-1")

	result, err := a.Submit(context.Background(), "hello")
	require.NoError(t, err)
	require.NotNil(t, result)
	before := a.State()

	for _, text := range []string{"", "   ", "\n\t"} {
		result, err := a.Submit(context.Background(), text)
		assert.NoError(t, err)
		assert.Nil(t, result)
	}

	assert.Equal(t, 1, backend.analyzeCount())
	assert.Equal(t, before, a.State())
}

func TestAnalyzer_Success(t *testing.T) {
	backend := newStubBackend(nil)
	backend.analyze = func(ctx context.Context, text string) (models.AnalyzeResponse, error) {
		return models.AnalyzeResponse{Tweet: text, Sentiment: "Positive"}, nil
	}
	a := NewAnalyzer(backend, NewLocalGuard(), "session-1")

	result, err := a.Submit(context.Background(), "great speech")
	require.NoError(t, err)

	assert.Equal(t, "great speech", result.SourceText)
	assert.Equal(t, "Positive", result.Label)
	assert.Equal(t, "#34d399", result.Color)
	assert.False(t, result.Failed())

	state := a.State()
	assert.False(t, state.Busy)
	require.NotNil(t, state.Result)
	assert.Equal(t, "Positive", state.Result.Label)
}

func TestAnalyzer_NeutralResultIsGray(t *testing.T) {
	backend := newStubBackend(nil)
	backend.analyze = func(ctx context.Context, text string) (models.AnalyzeResponse, error) {
		return models.AnalyzeResponse{Tweet: text, Sentiment: "Neutral"}, nil
	}
	a := NewAnalyzer(backend, nil, "session-1")

	result, err := a.Submit(context.Background(), "polling day")
	require.NoError(t, err)
	assert.Equal(t, "Neutral", result.Label)
	assert.Equal(t, processing.NeutralColor, result.Color)
}

func TestAnalyzer_FailureKeepsCauseOutOfMessage(t *testing.T) {
	cause := &clients.NetworkFailure{Endpoint: clients.ANALYZE_SINGLE_ENDPOINT, Err: errors.New("dial tcp: refused")}
	backend := newStubBackend(nil)
	backend.analyze = func(ctx context.Context, text string) (models.AnalyzeResponse, error) {
		return models.AnalyzeResponse{}, cause
	}
	a := NewAnalyzer(backend, nil, "session-1")

	result, err := a.Submit(context.Background(), "hello")
	require.NoError(t, err)

	assert.True(t, result.Failed())
	assert.Equal(t, "Something went wrong. Try again.", result.Message)
	assert.ErrorIs(t, result.Err, cause)
	assert.NotContains(t, result.Message, "refused")
}

func TestAnalyzer_RejectsOverlappingSubmission(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	backend := newStubBackend(nil)
	backend.analyze = func(ctx context.Context, text string) (models.AnalyzeResponse, error) {
		close(started)
		<-release
		return models.AnalyzeResponse{Tweet: text, Sentiment: "Negative"}, nil
	}
	a := NewAnalyzer(backend, NewLocalGuard(), "session-1")

	errs := make(chan error, 1)
	go func() {
		_, err := a.Submit(context.Background(), "first")
		errs <- err
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("first submission never started")
	}
	assert.True(t, a.State().Busy)

	_, err := a.Submit(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-errs)
	assert.Equal(t, 1, backend.analyzeCount())
	assert.Equal(t, "first", a.State().Result.SourceText)

	// the guard is free again once the first one settled
	backend.analyze = nil
	result, err := a.Submit(context.Background(), "third")
	require.NoError(t, err)
	assert.Equal(t, "third", result.SourceText)
}

func TestAnalyzer_SessionsDoNotShareGuard(t *testing.T) {
	guard := NewLocalGuard()

	ok, err := guard.TryAcquire(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = guard.TryAcquire(context.Background(), "a")
	assert.False(t, ok)

	ok, _ = guard.TryAcquire(context.Background(), "b")
	assert.True(t, ok)

	require.NoError(t, guard.Release(context.Background(), "a"))
	ok, _ = guard.TryAcquire(context.Background(), "a")
	assert.True(t, ok)
}

type failingGuard struct{}

func (failingGuard) TryAcquire(context.Context, string) (bool, error) {
	return false, errors.New("valkey down")
}

func (failingGuard) Release(context.Context, string) error { return nil }

func TestAnalyzer_GuardErrorPropagates(t *testing.T) {
	backend := newStubBackend(nil)
	a := NewAnalyzer(backend, failingGuard{}, "session-1")

	_, err := a.Submit(context.Background(), "hello")
	assert.EqualError(t, err, "valkey down")
	assert.Zero(t, backend.analyzeCount())
}
