package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spacesedan/ballotboard/internal/processing"
)

// Session is the per-browser application state: one dashboard, one
// comparison board and one analyzer, none of which share mutable state.
type Session struct {
	ID         string
	Dashboard  *Dashboard
	Comparison *ComparisonBoard
	Analyzer   *Analyzer

	mu       sync.Mutex
	lastSeen time.Time
	// returned is set once a request comes back carrying this session's id.
	returned bool
}

func (s *Session) touch(now time.Time, returned bool) {
	s.mu.Lock()
	s.lastSeen = now
	s.returned = s.returned || returned
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen), s.returned
}

func (s *Session) Close() {
	s.Dashboard.Close()
	s.Comparison.Close()
}

type Backend interface {
	processing.SummaryFetcher
	TextAnalyzer
}

type StoreOptions struct {
	Resolver      SourceResolver
	DefaultSource string
	Left, Right   Side
	Guard         InFlightGuard
	IdleTimeout   time.Duration

	// NewSessionTimeout expires sessions whose id was never sent back, such
	// as those created for crawlers and clients without cookies.
	NewSessionTimeout time.Duration
}

// SessionStore creates sessions on first sight and closes them once idle.
// Sessions nobody has come back to are closed after the shorter
// NewSessionTimeout.
type SessionStore struct {
	backend Backend
	opts    StoreOptions
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionStore(backend Backend, opts StoreOptions) *SessionStore {
	if opts.Guard == nil {
		opts.Guard = NewLocalGuard()
	}
	return &SessionStore{
		backend:  backend,
		opts:     opts,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for id, creating a fresh one (with a new id) when
// id is empty or unknown.
func (st *SessionStore) Get(id string) *Session {
	now := st.now()

	st.mu.Lock()
	defer st.mu.Unlock()

	if sess, ok := st.sessions[id]; ok && id != "" {
		sess.touch(now, true)
		return sess
	}

	sess := st.newSession(uuid.NewString())
	sess.touch(now, false)
	st.sessions[sess.ID] = sess

	slog.Debug("[SessionStore] Session created",
		slog.String("session", sess.ID),
		slog.Int("sessions", len(st.sessions)))
	return sess
}

// Lookup returns the session for id without creating one.
func (st *SessionStore) Lookup(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	now := st.now()

	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	sess.touch(now, true)
	return sess, true
}

func (st *SessionStore) newSession(id string) *Session {
	return &Session{
		ID: id,
		Dashboard: NewDashboard(st.backend, st.opts.Resolver, processing.TransformOptions{
			PreviewLimit: processing.FullPreview,
			Palette:      processing.DefaultLabelPalette(),
		}),
		Comparison: NewComparisonBoard(st.backend, st.opts.Left, st.opts.Right),
		Analyzer:   NewAnalyzer(st.backend, st.opts.Guard, id),
	}
}

func (st *SessionStore) DefaultSource() string {
	return st.opts.DefaultSource
}

func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep closes and forgets sessions idle for longer than their timeout. A
// zero timeout disables that half of the sweep.
func (st *SessionStore) Sweep() int {
	if st.opts.IdleTimeout <= 0 && st.opts.NewSessionTimeout <= 0 {
		return 0
	}
	now := st.now()

	st.mu.Lock()
	var expired []*Session
	for id, sess := range st.sessions {
		idle, returned := sess.idleSince(now)
		if limit := st.idleLimit(returned); limit > 0 && idle > limit {
			expired = append(expired, sess)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, sess := range expired {
		sess.Close()
	}
	if len(expired) > 0 {
		slog.Info("[SessionStore] Expired idle sessions",
			slog.Int("expired", len(expired)))
	}
	return len(expired)
}

func (st *SessionStore) idleLimit(returned bool) time.Duration {
	limit := st.opts.IdleTimeout
	if !returned && st.opts.NewSessionTimeout > 0 &&
		(limit <= 0 || st.opts.NewSessionTimeout < limit) {
		limit = st.opts.NewSessionTimeout
	}
	return limit
}

// RunSweeper calls Sweep on every tick until ctx is done.
func (st *SessionStore) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st.Sweep()
		}
	}
}

// CloseAll tears down every session.
func (st *SessionStore) CloseAll() {
	st.mu.Lock()
	sessions := st.sessions
	st.sessions = make(map[string]*Session)
	st.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}
}
