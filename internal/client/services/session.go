package services

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/mealkeeper/internal/client/client"
	"github.com/dmitrijs2005/mealkeeper/internal/client/metrics"
	"github.com/dmitrijs2005/mealkeeper/internal/client/models"
	"github.com/dmitrijs2005/mealkeeper/internal/client/repositories/credentials"
	"github.com/dmitrijs2005/mealkeeper/internal/logging"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultRefreshTimeout     = 10 * time.Second
	DefaultRefreshWaitTimeout = 20 * time.Second
)

// AuthAPI is the part of the remote API the session layer needs.
// *client.APIClient implements it.
type AuthAPI interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterAck, error)
	Login(ctx context.Context, creds models.Credentials) (*models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	GetProfile(ctx context.Context, accessToken string) (*models.Profile, error)
	Send(ctx context.Context, accessToken string, r client.Request, out any) error
}

type AuthStatus int

const (
	StatusUnknown AuthStatus = iota
	StatusAuthenticated
	StatusUnauthenticated
)

func (s AuthStatus) String() string {
	switch s {
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Session is a point-in-time copy of the session state.
type Session struct {
	AccessToken  string
	RefreshToken string
	Profile      *models.Profile
	Status       AuthStatus
	IsLoading    bool
	IsRefreshing bool
	LastError    string
}

func (s Session) clone() Session {
	if s.Profile != nil {
		p := *s.Profile
		s.Profile = &p
	}
	return s
}

// SessionManager owns the credentials of the running client. It is created
// once at start-up and shared by everything that talks to the API.
//
// Lock order: persistMu, then mu. Observers are called with no lock held.
type SessionManager struct {
	api     AuthAPI
	store   credentials.Store
	nav     Navigator
	log     logging.Logger
	metrics *metrics.Counters

	refreshTimeout time.Duration
	waitTimeout    time.Duration

	mu    sync.RWMutex
	state Session
	// epoch changes on every login, logout or forced reset; a refresh
	// started under an older epoch must not commit.
	epoch uint64

	persistMu sync.Mutex
	refreshes singleflight.Group

	subsMu  sync.Mutex
	subs    map[int]func(Session)
	nextSub int
}

// Option configures a SessionManager.
type Option func(*SessionManager)

// WithNavigator sets the hook called on login, logout and expiry.
func WithNavigator(n Navigator) Option {
	return func(s *SessionManager) { s.nav = n }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logging.Logger) Option {
	return func(s *SessionManager) { s.log = l }
}

// WithMetrics sets the counters updated by the session. Nil disables them.
func WithMetrics(m *metrics.Counters) Option {
	return func(s *SessionManager) { s.metrics = m }
}

// WithRefreshTimeout bounds the shared refresh (refresh call plus profile
// fetch and commit).
func WithRefreshTimeout(d time.Duration) Option {
	return func(s *SessionManager) {
		if d > 0 {
			s.refreshTimeout = d
		}
	}
}

// WithRefreshWaitTimeout bounds how long any one caller waits for a
// refresh to finish.
func WithRefreshWaitTimeout(d time.Duration) Option {
	return func(s *SessionManager) {
		if d > 0 {
			s.waitTimeout = d
		}
	}
}

// NewSessionManager returns a manager in StatusUnknown; call CheckStatus to
// settle it from the store.
func NewSessionManager(api AuthAPI, store credentials.Store, opts ...Option) *SessionManager {
	s := &SessionManager{
		api:            api,
		store:          store,
		nav:            NopNavigator{},
		log:            logging.Nop(),
		refreshTimeout: DefaultRefreshTimeout,
		waitTimeout:    DefaultRefreshWaitTimeout,
		subs:           make(map[int]func(Session)),
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With("component", "session")
	return s
}

// Snapshot returns a copy of the current state.
func (s *SessionManager) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs on the goroutine that made the change. It must not block or
// call the manager's mutating methods.
func (s *SessionManager) Subscribe(fn func(Session)) (cancel func()) {
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

// ClearError drops LastError.
func (s *SessionManager) ClearError() {
	s.update(func(st *Session) { st.LastError = "" })
}

// update is the only writer of s.state. It keeps Status consistent with
// AccessToken and notifies observers once the lock is released.
func (s *SessionManager) update(fn func(st *Session)) {
	s.mu.Lock()
	fn(&s.state)
	switch {
	case s.state.AccessToken != "":
		s.state.Status = StatusAuthenticated
	case s.state.Status == StatusAuthenticated:
		s.state.Status = StatusUnauthenticated
	}
	snap := s.state.clone()
	s.mu.Unlock()

	s.notify(snap)
}

func (s *SessionManager) notify(snap Session) {
	s.subsMu.Lock()
	fns := make([]func(Session), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(snap.clone())
	}
}

func (s *SessionManager) currentEpoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}
