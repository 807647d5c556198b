package services

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/mealkeeper/internal/client/client"
	"github.com/dmitrijs2005/mealkeeper/internal/client/models"
	"github.com/dmitrijs2005/mealkeeper/internal/client/repositories/credentials"
)

// fakeAPI implements AuthAPI. Nil funcs fall back to simple defaults:
// GetProfile accepts only the tokens in valid.
type fakeAPI struct {
	mu    sync.Mutex
	valid map[string]bool

	registerFn func(ctx context.Context, req models.RegisterRequest) (*models.RegisterAck, error)
	loginFn    func(ctx context.Context, creds models.Credentials) (*models.TokenPair, error)
	refreshFn  func(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	profileFn  func(ctx context.Context, accessToken string) (*models.Profile, error)
	sendFn     func(ctx context.Context, accessToken string, r client.Request, out any) error

	refreshCalls atomic.Int64
	profileCalls atomic.Int64
}

func newFakeAPI(validTokens ...string) *fakeAPI {
	f := &fakeAPI{valid: map[string]bool{}}
	for _, t := range validTokens {
		f.valid[t] = true
	}
	return f
}

func (f *fakeAPI) setValid(tokens ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.valid = map[string]bool{}
	for _, t := range tokens {
		f.valid[t] = true
	}
}

func (f *fakeAPI) isValid(token string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.valid[token]
}

func unauthorized(msg string) error {
	return &client.APIError{Kind: client.KindHTTPStatus, Status: http.StatusUnauthorized, Message: msg}
}

func unavailable() error {
	return &client.APIError{Kind: client.KindNetwork, Message: "network error"}
}

func profileFor(id string) *models.Profile {
	return &models.Profile{ID: id, Username: "user-" + id, FirstName: "Ann"}
}

func (f *fakeAPI) Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterAck, error) {
	if f.registerFn != nil {
		return f.registerFn(ctx, req)
	}
	return &models.RegisterAck{Profile: models.Profile{ID: "new", Username: req.Username}}, nil
}

func (f *fakeAPI) Login(ctx context.Context, creds models.Credentials) (*models.TokenPair, error) {
	if f.loginFn != nil {
		return f.loginFn(ctx, creds)
	}
	return nil, unauthorized("invalid username or password")
}

func (f *fakeAPI) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	f.refreshCalls.Add(1)
	if f.refreshFn != nil {
		return f.refreshFn(ctx, refreshToken)
	}
	return nil, unauthorized("invalid refresh token")
}

func (f *fakeAPI) GetProfile(ctx context.Context, accessToken string) (*models.Profile, error) {
	f.profileCalls.Add(1)
	if f.profileFn != nil {
		return f.profileFn(ctx, accessToken)
	}
	if !f.isValid(accessToken) {
		return nil, unauthorized("token expired")
	}
	return profileFor("u1"), nil
}

func (f *fakeAPI) Send(ctx context.Context, accessToken string, r client.Request, out any) error {
	if f.sendFn != nil {
		return f.sendFn(ctx, accessToken, r, out)
	}
	if !f.isValid(accessToken) {
		return unauthorized("token expired")
	}
	return nil
}

// recNavigator counts navigation calls.
type recNavigator struct {
	login atomic.Int64
	home  atomic.Int64
}

func (n *recNavigator) ToLogin() { n.login.Add(1) }
func (n *recNavigator) ToHome()  { n.home.Add(1) }

// faultyStore wraps a Store and fails the selected operations.
type faultyStore struct {
	credentials.Store

	mu        sync.Mutex
	getErr    error
	updateErr error
}

func (s *faultyStore) fail(get, update error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getErr, s.updateErr = get, update
}

func (s *faultyStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	err := s.getErr
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.Store.Get(ctx, key)
}

func (s *faultyStore) Update(ctx context.Context, fn func(ctx context.Context, w credentials.Writer) error) error {
	s.mu.Lock()
	err := s.updateErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.Store.Update(ctx, fn)
}
