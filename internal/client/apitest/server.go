// Package apitest runs an in-process fake of the meal-tracking API for
// tests. It implements the real HTTP contract (JSON bodies, bearer JWT
// access tokens, opaque rotating refresh tokens) and exposes knobs to
// expire tokens, slow down refreshes and count calls.
package apitest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/mealkeeper/internal/client/models"
	"github.com/dmitrijs2005/mealkeeper/internal/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 24 * time.Hour
	defaultPageSize   = 10
)

// Server is the fake API. URL is the base to hand to client.New.
type Server struct {
	URL string

	srv        *httptest.Server
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	rotate     bool

	mu           sync.Mutex
	st           *state
	generation   int64
	refreshDelay time.Duration
	unavailable  bool
	usedTokens   map[string]int

	refreshCalls atomic.Int64
	profileCalls atomic.Int64
}

type Option func(*Server)

// WithAccessTTL sets the lifetime of issued access tokens.
func WithAccessTTL(d time.Duration) Option {
	return func(s *Server) { s.accessTTL = d }
}

// WithoutRotation makes /auth/refresh keep the refresh token and omit it
// from the response.
func WithoutRotation() Option {
	return func(s *Server) { s.rotate = false }
}

// New starts a server and stops it when the test ends.
func New(t testing.TB, opts ...Option) *Server {
	t.Helper()

	s := &Server{
		secret:     common.GenerateRandByteArray(32),
		accessTTL:  defaultAccessTTL,
		refreshTTL: defaultRefreshTTL,
		rotate:     true,
		st:         newState(),
		usedTokens: make(map[string]int),
	}
	for _, o := range opts {
		o(s)
	}

	s.srv = httptest.NewServer(s.routes())
	s.URL = s.srv.URL + "/api"
	t.Cleanup(s.srv.Close)
	return s
}

// Client returns an *http.Client wired to the server.
func (s *Server) Client() *http.Client { return s.srv.Client() }

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.availability)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.register)
		r.Post("/auth/login", s.login)
		r.Post("/auth/refresh", s.refresh)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Get("/users/me", s.me)
			r.Get("/meals", s.listMeals)
			r.Get("/meals/{id}", s.getMeal)
			r.Delete("/meals/{id}", s.deleteMeal)
			r.Post("/meal/image", s.uploadImage)
		})
	})
	return r
}

// ---- control knobs ----

// AddUser registers a user directly and returns its profile.
func (s *Server) AddUser(username, password string) models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.st.register(models.RegisterRequest{
		Username:  username,
		Email:     username + "@example.com",
		Password:  password,
		FirstName: strings.ToUpper(username[:1]) + username[1:],
	}, time.Now())
	if err != nil {
		panic(err)
	}
	return *p
}

// AddMeal stores a meal for username.
func (s *Server) AddMeal(username string, m models.Meal) models.Meal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.addMeal(s.st.users[username].profile.ID, m)
}

// IssueTokens mints a valid pair for username, as a login would.
func (s *Server) IssueTokens(username string) models.TokenPair {
	s.mu.Lock()
	defer s.mu.Unlock()
	pair, err := s.issuePair(s.st.users[username].profile.ID)
	if err != nil {
		panic(err)
	}
	return *pair
}

// ExpireAccessTokens makes every access token issued so far invalid.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	s.generation++
	s.mu.Unlock()
}

// RevokeRefreshTokens makes every refresh token issued so far invalid.
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	s.st.refreshTokens = make(map[string]refreshToken)
	s.mu.Unlock()
}

// SetRefreshDelay delays every /auth/refresh response by d.
func (s *Server) SetRefreshDelay(d time.Duration) {
	s.mu.Lock()
	s.refreshDelay = d
	s.mu.Unlock()
}

// SetUnavailable makes every endpoint answer 503.
func (s *Server) SetUnavailable(v bool) {
	s.mu.Lock()
	s.unavailable = v
	s.mu.Unlock()
}

// RefreshCalls counts /auth/refresh requests received.
func (s *Server) RefreshCalls() int64 { return s.refreshCalls.Load() }

// ProfileCalls counts /users/me requests received.
func (s *Server) ProfileCalls() int64 { return s.profileCalls.Load() }

// UsedTokens reports how many meal requests each access token served.
func (s *Server) UsedTokens() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.usedTokens))
	for k, v := range s.usedTokens {
		out[k] = v
	}
	return out
}

// ---- handlers ----

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	p, err := s.st.register(req, time.Now())
	s.mu.Unlock()

	switch {
	case errors.Is(err, errUserExists):
		writeMessage(w, http.StatusConflict, err.Error())
	case err != nil:
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		writeJSON(w, http.StatusCreated, p)
	}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.st.login(creds)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, err.Error())
		return
	}
	pair, err := s.issuePair(u.profile.ID)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, common.ErrorInternal.Error())
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	s.refreshCalls.Add(1)

	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	s.mu.Lock()
	delay := s.refreshDelay
	s.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	userID, err := s.st.useRefreshToken(body.RefreshToken, s.rotate, now)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
		return
	}

	if !s.rotate {
		access, err := generateToken(userID, s.generation, s.secret, s.accessTTL, now)
		if err != nil {
			writeMessage(w, http.StatusInternalServerError, common.ErrorInternal.Error())
			return
		}
		writeJSON(w, http.StatusOK, models.TokenPair{AccessToken: access})
		return
	}

	pair, err := s.issuePair(userID)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, common.ErrorInternal.Error())
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	s.profileCalls.Add(1)

	s.mu.Lock()
	p, ok := s.st.profile(userID(r))
	s.mu.Unlock()
	if !ok {
		writeMessage(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) listMeals(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	s.mu.Lock()
	s.usedTokens[bearer(r)]++
	out := s.st.listMeals(userID(r), page, defaultPageSize)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getMeal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	s.usedTokens[bearer(r)]++
	m, ok := s.st.meals[userID(r)][id]
	s.mu.Unlock()

	if !ok {
		writeMessage(w, http.StatusNotFound, errMealNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) deleteMeal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	s.usedTokens[bearer(r)]++
	meals := s.st.meals[userID(r)]
	_, ok := meals[id]
	delete(meals, id)
	s.mu.Unlock()

	if !ok {
		writeMessage(w, http.StatusNotFound, errMealNotFound.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) uploadImage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.usedTokens[bearer(r)]++
	s.mu.Unlock()

	f, _, err := r.FormFile("image")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "image field is required")
		return
	}
	defer f.Close()
	if n, _ := io.Copy(io.Discard, f); n == 0 {
		writeMessage(w, http.StatusBadRequest, "image is empty")
		return
	}

	writeJSON(w, http.StatusOK, models.MealAnalysis{
		Ingredients: []models.AnalysedIngredient{
			{Name: "rice", Calories: 130},
			{Name: "chicken", Calories: 165},
		},
		Calories: 295,
	})
}

// ---- middleware & helpers ----

func (s *Server) availability(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		down := s.unavailable
		s.mu.Unlock()
		if down {
			writeMessage(w, http.StatusServiceUnavailable, "service unavailable")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearer(r)
		if token == "" {
			writeMessage(w, http.StatusUnauthorized, "missing access token")
			return
		}

		c, err := parseToken(token, s.secret, time.Now())
		s.mu.Lock()
		stale := err == nil && c.Generation < s.generation
		s.mu.Unlock()
		if err != nil || stale {
			writeMessage(w, http.StatusUnauthorized, common.ErrTokenExpired.Error())
			return
		}

		next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), c.UserID)))
	})
}

// issuePair mints an access token and a stored refresh token. s.mu is held.
func (s *Server) issuePair(userID string) (*models.TokenPair, error) {
	now := time.Now()
	access, err := generateToken(userID, s.generation, s.secret, s.accessTTL, now)
	if err != nil {
		return nil, err
	}
	refresh, err := s.st.issueRefreshToken(userID, s.refreshTTL, now)
	if err != nil {
		return nil, err
	}
	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func bearer(r *http.Request) string {
	h := r.Header.Get(common.AuthorizationHeaderName)
	if !strings.HasPrefix(h, common.BearerPrefix) {
		return ""
	}
	return strings.TrimPrefix(h, common.BearerPrefix)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
