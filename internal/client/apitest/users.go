package apitest

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/mealkeeper/internal/client/models"
	"github.com/dmitrijs2005/mealkeeper/internal/common"
	"github.com/dmitrijs2005/mealkeeper/internal/cryptox"
	"github.com/google/uuid"
)

var (
	errUserExists        = errors.New("username already taken")
	errBadCredentials    = errors.New("invalid username or password")
	errBadRefreshToken   = errors.New("invalid refresh token")
	errMealNotFound      = fmt.Errorf("meal %w", common.ErrorNotFound)
	errValidationFailure = errors.New("username must be at least 3 characters and password at least 8")
)

func newID() string { return uuid.NewString() }

type user struct {
	profile  models.Profile
	salt     []byte
	verifier []byte
}

type refreshToken struct {
	userID  string
	expires time.Time
}

// state is the in-memory backend of the fake API. Callers hold Server.mu.
type state struct {
	users         map[string]*user // by username
	byID          map[string]*user
	refreshTokens map[string]refreshToken
	meals         map[string]map[string]models.Meal // user id -> meal id -> meal
}

func newState() *state {
	return &state{
		users:         make(map[string]*user),
		byID:          make(map[string]*user),
		refreshTokens: make(map[string]refreshToken),
		meals:         make(map[string]map[string]models.Meal),
	}
}

func (st *state) register(req models.RegisterRequest, now time.Time) (*models.Profile, error) {
	if len(req.Username) < 3 || len(req.Password) < 8 {
		return nil, errValidationFailure
	}
	if _, ok := st.users[req.Username]; ok {
		return nil, errUserExists
	}

	salt := common.GenerateRandByteArray(16)
	u := &user{
		profile: models.Profile{
			ID:          newID(),
			Username:    req.Username,
			Email:       req.Email,
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			DateOfBirth: req.DateOfBirth,
			CreatedAt:   now.UTC().Format(time.RFC3339),
		},
		salt:     salt,
		verifier: cryptox.DeriveKey([]byte(req.Password), salt),
	}
	st.users[u.profile.Username] = u
	st.byID[u.profile.ID] = u
	st.meals[u.profile.ID] = make(map[string]models.Meal)

	p := u.profile
	return &p, nil
}

func (st *state) login(creds models.Credentials) (*user, error) {
	u, ok := st.users[creds.Username]
	if !ok {
		return nil, errBadCredentials
	}
	candidate := cryptox.DeriveKey([]byte(creds.Password), u.salt)
	if subtle.ConstantTimeCompare(u.verifier, candidate) != 1 {
		return nil, errBadCredentials
	}
	return u, nil
}

func (st *state) issueRefreshToken(userID string, validity time.Duration, now time.Time) (string, error) {
	token, err := common.MakeRandHexString(32)
	if err != nil {
		return "", err
	}
	st.refreshTokens[token] = refreshToken{userID: userID, expires: now.Add(validity)}
	return token, nil
}

// useRefreshToken validates token and, when rotate is set, consumes it.
func (st *state) useRefreshToken(token string, rotate bool, now time.Time) (string, error) {
	rt, ok := st.refreshTokens[token]
	if !ok || rt.expires.Before(now) {
		return "", errBadRefreshToken
	}
	if rotate {
		delete(st.refreshTokens, token)
	}
	return rt.userID, nil
}

func (st *state) profile(userID string) (*models.Profile, bool) {
	u, ok := st.byID[userID]
	if !ok {
		return nil, false
	}
	p := u.profile
	p.MealCount = int64(len(st.meals[userID]))
	return &p, true
}

func (st *state) addMeal(userID string, m models.Meal) models.Meal {
	if m.ID == "" {
		m.ID = newID()
	}
	if st.meals[userID] == nil {
		st.meals[userID] = make(map[string]models.Meal)
	}
	st.meals[userID][m.ID] = m
	return m
}

func (st *state) listMeals(userID string, page, pageSize int) models.MealsPage {
	all := make([]models.Meal, 0, len(st.meals[userID]))
	for _, m := range st.meals[userID] {
		all = append(all, m)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	start := (page - 1) * pageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return models.MealsPage{
		Meals:      all[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalCount: int64(len(all)),
	}
}
