package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/dmitrijs2005/mealkeeper/internal/client/metrics"
)

const refreshKey = "refresh"

// Refresh obtains a new access token using refreshToken, or the current
// refresh token when it is empty. Concurrent calls share one remote refresh.
// On failure the session is cleared, LastError says the session expired and
// the navigator is sent to login.
func (s *SessionManager) Refresh(ctx context.Context, refreshToken string) error {
	_, err := s.refresh(ctx, s.Snapshot().AccessToken, refreshToken)
	return err
}

// refresh joins or starts the shared refresh and returns the access token
// to use from now on. stale is the access token the caller saw rejected;
// if it has already been replaced when the refresh starts, the current
// token is returned without a remote call.
//
// The refresh itself runs detached from ctx and is bounded by the refresh
// timeout. ctx and the wait timeout only bound how long this caller waits.
func (s *SessionManager) refresh(ctx context.Context, stale, refreshToken string) (string, error) {
	waitCtx, cancel := context.WithTimeout(ctx, s.waitTimeout)
	defer cancel()

	var leader atomic.Bool
	ch := s.refreshes.DoChan(refreshKey, func() (any, error) {
		leader.Store(true)
		return s.runRefresh(ctx, stale, refreshToken)
	})

	select {
	case res := <-ch:
		if !leader.Load() {
			s.metrics.Inc(metrics.RefreshCoalesced)
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil

	case <-waitCtx.Done():
		if err := ctx.Err(); err != nil {
			return "", err
		}
		s.log.Warn(ctx, "gave up waiting for token refresh", "wait", s.waitTimeout)
		return "", ErrRefreshWaitTimeout
	}
}

func (s *SessionManager) runRefresh(parent context.Context, stale, refreshToken string) (string, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), s.refreshTimeout)
	defer cancel()

	snap := s.Snapshot()
	if snap.AccessToken != "" && snap.AccessToken != stale {
		s.metrics.Inc(metrics.RefreshSkipped)
		return snap.AccessToken, nil
	}
	if refreshToken == "" {
		refreshToken = snap.RefreshToken
	}

	epoch := s.currentEpoch()
	if refreshToken == "" {
		return s.expire(ctx, epoch, ErrNoRefreshCredential)
	}

	s.metrics.Inc(metrics.RefreshStarted)
	s.update(func(st *Session) { st.IsRefreshing = true })
	defer s.update(func(st *Session) { st.IsRefreshing = false })

	pair, err := s.api.Refresh(ctx, refreshToken)
	if err != nil {
		return s.expire(ctx, epoch, err)
	}
	if pair.RefreshToken == "" {
		pair.RefreshToken = refreshToken
	}

	profile, err := s.api.GetProfile(ctx, pair.AccessToken)
	if err != nil {
		return s.expire(ctx, epoch, err)
	}

	err = s.commit(ctx, record{access: pair.AccessToken, refresh: pair.RefreshToken, profile: profile}, &epoch)
	switch {
	case errors.Is(err, errSessionChanged):
		return s.afterSessionChange()
	case err != nil:
		s.metrics.Inc(metrics.RefreshFailure)
		return "", s.storeFailed(ctx, err)
	}

	s.metrics.Inc(metrics.RefreshSuccess)
	s.log.Info(ctx, "access token refreshed", "user_id", profile.ID)
	return pair.AccessToken, nil
}

// expire is the terminal path of a failed refresh. If someone logged in or
// out while the refresh ran, their session is left alone.
func (s *SessionManager) expire(ctx context.Context, epoch uint64, cause error) (string, error) {
	s.metrics.Inc(metrics.RefreshFailure)
	s.log.Warn(ctx, "token refresh failed", "error", cause)

	err := s.signOutIf(ctx, epoch, MsgSessionExpired)
	if errors.Is(err, errSessionChanged) {
		return s.afterSessionChange()
	}
	if err != nil {
		s.log.Error(ctx, "erase expired session", "error", err)
	}
	s.nav.ToLogin()
	return "", fmt.Errorf("%w: %w", ErrSessionExpired, cause)
}

// afterSessionChange reports whatever session replaced the one the refresh
// was started for.
func (s *SessionManager) afterSessionChange() (string, error) {
	if token := s.Snapshot().AccessToken; token != "" {
		return token, nil
	}
	return "", ErrNotAuthenticated
}
