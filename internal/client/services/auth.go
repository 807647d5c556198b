package services

import (
	"context"

	"github.com/dmitrijs2005/mealkeeper/internal/client/client"
	"github.com/dmitrijs2005/mealkeeper/internal/client/metrics"
	"github.com/dmitrijs2005/mealkeeper/internal/client/models"
)

// CheckStatus settles the initial session from what is stored: a stored
// access token is verified with GetProfile, a rejected or missing one is
// replaced through a refresh, and with nothing usable the session ends up
// unauthenticated.
func (s *SessionManager) CheckStatus(ctx context.Context) error {
	s.update(func(st *Session) { st.IsLoading = true })
	defer s.update(func(st *Session) { st.IsLoading = false })

	rec, err := s.load(ctx)
	if err != nil {
		s.log.Error(ctx, "read stored credentials", "error", err)
		if eraseErr := s.signOut(ctx, MsgCheckFailed); eraseErr != nil {
			s.log.Warn(ctx, "erase after failed check", "error", eraseErr)
		}
		return err
	}

	if rec.access != "" && rec.profile != nil {
		profile, err := s.api.GetProfile(ctx, rec.access)
		switch {
		case err == nil:
			rec.profile = profile
			if err := s.commit(ctx, rec, nil); err != nil {
				return s.storeFailed(ctx, err)
			}
			s.log.Info(ctx, "session restored", "user_id", profile.ID)
			return nil

		case ctx.Err() != nil:
			return ctx.Err()
		}
		s.log.Info(ctx, "stored access token rejected", "error", err)
	}

	if rec.refresh != "" {
		_, err := s.refresh(ctx, rec.access, rec.refresh)
		return err
	}

	if rec.access != "" || rec.profile != nil {
		// leftovers without a refresh token are useless
		if err := s.signOut(ctx, ""); err != nil {
			s.log.Warn(ctx, "erase partial credentials", "error", err)
		}
		return nil
	}

	s.update(func(st *Session) { st.Status = StatusUnauthenticated })
	return nil
}

// Login authenticates, fetches the profile and stores all three together.
// A failure leaves any existing session exactly as it was.
func (s *SessionManager) Login(ctx context.Context, creds models.Credentials) error {
	s.update(func(st *Session) {
		st.IsLoading = true
		st.LastError = ""
	})

	pair, err := s.api.Login(ctx, creds)
	if err != nil {
		return s.loginFailed(ctx, err)
	}
	profile, err := s.api.GetProfile(ctx, pair.AccessToken)
	if err != nil {
		return s.loginFailed(ctx, err)
	}

	rec := record{access: pair.AccessToken, refresh: pair.RefreshToken, profile: profile}
	if err := s.commit(ctx, rec, nil); err != nil {
		s.metrics.Inc(metrics.LoginFailure)
		return s.storeFailed(ctx, err)
	}

	s.update(func(st *Session) { st.IsLoading = false })
	s.metrics.Inc(metrics.LoginSuccess)
	s.log.Info(ctx, "login succeeded", "user_id", profile.ID)
	s.nav.ToHome()
	return nil
}

func (s *SessionManager) loginFailed(ctx context.Context, err error) error {
	s.metrics.Inc(metrics.LoginFailure)
	s.log.Info(ctx, "login failed", "error", err)
	s.update(func(st *Session) {
		st.IsLoading = false
		st.LastError = client.Message(err)
	})
	return err
}

// Logout forgets the session locally. The server is not contacted.
func (s *SessionManager) Logout(ctx context.Context) error {
	s.update(func(st *Session) { st.IsLoading = true })

	err := s.signOut(ctx, "")
	if err != nil {
		s.log.Error(ctx, "logout erase failed", "error", err)
		s.update(func(st *Session) { st.LastError = MsgLogoutFailed })
	} else {
		s.log.Info(ctx, "logged out")
	}

	s.nav.ToLogin()
	return err
}

// Register creates an account. It does not sign the caller in.
func (s *SessionManager) Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterAck, error) {
	s.update(func(st *Session) {
		st.IsLoading = true
		st.LastError = ""
	})

	ack, err := s.api.Register(ctx, req)
	if err != nil {
		s.update(func(st *Session) {
			st.IsLoading = false
			st.LastError = client.Message(err)
		})
		return nil, err
	}

	s.update(func(st *Session) { st.IsLoading = false })
	s.log.Info(ctx, "registered", "username", req.Username)
	return ack, nil
}
