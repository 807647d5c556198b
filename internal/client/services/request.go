package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mealkeeper/internal/client/client"
	"github.com/dmitrijs2005/mealkeeper/internal/client/metrics"
)

// Call runs fn with the current access token. If fn fails with
// client.ErrUnauthorized, the token is refreshed once and fn is run again
// with the new one. A second rejection is returned as ErrRetryUnauthorized;
// any other failure is returned unchanged.
//
// fn may run twice and must be safe to repeat.
func (s *SessionManager) Call(ctx context.Context, fn func(ctx context.Context, accessToken string) error) error {
	token := s.Snapshot().AccessToken
	if token == "" {
		return ErrNotAuthenticated
	}

	err := fn(ctx, token)
	if !errors.Is(err, client.ErrUnauthorized) {
		return err
	}

	s.log.Debug(ctx, "request unauthorized, refreshing")
	fresh, err := s.refresh(ctx, token, "")
	if err != nil {
		return err
	}

	s.metrics.Inc(metrics.RequestRetried)
	err = fn(ctx, fresh)
	if errors.Is(err, client.ErrUnauthorized) {
		return fmt.Errorf("%w: %w", ErrRetryUnauthorized, err)
	}
	return err
}

// Send performs an arbitrary API request through Call.
func (s *SessionManager) Send(ctx context.Context, r client.Request, out any) error {
	return s.Call(ctx, func(ctx context.Context, accessToken string) error {
		return s.api.Send(ctx, accessToken, r, out)
	})
}
