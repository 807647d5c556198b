package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/mealkeeper/internal/client/apitest"
	"github.com/dmitrijs2005/mealkeeper/internal/client/client"
	"github.com/dmitrijs2005/mealkeeper/internal/client/metrics"
	"github.com/dmitrijs2005/mealkeeper/internal/client/models"
	"github.com/dmitrijs2005/mealkeeper/internal/client/repositories/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startAPI(t *testing.T, opts ...apitest.Option) (*apitest.Server, *client.APIClient) {
	t.Helper()
	srv := apitest.New(t, opts...)
	srv.AddUser("ann", "password1")
	for i := 0; i < 3; i++ {
		srv.AddMeal("ann", models.Meal{Name: "meal"})
	}
	return srv, client.New(srv.URL, client.WithHTTPClient(srv.Client()))
}

func TestIntegration_ConcurrentMealsAfterExpiry(t *testing.T) {
	const n = 8

	srv, api := startAPI(t)
	store, err := credentials.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	defer store.Close()

	m := metrics.New()
	sm := NewSessionManager(api, store, WithMetrics(m))
	meals := NewMealService(api, sm)
	ctx := context.Background()

	require.NoError(t, sm.Login(ctx, models.Credentials{Username: "ann", Password: "password1"}))
	first := sm.Snapshot().AccessToken

	srv.ExpireAccessTokens()
	srv.SetRefreshDelay(100 * time.Millisecond)

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			page, err := meals.ListMeals(ctx, 1)
			if err == nil && len(page.Meals) != 3 {
				err = assert.AnError
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, int64(1), srv.RefreshCalls())

	second := sm.Snapshot().AccessToken
	require.NotEqual(t, first, second)
	assert.Equal(t, n, srv.UsedTokens()[second])

	v, err := store.Get(ctx, "accessToken")
	require.NoError(t, err)
	assert.Equal(t, second, string(v))
}

func TestIntegration_RestartRestoresSession(t *testing.T) {
	srv, api := startAPI(t)
	path := t.TempDir() + "/session.db"
	ctx := context.Background()

	store, err := credentials.OpenSQLite(ctx, path)
	require.NoError(t, err)
	sm := NewSessionManager(api, store)
	require.NoError(t, sm.Login(ctx, models.Credentials{Username: "ann", Password: "password1"}))
	require.NoError(t, store.Close())

	// access token dies while the app is closed
	srv.ExpireAccessTokens()

	store, err = credentials.OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer store.Close()
	sm = NewSessionManager(api, store)

	require.NoError(t, sm.CheckStatus(ctx))
	snap := sm.Snapshot()
	assert.Equal(t, StatusAuthenticated, snap.Status)
	assert.Equal(t, "ann", snap.Profile.Username)
	assert.Equal(t, int64(1), srv.RefreshCalls())

	_, err = NewMealService(api, sm).ListMeals(ctx, 1)
	require.NoError(t, err)
}

func TestIntegration_RevokedRefreshLogsOut(t *testing.T) {
	srv, api := startAPI(t)
	nav := &recNavigator{}
	sm := NewSessionManager(api, credentials.NewMemoryStore(), WithNavigator(nav))
	ctx := context.Background()

	require.NoError(t, sm.Login(ctx, models.Credentials{Username: "ann", Password: "password1"}))
	srv.ExpireAccessTokens()
	srv.RevokeRefreshTokens()

	_, err := NewMealService(api, sm).ListMeals(ctx, 1)
	require.ErrorIs(t, err, ErrSessionExpired)

	snap := sm.Snapshot()
	assert.Equal(t, StatusUnauthenticated, snap.Status)
	assert.Equal(t, MsgSessionExpired, snap.LastError)
	assert.Equal(t, int64(1), nav.login.Load())
}

func TestIntegration_SealedStoreRoundTrip(t *testing.T) {
	_, api := startAPI(t, apitest.WithoutRotation())
	ctx := context.Background()

	inner := credentials.NewMemoryStore()
	sealed, err := credentials.NewSealedStore(ctx, inner, "device-secret")
	require.NoError(t, err)

	sm := NewSessionManager(api, sealed)
	require.NoError(t, sm.Login(ctx, models.Credentials{Username: "ann", Password: "password1"}))
	refresh := sm.Snapshot().RefreshToken

	require.NoError(t, sm.Refresh(ctx, ""))
	assert.Equal(t, refresh, sm.Snapshot().RefreshToken, "unrotated refresh token kept")

	raw, err := inner.Get(ctx, "refreshToken")
	require.NoError(t, err)
	assert.NotEqual(t, refresh, string(raw))
}
