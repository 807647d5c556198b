package apitest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/mealkeeper/internal/client/client"
	"github.com/dmitrijs2005/mealkeeper/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_LoginProfileAndMeals(t *testing.T) {
	srv := New(t)
	srv.AddUser("ann", "password1")
	srv.AddMeal("ann", models.Meal{ID: "m1", Name: "soup"})

	c := client.New(srv.URL, client.WithHTTPClient(srv.Client()))
	ctx := context.Background()

	pair, err := c.Login(ctx, models.Credentials{Username: "ann", Password: "password1"})
	require.NoError(t, err)
	require.NotEmpty(t, pair.RefreshToken)

	p, err := c.GetProfile(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ann", p.Username)
	assert.Equal(t, int64(1), p.MealCount)

	page, err := c.ListMeals(ctx, pair.AccessToken, 1)
	require.NoError(t, err)
	require.Len(t, page.Meals, 1)

	require.NoError(t, c.DeleteMeal(ctx, pair.AccessToken, "m1"))
	_, err = c.GetMeal(ctx, pair.AccessToken, "m1")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
	assert.Equal(t, "meal not found", apiErr.Message)
}

func TestServer_BadLoginAndDuplicateRegister(t *testing.T) {
	srv := New(t)
	srv.AddUser("ann", "password1")
	c := client.New(srv.URL, client.WithHTTPClient(srv.Client()))
	ctx := context.Background()

	_, err := c.Login(ctx, models.Credentials{Username: "ann", Password: "wrong-password"})
	require.Error(t, err)
	assert.Equal(t, "invalid username or password", client.Message(err))

	_, err = c.Register(ctx, models.RegisterRequest{Username: "ann", Password: "password2"})
	require.Error(t, err)
	assert.Equal(t, "username already taken", client.Message(err))

	_, err = c.Register(ctx, models.RegisterRequest{Username: "bo", Password: "x"})
	require.Error(t, err)
}

func TestServer_ExpireAndRotate(t *testing.T) {
	srv := New(t)
	srv.AddUser("ann", "password1")
	pair := srv.IssueTokens("ann")
	c := client.New(srv.URL, client.WithHTTPClient(srv.Client()))
	ctx := context.Background()

	srv.ExpireAccessTokens()
	_, err := c.GetProfile(ctx, pair.AccessToken)
	assert.True(t, errors.Is(err, client.ErrUnauthorized))

	fresh, err := c.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, fresh.RefreshToken)
	assert.Equal(t, int64(1), srv.RefreshCalls())

	_, err = c.GetProfile(ctx, fresh.AccessToken)
	require.NoError(t, err)

	// rotated token is single use
	_, err = c.Refresh(ctx, pair.RefreshToken)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
	assert.Equal(t, "invalid refresh token", apiErr.Message)
}

func TestServer_WithoutRotationOmitsRefreshToken(t *testing.T) {
	srv := New(t, WithoutRotation())
	srv.AddUser("ann", "password1")
	pair := srv.IssueTokens("ann")
	c := client.New(srv.URL, client.WithHTTPClient(srv.Client()))

	fresh, err := c.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.Empty(t, fresh.RefreshToken)

	_, err = c.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err, "refresh token stays valid")
}

func TestServer_ShortAccessTTL(t *testing.T) {
	srv := New(t, WithAccessTTL(-time.Minute))
	srv.AddUser("ann", "password1")
	pair := srv.IssueTokens("ann")
	c := client.New(srv.URL, client.WithHTTPClient(srv.Client()))

	_, err := c.GetProfile(context.Background(), pair.AccessToken)
	assert.True(t, errors.Is(err, client.ErrUnauthorized))
}

func TestServer_Unavailable(t *testing.T) {
	srv := New(t)
	srv.SetUnavailable(true)
	c := client.New(srv.URL, client.WithHTTPClient(srv.Client()))

	_, err := c.Login(context.Background(), models.Credentials{Username: "ann", Password: "password1"})
	assert.True(t, errors.Is(err, client.ErrUnavailable))
}

func TestTokens_RejectForeignSecret(t *testing.T) {
	now := time.Now()
	tok, err := generateToken("u1", 0, []byte("one"), time.Hour, now)
	require.NoError(t, err)

	_, err = parseToken(tok, []byte("two"), now)
	require.Error(t, err)

	c, err := parseToken(tok, []byte("one"), now)
	require.NoError(t, err)
	assert.Equal(t, "u1", c.UserID)

	_, err = parseToken(tok, []byte("one"), now.Add(2*time.Hour))
	require.Error(t, err)
}
