package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/mealkeeper/internal/client/models"
	"github.com/dmitrijs2005/mealkeeper/internal/common"
	"github.com/dmitrijs2005/mealkeeper/internal/logging"
	"github.com/google/uuid"
)

// DefaultTimeout bounds a single request when no WithTimeout is given.
const DefaultTimeout = 15 * time.Second

// maxErrorBody caps how much of a failed response is read for its message.
const maxErrorBody = 4 << 10

// APIClient talks to the meal-tracking HTTP API. It holds no credentials;
// callers pass the access token to each authenticated call. Safe for
// concurrent use.
type APIClient struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	log     logging.Logger
}

// Option configures an APIClient.
type Option func(*APIClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *APIClient) { c.http = hc }
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *APIClient) { c.timeout = d }
}

// WithLogger sets the logger for request tracing.
func WithLogger(l logging.Logger) Option {
	return func(c *APIClient) { c.log = l }
}

// New returns a client for the API rooted at baseURL,
// e.g. "http://127.0.0.1:8080/api".
func New(baseURL string, opts ...Option) *APIClient {
	c := &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		timeout: DefaultTimeout,
		log:     logging.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the API root this client was built with.
func (c *APIClient) BaseURL() string { return c.baseURL }

// Register creates an account via POST /auth/register.
func (c *APIClient) Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterAck, error) {
	r, err := JSONRequest(http.MethodPost, "/auth/register", req)
	if err != nil {
		return nil, err
	}
	var ack models.RegisterAck
	if err := c.Send(ctx, "", r, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// Login exchanges credentials for a token pair.
func (c *APIClient) Login(ctx context.Context, creds models.Credentials) (*models.TokenPair, error) {
	r, err := JSONRequest(http.MethodPost, "/auth/login", creds)
	if err != nil {
		return nil, err
	}
	return c.tokenPair(ctx, r)
}

// Refresh exchanges a refresh token for a new pair. The returned RefreshToken
// is empty when the server did not rotate it.
func (c *APIClient) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	r, err := JSONRequest(http.MethodPost, "/auth/refresh", map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return nil, err
	}
	return c.tokenPair(ctx, r)
}

func (c *APIClient) tokenPair(ctx context.Context, r Request) (*models.TokenPair, error) {
	var pair models.TokenPair
	if err := c.Send(ctx, "", r, &pair); err != nil {
		return nil, err
	}
	if pair.AccessToken == "" {
		return nil, &APIError{Kind: KindMalformedBody, Status: http.StatusOK, Message: "response has no access token"}
	}
	return &pair, nil
}

// GetProfile returns the user the access token belongs to.
func (c *APIClient) GetProfile(ctx context.Context, accessToken string) (*models.Profile, error) {
	var p models.Profile
	if err := c.Send(ctx, accessToken, Request{Method: http.MethodGet, Path: "/users/me"}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *APIClient) ListMeals(ctx context.Context, accessToken string, page int) (*models.MealsPage, error) {
	var p models.MealsPage
	r := Request{Method: http.MethodGet, Path: "/meals", Query: mealsQuery(page)}
	if err := c.Send(ctx, accessToken, r, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *APIClient) GetMeal(ctx context.Context, accessToken, id string) (*models.Meal, error) {
	var m models.Meal
	if err := c.Send(ctx, accessToken, Request{Method: http.MethodGet, Path: mealPath(id)}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *APIClient) DeleteMeal(ctx context.Context, accessToken, id string) error {
	return c.Send(ctx, accessToken, Request{Method: http.MethodDelete, Path: mealPath(id)}, nil)
}

// UploadMealImage reads the whole of r and posts it as the "image" field.
func (c *APIClient) UploadMealImage(ctx context.Context, accessToken, filename string, r io.Reader) (*models.MealAnalysis, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	req, err := MealImageRequest(filename, data)
	if err != nil {
		return nil, err
	}
	var a models.MealAnalysis
	if err := c.Send(ctx, accessToken, req, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Send performs r, authenticating with accessToken when it is non-empty, and
// decodes a 2xx body into out. out may be nil to discard the body, or a
// *string to receive it as text. Any failure is an *APIError except a
// cancelled or expired ctx, which is returned wrapped as is.
func (c *APIClient) Send(ctx context.Context, accessToken string, r Request, out any) error {
	reqID := uuid.NewString()
	log := c.log.With("request_id", reqID, "method", r.Method, "path", r.Path)

	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	httpReq, err := c.newRequest(callCtx, r)
	if err != nil {
		return err
	}
	httpReq.Header.Set(common.RequestIDHeaderName, reqID)
	httpReq.Header.Set("Accept", "application/json")
	if accessToken != "" {
		httpReq.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+accessToken)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s %s: %w", r.Method, r.Path, ctxErr)
		}
		log.Debug(ctx, "api request failed", "error", err)
		return &APIError{Kind: KindNetwork, Message: "network error", Err: err}
	}
	defer resp.Body.Close()

	log.Debug(ctx, "api request",
		"status", resp.StatusCode,
		"authenticated", accessToken != "",
		"took", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Kind: KindHTTPStatus, Status: resp.StatusCode, Message: errorMessage(body)}
	}

	return decode(resp, out)
}

func (c *APIClient) newRequest(ctx context.Context, r Request) (*http.Request, error) {
	u := r.Path
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = c.baseURL + "/" + strings.TrimLeft(u, "/")
	}
	if len(r.Query) > 0 {
		u += "?" + r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, r.Method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", r.Method, r.Path, err)
	}
	if r.ContentType != "" {
		httpReq.Header.Set("Content-Type", r.ContentType)
	}
	return httpReq, nil
}

func decode(resp *http.Response, out any) error {
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Kind: KindNetwork, Status: resp.StatusCode, Message: "read response", Err: err}
	}

	if s, ok := out.(*string); ok {
		*s = string(body)
		return nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &APIError{Kind: KindMalformedBody, Status: resp.StatusCode, Message: "malformed response", Err: err}
	}
	return nil
}

// errorMessage picks the most useful text out of an error body: a JSON
// "message", then a JSON "error", then the raw text.
func errorMessage(body []byte) string {
	var fields struct {
		Message any `json:"message"`
		Error   any `json:"error"`
	}
	if err := json.Unmarshal(body, &fields); err == nil {
		if s, ok := fields.Message.(string); ok && s != "" {
			return s
		}
		if s, ok := fields.Error.(string); ok && s != "" {
			return s
		}
		return GenericErrorMessage
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return GenericErrorMessage
}
