// Package client is the HTTP client for the meal-tracking API.
//
// # Overview
//
// APIClient wraps the remote contract: Register, Login, Refresh and
// GetProfile for authentication, ListMeals, GetMeal, DeleteMeal and
// UploadMealImage for meal data, and Send for any other endpoint. It is
// stateless with respect to credentials; callers pass the access token in,
// and the session layer (see services.SessionManager) owns expiry handling.
//
// # Error Handling
//
// Every failed call returns an *APIError whose Kind says whether the
// request never got a response, got a non-2xx status, or got a 2xx body
// that could not be decoded. Match conditions with errors.Is:
//
//   - ErrUnauthorized: HTTP 401 only.
//   - ErrUnavailable: transport failures and 502/503/504.
//
// A cancelled caller context is returned wrapped as is, so
// errors.Is(err, context.Canceled) works and the error is not mistaken for
// an outage.
//
// No call is retried here.
package client
