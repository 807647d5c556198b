// Package services holds the client's session layer and the services built
// on top of it.
//
// # SessionManager
//
// SessionManager is the single owner of the access token, the refresh
// token and the cached profile. It
//
//   - restores the session at start-up (CheckStatus),
//   - logs in, logs out and registers,
//   - refreshes the access token, running at most one remote refresh at a
//     time and letting every other caller wait for that one,
//   - wraps authenticated calls (Call, Send) so a 401 triggers one refresh
//     and one retry.
//
// Everything it persists goes through a single commit path that writes the
// three stored keys in one credentials.Store Update, so the stored triple
// never mixes values from different logins or refreshes.
//
// # Timeouts
//
// The shared refresh runs detached from the caller that started it and is
// bounded by the refresh timeout. Each waiting caller is bounded by its own
// context and the refresh wait timeout, after which it gets
// ErrRefreshWaitTimeout while the refresh carries on.
//
// # Errors
//
// ErrNotAuthenticated, ErrSessionExpired, ErrRetryUnauthorized,
// ErrRefreshWaitTimeout and ErrStore are matched with errors.Is. API
// failures are passed through as *client.APIError.
package services
