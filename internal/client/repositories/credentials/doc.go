// Package credentials is the secure credential store of the session layer.
//
// A Store is a tiny key/value store. The session layer keeps three keys in
// it (accessToken, refreshToken, userData) and always writes them through
// Update, so a crash or error never leaves a mix of old and new values.
//
// Backends share one contract:
//
//   - SQLiteStore: local file, goose-migrated metadata table, Update is a
//     database transaction.
//   - MemoryStore: process memory.
//   - RedisStore: prefixed keys, Update is one MULTI/EXEC.
//   - SealedStore: wraps any of the above and encrypts values at rest with
//     a key derived from a device secret.
//
// Get reports a missing key as ErrNotFound. Write failures are returned
// wrapped, never swallowed.
package credentials
