// Package metrics counts session events: logins, refreshes, retries and
// store failures. Counters are lock-free and safe for concurrent use; a nil
// *Counters ignores every increment.
package metrics

import "sync/atomic"

// ID names one counter.
type ID uint8

const (
	LoginSuccess ID = iota
	LoginFailure
	// RefreshStarted counts remote refreshes actually performed.
	RefreshStarted
	RefreshSuccess
	RefreshFailure
	// RefreshCoalesced counts callers that joined a refresh already in flight.
	RefreshCoalesced
	// RefreshSkipped counts refreshes avoided because the token had already
	// been replaced.
	RefreshSkipped
	RequestRetried
	StoreFailure

	numCounters
)

var names = [numCounters]string{
	LoginSuccess:     "login_success",
	LoginFailure:     "login_failure",
	RefreshStarted:   "refresh_started",
	RefreshSuccess:   "refresh_success",
	RefreshFailure:   "refresh_failure",
	RefreshCoalesced: "refresh_coalesced",
	RefreshSkipped:   "refresh_skipped",
	RequestRetried:   "request_retried",
	StoreFailure:     "store_failure",
}

var help = [numCounters]string{
	LoginSuccess:     "Successful logins.",
	LoginFailure:     "Failed login attempts.",
	RefreshStarted:   "Remote token refreshes performed.",
	RefreshSuccess:   "Token refreshes that completed.",
	RefreshFailure:   "Token refreshes that ended the session.",
	RefreshCoalesced: "Callers that waited on a refresh already in flight.",
	RefreshSkipped:   "Refreshes skipped because the token was already replaced.",
	RequestRetried:   "Requests retried after a token refresh.",
	StoreFailure:     "Credential store write failures.",
}

func (id ID) String() string {
	if id >= numCounters {
		return "unknown"
	}
	return names[id]
}

// Help is a one-line description of the counter.
func (id ID) Help() string {
	if id >= numCounters {
		return ""
	}
	return help[id]
}

// All lists every counter in declaration order.
func All() []ID {
	ids := make([]ID, numCounters)
	for i := range ids {
		ids[i] = ID(i)
	}
	return ids
}

type Counters struct {
	c [numCounters]atomic.Uint64
}

func New() *Counters {
	return &Counters{}
}

func (m *Counters) Inc(id ID) {
	if m == nil || id >= numCounters {
		return
	}
	m.c[id].Add(1)
}

func (m *Counters) Get(id ID) uint64 {
	if m == nil || id >= numCounters {
		return 0
	}
	return m.c[id].Load()
}

// Snapshot returns a copy of every counter keyed by name.
func (m *Counters) Snapshot() map[string]uint64 {
	out := make(map[string]uint64, numCounters)
	for _, id := range All() {
		out[id.String()] = m.Get(id)
	}
	return out
}
