package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mealkeeper/internal/client/metrics"
	"github.com/dmitrijs2005/mealkeeper/internal/client/models"
	"github.com/dmitrijs2005/mealkeeper/internal/client/repositories/credentials"
	"github.com/dmitrijs2005/mealkeeper/internal/common"
)

// record is the persisted triple. The zero record means "signed out".
type record struct {
	access  string
	refresh string
	profile *models.Profile
}

// commit writes rec to the store in one Update and then mirrors it in
// memory. With guard set, nothing happens unless the epoch still equals
// *guard; otherwise the epoch is advanced. Commits never interleave.
func (s *SessionManager) commit(ctx context.Context, rec record, guard *uint64) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if guard != nil && s.currentEpoch() != *guard {
		return errSessionChanged
	}

	if err := s.write(ctx, rec); err != nil {
		return err
	}

	s.update(func(st *Session) {
		st.AccessToken = rec.access
		st.RefreshToken = rec.refresh
		st.Profile = rec.profile
		if guard == nil {
			s.epoch++
		}
	})
	return nil
}

func (s *SessionManager) write(ctx context.Context, rec record) error {
	var userData []byte
	if rec.profile != nil {
		b, err := json.Marshal(rec.profile)
		if err != nil {
			return fmt.Errorf("%w: encode profile: %w", ErrStore, err)
		}
		userData = b
	}

	err := s.store.Update(ctx, func(ctx context.Context, w credentials.Writer) error {
		if err := setOrDelete(ctx, w, common.AccessTokenKey, []byte(rec.access)); err != nil {
			return err
		}
		if err := setOrDelete(ctx, w, common.RefreshTokenKey, []byte(rec.refresh)); err != nil {
			return err
		}
		return setOrDelete(ctx, w, common.UserDataKey, userData)
	})
	if err != nil {
		s.metrics.Inc(metrics.StoreFailure)
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	return nil
}

func setOrDelete(ctx context.Context, w credentials.Writer, key string, v []byte) error {
	if len(v) == 0 {
		return w.Delete(ctx, key)
	}
	return w.Set(ctx, key, v)
}

// signOut erases the stored triple and resets memory to unauthenticated.
// Memory is reset even when the erase fails; the erase error is returned.
func (s *SessionManager) signOut(ctx context.Context, lastError string) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	return s.signOutLocked(ctx, lastError)
}

// signOutIf is signOut guarded by the epoch: it does nothing and returns
// errSessionChanged if a login or logout happened since epoch was read.
func (s *SessionManager) signOutIf(ctx context.Context, epoch uint64, lastError string) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if s.currentEpoch() != epoch {
		return errSessionChanged
	}
	return s.signOutLocked(ctx, lastError)
}

func (s *SessionManager) signOutLocked(ctx context.Context, lastError string) error {
	err := s.write(ctx, record{})
	s.update(func(st *Session) {
		st.AccessToken = ""
		st.RefreshToken = ""
		st.Profile = nil
		st.Status = StatusUnauthenticated
		st.IsLoading = false
		st.LastError = lastError
		s.epoch++
	})
	return err
}

// storeFailed handles a failed commit: the session cannot trust what is
// stored, so it signs out and reports the original failure.
func (s *SessionManager) storeFailed(ctx context.Context, err error) error {
	s.log.Error(ctx, "credential store failure", "error", err)
	if eraseErr := s.signOut(ctx, MsgStoreFailed); eraseErr != nil {
		s.log.Warn(ctx, "erase after store failure", "error", eraseErr)
	}
	return err
}

// load reads the stored triple. Missing keys come back empty.
func (s *SessionManager) load(ctx context.Context) (record, error) {
	var rec record

	access, err := s.readKey(ctx, common.AccessTokenKey)
	if err != nil {
		return rec, err
	}
	refresh, err := s.readKey(ctx, common.RefreshTokenKey)
	if err != nil {
		return rec, err
	}
	userData, err := s.readKey(ctx, common.UserDataKey)
	if err != nil {
		return rec, err
	}

	rec.access = string(access)
	rec.refresh = string(refresh)
	if len(userData) > 0 {
		var p models.Profile
		if err := json.Unmarshal(userData, &p); err != nil {
			return record{}, fmt.Errorf("%w: decode %s: %w", ErrStore, common.UserDataKey, err)
		}
		rec.profile = &p
	}
	return rec, nil
}

func (s *SessionManager) readKey(ctx context.Context, key string) ([]byte, error) {
	v, err := s.store.Get(ctx, key)
	if errors.Is(err, credentials.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}
	return v, nil
}
