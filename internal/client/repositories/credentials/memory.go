package credentials

import (
	"context"
	"sync"
)

// MemoryStore keeps credentials in process memory. Nothing survives a
// restart; it backs tests and the "memory" backend.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	return s.Update(ctx, func(ctx context.Context, w Writer) error {
		return w.Set(ctx, key, value)
	})
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	return s.Update(ctx, func(ctx context.Context, w Writer) error {
		return w.Delete(ctx, key)
	})
}

func (s *MemoryStore) Update(ctx context.Context, fn func(ctx context.Context, w Writer) error) error {
	var staged stagedWriter
	if err := fn(ctx, &staged); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range staged.ops {
		if op.delete {
			delete(s.data, op.key)
			continue
		}
		s.data[op.key] = op.value
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }
