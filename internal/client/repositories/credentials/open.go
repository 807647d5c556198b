package credentials

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/mealkeeper/internal/client/config"
)

// Open builds the Store selected by cfg.StoreBackend, sealed with
// cfg.StoreSecret when one is set.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	var (
		s   Store
		err error
	)

	switch cfg.StoreBackend {
	case config.BackendSQLite, "":
		s, err = OpenSQLite(ctx, cfg.StorePath)
	case config.BackendMemory:
		s = NewMemoryStore()
	case config.BackendRedis:
		s, err = OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPrefix)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
	if err != nil {
		return nil, err
	}

	if cfg.StoreSecret == "" {
		return s, nil
	}
	sealed, err := NewSealedStore(ctx, s, cfg.StoreSecret)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return sealed, nil
}
