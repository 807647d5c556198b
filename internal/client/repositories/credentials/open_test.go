package credentials

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/mealkeeper/internal/client/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cfgWith(t *testing.T, mutate func(c *config.Config)) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.LoadDefaults()
	c.StorePath = filepath.Join(t.TempDir(), "session.db")
	mutate(c)
	return c
}

func TestOpen_Backends(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(c *config.Config)
		check  func(t *testing.T, s Store)
	}{
		{"sqlite", func(c *config.Config) {}, func(t *testing.T, s Store) {
			assert.IsType(t, &SQLiteStore{}, s)
		}},
		{"memory", func(c *config.Config) { c.StoreBackend = config.BackendMemory }, func(t *testing.T, s Store) {
			assert.IsType(t, &MemoryStore{}, s)
		}},
		{"redis", func(c *config.Config) {
			c.StoreBackend = config.BackendRedis
			c.RedisAddr = mr.Addr()
		}, func(t *testing.T, s Store) {
			assert.IsType(t, &RedisStore{}, s)
		}},
		{"sealed sqlite", func(c *config.Config) { c.StoreSecret = "pw" }, func(t *testing.T, s Store) {
			assert.IsType(t, &SealedStore{}, s)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(ctx, cfgWith(t, tt.mutate))
			require.NoError(t, err)
			defer s.Close()
			tt.check(t, s)
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), cfgWith(t, func(c *config.Config) { c.StoreBackend = "etcd" }))
	require.Error(t, err)
}
