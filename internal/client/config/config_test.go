package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, "http://127.0.0.1:8080/api", c.APIBaseURL)
	assert.Equal(t, 15*time.Second, c.RequestTimeout)
	assert.Equal(t, 10*time.Second, c.RefreshTimeout)
	assert.Equal(t, 20*time.Second, c.RefreshWaitTimeout)
	assert.Equal(t, BackendSQLite, c.StoreBackend)
	assert.Equal(t, "info", c.LogLevel)
}

func TestLoad_NoArgsGivesDefaults(t *testing.T) {
	cfg, err := load(nil)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(defaults(), cfg))
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    func(c *Config)
		wantErr bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "http://api:9000/api", "-t", "5", "-r", "3", "-w", "7", "-s", "redis",
				"-redis", "cache:6380", "-k", "s3cret", "-d", "/tmp/x.db", "-l", "debug"},
			want: func(c *Config) {
				c.APIBaseURL = "http://api:9000/api"
				c.RequestTimeout = 5 * time.Second
				c.RefreshTimeout = 3 * time.Second
				c.RefreshWaitTimeout = 7 * time.Second
				c.StoreBackend = BackendRedis
				c.RedisAddr = "cache:6380"
				c.StoreSecret = "s3cret"
				c.StorePath = "/tmp/x.db"
				c.LogLevel = "debug"
			},
		},
		{
			name: "foreign flags ignored",
			args: []string{"-x", "1", "-s=memory", "positional"},
			want: func(c *Config) { c.StoreBackend = BackendMemory },
		},
		{
			name:    "bad timeout",
			args:    []string{"-t", "abc"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := defaults()
			err := parseFlags(got, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			want := defaults()
			tt.want(want)
			assert.Empty(t, cmp.Diff(want, got))
		})
	}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParseFile_JSON(t *testing.T) {
	path := writeFile(t, "cfg.json", `{"api_base_url":"http://json/api","refresh_wait_timeout":"45s","store_backend":"memory"}`)

	cfg := defaults()
	require.NoError(t, parseFile(cfg, []string{"-config", path}))

	assert.Equal(t, "http://json/api", cfg.APIBaseURL)
	assert.Equal(t, 45*time.Second, cfg.RefreshWaitTimeout)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout, "untouched fields keep defaults")
}

func TestParseFile_YAML(t *testing.T) {
	path := writeFile(t, "cfg.yaml", "api_base_url: http://yaml/api\nrequest_timeout: 2s\nstore_secret: abc\n")

	cfg := defaults()
	require.NoError(t, parseFile(cfg, []string{"-c", path}))

	assert.Equal(t, "http://yaml/api", cfg.APIBaseURL)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "abc", cfg.StoreSecret)
}

func TestParseFile_Errors(t *testing.T) {
	cfg := defaults()

	require.Error(t, parseFile(cfg, []string{"-c", filepath.Join(t.TempDir(), "missing.json")}))

	bad := writeFile(t, "bad.json", `{ not json`)
	require.Error(t, parseFile(cfg, []string{"-c", bad}))
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	path := writeFile(t, "cfg.yml", "api_base_url: http://file/api\nlog_level: warn\n")

	cfg, err := load([]string{"-c", path, "-a", "http://flag/api"})
	require.NoError(t, err)

	assert.Equal(t, "http://flag/api", cfg.APIBaseURL)
	assert.Equal(t, "warn", cfg.LogLevel)
}
