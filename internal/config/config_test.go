package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"STORE_INSTANCE_URL": "https://store.example.com/",
		"STORE_SERVER_TOKEN": "secret",
	})
	require.NoError(t, err)

	assert.Equal(t, BackendHTTP, cfg.Store.Backend)
	assert.Equal(t, 60*time.Second, cfg.Store.FetchInterval())
	assert.Equal(t, 30*time.Second, cfg.Store.RequestTimeout)
	assert.Equal(t, "127.0.0.1:28016", cfg.Rcon.Address)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.False(t, cfg.Debug)
}

func TestLoadFrom_Validation(t *testing.T) {
	tests := []struct {
		name        string
		environ     map[string]string
		errContains string
	}{
		{
			name: "zero fetch interval",
			environ: map[string]string{
				"STORE_INSTANCE_URL":   "https://store.example.com",
				"STORE_FETCH_INTERVAL": "0",
			},
			errContains: "at least 1 second",
		},
		{
			name:        "http backend without url",
			environ:     map[string]string{},
			errContains: "STORE_INSTANCE_URL",
		},
		{
			name: "mysql backend without dsn",
			environ: map[string]string{
				"STORE_BACKEND": "mysql",
			},
			errContains: "STORE_DATABASE_URL",
		},
		{
			name: "unknown backend",
			environ: map[string]string{
				"STORE_BACKEND": "redis",
			},
			errContains: "unknown STORE_BACKEND",
		},
		{
			name: "bad interval",
			environ: map[string]string{
				"STORE_INSTANCE_URL":   "https://store.example.com",
				"STORE_FETCH_INTERVAL": "soon",
			},
			errContains: "parse env",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.environ)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestLoadFrom_MySQLBackend(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"STORE_BACKEND":      "mysql",
		"STORE_DATABASE_URL": "root:pw@tcp(localhost:3306)/cosmo?parseTime=true",
		"STORE_SERVER_ID":    "7",
		"RCON_PASSWORD":      "hunter2",
		"DEBUG_MODE":         "true",
	})
	require.NoError(t, err)

	assert.Equal(t, uint(7), cfg.Store.ServerID)
	assert.Equal(t, "hunter2", cfg.Rcon.Password)
	assert.True(t, cfg.Debug)
}
