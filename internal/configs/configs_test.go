package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Parse(New())
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, defaultDevSecret, cfg.JWTSecret)
	assert.Equal(t, []string{}, cfg.AllowedOrigins)
	assert.Equal(t, 24*time.Hour, cfg.InviteTTL)
	assert.Equal(t, int64(8_000_000), cfg.MaxFrameBytes)

	rc := cfg.RelayConfig()
	assert.Equal(t, 2, rc.Capacity)
	assert.Equal(t, 8, rc.TextLimit.Max)
	assert.Equal(t, 10*time.Second, rc.TextLimit.Window)
	assert.Equal(t, 5, rc.FileLimit.Max)
	assert.Equal(t, 15*time.Second, rc.FileLimit.Window)
}

func TestParse_FromEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ROOM_CAPACITY", "0")
	t.Setenv("TEXT_RATE_LIMIT", "3")
	t.Setenv("TEXT_RATE_WINDOW", "1m")
	t.Setenv("INVITE_TTL", "30m")

	cfg, err := Parse(New())
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 30*time.Minute, cfg.InviteTTL)

	rc := cfg.RelayConfig()
	assert.Equal(t, 0, rc.Capacity)
	assert.Equal(t, 3, rc.TextLimit.Max)
	assert.Equal(t, time.Minute, rc.TextLimit.Window)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "privileged port", env: map[string]string{"PORT": "80"}},
		{name: "missing secret in production", env: map[string]string{"ENVIRONMENT": "production", "JWT_SECRET": ""}},
		{name: "negative capacity", env: map[string]string{"ROOM_CAPACITY": "-1"}},
		{name: "zero window", env: map[string]string{"FILE_RATE_WINDOW": "0s"}},
		{name: "zero frame limit", env: map[string]string{"MAX_FRAME_BYTES": "0"}},
		{name: "zero connect burst", env: map[string]string{"CONNECT_BURST": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Parse(New())
			assert.Error(t, err)
		})
	}
}

func TestBindFlags_OverrideEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ROOM_CAPACITY", "4")

	flags := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	flags.Int("port", 8080, "")
	flags.Int("room-capacity", 2, "")
	require.NoError(t, flags.Parse([]string{"--room-capacity=10"}))

	v := New()
	require.NoError(t, BindFlags(v, flags))

	cfg, err := Parse(v)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port, "unset flag falls back to the environment")
	assert.Equal(t, 10, cfg.RoomCapacity)
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("INVITE_TTL=90m\nPORT=7070\n"), 0o600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	// Registered so the test restores them, then cleared so .env can fill them.
	for _, key := range []string{"INVITE_TTL", "PORT"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Setenv("ENVIRONMENT", "development")

	flags := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	flags.Int("port", 8080, "")
	require.NoError(t, flags.Parse([]string{"--port=6060"}))

	cfg, err := Load(flags)
	require.NoError(t, err)

	assert.Equal(t, 90*time.Minute, cfg.InviteTTL)
	assert.Equal(t, 6060, cfg.Port, "flags win over .env")
}
