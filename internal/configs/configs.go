/*
Package configs loads the relay server's settings.

Values come from the process environment (optionally seeded from a local .env
file) with defaults for everything except the invite signing secret outside
development. Command-line flags bound through BindFlags take precedence.
*/
package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"relaychat/internal/app/relay"
)

const (
	EnvDevelopment = "development"

	defaultDevSecret = "relaychat_insecure_dev_secret_change_me"
)

// AppConfig contains all configuration parameters required for the server to run.
type AppConfig struct {
	// General Server Settings
	Environment string
	Port        int
	LogLevel    string

	// Security Settings
	AllowedOrigins []string
	JWTSecret      string
	InviteTTL      time.Duration

	// Room Settings
	RoomCapacity   int
	TextRateLimit  int
	TextRateWindow time.Duration
	FileRateLimit  int
	FileRateWindow time.Duration
	MaxFrameBytes  int64
	ConnectRate    float64
	ConnectBurst   int
}

// IsDevelopment reports whether the server runs in the development environment.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// RelayConfig translates the room settings into the engine's configuration.
func (c *AppConfig) RelayConfig() relay.Config {
	return relay.Config{
		Capacity:  c.RoomCapacity,
		TextLimit: relay.Limit{Max: c.TextRateLimit, Window: c.TextRateWindow},
		FileLimit: relay.Limit{Max: c.FileRateLimit, Window: c.FileRateWindow},
	}
}

// New returns a viper instance reading the environment with every default set.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("environment", EnvDevelopment)
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "")
	v.SetDefault("allowed_origins", "")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("invite_ttl", "24h")

	v.SetDefault("room_capacity", relay.DefaultCapacity)
	v.SetDefault("text_rate_limit", relay.DefaultTextLimit.Max)
	v.SetDefault("text_rate_window", relay.DefaultTextLimit.Window)
	v.SetDefault("file_rate_limit", relay.DefaultFileLimit.Max)
	v.SetDefault("file_rate_window", relay.DefaultFileLimit.Window)
	v.SetDefault("max_frame_bytes", 8_000_000)
	v.SetDefault("connect_rate", 0.5)
	v.SetDefault("connect_burst", 10)

	return v
}

// BindFlags lets flags set on the command line override the environment.
// Flag names use dashes ("room-capacity") and map onto the matching keys.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if bindErr != nil {
			return
		}
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil {
			bindErr = fmt.Errorf("bind flag %q: %w", f.Name, err)
		}
	})
	return bindErr
}

// Load reads an optional .env file, then the environment, then any flags
// explicitly set in flags. flags may be nil.
func Load(flags *pflag.FlagSet) (*AppConfig, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := New()
	if flags != nil {
		if err := BindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	return Parse(v)
}

// Parse converts and validates the values held by v.
func Parse(v *viper.Viper) (*AppConfig, error) {
	cfg := &AppConfig{
		Environment:    strings.ToLower(strings.TrimSpace(v.GetString("environment"))),
		Port:           v.GetInt("port"),
		LogLevel:       v.GetString("log_level"),
		AllowedOrigins: splitList(v.GetString("allowed_origins")),
		JWTSecret:      v.GetString("jwt_secret"),
		InviteTTL:      v.GetDuration("invite_ttl"),
		RoomCapacity:   v.GetInt("room_capacity"),
		TextRateLimit:  v.GetInt("text_rate_limit"),
		TextRateWindow: v.GetDuration("text_rate_window"),
		FileRateLimit:  v.GetInt("file_rate_limit"),
		FileRateWindow: v.GetDuration("file_rate_window"),
		MaxFrameBytes:  v.GetInt64("max_frame_bytes"),
		ConnectRate:    v.GetFloat64("connect_rate"),
		ConnectBurst:   v.GetInt("connect_burst"),
	}

	if cfg.Environment == "" {
		cfg.Environment = EnvDevelopment
	}

	if cfg.Port < 1024 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", cfg.Port, 1024, 65535)
	}

	if cfg.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("JWT_SECRET environment variable is required in %s environment for security", cfg.Environment)
		}
		cfg.JWTSecret = defaultDevSecret
	}

	if cfg.RoomCapacity < 0 {
		return nil, fmt.Errorf("invalid ROOM_CAPACITY %d: must be 0 (unbounded) or positive", cfg.RoomCapacity)
	}

	if cfg.TextRateWindow <= 0 || cfg.FileRateWindow <= 0 {
		return nil, fmt.Errorf("rate windows must be positive (text %s, file %s)", cfg.TextRateWindow, cfg.FileRateWindow)
	}

	if cfg.MaxFrameBytes <= 0 {
		return nil, fmt.Errorf("invalid MAX_FRAME_BYTES %d", cfg.MaxFrameBytes)
	}

	if cfg.InviteTTL <= 0 {
		return nil, fmt.Errorf("invalid INVITE_TTL %s", cfg.InviteTTL)
	}

	if cfg.ConnectRate <= 0 || cfg.ConnectBurst <= 0 {
		return nil, fmt.Errorf("CONNECT_RATE and CONNECT_BURST must be positive")
	}

	return cfg, nil
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
