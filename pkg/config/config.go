package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverREST   = "rest"
	DriverSQLite = "sqlite"
)

type Config struct {
	Addr          string
	AppURL        string
	SessionSecret string

	// Collection store
	StoreDriver string
	SupabaseURL string
	SupabaseKey string
	SQLitePath  string

	// Content import (sqlite driver only)
	ContentDir   string
	WatchContent bool

	CacheTTL       time.Duration
	FacetsFile     string
	ContactPersist bool
	LogLevel       string

	// Lower-cased emails allowed into /admin regardless of app_metadata.
	AdminEmails []string
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	// Helper to get env with default
	getEnv := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		Addr:          getEnv("ADDR", ":8080"),
		AppURL:        strings.TrimRight(getEnv("APP_URL", "http://localhost:8080"), "/"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		StoreDriver:   getEnv("STORE_DRIVER", DriverREST),
		SupabaseURL:   os.Getenv("SUPABASE_URL"),
		SupabaseKey:   os.Getenv("SUPABASE_ANON_KEY"),
		SQLitePath:    getEnv("SQLITE_PATH", "./data/site.db"),
		ContentDir:    os.Getenv("CONTENT_DIR"),
		FacetsFile:    os.Getenv("FACETS_FILE"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		AdminEmails:   splitList(os.Getenv("ADMIN_EMAILS")),
	}

	var err error
	if cfg.WatchContent, err = envBool("WATCH_CONTENT"); err != nil {
		return nil, err
	}
	if cfg.ContactPersist, err = envBool("CONTACT_PERSIST"); err != nil {
		return nil, err
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if cfg.CacheTTL, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("CACHE_TTL: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverREST:
		if c.SupabaseURL == "" {
			return fmt.Errorf("SUPABASE_URL is required for the %s driver", DriverREST)
		}
		if c.SupabaseKey == "" {
			return fmt.Errorf("SUPABASE_ANON_KEY is required for the %s driver", DriverREST)
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the %s driver", DriverSQLite)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.WatchContent && c.ContentDir == "" {
		return fmt.Errorf("WATCH_CONTENT needs CONTENT_DIR")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL must not be negative")
	}
	return nil
}

// AuthEnabled reports whether admin sign-in against the hosted auth API
// is possible.
func (c *Config) AuthEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseKey != ""
}

// IsAdminEmail reports whether email is on the ADMIN_EMAILS allowlist.
func (c *Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, e := range c.AdminEmails {
		if e == email {
			return true
		}
	}
	return false
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envBool(key string) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
