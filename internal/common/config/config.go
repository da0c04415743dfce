package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aiagents/collab-hub/internal/common/constants"
	commonerrors "github.com/aiagents/collab-hub/internal/common/errors"
)

const (
	PostStoreSQLite   = "sqlite"
	PostStorePostgres = "postgres"
	PostStoreMemory   = "memory"

	DirectoryStatic   = "static"
	DirectoryPostgres = "postgres"
)

type Config struct {
	HTTPPort                  string
	SessionSecret             string
	SessionTTL                time.Duration
	SessionCookieName         string
	SecureCookies             bool
	PostStore                 string
	PostsDBPath               string
	DatabaseURL               string
	UserDirectory             string
	ResponderDelay            time.Duration
	DemoAccountsEnabled       bool
	RequestTimeout            time.Duration
	RevocationCleanupInterval time.Duration
}

// Load reads the process environment. The session secret has no default:
// a missing or short SESSION_SECRET stops startup.
func Load() (Config, error) {
	secret, err := mustEnv("SESSION_SECRET")
	if err != nil {
		return Config{}, err
	}
	if err := validateSessionSecret(secret); err != nil {
		return Config{}, err
	}

	cfg := Config{
		HTTPPort:                  getEnv("HTTP_PORT", constants.DefaultHTTPPort),
		SessionSecret:             secret,
		SessionTTL:                getDurationEnv("SESSION_TTL", constants.DefaultSessionTTL),
		SessionCookieName:         getEnv("SESSION_COOKIE_NAME", constants.DefaultSessionCookieName),
		SecureCookies:             getBoolEnv("SECURE_COOKIES", false),
		PostStore:                 strings.ToLower(getEnv("POST_STORE", constants.DefaultPostStore)),
		PostsDBPath:               getEnv("POSTS_DB_PATH", constants.DefaultPostsDBPath),
		DatabaseURL:               getEnv("DATABASE_URL", ""),
		UserDirectory:             strings.ToLower(getEnv("USER_DIRECTORY", constants.DefaultUserDirectory)),
		ResponderDelay:            getDurationEnv("RESPONDER_DELAY", constants.DefaultResponderDelay),
		DemoAccountsEnabled:       getBoolEnv("DEMO_ACCOUNTS_ENABLED", true),
		RequestTimeout:            getDurationEnv("REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
		RevocationCleanupInterval: getDurationEnv("REVOCATION_CLEANUP_INTERVAL", constants.DefaultRevocationCleanupInterval),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.PostStore {
	case PostStoreSQLite, PostStorePostgres, PostStoreMemory:
	default:
		return fmt.Errorf("unsupported POST_STORE %q", c.PostStore)
	}

	switch c.UserDirectory {
	case DirectoryStatic, DirectoryPostgres:
	default:
		return fmt.Errorf("unsupported USER_DIRECTORY %q", c.UserDirectory)
	}

	if (c.PostStore == PostStorePostgres || c.UserDirectory == DirectoryPostgres) && c.DatabaseURL == "" {
		return fmt.Errorf("%w: DATABASE_URL", commonerrors.ErrMissingRequiredEnv)
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.ResponderDelay < 0 {
		return fmt.Errorf("RESPONDER_DELAY must not be negative, got %s", c.ResponderDelay)
	}
	return nil
}

func (c Config) UsesPostgres() bool {
	return c.PostStore == PostStorePostgres || c.UserDirectory == DirectoryPostgres
}

func validateSessionSecret(secret string) error {
	if len(secret) < constants.SessionSecretMinLength {
		return fmt.Errorf("%w: got %d bytes", commonerrors.ErrInvalidSessionSecret, len(secret))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", commonerrors.ErrMissingRequiredEnv, key)
	}
	return v, nil
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getBoolEnv(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
