package config

import (
	"os"
	"strconv"
	"time"
)

// Config is built once at startup and passed by value. Nothing mutates it
// afterwards.
type Config struct {
	HTTPAddr string

	IssuerDID                string
	KeyID                    string
	SigningPrivateKeyBase64  string
	SigningPrivateKeySeedHex string
	LocationHint             string

	StoreBackend string // memory|postgres
	PostgresDSN  string

	DiscoveryTimeout time.Duration
	ResolveCacheTTL  time.Duration

	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitBackend  string // memory|redis
	RedisAddr         string
	RedisPassword     string
	RedisDB           int

	PolicyBundlePath string
	AuditLogSize     int
}

func FromEnv() Config {
	return Config{
		HTTPAddr: envDefault("HTTP_ADDR", ":8080"),

		IssuerDID:                envDefault("ISSUER_DID", "did:web:localhost"),
		KeyID:                    envDefault("KEY_ID", "dev-1"),
		SigningPrivateKeyBase64:  os.Getenv("SIGNING_PRIVATE_KEY_BASE64"),
		SigningPrivateKeySeedHex: os.Getenv("SIGNING_PRIVATE_KEY_SEED_HEX"),
		LocationHint:             envDefault("LOCATION_HINT", "none"),

		StoreBackend: envDefault("STORE_BACKEND", "memory"),
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),

		DiscoveryTimeout: envSeconds("DISCOVERY_TIMEOUT_SECONDS", 3*time.Second),
		ResolveCacheTTL:  envSeconds("RESOLVE_CACHE_TTL_SECONDS", 5*time.Minute),

		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 0),
		RateLimitWindow:   envSeconds("RATE_LIMIT_WINDOW_SECONDS", time.Minute),
		RateLimitBackend:  envDefault("RATE_LIMIT_BACKEND", "memory"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           envInt("REDIS_DB", 0),

		PolicyBundlePath: os.Getenv("POLICY_BUNDLE_PATH"),
		AuditLogSize:     envInt("AUDIT_LOG_SIZE", 1000),
	}
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envSeconds(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return time.Duration(n) * time.Second
}
