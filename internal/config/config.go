package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Secrets are strings, TTLs are plain ints in the
// unit their name states.
type Config struct {
	Env              string // application environment ("dev", "test", "prod")
	Port             string // HTTP port to listen on
	DBUser           string // database username
	DBPass           string // database password (optional)
	DBHost           string // database host address
	DBPort           string // database port number
	DBName           string // database name
	JWTSecret        string // shared secret used to sign JWTs
	JWTAccessSecret  string // optional access-token secret, falls back to JWTSecret
	JWTRefreshSecret string // optional refresh-token secret, falls back to JWTSecret
	AccessTTLMin     int    // access token time-to-live in minutes
	RefreshTTLDays   int    // refresh token time-to-live in days
	BcryptCost       int    // bcrypt cost for password hashing
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:              must("APP_ENV"),
		Port:             must("APP_PORT"),
		DBUser:           must("DB_USER"),
		DBPass:           os.Getenv("DB_PASS"),
		DBHost:           must("DB_HOST"),
		DBPort:           must("DB_PORT"),
		DBName:           must("DB_NAME"),
		JWTSecret:        must("JWT_SECRET"),
		JWTAccessSecret:  os.Getenv("JWT_ACCESS_SECRET"),
		JWTRefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
		AccessTTLMin:     envInt("ACCESS_TOKEN_TTL_MIN", 15),
		RefreshTTLDays:   envInt("REFRESH_TOKEN_TTL_DAYS", 7),
		BcryptCost:       envInt("BCRYPT_COST", 10),
	}
}

// IsProd reports whether the service runs under a production configuration.
// It controls the Secure cookie flag, the strict transport headers and
// whether the demo token verifier may be installed at startup.
func (c Config) IsProd() bool {
	return c.Env == "prod" || c.Env == "production"
}

// AccessSecret returns the secret used for access tokens, falling back to
// the shared secret when no per-kind override is configured.
func (c Config) AccessSecret() string {
	if c.JWTAccessSecret != "" {
		return c.JWTAccessSecret
	}
	return c.JWTSecret
}

// RefreshSecret returns the secret used for refresh tokens, falling back to
// the shared secret when no per-kind override is configured.
func (c Config) RefreshSecret() string {
	if c.JWTRefreshSecret != "" {
		return c.JWTRefreshSecret
	}
	return c.JWTSecret
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// envInt reads an integer environment variable, returning the default when
// the variable is unset. Malformed values are fatal.
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}
