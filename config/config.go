/*
Package config loads runtime configuration.

SOURCES (later wins):
  1. Defaults below
  2. .env file in the working directory (optional)
  3. Process environment
  4. Command-line flags (applied by cmd/apartd)

VARIABLES:
  APART_PORT            HTTP port (default 8080)
  APART_DB              SQLite path, ":memory:" allowed (default apartment.db)
  APART_ADMIN_USER      Operator created on first start (default admin)
  APART_ADMIN_PASSWORD  Its password; no operator is created when empty
  APART_DORM_CAPACITY   Max Active Dorm tenants per unit (default 4)
  APART_NOTICE_DAYS     Notice period for deposit refunds (default 30)
  APART_OVERDUE_DAYS    Default overdue window (default 7)
  APART_CORS_ORIGINS    Comma-separated allowed origins
  APART_TOKEN_SECRET    HS256 key for /api/login tokens; random per process when empty
  APART_TOKEN_TTL       Token lifetime as a Go duration (default 12h)
*/
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/warp/tenancy-engine/auth"
	"github.com/warp/tenancy-engine/property"
)

type Config struct {
	Port          int
	DBPath        string
	AdminUser     string
	AdminPassword string
	CORSOrigins   []string
	TokenSecret   string
	TokenTTL      time.Duration
	Rules         property.Rules
}

func Default() Config {
	return Config{
		Port:        8080,
		DBPath:      "apartment.db",
		AdminUser:   "admin",
		CORSOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		TokenTTL:    auth.DefaultTokenTTL,
		Rules:       property.DefaultRules(),
	}
}

// Load reads the .env files (missing files are ignored) and then the
// environment.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		_ = godotenv.Load()
	} else {
		for _, f := range files {
			if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("failed to load %s: %w", f, err)
			}
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from a lookup function, so tests can pass a map.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	c := Default()
	var err error

	if c.Port, err = intVar(lookup, "APART_PORT", c.Port); err != nil {
		return Config{}, err
	}
	if v, ok := lookup("APART_DB"); ok && v != "" {
		c.DBPath = v
	}
	if v, ok := lookup("APART_ADMIN_USER"); ok && v != "" {
		c.AdminUser = v
	}
	if v, ok := lookup("APART_ADMIN_PASSWORD"); ok {
		c.AdminPassword = v
	}
	if v, ok := lookup("APART_CORS_ORIGINS"); ok && v != "" {
		c.CORSOrigins = splitList(v)
	}
	if v, ok := lookup("APART_TOKEN_SECRET"); ok {
		c.TokenSecret = v
	}
	if v, ok := lookup("APART_TOKEN_TTL"); ok && strings.TrimSpace(v) != "" {
		ttl, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil || ttl <= 0 {
			return Config{}, fmt.Errorf("APART_TOKEN_TTL: %q is not a positive duration", v)
		}
		c.TokenTTL = ttl
	}
	if c.Rules.DormCapacity, err = intVar(lookup, "APART_DORM_CAPACITY", c.Rules.DormCapacity); err != nil {
		return Config{}, err
	}
	if c.Rules.NoticePeriodDays, err = intVar(lookup, "APART_NOTICE_DAYS", c.Rules.NoticePeriodDays); err != nil {
		return Config{}, err
	}
	if c.Rules.OverdueDays, err = intVar(lookup, "APART_OVERDUE_DAYS", c.Rules.OverdueDays); err != nil {
		return Config{}, err
	}
	c.Rules = c.Rules.Normalize()
	return c, nil
}

func intVar(lookup func(string) (string, bool), key string, def int) (int, error) {
	v, ok := lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", key, v)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
