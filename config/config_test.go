package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/tenancy-engine/config"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	c, err := config.FromEnv(lookupFrom(nil))
	require.NoError(t, err)

	assert.Equal(t, config.Default(), c)
	assert.Equal(t, 4, c.Rules.DormCapacity)
	assert.Equal(t, 30, c.Rules.NoticePeriodDays)
	assert.Equal(t, 7, c.Rules.OverdueDays)
}

func TestFromEnv_Overrides(t *testing.T) {
	c, err := config.FromEnv(lookupFrom(map[string]string{
		"APART_PORT":           "9090",
		"APART_DB":             ":memory:",
		"APART_ADMIN_USER":     "manager",
		"APART_ADMIN_PASSWORD": "pw",
		"APART_CORS_ORIGINS":   "https://a.example, ,https://b.example",
		"APART_DORM_CAPACITY":  "6",
		"APART_NOTICE_DAYS":    " 45 ",
		"APART_OVERDUE_DAYS":   "0",
		"APART_TOKEN_SECRET":   "k3y",
		"APART_TOKEN_TTL":      "90m",
	}))
	require.NoError(t, err)

	assert.Equal(t, 9090, c.Port)
	assert.Equal(t, ":memory:", c.DBPath)
	assert.Equal(t, "manager", c.AdminUser)
	assert.Equal(t, "pw", c.AdminPassword)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.CORSOrigins)
	assert.Equal(t, 6, c.Rules.DormCapacity)
	assert.Equal(t, 45, c.Rules.NoticePeriodDays)
	assert.Equal(t, 7, c.Rules.OverdueDays, "non-positive values fall back to the default")
	assert.Equal(t, "k3y", c.TokenSecret)
	assert.Equal(t, 90*time.Minute, c.TokenTTL)
}

func TestFromEnv_BadInteger(t *testing.T) {
	_, err := config.FromEnv(lookupFrom(map[string]string{"APART_DORM_CAPACITY": "four"}))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "APART_DORM_CAPACITY")

	_, err = config.FromEnv(lookupFrom(map[string]string{"APART_TOKEN_TTL": "forever"}))
	assert.Error(t, err)
}

func TestLoad_DotEnvFile(t *testing.T) {
	// GIVEN: A .env file setting the port, and an unset process variable
	// WHEN: Loaded
	// THEN: The file value is used; a missing file is not an error

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("APART_TEST_ONLY_PORT=1\nAPART_PORT=7070\n"), 0o600))
	t.Setenv("APART_PORT", "")
	os.Unsetenv("APART_PORT")
	t.Cleanup(func() { os.Unsetenv("APART_TEST_ONLY_PORT") })

	c, err := config.Load(path, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, 7070, c.Port)
}
