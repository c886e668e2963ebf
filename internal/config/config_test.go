package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, "data", c.DataDir)
	assert.Equal(t, 100, c.Limits.TitleMax)
	assert.Equal(t, 500, c.Limits.DescriptionMax)
	assert.Equal(t, 200, c.Limits.CommentMax)
	assert.Equal(t, 5, c.Auth.OTPMaxAttempts)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasknest.yml")
	body := "server:\n  addr: \":9090\"\nlimits:\n  title_max: 80\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	t.Setenv("TASKNEST_DATA_DIR", "/var/lib/tasknest")
	t.Setenv("TASKNEST_OTP_MAX_ATTEMPTS", "3")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", c.Server.Addr)
	assert.Equal(t, 80, c.Limits.TitleMax)
	assert.Equal(t, "/var/lib/tasknest", c.DataDir)
	assert.Equal(t, 3, c.Auth.OTPMaxAttempts)
	// untouched fields keep defaults
	assert.Equal(t, 500, c.Limits.DescriptionMax)
}
