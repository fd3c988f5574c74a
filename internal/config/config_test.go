package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vancomm/sweeper/internal/round"
)

// unsetenv clears key for the duration of the test.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestAddr(t *testing.T) {
	unsetenv(t, "APP_ADDR")
	assert.Equal(t, ":8080", Addr())

	t.Setenv("APP_ADDR", "127.0.0.1:9000")
	assert.Equal(t, "127.0.0.1:9000", Addr())
}

func TestDevelopment(t *testing.T) {
	unsetenv(t, "DEVELOPMENT")
	assert.False(t, Development())

	t.Setenv("DEVELOPMENT", "0")
	assert.False(t, Development())

	t.Setenv("DEVELOPMENT", "1")
	assert.True(t, Development())
}

func TestGameMode(t *testing.T) {
	unsetenv(t, "GAME_MODE")
	mode, err := GameMode()
	require.NoError(t, err)
	assert.Equal(t, round.Desktop, mode)

	t.Setenv("GAME_MODE", "mobile")
	mode, err = GameMode()
	require.NoError(t, err)
	assert.Equal(t, round.Mobile, mode)

	t.Setenv("GAME_MODE", "arcade")
	_, err = GameMode()
	assert.ErrorIs(t, err, round.ErrUnknownMode)
}

func TestSaveDB(t *testing.T) {
	unsetenv(t, "SAVE_DB")
	assert.Equal(t, "sweeper.db", SaveDB())

	t.Setenv("SAVE_DB", "/tmp/slots.db")
	assert.Equal(t, "/tmp/slots.db", SaveDB())
}

func TestDbURL(t *testing.T) {
	for _, key := range []string{
		"DATABASE_URL", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_PASSWORD_FILE",
		"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_DB", "POSTGRES_SSLMODE",
	} {
		unsetenv(t, key)
	}
	assert.False(t, DatabaseConfigured())
	_, err := DbURL()
	assert.Error(t, err)

	t.Setenv("POSTGRES_USER", "sweeper")
	t.Setenv("POSTGRES_PASSWORD", "p@ss word")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_DB", "rounds")
	assert.True(t, DatabaseConfigured())

	url, err := DbURL()
	require.NoError(t, err)
	assert.Equal(t, "postgresql://sweeper:p%40ss+word@db:5432/rounds?sslmode=disable", url)

	t.Setenv("POSTGRES_PORT", "70000")
	_, err = DbURL()
	assert.Error(t, err)

	t.Setenv("DATABASE_URL", "postgres://localhost/other")
	url, err = DbURL()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/other", url)
}

func TestPasswordFile(t *testing.T) {
	unsetenv(t, "POSTGRES_PASSWORD")
	path := t.TempDir() + "/password"
	require.NoError(t, os.WriteFile(path, []byte("secret\n"), 0o600))
	t.Setenv("POSTGRES_PASSWORD_FILE", path)

	password, err := loadPassword()
	require.NoError(t, err)
	assert.Equal(t, "secret", password)
}
