package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApp_Commands(t *testing.T) {
	app := newApp()

	var names []string
	for _, cmd := range app.Commands {
		names = append(names, cmd.Name)
		assert.NotNil(t, cmd.Action, cmd.Name)
	}
	assert.Equal(t, []string{"migrate", "recompute-status", "import", "export", "create-user", "drive-sync"}, names)
}

func TestNewApp_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	require.NoError(t, os.Unsetenv("DATABASE_URL"))

	for _, name := range []string{"migrate", "recompute-status"} {
		t.Run(name, func(t *testing.T) {
			app := newApp()
			app.Writer = io.Discard
			app.ErrWriter = io.Discard

			err := app.Run([]string{"jobctl", name})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "db-url")
		})
	}
}

func TestReadCredentials(t *testing.T) {
	inline := `{"type":"service_account"}`
	got, err := readCredentials("  " + inline)
	require.NoError(t, err)
	assert.Equal(t, "  "+inline, got)

	path := filepath.Join(t.TempDir(), "key.json")
	require.NoError(t, os.WriteFile(path, []byte(inline), 0o600))
	got, err = readCredentials(path)
	require.NoError(t, err)
	assert.Equal(t, inline, got)

	_, err = readCredentials(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
