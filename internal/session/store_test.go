package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	t.Run("missing file loads empty", func(t *testing.T) {
		store := NewStore(filepath.Join(t.TempDir(), "session.json"))

		creds, err := store.Load()
		require.NoError(t, err)
		assert.True(t, creds.Empty())
	})

	t.Run("save then load", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "session.json")
		store := NewStore(path)

		require.NoError(t, store.Save(Credentials{Username: "ann", Token: "tok"}))

		creds, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, "ann", creds.Username)
		assert.Equal(t, "tok", creds.Token)
		assert.WithinDuration(t, time.Now(), creds.SavedAt, time.Minute)
		assert.False(t, creds.Empty())

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("save replaces", func(t *testing.T) {
		store := NewStore(filepath.Join(t.TempDir(), "session.json"))

		require.NoError(t, store.Save(Credentials{Username: "a-very-long-username", Token: "a-very-long-token"}))
		require.NoError(t, store.Save(Credentials{Username: "bo", Token: "t"}))

		creds, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, "bo", creds.Username)
		assert.Equal(t, "t", creds.Token)
	})

	t.Run("clear", func(t *testing.T) {
		store := NewStore(filepath.Join(t.TempDir(), "session.json"))
		require.NoError(t, store.Save(Credentials{Username: "ann", Token: "tok"}))

		require.NoError(t, store.Clear())
		require.NoError(t, store.Clear(), "clearing twice is fine")

		creds, err := store.Load()
		require.NoError(t, err)
		assert.True(t, creds.Empty())
	})

	t.Run("corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

		_, err := NewStore(path).Load()
		assert.Error(t, err)
	})
}
