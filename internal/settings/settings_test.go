package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	t.Run("missing file starts empty", func(t *testing.T) {
		store, err := NewStore(filepath.Join(t.TempDir(), "telegram-settings.yaml"))
		require.NoError(t, err)

		assert.Equal(t, BotSettings{}, store.Get())
		assert.Empty(t, store.BotToken())
	})

	t.Run("save and reload", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "telegram-settings.yaml")

		store, err := NewStore(path)
		require.NoError(t, err)
		require.NoError(t, store.Save("123:token", "mybot"))

		got := store.Get()
		assert.Equal(t, "123:token", got.BotToken)
		assert.Equal(t, "mybot", got.BotUsername)
		assert.Equal(t, "mybot", got.PublicBotUsername)

		// A fresh store must read the same values back from disk.
		reloaded, err := NewStore(path)
		require.NoError(t, err)
		assert.Equal(t, got, reloaded.Get())
	})

	t.Run("save overwrites previous values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "telegram-settings.yaml")

		store, err := NewStore(path)
		require.NoError(t, err)
		require.NoError(t, store.Save("123:token", "mybot"))
		require.NoError(t, store.Save("456:token", "otherbot"))

		got := store.Get()
		assert.Equal(t, "456:token", got.BotToken)
		assert.Equal(t, "otherbot", got.BotUsername)
	})

	t.Run("corrupt file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "telegram-settings.yaml")
		require.NoError(t, os.WriteFile(path, []byte("{nope: [unclosed"), 0o600))

		_, err := NewStore(path)
		assert.Error(t, err)
	})
}
