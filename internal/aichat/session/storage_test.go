package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/longkey1/aichat/internal/aichat"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "history"), nil)
}

func TestStoreSaveLoadDelete(t *testing.T) {
	store := newTestStore(t)

	sess := NewSession(aichat.ModeSSE)
	sess.Name = "night shift"
	sess.AddMessage(aichat.NewMessage(aichat.SenderUser, "status?"))
	require.NoError(t, store.Save(sess))
	assert.FileExists(t, filepath.Join(store.Dir(), sess.ID+".json"))

	loaded, err := store.Load(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, loaded.ID)
	assert.Equal(t, "night shift", loaded.Name)
	assert.Equal(t, aichat.ModeSSE, loaded.Mode)
	require.Len(t, loaded.Messages, 1)
	assert.Equal(t, "status?", loaded.Messages[0].Text)

	// Saving again replaces the file
	sess.AddMessage(aichat.NewMessage(aichat.SenderAssistant, "all good"))
	require.NoError(t, store.Save(sess))
	loaded, err = store.Load(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.MessageCount())

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files are left behind")

	require.NoError(t, store.Delete(sess.ID))
	_, err = store.Load(sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(sess.ID), ErrNotFound)
}

func TestStoreListNewestFirst(t *testing.T) {
	store := newTestStore(t)

	sessions, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, sessions, "missing directory holds no sessions")

	older := NewSession(aichat.ModeNormal)
	older.UpdatedAt = time.Now().Add(-time.Hour)
	newer := NewSession(aichat.ModeStream)
	require.NoError(t, store.Save(older))
	require.NoError(t, store.Save(newer))

	// Unreadable files are skipped
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "broken.json"), []byte("{"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "notes.txt"), []byte("x"), 0644))

	sessions, err = store.List()
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, newer.ID, sessions[0].ID)
	assert.Equal(t, older.ID, sessions[1].ID)

	latest, err := store.Find("latest")
	require.NoError(t, err)
	assert.Equal(t, newer.ID, latest.ID)
}

func TestStoreFind(t *testing.T) {
	store := newTestStore(t)

	first := NewSession(aichat.ModeNormal)
	first.ID = "abcd1111-0000-4000-8000-000000000001"
	second := NewSession(aichat.ModeNormal)
	second.ID = "abcd2222-0000-4000-8000-000000000002"
	require.NoError(t, store.Save(first))
	require.NoError(t, store.Save(second))

	found, err := store.Find("abcd1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)

	found, err = store.Find(second.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, found.ID)

	_, err = store.Find("abc")
	assert.Error(t, err)

	_, err = store.Find("ffff")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Find("abcd")
	var ambiguous *AmbiguousIDError
	require.True(t, errors.As(err, &ambiguous))
	assert.Len(t, ambiguous.Matches, 2)
	assert.Contains(t, err.Error(), "abcd1111")
}

func TestStoreLatestEmpty(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Latest()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDefaultDir(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	configDir := t.TempDir()
	configFile := filepath.Join(configDir, "config.toml")
	require.NoError(t, os.WriteFile(configFile, []byte(`mode = "sse"`+"\n"), 0644))
	viper.SetConfigFile(configFile)
	require.NoError(t, viper.ReadInConfig())

	dir, err := DefaultDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(configDir, "history"), dir)
}
