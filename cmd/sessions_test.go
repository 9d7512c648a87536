package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/longkey1/aichat/internal/aichat"
	"github.com/longkey1/aichat/internal/aichat/config"
	"github.com/longkey1/aichat/internal/aichat/session"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{input: "2024-03-15", want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local)},
		{input: "2024-12", want: time.Date(2024, 12, 1, 0, 0, 0, 0, time.Local)},
		{input: "2024", want: time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)},
		{input: "15/03/2024", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestSelectSessionsToDelete(t *testing.T) {
	cutoff := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	sessions := []session.Session{
		{ID: "new", CreatedAt: cutoff.AddDate(0, 0, 1)},
		{ID: "old", CreatedAt: cutoff.AddDate(0, 0, -1)},
		{ID: "cutoff", CreatedAt: cutoff},
	}

	selected := selectSessionsToDelete(sessions, false, cutoff)
	require.Len(t, selected, 1)
	assert.Equal(t, "old", selected[0].ID)

	assert.Len(t, selectSessionsToDelete(sessions, true, cutoff), 3)
	assert.Empty(t, selectSessionsToDelete(sessions, false, time.Time{}))
}

func TestConfigField(t *testing.T) {
	cfg := config.NewDefaultConfig("/tmp/history")
	cfg.PromptDirs = []string{"/tmp/prompts", "/srv/prompts"}

	tests := []struct {
		name string
		want string
	}{
		{name: "base_url", want: "http://localhost:8080"},
		{name: "BaseURL", want: "http://localhost:8080"},
		{name: "mode", want: "normal"},
		{name: "timeout", want: "1m0s"},
		{name: "history_dir", want: "/tmp/history"},
		{name: "history_retention_days", want: "30"},
		{name: "log_level", want: "info"},
		{name: "prompt_dirs", want: "/tmp/prompts,/srv/prompts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := configField(cfg, tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := configField(cfg, "openai_token")
	assert.False(t, ok)
}

func TestNewFileConfig(t *testing.T) {
	fc := newFileConfig(config.NewDefaultConfig("history"))

	assert.Equal(t, "1m0s", fc.Timeout)
	assert.Equal(t, "history", fc.HistoryDir)
	assert.Equal(t, "normal", fc.Mode)
}

// useTempStore points the session commands at an empty history directory
func useTempStore(t *testing.T) *session.Store {
	t.Helper()
	dir := t.TempDir()
	viper.Reset()
	viper.Set("history_dir", dir)
	viper.Set("history_retention_days", 30)
	viper.Set("log_level", "error")
	t.Cleanup(viper.Reset)
	return session.NewStore(dir, nil)
}

// runCommand executes a subcommand with captured streams
func runCommand(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(stdin))
	t.Cleanup(func() {
		cmd.SetOut(nil)
		cmd.SetIn(nil)
	})
	err := cmd.RunE(cmd, args)
	return out.String(), err
}

func savedSession(t *testing.T, store *session.Store, id string, created time.Time) *session.Session {
	t.Helper()
	sess := session.NewSession(aichat.ModeStream)
	sess.ID = id
	sess.CreatedAt = created
	sess.AddMessage(aichat.NewMessage(aichat.SenderUser, "hello"))
	sess.AddMessage(aichat.NewMessage(aichat.SenderAssistant, "hi"))
	require.NoError(t, store.Save(sess))
	return sess
}

func TestSessionsListCommand(t *testing.T) {
	store := useTempStore(t)

	out, err := runCommand(t, sessionsListCmd, "")
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions found.")

	savedSession(t, store, "aaaa1111-0000-4000-8000-000000000001", time.Now())
	out, err = runCommand(t, sessionsListCmd, "")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "aaaa1111")
	assert.Contains(t, out, "stream")
}

func TestSessionsShowAndRenameCommands(t *testing.T) {
	store := useTempStore(t)
	savedSession(t, store, "bbbb2222-0000-4000-8000-000000000002", time.Now())

	out, err := runCommand(t, sessionsRenameCmd, "", "bbbb", "release review")
	require.NoError(t, err)
	assert.Contains(t, out, `renamed to "release review"`)

	out, err = runCommand(t, sessionsShowCmd, "", "latest")
	require.NoError(t, err)
	assert.Contains(t, out, "Name: release review")
	assert.Contains(t, out, "You> hello")
	assert.Contains(t, out, "Assistant> hi")

	_, err = runCommand(t, sessionsShowCmd, "", "ffff")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestSessionsDeleteCommandAsksForConfirmation(t *testing.T) {
	store := useTempStore(t)
	sess := savedSession(t, store, "cccc3333-0000-4000-8000-000000000003", time.Now())

	out, err := runCommand(t, sessionsDeleteCmd, "n\n", "cccc")
	require.NoError(t, err)
	assert.Contains(t, out, "Deletion cancelled.")
	_, err = store.Load(sess.ID)
	require.NoError(t, err)

	out, err = runCommand(t, sessionsDeleteCmd, "y\n", "cccc")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted")
	_, err = store.Load(sess.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestSessionsClearCommand(t *testing.T) {
	store := useTempStore(t)
	old := savedSession(t, store, "dddd4444-0000-4000-8000-000000000004", time.Now().AddDate(0, 0, -45))
	recent := savedSession(t, store, "eeee5555-0000-4000-8000-000000000005", time.Now())

	assumeYes = true
	t.Cleanup(func() { assumeYes = false })

	out, err := runCommand(t, sessionsClearCmd, "")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 1 of 1 sessions.")

	_, err = store.Load(old.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
	_, err = store.Load(recent.ID)
	assert.NoError(t, err)
}

func TestSessionsExportCommand(t *testing.T) {
	store := useTempStore(t)
	savedSession(t, store, "ffff6666-0000-4000-8000-000000000006", time.Now())

	exportFile = "-"
	t.Cleanup(func() { exportFile = "" })

	out, err := runCommand(t, sessionsExportCmd, "", "ffff6666")
	require.NoError(t, err)

	var entries []session.TranscriptEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "user", entries[0].Type)
	assert.Equal(t, "hi", entries[1].Text)
}
