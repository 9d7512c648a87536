package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePrompt(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name)+".toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLibrary(t *testing.T) {
	shared := t.TempDir()
	personal := t.TempDir()
	writePrompt(t, shared, "review/go", `user = "Review this Go code: {{input}}"`)
	writePrompt(t, shared, "translate", `user = "shared {{input}}"`)
	writePrompt(t, personal, "translate", `user = "Translate to {{lang}}: {{input}}"`)
	require.NoError(t, os.WriteFile(filepath.Join(personal, "notes.txt"), []byte("x"), 0644))

	lib := NewLibrary([]string{shared, personal, filepath.Join(t.TempDir(), "missing")})

	entries, err := lib.List()
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Name: "review/go", Dir: shared},
		{Name: "translate", Dir: personal},
	}, entries)

	tests := []struct {
		name    string
		prompt  string
		input   string
		args    []string
		want    string
		wantErr error
	}{
		{name: "nested", prompt: "review/go", input: "x := 1", want: "Review this Go code: x := 1"},
		{name: "later directory wins", prompt: "translate", input: "hi", args: []string{"lang:German"}, want: "Translate to German: hi"},
		{name: "extension accepted", prompt: "translate.toml", input: "hi", args: []string{"lang:Dutch"}, want: "Translate to Dutch: hi"},
		{name: "missing", prompt: "nope", input: "hi", wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := lib.Format(tt.prompt, tt.input, tt.args)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err = lib.Format("translate", "hi", []string{"broken"})
	assert.Error(t, err)
}
